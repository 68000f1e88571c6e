package firebase

import (
	"context"
	"fmt"

	firebase "firebase.google.com/go/v4"
	"firebase.google.com/go/v4/auth"
)

// TokenVerifier checks Firebase ID tokens.
type TokenVerifier struct {
	client *auth.Client
}

func NewTokenVerifier(ctx context.Context, app *firebase.App) (*TokenVerifier, error) {
	client, err := app.Auth(ctx)
	if err != nil {
		return nil, fmt.Errorf("error getting auth client: %w", err)
	}
	return &TokenVerifier{client: client}, nil
}

// VerifyUserToken returns the UID the token was issued for.
func (v *TokenVerifier) VerifyUserToken(ctx context.Context, token string) (string, error) {
	verified, err := v.client.VerifyIDToken(ctx, token)
	if err != nil {
		return "", fmt.Errorf("error verifying token: %w", err)
	}
	return verified.UID, nil
}
