package firebase

import (
	"context"
	"fmt"

	firebase "firebase.google.com/go/v4"
	"google.golang.org/api/option"

	"todo-manager/utilities"
)

// InitializeFirebase builds a Firebase app from a service account file.
func InitializeFirebase(ctx context.Context, credentialsPath string) (*firebase.App, error) {
	if credentialsPath == "" {
		return nil, fmt.Errorf("firebase credentials path is empty")
	}

	opt := option.WithCredentialsFile(credentialsPath)
	app, err := firebase.NewApp(ctx, nil, opt)
	if err != nil {
		return nil, fmt.Errorf("error initializing firebase: %w", err)
	}

	utilities.LogInfo("Firebase initialized from %s", credentialsPath)
	return app, nil
}
