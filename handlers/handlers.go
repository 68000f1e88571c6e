package handlers

import (
	"context"
	"time"

	"todo-manager/database"
	"todo-manager/models"
)

// ActivityLog receives a record of every successful mutation.
type ActivityLog interface {
	Record(ctx context.Context, entry models.ActivityEntry)
	Recent(ctx context.Context, limit int) ([]models.ActivityEntry, error)
}

// IdentityVerifier turns a bearer token into a caller UID.
type IdentityVerifier interface {
	VerifyUserToken(ctx context.Context, token string) (string, error)
}

// Handlers serves the task and tag endpoints from a Store.
type Handlers struct {
	store        database.Store
	activity     ActivityLog
	identity     IdentityVerifier
	authRequired bool
	location     *time.Location
	now          func() time.Time
}

type Option func(*Handlers)

// WithActivityLog mirrors successful mutations to log.
func WithActivityLog(log ActivityLog) Option {
	return func(h *Handlers) {
		h.activity = log
	}
}

// WithIdentity verifies bearer tokens with v. When required is true,
// requests without a valid token are rejected.
func WithIdentity(v IdentityVerifier, required bool) Option {
	return func(h *Handlers) {
		h.identity = v
		h.authRequired = required
	}
}

// WithLocation sets the location used for deadlines submitted without an offset.
func WithLocation(loc *time.Location) Option {
	return func(h *Handlers) {
		h.location = loc
	}
}

func New(store database.Store, opts ...Option) *Handlers {
	h := &Handlers{
		store:    store,
		activity: noopActivity{},
		location: time.UTC,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

func (h *Handlers) record(ctx context.Context, caller Caller, kind string, taskID, tagID int64, detail string) {
	h.activity.Record(ctx, models.ActivityEntry{
		CallerUID: caller.UID,
		Kind:      kind,
		TaskID:    taskID,
		TagID:     tagID,
		Detail:    detail,
		Timestamp: h.now().UTC(),
	})
}

type noopActivity struct{}

func (noopActivity) Record(context.Context, models.ActivityEntry) {}

func (noopActivity) Recent(context.Context, int) ([]models.ActivityEntry, error) {
	return []models.ActivityEntry{}, nil
}
