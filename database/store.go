package database

import (
	"context"
	"errors"
	"time"

	"todo-manager/models"
)

// ErrNotFound is returned when an identifier does not resolve to a row.
var ErrNotFound = errors.New("not found")

// Store is the storage interface the handlers run against. Every method is
// atomic on its own.
type Store interface {
	// ListTasks returns every task, not-done first and newest first within
	// each group, with tags loaded.
	ListTasks(ctx context.Context) ([]models.Task, error)
	GetTask(ctx context.Context, id int64) (*models.Task, error)
	CreateTask(ctx context.Context, content string, deadline *time.Time) (*models.Task, error)
	ToggleTaskDone(ctx context.Context, id int64) (*models.Task, error)
	// DeleteTask removes the task and its associations; tags are kept.
	DeleteTask(ctx context.Context, id int64) error

	// ListTags returns every tag in insertion order.
	ListTags(ctx context.Context) ([]models.Tag, error)
	GetTag(ctx context.Context, id int64) (*models.Tag, error)
	CreateTag(ctx context.Context, name string) (*models.Tag, error)
	RenameTag(ctx context.Context, id int64, name string) (*models.Tag, error)
	// DeleteTag removes the tag and detaches it from every task.
	DeleteTag(ctx context.Context, id int64) error

	// RelateTag attaches a tag to a task. Attaching twice is a no-op.
	RelateTag(ctx context.Context, taskID, tagID int64) error
	// UnrelateTag detaches a tag from a task. Detaching an absent tag is a no-op.
	UnrelateTag(ctx context.Context, taskID, tagID int64) error
	UnrelateAllForTag(ctx context.Context, tagID int64) error

	Ping(ctx context.Context) error
	Close() error
}

// Option configures a store.
type Option func(*options)

type options struct {
	now func() time.Time
}

// WithClock overrides the clock used to stamp created_at.
func WithClock(now func() time.Time) Option {
	return func(o *options) {
		o.now = now
	}
}

func buildOptions(opts []Option) options {
	o := options{now: time.Now}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

var (
	_ Store = (*SQLStore)(nil)
	_ Store = (*MemoryStore)(nil)
)
