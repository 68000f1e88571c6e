package firebase

import (
	"context"
	"fmt"

	"cloud.google.com/go/firestore"
	firebase "firebase.google.com/go/v4"
	"google.golang.org/api/iterator"

	"todo-manager/models"
	"todo-manager/utilities"
)

// ActivityLog appends mutation records to a Firestore collection.
type ActivityLog struct {
	client     *firestore.Client
	collection string
}

func NewActivityLog(ctx context.Context, app *firebase.App, collection string) (*ActivityLog, error) {
	client, err := app.Firestore(ctx)
	if err != nil {
		return nil, fmt.Errorf("error getting firestore client: %w", err)
	}
	return &ActivityLog{client: client, collection: collection}, nil
}

// Record stores entry. Failures are logged and otherwise ignored so that a
// Firestore outage never fails the request that produced the entry.
func (a *ActivityLog) Record(ctx context.Context, entry models.ActivityEntry) {
	docRef, _, err := a.client.Collection(a.collection).Add(ctx, entry)
	if err != nil {
		utilities.LogError(err, fmt.Sprintf("ActivityLog: failed to record %s", entry.Kind))
		return
	}
	utilities.LogDebug("ActivityLog: recorded %s as %s", entry.Kind, docRef.ID)
}

// Recent returns up to limit entries, newest first.
func (a *ActivityLog) Recent(ctx context.Context, limit int) ([]models.ActivityEntry, error) {
	iter := a.client.Collection(a.collection).
		OrderBy("timestamp", firestore.Desc).
		Limit(limit).
		Documents(ctx)
	defer iter.Stop()

	entries := []models.ActivityEntry{}
	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("error reading activity: %w", err)
		}
		var entry models.ActivityEntry
		if err := doc.DataTo(&entry); err != nil {
			return nil, fmt.Errorf("error decoding activity %s: %w", doc.Ref.ID, err)
		}
		entries = append(entries, entry)
	}
	return entries, nil
}

func (a *ActivityLog) Close() error {
	return a.client.Close()
}
