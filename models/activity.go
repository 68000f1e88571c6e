package models

import "time"

// Activity kinds recorded for every successful mutation.
const (
	ActivityTaskCreated  = "task_created"
	ActivityTaskToggled  = "task_toggled"
	ActivityTaskTagged   = "task_tagged"
	ActivityTaskUntagged = "task_untagged"
	ActivityTaskDeleted  = "task_deleted"
	ActivityTagCreated   = "tag_created"
	ActivityTagRenamed   = "tag_renamed"
	ActivityTagDeleted   = "tag_deleted"
)

// ActivityEntry is one mutation as stored in the activity collection.
type ActivityEntry struct {
	CallerUID string    `json:"caller_uid" firestore:"caller_uid"`
	Kind      string    `json:"kind" firestore:"kind"`
	TaskID    int64     `json:"task_id,omitempty" firestore:"task_id,omitempty"`
	TagID     int64     `json:"tag_id,omitempty" firestore:"tag_id,omitempty"`
	Detail    string    `json:"detail,omitempty" firestore:"detail,omitempty"`
	Timestamp time.Time `json:"timestamp" firestore:"timestamp"`
}
