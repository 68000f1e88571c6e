package models

import "time"

type Task struct {
	ID        int64      `json:"id"`
	Content   string     `json:"content"`
	CreatedAt time.Time  `json:"created_at"`
	Deadline  *time.Time `json:"deadline,omitempty"`
	IsDone    bool       `json:"is_done"`
	Tags      []Tag      `json:"tags"`
}

// HasTag reports whether the tag with the given ID is attached to the task.
func (t *Task) HasTag(tagID int64) bool {
	for _, tag := range t.Tags {
		if tag.ID == tagID {
			return true
		}
	}
	return false
}
