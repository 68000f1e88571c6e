package models

// TagNameMaxLength is the longest tag name accepted, counted in characters.
const TagNameMaxLength = 50

type Tag struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}
