package models

import (
	"time"

	"github.com/google/uuid"
)

// Comment lives embedded in its parent post document. AuthorID is fixed at
// creation; only Content may change afterwards.
type Comment struct {
	ID         uuid.UUID `json:"id" bson:"_id"`
	AuthorID   uuid.UUID `json:"authorId" bson:"authorId"`
	AuthorName string    `json:"authorName" bson:"authorName"` // snapshot at creation time
	Content    string    `json:"content" bson:"content"`
	CreatedAt  time.Time `json:"createdAt" bson:"createdAt"`
}

// Owner returns the normalized author id used for ownership checks.
func (c *Comment) Owner() string {
	return c.AuthorID.String()
}
