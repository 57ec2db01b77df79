package models

import (
	"time"

	"github.com/google/uuid"
)

// Post is the aggregate root: it owns its comment sequence, its like set
// and its view counter, and is always persisted as one document.
type Post struct {
	ID         uuid.UUID  `json:"id"`
	Title      string     `json:"title"`
	Content    string     `json:"content"`
	Categories []string   `json:"categories"`
	Slug       string     `json:"slug,omitempty"`
	AuthorID   uuid.UUID  `json:"authorId"`
	AuthorName string     `json:"authorName"` // snapshot at creation time, never rewritten
	Likes      []string   `json:"likes"`      // user ids, no duplicates
	Comments   []Comment  `json:"comments"`   // insertion order = display order
	Views      int        `json:"views"`
	CreatedAt  time.Time  `json:"createdAt"`
	UpdatedAt  *time.Time `json:"updatedAt,omitempty"`
}

// Owner returns the normalized author id used for ownership checks.
func (p *Post) Owner() string {
	return p.AuthorID.String()
}

// LikedBy reports whether the given user id is in the like set.
func (p *Post) LikedBy(userID string) bool {
	for _, id := range p.Likes {
		if id == userID {
			return true
		}
	}
	return false
}

// FindComment returns the comment with the given id, or nil.
func (p *Post) FindComment(commentID uuid.UUID) *Comment {
	for i := range p.Comments {
		if p.Comments[i].ID == commentID {
			return &p.Comments[i]
		}
	}
	return nil
}

// PostPatch carries a partial update: nil fields are left untouched.
type PostPatch struct {
	Title      *string
	Content    *string
	Categories *[]string
	Slug       *string
}

// LikeResult is the outcome of a single like toggle.
type LikeResult struct {
	LikeCount int  `json:"likes"`
	Liked     bool `json:"liked"`
}
