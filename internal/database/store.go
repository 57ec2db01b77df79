package database

import (
	"context"

	"bayou-blog/internal/models"
)

// ListQuery narrows and pages the post listing.
type ListQuery struct {
	Search   string // case-insensitive match against title or content
	Category string
	Page     int // 1-based
	Limit    int
}

// Store is the durable backend for users and post aggregates. A post and
// everything nested in it (comments, likes, views) live in one document;
// every mutating method below is a single atomic document operation so
// concurrent writers on the same post are never last-writer-wins.
type Store interface {
	Close(ctx context.Context) error

	// User methods
	SaveUser(ctx context.Context, user *models.User) error
	GetUser(ctx context.Context, id string) (*models.User, error)
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	GetUserByUsername(ctx context.Context, username string) (*models.User, error)
	GetAllUsers(ctx context.Context) ([]*models.User, error)
	DeleteUser(ctx context.Context, id string) error

	// Post aggregate methods
	CreatePost(ctx context.Context, post *models.Post) error
	GetPost(ctx context.Context, id string) (*models.Post, error)
	ListPosts(ctx context.Context, q ListQuery) ([]*models.Post, int, error)
	PostsByAuthor(ctx context.Context, authorID string) ([]*models.Post, error)
	SlugInUse(ctx context.Context, slug string, excludePostID string) (bool, error)
	UpdatePost(ctx context.Context, id string, patch models.PostPatch) (*models.Post, error)
	DeletePost(ctx context.Context, id string) error

	// Nested mutations, one conditional document update each
	ToggleLike(ctx context.Context, postID string, userID string) (*models.LikeResult, error)
	AddComment(ctx context.Context, postID string, comment *models.Comment) error
	UpdateComment(ctx context.Context, postID string, commentID string, content string) error
	RemoveComment(ctx context.Context, postID string, commentID string) error
	IncrementViews(ctx context.Context, postID string) (int, error)
}
