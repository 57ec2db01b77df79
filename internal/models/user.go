package models

import (
	"time"

	"github.com/google/uuid"
)

// Role determines what a user is allowed to do beyond ownership.
type Role string

const (
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
)

type User struct {
	ID             uuid.UUID `json:"id" bson:"_id"`
	Username       string    `json:"username" bson:"username"`
	Email          string    `json:"email" bson:"email"`
	HashedPassword string    `json:"-" bson:"hashedPassword"`
	Bio            string    `json:"bio" bson:"bio"`
	Role           Role      `json:"role" bson:"role"`
	CreatedAt      time.Time `json:"createdAt" bson:"createdAt"`
	UpdatedAt      time.Time `json:"updatedAt" bson:"updatedAt"`
}

// ProfileStats aggregates counters across all posts a user authored.
type ProfileStats struct {
	TotalPosts    int `json:"totalPosts"`
	TotalViews    int `json:"totalViews"`
	TotalLikes    int `json:"totalLikes"`
	TotalComments int `json:"totalComments"`
}
