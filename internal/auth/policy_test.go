package auth

import (
	"testing"

	"bayou-blog/internal/models"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestCanPerform(t *testing.T) {
	ownerID := uuid.New()
	otherID := uuid.New()
	adminID := uuid.New()

	post := &models.Post{ID: uuid.New(), AuthorID: ownerID}
	comment := &models.Comment{ID: uuid.New(), AuthorID: ownerID}

	owner := models.Identity{Kind: models.IdentityAuthenticated, UserID: &ownerID, Role: models.RoleUser}
	other := models.Identity{Kind: models.IdentityAuthenticated, UserID: &otherID, Role: models.RoleUser}
	admin := models.Identity{Kind: models.IdentityAuthenticated, UserID: &adminID, Role: models.RoleAdmin}
	keyAdmin := models.Identity{Kind: models.IdentityAdminByKey, UserID: nil, Role: models.RoleAdmin}

	tests := []struct {
		name     string
		identity models.Identity
		entity   models.Ownable
		want     bool
	}{
		{"owner may update own post", owner, post, true},
		{"non-owner may not update post", other, post, false},
		{"admin may update any post", admin, post, true},
		{"key admin may update any post", keyAdmin, post, true},
		{"anonymous may not update", models.Anonymous(), post, false},
		{"owner may update own comment", owner, comment, true},
		{"non-owner may not update comment", other, comment, false},
		{"admin may update any comment", admin, comment, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, CanPerform(tt.identity, models.ActionUpdate, tt.entity))
			assert.Equal(t, tt.want, CanPerform(tt.identity, models.ActionDelete, tt.entity))
		})
	}
}

func TestCanPerformSyntheticAdminOwnsNothing(t *testing.T) {
	// A key-granted admin without a backing account passes the admin gate,
	// but demoted to a plain user it could never satisfy ownership.
	synthetic := models.Identity{Kind: models.IdentityAdminByKey, UserID: nil, Role: models.RoleUser}

	post := &models.Post{ID: uuid.New(), AuthorID: uuid.New()}
	assert.False(t, CanPerform(synthetic, models.ActionDelete, post))
}

func TestCanPerformZeroOwner(t *testing.T) {
	// A post with an unset author id matches no real user.
	userID := uuid.New()
	identity := models.Identity{Kind: models.IdentityAuthenticated, UserID: &userID, Role: models.RoleUser}

	post := &models.Post{ID: uuid.New()}
	assert.False(t, CanPerform(identity, models.ActionUpdate, post))
}
