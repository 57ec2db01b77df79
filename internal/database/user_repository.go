// internal/database/user_repository.go
package database

import (
	"context"
	"fmt"
	"time"

	"bayou-blog/internal/models"
	"bayou-blog/internal/utils"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// UserDocument represents the MongoDB schema for a user
type UserDocument struct {
	ID             string    `bson:"_id"`
	Username       string    `bson:"username"`
	Email          string    `bson:"email"`
	HashedPassword string    `bson:"hashedPassword"`
	Bio            string    `bson:"bio"`
	Role           string    `bson:"role"`
	CreatedAt      time.Time `bson:"createdAt"`
	UpdatedAt      time.Time `bson:"updatedAt"`
}

func userToDocument(user *models.User) *UserDocument {
	return &UserDocument{
		ID:             user.ID.String(),
		Username:       user.Username,
		Email:          user.Email,
		HashedPassword: user.HashedPassword,
		Bio:            user.Bio,
		Role:           string(user.Role),
		CreatedAt:      user.CreatedAt,
		UpdatedAt:      user.UpdatedAt,
	}
}

func documentToUser(doc *UserDocument) (*models.User, error) {
	userID, err := uuid.Parse(doc.ID)
	if err != nil {
		return nil, fmt.Errorf("invalid user ID in database: %v", err)
	}

	role := models.Role(doc.Role)
	if role != models.RoleAdmin {
		role = models.RoleUser
	}

	return &models.User{
		ID:             userID,
		Username:       doc.Username,
		Email:          doc.Email,
		HashedPassword: doc.HashedPassword,
		Bio:            doc.Bio,
		Role:           role,
		CreatedAt:      doc.CreatedAt,
		UpdatedAt:      doc.UpdatedAt,
	}, nil
}

// SaveUser creates or updates a user in MongoDB
func (m *MongoDB) SaveUser(ctx context.Context, user *models.User) error {
	opts := options.Update().SetUpsert(true)
	filter := bson.M{"_id": user.ID.String()}
	update := bson.M{"$set": userToDocument(user)}

	if _, err := m.Users.UpdateOne(ctx, filter, update, opts); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return utils.NewAppError(utils.ErrDuplicate, "User exists", err)
		}
		return utils.NewUnavailableError("save user", err)
	}
	return nil
}

// GetUser retrieves a user from MongoDB by their ID
func (m *MongoDB) GetUser(ctx context.Context, id string) (*models.User, error) {
	return m.findUser(ctx, bson.M{"_id": id})
}

// GetUserByEmail retrieves a user from MongoDB by their email address
func (m *MongoDB) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	return m.findUser(ctx, bson.M{"email": email})
}

// GetUserByUsername retrieves a user from MongoDB by their username
func (m *MongoDB) GetUserByUsername(ctx context.Context, username string) (*models.User, error) {
	return m.findUser(ctx, bson.M{"username": username})
}

func (m *MongoDB) findUser(ctx context.Context, filter bson.M) (*models.User, error) {
	var doc UserDocument

	err := m.Users.FindOne(ctx, filter).Decode(&doc)
	if err == mongo.ErrNoDocuments {
		return nil, utils.NewNotFoundError("User")
	}
	if err != nil {
		return nil, utils.NewUnavailableError("get user", err)
	}

	return documentToUser(&doc)
}

// GetAllUsers returns every user, for the admin surface.
func (m *MongoDB) GetAllUsers(ctx context.Context) ([]*models.User, error) {
	cursor, err := m.Users.Find(ctx, bson.M{})
	if err != nil {
		return nil, utils.NewUnavailableError("list users", err)
	}
	defer cursor.Close(ctx)

	users := []*models.User{}
	for cursor.Next(ctx) {
		var doc UserDocument
		if err := cursor.Decode(&doc); err != nil {
			return nil, utils.NewUnavailableError("decode user", err)
		}
		user, err := documentToUser(&doc)
		if err != nil {
			return nil, err
		}
		users = append(users, user)
	}
	if err := cursor.Err(); err != nil {
		return nil, utils.NewUnavailableError("iterate users", err)
	}
	return users, nil
}

// DeleteUser removes a user account.
func (m *MongoDB) DeleteUser(ctx context.Context, id string) error {
	result, err := m.Users.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return utils.NewUnavailableError("delete user", err)
	}
	if result.DeletedCount == 0 {
		return utils.NewNotFoundError("User")
	}
	return nil
}
