// internal/database/post_repository.go
package database

import (
	"context"
	"fmt"
	"time"

	"bayou-blog/internal/models"
	"bayou-blog/internal/utils"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// PostDocument represents the MongoDB schema for a post aggregate. Comments
// and likes are embedded so every mutation stays a single-document update.
type PostDocument struct {
	ID         string            `bson:"_id"`
	Title      string            `bson:"title"`
	Content    string            `bson:"content"`
	Categories []string          `bson:"categories"`
	Slug       string            `bson:"slug,omitempty"`
	AuthorID   string            `bson:"authorId"`
	AuthorName string            `bson:"authorName"`
	Likes      []string          `bson:"likes"`
	Comments   []CommentDocument `bson:"comments"`
	Views      int               `bson:"views"`
	CreatedAt  time.Time         `bson:"createdAt"`
	UpdatedAt  *time.Time        `bson:"updatedAt,omitempty"`
}

// CommentDocument represents one embedded comment. IDs are stored as
// strings, matching the rest of the schema.
type CommentDocument struct {
	ID         string    `bson:"_id"`
	AuthorID   string    `bson:"authorId"`
	AuthorName string    `bson:"authorName"`
	Content    string    `bson:"content"`
	CreatedAt  time.Time `bson:"createdAt"`
}

// CommentToDocument converts a Comment model to its embedded document form.
func CommentToDocument(c *models.Comment) *CommentDocument {
	return &CommentDocument{
		ID:         c.ID.String(),
		AuthorID:   c.AuthorID.String(),
		AuthorName: c.AuthorName,
		Content:    c.Content,
		CreatedAt:  c.CreatedAt,
	}
}

// DocumentToComment converts an embedded comment document to a model.
func DocumentToComment(doc *CommentDocument) (*models.Comment, error) {
	id, err := uuid.Parse(doc.ID)
	if err != nil {
		return nil, fmt.Errorf("invalid comment ID: %v", err)
	}
	authorID, err := uuid.Parse(doc.AuthorID)
	if err != nil {
		return nil, fmt.Errorf("invalid comment author ID: %v", err)
	}
	return &models.Comment{
		ID:         id,
		AuthorID:   authorID,
		AuthorName: doc.AuthorName,
		Content:    doc.Content,
		CreatedAt:  doc.CreatedAt,
	}, nil
}

// PostToDocument converts a Post model to a MongoDB document.
func PostToDocument(post *models.Post) *PostDocument {
	comments := make([]CommentDocument, len(post.Comments))
	for i := range post.Comments {
		comments[i] = *CommentToDocument(&post.Comments[i])
	}
	return &PostDocument{
		ID:         post.ID.String(),
		Title:      post.Title,
		Content:    post.Content,
		Categories: post.Categories,
		Slug:       post.Slug,
		AuthorID:   post.AuthorID.String(),
		AuthorName: post.AuthorName,
		Likes:      post.Likes,
		Comments:   comments,
		Views:      post.Views,
		CreatedAt:  post.CreatedAt,
		UpdatedAt:  post.UpdatedAt,
	}
}

// DocumentToPost converts a MongoDB document to a Post model.
func DocumentToPost(doc *PostDocument) (*models.Post, error) {
	id, err := uuid.Parse(doc.ID)
	if err != nil {
		return nil, fmt.Errorf("invalid post ID: %v", err)
	}

	authorID, err := uuid.Parse(doc.AuthorID)
	if err != nil {
		return nil, fmt.Errorf("invalid author ID: %v", err)
	}

	likes := doc.Likes
	if likes == nil {
		likes = []string{}
	}
	comments := make([]models.Comment, 0, len(doc.Comments))
	for i := range doc.Comments {
		c, err := DocumentToComment(&doc.Comments[i])
		if err != nil {
			return nil, err
		}
		comments = append(comments, *c)
	}
	categories := doc.Categories
	if categories == nil {
		categories = []string{}
	}

	return &models.Post{
		ID:         id,
		Title:      doc.Title,
		Content:    doc.Content,
		Categories: categories,
		Slug:       doc.Slug,
		AuthorID:   authorID,
		AuthorName: doc.AuthorName,
		Likes:      likes,
		Comments:   comments,
		Views:      doc.Views,
		CreatedAt:  doc.CreatedAt,
		UpdatedAt:  doc.UpdatedAt,
	}, nil
}

// CreatePost inserts a new post aggregate.
func (m *MongoDB) CreatePost(ctx context.Context, post *models.Post) error {
	if _, err := m.Posts.InsertOne(ctx, PostToDocument(post)); err != nil {
		return utils.NewUnavailableError("create post", err)
	}
	return nil
}

// GetPost retrieves a post by its ID.
func (m *MongoDB) GetPost(ctx context.Context, id string) (*models.Post, error) {
	var doc PostDocument

	err := m.Posts.FindOne(ctx, bson.M{"_id": id}).Decode(&doc)
	if err == mongo.ErrNoDocuments {
		return nil, utils.NewNotFoundError("Post")
	}
	if err != nil {
		return nil, utils.NewUnavailableError("get post", err)
	}

	return DocumentToPost(&doc)
}

// ListPosts returns a page of posts, newest first, plus the total count of
// posts matching the filter.
func (m *MongoDB) ListPosts(ctx context.Context, q ListQuery) ([]*models.Post, int, error) {
	filter := bson.M{}
	if q.Search != "" {
		pattern := primitive.Regex{Pattern: q.Search, Options: "i"}
		filter["$or"] = bson.A{
			bson.M{"title": pattern},
			bson.M{"content": pattern},
		}
	}
	if q.Category != "" {
		filter["categories"] = q.Category
	}

	limit := q.Limit
	if limit <= 0 {
		limit = 10
	}
	page := q.Page
	if page <= 0 {
		page = 1
	}

	opts := options.Find().
		SetSort(bson.D{{Key: "createdAt", Value: -1}}).
		SetSkip(int64((page - 1) * limit)).
		SetLimit(int64(limit))

	cursor, err := m.Posts.Find(ctx, filter, opts)
	if err != nil {
		return nil, 0, utils.NewUnavailableError("list posts", err)
	}
	defer cursor.Close(ctx)

	posts, err := decodePosts(ctx, cursor)
	if err != nil {
		return nil, 0, err
	}

	total, err := m.Posts.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, utils.NewUnavailableError("count posts", err)
	}

	return posts, int(total), nil
}

// PostsByAuthor returns all posts by one author, newest first.
func (m *MongoDB) PostsByAuthor(ctx context.Context, authorID string) ([]*models.Post, error) {
	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})
	cursor, err := m.Posts.Find(ctx, bson.M{"authorId": authorID}, opts)
	if err != nil {
		return nil, utils.NewUnavailableError("posts by author", err)
	}
	defer cursor.Close(ctx)

	return decodePosts(ctx, cursor)
}

// SlugInUse reports whether any other post already claims the slug.
func (m *MongoDB) SlugInUse(ctx context.Context, slug string, excludePostID string) (bool, error) {
	filter := bson.M{"slug": slug}
	if excludePostID != "" {
		filter["_id"] = bson.M{"$ne": excludePostID}
	}
	count, err := m.Posts.CountDocuments(ctx, filter)
	if err != nil {
		return false, utils.NewUnavailableError("slug check", err)
	}
	return count > 0, nil
}

// UpdatePost applies a partial patch in one $set and returns the updated
// post. Fields absent from the patch are left untouched.
func (m *MongoDB) UpdatePost(ctx context.Context, id string, patch models.PostPatch) (*models.Post, error) {
	set := bson.M{"updatedAt": time.Now()}
	unset := bson.M{}

	if patch.Title != nil {
		set["title"] = *patch.Title
	}
	if patch.Content != nil {
		set["content"] = *patch.Content
	}
	if patch.Categories != nil {
		set["categories"] = *patch.Categories
	}
	if patch.Slug != nil {
		if *patch.Slug == "" {
			// Explicit empty string clears the slug.
			unset["slug"] = ""
		} else {
			set["slug"] = *patch.Slug
		}
	}

	update := bson.M{"$set": set}
	if len(unset) > 0 {
		update["$unset"] = unset
	}

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var doc PostDocument
	err := m.Posts.FindOneAndUpdate(ctx, bson.M{"_id": id}, update, opts).Decode(&doc)
	if err == mongo.ErrNoDocuments {
		return nil, utils.NewNotFoundError("Post")
	}
	if err != nil {
		return nil, utils.NewUnavailableError("update post", err)
	}

	return DocumentToPost(&doc)
}

// DeletePost removes the aggregate; embedded comments and likes go with it.
func (m *MongoDB) DeletePost(ctx context.Context, id string) error {
	result, err := m.Posts.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return utils.NewUnavailableError("delete post", err)
	}
	if result.DeletedCount == 0 {
		return utils.NewNotFoundError("Post")
	}
	return nil
}

// ToggleLike flips the user's membership in the like set. Each branch is a
// conditional single-document update, so two concurrent toggles both land:
// the $pull only matches when the user is present, the $addToSet only adds
// when absent.
func (m *MongoDB) ToggleLike(ctx context.Context, postID string, userID string) (*models.LikeResult, error) {
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	// Already liked -> remove.
	var doc PostDocument
	err := m.Posts.FindOneAndUpdate(ctx,
		bson.M{"_id": postID, "likes": userID},
		bson.M{"$pull": bson.M{"likes": userID}},
		opts,
	).Decode(&doc)
	if err == nil {
		return &models.LikeResult{LikeCount: len(doc.Likes), Liked: false}, nil
	}
	if err != mongo.ErrNoDocuments {
		return nil, utils.NewUnavailableError("toggle like", err)
	}

	// Not liked yet -> add.
	err = m.Posts.FindOneAndUpdate(ctx,
		bson.M{"_id": postID},
		bson.M{"$addToSet": bson.M{"likes": userID}},
		opts,
	).Decode(&doc)
	if err == mongo.ErrNoDocuments {
		return nil, utils.NewNotFoundError("Post")
	}
	if err != nil {
		return nil, utils.NewUnavailableError("toggle like", err)
	}

	return &models.LikeResult{LikeCount: len(doc.Likes), Liked: true}, nil
}

// AddComment appends to the end of the comment sequence.
func (m *MongoDB) AddComment(ctx context.Context, postID string, comment *models.Comment) error {
	result, err := m.Posts.UpdateOne(ctx,
		bson.M{"_id": postID},
		bson.M{"$push": bson.M{"comments": CommentToDocument(comment)}},
	)
	if err != nil {
		return utils.NewUnavailableError("add comment", err)
	}
	if result.MatchedCount == 0 {
		return utils.NewNotFoundError("Post")
	}
	return nil
}

// UpdateComment replaces one comment's content via a positional $set.
func (m *MongoDB) UpdateComment(ctx context.Context, postID string, commentID string, content string) error {
	result, err := m.Posts.UpdateOne(ctx,
		bson.M{"_id": postID, "comments._id": commentID},
		bson.M{"$set": bson.M{"comments.$.content": content}},
	)
	if err != nil {
		return utils.NewUnavailableError("update comment", err)
	}
	if result.MatchedCount == 0 {
		return utils.NewNotFoundError("Comment")
	}
	return nil
}

// RemoveComment pulls one comment out of the sequence; the remaining
// comments keep their order.
func (m *MongoDB) RemoveComment(ctx context.Context, postID string, commentID string) error {
	result, err := m.Posts.UpdateOne(ctx,
		bson.M{"_id": postID},
		bson.M{"$pull": bson.M{"comments": bson.M{"_id": commentID}}},
	)
	if err != nil {
		return utils.NewUnavailableError("remove comment", err)
	}
	if result.MatchedCount == 0 {
		return utils.NewNotFoundError("Post")
	}
	if result.ModifiedCount == 0 {
		return utils.NewNotFoundError("Comment")
	}
	return nil
}

// IncrementViews bumps the monotonic view counter atomically and returns
// the new value.
func (m *MongoDB) IncrementViews(ctx context.Context, postID string) (int, error) {
	opts := options.FindOneAndUpdate().
		SetReturnDocument(options.After).
		SetProjection(bson.M{"views": 1})

	var doc PostDocument
	err := m.Posts.FindOneAndUpdate(ctx,
		bson.M{"_id": postID},
		bson.M{"$inc": bson.M{"views": 1}},
		opts,
	).Decode(&doc)
	if err == mongo.ErrNoDocuments {
		return 0, utils.NewNotFoundError("Post")
	}
	if err != nil {
		return 0, utils.NewUnavailableError("increment views", err)
	}

	return doc.Views, nil
}

func decodePosts(ctx context.Context, cursor *mongo.Cursor) ([]*models.Post, error) {
	posts := []*models.Post{}
	for cursor.Next(ctx) {
		var doc PostDocument
		if err := cursor.Decode(&doc); err != nil {
			return nil, utils.NewUnavailableError("decode post", err)
		}
		post, err := DocumentToPost(&doc)
		if err != nil {
			return nil, err
		}
		posts = append(posts, post)
	}
	if err := cursor.Err(); err != nil {
		return nil, utils.NewUnavailableError("iterate posts", err)
	}
	return posts, nil
}
