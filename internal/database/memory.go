// internal/database/memory.go
package database

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"bayou-blog/internal/models"
	"bayou-blog/internal/utils"
)

// MemoryStore is a mutex-serialized Store used for local development and
// tests. Every mutation runs under the lock, which gives it the same
// effectively-atomic per-document behavior as the Mongo operators.
type MemoryStore struct {
	mu    sync.RWMutex
	users map[string]*models.User
	posts map[string]*models.Post
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		users: make(map[string]*models.User),
		posts: make(map[string]*models.Post),
	}
}

func (s *MemoryStore) Close(ctx context.Context) error {
	return nil
}

func (s *MemoryStore) SaveUser(ctx context.Context, user *models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, existing := range s.users {
		if existing.ID == user.ID {
			continue
		}
		if existing.Email == user.Email || existing.Username == user.Username {
			return utils.NewAppError(utils.ErrDuplicate, "User exists", nil)
		}
	}

	clone := *user
	s.users[user.ID.String()] = &clone
	return nil
}

func (s *MemoryStore) GetUser(ctx context.Context, id string) (*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if user, exists := s.users[id]; exists {
		clone := *user
		return &clone, nil
	}
	return nil, utils.NewNotFoundError("User")
}

func (s *MemoryStore) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	return s.findUser(func(u *models.User) bool { return u.Email == email })
}

func (s *MemoryStore) GetUserByUsername(ctx context.Context, username string) (*models.User, error) {
	return s.findUser(func(u *models.User) bool { return u.Username == username })
}

func (s *MemoryStore) findUser(match func(*models.User) bool) (*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, user := range s.users {
		if match(user) {
			clone := *user
			return &clone, nil
		}
	}
	return nil, utils.NewNotFoundError("User")
}

func (s *MemoryStore) GetAllUsers(ctx context.Context) ([]*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	users := make([]*models.User, 0, len(s.users))
	for _, user := range s.users {
		clone := *user
		users = append(users, &clone)
	}
	sort.Slice(users, func(i, j int) bool {
		return users[i].CreatedAt.Before(users[j].CreatedAt)
	})
	return users, nil
}

func (s *MemoryStore) DeleteUser(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.users[id]; !exists {
		return utils.NewNotFoundError("User")
	}
	delete(s.users, id)
	return nil
}

func (s *MemoryStore) CreatePost(ctx context.Context, post *models.Post) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.posts[post.ID.String()] = clonePost(post)
	return nil
}

func (s *MemoryStore) GetPost(ctx context.Context, id string) (*models.Post, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if post, exists := s.posts[id]; exists {
		return clonePost(post), nil
	}
	return nil, utils.NewNotFoundError("Post")
}

func (s *MemoryStore) ListPosts(ctx context.Context, q ListQuery) ([]*models.Post, int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	matched := []*models.Post{}
	search := strings.ToLower(q.Search)
	for _, post := range s.posts {
		if search != "" &&
			!strings.Contains(strings.ToLower(post.Title), search) &&
			!strings.Contains(strings.ToLower(post.Content), search) {
			continue
		}
		if q.Category != "" && !containsString(post.Categories, q.Category) {
			continue
		}
		matched = append(matched, clonePost(post))
	}

	sort.Slice(matched, func(i, j int) bool {
		return matched[i].CreatedAt.After(matched[j].CreatedAt)
	})

	total := len(matched)
	limit := q.Limit
	if limit <= 0 {
		limit = 10
	}
	page := q.Page
	if page <= 0 {
		page = 1
	}
	start := (page - 1) * limit
	if start >= total {
		return []*models.Post{}, total, nil
	}
	end := start + limit
	if end > total {
		end = total
	}
	return matched[start:end], total, nil
}

func (s *MemoryStore) PostsByAuthor(ctx context.Context, authorID string) ([]*models.Post, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	posts := []*models.Post{}
	for _, post := range s.posts {
		if post.AuthorID.String() == authorID {
			posts = append(posts, clonePost(post))
		}
	}
	sort.Slice(posts, func(i, j int) bool {
		return posts[i].CreatedAt.After(posts[j].CreatedAt)
	})
	return posts, nil
}

func (s *MemoryStore) SlugInUse(ctx context.Context, slug string, excludePostID string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for id, post := range s.posts {
		if id == excludePostID {
			continue
		}
		if post.Slug == slug {
			return true, nil
		}
	}
	return false, nil
}

func (s *MemoryStore) UpdatePost(ctx context.Context, id string, patch models.PostPatch) (*models.Post, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	post, exists := s.posts[id]
	if !exists {
		return nil, utils.NewNotFoundError("Post")
	}

	if patch.Title != nil {
		post.Title = *patch.Title
	}
	if patch.Content != nil {
		post.Content = *patch.Content
	}
	if patch.Categories != nil {
		post.Categories = append([]string{}, (*patch.Categories)...)
	}
	if patch.Slug != nil {
		post.Slug = *patch.Slug
	}
	now := time.Now()
	post.UpdatedAt = &now

	return clonePost(post), nil
}

func (s *MemoryStore) DeletePost(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.posts[id]; !exists {
		return utils.NewNotFoundError("Post")
	}
	delete(s.posts, id)
	return nil
}

func (s *MemoryStore) ToggleLike(ctx context.Context, postID string, userID string) (*models.LikeResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	post, exists := s.posts[postID]
	if !exists {
		return nil, utils.NewNotFoundError("Post")
	}

	for i, id := range post.Likes {
		if id == userID {
			post.Likes = append(post.Likes[:i], post.Likes[i+1:]...)
			return &models.LikeResult{LikeCount: len(post.Likes), Liked: false}, nil
		}
	}
	post.Likes = append(post.Likes, userID)
	return &models.LikeResult{LikeCount: len(post.Likes), Liked: true}, nil
}

func (s *MemoryStore) AddComment(ctx context.Context, postID string, comment *models.Comment) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	post, exists := s.posts[postID]
	if !exists {
		return utils.NewNotFoundError("Post")
	}
	post.Comments = append(post.Comments, *comment)
	return nil
}

func (s *MemoryStore) UpdateComment(ctx context.Context, postID string, commentID string, content string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	post, exists := s.posts[postID]
	if !exists {
		return utils.NewNotFoundError("Comment")
	}
	for i := range post.Comments {
		if post.Comments[i].ID.String() == commentID {
			post.Comments[i].Content = content
			return nil
		}
	}
	return utils.NewNotFoundError("Comment")
}

func (s *MemoryStore) RemoveComment(ctx context.Context, postID string, commentID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	post, exists := s.posts[postID]
	if !exists {
		return utils.NewNotFoundError("Post")
	}
	for i := range post.Comments {
		if post.Comments[i].ID.String() == commentID {
			post.Comments = append(post.Comments[:i], post.Comments[i+1:]...)
			return nil
		}
	}
	return utils.NewNotFoundError("Comment")
}

func (s *MemoryStore) IncrementViews(ctx context.Context, postID string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	post, exists := s.posts[postID]
	if !exists {
		return 0, utils.NewNotFoundError("Post")
	}
	post.Views++
	return post.Views, nil
}

func clonePost(post *models.Post) *models.Post {
	clone := *post
	clone.Categories = append([]string{}, post.Categories...)
	clone.Likes = append([]string{}, post.Likes...)
	clone.Comments = append([]models.Comment{}, post.Comments...)
	return &clone
}

func containsString(list []string, want string) bool {
	for _, s := range list {
		if s == want {
			return true
		}
	}
	return false
}
