package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"bayou-blog/internal/database"
	"bayou-blog/internal/engine/actors"
	"bayou-blog/internal/middleware"
	"bayou-blog/internal/models"
	"bayou-blog/internal/utils"

	"github.com/google/uuid"
	"github.com/lithammer/shortuuid/v4"
)

// viewerCookieName identifies a client for view dedup; it is deliberately
// not tied to user identity so anonymous readers are deduped too.
const (
	viewerCookieName   = "viewer_token"
	viewerCookieMaxAge = 30 * 24 * time.Hour
)

// CreatePostRequest represents a request to create a new post
type CreatePostRequest struct {
	Title      string   `json:"title"`
	Content    string   `json:"content"`
	Categories []string `json:"categories"`
	Slug       string   `json:"slug,omitempty"`
}

// UpdatePostRequest represents a partial update; absent fields stay as
// they are.
type UpdatePostRequest struct {
	Title      *string   `json:"title,omitempty"`
	Content    *string   `json:"content,omitempty"`
	Categories *[]string `json:"categories,omitempty"`
	Slug       *string   `json:"slug,omitempty"`
}

// LikeRequest identifies the post whose like set to toggle.
type LikeRequest struct {
	PostID string `json:"postId"`
}

// ViewRequest identifies the post being viewed.
type ViewRequest struct {
	PostID string `json:"postId"`
}

// HandleHealth handles health check requests
func (s *Server) HandleHealth() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]interface{}{
			"status":      "healthy",
			"metrics":     s.Metrics.Snapshot(),
			"server_time": time.Now(),
		})
	}
}

// HandlePost handles create/read/update/delete on a single post
func (s *Server) HandlePost() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodPost:
			s.handleCreatePost(w, r)
		case http.MethodGet:
			s.handleGetPost(w, r)
		case http.MethodPut:
			s.handleUpdatePost(w, r)
		case http.MethodDelete:
			s.handleDeletePost(w, r)
		default:
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		}
	}
}

func (s *Server) handleCreatePost(w http.ResponseWriter, r *http.Request) {
	var req CreatePostRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.respondError(w, utils.NewInvalidInputError("Invalid request"))
		return
	}

	s.askAndRespond(w, s.Engine.GetPostActor(), &actors.CreatePostMsg{
		Identity:   middleware.GetIdentityFromContext(r.Context()),
		Title:      req.Title,
		Content:    req.Content,
		Categories: req.Categories,
		Slug:       req.Slug,
	})
}

func (s *Server) handleGetPost(w http.ResponseWriter, r *http.Request) {
	postID, appErr := parseIDParam(r, "id")
	if appErr != nil {
		s.respondError(w, appErr)
		return
	}

	// Reading never bumps the view counter; that moves only through
	// HandleView.
	s.askAndRespond(w, s.Engine.GetPostActor(), &actors.GetPostMsg{PostID: postID})
}

func (s *Server) handleUpdatePost(w http.ResponseWriter, r *http.Request) {
	postID, appErr := parseIDParam(r, "id")
	if appErr != nil {
		s.respondError(w, appErr)
		return
	}

	var req UpdatePostRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.respondError(w, utils.NewInvalidInputError("Invalid request"))
		return
	}

	s.askAndRespond(w, s.Engine.GetPostActor(), &actors.UpdatePostMsg{
		Identity: middleware.GetIdentityFromContext(r.Context()),
		PostID:   postID,
		Patch: models.PostPatch{
			Title:      req.Title,
			Content:    req.Content,
			Categories: req.Categories,
			Slug:       req.Slug,
		},
	})
}

func (s *Server) handleDeletePost(w http.ResponseWriter, r *http.Request) {
	postID, appErr := parseIDParam(r, "id")
	if appErr != nil {
		s.respondError(w, appErr)
		return
	}

	result, askErr := s.ask(s.Engine.GetPostActor(), &actors.DeletePostMsg{
		Identity: middleware.GetIdentityFromContext(r.Context()),
		PostID:   postID,
	})
	if askErr != nil {
		s.respondError(w, askErr)
		return
	}
	if appErr, ok := result.(*utils.AppError); ok {
		s.respondError(w, appErr)
		return
	}
	s.respond(w, map[string]string{"message": "Deleted"})
}

// HandlePosts handles the listing/search endpoint
func (s *Server) HandlePosts() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}

		query := database.ListQuery{
			Search:   r.URL.Query().Get("q"),
			Category: r.URL.Query().Get("category"),
		}
		if page, err := strconv.Atoi(r.URL.Query().Get("page")); err == nil {
			query.Page = page
		}
		if limit, err := strconv.Atoi(r.URL.Query().Get("limit")); err == nil {
			query.Limit = limit
		}

		s.askAndRespond(w, s.Engine.GetPostActor(), &actors.ListPostsMsg{Query: query})
	}
}

// HandleLike toggles the caller's like on a post
func (s *Server) HandleLike() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}

		var req LikeRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			s.respondError(w, utils.NewInvalidInputError("Invalid request"))
			return
		}

		postID, err := uuid.Parse(req.PostID)
		if err != nil {
			s.respondError(w, utils.NewInvalidInputError("Invalid post ID"))
			return
		}

		s.askAndRespond(w, s.Engine.GetPostActor(), &actors.ToggleLikeMsg{
			Identity: middleware.GetIdentityFromContext(r.Context()),
			PostID:   postID,
		})
	}
}

// HandleView records one view, deduplicated per viewer token. The token
// cookie is set or refreshed here; whether an author should skip calling
// this for their own post is the client's decision.
func (s *Server) HandleView() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}

		var req ViewRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			s.respondError(w, utils.NewInvalidInputError("Invalid request"))
			return
		}

		postID, err := uuid.Parse(req.PostID)
		if err != nil {
			s.respondError(w, utils.NewInvalidInputError("Invalid post ID"))
			return
		}

		token := viewerToken(r)
		http.SetCookie(w, &http.Cookie{
			Name:     viewerCookieName,
			Value:    token,
			Path:     "/",
			MaxAge:   int(viewerCookieMaxAge.Seconds()),
			SameSite: http.SameSiteLaxMode,
		})

		s.askAndRespond(w, s.Engine.GetPostActor(), &actors.RecordViewMsg{
			ClientToken: token,
			PostID:      postID,
		})
	}
}

func viewerToken(r *http.Request) string {
	if cookie, err := r.Cookie(viewerCookieName); err == nil && cookie.Value != "" {
		return cookie.Value
	}
	return shortuuid.New()
}

func parseIDParam(r *http.Request, name string) (uuid.UUID, *utils.AppError) {
	raw := r.URL.Query().Get(name)
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, utils.NewInvalidInputError("Invalid " + name)
	}
	return id, nil
}
