package handlers

import (
	"encoding/json"
	"net/http"

	"bayou-blog/internal/engine/actors"
	"bayou-blog/internal/middleware"
	"bayou-blog/internal/utils"

	"github.com/google/uuid"
)

// CreateCommentRequest represents a request to create a new comment
type CreateCommentRequest struct {
	PostID  string `json:"postId"`
	Content string `json:"content"`
}

// EditCommentRequest represents a request to edit an existing comment
type EditCommentRequest struct {
	PostID    string `json:"postId"`
	CommentID string `json:"commentId"`
	Content   string `json:"content"`
}

// DeleteCommentRequest identifies the comment to remove
type DeleteCommentRequest struct {
	PostID    string `json:"postId"`
	CommentID string `json:"commentId"`
}

// HandleComment handles comment create/edit/delete
func (s *Server) HandleComment() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		identity := middleware.GetIdentityFromContext(r.Context())

		switch r.Method {
		case http.MethodPost:
			var req CreateCommentRequest
			if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
				s.respondError(w, utils.NewInvalidInputError("Invalid request"))
				return
			}

			postID, err := uuid.Parse(req.PostID)
			if err != nil {
				s.respondError(w, utils.NewInvalidInputError("Invalid post ID"))
				return
			}

			s.askAndRespond(w, s.Engine.GetPostActor(), &actors.AddCommentMsg{
				Identity: identity,
				PostID:   postID,
				Content:  req.Content,
			})

		case http.MethodPut, http.MethodPatch:
			var req EditCommentRequest
			if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
				s.respondError(w, utils.NewInvalidInputError("Invalid request"))
				return
			}

			postID, commentID, appErr := parseCommentIDs(req.PostID, req.CommentID)
			if appErr != nil {
				s.respondError(w, appErr)
				return
			}

			s.askAndRespond(w, s.Engine.GetPostActor(), &actors.EditCommentMsg{
				Identity:  identity,
				PostID:    postID,
				CommentID: commentID,
				Content:   req.Content,
			})

		case http.MethodDelete:
			var req DeleteCommentRequest
			if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
				s.respondError(w, utils.NewInvalidInputError("Invalid request"))
				return
			}

			postID, commentID, appErr := parseCommentIDs(req.PostID, req.CommentID)
			if appErr != nil {
				s.respondError(w, appErr)
				return
			}

			result, askErr := s.ask(s.Engine.GetPostActor(), &actors.DeleteCommentMsg{
				Identity:  identity,
				PostID:    postID,
				CommentID: commentID,
			})
			if askErr != nil {
				s.respondError(w, askErr)
				return
			}
			if appErr, ok := result.(*utils.AppError); ok {
				s.respondError(w, appErr)
				return
			}
			s.respond(w, map[string]string{"message": "Comment deleted"})

		default:
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		}
	}
}

// parseCommentIDs validates both ids up front so a malformed id never
// reaches the store.
func parseCommentIDs(rawPostID, rawCommentID string) (uuid.UUID, uuid.UUID, *utils.AppError) {
	postID, err := uuid.Parse(rawPostID)
	if err != nil {
		return uuid.Nil, uuid.Nil, utils.NewInvalidInputError("Invalid post ID")
	}
	commentID, err := uuid.Parse(rawCommentID)
	if err != nil {
		return uuid.Nil, uuid.Nil, utils.NewInvalidInputError("Invalid comment ID")
	}
	return postID, commentID, nil
}
