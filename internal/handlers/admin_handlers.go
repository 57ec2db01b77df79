package handlers

import (
	"net/http"

	"bayou-blog/internal/database"
	"bayou-blog/internal/engine/actors"
	"bayou-blog/internal/middleware"
	"bayou-blog/internal/models"
	"bayou-blog/internal/utils"
)

// requireAdmin gates a handler on the resolved identity's role. Key-granted
// admins (including synthetic ones with no account) pass; everyone else is
// rejected with 401/403.
func (s *Server) requireAdmin(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		identity := middleware.GetIdentityFromContext(r.Context())
		if identity.IsAnonymous() {
			s.respondError(w, utils.NewUnauthorizedError())
			return
		}
		if identity.Role != models.RoleAdmin {
			s.respondError(w, utils.NewForbiddenError())
			return
		}
		next(w, r)
	}
}

// HandleAdminUsers lists every account
func (s *Server) HandleAdminUsers() http.HandlerFunc {
	return s.requireAdmin(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}
		s.askAndRespond(w, s.Engine.GetUserSupervisor(), &actors.ListUsersMsg{})
	})
}

// HandleAdminPosts lists every post, newest first
func (s *Server) HandleAdminPosts() http.HandlerFunc {
	return s.requireAdmin(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}
		s.askAndRespond(w, s.Engine.GetPostActor(), &actors.ListPostsMsg{
			Query: database.ListQuery{Limit: 1000},
		})
	})
}

// HandleAdminDeleteUser removes an account by id
func (s *Server) HandleAdminDeleteUser() http.HandlerFunc {
	return s.requireAdmin(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodDelete {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}

		userID, appErr := parseIDParam(r, "id")
		if appErr != nil {
			s.respondError(w, appErr)
			return
		}

		result, askErr := s.ask(s.Engine.GetUserSupervisor(), &actors.DeleteUserMsg{UserID: userID})
		if askErr != nil {
			s.respondError(w, askErr)
			return
		}
		if appErr, ok := result.(*utils.AppError); ok {
			s.respondError(w, appErr)
			return
		}
		s.respond(w, map[string]string{"message": "Deleted"})
	})
}

// HandleAdminDeletePost removes a post by id. The delete goes through the
// post actor with the caller's admin identity, so it follows the same
// authorization and cascade path as an owner delete.
func (s *Server) HandleAdminDeletePost() http.HandlerFunc {
	return s.requireAdmin(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodDelete {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}

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
	})
}
