package handlers

import (
	"encoding/json"
	"net/http"

	"bayou-blog/internal/engine/actors"
	"bayou-blog/internal/middleware"
	"bayou-blog/internal/utils"
)

// RegisterUserRequest represents a request to register a new user
type RegisterUserRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
	AdminKey string `json:"adminKey,omitempty"`
}

// LoginRequest represents a request to log in a user
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// HandleUserRegistration handles requests to register a new user
func (s *Server) HandleUserRegistration() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}

		var req RegisterUserRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			s.respondError(w, utils.NewInvalidInputError("Invalid request"))
			return
		}

		s.askAndRespond(w, s.Engine.GetUserSupervisor(), &actors.RegisterUserMsg{
			Username: req.Username,
			Email:    req.Email,
			Password: req.Password,
			AdminKey: req.AdminKey,
		})
	}
}

// HandleUserLogin handles requests to log in a user
func (s *Server) HandleUserLogin() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}

		var req LoginRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			s.respondError(w, utils.NewInvalidInputError("Invalid request"))
			return
		}

		s.askAndRespond(w, s.Engine.GetUserSupervisor(), &actors.LoginMsg{
			Email:    req.Email,
			Password: req.Password,
		})
	}
}

// HandleUserProfile returns the caller's account, posts and stats
func (s *Server) HandleUserProfile() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}

		identity := middleware.GetIdentityFromContext(r.Context())
		if identity.IsAnonymous() || identity.UserID == nil {
			s.respondError(w, utils.NewUnauthorizedError())
			return
		}

		s.askAndRespond(w, s.Engine.GetUserSupervisor(), &actors.GetProfileMsg{
			UserID: *identity.UserID,
		})
	}
}
