package actors

import (
	"crypto/subtle"
	"log/slog"
	"strings"
	"time"

	stdctx "context"

	"bayou-blog/internal/api"
	"bayou-blog/internal/auth"
	"bayou-blog/internal/config"
	"bayou-blog/internal/database"
	"bayou-blog/internal/models"
	"bayou-blog/internal/utils"

	"github.com/asynkron/protoactor-go/actor"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

const minPasswordLength = 5

// Message types for account operations
type (
	RegisterUserMsg struct {
		Username string
		Email    string
		Password string
		// AdminKey, when it matches the configured secret, grants the new
		// account the admin role at creation time.
		AdminKey string
	}

	LoginMsg struct {
		Email    string
		Password string
	}

	GetProfileMsg struct {
		UserID uuid.UUID
	}

	ListUsersMsg struct{}

	DeleteUserMsg struct {
		UserID uuid.UUID
	}
)

// UserSupervisor owns all account operations against the store.
type UserSupervisor struct {
	store   database.Store
	authCfg *config.AuthConfig
	metrics *utils.MetricsCollector
}

func NewUserSupervisor(store database.Store, authCfg *config.AuthConfig, metrics *utils.MetricsCollector) actor.Actor {
	return &UserSupervisor{
		store:   store,
		authCfg: authCfg,
		metrics: metrics,
	}
}

func (s *UserSupervisor) Receive(context actor.Context) {
	switch msg := context.Message().(type) {
	case *actor.Started:
		slog.Info("UserSupervisor started")
	case *RegisterUserMsg:
		s.handleRegister(context, msg)
	case *LoginMsg:
		s.handleLogin(context, msg)
	case *GetProfileMsg:
		s.handleGetProfile(context, msg)
	case *ListUsersMsg:
		s.handleListUsers(context)
	case *DeleteUserMsg:
		s.handleDeleteUser(context, msg)
	}
}

func (s *UserSupervisor) handleRegister(context actor.Context, msg *RegisterUserMsg) {
	startTime := time.Now()
	ctx := stdctx.Background()

	username := strings.TrimSpace(msg.Username)
	email := strings.ToLower(strings.TrimSpace(msg.Email))

	if username == "" || email == "" || msg.Password == "" {
		context.Respond(utils.NewInvalidInputError("Missing fields"))
		return
	}
	if len(msg.Password) < minPasswordLength {
		context.Respond(utils.NewInvalidInputError("Password must be at least 5 characters"))
		return
	}

	// Pre-check both unique fields; the store's unique indexes still catch
	// the registration race.
	if _, err := s.store.GetUserByEmail(ctx, email); err == nil {
		context.Respond(utils.NewAppError(utils.ErrDuplicate, "User exists", nil))
		return
	}
	if _, err := s.store.GetUserByUsername(ctx, username); err == nil {
		context.Respond(utils.NewAppError(utils.ErrDuplicate, "User exists", nil))
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(msg.Password), bcrypt.DefaultCost)
	if err != nil {
		context.Respond(utils.NewUnavailableError("register", err))
		return
	}

	// Only a shared key matching the configured secret mints an admin.
	role := models.RoleUser
	if s.authCfg.AdminKey != "" && msg.AdminKey != "" &&
		subtle.ConstantTimeCompare([]byte(msg.AdminKey), []byte(s.authCfg.AdminKey)) == 1 {
		role = models.RoleAdmin
	}

	now := time.Now()
	user := &models.User{
		ID:             uuid.New(),
		Username:       username,
		Email:          email,
		HashedPassword: string(hash),
		Role:           role,
		CreatedAt:      now,
		UpdatedAt:      now,
	}

	if err := s.store.SaveUser(ctx, user); err != nil {
		context.Respond(asAppError(err, "register"))
		return
	}

	token, err := auth.GenerateToken(s.authCfg.JWTSecret, user.ID)
	if err != nil {
		context.Respond(utils.NewUnavailableError("register", err))
		return
	}

	slog.Info("user registered", "userId", user.ID, "role", user.Role)
	s.metrics.AddOperationLatency("register_user", time.Since(startTime))
	context.Respond(&api.AuthResponse{Token: token, User: api.NewPublicUser(user)})
}

func (s *UserSupervisor) handleLogin(context actor.Context, msg *LoginMsg) {
	startTime := time.Now()
	ctx := stdctx.Background()

	email := strings.ToLower(strings.TrimSpace(msg.Email))
	if email == "" || msg.Password == "" {
		context.Respond(utils.NewInvalidInputError("Missing fields"))
		return
	}

	// The same generic failure for a missing account and a bad password.
	user, err := s.store.GetUserByEmail(ctx, email)
	if err != nil {
		if utils.IsErrorCode(err, utils.ErrNotFound) {
			context.Respond(utils.NewUnauthorizedError())
			return
		}
		context.Respond(asAppError(err, "login"))
		return
	}

	if bcrypt.CompareHashAndPassword([]byte(user.HashedPassword), []byte(msg.Password)) != nil {
		context.Respond(utils.NewUnauthorizedError())
		return
	}

	token, err := auth.GenerateToken(s.authCfg.JWTSecret, user.ID)
	if err != nil {
		context.Respond(utils.NewUnavailableError("login", err))
		return
	}

	s.metrics.AddOperationLatency("login_user", time.Since(startTime))
	context.Respond(&api.AuthResponse{Token: token, User: api.NewPublicUser(user)})
}

func (s *UserSupervisor) handleGetProfile(context actor.Context, msg *GetProfileMsg) {
	startTime := time.Now()
	ctx := stdctx.Background()

	user, err := s.store.GetUser(ctx, msg.UserID.String())
	if err != nil {
		context.Respond(asAppError(err, "profile"))
		return
	}

	posts, err := s.store.PostsByAuthor(ctx, user.ID.String())
	if err != nil {
		context.Respond(asAppError(err, "profile"))
		return
	}

	stats := models.ProfileStats{TotalPosts: len(posts)}
	for _, post := range posts {
		stats.TotalViews += post.Views
		stats.TotalLikes += len(post.Likes)
		stats.TotalComments += len(post.Comments)
	}

	s.metrics.AddOperationLatency("get_profile", time.Since(startTime))
	context.Respond(&api.ProfileResponse{
		User:  api.NewPublicUser(user),
		Posts: posts,
		Stats: stats,
	})
}

func (s *UserSupervisor) handleListUsers(context actor.Context) {
	users, err := s.store.GetAllUsers(stdctx.Background())
	if err != nil {
		context.Respond(asAppError(err, "list users"))
		return
	}

	public := make([]api.PublicUser, 0, len(users))
	for _, user := range users {
		public = append(public, api.NewPublicUser(user))
	}
	context.Respond(public)
}

func (s *UserSupervisor) handleDeleteUser(context actor.Context, msg *DeleteUserMsg) {
	if err := s.store.DeleteUser(stdctx.Background(), msg.UserID.String()); err != nil {
		context.Respond(asAppError(err, "delete user"))
		return
	}
	slog.Info("user deleted", "userId", msg.UserID)
	context.Respond(true)
}
