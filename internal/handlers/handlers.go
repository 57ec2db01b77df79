package handlers

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"bayou-blog/internal/database"
	"bayou-blog/internal/engine"
	"bayou-blog/internal/utils"

	"github.com/asynkron/protoactor-go/actor"
)

// Server holds all server dependencies, including the actor system and engine
type Server struct {
	System         *actor.ActorSystem
	Context        *actor.RootContext
	Engine         *engine.Engine
	Metrics        *utils.MetricsCollector
	Store          database.Store
	RequestTimeout time.Duration
}

// NewServer creates a new Server instance with the given components
func NewServer(
	system *actor.ActorSystem,
	context *actor.RootContext,
	eng *engine.Engine,
	metrics *utils.MetricsCollector,
	store database.Store,
) *Server {
	return &Server{
		System:         system,
		Context:        context,
		Engine:         eng,
		Metrics:        metrics,
		Store:          store,
		RequestTimeout: 5 * time.Second, // Default timeout for actor requests
	}
}

// ask sends a message to an actor and waits for the reply. A timeout means
// the backing service is unavailable, never a silent success.
func (s *Server) ask(pid *actor.PID, msg interface{}) (interface{}, *utils.AppError) {
	future := s.Context.RequestFuture(pid, msg, s.RequestTimeout)
	result, err := future.Result()
	if err != nil {
		return nil, utils.NewUnavailableError("actor request", err)
	}
	return result, nil
}

// respond writes the actor's reply: AppErrors map to their HTTP status and
// a JSON message body, everything else is encoded as-is.
func (s *Server) respond(w http.ResponseWriter, result interface{}) {
	s.Metrics.IncrementRequests()

	if appErr, ok := result.(*utils.AppError); ok {
		s.respondError(w, appErr)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(result); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}

func (s *Server) respondError(w http.ResponseWriter, appErr *utils.AppError) {
	s.Metrics.IncrementErrors()
	if appErr.Code == utils.ErrUnavailable {
		slog.Error("request failed", "code", appErr.Code, "error", appErr.Error())
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(utils.AppErrorToHTTPStatus(appErr.Code))
	json.NewEncoder(w).Encode(map[string]string{"message": appErr.Message})
}

// askAndRespond is the common handler tail: forward to the actor, write
// whatever comes back.
func (s *Server) askAndRespond(w http.ResponseWriter, pid *actor.PID, msg interface{}) {
	result, appErr := s.ask(pid, msg)
	if appErr != nil {
		s.respondError(w, appErr)
		return
	}
	s.respond(w, result)
}
