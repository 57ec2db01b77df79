package engine

import (
	"bayou-blog/internal/config"
	"bayou-blog/internal/database"
	"bayou-blog/internal/dedup"
	"bayou-blog/internal/engine/actors"
	"bayou-blog/internal/utils"

	"github.com/asynkron/protoactor-go/actor"
)

// Engine coordinates communication between actors
type Engine struct {
	postActor      *actor.PID
	userSupervisor *actor.PID
}

func NewEngine(system *actor.ActorSystem, store database.Store, views dedup.Deduplicator, authCfg *config.AuthConfig, metrics *utils.MetricsCollector) *Engine {
	context := system.Root

	// Spawn post actor
	postProps := actor.PropsFromProducer(func() actor.Actor {
		return actors.NewPostActor(store, views, metrics)
	})
	postPID := context.Spawn(postProps)

	// Spawn user supervisor
	userProps := actor.PropsFromProducer(func() actor.Actor {
		return actors.NewUserSupervisor(store, authCfg, metrics)
	})
	userPID := context.Spawn(userProps)

	return &Engine{
		postActor:      postPID,
		userSupervisor: userPID,
	}
}

// GetPostActor returns the PID of the post actor
func (e *Engine) GetPostActor() *actor.PID {
	return e.postActor
}

// GetUserSupervisor returns the PID of the user supervisor
func (e *Engine) GetUserSupervisor() *actor.PID {
	return e.userSupervisor
}
