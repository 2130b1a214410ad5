// Package engine holds the engagement, feed and moderation rules. Handlers call
// it directly; side effects that must not fail a request go through the
// notification actor.
package engine

import (
	"context"
	"time"

	"inkwell/internal/authz"
	"inkwell/internal/database"
	"inkwell/internal/engine/actors"
	"inkwell/internal/models"
	"inkwell/internal/utils"

	"github.com/asynkron/protoactor-go/actor"
	"github.com/google/uuid"
)

// Options carries the tunables the engine reads from config.
type Options struct {
	PageSize      int
	NotifyTimeout time.Duration
}

// Engine coordinates the store, the authorization policy and the notification actor.
type Engine struct {
	db       database.DBAdapter
	system   *actor.ActorSystem
	notifier *actor.PID
	enforcer *authz.Enforcer
	metrics  *utils.MetricsCollector
	opts     Options
}

func NewEngine(system *actor.ActorSystem, db database.DBAdapter, enforcer *authz.Enforcer, metrics *utils.MetricsCollector, opts Options) *Engine {
	if opts.PageSize <= 0 {
		opts.PageSize = 10
	}
	if opts.NotifyTimeout <= 0 {
		opts.NotifyTimeout = 2 * time.Second
	}

	props := actor.PropsFromProducer(func() actor.Actor {
		return actors.NewNotificationActor(db, metrics, opts.NotifyTimeout)
	})
	notifier := system.Root.Spawn(props)

	return &Engine{
		db:       db,
		system:   system,
		notifier: notifier,
		enforcer: enforcer,
		metrics:  metrics,
		opts:     opts,
	}
}

// Shutdown stops the notification actor.
func (e *Engine) Shutdown() {
	e.system.Root.Stop(e.notifier)
}

func (e *Engine) PageSize() int {
	return e.opts.PageSize
}

// PageResult is one page of an ordered listing.
type PageResult[T any] struct {
	Items []T
	Total int
	Page  int
	Size  int
}

func (p PageResult[T]) HasNext() bool { return p.Page*p.Size < p.Total }
func (p PageResult[T]) HasPrev() bool { return p.Page > 1 }

// pageWindow validates a 1-based page number. Page 1 is always valid, even when empty.
func (e *Engine) pageWindow(page int) (models.Page, error) {
	if page < 1 {
		return models.Page{}, utils.NewNotFoundError("Invalid page.")
	}
	return models.Page{Limit: e.opts.PageSize, Offset: (page - 1) * e.opts.PageSize}, nil
}

func checkPageInRange(page, total, size int) error {
	if page > 1 && (page-1)*size >= total {
		return utils.NewNotFoundError("Invalid page.")
	}
	return nil
}

func newID() uuid.UUID {
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.New()
	}
	return id
}

func (e *Engine) observe(operation string, start time.Time) {
	e.metrics.AddOperationLatency(operation, time.Since(start))
}

// currentUser loads the acting user; a vanished account is treated as unauthenticated.
func (e *Engine) currentUser(ctx context.Context, userID uuid.UUID) (*models.User, error) {
	user, err := e.db.GetUser(ctx, userID)
	if utils.IsErrorCode(err, utils.ErrNotFound) {
		return nil, utils.NewUnauthorizedError("Authentication credentials were not provided.")
	}
	return user, err
}
