package actors

import (
	"context"
	"errors"
	"fmt"
	"time"

	"inkwell/internal/logging"
	"inkwell/internal/models"
	"inkwell/internal/utils"

	"github.com/asynkron/protoactor-go/actor"
	"github.com/google/uuid"
	"github.com/sony/gobreaker/v2"
)

// NotificationSource is the slice of the store the dispatcher needs to derive
// receivers and persist notifications.
type NotificationSource interface {
	GetArticle(ctx context.Context, id uuid.UUID) (*models.Article, error)
	GetComment(ctx context.Context, id uuid.UUID) (*models.Comment, error)
	GetUser(ctx context.Context, id uuid.UUID) (*models.User, error)
	CreateNotification(ctx context.Context, n *models.Notification) error
}

// NotifyMsg is a committed engagement event waiting to become a notification.
type NotifyMsg struct {
	Action    models.Action
	SenderID  uuid.UUID
	Target    models.Target
	RequestID string
}

// NotifyResult is the actor's reply. Exactly one of Notification, Skipped or Err is meaningful.
type NotifyResult struct {
	Notification *models.Notification
	Skipped      bool
	Err          error
}

// errNoReceiver marks events whose receiver is the sender or no longer exists.
var errNoReceiver = errors.New("no receiver")

// NotificationActor turns engagement events into notification rows. Receiver and
// preview text are derived here from the target, never taken from the caller.
type NotificationActor struct {
	db      NotificationSource
	breaker *gobreaker.CircuitBreaker[struct{}]
	metrics *utils.MetricsCollector
	timeout time.Duration
}

func NewNotificationActor(db NotificationSource, metrics *utils.MetricsCollector, timeout time.Duration) actor.Actor {
	log := logging.Component("notifications")
	breaker := gobreaker.NewCircuitBreaker[struct{}](gobreaker.Settings{
		Name:        "notification-store",
		MaxRequests: 1,
		Interval:    time.Minute,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			log.Warn().Str("breaker", name).Str("from", from.String()).Str("to", to.String()).
				Msg("Notification breaker changed state")
		},
	})
	return &NotificationActor{
		db:      db,
		breaker: breaker,
		metrics: metrics,
		timeout: timeout,
	}
}

// Receive handles NotifyMsg and always responds, so callers waiting on a
// future are never left to time out because of a store failure.
func (a *NotificationActor) Receive(context actor.Context) {
	switch msg := context.Message().(type) {
	case *NotifyMsg:
		startTime := time.Now()
		result := a.handle(msg)
		a.metrics.AddOperationLatency("notify", time.Since(startTime))

		switch {
		case result.Skipped:
			a.metrics.IncrementNotification(msg.Action.String(), "skipped")
		case result.Err != nil:
			a.metrics.IncrementNotification(msg.Action.String(), "failed")
		default:
			a.metrics.IncrementNotification(msg.Action.String(), "created")
		}
		context.Respond(result)
	}
}

func (a *NotificationActor) handle(msg *NotifyMsg) *NotifyResult {
	ctx, cancel := contextWithTimeout(a.timeout)
	defer cancel()

	n, err := a.build(ctx, msg)
	if errors.Is(err, errNoReceiver) {
		return &NotifyResult{Skipped: true}
	}
	if err != nil {
		return &NotifyResult{Err: err}
	}

	_, err = a.breaker.Execute(func() (struct{}, error) {
		return struct{}{}, a.db.CreateNotification(ctx, n)
	})
	if err != nil {
		return &NotifyResult{Err: fmt.Errorf("store %s notification: %w", msg.Action, err)}
	}
	return &NotifyResult{Notification: n}
}

// build resolves the receiver and renders the preview text once, at write time.
func (a *NotificationActor) build(ctx context.Context, msg *NotifyMsg) (*models.Notification, error) {
	sender, err := a.db.GetUser(ctx, msg.SenderID)
	if err != nil {
		return nil, err
	}

	var (
		receiver uuid.UUID
		preview  string
	)
	switch msg.Action {
	case models.ActionLike, models.ActionSpecialLike:
		if msg.Target.Kind != models.TargetArticle {
			return nil, fmt.Errorf("%s needs an article target, got %s", msg.Action, msg.Target.Kind)
		}
		article, err := a.db.GetArticle(ctx, msg.Target.ID)
		if err != nil {
			return nil, err
		}
		receiver = article.UserID
		if msg.Action == models.ActionLike {
			preview = fmt.Sprintf("%s liked %s", sender.DisplayName, article.Title)
		} else {
			preview = fmt.Sprintf("%s Special liked %s", sender.DisplayName, article.Title)
		}

	case models.ActionComment, models.ActionReply:
		if msg.Target.Kind != models.TargetComment {
			return nil, fmt.Errorf("%s needs a comment target, got %s", msg.Action, msg.Target.Kind)
		}
		comment, err := a.db.GetComment(ctx, msg.Target.ID)
		if err != nil {
			return nil, err
		}
		if msg.Action == models.ActionComment {
			article, err := a.db.GetArticle(ctx, comment.ArticleID)
			if err != nil {
				return nil, err
			}
			receiver = article.UserID
			preview = fmt.Sprintf("%s commented on %s", sender.DisplayName, article.Title)
		} else {
			if comment.ParentID == nil {
				return nil, fmt.Errorf("reply %s has no parent", comment.ID)
			}
			parent, err := a.db.GetComment(ctx, *comment.ParentID)
			if err != nil {
				return nil, err
			}
			if parent.UserID == nil {
				return nil, errNoReceiver
			}
			receiver = *parent.UserID
			preview = fmt.Sprintf("%s replied to %s...", sender.DisplayName, truncateRunes(comment.Body, 20))
		}

	case models.ActionFollow:
		if msg.Target.Kind != models.TargetUser {
			return nil, fmt.Errorf("%s needs a user target, got %s", msg.Action, msg.Target.Kind)
		}
		receiver = msg.Target.ID
		preview = fmt.Sprintf("%s is now following you", sender.DisplayName)

	default:
		return nil, fmt.Errorf("unknown notification action %d", msg.Action)
	}

	if receiver == msg.SenderID {
		return nil, errNoReceiver
	}

	id, err := uuid.NewV7()
	if err != nil {
		return nil, err
	}
	return &models.Notification{
		ID:          id,
		Action:      msg.Action,
		SenderID:    msg.SenderID,
		ReceiverID:  receiver,
		Target:      msg.Target,
		PreviewText: truncateRunes(preview, models.MaxPreviewText),
		CreatedAt:   time.Now(),
	}, nil
}

func truncateRunes(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}

func contextWithTimeout(d time.Duration) (context.Context, context.CancelFunc) {
	if d <= 0 {
		d = 2 * time.Second
	}
	return context.WithTimeout(context.Background(), d)
}
