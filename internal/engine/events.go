package engine

import (
	"context"
	"fmt"

	"inkwell/internal/engine/actors"
	"inkwell/internal/logging"
	"inkwell/internal/models"

	"github.com/google/uuid"
)

// Outbox collects events while an operation runs. It is drained only after
// the operation's writes have committed.
type Outbox struct {
	events []*actors.NotifyMsg
}

func (o *Outbox) Add(action models.Action, sender uuid.UUID, target models.Target) {
	o.events = append(o.events, &actors.NotifyMsg{Action: action, SenderID: sender, Target: target})
}

func (o *Outbox) Len() int { return len(o.events) }

// dispatch hands each event to the notification actor and waits for its reply.
// Failures are logged and counted; they never reach the caller.
func (e *Engine) dispatch(ctx context.Context, out *Outbox) {
	log := logging.Ctx(ctx)
	requestID := logging.RequestID(ctx)

	for _, msg := range out.events {
		msg.RequestID = requestID
		e.metrics.IncrementEngagement(msg.Action.String())

		res, err := e.system.Root.RequestFuture(e.notifier, msg, e.opts.NotifyTimeout).Result()
		if err != nil {
			log.Warn().Err(err).Str("action", msg.Action.String()).Stringer("target", msg.Target).
				Msg("Notification dispatch timed out")
			continue
		}

		result, ok := res.(*actors.NotifyResult)
		if !ok {
			log.Error().Str("type", fmt.Sprintf("%T", res)).Msg("Unexpected reply from notification actor")
			continue
		}
		switch {
		case result.Err != nil:
			log.Warn().Err(result.Err).Str("action", msg.Action.String()).Stringer("target", msg.Target).
				Msg("Notification not created")
		case result.Skipped:
			log.Debug().Str("action", msg.Action.String()).Msg("Notification skipped, no receiver")
		default:
			log.Debug().Stringer("notification", result.Notification.ID).Msg("Notification created")
		}
	}
	out.events = nil
}
