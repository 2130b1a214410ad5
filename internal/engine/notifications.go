package engine

import (
	"context"

	"inkwell/internal/models"
	"inkwell/internal/utils"

	"github.com/google/uuid"
)

// Notifications lists the receiver's notifications, unseen first.
func (e *Engine) Notifications(ctx context.Context, receiverID uuid.UUID, page int) (PageResult[*models.NotificationView], error) {
	var result PageResult[*models.NotificationView]
	window, err := e.pageWindow(page)
	if err != nil {
		return result, err
	}
	items, total, err := e.db.ListNotifications(ctx, receiverID, window)
	if err != nil {
		return result, err
	}
	if err := checkPageInRange(page, total, window.Limit); err != nil {
		return result, err
	}
	return PageResult[*models.NotificationView]{Items: items, Total: total, Page: page, Size: window.Limit}, nil
}

func (e *Engine) MarkNotificationSeen(ctx context.Context, receiverID, id uuid.UUID) error {
	err := e.db.MarkNotificationSeen(ctx, id, receiverID)
	if utils.IsErrorCode(err, utils.ErrNotFound) {
		return utils.NewNotFoundError("Not found.")
	}
	return err
}

func (e *Engine) MarkAllNotificationsSeen(ctx context.Context, receiverID uuid.UUID) error {
	return e.db.MarkAllNotificationsSeen(ctx, receiverID)
}
