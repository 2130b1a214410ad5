package database

import (
	"context"
	"time"

	"inkwell/internal/models"
	"inkwell/internal/utils"

	"github.com/google/uuid"
)

type notificationRow struct {
	ID           uuid.UUID  `db:"id"`
	Action       int        `db:"action"`
	SenderID     uuid.UUID  `db:"sender_id"`
	ReceiverID   uuid.UUID  `db:"receiver_id"`
	ArticleID    *uuid.UUID `db:"article_id"`
	CommentID    *uuid.UUID `db:"comment_id"`
	TargetUserID *uuid.UUID `db:"target_user_id"`
	PreviewText  string     `db:"preview_text"`
	Seen         bool       `db:"seen"`
	CreatedAt    time.Time  `db:"created_at"`

	SenderDisplayName string `db:"sender_display_name"`
	SenderSlug        string `db:"sender_slug"`
	SenderAvatar      string `db:"sender_avatar"`
}

// --- Notification Methods ---

func (p *PostgresDB) CreateNotification(ctx context.Context, n *models.Notification) error {
	if n.CreatedAt.IsZero() {
		n.CreatedAt = time.Now()
	}
	article, comment, user := targetColumns(n.Target)
	_, err := p.DB.ExecContext(ctx, `
		INSERT INTO notifications (id, action, sender_id, receiver_id, article_id, comment_id, target_user_id, preview_text, seen, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		n.ID, int(n.Action), n.SenderID, n.ReceiverID, article, comment, user, n.PreviewText, n.Seen, n.CreatedAt)
	if err != nil {
		return utils.NewAppError(utils.ErrDatabase, "failed to insert notification", err)
	}
	return nil
}

// ListNotifications returns unseen notifications first, newest first within each group.
func (p *PostgresDB) ListNotifications(ctx context.Context, receiverID uuid.UUID, page models.Page) ([]*models.NotificationView, int, error) {
	var total int
	if err := p.DB.GetContext(ctx, &total, `SELECT COUNT(*) FROM notifications WHERE receiver_id = $1`, receiverID); err != nil {
		return nil, 0, queryError(err, "notification count")
	}

	query := `
		SELECT n.id, n.action, n.sender_id, n.receiver_id, n.article_id, n.comment_id, n.target_user_id,
			n.preview_text, n.seen, n.created_at,
			u.display_name AS sender_display_name, u.slug AS sender_slug, u.avatar AS sender_avatar
		FROM notifications n
		JOIN users u ON u.id = n.sender_id
		WHERE n.receiver_id = $1
		ORDER BY n.seen, n.created_at DESC, n.id DESC
		LIMIT $2 OFFSET $3
	`
	var rows []notificationRow
	if err := p.DB.SelectContext(ctx, &rows, query, receiverID, page.Limit, page.Offset); err != nil {
		return nil, 0, queryError(err, "notifications")
	}

	views := make([]*models.NotificationView, 0, len(rows))
	for _, r := range rows {
		views = append(views, &models.NotificationView{
			Notification: models.Notification{
				ID:          r.ID,
				Action:      models.Action(r.Action),
				SenderID:    r.SenderID,
				ReceiverID:  r.ReceiverID,
				Target:      targetFromColumns(r.ArticleID, r.CommentID, r.TargetUserID),
				PreviewText: r.PreviewText,
				Seen:        r.Seen,
				CreatedAt:   r.CreatedAt,
			},
			Sender: models.UserSummary{
				DisplayName: r.SenderDisplayName,
				Slug:        r.SenderSlug,
				Avatar:      r.SenderAvatar,
			},
		})
	}
	return views, total, nil
}

func (p *PostgresDB) MarkNotificationSeen(ctx context.Context, id, receiverID uuid.UUID) error {
	result, err := p.DB.ExecContext(ctx,
		`UPDATE notifications SET seen = TRUE WHERE id = $1 AND receiver_id = $2`, id, receiverID)
	if err != nil {
		return utils.NewAppError(utils.ErrDatabase, "failed to mark notification", err)
	}
	return expectRows(result, utils.ErrNotFound, "notification not found")
}

func (p *PostgresDB) MarkAllNotificationsSeen(ctx context.Context, receiverID uuid.UUID) error {
	_, err := p.DB.ExecContext(ctx,
		`UPDATE notifications SET seen = TRUE WHERE receiver_id = $1 AND NOT seen`, receiverID)
	if err != nil {
		return utils.NewAppError(utils.ErrDatabase, "failed to mark notifications", err)
	}
	return nil
}
