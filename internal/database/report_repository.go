package database

import (
	"context"
	"fmt"
	"time"

	"inkwell/internal/models"
	"inkwell/internal/utils"

	"github.com/google/uuid"
)

// reportRow is the table shape; the three nullable FKs become a models.Target.
type reportRow struct {
	ID             uuid.UUID  `db:"id"`
	Reason         int        `db:"reason"`
	Message        string     `db:"message"`
	ArticleID      *uuid.UUID `db:"article_id"`
	CommentID      *uuid.UUID `db:"comment_id"`
	ReportedUserID *uuid.UUID `db:"reported_user_id"`
	UserID         uuid.UUID  `db:"user_id"`
	Moderated      bool       `db:"moderated"`
	CreatedAt      time.Time  `db:"created_at"`
}

func (r *reportRow) toModel() *models.Report {
	return &models.Report{
		ID:        r.ID,
		Reason:    models.ReportReason(r.Reason),
		Message:   r.Message,
		Target:    targetFromColumns(r.ArticleID, r.CommentID, r.ReportedUserID),
		UserID:    r.UserID,
		Moderated: r.Moderated,
		CreatedAt: r.CreatedAt,
	}
}

const reportColumns = `id, reason, message, article_id, comment_id, reported_user_id, user_id, moderated, created_at`

// --- Report Methods ---

func (p *PostgresDB) CreateReport(ctx context.Context, report *models.Report) error {
	if report.CreatedAt.IsZero() {
		report.CreatedAt = time.Now()
	}
	article, comment, user := targetColumns(report.Target)
	row := reportRow{
		ID:             report.ID,
		Reason:         int(report.Reason),
		Message:        report.Message,
		ArticleID:      article,
		CommentID:      comment,
		ReportedUserID: user,
		UserID:         report.UserID,
		Moderated:      report.Moderated,
		CreatedAt:      report.CreatedAt,
	}
	query := `
		INSERT INTO reports (` + reportColumns + `)
		VALUES (:id, :reason, :message, :article_id, :comment_id, :reported_user_id, :user_id, :moderated, :created_at)
	`
	if _, err := p.DB.NamedExecContext(ctx, query, row); err != nil {
		return utils.NewAppError(utils.ErrDatabase, "failed to insert report", err)
	}
	return nil
}

func (p *PostgresDB) GetReport(ctx context.Context, id uuid.UUID) (*models.Report, error) {
	var row reportRow
	if err := p.DB.GetContext(ctx, &row, `SELECT `+reportColumns+` FROM reports WHERE id = $1`, id); err != nil {
		return nil, queryError(err, "report")
	}
	return row.toModel(), nil
}

var reportKindClause = map[models.TargetKind]string{
	models.TargetArticle: " AND article_id IS NOT NULL",
	models.TargetComment: " AND comment_id IS NOT NULL",
	models.TargetUser:    " AND reported_user_id IS NOT NULL",
}

// ListReports returns one page of the moderation queue and the filtered total.
func (p *PostgresDB) ListReports(ctx context.Context, filter models.ReportFilter) ([]*models.Report, int, error) {
	where := " WHERE moderated = $1"
	if filter.Kind != nil {
		where += reportKindClause[*filter.Kind]
	}
	order := "DESC"
	if filter.Oldest {
		order = "ASC"
	}

	var total int
	if err := p.DB.GetContext(ctx, &total, `SELECT COUNT(*) FROM reports`+where, filter.Moderated); err != nil {
		return nil, 0, queryError(err, "report count")
	}

	query := fmt.Sprintf(`SELECT %s FROM reports%s ORDER BY created_at %s, id %s LIMIT $2 OFFSET $3`,
		reportColumns, where, order, order)
	var rows []reportRow
	if err := p.DB.SelectContext(ctx, &rows, query, filter.Moderated, filter.Page.Limit, filter.Page.Offset); err != nil {
		return nil, 0, queryError(err, "reports")
	}

	reports := make([]*models.Report, 0, len(rows))
	for i := range rows {
		reports = append(reports, rows[i].toModel())
	}
	return reports, total, nil
}

func (p *PostgresDB) MarkReportModerated(ctx context.Context, id uuid.UUID) error {
	result, err := p.DB.ExecContext(ctx, `UPDATE reports SET moderated = TRUE WHERE id = $1`, id)
	if err != nil {
		return utils.NewAppError(utils.ErrDatabase, "failed to resolve report", err)
	}
	return expectRows(result, utils.ErrNotFound, "report not found")
}
