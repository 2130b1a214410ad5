package engine

import (
	"context"
	"time"

	"inkwell/internal/authz"
	"inkwell/internal/models"
	"inkwell/internal/utils"
	"inkwell/internal/validation"

	"github.com/google/uuid"
)

// ReportInput names exactly one of article (slug), comment (id) or user (slug).
type ReportInput struct {
	Article *string    `json:"article"`
	Comment *uuid.UUID `json:"comment"`
	User    *string    `json:"user"`
	Reason  *int       `json:"reason" validate:"omitempty,gte=0,lte=5"`
	Message string     `json:"message" validate:"max=500"`
}

const reportTargetMessage = "Report exactly one of article, comment or user"

// CreateReport files a report. Reporters may not report their own content,
// and the moderated flag always starts false.
func (e *Engine) CreateReport(ctx context.Context, reporterID uuid.UUID, in ReportInput) (*models.Report, error) {
	if err := validation.Struct(in); err != nil {
		return nil, err
	}

	n := 0
	for _, set := range []bool{in.Article != nil, in.Comment != nil, in.User != nil} {
		if set {
			n++
		}
	}
	if n != 1 {
		return nil, utils.NewAppError(utils.ErrInvalidInput, reportTargetMessage, nil)
	}

	target, err := e.reportTarget(ctx, reporterID, in)
	if err != nil {
		return nil, err
	}

	reason := models.ReasonOther
	if in.Reason != nil {
		reason = models.ReportReason(*in.Reason)
	}
	report := &models.Report{
		ID:        newID(),
		Reason:    reason,
		Message:   in.Message,
		Target:    target,
		UserID:    reporterID,
		Moderated: false,
		CreatedAt: time.Now(),
	}
	if err := e.db.CreateReport(ctx, report); err != nil {
		return nil, err
	}
	e.metrics.IncrementEngagement("report")
	return report, nil
}

// reportTarget resolves the single target and applies the self-report rule.
func (e *Engine) reportTarget(ctx context.Context, reporterID uuid.UUID, in ReportInput) (models.Target, error) {
	switch {
	case in.Article != nil:
		article, err := e.visibleArticle(ctx, &reporterID, *in.Article)
		if err != nil {
			return models.Target{}, err
		}
		if article.UserID == reporterID {
			return models.Target{}, utils.NewForbiddenError("Can't report your own article.")
		}
		return models.ArticleTarget(article.ID), nil

	case in.Comment != nil:
		comment, err := e.comment(ctx, *in.Comment)
		if err != nil {
			return models.Target{}, err
		}
		if comment.OwnedBy(reporterID) {
			return models.Target{}, utils.NewForbiddenError("Can't report your own comment.")
		}
		return models.CommentTarget(comment.ID), nil

	default:
		user, err := e.userBySlug(ctx, *in.User)
		if err != nil {
			return models.Target{}, err
		}
		if user.ID == reporterID {
			return models.Target{}, utils.NewForbiddenError("Can't report yourself.")
		}
		return models.UserTarget(user.ID), nil
	}
}

// ReportQuery is the moderator queue filter as received from the client.
type ReportQuery struct {
	Type      string
	Moderated bool
	Ordering  string
	Page      int
}

func (e *Engine) ListReports(ctx context.Context, actorID uuid.UUID, q ReportQuery) (PageResult[*models.Report], error) {
	var result PageResult[*models.Report]
	if err := e.requireModerator(ctx, actorID, authz.ActionList); err != nil {
		return result, err
	}

	window, err := e.pageWindow(q.Page)
	if err != nil {
		return result, err
	}
	filter := models.ReportFilter{
		Moderated: q.Moderated,
		Oldest:    q.Ordering == "oldest",
		Page:      window,
	}
	if q.Type != "" {
		kind, ok := models.ParseTargetKind(q.Type)
		if !ok {
			return result, utils.NewValidationError("type", "Select a valid choice. "+q.Type+" is not one of the available choices.")
		}
		filter.Kind = &kind
	}

	items, total, err := e.db.ListReports(ctx, filter)
	if err != nil {
		return result, err
	}
	if err := checkPageInRange(q.Page, total, window.Limit); err != nil {
		return result, err
	}
	return PageResult[*models.Report]{Items: items, Total: total, Page: q.Page, Size: window.Limit}, nil
}

func (e *Engine) GetReport(ctx context.Context, actorID, reportID uuid.UUID) (*models.Report, error) {
	if err := e.requireModerator(ctx, actorID, authz.ActionRead); err != nil {
		return nil, err
	}
	report, err := e.db.GetReport(ctx, reportID)
	if utils.IsErrorCode(err, utils.ErrNotFound) {
		return nil, utils.NewNotFoundError("Not found.")
	}
	return report, err
}

// ResolveReport marks a report moderated. Reports are never deleted.
func (e *Engine) ResolveReport(ctx context.Context, actorID, reportID uuid.UUID) error {
	if err := e.requireModerator(ctx, actorID, authz.ActionResolve); err != nil {
		return err
	}
	err := e.db.MarkReportModerated(ctx, reportID)
	if utils.IsErrorCode(err, utils.ErrNotFound) {
		return utils.NewAppError(utils.ErrInvalidInput, "Report does not exist", nil)
	}
	return err
}

func (e *Engine) requireModerator(ctx context.Context, actorID uuid.UUID, action string) error {
	user, err := e.currentUser(ctx, actorID)
	if err != nil {
		return err
	}
	ok, err := e.enforcer.Can(user, authz.ObjectReport, action)
	if err != nil {
		return utils.NewAppError(utils.ErrDatabase, "authorization check failed", err)
	}
	if !ok {
		return utils.NewForbiddenError("You do not have permission to perform this action.")
	}
	return nil
}
