package engine

import (
	"context"
	"fmt"
	"strings"

	"inkwell/internal/models"
	"inkwell/internal/utils"

	"github.com/google/uuid"
)

const tagLimitMessage = "You can't assign more than five tags"

// resolveTags checks a requested tag set against the limit and the tag table.
// The whole set is rejected on any failure so no partial assignment is applied.
func (e *Engine) resolveTags(ctx context.Context, slugs []string) ([]uuid.UUID, error) {
	seen := make(map[string]bool, len(slugs))
	unique := make([]string, 0, len(slugs))
	for _, s := range slugs {
		s = strings.TrimSpace(s)
		if s == "" || seen[s] {
			continue
		}
		seen[s] = true
		unique = append(unique, s)
	}
	if len(unique) > models.MaxArticleTags {
		return nil, utils.NewValidationError("tags", tagLimitMessage)
	}

	tags, err := e.db.GetTagsBySlugs(ctx, unique)
	if err != nil {
		return nil, err
	}
	found := make(map[string]uuid.UUID, len(tags))
	for _, t := range tags {
		found[t.Slug] = t.ID
	}

	ids := make([]uuid.UUID, 0, len(unique))
	for _, s := range unique {
		id, ok := found[s]
		if !ok {
			return nil, utils.NewValidationError("tags", fmt.Sprintf("Tag %s does not exist", s))
		}
		ids = append(ids, id)
	}
	return ids, nil
}

// CreateTag adds a tag; used by seeding.
func (e *Engine) CreateTag(ctx context.Context, name string) (*models.Tag, error) {
	name = strings.TrimSpace(name)
	if name == "" || len(name) > 50 {
		return nil, utils.NewValidationError("name", "Ensure this field has between 1 and 50 characters.")
	}
	tag := &models.Tag{ID: newID(), Name: name, Slug: Slugify(name)}
	if err := e.db.SaveTag(ctx, tag); err != nil {
		return nil, err
	}
	return tag, nil
}

// ListTags returns every tag; viewer may be nil for anonymous callers.
func (e *Engine) ListTags(ctx context.Context, viewer *uuid.UUID) ([]*models.TagView, error) {
	id := uuid.Nil
	if viewer != nil {
		id = *viewer
	}
	return e.db.ListTags(ctx, id)
}

func (e *Engine) FollowTag(ctx context.Context, userID uuid.UUID, slug string) error {
	tag, err := e.tagBySlug(ctx, slug)
	if err != nil {
		return err
	}
	if err := e.db.FollowTag(ctx, tag.ID, userID); err != nil {
		if utils.IsErrorCode(err, utils.ErrDuplicate) {
			return utils.NewConflictError("You already follow this tag")
		}
		return err
	}
	e.metrics.IncrementEngagement("follow_tag")
	return nil
}

func (e *Engine) UnfollowTag(ctx context.Context, userID uuid.UUID, slug string) error {
	tag, err := e.tagBySlug(ctx, slug)
	if err != nil {
		return err
	}
	if err := e.db.UnfollowTag(ctx, tag.ID, userID); err != nil {
		if utils.IsErrorCode(err, utils.ErrNotFound) {
			return utils.NewConflictError("You don't follow this tag")
		}
		return err
	}
	return nil
}

func (e *Engine) tagBySlug(ctx context.Context, slug string) (*models.Tag, error) {
	tag, err := e.db.GetTagBySlug(ctx, slug)
	if utils.IsErrorCode(err, utils.ErrNotFound) {
		return nil, utils.NewNotFoundError("Not found.")
	}
	return tag, err
}
