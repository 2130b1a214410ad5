package engine

import (
	"context"
	"time"

	"inkwell/internal/models"
	"inkwell/internal/utils"
	"inkwell/internal/validation"

	"github.com/google/uuid"
)

// NewUser is the input for provisioning an account. Registration itself lives
// in the identity service; this is used by seeding and the simulator.
type NewUser struct {
	Username    string `json:"username" validate:"required,username"`
	Email       string `json:"email" validate:"required,email,max=60"`
	DisplayName string `json:"display_name" validate:"max=30"`
	Description string `json:"description" validate:"max=150"`
	IsModerator bool   `json:"is_moderator"`
	IsAdmin     bool   `json:"is_admin"`
}

func (e *Engine) CreateUser(ctx context.Context, req NewUser) (*models.User, error) {
	if err := validation.Struct(req); err != nil {
		return nil, err
	}
	displayName := req.DisplayName
	if displayName == "" {
		displayName = req.Username
	}
	user := &models.User{
		ID:          newID(),
		Username:    req.Username,
		Email:       req.Email,
		DisplayName: displayName,
		Description: req.Description,
		Slug:        Slugify(req.Username),
		Avatar:      models.DefaultAvatar,
		IsModerator: req.IsModerator,
		IsAdmin:     req.IsAdmin,
		CreatedAt:   time.Now(),
	}
	if err := e.db.SaveUser(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

func (e *Engine) UserProfile(ctx context.Context, slug string) (*models.UserProfile, error) {
	profile, err := e.db.GetUserProfile(ctx, slug)
	if utils.IsErrorCode(err, utils.ErrNotFound) {
		return nil, utils.NewNotFoundError("Not found.")
	}
	return profile, err
}

// FollowUser makes followerID follow the user at slug and notifies them.
func (e *Engine) FollowUser(ctx context.Context, followerID uuid.UUID, slug string) error {
	defer e.observe("follow_user", time.Now())

	target, err := e.userBySlug(ctx, slug)
	if err != nil {
		return err
	}
	if target.ID == followerID {
		return utils.NewForbiddenError("You can't follow yourself")
	}

	if err := e.db.FollowUser(ctx, followerID, target.ID); err != nil {
		if utils.IsErrorCode(err, utils.ErrDuplicate) {
			return utils.NewConflictError("You already follow this user")
		}
		return err
	}

	var out Outbox
	out.Add(models.ActionFollow, followerID, models.UserTarget(target.ID))
	e.dispatch(ctx, &out)
	return nil
}

func (e *Engine) UnfollowUser(ctx context.Context, followerID uuid.UUID, slug string) error {
	target, err := e.userBySlug(ctx, slug)
	if err != nil {
		return err
	}
	if target.ID == followerID {
		return utils.NewForbiddenError("You can't unfollow yourself")
	}
	if err := e.db.UnfollowUser(ctx, followerID, target.ID); err != nil {
		if utils.IsErrorCode(err, utils.ErrNotFound) {
			return utils.NewConflictError("You don't follow this user")
		}
		return err
	}
	return nil
}

func (e *Engine) userBySlug(ctx context.Context, slug string) (*models.User, error) {
	user, err := e.db.GetUserBySlug(ctx, slug)
	if utils.IsErrorCode(err, utils.ErrNotFound) {
		return nil, utils.NewNotFoundError("Not found.")
	}
	return user, err
}
