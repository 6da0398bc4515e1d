package services

import (
	"context"

	"github.com/dmitrijs2005/authkeeper/internal/client/models"
	"github.com/dmitrijs2005/authkeeper/internal/logging"
)

// UserService wraps the guarded account endpoints.
type UserService interface {
	List(ctx context.Context) ([]models.Profile, error)
	Get(ctx context.Context, id int64) (*models.Profile, error)
	Update(ctx context.Context, id int64, username, email string) error
	Delete(ctx context.Context, id int64) error
}

type userService struct {
	caller
}

func NewUserService(c API, s Sessions, l logging.Logger) UserService {
	return &userService{caller{api: c, sessions: s, logger: l.With("module", "user_service")}}
}

func (u *userService) List(ctx context.Context) ([]models.Profile, error) {
	var out []models.Profile
	err := u.call(ctx, func(token string) error {
		list, err := u.api.ListUsers(ctx, token)
		out = list
		return err
	})
	return out, err
}

func (u *userService) Get(ctx context.Context, id int64) (*models.Profile, error) {
	var out *models.Profile
	err := u.call(ctx, func(token string) error {
		p, err := u.api.GetUser(ctx, token, id)
		out = p
		return err
	})
	return out, err
}

func (u *userService) Update(ctx context.Context, id int64, username, email string) error {
	return u.call(ctx, func(token string) error {
		return u.api.UpdateUser(ctx, token, id, username, email)
	})
}

func (u *userService) Delete(ctx context.Context, id int64) error {
	return u.call(ctx, func(token string) error {
		return u.api.DeleteUser(ctx, token, id)
	})
}
