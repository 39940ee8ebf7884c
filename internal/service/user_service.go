package service

import (
	"context"
	"strings"

	"renthub/internal/domain"
	"renthub/internal/models"

	"github.com/rs/zerolog"
)

// UserService manages user records. Email addresses are unique.
type UserService struct {
	users  domain.UserDirectory
	logger *zerolog.Logger
}

func NewUserService(users domain.UserDirectory, logger *zerolog.Logger) *UserService {
	return &UserService{users: users, logger: logger}
}

func (s *UserService) Create(ctx context.Context, user *models.User) (*models.User, error) {
	toSave := *user
	toSave.ID = 0

	saved, err := s.users.SaveUser(ctx, &toSave)
	if err != nil {
		return nil, err
	}

	s.logger.Info().Int64("user_id", saved.ID).Msg("user created")
	return saved, nil
}

func (s *UserService) Update(ctx context.Context, id int64, patch domain.UserPatch) (*models.User, error) {
	user, err := s.users.GetUser(ctx, id)
	if err != nil {
		return nil, err
	}

	if patch.Name != nil && strings.TrimSpace(*patch.Name) != "" {
		user.Name = *patch.Name
	}
	if patch.Email != nil && strings.TrimSpace(*patch.Email) != "" {
		user.Email = *patch.Email
	}
	if patch.TelegramID != nil {
		user.TelegramID = *patch.TelegramID
	}

	return s.users.SaveUser(ctx, user)
}

func (s *UserService) Delete(ctx context.Context, id int64) error {
	return s.users.DeleteUser(ctx, id)
}

func (s *UserService) Get(ctx context.Context, id int64) (*models.User, error) {
	return s.users.GetUser(ctx, id)
}

func (s *UserService) List(ctx context.Context) ([]*models.User, error) {
	return s.users.GetUsers(ctx)
}
