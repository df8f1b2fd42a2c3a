package service

import (
	"context"

	"topicrelay/pkg/logger"
	"topicrelay/pkg/models"
	"topicrelay/storage"
)

type UserService interface {
	// Register stores the user unless already known and returns the stored row.
	Register(ctx context.Context, user models.User) (*models.User, error)
	Get(ctx context.Context, userID int64) (*models.User, error)
}

type userService struct {
	stg storage.IUserStorage
	log logger.ILogger
}

func NewUserService(stg storage.IStorage, log logger.ILogger) UserService {
	return &userService{
		stg: stg.User(),
		log: log,
	}
}

func (s *userService) Register(ctx context.Context, user models.User) (*models.User, error) {
	stored, err := s.stg.Create(ctx, &user)
	if err != nil {
		s.log.Error("failed to register user", logger.Int64("user_id", user.UserID), logger.Error(err))
		return nil, err
	}
	return stored, nil
}

func (s *userService) Get(ctx context.Context, userID int64) (*models.User, error) {
	return s.stg.Get(ctx, userID)
}
