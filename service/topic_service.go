package service

import (
	"context"

	"topicrelay/pkg/logger"
	"topicrelay/pkg/models"
	"topicrelay/pkg/relay"
	"topicrelay/storage"
)

type TopicService interface {
	ThreadForUser(ctx context.Context, userID int64) (int, bool, error)
	UserForThread(ctx context.Context, threadID int) (int64, bool, error)
	Stats(ctx context.Context) (*models.Stats, error)
	// Reset forgets every stored thread so users get new ones on their next message.
	Reset(ctx context.Context) (int64, error)
}

type topicService struct {
	stg       storage.IUserStorage
	directory *relay.Directory
	log       logger.ILogger
}

func NewTopicService(stg storage.IStorage, directory *relay.Directory, log logger.ILogger) TopicService {
	return &topicService{
		stg:       stg.User(),
		directory: directory,
		log:       log,
	}
}

func (s *topicService) ThreadForUser(ctx context.Context, userID int64) (int, bool, error) {
	return s.directory.ThreadForUser(ctx, userID)
}

func (s *topicService) UserForThread(ctx context.Context, threadID int) (int64, bool, error) {
	return s.directory.UserForThread(ctx, threadID)
}

func (s *topicService) Stats(ctx context.Context) (*models.Stats, error) {
	return s.stg.Stats(ctx)
}

func (s *topicService) Reset(ctx context.Context) (int64, error) {
	n, err := s.stg.ResetTopics(ctx)
	if err != nil {
		s.log.Error("failed to reset topics", logger.Error(err))
		return 0, err
	}
	s.log.Info("topics reset", logger.Int64("users", n))
	return n, nil
}
