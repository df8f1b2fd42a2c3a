package service

import (
	"topicrelay/pkg/logger"
	"topicrelay/pkg/relay"
	"topicrelay/storage"
)

type IServiceManager interface {
	User() UserService
	Topic() TopicService
}

type service struct {
	userService  UserService
	topicService TopicService
}

func New(stg storage.IStorage, directory *relay.Directory, log logger.ILogger) IServiceManager {
	return &service{
		userService:  NewUserService(stg, log),
		topicService: NewTopicService(stg, directory, log),
	}
}

func (s *service) User() UserService {
	return s.userService
}

func (s *service) Topic() TopicService {
	return s.topicService
}
