package storage

import (
	"context"

	"topicrelay/pkg/models"
)

type IStorage interface {
	User() IUserStorage
	Close()
}

// IUserStorage is the row-level view of the users table. Lookups return
// (nil, nil) when no row matches.
type IUserStorage interface {
	Get(ctx context.Context, userID int64) (*models.User, error)
	GetByTopic(ctx context.Context, topicID int) (*models.User, error)
	// Create inserts the row unless user_id already exists and returns the stored row.
	Create(ctx context.Context, user *models.User) (*models.User, error)
	// SetTopic assigns topic_id only while it is still NULL. It reports whether
	// this call performed the assignment.
	SetTopic(ctx context.Context, userID int64, topicID int) (bool, error)
	ResetTopics(ctx context.Context) (int64, error)
	Stats(ctx context.Context) (*models.Stats, error)
}
