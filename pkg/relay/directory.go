package relay

import (
	"context"

	"topicrelay/storage"
)

// Directory answers user↔thread lookups straight from the users table.
// Nothing is cached, so admin edits and other instances are seen at once.
type Directory struct {
	users storage.IUserStorage
}

func NewDirectory(users storage.IUserStorage) *Directory {
	return &Directory{users: users}
}

func (d *Directory) ThreadForUser(ctx context.Context, userID int64) (int, bool, error) {
	user, err := d.users.Get(ctx, userID)
	if err != nil {
		return 0, false, err
	}
	if !user.HasTopic() {
		return 0, false, nil
	}
	return *user.TopicID, true, nil
}

func (d *Directory) UserForThread(ctx context.Context, threadID int) (int64, bool, error) {
	if threadID <= 0 {
		return 0, false, nil
	}
	user, err := d.users.GetByTopic(ctx, threadID)
	if err != nil {
		return 0, false, err
	}
	if user == nil {
		return 0, false, nil
	}
	return user.UserID, true, nil
}
