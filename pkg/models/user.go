package models

import (
	"errors"
	"strconv"
)

var (
	ErrInvalidUserID  = errors.New("user_id must be positive")
	ErrInvalidTopicID = errors.New("topic_id must be positive when set")
)

// User is a row of the users table. Only TopicID is written by the relay;
// the admin fields belong to external tooling.
type User struct {
	UserID      int64  `json:"user_id"`
	TopicID     *int   `json:"topic_id"`
	Username    string `json:"username"`
	FirstName   string `json:"first_name"`
	LastName    string `json:"last_name"`
	Source      string `json:"source"`
	IsAdmin     bool   `json:"is_admin"`
	IsModerator bool   `json:"is_moderator"`
	Banned      bool   `json:"banned"`
	Tariff      string `json:"tariff"`
	BotUsername string `json:"bot_username"`
	BotID       int64  `json:"bot_id"`
}

func (u *User) Validate() error {
	if u.UserID <= 0 {
		return ErrInvalidUserID
	}
	if u.TopicID != nil && *u.TopicID <= 0 {
		return ErrInvalidTopicID
	}
	return nil
}

func (u *User) HasTopic() bool {
	return u != nil && u.TopicID != nil && *u.TopicID > 0
}

func (u *User) TopicState() TopicState {
	if u.HasTopic() {
		return TopicActive
	}
	return TopicAbsent
}

// DisplayName picks first name, then username, then the numeric id.
func (u *User) DisplayName() string {
	switch {
	case u.FirstName != "":
		return u.FirstName
	case u.Username != "":
		return u.Username
	default:
		return strconv.FormatInt(u.UserID, 10)
	}
}
