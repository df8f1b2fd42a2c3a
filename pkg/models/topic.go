package models

type TopicState int

const (
	TopicAbsent TopicState = iota
	TopicCreating
	TopicActive
)

func (s TopicState) String() string {
	switch s {
	case TopicCreating:
		return "CREATING"
	case TopicActive:
		return "ACTIVE"
	default:
		return "ABSENT"
	}
}

// Topic is a forum thread in the team channel owned by exactly one user.
// Name is captured at creation and never re-synced.
type Topic struct {
	ThreadID int    `json:"thread_id"`
	UserID   int64  `json:"user_id"`
	Name     string `json:"name"`
}
