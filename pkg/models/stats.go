package models

type Stats struct {
	TotalUsers      int `json:"total_users"`
	UsersWithTopics int `json:"users_with_topics"`
}
