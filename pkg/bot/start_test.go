package bot

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"topicrelay/pkg/models"
)

func TestParseStartPayload(t *testing.T) {
	tests := []struct {
		payload string
		want    startPayload
	}{
		{"p-manual_s-google", startPayload{Source: "google", Product: "manual"}},
		{"s-ads", startPayload{Source: "ads"}},
		{"", startPayload{}},
		{"garbage_s-", startPayload{}},
		{"x-1_s-tg", startPayload{Source: "tg"}},
	}

	for _, tt := range tests {
		t.Run(tt.payload, func(t *testing.T) {
			assert.Equal(t, tt.want, parseStartPayload(tt.payload))
		})
	}
}

func TestStartAnnouncement(t *testing.T) {
	payload := startPayload{Source: "google", Product: "manual"}

	tests := []struct {
		name string
		user models.User
		want string
	}{
		{"username", models.User{UserID: 55, Username: "mike", FirstName: "Mike"}, "@mike started the bot\nSource: #google\nProduct: #manual"},
		{"first name", models.User{UserID: 55, FirstName: "Anna"}, "Anna started the bot\nSource: #google\nProduct: #manual"},
		{"id only", models.User{UserID: 55}, "55 started the bot\nSource: #google\nProduct: #manual"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, startAnnouncement(&tt.user, payload))
		})
	}
}
