package relay

import (
	"context"
	"time"

	tele "gopkg.in/telebot.v3"

	"topicrelay/pkg/models"
)

// Target is a chat, optionally narrowed to a forum thread (ThreadID > 0).
type Target struct {
	ChatID   int64
	ThreadID int
}

type SendOptions struct {
	Entities tele.Entities
	Controls *tele.ReplyMarkup
}

// Transport is the messaging API the relay delivers through. Each send method
// is exactly one platform primitive. SendSticker has no caption parameter
// because the platform primitive cannot carry one.
type Transport interface {
	SendText(ctx context.Context, to Target, text string, opts SendOptions) error
	SendMedia(ctx context.Context, to Target, kind models.ContentKind, fileID, caption string, opts SendOptions) error
	SendSticker(ctx context.Context, to Target, fileID string, opts SendOptions) error
	CreateThread(ctx context.Context, channelID int64, name string) (int, error)
	ChannelAlive(ctx context.Context, channelID int64) bool
}

func withTimeout(ctx context.Context, d time.Duration) (context.Context, context.CancelFunc) {
	if d <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, d)
}
