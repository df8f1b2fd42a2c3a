package bot

import (
	"context"
	"errors"
	"fmt"

	tele "gopkg.in/telebot.v3"

	"topicrelay/pkg/models"
	"topicrelay/pkg/relay"
)

// teleAPI is the part of *tele.Bot the transport needs.
type teleAPI interface {
	Send(to tele.Recipient, what interface{}, opts ...interface{}) (*tele.Message, error)
	CreateTopic(chat *tele.Chat, topic *tele.Topic) (*tele.Topic, error)
	ChatByID(id int64) (*tele.Chat, error)
}

// Transport delivers relay traffic through the Bot API. telebot calls do not
// take a context, so each call runs in its own goroutine and is abandoned
// when ctx expires.
type Transport struct {
	api           teleAPI
	teamChannelID int64
}

func NewTransport(api teleAPI, teamChannelID int64) *Transport {
	return &Transport{api: api, teamChannelID: teamChannelID}
}

var _ relay.Transport = (*Transport)(nil)

func (t *Transport) SendText(ctx context.Context, to relay.Target, text string, opts relay.SendOptions) error {
	_, err := call(ctx, func() (*tele.Message, error) {
		return t.api.Send(tele.ChatID(to.ChatID), text, sendOptions(to, opts))
	})
	return t.classify(to.ChatID, err)
}

func (t *Transport) SendMedia(ctx context.Context, to relay.Target, kind models.ContentKind, fileID, caption string, opts relay.SendOptions) error {
	media, err := mediaFor(kind, fileID, caption)
	if err != nil {
		return err
	}
	if kind == models.KindVideoNote {
		opts.Entities = nil
	}

	_, err = call(ctx, func() (*tele.Message, error) {
		return t.api.Send(tele.ChatID(to.ChatID), media, sendOptions(to, opts))
	})
	return t.classify(to.ChatID, err)
}

func (t *Transport) SendSticker(ctx context.Context, to relay.Target, fileID string, opts relay.SendOptions) error {
	sticker := &tele.Sticker{File: tele.File{FileID: fileID}}
	_, err := call(ctx, func() (*tele.Message, error) {
		return t.api.Send(tele.ChatID(to.ChatID), sticker, &tele.SendOptions{
			ThreadID:    to.ThreadID,
			ReplyMarkup: opts.Controls,
		})
	})
	return t.classify(to.ChatID, err)
}

func (t *Transport) CreateThread(ctx context.Context, channelID int64, name string) (int, error) {
	topic, err := call(ctx, func() (*tele.Topic, error) {
		return t.api.CreateTopic(&tele.Chat{ID: channelID}, &tele.Topic{Name: name})
	})
	if err != nil {
		return 0, t.classify(channelID, err)
	}
	return topic.ThreadID, nil
}

// ChannelAlive reports whether the bot can see the channel and it is a
// supergroup, the only chat type with forum topics.
func (t *Transport) ChannelAlive(ctx context.Context, channelID int64) bool {
	chat, err := call(ctx, func() (*tele.Chat, error) {
		return t.api.ChatByID(channelID)
	})
	return err == nil && chat != nil && chat.Type == tele.ChatSuperGroup
}

func sendOptions(to relay.Target, opts relay.SendOptions) *tele.SendOptions {
	return &tele.SendOptions{
		ThreadID:    to.ThreadID,
		Entities:    opts.Entities,
		ReplyMarkup: opts.Controls,
	}
}

func mediaFor(kind models.ContentKind, fileID, caption string) (tele.Sendable, error) {
	file := tele.File{FileID: fileID}

	switch kind {
	case models.KindPhoto:
		return &tele.Photo{File: file, Caption: caption}, nil
	case models.KindVideo:
		return &tele.Video{File: file, Caption: caption}, nil
	case models.KindDocument:
		return &tele.Document{File: file, Caption: caption}, nil
	case models.KindAudio:
		return &tele.Audio{File: file, Caption: caption}, nil
	case models.KindVoice:
		return &tele.Voice{File: file, Caption: caption}, nil
	case models.KindVideoNote:
		return &tele.VideoNote{File: file}, nil
	default:
		return nil, fmt.Errorf("no media primitive for %q", kind)
	}
}

func call[T any](ctx context.Context, fn func() (T, error)) (T, error) {
	type result struct {
		val T
		err error
	}

	done := make(chan result, 1)
	go func() {
		val, err := fn()
		done <- result{val, err}
	}()

	select {
	case r := <-done:
		return r.val, r.err
	case <-ctx.Done():
		var zero T
		return zero, ctx.Err()
	}
}

// classify wraps err into a relay.TransportError. Whether "chat not found"
// means the channel or the recipient is gone depends on which chat was
// addressed.
func (t *Transport) classify(chatID int64, err error) error {
	if err == nil {
		return nil
	}
	return &relay.TransportError{Cause: causeOf(err, chatID == t.teamChannelID), Err: err}
}

func causeOf(err error, toChannel bool) relay.Cause {
	var flood tele.FloodError
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return relay.CauseTimeout
	case errors.As(err, &flood):
		return relay.CauseRateLimited
	case errors.Is(err, tele.ErrKickedFromGroup),
		errors.Is(err, tele.ErrKickedFromSuperGroup),
		errors.Is(err, tele.ErrKickedFromChannel),
		errors.Is(err, tele.ErrNoRightsToSend),
		errors.Is(err, tele.ErrNoRightsToSendPhoto),
		errors.Is(err, tele.ErrNoRightsToSendStickers),
		errors.Is(err, tele.ErrNoRightsToSendGifs):
		return relay.CauseChannelUnreachable
	case errors.Is(err, tele.ErrBlockedByUser),
		errors.Is(err, tele.ErrUserIsDeactivated),
		errors.Is(err, tele.ErrNotStartedByUser):
		return relay.CauseRecipientUnreachable
	case errors.Is(err, tele.ErrChatNotFound):
		if toChannel {
			return relay.CauseChannelUnreachable
		}
		return relay.CauseRecipientUnreachable
	}

	var apiErr *tele.Error
	if errors.As(err, &apiErr) && apiErr.Code == 403 {
		if toChannel {
			return relay.CauseChannelUnreachable
		}
		return relay.CauseRecipientUnreachable
	}
	return relay.CauseUnknown
}
