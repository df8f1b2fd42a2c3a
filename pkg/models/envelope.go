package models

import tele "gopkg.in/telebot.v3"

type Origin int

const (
	OriginOther Origin = iota
	OriginPrivateChat
	OriginTeamChannel
)

type ContentKind string

const (
	KindText      ContentKind = "text"
	KindPhoto     ContentKind = "photo"
	KindVideo     ContentKind = "video"
	KindDocument  ContentKind = "document"
	KindAudio     ContentKind = "audio"
	KindVoice     ContentKind = "voice"
	KindVideoNote ContentKind = "video_note"
	KindSticker   ContentKind = "sticker"
	KindUnknown   ContentKind = "unknown"
)

// Envelope is one inbound message, normalized for relaying. It is never stored.
type Envelope struct {
	Origin   Origin
	Sender   User
	ChatID   int64
	ThreadID int

	Kind    ContentKind
	FileID  string
	Text    string
	Caption string

	Entities tele.Entities
	Controls *tele.ReplyMarkup
}

// Body returns the text of a text message or the caption of anything else.
func (e *Envelope) Body() string {
	if e.Text != "" {
		return e.Text
	}
	return e.Caption
}
