package bot

import (
	tele "gopkg.in/telebot.v3"

	"topicrelay/pkg/models"
)

// newEnvelope normalizes an inbound message. Animations arrive with a
// Document attached too; they have no primitive of their own and are relayed
// as unknown content.
func newEnvelope(m *tele.Message, teamChannelID int64) *models.Envelope {
	env := &models.Envelope{
		Text:     m.Text,
		Caption:  m.Caption,
		Entities: m.Entities,
		Controls: m.ReplyMarkup,
	}
	if len(env.Entities) == 0 {
		env.Entities = m.CaptionEntities
	}

	if m.Chat != nil {
		env.ChatID = m.Chat.ID
		env.Origin = originOf(m.Chat, teamChannelID)
	}
	if m.TopicMessage {
		env.ThreadID = m.ThreadID
	}
	if m.Sender != nil {
		env.Sender = senderOf(m.Sender)
	}

	switch {
	case m.Animation != nil:
		env.Kind = models.KindUnknown
	case m.Photo != nil:
		env.Kind, env.FileID = models.KindPhoto, m.Photo.FileID
	case m.Video != nil:
		env.Kind, env.FileID = models.KindVideo, m.Video.FileID
	case m.Document != nil:
		env.Kind, env.FileID = models.KindDocument, m.Document.FileID
	case m.Audio != nil:
		env.Kind, env.FileID = models.KindAudio, m.Audio.FileID
	case m.Voice != nil:
		env.Kind, env.FileID = models.KindVoice, m.Voice.FileID
	case m.VideoNote != nil:
		env.Kind, env.FileID = models.KindVideoNote, m.VideoNote.FileID
	case m.Sticker != nil:
		env.Kind, env.FileID = models.KindSticker, m.Sticker.FileID
	case m.Text != "":
		env.Kind = models.KindText
	default:
		env.Kind = models.KindUnknown
	}
	return env
}

func originOf(chat *tele.Chat, teamChannelID int64) models.Origin {
	switch {
	case chat.Type == tele.ChatPrivate:
		return models.OriginPrivateChat
	case teamChannelID != 0 && chat.ID == teamChannelID:
		return models.OriginTeamChannel
	default:
		return models.OriginOther
	}
}

func senderOf(u *tele.User) models.User {
	return models.User{
		UserID:    u.ID,
		Username:  u.Username,
		FirstName: u.FirstName,
		LastName:  u.LastName,
	}
}
