package bot

import (
	"testing"

	"github.com/stretchr/testify/assert"
	tele "gopkg.in/telebot.v3"

	"topicrelay/pkg/models"
)

func TestNewEnvelope_Kinds(t *testing.T) {
	private := &tele.Chat{ID: 55, Type: tele.ChatPrivate}

	tests := []struct {
		name   string
		msg    tele.Message
		kind   models.ContentKind
		fileID string
	}{
		{"text", tele.Message{Text: "hi"}, models.KindText, ""},
		{"photo", tele.Message{Photo: &tele.Photo{File: tele.File{FileID: "p"}}}, models.KindPhoto, "p"},
		{"video", tele.Message{Video: &tele.Video{File: tele.File{FileID: "v"}}}, models.KindVideo, "v"},
		{"document", tele.Message{Document: &tele.Document{File: tele.File{FileID: "d"}}}, models.KindDocument, "d"},
		{"audio", tele.Message{Audio: &tele.Audio{File: tele.File{FileID: "a"}}}, models.KindAudio, "a"},
		{"voice", tele.Message{Voice: &tele.Voice{File: tele.File{FileID: "vo"}}}, models.KindVoice, "vo"},
		{"video note", tele.Message{VideoNote: &tele.VideoNote{File: tele.File{FileID: "vn"}}}, models.KindVideoNote, "vn"},
		{"sticker", tele.Message{Sticker: &tele.Sticker{File: tele.File{FileID: "s"}}}, models.KindSticker, "s"},
		{"animation", tele.Message{
			Animation: &tele.Animation{File: tele.File{FileID: "g"}},
			Document:  &tele.Document{File: tele.File{FileID: "g"}},
		}, models.KindUnknown, ""},
		{"contact", tele.Message{Contact: &tele.Contact{PhoneNumber: "+1"}}, models.KindUnknown, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.msg.Chat = private
			env := newEnvelope(&tt.msg, teamChannel)

			assert.Equal(t, tt.kind, env.Kind)
			assert.Equal(t, tt.fileID, env.FileID)
		})
	}
}

func TestNewEnvelope_Origin(t *testing.T) {
	user := &tele.User{ID: 55, Username: "mike", FirstName: "Mike"}

	fromUser := newEnvelope(&tele.Message{
		Sender: user,
		Chat:   &tele.Chat{ID: 55, Type: tele.ChatPrivate},
		Text:   "hi",
	}, teamChannel)
	assert.Equal(t, models.OriginPrivateChat, fromUser.Origin)
	assert.Equal(t, int64(55), fromUser.ChatID)
	assert.Equal(t, models.User{UserID: 55, Username: "mike", FirstName: "Mike"}, fromUser.Sender)

	fromTeam := newEnvelope(&tele.Message{
		Sender:       &tele.User{ID: 7},
		Chat:         &tele.Chat{ID: teamChannel, Type: tele.ChatSuperGroup},
		ThreadID:     101,
		TopicMessage: true,
		Text:         "answer",
	}, teamChannel)
	assert.Equal(t, models.OriginTeamChannel, fromTeam.Origin)
	assert.Equal(t, 101, fromTeam.ThreadID)

	general := newEnvelope(&tele.Message{
		Chat:     &tele.Chat{ID: teamChannel, Type: tele.ChatSuperGroup},
		ThreadID: 9,
		Text:     "general chatter",
	}, teamChannel)
	assert.Equal(t, 0, general.ThreadID)

	elsewhere := newEnvelope(&tele.Message{
		Chat: &tele.Chat{ID: -1, Type: tele.ChatGroup},
		Text: "hi",
	}, teamChannel)
	assert.Equal(t, models.OriginOther, elsewhere.Origin)
}

func TestNewEnvelope_CaptionEntities(t *testing.T) {
	entities := tele.Entities{{Type: tele.EntityItalic, Length: 3}}
	markup := &tele.ReplyMarkup{}

	env := newEnvelope(&tele.Message{
		Chat:            &tele.Chat{ID: 55, Type: tele.ChatPrivate},
		Photo:           &tele.Photo{File: tele.File{FileID: "p"}},
		Caption:         "cat",
		CaptionEntities: entities,
		ReplyMarkup:     markup,
	}, teamChannel)

	assert.Equal(t, "cat", env.Caption)
	assert.Equal(t, entities, env.Entities)
	assert.Same(t, markup, env.Controls)
}
