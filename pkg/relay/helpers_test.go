package relay

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/mock"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"topicrelay/pkg/logger"
	"topicrelay/pkg/models"
)

const (
	teamChannel int64 = -1001000
	botID       int64 = 999
	notice            = "support is offline"
)

type mockTransport struct {
	mock.Mock
}

func (m *mockTransport) SendText(ctx context.Context, to Target, text string, opts SendOptions) error {
	args := m.Called(ctx, to, text, opts)
	return args.Error(0)
}

func (m *mockTransport) SendMedia(ctx context.Context, to Target, kind models.ContentKind, fileID, caption string, opts SendOptions) error {
	args := m.Called(ctx, to, kind, fileID, caption, opts)
	return args.Error(0)
}

func (m *mockTransport) SendSticker(ctx context.Context, to Target, fileID string, opts SendOptions) error {
	args := m.Called(ctx, to, fileID, opts)
	return args.Error(0)
}

func (m *mockTransport) CreateThread(ctx context.Context, channelID int64, name string) (int, error) {
	args := m.Called(ctx, channelID, name)
	return args.Int(0), args.Error(1)
}

func (m *mockTransport) ChannelAlive(ctx context.Context, channelID int64) bool {
	args := m.Called(ctx, channelID)
	return args.Bool(0)
}

// memStore is an in-memory users table with the same contract as the SQL repos.
type memStore struct {
	mu    sync.Mutex
	users map[int64]*models.User

	// beforeSetTopic runs before the conditional write, outside the mutex.
	beforeSetTopic func()
}

func newMemStore(users ...models.User) *memStore {
	s := &memStore{users: make(map[int64]*models.User)}
	for i := range users {
		u := users[i]
		s.users[u.UserID] = &u
	}
	return s
}

func clone(u *models.User) *models.User {
	if u == nil {
		return nil
	}
	c := *u
	if u.TopicID != nil {
		id := *u.TopicID
		c.TopicID = &id
	}
	return &c
}

func (s *memStore) Get(_ context.Context, userID int64) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return clone(s.users[userID]), nil
}

func (s *memStore) GetByTopic(_ context.Context, topicID int) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.users {
		if u.TopicID != nil && *u.TopicID == topicID {
			return clone(u), nil
		}
	}
	return nil, nil
}

func (s *memStore) Create(_ context.Context, user *models.User) (*models.User, error) {
	if err := user.Validate(); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if u, ok := s.users[user.UserID]; ok {
		return clone(u), nil
	}
	s.users[user.UserID] = clone(user)
	return clone(user), nil
}

func (s *memStore) SetTopic(_ context.Context, userID int64, topicID int) (bool, error) {
	if s.beforeSetTopic != nil {
		s.beforeSetTopic()
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[userID]
	if !ok || u.TopicID != nil {
		return false, nil
	}
	u.TopicID = &topicID
	return true, nil
}

func (s *memStore) ResetTopics(_ context.Context) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var n int64
	for _, u := range s.users {
		if u.TopicID != nil {
			u.TopicID = nil
			n++
		}
	}
	return n, nil
}

func (s *memStore) Stats(_ context.Context) (*models.Stats, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	stats := &models.Stats{TotalUsers: len(s.users)}
	for _, u := range s.users {
		if u.TopicID != nil {
			stats.UsersWithTopics++
		}
	}
	return stats, nil
}

type fixture struct {
	store     *memStore
	transport *mockTransport
	router    *Router
	logs      *observer.ObservedLogs
}

func newFixture(t *testing.T, useTeamChannel bool, users ...models.User) *fixture {
	t.Helper()

	core, logs := observer.New(zapcore.DebugLevel)
	log := logger.FromZap(zap.New(core))

	store := newMemStore(users...)
	tr := new(mockTransport)
	settings := Settings{
		UseTeamChannel:  useTeamChannel,
		TeamChannelID:   teamChannel,
		BotID:           botID,
		FallbackNotice:  notice,
		UnsupportedText: "Unsupported message type",
	}
	prov := NewProvisioner(store, tr, nil, teamChannel, 0, log)
	router := NewRouter(settings, NewDirectory(store), prov, tr, log)

	return &fixture{store: store, transport: tr, router: router, logs: logs}
}

func topicID(id int) *int { return &id }

func userText(userID int64, text string) *models.Envelope {
	return &models.Envelope{
		Origin: models.OriginPrivateChat,
		Sender: models.User{UserID: userID, Username: "mike"},
		ChatID: userID,
		Kind:   models.KindText,
		Text:   text,
	}
}

func teamText(threadID int, text string) *models.Envelope {
	return &models.Envelope{
		Origin:   models.OriginTeamChannel,
		Sender:   models.User{UserID: 4242, FirstName: "Operator"},
		ChatID:   teamChannel,
		ThreadID: threadID,
		Kind:     models.KindText,
		Text:     text,
	}
}
