package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"topicrelay/pkg/logger"
	"topicrelay/pkg/models"
	"topicrelay/pkg/relay"
	"topicrelay/service"
	"topicrelay/storage/sqlite"
)

func newTestServer(t *testing.T) *Server {
	t.Helper()
	ctx := context.Background()

	stg, err := sqlite.New(ctx, ":memory:", logger.NewNop())
	require.NoError(t, err)
	t.Cleanup(stg.Close)

	_, err = stg.User().Create(ctx, &models.User{UserID: 55, Username: "mike"})
	require.NoError(t, err)
	_, err = stg.User().SetTopic(ctx, 55, 101)
	require.NoError(t, err)
	_, err = stg.User().Create(ctx, &models.User{UserID: 56})
	require.NoError(t, err)

	svc := service.New(stg, relay.NewDirectory(stg.User()), logger.NewNop())
	return New(svc, 0, logger.NewNop())
}

func get(t *testing.T, s *Server, path string) (int, map[string]interface{}) {
	t.Helper()
	rec := httptest.NewRecorder()
	s.Router().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return rec.Code, body
}

func TestServer_Healthz(t *testing.T) {
	code, body := get(t, newTestServer(t), "/healthz")
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, "ok", body["status"])
}

func TestServer_UserTopic(t *testing.T) {
	s := newTestServer(t)

	code, body := get(t, s, "/api/users/55/topic")
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, float64(101), body["topic_id"])

	code, _ = get(t, s, "/api/users/56/topic")
	assert.Equal(t, http.StatusNotFound, code)

	code, _ = get(t, s, "/api/users/abc/topic")
	assert.Equal(t, http.StatusBadRequest, code)
}

func TestServer_TopicUser(t *testing.T) {
	s := newTestServer(t)

	code, body := get(t, s, "/api/topics/101/user")
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, float64(55), body["user_id"])

	code, _ = get(t, s, "/api/topics/999/user")
	assert.Equal(t, http.StatusNotFound, code)
}

func TestServer_Stats(t *testing.T) {
	code, body := get(t, newTestServer(t), "/api/stats")
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, float64(2), body["total_users"])
	assert.Equal(t, float64(1), body["users_with_topics"])
}
