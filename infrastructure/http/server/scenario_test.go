package server

import (
	"chat-room/moderation"
	"chat-room/repositories"
	"chat-room/runtime/workers"
	"chat-room/services"
	"encoding/json"
	"log/slog"
	"net/http"
	"testing"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/mama165/sdk-go/logs"
	"github.com/samber/lo"
	"github.com/stretchr/testify/require"
)

const scenarioThreshold = 50 * time.Millisecond

// newStack wires the real service over an in-memory store.
func newStack(t *testing.T) (*Server, *workers.SweeperWorker) {
	log := logs.GetLoggerFromLevel(slog.LevelDebug)
	db, err := badger.Open(badger.DefaultOptions("").WithInMemory(true).WithLogger(nil))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	messages, err := repositories.NewMessageRepository(db, log, 10)
	require.NoError(t, err)
	t.Cleanup(func() { _ = messages.Close() })
	participants := repositories.NewParticipantRepository(db, messages, log, 10)

	chatService := services.NewChatService(log, participants, messages, moderation.NewSanitizer(), nil)
	sweeper := workers.NewSweeperWorker(log, participants, messages, scenarioThreshold, time.Hour)
	return NewServer(log, chatService), sweeper
}

func listMessages(t *testing.T, s *Server, user string) []MessageResponse {
	resp, body := doRequest(t, s, http.MethodGet, "/messages", user, "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var messages []MessageResponse
	require.NoError(t, json.Unmarshal(body, &messages))
	return messages
}

func TestScenario_JoinPostAndTimeout(t *testing.T) {
	req := require.New(t)
	s, sweeper := newStack(t)

	// Alice joins once
	resp, _ := doRequest(t, s, http.MethodPost, "/participants", "", `{"name":"Alice"}`)
	req.Equal(http.StatusCreated, resp.StatusCode)
	messages := listMessages(t, s, "Bob")
	req.Len(messages, 1)
	req.Equal("status", messages[0].Type)
	req.Equal("entra na sala...", messages[0].Text)

	resp, _ = doRequest(t, s, http.MethodPost, "/participants", "", `{"name":"Alice"}`)
	req.Equal(http.StatusConflict, resp.StatusCode)

	// Alice broadcasts, Bob sees it
	resp, _ = doRequest(t, s, http.MethodPost, "/messages", "Alice", `{"to":"Todos","text":"hi","type":"message"}`)
	req.Equal(http.StatusCreated, resp.StatusCode)
	req.True(lo.ContainsBy(listMessages(t, s, "Bob"), func(m MessageResponse) bool { return m.Text == "hi" }))

	// Bob never joined
	resp, _ = doRequest(t, s, http.MethodPost, "/messages", "Bob", `{"to":"Alice","text":"secret","type":"private_message"}`)
	req.Equal(http.StatusUnprocessableEntity, resp.StatusCode)

	// Alice goes silent past the threshold
	time.Sleep(2 * scenarioThreshold)
	req.Equal([]string{"Alice"}, sweeper.Sweep())

	resp, body := doRequest(t, s, http.MethodGet, "/participants", "", "")
	req.Equal(http.StatusOK, resp.StatusCode)
	req.JSONEq(`[]`, string(body))

	leaves := lo.Filter(listMessages(t, s, "Bob"), func(m MessageResponse, _ int) bool {
		return m.From == "Alice" && m.Text == "sai da sala..."
	})
	req.Len(leaves, 1)

	resp, _ = doRequest(t, s, http.MethodPost, "/status", "Alice", "")
	req.Equal(http.StatusNotFound, resp.StatusCode)
}

func TestScenario_PrivateAndOwnership(t *testing.T) {
	req := require.New(t)
	s, _ := newStack(t)

	for _, name := range []string{"Alice", "Bob", "Clara"} {
		resp, _ := doRequest(t, s, http.MethodPost, "/participants", "", `{"name":"`+name+`"}`)
		req.Equal(http.StatusCreated, resp.StatusCode)
	}

	resp, body := doRequest(t, s, http.MethodPost, "/messages", "Alice", `{"to":"Bob","text":"secret","type":"private"}`)
	req.Equal(http.StatusCreated, resp.StatusCode)
	var secret MessageResponse
	req.NoError(json.Unmarshal(body, &secret))
	req.Equal("private_message", secret.Type)

	isSecret := func(m MessageResponse) bool { return m.ID == secret.ID }
	req.True(lo.ContainsBy(listMessages(t, s, "Alice"), isSecret))
	req.True(lo.ContainsBy(listMessages(t, s, "Bob"), isSecret))
	req.False(lo.ContainsBy(listMessages(t, s, "Clara"), isSecret))

	// Only Alice may edit or delete it, whatever the patch
	resp, _ = doRequest(t, s, http.MethodPut, "/messages/"+secret.ID, "Bob", `{"to":"Bob","text":"edited","type":"private"}`)
	req.Equal(http.StatusUnauthorized, resp.StatusCode)
	resp, _ = doRequest(t, s, http.MethodDelete, "/messages/"+secret.ID, "Clara", "")
	req.Equal(http.StatusUnauthorized, resp.StatusCode)
	// An invalid body is rejected before ownership is looked at
	resp, _ = doRequest(t, s, http.MethodPut, "/messages/"+secret.ID, "Bob", `{"to":"Bob","text":"","type":"status"}`)
	req.Equal(http.StatusUnprocessableEntity, resp.StatusCode)

	resp, body = doRequest(t, s, http.MethodPut, "/messages/"+secret.ID, "alice", `{"to":"Todos","text":"public now","type":"message"}`)
	req.Equal(http.StatusUnauthorized, resp.StatusCode, "names are case-sensitive")

	resp, body = doRequest(t, s, http.MethodPut, "/messages/"+secret.ID, "Alice", `{"to":"Todos","text":"public now","type":"message"}`)
	req.Equal(http.StatusOK, resp.StatusCode)
	var edited MessageResponse
	req.NoError(json.Unmarshal(body, &edited))
	req.Equal(secret.ID, edited.ID)
	req.Equal(secret.Time, edited.Time)
	req.True(lo.ContainsBy(listMessages(t, s, "Clara"), isSecret))

	resp, _ = doRequest(t, s, http.MethodDelete, "/messages/"+secret.ID, "Alice", "")
	req.Equal(http.StatusOK, resp.StatusCode)
	resp, _ = doRequest(t, s, http.MethodDelete, "/messages/"+secret.ID, "Alice", "")
	req.Equal(http.StatusNotFound, resp.StatusCode)
}

func TestScenario_LimitReturnsLatestInOrder(t *testing.T) {
	req := require.New(t)
	s, _ := newStack(t)

	resp, _ := doRequest(t, s, http.MethodPost, "/participants", "", `{"name":"Alice"}`)
	req.Equal(http.StatusCreated, resp.StatusCode)
	for _, text := range []string{"one", "two", "three"} {
		resp, _ = doRequest(t, s, http.MethodPost, "/messages", "Alice", `{"to":"Todos","text":"`+text+`","type":"message"}`)
		req.Equal(http.StatusCreated, resp.StatusCode)
	}

	all := listMessages(t, s, "Alice")
	resp, body := doRequest(t, s, http.MethodGet, "/messages?limit=2", "Alice", "")
	req.Equal(http.StatusOK, resp.StatusCode)
	var window []MessageResponse
	req.NoError(json.Unmarshal(body, &window))
	req.Equal(all[len(all)-2:], window)
	req.Equal([]string{"two", "three"}, lo.Map(window, func(m MessageResponse, _ int) string { return m.Text }))

	for _, limit := range []string{"0", "-3", "abc"} {
		resp, _ = doRequest(t, s, http.MethodGet, "/messages?limit="+limit, "Alice", "")
		req.Equal(http.StatusUnprocessableEntity, resp.StatusCode, "limit %q", limit)
	}
}
