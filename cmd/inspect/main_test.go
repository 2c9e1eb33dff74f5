package main

import (
	"bytes"
	"chat-room/domain"
	"chat-room/repositories"
	"log/slog"
	"testing"

	"github.com/dgraph-io/badger/v4"
	"github.com/mama165/sdk-go/logs"
	"github.com/stretchr/testify/require"
)

func setupStore(t *testing.T) (*badger.DB, *repositories.ParticipantRepository, *repositories.MessageRepository) {
	log := logs.GetLoggerFromLevel(slog.LevelDebug)
	db, err := badger.Open(badger.DefaultOptions("").WithInMemory(true).WithLogger(nil))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	messages, err := repositories.NewMessageRepository(db, log, 10)
	require.NoError(t, err)
	t.Cleanup(func() { _ = messages.Close() })
	return db, repositories.NewParticipantRepository(db, messages, log, 10), messages
}

func TestDump(t *testing.T) {
	db, participants, messages := setupStore(t)
	_, err := participants.Join("Alice")
	require.NoError(t, err)
	_, err = messages.Append(domain.Message{From: "Alice", To: "Bob", Text: "secret", Type: domain.Private})
	require.NoError(t, err)
	// A record that cannot be decoded is reported and skipped
	require.NoError(t, db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(repositories.MessagePrefix+"99999999999999999999"), []byte{0xff, 0xff})
	}))

	tests := []struct {
		name     string
		dump     func(txn *badger.Txn, out *bytes.Buffer) error
		expected []string
	}{
		{
			name:     "participants",
			dump:     func(txn *badger.Txn, out *bytes.Buffer) error { return dumpParticipants(txn, out) },
			expected: []string{"== Participants ==", "Alice"},
		},
		{
			name: "messages",
			dump: func(txn *badger.Txn, out *bytes.Buffer) error { return dumpMessages(txn, out) },
			expected: []string{
				"== Messages ==",
				domain.JoinNotice, "status",
				"secret", "private_message", "Bob",
				"Error decoding key " + repositories.MessagePrefix + "99999999999999999999",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := require.New(t)
			var out bytes.Buffer
			req.NoError(db.View(func(txn *badger.Txn) error { return tt.dump(txn, &out) }))
			for _, expected := range tt.expected {
				req.Contains(out.String(), expected)
			}
		})
	}
}
