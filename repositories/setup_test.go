package repositories

import (
	"log/slog"
	"testing"

	"github.com/dgraph-io/badger/v4"
	"github.com/mama165/sdk-go/logs"
	"github.com/stretchr/testify/require"
)

const testRetries = 10

// setupTestDB initializes an in-memory Badger instance closed at the end of the test.
func setupTestDB(t *testing.T) *badger.DB {
	opts := badger.DefaultOptions("").WithInMemory(true).WithLogger(nil)
	db, err := badger.Open(opts)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func setupRepositories(t *testing.T) (*badger.DB, *ParticipantRepository, *MessageRepository) {
	db := setupTestDB(t)
	log := logs.GetLoggerFromLevel(slog.LevelDebug)
	messages, err := NewMessageRepository(db, log, testRetries)
	require.NoError(t, err)
	t.Cleanup(func() { _ = messages.Close() })
	return db, NewParticipantRepository(db, messages, log, testRetries), messages
}
