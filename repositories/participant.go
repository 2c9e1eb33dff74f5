//go:generate go run go.uber.org/mock/mockgen -source=participant.go -destination=../mocks/mock_participant_repository.go -package=mocks
package repositories

import (
	"chat-room/domain"
	"chat-room/errors"
	"log/slog"
	"sort"
	"time"

	"github.com/dgraph-io/badger/v4"
)

const ParticipantPrefix = "participant:"

type IParticipantRepository interface {
	Join(name string) (domain.Participant, error)
	Heartbeat(name string) error
	IsActive(name string) (bool, error)
	List() ([]domain.Participant, error)
	EvictStale(now time.Time, threshold time.Duration) ([]string, error)
}

// ParticipantRepository is the registry of active participants, keyed by name.
// Every mutation is a serializable badger transaction: a concurrent writer on
// the same name makes one of them conflict and replay on a fresh snapshot.
type ParticipantRepository struct {
	db       *badger.DB
	log      *slog.Logger
	messages *MessageRepository
	retries  int
}

func NewParticipantRepository(db *badger.DB, messages *MessageRepository, log *slog.Logger, retries int) *ParticipantRepository {
	return &ParticipantRepository{db: db, log: log, messages: messages, retries: retries}
}

// Join registers name and appends its join notice in the same transaction,
// so a participant never becomes active without its notice.
func (p *ParticipantRepository) Join(name string) (domain.Participant, error) {
	var participant domain.Participant
	err := update(p.db, p.retries, func(txn *badger.Txn) error {
		key := participantKey(name)
		_, err := txn.Get(key)
		if err == nil {
			return errors.ErrParticipantAlreadyExists
		}
		if !errors.Is(err, badger.ErrKeyNotFound) {
			return err
		}

		now := time.Now()
		participant = domain.Participant{Name: name, LastSeen: now, JoinedAt: now}
		data, err := encodeParticipant(participant)
		if err != nil {
			return err
		}
		if err = txn.Set(key, data); err != nil {
			return err
		}
		_, err = p.messages.stage(txn, domain.NewStatusMessage(name, domain.JoinNotice))
		return err
	})
	if err != nil {
		return domain.Participant{}, wrapStorage(err)
	}
	p.log.Info("Participant joined", "name", name)
	return participant, nil
}

// Heartbeat refreshes the last seen instant of an existing participant.
func (p *ParticipantRepository) Heartbeat(name string) error {
	err := update(p.db, p.retries, func(txn *badger.Txn) error {
		participant, err := getParticipant(txn, name)
		if err != nil {
			return err
		}
		participant.LastSeen = time.Now()
		data, err := encodeParticipant(participant)
		if err != nil {
			return err
		}
		return txn.Set(participantKey(name), data)
	})
	return wrapStorage(err)
}

func (p *ParticipantRepository) IsActive(name string) (bool, error) {
	err := p.db.View(func(txn *badger.Txn) error {
		_, err := getParticipant(txn, name)
		return err
	})
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, errors.ErrParticipantNotFound):
		return false, nil
	default:
		return false, wrapStorage(err)
	}
}

// List returns a snapshot of the active participants in join order.
func (p *ParticipantRepository) List() ([]domain.Participant, error) {
	participants := []domain.Participant{}
	err := p.db.View(func(txn *badger.Txn) error {
		return scanParticipants(txn, func(participant domain.Participant, _ []byte) {
			participants = append(participants, participant)
		})
	})
	if err != nil {
		return nil, wrapStorage(err)
	}
	sort.SliceStable(participants, func(i, j int) bool {
		if participants[i].JoinedAt.Equal(participants[j].JoinedAt) {
			return participants[i].Name < participants[j].Name
		}
		return participants[i].JoinedAt.Before(participants[j].JoinedAt)
	})
	return participants, nil
}

// EvictStale removes every participant silent for longer than threshold at now
// and returns their names. The whole scan and removal is one transaction: a
// heartbeat committed meanwhile forces a replay that sees the fresh instant.
func (p *ParticipantRepository) EvictStale(now time.Time, threshold time.Duration) ([]string, error) {
	var evicted []string
	err := update(p.db, p.retries, func(txn *badger.Txn) error {
		evicted = nil
		var staleKeys [][]byte
		err := scanParticipants(txn, func(participant domain.Participant, key []byte) {
			if participant.IsStale(now, threshold) {
				staleKeys = append(staleKeys, key)
				evicted = append(evicted, participant.Name)
			}
		})
		if err != nil {
			return err
		}
		for _, key := range staleKeys {
			if err = txn.Delete(key); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, wrapStorage(err)
	}
	return evicted, nil
}

func getParticipant(txn *badger.Txn, name string) (domain.Participant, error) {
	item, err := txn.Get(participantKey(name))
	if errors.Is(err, badger.ErrKeyNotFound) {
		return domain.Participant{}, errors.ErrParticipantNotFound
	}
	if err != nil {
		return domain.Participant{}, err
	}
	var participant domain.Participant
	err = item.Value(func(value []byte) error {
		participant, err = DecodeParticipant(value)
		return err
	})
	return participant, err
}

func scanParticipants(txn *badger.Txn, fn func(participant domain.Participant, key []byte)) error {
	prefix := []byte(ParticipantPrefix)
	options := badger.DefaultIteratorOptions
	options.Prefix = prefix
	it := txn.NewIterator(options)
	defer it.Close()

	for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
		item := it.Item()
		err := item.Value(func(value []byte) error {
			participant, err := DecodeParticipant(value)
			if err != nil {
				return err
			}
			fn(participant, item.KeyCopy(nil))
			return nil
		})
		if err != nil {
			return err
		}
	}
	return nil
}

func participantKey(name string) []byte {
	return []byte(ParticipantPrefix + name)
}

func encodeParticipant(participant domain.Participant) ([]byte, error) {
	return encodeDocument(map[string]any{
		"name":       participant.Name,
		"lastStatus": float64(participant.LastSeen.UnixMilli()),
		"joinedAt":   float64(participant.JoinedAt.UnixMilli()),
	})
}

// DecodeParticipant reads a stored participant document.
func DecodeParticipant(data []byte) (domain.Participant, error) {
	doc, err := decodeDocument(data)
	if err != nil {
		return domain.Participant{}, err
	}
	return domain.Participant{
		Name:     stringField(doc, "name"),
		LastSeen: time.UnixMilli(int64(numberField(doc, "lastStatus"))),
		JoinedAt: time.UnixMilli(int64(numberField(doc, "joinedAt"))),
	}, nil
}
