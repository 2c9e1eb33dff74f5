//go:generate go run go.uber.org/mock/mockgen -source=message.go -destination=../mocks/mock_message_repository.go -package=mocks
package repositories

import (
	"chat-room/domain"
	"chat-room/errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/google/uuid"
	"github.com/samber/lo"
)

const (
	MessagePrefix   = "msg:"
	messageIDPrefix = "msgid:"
	messageSequence = "seq:messages"
)

type IMessageRepository interface {
	Append(message domain.Message) (domain.Message, error)
	Query(requester string, limit int) ([]domain.Message, error)
	UpdateOwned(id uuid.UUID, requester string, patch domain.MessagePatch) (domain.Message, error)
	DeleteOwned(id uuid.UUID, requester string) error
}

// MessageRepository is the append-only chat log.
// Messages live under "msg:{seq}" so that a key scan returns them in creation
// order, and "msgid:{uuid}" indexes the primary key for update and delete.
type MessageRepository struct {
	db      *badger.DB
	log     *slog.Logger
	seq     *badger.Sequence
	retries int
}

func NewMessageRepository(db *badger.DB, log *slog.Logger, retries int) (*MessageRepository, error) {
	seq, err := db.GetSequence([]byte(messageSequence), 100)
	if err != nil {
		return nil, fmt.Errorf("message sequence: %w", err)
	}
	return &MessageRepository{db: db, log: log, seq: seq, retries: retries}, nil
}

// Close releases the leased sequence range. Unused numbers are skipped, never reused.
func (m *MessageRepository) Close() error {
	return m.seq.Release()
}

// Append stores a new message and returns it with its id, sequence and display time.
// A message that already carries a Time keeps it.
func (m *MessageRepository) Append(message domain.Message) (domain.Message, error) {
	var stored domain.Message
	err := update(m.db, m.retries, func(txn *badger.Txn) error {
		var err error
		stored, err = m.stage(txn, message)
		return err
	})
	if err != nil {
		return domain.Message{}, wrapStorage(err)
	}
	return stored, nil
}

// stage writes message inside txn. It lets other repositories commit a
// message atomically with their own writes.
func (m *MessageRepository) stage(txn *badger.Txn, message domain.Message) (domain.Message, error) {
	seq, err := m.seq.Next()
	if err != nil {
		return domain.Message{}, err
	}
	message.ID = uuid.New()
	message.Seq = seq
	if message.Time == "" {
		message.Time = time.Now().Format(domain.TimeLayout)
	}

	data, err := encodeMessage(message)
	if err != nil {
		return domain.Message{}, err
	}
	key := messageKey(seq)
	if err = txn.Set(key, data); err != nil {
		return domain.Message{}, err
	}
	if err = txn.Set(messageIDKey(message.ID), key); err != nil {
		return domain.Message{}, err
	}
	return message, nil
}

// Query returns the messages visible to requester in chronological order.
// With limit > 0 only the most recent limit matches are kept: the log is
// scanned backwards from the newest key and the window reversed at the end.
func (m *MessageRepository) Query(requester string, limit int) ([]domain.Message, error) {
	var found []domain.Message
	err := m.db.View(func(txn *badger.Txn) error {
		prefix := []byte(MessagePrefix)
		options := badger.DefaultIteratorOptions
		options.Reverse = true
		options.Prefix = prefix
		it := txn.NewIterator(options)
		defer it.Close()

		// Greater than any padded sequence, so the scan starts at the newest message
		seekKey := []byte(MessagePrefix + "99999999999999999999")
		for it.Seek(seekKey); it.ValidForPrefix(prefix); it.Next() {
			if limit > 0 && len(found) == limit {
				m.log.Debug(fmt.Sprintf("Maximum of %d message reached", limit))
				break
			}
			var message domain.Message
			err := it.Item().Value(func(value []byte) error {
				var err error
				message, err = DecodeMessage(value)
				return err
			})
			if err != nil {
				return err
			}
			if message.IsVisibleTo(requester) {
				found = append(found, message)
			}
		}
		return nil
	})
	if err != nil {
		return nil, wrapStorage(err)
	}
	if found == nil {
		return []domain.Message{}, nil
	}
	return lo.Reverse(found), nil
}

// UpdateOwned replaces to/text/type of the message identified by id.
// Existence is checked before ownership.
func (m *MessageRepository) UpdateOwned(id uuid.UUID, requester string, patch domain.MessagePatch) (domain.Message, error) {
	var updated domain.Message
	err := update(m.db, m.retries, func(txn *badger.Txn) error {
		key, current, err := m.getOwned(txn, id, requester)
		if err != nil {
			return err
		}
		updated = current.Apply(patch)
		data, err := encodeMessage(updated)
		if err != nil {
			return err
		}
		return txn.Set(key, data)
	})
	if err != nil {
		return domain.Message{}, wrapStorage(err)
	}
	return updated, nil
}

// DeleteOwned removes the message identified by id and its index entry.
func (m *MessageRepository) DeleteOwned(id uuid.UUID, requester string) error {
	err := update(m.db, m.retries, func(txn *badger.Txn) error {
		key, _, err := m.getOwned(txn, id, requester)
		if err != nil {
			return err
		}
		if err = txn.Delete(key); err != nil {
			return err
		}
		return txn.Delete(messageIDKey(id))
	})
	return wrapStorage(err)
}

func (m *MessageRepository) getOwned(txn *badger.Txn, id uuid.UUID, requester string) ([]byte, domain.Message, error) {
	indexItem, err := txn.Get(messageIDKey(id))
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, domain.Message{}, errors.ErrMessageNotFound
	}
	if err != nil {
		return nil, domain.Message{}, err
	}
	key, err := indexItem.ValueCopy(nil)
	if err != nil {
		return nil, domain.Message{}, err
	}

	item, err := txn.Get(key)
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, domain.Message{}, errors.ErrMessageNotFound
	}
	if err != nil {
		return nil, domain.Message{}, err
	}
	var message domain.Message
	err = item.Value(func(value []byte) error {
		message, err = DecodeMessage(value)
		return err
	})
	if err != nil {
		return nil, domain.Message{}, err
	}

	if !message.IsOwnedBy(requester) {
		return nil, domain.Message{}, errors.ErrForbidden
	}
	return key, message, nil
}

func messageKey(seq uint64) []byte {
	return []byte(fmt.Sprintf("%s%020d", MessagePrefix, seq))
}

func messageIDKey(id uuid.UUID) []byte {
	return []byte(messageIDPrefix + id.String())
}

func encodeMessage(message domain.Message) ([]byte, error) {
	return encodeDocument(map[string]any{
		"id":   message.ID.String(),
		"seq":  float64(message.Seq),
		"from": message.From,
		"to":   message.To,
		"text": message.Text,
		"type": message.Type.String(),
		"time": message.Time,
	})
}

// DecodeMessage reads a stored message document.
func DecodeMessage(data []byte) (domain.Message, error) {
	doc, err := decodeDocument(data)
	if err != nil {
		return domain.Message{}, err
	}
	id, err := uuid.Parse(stringField(doc, "id"))
	if err != nil {
		return domain.Message{}, err
	}
	messageType, ok := domain.ParseMessageType(stringField(doc, "type"))
	if !ok {
		return domain.Message{}, fmt.Errorf("unknown message type %q", stringField(doc, "type"))
	}
	return domain.Message{
		ID:   id,
		Seq:  uint64(numberField(doc, "seq")),
		From: stringField(doc, "from"),
		To:   stringField(doc, "to"),
		Text: stringField(doc, "text"),
		Type: messageType,
		Time: stringField(doc, "time"),
	}, nil
}
