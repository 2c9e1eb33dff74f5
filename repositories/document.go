package repositories

import (
	"chat-room/errors"
	"fmt"

	"github.com/dgraph-io/badger/v4"
	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/types/known/structpb"
)

// Records are stored as protobuf Struct documents so that every collection
// shares one schemaless encoding.
func encodeDocument(fields map[string]any) ([]byte, error) {
	doc, err := structpb.NewStruct(fields)
	if err != nil {
		return nil, fmt.Errorf("build document: %w", err)
	}
	return proto.Marshal(doc)
}

func decodeDocument(data []byte) (*structpb.Struct, error) {
	var doc structpb.Struct
	if err := proto.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("unmarshal document: %w", err)
	}
	return &doc, nil
}

func stringField(doc *structpb.Struct, name string) string {
	return doc.GetFields()[name].GetStringValue()
}

func numberField(doc *structpb.Struct, name string) float64 {
	return doc.GetFields()[name].GetNumberValue()
}

// update runs fn in a read-write transaction and replays it when badger
// reports a conflict with a concurrent transaction on the same keys.
// fn always runs at least once, whatever retries is.
func update(db *badger.DB, retries int, fn func(txn *badger.Txn) error) error {
	var err error
	for attempt := 0; attempt <= max(retries, 0); attempt++ {
		if err = db.Update(fn); !errors.Is(err, badger.ErrConflict) {
			return err
		}
	}
	return err
}

// wrapStorage keeps domain errors untouched and flags everything else as a storage failure.
func wrapStorage(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, errors.ErrParticipantAlreadyExists),
		errors.Is(err, errors.ErrParticipantNotFound),
		errors.Is(err, errors.ErrMessageNotFound),
		errors.Is(err, errors.ErrForbidden):
		return err
	default:
		return fmt.Errorf("%w: %w", errors.ErrStorage, err)
	}
}
