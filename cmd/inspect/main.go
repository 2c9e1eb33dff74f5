package main

import (
	"chat-room/repositories"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/olekukonko/tablewriter"
)

func main() {
	dbPath := flag.String("db", "./data", "Path to badger DB")
	scope := flag.String("scope", "all", "What to dump: participants, messages or all")
	flag.Parse()

	db, err := openDB(*dbPath)
	if err != nil {
		log.Fatal("Error while opening Badger: ", err)
	}
	defer db.Close()

	err = db.View(func(txn *badger.Txn) error {
		if *scope == "all" || *scope == "participants" {
			if err := dumpParticipants(txn, os.Stdout); err != nil {
				return err
			}
		}
		if *scope == "all" || *scope == "messages" {
			return dumpMessages(txn, os.Stdout)
		}
		return nil
	})
	if err != nil {
		log.Fatal(err)
	}
}

func newTable(w io.Writer, header ...string) *tablewriter.Table {
	table := tablewriter.NewWriter(w)
	table.SetHeader(header)
	table.SetAutoWrapText(false)
	table.SetAutoFormatHeaders(true)
	table.SetHeaderAlignment(tablewriter.ALIGN_LEFT)
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	table.SetCenterSeparator("")
	table.SetColumnSeparator("")
	table.SetRowSeparator("")
	table.SetHeaderLine(false)
	table.SetBorder(false)
	table.SetTablePadding("\t")
	return table
}

func dumpParticipants(txn *badger.Txn, w io.Writer) error {
	table := newTable(w, "Name", "Joined", "Last seen", "Silent for")
	err := scan(txn, repositories.ParticipantPrefix, func(key string, value []byte) error {
		participant, err := repositories.DecodeParticipant(value)
		if err != nil {
			fmt.Fprintf(w, "Error decoding key %s: %v\n", key, err)
			return nil
		}
		table.Append([]string{
			participant.Name,
			participant.JoinedAt.Format(time.DateTime),
			participant.LastSeen.Format(time.DateTime),
			time.Since(participant.LastSeen).Truncate(time.Second).String(),
		})
		return nil
	})
	if err != nil {
		return err
	}
	fmt.Fprintln(w, "== Participants ==")
	table.Render()
	return nil
}

func dumpMessages(txn *badger.Txn, w io.Writer) error {
	table := newTable(w, "Seq", "ID", "Time", "Type", "From", "To", "Text")
	err := scan(txn, repositories.MessagePrefix, func(key string, value []byte) error {
		message, err := repositories.DecodeMessage(value)
		if err != nil {
			fmt.Fprintf(w, "Error decoding key %s: %v\n", key, err)
			return nil
		}
		// First 8 characters of the id are enough to tell messages apart
		displayID := message.ID.String()[:8]
		table.Append([]string{
			strconv.FormatUint(message.Seq, 10),
			displayID,
			message.Time,
			message.Type.String(),
			message.From,
			message.To,
			message.Text,
		})
		return nil
	})
	if err != nil {
		return err
	}
	fmt.Fprintln(w, "== Messages ==")
	table.Render()
	return nil
}

func scan(txn *badger.Txn, prefix string, fn func(key string, value []byte) error) error {
	it := txn.NewIterator(badger.DefaultIteratorOptions)
	defer it.Close()

	prefixBytes := []byte(prefix)
	for it.Seek(prefixBytes); it.ValidForPrefix(prefixBytes); it.Next() {
		item := it.Item()
		key := string(item.Key())
		if err := item.Value(func(v []byte) error { return fn(key, v) }); err != nil {
			return err
		}
	}
	return nil
}

func openDB(path string) (*badger.DB, error) {
	opts := badger.DefaultOptions(path).
		WithReadOnly(true).
		WithLogger(nil).
		WithBypassLockGuard(true)

	db, err := badger.Open(opts)
	if err != nil {
		if strings.Contains(err.Error(), "Log truncate required") {
			// Open once in write mode so badger can truncate, then reopen read-only
			repairOpts := badger.DefaultOptions(path).
				WithLogger(nil).WithBypassLockGuard(true)
			db, err = badger.Open(repairOpts)
			if err != nil {
				return nil, fmt.Errorf("repair failed: %w", err)
			}
			_ = db.Close()
			return badger.Open(opts)
		}
		return nil, err
	}
	return db, nil
}
