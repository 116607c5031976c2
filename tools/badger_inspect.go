package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"strings"

	"friend-chat/repositories"

	"github.com/dgraph-io/badger/v4"
	"github.com/google/uuid"
	"github.com/mama165/sdk-go/database"
	"github.com/mama165/sdk-go/logs"
	"github.com/olekukonko/tablewriter"
)

func main() {
	dbPath := flag.String("db", database.DefaultPath, "Path to badger DB")
	// "msg:" or "story:", conversation indexes hold no value worth printing
	prefix := flag.String("prefix", "msg:", "Prefix to scan")
	messageID := flag.String("message", "", "Show a single message with its per-user deletions")
	flag.Parse()

	db, err := openDB(*dbPath)
	if err != nil {
		log.Fatal("Error while opening Badger: ", err)
	}
	defer db.Close()

	table := newTable()
	if *messageID != "" {
		if err := showMessage(db, table, *messageID); err != nil {
			log.Fatal(err)
		}
		table.Render()
		return
	}

	err = db.View(func(txn *badger.Txn) error {
		it := txn.NewIterator(badger.DefaultIteratorOptions)
		defer it.Close()

		prefixBytes := []byte(*prefix)
		for it.Seek(prefixBytes); it.ValidForPrefix(prefixBytes); it.Next() {
			item := it.Item()
			key := string(item.Key())
			if strings.HasPrefix(key, "conv:") {
				continue
			}

			err := item.Value(func(v []byte) error {
				row, err := toRow(key, v)
				if err != nil {
					// Keep scanning, one broken entry should not hide the others
					fmt.Printf("Error decoding key %s: %v\n", key, err)
					return nil
				}
				table.Append(row)
				return nil
			})
			if err != nil {
				return err
			}
		}
		return nil
	})

	if err != nil {
		log.Fatal(err)
	}

	table.Render()
}

func newTable() *tablewriter.Table {
	table := tablewriter.NewWriter(os.Stdout)
	table.SetHeader([]string{"Key", "Type", "Timestamp", "Owner", "Status", "Detail"})
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

// showMessage goes through the repository so the record is decoded the way the server reads it.
func showMessage(db *badger.DB, table *tablewriter.Table, rawID string) error {
	id, err := uuid.Parse(rawID)
	if err != nil {
		return fmt.Errorf("invalid message id %q: %w", rawID, err)
	}
	repository := repositories.NewMessageRepository(db, logs.GetLoggerFromString("WARN"), nil)
	message, err := repository.GetMessage(id)
	if err != nil {
		return err
	}
	detail := message.Content
	if len(message.DeletedFor) > 0 {
		detail = fmt.Sprintf("%s (hidden for %s)", detail, strings.Join(message.DeletedFor, ", "))
	}
	table.Append([]string{
		"msg:" + message.ID.String(),
		strings.ToUpper(string(message.Type)),
		message.CreatedAt.Format("2006-01-02 15:04:05"),
		shortID(message.SenderID) + " -> " + shortID(message.ReceiverID),
		string(message.Status),
		detail,
	})
	return nil
}

func toRow(key string, v []byte) ([]string, error) {
	switch {
	case strings.HasPrefix(key, "story:"):
		story, err := repositories.DecodeStory(v)
		if err != nil {
			return nil, err
		}
		return []string{
			key,
			"STORY",
			story.CreatedAt.Format("2006-01-02 15:04:05"),
			shortID(story.UserID),
			fmt.Sprintf("%d views", len(story.Views)),
			story.MediaURL,
		}, nil
	default:
		message, err := repositories.DecodeMessage(v)
		if err != nil {
			return nil, err
		}
		detail := message.Content
		if message.Type.IsMedia() {
			detail = message.MediaURL
		}
		if message.Pinned {
			detail = "[pinned] " + detail
		}
		return []string{
			key,
			strings.ToUpper(string(message.Type)),
			message.CreatedAt.Format("2006-01-02 15:04:05"),
			shortID(message.SenderID) + " -> " + shortID(message.ReceiverID),
			string(message.Status),
			detail,
		}, nil
	}
}

// shortID keeps the first 8 characters for readability.
func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

func openDB(path string) (*badger.DB, error) {
	opts := badger.DefaultOptions(path).
		WithReadOnly(true).
		WithLogger(nil).
		WithBypassLockGuard(true).
		WithValueLogFileSize(10 * 1024 * 1024)

	db, err := badger.Open(opts)
	if err != nil {
		// A crashed writer leaves a log that needs a truncate before read-only opening
		if strings.Contains(err.Error(), "Log truncate required") {
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
