// Package history keeps a local record of chat sessions so a conversation
// can be found and resumed without asking the server.
// History is stored as a JSON file in the user's config directory.
package history

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/workairs/wa-cli/internal/config"
)

const (
	fileName   = "history.json"
	maxEntries = 200
)

// fileMu guards concurrent access to the history file.
var fileMu sync.Mutex

// Entry is one chat session, keyed by its server conversation id.
type Entry struct {
	Timestamp      time.Time `json:"timestamp"`
	ConversationID string    `json:"conversation_id"`
	Title          string    `json:"title"`
	Turns          int       `json:"turns"`
	LastReply      string    `json:"last_reply,omitempty"`
	Failed         bool      `json:"failed,omitempty"`
}

func historyPath() string {
	return filepath.Join(config.Dir(), fileName)
}

// Save records a session. An existing entry with the same conversation id is
// replaced and moved to the end. Turn counts add up and the first title
// recorded for the conversation is kept.
func Save(entry Entry) error {
	fileMu.Lock()
	defer fileMu.Unlock()

	entry.Timestamp = time.Now()

	entries, _ := loadAll()
	if entry.ConversationID != "" {
		for i, e := range entries {
			if e.ConversationID != entry.ConversationID {
				continue
			}
			if e.Title != "" {
				entry.Title = e.Title
			}
			entry.Turns += e.Turns
			entries = append(entries[:i], entries[i+1:]...)
			break
		}
	}
	entries = append(entries, entry)

	// Trim to max entries, keeping the most recent.
	if len(entries) > maxEntries {
		entries = entries[len(entries)-maxEntries:]
	}

	return writeAll(entries)
}

// Load returns the most recent n sessions, oldest first.
func Load(limit int) ([]Entry, error) {
	entries, err := loadAll()
	if err != nil {
		return nil, err
	}

	if limit > 0 && len(entries) > limit {
		entries = entries[len(entries)-limit:]
	}

	return entries, nil
}

// Latest returns the most recently used session.
func Latest() (Entry, bool) {
	entries, err := Load(1)
	if err != nil || len(entries) == 0 {
		return Entry{}, false
	}
	return entries[0], true
}

// Remove drops the session with the given conversation id, if present.
func Remove(conversationID string) error {
	fileMu.Lock()
	defer fileMu.Unlock()

	entries, err := loadAll()
	if err != nil {
		return err
	}
	kept := entries[:0]
	for _, e := range entries {
		if e.ConversationID != conversationID {
			kept = append(kept, e)
		}
	}
	if len(kept) == len(entries) {
		return nil
	}
	return writeAll(kept)
}

func writeAll(entries []Entry) error {
	if err := os.MkdirAll(config.Dir(), 0o700); err != nil {
		return err
	}

	data, err := json.MarshalIndent(entries, "", "  ")
	if err != nil {
		return err
	}

	return os.WriteFile(historyPath(), data, 0o600)
}

func loadAll() ([]Entry, error) {
	data, err := os.ReadFile(historyPath())
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}

	var entries []Entry
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, err
	}

	return entries, nil
}
