package history

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"
)

func setupTestDir(t *testing.T) {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("HOME", dir)
	os.MkdirAll(filepath.Join(dir, ".workairs"), 0o700)
}

func TestSave_SingleEntry(t *testing.T) {
	setupTestDir(t)

	err := Save(Entry{ConversationID: "c1", Title: "Find leads", Turns: 1, LastReply: "Found 3 leads."})
	if err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	entries, err := Load(10)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("expected 1 entry, got %d", len(entries))
	}
	if entries[0].Title != "Find leads" {
		t.Errorf("expected title 'Find leads', got %q", entries[0].Title)
	}
	if entries[0].LastReply != "Found 3 leads." {
		t.Errorf("unexpected last reply %q", entries[0].LastReply)
	}
	if entries[0].Timestamp.IsZero() {
		t.Error("expected non-zero timestamp")
	}
}

func TestSave_UpsertsByConversation(t *testing.T) {
	setupTestDir(t)

	Save(Entry{ConversationID: "c1", Title: "First question", Turns: 1})
	Save(Entry{ConversationID: "c2", Title: "Other", Turns: 1})
	Save(Entry{ConversationID: "c1", Turns: 1, LastReply: "second answer"})

	entries, err := Load(0)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(entries))
	}
	last := entries[1]
	if last.ConversationID != "c1" {
		t.Fatalf("updated session should move to the end, got %q", last.ConversationID)
	}
	if last.Title != "First question" {
		t.Errorf("title should be kept, got %q", last.Title)
	}
	if last.Turns != 2 {
		t.Errorf("expected 2 turns, got %d", last.Turns)
	}
	if last.LastReply != "second answer" {
		t.Errorf("unexpected last reply %q", last.LastReply)
	}
}

func TestSave_KeepsFirstTitle(t *testing.T) {
	setupTestDir(t)

	Save(Entry{ConversationID: "c1", Title: "first question", Turns: 1})
	Save(Entry{ConversationID: "c1", Title: "follow up", Turns: 1})

	e, ok := Latest()
	if !ok {
		t.Fatal("expected a latest session")
	}
	if e.Title != "first question" {
		t.Errorf("expected the first title to be kept, got %q", e.Title)
	}
	if e.Turns != 2 {
		t.Errorf("expected 2 turns, got %d", e.Turns)
	}
}

func TestSave_TitleFilledWhenFirstWasEmpty(t *testing.T) {
	setupTestDir(t)

	Save(Entry{ConversationID: "c1", Turns: 1})
	Save(Entry{ConversationID: "c1", Title: "later", Turns: 1})

	e, _ := Latest()
	if e.Title != "later" {
		t.Errorf("expected title %q, got %q", "later", e.Title)
	}
}

func TestSave_EntriesWithoutIDAreNotMerged(t *testing.T) {
	setupTestDir(t)

	Save(Entry{Title: "a", Turns: 1, Failed: true})
	Save(Entry{Title: "b", Turns: 1, Failed: true})

	entries, _ := Load(0)
	if len(entries) != 2 {
		t.Errorf("expected 2 entries, got %d", len(entries))
	}
}

func TestSave_TrimsToMaxEntries(t *testing.T) {
	setupTestDir(t)

	for i := 0; i < maxEntries+10; i++ {
		Save(Entry{ConversationID: fmt.Sprintf("c%d", i), Turns: 1})
	}

	entries, err := Load(0)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if len(entries) != maxEntries {
		t.Fatalf("expected %d entries, got %d", maxEntries, len(entries))
	}
	if entries[0].ConversationID != "c10" {
		t.Errorf("oldest entries should be dropped, first is %q", entries[0].ConversationID)
	}
}

func TestLoad_WithLimit(t *testing.T) {
	setupTestDir(t)

	for i := 0; i < 20; i++ {
		Save(Entry{ConversationID: fmt.Sprintf("c%d", i)})
	}

	entries, err := Load(5)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if len(entries) != 5 {
		t.Errorf("expected 5 entries with limit, got %d", len(entries))
	}
	if entries[4].ConversationID != "c19" {
		t.Errorf("expected most recent last, got %q", entries[4].ConversationID)
	}
}

func TestLoad_NoFile(t *testing.T) {
	setupTestDir(t)

	entries, err := Load(10)
	if err != nil {
		t.Fatalf("Load on missing file should not error: %v", err)
	}
	if entries != nil {
		t.Errorf("expected nil entries, got %v", entries)
	}
}

func TestLatest(t *testing.T) {
	setupTestDir(t)

	if _, ok := Latest(); ok {
		t.Fatal("expected no latest session on empty history")
	}

	Save(Entry{ConversationID: "old"})
	Save(Entry{ConversationID: "new"})
	Save(Entry{ConversationID: "old"})

	e, ok := Latest()
	if !ok {
		t.Fatal("expected a latest session")
	}
	if e.ConversationID != "old" {
		t.Errorf("expected 'old' after it was reused, got %q", e.ConversationID)
	}
}

func TestRemove(t *testing.T) {
	setupTestDir(t)

	Save(Entry{ConversationID: "a"})
	Save(Entry{ConversationID: "b"})

	if err := Remove("a"); err != nil {
		t.Fatalf("Remove failed: %v", err)
	}
	if err := Remove("missing"); err != nil {
		t.Fatalf("Remove of unknown id should not error: %v", err)
	}

	entries, _ := Load(0)
	if len(entries) != 1 || entries[0].ConversationID != "b" {
		t.Errorf("expected only 'b' to remain, got %+v", entries)
	}
}
