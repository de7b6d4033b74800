package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/workairs/wa-cli/internal/api"
	"github.com/workairs/wa-cli/internal/chat"
	"github.com/workairs/wa-cli/internal/config"
	"github.com/workairs/wa-cli/internal/history"
	"github.com/workairs/wa-cli/internal/stats"
)

func setupHome(t *testing.T) {
	t.Helper()
	t.Setenv("HOME", t.TempDir())
	t.Setenv("WORKAIRS_TOKEN", "")
	t.Setenv("WORKAIRS_API_URL", "")
}

// restoreTurnHooks puts the turn output and interrupt wiring back after a
// test replaces them.
func restoreTurnHooks(t *testing.T) {
	t.Helper()
	out, interrupt, noStream := chatOut, interruptContext, chatNoStream
	chatOut = io.Discard
	chatNoStream = false
	t.Cleanup(func() {
		chatOut, interruptContext, chatNoStream = out, interrupt, noStream
	})
}

// cancelWriter records output and calls cancel once the output contains
// after.
type cancelWriter struct {
	buf    strings.Builder
	after  string
	cancel func()
}

func (w *cancelWriter) Write(p []byte) (int, error) {
	w.buf.Write(p)
	if w.cancel != nil && strings.Contains(w.buf.String(), w.after) {
		w.cancel()
		w.cancel = nil
	}
	return len(p), nil
}

func record(ev string) string {
	return "data: " + ev + "\n\n"
}

// newChatBackend serves records on the stream endpoint. With hold set the
// response stays open after the records until the client goes away.
func newChatBackend(t *testing.T, hold bool, records ...string) *api.Client {
	t.Helper()
	done := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/agent/chat/stream/" {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "text/event-stream")
		flusher := w.(http.Flusher)
		for _, rec := range records {
			io.WriteString(w, rec)
			flusher.Flush()
		}
		if hold {
			select {
			case <-r.Context().Done():
			case <-done:
			}
		}
	}))
	t.Cleanup(srv.Close)
	t.Cleanup(func() { close(done) })

	client, err := api.NewClient(&config.Config{APIURL: srv.URL, Token: "tok"})
	if err != nil {
		t.Fatalf("NewClient failed: %v", err)
	}
	return client
}

func lastStats(t *testing.T) stats.Record {
	t.Helper()
	records, err := stats.LoadAll()
	if err != nil {
		t.Fatalf("LoadAll failed: %v", err)
	}
	if len(records) == 0 {
		t.Fatal("expected a stats record")
	}
	return records[len(records)-1]
}

func TestChatTurn_InterruptKeepsPartialReply(t *testing.T) {
	setupHome(t)
	restoreTurnHooks(t)
	client := newChatBackend(t, true,
		record(`{"type":"start","metadata":{"conversation_id":"c1"}}`),
		record(`{"type":"token","content":"partial reply"}`),
	)

	var stopTurn context.CancelFunc
	interruptContext = func(ctx context.Context) (context.Context, context.CancelFunc) {
		ctx, cancel := context.WithCancel(ctx)
		stopTurn = cancel
		return ctx, cancel
	}
	out := &cancelWriter{after: "partial", cancel: func() { stopTurn() }}
	chatOut = out

	st, err := chatTurn(context.Background(), client, chat.State{}, "how are my leads?", nil)
	if err != nil {
		t.Fatalf("an interrupted turn should not fail: %v", err)
	}
	if st.ConversationID != "c1" {
		t.Errorf("expected conversation c1, got %q", st.ConversationID)
	}
	last := st.Last()
	if last.Content != "partial reply" {
		t.Errorf("partial reply should be kept, got %q", last.Content)
	}
	if st.Streaming() {
		t.Error("interrupted reply should be settled")
	}
	if !strings.Contains(out.buf.String(), "partial reply") {
		t.Errorf("expected partial reply on output, got %q", out.buf.String())
	}

	if rec := lastStats(t); rec.Outcome != stats.OutcomeCanceled {
		t.Errorf("expected outcome %q, got %q", stats.OutcomeCanceled, rec.Outcome)
	}
	e, ok := history.Latest()
	if !ok || e.ConversationID != "c1" {
		t.Fatalf("expected history entry for c1, got %+v", e)
	}
	if e.Failed {
		t.Error("interrupted turn should not be marked failed")
	}
	if e.LastReply != "partial reply" {
		t.Errorf("unexpected last reply %q", e.LastReply)
	}
}

func TestChatTurn_ParentCancelIsNotAStop(t *testing.T) {
	setupHome(t)
	restoreTurnHooks(t)
	client := newChatBackend(t, true,
		record(`{"type":"start","metadata":{"conversation_id":"c1"}}`),
		record(`{"type":"token","content":"partial reply"}`),
	)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	chatOut = &cancelWriter{after: "partial", cancel: cancel}

	_, err := chatTurn(ctx, client, chat.State{}, "hello", nil)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if rec := lastStats(t); rec.Outcome != stats.OutcomeError {
		t.Errorf("expected outcome %q, got %q", stats.OutcomeError, rec.Outcome)
	}
}

func TestChatOnce_Success(t *testing.T) {
	setupHome(t)
	restoreTurnHooks(t)
	client := newChatBackend(t, false,
		record(`{"type":"start","metadata":{"conversation_id":"c9"}}`),
		record(`{"type":"function_call","metadata":{"function_name":"list_leads"}}`),
		record(`{"type":"function_result","metadata":{"success":true}}`),
		record(`{"type":"token","content":"You have 3 leads."}`),
		record(`{"type":"done","metadata":{"model":"gpt-4o","tokens_used":42,"response_time_ms":120.5}}`),
	)

	if err := chatOnce(context.Background(), client, chat.State{}, "count my leads", nil); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	rec := lastStats(t)
	if rec.Outcome != stats.OutcomeOK {
		t.Errorf("expected outcome %q, got %q", stats.OutcomeOK, rec.Outcome)
	}
	if rec.Model != "gpt-4o" || rec.TokensUsed != 42 || rec.ServerTimeMS != 120.5 {
		t.Errorf("unexpected done metadata: %+v", rec)
	}
	if len(rec.Tools) != 1 || rec.Tools[0] != "list_leads" {
		t.Errorf("expected tools [list_leads], got %v", rec.Tools)
	}
}

func TestChatOnce_ServerErrorEventFails(t *testing.T) {
	setupHome(t)
	restoreTurnHooks(t)
	client := newChatBackend(t, false,
		record(`{"type":"start","metadata":{"conversation_id":"c2"}}`),
		record(`{"type":"error","content":"quota exceeded"}`),
	)

	err := chatOnce(context.Background(), client, chat.State{}, "hello", nil)
	if err == nil {
		t.Fatal("expected an error for a failed reply")
	}
	if !strings.Contains(err.Error(), "quota exceeded") {
		t.Errorf("error should carry the server message, got %v", err)
	}
	if rec := lastStats(t); rec.Outcome != stats.OutcomeFailed {
		t.Errorf("expected outcome %q, got %q", stats.OutcomeFailed, rec.Outcome)
	}
	e, _ := history.Latest()
	if !e.Failed {
		t.Error("history entry should be marked failed")
	}
}

func TestChatOnce_TransportError(t *testing.T) {
	setupHome(t)
	restoreTurnHooks(t)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()
	client, err := api.NewClient(&config.Config{APIURL: srv.URL, Token: "tok"})
	if err != nil {
		t.Fatalf("NewClient failed: %v", err)
	}

	if err := chatOnce(context.Background(), client, chat.State{}, "hello", nil); err == nil {
		t.Fatal("expected a transport error")
	}
	if rec := lastStats(t); rec.Outcome != stats.OutcomeError {
		t.Errorf("expected outcome %q, got %q", stats.OutcomeError, rec.Outcome)
	}
}

func TestRecordStats_Outcomes(t *testing.T) {
	ok := chat.State{}.Send("q")
	ok = chat.Reduce(ok, chat.Event{Type: chat.EventFunctionResult})
	ok = chat.Reduce(ok, chat.Event{Type: chat.EventDone, Metadata: &chat.Metadata{Model: "m1"}})

	failed := chat.Reduce(chat.State{}.Send("q"), chat.Event{Type: chat.EventError})

	cases := []struct {
		name     string
		st       chat.State
		canceled bool
		err      error
		want     string
		model    string
	}{
		{"ok", ok, false, nil, stats.OutcomeOK, "m1"},
		{"failed", failed, false, nil, stats.OutcomeFailed, ""},
		{"error", ok, false, fmt.Errorf("boom"), stats.OutcomeError, ""},
		{"canceled", ok, true, nil, stats.OutcomeCanceled, "m1"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			setupHome(t)
			recordStats(tc.st, &turnMetrics{}, tc.canceled, tc.err)

			rec := lastStats(t)
			if rec.Outcome != tc.want {
				t.Errorf("expected outcome %q, got %q", tc.want, rec.Outcome)
			}
			if rec.Model != tc.model {
				t.Errorf("expected model %q, got %q", tc.model, rec.Model)
			}
			if len(rec.Tools) != 0 {
				t.Errorf("orphan results should not count as tools, got %v", rec.Tools)
			}
		})
	}
}

func TestRecordTurn_KeepsFirstTitle(t *testing.T) {
	setupHome(t)

	st := chat.State{ConversationID: "c1"}.Send("first question")
	recordTurn(st, "first question", nil)
	st = st.Send("follow up")
	recordTurn(st, "follow up", nil)

	e, ok := history.Latest()
	if !ok {
		t.Fatal("expected a history entry")
	}
	if e.Title != "first question" {
		t.Errorf("expected title %q, got %q", "first question", e.Title)
	}
	if e.Turns != 2 {
		t.Errorf("expected 2 turns, got %d", e.Turns)
	}
}
