package ui

import (
	"bytes"
	"fmt"
	"io"
	"strings"
	"testing"

	"github.com/fatih/color"

	"github.com/workairs/wa-cli/internal/chat"
)

func init() { color.NoColor = true }

// fakeSource replays events, then err (io.EOF when nil).
type fakeSource struct {
	events []chat.Event
	err    error
}

func (f *fakeSource) Recv() (chat.Event, error) {
	if len(f.events) == 0 {
		if f.err != nil {
			err := f.err
			f.err = io.EOF
			return chat.Event{}, err
		}
		return chat.Event{}, io.EOF
	}
	ev := f.events[0]
	f.events = f.events[1:]
	return ev, nil
}

func tok(s string) chat.Event { return chat.Event{Type: chat.EventToken, Content: s} }

var done = chat.Event{Type: chat.EventDone}

func TestRenderStream_BasicTokens(t *testing.T) {
	src := &fakeSource{events: []chat.Event{tok("hello"), tok(" world"), done}}

	var buf bytes.Buffer
	st, err := RenderStream(&buf, src, chat.State{}.Send("hi"), "  ")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := st.Last().Content; got != "hello world" {
		t.Errorf("expected 'hello world', got %q", got)
	}
	if !strings.HasPrefix(buf.String(), "  hello") {
		t.Errorf("expected output to start with prefix, got %q", buf.String())
	}
	if st.Streaming() {
		t.Error("message should be finished after done")
	}
}

func TestRenderStream_EmptyPrefix(t *testing.T) {
	src := &fakeSource{events: []chat.Event{tok("test"), done}}

	var buf bytes.Buffer
	_, err := RenderStream(&buf, src, chat.State{}.Send("q"), "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if strings.HasPrefix(buf.String(), " ") {
		t.Error("empty prefix should not add leading space")
	}
}

func TestRenderStream_SkipsEmptyTokens(t *testing.T) {
	src := &fakeSource{events: []chat.Event{tok(""), tok("hello"), tok(""), done}}

	var buf bytes.Buffer
	st, err := RenderStream(&buf, src, chat.State{}.Send("q"), "> ")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if st.Last().Content != "hello" {
		t.Errorf("expected 'hello', got %q", st.Last().Content)
	}
	if strings.Count(buf.String(), "> ") != 1 {
		t.Errorf("prefix should be written once, got %q", buf.String())
	}
}

func TestRenderStream_TransportErrorDropsMessage(t *testing.T) {
	src := &fakeSource{events: []chat.Event{tok("partial")}, err: fmt.Errorf("stream broke")}

	var buf bytes.Buffer
	st, err := RenderStream(&buf, src, chat.State{}.Send("q"), "")
	if err == nil {
		t.Fatal("expected error")
	}
	if !strings.Contains(err.Error(), "stream broke") {
		t.Errorf("expected 'stream broke', got: %v", err)
	}
	if len(st.Messages) != 1 || st.Messages[0].Role != chat.RoleUser {
		t.Errorf("expected only the user message to remain, got %+v", st.Messages)
	}
}

func TestRenderStream_ServerErrorIsNotReturned(t *testing.T) {
	src := &fakeSource{events: []chat.Event{tok("x"), {Type: chat.EventError, Content: "model overloaded"}}}

	var buf bytes.Buffer
	st, err := RenderStream(&buf, src, chat.State{}.Send("q"), "")
	if err != nil {
		t.Fatalf("server error events should not be returned, got %v", err)
	}
	if !st.Last().Failed() {
		t.Error("expected failed message")
	}
	if !strings.Contains(buf.String(), "model overloaded") {
		t.Errorf("expected error text in output, got %q", buf.String())
	}
}

func TestRenderStream_FunctionCalls(t *testing.T) {
	ok := true
	src := &fakeSource{events: []chat.Event{
		{Type: chat.EventFunctionCall, Metadata: &chat.Metadata{FunctionName: "list_campaigns"}},
		{Type: chat.EventFunctionResult, Metadata: &chat.Metadata{Success: &ok}},
		tok("You have 3 campaigns."),
		done,
	}}

	var buf bytes.Buffer
	st, err := RenderStream(&buf, src, chat.State{}.Send("q"), "  ")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	out := buf.String()
	if !strings.Contains(out, "⚙ list_campaigns") {
		t.Errorf("expected function call line, got %q", out)
	}
	if !strings.Contains(out, "✓ ok") {
		t.Errorf("expected success marker, got %q", out)
	}
	if !strings.Contains(out, "\n  You have 3 campaigns.") {
		t.Errorf("expected prefixed text after tool output, got %q", out)
	}
	if calls := st.Last().Calls; len(calls) != 1 || !calls[0].Finished {
		t.Errorf("expected one finished call, got %+v", calls)
	}
}

func TestRenderStream_EndWithoutTerminalSettles(t *testing.T) {
	src := &fakeSource{events: []chat.Event{tok("cut off")}}

	var buf bytes.Buffer
	st, err := RenderStream(&buf, src, chat.State{}.Send("q"), "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if st.Streaming() {
		t.Error("message should be settled")
	}
	if st.Last().Content != "cut off" {
		t.Errorf("content should be kept, got %q", st.Last().Content)
	}
}

func TestRenderStream_AddsTrailingNewline(t *testing.T) {
	src := &fakeSource{events: []chat.Event{tok("no newline at end"), done}}

	var buf bytes.Buffer
	if _, err := RenderStream(&buf, src, chat.State{}.Send("q"), ""); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.HasSuffix(buf.String(), "\n") {
		t.Error("output should end with newline")
	}
}

func TestRenderStream_PreservesExistingNewline(t *testing.T) {
	src := &fakeSource{events: []chat.Event{tok("ends with newline\n"), done}}

	var buf bytes.Buffer
	if _, err := RenderStream(&buf, src, chat.State{}.Send("q"), ""); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if strings.HasSuffix(buf.String(), "\n\n\n") {
		t.Errorf("should not triple-newline, got %q", buf.String())
	}
}

func TestRenderStream_EmptyStream(t *testing.T) {
	src := &fakeSource{}

	var buf bytes.Buffer
	st, err := RenderStream(&buf, src, chat.State{}.Send("q"), ">> ")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if st.Last().Content != "" {
		t.Errorf("expected empty content, got %q", st.Last().Content)
	}
	if strings.Contains(buf.String(), ">> ") {
		t.Errorf("prefix should not be written without tokens, got %q", buf.String())
	}
}
