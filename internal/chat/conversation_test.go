package chat

import (
	"encoding/json"
	"testing"

	logtest "github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func boolPtr(b bool) *bool { return &b }

func reduceAll(s State, events ...Event) State {
	for _, ev := range events {
		s = Reduce(s, ev)
	}
	return s
}

func TestSend_AppendsUserAndPlaceholder(t *testing.T) {
	s := State{}.Send("hi")

	require.Len(t, s.Messages, 2)
	assert.Equal(t, Message{Role: RoleUser, Content: "hi"}, s.Messages[0])
	assert.Equal(t, RoleAssistant, s.Messages[1].Role)
	assert.True(t, s.Streaming())
}

func TestReduce_TokensConcatenateInOrder(t *testing.T) {
	s := reduceAll(State{}.Send("q"),
		Event{Type: EventToken, Content: "The "},
		Event{Type: EventToken, Content: ""},
		Event{Type: EventToken, Content: "answer "},
		Event{Type: EventToken, Content: "is 42"},
		Event{Type: EventDone, Metadata: &Metadata{Model: "gpt", TokensUsed: 12, ResponseTimeMS: 830.5}},
	)

	last := s.Last()
	assert.Equal(t, "The answer is 42", last.Content)
	assert.False(t, last.Streaming)
	assert.Equal(t, "gpt", last.Model)
	assert.Equal(t, 12, last.TokensUsed)
	assert.Equal(t, 830.5, last.ResponseTimeMS)
}

func TestReduce_StartSetsConversationOnce(t *testing.T) {
	s := reduceAll(State{}.Send("q"),
		Event{Type: EventStart, Metadata: &Metadata{ConversationID: "first"}},
		Event{Type: EventStart, Metadata: &Metadata{ConversationID: "second"}},
	)
	assert.Equal(t, "first", s.ConversationID)

	known := State{ConversationID: "known"}.Send("q")
	known = Reduce(known, Event{Type: EventStart, Metadata: &Metadata{ConversationID: "server"}})
	assert.Equal(t, "known", known.ConversationID)
}

func TestReduce_FunctionResultPairsWithLatestPendingCall(t *testing.T) {
	s := reduceAll(State{}.Send("q"),
		Event{Type: EventFunctionCall, Metadata: &Metadata{FunctionName: "search_leads"}},
		Event{Type: EventFunctionCall, Metadata: &Metadata{FunctionName: "get_campaign"}},
		Event{Type: EventFunctionResult, Metadata: &Metadata{Success: boolPtr(true), Result: json.RawMessage(`{"id":1}`)}},
		Event{Type: EventFunctionResult, Metadata: &Metadata{Success: boolPtr(false)}},
	)

	calls := s.Last().Calls
	require.Len(t, calls, 2)

	assert.Equal(t, "search_leads", calls[0].Name)
	assert.True(t, calls[0].Finished)
	assert.False(t, *calls[0].Success)

	assert.Equal(t, "get_campaign", calls[1].Name)
	assert.True(t, calls[1].Finished)
	assert.True(t, *calls[1].Success)
	assert.JSONEq(t, `{"id":1}`, string(calls[1].Result))
}

func TestReduce_SequentialCallsPairInOrder(t *testing.T) {
	s := reduceAll(State{}.Send("q"),
		Event{Type: EventFunctionCall, Metadata: &Metadata{FunctionName: "a"}},
		Event{Type: EventFunctionResult, Metadata: &Metadata{Success: boolPtr(true)}},
		Event{Type: EventFunctionCall},
		Event{Type: EventFunctionResult, Metadata: &Metadata{Success: boolPtr(false)}},
	)

	calls := s.Last().Calls
	require.Len(t, calls, 2)
	assert.True(t, *calls[0].Success)
	assert.Equal(t, unknownFunction, calls[1].Name)
	assert.False(t, *calls[1].Success)
}

func TestReduce_OrphanResultRecordedSeparately(t *testing.T) {
	hook := logtest.NewGlobal()

	s := reduceAll(State{}.Send("q"),
		Event{Type: EventFunctionCall, Metadata: &Metadata{FunctionName: "a"}},
		Event{Type: EventFunctionResult, Metadata: &Metadata{Success: boolPtr(true)}},
		Event{Type: EventFunctionResult, Metadata: &Metadata{Success: boolPtr(false)}},
	)

	calls := s.Last().Calls
	require.Len(t, calls, 2)
	assert.True(t, *calls[0].Success, "finished call must not be overwritten")
	assert.True(t, calls[1].Orphan)
	assert.False(t, *calls[1].Success)
	require.NotNil(t, hook.LastEntry())
	assert.Equal(t, "function result with no pending call", hook.LastEntry().Message)
}

func TestReduce_ErrorEvent(t *testing.T) {
	s := reduceAll(State{}.Send("q"),
		Event{Type: EventToken, Content: "partial"},
		Event{Type: EventError, Content: "quota exceeded"},
	)
	last := s.Last()
	assert.True(t, last.Failed())
	assert.Equal(t, "quota exceeded", last.Err)
	assert.Equal(t, "partial", last.Content)
	assert.False(t, s.Streaming())

	s = Reduce(State{}.Send("q"), Event{Type: EventError})
	assert.Equal(t, defaultError, s.Last().Err)
}

func TestReduce_DoesNotMutateInput(t *testing.T) {
	before := reduceAll(State{}.Send("q"),
		Event{Type: EventToken, Content: "a"},
		Event{Type: EventFunctionCall, Metadata: &Metadata{FunctionName: "f"}},
	)
	snapshot := before.Last()

	after := reduceAll(before,
		Event{Type: EventToken, Content: "b"},
		Event{Type: EventFunctionResult, Metadata: &Metadata{Success: boolPtr(true)}},
		Event{Type: EventDone},
	)

	assert.Equal(t, snapshot, before.Last())
	assert.Equal(t, "a", before.Last().Content)
	assert.False(t, before.Last().Calls[0].Finished)
	assert.True(t, after.Last().Calls[0].Finished)
	assert.Equal(t, "ab", after.Last().Content)
}

func TestReduce_UnknownTypeIgnored(t *testing.T) {
	s := State{}.Send("q")
	assert.Equal(t, s, Reduce(s, Event{Type: "thinking", Content: "..."}))
}

func TestReduce_CreatesAssistantMessageWhenMissing(t *testing.T) {
	s := Reduce(State{}, Event{Type: EventToken, Content: "x"})
	require.Len(t, s.Messages, 1)
	assert.Equal(t, RoleAssistant, s.Messages[0].Role)
	assert.Equal(t, "x", s.Messages[0].Content)
}

func TestFail_RemovesPlaceholder(t *testing.T) {
	s := Reduce(State{}.Send("q"), Event{Type: EventToken, Content: "half"})
	s = s.Fail()

	require.Len(t, s.Messages, 1)
	assert.Equal(t, RoleUser, s.Messages[0].Role)

	// Nothing in progress: no-op.
	assert.Equal(t, s, s.Fail())
}

func TestSettle_KeepsContent(t *testing.T) {
	s := Reduce(State{}.Send("q"), Event{Type: EventToken, Content: "half"})
	s = s.Settle()

	assert.False(t, s.Streaming())
	assert.Equal(t, "half", s.Last().Content)
	assert.False(t, s.Last().Failed())
}
