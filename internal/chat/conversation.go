package chat

import (
	"encoding/json"
	"slices"

	"github.com/sirupsen/logrus"
)

const (
	RoleUser      = "user"
	RoleAssistant = "assistant"

	unknownFunction = "unknown"
	defaultError    = "An error occurred"
)

// FunctionCall is a tool invocation made by the assistant while answering.
type FunctionCall struct {
	Name      string
	Arguments json.RawMessage
	Success   *bool
	Result    json.RawMessage
	// Finished is set once a result has been paired with the call.
	Finished bool
	// Orphan marks a result that arrived with no call pending.
	Orphan bool
}

// Message is one rendered turn.
type Message struct {
	Role       string
	Content    string
	Streaming  bool
	Calls      []FunctionCall
	Err        string
	Model      string
	TokensUsed int
	// ResponseTimeMS is the server-side generation time reported on done.
	ResponseTimeMS float64

	// pending holds indexes into Calls still waiting for a result, most
	// recent last.
	pending []int
}

// Failed reports whether the server ended this message with an error.
func (m Message) Failed() bool {
	return m.Err != ""
}

// State is the conversation as the UI shows it. The last message is the one
// being streamed, if any.
type State struct {
	ConversationID string
	Messages       []Message
}

// Send appends the user's message and an empty assistant message that
// subsequent events fill in.
func (s State) Send(text string) State {
	msgs := slices.Clone(s.Messages)
	msgs = append(msgs,
		Message{Role: RoleUser, Content: text},
		Message{Role: RoleAssistant, Streaming: true},
	)
	s.Messages = msgs
	return s
}

// Streaming reports whether the last message is still receiving events.
func (s State) Streaming() bool {
	n := len(s.Messages)
	return n > 0 && s.Messages[n-1].Streaming
}

// Last returns the final message, or the zero Message.
func (s State) Last() Message {
	if len(s.Messages) == 0 {
		return Message{}
	}
	return s.Messages[len(s.Messages)-1]
}

// Fail drops the in-progress assistant message after a transport failure.
func (s State) Fail() State {
	if !s.Streaming() {
		return s
	}
	s.Messages = slices.Clone(s.Messages[:len(s.Messages)-1])
	return s
}

// Settle marks the in-progress message as finished without changing its
// content, for cancellation and streams that end without a terminal event.
func (s State) Settle() State {
	if !s.Streaming() {
		return s
	}
	return s.update(func(m *Message) { m.Streaming = false })
}

// Reduce folds ev into s and returns the new state. s is not modified.
func Reduce(s State, ev Event) State {
	meta := ev.Meta()

	switch ev.Type {
	case EventStart:
		if s.ConversationID == "" && meta.ConversationID != "" {
			s.ConversationID = meta.ConversationID
		}
		return s

	case EventToken:
		if ev.Content == "" {
			return s
		}
		return s.update(func(m *Message) { m.Content += ev.Content })

	case EventFunctionCall:
		name := meta.FunctionName
		if name == "" {
			name = unknownFunction
		}
		return s.update(func(m *Message) {
			m.Calls = append(m.Calls, FunctionCall{Name: name, Arguments: meta.Arguments})
			m.pending = append(m.pending, len(m.Calls)-1)
		})

	case EventFunctionResult:
		return s.update(func(m *Message) {
			if len(m.pending) == 0 {
				logrus.WithField("component", "chat").Warn("function result with no pending call")
				m.Calls = append(m.Calls, FunctionCall{
					Success:  meta.Success,
					Result:   meta.Result,
					Finished: true,
					Orphan:   true,
				})
				return
			}
			i := m.pending[len(m.pending)-1]
			m.pending = m.pending[:len(m.pending)-1]
			m.Calls[i].Success = meta.Success
			m.Calls[i].Result = meta.Result
			m.Calls[i].Finished = true
		})

	case EventDone:
		return s.update(func(m *Message) {
			m.Streaming = false
			m.Model = meta.Model
			m.TokensUsed = meta.TokensUsed
			m.ResponseTimeMS = meta.ResponseTimeMS
		})

	case EventError:
		text := ev.Content
		if text == "" {
			text = defaultError
		}
		return s.update(func(m *Message) {
			m.Streaming = false
			m.Err = text
		})
	}

	return s
}

// update applies fn to a copy of the in-progress assistant message,
// creating one when the conversation has none.
func (s State) update(fn func(*Message)) State {
	msgs := slices.Clone(s.Messages)
	if n := len(msgs); n == 0 || !msgs[n-1].Streaming {
		msgs = append(msgs, Message{Role: RoleAssistant, Streaming: true})
	}

	last := msgs[len(msgs)-1]
	last.Calls = slices.Clone(last.Calls)
	last.pending = slices.Clone(last.pending)
	fn(&last)
	msgs[len(msgs)-1] = last

	s.Messages = msgs
	return s
}
