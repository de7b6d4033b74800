package chat

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync/atomic"

	"github.com/sirupsen/logrus"

	"github.com/workairs/wa-cli/internal/api"
	"github.com/workairs/wa-cli/internal/sse"
)

const (
	streamPath = "/agent/chat/stream/"
	chunkSize  = 4096
)

// ErrEmptyMessage is returned by StreamChat before any I/O when the message
// is blank.
var ErrEmptyMessage = errors.New("message is required")

var errNoType = errors.New("record has no type")

// Request is one user turn.
type Request struct {
	Message        string
	ConversationID string
	Files          []api.File
}

// Stream is a forward-only sequence of events read from one chat response.
// Recv must be called from a single goroutine; Cancel may be called from
// any goroutine.
type Stream struct {
	ctx    context.Context
	cancel context.CancelFunc
	stop   func() bool
	body   io.ReadCloser
	lines  *sse.LineBuffer
	chunk  []byte
	queue  []Event
	log    *logrus.Entry

	readErr    error
	terminated bool
	closed     bool
	dropped    int
	canceled   atomic.Bool
}

// StreamChat posts req to the streaming endpoint and returns the open
// stream. Transport failures, including non-2xx responses, are returned
// here and the stream is not created.
func StreamChat(ctx context.Context, c *api.Client, req Request) (*Stream, error) {
	if strings.TrimSpace(req.Message) == "" {
		return nil, ErrEmptyMessage
	}

	body, contentType, err := encodeRequest(req)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithCancel(ctx)
	httpReq, err := c.NewRequest(ctx, http.MethodPost, streamPath, nil, body, contentType)
	if err != nil {
		cancel()
		return nil, err
	}
	httpReq.Header.Set("Accept", "text/event-stream")

	resp, err := c.Stream(httpReq)
	if err != nil {
		cancel()
		return nil, fmt.Errorf("chat stream: %w", err)
	}
	return newStream(ctx, cancel, resp.Body), nil
}

// NewStream reads events from body until a terminal event, end of input,
// or cancellation of ctx.
func NewStream(ctx context.Context, body io.ReadCloser) *Stream {
	ctx, cancel := context.WithCancel(ctx)
	return newStream(ctx, cancel, body)
}

func newStream(ctx context.Context, cancel context.CancelFunc, body io.ReadCloser) *Stream {
	s := &Stream{
		ctx:    ctx,
		cancel: cancel,
		body:   body,
		lines:  sse.NewLineBuffer(),
		chunk:  make([]byte, chunkSize),
		log:    logrus.WithField("component", "chat"),
	}
	// Closing the body unblocks a pending Read on sources that ignore ctx.
	s.stop = context.AfterFunc(ctx, func() { body.Close() })
	return s
}

// Recv returns the next event. It returns io.EOF after the terminal event,
// when the source ends without one, and after cancellation. Any other
// error is a transport failure; it is returned once, after which Recv
// returns io.EOF.
func (s *Stream) Recv() (Event, error) {
	for {
		if s.closed {
			return Event{}, io.EOF
		}
		if s.isCanceled() {
			s.release()
			return Event{}, io.EOF
		}

		if len(s.queue) > 0 {
			ev := s.queue[0]
			s.queue = s.queue[1:]
			if ev.Terminal() {
				s.release()
			}
			return ev, nil
		}

		if s.readErr != nil {
			err := s.readErr
			if rest := s.lines.Flush(); rest != "" && !s.terminated {
				s.log.WithField("fragment", truncate(rest, 120)).Debug("discarding incomplete record at end of stream")
			}
			s.release()
			if errors.Is(err, io.EOF) {
				return Event{}, io.EOF
			}
			return Event{}, fmt.Errorf("read chat stream: %w", err)
		}

		n, err := s.body.Read(s.chunk)
		if n > 0 {
			s.feed(s.chunk[:n])
		}
		if err != nil && !s.terminated {
			s.readErr = err
		}
	}
}

// Cancel aborts the stream. Recv returns io.EOF from then on, even for
// events that were already buffered.
func (s *Stream) Cancel() {
	s.canceled.Store(true)
	s.cancel()
}

// Close releases the underlying connection.
func (s *Stream) Close() error {
	s.release()
	return nil
}

// Dropped reports how many data records were skipped as malformed.
func (s *Stream) Dropped() int {
	return s.dropped
}

func (s *Stream) isCanceled() bool {
	return s.canceled.Load() || errors.Is(s.ctx.Err(), context.Canceled)
}

// feed frames chunk into records. Parsing stops at the first terminal
// event; whatever follows it is discarded.
func (s *Stream) feed(chunk []byte) {
	if s.terminated {
		return
	}
	for _, line := range s.lines.Write(chunk) {
		payload, ok := sse.Payload(line)
		if !ok {
			continue
		}

		ev, err := parseEvent(payload)
		if err != nil {
			s.dropped++
			s.log.WithError(err).WithField("record", truncate(payload, 120)).Warn("skipping malformed stream record")
			continue
		}

		s.queue = append(s.queue, ev)
		if ev.Terminal() {
			s.terminated = true
			return
		}
	}
}

func (s *Stream) release() {
	if s.closed {
		return
	}
	s.closed = true
	s.queue = nil
	if s.stop() {
		s.body.Close()
	}
	s.cancel()
}

func parseEvent(payload string) (Event, error) {
	var ev Event
	if err := json.Unmarshal([]byte(payload), &ev); err != nil {
		return Event{}, err
	}
	if ev.Type == "" {
		return Event{}, errNoType
	}
	return ev, nil
}

type streamBody struct {
	Message        string `json:"message"`
	ConversationID string `json:"conversation_id,omitempty"`
	Stream         bool   `json:"stream"`
}

// encodeRequest builds a multipart body when files are attached and a JSON
// body otherwise.
func encodeRequest(req Request) (io.Reader, string, error) {
	if len(req.Files) > 0 {
		fields := []api.FormField{{Name: "message", Value: req.Message}}
		if req.ConversationID != "" {
			fields = append(fields, api.FormField{Name: "conversation_id", Value: req.ConversationID})
		}
		buf, contentType, err := api.EncodeForm(fields, "files", req.Files)
		if err != nil {
			return nil, "", err
		}
		return buf, contentType, nil
	}

	data, err := json.Marshal(streamBody{
		Message:        req.Message,
		ConversationID: req.ConversationID,
		Stream:         true,
	})
	if err != nil {
		return nil, "", fmt.Errorf("failed to marshal request: %w", err)
	}
	return bytes.NewReader(data), "application/json", nil
}

func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen] + "..."
}
