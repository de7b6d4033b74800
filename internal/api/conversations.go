package api

import (
	"context"
	"net/http"
	"net/url"
	"strconv"
)

// ConversationsService reads and deletes stored agent conversations and
// offers the non-streaming chat fallback. Streaming lives in package chat.
type ConversationsService struct {
	c *Client
}

// ListOptions filters conversations. Nil fields are not sent.
type ListOptions struct {
	Archived *bool
	Limit    *int
}

func (s *ConversationsService) List(ctx context.Context, opts ListOptions) ([]Conversation, error) {
	q := url.Values{}
	if opts.Archived != nil {
		q.Set("is_archived", strconv.FormatBool(*opts.Archived))
	}
	if opts.Limit != nil {
		q.Set("limit", strconv.Itoa(*opts.Limit))
	}

	var convs []Conversation
	if err := s.c.do(ctx, http.MethodGet, "/agent/conversations/", q, nil, &convs); err != nil {
		return nil, err
	}
	return convs, nil
}

// History returns the stored messages of one conversation, oldest first.
func (s *ConversationsService) History(ctx context.Context, conversationID string) ([]Message, error) {
	var msgs []Message
	if err := s.c.do(ctx, http.MethodGet, "/agent/history/", conversationQuery(conversationID), nil, &msgs); err != nil {
		return nil, err
	}
	return msgs, nil
}

func (s *ConversationsService) Delete(ctx context.Context, conversationID string) error {
	return s.c.do(ctx, http.MethodDelete, "/agent/history/", conversationQuery(conversationID), nil, nil)
}

// Send posts one message and waits for the full reply.
func (s *ConversationsService) Send(ctx context.Context, message, conversationID string) (*Reply, error) {
	in := struct {
		Message        string `json:"message"`
		ConversationID string `json:"conversation_id,omitempty"`
		Stream         bool   `json:"stream"`
	}{Message: message, ConversationID: conversationID}

	var r Reply
	if err := s.c.do(ctx, http.MethodPost, "/agent/chat/", nil, in, &r); err != nil {
		return nil, err
	}
	return &r, nil
}

func conversationQuery(id string) url.Values {
	q := url.Values{}
	q.Set("conversation_id", id)
	return q
}
