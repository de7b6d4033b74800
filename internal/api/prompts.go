package api

import (
	"context"
	"net/http"
	"strconv"
)

const promptsPath = "/leads/prompts/"

// PromptsService wraps the prompt library.
type PromptsService struct {
	c *Client
}

func (s *PromptsService) List(ctx context.Context, search, ordering string) (*Page[Prompt], error) {
	var page Page[Prompt]
	if err := s.c.do(ctx, http.MethodGet, promptsPath, listQuery(search, ordering), nil, &page); err != nil {
		return nil, err
	}
	return &page, nil
}

func (s *PromptsService) Get(ctx context.Context, id int64) (*Prompt, error) {
	return s.prompt(ctx, http.MethodGet, idPath(promptsPath, id, ""), nil)
}

func (s *PromptsService) Create(ctx context.Context, fields Fields) (*Prompt, error) {
	return s.prompt(ctx, http.MethodPost, promptsPath, fields)
}

func (s *PromptsService) Update(ctx context.Context, id int64, fields Fields) (*Prompt, error) {
	return s.prompt(ctx, http.MethodPut, idPath(promptsPath, id, ""), fields)
}

func (s *PromptsService) Patch(ctx context.Context, id int64, fields Fields) (*Prompt, error) {
	return s.prompt(ctx, http.MethodPatch, idPath(promptsPath, id, ""), fields)
}

func (s *PromptsService) Delete(ctx context.Context, id int64) error {
	return s.c.do(ctx, http.MethodDelete, idPath(promptsPath, id, ""), nil, nil, nil)
}

// ByCampaign lists the prompts attached to one campaign. The endpoint is
// not paginated.
func (s *PromptsService) ByCampaign(ctx context.Context, campaignID int64, search, ordering string) ([]Prompt, error) {
	q := listQuery(search, ordering)
	q.Set("campaign_id", strconv.FormatInt(campaignID, 10))

	var prompts []Prompt
	if err := s.c.do(ctx, http.MethodGet, promptsPath+"by_campaign/", q, nil, &prompts); err != nil {
		return nil, err
	}
	return prompts, nil
}

func (s *PromptsService) prompt(ctx context.Context, method, path string, in any) (*Prompt, error) {
	var p Prompt
	if err := s.c.do(ctx, method, path, nil, in, &p); err != nil {
		return nil, err
	}
	return &p, nil
}
