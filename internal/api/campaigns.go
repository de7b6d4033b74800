package api

import (
	"context"
	"net/http"
)

const campaignsPath = "/leads/campaigns/"

// CampaignsService wraps the /leads/campaigns/ resource.
type CampaignsService struct {
	c *Client
}

func (s *CampaignsService) List(ctx context.Context, search, ordering string) (*Page[Campaign], error) {
	var page Page[Campaign]
	if err := s.c.do(ctx, http.MethodGet, campaignsPath, listQuery(search, ordering), nil, &page); err != nil {
		return nil, err
	}
	return &page, nil
}

func (s *CampaignsService) Get(ctx context.Context, id int64) (*Campaign, error) {
	return s.campaign(ctx, http.MethodGet, idPath(campaignsPath, id, ""), nil)
}

func (s *CampaignsService) Create(ctx context.Context, fields Fields) (*Campaign, error) {
	return s.campaign(ctx, http.MethodPost, campaignsPath, fields)
}

func (s *CampaignsService) Update(ctx context.Context, id int64, fields Fields) (*Campaign, error) {
	return s.campaign(ctx, http.MethodPut, idPath(campaignsPath, id, ""), fields)
}

func (s *CampaignsService) Patch(ctx context.Context, id int64, fields Fields) (*Campaign, error) {
	return s.campaign(ctx, http.MethodPatch, idPath(campaignsPath, id, ""), fields)
}

func (s *CampaignsService) Delete(ctx context.Context, id int64) error {
	return s.c.do(ctx, http.MethodDelete, idPath(campaignsPath, id, ""), nil, nil, nil)
}

func (s *CampaignsService) Activate(ctx context.Context, id int64) (*Campaign, error) {
	return s.campaign(ctx, http.MethodPost, idPath(campaignsPath, id, "activate/"), Fields{})
}

func (s *CampaignsService) Pause(ctx context.Context, id int64) (*Campaign, error) {
	return s.campaign(ctx, http.MethodPost, idPath(campaignsPath, id, "pause/"), Fields{})
}

func (s *CampaignsService) campaign(ctx context.Context, method, path string, in any) (*Campaign, error) {
	var c Campaign
	if err := s.c.do(ctx, method, path, nil, in, &c); err != nil {
		return nil, err
	}
	return &c, nil
}
