package api

import (
	"context"
	"net/http"
)

const leadsPath = "/leads/leads/"

// LeadsService wraps the /leads/leads/ resource.
type LeadsService struct {
	c *Client
}

// List returns leads matching the optional search text, sorted by ordering.
func (s *LeadsService) List(ctx context.Context, search, ordering string) (*Page[Lead], error) {
	var page Page[Lead]
	if err := s.c.do(ctx, http.MethodGet, leadsPath, listQuery(search, ordering), nil, &page); err != nil {
		return nil, err
	}
	return &page, nil
}

func (s *LeadsService) Get(ctx context.Context, id int64) (*Lead, error) {
	return s.lead(ctx, http.MethodGet, idPath(leadsPath, id, ""), nil)
}

func (s *LeadsService) Create(ctx context.Context, fields Fields) (*Lead, error) {
	return s.lead(ctx, http.MethodPost, leadsPath, fields)
}

// Update replaces the lead (PUT).
func (s *LeadsService) Update(ctx context.Context, id int64, fields Fields) (*Lead, error) {
	return s.lead(ctx, http.MethodPut, idPath(leadsPath, id, ""), fields)
}

// Patch changes only the given fields.
func (s *LeadsService) Patch(ctx context.Context, id int64, fields Fields) (*Lead, error) {
	return s.lead(ctx, http.MethodPatch, idPath(leadsPath, id, ""), fields)
}

func (s *LeadsService) Delete(ctx context.Context, id int64) error {
	return s.c.do(ctx, http.MethodDelete, idPath(leadsPath, id, ""), nil, nil, nil)
}

// Upload sends a CSV or XLSX file for bulk import.
func (s *LeadsService) Upload(ctx context.Context, file File) (*UploadResult, error) {
	body, err := newMultipartBody(nil, "file", []File{file})
	if err != nil {
		return nil, err
	}
	var res UploadResult
	if err := s.c.do(ctx, http.MethodPost, "/leads/upload/", nil, body, &res); err != nil {
		return nil, err
	}
	return &res, nil
}

func (s *LeadsService) MarkResponded(ctx context.Context, id int64) (*Lead, error) {
	return s.lead(ctx, http.MethodPost, idPath(leadsPath, id, "mark_responded/"), Fields{})
}

func (s *LeadsService) UpdateStatus(ctx context.Context, id int64, status string) (*Lead, error) {
	return s.lead(ctx, http.MethodPost, idPath(leadsPath, id, "update_status/"), Fields{"status": status})
}

// Unlock resolves a needs_attention lead with one of UnlockActions.
func (s *LeadsService) Unlock(ctx context.Context, id int64, req UnlockRequest) (*Lead, error) {
	return s.lead(ctx, http.MethodPost, idPath(leadsPath, id, "unlock_action/"), req)
}

// Stats returns the backend's aggregate counters. The shape is not fixed.
func (s *LeadsService) Stats(ctx context.Context, search, ordering string) (map[string]any, error) {
	out := map[string]any{}
	if err := s.c.do(ctx, http.MethodGet, leadsPath+"stats/", listQuery(search, ordering), nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (s *LeadsService) lead(ctx context.Context, method, path string, in any) (*Lead, error) {
	var l Lead
	if err := s.c.do(ctx, method, path, nil, in, &l); err != nil {
		return nil, err
	}
	return &l, nil
}
