package api

import (
	"context"
	"net/http"
)

type OnboardingService struct {
	c *Client
}

func (s *OnboardingService) Steps(ctx context.Context) ([]OnboardingStep, error) {
	var out struct {
		Steps []OnboardingStep `json:"steps"`
	}
	if err := s.c.do(ctx, http.MethodGet, "/onboarding/steps/", nil, nil, &out); err != nil {
		return nil, err
	}
	return out.Steps, nil
}

func (s *OnboardingService) Complete(ctx context.Context, responses []StepResponse) (*OnboardingResult, error) {
	in := struct {
		Responses []StepResponse `json:"responses"`
	}{Responses: responses}

	var res OnboardingResult
	if err := s.c.do(ctx, http.MethodPost, "/onboarding/complete/", nil, in, &res); err != nil {
		return nil, err
	}
	return &res, nil
}
