package client

import (
	"context"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"
)

// HTTPVoteSubmitter persists votes over the service's vote endpoint. The
// endpoint upserts by (caption, voter) keyed on the bearer token, so
// Insert and Update share one wire call; the split interface exists for
// stores where the two writes differ.
type HTTPVoteSubmitter struct {
	client  *resty.Client
	baseURL string
	token   string
}

// NewHTTPVoteSubmitter creates a submitter for the service at baseURL
// authenticated by token.
func NewHTTPVoteSubmitter(baseURL, token string) *HTTPVoteSubmitter {
	client := resty.New()
	client.SetTimeout(30 * time.Second)
	return &HTTPVoteSubmitter{
		client:  client,
		baseURL: baseURL,
		token:   token,
	}
}

func (s *HTTPVoteSubmitter) submit(ctx context.Context, captionID string, value int) error {
	resp, err := s.client.R().
		SetContext(ctx).
		SetAuthToken(s.token).
		SetHeader("Content-Type", "application/json").
		SetBody(map[string]interface{}{"value": value}).
		Post(fmt.Sprintf("%s/api/v1/captions/%s/votes", s.baseURL, captionID))
	if err != nil {
		return err
	}
	if resp.StatusCode() < 200 || resp.StatusCode() >= 300 {
		return fmt.Errorf("vote rejected (%d): %s", resp.StatusCode(), bodyMessage(resp.StatusCode(), resp.Body()))
	}
	return nil
}

// Insert records a first vote.
func (s *HTTPVoteSubmitter) Insert(ctx context.Context, captionID, _ string, value int) error {
	return s.submit(ctx, captionID, value)
}

// Update replaces an existing vote.
func (s *HTTPVoteSubmitter) Update(ctx context.Context, captionID, _ string, value int) error {
	return s.submit(ctx, captionID, value)
}
