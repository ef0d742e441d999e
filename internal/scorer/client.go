// Package scorer calls the external free-text analysis service for the in-depth
// application's problem/customer answer.
package scorer

import (
	"context"
	stderrors "errors"
	"strings"
	"time"

	"accelerator-portal/internal/common/errors"
	commonhttp "accelerator-portal/internal/common/http"
	"accelerator-portal/internal/models"
)

type analyzeRequest struct {
	Text     string `json:"text"`
	Question string `json:"question"`
}

type Client struct {
	http    *commonhttp.Client
	baseURL string
}

func NewClient(baseURL, apiKey string, timeout time.Duration) *Client {
	c := commonhttp.NewClient(timeout)
	if apiKey != "" {
		c = c.WithHeader("Authorization", "Bearer "+apiKey)
	}
	return &Client{http: c, baseURL: strings.TrimRight(baseURL, "/")}
}

// Score analyzes text. Scores outside 0-10 are clamped; the service is opaque.
func (c *Client) Score(ctx context.Context, text string) (*models.ScorerResult, error) {
	if strings.TrimSpace(text) == "" {
		return nil, errors.NewValidationError("problemAndCustomer", "answer is empty")
	}

	var out models.ScorerResult
	err := c.http.PostJSON(ctx, c.baseURL+"/v1/analyze", analyzeRequest{
		Text:     text,
		Question: "problem_and_customer",
	}, &out)
	if err != nil {
		var statusErr *commonhttp.StatusError
		if stderrors.As(err, &statusErr) && !statusErr.Transient() {
			stdErr := errors.NewScorerUnavailableError(err)
			stdErr.Retryable = false
			return nil, stdErr
		}
		return nil, errors.NewScorerUnavailableError(err)
	}

	switch {
	case out.Score < 0:
		out.Score = 0
	case out.Score > 10:
		out.Score = 10
	}
	return &out, nil
}
