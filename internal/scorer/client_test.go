package scorer

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"accelerator-portal/internal/common/errors"
)

func TestClient_Score(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/analyze", r.URL.Path)
		assert.Equal(t, "Bearer key-1", r.Header.Get("Authorization"))

		var req analyzeRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "SMB logistics managers lose 4h a week", req.Text)

		_, _ = w.Write([]byte(`{"score":8.5,"isSpecific":true,"hasClearTarget":true,"hasDefinedProblem":false,
			"feedback":"good","strengths":["specific"],"weaknesses":["market size"]}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL+"/", "key-1", time.Second)
	res, err := c.Score(context.Background(), "SMB logistics managers lose 4h a week")

	require.NoError(t, err)
	assert.Equal(t, 8.5, res.Score)
	assert.True(t, res.IsSpecific)
	assert.False(t, res.HasDefinedProblem)
	assert.Equal(t, []string{"market size"}, res.Weaknesses)
}

func TestClient_ScoreClamped(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"score":14}`))
	}))
	defer srv.Close()

	res, err := NewClient(srv.URL, "", time.Second).Score(context.Background(), "text")
	require.NoError(t, err)
	assert.Equal(t, 10.0, res.Score)
}

func TestClient_ScoreUnavailable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	_, err := NewClient(srv.URL, "", time.Second).Score(context.Background(), "text")
	std := errors.Normalize(err)
	assert.Equal(t, errors.ErrCodeScorerUnavailable, std.Code)
	assert.True(t, std.Retryable)
}

func TestClient_ScoreRejected(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnprocessableEntity)
	}))
	defer srv.Close()

	_, err := NewClient(srv.URL, "", time.Second).Score(context.Background(), "text")
	assert.False(t, errors.Normalize(err).Retryable)
}

func TestClient_EmptyText(t *testing.T) {
	_, err := NewClient("http://unused", "", time.Second).Score(context.Background(), "  ")
	assert.Equal(t, errors.ErrCodeValidationFailed, errors.Normalize(err).Code)
}
