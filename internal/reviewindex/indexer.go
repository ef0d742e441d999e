// Package reviewindex keeps the admin review queue in Elasticsearch: one document per
// applicant awaiting a human decision.
package reviewindex

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/elastic/go-elasticsearch/v8/esapi"

	"accelerator-portal/internal/common/errors"
	"accelerator-portal/internal/models"
)

// Mapping is the index body used by EnsureIndex at startup.
const Mapping = `{
	"mappings": {
		"properties": {
			"applicantId": {"type": "keyword"},
			"email":       {"type": "keyword"},
			"name":        {"type": "text"},
			"phase":       {"type": "keyword"},
			"status":      {"type": "keyword"},
			"flags": {
				"properties": {
					"type":    {"type": "keyword"},
					"field":   {"type": "keyword"},
					"message": {"type": "text"}
				}
			},
			"redFlags":    {"type": "integer"},
			"yellowFlags": {"type": "integer"},
			"needsReview": {"type": "boolean"},
			"cohortId":    {"type": "keyword"},
			"evaluatedAt": {"type": "date"}
		}
	}
}`

type Indexer struct {
	client *elasticsearch.Client
	index  string
}

func NewIndexer(client *elasticsearch.Client, index string) *Indexer {
	return &Indexer{client: client, index: index}
}

// Index upserts the queue entry keyed by applicant id.
func (i *Indexer) Index(ctx context.Context, entry models.ReviewEntry) error {
	body, err := json.Marshal(entry)
	if err != nil {
		return errors.NewReviewIndexError("marshal review entry", err)
	}

	req := esapi.IndexRequest{
		Index:      i.index,
		DocumentID: entry.ApplicantID,
		Body:       bytes.NewReader(body),
	}
	res, err := req.Do(ctx, i.client)
	if err != nil {
		return errors.NewReviewIndexError("index review entry", err)
	}
	defer res.Body.Close()

	if res.IsError() {
		return errors.NewReviewIndexError("index review entry", responseError(res))
	}
	return nil
}

// Remove drops the entry once the applicant no longer needs review. A missing document is fine.
func (i *Indexer) Remove(ctx context.Context, applicantID string) error {
	req := esapi.DeleteRequest{Index: i.index, DocumentID: applicantID}
	res, err := req.Do(ctx, i.client)
	if err != nil {
		return errors.NewReviewIndexError("delete review entry", err)
	}
	defer res.Body.Close()

	if res.IsError() && res.StatusCode != 404 {
		return errors.NewReviewIndexError("delete review entry", responseError(res))
	}
	return nil
}

// Pending returns up to size entries still awaiting review, most red flags first.
func (i *Indexer) Pending(ctx context.Context, size int) ([]models.ReviewEntry, error) {
	if size <= 0 || size > 100 {
		size = 20
	}
	query := map[string]interface{}{
		"size":  size,
		"query": map[string]interface{}{"term": map[string]interface{}{"needsReview": true}},
		"sort": []interface{}{
			map[string]interface{}{"redFlags": "desc"},
			map[string]interface{}{"evaluatedAt": "asc"},
		},
	}
	body, err := json.Marshal(query)
	if err != nil {
		return nil, errors.NewReviewIndexError("marshal pending query", err)
	}

	req := esapi.SearchRequest{Index: []string{i.index}, Body: bytes.NewReader(body)}
	res, err := req.Do(ctx, i.client)
	if err != nil {
		return nil, errors.NewReviewIndexError("search review queue", err)
	}
	defer res.Body.Close()
	if res.IsError() {
		return nil, errors.NewReviewIndexError("search review queue", responseError(res))
	}

	var r struct {
		Hits struct {
			Hits []struct {
				Source models.ReviewEntry `json:"_source"`
			} `json:"hits"`
		} `json:"hits"`
	}
	if err := json.NewDecoder(res.Body).Decode(&r); err != nil {
		return nil, errors.NewReviewIndexError("decode review queue", err)
	}

	entries := make([]models.ReviewEntry, 0, len(r.Hits.Hits))
	for _, h := range r.Hits.Hits {
		entries = append(entries, h.Source)
	}
	return entries, nil
}

func responseError(res *esapi.Response) error {
	b, _ := io.ReadAll(io.LimitReader(res.Body, 512))
	return fmt.Errorf("%s: %s", res.Status(), string(b))
}

// EntryFor builds the queue document for an applicant and its latest evaluation.
func EntryFor(a *models.Applicant, result models.FlaggingResult, at time.Time) models.ReviewEntry {
	return models.ReviewEntry{
		ApplicantID: a.ID,
		Email:       a.Email,
		Name:        a.FullName(),
		Phase:       a.Phase(),
		Status:      a.Status,
		Flags:       result.Flags,
		RedFlags:    result.Count(models.FlagRed),
		YellowFlags: result.Count(models.FlagYellow),
		NeedsReview: result.NeedsReview,
		CohortID:    a.CohortID,
		EvaluatedAt: at,
	}
}
