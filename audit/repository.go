// audit/repository.go
package audit

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/elastic/go-elasticsearch/v8"

	echo_errors "github.com/ygfuyfffdf-max/v0-crypto-dashboard-design-sub016/errors"
)

// Repository is a long-term, append-only audit sink.
type Repository interface {
	StoreBatch(ctx context.Context, entries []AuditEntry) error
}

// Searcher reads entries back from a long-term store.
type Searcher interface {
	QueryLogs(ctx context.Context, from, to time.Time, actorID, resourceID string) ([]AuditEntry, error)
}

const defaultIndex = "qpde-audit"

type ElasticsearchRepository struct {
	esClient *elasticsearch.Client
	index    string
	maxHits  int
}

// NewElasticsearchRepository creates a new repository with a given Elasticsearch client URL.
func NewElasticsearchRepository(esURL, index string) (*ElasticsearchRepository, error) {
	cfg := elasticsearch.Config{
		Addresses: []string{esURL},
	}
	esClient, err := elasticsearch.NewClient(cfg)
	if err != nil {
		return nil, err
	}
	if index == "" {
		index = defaultIndex
	}
	return &ElasticsearchRepository{esClient: esClient, index: index, maxHits: 1000}, nil
}

// StoreBatch bulk-indexes entries using the correlation id as document id,
// so a retried batch overwrites instead of duplicating.
func (r *ElasticsearchRepository) StoreBatch(ctx context.Context, entries []AuditEntry) error {
	if len(entries) == 0 {
		return nil
	}

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	for _, e := range entries {
		meta := map[string]any{"index": map[string]any{"_index": r.index, "_id": e.CorrelationID}}
		if err := enc.Encode(meta); err != nil {
			return err
		}
		if err := enc.Encode(e); err != nil {
			return err
		}
	}

	res, err := r.esClient.Bulk(bytes.NewReader(buf.Bytes()),
		r.esClient.Bulk.WithContext(ctx),
		r.esClient.Bulk.WithIndex(r.index),
	)
	if err != nil {
		return fmt.Errorf("bulk index: %w: %v", echo_errors.ErrAuditSinkUnavailable, err)
	}
	defer res.Body.Close()

	if res.IsError() {
		return fmt.Errorf("bulk index: %w: %s", echo_errors.ErrAuditSinkUnavailable, res.String())
	}

	var body struct {
		Errors bool `json:"errors"`
		Items  []map[string]struct {
			ID     string `json:"_id"`
			Status int    `json:"status"`
		} `json:"items"`
	}
	if err := json.NewDecoder(res.Body).Decode(&body); err != nil {
		return fmt.Errorf("decode bulk response: %w", err)
	}
	if body.Errors {
		var failed []string
		for _, item := range body.Items {
			for _, result := range item {
				if result.Status >= 300 {
					failed = append(failed, result.ID)
				}
			}
		}
		return fmt.Errorf("bulk index rejected %s: %w", strings.Join(failed, ","), echo_errors.ErrAuditSinkUnavailable)
	}
	return nil
}

// QueryLogs searches for audit entries within a time frame and optionally filters by actorID and resourceID.
func (r *ElasticsearchRepository) QueryLogs(ctx context.Context, from, to time.Time, actorID, resourceID string) ([]AuditEntry, error) {
	must := []interface{}{
		map[string]interface{}{
			"range": map[string]interface{}{
				"timestamp": map[string]interface{}{
					"gte": from.UTC().Format(time.RFC3339Nano),
					"lte": to.UTC().Format(time.RFC3339Nano),
				},
			},
		},
	}
	if actorID != "" {
		must = append(must, map[string]interface{}{"term": map[string]interface{}{"actor_id": actorID}})
	}
	if resourceID != "" {
		must = append(must, map[string]interface{}{"term": map[string]interface{}{"resource_id": resourceID}})
	}
	query := map[string]interface{}{
		"size": r.maxHits,
		"sort": []interface{}{map[string]interface{}{"timestamp": "asc"}},
		"query": map[string]interface{}{
			"bool": map[string]interface{}{"must": must},
		},
	}

	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(query); err != nil {
		return nil, err
	}

	res, err := r.esClient.Search(
		r.esClient.Search.WithContext(ctx),
		r.esClient.Search.WithIndex(r.index),
		r.esClient.Search.WithBody(&buf),
	)
	if err != nil {
		return nil, fmt.Errorf("search: %w: %v", echo_errors.ErrAuditSinkUnavailable, err)
	}
	defer res.Body.Close()

	if res.IsError() {
		return nil, fmt.Errorf("error searching documents: %s", res.String())
	}

	var body struct {
		Hits struct {
			Hits []struct {
				Source AuditEntry `json:"_source"`
			} `json:"hits"`
		} `json:"hits"`
	}
	if err := json.NewDecoder(res.Body).Decode(&body); err != nil {
		return nil, err
	}

	entries := make([]AuditEntry, 0, len(body.Hits.Hits))
	for _, hit := range body.Hits.Hits {
		entries = append(entries, hit.Source)
	}
	return entries, nil
}
