// Package search keeps an Elasticsearch full-text index of diary entries.
package search

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/elastic/go-elasticsearch/v8/esapi"

	"github.com/oksasatya/narrative-weaver/internal/domain/entity"
)

const requestTimeout = 3 * time.Second

// EntryIndex indexes entries by id with the owner stored as a keyword so
// searches can be filtered to one user.
type EntryIndex struct {
	ES    *elasticsearch.Client
	Index string
}

func NewEntryIndex(es *elasticsearch.Client, index string) *EntryIndex {
	return &EntryIndex{ES: es, Index: index}
}

const entryMapping = `{
  "mappings": {
    "properties": {
      "id":         {"type": "keyword"},
      "owner":      {"type": "keyword"},
      "text":       {"type": "text"},
      "feeling":    {"type": "text", "fields": {"raw": {"type": "keyword"}}},
      "created_at": {"type": "date"}
    }
  }
}`

// EnsureIndex creates the index with the owner mapped as a keyword unless it
// already exists.
func (x *EntryIndex) EnsureIndex(ctx context.Context) error {
	c, cancel := context.WithTimeout(ctx, requestTimeout)
	defer cancel()
	res, err := esapi.IndicesExistsRequest{Index: []string{x.Index}}.Do(c, x.ES)
	if err != nil {
		return err
	}
	_ = res.Body.Close()
	if res.StatusCode == 200 {
		return nil
	}
	return x.do(ctx, esapi.IndicesCreateRequest{Index: x.Index, Body: strings.NewReader(entryMapping)})
}

type entryDocument struct {
	ID        string `json:"id"`
	Owner     string `json:"owner"`
	Text      string `json:"text"`
	Feeling   string `json:"feeling,omitempty"`
	CreatedAt string `json:"created_at"`
}

// Put indexes or replaces the entry document.
func (x *EntryIndex) Put(ctx context.Context, e *entity.DiaryEntry) error {
	b, err := json.Marshal(entryDocument{
		ID:        e.ID,
		Owner:     e.OwnerID,
		Text:      e.Text,
		Feeling:   e.Feeling,
		CreatedAt: e.CreatedAt.Format(time.RFC3339Nano),
	})
	if err != nil {
		return err
	}
	req := esapi.IndexRequest{Index: x.Index, DocumentID: e.ID, Body: bytes.NewReader(b), Refresh: "false"}
	return x.do(ctx, req)
}

// Remove deletes one entry document. A missing document is not an error.
func (x *EntryIndex) Remove(ctx context.Context, id string) error {
	return x.do(ctx, esapi.DeleteRequest{Index: x.Index, DocumentID: id})
}

// RemoveByOwner deletes every document of one owner.
func (x *EntryIndex) RemoveByOwner(ctx context.Context, ownerID string) error {
	body, _ := json.Marshal(map[string]any{
		"query": map[string]any{"term": map[string]any{"owner": ownerID}},
	})
	req := esapi.DeleteByQueryRequest{Index: []string{x.Index}, Body: bytes.NewReader(body)}
	return x.do(ctx, req)
}

// Search returns ids of the owner's entries matching q, best match first.
func (x *EntryIndex) Search(ctx context.Context, ownerID, q string, size int) ([]string, error) {
	query := map[string]any{
		"query": map[string]any{
			"bool": map[string]any{
				"must": map[string]any{
					"multi_match": map[string]any{
						"query":  q,
						"fields": []string{"text", "feeling^2"},
					},
				},
				"filter": map[string]any{"term": map[string]any{"owner": ownerID}},
			},
		},
		"size": size,
	}
	b, _ := json.Marshal(query)

	c, cancel := context.WithTimeout(ctx, requestTimeout)
	defer cancel()

	res, err := x.ES.Search(
		x.ES.Search.WithContext(c),
		x.ES.Search.WithIndex(x.Index),
		x.ES.Search.WithBody(bytes.NewReader(b)),
	)
	if err != nil {
		return nil, err
	}
	defer func() { _ = res.Body.Close() }()
	if res.IsError() {
		return nil, fmt.Errorf("search: %s", res.Status())
	}

	var parsed struct {
		Hits struct {
			Hits []struct {
				ID string `json:"_id"`
			} `json:"hits"`
		} `json:"hits"`
	}
	if err := json.NewDecoder(res.Body).Decode(&parsed); err != nil {
		return nil, err
	}

	ids := make([]string, 0, len(parsed.Hits.Hits))
	for _, h := range parsed.Hits.Hits {
		ids = append(ids, h.ID)
	}
	return ids, nil
}

func (x *EntryIndex) do(ctx context.Context, req esapi.Request) error {
	c, cancel := context.WithTimeout(ctx, requestTimeout)
	defer cancel()
	res, err := req.Do(c, x.ES)
	if err != nil {
		return err
	}
	defer func() { _ = res.Body.Close() }()
	if res.IsError() && res.StatusCode != 404 {
		return fmt.Errorf("elasticsearch: %s", res.Status())
	}
	return nil
}
