package search

import (
	"bytes"
	"context"
	"crypto/tls"
	"encoding/json"
	"fmt"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/elastic/go-elasticsearch/v8/esapi"

	"github.com/AdityaShome/Secondhome-sub002/internal/domain/entity"
	repo "github.com/AdityaShome/Secondhome-sub002/internal/domain/repository"
)

// NewClient creates an Elasticsearch client with short timeouts and optional basic auth.
func NewClient(addrs []string, username, password string) (*elasticsearch.Client, error) {
	return elasticsearch.NewClient(elasticsearch.Config{
		Addresses: addrs,
		Username:  username,
		Password:  password,
		Transport: &http.Transport{
			MaxIdleConnsPerHost:   10,
			ResponseHeaderTimeout: 5 * time.Second,
			TLSClientConfig:       &tls.Config{MinVersion: tls.VersionTLS12},
			DialContext:           (&net.Dialer{Timeout: 5 * time.Second}).DialContext,
		},
	})
}

// ListingIndex stores properties and messes in one index, told apart by kind.
type ListingIndex struct {
	es    *elasticsearch.Client
	index string
}

func NewListingIndex(es *elasticsearch.Client, index string) *ListingIndex {
	return &ListingIndex{es: es, index: index}
}

func docID(kind entity.ListingKind, id string) string { return string(kind) + ":" + id }

const indexMapping = `{
  "mappings": {
    "properties": {
      "id":          {"type": "keyword"},
      "kind":        {"type": "keyword"},
      "owner_id":    {"type": "keyword"},
      "title":       {"type": "text"},
      "description": {"type": "text"},
      "city":        {"type": "text", "fields": {"raw": {"type": "keyword"}}},
      "address":     {"type": "text"},
      "price":       {"type": "long"},
      "status":      {"type": "keyword"},
      "amenities":   {"type": "keyword"},
      "location":    {"properties": {"lat": {"type": "float"}, "lng": {"type": "float"}}},
      "updated_at":  {"type": "date"}
    }
  }
}`

// EnsureIndex creates the index with its mapping when missing.
func (l *ListingIndex) EnsureIndex(ctx context.Context) error {
	res, err := l.es.Indices.Exists([]string{l.index}, l.es.Indices.Exists.WithContext(ctx))
	if err != nil {
		return err
	}
	res.Body.Close()
	if res.StatusCode == http.StatusOK {
		return nil
	}
	res, err = l.es.Indices.Create(l.index,
		l.es.Indices.Create.WithContext(ctx),
		l.es.Indices.Create.WithBody(strings.NewReader(indexMapping)),
	)
	if err != nil {
		return err
	}
	defer res.Body.Close()
	if res.IsError() && !strings.Contains(res.String(), "resource_already_exists_exception") {
		return fmt.Errorf("create index %s: %s", l.index, res.Status())
	}
	return nil
}

func (l *ListingIndex) Index(ctx context.Context, doc repo.ListingDocument) error {
	b, err := json.Marshal(doc)
	if err != nil {
		return err
	}
	req := esapi.IndexRequest{Index: l.index, DocumentID: docID(doc.Kind, doc.ID), Body: bytes.NewReader(b), Refresh: "false"}
	c, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	res, err := req.Do(c, l.es)
	if err != nil {
		return err
	}
	defer res.Body.Close()
	if res.IsError() {
		return fmt.Errorf("es index %s: %s", doc.ID, res.Status())
	}
	return nil
}

func (l *ListingIndex) Remove(ctx context.Context, kind entity.ListingKind, id string) error {
	req := esapi.DeleteRequest{Index: l.index, DocumentID: docID(kind, id)}
	c, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	res, err := req.Do(c, l.es)
	if err != nil {
		return err
	}
	defer res.Body.Close()
	if res.IsError() && res.StatusCode != http.StatusNotFound {
		return fmt.Errorf("es delete %s: %s", id, res.Status())
	}
	return nil
}

// SearchQuery builds the approved-only multi_match query for one listing kind.
func SearchQuery(kind entity.ListingKind, q string, page repo.Page) map[string]any {
	page = page.Normalize()
	return map[string]any{
		"from": page.Skip(),
		"size": page.Limit,
		"query": map[string]any{
			"bool": map[string]any{
				"must": []any{
					map[string]any{
						"multi_match": map[string]any{
							"query":     q,
							"fields":    []string{"title^2", "description", "city", "address"},
							"fuzziness": "AUTO",
						},
					},
				},
				"filter": []any{
					map[string]any{"term": map[string]any{"kind": string(kind)}},
					map[string]any{"term": map[string]any{"status": string(entity.ListingApproved)}},
				},
			},
		},
		"_source": []string{"id"},
	}
}

// Search returns matching listing ids in relevance order and the total hit count.
func (l *ListingIndex) Search(ctx context.Context, kind entity.ListingKind, q string, page repo.Page) ([]string, int64, error) {
	b, err := json.Marshal(SearchQuery(kind, q, page))
	if err != nil {
		return nil, 0, err
	}
	c, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	res, err := l.es.Search(
		l.es.Search.WithContext(c),
		l.es.Search.WithIndex(l.index),
		l.es.Search.WithBody(bytes.NewReader(b)),
	)
	if err != nil {
		return nil, 0, err
	}
	defer func() { _ = res.Body.Close() }()
	if res.IsError() {
		return nil, 0, fmt.Errorf("es search: %s", res.Status())
	}

	var parsed struct {
		Hits struct {
			Total struct {
				Value int64 `json:"value"`
			} `json:"total"`
			Hits []struct {
				Source struct {
					ID string `json:"id"`
				} `json:"_source"`
			} `json:"hits"`
		} `json:"hits"`
	}
	if err := json.NewDecoder(res.Body).Decode(&parsed); err != nil {
		return nil, 0, err
	}
	ids := make([]string, 0, len(parsed.Hits.Hits))
	for _, h := range parsed.Hits.Hits {
		ids = append(ids, h.Source.ID)
	}
	return ids, parsed.Hits.Total.Value, nil
}

var _ repo.ListingIndex = (*ListingIndex)(nil)
