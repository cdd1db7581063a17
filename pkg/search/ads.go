// Package search maintains the Elasticsearch index used for full-text ad
// search. The index is a read-model only: Postgres stays the source of
// truth and indexing failures must never fail the originating request.
package search

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/elastic/go-elasticsearch/v8/esapi"

	pkglogger "github.com/annonstorg/annonstorg-backend/pkg/logger"
)

// IndexName is the Elasticsearch index holding ad documents
const IndexName = "ads"

// AdDocument is the indexed projection of an ad
type AdDocument struct {
	ID           uint64    `json:"id"`
	Title        string    `json:"title"`
	Description  string    `json:"description"`
	Price        int64     `json:"price"`
	CategorySlug string    `json:"category_slug"`
	CountySlug   string    `json:"county_slug"`
	CreatedAt    time.Time `json:"created_at"`
}

// Client wraps the Elasticsearch client with ad-index operations
type Client struct {
	es *elasticsearch.Client
}

// NewClient creates an Elasticsearch client and verifies connectivity
func NewClient(addresses []string, username, password string) (*Client, error) {
	cfg := elasticsearch.Config{
		Addresses: addresses,
	}
	if username != "" {
		cfg.Username = username
		cfg.Password = password
	}

	es, err := elasticsearch.NewClient(cfg)
	if err != nil {
		return nil, fmt.Errorf("elasticsearch client creation failed: %w", err)
	}

	res, err := es.Info()
	if err != nil {
		return nil, fmt.Errorf("elasticsearch connection failed: %w", err)
	}
	defer res.Body.Close()

	if res.IsError() {
		return nil, fmt.Errorf("elasticsearch error: %s", res.String())
	}

	pkglogger.GetLogger().Info().Msg("connected to Elasticsearch")
	return &Client{es: es}, nil
}

// IndexAd upserts an ad document
func (c *Client) IndexAd(ctx context.Context, doc AdDocument) error {
	data, err := json.Marshal(doc)
	if err != nil {
		return err
	}

	req := esapi.IndexRequest{
		Index:      IndexName,
		DocumentID: strconv.FormatUint(doc.ID, 10),
		Body:       bytes.NewReader(data),
		Refresh:    "false",
	}

	res, err := req.Do(ctx, c.es)
	if err != nil {
		return err
	}
	defer res.Body.Close()

	if res.IsError() {
		body, _ := io.ReadAll(res.Body)
		return fmt.Errorf("index error [%s]: %s", res.Status(), string(body))
	}
	return nil
}

// RemoveAd deletes an ad document. A missing document is not an error,
// so disable/purge stay idempotent.
func (c *Client) RemoveAd(ctx context.Context, adID uint64) error {
	req := esapi.DeleteRequest{
		Index:      IndexName,
		DocumentID: strconv.FormatUint(adID, 10),
	}

	res, err := req.Do(ctx, c.es)
	if err != nil {
		return err
	}
	defer res.Body.Close()

	if res.IsError() && res.StatusCode != 404 {
		body, _ := io.ReadAll(res.Body)
		return fmt.Errorf("delete error [%s]: %s", res.Status(), string(body))
	}
	return nil
}

// SearchAds runs a full-text query over title and description, optionally
// filtered by category and county, and returns matching ad ids
func (c *Client) SearchAds(ctx context.Context, query, categorySlug, countySlug string, from, size int) ([]uint64, int64, error) {
	must := []map[string]interface{}{
		{
			"multi_match": map[string]interface{}{
				"query":  query,
				"fields": []string{"title^2", "description"},
			},
		},
	}
	var filter []map[string]interface{}
	if categorySlug != "" {
		filter = append(filter, map[string]interface{}{
			"term": map[string]interface{}{"category_slug": categorySlug},
		})
	}
	if countySlug != "" {
		filter = append(filter, map[string]interface{}{
			"term": map[string]interface{}{"county_slug": countySlug},
		})
	}

	body := map[string]interface{}{
		"query": map[string]interface{}{
			"bool": map[string]interface{}{
				"must":   must,
				"filter": filter,
			},
		},
	}

	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(body); err != nil {
		return nil, 0, err
	}

	res, err := c.es.Search(
		c.es.Search.WithContext(ctx),
		c.es.Search.WithIndex(IndexName),
		c.es.Search.WithBody(&buf),
		c.es.Search.WithFrom(from),
		c.es.Search.WithSize(size),
		c.es.Search.WithTrackTotalHits(true),
	)
	if err != nil {
		return nil, 0, err
	}
	defer res.Body.Close()

	if res.IsError() {
		raw, _ := io.ReadAll(res.Body)
		return nil, 0, fmt.Errorf("search error [%s]: %s", res.Status(), string(raw))
	}

	var parsed struct {
		Hits struct {
			Total struct {
				Value int64 `json:"value"`
			} `json:"total"`
			Hits []struct {
				ID string `json:"_id"`
			} `json:"hits"`
		} `json:"hits"`
	}
	if err := json.NewDecoder(res.Body).Decode(&parsed); err != nil {
		return nil, 0, err
	}

	ids := make([]uint64, 0, len(parsed.Hits.Hits))
	for _, hit := range parsed.Hits.Hits {
		id, err := strconv.ParseUint(hit.ID, 10, 64)
		if err != nil {
			continue
		}
		ids = append(ids, id)
	}
	return ids, parsed.Hits.Total.Value, nil
}
