// Package azsearch is a minimal client for the hosted search service's
// documents REST API. It speaks to exactly one index and exposes the one
// query shape the web front end needs.
package azsearch

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/margies-travel/docsearch/internal/models"
)

const (
	apiVersion = "2023-11-01"

	// Every term must match, across all searchable fields.
	searchMode = "all"

	// The projection of index fields the results page renders.
	selectFields = "metadata_storage_name,metadata_author,metadata_storage_size," +
		"metadata_storage_last_modified,language,merged_content,keyphrases," +
		"locations,imageTags,imageCaption,sentiment"

	// Up to three highlighted fragments each for the body excerpt and the
	// image caption.
	highlightFields = "merged_content-3,imageCaption-3"

	// The one facet the UI offers for narrowing results.
	authorFacet = "metadata_author"

	defaultPageSize = 50
	maxPageSize     = 200

	requestTimeout = 30 * time.Second
)

// Query is one translated search request. Zero-valued Filter and OrderBy
// are omitted from the wire request.
type Query struct {
	SearchText string
	Filter     string
	OrderBy    string
}

// Results is one page of result records together with the total match
// count and the author facet buckets for the whole match set.
type Results struct {
	Count     int64
	Documents []models.Document
	Facets    []models.Facet
}

// Client issues queries against a single index of the search service.
type Client struct {
	hc       *http.Client
	endpoint string
	key      string
	index    string
	top      int
	log      *zap.Logger
}

// New builds a search client. pageSize values outside (0, 200] are
// clamped to the service limits.
func New(endpoint, key, index string, pageSize int, log *zap.Logger) (*Client, error) {
	endpoint = strings.TrimRight(strings.TrimSpace(endpoint), "/")
	if endpoint == "" {
		return nil, fmt.Errorf("search endpoint must not be empty")
	}
	u, err := url.Parse(endpoint)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("search endpoint %q is not an absolute URL", endpoint)
	}
	if key == "" {
		return nil, fmt.Errorf("query key must not be empty")
	}
	if index == "" {
		return nil, fmt.Errorf("index name must not be empty")
	}

	if pageSize <= 0 {
		pageSize = defaultPageSize
	}
	if pageSize > maxPageSize {
		pageSize = maxPageSize
	}

	if log == nil {
		log = zap.NewNop()
	}

	return &Client{
		hc:       &http.Client{Timeout: requestTimeout},
		endpoint: endpoint,
		key:      key,
		index:    index,
		top:      pageSize,
		log:      log,
	}, nil
}

// Search runs one synchronous query and returns the first page of
// matching records. Transport failures, rejected queries and undecodable
// replies all come back as a single "search failed" error carrying the
// underlying cause.
func (c *Client) Search(ctx context.Context, q Query) (*Results, error) {
	body := map[string]any{
		"search":     q.SearchText,
		"searchMode": searchMode,
		"count":      true,
		"facets":     []string{authorFacet},
		"highlight":  highlightFields,
		"select":     selectFields,
		"top":        c.top,
	}
	if q.Filter != "" {
		body["filter"] = q.Filter
	}
	if q.OrderBy != "" {
		body["orderby"] = q.OrderBy
	}

	payload, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("search failed: marshal request: %w", err)
	}

	endpoint := fmt.Sprintf("%s/indexes/%s/docs/search?api-version=%s",
		c.endpoint, url.PathEscape(c.index), apiVersion)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("search failed: build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("api-key", c.key)
	req.Header.Set("x-ms-client-request-id", uuid.NewString())

	c.log.Debug("search request",
		zap.String("search", q.SearchText),
		zap.String("filter", q.Filter),
		zap.String("orderby", q.OrderBy),
	)

	res, err := c.hc.Do(req)
	if err != nil {
		return nil, fmt.Errorf("search failed: %w", err)
	}
	defer res.Body.Close()

	if res.StatusCode < http.StatusOK || res.StatusCode >= http.StatusMultipleChoices {
		data, _ := io.ReadAll(res.Body)
		return nil, fmt.Errorf("search failed: %s", strings.TrimSpace(string(data)))
	}

	var parsed struct {
		Count  int64                     `json:"@odata.count"`
		Facets map[string][]models.Facet `json:"@search.facets"`
		Value  []models.Document         `json:"value"`
	}
	if err := json.NewDecoder(res.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("search failed: decode response: %w", err)
	}

	return &Results{
		Count:     parsed.Count,
		Documents: parsed.Value,
		Facets:    parsed.Facets[authorFacet],
	}, nil
}

// Health checks that the index answers queries at all by asking for its
// document count.
func (c *Client) Health(ctx context.Context) error {
	endpoint := fmt.Sprintf("%s/indexes/%s/docs/$count?api-version=%s",
		c.endpoint, url.PathEscape(c.index), apiVersion)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return fmt.Errorf("build health request: %w", err)
	}
	req.Header.Set("api-key", c.key)

	res, err := c.hc.Do(req)
	if err != nil {
		return fmt.Errorf("search service unreachable: %w", err)
	}
	defer res.Body.Close()

	if res.StatusCode >= http.StatusBadRequest {
		data, _ := io.ReadAll(res.Body)
		return fmt.Errorf("search service unhealthy: %s", strings.TrimSpace(string(data)))
	}
	return nil
}
