// Package elasticsearch wraps the search backend client with the document and
// index operations used by the eval-analytics service. The backend speaks the
// Elasticsearch wire protocol (OpenSearch clusters are compatible for the
// operations used here).
package elasticsearch

import (
	"context"
	"crypto/tls"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	es "github.com/elastic/go-elasticsearch/v8"
	"github.com/elastic/go-elasticsearch/v8/esapi"

	"github.com/evaldesk/eval-analytics/internal/domain"
)

// ErrDocumentNotFound is returned when a get targets a missing document.
var ErrDocumentNotFound = errors.New("document not found")

// Client wraps the backend client with document and index operations.
type Client struct {
	esClient *es.Client
	config   *Config
}

// Config holds search backend connection configuration.
type Config struct {
	Endpoint        string
	Username        string
	Secret          string
	InsecureSkipTLS bool
	MaxRetries      int
	Timeout         time.Duration
}

// NewClient creates a new backend client and verifies connectivity.
func NewClient(cfg *Config) (*Client, error) {
	addresses := []string{cfg.Endpoint}
	if !strings.HasPrefix(cfg.Endpoint, "http://") && !strings.HasPrefix(cfg.Endpoint, "https://") {
		addresses = []string{"https://" + cfg.Endpoint}
	}

	transport := &http.Transport{
		TLSClientConfig: &tls.Config{
			InsecureSkipVerify: cfg.InsecureSkipTLS, //nolint:gosec // self-signed clusters are a supported deployment
		},
	}

	clientConfig := es.Config{
		Addresses:  addresses,
		Transport:  transport,
		MaxRetries: cfg.MaxRetries,
	}

	if cfg.Username != "" && cfg.Secret != "" {
		clientConfig.Username = cfg.Username
		clientConfig.Password = cfg.Secret
	}

	esClient, err := es.NewClient(clientConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create search backend client: %w", err)
	}

	res, err := esClient.Ping()
	if err != nil {
		return nil, fmt.Errorf("failed to ping search backend: %w", err)
	}
	defer res.Body.Close()

	if res.IsError() {
		return nil, fmt.Errorf("error pinging search backend: %s", res.String())
	}

	return &Client{
		esClient: esClient,
		config:   cfg,
	}, nil
}

// Ping checks backend connectivity.
func (c *Client) Ping(ctx context.Context) error {
	res, err := c.esClient.Ping(c.esClient.Ping.WithContext(ctx))
	if err != nil {
		return fmt.Errorf("failed to ping search backend: %w", err)
	}
	defer res.Body.Close()

	if res.IsError() {
		return fmt.Errorf("error pinging search backend: %s", res.String())
	}
	return nil
}

// IndexExists checks if an index exists.
func (c *Client) IndexExists(ctx context.Context, indexName string) (bool, error) {
	res, err := c.esClient.Indices.Exists([]string{indexName}, c.esClient.Indices.Exists.WithContext(ctx))
	if err != nil {
		return false, fmt.Errorf("failed to check index existence: %w", err)
	}
	defer res.Body.Close()

	if res.StatusCode == http.StatusNotFound {
		return false, nil
	}
	if res.IsError() {
		return false, fmt.Errorf("error checking index existence: %s", res.String())
	}

	return true, nil
}

// CreateIndex creates a new index with the given body (settings and mappings).
func (c *Client) CreateIndex(ctx context.Context, indexName string, body map[string]any) error {
	var bodyReader io.Reader
	if body != nil {
		bodyBytes, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to marshal index body: %w", err)
		}
		bodyReader = strings.NewReader(string(bodyBytes))
	}

	res, err := c.esClient.Indices.Create(indexName,
		c.esClient.Indices.Create.WithBody(bodyReader),
		c.esClient.Indices.Create.WithContext(ctx),
	)
	if err != nil {
		return fmt.Errorf("failed to create index: %w", err)
	}
	defer res.Body.Close()

	if res.IsError() {
		respBody, _ := io.ReadAll(res.Body)
		return fmt.Errorf("error creating index: %s", string(respBody))
	}

	return nil
}

// UpdateIndexMapping updates the mapping for an index. The backend only allows
// additive mapping updates.
func (c *Client) UpdateIndexMapping(ctx context.Context, indexName string, mapping map[string]any) error {
	mappingJSON, err := json.Marshal(mapping)
	if err != nil {
		return fmt.Errorf("failed to marshal mapping: %w", err)
	}

	res, err := c.esClient.Indices.PutMapping(
		[]string{indexName},
		strings.NewReader(string(mappingJSON)),
		c.esClient.Indices.PutMapping.WithContext(ctx),
	)
	if err != nil {
		return fmt.Errorf("failed to update index mapping: %w", err)
	}
	defer res.Body.Close()

	if res.IsError() {
		respBody, _ := io.ReadAll(res.Body)
		return fmt.Errorf("error updating index mapping: %s", string(respBody))
	}

	return nil
}

// GetIndexMapping gets the current mapping of an index.
func (c *Client) GetIndexMapping(ctx context.Context, indexName string) (map[string]any, error) {
	res, err := c.esClient.Indices.GetMapping(
		c.esClient.Indices.GetMapping.WithIndex(indexName),
		c.esClient.Indices.GetMapping.WithContext(ctx),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to get index mapping: %w", err)
	}
	defer res.Body.Close()

	if res.IsError() {
		respBody, _ := io.ReadAll(res.Body)
		return nil, fmt.Errorf("error getting index mapping: %s", string(respBody))
	}

	var mappingData map[string]any
	if err := json.NewDecoder(res.Body).Decode(&mappingData); err != nil {
		return nil, fmt.Errorf("failed to decode mapping: %w", err)
	}

	if indexData, ok := mappingData[indexName].(map[string]any); ok {
		if mappings, ok := indexData["mappings"].(map[string]any); ok {
			return mappings, nil
		}
	}

	return nil, fmt.Errorf("mapping not found for index %s", indexName)
}

// IndexDocument stores a document. An empty id lets the backend assign one.
// The write requests an immediate refresh so a subsequent read in the same
// call chain observes it.
func (c *Client) IndexDocument(ctx context.Context, indexName string, document map[string]any, documentID string) error {
	docJSON, err := json.Marshal(document)
	if err != nil {
		return fmt.Errorf("failed to marshal document: %w", err)
	}

	opts := []func(*esapi.IndexRequest){
		c.esClient.Index.WithContext(ctx),
		c.esClient.Index.WithRefresh("true"),
	}
	if documentID != "" {
		opts = append(opts, c.esClient.Index.WithDocumentID(documentID))
	}

	res, err := c.esClient.Index(indexName, strings.NewReader(string(docJSON)), opts...)
	if err != nil {
		return fmt.Errorf("failed to index document: %w", err)
	}
	defer res.Body.Close()

	if res.IsError() {
		respBody, _ := io.ReadAll(res.Body)
		return fmt.Errorf("error indexing document: %s", string(respBody))
	}

	return nil
}

// GetDocument retrieves a document source by id. Returns ErrDocumentNotFound
// when the document does not exist.
func (c *Client) GetDocument(ctx context.Context, indexName, documentID string) (map[string]any, error) {
	res, err := c.esClient.Get(indexName, documentID, c.esClient.Get.WithContext(ctx))
	if err != nil {
		return nil, fmt.Errorf("failed to get document: %w", err)
	}
	defer res.Body.Close()

	if res.StatusCode == http.StatusNotFound {
		return nil, ErrDocumentNotFound
	}
	if res.IsError() {
		respBody, _ := io.ReadAll(res.Body)
		return nil, fmt.Errorf("error getting document: %s", string(respBody))
	}

	var getResponse struct {
		Source map[string]any `json:"_source"`
	}
	if err := json.NewDecoder(res.Body).Decode(&getResponse); err != nil {
		return nil, fmt.Errorf("failed to decode get response: %w", err)
	}

	return getResponse.Source, nil
}

// UpdateDocument applies a partial update to a document, with refresh.
func (c *Client) UpdateDocument(ctx context.Context, indexName, documentID string, partial map[string]any) error {
	body, err := json.Marshal(map[string]any{"doc": partial})
	if err != nil {
		return fmt.Errorf("failed to marshal update body: %w", err)
	}

	res, err := c.esClient.Update(indexName, documentID, strings.NewReader(string(body)),
		c.esClient.Update.WithContext(ctx),
		c.esClient.Update.WithRefresh("true"),
	)
	if err != nil {
		return fmt.Errorf("failed to update document: %w", err)
	}
	defer res.Body.Close()

	if res.IsError() {
		respBody, _ := io.ReadAll(res.Body)
		return fmt.Errorf("error updating document: %s", string(respBody))
	}

	return nil
}

// DeleteDocument deletes a document by id, with refresh.
func (c *Client) DeleteDocument(ctx context.Context, indexName, documentID string) error {
	res, err := c.esClient.Delete(indexName, documentID,
		c.esClient.Delete.WithContext(ctx),
		c.esClient.Delete.WithRefresh("true"),
	)
	if err != nil {
		return fmt.Errorf("failed to delete document: %w", err)
	}
	defer res.Body.Close()

	if res.IsError() {
		respBody, _ := io.ReadAll(res.Body)
		return fmt.Errorf("error deleting document: %s", string(respBody))
	}

	return nil
}

// SearchDocuments executes a query and returns the decoded hits.
func (c *Client) SearchDocuments(ctx context.Context, indexName string, query map[string]any, size int) ([]domain.Document, error) {
	queryJSON, err := json.Marshal(query)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal query: %w", err)
	}

	opts := []func(*esapi.SearchRequest){
		c.esClient.Search.WithContext(ctx),
		c.esClient.Search.WithIndex(indexName),
		c.esClient.Search.WithBody(strings.NewReader(string(queryJSON))),
	}
	if size > 0 {
		opts = append(opts, c.esClient.Search.WithSize(size))
	}

	res, err := c.esClient.Search(opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to execute search: %w", err)
	}
	defer res.Body.Close()

	if res.IsError() {
		respBody, _ := io.ReadAll(res.Body)
		return nil, fmt.Errorf("search returned error [%d]: %s", res.StatusCode, string(respBody))
	}

	var esResponse struct {
		Hits struct {
			Hits []struct {
				ID     string         `json:"_id"`
				Source map[string]any `json:"_source"`
			} `json:"hits"`
		} `json:"hits"`
	}
	if decodeErr := json.NewDecoder(res.Body).Decode(&esResponse); decodeErr != nil {
		return nil, fmt.Errorf("failed to decode search response: %w", decodeErr)
	}

	documents := make([]domain.Document, 0, len(esResponse.Hits.Hits))
	for _, hit := range esResponse.Hits.Hits {
		documents = append(documents, domain.Document{ID: hit.ID, Source: hit.Source})
	}

	return documents, nil
}

// Search executes a query and returns the raw response. Callers that need
// aggregations decode the body themselves and must close it.
func (c *Client) Search(ctx context.Context, indexName string, query map[string]any) (*esapi.Response, error) {
	queryJSON, err := json.Marshal(query)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal query: %w", err)
	}

	res, err := c.esClient.Search(
		c.esClient.Search.WithContext(ctx),
		c.esClient.Search.WithIndex(indexName),
		c.esClient.Search.WithBody(strings.NewReader(string(queryJSON))),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to execute search: %w", err)
	}

	return res, nil
}
