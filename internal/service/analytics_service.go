package service

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strconv"

	"github.com/evaldesk/eval-analytics/internal/domain"
	"github.com/evaldesk/eval-analytics/internal/elasticsearch"
	"github.com/evaldesk/eval-analytics/internal/logger"
)

// AnalyticsService provides field-count aggregations over analytics indices
type AnalyticsService struct {
	esClient     AnalyticsESClient
	queryBuilder *elasticsearch.FieldCountQueryBuilder
	logger       logger.Logger
}

// NewAnalyticsService creates a new analytics service
func NewAnalyticsService(esClient AnalyticsESClient, log logger.Logger) *AnalyticsService {
	return &AnalyticsService{
		esClient:     esClient,
		queryBuilder: elasticsearch.NewFieldCountQueryBuilder(),
		logger:       log,
	}
}

// GetFieldCounts returns per-value document counts for each requested field,
// optionally filtered to a time window. Every requested field appears in the
// result; fields the backend returned no aggregation for are zero-filled.
func (s *AnalyticsService) GetFieldCounts(
	ctx context.Context,
	indexName string,
	req *domain.FieldCountRequest,
) (domain.FieldCountResult, error) {
	query, refs, err := s.queryBuilder.Build(req)
	if err != nil {
		return nil, err
	}

	s.logger.Debug("Executing field count aggregation",
		logger.String("index_name", indexName),
		logger.Int("field_count", len(refs)),
	)

	res, err := s.esClient.Search(ctx, indexName, query)
	if err != nil {
		return nil, fmt.Errorf("failed to execute aggregation: %w", err)
	}
	defer func() { _ = res.Body.Close() }()

	if res.IsError() {
		body, _ := io.ReadAll(res.Body)
		return nil, fmt.Errorf("aggregation returned error [%d]: %s", res.StatusCode, string(body))
	}

	var esResp aggregationResponse
	if decodeErr := json.NewDecoder(res.Body).Decode(&esResp); decodeErr != nil {
		return nil, fmt.Errorf("failed to decode aggregation response: %w", decodeErr)
	}

	return shapeFieldCounts(refs, esResp.Aggregations), nil
}

// shapeFieldCounts maps aggregation buckets back to the requested field names.
func shapeFieldCounts(refs []domain.FieldRef, aggs map[string]json.RawMessage) domain.FieldCountResult {
	result := make(domain.FieldCountResult, len(refs))
	for _, ref := range refs {
		raw, ok := aggs[ref.AggKey]
		if !ok {
			result[ref.Name] = domain.FieldCount{Total: 0, Breakdown: map[string]int64{}}
			continue
		}

		buckets := extractBuckets(raw)
		var total int64
		for _, count := range buckets {
			total += count
		}
		result[ref.Name] = domain.FieldCount{Total: total, Breakdown: buckets}
	}
	return result
}

// aggregationResponse represents the backend aggregation response structure
type aggregationResponse struct {
	Aggregations map[string]json.RawMessage `json:"aggregations"`
}

// bucketAggResult represents a terms aggregation result. Keys are strings for
// keyword fields but numbers for numeric and date fields, so the raw key is
// kept alongside the backend-rendered key_as_string.
type bucketAggResult struct {
	Buckets []struct {
		Key         json.RawMessage `json:"key"`
		KeyAsString string          `json:"key_as_string"`
		DocCount    int64           `json:"doc_count"`
	} `json:"buckets"`
}

// extractBuckets extracts key-count pairs from a terms aggregation
func extractBuckets(raw json.RawMessage) map[string]int64 {
	result := make(map[string]int64)
	var agg bucketAggResult
	if err := json.Unmarshal(raw, &agg); err != nil {
		return result
	}
	for _, bucket := range agg.Buckets {
		result[bucketKey(bucket.Key, bucket.KeyAsString)] = bucket.DocCount
	}
	return result
}

// bucketKey renders a bucket key as a string. The backend supplies
// key_as_string for date fields; numeric keys are formatted without a
// trailing ".0" so float and long buckets read the same.
func bucketKey(raw json.RawMessage, asString string) string {
	if asString != "" {
		return asString
	}

	var key any
	if err := json.Unmarshal(raw, &key); err != nil {
		return string(raw)
	}

	switch v := key.(type) {
	case string:
		return v
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(v)
	default:
		return string(raw)
	}
}
