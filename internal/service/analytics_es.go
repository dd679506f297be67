package service

import (
	"context"

	"github.com/elastic/go-elasticsearch/v8/esapi"
)

// AnalyticsESClient defines the backend operations needed by AnalyticsService.
// The concrete *elasticsearch.Client satisfies this interface.
type AnalyticsESClient interface {
	Search(ctx context.Context, indexName string, query map[string]any) (*esapi.Response, error)
}
