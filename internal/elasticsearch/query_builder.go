package elasticsearch

import (
	"github.com/evaldesk/eval-analytics/internal/domain"
)

// termsAggSize caps the number of bucket values returned per field.
const termsAggSize = 100

// FieldCountQueryBuilder builds terms-aggregation queries from field-count requests
type FieldCountQueryBuilder struct{}

// NewFieldCountQueryBuilder creates a new query builder
func NewFieldCountQueryBuilder() *FieldCountQueryBuilder {
	return &FieldCountQueryBuilder{}
}

// Build constructs the aggregation query for a field-count request. It returns
// the query body and the resolved field references so the caller can map
// aggregation keys back to requested field names.
func (qb *FieldCountQueryBuilder) Build(req *domain.FieldCountRequest) (map[string]interface{}, []domain.FieldRef, error) {
	timeField := req.EffectiveTimeField()

	refs := domain.ResolveFields(req.Fields, timeField)
	if len(refs) == 0 {
		return nil, nil, domain.ErrNoFields
	}

	query := map[string]interface{}{
		// Aggregations only, no document hits
		"size":  0,
		"query": qb.buildTimeFilter(req, timeField),
		"aggs":  qb.buildAggregations(refs),
	}

	return query, refs, nil
}

// buildTimeFilter constructs the query clause. Without time bounds the query
// matches all documents.
func (qb *FieldCountQueryBuilder) buildTimeFilter(req *domain.FieldCountRequest, timeField string) map[string]interface{} {
	if req.FromTime == "" && req.ToTime == "" {
		return map[string]interface{}{"match_all": map[string]interface{}{}}
	}

	bounds := make(map[string]interface{})
	if req.FromTime != "" {
		bounds["gte"] = req.FromTime
	}
	if req.ToTime != "" {
		bounds["lte"] = req.ToTime
	}

	return map[string]interface{}{
		"bool": map[string]interface{}{
			"must": []interface{}{
				map[string]interface{}{
					"range": map[string]interface{}{
						timeField: bounds,
					},
				},
			},
		},
	}
}

// buildAggregations constructs one terms aggregation per resolved field.
func (qb *FieldCountQueryBuilder) buildAggregations(refs []domain.FieldRef) map[string]interface{} {
	aggs := make(map[string]interface{}, len(refs))
	for _, ref := range refs {
		aggs[ref.AggKey] = map[string]interface{}{
			"terms": map[string]interface{}{
				"field": ref.Path,
				"size":  termsAggSize,
			},
		}
	}
	return aggs
}
