// Package mappings defines the index mappings for the eval analytics indices.
package mappings

import (
	"encoding/json"
)

// Index name constants. The usage metrics index name is configurable and is
// passed in by the caller.
const (
	EvalRunIndex      = "eval_runs"
	EvalPromptIndex   = "eval_prompts"
	EvalResponseIndex = "eval_responses"
)

// Index type identifiers used for mapping lookups and metadata records.
const (
	TypeEvalRun      = "eval_run"
	TypeEvalPrompt   = "eval_prompt"
	TypeEvalResponse = "eval_response"
	TypeUsageMetrics = "usage_metrics"
)

// BaseSettings defines common index-level settings
type BaseSettings struct {
	NumberOfShards   int `json:"number_of_shards"`
	NumberOfReplicas int `json:"number_of_replicas"`
}

// DefaultSettings returns the default index settings
func DefaultSettings() BaseSettings {
	return BaseSettings{
		NumberOfShards:   1,
		NumberOfReplicas: 1,
	}
}

// IndexDefinition pairs an index name with its type identifier and full
// creation body (settings plus mappings).
type IndexDefinition struct {
	Name string
	Type string
	Body map[string]any
}

// Mappings returns just the "mappings" section of the body, the shape
// expected by a put-mapping call on an existing index.
func (d IndexDefinition) Mappings() map[string]any {
	if m, ok := d.Body["mappings"].(map[string]any); ok {
		return m
	}
	return map[string]any{}
}

// Definitions returns the full set of indices the service manages, in the
// order they are provisioned at startup.
func Definitions(usageIndex string) []IndexDefinition {
	settings := DefaultSettings()
	return []IndexDefinition{
		{Name: EvalRunIndex, Type: TypeEvalRun, Body: GetEvalRunMapping(settings.NumberOfShards, settings.NumberOfReplicas)},
		{Name: EvalPromptIndex, Type: TypeEvalPrompt, Body: GetEvalPromptMapping(settings.NumberOfShards, settings.NumberOfReplicas)},
		{Name: EvalResponseIndex, Type: TypeEvalResponse, Body: GetEvalResponseMapping(settings.NumberOfShards, settings.NumberOfReplicas)},
		{Name: usageIndex, Type: TypeUsageMetrics, Body: GetUsageMetricsMapping(settings.NumberOfShards, settings.NumberOfReplicas)},
	}
}

// ToMap converts a mapping to a map[string]interface{} for the backend
func ToMap(mapping interface{}) (map[string]interface{}, error) {
	data, err := json.Marshal(mapping)
	if err != nil {
		return nil, err
	}

	var result map[string]interface{}
	if err := json.Unmarshal(data, &result); err != nil {
		return nil, err
	}

	return result, nil
}
