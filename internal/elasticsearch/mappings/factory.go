package mappings

import "fmt"

// GetMappingForType returns the appropriate mapping for an index type
func GetMappingForType(indexType string, shards, replicas int) (map[string]any, error) {
	switch indexType {
	case TypeEvalRun:
		return GetEvalRunMapping(shards, replicas), nil
	case TypeEvalPrompt:
		return GetEvalPromptMapping(shards, replicas), nil
	case TypeEvalResponse:
		return GetEvalResponseMapping(shards, replicas), nil
	case TypeUsageMetrics:
		return GetUsageMetricsMapping(shards, replicas), nil
	default:
		return nil, fmt.Errorf("unknown index type: %s", indexType)
	}
}
