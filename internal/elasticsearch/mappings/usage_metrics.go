package mappings

// getUsageMetricsFields returns the AI usage metrics field definitions
func getUsageMetricsFields() map[string]any {
	return map[string]any{
		"@timestamp": map[string]any{
			"type": "date",
		},
		"metric_name": map[string]any{
			"type": "keyword",
		},
		// float, not long: token rates and cost metrics are fractional
		"value": map[string]any{
			"type": "float",
		},
		"labels": map[string]any{
			"properties": map[string]any{
				"function_name": map[string]any{
					"type": "keyword",
				},
				"model_name": map[string]any{
					"type": "keyword",
				},
				"warehouse_id": map[string]any{
					"type": "long",
				},
			},
		},
	}
}

// GetUsageMetricsMapping returns the mapping for the AI usage metrics index
func GetUsageMetricsMapping(shards, replicas int) map[string]any {
	return map[string]any{
		"settings": map[string]any{
			"number_of_shards":   shards,
			"number_of_replicas": replicas,
		},
		"mappings": map[string]any{
			"properties": getUsageMetricsFields(),
		},
	}
}
