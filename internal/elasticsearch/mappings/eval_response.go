package mappings

// getEvalResponseFields returns the eval response field definitions
func getEvalResponseFields() map[string]any {
	return map[string]any{
		"eval_result_prompt_uuid": map[string]any{
			"type": "keyword",
		},
		"eval_id": map[string]any{
			"type": "keyword",
		},
		"eval_run_id": map[string]any{
			"type": "keyword",
		},
		"tenant_id": map[string]any{
			"type": "keyword",
		},
		"application_name": map[string]any{
			"type": "keyword",
		},
		"response": map[string]any{
			"type": "text",
		},
		"failure_reason": map[string]any{
			"type": "text",
		},
		"category_score": map[string]any{
			"type": "object",
		},
		"status": map[string]any{
			"type": "keyword",
		},
		"category": map[string]any{
			"type": "keyword",
		},
		"category_type": map[string]any{
			"type": "keyword",
		},
		"category_severity": map[string]any{
			"type": "keyword",
		},
		"create_time": map[string]any{
			"type": "date",
		},
	}
}

// GetEvalResponseMapping returns the mapping for the eval responses index
func GetEvalResponseMapping(shards, replicas int) map[string]any {
	return map[string]any{
		"settings": map[string]any{
			"number_of_shards":   shards,
			"number_of_replicas": replicas,
		},
		"mappings": map[string]any{
			"properties": getEvalResponseFields(),
		},
	}
}
