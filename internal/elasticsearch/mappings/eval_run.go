package mappings

// getEvalRunFields returns the eval run field definitions
func getEvalRunFields() map[string]any {
	return map[string]any{
		"eval_id": map[string]any{
			"type": "keyword",
		},
		"eval_run_id": map[string]any{
			"type": "keyword",
		},
		"config_id": map[string]any{
			"type": "keyword",
		},
		"tenant_id": map[string]any{
			"type": "keyword",
		},
		"owner": map[string]any{
			"type": "keyword",
		},
		"status": map[string]any{
			"type": "keyword",
		},
		"purpose": map[string]any{
			"type": "text",
		},
		"config_name": map[string]any{
			"type": "keyword",
		},
		"report_name": map[string]any{
			"type": "keyword",
		},
		"application_names": map[string]any{
			"type": "keyword",
		},
		"target_users": map[string]any{
			"type": "keyword",
		},
		"base_run_id": map[string]any{
			"type": "keyword",
		},
		"create_time": map[string]any{
			"type": "date",
		},
		"update_time": map[string]any{
			"type": "date",
		},
		"passed": map[string]any{
			"type": "keyword",
		},
		"failed": map[string]any{
			"type": "keyword",
		},
		"cumulative_result": map[string]any{
			"type": "object",
		},
		"total_prompts": map[string]any{
			"type": "integer",
		},
		"total_passed": map[string]any{
			"type": "integer",
		},
		"total_failed": map[string]any{
			"type": "integer",
		},
		"execution_time": map[string]any{
			"type": "float",
		},
	}
}

// GetEvalRunMapping returns the mapping for the eval runs index
func GetEvalRunMapping(shards, replicas int) map[string]any {
	return map[string]any{
		"settings": map[string]any{
			"number_of_shards":   shards,
			"number_of_replicas": replicas,
		},
		"mappings": map[string]any{
			"properties": getEvalRunFields(),
		},
	}
}
