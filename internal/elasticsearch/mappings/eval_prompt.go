package mappings

// getEvalPromptFields returns the eval prompt field definitions
func getEvalPromptFields() map[string]any {
	return map[string]any{
		"prompt_uuid": map[string]any{
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
		"prompt": map[string]any{
			"type": "text",
		},
		"create_time": map[string]any{
			"type": "date",
		},
	}
}

// GetEvalPromptMapping returns the mapping for the eval prompts index
func GetEvalPromptMapping(shards, replicas int) map[string]any {
	return map[string]any{
		"settings": map[string]any{
			"number_of_shards":   shards,
			"number_of_replicas": replicas,
		},
		"mappings": map[string]any{
			"properties": getEvalPromptFields(),
		},
	}
}
