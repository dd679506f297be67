package mappings

// Mapping version constants.
// Bump major for breaking changes (field type changes, removals).
// Bump minor for additions.
const (
	EvalRunMappingVersion      = "1.0.0"
	EvalPromptMappingVersion   = "1.0.0"
	EvalResponseMappingVersion = "1.0.0"
	// 1.1.0 widened value from long to float.
	UsageMetricsMappingVersion = "1.1.0"
)

// GetMappingVersion returns the current mapping version for an index type.
func GetMappingVersion(indexType string) string {
	switch indexType {
	case TypeEvalRun:
		return EvalRunMappingVersion
	case TypeEvalPrompt:
		return EvalPromptMappingVersion
	case TypeEvalResponse:
		return EvalResponseMappingVersion
	case TypeUsageMetrics:
		return UsageMetricsMappingVersion
	default:
		return "1.0.0"
	}
}
