package domain

// Document is an opaque search-backend document. The service neither validates
// nor reshapes the source beyond attaching the identifier.
type Document struct {
	// ID is the backend document id. Empty on insert lets the backend assign one.
	ID string `json:"id,omitempty"`
	// Source is the document body as stored.
	Source map[string]any `json:"source"`
}

// Well-known identifier fields on eval documents.
const (
	EvalRunIDField    = "eval_id"
	EvalPromptIDField = "prompt_uuid"
)
