package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/evaldesk/eval-analytics/internal/domain"
	"github.com/evaldesk/eval-analytics/internal/elasticsearch"
	"github.com/evaldesk/eval-analytics/internal/elasticsearch/mappings"
	"github.com/evaldesk/eval-analytics/internal/logger"
)

// defaultSearchSize caps document searches when the caller does not specify one.
const defaultSearchSize = 100

// ErrMissingEvalID is returned when an eval run document lacks its identifier.
var ErrMissingEvalID = errors.New("eval_id is required")

// DocumentESClient defines the backend operations needed by EvalStoreService.
// The concrete *elasticsearch.Client satisfies this interface.
type DocumentESClient interface {
	IndexDocument(ctx context.Context, indexName string, document map[string]any, documentID string) error
	GetDocument(ctx context.Context, indexName, documentID string) (map[string]any, error)
	UpdateDocument(ctx context.Context, indexName, documentID string, partial map[string]any) error
	DeleteDocument(ctx context.Context, indexName, documentID string) error
	SearchDocuments(ctx context.Context, indexName string, query map[string]any, size int) ([]domain.Document, error)
}

// EvalStoreService stores and retrieves eval run, prompt, and response
// documents. Writes propagate errors to the caller; reads degrade to empty
// results so a flaky backend does not break report pages.
type EvalStoreService struct {
	esClient   DocumentESClient
	usageIndex string
	logger     logger.Logger
}

// NewEvalStoreService creates a new eval store service
func NewEvalStoreService(esClient DocumentESClient, usageIndex string, log logger.Logger) *EvalStoreService {
	return &EvalStoreService{
		esClient:   esClient,
		usageIndex: usageIndex,
		logger:     log,
	}
}

// InsertEvalRun stores an eval run document keyed by its eval_id so repeated
// inserts for the same run overwrite rather than duplicate.
func (s *EvalStoreService) InsertEvalRun(ctx context.Context, document map[string]any) (string, error) {
	evalID, _ := document[domain.EvalRunIDField].(string)
	if evalID == "" {
		return "", ErrMissingEvalID
	}

	stampCreateTime(document)

	if err := s.esClient.IndexDocument(ctx, mappings.EvalRunIndex, document, evalID); err != nil {
		return "", fmt.Errorf("failed to insert eval run: %w", err)
	}

	s.logger.Info("Eval run stored", logger.String("eval_id", evalID))
	return evalID, nil
}

// GetEvalRun retrieves an eval run by eval_id. Returns nil when the run does
// not exist or the backend is unavailable.
func (s *EvalStoreService) GetEvalRun(ctx context.Context, evalID string) map[string]any {
	document, err := s.esClient.GetDocument(ctx, mappings.EvalRunIndex, evalID)
	if err != nil {
		if !errors.Is(err, elasticsearch.ErrDocumentNotFound) {
			s.logger.Warn("Failed to get eval run",
				logger.String("eval_id", evalID),
				logger.Error(err),
			)
		}
		return nil
	}
	return document
}

// UpdateEvalRun applies a partial update to an eval run. The update_time is
// stamped so consumers can order run revisions.
func (s *EvalStoreService) UpdateEvalRun(ctx context.Context, evalID string, partial map[string]any) error {
	if _, ok := partial["update_time"]; !ok {
		partial["update_time"] = time.Now().UTC().Format(time.RFC3339)
	}

	if err := s.esClient.UpdateDocument(ctx, mappings.EvalRunIndex, evalID, partial); err != nil {
		return fmt.Errorf("failed to update eval run: %w", err)
	}
	return nil
}

// DeleteEvalRun deletes an eval run by eval_id.
func (s *EvalStoreService) DeleteEvalRun(ctx context.Context, evalID string) error {
	if err := s.esClient.DeleteDocument(ctx, mappings.EvalRunIndex, evalID); err != nil {
		return fmt.Errorf("failed to delete eval run: %w", err)
	}
	return nil
}

// InsertEvalPrompt stores a prompt document keyed by prompt_uuid, generating
// one when absent. Returns the prompt uuid.
func (s *EvalStoreService) InsertEvalPrompt(ctx context.Context, document map[string]any) (string, error) {
	promptUUID, _ := document[domain.EvalPromptIDField].(string)
	if promptUUID == "" {
		promptUUID = uuid.NewString()
		document[domain.EvalPromptIDField] = promptUUID
	}

	stampCreateTime(document)

	if err := s.esClient.IndexDocument(ctx, mappings.EvalPromptIndex, document, promptUUID); err != nil {
		return "", fmt.Errorf("failed to insert eval prompt: %w", err)
	}

	return promptUUID, nil
}

// InsertEvalPrompts stores a batch of prompt documents, stopping on the first
// failure. Returns the uuids of every stored prompt.
func (s *EvalStoreService) InsertEvalPrompts(ctx context.Context, documents []map[string]any) ([]string, error) {
	ids := make([]string, 0, len(documents))
	for i, document := range documents {
		id, err := s.InsertEvalPrompt(ctx, document)
		if err != nil {
			return ids, fmt.Errorf("failed to insert prompt %d of %d: %w", i+1, len(documents), err)
		}
		ids = append(ids, id)
	}
	return ids, nil
}

// InsertEvalResponse stores a response document with a backend-assigned id.
func (s *EvalStoreService) InsertEvalResponse(ctx context.Context, document map[string]any) error {
	stampCreateTime(document)

	if err := s.esClient.IndexDocument(ctx, mappings.EvalResponseIndex, document, ""); err != nil {
		return fmt.Errorf("failed to insert eval response: %w", err)
	}
	return nil
}

// InsertEvalResponses stores a batch of response documents, stopping on the
// first failure.
func (s *EvalStoreService) InsertEvalResponses(ctx context.Context, documents []map[string]any) error {
	for i, document := range documents {
		if err := s.InsertEvalResponse(ctx, document); err != nil {
			return fmt.Errorf("failed to insert response %d of %d: %w", i+1, len(documents), err)
		}
	}
	return nil
}

// SearchEvalPrompts returns the prompts belonging to an eval run. Returns an
// empty slice on backend failure.
func (s *EvalStoreService) SearchEvalPrompts(ctx context.Context, evalID string, size int) []domain.Document {
	query := termQuery(domain.EvalRunIDField, evalID)
	return s.searchOrEmpty(ctx, mappings.EvalPromptIndex, query, size)
}

// SearchEvalResponses returns the responses recorded for a prompt. Returns an
// empty slice on backend failure.
func (s *EvalStoreService) SearchEvalResponses(ctx context.Context, promptUUID string, size int) []domain.Document {
	query := termQuery("eval_result_prompt_uuid", promptUUID)
	return s.searchOrEmpty(ctx, mappings.EvalResponseIndex, query, size)
}

// SearchEvalRuns returns eval runs matching the given field filters, most
// useful for tenant or status scoping. An empty filter set returns the most
// recent runs. Returns an empty slice on backend failure.
func (s *EvalStoreService) SearchEvalRuns(ctx context.Context, filters map[string]string, size int) []domain.Document {
	return s.searchOrEmpty(ctx, mappings.EvalRunIndex, filterQuery(filters), size)
}

// FilterEvalResponses returns responses matching the given field filters,
// e.g. category or status. Returns an empty slice on backend failure.
func (s *EvalStoreService) FilterEvalResponses(ctx context.Context, filters map[string]string, size int) []domain.Document {
	return s.searchOrEmpty(ctx, mappings.EvalResponseIndex, filterQuery(filters), size)
}

// InsertUsageMetric stores a usage metric sample in the configured usage
// metrics index with a backend-assigned id.
func (s *EvalStoreService) InsertUsageMetric(ctx context.Context, document map[string]any) error {
	if _, ok := document[domain.DefaultTimeField]; !ok {
		document[domain.DefaultTimeField] = time.Now().UTC().Format(time.RFC3339)
	}

	if err := s.esClient.IndexDocument(ctx, s.usageIndex, document, ""); err != nil {
		return fmt.Errorf("failed to insert usage metric: %w", err)
	}
	return nil
}

// ListDocuments returns up to size documents from an index. Returns an empty
// slice on backend failure.
func (s *EvalStoreService) ListDocuments(ctx context.Context, indexName string, size int) []domain.Document {
	query := map[string]any{
		"query": map[string]any{"match_all": map[string]any{}},
	}
	return s.searchOrEmpty(ctx, indexName, query, size)
}

func (s *EvalStoreService) searchOrEmpty(ctx context.Context, indexName string, query map[string]any, size int) []domain.Document {
	if size <= 0 {
		size = defaultSearchSize
	}

	documents, err := s.esClient.SearchDocuments(ctx, indexName, query, size)
	if err != nil {
		s.logger.Warn("Document search failed",
			logger.String("index_name", indexName),
			logger.Error(err),
		)
		return []domain.Document{}
	}
	return documents
}

// filterQuery builds a bool query of term clauses, one per filter. With no
// filters it matches everything.
func filterQuery(filters map[string]string) map[string]any {
	if len(filters) == 0 {
		return map[string]any{
			"query": map[string]any{"match_all": map[string]any{}},
		}
	}

	must := make([]map[string]any, 0, len(filters))
	for field, value := range filters {
		must = append(must, map[string]any{
			"term": map[string]any{field: value},
		})
	}
	return map[string]any{
		"query": map[string]any{
			"bool": map[string]any{"must": must},
		},
	}
}

func termQuery(field, value string) map[string]any {
	return map[string]any{
		"query": map[string]any{
			"term": map[string]any{
				field: value,
			},
		},
	}
}

// stampCreateTime sets create_time when the caller did not supply one.
func stampCreateTime(document map[string]any) {
	if _, ok := document["create_time"]; !ok {
		document["create_time"] = time.Now().UTC().Format(time.RFC3339)
	}
}
