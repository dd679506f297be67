package api //nolint:testpackage // handler tests construct unexported wiring directly

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/elastic/go-elasticsearch/v8/esapi"
	"github.com/gin-gonic/gin"

	"github.com/evaldesk/eval-analytics/internal/database"
	"github.com/evaldesk/eval-analytics/internal/domain"
	"github.com/evaldesk/eval-analytics/internal/elasticsearch/mappings"
	"github.com/evaldesk/eval-analytics/internal/logger"
	"github.com/evaldesk/eval-analytics/internal/service"
)

// --- mocks ---

type stubSearchClient struct {
	resp *esapi.Response
	err  error
}

func (s *stubSearchClient) Search(_ context.Context, _ string, _ map[string]any) (*esapi.Response, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.resp, nil
}

type stubDocumentClient struct {
	indexErr  error
	getResult map[string]any
	getErr    error
	searchRes []domain.Document
}

func (s *stubDocumentClient) IndexDocument(_ context.Context, _ string, _ map[string]any, _ string) error {
	return s.indexErr
}

func (s *stubDocumentClient) GetDocument(_ context.Context, _, _ string) (map[string]any, error) {
	return s.getResult, s.getErr
}

func (s *stubDocumentClient) UpdateDocument(_ context.Context, _, _ string, _ map[string]any) error {
	return nil
}

func (s *stubDocumentClient) DeleteDocument(_ context.Context, _, _ string) error {
	return nil
}

func (s *stubDocumentClient) SearchDocuments(_ context.Context, _ string, _ map[string]any, _ int) ([]domain.Document, error) {
	return s.searchRes, nil
}

type stubProvisioner struct{}

func (s *stubProvisioner) EnsureIndex(_ context.Context, _ mappings.IndexDefinition) (bool, error) {
	return false, nil
}

type stubMetadataStore struct {
	active []*database.IndexMetadata
}

func (s *stubMetadataStore) SaveIndexMetadata(_ context.Context, _ *database.IndexMetadata) error {
	return nil
}

func (s *stubMetadataStore) ListAllActiveMetadata(_ context.Context) ([]*database.IndexMetadata, error) {
	return s.active, nil
}

type stubMappingClient struct {
	exists     bool
	mapping    map[string]any
	mappingErr error
}

func (s *stubMappingClient) IndexExists(_ context.Context, _ string) (bool, error) {
	return s.exists, nil
}

func (s *stubMappingClient) GetIndexMapping(_ context.Context, _ string) (map[string]any, error) {
	return s.mapping, s.mappingErr
}

type stubPinger struct {
	err error
}

func (s *stubPinger) Ping(_ context.Context) error {
	return s.err
}

// --- harness ---

type handlerDeps struct {
	search   *stubSearchClient
	document *stubDocumentClient
	esPing   *stubPinger
	dbPing   *stubPinger
	metadata *stubMetadataStore
	mapping  *stubMappingClient
}

func newTestRouter(deps handlerDeps) *gin.Engine {
	gin.SetMode(gin.TestMode)

	if deps.search == nil {
		deps.search = &stubSearchClient{}
	}
	if deps.document == nil {
		deps.document = &stubDocumentClient{}
	}
	if deps.esPing == nil {
		deps.esPing = &stubPinger{}
	}
	if deps.dbPing == nil {
		deps.dbPing = &stubPinger{}
	}
	if deps.metadata == nil {
		deps.metadata = &stubMetadataStore{}
	}
	if deps.mapping == nil {
		deps.mapping = &stubMappingClient{}
	}

	log := logger.Nop()
	analyticsService := service.NewAnalyticsService(deps.search, log)
	evalStore := service.NewEvalStoreService(deps.document, "ai_usage_metrics", log)
	indexService := service.NewIndexService(&stubProvisioner{}, deps.mapping, deps.metadata, "ai_usage_metrics", log)

	handler := NewHandler(analyticsService, evalStore, indexService, "ai_usage_metrics", deps.esPing, deps.dbPing, log)

	router := gin.New()
	SetupRoutes(router, handler)
	return router
}

func doRequest(t *testing.T, router *gin.Engine, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()

	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func aggResponse(t *testing.T, body string) *esapi.Response {
	t.Helper()
	return &esapi.Response{
		StatusCode: http.StatusOK,
		Body:       io.NopCloser(strings.NewReader(body)),
		Header:     http.Header{},
	}
}

// --- field counts ---

func TestGetFieldCounts_OK(t *testing.T) {
	search := &stubSearchClient{
		resp: aggResponse(t, `{
			"aggregations": {
				"metric_name_count": {
					"buckets": [{"key": "prompt_tokens", "doc_count": 3}]
				}
			}
		}`),
	}
	router := newTestRouter(handlerDeps{search: search})

	rec := doRequest(t, router, http.MethodGet, "/api/v1/analytics/field-counts?fields=metric_name", "")

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200; body = %s", rec.Code, rec.Body.String())
	}
	if !strings.Contains(rec.Body.String(), `"metric_name"`) {
		t.Errorf("body = %s, want metric_name entry", rec.Body.String())
	}
	if !strings.Contains(rec.Body.String(), `"total":3`) {
		t.Errorf("body = %s, want total 3", rec.Body.String())
	}
}

func TestGetFieldCounts_MissingFieldsIs400(t *testing.T) {
	router := newTestRouter(handlerDeps{})

	rec := doRequest(t, router, http.MethodGet, "/api/v1/analytics/field-counts", "")

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
}

func TestGetFieldCounts_BlankFieldsIs400(t *testing.T) {
	router := newTestRouter(handlerDeps{})

	rec := doRequest(t, router, http.MethodGet, "/api/v1/analytics/field-counts?fields=%20,%20", "")

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
}

func TestGetFieldCounts_BackendFailureIs200WithErrorBody(t *testing.T) {
	search := &stubSearchClient{err: errors.New("connection refused")}
	router := newTestRouter(handlerDeps{search: search})

	rec := doRequest(t, router, http.MethodGet, "/api/v1/analytics/field-counts?fields=metric_name", "")

	// Dashboard contract: aggregation failures are reported in-band
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), `"error"`) {
		t.Errorf("body = %s, want error field", rec.Body.String())
	}
}

// --- eval runs ---

func TestCreateEvalRun_Created(t *testing.T) {
	router := newTestRouter(handlerDeps{})

	rec := doRequest(t, router, http.MethodPost, "/api/v1/eval/runs", `{"eval_id":"run-1","status":"COMPLETED"}`)

	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, want 201; body = %s", rec.Code, rec.Body.String())
	}
	if !strings.Contains(rec.Body.String(), `"run-1"`) {
		t.Errorf("body = %s, want eval_id", rec.Body.String())
	}
}

func TestCreateEvalRun_MissingEvalIDIs400(t *testing.T) {
	router := newTestRouter(handlerDeps{})

	rec := doRequest(t, router, http.MethodPost, "/api/v1/eval/runs", `{"status":"COMPLETED"}`)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
}

func TestCreateEvalRun_InvalidJSONIs400(t *testing.T) {
	router := newTestRouter(handlerDeps{})

	rec := doRequest(t, router, http.MethodPost, "/api/v1/eval/runs", `{not json`)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
}

func TestCreateEvalRun_WriteFailureIs500(t *testing.T) {
	document := &stubDocumentClient{indexErr: errors.New("cluster_block_exception")}
	router := newTestRouter(handlerDeps{document: document})

	rec := doRequest(t, router, http.MethodPost, "/api/v1/eval/runs", `{"eval_id":"run-1"}`)

	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d, want 500", rec.Code)
	}
}

func TestGetEvalRun_NotFoundIs404(t *testing.T) {
	document := &stubDocumentClient{getErr: errors.New("not found")}
	router := newTestRouter(handlerDeps{document: document})

	rec := doRequest(t, router, http.MethodGet, "/api/v1/eval/runs/missing", "")

	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", rec.Code)
	}
}

func TestGetEvalRun_Found(t *testing.T) {
	document := &stubDocumentClient{getResult: map[string]any{"eval_id": "run-1", "status": "COMPLETED"}}
	router := newTestRouter(handlerDeps{document: document})

	rec := doRequest(t, router, http.MethodGet, "/api/v1/eval/runs/run-1", "")

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), `"COMPLETED"`) {
		t.Errorf("body = %s, want run document", rec.Body.String())
	}
}

// --- prompts and responses ---

func TestCreateEvalPrompt_GeneratesUUID(t *testing.T) {
	router := newTestRouter(handlerDeps{})

	rec := doRequest(t, router, http.MethodPost, "/api/v1/eval/prompts", `{"eval_id":"run-1","prompt":"hi"}`)

	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, want 201", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), `"prompt_uuid"`) {
		t.Errorf("body = %s, want prompt_uuid", rec.Body.String())
	}
}

func TestCreateEvalPromptsBulk(t *testing.T) {
	router := newTestRouter(handlerDeps{})

	rec := doRequest(t, router, http.MethodPost, "/api/v1/eval/prompts/bulk",
		`[{"prompt":"one"},{"prompt":"two"}]`)

	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, want 201", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), `"count":2`) {
		t.Errorf("body = %s, want count 2", rec.Body.String())
	}
}

func TestListEvalPrompts_EmptyOnBackendTrouble(t *testing.T) {
	// searchRes nil means the client returns no documents
	router := newTestRouter(handlerDeps{document: &stubDocumentClient{}})

	rec := doRequest(t, router, http.MethodGet, "/api/v1/eval/runs/run-1/prompts", "")

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), `"count":0`) {
		t.Errorf("body = %s, want count 0", rec.Body.String())
	}
}

func TestCreateEvalResponse(t *testing.T) {
	router := newTestRouter(handlerDeps{})

	rec := doRequest(t, router, http.MethodPost, "/api/v1/eval/responses",
		`{"eval_result_prompt_uuid":"p1","response":"Paris"}`)

	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, want 201", rec.Code)
	}
}

func TestSearchEvalRuns(t *testing.T) {
	document := &stubDocumentClient{
		searchRes: []domain.Document{
			{ID: "run-1", Source: map[string]any{"status": "COMPLETED"}},
		},
	}
	router := newTestRouter(handlerDeps{document: document})

	rec := doRequest(t, router, http.MethodPost, "/api/v1/eval/runs/search",
		`{"filters":{"status":"COMPLETED"},"size":5}`)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200; body = %s", rec.Code, rec.Body.String())
	}
	if !strings.Contains(rec.Body.String(), `"count":1`) {
		t.Errorf("body = %s, want count 1", rec.Body.String())
	}
}

func TestSearchEvalRuns_EmptyBodyMatchesAll(t *testing.T) {
	router := newTestRouter(handlerDeps{})

	rec := doRequest(t, router, http.MethodPost, "/api/v1/eval/runs/search", "")

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200; body = %s", rec.Code, rec.Body.String())
	}
	if !strings.Contains(rec.Body.String(), `"count":0`) {
		t.Errorf("body = %s, want count 0", rec.Body.String())
	}
}

func TestSearchEvalResponses_Filtered(t *testing.T) {
	document := &stubDocumentClient{
		searchRes: []domain.Document{
			{ID: "r1", Source: map[string]any{"category": "toxicity"}},
		},
	}
	router := newTestRouter(handlerDeps{document: document})

	rec := doRequest(t, router, http.MethodPost, "/api/v1/eval/responses/search",
		`{"filters":{"category":"toxicity"}}`)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), `"toxicity"`) {
		t.Errorf("body = %s, want matched response", rec.Body.String())
	}
}

// --- usage metrics ---

func TestRecordUsageMetric(t *testing.T) {
	router := newTestRouter(handlerDeps{})

	rec := doRequest(t, router, http.MethodPost, "/api/v1/metrics/usage",
		`{"metric_name":"prompt_tokens","value":128,"labels":{"model_name":"gpt-4"}}`)

	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, want 201", rec.Code)
	}
}

// --- index inspection ---

func TestListIndices(t *testing.T) {
	metadata := &stubMetadataStore{
		active: []*database.IndexMetadata{
			{IndexName: "eval_runs", IndexType: "eval_run", MappingVersion: "1.0.0", Status: "active"},
		},
	}
	router := newTestRouter(handlerDeps{metadata: metadata})

	rec := doRequest(t, router, http.MethodGet, "/api/v1/indexes", "")

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), `"eval_runs"`) {
		t.Errorf("body = %s, want eval_runs record", rec.Body.String())
	}
}

func TestGetIndexMapping_MissingIndexIs404(t *testing.T) {
	router := newTestRouter(handlerDeps{mapping: &stubMappingClient{exists: false}})

	rec := doRequest(t, router, http.MethodGet, "/api/v1/indexes/nope/mapping", "")

	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", rec.Code)
	}
}

func TestGetIndexMapping_BackendFailureDegradesToEmpty(t *testing.T) {
	mapping := &stubMappingClient{exists: true, mappingErr: errors.New("timeout")}
	router := newTestRouter(handlerDeps{mapping: mapping})

	rec := doRequest(t, router, http.MethodGet, "/api/v1/indexes/eval_runs/mapping", "")

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want degraded 200", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), `"mappings":{}`) {
		t.Errorf("body = %s, want empty mappings object", rec.Body.String())
	}
}

// --- health ---

func TestHealthCheck_Healthy(t *testing.T) {
	router := newTestRouter(handlerDeps{})

	rec := doRequest(t, router, http.MethodGet, "/health", "")

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), `"healthy"`) {
		t.Errorf("body = %s, want healthy", rec.Body.String())
	}
}

func TestHealthCheck_DegradedWhenBackendDown(t *testing.T) {
	router := newTestRouter(handlerDeps{esPing: &stubPinger{err: errors.New("connection refused")}})

	rec := doRequest(t, router, http.MethodGet, "/health", "")

	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("status = %d, want 503", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), `"degraded"`) {
		t.Errorf("body = %s, want degraded", rec.Body.String())
	}
}
