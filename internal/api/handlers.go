package api

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/evaldesk/eval-analytics/internal/domain"
	"github.com/evaldesk/eval-analytics/internal/logger"
	"github.com/evaldesk/eval-analytics/internal/service"
)

// Pinger reports backend connectivity for health checks.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Handler handles HTTP requests for the eval analytics API
type Handler struct {
	analyticsService *service.AnalyticsService
	evalStore        *service.EvalStoreService
	indexService     *service.IndexService
	usageIndex       string
	esPinger         Pinger
	dbPinger         Pinger
	logger           logger.Logger
}

// NewHandler creates a new API handler
func NewHandler(
	analyticsService *service.AnalyticsService,
	evalStore *service.EvalStoreService,
	indexService *service.IndexService,
	usageIndex string,
	esPinger, dbPinger Pinger,
	log logger.Logger,
) *Handler {
	return &Handler{
		analyticsService: analyticsService,
		evalStore:        evalStore,
		indexService:     indexService,
		usageIndex:       usageIndex,
		esPinger:         esPinger,
		dbPinger:         dbPinger,
		logger:           log,
	}
}

// HealthCheck handles GET /health
func (h *Handler) HealthCheck(c *gin.Context) {
	checks := map[string]string{
		"opensearch": "ok",
		"database":   "ok",
	}
	status := "healthy"
	httpStatus := http.StatusOK

	if err := h.esPinger.Ping(c.Request.Context()); err != nil {
		checks["opensearch"] = err.Error()
		status = "degraded"
		httpStatus = http.StatusServiceUnavailable
	}
	if err := h.dbPinger.Ping(c.Request.Context()); err != nil {
		checks["database"] = err.Error()
		status = "degraded"
		httpStatus = http.StatusServiceUnavailable
	}

	c.JSON(httpStatus, gin.H{
		"status":    status,
		"checks":    checks,
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}

// GetFieldCounts handles GET /api/v1/analytics/field-counts.
//
// Query parameters:
//
//	fields     comma-separated field names (required)
//	index      index to aggregate over (default: the usage metrics index)
//	from_time  inclusive ISO-8601 lower bound
//	to_time    inclusive ISO-8601 upper bound
//	time_field timestamp field for range filtering (default: @timestamp)
//
// A malformed request is a 400. A backend failure returns 200 with an
// {"error": ...} body so dashboard panels render the failure in place of
// silently dropping the widget.
func (h *Handler) GetFieldCounts(c *gin.Context) {
	fields, err := domain.ParseFieldList(c.Query("fields"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "fields query parameter is required"})
		return
	}

	indexName := c.Query("index")
	if indexName == "" {
		indexName = h.usageIndex
	}

	req := &domain.FieldCountRequest{
		Fields:    fields,
		FromTime:  c.Query("from_time"),
		ToTime:    c.Query("to_time"),
		TimeField: c.Query("time_field"),
	}

	result, err := h.analyticsService.GetFieldCounts(c.Request.Context(), indexName, req)
	if err != nil {
		if errors.Is(err, domain.ErrNoFields) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		h.logger.Error("Field count aggregation failed",
			logger.String("index_name", indexName),
			logger.Error(err),
		)
		c.JSON(http.StatusOK, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, result)
}

// CreateEvalRun handles POST /api/v1/eval/runs
func (h *Handler) CreateEvalRun(c *gin.Context) {
	var document map[string]any
	if err := c.ShouldBindJSON(&document); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	evalID, err := h.evalStore.InsertEvalRun(c.Request.Context(), document)
	if err != nil {
		if errors.Is(err, service.ErrMissingEvalID) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		h.logger.Error("Failed to store eval run", logger.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusCreated, gin.H{"eval_id": evalID})
}

// GetEvalRun handles GET /api/v1/eval/runs/:eval_id
func (h *Handler) GetEvalRun(c *gin.Context) {
	evalID := c.Param("eval_id")

	document := h.evalStore.GetEvalRun(c.Request.Context(), evalID)
	if document == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "eval run not found"})
		return
	}

	c.JSON(http.StatusOK, document)
}

// UpdateEvalRun handles PUT /api/v1/eval/runs/:eval_id
func (h *Handler) UpdateEvalRun(c *gin.Context) {
	evalID := c.Param("eval_id")

	var partial map[string]any
	if err := c.ShouldBindJSON(&partial); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.evalStore.UpdateEvalRun(c.Request.Context(), evalID, partial); err != nil {
		h.logger.Error("Failed to update eval run",
			logger.String("eval_id", evalID),
			logger.Error(err),
		)
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"eval_id": evalID})
}

// DeleteEvalRun handles DELETE /api/v1/eval/runs/:eval_id
func (h *Handler) DeleteEvalRun(c *gin.Context) {
	evalID := c.Param("eval_id")

	if err := h.evalStore.DeleteEvalRun(c.Request.Context(), evalID); err != nil {
		h.logger.Error("Failed to delete eval run",
			logger.String("eval_id", evalID),
			logger.Error(err),
		)
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "eval run deleted"})
}

// ListEvalPrompts handles GET /api/v1/eval/runs/:eval_id/prompts
func (h *Handler) ListEvalPrompts(c *gin.Context) {
	evalID := c.Param("eval_id")
	size := parseSize(c.Query("size"))

	prompts := h.evalStore.SearchEvalPrompts(c.Request.Context(), evalID, size)

	c.JSON(http.StatusOK, gin.H{
		"prompts": prompts,
		"count":   len(prompts),
	})
}

// CreateEvalPrompt handles POST /api/v1/eval/prompts
func (h *Handler) CreateEvalPrompt(c *gin.Context) {
	var document map[string]any
	if err := c.ShouldBindJSON(&document); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	promptUUID, err := h.evalStore.InsertEvalPrompt(c.Request.Context(), document)
	if err != nil {
		h.logger.Error("Failed to store eval prompt", logger.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusCreated, gin.H{"prompt_uuid": promptUUID})
}

// CreateEvalPromptsBulk handles POST /api/v1/eval/prompts/bulk
func (h *Handler) CreateEvalPromptsBulk(c *gin.Context) {
	var documents []map[string]any
	if err := c.ShouldBindJSON(&documents); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	ids, err := h.evalStore.InsertEvalPrompts(c.Request.Context(), documents)
	if err != nil {
		h.logger.Error("Bulk prompt insert failed",
			logger.Int("stored", len(ids)),
			logger.Error(err),
		)
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":        err.Error(),
			"prompt_uuids": ids,
		})
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"prompt_uuids": ids,
		"count":        len(ids),
	})
}

// searchRequest is the body of the POST search endpoints. Filters are exact
// matches on keyword fields, e.g. {"tenant_id": "t1", "status": "COMPLETED"}.
type searchRequest struct {
	Filters map[string]string `json:"filters"`
	Size    int               `json:"size"`
}

// bindSearchRequest decodes a search body, treating an empty body as an
// unfiltered search.
func bindSearchRequest(c *gin.Context) (*searchRequest, error) {
	var req searchRequest
	if c.Request.ContentLength == 0 {
		return &req, nil
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		return nil, err
	}
	return &req, nil
}

// SearchEvalRuns handles POST /api/v1/eval/runs/search
func (h *Handler) SearchEvalRuns(c *gin.Context) {
	req, err := bindSearchRequest(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	runs := h.evalStore.SearchEvalRuns(c.Request.Context(), req.Filters, req.Size)

	c.JSON(http.StatusOK, gin.H{
		"runs":  runs,
		"count": len(runs),
	})
}

// SearchEvalResponses handles POST /api/v1/eval/responses/search
func (h *Handler) SearchEvalResponses(c *gin.Context) {
	req, err := bindSearchRequest(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	responses := h.evalStore.FilterEvalResponses(c.Request.Context(), req.Filters, req.Size)

	c.JSON(http.StatusOK, gin.H{
		"responses": responses,
		"count":     len(responses),
	})
}

// CreateEvalResponse handles POST /api/v1/eval/responses
func (h *Handler) CreateEvalResponse(c *gin.Context) {
	var document map[string]any
	if err := c.ShouldBindJSON(&document); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.evalStore.InsertEvalResponse(c.Request.Context(), document); err != nil {
		h.logger.Error("Failed to store eval response", logger.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusCreated, gin.H{"message": "response stored"})
}

// CreateEvalResponsesBulk handles POST /api/v1/eval/responses/bulk
func (h *Handler) CreateEvalResponsesBulk(c *gin.Context) {
	var documents []map[string]any
	if err := c.ShouldBindJSON(&documents); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.evalStore.InsertEvalResponses(c.Request.Context(), documents); err != nil {
		h.logger.Error("Bulk response insert failed", logger.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusCreated, gin.H{"count": len(documents)})
}

// ListEvalResponses handles GET /api/v1/eval/prompts/:prompt_uuid/responses
func (h *Handler) ListEvalResponses(c *gin.Context) {
	promptUUID := c.Param("prompt_uuid")
	size := parseSize(c.Query("size"))

	responses := h.evalStore.SearchEvalResponses(c.Request.Context(), promptUUID, size)

	c.JSON(http.StatusOK, gin.H{
		"responses": responses,
		"count":     len(responses),
	})
}

// RecordUsageMetric handles POST /api/v1/metrics/usage
func (h *Handler) RecordUsageMetric(c *gin.Context) {
	var document map[string]any
	if err := c.ShouldBindJSON(&document); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.evalStore.InsertUsageMetric(c.Request.Context(), document); err != nil {
		h.logger.Error("Failed to store usage metric", logger.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusCreated, gin.H{"message": "metric stored"})
}

// ListIndices handles GET /api/v1/indexes
func (h *Handler) ListIndices(c *gin.Context) {
	records, err := h.indexService.ListIndexMetadata(c.Request.Context())
	if err != nil {
		h.logger.Error("Failed to list index metadata", logger.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	type indexRecord struct {
		IndexName      string `json:"index_name"`
		IndexType      string `json:"index_type"`
		MappingVersion string `json:"mapping_version"`
		Status         string `json:"status"`
	}
	indices := make([]indexRecord, 0, len(records))
	for _, r := range records {
		indices = append(indices, indexRecord{
			IndexName:      r.IndexName,
			IndexType:      r.IndexType,
			MappingVersion: r.MappingVersion,
			Status:         r.Status,
		})
	}

	c.JSON(http.StatusOK, gin.H{
		"indices": indices,
		"count":   len(indices),
	})
}

// GetIndexMapping handles GET /api/v1/indexes/:index_name/mapping. A missing
// index is a 404; a backend failure degrades to an empty mapping object so
// inspection tooling keeps working against a flaky cluster.
func (h *Handler) GetIndexMapping(c *gin.Context) {
	indexName := c.Param("index_name")

	mapping, err := h.indexService.GetIndexMapping(c.Request.Context(), indexName)
	if err != nil {
		if errors.Is(err, service.ErrIndexNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
			return
		}
		h.logger.Warn("Failed to read index mapping",
			logger.String("index_name", indexName),
			logger.Error(err),
		)
		c.JSON(http.StatusOK, gin.H{
			"index_name": indexName,
			"mappings":   gin.H{},
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"index_name": indexName,
		"mappings":   mapping,
	})
}

// ListIndexDocuments handles GET /api/v1/indexes/:index_name/documents
func (h *Handler) ListIndexDocuments(c *gin.Context) {
	indexName := c.Param("index_name")
	size := parseSize(c.Query("size"))

	documents := h.evalStore.ListDocuments(c.Request.Context(), indexName, size)

	c.JSON(http.StatusOK, gin.H{
		"documents": documents,
		"count":     len(documents),
	})
}

// parseSize parses a size query parameter, returning 0 (service default) for
// missing or malformed values.
func parseSize(raw string) int {
	if raw == "" {
		return 0
	}
	size, err := strconv.Atoi(raw)
	if err != nil || size < 0 {
		return 0
	}
	return size
}
