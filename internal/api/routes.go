package api

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// SetupRoutes configures all API routes
func SetupRoutes(router *gin.Engine, handler *Handler) {
	router.GET("/health", handler.HealthCheck)
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// API v1 routes
	v1 := router.Group("/api/v1")

	// Analytics endpoints
	analytics := v1.Group("/analytics")
	analytics.GET("/field-counts", handler.GetFieldCounts) // GET /api/v1/analytics/field-counts

	// Eval document endpoints
	eval := v1.Group("/eval")
	eval.POST("/runs", handler.CreateEvalRun)                    // POST /api/v1/eval/runs
	eval.POST("/runs/search", handler.SearchEvalRuns)            // POST /api/v1/eval/runs/search
	eval.GET("/runs/:eval_id", handler.GetEvalRun)               // GET /api/v1/eval/runs/:eval_id
	eval.PUT("/runs/:eval_id", handler.UpdateEvalRun)            // PUT /api/v1/eval/runs/:eval_id
	eval.DELETE("/runs/:eval_id", handler.DeleteEvalRun)         // DELETE /api/v1/eval/runs/:eval_id
	eval.GET("/runs/:eval_id/prompts", handler.ListEvalPrompts)  // GET /api/v1/eval/runs/:eval_id/prompts
	eval.POST("/prompts", handler.CreateEvalPrompt)              // POST /api/v1/eval/prompts
	eval.POST("/prompts/bulk", handler.CreateEvalPromptsBulk)    // POST /api/v1/eval/prompts/bulk
	eval.GET("/prompts/:prompt_uuid/responses", handler.ListEvalResponses)
	eval.POST("/responses", handler.CreateEvalResponse)           // POST /api/v1/eval/responses
	eval.POST("/responses/bulk", handler.CreateEvalResponsesBulk) // POST /api/v1/eval/responses/bulk
	eval.POST("/responses/search", handler.SearchEvalResponses)   // POST /api/v1/eval/responses/search

	// Usage metric ingestion
	v1.POST("/metrics/usage", handler.RecordUsageMetric) // POST /api/v1/metrics/usage

	// Index inspection endpoints
	indexes := v1.Group("/indexes")
	indexes.GET("", handler.ListIndices)                            // GET /api/v1/indexes
	indexes.GET("/:index_name/mapping", handler.GetIndexMapping)    // GET /api/v1/indexes/:index_name/mapping
	indexes.GET("/:index_name/documents", handler.ListIndexDocuments)
}
