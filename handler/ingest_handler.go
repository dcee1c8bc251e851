package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"sort"
	"strconv"
	"time"

	"github.com/leapzhao/shape-store/analyzer"
	"github.com/leapzhao/shape-store/model"
	"github.com/leapzhao/shape-store/storage"
	"github.com/leapzhao/shape-store/utils"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog/log"
)

const summarySampleKeys = 5

// MetadataIndexer 元数据索引依赖
type MetadataIndexer interface {
	Index(ctx context.Context, entry *model.IndexEntry) (int64, error)
	Search(ctx context.Context, schema string, limit int) ([]model.IndexEntry, error)
	Stats(ctx context.Context) (*model.IndexStats, error)
	HealthCheck(ctx context.Context) error
}

// IngestHandler JSON入库处理器：分析、路由、存储、索引
type IngestHandler struct {
	analyzer *analyzer.Analyzer
	decision *storage.DecisionEngine
	store    storage.DocumentStore
	indexer  MetadataIndexer
	validate *validator.Validate
}

func NewIngestHandler(a *analyzer.Analyzer, d *storage.DecisionEngine, store storage.DocumentStore, indexer MetadataIndexer) *IngestHandler {
	return &IngestHandler{
		analyzer: a,
		decision: d,
		store:    store,
		indexer:  indexer,
		validate: validator.New(),
	}
}

// Ingest 统一JSON入库入口
func (h *IngestHandler) Ingest(c *gin.Context) {
	var req model.IngestRequest

	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, model.ErrorResponse{
			Error:   "INVALID_REQUEST",
			Message: "Invalid request body",
		})
		return
	}

	if err := h.validate.Struct(req); err != nil {
		c.JSON(http.StatusBadRequest, model.ErrorResponse{
			Error:   "VALIDATION_ERROR",
			Message: err.Error(),
		})
		return
	}

	start := time.Now()

	// 结构分析
	result, err := h.analyzer.Analyze(req.Data)
	if err != nil {
		h.respondAnalyzeError(c, err)
		return
	}

	// 存储路由决策
	decision := h.decision.Decide(req.Filename, result)

	// 入库
	ctx := c.Request.Context()
	doc, err := h.store.Store(ctx, req.Data, decision)
	if err != nil {
		log.Error().Err(err).Str("filename", req.Filename).Msg("Failed to store JSON")
		c.JSON(http.StatusInternalServerError, model.ErrorResponse{
			Error:   "STORAGE_ERROR",
			Message: "Failed to store JSON document",
		})
		return
	}

	// 批次数据逐条落库，方便后续结构化查询
	recordCount := 1
	if result.Kind == analyzer.ResultBatch {
		if records, err := splitRecords(req.Data); err == nil {
			stored, err := h.store.StoreRecords(ctx, records, decision)
			if err != nil {
				log.Error().Err(err).Str("filename", req.Filename).Msg("Failed to store batch records")
			} else {
				recordCount = len(stored)
			}
		}
	}

	// 写元数据索引，失败不阻塞入库结果
	analysisJSON, _ := json.Marshal(result)
	indexID, err := h.indexer.Index(ctx, &model.IndexEntry{
		Filename:        req.Filename,
		SchemaName:      decision.SchemaName,
		StorageType:     string(decision.StorageType),
		StorageLocation: doc.ID,
		Analysis:        analysisJSON,
	})
	if err != nil {
		log.Error().Err(err).Str("filename", req.Filename).Msg("Failed to index metadata")
	}

	log.Info().
		Str("filename", req.Filename).
		Str("schema", decision.SchemaName).
		Str("storage_type", string(decision.StorageType)).
		Str("size", utils.FormatBytes(doc.Size)).
		Dur("duration", time.Since(start)).
		Msg("JSON ingested")

	c.JSON(http.StatusOK, model.IngestResponse{
		Status:      "success",
		Filename:    req.Filename,
		SchemaName:  decision.SchemaName,
		StorageType: string(decision.StorageType),
		Location:    doc.ID,
		IndexID:     indexID,
		Summary:     buildSummary(result, recordCount),
		Analysis:    analysisJSON,
	})
}

// Analyze 只做结构分析，不入库
func (h *IngestHandler) Analyze(c *gin.Context) {
	data, err := c.GetRawData()
	if err != nil || len(data) == 0 {
		c.JSON(http.StatusBadRequest, model.ErrorResponse{
			Error:   "INVALID_REQUEST",
			Message: "Request body is required",
		})
		return
	}

	result, err := h.analyzer.Analyze(data)
	if err != nil {
		h.respondAnalyzeError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// SearchJSON 按schema名称检索已入库的JSON元数据
func (h *IngestHandler) SearchJSON(c *gin.Context) {
	schema := c.Query("schema")
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))

	entries, err := h.indexer.Search(c.Request.Context(), schema, limit)
	if err != nil {
		log.Error().Err(err).Str("schema", schema).Msg("Failed to search metadata index")
		c.JSON(http.StatusInternalServerError, model.ErrorResponse{
			Error:   "SEARCH_ERROR",
			Message: "Failed to search metadata index",
		})
		return
	}

	c.JSON(http.StatusOK, model.SearchResponse{Results: entries, Count: len(entries)})
}

// Stats 系统统计：存储与索引两部分
func (h *IngestHandler) Stats(c *gin.Context) {
	ctx := c.Request.Context()

	storageStats, err := h.store.Stats(ctx)
	if err != nil {
		log.Error().Err(err).Msg("Failed to get storage stats")
		c.JSON(http.StatusInternalServerError, model.ErrorResponse{
			Error:   "STATS_ERROR",
			Message: "Failed to get storage stats",
		})
		return
	}

	indexStats, err := h.indexer.Stats(ctx)
	if err != nil {
		log.Error().Err(err).Msg("Failed to get index stats")
		c.JSON(http.StatusInternalServerError, model.ErrorResponse{
			Error:   "STATS_ERROR",
			Message: "Failed to get index stats",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"storage": storageStats,
		"index":   indexStats,
	})
}

// HealthCheck 健康检查
func (h *IngestHandler) HealthCheck(c *gin.Context) {
	ctx := c.Request.Context()

	if err := h.store.HealthCheck(ctx); err != nil {
		c.JSON(http.StatusServiceUnavailable, model.HealthResponse{
			Status:    "unhealthy",
			Timestamp: time.Now().UTC(),
			Database:  false,
		})
		return
	}

	if err := h.indexer.HealthCheck(ctx); err != nil {
		c.JSON(http.StatusServiceUnavailable, model.HealthResponse{
			Status:    "unhealthy",
			Timestamp: time.Now().UTC(),
			Database:  false,
		})
		return
	}

	c.JSON(http.StatusOK, model.HealthResponse{
		Status:    "healthy",
		Timestamp: time.Now().UTC(),
		Database:  true,
	})
}

// respondAnalyzeError 将分析器错误映射为HTTP响应
func (h *IngestHandler) respondAnalyzeError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, analyzer.ErrEmptyBatch):
		c.JSON(http.StatusBadRequest, model.ErrorResponse{
			Error:   "EMPTY_BATCH",
			Message: "JSON array must contain at least one element",
		})
	case errors.Is(err, analyzer.ErrInvalidInput):
		c.JSON(http.StatusBadRequest, model.ErrorResponse{
			Error:   "INVALID_JSON",
			Message: err.Error(),
		})
	default:
		log.Error().Err(err).Msg("Analysis failed")
		c.JSON(http.StatusInternalServerError, model.ErrorResponse{
			Error:   "ANALYSIS_ERROR",
			Message: "Failed to analyze JSON",
		})
	}
}

// splitRecords 把JSON数组拆成独立记录
func splitRecords(data []byte) ([][]byte, error) {
	var elements []json.RawMessage
	if err := json.Unmarshal(data, &elements); err != nil {
		return nil, err
	}

	records := make([][]byte, len(elements))
	for i, element := range elements {
		records[i] = []byte(element)
	}
	return records, nil
}

// buildSummary 生成返回给调用方的内容摘要
func buildSummary(result *analyzer.Result, recordCount int) model.ContentSummary {
	keys := make([]string, 0, len(result.Structure.Fields))
	for key := range result.Structure.Fields {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	if len(keys) > summarySampleKeys {
		keys = keys[:summarySampleKeys]
	}

	return model.ContentSummary{
		StructureType: string(result.Kind),
		FieldCount:    result.FieldCount,
		NestingDepth:  result.NestingDepth,
		IsConsistent:  result.IsConsistent,
		SampleKeys:    keys,
		RecordCount:   recordCount,
	}
}
