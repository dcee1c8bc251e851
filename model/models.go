package model

import (
	"encoding/json"
	"time"
)

// IngestRequest 统一JSON入库请求
type IngestRequest struct {
	Filename string          `json:"filename" validate:"required,max=255"`
	Data     json.RawMessage `json:"data" validate:"required"`
}

// IngestResponse 入库结果
type IngestResponse struct {
	Status      string          `json:"status"`
	Filename    string          `json:"filename"`
	SchemaName  string          `json:"schema_name"`
	StorageType string          `json:"storage_type"`
	Location    string          `json:"location_saved"`
	IndexID     int64           `json:"index_id"`
	Summary     ContentSummary  `json:"whats_inside"`
	Analysis    json.RawMessage `json:"analysis"`
}

// ContentSummary 给调用方的内容摘要
type ContentSummary struct {
	StructureType string   `json:"structure_type"`
	FieldCount    int      `json:"field_count"`
	NestingDepth  int      `json:"nesting_depth"`
	IsConsistent  bool     `json:"is_consistent"`
	SampleKeys    []string `json:"sample_keys"`
	RecordCount   int      `json:"records_count"`
}

// StoredDocument 已入库的JSON文档
type StoredDocument struct {
	ID          string    `json:"id"`
	ContentHash string    `json:"content_hash"`
	SchemaName  string    `json:"schema_name"`
	StorageType string    `json:"storage_type"`
	JSONData    []byte    `json:"json_data"`
	Size        int64     `json:"size"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// IndexEntry 元数据索引中的一条记录
type IndexEntry struct {
	ID              int64           `json:"id" db:"id"`
	Filename        string          `json:"filename" db:"filename"`
	SchemaName      string          `json:"schema_name" db:"schema_name"`
	StorageType     string          `json:"storage_type" db:"storage_type"`
	StorageLocation string          `json:"storage_location" db:"storage_location"`
	Analysis        json.RawMessage `json:"analysis,omitempty" db:"analysis"`
	CreatedAt       time.Time       `json:"created_at" db:"created_at"`
}

// IndexStats 元数据索引统计
type IndexStats struct {
	JSONFiles  int64    `json:"json_files"`
	Schemas    int      `json:"schemas"`
	SchemaList []string `json:"schema_list"`
}

// SearchResponse 检索结果
type SearchResponse struct {
	Results []IndexEntry `json:"results"`
	Count   int          `json:"count"`
}

// ErrorResponse 错误响应
type ErrorResponse struct {
	Error   string `json:"error"`
	Code    string `json:"code,omitempty"`
	Message string `json:"message,omitempty"`
}

// StorageStats 文档存储统计
type StorageStats struct {
	TotalDocuments int64         `json:"total_documents"`
	TotalSize      int64         `json:"total_size_bytes"`
	AverageSize    float64       `json:"average_size_bytes"`
	UniqueHashes   int64         `json:"unique_hashes"`
	SchemaCounts   []SchemaCount `json:"schema_counts,omitempty"`
	LastUpdated    time.Time     `json:"last_updated"`
}

// SchemaCount 按schema聚合的文档数量
type SchemaCount struct {
	SchemaName  string `json:"schema_name"`
	StorageType string `json:"storage_type"`
	Count       int64  `json:"count"`
	Size        int64  `json:"size_bytes"`
}

// HealthResponse 健康检查响应
type HealthResponse struct {
	Status    string    `json:"status"`
	Timestamp time.Time `json:"timestamp"`
	Database  bool      `json:"database"`
	Version   string    `json:"version,omitempty"`
}
