package storage

import (
	"context"

	"github.com/leapzhao/shape-store/model"
)

// DocumentStore 文档存储接口定义
type DocumentStore interface {
	// Store 存储整份JSON数据，内容重复时返回已有记录
	Store(ctx context.Context, jsonData []byte, decision SchemaDecision) (*model.StoredDocument, error)

	// StoreRecords 按批次逐条存储数组元素，返回成功写入的记录
	StoreRecords(ctx context.Context, records [][]byte, decision SchemaDecision) ([]*model.StoredDocument, error)

	// GetByID 根据ID获取文档
	GetByID(ctx context.Context, id string) (*model.StoredDocument, error)

	// GetByHash 根据内容哈希获取文档
	GetByHash(ctx context.Context, hash string) (*model.StoredDocument, error)

	// Stats 获取存储统计信息
	Stats(ctx context.Context) (*model.StorageStats, error)

	// HealthCheck 健康检查
	HealthCheck(ctx context.Context) error

	// Migrate 建表迁移
	Migrate() error

	// Close 关闭数据库连接
	Close() error
}
