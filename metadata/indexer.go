// Package metadata 维护所有入库JSON的元数据索引，支撑后续检索
package metadata

import (
	"context"
	"fmt"
	"time"

	"github.com/leapzhao/shape-store/config"
	"github.com/leapzhao/shape-store/model"

	_ "github.com/go-sql-driver/mysql"
	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"github.com/rs/zerolog/log"
)

// Indexer SQL后端的元数据索引
type Indexer struct {
	db     *sqlx.DB
	driver string
}

// NewIndexer 连接数据库并确保索引表存在
func NewIndexer(cfg config.Config) (*Indexer, error) {
	dbCfg := cfg.Database

	var driver, dsn string
	switch dbCfg.Type {
	case "postgres":
		driver = "postgres"
		dsn = fmt.Sprintf(
			"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
			dbCfg.Host, dbCfg.Port, dbCfg.User, dbCfg.Password, dbCfg.Name, dbCfg.SSLMode,
		)
	case "mysql":
		driver = "mysql"
		dsn = fmt.Sprintf(
			"%s:%s@tcp(%s:%d)/%s?charset=utf8mb4&parseTime=true&loc=Local",
			dbCfg.User, dbCfg.Password, dbCfg.Host, dbCfg.Port, dbCfg.Name,
		)
	default:
		return nil, fmt.Errorf("unsupported database type: %s", dbCfg.Type)
	}

	db, err := sqlx.Connect(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to connect metadata index: %w", err)
	}

	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(2)
	db.SetConnMaxLifetime(5 * time.Minute)

	indexer := &Indexer{db: db, driver: driver}
	if err := indexer.Migrate(); err != nil {
		return nil, fmt.Errorf("failed to migrate metadata index: %w", err)
	}

	log.Info().Str("driver", driver).Msg("Metadata index ready")
	return indexer, nil
}

func (i *Indexer) Migrate() error {
	var query string
	switch i.driver {
	case "postgres":
		query = `
		CREATE TABLE IF NOT EXISTS json_index (
			id SERIAL PRIMARY KEY,
			filename VARCHAR(255) NOT NULL,
			schema_name VARCHAR(255) NOT NULL,
			storage_type VARCHAR(50) NOT NULL,
			storage_location TEXT NOT NULL,
			analysis JSONB,
			created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
		);
		CREATE INDEX IF NOT EXISTS idx_index_schema_name ON json_index(schema_name);
		CREATE INDEX IF NOT EXISTS idx_index_storage_type ON json_index(storage_type);
		`
	case "mysql":
		query = `
		CREATE TABLE IF NOT EXISTS json_index (
			id BIGINT AUTO_INCREMENT PRIMARY KEY,
			filename VARCHAR(255) NOT NULL,
			schema_name VARCHAR(255) NOT NULL,
			storage_type VARCHAR(50) NOT NULL,
			storage_location TEXT NOT NULL,
			analysis JSON,
			created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
			INDEX idx_index_schema_name (schema_name),
			INDEX idx_index_storage_type (storage_type)
		) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4
		`
	}

	_, err := i.db.Exec(query)
	return err
}

// Index 记录一次入库的元数据摘要，返回索引ID
func (i *Indexer) Index(ctx context.Context, entry *model.IndexEntry) (int64, error) {
	if i.driver == "postgres" {
		var id int64
		query := i.db.Rebind(`
			INSERT INTO json_index (filename, schema_name, storage_type, storage_location, analysis)
			VALUES (?, ?, ?, ?, ?)
			RETURNING id
		`)
		err := i.db.QueryRowxContext(ctx, query,
			entry.Filename, entry.SchemaName, entry.StorageType, entry.StorageLocation, []byte(entry.Analysis),
		).Scan(&id)
		if err != nil {
			return 0, fmt.Errorf("failed to index metadata: %w", err)
		}

		log.Info().Int64("index_id", id).Str("filename", entry.Filename).Msg("Metadata indexed")
		return id, nil
	}

	query := i.db.Rebind(`
		INSERT INTO json_index (filename, schema_name, storage_type, storage_location, analysis)
		VALUES (?, ?, ?, ?, ?)
	`)
	result, err := i.db.ExecContext(ctx, query,
		entry.Filename, entry.SchemaName, entry.StorageType, entry.StorageLocation, []byte(entry.Analysis),
	)
	if err != nil {
		return 0, fmt.Errorf("failed to index metadata: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to read index id: %w", err)
	}

	log.Info().Int64("index_id", id).Str("filename", entry.Filename).Msg("Metadata indexed")
	return id, nil
}

// Search 按schema名称检索索引记录，schema为空时返回最近的记录
func (i *Indexer) Search(ctx context.Context, schema string, limit int) ([]model.IndexEntry, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}

	var (
		query string
		args  []any
	)
	if schema != "" {
		query = `
			SELECT id, filename, schema_name, storage_type, storage_location, analysis, created_at
			FROM json_index
			WHERE schema_name = ?
			ORDER BY created_at DESC
			LIMIT ?
		`
		args = []any{schema, limit}
	} else {
		query = `
			SELECT id, filename, schema_name, storage_type, storage_location, analysis, created_at
			FROM json_index
			ORDER BY created_at DESC
			LIMIT ?
		`
		args = []any{limit}
	}

	entries := []model.IndexEntry{}
	if err := i.db.SelectContext(ctx, &entries, i.db.Rebind(query), args...); err != nil {
		return nil, fmt.Errorf("failed to search metadata index: %w", err)
	}

	return entries, nil
}

// Stats 索引统计：记录总数与出现过的schema列表
func (i *Indexer) Stats(ctx context.Context) (*model.IndexStats, error) {
	stats := &model.IndexStats{SchemaList: []string{}}

	if err := i.db.GetContext(ctx, &stats.JSONFiles, "SELECT COUNT(*) FROM json_index"); err != nil {
		return nil, fmt.Errorf("failed to count index entries: %w", err)
	}

	query := "SELECT DISTINCT schema_name FROM json_index ORDER BY schema_name"
	if err := i.db.SelectContext(ctx, &stats.SchemaList, query); err != nil {
		return nil, fmt.Errorf("failed to list schemas: %w", err)
	}
	stats.Schemas = len(stats.SchemaList)

	return stats, nil
}

// HealthCheck 健康检查
func (i *Indexer) HealthCheck(ctx context.Context) error {
	return i.db.PingContext(ctx)
}

// Close 关闭数据库连接
func (i *Indexer) Close() error {
	return i.db.Close()
}
