package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/leapzhao/shape-store/model"
	"github.com/leapzhao/shape-store/utils"

	_ "github.com/go-sql-driver/mysql"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

type MySQLStore struct {
	db *sql.DB
}

func NewMySQLStore(host string, port int, user, password, dbname string) (*MySQLStore, error) {
	connStr := fmt.Sprintf(
		"%s:%s@tcp(%s:%d)/%s?charset=utf8mb4&parseTime=true&loc=Local",
		user, password, host, port, dbname,
	)

	db, err := sql.Open("mysql", connStr)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to mysql: %w", err)
	}

	// 测试连接
	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping mysql: %w", err)
	}

	// 设置连接池
	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	store := &MySQLStore{db: db}

	// 执行迁移
	if err := store.Migrate(); err != nil {
		return nil, fmt.Errorf("failed to migrate: %w", err)
	}

	log.Info().Msg("MySQL connection established")
	return store, nil
}

func (s *MySQLStore) Migrate() error {
	query := `
	CREATE TABLE IF NOT EXISTS json_documents (
		id VARCHAR(36) PRIMARY KEY,
		content_hash VARCHAR(64) UNIQUE NOT NULL,
		schema_name VARCHAR(255) NOT NULL DEFAULT 'json_data',
		storage_type VARCHAR(50) NOT NULL DEFAULT 'document',
		json_data JSON NOT NULL,
		size BIGINT NOT NULL DEFAULT 0,
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
		updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP ON UPDATE CURRENT_TIMESTAMP,
		INDEX idx_content_hash (content_hash),
		INDEX idx_schema_name (schema_name),
		INDEX idx_created_at (created_at)
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4
	`

	_, err := s.db.Exec(query)
	return err
}

func (s *MySQLStore) Store(ctx context.Context, jsonData []byte, decision SchemaDecision) (*model.StoredDocument, error) {
	// 验证JSON
	if !json.Valid(jsonData) {
		return nil, fmt.Errorf("invalid JSON data")
	}

	hash, err := utils.CalculateHash(jsonData)
	if err != nil {
		return nil, fmt.Errorf("failed to hash JSON: %w", err)
	}

	// 内容相同的文档只存一份
	if existing, err := s.GetByHash(ctx, hash); err == nil {
		return existing, nil
	}

	id := uuid.New().String()
	query := `
		INSERT INTO json_documents (id, content_hash, schema_name, storage_type, json_data, size)
		VALUES (?, ?, ?, ?, ?, ?)
	`

	_, err = s.db.ExecContext(ctx, query,
		id, hash, decision.SchemaName, string(decision.StorageType), jsonData, int64(len(jsonData)),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to store JSON: %w", err)
	}

	doc, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	log.Info().
		Str("id", id).
		Str("hash", hash).
		Str("schema", decision.SchemaName).
		Str("storage_type", string(decision.StorageType)).
		Int64("size", doc.Size).
		Msg("JSON stored in MySQL")

	return doc, nil
}

func (s *MySQLStore) StoreRecords(ctx context.Context, records [][]byte, decision SchemaDecision) ([]*model.StoredDocument, error) {
	if len(records) == 0 {
		return nil, fmt.Errorf("no records provided")
	}

	prepared := prepareRecords(records)
	if len(prepared) == 0 {
		return []*model.StoredDocument{}, nil
	}

	// 开始事务
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	ids := make([]string, 0, len(prepared))

	for i, rec := range prepared {
		// 已存在的记录直接复用
		var existingID string
		err := tx.QueryRowContext(ctx,
			"SELECT id FROM json_documents WHERE content_hash = ?",
			rec.hash,
		).Scan(&existingID)
		if err == nil {
			ids = append(ids, existingID)
			continue
		}

		id := uuid.New().String()
		_, err = tx.ExecContext(ctx, `
			INSERT INTO json_documents (id, content_hash, schema_name, storage_type, json_data, size)
			VALUES (?, ?, ?, ?, ?, ?)
		`, id, rec.hash, decision.SchemaName, string(decision.StorageType), rec.data, int64(len(rec.data)))
		if err != nil {
			log.Error().Err(err).Int("index", i).Msg("Failed to insert record in batch")
			continue
		}

		ids = append(ids, id)
	}

	// 提交事务
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	results := make([]*model.StoredDocument, 0, len(ids))
	for _, id := range ids {
		doc, err := s.GetByID(ctx, id)
		if err != nil {
			log.Error().Err(err).Str("id", id).Msg("Failed to reload stored record")
			continue
		}
		results = append(results, doc)
	}

	log.Info().
		Int("total", len(records)).
		Int("success", len(results)).
		Str("schema", decision.SchemaName).
		Msg("JSON records stored")

	return results, nil
}

func (s *MySQLStore) GetByID(ctx context.Context, id string) (*model.StoredDocument, error) {
	query := `
		SELECT id, content_hash, schema_name, storage_type, json_data, size, created_at, updated_at
		FROM json_documents
		WHERE id = ?
	`

	var doc model.StoredDocument
	err := s.db.QueryRowContext(ctx, query, id).Scan(
		&doc.ID, &doc.ContentHash, &doc.SchemaName, &doc.StorageType,
		&doc.JSONData, &doc.Size, &doc.CreatedAt, &doc.UpdatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("document not found with id: %s", id)
		}
		return nil, fmt.Errorf("failed to get document: %w", err)
	}

	return &doc, nil
}

func (s *MySQLStore) GetByHash(ctx context.Context, hash string) (*model.StoredDocument, error) {
	query := `
		SELECT id, content_hash, schema_name, storage_type, json_data, size, created_at, updated_at
		FROM json_documents
		WHERE content_hash = ?
		LIMIT 1
	`

	var doc model.StoredDocument
	err := s.db.QueryRowContext(ctx, query, hash).Scan(
		&doc.ID, &doc.ContentHash, &doc.SchemaName, &doc.StorageType,
		&doc.JSONData, &doc.Size, &doc.CreatedAt, &doc.UpdatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("document not found with hash: %s", hash)
		}
		return nil, fmt.Errorf("failed to get document by hash: %w", err)
	}

	return &doc, nil
}

func (s *MySQLStore) Stats(ctx context.Context) (*model.StorageStats, error) {
	stats := &model.StorageStats{}

	query := `
		SELECT
			COUNT(*) as total_documents,
			COALESCE(SUM(size), 0) as total_size,
			COALESCE(AVG(size), 0) as avg_size,
			COUNT(DISTINCT content_hash) as unique_hashes,
			COALESCE(MAX(updated_at), CURRENT_TIMESTAMP) as last_updated
		FROM json_documents
	`

	err := s.db.QueryRowContext(ctx, query).Scan(
		&stats.TotalDocuments, &stats.TotalSize, &stats.AverageSize,
		&stats.UniqueHashes, &stats.LastUpdated,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to get stats: %w", err)
	}

	schemaQuery := `
		SELECT schema_name, storage_type, COUNT(*) as count, SUM(size) as size
		FROM json_documents
		GROUP BY schema_name, storage_type
		ORDER BY count DESC
	`

	rows, err := s.db.QueryContext(ctx, schemaQuery)
	if err != nil {
		log.Error().Err(err).Msg("Failed to get schema stats")
		return stats, nil
	}
	defer rows.Close()

	for rows.Next() {
		var sc model.SchemaCount
		if err := rows.Scan(&sc.SchemaName, &sc.StorageType, &sc.Count, &sc.Size); err != nil {
			log.Error().Err(err).Msg("Failed to scan schema stats")
			continue
		}
		stats.SchemaCounts = append(stats.SchemaCounts, sc)
	}

	return stats, nil
}

func (s *MySQLStore) HealthCheck(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *MySQLStore) Close() error {
	return s.db.Close()
}
