package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/leapzhao/shape-store/model"
	"github.com/leapzhao/shape-store/utils"

	"github.com/google/uuid"
	_ "github.com/lib/pq"
	"github.com/rs/zerolog/log"
)

type PostgresStore struct {
	db *sql.DB
}

func NewPostgresStore(host string, port int, user, password, dbname, sslmode string) (*PostgresStore, error) {
	connStr := fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		host, port, user, password, dbname, sslmode,
	)

	db, err := sql.Open("postgres", connStr)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to postgres: %w", err)
	}

	// 测试连接
	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping postgres: %w", err)
	}

	// 设置连接池
	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	store := &PostgresStore{db: db}

	// 执行迁移
	if err := store.Migrate(); err != nil {
		return nil, fmt.Errorf("failed to migrate: %w", err)
	}

	log.Info().Msg("PostgreSQL connection established")
	return store, nil
}

func (s *PostgresStore) Migrate() error {
	query := `
	CREATE TABLE IF NOT EXISTS json_documents (
		id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
		content_hash VARCHAR(64) UNIQUE NOT NULL,
		schema_name VARCHAR(255) NOT NULL DEFAULT 'json_data',
		storage_type VARCHAR(50) NOT NULL DEFAULT 'document',
		json_data JSONB NOT NULL,
		size BIGINT NOT NULL DEFAULT 0,
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
		updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
	);

	CREATE INDEX IF NOT EXISTS idx_content_hash ON json_documents(content_hash);
	CREATE INDEX IF NOT EXISTS idx_schema_name ON json_documents(schema_name);
	CREATE INDEX IF NOT EXISTS idx_json_data_gin ON json_documents USING GIN(json_data);
	CREATE INDEX IF NOT EXISTS idx_created_at ON json_documents(created_at);
	`

	_, err := s.db.Exec(query)
	return err
}

func (s *PostgresStore) Store(ctx context.Context, jsonData []byte, decision SchemaDecision) (*model.StoredDocument, error) {
	// 验证JSON
	if !json.Valid(jsonData) {
		return nil, fmt.Errorf("invalid JSON data")
	}

	// 计算哈希值，内容相同的文档只存一份
	hash, err := utils.CalculateHash(jsonData)
	if err != nil {
		return nil, fmt.Errorf("failed to hash JSON: %w", err)
	}

	if existing, err := s.GetByHash(ctx, hash); err == nil {
		return existing, nil
	}

	id := uuid.New().String()
	query := `
		INSERT INTO json_documents (id, content_hash, schema_name, storage_type, json_data, size)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, content_hash, schema_name, storage_type, json_data, size, created_at, updated_at
	`

	var doc model.StoredDocument
	err = s.db.QueryRowContext(ctx, query,
		id, hash, decision.SchemaName, string(decision.StorageType), jsonData, int64(len(jsonData)),
	).Scan(
		&doc.ID, &doc.ContentHash, &doc.SchemaName, &doc.StorageType,
		&doc.JSONData, &doc.Size, &doc.CreatedAt, &doc.UpdatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to store JSON: %w", err)
	}

	log.Info().
		Str("id", doc.ID).
		Str("hash", hash).
		Str("schema", decision.SchemaName).
		Str("storage_type", string(decision.StorageType)).
		Int64("size", doc.Size).
		Msg("JSON stored in PostgreSQL")

	return &doc, nil
}

func (s *PostgresStore) StoreRecords(ctx context.Context, records [][]byte, decision SchemaDecision) ([]*model.StoredDocument, error) {
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

	// 事务内只收集id，提交后统一回读。PostgreSQL里语句出错会
	// 中止整个事务，所以出错时直接返回而不是跳过
	ids := make([]string, 0, len(prepared))

	for i, rec := range prepared {
		// 已存在的记录直接复用
		var existingID string
		err := tx.QueryRowContext(ctx,
			"SELECT id FROM json_documents WHERE content_hash = $1",
			rec.hash,
		).Scan(&existingID)
		if err == nil {
			ids = append(ids, existingID)
			continue
		}
		if err != sql.ErrNoRows {
			return nil, fmt.Errorf("failed to check existing record %d: %w", i, err)
		}

		id := uuid.New().String()
		query := `
			INSERT INTO json_documents (id, content_hash, schema_name, storage_type, json_data, size)
			VALUES ($1, $2, $3, $4, $5, $6)
		`

		if _, err := tx.ExecContext(ctx, query,
			id, rec.hash, decision.SchemaName, string(decision.StorageType), rec.data, int64(len(rec.data)),
		); err != nil {
			return nil, fmt.Errorf("failed to insert record %d: %w", i, err)
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

func (s *PostgresStore) GetByID(ctx context.Context, id string) (*model.StoredDocument, error) {
	query := `
		SELECT id, content_hash, schema_name, storage_type, json_data, size, created_at, updated_at
		FROM json_documents
		WHERE id = $1
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

func (s *PostgresStore) GetByHash(ctx context.Context, hash string) (*model.StoredDocument, error) {
	query := `
		SELECT id, content_hash, schema_name, storage_type, json_data, size, created_at, updated_at
		FROM json_documents
		WHERE content_hash = $1
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

func (s *PostgresStore) Stats(ctx context.Context) (*model.StorageStats, error) {
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

	// 按schema聚合
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

func (s *PostgresStore) HealthCheck(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *PostgresStore) Close() error {
	return s.db.Close()
}
