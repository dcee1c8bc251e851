package storage

import (
	"encoding/json"

	"github.com/leapzhao/shape-store/utils"

	"github.com/rs/zerolog/log"
)

// batchRecord 批量入库的一条记录及其内容哈希
type batchRecord struct {
	data []byte
	hash string
}

// prepareRecords 预处理批量记录：校验JSON、计算内容哈希。
// 批次内内容相同的记录只保留第一条，避免同一事务里
// 重复插入相同content_hash
func prepareRecords(records [][]byte) []batchRecord {
	prepared := make([]batchRecord, 0, len(records))
	seen := make(map[string]struct{}, len(records))

	for i, record := range records {
		if !json.Valid(record) {
			log.Warn().Int("index", i).Msg("Invalid JSON record in batch, skipping")
			continue
		}

		hash, err := utils.CalculateHash(record)
		if err != nil {
			log.Warn().Err(err).Int("index", i).Msg("Failed to hash record, skipping")
			continue
		}

		if _, ok := seen[hash]; ok {
			continue
		}
		seen[hash] = struct{}{}

		prepared = append(prepared, batchRecord{data: record, hash: hash})
	}

	return prepared
}
