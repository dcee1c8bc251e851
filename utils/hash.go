package utils

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
)

// NormalizeJSON 规范化JSON（排序键名、去除空格），
// 用于内容去重时保证等价文档哈希一致
func NormalizeJSON(data []byte) ([]byte, error) {
	var obj interface{}
	if err := json.Unmarshal(data, &obj); err != nil {
		return nil, err
	}

	// 重新编码，确保键名排序一致
	return json.Marshal(obj)
}

// CalculateHash 计算JSON内容哈希值
func CalculateHash(data []byte) (string, error) {
	normalized, err := NormalizeJSON(data)
	if err != nil {
		// 如果无法规范化，使用原始数据
		normalized = data
	}

	hash := sha256.Sum256(normalized)
	return hex.EncodeToString(hash[:]), nil
}

// ValidateJSON 验证JSON格式
func ValidateJSON(data []byte) bool {
	return json.Valid(data)
}

// FormatBytes 格式化字节大小为易读格式
func FormatBytes(bytes int64) string {
	const unit = 1024
	if bytes < unit {
		return fmt.Sprintf("%d B", bytes)
	}

	div, exp := int64(unit), 0
	for n := bytes / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}

	return fmt.Sprintf("%.1f %cB", float64(bytes)/float64(div), "KMGTPE"[exp])
}
