package analyzer

import "errors"

var (
	// ErrInvalidInput 输入不是合法的JSON文档
	ErrInvalidInput = errors.New("invalid JSON input")

	// ErrEmptyBatch 批量分析收到空数组
	ErrEmptyBatch = errors.New("empty JSON array")
)
