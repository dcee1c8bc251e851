// Package analyzer 实现JSON结构推断引擎：
// 从上传的JSON数据中提取有界深度的结构描述，合并批量文档的结构，
// 识别字段出现规律与取值模式，并计算一致性评分，
// 供存储路由决策判断数据适合关系型还是无模式存储。
package analyzer

import (
	"bytes"
	"encoding/json"
	"fmt"
)

const (
	defaultMaxNestingDepth = 5
	defaultMinConsistency  = 0.7 // 达到70%字段一致性才视为适合SQL

	structureSampleSize = 10 // 结构提取时数组采样上限
	fieldSampleSize     = 5  // 字段路径枚举时数组采样上限
	patternFieldLimit   = 10 // 参与取值模式识别的重复字段上限
	patternSampleSize   = 5  // 取值模式识别的采样上限
	sampleMaxLen        = 50
	repeatedThreshold   = 0.9
	optionalThreshold   = 0.5
)

// Config 引擎配置，零值字段取默认值
type Config struct {
	MaxNestingDepth int     `mapstructure:"max_nesting_depth"`
	MinConsistency  float64 `mapstructure:"min_consistency"`
	ArraySampleSize int     `mapstructure:"array_sample_size"`
	FieldSampleSize int     `mapstructure:"field_sample_size"`
}

// DefaultConfig 默认引擎配置
func DefaultConfig() Config {
	return Config{
		MaxNestingDepth: defaultMaxNestingDepth,
		MinConsistency:  defaultMinConsistency,
		ArraySampleSize: structureSampleSize,
		FieldSampleSize: fieldSampleSize,
	}
}

// Analyzer JSON结构分析器。纯内存计算，不持有可变状态，
// 同一实例可被并发使用
type Analyzer struct {
	cfg Config
}

// New 创建分析器，未设置的配置项回落到默认值
func New(cfg Config) *Analyzer {
	if cfg.MaxNestingDepth <= 0 {
		cfg.MaxNestingDepth = defaultMaxNestingDepth
	}
	if cfg.MinConsistency <= 0 {
		cfg.MinConsistency = defaultMinConsistency
	}
	if cfg.ArraySampleSize <= 0 {
		cfg.ArraySampleSize = structureSampleSize
	}
	if cfg.FieldSampleSize <= 0 {
		cfg.FieldSampleSize = fieldSampleSize
	}
	return &Analyzer{cfg: cfg}
}

// ResultKind 分析结果的类别
type ResultKind string

const (
	ResultSingle ResultKind = "single"
	ResultBatch  ResultKind = "batch"
)

// Result 一次分析的完整输出
type Result struct {
	Kind         ResultKind        `json:"type"`
	Count        int               `json:"count,omitempty"`
	Structure    *StructureNode    `json:"structure"`
	Patterns     PatternSet        `json:"patterns"`
	Consistency  ConsistencyReport `json:"consistency"`
	FieldCount   int               `json:"field_count"`
	NestingDepth int               `json:"nesting_depth"`
	IsConsistent bool              `json:"is_consistent"`
}

// Analyze 解析并分析一段JSON数据。
// 数组按批次分析，其余值按单个文档分析
func (a *Analyzer) Analyze(data []byte) (*Result, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber() // 保留整数与浮点的区别
	var value any
	if err := dec.Decode(&value); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	if dec.More() {
		return nil, fmt.Errorf("%w: unexpected trailing data", ErrInvalidInput)
	}
	return a.AnalyzeValue(value)
}

// AnalyzeValue 分析已解析的JSON值。
// 注意普通反序列化会把所有数值解成float64，丢失字面形式，
// 此时整数值按integer处理、非整数值按float处理；用Analyze
// 解析原始字节可以按字面形式区分5和5.0
func (a *Analyzer) AnalyzeValue(value any) (*Result, error) {
	if batch, ok := value.([]any); ok {
		return a.analyzeBatch(batch)
	}
	return a.analyzeSingle(value), nil
}

// analyzeSingle 单个文档天然一致，一致性固定为1.0
func (a *Analyzer) analyzeSingle(value any) *Result {
	structure := a.Extract(value)

	return &Result{
		Kind:         ResultSingle,
		Structure:    structure,
		Patterns:     a.DetectPatterns([]any{value}),
		Consistency:  ConsistencyReport{Overall: 1.0, FieldConsistency: map[string]int{}},
		FieldCount:   len(structure.Fields),
		NestingDepth: structure.MaxDepth,
		IsConsistent: true,
	}
}

func (a *Analyzer) analyzeBatch(documents []any) (*Result, error) {
	if len(documents) == 0 {
		return nil, ErrEmptyBatch
	}

	structures := make([]*StructureNode, len(documents))
	for i, doc := range documents {
		structures[i] = a.Extract(doc)
	}

	merged := Merge(structures)
	consistency := a.ScoreConsistency(documents, merged)

	return &Result{
		Kind:         ResultBatch,
		Count:        len(documents),
		Structure:    merged,
		Patterns:     a.DetectPatterns(documents),
		Consistency:  consistency,
		FieldCount:   len(merged.Fields),
		NestingDepth: merged.MaxDepth,
		IsConsistent: consistency.Overall >= a.cfg.MinConsistency,
	}, nil
}
