package storage

import (
	"fmt"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/leapzhao/shape-store/analyzer"
)

// StorageType 存储类型
type StorageType string

const (
	// StorageSQL 结构一致且扁平的数据走关系型存储
	StorageSQL StorageType = "sql"
	// StorageDocument 其余数据走无模式文档存储
	StorageDocument StorageType = "document"
)

const defaultMaxSQLDepth = 2

// SchemaDecision 存储路由决策结果
type SchemaDecision struct {
	StorageType StorageType `json:"storage_type"`
	SchemaName  string      `json:"schema_name"`
	Reason      string      `json:"reason"`
}

// DecisionEngine 根据结构分析结果决定存储方式。
// 一致性评分与嵌套深度是主要依据
type DecisionEngine struct {
	maxSQLDepth int
}

// NewDecisionEngine 创建决策引擎，maxSQLDepth为关系型存储允许的最大嵌套深度
func NewDecisionEngine(maxSQLDepth int) *DecisionEngine {
	if maxSQLDepth <= 0 {
		maxSQLDepth = defaultMaxSQLDepth
	}
	return &DecisionEngine{maxSQLDepth: maxSQLDepth}
}

// Decide 决定分析结果对应的存储方式与schema名称
func (e *DecisionEngine) Decide(filename string, result *analyzer.Result) SchemaDecision {
	name := SchemaName(filename)

	if !result.IsConsistent {
		return SchemaDecision{
			StorageType: StorageDocument,
			SchemaName:  name,
			Reason:      fmt.Sprintf("field consistency %.2f below threshold", result.Consistency.Overall),
		}
	}

	if result.NestingDepth > e.maxSQLDepth {
		return SchemaDecision{
			StorageType: StorageDocument,
			SchemaName:  name,
			Reason:      fmt.Sprintf("nesting depth %d too deep for relational storage", result.NestingDepth),
		}
	}

	return SchemaDecision{
		StorageType: StorageSQL,
		SchemaName:  name,
		Reason:      "consistent flat structure",
	}
}

var schemaNameSanitizer = regexp.MustCompile(`[^a-z0-9_]+`)

// SchemaName 由文件名推导schema名称：去扩展名、小写、非法字符换下划线
func SchemaName(filename string) string {
	base := strings.TrimSuffix(filepath.Base(filename), filepath.Ext(filename))
	name := schemaNameSanitizer.ReplaceAllString(strings.ToLower(base), "_")
	name = strings.Trim(name, "_")
	if name == "" {
		return "json_data"
	}
	return name
}
