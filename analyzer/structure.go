package analyzer

import (
	"encoding/json"
	"math"
	"sort"
	"strconv"
)

// NodeKind 结构节点的类型标签
type NodeKind string

const (
	KindObject    NodeKind = "object"
	KindArray     NodeKind = "array"
	KindString    NodeKind = "string"
	KindInteger   NodeKind = "integer"
	KindFloat     NodeKind = "float"
	KindBoolean   NodeKind = "boolean"
	KindNull      NodeKind = "null"
	KindTruncated NodeKind = "truncated"
	KindEmpty     NodeKind = "empty"
)

// StructureNode JSON值的结构描述，按Kind区分变体：
// object带Fields，array带ItemType/SampleStructure，
// 基本类型带ValueSample，truncated带Path
type StructureNode struct {
	Kind NodeKind `json:"type"`

	// object变体
	Fields map[string]*StructureNode `json:"fields,omitempty"`

	// array变体
	ItemType        string         `json:"item_type,omitempty"`
	SampleStructure *StructureNode `json:"sample_structure,omitempty"`
	Empty           bool           `json:"empty,omitempty"`

	// object/array共用，节点可达的最大嵌套深度
	MaxDepth int `json:"max_depth,omitempty"`

	// 基本类型变体，取值预览（最多50个字符），null时省略
	ValueSample *string `json:"value_sample,omitempty"`

	// truncated变体，递归被截断处的字段路径
	Path string `json:"path,omitempty"`
}

// Extract 提取单个JSON值的结构描述
func (a *Analyzer) Extract(value any) *StructureNode {
	return a.extract(value, 0, "")
}

// extract 递归提取结构，超过最大嵌套深度时截断
func (a *Analyzer) extract(value any, depth int, path string) *StructureNode {
	if depth > a.cfg.MaxNestingDepth {
		return &StructureNode{Kind: KindTruncated, Path: path}
	}

	switch v := value.(type) {
	case map[string]any:
		return a.extractObject(v, depth, path)
	case []any:
		return a.extractArray(v, depth, path)
	case string:
		return &StructureNode{Kind: KindString, ValueSample: samplePreview(v)}
	case json.Number:
		return extractNumber(v)
	case float64:
		// 未经UseNumber解码时的数值兜底：字面形式已丢失，
		// 整数值按integer处理，见AnalyzeValue的说明
		kind := KindFloat
		if v == math.Trunc(v) && !math.IsInf(v, 0) {
			kind = KindInteger
		}
		return &StructureNode{Kind: kind, ValueSample: samplePreview(strconv.FormatFloat(v, 'g', -1, 64))}
	case bool:
		return &StructureNode{Kind: KindBoolean, ValueSample: samplePreview(strconv.FormatBool(v))}
	case nil:
		return &StructureNode{Kind: KindNull}
	default:
		return &StructureNode{Kind: KindNull}
	}
}

func (a *Analyzer) extractObject(obj map[string]any, depth int, path string) *StructureNode {
	fields := make(map[string]*StructureNode, len(obj))
	maxDepth := depth

	for _, key := range sortedKeys(obj) {
		child := a.extract(obj[key], depth+1, joinPath(path, key))
		fields[key] = child
		if d, ok := child.structuralDepth(); ok && d > maxDepth {
			maxDepth = d
		}
	}

	return &StructureNode{Kind: KindObject, Fields: fields, MaxDepth: maxDepth}
}

func (a *Analyzer) extractArray(arr []any, depth int, path string) *StructureNode {
	if len(arr) == 0 {
		return &StructureNode{Kind: KindArray, ItemType: "unknown", Empty: true}
	}

	// 只对前若干个元素采样，数组元素的路径不带下标
	limit := a.cfg.ArraySampleSize
	if len(arr) < limit {
		limit = len(arr)
	}

	samples := make([]*StructureNode, 0, limit)
	maxDepth := depth
	for _, item := range arr[:limit] {
		s := a.extract(item, depth+1, path)
		samples = append(samples, s)
		if d, ok := s.structuralDepth(); ok && d > maxDepth {
			maxDepth = d
		}
	}

	return &StructureNode{
		Kind:            KindArray,
		ItemType:        string(dominantKind(samples)),
		SampleStructure: samples[0],
		MaxDepth:        maxDepth,
	}
}

func extractNumber(n json.Number) *StructureNode {
	kind := KindFloat
	if _, err := n.Int64(); err == nil {
		kind = KindInteger
	}
	return &StructureNode{Kind: kind, ValueSample: samplePreview(n.String())}
}

// dominantKind 采样元素中出现最多的类型，并列时先出现者优先
func dominantKind(samples []*StructureNode) NodeKind {
	counts := make(map[NodeKind]int, len(samples))
	best := 0
	for _, s := range samples {
		counts[s.Kind]++
		if counts[s.Kind] > best {
			best = counts[s.Kind]
		}
	}
	for _, s := range samples {
		if counts[s.Kind] == best {
			return s.Kind
		}
	}
	return samples[0].Kind
}

// structuralDepth 仅object和array节点携带嵌套深度
func (n *StructureNode) structuralDepth() (int, bool) {
	if n.Kind == KindObject || n.Kind == KindArray {
		return n.MaxDepth, true
	}
	return 0, false
}

// samplePreview 取值预览，按字符截断到50个，不在多字节字符中间切开
func samplePreview(s string) *string {
	if len(s) > sampleMaxLen {
		if runes := []rune(s); len(runes) > sampleMaxLen {
			s = string(runes[:sampleMaxLen])
		}
	}
	return &s
}

func sortedKeys(obj map[string]any) []string {
	keys := make([]string, 0, len(obj))
	for key := range obj {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}
