package analyzer

import (
	"fmt"
	"sort"
	"strings"
)

// joinPath 拼接点分字段路径
func joinPath(prefix, key string) string {
	if prefix == "" {
		return key
	}
	return prefix + "." + key
}

// fieldPaths 收集原始文档中出现的全部字段路径
func (a *Analyzer) fieldPaths(value any) map[string]struct{} {
	paths := make(map[string]struct{})
	a.collectFieldPaths(value, "", 0, paths)
	return paths
}

// collectFieldPaths 递归遍历原始值，深度语义与结构提取一致；
// 数组只采样前若干个元素，路径带下标
func (a *Analyzer) collectFieldPaths(value any, prefix string, depth int, out map[string]struct{}) {
	if depth > a.cfg.MaxNestingDepth {
		return
	}

	switch v := value.(type) {
	case map[string]any:
		for key, child := range v {
			path := joinPath(prefix, key)
			out[path] = struct{}{}
			a.collectFieldPaths(child, path, depth+1, out)
		}
	case []any:
		limit := a.cfg.FieldSampleSize
		if len(v) < limit {
			limit = len(v)
		}
		for i, item := range v[:limit] {
			a.collectFieldPaths(item, fmt.Sprintf("%s[%d]", prefix, i), depth+1, out)
		}
	}
}

// hasFieldPath 判断文档在点分路径处是否存在值
func hasFieldPath(doc any, path string) bool {
	_, ok := fieldValue(doc, path)
	return ok
}

// fieldValue 取出点分路径处的值
func fieldValue(doc any, path string) (any, bool) {
	current := doc
	for _, part := range strings.Split(path, ".") {
		obj, ok := current.(map[string]any)
		if !ok {
			return nil, false
		}
		value, ok := obj[part]
		if !ok {
			return nil, false
		}
		current = value
	}
	return current, true
}

// structureFieldPaths 枚举合并结构中每一层的对象字段路径；
// 数组与基本类型节点不再产生路径
func structureFieldPaths(node *StructureNode, prefix string) []string {
	if node == nil || node.Kind != KindObject {
		return nil
	}

	names := make([]string, 0, len(node.Fields))
	for name := range node.Fields {
		names = append(names, name)
	}
	sort.Strings(names)

	paths := make([]string, 0, len(names))
	for _, name := range names {
		path := joinPath(prefix, name)
		paths = append(paths, path)
		paths = append(paths, structureFieldPaths(node.Fields[name], path)...)
	}
	return paths
}
