package analyzer

// Merge 将多份结构描述合并为一份代表性结构。
// 全部为object时按字段取并集递归合并，
// 某字段缺席的文档不参与该字段的合并；
// 形状不一致时退回首个结构，不尝试构造联合类型
func Merge(structures []*StructureNode) *StructureNode {
	if len(structures) == 0 {
		return &StructureNode{Kind: KindEmpty}
	}
	if len(structures) == 1 {
		return structures[0]
	}

	for _, s := range structures {
		if s.Kind != KindObject {
			return structures[0]
		}
	}

	names := make(map[string]struct{})
	for _, s := range structures {
		for name := range s.Fields {
			names[name] = struct{}{}
		}
	}

	merged := make(map[string]*StructureNode, len(names))
	for name := range names {
		parts := make([]*StructureNode, 0, len(structures))
		for _, s := range structures {
			if field, ok := s.Fields[name]; ok {
				parts = append(parts, field)
			}
		}
		if len(parts) > 0 {
			merged[name] = Merge(parts)
		}
	}

	maxDepth := 0
	for _, s := range structures {
		if s.MaxDepth > maxDepth {
			maxDepth = s.MaxDepth
		}
	}

	return &StructureNode{Kind: KindObject, Fields: merged, MaxDepth: maxDepth}
}
