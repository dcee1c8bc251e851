package analyzer

import (
	"github.com/montanaflynn/stats"
)

// ConsistencyReport 批次文档相对于合并结构的一致性统计
type ConsistencyReport struct {
	// Overall 所有字段路径出现率的算术平均值，取值[0.0, 1.0]
	Overall float64 `json:"overall"`
	// FieldConsistency 每个字段路径在批次中的出现次数
	FieldConsistency map[string]int `json:"field_consistency"`
	// TotalFields 参与统计的字段路径数量
	TotalFields int `json:"total_fields"`
}

// ScoreConsistency 统计合并结构中每个字段路径在批次文档中的出现率。
// 合并结构没有任何字段路径时视为完全不一致，整体得分为0
func (a *Analyzer) ScoreConsistency(documents []any, merged *StructureNode) ConsistencyReport {
	report := ConsistencyReport{FieldConsistency: map[string]int{}}
	if len(documents) == 0 {
		return report
	}

	paths := structureFieldPaths(merged, "")
	report.TotalFields = len(paths)
	if len(paths) == 0 {
		return report
	}

	total := float64(len(documents))
	scores := make([]float64, 0, len(paths))
	for _, path := range paths {
		count := 0
		for _, doc := range documents {
			if hasFieldPath(doc, path) {
				count++
			}
		}
		report.FieldConsistency[path] = count
		scores = append(scores, float64(count)/total)
	}

	if overall, err := stats.Mean(scores); err == nil {
		report.Overall = overall
	}
	return report
}
