package analyzer_test

import (
	"fmt"
	"testing"

	"github.com/leapzhao/shape-store/analyzer"

	"github.com/stretchr/testify/assert"
)

func docsWithField(total, withField int, field string) []any {
	docs := make([]any, 0, total)
	for i := 0; i < total; i++ {
		doc := map[string]any{"id": float64(i)}
		if i < withField {
			doc[field] = "active"
		}
		docs = append(docs, doc)
	}
	return docs
}

func TestDetectPatternsPresenceRatios(t *testing.T) {
	a := analyzer.New(analyzer.DefaultConfig())

	docs := []any{
		map[string]any{"id": 1.0, "email": "a@b.com"},
		map[string]any{"id": 2.0, "email": "c@d.com"},
		map[string]any{"id": 3.0},
	}

	patterns := a.DetectPatterns(docs)

	assert.Contains(t, patterns.RepeatedFields, "id")
	// email出现率2/3，既不算重复也不算可选
	assert.NotContains(t, patterns.RepeatedFields, "email")
	assert.NotContains(t, patterns.OptionalFields, "email")
	// 不在重复字段里就不做取值模式识别
	assert.NotContains(t, patterns.ValuePatterns, "email")
}

func TestDetectPatternsRepeatedBoundaryInclusive(t *testing.T) {
	a := analyzer.New(analyzer.DefaultConfig())

	// 10个文档中9个带status，出现率恰好90%，边界取闭区间
	patterns := a.DetectPatterns(docsWithField(10, 9, "status"))
	assert.Contains(t, patterns.RepeatedFields, "status")
	assert.NotContains(t, patterns.OptionalFields, "status")

	// 8/10落在50%~90%的中间地带
	patterns = a.DetectPatterns(docsWithField(10, 8, "status"))
	assert.NotContains(t, patterns.RepeatedFields, "status")
	assert.NotContains(t, patterns.OptionalFields, "status")

	// 4/10不足50%，算可选字段
	patterns = a.DetectPatterns(docsWithField(10, 4, "status"))
	assert.Contains(t, patterns.OptionalFields, "status")
}

func TestDetectPatternsEmailPrecedence(t *testing.T) {
	a := analyzer.New(analyzer.DefaultConfig())

	docs := make([]any, 5)
	for i := range docs {
		docs[i] = map[string]any{"contact": "a@b.com"}
	}

	patterns := a.DetectPatterns(docs)
	assert.Equal(t, analyzer.PatternEmail, patterns.ValuePatterns["contact"])
}

func TestDetectPatternsURLAndDate(t *testing.T) {
	a := analyzer.New(analyzer.DefaultConfig())

	docs := make([]any, 3)
	for i := range docs {
		docs[i] = map[string]any{
			"homepage": fmt.Sprintf("https://example.com/%d", i),
			"created":  "2024-01-15T10:00:00Z",
			"note":     "free text",
		}
	}

	patterns := a.DetectPatterns(docs)
	assert.Equal(t, analyzer.PatternURL, patterns.ValuePatterns["homepage"])
	assert.Equal(t, analyzer.PatternDate, patterns.ValuePatterns["created"])
	assert.NotContains(t, patterns.ValuePatterns, "note")
}

func TestDetectPatternsMixedValuesNoPattern(t *testing.T) {
	a := analyzer.New(analyzer.DefaultConfig())

	docs := []any{
		map[string]any{"contact": "a@b.com"},
		map[string]any{"contact": "not an email"},
	}

	patterns := a.DetectPatterns(docs)
	assert.Contains(t, patterns.RepeatedFields, "contact")
	assert.NotContains(t, patterns.ValuePatterns, "contact")
}

func TestDetectPatternsNestedPaths(t *testing.T) {
	a := analyzer.New(analyzer.DefaultConfig())

	docs := []any{
		map[string]any{"user": map[string]any{"name": "x"}},
		map[string]any{"user": map[string]any{"name": "y"}},
	}

	patterns := a.DetectPatterns(docs)
	assert.Contains(t, patterns.RepeatedFields, "user")
	assert.Contains(t, patterns.RepeatedFields, "user.name")
}

func TestDetectPatternsArrayPathsSampled(t *testing.T) {
	a := analyzer.New(analyzer.DefaultConfig())

	// 数组元素的路径带下标，只采样前5个
	items := make([]any, 8)
	for i := range items {
		items[i] = map[string]any{"x": float64(i)}
	}
	docs := []any{map[string]any{"items": items}}

	patterns := a.DetectPatterns(docs)
	assert.Contains(t, patterns.RepeatedFields, "items")
	assert.Contains(t, patterns.RepeatedFields, "items[0].x")
	assert.Contains(t, patterns.RepeatedFields, "items[4].x")
	assert.NotContains(t, patterns.RepeatedFields, "items[5].x")
}

func TestDetectPatternsEmptyInput(t *testing.T) {
	a := analyzer.New(analyzer.DefaultConfig())

	patterns := a.DetectPatterns(nil)
	assert.Empty(t, patterns.RepeatedFields)
	assert.Empty(t, patterns.OptionalFields)
	assert.Empty(t, patterns.ValuePatterns)
}
