package analyzer_test

import (
	"encoding/json"
	"testing"

	"github.com/leapzhao/shape-store/analyzer"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustMarshal(t *testing.T, v any) string {
	t.Helper()
	data, err := json.Marshal(v)
	require.NoError(t, err)
	return string(data)
}

func TestAnalyzeSingleObject(t *testing.T) {
	a := analyzer.New(analyzer.DefaultConfig())

	result, err := a.Analyze([]byte(`{"name": "x", "age": 5}`))
	require.NoError(t, err)

	assert.Equal(t, analyzer.ResultSingle, result.Kind)
	assert.Equal(t, 2, result.FieldCount)
	assert.Equal(t, 0, result.NestingDepth)
	assert.True(t, result.IsConsistent)
	assert.Equal(t, 1.0, result.Consistency.Overall)
}

func TestAnalyzeEmptyBatch(t *testing.T) {
	a := analyzer.New(analyzer.DefaultConfig())

	result, err := a.Analyze([]byte(`[]`))
	assert.Nil(t, result)
	assert.ErrorIs(t, err, analyzer.ErrEmptyBatch)
}

func TestAnalyzeInvalidInput(t *testing.T) {
	a := analyzer.New(analyzer.DefaultConfig())

	result, err := a.Analyze([]byte(`{"broken":`))
	assert.Nil(t, result)
	assert.ErrorIs(t, err, analyzer.ErrInvalidInput)
}

func TestAnalyzeBatch(t *testing.T) {
	a := analyzer.New(analyzer.DefaultConfig())

	result, err := a.Analyze([]byte(
		`[{"id":1,"email":"a@b.com"},{"id":2,"email":"c@d.com"},{"id":3}]`,
	))
	require.NoError(t, err)

	assert.Equal(t, analyzer.ResultBatch, result.Kind)
	assert.Equal(t, 3, result.Count)
	assert.Equal(t, 2, result.FieldCount)
	assert.Equal(t, 0, result.NestingDepth)

	// id全员出现，email只有2/3
	assert.Contains(t, result.Patterns.RepeatedFields, "id")
	assert.NotContains(t, result.Patterns.RepeatedFields, "email")
	assert.NotContains(t, result.Patterns.OptionalFields, "email")
	assert.NotContains(t, result.Patterns.ValuePatterns, "email")

	// overall = (3/3 + 2/3) / 2
	assert.InDelta(t, 5.0/6.0, result.Consistency.Overall, 1e-9)
	assert.True(t, result.IsConsistent)
}

func TestAnalyzeInconsistentBatch(t *testing.T) {
	a := analyzer.New(analyzer.DefaultConfig())

	// 每个文档的字段互不相同，一致性必然低于阈值
	result, err := a.Analyze([]byte(`[{"a":1},{"b":2},{"c":3},{"d":4}]`))
	require.NoError(t, err)

	assert.Equal(t, 4, result.FieldCount)
	assert.InDelta(t, 0.25, result.Consistency.Overall, 1e-9)
	assert.False(t, result.IsConsistent)
}

func TestAnalyzeConsistencyThresholdOverride(t *testing.T) {
	data := []byte(`[{"id":1,"email":"a@b.com"},{"id":2,"email":"c@d.com"},{"id":3}]`)

	strict := analyzer.New(analyzer.Config{MinConsistency: 0.9})
	result, err := strict.Analyze(data)
	require.NoError(t, err)
	assert.False(t, result.IsConsistent)

	lenient := analyzer.New(analyzer.Config{MinConsistency: 0.5})
	result, err = lenient.Analyze(data)
	require.NoError(t, err)
	assert.True(t, result.IsConsistent)
}

func TestAnalyzeDepthOverride(t *testing.T) {
	cfg := analyzer.DefaultConfig()
	cfg.MaxNestingDepth = 2
	a := analyzer.New(cfg)

	result, err := a.Analyze([]byte(`{"a":{"b":{"c":{"d":1}}}}`))
	require.NoError(t, err)

	node := result.Structure.Fields["a"].Fields["b"].Fields["c"]
	assert.Equal(t, analyzer.KindTruncated, node.Kind)
	assert.Equal(t, "a.b.c", node.Path)
	assert.Equal(t, 2, result.NestingDepth)
}

func TestAnalyzeSinglePrimitive(t *testing.T) {
	a := analyzer.New(analyzer.DefaultConfig())

	// 非对象的单值也按单个文档处理
	result, err := a.Analyze([]byte(`"hello"`))
	require.NoError(t, err)

	assert.Equal(t, analyzer.ResultSingle, result.Kind)
	assert.Equal(t, analyzer.KindString, result.Structure.Kind)
	assert.Equal(t, 0, result.FieldCount)
	assert.True(t, result.IsConsistent)
}

func TestAnalyzeNumberLiteralForms(t *testing.T) {
	a := analyzer.New(analyzer.DefaultConfig())

	// Analyze从原始字节解析，保留数值字面形式
	result, err := a.Analyze([]byte(`{"whole": 5.0, "int": 5, "frac": 5.5}`))
	require.NoError(t, err)
	assert.Equal(t, analyzer.KindFloat, result.Structure.Fields["whole"].Kind)
	assert.Equal(t, analyzer.KindInteger, result.Structure.Fields["int"].Kind)
	assert.Equal(t, analyzer.KindFloat, result.Structure.Fields["frac"].Kind)
}

func TestAnalyzeValueDecodedNumbers(t *testing.T) {
	a := analyzer.New(analyzer.DefaultConfig())

	// 普通反序列化后字面形式丢失，整数值的float64按integer处理
	var doc any
	require.NoError(t, json.Unmarshal([]byte(`{"whole": 5.0, "int": 5, "frac": 5.5}`), &doc))

	result, err := a.AnalyzeValue(doc)
	require.NoError(t, err)
	assert.Equal(t, analyzer.KindInteger, result.Structure.Fields["whole"].Kind)
	assert.Equal(t, analyzer.KindInteger, result.Structure.Fields["int"].Kind)
	assert.Equal(t, analyzer.KindFloat, result.Structure.Fields["frac"].Kind)
}
