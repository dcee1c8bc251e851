package analyzer_test

import (
	"fmt"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/leapzhao/shape-store/analyzer"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractDepthBound(t *testing.T) {
	a := analyzer.New(analyzer.DefaultConfig())

	// 8层嵌套，超过默认深度上限5
	value := any(map[string]any{"leaf": "x"})
	for i := 7; i >= 0; i-- {
		value = map[string]any{fmt.Sprintf("l%d", i): value}
	}

	node := a.Extract(value)
	require.Equal(t, analyzer.KindObject, node.Kind)
	assert.Equal(t, 5, node.MaxDepth)

	// 逐层下钻，l5的值处应被截断，之后不再出现object节点
	current := node
	for i := 0; i < 5; i++ {
		key := fmt.Sprintf("l%d", i)
		require.Equal(t, analyzer.KindObject, current.Kind, "level %d", i)
		current = current.Fields[key]
		require.NotNil(t, current)
	}
	require.Equal(t, analyzer.KindTruncated, current.Fields["l5"].Kind)
	assert.Equal(t, "l0.l1.l2.l3.l4.l5", current.Fields["l5"].Path)
	assert.Nil(t, current.Fields["l5"].Fields)
}

func TestExtractPrimitives(t *testing.T) {
	a := analyzer.New(analyzer.DefaultConfig())

	result, err := a.Analyze([]byte(`{"s":"hi","i":5,"f":1.5,"b":true,"n":null}`))
	require.NoError(t, err)

	fields := result.Structure.Fields
	require.Len(t, fields, 5)
	assert.Equal(t, analyzer.KindString, fields["s"].Kind)
	assert.Equal(t, analyzer.KindInteger, fields["i"].Kind)
	assert.Equal(t, analyzer.KindFloat, fields["f"].Kind)
	assert.Equal(t, analyzer.KindBoolean, fields["b"].Kind)
	assert.Equal(t, analyzer.KindNull, fields["n"].Kind)

	require.NotNil(t, fields["s"].ValueSample)
	assert.Equal(t, "hi", *fields["s"].ValueSample)
	require.NotNil(t, fields["i"].ValueSample)
	assert.Equal(t, "5", *fields["i"].ValueSample)

	// null没有取值预览
	assert.Nil(t, fields["n"].ValueSample)
}

func TestExtractSampleTruncation(t *testing.T) {
	a := analyzer.New(analyzer.DefaultConfig())

	long := strings.Repeat("x", 80)
	node := a.Extract(map[string]any{"text": long})

	sample := node.Fields["text"].ValueSample
	require.NotNil(t, sample)
	assert.Len(t, *sample, 50)
}

func TestExtractSampleTruncationMultiByte(t *testing.T) {
	a := analyzer.New(analyzer.DefaultConfig())

	// 截断按字符计数，不能把多字节字符切成半个
	long := strings.Repeat("数", 60)
	node := a.Extract(map[string]any{"text": long})

	sample := node.Fields["text"].ValueSample
	require.NotNil(t, sample)
	assert.True(t, utf8.ValidString(*sample))
	assert.Equal(t, 50, utf8.RuneCountInString(*sample))
	assert.Equal(t, strings.Repeat("数", 50), *sample)
}

func TestExtractSampleShortMultiByteKept(t *testing.T) {
	a := analyzer.New(analyzer.DefaultConfig())

	// 字节数超限但字符数未超限的字符串保持完整
	short := strings.Repeat("数", 40)
	node := a.Extract(map[string]any{"text": short})

	sample := node.Fields["text"].ValueSample
	require.NotNil(t, sample)
	assert.Equal(t, short, *sample)
}

func TestExtractEmptyArray(t *testing.T) {
	a := analyzer.New(analyzer.DefaultConfig())

	node := a.Extract(map[string]any{"tags": []any{}})

	tags := node.Fields["tags"]
	require.Equal(t, analyzer.KindArray, tags.Kind)
	assert.Equal(t, "unknown", tags.ItemType)
	assert.True(t, tags.Empty)
	assert.Nil(t, tags.SampleStructure)
}

func TestExtractArrayDominantTypeTieBreak(t *testing.T) {
	a := analyzer.New(analyzer.DefaultConfig())

	// 整数与字符串各两个，并列时先出现的类型胜出
	node := a.Extract([]any{1.0, "a", 2.0, "b"})

	require.Equal(t, analyzer.KindArray, node.Kind)
	assert.Equal(t, "integer", node.ItemType)
	require.NotNil(t, node.SampleStructure)
	assert.Equal(t, analyzer.KindInteger, node.SampleStructure.Kind)
}

func TestExtractArraySamplingLimit(t *testing.T) {
	a := analyzer.New(analyzer.DefaultConfig())

	// 前10个元素中字符串占多数，第10个之后的整数不参与采样
	items := make([]any, 0, 15)
	for i := 0; i < 4; i++ {
		items = append(items, float64(i))
	}
	for i := 0; i < 6; i++ {
		items = append(items, "s")
	}
	for i := 0; i < 5; i++ {
		items = append(items, float64(i))
	}

	node := a.Extract(items)
	assert.Equal(t, "string", node.ItemType)
}

func TestExtractArrayChildPathHasNoIndex(t *testing.T) {
	cfg := analyzer.DefaultConfig()
	cfg.MaxNestingDepth = 2
	a := analyzer.New(cfg)

	// 数组元素的deep字段超出深度上限被截断，截断路径不含数组下标
	node := a.Extract(map[string]any{
		"items": []any{map[string]any{"deep": map[string]any{"x": 1.0}}},
	})

	sample := node.Fields["items"].SampleStructure
	require.NotNil(t, sample)
	require.Equal(t, analyzer.KindObject, sample.Kind)
	assert.Equal(t, analyzer.KindTruncated, sample.Fields["deep"].Kind)
	assert.Equal(t, "items.deep", sample.Fields["deep"].Path)
}

func TestAnalyzePurity(t *testing.T) {
	a := analyzer.New(analyzer.DefaultConfig())
	data := []byte(`[{"id":1,"tags":["a","b"],"meta":{"ok":true}},{"id":2,"score":1.5}]`)

	first, err := a.Analyze(data)
	require.NoError(t, err)
	second, err := a.Analyze(data)
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, mustMarshal(t, first), mustMarshal(t, second))
}
