package utils_test

import (
	"testing"

	"github.com/leapzhao/shape-store/utils"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCalculateHashIgnoresKeyOrderAndWhitespace(t *testing.T) {
	h1, err := utils.CalculateHash([]byte(`{"b": 1, "a": 2}`))
	require.NoError(t, err)

	h2, err := utils.CalculateHash([]byte(`{"a":2,"b":1}`))
	require.NoError(t, err)

	assert.Equal(t, h1, h2)
	assert.Len(t, h1, 64)
}

func TestCalculateHashDifferentContent(t *testing.T) {
	h1, err := utils.CalculateHash([]byte(`{"a":1}`))
	require.NoError(t, err)

	h2, err := utils.CalculateHash([]byte(`{"a":2}`))
	require.NoError(t, err)

	assert.NotEqual(t, h1, h2)
}

func TestNormalizeJSONInvalid(t *testing.T) {
	_, err := utils.NormalizeJSON([]byte(`{broken`))
	assert.Error(t, err)
}

func TestValidateJSON(t *testing.T) {
	assert.True(t, utils.ValidateJSON([]byte(`{"ok":true}`)))
	assert.True(t, utils.ValidateJSON([]byte(`[1,2,3]`)))
	assert.False(t, utils.ValidateJSON([]byte(`{nope`)))
}

func TestFormatBytes(t *testing.T) {
	cases := []struct {
		bytes int64
		want  string
	}{
		{512, "512 B"},
		{1024, "1.0 KB"},
		{1536, "1.5 KB"},
		{1048576, "1.0 MB"},
	}

	for _, c := range cases {
		assert.Equal(t, c.want, utils.FormatBytes(c.bytes))
	}
}
