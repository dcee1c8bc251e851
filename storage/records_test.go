package storage

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPrepareRecordsCollapsesDuplicates(t *testing.T) {
	records := [][]byte{
		[]byte(`{"id": 1, "name": "alice"}`),
		[]byte(`{"id": 2, "name": "bob"}`),
		[]byte(`{"id": 1, "name": "alice"}`),
	}

	prepared := prepareRecords(records)

	require.Len(t, prepared, 2)
	assert.Equal(t, `{"id": 1, "name": "alice"}`, string(prepared[0].data))
	assert.Equal(t, `{"id": 2, "name": "bob"}`, string(prepared[1].data))
	assert.NotEqual(t, prepared[0].hash, prepared[1].hash)
}

func TestPrepareRecordsNormalizesBeforeComparing(t *testing.T) {
	// 键顺序与空白不同但内容相同的记录视为重复
	records := [][]byte{
		[]byte(`{"a": 1, "b": 2}`),
		[]byte(`{ "b": 2, "a": 1 }`),
	}

	prepared := prepareRecords(records)

	require.Len(t, prepared, 1)
	assert.Equal(t, `{"a": 1, "b": 2}`, string(prepared[0].data))
}

func TestPrepareRecordsSkipsInvalidJSON(t *testing.T) {
	records := [][]byte{
		[]byte(`{"ok": true}`),
		[]byte(`{not json`),
		[]byte(`{"ok": false}`),
	}

	prepared := prepareRecords(records)

	require.Len(t, prepared, 2)
	for _, rec := range prepared {
		assert.NotEmpty(t, rec.hash)
	}
}

func TestPrepareRecordsAllInvalid(t *testing.T) {
	prepared := prepareRecords([][]byte{[]byte(`}{`), []byte(``)})
	assert.Empty(t, prepared)
}
