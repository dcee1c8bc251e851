package storage_test

import (
	"testing"

	"github.com/leapzhao/shape-store/analyzer"
	"github.com/leapzhao/shape-store/storage"

	"github.com/stretchr/testify/assert"
)

func TestDecideConsistentFlatGoesSQL(t *testing.T) {
	engine := storage.NewDecisionEngine(2)

	result := &analyzer.Result{
		Kind:         analyzer.ResultBatch,
		NestingDepth: 1,
		IsConsistent: true,
		Consistency:  analyzer.ConsistencyReport{Overall: 0.95},
	}

	decision := engine.Decide("users.json", result)
	assert.Equal(t, storage.StorageSQL, decision.StorageType)
	assert.Equal(t, "users", decision.SchemaName)
}

func TestDecideInconsistentGoesDocument(t *testing.T) {
	engine := storage.NewDecisionEngine(2)

	result := &analyzer.Result{
		Kind:         analyzer.ResultBatch,
		NestingDepth: 0,
		IsConsistent: false,
		Consistency:  analyzer.ConsistencyReport{Overall: 0.4},
	}

	decision := engine.Decide("events.json", result)
	assert.Equal(t, storage.StorageDocument, decision.StorageType)
	assert.Contains(t, decision.Reason, "consistency")
}

func TestDecideDeepNestingGoesDocument(t *testing.T) {
	engine := storage.NewDecisionEngine(2)

	result := &analyzer.Result{
		Kind:         analyzer.ResultSingle,
		NestingDepth: 4,
		IsConsistent: true,
		Consistency:  analyzer.ConsistencyReport{Overall: 1.0},
	}

	decision := engine.Decide("config.json", result)
	assert.Equal(t, storage.StorageDocument, decision.StorageType)
	assert.Contains(t, decision.Reason, "nesting depth")
}

func TestSchemaName(t *testing.T) {
	cases := []struct {
		filename string
		want     string
	}{
		{"users.json", "users"},
		{"User Data.json", "user_data"},
		{"/tmp/2024 Q1-report.json", "2024_q1_report"},
		{"...", "json_data"},
		{"", "json_data"},
	}

	for _, c := range cases {
		assert.Equal(t, c.want, storage.SchemaName(c.filename), "filename %q", c.filename)
	}
}
