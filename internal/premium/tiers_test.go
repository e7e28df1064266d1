package premium

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mapper(t *testing.T, name string) *Mapper {
	t.Helper()
	m, err := NewMapper(name)
	require.NoError(t, err)
	return m
}

func TestStandardTableExamples(t *testing.T) {
	m := mapper(t, TableStandard)

	tests := []struct {
		composite float64
		tier      string
		min, max  int
	}{
		{0.42, "Low", 320, 490},
		{0.60, "Medium", 580, 900},
		{0.99, "Critical", 1600, 2800},
		{0.90, "Critical", 1600, 2800},
	}
	for _, tt := range tests {
		q := m.Lookup(tt.composite)
		assert.Equal(t, tt.tier, q.Tier, "composite %v", tt.composite)
		assert.Equal(t, tt.min, q.MinPremium)
		assert.Equal(t, tt.max, q.MaxPremium)
		assert.Equal(t, "USD", q.Currency)
		assert.Equal(t, TableStandard, q.Table)
	}
}

func TestInclusiveUpperBounds(t *testing.T) {
	standard := mapper(t, TableStandard)
	assert.Equal(t, "Low", standard.Lookup(0.50).Tier)
	assert.Equal(t, "Medium", standard.Lookup(0.5001).Tier)
	assert.Equal(t, "Medium", standard.Lookup(0.65).Tier)
	assert.Equal(t, "High", standard.Lookup(0.6501).Tier)
	assert.Equal(t, "High", standard.Lookup(0.85).Tier)
	assert.Equal(t, "Critical", standard.Lookup(0.8501).Tier)

	extended := mapper(t, TableExtended)
	assert.Equal(t, "Very Low", extended.Lookup(0.10).Tier)
	assert.Equal(t, "Low", extended.Lookup(0.1001).Tier)
	assert.Equal(t, "High-Risk", extended.Lookup(0.70).Tier)
	assert.Equal(t, "Critical", extended.Lookup(0.90).Tier)
	assert.Equal(t, "Extremely Critical", extended.Lookup(0.9001).Tier)
}

func TestOverrideFloorIsCriticalInBothTables(t *testing.T) {
	assert.Equal(t, "Critical", mapper(t, TableStandard).Lookup(0.9).Tier)

	q := mapper(t, TableExtended).Lookup(0.9)
	assert.Equal(t, "Critical", q.Tier)
	assert.Equal(t, 83000, q.MinPremium)
	assert.Equal(t, 93000, q.MaxPremium)
	assert.Equal(t, "INR", q.Currency)
}

func TestLookupIsTotal(t *testing.T) {
	for _, name := range TableNames() {
		m := mapper(t, name)
		for i := 0; i <= 10000; i++ {
			q := m.Lookup(float64(i) / 10000)
			assert.NotEmpty(t, q.Tier)
			assert.LessOrEqual(t, q.MinPremium, q.MaxPremium)
		}
		assert.Equal(t, m.Table().Bands[0].Tier, m.Lookup(-1).Tier)
		assert.Equal(t, m.Table().Bands[len(m.Table().Bands)-1].Tier, m.Lookup(3).Tier)
	}
}

func TestTablesPartitionRange(t *testing.T) {
	for _, name := range TableNames() {
		tbl, ok := GetTable(name)
		require.True(t, ok)
		require.NotEmpty(t, tbl.Bands)
		prev := 0.0
		for _, b := range tbl.Bands {
			assert.Greater(t, b.UpTo, prev, "%s bands must ascend", name)
			prev = b.UpTo
		}
		assert.Equal(t, 100.0, prev, "%s must cover 100%%", name)
	}
}

func TestUnknownTable(t *testing.T) {
	_, err := NewMapper("platinum")
	assert.Error(t, err)
}
