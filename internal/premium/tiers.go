package premium

import (
	"math"
	"sort"

	"github.com/pkg/errors"
)

const (
	TableStandard = "standard"
	TableExtended = "extended"
)

// Band is one tier of a premium table. UpTo is the inclusive upper bound of
// the composite percentage; the last band of a table has UpTo 100.
type Band struct {
	UpTo       float64
	Tier       string
	MinPremium int
	MaxPremium int
}

type Table struct {
	Name     string
	Currency string
	Bands    []Band
}

var tables = map[string]Table{
	TableStandard: {
		Name:     TableStandard,
		Currency: "USD",
		Bands: []Band{
			{UpTo: 50, Tier: "Low", MinPremium: 320, MaxPremium: 490},
			{UpTo: 65, Tier: "Medium", MinPremium: 580, MaxPremium: 900},
			{UpTo: 85, Tier: "High", MinPremium: 950, MaxPremium: 1500},
			{UpTo: 100, Tier: "Critical", MinPremium: 1600, MaxPremium: 2800},
		},
	},
	TableExtended: {
		Name:     TableExtended,
		Currency: "INR",
		Bands: []Band{
			{UpTo: 10, Tier: "Very Low", MinPremium: 3000, MaxPremium: 13000},
			{UpTo: 20, Tier: "Low", MinPremium: 13000, MaxPremium: 23000},
			{UpTo: 30, Tier: "Low-Medium", MinPremium: 23000, MaxPremium: 33000},
			{UpTo: 40, Tier: "Medium", MinPremium: 33000, MaxPremium: 43000},
			{UpTo: 50, Tier: "Medium-High", MinPremium: 43000, MaxPremium: 53000},
			{UpTo: 60, Tier: "High", MinPremium: 53000, MaxPremium: 63000},
			{UpTo: 70, Tier: "High-Risk", MinPremium: 63000, MaxPremium: 73000},
			{UpTo: 80, Tier: "Very High", MinPremium: 73000, MaxPremium: 83000},
			{UpTo: 90, Tier: "Critical", MinPremium: 83000, MaxPremium: 93000},
			{UpTo: 100, Tier: "Extremely Critical", MinPremium: 93000, MaxPremium: 103000},
		},
	},
}

// TableNames lists the available tables in stable order.
func TableNames() []string {
	names := make([]string, 0, len(tables))
	for name := range tables {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func GetTable(name string) (Table, bool) {
	t, ok := tables[name]
	return t, ok
}

type Quote struct {
	Table      string
	Tier       string
	MinPremium int
	MaxPremium int
	Currency   string
}

// Mapper maps composite risk onto the one table active for the process.
type Mapper struct {
	table Table
}

func NewMapper(name string) (*Mapper, error) {
	t, ok := tables[name]
	if !ok {
		return nil, errors.Errorf("unknown premium table %q (want one of %v)", name, TableNames())
	}
	return &Mapper{table: t}, nil
}

func (m *Mapper) Table() Table { return m.table }

// Lookup returns the first band whose upper bound is at or above the
// composite percentage. Out-of-range and NaN inputs are clamped first, so
// every input maps to a band.
func (m *Mapper) Lookup(composite float64) Quote {
	pct := percent(composite)
	band := m.table.Bands[len(m.table.Bands)-1]
	for _, b := range m.table.Bands {
		if pct <= b.UpTo {
			band = b
			break
		}
	}
	return Quote{
		Table:      m.table.Name,
		Tier:       band.Tier,
		MinPremium: band.MinPremium,
		MaxPremium: band.MaxPremium,
		Currency:   m.table.Currency,
	}
}

// percent scales to 0..100 and drops float noise below 1e-9 so that, for
// example, 0.65 maps to exactly 65.
func percent(composite float64) float64 {
	switch {
	case math.IsNaN(composite) || composite < 0:
		composite = 0
	case composite > 1:
		composite = 1
	}
	return math.Round(composite*100*1e9) / 1e9
}
