// Package archetype holds the static metadata for every strategy
// archetype the engine can construct. The registry is a closed set:
// selection, construction, ranking, and exit generation all key off the
// names declared here.
package archetype

import (
	"option-strategist/internal/models"
)

// Category groups archetypes by behavior for exit-template selection.
type Category string

const (
	Directional Category = "directional"
	NeutralCat  Category = "neutral"
	Volatility  Category = "volatility"
	Income      Category = "income"
	Advanced    Category = "advanced"
)

// Metadata describes one archetype's structural and thematic rules.
type Metadata struct {
	Name        string
	Category    Category
	Bias        []models.Direction     // market directions the shape profits from
	IVBands     []models.IVEnvironment // IV environments the shape suits
	Priority    float64                // tie-break weight, higher wins
	LegCount    int
	DefinedRisk bool
	MultiExpiry bool // calendar/diagonal shapes need two expiries
}

// MatchesBias reports whether the archetype is compatible with the direction.
func (m Metadata) MatchesBias(d models.Direction) bool {
	for _, b := range m.Bias {
		if b == d {
			return true
		}
	}
	return false
}

// MatchesIV reports whether the IV environment is in the preferred band.
func (m Metadata) MatchesIV(env models.IVEnvironment) bool {
	for _, b := range m.IVBands {
		if b == env {
			return true
		}
	}
	return false
}

// Archetype names. Referenced throughout the engine; the strings are the
// public identity of each shape.
const (
	LongCall        = "Long Call"
	LongPut         = "Long Put"
	ShortPut        = "Short Put"
	ShortCall       = "Short Call"
	BullCallSpread  = "Bull Call Spread"
	BearPutSpread   = "Bear Put Spread"
	BullPutSpread   = "Bull Put Spread"
	BearCallSpread  = "Bear Call Spread"
	LongStraddle    = "Long Straddle"
	ShortStraddle   = "Short Straddle"
	LongStrangle    = "Long Strangle"
	ShortStrangle   = "Short Strangle"
	IronCondor      = "Iron Condor"
	IronButterfly   = "Iron Butterfly"
	CallButterfly   = "Call Butterfly"
	PutButterfly    = "Put Butterfly"
	CallCalendar    = "Call Calendar Spread"
	PutCalendar     = "Put Calendar Spread"
	CallDiagonal    = "Call Diagonal Spread"
	PutDiagonal     = "Put Diagonal Spread"
	CallRatioSpread = "Call Ratio Spread"
	PutRatioSpread  = "Put Ratio Spread"
)

var registry = []Metadata{
	{Name: LongCall, Category: Directional, Bias: []models.Direction{models.Bullish}, IVBands: []models.IVEnvironment{models.IVLow, models.IVNormal}, Priority: 0.70, LegCount: 1, DefinedRisk: true},
	{Name: LongPut, Category: Directional, Bias: []models.Direction{models.Bearish}, IVBands: []models.IVEnvironment{models.IVLow, models.IVNormal}, Priority: 0.70, LegCount: 1, DefinedRisk: true},
	{Name: ShortPut, Category: Income, Bias: []models.Direction{models.Bullish, models.Neutral}, IVBands: []models.IVEnvironment{models.IVHigh, models.IVElevated}, Priority: 0.75, LegCount: 1, DefinedRisk: false},
	{Name: ShortCall, Category: Income, Bias: []models.Direction{models.Bearish, models.Neutral}, IVBands: []models.IVEnvironment{models.IVHigh, models.IVElevated}, Priority: 0.60, LegCount: 1, DefinedRisk: false},
	{Name: BullCallSpread, Category: Directional, Bias: []models.Direction{models.Bullish}, IVBands: []models.IVEnvironment{models.IVLow, models.IVNormal}, Priority: 0.85, LegCount: 2, DefinedRisk: true},
	{Name: BearPutSpread, Category: Directional, Bias: []models.Direction{models.Bearish}, IVBands: []models.IVEnvironment{models.IVLow, models.IVNormal}, Priority: 0.85, LegCount: 2, DefinedRisk: true},
	{Name: BullPutSpread, Category: Income, Bias: []models.Direction{models.Bullish, models.Neutral}, IVBands: []models.IVEnvironment{models.IVHigh, models.IVElevated, models.IVNormal}, Priority: 0.90, LegCount: 2, DefinedRisk: true},
	{Name: BearCallSpread, Category: Income, Bias: []models.Direction{models.Bearish, models.Neutral}, IVBands: []models.IVEnvironment{models.IVHigh, models.IVElevated, models.IVNormal}, Priority: 0.90, LegCount: 2, DefinedRisk: true},
	{Name: LongStraddle, Category: Volatility, Bias: []models.Direction{models.Neutral, models.Bullish, models.Bearish}, IVBands: []models.IVEnvironment{models.IVLow}, Priority: 0.65, LegCount: 2, DefinedRisk: true},
	{Name: ShortStraddle, Category: NeutralCat, Bias: []models.Direction{models.Neutral}, IVBands: []models.IVEnvironment{models.IVHigh, models.IVElevated}, Priority: 0.55, LegCount: 2, DefinedRisk: false},
	{Name: LongStrangle, Category: Volatility, Bias: []models.Direction{models.Neutral, models.Bullish, models.Bearish}, IVBands: []models.IVEnvironment{models.IVLow}, Priority: 0.60, LegCount: 2, DefinedRisk: true},
	{Name: ShortStrangle, Category: NeutralCat, Bias: []models.Direction{models.Neutral}, IVBands: []models.IVEnvironment{models.IVHigh, models.IVElevated}, Priority: 0.60, LegCount: 2, DefinedRisk: false},
	{Name: IronCondor, Category: NeutralCat, Bias: []models.Direction{models.Neutral}, IVBands: []models.IVEnvironment{models.IVHigh, models.IVElevated, models.IVNormal}, Priority: 0.95, LegCount: 4, DefinedRisk: true},
	{Name: IronButterfly, Category: NeutralCat, Bias: []models.Direction{models.Neutral}, IVBands: []models.IVEnvironment{models.IVHigh, models.IVElevated}, Priority: 0.80, LegCount: 4, DefinedRisk: true},
	{Name: CallButterfly, Category: Advanced, Bias: []models.Direction{models.Neutral, models.Bullish}, IVBands: []models.IVEnvironment{models.IVNormal, models.IVHigh}, Priority: 0.55, LegCount: 3, DefinedRisk: true},
	{Name: PutButterfly, Category: Advanced, Bias: []models.Direction{models.Neutral, models.Bearish}, IVBands: []models.IVEnvironment{models.IVNormal, models.IVHigh}, Priority: 0.55, LegCount: 3, DefinedRisk: true},
	{Name: CallCalendar, Category: NeutralCat, Bias: []models.Direction{models.Neutral, models.Bullish}, IVBands: []models.IVEnvironment{models.IVLow, models.IVNormal}, Priority: 0.65, LegCount: 2, DefinedRisk: true, MultiExpiry: true},
	{Name: PutCalendar, Category: NeutralCat, Bias: []models.Direction{models.Neutral, models.Bearish}, IVBands: []models.IVEnvironment{models.IVLow, models.IVNormal}, Priority: 0.65, LegCount: 2, DefinedRisk: true, MultiExpiry: true},
	{Name: CallDiagonal, Category: Advanced, Bias: []models.Direction{models.Bullish}, IVBands: []models.IVEnvironment{models.IVNormal, models.IVHigh}, Priority: 0.50, LegCount: 2, DefinedRisk: true, MultiExpiry: true},
	{Name: PutDiagonal, Category: Advanced, Bias: []models.Direction{models.Bearish}, IVBands: []models.IVEnvironment{models.IVNormal, models.IVHigh}, Priority: 0.50, LegCount: 2, DefinedRisk: true, MultiExpiry: true},
	{Name: CallRatioSpread, Category: Advanced, Bias: []models.Direction{models.Neutral, models.Bullish}, IVBands: []models.IVEnvironment{models.IVHigh, models.IVElevated}, Priority: 0.45, LegCount: 2, DefinedRisk: false},
	{Name: PutRatioSpread, Category: Advanced, Bias: []models.Direction{models.Neutral, models.Bearish}, IVBands: []models.IVEnvironment{models.IVHigh, models.IVElevated}, Priority: 0.45, LegCount: 2, DefinedRisk: false},
}

var byName = func() map[string]Metadata {
	m := make(map[string]Metadata, len(registry))
	for _, meta := range registry {
		m[meta.Name] = meta
	}
	return m
}()

// All returns the full registry in declaration order. The returned slice
// is shared; callers must not modify it.
func All() []Metadata {
	return registry
}

// Get looks up one archetype's metadata by name.
func Get(name string) (Metadata, bool) {
	m, ok := byName[name]
	return m, ok
}

// Names returns all archetype names in declaration order.
func Names() []string {
	out := make([]string, len(registry))
	for i, m := range registry {
		out[i] = m.Name
	}
	return out
}
