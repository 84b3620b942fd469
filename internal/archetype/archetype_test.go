package archetype

import (
	"testing"

	"option-strategist/internal/models"
)

func TestRegistryIsComplete(t *testing.T) {
	all := All()
	if len(all) != 22 {
		t.Fatalf("registry holds %d archetypes, want 22", len(all))
	}

	seen := make(map[string]bool)
	for _, m := range all {
		if m.Name == "" {
			t.Error("archetype with empty name")
		}
		if seen[m.Name] {
			t.Errorf("duplicate archetype %q", m.Name)
		}
		seen[m.Name] = true

		if m.LegCount < 1 || m.LegCount > 4 {
			t.Errorf("%s: leg count %d out of range", m.Name, m.LegCount)
		}
		if len(m.Bias) == 0 {
			t.Errorf("%s: no bias entries", m.Name)
		}
		if len(m.IVBands) == 0 {
			t.Errorf("%s: no IV bands", m.Name)
		}
		if m.Priority <= 0 || m.Priority > 1 {
			t.Errorf("%s: priority %v out of (0,1]", m.Name, m.Priority)
		}
	}
}

func TestGet(t *testing.T) {
	m, ok := Get(IronCondor)
	if !ok {
		t.Fatalf("Get(%q) not found", IronCondor)
	}
	if m.Category != NeutralCat {
		t.Errorf("iron condor category = %s, want %s", m.Category, NeutralCat)
	}
	if m.LegCount != 4 {
		t.Errorf("iron condor legs = %d, want 4", m.LegCount)
	}
	if !m.DefinedRisk {
		t.Error("iron condor should be defined risk")
	}

	if _, ok := Get("Covered Call"); ok {
		t.Error("unknown archetype should not resolve")
	}
}

func TestUndefinedRiskShapes(t *testing.T) {
	undefined := []string{
		ShortPut, ShortCall, ShortStraddle, ShortStrangle,
		CallRatioSpread, PutRatioSpread,
	}
	for _, name := range undefined {
		m, ok := Get(name)
		if !ok {
			t.Fatalf("missing %s", name)
		}
		if m.DefinedRisk {
			t.Errorf("%s should be undefined risk", name)
		}
	}

	for _, m := range All() {
		isUndefined := false
		for _, name := range undefined {
			if m.Name == name {
				isUndefined = true
			}
		}
		if !isUndefined && !m.DefinedRisk {
			t.Errorf("%s unexpectedly undefined risk", m.Name)
		}
	}
}

func TestMatchesBias(t *testing.T) {
	tests := []struct {
		name      string
		direction models.Direction
		want      bool
	}{
		{LongCall, models.Bullish, true},
		{LongCall, models.Bearish, false},
		{LongPut, models.Bearish, true},
		{IronCondor, models.Neutral, true},
		{ShortPut, models.Neutral, true},
		{ShortPut, models.Bearish, false},
	}
	for _, tt := range tests {
		m, ok := Get(tt.name)
		if !ok {
			t.Fatalf("missing %s", tt.name)
		}
		if got := m.MatchesBias(tt.direction); got != tt.want {
			t.Errorf("%s MatchesBias(%s) = %v, want %v", tt.name, tt.direction, got, tt.want)
		}
	}
}

func TestMatchesIV(t *testing.T) {
	m, _ := Get(LongStraddle)
	if !m.MatchesIV(models.IVLow) {
		t.Error("long straddle should match LOW IV")
	}
	if m.MatchesIV(models.IVElevated) {
		t.Error("long straddle should not match ELEVATED IV")
	}

	sp, _ := Get(ShortPut)
	if !sp.MatchesIV(models.IVHigh) || !sp.MatchesIV(models.IVElevated) {
		t.Error("short put should match HIGH and ELEVATED IV")
	}
}

func TestMultiExpiryShapes(t *testing.T) {
	multi := map[string]bool{
		CallCalendar: true, PutCalendar: true,
		CallDiagonal: true, PutDiagonal: true,
	}
	for _, m := range All() {
		if m.MultiExpiry != multi[m.Name] {
			t.Errorf("%s MultiExpiry = %v, want %v", m.Name, m.MultiExpiry, multi[m.Name])
		}
	}
}
