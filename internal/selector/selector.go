// Package selector narrows the archetype registry down to a bounded
// shortlist compatible with the current market context and IV profile.
package selector

import (
	"sort"

	"github.com/rs/zerolog"

	"option-strategist/internal/archetype"
	"option-strategist/internal/config"
	"option-strategist/internal/models"
)

// Selector scores archetypes for compatibility and returns a shortlist
// for construction.
type Selector struct {
	cfg *config.SelectionConfig
	log zerolog.Logger
}

// New creates a Selector.
func New(cfg *config.SelectionConfig, log zerolog.Logger) *Selector {
	return &Selector{cfg: cfg, log: log}
}

type scored struct {
	meta  archetype.Metadata
	score float64
}

// SelectCandidates returns an ordered list of archetype names compatible
// with the market context, bounded to the configured shortlist size.
// Archetypes on the IV profile's avoid list never appear. The rotation
// history is mutated: selected names are pushed so repeated runs favor
// diversity. If the metadata-driven path yields nothing, a fixed fallback
// keyed on coarse direction and IV level applies.
func (s *Selector) SelectCandidates(mc models.MarketContext, iv models.IVProfile, vp models.VolatilityProfile, hist *RotationHistory) []string {
	candidates := s.scoreAll(mc, iv, vp, hist)
	if len(candidates) == 0 {
		s.log.Warn().
			Str("direction", string(mc.Direction)).
			Str("iv_env", string(iv.Environment)).
			Msg("Metadata selection empty, using fallback list")
		return s.fallback(mc.Direction, iv)
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		if candidates[i].score != candidates[j].score {
			return candidates[i].score > candidates[j].score
		}
		if candidates[i].meta.Priority != candidates[j].meta.Priority {
			return candidates[i].meta.Priority > candidates[j].meta.Priority
		}
		return candidates[i].meta.Name < candidates[j].meta.Name
	})

	limit := s.cfg.MaxCandidates
	if limit > len(candidates) {
		limit = len(candidates)
	}

	names := make([]string, 0, limit)
	for _, c := range candidates[:limit] {
		names = append(names, c.meta.Name)
	}
	for _, n := range names {
		hist.Push(n)
	}
	return names
}

func (s *Selector) scoreAll(mc models.MarketContext, iv models.IVProfile, vp models.VolatilityProfile, hist *RotationHistory) []scored {
	var out []scored
	for _, meta := range archetype.All() {
		if iv.Avoids(meta.Name) {
			continue
		}
		if !meta.MatchesBias(mc.Direction) {
			continue
		}

		score := baseCompatibility(meta, mc)
		score *= s.ivMultiplier(meta, iv, vp)
		score *= s.rotationFactor(meta.Name, hist)
		if iv.Prefers(meta.Name) {
			score *= s.cfg.PreferredBonus
		}
		if score <= 0 {
			continue
		}
		out = append(out, scored{meta: meta, score: score})
	}
	return out
}

// baseCompatibility blends bias match with direction confidence. A weakly
// held direction keeps neutral shapes in play.
func baseCompatibility(meta archetype.Metadata, mc models.MarketContext) float64 {
	score := 1.0
	if meta.MatchesBias(models.Neutral) && mc.Direction != models.Neutral {
		// Shapes that also work sideways lose a little edge in a
		// trending market, proportional to conviction.
		score = 1.0 - 0.3*mc.Confidence
	}
	if mc.Direction != models.Neutral && !meta.MatchesBias(models.Neutral) {
		// Pure directional shapes gain with conviction.
		score = 0.7 + 0.5*mc.Confidence
	}
	return score
}

// ivMultiplier boosts band matches, then tilts by the implied-versus-
// realized spread: rich premium favors the high-IV shapes, cheap premium
// the low-IV ones. Missing realized figures leave the band factor alone.
func (s *Selector) ivMultiplier(meta archetype.Metadata, iv models.IVProfile, vp models.VolatilityProfile) float64 {
	m := s.cfg.IVMismatchDamp
	if meta.MatchesIV(iv.Environment) {
		m = s.cfg.IVMatchBoost
	}
	if vp.Realized30d > 0 && iv.ATMIV > 0 {
		ratio := iv.ATMIV / vp.Realized30d
		switch {
		case ratio >= 1.2 && meta.MatchesIV(models.IVHigh):
			m *= 1.1
		case ratio <= 0.8 && meta.MatchesIV(models.IVLow):
			m *= 1.1
		}
	}
	return m
}

// rotationFactor discourages recommending the same archetype run after
// run. Each recent appearance compounds the penalty.
func (s *Selector) rotationFactor(name string, hist *RotationHistory) float64 {
	factor := 1.0
	for i := hist.Count(name); i > 0; i-- {
		factor *= s.cfg.RepeatPenalty
	}
	return factor
}

// fallback is the coarse direction + IV level list used when metadata
// scoring returns nothing usable.
func (s *Selector) fallback(d models.Direction, iv models.IVProfile) []string {
	var names []string
	highIV := iv.Environment == models.IVHigh || iv.Environment == models.IVElevated
	switch d {
	case models.Bullish:
		if highIV {
			names = []string{archetype.BullPutSpread, archetype.ShortPut, archetype.BullCallSpread}
		} else {
			names = []string{archetype.BullCallSpread, archetype.LongCall, archetype.CallCalendar}
		}
	case models.Bearish:
		if highIV {
			names = []string{archetype.BearCallSpread, archetype.ShortCall, archetype.BearPutSpread}
		} else {
			names = []string{archetype.BearPutSpread, archetype.LongPut, archetype.PutCalendar}
		}
	default:
		if highIV {
			names = []string{archetype.IronCondor, archetype.ShortStrangle, archetype.IronButterfly}
		} else {
			names = []string{archetype.LongStraddle, archetype.CallCalendar, archetype.LongStrangle}
		}
	}

	// The avoid list binds in the fallback path too.
	out := names[:0]
	for _, n := range names {
		if !iv.Avoids(n) {
			out = append(out, n)
		}
	}
	return out
}
