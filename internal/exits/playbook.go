package exits

import (
	"option-strategist/internal/archetype"
	"option-strategist/internal/models"
)

// playbook maps archetype names to their adjustment plays. Plays are
// static recommendations surfaced alongside the exit rules, not
// automatic transitions.
var playbook = map[string][]models.AdjustmentPlay{
	archetype.LongCall: {
		{Kind: models.AdjustOffensive, Trigger: "strong move in your favor", Description: "roll the strike up to lock in gains while keeping upside exposure"},
		{Kind: models.AdjustMorphing, Trigger: "move stalls near the strike", Description: "sell a higher call against it to convert into a bull call spread"},
	},
	archetype.LongPut: {
		{Kind: models.AdjustOffensive, Trigger: "strong move in your favor", Description: "roll the strike down to lock in gains while keeping downside exposure"},
		{Kind: models.AdjustMorphing, Trigger: "move stalls near the strike", Description: "sell a lower put against it to convert into a bear put spread"},
	},
	archetype.ShortPut: {
		{Kind: models.AdjustDefensive, Trigger: "underlying approaches the short strike", Description: "roll down and out for additional credit"},
		{Kind: models.AdjustMorphing, Trigger: "sustained downside pressure", Description: "buy a lower put to cap risk, converting into a bull put spread"},
	},
	archetype.ShortCall: {
		{Kind: models.AdjustDefensive, Trigger: "underlying approaches the short strike", Description: "roll up and out for additional credit"},
		{Kind: models.AdjustMorphing, Trigger: "sustained upside pressure", Description: "buy a higher call to cap risk, converting into a bear call spread"},
	},
	archetype.BullCallSpread: {
		{Kind: models.AdjustOffensive, Trigger: "underlying clears the short strike early", Description: "roll the whole spread up to reset the profit zone"},
		{Kind: models.AdjustDefensive, Trigger: "thesis weakens before half the debit is lost", Description: "close the long leg gain against the short, or exit entirely"},
	},
	archetype.BearPutSpread: {
		{Kind: models.AdjustOffensive, Trigger: "underlying clears the short strike early", Description: "roll the whole spread down to reset the profit zone"},
		{Kind: models.AdjustDefensive, Trigger: "thesis weakens before half the debit is lost", Description: "close the long leg gain against the short, or exit entirely"},
	},
	archetype.BullPutSpread: {
		{Kind: models.AdjustRolling, Trigger: "short strike tested with time remaining", Description: "roll the spread down and out to a later expiry for a net credit"},
		{Kind: models.AdjustMorphing, Trigger: "underlying rallies hard away from the strikes", Description: "add a bear call spread to form an iron condor on the same expiry"},
	},
	archetype.BearCallSpread: {
		{Kind: models.AdjustRolling, Trigger: "short strike tested with time remaining", Description: "roll the spread up and out to a later expiry for a net credit"},
		{Kind: models.AdjustMorphing, Trigger: "underlying sells off away from the strikes", Description: "add a bull put spread to form an iron condor on the same expiry"},
	},
	archetype.LongStraddle: {
		{Kind: models.AdjustOffensive, Trigger: "sharp move in either direction", Description: "close the winning leg and let the other ride, or roll the winner to recenter"},
		{Kind: models.AdjustDefensive, Trigger: "no movement and iv contracting", Description: "exit before decay compounds, the thesis has a shelf life"},
	},
	archetype.ShortStraddle: {
		{Kind: models.AdjustDefensive, Trigger: "underlying trends away from the strike", Description: "roll the untested leg toward the underlying for extra credit"},
		{Kind: models.AdjustMorphing, Trigger: "sustained one-way move", Description: "buy wings to convert into an iron butterfly and cap the open side"},
	},
	archetype.LongStrangle: {
		{Kind: models.AdjustOffensive, Trigger: "sharp move in either direction", Description: "close the winning leg and hold the other as a cheap lottery ticket"},
		{Kind: models.AdjustDefensive, Trigger: "no movement and iv contracting", Description: "exit before decay compounds, the thesis has a shelf life"},
	},
	archetype.ShortStrangle: {
		{Kind: models.AdjustDefensive, Trigger: "one strike tested", Description: "roll the untested leg toward the underlying to rebalance credit and delta"},
		{Kind: models.AdjustMorphing, Trigger: "sustained one-way move", Description: "buy wings to convert into an iron condor and cap the open side"},
	},
	archetype.IronCondor: {
		{Kind: models.AdjustDefensive, Trigger: "one short strike tested", Description: "roll the untested spread toward the underlying for extra credit"},
		{Kind: models.AdjustRolling, Trigger: "breach with meaningful time left", Description: "roll the tested spread out to a later expiry"},
	},
	archetype.IronButterfly: {
		{Kind: models.AdjustDefensive, Trigger: "underlying drifts from the body strike", Description: "roll the untested short leg toward the underlying"},
		{Kind: models.AdjustMorphing, Trigger: "breakeven breached", Description: "widen into an iron condor by rolling the body strikes apart"},
	},
	archetype.CallButterfly: {
		{Kind: models.AdjustDefensive, Trigger: "underlying moves outside the wings", Description: "close for salvage value, the structure rarely recovers"},
	},
	archetype.PutButterfly: {
		{Kind: models.AdjustDefensive, Trigger: "underlying moves outside the wings", Description: "close for salvage value, the structure rarely recovers"},
	},
	archetype.CallCalendar: {
		{Kind: models.AdjustRolling, Trigger: "front expiry approaches with underlying near the strike", Description: "roll the short leg to the next expiry for additional credit"},
		{Kind: models.AdjustDefensive, Trigger: "underlying runs far from the strike", Description: "close both legs, the spread value collapses away from the strike"},
	},
	archetype.PutCalendar: {
		{Kind: models.AdjustRolling, Trigger: "front expiry approaches with underlying near the strike", Description: "roll the short leg to the next expiry for additional credit"},
		{Kind: models.AdjustDefensive, Trigger: "underlying runs far from the strike", Description: "close both legs, the spread value collapses away from the strike"},
	},
	archetype.CallDiagonal: {
		{Kind: models.AdjustRolling, Trigger: "short leg expires worthless", Description: "sell the next cycle's call against the long leg to keep reducing basis"},
	},
	archetype.PutDiagonal: {
		{Kind: models.AdjustRolling, Trigger: "short leg expires worthless", Description: "sell the next cycle's put against the long leg to keep reducing basis"},
	},
	archetype.CallRatioSpread: {
		{Kind: models.AdjustDefensive, Trigger: "underlying accelerates past the short strikes", Description: "buy back one short call to flatten into a plain vertical"},
	},
	archetype.PutRatioSpread: {
		{Kind: models.AdjustDefensive, Trigger: "underlying accelerates past the short strikes", Description: "buy back one short put to flatten into a plain vertical"},
	},
}

// categoryFallbacks cover any archetype without a dedicated entry.
var categoryFallbacks = map[archetype.Category][]models.AdjustmentPlay{
	archetype.Directional: {
		{Kind: models.AdjustDefensive, Trigger: "thesis invalidated", Description: "exit rather than adjust, directional trades are cheap to re-enter"},
	},
	archetype.NeutralCat: {
		{Kind: models.AdjustDefensive, Trigger: "range breaks", Description: "roll the tested side or close, do not fight a trending market"},
	},
	archetype.Volatility: {
		{Kind: models.AdjustOffensive, Trigger: "the expected move arrives", Description: "take profits on the winning side while volatility is still bid"},
	},
	archetype.Income: {
		{Kind: models.AdjustRolling, Trigger: "short strikes tested", Description: "roll out in time for a credit to keep the position working"},
	},
	archetype.Advanced: {
		{Kind: models.AdjustDefensive, Trigger: "structure stops behaving as modeled", Description: "simplify to a defined-risk vertical or close"},
	},
}

func adjustments(inst *models.StrategyInstance) []models.AdjustmentPlay {
	if plays, ok := playbook[inst.Archetype]; ok {
		return plays
	}
	return categoryFallbacks[archetype.Category(inst.Category)]
}
