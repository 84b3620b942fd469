package construct

import (
	"math"
	"testing"
	"time"

	"option-strategist/internal/archetype"
	"option-strategist/internal/config"
	strategisterrors "option-strategist/internal/errors"
	"option-strategist/internal/models"
)

var (
	testNow   = time.Date(2026, 3, 2, 9, 30, 0, 0, time.UTC)
	nearExp   = testNow.AddDate(0, 0, 30)
	farExp    = testNow.AddDate(0, 0, 58)
	testSpot  = 100.0
	callCurve = map[float64][2]float64{
		// strike -> {premium, delta}
		70: {30.5, 0.95}, 75: {25.8, 0.90}, 80: {21.2, 0.85},
		85: {16.9, 0.78}, 90: {12.8, 0.68}, 95: {9.2, 0.58},
		100: {6.0, 0.50}, 105: {3.6, 0.40}, 110: {2.0, 0.30},
		115: {1.0, 0.22}, 120: {0.5, 0.15}, 125: {0.25, 0.08},
		130: {0.12, 0.05},
	}
)

// testChain builds a synthetic two-expiry chain around spot 100. The far
// expiry reuses the same strikes with slightly richer premiums.
func testChain() *models.OptionChain {
	var quotes []models.OptionQuote
	for _, expiry := range []time.Time{nearExp, farExp} {
		bump := 0.0
		if expiry.Equal(farExp) {
			bump = 1.2
		}
		for strike, pd := range callCurve {
			callPrem, delta := pd[0]+bump, pd[1]
			putPrem := callPrem - (testSpot - strike) // parity, zero rate
			quotes = append(quotes,
				models.OptionQuote{
					Strike: strike, Expiry: expiry, Type: models.Call,
					Bid: callPrem - 0.1, Ask: callPrem + 0.1,
					OpenInterest: 500, Volume: 200,
					Delta: delta, Gamma: 0.02, Theta: -0.05, Vega: 0.10,
					IV: 30,
				},
				models.OptionQuote{
					Strike: strike, Expiry: expiry, Type: models.Put,
					Bid: putPrem - 0.1, Ask: putPrem + 0.1,
					OpenInterest: 500, Volume: 200,
					Delta: delta - 1, Gamma: 0.02, Theta: -0.05, Vega: 0.10,
					IV: 30,
				},
			)
		}
	}
	return &models.OptionChain{
		Symbol:     "TEST",
		SpotPrice:  testSpot,
		CapturedAt: testNow,
		Quotes:     quotes,
	}
}

func testParams() Params {
	cfg := config.Default()
	// The synthetic chain uses 5-point strikes; widen the band so the
	// spread builders have wings to reach for.
	cfg.Construction.MaxStrikeDistance = 0.25
	return Params{
		Spot:   testSpot,
		Market: models.MarketContext{Direction: models.Bullish, Confidence: 0.7},
		IV:     models.IVProfile{ATMIV: 30, Environment: models.IVNormal},
		Cfg:    &cfg.Construction,
	}
}

func TestEveryArchetypeHasBuilder(t *testing.T) {
	for _, name := range archetype.Names() {
		if _, ok := For(name); !ok {
			t.Errorf("no builder registered for %s", name)
		}
	}
	if len(builders) != len(archetype.Names()) {
		t.Errorf("builder count %d != registry size %d", len(builders), len(archetype.Names()))
	}
}

func TestUnknownArchetype(t *testing.T) {
	_, err := Build("Covered Call", testChain(), testParams())
	var ce *strategisterrors.ConstructionError
	if !strategisterrors.As(err, &ce) {
		t.Fatalf("want ConstructionError, got %v", err)
	}
	if ce.Reason != strategisterrors.ReasonUnknownArchetype {
		t.Errorf("reason = %s, want %s", ce.Reason, strategisterrors.ReasonUnknownArchetype)
	}
}

func TestLongCallPicksDeltaTarget(t *testing.T) {
	inst, err := Build(archetype.LongCall, testChain(), testParams())
	if err != nil {
		t.Fatal(err)
	}
	if len(inst.Legs) != 1 {
		t.Fatalf("got %d legs, want 1", len(inst.Legs))
	}
	leg := inst.Legs[0]
	if leg.Side != models.Long || leg.Type != models.Call {
		t.Errorf("leg = %s %s, want LONG CALL", leg.Side, leg.Type)
	}
	// Delta target 0.50 resolves to the 100 strike on this chain.
	if leg.Strike != 100 {
		t.Errorf("strike = %v, want 100", leg.Strike)
	}
	if leg.Rationale == "" {
		t.Error("leg should carry a selection rationale")
	}
}

func TestShortPutSitsOutOfTheMoney(t *testing.T) {
	inst, err := Build(archetype.ShortPut, testChain(), testParams())
	if err != nil {
		t.Fatal(err)
	}
	leg := inst.Legs[0]
	if leg.Side != models.Short || leg.Type != models.Put {
		t.Fatalf("leg = %s %s, want SHORT PUT", leg.Side, leg.Type)
	}
	if leg.Strike >= testSpot {
		t.Errorf("short put strike %v not below spot %v", leg.Strike, testSpot)
	}
	// Delta target 0.30 resolves to the 90 put (delta -0.32).
	if math.Abs(math.Abs(leg.Greeks.Delta)-0.30) > 0.05 {
		t.Errorf("short put delta %v too far from target 0.30", leg.Greeks.Delta)
	}
}

func TestBullCallSpreadShape(t *testing.T) {
	inst, err := Build(archetype.BullCallSpread, testChain(), testParams())
	if err != nil {
		t.Fatal(err)
	}
	if len(inst.Legs) != 2 {
		t.Fatalf("got %d legs, want 2", len(inst.Legs))
	}
	long, short := inst.Legs[0], inst.Legs[1]
	if long.Side != models.Long || short.Side != models.Short {
		t.Fatalf("leg sides = %s/%s, want LONG/SHORT", long.Side, short.Side)
	}
	if short.Strike <= long.Strike {
		t.Errorf("short strike %v should be above long %v", short.Strike, long.Strike)
	}
	if long.Expiry != short.Expiry {
		t.Error("vertical legs must share an expiry")
	}
}

func TestCreditSpreadStrikeOrdering(t *testing.T) {
	bull, err := Build(archetype.BullPutSpread, testChain(), testParams())
	if err != nil {
		t.Fatal(err)
	}
	short, long := bull.Legs[0], bull.Legs[1]
	if short.Side != models.Short || long.Side != models.Long {
		t.Fatalf("leg sides = %s/%s, want SHORT/LONG", short.Side, long.Side)
	}
	if short.Strike <= long.Strike {
		t.Errorf("bull put short %v must sit above the wing %v", short.Strike, long.Strike)
	}

	bear, err := Build(archetype.BearCallSpread, testChain(), testParams())
	if err != nil {
		t.Fatal(err)
	}
	if bear.Legs[0].Strike >= bear.Legs[1].Strike {
		t.Errorf("bear call short %v must sit below the wing %v",
			bear.Legs[0].Strike, bear.Legs[1].Strike)
	}
}

func TestStraddleSharesStrike(t *testing.T) {
	inst, err := Build(archetype.LongStraddle, testChain(), testParams())
	if err != nil {
		t.Fatal(err)
	}
	if len(inst.Legs) != 2 {
		t.Fatalf("got %d legs, want 2", len(inst.Legs))
	}
	if inst.Legs[0].Strike != inst.Legs[1].Strike {
		t.Errorf("straddle strikes differ: %v vs %v", inst.Legs[0].Strike, inst.Legs[1].Strike)
	}
	if inst.Legs[0].Type == inst.Legs[1].Type {
		t.Error("straddle needs one call and one put")
	}
}

func TestStrangleWingsBracketSpot(t *testing.T) {
	inst, err := Build(archetype.LongStrangle, testChain(), testParams())
	if err != nil {
		t.Fatal(err)
	}
	var call, put models.StrategyLeg
	for _, l := range inst.Legs {
		if l.Type == models.Call {
			call = l
		} else {
			put = l
		}
	}
	if call.Strike <= testSpot {
		t.Errorf("strangle call %v not above spot", call.Strike)
	}
	if put.Strike >= testSpot {
		t.Errorf("strangle put %v not below spot", put.Strike)
	}
}

func TestIronCondorShape(t *testing.T) {
	inst, err := Build(archetype.IronCondor, testChain(), testParams())
	if err != nil {
		t.Fatal(err)
	}
	if len(inst.Legs) != 4 {
		t.Fatalf("got %d legs, want 4", len(inst.Legs))
	}

	shorts, longs := 0, 0
	for _, l := range inst.Legs {
		if l.Side == models.Short {
			shorts++
		} else {
			longs++
		}
	}
	if shorts != 2 || longs != 2 {
		t.Errorf("legs = %d short / %d long, want 2/2", shorts, longs)
	}
}

func TestButterflyDoublesTheBody(t *testing.T) {
	inst, err := Build(archetype.CallButterfly, testChain(), testParams())
	if err != nil {
		t.Fatal(err)
	}
	if len(inst.Legs) != 3 {
		t.Fatalf("got %d legs, want 3", len(inst.Legs))
	}
	body := inst.Legs[1]
	if body.Side != models.Short {
		t.Fatal("butterfly body must be short")
	}
	if body.Quantity != 2*inst.LotSize {
		t.Errorf("body quantity %d, want %d", body.Quantity, 2*inst.LotSize)
	}
}

func TestCalendarUsesBothExpiries(t *testing.T) {
	inst, err := Build(archetype.CallCalendar, testChain(), testParams())
	if err != nil {
		t.Fatal(err)
	}
	short, long := inst.Legs[0], inst.Legs[1]
	if !short.Expiry.Equal(nearExp) || !long.Expiry.Equal(farExp) {
		t.Errorf("expiries %v/%v, want near short, far long", short.Expiry, long.Expiry)
	}
	if short.Strike != long.Strike {
		t.Error("calendar legs must share a strike")
	}
}

func TestCalendarNeedsTwoExpiries(t *testing.T) {
	chain := testChain()
	var single []models.OptionQuote
	for _, q := range chain.Quotes {
		if q.Expiry.Equal(nearExp) {
			single = append(single, q)
		}
	}
	chain.Quotes = single

	_, err := Build(archetype.PutCalendar, chain, testParams())
	var ce *strategisterrors.ConstructionError
	if !strategisterrors.As(err, &ce) {
		t.Fatalf("want ConstructionError, got %v", err)
	}
	if ce.Reason != strategisterrors.ReasonInsufficientExpiry {
		t.Errorf("reason = %s, want %s", ce.Reason, strategisterrors.ReasonInsufficientExpiry)
	}
	if ce.Detail != "chain holds 1 expiry(ies), need 2" {
		t.Errorf("detail = %q", ce.Detail)
	}
}

func TestNoStrikesNearSpot(t *testing.T) {
	chain := testChain()
	p := testParams()
	p.Spot = 500 // every strike now sits far outside the allowed band
	chain.SpotPrice = 500

	_, err := Build(archetype.LongCall, chain, p)
	var ce *strategisterrors.ConstructionError
	if !strategisterrors.As(err, &ce) {
		t.Fatalf("want ConstructionError, got %v", err)
	}
	if ce.Reason != strategisterrors.ReasonNoStrikesNearSpot {
		t.Errorf("reason = %s, want %s", ce.Reason, strategisterrors.ReasonNoStrikesNearSpot)
	}
}

func TestIlliquidStrikesExcluded(t *testing.T) {
	chain := testChain()
	for i := range chain.Quotes {
		chain.Quotes[i].OpenInterest = 10 // below the floor
	}

	_, err := Build(archetype.LongCall, chain, testParams())
	if err == nil {
		t.Fatal("expected construction to fail on an illiquid chain")
	}
}

func TestRatioSpreadQuantities(t *testing.T) {
	inst, err := Build(archetype.CallRatioSpread, testChain(), testParams())
	if err != nil {
		t.Fatal(err)
	}
	long, short := inst.Legs[0], inst.Legs[1]
	if long.Side != models.Long || short.Side != models.Short {
		t.Fatalf("leg sides = %s/%s, want LONG/SHORT", long.Side, short.Side)
	}
	if short.Quantity != 2*long.Quantity {
		t.Errorf("short quantity %d, want double the long %d", short.Quantity, long.Quantity)
	}
	if short.Strike <= long.Strike {
		t.Errorf("call ratio shorts %v should sit above the body %v", short.Strike, long.Strike)
	}
}

func TestLegSnapshotsQuote(t *testing.T) {
	inst, err := Build(archetype.LongPut, testChain(), func() Params {
		p := testParams()
		p.Market.Direction = models.Bearish
		return p
	}())
	if err != nil {
		t.Fatal(err)
	}
	leg := inst.Legs[0]
	if leg.Bid <= 0 || leg.Ask <= leg.Bid {
		t.Errorf("leg book snapshot bid=%v ask=%v", leg.Bid, leg.Ask)
	}
	if leg.OpenInterest != 500 || leg.Volume != 200 {
		t.Errorf("leg OI=%d vol=%d, want 500/200", leg.OpenInterest, leg.Volume)
	}
	if leg.Premium != (leg.Bid+leg.Ask)/2 {
		t.Errorf("premium %v is not the midpoint", leg.Premium)
	}
}
