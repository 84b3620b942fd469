// Package chain loads option chain snapshots from JSON files and
// prefilters them for liquidity before they reach the engine.
package chain

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/rs/zerolog"

	strategisterrors "option-strategist/internal/errors"
	"option-strategist/internal/models"
)

// Snapshot is one symbol's analysis input as stored on disk: the chain
// plus the upstream market and volatility classifications.
type Snapshot struct {
	Symbol     string                   `json:"symbol"`
	SpotPrice  float64                  `json:"spot_price"`
	CapturedAt time.Time                `json:"captured_at"`
	Quotes     []models.OptionQuote     `json:"quotes"`
	Market     models.MarketContext     `json:"market_context"`
	IV         models.IVProfile         `json:"iv_profile"`
	Volatility models.VolatilityProfile `json:"volatility_profile"`
}

// Chain builds the normalized OptionChain from the snapshot.
func (s *Snapshot) Chain() *models.OptionChain {
	return &models.OptionChain{
		Symbol:     s.Symbol,
		SpotPrice:  s.SpotPrice,
		CapturedAt: s.CapturedAt,
		Quotes:     s.Quotes,
	}
}

// Loader reads and validates snapshot files.
type Loader struct {
	minOpenInterest int64
	log             zerolog.Logger
}

// NewLoader creates a Loader. Quotes below minOpenInterest are dropped
// at load time so every downstream stage sees only tradable contracts.
func NewLoader(minOpenInterest int64, log zerolog.Logger) *Loader {
	return &Loader{minOpenInterest: minOpenInterest, log: log}
}

// Load reads one snapshot file.
func (l *Loader) Load(path string) (*Snapshot, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, strategisterrors.Wrapf(err, "read snapshot %s", path)
	}

	var snap Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return nil, strategisterrors.Wrapf(err, "parse snapshot %s", path)
	}
	if err := l.validate(&snap, path); err != nil {
		return nil, err
	}

	kept := l.prefilter(snap.Quotes)
	l.log.Debug().
		Str("symbol", snap.Symbol).
		Int("quotes", len(snap.Quotes)).
		Int("kept", len(kept)).
		Msg("Snapshot loaded")
	snap.Quotes = kept

	return &snap, nil
}

// LoadDir loads every *.json snapshot in a directory, sorted by file
// name. A file that fails to parse is skipped with a warning rather
// than aborting the whole directory.
func (l *Loader) LoadDir(dir string) ([]*Snapshot, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, strategisterrors.Wrapf(err, "read snapshot dir %s", dir)
	}

	var names []string
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".json") {
			continue
		}
		names = append(names, e.Name())
	}
	sort.Strings(names)

	var snaps []*Snapshot
	for _, name := range names {
		snap, err := l.Load(filepath.Join(dir, name))
		if err != nil {
			l.log.Warn().Err(err).Str("file", name).Msg("Skipping unreadable snapshot")
			continue
		}
		snaps = append(snaps, snap)
	}
	if len(snaps) == 0 {
		return nil, strategisterrors.Wrapf(strategisterrors.ErrDataNotFound, "no readable snapshots in %s", dir)
	}
	return snaps, nil
}

func (l *Loader) validate(snap *Snapshot, path string) error {
	if snap.Symbol == "" {
		return fmt.Errorf("snapshot %s: missing symbol", path)
	}
	if snap.SpotPrice <= 0 {
		return fmt.Errorf("snapshot %s: spot price must be positive, got %v", path, snap.SpotPrice)
	}
	if len(snap.Quotes) == 0 {
		return fmt.Errorf("snapshot %s: %w", path, strategisterrors.ErrInputUnavailable)
	}
	if snap.CapturedAt.IsZero() {
		snap.CapturedAt = time.Now()
	}
	return nil
}

// prefilter drops quotes with no market: zero bid and ask, or open
// interest below the floor.
func (l *Loader) prefilter(quotes []models.OptionQuote) []models.OptionQuote {
	var kept []models.OptionQuote
	for _, q := range quotes {
		if q.Bid <= 0 && q.Ask <= 0 && q.LastPrice <= 0 {
			continue
		}
		if q.OpenInterest < l.minOpenInterest {
			continue
		}
		kept = append(kept, q)
	}
	return kept
}
