package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"option-strategist/internal/models"
)

// SQLiteStore implements ResultStore using SQLite.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore creates a new SQLite-based result store.
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(time.Hour)

	store := &SQLiteStore{db: db}
	if err := store.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	return store, nil
}

// initSchema creates all required tables and indexes.
func (s *SQLiteStore) initSchema() error {
	schema := `
	-- Outcomes table, one row per symbol analysis run
	CREATE TABLE IF NOT EXISTS outcomes (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		symbol TEXT NOT NULL,
		status TEXT NOT NULL,
		reason TEXT,
		skips TEXT,
		filtered_out INTEGER DEFAULT 0,
		analyzed_at DATETIME NOT NULL,
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);

	-- Strategies table, one row per ranked instance of an outcome
	CREATE TABLE IF NOT EXISTS strategies (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		outcome_id INTEGER NOT NULL,
		rank INTEGER NOT NULL,
		archetype TEXT NOT NULL,
		category TEXT NOT NULL,
		net_premium REAL NOT NULL,
		max_profit REAL,
		max_loss REAL,
		probability REAL NOT NULL,
		total_score REAL NOT NULL,
		dte INTEGER NOT NULL,
		decay_percent REAL,
		theta_character TEXT,
		legs TEXT NOT NULL,
		breakevens TEXT,
		greeks TEXT,
		scores TEXT,
		exit_conditions TEXT,
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
		FOREIGN KEY (outcome_id) REFERENCES outcomes(id)
	);

	-- Create indexes for performance
	CREATE INDEX IF NOT EXISTS idx_outcomes_symbol ON outcomes(symbol);
	CREATE INDEX IF NOT EXISTS idx_outcomes_analyzed ON outcomes(analyzed_at);
	CREATE INDEX IF NOT EXISTS idx_strategies_outcome ON strategies(outcome_id);
	CREATE INDEX IF NOT EXISTS idx_strategies_archetype ON strategies(archetype);
	`

	_, err := s.db.Exec(schema)
	return err
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// SaveOutcome saves one symbol outcome and its ranked strategies.
func (s *SQLiteStore) SaveOutcome(ctx context.Context, outcome *models.SymbolOutcome) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	skips, _ := json.Marshal(outcome.Skips)
	res, err := tx.ExecContext(ctx, `
		INSERT INTO outcomes (symbol, status, reason, skips, filtered_out, analyzed_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`, outcome.Symbol, string(outcome.Status), outcome.Reason, string(skips), outcome.FilteredOut, outcome.AnalyzedAt)
	if err != nil {
		return fmt.Errorf("failed to insert outcome: %w", err)
	}
	outcomeID, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get outcome id: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO strategies (outcome_id, rank, archetype, category, net_premium, max_profit, max_loss, probability, total_score, dte, decay_percent, theta_character, legs, breakevens, greeks, scores, exit_conditions)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare statement: %w", err)
	}
	defer stmt.Close()

	for i, inst := range outcome.Strategies {
		legs, _ := json.Marshal(inst.Legs)
		breakevens, _ := json.Marshal(inst.Breakevens)
		greeks, _ := json.Marshal(inst.Greeks)
		scores, _ := json.Marshal(inst.Scores)
		exits, _ := json.Marshal(inst.ExitConditions)

		_, err := stmt.ExecContext(ctx, outcomeID, i+1, inst.Archetype, inst.Category,
			inst.NetPremium, storableBound(inst.MaxProfit), storableBound(inst.MaxLoss),
			inst.Probability, inst.TotalScore, inst.DTE, inst.DecayPercent,
			string(inst.ThetaCharacter), string(legs), string(breakevens),
			string(greeks), string(scores), string(exits))
		if err != nil {
			return fmt.Errorf("failed to insert strategy: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}

// GetOutcomes retrieves outcomes matching the filter, newest first.
func (s *SQLiteStore) GetOutcomes(ctx context.Context, filter OutcomeFilter) ([]models.SymbolOutcome, error) {
	query := "SELECT id, symbol, status, reason, skips, filtered_out, analyzed_at FROM outcomes WHERE 1=1"
	args := []interface{}{}

	if filter.Symbol != "" {
		query += " AND symbol = ?"
		args = append(args, filter.Symbol)
	}
	if filter.Status != "" {
		query += " AND status = ?"
		args = append(args, string(filter.Status))
	}
	if !filter.StartDate.IsZero() {
		query += " AND analyzed_at >= ?"
		args = append(args, filter.StartDate)
	}
	if !filter.EndDate.IsZero() {
		query += " AND analyzed_at <= ?"
		args = append(args, filter.EndDate)
	}

	query += " ORDER BY analyzed_at DESC"
	if filter.Limit > 0 {
		query += " LIMIT ?"
		args = append(args, filter.Limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query outcomes: %w", err)
	}
	defer rows.Close()

	type rowOutcome struct {
		id      int64
		outcome models.SymbolOutcome
	}
	var loaded []rowOutcome
	for rows.Next() {
		var r rowOutcome
		var status, skipsJSON string
		if err := rows.Scan(&r.id, &r.outcome.Symbol, &status, &r.outcome.Reason, &skipsJSON, &r.outcome.FilteredOut, &r.outcome.AnalyzedAt); err != nil {
			return nil, fmt.Errorf("failed to scan outcome: %w", err)
		}
		r.outcome.Status = models.OutcomeStatus(status)
		json.Unmarshal([]byte(skipsJSON), &r.outcome.Skips)
		loaded = append(loaded, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating outcomes: %w", err)
	}

	var outcomes []models.SymbolOutcome
	for _, r := range loaded {
		strategies, err := s.loadStrategies(ctx, r.id)
		if err != nil {
			return nil, err
		}
		r.outcome.Strategies = strategies
		outcomes = append(outcomes, r.outcome)
	}

	return outcomes, nil
}

// GetLatestOutcome returns the most recent outcome for a symbol, or nil
// when the symbol has never been analyzed.
func (s *SQLiteStore) GetLatestOutcome(ctx context.Context, symbol string) (*models.SymbolOutcome, error) {
	outcomes, err := s.GetOutcomes(ctx, OutcomeFilter{Symbol: symbol, Limit: 1})
	if err != nil {
		return nil, err
	}
	if len(outcomes) == 0 {
		return nil, nil
	}
	return &outcomes[0], nil
}

func (s *SQLiteStore) loadStrategies(ctx context.Context, outcomeID int64) ([]*models.StrategyInstance, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT archetype, category, net_premium, max_profit, max_loss, probability, total_score, dte, decay_percent, theta_character, legs, breakevens, greeks, scores, exit_conditions
		FROM strategies WHERE outcome_id = ? ORDER BY rank ASC
	`, outcomeID)
	if err != nil {
		return nil, fmt.Errorf("failed to query strategies: %w", err)
	}
	defer rows.Close()

	var out []*models.StrategyInstance
	for rows.Next() {
		var inst models.StrategyInstance
		var thetaChar string
		var maxProfit, maxLoss sql.NullFloat64
		var legsJSON, breakevensJSON, greeksJSON, scoresJSON, exitsJSON string

		if err := rows.Scan(&inst.Archetype, &inst.Category, &inst.NetPremium, &maxProfit, &maxLoss,
			&inst.Probability, &inst.TotalScore, &inst.DTE, &inst.DecayPercent, &thetaChar,
			&legsJSON, &breakevensJSON, &greeksJSON, &scoresJSON, &exitsJSON); err != nil {
			return nil, fmt.Errorf("failed to scan strategy: %w", err)
		}

		inst.ThetaCharacter = models.ThetaCharacteristic(thetaChar)
		inst.MaxProfit = boundFromStorable(maxProfit)
		inst.MaxLoss = boundFromStorable(maxLoss)
		json.Unmarshal([]byte(legsJSON), &inst.Legs)
		json.Unmarshal([]byte(breakevensJSON), &inst.Breakevens)
		json.Unmarshal([]byte(greeksJSON), &inst.Greeks)
		json.Unmarshal([]byte(scoresJSON), &inst.Scores)
		if exitsJSON != "" && exitsJSON != "null" {
			var set models.ExitConditionSet
			if json.Unmarshal([]byte(exitsJSON), &set) == nil {
				inst.ExitConditions = &set
			}
		}
		out = append(out, &inst)
	}

	return out, rows.Err()
}

// storableBound maps the unbounded sentinel to NULL, since SQLite has no
// infinity.
func storableBound(v float64) interface{} {
	if models.IsUnbounded(v) {
		return nil
	}
	return v
}

func boundFromStorable(v sql.NullFloat64) float64 {
	if !v.Valid {
		return models.UnboundedProfit
	}
	return v.Float64
}
