// Package session persists aggregate Solve-call statistics across process
// runs: an ambient convenience for a CLI/front-end collaborator, never
// consulted by the search itself (spec section 5: search state lives only
// in SearchContext/the transposition table). It is adapted from the
// teacher's internal/storage package, which persists UserPreferences and
// GameStats the same way: JSON-encoded values in a BadgerDB key-value
// store, one fixed key per record.
package session

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/dgraph-io/badger/v4"
)

const keyStats = "solve_stats"

// LevelStats aggregates the solves run at one level.
type LevelStats struct {
	Count             int    `json:"count"`
	TotalNodes        uint64 `json:"total_nodes"`
	TotalLeafNodes    uint64 `json:"total_leaf_nodes"`
	LastBestMove      uint8  `json:"last_best_move"`
	LastEval          int32  `json:"last_eval"`
	LastSearchedAtUTC string `json:"last_searched_at_utc"`
}

// Stats is the full persisted record: per-level aggregates plus a running
// total, mirroring the shape of the teacher's GameStats (per-mode,
// per-difficulty breakdowns alongside a grand total).
type Stats struct {
	TotalSolves int                `json:"total_solves"`
	ByLevel     map[int]LevelStats `json:"by_level"`
}

// NewStats returns an empty Stats record.
func NewStats() *Stats {
	return &Stats{ByLevel: make(map[int]LevelStats)}
}

// SolveOutcome is the subset of solver.SolverResult the session store
// cares about; kept independent of the solver package so session has no
// import-time dependency on it (only the CLI glues the two together).
type SolveOutcome struct {
	Level             int
	BestMove          uint8
	Eval              int32
	SearchedNodes     uint64
	SearchedLeafNodes uint64
}

// Session wraps BadgerDB for persistent solve-statistics storage.
type Session struct {
	db *badger.DB
}

// Open opens (creating if absent) a Session backed by a BadgerDB
// directory.
func Open(dir string) (*Session, error) {
	opts := badger.DefaultOptions(dir)
	opts.Logger = nil
	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("session: open %s: %w", dir, err)
	}
	return &Session{db: db}, nil
}

// Close releases the underlying database handle.
func (s *Session) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// LoadStats returns the persisted statistics, or an empty Stats if none
// have been recorded yet.
func (s *Session) LoadStats() (*Stats, error) {
	stats := NewStats()
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(keyStats))
		if err == badger.ErrKeyNotFound {
			return nil
		}
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			return json.Unmarshal(val, stats)
		})
	})
	if err != nil {
		return nil, fmt.Errorf("session: load stats: %w", err)
	}
	if stats.ByLevel == nil {
		stats.ByLevel = make(map[int]LevelStats)
	}
	return stats, nil
}

func (s *Session) saveStats(stats *Stats) error {
	data, err := json.Marshal(stats)
	if err != nil {
		return fmt.Errorf("session: marshal stats: %w", err)
	}
	err = s.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(keyStats), data)
	})
	if err != nil {
		return fmt.Errorf("session: save stats: %w", err)
	}
	return nil
}

// RecordSolve folds one Solve call's outcome into the persisted
// statistics, following the teacher's Storage.RecordGame pattern:
// load-modify-save the single aggregate record.
func (s *Session) RecordSolve(outcome SolveOutcome) error {
	stats, err := s.LoadStats()
	if err != nil {
		return err
	}

	stats.TotalSolves++
	lvl := stats.ByLevel[outcome.Level]
	lvl.Count++
	lvl.TotalNodes += outcome.SearchedNodes
	lvl.TotalLeafNodes += outcome.SearchedLeafNodes
	lvl.LastBestMove = outcome.BestMove
	lvl.LastEval = outcome.Eval
	lvl.LastSearchedAtUTC = time.Now().UTC().Format(time.RFC3339)
	stats.ByLevel[outcome.Level] = lvl

	return s.saveStats(stats)
}
