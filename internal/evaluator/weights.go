package evaluator

import (
	"encoding/json"
	"fmt"
	"os"
)

// numPhases is the number of move-count/2 phase buckets, 0..30; bucket 30
// holds only the full-board move count 60 (per the original engine's
// eval.rs).
const numPhases = 31

// numMobilitySlots sizes the mobility lookup table: mobility is stored
// as 64 + player_moves - opponent_moves, ranging 0..127.
const numMobilitySlots = 128

// PhaseScores holds one phase's worth of pattern, mobility, and bias
// weights, the unit the evaluator looks a position up in.
type PhaseScores struct {
	PatternEval [NumPatterns][]int16 `json:"pattern_eval"`
	MobilityEval [numMobilitySlots]int16 `json:"mobility_eval"`
	ConstEval    int16                   `json:"const_eval"`
}

// Weights is the on-disk format of a trained evaluator: one set of
// PhaseScores per (parity, phase) bucket, matching the original engine's
// serde-tagged Evaluator struct so weight files produced by that trainer
// load here unmodified.
type Weights struct {
	Version     string             `json:"version"`
	NDataSet    int                `json:"n_deta_set"` // the trainer's field name, typo included
	NIteration  int                `json:"n_iteration"`
	Eval        [2][numPhases]PhaseScores `json:"eval"`
}

// NewWeights returns an all-zero weight set of the right shape, the
// evaluator's starting point before training or in the absence of a
// weight file (material-and-mobility-free, i.e. evaluates every position
// as 0).
func NewWeights() *Weights {
	w := &Weights{Version: "0"}
	for parity := range w.Eval {
		for phase := range w.Eval[parity] {
			for pat := 0; pat < NumPatterns; pat++ {
				w.Eval[parity][phase].PatternEval[pat] = make([]int16, numFeaturePositions[pat])
			}
		}
	}
	return w
}

// LoadWeights reads a JSON weight file from disk.
func LoadWeights(path string) (*Weights, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("evaluator: read weights: %w", err)
	}
	return LoadWeightsString(string(data))
}

// LoadWeightsString parses a JSON weight document already held in memory,
// the string-based counterpart to LoadWeights used when weights arrive
// over a channel other than the filesystem (an embedded asset, a network
// fetch).
func LoadWeightsString(doc string) (*Weights, error) {
	var w Weights
	if err := json.Unmarshal([]byte(doc), &w); err != nil {
		return nil, fmt.Errorf("evaluator: parse weights: %w", err)
	}
	for parity := range w.Eval {
		for phase := range w.Eval[parity] {
			scores := &w.Eval[parity][phase]
			for pat := 0; pat < NumPatterns; pat++ {
				if len(scores.PatternEval[pat]) != numFeaturePositions[pat] {
					return nil, fmt.Errorf("evaluator: weights file has %d entries for pattern %d, want %d",
						len(scores.PatternEval[pat]), pat, numFeaturePositions[pat])
				}
			}
		}
	}
	return &w, nil
}

// Save writes the weights to path as JSON, in the same format LoadWeights
// reads.
func (w *Weights) Save(path string) error {
	data, err := json.Marshal(w)
	if err != nil {
		return fmt.Errorf("evaluator: marshal weights: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("evaluator: write weights: %w", err)
	}
	return nil
}
