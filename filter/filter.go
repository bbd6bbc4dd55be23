package filter

import (
	"sort"

	"go.uber.org/zap"
)

// Candidate is one retrieved document with its similarity distance.
// Lower distance means more relevant.
type Candidate struct {
	ID       string            `json:"id"`
	Content  string            `json:"content"`
	Metadata map[string]string `json:"metadata,omitempty"`
	Distance float64           `json:"distance"`
}

type Config struct {
	Enabled       bool    `json:"enabled" yaml:"enabled"`
	HardThreshold float64 `json:"hardThreshold" yaml:"hardThreshold"`
	BaseThreshold float64 `json:"baseThreshold" yaml:"baseThreshold"`
	DynamicRatio  float64 `json:"dynamicRatio" yaml:"dynamicRatio"`
	GapFactor     float64 `json:"gapFactor" yaml:"gapFactor"`
	MinResults    int     `json:"minResults" yaml:"minResults"`
	Debug         bool    `json:"debug" yaml:"debug"`
}

func DefaultConfig() Config {
	return Config{
		Enabled:       true,
		HardThreshold: 1.0,
		BaseThreshold: 0.8,
		DynamicRatio:  0.7,
		GapFactor:     2.0,
		MinResults:    2,
		Debug:         false,
	}
}

// Strategy identifies which selection path produced the kept set.
type Strategy string

const (
	StrategyNone        Strategy = ""
	StrategyPassthrough Strategy = "passthrough"
	StrategyBase        Strategy = "base"
	StrategyDynamic     Strategy = "dynamic_ratio"
	StrategyGap         Strategy = "adaptive_gap"
	StrategyBestOnly    Strategy = "best_only"
)

// Outcome is the result of filtering one candidate set. Kept is always
// sorted ascending by distance, so a prefix take yields the top results.
type Outcome struct {
	Kept                    []Candidate `json:"kept"`
	OriginalCount           int         `json:"original_count"`
	KeptCount               int         `json:"kept_count"`
	BestDistance            *float64    `json:"best_distance,omitempty"`
	Strategy                Strategy    `json:"strategy,omitempty"`
	HardThresholdApplied    bool        `json:"hard_threshold_applied"`
	RejectedByHardThreshold bool        `json:"rejected_by_hard_threshold"`
}

// Filter decides which candidates are relevant enough to keep.
//
// The hard threshold is an absolute cutoff applied first. Survivors are run
// through three independent strategies (absolute base threshold, ratio
// relative to the best match, largest-gap detection) and the smallest
// strategy result that still meets the MinResults floor wins. As long as at
// least one candidate passes the hard threshold the result is never empty.
func Filter(candidates []Candidate, cfg Config) Outcome {
	out := Outcome{OriginalCount: len(candidates)}

	sorted := sortByDistance(candidates)
	if len(sorted) > 0 {
		best := sorted[0].Distance
		out.BestDistance = &best
	}

	if !cfg.Enabled || len(sorted) == 0 {
		out.Kept = sorted
		out.KeptCount = len(sorted)
		return out
	}

	out.HardThresholdApplied = true

	// Sorted ascending, so the hard-surviving subset is a prefix.
	n := sort.Search(len(sorted), func(i int) bool {
		return sorted[i].Distance > cfg.HardThreshold
	})
	hard := sorted[:n]

	if len(hard) == 0 {
		out.Kept = []Candidate{}
		out.RejectedByHardThreshold = true

		if cfg.Debug {
			zap.L().Warn("all candidates rejected by hard threshold",
				zap.Float64("hard_threshold", cfg.HardThreshold),
				zap.Float64("best_distance", *out.BestDistance),
			)
		}

		return out
	}

	if len(hard) < cfg.MinResults {
		// Not enough survivors for meaningful relative filtering.
		out.Kept = hard
		out.KeptCount = len(hard)
		out.Strategy = StrategyPassthrough
		return out
	}

	bestDistance := hard[0].Distance

	results := []strategyResult{
		{StrategyBase, baseStrategy(hard, cfg.BaseThreshold)},
		{StrategyDynamic, dynamicRatioStrategy(hard, bestDistance, cfg.DynamicRatio)},
		{StrategyGap, adaptiveGapStrategy(hard, cfg.GapFactor)},
	}

	chosen := chooseStrategy(results, cfg.MinResults)
	if len(chosen.kept) == 0 {
		// Every strategy came up empty. Keep the single best match so the
		// caller is never starved while data exists.
		chosen = strategyResult{StrategyBestOnly, hard[:1]}
	}

	if cfg.Debug {
		log := zap.L().With(
			zap.Int("original", len(candidates)),
			zap.Int("hard_survivors", len(hard)),
			zap.Float64("best_distance", bestDistance),
		)
		for _, r := range results {
			log = log.With(zap.Int(string(r.name), len(r.kept)))
		}
		log.Info("distance filtering applied",
			zap.String("chosen", string(chosen.name)),
			zap.Int("kept", len(chosen.kept)),
		)
	}

	out.Kept = chosen.kept
	out.KeptCount = len(chosen.kept)
	out.Strategy = chosen.name
	return out
}

type strategyResult struct {
	name Strategy
	kept []Candidate
}

// baseStrategy keeps candidates under a fixed absolute threshold.
func baseStrategy(sorted []Candidate, threshold float64) []Candidate {
	return underThreshold(sorted, threshold)
}

// dynamicRatioStrategy widens the acceptance window in proportion to how
// good the best match is: dividing by a ratio in (0, 1] expands it.
func dynamicRatioStrategy(sorted []Candidate, bestDistance, ratio float64) []Candidate {
	if ratio <= 0 {
		return sorted
	}

	return underThreshold(sorted, bestDistance/ratio)
}

// adaptiveGapStrategy cuts the list after an unusually large jump in
// distance, which indicates a natural cliff in result quality. A gap counts
// as unusual when it exceeds factor times the mean gap.
func adaptiveGapStrategy(sorted []Candidate, factor float64) []Candidate {
	if len(sorted) < 3 {
		return sorted
	}

	gaps := make([]float64, len(sorted)-1)

	var sum float64
	maxIndex := 0
	for i := 0; i < len(sorted)-1; i++ {
		gaps[i] = sorted[i+1].Distance - sorted[i].Distance
		sum += gaps[i]

		if gaps[i] > gaps[maxIndex] {
			maxIndex = i
		}
	}

	mean := sum / float64(len(gaps))
	if gaps[maxIndex] > mean*factor {
		return sorted[:maxIndex+1]
	}

	return sorted
}

// chooseStrategy picks the most restrictive non-empty strategy that still
// keeps at least minResults candidates. If none meets the floor, the most
// permissive non-empty strategy wins instead. Equal-size strategies resolve
// in declaration order: base, dynamic ratio, adaptive gap.
func chooseStrategy(results []strategyResult, minResults int) strategyResult {
	valid := make([]strategyResult, 0, len(results))
	for _, r := range results {
		if len(r.kept) > 0 {
			valid = append(valid, r)
		}
	}

	if len(valid) == 0 {
		return strategyResult{StrategyNone, nil}
	}

	sort.SliceStable(valid, func(i, j int) bool {
		return len(valid[i].kept) < len(valid[j].kept)
	})

	for _, r := range valid {
		if len(r.kept) >= minResults {
			return r
		}
	}

	return valid[len(valid)-1]
}

// underThreshold takes the prefix of a distance-sorted list at or below the
// threshold.
func underThreshold(sorted []Candidate, threshold float64) []Candidate {
	n := sort.Search(len(sorted), func(i int) bool {
		return sorted[i].Distance > threshold
	})

	return sorted[:n]
}

func sortByDistance(candidates []Candidate) []Candidate {
	sorted := make([]Candidate, len(candidates))
	copy(sorted, candidates)

	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Distance < sorted[j].Distance
	})

	return sorted
}

// FromColumns zips the store's parallel-array response into candidates.
// Mismatched lengths are not an error: the result is truncated to the
// shortest array that is present, and absent IDs or metadata are left zero.
func FromColumns(ids, documents []string, metadatas []map[string]string, distances []float64) []Candidate {
	n := len(documents)
	if len(distances) < n {
		n = len(distances)
	}

	if ids != nil && len(ids) < n {
		n = len(ids)
	}

	if metadatas != nil && len(metadatas) < n {
		n = len(metadatas)
	}

	candidates := make([]Candidate, n)
	for i := 0; i < n; i++ {
		c := Candidate{
			Content:  documents[i],
			Distance: distances[i],
		}

		if ids != nil {
			c.ID = ids[i]
		}

		if metadatas != nil {
			c.Metadata = metadatas[i]
		}

		candidates[i] = c
	}

	return candidates
}
