package filter

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
)

func candidatesWithDistances(distances ...float64) []Candidate {
	candidates := make([]Candidate, len(distances))
	for i, d := range distances {
		candidates[i] = Candidate{
			ID:       string(rune('a' + i)),
			Content:  "doc",
			Distance: d,
		}
	}

	return candidates
}

func distancesOf(candidates []Candidate) []float64 {
	distances := make([]float64, len(candidates))
	for i, c := range candidates {
		distances[i] = c.Distance
	}

	return distances
}

func TestFilterDisabled(t *testing.T) {
	assert := assert.New(t)

	cfg := DefaultConfig()
	cfg.Enabled = false

	out := Filter(candidatesWithDistances(0.9, 0.3, 1.5), cfg)

	assert.False(out.HardThresholdApplied)
	assert.False(out.RejectedByHardThreshold)
	assert.Equal([]float64{0.3, 0.9, 1.5}, distancesOf(out.Kept))
	assert.Equal(3, out.OriginalCount)
	assert.Equal(3, out.KeptCount)
}

func TestFilterEmptyInput(t *testing.T) {
	assert := assert.New(t)

	out := Filter(nil, DefaultConfig())

	assert.Empty(out.Kept)
	assert.Nil(out.BestDistance)
	assert.False(out.RejectedByHardThreshold)
	assert.Equal(0, out.OriginalCount)
}

func TestFilterAllRejectedByHardThreshold(t *testing.T) {
	assert := assert.New(t)

	out := Filter(candidatesWithDistances(1.5, 2.0), DefaultConfig())

	assert.Empty(out.Kept)
	assert.True(out.HardThresholdApplied)
	assert.True(out.RejectedByHardThreshold)
	if assert.NotNil(out.BestDistance) {
		assert.Equal(1.5, *out.BestDistance)
	}
}

func TestFilterSubMinimumPassthrough(t *testing.T) {
	assert := assert.New(t)

	// Only one candidate survives the hard threshold, so relative
	// filtering is skipped entirely.
	out := Filter(candidatesWithDistances(0.4, 1.2, 1.8), DefaultConfig())

	assert.Equal([]float64{0.4}, distancesOf(out.Kept))
	assert.Equal(StrategyPassthrough, out.Strategy)
	assert.False(out.RejectedByHardThreshold)
}

func TestFilterMinimumFloorPreference(t *testing.T) {
	assert := assert.New(t)

	// Base keeps two, dynamic ratio keeps one (0.1/0.7 ≈ 0.143), and the
	// gap between 0.15 and 0.9 trips the adaptive cut at two. The smallest
	// strategy meeting the floor of two wins.
	out := Filter(candidatesWithDistances(0.1, 0.15, 0.9, 0.95), DefaultConfig())

	assert.Equal([]float64{0.1, 0.15}, distancesOf(out.Kept))
	assert.Equal(2, out.KeptCount)
	assert.Equal(4, out.OriginalCount)
	assert.Contains([]Strategy{StrategyBase, StrategyGap}, out.Strategy)
}

func TestFilterTieBreakOrder(t *testing.T) {
	assert := assert.New(t)

	// Base and adaptive gap both keep two; equal sizes resolve in
	// declaration order, so base is reported as the chosen strategy.
	out := Filter(candidatesWithDistances(0.1, 0.15, 0.9, 0.95), DefaultConfig())

	assert.Equal(StrategyBase, out.Strategy)
}

func TestFilterFallsBackToMostPermissive(t *testing.T) {
	assert := assert.New(t)

	cfg := DefaultConfig()
	cfg.BaseThreshold = 0.05 // nothing passes base
	cfg.MinResults = 4       // no strategy can meet the floor

	// Dynamic ratio keeps 0.1 and 0.14 (0.1/0.7 ≈ 0.143); the gap strategy
	// finds no unusual gap and keeps all three. With the floor out of
	// reach, the largest non-empty strategy wins.
	out := Filter(candidatesWithDistances(0.1, 0.14, 0.2), cfg)

	assert.Equal([]float64{0.1, 0.14, 0.2}, distancesOf(out.Kept))
	assert.Equal(StrategyGap, out.Strategy)
}

func TestChooseStrategyAllEmpty(t *testing.T) {
	assert := assert.New(t)

	// Strategies can never all be empty with sane thresholds (the best
	// candidate always satisfies the dynamic ratio), so exercise the
	// chooser directly.
	chosen := chooseStrategy([]strategyResult{
		{StrategyBase, nil},
		{StrategyDynamic, nil},
		{StrategyGap, nil},
	}, 2)

	assert.Empty(chosen.kept)
	assert.Equal(StrategyNone, chosen.name)
}

func TestFilterNeverEmptyUnlessRejected(t *testing.T) {
	assert := assert.New(t)

	cfg := DefaultConfig()

	r := rand.New(rand.NewSource(1))
	for i := 0; i < 200; i++ {
		n := r.Intn(12)
		distances := make([]float64, n)
		for j := range distances {
			distances[j] = r.Float64() * 2
		}

		out := Filter(candidatesWithDistances(distances...), cfg)

		if !out.RejectedByHardThreshold && n > 0 {
			hasSurvivor := false
			for _, d := range distances {
				if d <= cfg.HardThreshold {
					hasSurvivor = true
				}
			}

			if hasSurvivor {
				assert.NotEmpty(out.Kept, "distances: %v", distances)
			}
		}

		// Kept is always sorted ascending by distance.
		for j := 1; j < len(out.Kept); j++ {
			assert.LessOrEqual(out.Kept[j-1].Distance, out.Kept[j].Distance)
		}

		// Hard threshold is absolute.
		if out.HardThresholdApplied && !out.RejectedByHardThreshold {
			for _, c := range out.Kept {
				assert.LessOrEqual(c.Distance, cfg.HardThreshold)
			}
		}
	}
}

func TestFilterTiedDistances(t *testing.T) {
	assert := assert.New(t)

	out := Filter(candidatesWithDistances(0.5, 0.5, 0.5), DefaultConfig())

	assert.Len(out.Kept, 3)
	assert.False(out.RejectedByHardThreshold)
}

func TestAdaptiveGapStrategy(t *testing.T) {
	assert := assert.New(t)

	// Gaps are 0.05, 0.05, 1.0 with mean ≈ 0.367: the jump after 0.2 is
	// well beyond twice the mean, so everything after it is dropped.
	sorted := candidatesWithDistances(0.1, 0.15, 0.2, 1.2)
	kept := adaptiveGapStrategy(sorted, 2.0)

	assert.Equal([]float64{0.1, 0.15, 0.2}, distancesOf(kept))

	// Evenly spaced candidates have no unusual gap.
	sorted = candidatesWithDistances(0.1, 0.2, 0.3, 0.4)
	kept = adaptiveGapStrategy(sorted, 2.0)

	assert.Len(kept, 4)

	// Fewer than three candidates: no gap analysis possible.
	sorted = candidatesWithDistances(0.1, 0.9)
	kept = adaptiveGapStrategy(sorted, 2.0)

	assert.Len(kept, 2)
}

func TestDynamicRatioStrategy(t *testing.T) {
	assert := assert.New(t)

	// Dividing by a ratio below one widens the window relative to the
	// best match: 0.1 / 0.5 accepts everything up to 0.2.
	sorted := candidatesWithDistances(0.1, 0.18, 0.25)
	kept := dynamicRatioStrategy(sorted, 0.1, 0.5)

	assert.Equal([]float64{0.1, 0.18}, distancesOf(kept))
}

func TestFromColumns(t *testing.T) {
	assert := assert.New(t)

	candidates := FromColumns(
		[]string{"a", "b"},
		[]string{"first", "second"},
		[]map[string]string{{"source": "x"}, {"source": "y"}},
		[]float64{0.2, 0.4},
	)

	if assert.Len(candidates, 2) {
		assert.Equal("a", candidates[0].ID)
		assert.Equal("first", candidates[0].Content)
		assert.Equal("x", candidates[0].Metadata["source"])
		assert.Equal(0.2, candidates[0].Distance)
	}
}

func TestFromColumnsMismatchedLengths(t *testing.T) {
	assert := assert.New(t)

	// Truncated to the shortest present array instead of panicking.
	candidates := FromColumns(
		[]string{"a", "b", "c"},
		[]string{"first", "second", "third"},
		nil,
		[]float64{0.2},
	)

	if assert.Len(candidates, 1) {
		assert.Equal("first", candidates[0].Content)
		assert.Nil(candidates[0].Metadata)
	}
}
