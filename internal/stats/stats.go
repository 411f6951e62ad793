package stats

import (
	"errors"
	"fmt"
)

// ErrEmptyInput means the collection holds no qualifying records, so mean,
// median and N-scores are undefined. No placeholder statistics are produced.
var ErrEmptyInput = errors.New("empty input: no qualifying sequence records")

// Compute derives the summary statistics for a fully-populated collection.
// percentiles selects the N-scores to compute; each must be in [1,100].
// N100 resolves to the minimum recorded length.
func Compute(c *Collection, percentiles []int) (*Result, error) {
	if c.TotalSequences() == 0 {
		return nil, ErrEmptyInput
	}
	for _, p := range percentiles {
		if p < 1 || p > 100 {
			return nil, fmt.Errorf("n-score percentile %d out of range [1,100]", p)
		}
	}

	lengths := c.lengthsAscending()

	nScores := make(map[int]int, len(percentiles))
	for _, p := range percentiles {
		nScores[p] = nScore(lengths, c.counts, c.totalBases, p)
	}

	return &Result{
		TotalBases:     c.totalBases,
		TotalSequences: c.totalSeqs,
		MeanLength:     float64(c.totalBases) / float64(c.totalSeqs),
		MedianLength:   median(lengths, c.counts, c.totalSeqs),
		NScores:        nScores,
	}, nil
}

// median walks the ascending length distribution by cumulative count. For an
// even number of sequences it averages the two middle values.
func median(lengths []int, counts map[int]uint64, totalSeqs uint64) float64 {
	if totalSeqs%2 == 1 {
		return float64(valueAtRank(lengths, counts, totalSeqs/2))
	}
	lo := valueAtRank(lengths, counts, totalSeqs/2-1)
	hi := valueAtRank(lengths, counts, totalSeqs/2)
	return (float64(lo) + float64(hi)) / 2
}

// valueAtRank returns the length at the given zero-based rank of the sorted
// multiset.
func valueAtRank(lengths []int, counts map[int]uint64, rank uint64) int {
	var seen uint64
	for _, l := range lengths {
		seen += counts[l]
		if seen > rank {
			return l
		}
	}
	// Unreachable for rank < totalSeqs.
	return lengths[len(lengths)-1]
}

// nScore walks the distribution from the longest length down, accumulating
// bases until the running sum covers p% of totalBases; the length at the
// crossing is the N-score. The comparison cross-multiplies instead of
// dividing so the boundaries stay exact: p=100 crosses only once the full
// base count is accumulated, which is the minimum length.
func nScore(lengths []int, counts map[int]uint64, totalBases uint64, p int) int {
	var cum uint64
	for i := len(lengths) - 1; i >= 0; i-- {
		l := lengths[i]
		cum += uint64(l) * counts[l] //nolint:gosec // lengths are non-negative
		if cum*100 >= uint64(p)*totalBases {
			return l
		}
	}
	// Unreachable for p in [1,100]: the full accumulation equals totalBases.
	return lengths[0]
}
