package stats

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
)

// Result is an immutable snapshot of one statistics run. NScores maps a
// requested percentile to its computed length; for p1 < p2,
// NScores[p1] >= NScores[p2] always holds.
type Result struct {
	TotalBases     uint64
	TotalSequences uint64
	MeanLength     float64
	MedianLength   float64
	NScores        map[int]int
}

// Percentiles returns the requested N-score percentiles in ascending order.
func (r *Result) Percentiles() []int {
	ps := make([]int, 0, len(r.NScores))
	for p := range r.NScores {
		ps = append(ps, p)
	}
	sort.Ints(ps)
	return ps
}

// MarshalJSON emits the result with stable field order: the aggregate fields
// first, then one "n<percentile>" field per requested N-score, ascending.
func (r *Result) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')

	buf.WriteString(`"total_bases":`)
	buf.WriteString(strconv.FormatUint(r.TotalBases, 10))
	buf.WriteString(`,"total_sequences":`)
	buf.WriteString(strconv.FormatUint(r.TotalSequences, 10))

	mean, err := json.Marshal(r.MeanLength)
	if err != nil {
		return nil, fmt.Errorf("marshaling mean_length: %w", err)
	}
	buf.WriteString(`,"mean_length":`)
	buf.Write(mean)

	median, err := json.Marshal(r.MedianLength)
	if err != nil {
		return nil, fmt.Errorf("marshaling median_length: %w", err)
	}
	buf.WriteString(`,"median_length":`)
	buf.Write(median)

	for _, p := range r.Percentiles() {
		buf.WriteString(`,"n`)
		buf.WriteString(strconv.Itoa(p))
		buf.WriteString(`":`)
		buf.WriteString(strconv.Itoa(r.NScores[p]))
	}

	buf.WriteByte('}')
	return buf.Bytes(), nil
}
