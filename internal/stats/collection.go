// Package stats accumulates sequence length streams and computes summary
// statistics over them.
package stats

import "sort"

// Collection is a multiset of per-record sequence lengths, stored as a
// length -> count map with running totals. The sum of the multiset always
// equals TotalBases and its cardinality equals TotalSequences. Raw
// insertion-order lengths are retained only when requested, since they are
// the dominant memory cost on large inputs.
type Collection struct {
	counts     map[int]uint64
	totalBases uint64
	totalSeqs  uint64
	raw        []int
	retainRaw  bool
}

// NewCollection creates an empty collection. When retainRaw is true every
// individual length is also kept in insertion order for later dumping.
func NewCollection(retainRaw bool) *Collection {
	return &Collection{
		counts:    make(map[int]uint64),
		retainRaw: retainRaw,
	}
}

// Add records one sequence length.
func (c *Collection) Add(length int) {
	c.counts[length]++
	c.totalBases += uint64(length) //nolint:gosec // decoders yield non-negative lengths
	c.totalSeqs++
	if c.retainRaw {
		c.raw = append(c.raw, length)
	}
}

// TotalBases returns the sum of all recorded lengths.
func (c *Collection) TotalBases() uint64 { return c.totalBases }

// TotalSequences returns the number of recorded lengths.
func (c *Collection) TotalSequences() uint64 { return c.totalSeqs }

// Count returns how many sequences of exactly the given length were recorded.
func (c *Collection) Count(length int) uint64 { return c.counts[length] }

// Raw returns the insertion-order length list, or nil when retention was not
// requested. The caller must not mutate it.
func (c *Collection) Raw() []int { return c.raw }

// MinLength returns the smallest recorded length, or 0 for an empty collection.
func (c *Collection) MinLength() int {
	if c.totalSeqs == 0 {
		return 0
	}
	min := -1
	for l := range c.counts {
		if min < 0 || l < min {
			min = l
		}
	}
	return min
}

// MaxLength returns the largest recorded length, or 0 for an empty collection.
func (c *Collection) MaxLength() int {
	max := 0
	for l := range c.counts {
		if l > max {
			max = l
		}
	}
	return max
}

// lengthsAscending returns the distinct recorded lengths in ascending order.
func (c *Collection) lengthsAscending() []int {
	lengths := make([]int, 0, len(c.counts))
	for l := range c.counts {
		lengths = append(lengths, l)
	}
	sort.Ints(lengths)
	return lengths
}
