package stats

import (
	"context"
	"errors"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// sliceSource yields a fixed set of lengths, then an optional error or EOF.
type sliceSource struct {
	lengths []int
	pos     int
	err     error
}

func (s *sliceSource) Next() (int, error) {
	if s.pos >= len(s.lengths) {
		if s.err != nil {
			return 0, s.err
		}
		return 0, io.EOF
	}
	n := s.lengths[s.pos]
	s.pos++
	return n, nil
}

// synthSource yields n records of length 1 without allocating them.
type synthSource struct {
	n    uint64
	seen uint64
}

func (s *synthSource) Next() (int, error) {
	if s.seen >= s.n {
		return 0, io.EOF
	}
	s.seen++
	return 1, nil
}

func TestCollectTotals(t *testing.T) {
	src := &sliceSource{lengths: []int{1, 2, 3, 4, 5}}

	c, err := Collect(context.Background(), src, nil)
	require.NoError(t, err)

	assert.Equal(t, uint64(15), c.TotalBases())
	assert.Equal(t, uint64(5), c.TotalSequences())
}

func TestCollectRetainsRawInOrder(t *testing.T) {
	src := &sliceSource{lengths: []int{9, 1, 5}}

	c, err := Collect(context.Background(), src, &CollectOptions{RetainRaw: true})
	require.NoError(t, err)

	assert.Equal(t, []int{9, 1, 5}, c.Raw())
}

func TestCollectSpansBatches(t *testing.T) {
	n := collectBatchSize*2 + 17
	lengths := make([]int, n)
	for i := range lengths {
		lengths[i] = i % 7
	}
	src := &sliceSource{lengths: lengths}

	c, err := Collect(context.Background(), src, &CollectOptions{RetainRaw: true})
	require.NoError(t, err)

	assert.Equal(t, uint64(n), c.TotalSequences()) //nolint:gosec // small test value
	assert.Equal(t, lengths, c.Raw())
}

func TestCollectPropagatesDecodeError(t *testing.T) {
	decodeErr := errors.New("boom")
	src := &sliceSource{lengths: []int{1, 2, 3}, err: decodeErr}

	_, err := Collect(context.Background(), src, nil)
	assert.ErrorIs(t, err, decodeErr)
}

func TestCollectEmptyStream(t *testing.T) {
	c, err := Collect(context.Background(), &sliceSource{}, nil)
	require.NoError(t, err)
	assert.Equal(t, uint64(0), c.TotalSequences())
}

func TestCollectProgressCallback(t *testing.T) {
	src := &synthSource{n: ProgressInterval*2 + 500}

	var reports []uint64
	opts := &CollectOptions{Progress: func(seqs uint64) {
		reports = append(reports, seqs)
	}}

	c, err := Collect(context.Background(), src, opts)
	require.NoError(t, err)

	assert.Equal(t, uint64(ProgressInterval*2+500), c.TotalSequences())
	assert.Equal(t, []uint64{ProgressInterval, 2 * ProgressInterval}, reports)
}

func TestCollectCanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	// A large stream guarantees the producer must block on the channel and
	// observe the canceled context.
	src := &synthSource{n: 1 << 30}
	_, err := Collect(ctx, src, nil)
	assert.ErrorIs(t, err, context.Canceled)
}
