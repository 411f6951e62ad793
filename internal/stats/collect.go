package stats

import (
	"context"
	"errors"
	"io"

	"golang.org/x/sync/errgroup"
)

// LengthSource is the stream of per-record sequence lengths consumed by
// Collect. Next returns io.EOF after the last record.
type LengthSource interface {
	Next() (int, error)
}

const (
	collectBatchSize = 4096
	// ProgressInterval is the record count between progress callbacks.
	ProgressInterval = 1_000_000
)

// CollectOptions configures stream collection.
type CollectOptions struct {
	RetainRaw bool              // keep every length for raw dumping
	Progress  func(seqs uint64) // called every ProgressInterval records, from the collector goroutine
}

// Collect consumes the full length stream into a Collection. Decoding and
// accumulation run on separate goroutines connected by a bounded batch
// channel, so decompression and parsing overlap collection. A decode failure
// cancels the pipeline and is returned; the collection is then invalid.
func Collect(ctx context.Context, src LengthSource, opts *CollectOptions) (*Collection, error) {
	if opts == nil {
		opts = &CollectOptions{}
	}
	c := NewCollection(opts.RetainRaw)

	batches := make(chan []int, 4)
	g, ctx := errgroup.WithContext(ctx)

	// Producer: drain the decoder into batches.
	g.Go(func() error {
		defer close(batches)
		batch := make([]int, 0, collectBatchSize)
		for {
			length, err := src.Next()
			if err != nil {
				if errors.Is(err, io.EOF) {
					if len(batch) == 0 {
						return nil
					}
					select {
					case batches <- batch:
						return nil
					case <-ctx.Done():
						return ctx.Err()
					}
				}
				return err
			}

			batch = append(batch, length)
			if len(batch) == collectBatchSize {
				select {
				case batches <- batch:
					batch = make([]int, 0, collectBatchSize)
				case <-ctx.Done():
					return ctx.Err()
				}
			}
		}
	})

	// Collector: accumulate batches into the collection.
	g.Go(func() error {
		var lastReport uint64
		for batch := range batches {
			for _, length := range batch {
				c.Add(length)
			}
			if opts.Progress != nil {
				for c.TotalSequences()-lastReport >= ProgressInterval {
					lastReport += ProgressInterval
					opts.Progress(lastReport)
				}
			}
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return c, nil
}
