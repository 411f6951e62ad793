package decoder

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io"
)

// fastaReader decodes multi-line FASTA records. A '>' header line starts a
// record; every following non-header line adds its length to that record.
// Sequence payloads are never concatenated or retained.
type fastaReader struct {
	reader  *bufio.Reader
	line    []byte
	started bool // first header line has been consumed
	done    bool
	record  int
	lineNum int
}

func newFASTAReader(r *bufio.Reader) *fastaReader {
	return &fastaReader{
		reader: r,
		line:   make([]byte, 0, 512),
	}
}

// Next returns the total sequence length of the next FASTA record.
// Returns io.EOF when no more records are available. An empty file yields
// io.EOF immediately; a non-empty file with no header line is not FASTA.
func (d *fastaReader) Next() (int, error) {
	if d.done {
		return 0, io.EOF
	}

	if !d.started {
		if err := d.scanFirstHeader(); err != nil {
			return 0, err
		}
	}

	// The current record's header is already consumed. Sum line lengths
	// until the next header or end of file.
	total := 0
	for {
		line, err := d.readLine()
		if err != nil {
			if errors.Is(err, io.EOF) {
				d.done = true
				d.record++
				return total, nil
			}
			return 0, fmt.Errorf("%w: %v", ErrIO, err)
		}
		if len(line) > 0 && line[0] == '>' {
			d.record++
			return total, nil
		}
		total += len(line)
	}
}

// scanFirstHeader advances to the first header line, skipping leading blank
// lines. Non-blank content before any header means the file is not FASTA.
func (d *fastaReader) scanFirstHeader() error {
	for {
		line, err := d.readLine()
		if err != nil {
			if errors.Is(err, io.EOF) {
				d.done = true
				return io.EOF
			}
			return fmt.Errorf("%w: %v", ErrIO, err)
		}
		if len(line) == 0 {
			continue
		}
		if line[0] != '>' {
			return fmt.Errorf("%w: no header line found (line %d)", ErrNotFasta, d.lineNum)
		}
		d.started = true
		return nil
	}
}

func (d *fastaReader) readLine() ([]byte, error) {
	d.line = d.line[:0]

	for {
		segment, isPrefix, err := d.reader.ReadLine()
		if err != nil {
			return nil, err
		}

		d.line = append(d.line, segment...)

		if !isPrefix {
			break
		}
	}
	d.lineNum++

	d.line = bytes.TrimSuffix(d.line, []byte{'\r'})

	return d.line, nil
}
