package decoder

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io"
)

// fastqReader decodes four-line FASTQ records, yielding only the sequence
// line's length. Sequence and quality payloads never leave this reader.
type fastqReader struct {
	reader  *bufio.Reader
	line    []byte // reusable buffer for reading lines
	record  int    // records emitted so far
	lineNum int    // 1-based line number of the last line read
}

func newFASTQReader(r *bufio.Reader) *fastqReader {
	return &fastqReader{
		reader: r,
		line:   make([]byte, 0, 512),
	}
}

// Next returns the sequence length of the next FASTQ record.
// Returns io.EOF when no more records are available.
func (d *fastqReader) Next() (int, error) {
	// Line 1: Header (starts with @)
	line, err := d.readLine()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return 0, io.EOF
		}
		return 0, d.readErr(err)
	}
	if len(line) == 0 || line[0] != '@' {
		return 0, d.malformed("header line must start with @")
	}

	// Line 2: Sequence — only its length is kept
	line, err = d.readLine()
	if err != nil {
		return 0, d.readErr(err)
	}
	seqLen := len(line)

	// Line 3: Plus line
	line, err = d.readLine()
	if err != nil {
		return 0, d.readErr(err)
	}
	if len(line) == 0 || line[0] != '+' {
		return 0, d.malformed("separator line must start with +")
	}

	// Line 4: Quality scores
	line, err = d.readLine()
	if err != nil {
		return 0, d.readErr(err)
	}
	if len(line) != seqLen {
		return 0, d.malformed(fmt.Sprintf("sequence length %d does not match quality length %d", seqLen, len(line)))
	}

	d.record++
	return seqLen, nil
}

func (d *fastqReader) malformed(msg string) error {
	return fmt.Errorf("%w: invalid FASTQ: %s (record %d, line %d)", ErrMalformedRecord, msg, d.record, d.lineNum)
}

// readErr maps an error from the underlying reader. EOF inside a record means
// the record is truncated; anything else is a read failure.
func (d *fastqReader) readErr(err error) error {
	if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
		return fmt.Errorf("%w: truncated FASTQ record (record %d, line %d)", ErrMalformedRecord, d.record, d.lineNum)
	}
	return fmt.Errorf("%w: %v", ErrIO, err)
}

// readLine reads a line from the input, stripping the newline.
// Reuses an internal buffer to minimize allocations.
func (d *fastqReader) readLine() ([]byte, error) {
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

	// Trim any trailing CR (for Windows line endings)
	d.line = bytes.TrimSuffix(d.line, []byte{'\r'})

	return d.line, nil
}
