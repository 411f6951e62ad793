// Package decoder extracts per-record sequence lengths from FASTQ, FASTA and
// unaligned BAM files, transparently handling compressed input.
package decoder

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"
)

// Format identifies an input file format.
type Format int

const (
	FormatAuto Format = iota
	FormatFASTQ
	FormatFASTA
	FormatBAM
)

// ParseFormat parses a format name as accepted on the command line.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(s) {
	case "", "auto":
		return FormatAuto, nil
	case "fastq", "fq":
		return FormatFASTQ, nil
	case "fasta", "fa":
		return FormatFASTA, nil
	case "bam":
		return FormatBAM, nil
	default:
		return FormatAuto, fmt.Errorf("%w: unknown format %q", ErrUnsupportedFormat, s)
	}
}

func (f Format) String() string {
	switch f {
	case FormatFASTQ:
		return "fastq"
	case FormatFASTA:
		return "fasta"
	case FormatBAM:
		return "bam"
	default:
		return "auto"
	}
}

// LengthReader produces a finite, forward-only stream of per-record sequence
// lengths. Next returns io.EOF after the last record. The stream is not
// restartable: each length is observed exactly once, in file order.
type LengthReader interface {
	Next() (int, error)
}

// FormatHandle wraps a readable byte source together with its resolved format
// for the duration of one decode pass.
type FormatHandle struct {
	format  Format
	reader  LengthReader
	closers []io.Closer
}

// Format reports the resolved (sniffed or declared) input format.
func (h *FormatHandle) Format() Format { return h.format }

// Next returns the next record's sequence length.
func (h *FormatHandle) Next() (int, error) { return h.reader.Next() }

// Close releases the underlying byte source.
func (h *FormatHandle) Close() error {
	var err error
	for _, c := range h.closers {
		if cerr := c.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}
	h.closers = nil
	return err
}

// Open opens path (or stdin for "" / "-"), unwraps gzip or zstd compression,
// resolves the format and returns a handle producing sequence lengths.
// The handle owns the file and must be closed on every exit path.
func Open(path string, format Format) (*FormatHandle, error) {
	var in io.Reader
	var closers []io.Closer

	if path == "" || path == "-" {
		in = os.Stdin
	} else {
		f, err := os.Open(path) //nolint:gosec // CLI tool needs to open user-specified files
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrIO, err)
		}
		in = f
		closers = append(closers, f)
	}

	br, extra, err := unwrapCompressed(path, bufio.NewReaderSize(in, 1<<20))
	if err != nil {
		closeAll(closers)
		return nil, err
	}
	// Decompressors close before the file they read from.
	closers = append(extra, closers...)

	if format == FormatAuto {
		format, err = detectFormat(path, br)
		if err != nil {
			closeAll(closers)
			return nil, err
		}
	}

	var lr LengthReader
	switch format {
	case FormatFASTQ:
		lr = newFASTQReader(br)
	case FormatFASTA:
		lr = newFASTAReader(br)
	case FormatBAM:
		lr, err = newBAMReader(br)
		if err != nil {
			closeAll(closers)
			return nil, err
		}
	default:
		closeAll(closers)
		return nil, fmt.Errorf("%w: no format resolved for %q", ErrUnsupportedFormat, path)
	}

	return &FormatHandle{format: format, reader: lr, closers: closers}, nil
}

func closeAll(closers []io.Closer) {
	for _, c := range closers {
		_ = c.Close()
	}
}

var (
	gzipMagic = []byte{0x1f, 0x8b}
	zstdMagic = []byte{0x28, 0xb5, 0x2f, 0xfd}
)

// unwrapCompressed detects gzip or zstd input by magic bytes or file suffix
// and returns a buffered reader over the decompressed stream. BAM's BGZF
// container is a sequence of gzip members, which the multistream gzip reader
// consumes transparently.
func unwrapCompressed(path string, br *bufio.Reader) (*bufio.Reader, []io.Closer, error) {
	head, err := br.Peek(4)
	if err != nil && !errors.Is(err, io.EOF) {
		return nil, nil, fmt.Errorf("%w: cannot inspect input: %v", ErrIO, err)
	}

	lower := strings.ToLower(path)
	switch {
	case bytes.HasPrefix(head, gzipMagic) || strings.HasSuffix(lower, ".gz"):
		gz, err := gzip.NewReader(br)
		if err != nil {
			return nil, nil, fmt.Errorf("%w: opening gzip input: %v", ErrCorruptContainer, err)
		}
		return bufio.NewReaderSize(gz, 1<<20), []io.Closer{gz}, nil
	case bytes.HasPrefix(head, zstdMagic) || strings.HasSuffix(lower, ".zst") || strings.HasSuffix(lower, ".zstd"):
		dec, err := zstd.NewReader(br)
		if err != nil {
			return nil, nil, fmt.Errorf("%w: opening zstd input: %v", ErrCorruptContainer, err)
		}
		rc := dec.IOReadCloser()
		return bufio.NewReaderSize(rc, 1<<20), []io.Closer{rc}, nil
	}
	return br, nil, nil
}

var bamMagic = []byte{'B', 'A', 'M', 0x01}

// detectFormat resolves the input format from the file extension, falling
// back to sniffing the leading decompressed bytes. Unrecognized input fails
// closed rather than guessing.
func detectFormat(path string, br *bufio.Reader) (Format, error) {
	name := strings.ToLower(path)
	for _, suffix := range []string{".gz", ".zst", ".zstd"} {
		name = strings.TrimSuffix(name, suffix)
	}

	switch {
	case strings.HasSuffix(name, ".fastq"), strings.HasSuffix(name, ".fq"):
		return FormatFASTQ, nil
	case strings.HasSuffix(name, ".fasta"), strings.HasSuffix(name, ".fa"),
		strings.HasSuffix(name, ".fna"), strings.HasSuffix(name, ".mfa"):
		return FormatFASTA, nil
	case strings.HasSuffix(name, ".bam"):
		return FormatBAM, nil
	}

	head, err := br.Peek(4)
	if err != nil && !errors.Is(err, io.EOF) {
		return FormatAuto, fmt.Errorf("%w: cannot inspect input: %v", ErrIO, err)
	}
	if bytes.HasPrefix(head, bamMagic) {
		return FormatBAM, nil
	}
	if len(head) > 0 {
		switch head[0] {
		case '@':
			return FormatFASTQ, nil
		case '>':
			return FormatFASTA, nil
		}
	}
	return FormatAuto, fmt.Errorf("%w: cannot determine format of %q", ErrUnsupportedFormat, displayPath(path))
}

func displayPath(path string) string {
	if path == "" || path == "-" {
		return "stdin"
	}
	return path
}
