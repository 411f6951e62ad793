package decoder

import (
	"errors"
	"fmt"
)

// Error kinds reported by the decoders. All are fatal to the current run;
// callers match them with errors.Is.
var (
	// ErrUnsupportedFormat means the input's format could not be determined
	// or is not handled.
	ErrUnsupportedFormat = errors.New("unsupported format")

	// ErrMalformedRecord means a format-specific structural violation. The
	// wrapped message identifies the record index and line number.
	ErrMalformedRecord = errors.New("malformed record")

	// ErrNotFasta means an input declared or detected as FASTA contains no
	// header line. It matches ErrMalformedRecord.
	ErrNotFasta = fmt.Errorf("%w: not FASTA format", ErrMalformedRecord)

	// ErrCorruptContainer means a binary-format integrity failure, such as
	// bad BAM magic bytes or a truncated block.
	ErrCorruptContainer = errors.New("corrupt container")

	// ErrIO means an underlying open or read failure.
	ErrIO = errors.New("io failure")
)
