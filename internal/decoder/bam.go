package decoder

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
)

// BAM flag bit marking a record as unmapped.
const bamFlagUnmapped = 0x4

// Size of the fixed-layout prefix of every BAM alignment record.
const bamFixedRecordSize = 32

// bamReader walks BAM alignment records over an already-decompressed BGZF
// stream. Only the flag word and the stored sequence length field are
// decoded; base calls, names, CIGAR and tags are skipped. Records not
// flagged unmapped are not length sources.
type bamReader struct {
	reader io.Reader
	offset int64 // bytes consumed of the uncompressed stream
	record int
	buf    [bamFixedRecordSize]byte
}

// newBAMReader validates the BAM magic bytes and skips the header text and
// reference dictionary, leaving the reader positioned at the first alignment
// record.
func newBAMReader(r io.Reader) (*bamReader, error) {
	d := &bamReader{reader: r}

	magic := d.buf[:4]
	if err := d.readFull(magic, "magic bytes"); err != nil {
		return nil, err
	}
	if magic[0] != 'B' || magic[1] != 'A' || magic[2] != 'M' || magic[3] != 0x01 {
		return nil, fmt.Errorf("%w: bad magic bytes %q at offset 0", ErrCorruptContainer, magic)
	}

	textLen, err := d.readInt32("header text length")
	if err != nil {
		return nil, err
	}
	if textLen < 0 {
		return nil, d.corrupt(fmt.Sprintf("negative header text length %d", textLen))
	}
	if err := d.skip(int64(textLen), "header text"); err != nil {
		return nil, err
	}

	numRefs, err := d.readInt32("reference count")
	if err != nil {
		return nil, err
	}
	if numRefs < 0 {
		return nil, d.corrupt(fmt.Sprintf("negative reference count %d", numRefs))
	}
	for i := int32(0); i < numRefs; i++ {
		nameLen, err := d.readInt32("reference name length")
		if err != nil {
			return nil, err
		}
		if nameLen < 0 {
			return nil, d.corrupt(fmt.Sprintf("negative reference name length %d", nameLen))
		}
		// Name plus the 4-byte reference length field.
		if err := d.skip(int64(nameLen)+4, "reference entry"); err != nil {
			return nil, err
		}
	}

	return d, nil
}

// Next returns the stored sequence length of the next unmapped record.
// Mapped records are skipped. Returns io.EOF at the end of the container.
func (d *bamReader) Next() (int, error) {
	for {
		blockSize, err := d.readBlockSize()
		if err != nil {
			return 0, err
		}
		if blockSize < bamFixedRecordSize {
			return 0, d.corrupt(fmt.Sprintf("alignment block size %d below fixed record size", blockSize))
		}

		if err := d.readFull(d.buf[:], "alignment record"); err != nil {
			return 0, err
		}
		flag := binary.LittleEndian.Uint16(d.buf[14:16])
		seqLen := int32(binary.LittleEndian.Uint32(d.buf[16:20]))
		if seqLen < 0 {
			return 0, d.corrupt(fmt.Sprintf("negative sequence length %d", seqLen))
		}

		// Variable-length tail: read name, CIGAR, packed bases, quality, tags.
		if err := d.skip(int64(blockSize)-bamFixedRecordSize, "alignment data"); err != nil {
			return 0, err
		}
		d.record++

		if flag&bamFlagUnmapped != 0 {
			return int(seqLen), nil
		}
	}
}

// readBlockSize reads the next record's block size. A clean EOF at this
// boundary terminates the stream; a partial read is a truncated container.
func (d *bamReader) readBlockSize() (int32, error) {
	n, err := io.ReadFull(d.reader, d.buf[:4])
	if errors.Is(err, io.EOF) && n == 0 {
		return 0, io.EOF
	}
	if err != nil {
		return 0, d.readFailure(err, "block size")
	}
	d.offset += 4
	return int32(binary.LittleEndian.Uint32(d.buf[:4])), nil
}

func (d *bamReader) readInt32(what string) (int32, error) {
	if err := d.readFull(d.buf[:4], what); err != nil {
		return 0, err
	}
	return int32(binary.LittleEndian.Uint32(d.buf[:4])), nil
}

func (d *bamReader) readFull(buf []byte, what string) error {
	if _, err := io.ReadFull(d.reader, buf); err != nil {
		return d.readFailure(err, what)
	}
	d.offset += int64(len(buf))
	return nil
}

func (d *bamReader) skip(n int64, what string) error {
	if n == 0 {
		return nil
	}
	if _, err := io.CopyN(io.Discard, d.reader, n); err != nil {
		return d.readFailure(err, what)
	}
	d.offset += n
	return nil
}

func (d *bamReader) readFailure(err error, what string) error {
	if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
		return d.corrupt(fmt.Sprintf("truncated %s", what))
	}
	return d.corrupt(fmt.Sprintf("reading %s: %v", what, err))
}

func (d *bamReader) corrupt(msg string) error {
	return fmt.Errorf("%w: %s (record %d, offset %d)", ErrCorruptContainer, msg, d.record, d.offset)
}
