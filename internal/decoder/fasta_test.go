package decoder

import (
	"bufio"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestFASTA(input string) *fastaReader {
	return newFASTAReader(bufio.NewReader(strings.NewReader(input)))
}

func TestFASTASingleRecord(t *testing.T) {
	d := newTestFASTA(">seq1 description\nACGTACGT\n")

	got, err := d.Next()
	require.NoError(t, err)
	assert.Equal(t, 8, got)

	_, err = d.Next()
	assert.ErrorIs(t, err, io.EOF)
}

func TestFASTAMultiLineRecord(t *testing.T) {
	input := `>seq1
ACGT
ACGTAC
AC
>seq2
GGGG
`
	d := newTestFASTA(input)

	got, err := d.Next()
	require.NoError(t, err)
	assert.Equal(t, 12, got)

	got, err = d.Next()
	require.NoError(t, err)
	assert.Equal(t, 4, got)

	_, err = d.Next()
	assert.ErrorIs(t, err, io.EOF)
}

func TestFASTABlankLines(t *testing.T) {
	input := "\n\n>seq1\nACGT\n\nACGT\n"
	d := newTestFASTA(input)

	got, err := d.Next()
	require.NoError(t, err)
	assert.Equal(t, 8, got)
}

func TestFASTAHeaderOnlyRecord(t *testing.T) {
	input := ">empty\n>seq2\nACGT\n"
	d := newTestFASTA(input)

	got, err := d.Next()
	require.NoError(t, err)
	assert.Equal(t, 0, got)

	got, err = d.Next()
	require.NoError(t, err)
	assert.Equal(t, 4, got)
}

func TestFASTANoTrailingNewline(t *testing.T) {
	d := newTestFASTA(">seq1\nACGTA")

	got, err := d.Next()
	require.NoError(t, err)
	assert.Equal(t, 5, got)
}

func TestFASTAEmptyFileIsZeroRecords(t *testing.T) {
	d := newTestFASTA("")
	_, err := d.Next()
	assert.ErrorIs(t, err, io.EOF)
}

func TestFASTANoHeader(t *testing.T) {
	d := newTestFASTA("ACGTACGT\nACGT\n")

	_, err := d.Next()
	require.ErrorIs(t, err, ErrNotFasta)
	// NotFasta is a structural violation of the declared format.
	assert.ErrorIs(t, err, ErrMalformedRecord)
}

func TestFASTAWindowsLineEndings(t *testing.T) {
	d := newTestFASTA(">seq1\r\nACGT\r\nAC\r\n")

	got, err := d.Next()
	require.NoError(t, err)
	assert.Equal(t, 6, got)
}
