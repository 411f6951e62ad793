// seqlens computes sequence length statistics (total bases, total sequences,
// mean, median and N-scores) from FASTQ, FASTA and unaligned BAM files.
package main

import (
	"bufio"
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"

	"github.com/vertti/seqlens/internal/decoder"
	"github.com/vertti/seqlens/internal/stats"
)

var version = "dev"

const (
	exitSuccess = 0
	exitError   = 1
)

var defaultPercentiles = []int{50, 75, 90}

type config struct {
	inputFile   string
	format      string
	percentiles string
	outputFile  string
	lengthsFile string
	quiet       bool
}

func main() {
	os.Exit(run())
}

func run() int {
	cfg, done := parseFlags()
	if done {
		return exitSuccess
	}

	if err := execute(cfg); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		return exitError
	}

	return exitSuccess
}

func parseFlags() (config, bool) {
	var cfg config
	var showVersion, showHelp bool

	flag.StringVar(&cfg.inputFile, "i", "", "input file (default: stdin)")
	flag.StringVar(&cfg.format, "f", "auto", "input format: fastq|fasta|bam|auto")
	flag.StringVar(&cfg.percentiles, "n", "50,75,90", "comma-separated N-score percentiles")
	flag.StringVar(&cfg.outputFile, "o", "", "statistics output file (default: stdout)")
	flag.StringVar(&cfg.lengthsFile, "l", "", "optional raw length dump file (.gz/.zst compresses)")
	flag.BoolVar(&cfg.quiet, "q", false, "suppress progress logging")
	flag.BoolVar(&showVersion, "version", false, "show version and exit")
	flag.BoolVar(&showHelp, "h", false, "show help")

	flag.Usage = usage
	flag.Parse()

	if showHelp {
		flag.Usage()
		return cfg, true
	}

	if showVersion {
		fmt.Printf("seqlens version %s\n", version)
		return cfg, true
	}

	// Handle positional argument
	if args := flag.Args(); len(args) > 0 && cfg.inputFile == "" {
		cfg.inputFile = args[0]
	}

	return cfg, false
}

func usage() {
	fmt.Fprintf(os.Stderr, `seqlens - sequence length statistics for FASTQ/FASTA/BAM

Usage:
  seqlens [options] [input]

Options:
`)
	flag.PrintDefaults()
	fmt.Fprintf(os.Stderr, `
Examples:
  seqlens reads.fastq.gz                     Stats as JSON to stdout
  seqlens -f bam -i reads.bam -o stats.json  Unaligned BAM, explicit format
  seqlens -n 10,25,50,75,90 assembly.fa      Custom N-score set
  seqlens -l lengths.json.gz reads.fq        Also dump raw lengths
  cat reads.fq | seqlens                     Read from stdin
`)
}

func execute(cfg config) error {
	percentiles, err := parsePercentiles(cfg.percentiles)
	if err != nil {
		return err
	}

	format, err := decoder.ParseFormat(cfg.format)
	if err != nil {
		return err
	}

	handle, err := decoder.Open(cfg.inputFile, format)
	if err != nil {
		return err
	}
	defer handle.Close() //nolint:errcheck // read-only source close during cleanup

	opts := &stats.CollectOptions{RetainRaw: cfg.lengthsFile != ""}
	if !cfg.quiet {
		opts.Progress = func(seqs uint64) {
			log.Printf("processed %d sequences", seqs)
		}
	}

	collection, err := stats.Collect(context.Background(), handle, opts)
	if err != nil {
		return err
	}
	if !cfg.quiet {
		log.Printf("finished loading %s input with %d sequences (min=%d max=%d)",
			handle.Format(), collection.TotalSequences(), collection.MinLength(), collection.MaxLength())
	}

	result, err := stats.Compute(collection, percentiles)
	if err != nil {
		return err
	}

	if err := writeResult(cfg.outputFile, result); err != nil {
		return err
	}

	if cfg.lengthsFile != "" {
		if err := writeLengths(cfg.lengthsFile, collection.Raw()); err != nil {
			return err
		}
	}

	return nil
}

// parsePercentiles parses the -n flag. Each value must be an integer strictly
// between 0 and 100; duplicates are allowed and collapse downstream.
func parsePercentiles(s string) ([]int, error) {
	if strings.TrimSpace(s) == "" {
		return defaultPercentiles, nil
	}

	parts := strings.Split(s, ",")
	percentiles := make([]int, 0, len(parts))
	for _, part := range parts {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		p, err := strconv.Atoi(part)
		if err != nil {
			return nil, fmt.Errorf("invalid N-score percentile %q", part)
		}
		if p <= 0 || p >= 100 {
			return nil, fmt.Errorf("N-score percentile %d out of range (0,100)", p)
		}
		percentiles = append(percentiles, p)
	}
	if len(percentiles) == 0 {
		return defaultPercentiles, nil
	}
	return percentiles, nil
}

func writeResult(path string, result *stats.Result) error {
	out, cleanup, err := openOutput(path)
	if err != nil {
		return err
	}
	defer cleanup()

	data, err := json.Marshal(result)
	if err != nil {
		return fmt.Errorf("marshaling statistics: %w", err)
	}
	data = append(data, '\n')
	if _, err := out.Write(data); err != nil {
		return fmt.Errorf("writing statistics: %w", err)
	}
	return nil
}

// writeLengths dumps the raw insertion-order lengths as a JSON array,
// compressing by destination suffix.
func writeLengths(path string, lengths []int) error {
	out, cleanup, err := openOutput(path)
	if err != nil {
		return err
	}
	defer cleanup()

	w, finish, err := wrapOutputCompressed(path, out)
	if err != nil {
		return err
	}

	buf := make([]byte, 0, 1<<16)
	buf = append(buf, '[')
	for i, l := range lengths {
		if i > 0 {
			buf = append(buf, ',')
		}
		buf = strconv.AppendInt(buf, int64(l), 10)
		if len(buf) >= 1<<16-24 {
			if _, err := w.Write(buf); err != nil {
				return fmt.Errorf("writing lengths: %w", err)
			}
			buf = buf[:0]
		}
	}
	buf = append(buf, ']', '\n')
	if _, err := w.Write(buf); err != nil {
		return fmt.Errorf("writing lengths: %w", err)
	}

	return finish()
}

func wrapOutputCompressed(path string, out io.Writer) (io.Writer, func() error, error) {
	lower := strings.ToLower(path)
	switch {
	case strings.HasSuffix(lower, ".gz"):
		gz := gzip.NewWriter(out)
		return gz, gz.Close, nil
	case strings.HasSuffix(lower, ".zst"), strings.HasSuffix(lower, ".zstd"):
		zw, err := zstd.NewWriter(out)
		if err != nil {
			return nil, nil, fmt.Errorf("creating zstd writer: %w", err)
		}
		return zw, zw.Close, nil
	}
	return out, func() error { return nil }, nil
}

func openOutput(path string) (io.Writer, func(), error) {
	if path == "" || path == "-" {
		bw := bufio.NewWriterSize(os.Stdout, 1<<20)
		return bw, func() { _ = bw.Flush() }, nil
	}

	f, err := os.Create(path) //nolint:gosec // CLI tool needs to create user-specified files
	if err != nil {
		return nil, nil, fmt.Errorf("cannot create output: %w", err)
	}
	bw := bufio.NewWriterSize(f, 1<<20)
	return bw, func() { _ = bw.Flush(); _ = f.Close() }, nil
}
