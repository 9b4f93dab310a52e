package dataset

import (
	"bufio"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"strings"

	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"
)

// Options controls how a tabular file is read.
type Options struct {
	// MaxRows limits records loaded; 0 means unlimited.
	MaxRows int
	// Delimiter for delimited text. If 0, sniffed from the header line.
	Delimiter rune
	// Numeric parsing locale. If DecimalSeparator is 0, auto-detect per value.
	DecimalSeparator   rune
	ThousandsSeparator rune
	// XLSX sheet selection; SheetIndex is 1-based and used when SheetName is empty.
	SheetName  string
	SheetIndex int
}

// DefaultOptions returns reasonable defaults for loading a dataset.
func DefaultOptions() Options {
	return Options{MaxRows: 1000000, SheetIndex: 1}
}

// ErrUnsupported indicates a file format that no loader accepts.
var ErrUnsupported = errors.New("unsupported dataset format")

// Loader reads one family of file formats into a Dataset.
type Loader interface {
	CanLoad(path string) bool
	Load(path string, opt Options) (*Dataset, error)
}

var registry []Loader

// Register adds a loader implementation to the registry.
func Register(l Loader) {
	registry = append(registry, l)
}

func init() {
	Register(xlsxLoader{})
	Register(delimitedLoader{})
}

// Load selects a loader by file name and reads the dataset.
func Load(path string, opt Options) (*Dataset, error) {
	for _, l := range registry {
		if l.CanLoad(path) {
			return l.Load(path, opt)
		}
	}
	return nil, fmt.Errorf("%w: %s", ErrUnsupported, filepath.Base(path))
}

type delimitedLoader struct{}

// baseExt strips a compression suffix and returns the inner extension.
func baseExt(path string) (ext string, compression string) {
	name := strings.ToLower(filepath.Base(path))
	switch {
	case strings.HasSuffix(name, ".gz"):
		compression = "gzip"
		name = strings.TrimSuffix(name, ".gz")
	case strings.HasSuffix(name, ".zst"):
		compression = "zstd"
		name = strings.TrimSuffix(name, ".zst")
	}
	return filepath.Ext(name), compression
}

func (delimitedLoader) CanLoad(path string) bool {
	ext, _ := baseExt(path)
	switch ext {
	case ".csv", ".tsv", ".txt":
		return true
	}
	return false
}

func (delimitedLoader) Load(path string, opt Options) (*Dataset, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open dataset: %w", err)
	}
	defer f.Close()

	var r io.Reader = f
	ext, compression := baseExt(path)
	switch compression {
	case "gzip":
		gz, err := gzip.NewReader(f)
		if err != nil {
			return nil, fmt.Errorf("open gzip stream: %w", err)
		}
		defer gz.Close()
		r = gz
	case "zstd":
		zr, err := zstd.NewReader(f)
		if err != nil {
			return nil, fmt.Errorf("open zstd stream: %w", err)
		}
		defer zr.Close()
		r = zr
	}
	if opt.Delimiter == 0 && ext == ".tsv" {
		opt.Delimiter = '\t'
	}
	return ReadDelimited(r, filepath.Base(path), opt)
}

// ReadDelimited parses delimited text with a header row.
func ReadDelimited(r io.Reader, name string, opt Options) (*Dataset, error) {
	br := bufio.NewReader(r)
	delim := opt.Delimiter
	if delim == 0 {
		delim = sniffDelimiter(br)
	}
	cr := csv.NewReader(br)
	cr.ReuseRecord = true
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true
	cr.Comma = delim

	header, err := cr.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return New(name, nil), nil
		}
		return nil, fmt.Errorf("read header: %w", err)
	}
	ds := New(name, normalizeHeader(header))
	maxRows := opt.MaxRows
	if maxRows <= 0 {
		maxRows = math.MaxInt
	}
	total := 0
	for {
		rec, err := cr.Read()
		if err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return nil, fmt.Errorf("read row %d: %w", total+1, err)
		}
		total++
		if ds.Len() >= maxRows {
			continue
		}
		row := make([]Value, len(ds.Columns))
		for j := range row {
			if j < len(rec) {
				row[j] = ParseCell(rec[j], opt)
			}
		}
		ds.Append(row)
	}
	ds.TotalRows = total
	return ds, nil
}

// sniffDelimiter peeks at the first line and picks the most frequent of
// ',', ';' and tab. Ties and empty input default to ','.
func sniffDelimiter(br *bufio.Reader) rune {
	line, _ := br.Peek(4096)
	if i := strings.IndexByte(string(line), '\n'); i >= 0 {
		line = line[:i]
	}
	best, bestCount := ',', 0
	for _, d := range []rune{',', ';', '\t'} {
		if c := strings.Count(string(line), string(d)); c > bestCount {
			best, bestCount = d, c
		}
	}
	return best
}

func normalizeHeader(header []string) []string {
	out := make([]string, len(header))
	seen := map[string]int{}
	for i, h := range header {
		name := strings.TrimSpace(strings.TrimPrefix(h, "\uFEFF"))
		if name == "" {
			name = fmt.Sprintf("column_%d", i+1)
		}
		if n, dup := seen[name]; dup {
			seen[name] = n + 1
			name = fmt.Sprintf("%s.%d", name, n)
		} else {
			seen[name] = 1
		}
		out[i] = name
	}
	return out
}
