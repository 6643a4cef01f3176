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
	"strconv"
	"strings"

	"gonum.org/v1/gonum/mat"
)

// LoadOptions controls how delimited text tables are parsed.
type LoadOptions struct {
	// Delimiter separates columns. Zero means ','.
	Delimiter rune
	// Skip drops this many leading rows of every file.
	Skip int
	// FeatureScale multiplies every feature value. Zero means 1.
	FeatureScale float64
	// LabelFile names a file holding one label per line. When it is set the
	// tables carry no label column.
	LabelFile string
	// LabelHeader marks LabelFile as starting with a line holding the count.
	LabelHeader bool
}

// Load reads the table at path, which is either a file or a directory of
// shards that are concatenated in sorted order. Rows shorter than the widest
// row are padded with zeros.
func Load(path string, opts LoadOptions) (*Set, error) {
	shards, err := Resolve(path)
	if err != nil {
		return nil, err
	}
	if opts.LabelFile != "" {
		shards = withoutFile(shards, opts.LabelFile)
		if len(shards) == 0 {
			return nil, fmt.Errorf("%s holds only the label file: %w", path, ErrEmpty)
		}
	}
	b := newTableBuilder(opts, opts.LabelFile == "")
	for _, shard := range shards {
		if err := b.readFile(shard); err != nil {
			return nil, err
		}
	}
	if opts.LabelFile != "" {
		f, err := os.Open(opts.LabelFile)
		if err != nil {
			return nil, fmt.Errorf("open labels: %w", err)
		}
		defer f.Close()
		labels, err := ReadLabels(f, opts.LabelHeader)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", opts.LabelFile, err)
		}
		b.labels = labels
	}
	return b.build()
}

// Read parses a single table whose first column holds the label.
func Read(r io.Reader, opts LoadOptions) (*Set, error) {
	opts.LabelFile = ""
	b := newTableBuilder(opts, true)
	if err := b.read(r, "input"); err != nil {
		return nil, err
	}
	return b.build()
}

// ReadLabels reads one integer label per line. With header set, the first
// non-blank line holds the number of labels that follow.
func ReadLabels(r io.Reader, header bool) ([]int, error) {
	scanner := bufio.NewScanner(r)
	want := -1
	var labels []int
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		fields := strings.Fields(scanner.Text())
		if len(fields) == 0 {
			continue
		}
		if header && want < 0 {
			n, err := strconv.Atoi(fields[0])
			if err != nil || n < 0 {
				return nil, fmt.Errorf("line %d: invalid label count %q", lineNo, fields[0])
			}
			want = n
			continue
		}
		label, err := parseLabel(fields[0])
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", lineNo, err)
		}
		labels = append(labels, label)
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	if header {
		if want < 0 {
			return nil, errors.New("missing label count header")
		}
		if len(labels) != want {
			return nil, fmt.Errorf("header announces %d labels, found %d", want, len(labels))
		}
	}
	return labels, nil
}

type tableBuilder struct {
	opts     LoadOptions
	labelled bool
	rows     [][]float64
	labels   []int
	width    int
}

func newTableBuilder(opts LoadOptions, labelled bool) *tableBuilder {
	if opts.Delimiter == 0 {
		opts.Delimiter = ','
	}
	if opts.FeatureScale == 0 {
		opts.FeatureScale = 1
	}
	return &tableBuilder{opts: opts, labelled: labelled}
}

func (b *tableBuilder) readFile(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open table: %w", err)
	}
	defer f.Close()
	return b.read(bufio.NewReader(f), path)
}

func (b *tableBuilder) read(r io.Reader, name string) error {
	cr := csv.NewReader(r)
	cr.Comma = b.opts.Delimiter
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true
	cr.TrimLeadingSpace = true

	for rec := 0; ; rec++ {
		record, err := cr.Read()
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("read %s: %w", name, err)
		}
		if rec < b.opts.Skip {
			continue
		}
		line, _ := cr.FieldPos(0)

		tokens := record[:0]
		for _, tok := range record {
			if tok = strings.TrimSpace(tok); tok != "" {
				tokens = append(tokens, tok)
			}
		}
		if len(tokens) == 0 {
			continue
		}
		if b.labelled {
			label, err := parseLabel(tokens[0])
			if err != nil {
				return fmt.Errorf("%s:%d: %w", name, line, err)
			}
			b.labels = append(b.labels, label)
			tokens = tokens[1:]
		}

		row := make([]float64, len(tokens))
		for i, tok := range tokens {
			v, err := strconv.ParseFloat(tok, 64)
			if err != nil {
				return fmt.Errorf("%s:%d: column %d: %w", name, line, i+1, err)
			}
			row[i] = v * b.opts.FeatureScale
		}
		b.rows = append(b.rows, row)
		if len(row) > b.width {
			b.width = len(row)
		}
	}
}

func (b *tableBuilder) build() (*Set, error) {
	n := len(b.rows)
	if n == 0 || b.width == 0 {
		return nil, ErrEmpty
	}
	if len(b.labels) != n {
		return nil, fmt.Errorf("dataset: %d rows but %d labels", n, len(b.labels))
	}
	features := mat.NewDense(b.width, n, nil)
	for j, row := range b.rows {
		for i, v := range row {
			features.Set(i, j, v)
		}
		b.rows[j] = nil
	}
	return NewSet(features, b.labels)
}

func parseLabel(tok string) (int, error) {
	if label, err := strconv.Atoi(tok); err == nil {
		return label, nil
	}
	v, err := strconv.ParseFloat(tok, 64)
	if err != nil || v != math.Trunc(v) || math.Abs(v) > math.MaxInt32 {
		return 0, fmt.Errorf("invalid label %q", tok)
	}
	return int(v), nil
}

// withoutFile drops every path naming the same file as target.
func withoutFile(paths []string, target string) []string {
	targetInfo, err := os.Stat(target)
	if err != nil {
		return paths
	}
	kept := paths[:0:0]
	for _, p := range paths {
		if filepath.Clean(p) == filepath.Clean(target) {
			continue
		}
		if info, err := os.Stat(p); err == nil && os.SameFile(info, targetInfo) {
			continue
		}
		kept = append(kept, p)
	}
	return kept
}
