package dataset

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
)

var naValues = map[string]struct{}{
	"": {}, "#N/A": {}, "#N/A N/A": {}, "#NA": {}, "-1.#IND": {}, "-1.#QNAN": {},
	"-NaN": {}, "-nan": {}, "1.#IND": {}, "1.#QNAN": {}, "<NA>": {}, "N/A": {},
	"NA": {}, "NULL": {}, "NaN": {}, "None": {}, "n/a": {}, "nan": {}, "null": {},
}

// IsNA reports whether a raw cell is one of the recognised missing-value markers
func IsNA(cell string) bool {
	_, ok := naValues[cell]
	return ok
}

var separatorCandidates = []rune{',', ';', '\t', '|'}

const sniffLines = 20

// Metadata describes how a CSV file was read
type Metadata struct {
	Encoding  string `json:"encoding"`
	Separator string `json:"separator"`
	HasHeader bool   `json:"has_header"`
}

type loadOptions struct {
	separator  rune
	parseDates bool
}

// Option customizes Load
type Option func(*loadOptions)

// WithSeparator skips delimiter sniffing
func WithSeparator(sep rune) Option {
	return func(o *loadOptions) {
		o.separator = sep
	}
}

// WithParseDates lets columns whose values are all timestamps become datetime columns
func WithParseDates() Option {
	return func(o *loadOptions) {
		o.parseDates = true
	}
}

// LoadFile reads and parses the CSV file at path
func LoadFile(path string, opts ...Option) (*Frame, *Metadata, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open csv file: %w", err)
	}
	defer f.Close()

	return Load(f, opts...)
}

// Load reads CSV data with a header row, detecting encoding and separator
func Load(r io.Reader, opts ...Option) (*Frame, *Metadata, error) {
	o := &loadOptions{}
	for _, opt := range opts {
		opt(o)
	}

	data, err := io.ReadAll(r)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to read csv data: %w", err)
	}

	meta := &Metadata{
		Encoding:  DetectEncoding(data),
		HasHeader: true,
	}

	text, err := Decode(data, meta.Encoding)
	if err != nil {
		return nil, nil, err
	}
	text = strings.TrimPrefix(text, "\ufeff")
	if strings.TrimSpace(text) == "" {
		return nil, nil, ErrEmptyFile
	}

	sep := o.separator
	if sep == 0 {
		sep = DetectSeparator(text)
	}
	meta.Separator = string(sep)

	records, err := readRecords(text, sep)
	if err != nil {
		return nil, nil, err
	}
	if len(records) == 0 {
		return nil, nil, ErrNoColumns
	}

	header := uniqueNames(records[0])
	rows := records[1:]

	raw := make([][]string, len(header))
	for j := range raw {
		raw[j] = make([]string, len(rows))
	}
	for i, row := range rows {
		if len(row) > len(header) {
			return nil, nil, fmt.Errorf("%w: expected %d fields in line %d, saw %d", ErrMalformedRow, len(header), i+2, len(row))
		}
		for j := range header {
			if j < len(row) {
				raw[j][i] = row[j]
			}
		}
	}

	columns := make([]*Column, len(header))
	for j, name := range header {
		columns[j] = inferColumn(name, raw[j], o.parseDates)
	}

	frame, err := NewFrame(columns)
	if err != nil {
		return nil, nil, err
	}
	return frame, meta, nil
}

func readRecords(text string, sep rune) ([][]string, error) {
	reader := csv.NewReader(strings.NewReader(text))
	reader.Comma = sep
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	var records [][]string
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to parse csv: %w", err)
		}
		records = append(records, record)
	}
	return records, nil
}

// uniqueNames fills blank headers and suffixes repeated ones with ".1", ".2", ...
func uniqueNames(header []string) []string {
	names := make([]string, len(header))
	seen := make(map[string]int, len(header))
	for i, name := range header {
		if strings.TrimSpace(name) == "" {
			name = fmt.Sprintf("Unnamed: %d", i)
		}
		if n, ok := seen[name]; ok {
			seen[name] = n + 1
			candidate := fmt.Sprintf("%s.%d", name, n+1)
			for {
				if _, taken := seen[candidate]; !taken {
					break
				}
				seen[name]++
				candidate = fmt.Sprintf("%s.%d", name, seen[name])
			}
			name = candidate
		}
		seen[name] = 0
		names[i] = name
	}
	return names
}

// DetectSeparator picks the delimiter that splits the leading lines into the
// most fields with a consistent count. Comma wins ties and is the fallback.
func DetectSeparator(text string) rune {
	lines := strings.SplitN(text, "\n", sniffLines+1)
	if len(lines) > sniffLines {
		lines = lines[:sniffLines]
	}
	sample := strings.Join(lines, "\n")

	best, bestFields, bestConsistent := ',', 1, false
	for _, sep := range separatorCandidates {
		fields, consistent := sniff(sample, sep)
		if fields <= 1 {
			continue
		}
		switch {
		case consistent && !bestConsistent,
			consistent == bestConsistent && fields > bestFields:
			best, bestFields, bestConsistent = sep, fields, consistent
		}
	}
	return best
}

func sniff(sample string, sep rune) (fields int, consistent bool) {
	reader := csv.NewReader(bytes.NewBufferString(sample))
	reader.Comma = sep
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	consistent = true
	for {
		record, err := reader.Read()
		if err != nil {
			// io.EOF or a truncated trailing record in the sample
			break
		}
		if fields == 0 {
			fields = len(record)
			continue
		}
		if len(record) != fields {
			consistent = false
		}
	}
	return fields, consistent
}
