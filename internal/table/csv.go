package table

import (
	"bufio"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
	"strings"
	"time"

	"topicviz/internal/domain"
)

const (
	colDate           = "Date"
	colTopic          = "Topic"
	colOriginalText   = "original_text"
	colDocument       = "Document"
	colRepresentation = "Representation"
)

var dateLayouts = []string{
	"2006-01-02",
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02 15:04:05Z07:00",
	"2006-01-02 15:04:05.999999999Z07:00",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02T15:04:05",
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04",
	"2006/01/02",
	"2006/01/02 15:04:05",
	"01/02/2006",
	"1/2/2006",
	"01/02/2006 15:04",
	"1/2/2006 15:04",
	"01/02/2006 15:04:05",
	time.RubyDate,
	"January 2, 2006",
	"Jan 2, 2006",
	"2 Jan 2006",
}

// ParseDate parses s with the first matching layout and truncates it to a
// calendar date at UTC midnight. The date is taken in the value's own zone.
func ParseDate(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC), true
		}
	}
	return time.Time{}, false
}

// ParseTopic accepts integer-like values such as "3", "-1" or "3.0".
func ParseTopic(s string) (int, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, false
	}
	if n, err := strconv.Atoi(s); err == nil {
		return n, true
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) || f != math.Trunc(f) || math.Abs(f) > math.MaxInt32 {
		return 0, false
	}
	return int(f), true
}

func newReader(r io.Reader) *csv.Reader {
	reader := csv.NewReader(bufio.NewReader(r))
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true
	return reader
}

func headerIndex(header []string) map[string]int {
	idx := make(map[string]int, len(header))
	for i, h := range header {
		h = strings.TrimSpace(strings.TrimPrefix(h, "\ufeff"))
		if _, seen := idx[h]; !seen {
			idx[h] = i
		}
	}
	return idx
}

func field(record []string, i int) string {
	if i < 0 || i >= len(record) {
		return ""
	}
	return record[i]
}

// LoadDocuments reads a document table. Rows whose date or topic cannot be
// parsed are dropped; source order is preserved.
func LoadDocuments(path string) ([]domain.DocumentRow, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open document table: %w", err)
	}
	defer f.Close()
	rows, err := ReadDocuments(f)
	if err != nil {
		return nil, fmt.Errorf("read document table %s: %w", path, err)
	}
	return rows, nil
}

// ReadDocuments is LoadDocuments over an arbitrary reader.
func ReadDocuments(r io.Reader) ([]domain.DocumentRow, error) {
	reader := newReader(r)
	header, err := reader.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, errors.New("empty csv")
		}
		return nil, err
	}
	cols := headerIndex(header)
	dateCol, ok := cols[colDate]
	if !ok {
		return nil, fmt.Errorf("missing %q column", colDate)
	}
	topicCol, ok := cols[colTopic]
	if !ok {
		return nil, fmt.Errorf("missing %q column", colTopic)
	}
	textCol := -1
	if i, ok := cols[colOriginalText]; ok {
		textCol = i
	} else if i, ok := cols[colDocument]; ok {
		textCol = i
	}

	var rows []domain.DocumentRow
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, err
		}
		date, ok := ParseDate(field(record, dateCol))
		if !ok {
			continue
		}
		topic, ok := ParseTopic(field(record, topicCol))
		if !ok {
			continue
		}
		rows = append(rows, domain.DocumentRow{Date: date, Topic: topic, Text: field(record, textCol)})
	}
	return rows, nil
}

// LabelOptions controls how representations become labels.
type LabelOptions struct {
	MaxWords int
	Unknown  string
}

func (o LabelOptions) withDefaults() LabelOptions {
	if o.MaxWords <= 0 {
		o.MaxWords = 5
	}
	if o.Unknown == "" {
		o.Unknown = "Unknown"
	}
	return o
}

// LoadLabels reads a topic representation table.
func LoadLabels(path string, opts LabelOptions) ([]domain.LabelRow, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open label table: %w", err)
	}
	defer f.Close()
	rows, err := ReadLabels(f, opts)
	if err != nil {
		return nil, fmt.Errorf("read label table %s: %w", path, err)
	}
	return rows, nil
}

// ReadLabels is LoadLabels over an arbitrary reader. Rows without an integer
// topic are skipped; rows with a missing or malformed representation get the
// Unknown label.
func ReadLabels(r io.Reader, opts LabelOptions) ([]domain.LabelRow, error) {
	opts = opts.withDefaults()
	reader := newReader(r)
	header, err := reader.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, errors.New("empty csv")
		}
		return nil, err
	}
	cols := headerIndex(header)
	topicCol, ok := cols[colTopic]
	if !ok {
		return nil, fmt.Errorf("missing %q column", colTopic)
	}
	reprCol, ok := cols[colRepresentation]
	if !ok {
		reprCol = -1
	}

	var rows []domain.LabelRow
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, err
		}
		topic, ok := ParseTopic(field(record, topicCol))
		if !ok {
			continue
		}
		row := domain.LabelRow{Topic: topic, Label: opts.Unknown}
		if items, err := ParseList(field(record, reprCol)); err == nil {
			row.Representation = items
			row.Label = BuildLabel(items, opts.MaxWords)
		}
		rows = append(rows, row)
	}
	return rows, nil
}

// BuildLabel joins the first maxWords items with single spaces.
func BuildLabel(items []string, maxWords int) string {
	if maxWords > 0 && len(items) > maxWords {
		items = items[:maxWords]
	}
	return strings.Join(items, " ")
}
