// Package output renders index listings and aggregated tables for the
// non-interactive mode.
package output

import (
	"io"
	"strconv"

	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"

	"topicviz/internal/chart"
	"topicviz/internal/domain"
)

func newTable(w io.Writer) *tablewriter.Table {
	return tablewriter.NewTable(w,
		tablewriter.WithConfig(tablewriter.Config{
			Row: tw.CellConfig{
				Formatting: tw.CellFormatting{AutoWrap: tw.WrapNone},
				Alignment:  tw.CellAlignment{Global: tw.AlignLeft},
			},
			Header: tw.CellConfig{
				Formatting: tw.CellFormatting{AutoFormat: tw.Off},
				Alignment:  tw.CellAlignment{Global: tw.AlignLeft},
			},
		}),
		tablewriter.WithRendition(tw.Rendition{
			Borders: tw.BorderNone,
			Settings: tw.Settings{
				Separators: tw.Separators{ShowHeader: tw.Off},
			},
		}),
	)
}

func render(w io.Writer, header []string, rows [][]string) error {
	table := newTable(w)
	table.Header(header)
	if err := table.Bulk(rows); err != nil {
		return err
	}
	return table.Render()
}

// IndexRows flattens the index listing into table rows.
func IndexRows(keys []domain.IndexKey, lookup func(domain.IndexKey) (domain.IndexEntry, bool)) [][]string {
	rows := make([][]string, 0, len(keys))
	for _, k := range keys {
		e, _ := lookup(k)
		rows = append(rows, []string{k.ModelID, k.K, e.DocumentPath, e.LabelPath})
	}
	return rows
}

// WriteIndex prints one line per indexed selection.
func WriteIndex(w io.Writer, keys []domain.IndexKey, lookup func(domain.IndexKey) (domain.IndexEntry, bool)) error {
	return render(w, []string{"MODEL", "K", "DOCUMENTS", "LABELS"}, IndexRows(keys, lookup))
}

// AggregatedRows flattens aggregated rows into table rows.
func AggregatedRows(rows []domain.AggregatedRow) [][]string {
	out := make([][]string, 0, len(rows))
	for _, r := range rows {
		out = append(out, []string{
			domain.FormatDate(r.Date),
			strconv.Itoa(r.Topic),
			strconv.Itoa(r.Count),
			strconv.Itoa(r.TotalForDate),
			strconv.FormatFloat(r.Proportion, 'f', 4, 64),
			chart.SegmentLabel(r.Topic, r.TopicLabel, r.Labeled),
		})
	}
	return out
}

// WriteAggregated prints the proportion table.
func WriteAggregated(w io.Writer, rows []domain.AggregatedRow) error {
	return render(w, []string{"DATE", "TOPIC", "COUNT", "TOTAL", "PROPORTION", "LABEL"}, AggregatedRows(rows))
}
