// Package chart renders aggregated topic proportions as horizontal stacked
// bars, one bar per date.
package chart

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"topicviz/internal/domain"
)

// SeriesID identifies one rendered segment independently of draw order.
type SeriesID struct {
	Date  time.Time
	Topic int
}

// Segment is one topic's share of a bar. Label is the display name and
// TopicLabel the label table's value, empty for unlabelled topics.
type Segment struct {
	ID         SeriesID
	Label      string
	TopicLabel string
	Proportion float64
	Count      int
}

// Bar is the stack of segments for one date, ordered by topic.
type Bar struct {
	Date     time.Time
	Total    int
	Segments []Segment
}

// Series is a legend entry.
type Series struct {
	Topic int
	Label string
	Color lipgloss.Color
}

// Chart is a render-ready view over aggregated rows.
type Chart struct {
	Title  string
	Bars   []Bar
	Series []Series
	colors map[int]lipgloss.Color
}

// Cursor selects a segment: Bar indexes Chart.Bars, Segment indexes that
// bar's segments.
type Cursor struct {
	Bar     int
	Segment int
}

var palette = []lipgloss.Color{
	"#1f77b4", "#ff7f0e", "#2ca02c", "#d62728", "#9467bd",
	"#8c564b", "#e377c2", "#7f7f7f", "#bcbd22", "#17becf",
	"#aec7e8", "#ffbb78", "#98df8a", "#ff9896", "#c5b0d5",
}

// SegmentLabel is the display name of a topic, falling back to its id when
// the label table had no entry.
func SegmentLabel(topic int, label string, labeled bool) string {
	if !labeled {
		return fmt.Sprintf("Topic %d", topic)
	}
	return label
}

// Build groups rows (ordered by date, then topic) into bars. Colors are
// assigned by ascending topic id so the same topic keeps its color.
func Build(title string, rows []domain.AggregatedRow) Chart {
	c := Chart{Title: title, colors: map[int]lipgloss.Color{}}
	labels := map[int]string{}
	for _, r := range rows {
		n := len(c.Bars)
		if n == 0 || !c.Bars[n-1].Date.Equal(r.Date) {
			c.Bars = append(c.Bars, Bar{Date: r.Date, Total: r.TotalForDate})
			n++
		}
		label := SegmentLabel(r.Topic, r.TopicLabel, r.Labeled)
		c.Bars[n-1].Segments = append(c.Bars[n-1].Segments, Segment{
			ID:         SeriesID{Date: r.Date, Topic: r.Topic},
			Label:      label,
			TopicLabel: r.TopicLabel,
			Proportion: r.Proportion,
			Count:      r.Count,
		})
		if _, ok := labels[r.Topic]; !ok {
			labels[r.Topic] = label
		}
	}
	topics := make([]int, 0, len(labels))
	for t := range labels {
		topics = append(topics, t)
	}
	sort.Ints(topics)
	for i, t := range topics {
		color := palette[i%len(palette)]
		c.colors[t] = color
		c.Series = append(c.Series, Series{Topic: t, Label: labels[t], Color: color})
	}
	return c
}

// Empty reports whether there is nothing to draw.
func (c Chart) Empty() bool { return len(c.Bars) == 0 }

// At returns the segment under the cursor.
func (c Chart) At(cur Cursor) (Segment, bool) {
	if cur.Bar < 0 || cur.Bar >= len(c.Bars) {
		return Segment{}, false
	}
	segs := c.Bars[cur.Bar].Segments
	if cur.Segment < 0 || cur.Segment >= len(segs) {
		return Segment{}, false
	}
	return segs[cur.Segment], true
}

// Clamp moves cur inside the chart bounds.
func (c Chart) Clamp(cur Cursor) Cursor {
	if len(c.Bars) == 0 {
		return Cursor{}
	}
	cur.Bar = clamp(cur.Bar, 0, len(c.Bars)-1)
	cur.Segment = clamp(cur.Segment, 0, len(c.Bars[cur.Bar].Segments)-1)
	return cur
}

// Find returns the cursor addressing id, if it is present.
func (c Chart) Find(id SeriesID) (Cursor, bool) {
	for i, b := range c.Bars {
		if !b.Date.Equal(id.Date) {
			continue
		}
		for j, s := range b.Segments {
			if s.ID.Topic == id.Topic {
				return Cursor{Bar: i, Segment: j}, true
			}
		}
	}
	return Cursor{}, false
}

// Widths splits width cells between proportions using largest remainders,
// so the result always sums to width when proportions sum to one.
func Widths(proportions []float64, width int) []int {
	out := make([]int, len(proportions))
	if width <= 0 || len(proportions) == 0 {
		return out
	}
	type rem struct {
		idx  int
		frac float64
	}
	sum := 0.0
	for _, p := range proportions {
		sum += p
	}
	if sum <= 0 {
		return out
	}
	rems := make([]rem, len(proportions))
	used := 0
	for i, p := range proportions {
		exact := p / sum * float64(width)
		out[i] = int(exact)
		used += out[i]
		rems[i] = rem{idx: i, frac: exact - float64(out[i])}
	}
	sort.SliceStable(rems, func(i, j int) bool { return rems[i].frac > rems[j].frac })
	for i := 0; used < width; i++ {
		out[rems[i%len(rems)].idx]++
		used++
	}
	return out
}

var (
	dateStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	selectedDate  = lipgloss.NewStyle().Bold(true)
	selectedBlock = "▓"
	block         = "█"
)

// Window returns the half-open range of at most rows bars that keeps anchor
// in view, centred where possible. rows <= 0 selects every bar.
func (c Chart) Window(rows, anchor int) (int, int) {
	n := len(c.Bars)
	if rows <= 0 || rows >= n {
		return 0, n
	}
	start := clamp(anchor-rows/2, 0, n-rows)
	return start, start + rows
}

// Render draws one line per bar. The segment under cur is drawn with a
// lighter fill; pass a negative cur.Bar to draw without a selection.
func (c Chart) Render(width int, cur Cursor) string {
	return c.RenderRange(width, 0, len(c.Bars), cur)
}

// RenderRange draws bars[start:end] the same way Render does.
func (c Chart) RenderRange(width, start, end int, cur Cursor) string {
	if c.Empty() {
		return "No data found."
	}
	if width < 1 {
		width = 1
	}
	start = clamp(start, 0, len(c.Bars))
	end = clamp(end, start, len(c.Bars))
	var b strings.Builder
	for i := start; i < end; i++ {
		bar := c.Bars[i]
		props := make([]float64, len(bar.Segments))
		for j, s := range bar.Segments {
			props[j] = s.Proportion
		}
		widths := Widths(props, width)
		if i == cur.Bar {
			reserveCell(widths, cur.Segment)
		}
		label := domain.FormatDate(bar.Date)
		if i == cur.Bar {
			b.WriteString(selectedDate.Render("> " + label))
		} else {
			b.WriteString(dateStyle.Render("  " + label))
		}
		b.WriteString(" │")
		for j, s := range bar.Segments {
			if widths[j] == 0 {
				continue
			}
			fill := block
			if i == cur.Bar && j == cur.Segment {
				fill = selectedBlock
			}
			style := lipgloss.NewStyle().Foreground(c.colors[s.ID.Topic])
			b.WriteString(style.Render(strings.Repeat(fill, widths[j])))
		}
		b.WriteString(fmt.Sprintf("│ n=%d", bar.Total))
		if i < end-1 {
			b.WriteString("\n")
		}
	}
	return b.String()
}

// reserveCell gives the selected segment one cell taken from the widest
// segment when its share rounded down to nothing.
func reserveCell(widths []int, sel int) {
	if sel < 0 || sel >= len(widths) || widths[sel] > 0 {
		return
	}
	widest := 0
	for j, w := range widths {
		if w > widths[widest] {
			widest = j
		}
	}
	if widths[widest] < 2 {
		return
	}
	widths[widest]--
	widths[sel] = 1
}

// Legend lists every series with its color swatch, packing entries onto
// lines no wider than width. A width <= 0 puts each entry on its own line.
func (c Chart) Legend(width int) string {
	var lines []string
	line := ""
	for _, s := range c.Series {
		swatch := lipgloss.NewStyle().Foreground(s.Color).Render(block + block)
		entry := fmt.Sprintf("%s %d: %s", swatch, s.Topic, s.Label)
		switch {
		case line == "":
			line = entry
		case width > 0 && lipgloss.Width(line)+3+lipgloss.Width(entry) <= width:
			line += "   " + entry
		default:
			lines = append(lines, line)
			line = entry
		}
	}
	if line != "" {
		lines = append(lines, line)
	}
	return strings.Join(lines, "\n")
}

func clamp(v, lo, hi int) int {
	if hi < lo {
		return lo
	}
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
