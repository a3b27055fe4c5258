package tui

import (
	"fmt"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"topicviz/internal/aggregator"
	"topicviz/internal/domain"
	"topicviz/internal/service"
)

func day(d int) time.Time { return time.Date(2024, 1, d, 0, 0, 0, 0, time.UTC) }

type fakeService struct {
	models   []string
	kvals    []string
	datasets map[domain.IndexKey]*domain.Dataset
	calls    []domain.IndexKey
}

func (f *fakeService) ListModels() []string  { return f.models }
func (f *fakeService) ListKValues() []string { return f.kvals }

func (f *fakeService) Aggregate(modelID, k string) (*domain.Dataset, error) {
	key := domain.IndexKey{ModelID: modelID, K: k}
	f.calls = append(f.calls, key)
	ds, ok := f.datasets[key]
	if !ok {
		return nil, fmt.Errorf("%w: %v", domain.ErrNotFound, key)
	}
	return ds, nil
}

func (f *fakeService) ResolveSeries(raw []domain.DocumentRow, date time.Time, topic int) []string {
	var out []string
	for _, r := range raw {
		if r.Date.Equal(date) && r.Topic == topic && r.Text != "" {
			out = append(out, r.Text)
		}
	}
	return out
}

func (f *fakeService) Describe(date time.Time, topic int, label string, texts []string) string {
	return service.FormatClick(date, topic, label, texts)
}

func newFake() *fakeService {
	raw := []domain.DocumentRow{
		{Date: day(1), Topic: 0, Text: "a"},
		{Date: day(1), Topic: 1, Text: "b"},
		{Date: day(1), Topic: 0, Text: "c"},
		{Date: day(2), Topic: 1, Text: "d"},
	}
	labels := []domain.LabelRow{{Topic: 0, Label: "price"}, {Topic: 1, Label: "care"}}
	ds := &domain.Dataset{
		Key:        domain.IndexKey{ModelID: "positiveUHC", K: "3"},
		Raw:        raw,
		Aggregated: aggregator.Aggregate(raw, labels),
	}
	return &fakeService{
		models:   []string{"positiveUHC", "negativeLM"},
		kvals:    []string{"3", "10"},
		datasets: map[domain.IndexKey]*domain.Dataset{ds.Key: ds},
	}
}

func press(m Model, keys ...tea.KeyMsg) Model {
	for _, k := range keys {
		next, _ := m.Update(k)
		m = next.(Model)
	}
	return m
}

var (
	keyRight = tea.KeyMsg{Type: tea.KeyRight}
	keyDown  = tea.KeyMsg{Type: tea.KeyDown}
	keyEnter = tea.KeyMsg{Type: tea.KeyEnter}
	keyTab   = tea.KeyMsg{Type: tea.KeyTab}
)

func TestNew_LoadsFirstSelection(t *testing.T) {
	svc := newFake()
	m := New(svc, 40)

	require.Len(t, svc.calls, 1)
	assert.Equal(t, domain.IndexKey{ModelID: "positiveUHC", K: "3"}, svc.calls[0])
	require.NotNil(t, m.dataset)
	assert.Len(t, m.chart.Bars, 2)
	assert.Contains(t, m.status, "Loaded 4 rows")
}

func TestClick_ShowsTweets(t *testing.T) {
	m := New(newFake(), 40)

	m = press(m, keyEnter)
	assert.Equal(t, "2024-01-01 — Topic 0 — price\n\na\n\nc", m.detail)

	m = press(m, keyDown, keyEnter)
	assert.Contains(t, m.detail, "Topic 1 — care")
	assert.Contains(t, m.status, "1 snippets for topic 1 on 2024-01-01")

	m = press(m, keyRight, keyEnter)
	assert.Contains(t, m.detail, "2024-01-02 — Topic 1 — care")
}

func TestCursorStaysInBounds(t *testing.T) {
	m := New(newFake(), 40)

	m = press(m, keyRight, keyRight, keyRight, keyDown, keyDown)
	assert.Equal(t, 1, m.cursor.Bar)
	assert.Equal(t, 0, m.cursor.Segment)
}

func TestChangingSelectionReaggregates(t *testing.T) {
	svc := newFake()
	m := New(svc, 40)

	// Focus cycles chart -> model -> k.
	m = press(m, keyTab)
	require.Equal(t, focusModel, m.focus)
	m = press(m, keyRight)

	model, k := m.Selection()
	assert.Equal(t, "negativeLM", model)
	assert.Equal(t, "3", k)
	require.Len(t, svc.calls, 2)
	assert.Nil(t, m.dataset)
	assert.Equal(t, "No data found.", m.status)

	// Going back reloads from the service rather than a cache.
	m = press(m, keyRight)
	require.Len(t, svc.calls, 3)
	assert.NotNil(t, m.dataset)
}

func TestView(t *testing.T) {
	m := New(newFake(), 30)
	assert.Equal(t, "Loading...", m.View())

	next, _ := m.Update(tea.WindowSizeMsg{Width: 100, Height: 40})
	m = next.(Model)
	view := m.View()
	assert.Contains(t, view, "Interactive Topic Proportions")
	assert.Contains(t, view, "positiveUHC, k=3")
	assert.Contains(t, view, "0: price")
	assert.True(t, strings.Contains(view, "2024-01-02"))
}

func TestClick_UnlabelledTopicHasNoLabelSuffix(t *testing.T) {
	svc := newFake()
	key := domain.IndexKey{ModelID: "positiveUHC", K: "3"}
	raw := []domain.DocumentRow{{Date: day(1), Topic: 7, Text: "orphan"}}
	svc.datasets[key] = &domain.Dataset{Key: key, Raw: raw, Aggregated: aggregator.Aggregate(raw, nil)}

	m := press(New(svc, 40), keyEnter)
	assert.Equal(t, "2024-01-01 — Topic 7\n\norphan", m.detail)
}

func tallService(dates, topics int) *fakeService {
	var raw []domain.DocumentRow
	var labels []domain.LabelRow
	for t := 0; t < topics; t++ {
		labels = append(labels, domain.LabelRow{Topic: t, Label: fmt.Sprintf("label %d", t)})
	}
	for d := 1; d <= dates; d++ {
		for t := 0; t < topics; t++ {
			raw = append(raw, domain.DocumentRow{Date: day(d), Topic: t, Text: fmt.Sprintf("tweet %d/%d", d, t)})
		}
	}
	key := domain.IndexKey{ModelID: "positiveUHC", K: "3"}
	return &fakeService{
		models: []string{"positiveUHC", "negativeLM"},
		kvals:  []string{"3"},
		datasets: map[domain.IndexKey]*domain.Dataset{
			key: {Key: key, Raw: raw, Aggregated: aggregator.Aggregate(raw, labels)},
		},
	}
}

func TestView_TallDatasetFitsWindow(t *testing.T) {
	m := New(tallService(120, 12), 40)
	next, _ := m.Update(tea.WindowSizeMsg{Width: 100, Height: 40})
	m = press(next.(Model), keyEnter)

	view := m.View()
	assert.LessOrEqual(t, len(strings.Split(view, "\n")), 40)
	assert.Contains(t, view, "Interactive Topic Proportions")
	assert.Contains(t, view, "Model: ‹ positiveUHC ›")
	assert.Contains(t, view, "> 2024-01-01")
	assert.Contains(t, view, "of 120)")
	assert.Contains(t, view, "2024-01-01 — Topic 0 — label 0")
	assert.GreaterOrEqual(t, m.viewport.Height, 3)

	for i := 0; i < 59; i++ {
		m = press(m, keyRight)
	}
	require.Equal(t, 59, m.cursor.Bar)
	view = m.View()
	assert.LessOrEqual(t, len(strings.Split(view, "\n")), 40)
	assert.Contains(t, view, "> 2024-02-29")
	assert.NotContains(t, view, "  2024-01-01 │")
}

func TestLayout_RecomputedOnLoad(t *testing.T) {
	svc := tallService(120, 12)
	small := domain.IndexKey{ModelID: "negativeLM", K: "3"}
	raw := []domain.DocumentRow{{Date: day(1), Topic: 0, Text: "a"}}
	svc.datasets[small] = &domain.Dataset{Key: small, Raw: raw, Aggregated: aggregator.Aggregate(raw, nil)}

	m := New(svc, 40)
	next, _ := m.Update(tea.WindowSizeMsg{Width: 100, Height: 40})
	m = next.(Model)
	tallRows, tallViewport := m.chartRows, m.viewport.Height
	assert.Greater(t, tallRows, 1)

	m = press(m, keyTab, keyRight)
	require.NotNil(t, m.dataset)
	assert.Equal(t, 1, m.chartRows)
	assert.Greater(t, m.viewport.Height, tallViewport)
	assert.LessOrEqual(t, len(strings.Split(m.View(), "\n")), 40)
}

func TestQuit(t *testing.T) {
	m := New(newFake(), 30)
	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("q")})
	require.NotNil(t, cmd)
	assert.IsType(t, tea.QuitMsg{}, cmd())
}

func TestEmptyIndex(t *testing.T) {
	m := New(&fakeService{}, 30)
	assert.Equal(t, "No data found.", m.status)

	m = press(m, keyEnter)
	assert.Contains(t, m.detail, service.NoTopicMessage)
}
