package tui

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"topicviz/internal/chart"
	"topicviz/internal/domain"
	"topicviz/internal/service"
)

// DashboardPort is the TUI-facing subset of the dashboard service.
type DashboardPort interface {
	ListModels() []string
	ListKValues() []string
	Aggregate(modelID, k string) (*domain.Dataset, error)
	ResolveSeries(raw []domain.DocumentRow, date time.Time, topic int) []string
	Describe(date time.Time, topic int, label string, texts []string) string
}

type focus int

const (
	focusModel focus = iota
	focusK
	focusChart
)

// Model is the Bubble Tea model for the dashboard.
type Model struct {
	service    DashboardPort
	models     []string
	kvals      []string
	modelIdx   int
	kIdx       int
	focus      focus
	dataset    *domain.Dataset
	chart      chart.Chart
	cursor     chart.Cursor
	chartWidth int
	maxWidth   int
	chartRows  int
	width      int
	height     int
	viewport   viewport.Model
	detail     string
	status     string
	ready      bool
}

// New creates a dashboard model and loads the first selection.
func New(service DashboardPort, chartWidth int) Model {
	if chartWidth <= 0 {
		chartWidth = 60
	}
	m := Model{
		service:    service,
		models:     service.ListModels(),
		kvals:      service.ListKValues(),
		chartWidth: chartWidth,
		maxWidth:   chartWidth,
		viewport:   viewport.New(0, 0),
		focus:      focusChart,
	}
	m.load()
	return m
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd { return nil }

// Update handles key and window events and updates the view state.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.ready = true
		m.width, m.height = msg.Width, msg.Height
		m.layout()
		return m, nil
	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC || msg.Type == tea.KeyCtrlD {
			return m, tea.Quit
		}
		switch msg.String() {
		case "q":
			return m, tea.Quit
		case "tab":
			m.focus = (m.focus + 1) % 3
			return m, nil
		case "shift+tab":
			m.focus = (m.focus + 2) % 3
			return m, nil
		case "left", "h":
			m.move(-1, 0)
			return m, nil
		case "right", "l":
			m.move(1, 0)
			return m, nil
		case "up", "k":
			m.move(0, -1)
			return m, nil
		case "down", "j":
			m.move(0, 1)
			return m, nil
		case "enter", " ":
			if m.focus == focusChart {
				m.click()
			}
			return m, nil
		case "pgup", "pgdown":
			var cmd tea.Cmd
			m.viewport, cmd = m.viewport.Update(msg)
			return m, cmd
		}
	}
	return m, nil
}

func (m *Model) move(dx, dy int) {
	switch m.focus {
	case focusModel:
		if len(m.models) > 0 && dx != 0 {
			m.modelIdx = (m.modelIdx + dx + len(m.models)) % len(m.models)
			m.load()
		}
	case focusK:
		if len(m.kvals) > 0 && dx != 0 {
			m.kIdx = (m.kIdx + dx + len(m.kvals)) % len(m.kvals)
			m.load()
		}
	case focusChart:
		if m.chart.Empty() {
			return
		}
		if dx != 0 {
			m.cursor.Bar += dx
			m.cursor.Segment = 0
		}
		m.cursor.Segment += dy
		m.cursor = m.chart.Clamp(m.cursor)
	}
}

// Selection returns the current model id and k value.
func (m Model) Selection() (string, string) {
	var model, k string
	if m.modelIdx < len(m.models) {
		model = m.models[m.modelIdx]
	}
	if m.kIdx < len(m.kvals) {
		k = m.kvals[m.kIdx]
	}
	return model, k
}

func (m *Model) load() {
	model, k := m.Selection()
	m.dataset = nil
	m.chart = chart.Chart{}
	m.cursor = chart.Cursor{}
	m.setDetail(service.NoTweetsMessage)
	if model == "" || k == "" {
		m.status = "No data found."
		return
	}
	ds, err := m.service.Aggregate(model, k)
	switch {
	case errors.Is(err, domain.ErrNotFound):
		m.status = "No data found."
		return
	case err != nil:
		m.status = "Error: " + err.Error()
		return
	}
	m.dataset = ds
	m.chart = chart.Build(fmt.Sprintf("%s, k=%s", model, k), ds.Aggregated)
	m.status = fmt.Sprintf("Loaded %d rows across %d dates.", len(ds.Raw), len(m.chart.Bars))
	m.layout()
}

// layout splits the window height between the chart rows and the detail
// viewport. Every line outside those two is counted as fixed.
func (m *Model) layout() {
	if m.width <= 0 || m.height <= 0 {
		return
	}
	m.chartWidth = m.maxWidth
	if w := m.width - 24; w > 10 && w < m.chartWidth {
		m.chartWidth = w
	}
	_, chartFrame := chartBoxStyle.GetFrameSize()
	_, detailFrame := detailBoxStyle.GetFrameSize()
	// header, controls, chart title, status, help
	fixed := 5 + chartFrame + detailFrame
	if !m.chart.Empty() {
		fixed += lipgloss.Height(m.chart.Legend(m.legendWidth()))
	}
	avail := m.height - fixed
	m.chartRows = max(1, min(len(m.chart.Bars), avail-minDetailHeight))
	m.viewport.Width = max(20, m.width-4)
	m.viewport.Height = max(minDetailHeight, avail-m.chartRows)
	m.viewport.SetContent(m.detail)
}

func (m Model) legendWidth() int {
	w, _ := chartBoxStyle.GetFrameSize()
	return max(20, m.width-w)
}

func (m *Model) click() {
	seg, ok := m.chart.At(m.cursor)
	if !ok || m.dataset == nil {
		m.setDetail(service.NoTopicMessage)
		return
	}
	texts := m.service.ResolveSeries(m.dataset.Raw, seg.ID.Date, seg.ID.Topic)
	m.setDetail(m.service.Describe(seg.ID.Date, seg.ID.Topic, seg.TopicLabel, texts))
	m.status = fmt.Sprintf("%d snippets for topic %d on %s", len(texts), seg.ID.Topic, domain.FormatDate(seg.ID.Date))
}

func (m *Model) setDetail(content string) {
	m.detail = content
	m.viewport.SetContent(content)
	m.viewport.GotoTop()
}

// View renders the dashboard layout.
func (m Model) View() string {
	if !m.ready {
		return "Loading..."
	}
	model, k := m.Selection()
	header := lipgloss.NewStyle().Bold(true).Render("Interactive Topic Proportions")
	controls := m.control("Model", model, focusModel) + "  " + m.control("k-value", k, focusK)

	var body string
	if m.chart.Empty() {
		body = "No data found."
	} else {
		cur := m.cursor
		if m.focus != focusChart {
			cur = chart.Cursor{Bar: -1}
		}
		start, end := m.chart.Window(m.chartRows, m.cursor.Bar)
		titleText := m.chart.Title
		if end-start < len(m.chart.Bars) {
			titleText += fmt.Sprintf("  (dates %d-%d of %d)", start+1, end, len(m.chart.Bars))
		}
		title := lipgloss.NewStyle().Bold(true).Render(titleText)
		body = title + "\n" + m.chart.RenderRange(m.chartWidth, start, end, cur) + "\n" + m.chart.Legend(m.legendWidth())
	}
	if m.focus == focusChart {
		body = focusedBoxStyle.Render(body)
	} else {
		body = chartBoxStyle.Render(body)
	}
	detail := detailBoxStyle.Render(m.viewport.View())
	status := lipgloss.NewStyle().Foreground(lipgloss.Color("10")).Render(m.status)
	help := helpStyle.Render("tab focus • ←/→ change • ↑/↓ topic • enter show tweets • q quit")
	return strings.Join([]string{header, controls, body, detail, status, help}, "\n")
}

func (m Model) control(name, value string, f focus) string {
	if value == "" {
		value = "-"
	}
	text := fmt.Sprintf("%s: ‹ %s ›", name, value)
	if m.focus == f {
		return activeControlStyle.Render(text)
	}
	return controlStyle.Render(text)
}

const minDetailHeight = 3

var (
	chartBoxStyle      = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
	focusedBoxStyle    = chartBoxStyle.Copy().BorderForeground(lipgloss.Color("12"))
	detailBoxStyle     = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
	controlStyle       = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	activeControlStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("11")).Bold(true)
	helpStyle          = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
)
