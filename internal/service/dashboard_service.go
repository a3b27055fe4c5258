package service

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	"topicviz/internal/aggregator"
	"topicviz/internal/domain"
	"topicviz/internal/indexer"
	"topicviz/internal/table"
)

const (
	// NoTweetsMessage is shown when a resolved topic has no text rows.
	NoTweetsMessage = "No tweets found for this topic and date."
	// NoTopicMessage is shown when a click maps to no topic.
	NoTopicMessage = "No topic could be resolved for this selection."
)

var _ domain.DashboardService = (*DashboardServiceImpl)(nil)

type DashboardServiceImpl struct {
	index      *indexer.Index
	labelOpts  table.LabelOptions
	summarizer domain.Summarizer
	logger     *slog.Logger
}

func NewDashboardService(index *indexer.Index, labelOpts table.LabelOptions, summarizer domain.Summarizer, logger *slog.Logger) *DashboardServiceImpl {
	if logger == nil {
		logger = slog.Default()
	}
	return &DashboardServiceImpl{index: index, labelOpts: labelOpts, summarizer: summarizer, logger: logger}
}

func (s *DashboardServiceImpl) ListModels() []string { return s.index.Models() }

func (s *DashboardServiceImpl) ListKValues() []string { return s.index.KValues() }

// Aggregate reads the document and label tables for the selection from disk
// and computes per-date topic proportions. Nothing is cached between calls.
func (s *DashboardServiceImpl) Aggregate(modelID, k string) (*domain.Dataset, error) {
	key := domain.IndexKey{ModelID: modelID, K: k}
	entry, ok := s.index.Lookup(key)
	if !ok {
		return nil, fmt.Errorf("%w: %s, k=%s", domain.ErrNotFound, modelID, k)
	}
	start := time.Now()
	docs, err := table.LoadDocuments(entry.DocumentPath)
	if err != nil {
		return nil, err
	}
	labels, err := table.LoadLabels(entry.LabelPath, s.labelOpts)
	if err != nil {
		return nil, err
	}
	rows := aggregator.Aggregate(docs, labels)
	s.logger.Debug("aggregated selection",
		"model_id", modelID,
		"k", k,
		"documents", len(docs),
		"labels", len(labels),
		"cells", len(rows),
		"elapsed", time.Since(start),
	)
	return &domain.Dataset{Key: key, Entry: entry, Aggregated: rows, Raw: docs}, nil
}

// ResolveSeries returns the non-empty texts of raw rows on date with topic,
// in source order.
func (s *DashboardServiceImpl) ResolveSeries(raw []domain.DocumentRow, date time.Time, topic int) []string {
	var out []string
	for _, r := range raw {
		if r.Topic != topic || !r.Date.Equal(date) {
			continue
		}
		if strings.TrimSpace(r.Text) == "" {
			continue
		}
		out = append(out, r.Text)
	}
	return out
}

// ResolveClick maps a (date, label) click back to a topic via the first
// aggregated row with that date and label, then returns its texts.
func (s *DashboardServiceImpl) ResolveClick(raw []domain.DocumentRow, date time.Time, topicLabel string, aggregated []domain.AggregatedRow) (int, []string, error) {
	for _, r := range aggregated {
		if r.Date.Equal(date) && r.TopicLabel == topicLabel {
			return r.Topic, s.ResolveSeries(raw, date, r.Topic), nil
		}
	}
	return 0, nil, fmt.Errorf("%w: %s on %s", domain.ErrNoTopic, topicLabel, domain.FormatDate(date))
}

// Describe formats the click detail text for a resolved topic, followed by a
// digest of frequent terms when a summarizer is configured.
func (s *DashboardServiceImpl) Describe(date time.Time, topic int, label string, texts []string) string {
	out := FormatClick(date, topic, label, texts)
	if s.summarizer == nil || len(texts) == 0 {
		return out
	}
	terms := s.summarizer.TopTerms(texts, 5)
	if len(terms) == 0 {
		return out
	}
	return out + "\n\nFrequent terms: " + strings.Join(terms, ", ")
}

// FormatClick renders "<date> — Topic <id> — <label>" followed by the texts
// separated by blank lines, or NoTweetsMessage when texts is empty. The label
// part is left out when label is empty.
func FormatClick(date time.Time, topic int, label string, texts []string) string {
	if len(texts) == 0 {
		return NoTweetsMessage
	}
	header := fmt.Sprintf("%s — Topic %d", domain.FormatDate(date), topic)
	if label != "" {
		header += " — " + label
	}
	return header + "\n\n" + strings.Join(texts, "\n\n")
}
