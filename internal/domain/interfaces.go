package domain

import (
	"errors"
	"time"
)

var (
	// ErrDataDirMissing is returned when the data root does not exist.
	ErrDataDirMissing = errors.New("data directory not found")
	// ErrNotFound is returned for a (model_id, k) pair absent from the index.
	ErrNotFound = errors.New("selection not found in index")
	// ErrNoTopic is returned when a click cannot be mapped back to a topic.
	ErrNoTopic = errors.New("no topic resolved")
)

// Polarity is the sentiment category of a document batch.
type Polarity string

const (
	PolarityUnknown  Polarity = ""
	PolarityPositive Polarity = "positive"
	PolarityNegative Polarity = "negative"
)

// ClassifiedFile holds the attributes encoded in a data file name.
type ClassifiedFile struct {
	Path     string
	Polarity Polarity
	Model    string
	K        string
}

// Indexable reports whether polarity, model and k were all recognised.
func (c ClassifiedFile) Indexable() bool {
	return c.Polarity != PolarityUnknown && c.Model != "" && c.K != ""
}

// ModelID is the polarity followed by the model name, e.g. "positiveUHC".
func (c ClassifiedFile) ModelID() string { return string(c.Polarity) + c.Model }

// IndexKey identifies one selectable dataset.
type IndexKey struct {
	ModelID string
	K       string
}

// IndexEntry points at a matched document/label file pair.
type IndexEntry struct {
	DocumentPath string
	LabelPath    string
}

// DocumentRow is one observation of the document table. Date is a calendar
// date at UTC midnight.
type DocumentRow struct {
	Date  time.Time
	Topic int
	Text  string
}

// LabelRow is one row of the topic representation table.
type LabelRow struct {
	Topic          int
	Representation []string
	Label          string
}

// AggregatedRow is one (date, topic) cell of the proportion table.
type AggregatedRow struct {
	Date         time.Time
	Topic        int
	Count        int
	TotalForDate int
	Proportion   float64
	TopicLabel   string
	// Labeled is false when the topic has no row in the label table.
	Labeled bool
}

// Dataset is the result of aggregating one selection.
type Dataset struct {
	Key        IndexKey
	Entry      IndexEntry
	Aggregated []AggregatedRow
	Raw        []DocumentRow
}

// Classifier extracts indexing attributes from a file name.
type Classifier interface {
	Classify(path string) ClassifiedFile
}

// Summarizer produces a short keyword digest of a set of texts.
type Summarizer interface {
	TopTerms(texts []string, n int) []string
}

// DashboardService defines the operations exposed to the interaction layer.
type DashboardService interface {
	ListModels() []string
	ListKValues() []string
	Aggregate(modelID, k string) (*Dataset, error)
	ResolveSeries(raw []DocumentRow, date time.Time, topic int) []string
	ResolveClick(raw []DocumentRow, date time.Time, topicLabel string, aggregated []AggregatedRow) (int, []string, error)
}

// FormatDate renders a calendar date the way the dashboard displays it.
func FormatDate(t time.Time) string { return t.Format("2006-01-02") }
