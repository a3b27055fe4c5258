package service

import (
	"errors"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"topicviz/internal/classifier"
	"topicviz/internal/domain"
	"topicviz/internal/indexer"
	"topicviz/internal/summarizer"
	"topicviz/internal/table"
)

func quietLogger() *slog.Logger { return slog.New(slog.NewTextHandler(io.Discard, nil)) }

func day(d int) time.Time { return time.Date(2024, 1, d, 0, 0, 0, 0, time.UTC) }

func write(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

const docCSV = `Date,Topic,Document
2024-01-01,0,a
2024-01-01,1,b
2024-01-01,0,c
2024-01-02,1,d
2024-01-02,1,
garbage,1,dropped
`

const labelCSV = `Topic,Representation
0,"['price', 'premium']"
1,"['care', 'doctor', 'visit']"
`

func newTestService(t *testing.T) (*DashboardServiceImpl, string) {
	t.Helper()
	root := t.TempDir()
	write(t, filepath.Join(root, "positive_UHC_document_info_k=3.csv"), docCSV)
	write(t, filepath.Join(root, "positive_UHC_topic_representation_k=3.csv"), labelCSV)
	write(t, filepath.Join(root, "negative_LM_document_info_k=5.csv"), "Topic\n1\n")
	write(t, filepath.Join(root, "negative_LM_topic_representation_k=5.csv"), labelCSV)

	cls := classifier.NewFilenameClassifier(nil, quietLogger())
	idx, err := indexer.NewBuilder(cls, indexer.Options{}, quietLogger()).Build(root)
	require.NoError(t, err)
	return NewDashboardService(idx, table.LabelOptions{}, summarizer.NewFrequencySummarizer(), quietLogger()), root
}

func TestListings(t *testing.T) {
	svc, _ := newTestService(t)
	assert.Equal(t, []string{"negativeLM", "positiveUHC"}, svc.ListModels())
	assert.Equal(t, []string{"3", "5"}, svc.ListKValues())
}

func TestAggregate(t *testing.T) {
	svc, _ := newTestService(t)

	ds, err := svc.Aggregate("positiveUHC", "3")
	require.NoError(t, err)

	assert.Equal(t, domain.IndexKey{ModelID: "positiveUHC", K: "3"}, ds.Key)
	require.Len(t, ds.Aggregated, 3)
	assert.Len(t, ds.Raw, 5)

	first := ds.Aggregated[0]
	assert.Equal(t, 0, first.Topic)
	assert.Equal(t, 2, first.Count)
	assert.InDelta(t, 2.0/3.0, first.Proportion, 1e-12)
	assert.Equal(t, "price premium", first.TopicLabel)

	last := ds.Aggregated[2]
	assert.True(t, day(2).Equal(last.Date))
	assert.Equal(t, 1.0, last.Proportion)
	assert.Equal(t, "care doctor visit", last.TopicLabel)
}

func TestAggregate_NotFound(t *testing.T) {
	svc, _ := newTestService(t)

	_, err := svc.Aggregate("positiveUHC", "99")
	assert.True(t, errors.Is(err, domain.ErrNotFound))
}

func TestAggregate_BrokenFileIsPerRequest(t *testing.T) {
	svc, _ := newTestService(t)

	_, err := svc.Aggregate("negativeLM", "5")
	require.Error(t, err)
	assert.False(t, errors.Is(err, domain.ErrNotFound))

	// Other selections keep working.
	_, err = svc.Aggregate("positiveUHC", "3")
	assert.NoError(t, err)
}

func TestAggregate_RereadsFromDisk(t *testing.T) {
	svc, root := newTestService(t)

	ds, err := svc.Aggregate("positiveUHC", "3")
	require.NoError(t, err)
	require.Len(t, ds.Raw, 5)

	write(t, filepath.Join(root, "positive_UHC_document_info_k=3.csv"), "Date,Topic,Document\n2024-01-05,2,z\n")
	ds, err = svc.Aggregate("positiveUHC", "3")
	require.NoError(t, err)
	require.Len(t, ds.Raw, 1)
	assert.False(t, ds.Aggregated[0].Labeled)
}

func TestResolveClick(t *testing.T) {
	svc, _ := newTestService(t)
	ds, err := svc.Aggregate("positiveUHC", "3")
	require.NoError(t, err)

	topic, texts, err := svc.ResolveClick(ds.Raw, day(1), "price premium", ds.Aggregated)
	require.NoError(t, err)
	assert.Equal(t, 0, topic)
	assert.Equal(t, []string{"a", "c"}, texts)

	topic, texts, err = svc.ResolveClick(ds.Raw, day(2), "care doctor visit", ds.Aggregated)
	require.NoError(t, err)
	assert.Equal(t, 1, topic)
	assert.Equal(t, []string{"d"}, texts, "empty text rows are excluded")

	_, _, err = svc.ResolveClick(ds.Raw, day(2), "price premium", ds.Aggregated)
	assert.ErrorIs(t, err, domain.ErrNoTopic)
}

func TestResolveClick_FirstMatchingTopicWins(t *testing.T) {
	svc, _ := newTestService(t)
	raw := []domain.DocumentRow{
		{Date: day(1), Topic: 3, Text: "three"},
		{Date: day(1), Topic: 4, Text: "four"},
	}
	agg := []domain.AggregatedRow{
		{Date: day(1), Topic: 3, TopicLabel: "Unknown", Labeled: true},
		{Date: day(1), Topic: 4, TopicLabel: "Unknown", Labeled: true},
	}

	topic, texts, err := svc.ResolveClick(raw, day(1), "Unknown", agg)
	require.NoError(t, err)
	assert.Equal(t, 3, topic)
	assert.Equal(t, []string{"three"}, texts)
}

func TestResolveSeries_EmptyIsValid(t *testing.T) {
	svc, _ := newTestService(t)
	raw := []domain.DocumentRow{{Date: day(1), Topic: 1, Text: "  "}}
	assert.Empty(t, svc.ResolveSeries(raw, day(1), 1))
	assert.Empty(t, svc.ResolveSeries(raw, day(2), 1))
}

func TestFormatClick(t *testing.T) {
	got := FormatClick(day(1), 0, "price premium", []string{"a", "c"})
	assert.Equal(t, "2024-01-01 — Topic 0 — price premium\n\na\n\nc", got)
	assert.Equal(t, NoTweetsMessage, FormatClick(day(1), 0, "x", nil))
	assert.Equal(t, "2024-01-01 — Topic 7\n\nz", FormatClick(day(1), 7, "", []string{"z"}))
	assert.NotEqual(t, NoTweetsMessage, NoTopicMessage)
}

func TestDescribe(t *testing.T) {
	svc, _ := newTestService(t)

	out := svc.Describe(day(1), 0, "price", []string{"premium hike", "premium again"})
	assert.Contains(t, out, "2024-01-01 — Topic 0 — price")
	assert.Contains(t, out, "Frequent terms: premium")

	assert.Equal(t, NoTweetsMessage, svc.Describe(day(1), 0, "price", nil))
}
