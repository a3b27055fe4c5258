package indexer

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"topicviz/internal/domain"
)

// Index maps (model_id, k) selections to matched document/label files.
// It is built once and never mutated afterwards.
type Index struct {
	root    string
	entries map[domain.IndexKey]domain.IndexEntry
	models  []string
	kvals   []string
}

// Options configures a Builder.
type Options struct {
	DocumentMarker string
	LabelMarker    string
}

// Builder scans a data directory and produces an Index.
type Builder struct {
	classifier domain.Classifier
	opts       Options
	logger     *slog.Logger
}

func NewBuilder(classifier domain.Classifier, opts Options, logger *slog.Logger) *Builder {
	if opts.DocumentMarker == "" {
		opts.DocumentMarker = "document_info"
	}
	if opts.LabelMarker == "" {
		opts.LabelMarker = "topic_representation"
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Builder{classifier: classifier, opts: opts, logger: logger}
}

// Build walks root and pairs every classifiable document file with the first
// label file, in lexical path order, that shares its polarity, model and k.
// Documents without a partner are skipped. When two documents resolve to the
// same key, the lexically later path wins.
func (b *Builder) Build(root string) (*Index, error) {
	info, err := os.Stat(root)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", domain.ErrDataDirMissing, root)
		}
		return nil, fmt.Errorf("stat data dir: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%w: %s is not a directory", domain.ErrDataDirMissing, root)
	}

	var docs, labels []string
	err = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		name := d.Name()
		switch {
		case strings.Contains(name, b.opts.DocumentMarker):
			docs = append(docs, path)
		case strings.Contains(name, b.opts.LabelMarker):
			labels = append(labels, path)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walk data dir: %w", err)
	}

	labelInfo := make([]domain.ClassifiedFile, len(labels))
	for i, l := range labels {
		labelInfo[i] = b.classifier.Classify(l)
	}

	entries := make(map[domain.IndexKey]domain.IndexEntry)
	for _, doc := range docs {
		cf := b.classifier.Classify(doc)
		if !cf.Indexable() {
			b.logger.Debug("skipping unclassifiable document", "path", doc)
			continue
		}
		label, ok := matchLabel(cf, labelInfo)
		if !ok {
			b.logger.Debug("no label file for document", "path", doc, "model_id", cf.ModelID(), "k", cf.K)
			continue
		}
		key := domain.IndexKey{ModelID: cf.ModelID(), K: cf.K}
		if prev, dup := entries[key]; dup {
			b.logger.Warn("duplicate index key, keeping later document",
				"model_id", key.ModelID, "k", key.K, "previous", prev.DocumentPath, "path", doc)
		}
		entries[key] = domain.IndexEntry{DocumentPath: doc, LabelPath: label}
	}

	idx := newIndex(root, entries)
	b.logger.Info("indexed data directory",
		"root", root,
		"documents", len(docs),
		"labels", len(labels),
		"keys", idx.Len(),
	)
	return idx, nil
}

func matchLabel(doc domain.ClassifiedFile, labels []domain.ClassifiedFile) (string, bool) {
	for _, l := range labels {
		if l.Polarity == doc.Polarity && l.Model == doc.Model && l.K == doc.K {
			return l.Path, true
		}
	}
	return "", false
}

func newIndex(root string, entries map[domain.IndexKey]domain.IndexEntry) *Index {
	modelSet := map[string]struct{}{}
	kSet := map[string]struct{}{}
	for k := range entries {
		modelSet[k.ModelID] = struct{}{}
		kSet[k.K] = struct{}{}
	}
	models := make([]string, 0, len(modelSet))
	for m := range modelSet {
		models = append(models, m)
	}
	sort.Strings(models)
	kvals := make([]string, 0, len(kSet))
	for k := range kSet {
		kvals = append(kvals, k)
	}
	sortNumeric(kvals)
	return &Index{root: root, entries: entries, models: models, kvals: kvals}
}

// sortNumeric orders digit strings by integer value; "08" and "8" tie on
// value and fall back to string order.
func sortNumeric(vals []string) {
	sort.Slice(vals, func(i, j int) bool {
		a, errA := strconv.Atoi(vals[i])
		b, errB := strconv.Atoi(vals[j])
		if errA != nil || errB != nil || a == b {
			return vals[i] < vals[j]
		}
		return a < b
	})
}

// Root returns the scanned directory.
func (ix *Index) Root() string { return ix.root }

// Len returns the number of indexed selections.
func (ix *Index) Len() int { return len(ix.entries) }

// Models returns the distinct model ids in lexicographic order.
func (ix *Index) Models() []string { return append([]string(nil), ix.models...) }

// KValues returns the distinct k values in numeric order.
func (ix *Index) KValues() []string { return append([]string(nil), ix.kvals...) }

// Lookup returns the file pair for key.
func (ix *Index) Lookup(key domain.IndexKey) (domain.IndexEntry, bool) {
	e, ok := ix.entries[key]
	return e, ok
}

// Keys returns every indexed key ordered by model id, then numeric k.
func (ix *Index) Keys() []domain.IndexKey {
	keys := make([]domain.IndexKey, 0, len(ix.entries))
	for k := range ix.entries {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].ModelID != keys[j].ModelID {
			return keys[i].ModelID < keys[j].ModelID
		}
		a, _ := strconv.Atoi(keys[i].K)
		b, _ := strconv.Atoi(keys[j].K)
		if a != b {
			return a < b
		}
		return keys[i].K < keys[j].K
	})
	return keys
}
