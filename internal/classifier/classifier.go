package classifier

import (
	"log/slog"
	"path/filepath"
	"regexp"
	"slices"
	"strings"

	"topicviz/internal/config"
	"topicviz/internal/domain"
)

// FilenameClassifier parses polarity, model and k out of data file names.
// Model rules are tried in table order, except that a rule is moved ahead of
// any rule whose token it contains, so a specific tag such as "UHCX" is never
// shadowed by "UHC".
type FilenameClassifier struct {
	rules   []config.ModelRule
	kFinder *regexp.Regexp
	logger  *slog.Logger
}

func NewFilenameClassifier(rules []config.ModelRule, logger *slog.Logger) *FilenameClassifier {
	if len(rules) == 0 {
		rules = config.DefaultModelRules()
	}
	if logger == nil {
		logger = slog.Default()
	}
	ordered := make([]config.ModelRule, 0, len(rules))
	for _, r := range rules {
		if r.Token == "" {
			continue
		}
		if r.Name == "" {
			r.Name = r.Token
		}
		ordered = insertRule(ordered, r)
	}
	return &FilenameClassifier{
		rules:   ordered,
		kFinder: regexp.MustCompile(`k=(\d+)`),
		logger:  logger,
	}
}

// insertRule places r before the first rule whose token is a strict substring
// of r.Token, or at the end when there is none.
func insertRule(ordered []config.ModelRule, r config.ModelRule) []config.ModelRule {
	for i, o := range ordered {
		if len(o.Token) < len(r.Token) && strings.Contains(r.Token, o.Token) {
			return slices.Insert(ordered, i, r)
		}
	}
	return append(ordered, r)
}

// Rules returns the model rules in the order they are tried.
func (c *FilenameClassifier) Rules() []config.ModelRule {
	out := make([]config.ModelRule, len(c.rules))
	copy(out, c.rules)
	return out
}

// Classify inspects the base name of path. Fields that cannot be recognised
// are left empty; check Indexable before using the result.
func (c *FilenameClassifier) Classify(path string) domain.ClassifiedFile {
	base := filepath.Base(path)
	out := domain.ClassifiedFile{Path: path}

	switch {
	case strings.Contains(base, string(domain.PolarityPositive)):
		out.Polarity = domain.PolarityPositive
	case strings.Contains(base, string(domain.PolarityNegative)):
		out.Polarity = domain.PolarityNegative
	}

	for _, r := range c.rules {
		if strings.Contains(base, r.Token) {
			out.Model = r.Name
			break
		}
	}

	if m := c.kFinder.FindStringSubmatch(base); m != nil {
		out.K = m[1]
	}

	c.logger.Debug("classified file",
		"file", base,
		"polarity", string(out.Polarity),
		"model", out.Model,
		"k", out.K,
		"indexable", out.Indexable(),
	)
	return out
}
