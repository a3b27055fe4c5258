package summarizer

import (
	"regexp"
	"sort"
	"strings"
)

// FrequencySummarizer ranks terms of a text set by document frequency (stopwords filtered).
type FrequencySummarizer struct {
	tokenPattern *regexp.Regexp
	stopwords    map[string]struct{}
	minLength    int
}

// NewFrequencySummarizer creates a frequency-based term ranker.
func NewFrequencySummarizer() *FrequencySummarizer {
	return &FrequencySummarizer{
		tokenPattern: regexp.MustCompile(`\p{L}+(?:['’]\p{L}+)*`),
		stopwords:    defaultStopwords(),
		minLength:    3,
	}
}

// TopTerms returns up to n terms that appear in the most texts. Ties are
// broken by total occurrences, then alphabetically. URLs, mentions and
// hashtags are ignored.
func (s *FrequencySummarizer) TopTerms(texts []string, n int) []string {
	if n <= 0 {
		n = 5
	}
	docFreq := map[string]int{}
	termFreq := map[string]int{}
	for _, text := range texts {
		seen := map[string]struct{}{}
		for _, tok := range s.tokens(text) {
			termFreq[tok]++
			if _, ok := seen[tok]; ok {
				continue
			}
			seen[tok] = struct{}{}
			docFreq[tok]++
		}
	}
	terms := make([]string, 0, len(docFreq))
	for t := range docFreq {
		terms = append(terms, t)
	}
	sort.Slice(terms, func(i, j int) bool {
		a, b := terms[i], terms[j]
		if docFreq[a] != docFreq[b] {
			return docFreq[a] > docFreq[b]
		}
		if termFreq[a] != termFreq[b] {
			return termFreq[a] > termFreq[b]
		}
		return a < b
	})
	if n > len(terms) {
		n = len(terms)
	}
	return terms[:n]
}

func (s *FrequencySummarizer) tokens(text string) []string {
	var out []string
	for _, field := range strings.Fields(strings.ToLower(text)) {
		if strings.HasPrefix(field, "http") || strings.HasPrefix(field, "@") || strings.HasPrefix(field, "#") {
			continue
		}
		for _, tok := range s.tokenPattern.FindAllString(field, -1) {
			if len([]rune(tok)) < s.minLength {
				continue
			}
			if _, ok := s.stopwords[tok]; ok {
				continue
			}
			out = append(out, tok)
		}
	}
	return out
}

func defaultStopwords() map[string]struct{} {
	words := []string{
		"a", "an", "the", "and", "or", "but", "if", "then", "else", "for", "to", "of", "in", "on", "at", "by", "with", "as", "is", "are", "was", "were", "be", "been", "being", "it", "this", "that", "these", "those", "from", "up", "down", "over", "under", "again", "further", "than", "so", "such", "into", "about", "between", "through", "during", "before", "after", "above", "below", "out", "off", "own", "same", "too", "very", "can", "will", "just", "don", "should", "now",
		"you", "your", "they", "their", "them", "have", "has", "had", "not", "all", "get", "got", "what", "who", "how", "why", "when", "our", "his", "her", "she", "him", "its", "i'm", "it's", "amp", "rt",
	}
	m := make(map[string]struct{}, len(words))
	for _, w := range words {
		m[w] = struct{}{}
	}
	return m
}
