// Package textstats computes document metrics from text snapshots.
package textstats

import (
	"math"
	"strings"
	"unicode/utf8"
)

const (
	defaultReadingWPM   = 200
	defaultWordsPerPage = 450
	defaultMaxRunes     = 1 << 20
	longWordRunes       = 6
	complexSyllables    = 3
)

// Range is a half-open rune offset range.
type Range struct {
	Start int
	End   int
}

// Snapshot is a read-only view of a document, optionally narrowed to a selection.
type Snapshot struct {
	Text      string
	Selection *Range
}

// Metrics holds the derived document metrics.
type Metrics struct {
	Words              int
	Characters         int
	Sentences          int
	Paragraphs         int
	Pages              int
	ComplexWords       int
	ReadingTimeMinutes int
	LIX                float64
	Band               LixBand
	ReadabilityIndex   float64
	// Approximate is set when the text exceeded the size ceiling and only
	// word-derived counts were computed.
	Approximate bool
}

// Options configures the analyzer constants.
type Options struct {
	ReadingWPM    int
	WordsPerPage  int
	MaxRunes      int
	Abbreviations map[string]struct{}
}

// DefaultOptions returns the analyzer defaults.
func DefaultOptions() Options {
	return Options{
		ReadingWPM:   defaultReadingWPM,
		WordsPerPage: defaultWordsPerPage,
		MaxRunes:     defaultMaxRunes,
	}
}

// Analyzer is a stateless metrics calculator.
type Analyzer struct {
	opts          Options
	abbreviations map[string]struct{}
}

// New returns an Analyzer. Non-positive option values fall back to defaults.
func New(opts Options) *Analyzer {
	d := DefaultOptions()
	if opts.ReadingWPM <= 0 {
		opts.ReadingWPM = d.ReadingWPM
	}
	if opts.WordsPerPage <= 0 {
		opts.WordsPerPage = d.WordsPerPage
	}
	if opts.MaxRunes <= 0 {
		opts.MaxRunes = d.MaxRunes
	}
	abbrevs := make(map[string]struct{}, len(builtinAbbreviations)+len(opts.Abbreviations))
	for _, a := range builtinAbbreviations {
		abbrevs[a] = struct{}{}
	}
	for a := range opts.Abbreviations {
		abbrevs[strings.ToLower(a)] = struct{}{}
	}
	return &Analyzer{opts: opts, abbreviations: abbrevs}
}

// Oversized reports whether text would be analyzed in approximate mode.
func (a *Analyzer) Oversized(text string) bool {
	return utf8.RuneCountInString(text) > a.opts.MaxRunes
}

// Analyze computes metrics for the snapshot. It never fails.
func (a *Analyzer) Analyze(snap Snapshot) Metrics {
	text := snap.Text
	if snap.Selection != nil {
		text = sliceRunes(text, snap.Selection.Start, snap.Selection.End)
	}
	if a.Oversized(text) {
		return a.approximate(text)
	}

	runes := []rune(text)
	seg := segment(runes, a.abbreviations)

	m := Metrics{
		Words:      len(seg.words),
		Characters: len(runes),
		Sentences:  seg.sentences,
		Paragraphs: len(paragraphRanges(runes)),
	}
	if m.Words == 0 {
		return m
	}

	longWords := 0
	for _, w := range seg.words {
		if len(w) > longWordRunes {
			longWords++
		}
		if syllables(w) >= complexSyllables {
			m.ComplexWords++
		}
	}
	m.Pages = ceilDiv(m.Words, a.opts.WordsPerPage)
	m.ReadingTimeMinutes = ceilDiv(m.Words, a.opts.ReadingWPM)
	m.LIX = lix(m.Words, m.Sentences, longWords)
	m.Band = BandFor(m.LIX)
	m.ReadabilityIndex = readabilityIndex(m.Words, m.Sentences, m.ComplexWords)
	return m
}

func (a *Analyzer) approximate(text string) Metrics {
	m := Metrics{
		Words:       CountWords(text),
		Characters:  utf8.RuneCountInString(text),
		Approximate: true,
	}
	m.Pages = ceilDiv(m.Words, a.opts.WordsPerPage)
	m.ReadingTimeMinutes = ceilDiv(m.Words, a.opts.ReadingWPM)
	return m
}

// sliceRunes returns the substring between rune offsets, clamped to the text.
func sliceRunes(s string, start, end int) string {
	if start > end {
		start, end = end, start
	}
	if start < 0 {
		start = 0
	}
	if end <= start {
		return ""
	}
	byteStart, byteEnd := len(s), len(s)
	idx := 0
	for i := range s {
		if idx == start {
			byteStart = i
		}
		if idx == end {
			byteEnd = i
			break
		}
		idx++
	}
	if byteStart > byteEnd {
		return ""
	}
	return s[byteStart:byteEnd]
}

func ceilDiv(n, d int) int {
	if n <= 0 || d <= 0 {
		return 0
	}
	return int(math.Ceil(float64(n) / float64(d)))
}
