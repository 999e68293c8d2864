package coordinator

import (
	"math"

	"github.com/verte-zerg/writestat/internal/textstats"
)

// Scope tells display collaborators which text the metrics describe.
type Scope int

const (
	ScopeDocument Scope = iota
	ScopeSelection
)

func (s Scope) String() string {
	if s == ScopeSelection {
		return "selection"
	}
	return "document"
}

// Field identifies a single published metric.
type Field int

const (
	WordCount Field = iota
	CharacterCount
	SentenceCount
	ParagraphCount
	PageCount
	ComplexWords
	ReadingTime
	LixReadingEase
	ReadabilityIndex
	TotalWordCount
	SessionWordCount
	SessionPageCount
	WordsPerMinute
	WritingTime
	IdleTimePercentage
)

var fieldNames = map[Field]string{
	WordCount:          "wordCountChanged",
	CharacterCount:     "characterCountChanged",
	SentenceCount:      "sentenceCountChanged",
	ParagraphCount:     "paragraphCountChanged",
	PageCount:          "pageCountChanged",
	ComplexWords:       "complexWordsChanged",
	ReadingTime:        "readingTimeChanged",
	LixReadingEase:     "lixReadingEaseChanged",
	ReadabilityIndex:   "readabilityIndexChanged",
	TotalWordCount:     "totalWordCountChanged",
	SessionWordCount:   "sessionWordCountChanged",
	SessionPageCount:   "sessionPageCountChanged",
	WordsPerMinute:     "wordsPerMinuteChanged",
	WritingTime:        "writingTimeChanged",
	IdleTimePercentage: "idleTimePercentageChanged",
}

func (f Field) String() string {
	if name, ok := fieldNames[f]; ok {
		return name
	}
	return "unknown"
}

// Notification is one metric change. Band is only meaningful for LixReadingEase.
// Approximate marks document fields computed in the degraded large-document mode.
type Notification struct {
	Field       Field
	Scope       Scope
	Value       int
	Band        textstats.LixBand
	Approximate bool
}

// Bus is an ordered list of observers. It is only used from the coordinator loop.
type Bus struct {
	observers []func(Notification)
}

// Subscribe registers an observer. Register observers before Run.
func (b *Bus) Subscribe(fn func(Notification)) {
	b.observers = append(b.observers, fn)
}

// Publish delivers n to every observer in registration order.
func (b *Bus) Publish(n Notification) {
	for _, fn := range b.observers {
		fn(n)
	}
}

func metricNotifications(m textstats.Metrics, scope Scope) []Notification {
	out := []Notification{
		{Field: WordCount, Value: m.Words},
		{Field: CharacterCount, Value: m.Characters},
		{Field: SentenceCount, Value: m.Sentences},
		{Field: ParagraphCount, Value: m.Paragraphs},
		{Field: PageCount, Value: m.Pages},
		{Field: ComplexWords, Value: m.ComplexWords},
		{Field: ReadingTime, Value: m.ReadingTimeMinutes},
		{Field: LixReadingEase, Value: roundScore(m.LIX), Band: m.Band},
		{Field: ReadabilityIndex, Value: roundScore(m.ReadabilityIndex)},
	}
	for i := range out {
		out[i].Scope = scope
		out[i].Approximate = m.Approximate
	}
	return out
}

func roundScore(v float64) int {
	return int(math.Round(v))
}

func ceilDiv(n, d int) int {
	if n <= 0 || d <= 0 {
		return 0
	}
	return (n + d - 1) / d
}
