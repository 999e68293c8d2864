package textstats

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// Titles that end in a period without ending the sentence.
var builtinAbbreviations = []string{"mr", "mrs", "ms", "dr", "prof", "st", "jr", "sr", "vs"}

type segmentation struct {
	words     [][]rune
	sentences int
}

func isWordRune(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsDigit(r) || unicode.IsMark(r)
}

// isJoiner reports whether r may sit inside a word between prev and next.
func isJoiner(prev, r, next rune) bool {
	switch r {
	case '\'', '’', '-', '‐', '‑':
		return isWordRune(prev) && isWordRune(next)
	case '.', ',':
		// Decimal and thousands separators.
		return unicode.IsDigit(prev) && unicode.IsDigit(next)
	}
	return false
}

func isTerminator(r rune) bool {
	return r == '.' || r == '?' || r == '!'
}

func isCloser(r rune) bool {
	switch r {
	case '"', '\'', ')', ']', '}', '”', '’', '»', '*', '_':
		return true
	}
	return false
}

// segment splits runes into words and counts sentences in a single pass.
func segment(runes []rune, abbreviations map[string]struct{}) segmentation {
	var seg segmentation
	wordsInSentence := 0
	lastWordEnd := -1
	var lastWord []rune

	n := len(runes)
	for i := 0; i < n; {
		r := runes[i]
		if isWordRune(r) {
			j := i + 1
			for j < n {
				if isWordRune(runes[j]) {
					j++
					continue
				}
				if j+1 < n && isJoiner(runes[j-1], runes[j], runes[j+1]) {
					j++
					continue
				}
				break
			}
			lastWord = runes[i:j]
			lastWordEnd = j
			seg.words = append(seg.words, lastWord)
			wordsInSentence++
			i = j
			continue
		}
		if !isTerminator(r) {
			i++
			continue
		}

		k := i
		for k < n && isTerminator(runes[k]) {
			k++
		}
		m := k
		for m < n && isCloser(runes[m]) {
			m++
		}
		atBoundary := m == n || unicode.IsSpace(runes[m])
		guarded := lastWordEnd == i && isAbbreviation(lastWord, abbreviations)
		if atBoundary && !guarded && wordsInSentence > 0 {
			seg.sentences++
			wordsInSentence = 0
		}
		i = k
	}
	if wordsInSentence > 0 {
		seg.sentences++
	}
	return seg
}

func isAbbreviation(word []rune, abbreviations map[string]struct{}) bool {
	if len(word) == 1 && unicode.IsUpper(word[0]) {
		return true
	}
	if len(abbreviations) == 0 {
		return false
	}
	_, ok := abbreviations[strings.ToLower(string(word))]
	return ok
}

// CountWords counts words in a single pass without allocating.
func CountWords(s string) int {
	count := 0
	inWord := false
	prev := rune(-1)
	for i := 0; i < len(s); {
		r, size := utf8.DecodeRuneInString(s[i:])
		switch {
		case isWordRune(r):
			if !inWord {
				count++
				inWord = true
			}
		case inWord:
			next, _ := utf8.DecodeRuneInString(s[i+size:])
			if i+size >= len(s) || !isJoiner(prev, r, next) {
				inWord = false
			}
		}
		prev = r
		i += size
	}
	return count
}

// ParagraphRanges returns the rune ranges of each paragraph: maximal runs of
// non-blank lines separated by blank lines or U+2029.
func ParagraphRanges(text string) []Range {
	return paragraphRanges([]rune(text))
}

func paragraphRanges(runes []rune) []Range {
	var out []Range
	paraStart, paraEnd := -1, -1
	lineStart := 0
	blank := true

	endLine := func(lineEnd int) {
		if blank {
			if paraStart >= 0 {
				out = append(out, Range{Start: paraStart, End: paraEnd})
				paraStart = -1
			}
			return
		}
		if paraStart < 0 {
			paraStart = lineStart
		}
		paraEnd = lineEnd
	}

	n := len(runes)
	for i := 0; i < n; i++ {
		r := runes[i]
		if r == '\n' || r == '\r' || r == '\u2029' {
			endLine(i)
			if r == '\r' && i+1 < n && runes[i+1] == '\n' {
				i++
			}
			if r == '\u2029' && paraStart >= 0 {
				out = append(out, Range{Start: paraStart, End: paraEnd})
				paraStart = -1
			}
			lineStart = i + 1
			blank = true
			continue
		}
		if !unicode.IsSpace(r) {
			blank = false
		}
	}
	endLine(n)
	if paraStart >= 0 {
		out = append(out, Range{Start: paraStart, End: paraEnd})
	}
	return out
}
