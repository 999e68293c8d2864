package textstats

import "unicode"

// LixBand is the difficulty band of a LIX score.
type LixBand int

const (
	LixVeryEasy LixBand = iota
	LixEasy
	LixMedium
	LixDifficult
	LixVeryDifficult
)

// Ascending upper bounds for each band except the last.
var lixThresholds = []float64{25, 35, 45, 55}

func (b LixBand) String() string {
	switch b {
	case LixVeryEasy:
		return "Very Easy"
	case LixEasy:
		return "Easy"
	case LixMedium:
		return "Medium"
	case LixDifficult:
		return "Difficult"
	case LixVeryDifficult:
		return "Very Difficult"
	default:
		return "Unknown"
	}
}

// BandFor maps a LIX score to its band.
func BandFor(score float64) LixBand {
	for i, limit := range lixThresholds {
		if score < limit {
			return LixBand(i)
		}
	}
	return LixVeryDifficult
}

func lix(words, sentences, longWords int) float64 {
	if words == 0 || sentences == 0 {
		return 0
	}
	return float64(words)/float64(sentences) + 100*float64(longWords)/float64(words)
}

func readabilityIndex(words, sentences, complexWords int) float64 {
	if words == 0 || sentences == 0 {
		return 0
	}
	return 0.4 * (float64(words)/float64(sentences) + 100*float64(complexWords)/float64(words))
}

// Syllables estimates the syllable count of a word.
func Syllables(word string) int {
	return syllables([]rune(word))
}

func syllables(word []rune) int {
	groups := 0
	inGroup := false
	lastGroupLen := 0
	lastVowel := rune(0)
	for _, r := range word {
		r = unicode.ToLower(r)
		if isVowel(r) {
			if !inGroup {
				groups++
				inGroup = true
				lastGroupLen = 0
			}
			lastGroupLen++
			lastVowel = r
			continue
		}
		inGroup = false
	}
	// A lone trailing "e" is usually silent ("table", "write").
	if groups > 1 && inGroup && lastGroupLen == 1 && lastVowel == 'e' {
		groups--
	}
	if groups < 1 {
		return 1
	}
	return groups
}

func isVowel(r rune) bool {
	switch r {
	case 'a', 'e', 'i', 'o', 'u', 'y':
		return true
	}
	return false
}
