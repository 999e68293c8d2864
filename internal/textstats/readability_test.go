package textstats

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSyllables(t *testing.T) {
	cases := map[string]int{
		"cat":           1,
		"rhythm":        1,
		"the":           1,
		"table":         1,
		"agree":         2,
		"hello":         2,
		"beautiful":     3,
		"understanding": 4,
		"QUEUE":         1,
		"123":           1,
		"re-elect":      3,
		"re-use":        2,
		"co'operate":    4,
	}
	for word, want := range cases {
		assert.Equal(t, want, Syllables(word), word)
	}
}

func TestBandFor(t *testing.T) {
	assert.Equal(t, LixVeryEasy, BandFor(0))
	assert.Equal(t, LixVeryEasy, BandFor(24.9))
	assert.Equal(t, LixEasy, BandFor(25))
	assert.Equal(t, LixMedium, BandFor(40))
	assert.Equal(t, LixDifficult, BandFor(54.99))
	assert.Equal(t, LixVeryDifficult, BandFor(55))
	assert.Equal(t, "Very Difficult", LixVeryDifficult.String())
	assert.Equal(t, "Unknown", LixBand(99).String())
}

func TestRatiosGuardZeroDenominators(t *testing.T) {
	assert.Zero(t, lix(0, 0, 0))
	assert.Zero(t, lix(5, 0, 1))
	assert.Zero(t, readabilityIndex(0, 1, 0))
	assert.Zero(t, readabilityIndex(3, 0, 0))
}
