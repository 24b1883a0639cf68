package similarity_test

import (
	"testing"

	"github.com/openkraft/excess/internal/domain/similarity"
	"github.com/stretchr/testify/assert"
)

func TestDice(t *testing.T) {
	tests := []struct {
		name string
		a, b string
		want float64
	}{
		{"identical", "function add(a, b)", "function add(a, b)", 1},
		{"both empty", "", "", 1},
		{"one empty", "abc", "", 0},
		{"single char each", "a", "b", 0},
		{"disjoint", "abab", "cdcd", 0},
		// night: ni ig gh ht / nacht: na ac ch ht -> shared 1 -> 2/8
		{"night nacht", "night", "nacht", 0.25},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, similarity.Dice(tt.a, tt.b), 0.0001)
		})
	}
}

func TestDice_Symmetric(t *testing.T) {
	a := "export const total = items.reduce((s, i) => s + i.price, 0)"
	b := "export const sum = items.reduce((acc, x) => acc + x.cost, 0)"
	assert.InDelta(t, similarity.Dice(a, b), similarity.Dice(b, a), 1e-12)
}

func TestDiceBigrams_MultisetCounts(t *testing.T) {
	// "aaa" has bigrams {aa, aa}; "aa" has {aa}. shared = 1 -> 2/3
	a := similarity.NewBigrams("aaa")
	b := similarity.NewBigrams("aa")
	assert.Equal(t, 2, a.Len())
	assert.InDelta(t, 2.0/3.0, similarity.DiceBigrams(a, b), 0.0001)
}
