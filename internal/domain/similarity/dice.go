// Package similarity implements the bigram Dice coefficient shared by the
// file-level and function-level duplicate checks.
package similarity

// Bigrams is a multiset of adjacent byte pairs.
type Bigrams struct {
	counts map[uint16]int
	total  int
}

// NewBigrams builds the bigram multiset of s.
func NewBigrams(s string) Bigrams {
	b := Bigrams{counts: make(map[uint16]int, min(len(s), 1<<12))}
	for i := 0; i+1 < len(s); i++ {
		b.counts[uint16(s[i])<<8|uint16(s[i+1])]++
		b.total++
	}
	return b
}

// Len returns the number of bigrams, counting repeats.
func (b Bigrams) Len() int { return b.total }

// DiceBigrams returns 2·|A∩B| / (|A|+|B|) over multisets. An input without
// bigrams shares nothing.
func DiceBigrams(a, b Bigrams) float64 {
	if a.total == 0 || b.total == 0 {
		return 0
	}
	small, large := a, b
	if len(small.counts) > len(large.counts) {
		small, large = large, small
	}
	shared := 0
	for k, n := range small.counts {
		if m, ok := large.counts[k]; ok {
			shared += min(n, m)
		}
	}
	return 2 * float64(shared) / float64(a.total+b.total)
}

// Dice is DiceBigrams over raw strings. Equal strings score 1.
func Dice(a, b string) float64 {
	if a == b {
		return 1
	}
	return DiceBigrams(NewBigrams(a), NewBigrams(b))
}
