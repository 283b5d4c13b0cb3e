package text

import "strings"

// NGrams constructs all the word n-grams of order lo up to hi (inclusive) for the given tokens.
// Tokens of the same n-gram are joined with a single space.
// Orders larger than the number of tokens are skipped.
func NGrams(toks Tokens, lo, hi int) Tokens {
	if lo < 1 {
		lo = 1
	}
	var nGrams Tokens
	if lo == 1 {
		nGrams = append(nGrams, toks...)
		lo = 2
	}
	for n := lo; n <= hi; n++ {
		for i := 0; i+n <= len(toks); i++ {
			nGrams = append(nGrams, strings.Join(toks[i:i+n], " "))
		}
	}
	return nGrams
}

// CharNGrams constructs the character n-grams of order lo up to hi within word boundaries.
// Every word is padded with a space on each side and short words are counted only once.
func CharNGrams(words Tokens, lo, hi int) Tokens {
	var nGrams Tokens
	for _, word := range words {
		w := []rune(" " + word + " ")
		for n := lo; n <= hi; n++ {
			offset := 0
			nGrams = append(nGrams, string(w[offset:minInt(offset+n, len(w))]))
			for offset+n < len(w) {
				offset++
				nGrams = append(nGrams, string(w[offset:offset+n]))
			}
			if offset == 0 {
				break
			}
		}
	}
	return nGrams
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}
