package text

import (
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// newNormalizer creates the transformation applied to every document before tokenization.
// It replaces ill-formed utf-8 with the replacement rune, decomposes
// compatibility characters and drops the combining marks e.g. accents.
func newNormalizer() transform.Transformer {
	return transform.Chain(
		runes.ReplaceIllFormed(),
		norm.NFKD,
		runes.Remove(runes.In(unicode.Mn)),
		norm.NFC,
	)
}

// StripAccents returns the normalized form of the given string without accents.
func StripAccents(s string) string {
	out, _, err := transform.String(newNormalizer(), s)
	if err != nil {
		// the chain only replaces or removes runes, keep the input as is if it still fails
		return s
	}
	return out
}
