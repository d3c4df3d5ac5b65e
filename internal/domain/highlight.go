package domain

import (
	"strings"
	"unicode"
)

// koreanParticles may follow a Korean word without a space
var koreanParticles = []string{"은", "는", "이", "가", "을", "를", "과", "와", "에", "의"}

// Fragment is a piece of highlighted text
type Fragment struct {
	Text  string
	Match bool
}

// WordVariants returns the forms of word that count as a mention of it,
// in matching priority: the word itself, regular and irregular English
// plurals, then the word followed by a Korean particle
func WordVariants(word string) []string {
	variants := []string{word, word + "s", word + "es"}

	switch {
	case strings.HasSuffix(word, "y"):
		variants = append(variants, strings.TrimSuffix(word, "y")+"ies")
	case strings.HasSuffix(word, "f"):
		variants = append(variants, strings.TrimSuffix(word, "f")+"ves")
	case strings.HasSuffix(word, "fe"):
		variants = append(variants, strings.TrimSuffix(word, "fe")+"ves")
	}

	for _, particle := range koreanParticles {
		variants = append(variants, word+particle)
	}
	return variants
}

// Highlight splits sentence into fragments, marking whole-word mentions of
// word case-insensitively. Word boundaries are Unicode-aware, so Hangul
// and Cyrillic behave like Latin letters.
func Highlight(sentence, word string) []Fragment {
	if sentence == "" {
		return nil
	}
	if word == "" {
		return []Fragment{{Text: sentence}}
	}

	variants := WordVariants(word)
	text := []rune(sentence)

	var fragments []Fragment
	start := 0
	for i := 0; i < len(text); {
		n := matchVariant(text, i, variants)
		if n == 0 {
			i++
			continue
		}
		if start < i {
			fragments = append(fragments, Fragment{Text: string(text[start:i])})
		}
		fragments = append(fragments, Fragment{Text: string(text[i : i+n]), Match: true})
		i += n
		start = i
	}
	if start < len(text) {
		fragments = append(fragments, Fragment{Text: string(text[start:])})
	}
	return fragments
}

// HighlightString wraps every mention of word in sentence with prefix and suffix
func HighlightString(sentence, word, prefix, suffix string) string {
	var b strings.Builder
	for _, f := range Highlight(sentence, word) {
		if f.Match {
			b.WriteString(prefix)
			b.WriteString(f.Text)
			b.WriteString(suffix)
			continue
		}
		b.WriteString(f.Text)
	}
	return b.String()
}

// matchVariant returns the rune length of the first variant found at text[i:]
// between two word boundaries, or 0
func matchVariant(text []rune, i int, variants []string) int {
	if !isBoundary(text, i) {
		return 0
	}
	for _, v := range variants {
		n := len([]rune(v))
		if n == 0 || i+n > len(text) {
			continue
		}
		if strings.EqualFold(string(text[i:i+n]), v) && isBoundary(text, i+n) {
			return n
		}
	}
	return 0
}

// isBoundary reports whether a word starts or ends between text[i-1] and text[i]
func isBoundary(text []rune, i int) bool {
	before := i > 0 && isWordRune(text[i-1])
	after := i < len(text) && isWordRune(text[i])
	return before != after
}

func isWordRune(r rune) bool {
	return r == '_' || unicode.IsLetter(r) || unicode.IsDigit(r) || unicode.IsMark(r)
}
