/*
Package moderation implements the profanity filter and the chat moderation policy.

A Filter holds two kinds of blocked terms. Plain words (ASCII letters only) match whole
tokens case-insensitively. Every other term is a phrase and matches anywhere in the text:
scripts such as Chinese are not space-delimited, separator-spelled variants like "h.s.b.c"
never form a token, and digit look-alikes like "h5bc" are disguised spellings.
Filters are immutable and safe for concurrent use.
*/
package moderation

import (
	"strings"
	"unicode"
)

// Mask replaces every non-space rune of a blocked term.
const Mask = '*'

// Filter detects and masks blocked terms.
type Filter struct {
	words   map[string]struct{}
	phrases [][]rune
}

// NewFilter builds a filter from the given terms.
func NewFilter(terms ...string) *Filter {
	f := &Filter{words: make(map[string]struct{})}
	f.add(terms)
	return f
}

// Default returns a filter seeded with the base English blocklist.
func Default() *Filter {
	return NewFilter(BaseWords...)
}

// AddWords returns a copy of f extended with terms. f itself is unchanged.
func (f *Filter) AddWords(terms ...string) *Filter {
	out := &Filter{
		words:   make(map[string]struct{}, len(f.words)+len(terms)),
		phrases: make([][]rune, len(f.phrases), len(f.phrases)+len(terms)),
	}
	for w := range f.words {
		out.words[w] = struct{}{}
	}
	copy(out.phrases, f.phrases)
	out.add(terms)
	return out
}

func (f *Filter) add(terms []string) {
	for _, t := range terms {
		t = strings.TrimSpace(t)
		if t == "" {
			continue
		}
		if isPlainWord(t) {
			f.words[strings.ToLower(t)] = struct{}{}
			continue
		}
		phrase := lowerRunes(t)
		if !f.hasPhraseTerm(phrase) {
			f.phrases = append(f.phrases, phrase)
		}
	}
}

func (f *Filter) hasPhraseTerm(phrase []rune) bool {
	for _, p := range f.phrases {
		if string(p) == string(phrase) {
			return true
		}
	}
	return false
}

// IsProfane reports whether text contains any blocked word or phrase.
func (f *Filter) IsProfane(text string) bool {
	runes := lowerRunes(text)

	for _, tok := range tokens(runes) {
		if _, ok := f.words[string(runes[tok.start:tok.end])]; ok {
			return true
		}
	}

	return f.ContainsPhrase(text)
}

// ContainsPhrase reports whether text contains one of the filter's phrase terms.
func (f *Filter) ContainsPhrase(text string) bool {
	runes := lowerRunes(text)
	for _, p := range f.phrases {
		if indexRunes(runes, p, 0) >= 0 {
			return true
		}
	}
	return false
}

// Clean masks every blocked word and phrase in text, keeping its length in runes.
func (f *Filter) Clean(text string) string {
	original := []rune(text)
	lowered := lowerRunes(text)
	masked := make([]bool, len(original))

	for _, tok := range tokens(lowered) {
		if _, ok := f.words[string(lowered[tok.start:tok.end])]; ok {
			for i := tok.start; i < tok.end; i++ {
				masked[i] = true
			}
		}
	}

	for _, p := range f.phrases {
		for from := 0; ; {
			at := indexRunes(lowered, p, from)
			if at < 0 {
				break
			}
			for i := at; i < at+len(p); i++ {
				masked[i] = true
			}
			from = at + len(p)
		}
	}

	changed := false
	for i, m := range masked {
		if m && !unicode.IsSpace(original[i]) {
			original[i] = Mask
			changed = true
		}
	}

	if !changed {
		return text
	}
	return string(original)
}

type span struct{ start, end int }

// tokens splits runes into runs of letters and digits.
func tokens(runes []rune) []span {
	var out []span
	start := -1
	for i, r := range runes {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			if start < 0 {
				start = i
			}
			continue
		}
		if start >= 0 {
			out = append(out, span{start, i})
			start = -1
		}
	}
	if start >= 0 {
		out = append(out, span{start, len(runes)})
	}
	return out
}

func isPlainWord(term string) bool {
	for _, r := range term {
		if r > unicode.MaxASCII || !unicode.IsLetter(r) {
			return false
		}
	}
	return true
}

// lowerRunes lowercases rune by rune so indices line up with []rune(s).
func lowerRunes(s string) []rune {
	runes := []rune(s)
	for i, r := range runes {
		runes[i] = unicode.ToLower(r)
	}
	return runes
}

func indexRunes(haystack, needle []rune, from int) int {
	if len(needle) == 0 {
		return -1
	}
	for i := from; i+len(needle) <= len(haystack); i++ {
		match := true
		for j := range needle {
			if haystack[i+j] != needle[j] {
				match = false
				break
			}
		}
		if match {
			return i
		}
	}
	return -1
}
