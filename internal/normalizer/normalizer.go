// Package normalizer turns raw question text into the canonical form used
// both when a corpus is indexed and when a query is answered. It lower-cases
// input, splits it into Latin/Cyrillic alphanumeric runs and removes the
// stop-words of the detected language.
package normalizer

import (
	"strings"
	"unicode"
)

// Language selects the stop-word table applied to a text.
type Language int

const (
	English Language = iota
	Russian
)

func (l Language) String() string {
	if l == Russian {
		return "ru"
	}
	return "en"
}

var englishStopWords = map[string]struct{}{
	"a": {}, "an": {}, "the": {}, "is": {}, "are": {}, "am": {},
	"was": {}, "were": {}, "to": {}, "for": {}, "of": {}, "and": {},
	"or": {}, "in": {}, "on": {}, "at": {}, "how": {}, "what": {},
}

var russianStopWords = map[string]struct{}{
	"и": {}, "в": {}, "на": {}, "с": {}, "по": {}, "о": {},
	"что": {}, "как": {}, "это": {}, "для": {}, "к": {}, "из": {},
}

// Normalize returns the space-joined, stop-word-free tokens of text. An
// empty result means the text carries no usable signal.
func Normalize(text string) string {
	tokens := Tokenize(text)
	if len(tokens) == 0 {
		return ""
	}
	stopWords := englishStopWords
	if DetectLanguage(text) == Russian {
		stopWords = russianStopWords
	}
	kept := tokens[:0]
	for _, token := range tokens {
		if _, isStop := stopWords[token]; isStop {
			continue
		}
		kept = append(kept, token)
	}
	return strings.Join(kept, " ")
}

// Tokenize lower-cases text and returns its maximal runs of Latin letters,
// Cyrillic letters and ASCII digits. Stop-words are not removed.
func Tokenize(text string) []string {
	var tokens []string
	var current strings.Builder
	for _, r := range text {
		r = unicode.ToLower(r)
		if isTokenRune(r) {
			current.WriteRune(r)
			continue
		}
		if current.Len() > 0 {
			tokens = append(tokens, current.String())
			current.Reset()
		}
	}
	if current.Len() > 0 {
		tokens = append(tokens, current.String())
	}
	return tokens
}

// Fields splits already-normalized text back into tokens.
func Fields(normalized string) []string {
	return strings.Fields(normalized)
}

// DetectLanguage reports Russian when text contains any Cyrillic letter.
func DetectLanguage(text string) Language {
	if ContainsCyrillic(text) {
		return Russian
	}
	return English
}

// ContainsCyrillic reports whether text has at least one letter of the
// Russian alphabet, in either case.
func ContainsCyrillic(text string) bool {
	for _, r := range text {
		if isCyrillic(unicode.ToLower(r)) {
			return true
		}
	}
	return false
}

func isTokenRune(r rune) bool {
	return (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') || isCyrillic(r)
}

func isCyrillic(r rune) bool {
	return (r >= 'а' && r <= 'я') || r == 'ё'
}
