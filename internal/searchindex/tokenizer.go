package searchindex

import (
	"regexp"
	"strings"

	"github.com/kljensen/snowball/english"
)

/*
Tokenize implements spec.md §4.3's tokenization pipeline: lowercasing,
word-regex, stop-word removal, stemming. Every step runs before
submission to the search backend; SB stores both the raw content and
the resulting token list.
*/
func Tokenize(text string) []string {
	words := wordPattern.FindAllString(strings.ToLower(text), -1)
	tokens := make([]string, 0, len(words))
	for _, w := range words {
		if stopWords[w] {
			continue
		}
		stemmed, err := english.Stem(w, false)
		if err != nil || stemmed == "" {
			stemmed = w
		}
		tokens = append(tokens, stemmed)
	}
	return tokens
}

// wordPattern matches runs of letters and digits, the word-regex spec.md
// §4.3 names without specifying its exact shape.
var wordPattern = regexp.MustCompile(`[a-z0-9]+`)

// stopWords is a small, fixed English stop-word list. Not configurable:
// spec.md treats stop-word removal as a fixed pipeline stage, not a
// tunable crawl option.
var stopWords = map[string]bool{
	"a": true, "an": true, "and": true, "are": true, "as": true, "at": true,
	"be": true, "by": true, "for": true, "from": true, "has": true, "he": true,
	"in": true, "is": true, "it": true, "its": true, "of": true, "on": true,
	"that": true, "the": true, "to": true, "was": true, "were": true,
	"will": true, "with": true, "this": true, "but": true, "or": true,
	"not": true, "you": true, "your": true, "we": true, "i": true,
}
