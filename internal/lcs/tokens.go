package lcs

import (
	"regexp"
	"sort"
	"strings"

	"github.com/koustreak/schemadiff/internal/errs"
)

var (
	lineBreak = regexp.MustCompile(`\r\n|\r|\n`)
	wordRun   = regexp.MustCompile(`\w+|\W+`)
)

// Tokenizer splits text into tokens for Diff.
type Tokenizer func(string) []string

// Chars yields one token per rune.
func Chars(s string) []string {
	out := make([]string, 0, len(s))
	for _, r := range s {
		out = append(out, string(r))
	}
	return out
}

// Lines splits on any line break. Trailing empty lines are dropped.
func Lines(s string) []string {
	if s == "" {
		return nil
	}
	out := lineBreak.Split(s, -1)
	for len(out) > 0 && out[len(out)-1] == "" {
		out = out[:len(out)-1]
	}
	return out
}

// Words yields alternating runs of word and non-word characters, so that
// joining the tokens gives back s.
func Words(s string) []string {
	return wordRun.FindAllString(s, -1)
}

var tokenizers = map[string]Tokenizer{
	"chars": Chars,
	"lines": Lines,
	"words": Words,
}

// TokenizerByName returns the tokenizer registered as name ("chars", "lines"
// or "words").
func TokenizerByName(name string) (Tokenizer, error) {
	tk, ok := tokenizers[strings.ToLower(name)]
	if !ok {
		return nil, errs.Newf(errs.ErrKindInvalidInput,
			"unknown tokenizer %q (want one of %s)", name, strings.Join(TokenizerNames(), ", "))
	}
	return tk, nil
}

// TokenizerNames lists the registered tokenizer names, sorted.
func TokenizerNames() []string {
	names := make([]string, 0, len(tokenizers))
	for n := range tokenizers {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// Glue concatenates string tokens.
func Glue(tokens []string) string {
	return strings.Join(tokens, "")
}
