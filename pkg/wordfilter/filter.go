// Package wordfilter blocks messages containing known profanity and scam
// indicators. Matching is case-insensitive and whole-word (an entry never
// matches inside a longer word); multi-word entries match as phrases.
package wordfilter

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// DefaultBlocklist covers Swedish and English profanity plus phrases that
// show up in marketplace scams (advance-fee, off-platform payment bait).
var DefaultBlocklist = []string{
	// scam indicators
	"western union",
	"moneygram",
	"gift card",
	"presentkort i förskott",
	"bankid kod",
	"förskottsbetalning via",
	"shipping agent",
	"escrow service",
	"verification code",
	"verifieringskod",
	// profanity
	"jävla",
	"fitta",
	"kuk",
	"hora",
	"fuck",
	"shit",
	"bitch",
	"cunt",
}

// Filter matches text against a fixed blocklist.
type Filter struct {
	entries []string
}

// New builds a Filter. Entries are lowercased once at construction;
// nil words falls back to DefaultBlocklist.
func New(words []string) *Filter {
	if words == nil {
		words = DefaultBlocklist
	}
	entries := make([]string, 0, len(words))
	for _, w := range words {
		w = strings.ToLower(strings.TrimSpace(w))
		if w != "" {
			entries = append(entries, w)
		}
	}
	return &Filter{entries: entries}
}

// Match reports the first blocklist entry found in text as a whole word
// (or whole phrase). Returns ("", false) when the text is clean.
func (f *Filter) Match(text string) (string, bool) {
	lower := strings.ToLower(text)
	for _, entry := range f.entries {
		if containsWord(lower, entry) {
			return entry, true
		}
	}
	return "", false
}

// containsWord reports whether entry occurs in text delimited by non-word
// runes. Both inputs are already lowercased.
func containsWord(text, entry string) bool {
	for start := 0; ; {
		idx := strings.Index(text[start:], entry)
		if idx < 0 {
			return false
		}
		idx += start
		end := idx + len(entry)

		if boundaryBefore(text, idx) && boundaryAfter(text, end) {
			return true
		}
		start = idx + 1
	}
}

func boundaryBefore(text string, idx int) bool {
	if idx == 0 {
		return true
	}
	r, _ := utf8.DecodeLastRuneInString(text[:idx])
	return !isWordRune(r)
}

func boundaryAfter(text string, end int) bool {
	if end >= len(text) {
		return true
	}
	r, _ := utf8.DecodeRuneInString(text[end:])
	return !isWordRune(r)
}

func isWordRune(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsDigit(r)
}
