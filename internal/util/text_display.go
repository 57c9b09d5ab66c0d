package util

import (
	"strings"
	"unicode"
)

// DisplaySnippet collapses whitespace and cuts s to maxRunes, marking the cut with "...".
func DisplaySnippet(s string, maxRunes int) string {
	if maxRunes <= 0 {
		maxRunes = 420
	}
	s = normalizeWhitespace(SanitizeText(s))
	return Ellipsize(s, maxRunes)
}

// Ellipsize cuts s to maxRunes runes and appends "..." when anything was dropped.
func Ellipsize(s string, maxRunes int) string {
	runes := []rune(s)
	if maxRunes <= 0 || len(runes) <= maxRunes {
		return s
	}
	return strings.TrimRightFunc(string(runes[:maxRunes]), unicode.IsSpace) + "..."
}

// KeyTerms returns the lowercased, de-duplicated words of s that carry meaning
// for a product search, in order of first appearance.
func KeyTerms(s string) []string {
	fields := strings.Fields(strings.ToLower(SanitizeText(s)))
	uniq := map[string]struct{}{}
	terms := make([]string, 0, len(fields))
	for _, f := range fields {
		f = strings.Trim(f, ",.;:!?()[]{}\"'`“”‘’")
		if len([]rune(f)) < 2 {
			continue
		}
		if _, ok := stopWords[f]; ok {
			continue
		}
		if _, ok := uniq[f]; ok {
			continue
		}
		uniq[f] = struct{}{}
		terms = append(terms, f)
	}
	return terms
}

var stopWords = map[string]struct{}{
	"a": {}, "an": {}, "to": {}, "of": {}, "in": {}, "on": {}, "is": {}, "it": {}, "me": {}, "my": {},
	"do": {}, "be": {}, "by": {}, "or": {}, "at": {}, "us": {}, "we": {}, "so": {}, "if": {}, "as": {},
	"i'm": {}, "what's": {}, "there's": {}, "any": {}, "all": {}, "get": {}, "got": {}, "who": {},
	"the": {}, "and": {}, "for": {}, "are": {}, "was": {}, "were": {}, "what": {}, "how": {},
	"why": {}, "which": {}, "that": {}, "this": {}, "these": {}, "those": {}, "with": {},
	"from": {}, "about": {}, "some": {}, "can": {}, "you": {}, "your": {}, "there": {},
	"show": {}, "find": {}, "search": {}, "give": {}, "list": {}, "tell": {}, "today": {},
	"today's": {}, "product": {}, "products": {}, "hunt": {}, "launched": {}, "launches": {},
	"new": {}, "please": {}, "look": {}, "looking": {}, "tools": {}, "apps": {}, "app": {},
}

func normalizeWhitespace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
