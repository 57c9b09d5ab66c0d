package extract

import (
	"math"
	"regexp"
	"strings"
	"unicode/utf8"
)

const (
	maxPositiveQuotes = 3
	maxNegativeQuotes = 2
	minQuoteRunes     = 21
	minBulletRunes    = 11
	defaultScore      = 75
	defaultAnalyzed   = 10
)

var (
	namePatterns = []*regexp.Regexp{
		regexp.MustCompile(`(?im)^\**([^\n*]+?)\**\s+has received`),
		regexp.MustCompile(`(?i)sentiment for\s+["'“]?\**([^"'”\n:,.*]+)`),
		regexp.MustCompile(`(?i)about\s+["'“]?\**([^"'”\n:*]+?)\**["'”]?\s*:`),
		regexp.MustCompile(`(?im)^\**([^\n*]+?)\**\s+sentiment analysis`),
	}

	quoteRe    = regexp.MustCompile(`[“"]([^”"\n]+)[”"]`)
	bulletRe   = regexp.MustCompile(`(?m)^[ \t]*(?:[-•]|\*[ \t])[ \t]*(.+)$`)
	countRe    = regexp.MustCompile(`(?i)^(?:positive|negative|neutral)\b`)
	analyzedRe = regexp.MustCompile(`(?i)(\d+)\s+comments?\s+analyzed`)

	positiveMarkerRe = regexp.MustCompile(`(?i)\b(?:like|likes|love|loved|positive|praise|praised|pros|strengths|highlights)\b`)
	negativeMarkerRe = regexp.MustCompile(`(?i)\b(?:dislike|dislikes|negative|concerns?|criticism|cons|complaints?|issues|drawbacks|weaknesses)\b`)
)

type countPattern struct {
	labelFirst  *regexp.Regexp
	numberFirst *regexp.Regexp
}

func newCountPattern(label string) countPattern {
	return countPattern{
		labelFirst:  regexp.MustCompile(`(?i)` + label + `[^\d\n]{0,30}?(\d+)`),
		numberFirst: regexp.MustCompile(`(?i)(\d+)\s+` + label),
	}
}

var (
	positiveCount = newCountPattern("positive")
	negativeCount = newCountPattern("negative")
	neutralCount  = newCountPattern("neutral")
)

// find returns the count from whichever phrasing, "Positive: 3" or
// "3 positive", appears first in text.
func (p countPattern) find(text string) int {
	a := p.labelFirst.FindStringSubmatchIndex(text)
	b := p.numberFirst.FindStringSubmatchIndex(text)
	switch {
	case a == nil && b == nil:
		return 0
	case b == nil || (a != nil && a[0] < b[0]):
		return atoi(text[a[2]:a[3]])
	default:
		return atoi(text[b[2]:b[3]])
	}
}

// ParseSentiment reads a sentiment card out of an answer. It returns nil when
// no product name can be found, or when there is neither a score nor a
// positive quote to show.
func ParseSentiment(text string) *Sentiment {
	name := sentimentProduct(text)

	pos := positiveCount.find(text)
	neg := negativeCount.find(text)
	neu := neutralCount.find(text)
	total := pos + neg + neu
	score := 0
	if total > 0 {
		score = int(math.Round(100 * float64(pos) / float64(total)))
	}

	positive, negative := quotesBySection(text)
	if len(positive) == 0 && len(negative) == 0 {
		positive, negative = bulletsByHalf(text)
	}

	if name == "" || (score == 0 && len(positive) == 0) {
		return nil
	}

	analyzed := 0
	if m := analyzedRe.FindStringSubmatch(text); m != nil {
		analyzed = atoi(m[1])
	}
	if analyzed == 0 {
		analyzed = total
	}
	if analyzed == 0 {
		analyzed = defaultAnalyzed
	}
	if score == 0 {
		score = defaultScore
	}
	return &Sentiment{
		Product:          name,
		Score:            score,
		Positive:         firstN(positive, maxPositiveQuotes),
		Negative:         firstN(negative, maxNegativeQuotes),
		AnalyzedComments: analyzed,
	}
}

func sentimentProduct(text string) string {
	for _, re := range namePatterns {
		if m := re.FindStringSubmatch(text); m != nil {
			name := strings.Trim(cleanMarkup(m[1]), `"'“”`)
			if name != "" {
				return name
			}
		}
	}
	return ""
}

// quotesBySection files each long quote under the nearest section marker
// before it. Quoted text is masked out first so words inside quotes do not
// count as markers. Positive fills first; once it has three quotes the rest
// go to negative.
func quotesBySection(text string) (positive, negative []string) {
	positive, negative = []string{}, []string{}
	matches := quoteRe.FindAllStringSubmatchIndex(text, -1)
	masked := []byte(text)
	for _, m := range matches {
		for i := m[0]; i < m[1]; i++ {
			masked[i] = ' '
		}
	}
	for _, m := range matches {
		quote := strings.TrimSpace(text[m[2]:m[3]])
		if utf8.RuneCountInString(quote) < minQuoteRunes {
			continue
		}
		inPositive := sectionIsPositive(string(masked[:m[0]]))
		switch {
		case inPositive && len(positive) < maxPositiveQuotes:
			positive = append(positive, quote)
		case len(negative) < maxNegativeQuotes && (!inPositive || len(positive) >= maxPositiveQuotes):
			negative = append(negative, quote)
		}
	}
	return positive, negative
}

// sectionIsPositive reports whether the last marker in prefix is a positive
// one. No marker at all counts as positive.
func sectionIsPositive(prefix string) bool {
	p := lastIndex(positiveMarkerRe, prefix)
	n := lastIndex(negativeMarkerRe, prefix)
	return n < 0 || p > n
}

func lastIndex(re *regexp.Regexp, s string) int {
	all := re.FindAllStringIndex(s, -1)
	if len(all) == 0 {
		return -1
	}
	return all[len(all)-1][0]
}

func bulletsByHalf(text string) (positive, negative []string) {
	positive, negative = []string{}, []string{}
	var bullets []string
	for _, m := range bulletRe.FindAllStringSubmatch(text, -1) {
		b := cleanMarkup(m[1])
		if utf8.RuneCountInString(b) < minBulletRunes || countRe.MatchString(b) {
			continue
		}
		bullets = append(bullets, b)
	}
	for i, b := range bullets {
		if float64(i) < float64(len(bullets))/2 {
			positive = append(positive, b)
		} else {
			negative = append(negative, b)
		}
	}
	return positive, negative
}

func firstN(s []string, n int) []string {
	if len(s) > n {
		return s[:n]
	}
	return s
}
