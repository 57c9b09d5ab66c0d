package extract

import (
	"regexp"
	"strconv"
	"strings"
)

var (
	singleRe      = regexp.MustCompile(`(?i)(?:best|hottest)\s+product.*?is\s+\*\*(.*?)\*\*`)
	singleVotesRe = regexp.MustCompile(`(?i)votes?[:\s]+(\d[\d,]*)`)
	singleCommRe  = regexp.MustCompile(`(?i)comments?[:\s]+(\d[\d,]*)`)
	singleDescRe  = regexp.MustCompile(`(?i)(?:focuses on|provides?|which is an?)\s+(.*?)(?:\.|,)`)

	itemRe        = regexp.MustCompile(`^\d+\.\s*\*\*(.*?)\*\*`)
	itemDashRe    = regexp.MustCompile(`^\d+\.\s*\*\*.*?\*\*\s*[-–:]\s*(.+)`)
	boldLineRe    = regexp.MustCompile(`^[-–]\s*\*\*(.+?)\*\*`)
	taglineRe     = regexp.MustCompile(`(?i)tagline:\s*(.+)`)
	lineVotesRe   = regexp.MustCompile(`(?i)(\d[\d,]*)\s*votes?\b`)
	lineCommentRe = regexp.MustCompile(`(?i)(\d[\d,]*)\s*comments?\b`)
	topicsRe      = regexp.MustCompile(`(?i)topics?:\s*(.+)`)
)

// ParseProducts reads product cards out of an answer. A "the hottest product
// is **X**" sentence yields a single card. Otherwise every "1. **X**" line
// starts a card that the following lines fill in.
func ParseProducts(text string) []Card {
	if m := singleRe.FindStringSubmatch(text); m != nil {
		return []Card{parseSingle(text, m[1])}
	}

	var (
		out []Card
		cur *Card
	)
	flush := func() {
		if cur != nil {
			out = append(out, *cur)
		}
	}
	for _, raw := range strings.Split(text, "\n") {
		line := strings.TrimSpace(raw)
		if m := itemRe.FindStringSubmatch(line); m != nil {
			flush()
			cur = &Card{Name: cleanMarkup(m[1]), Topics: []string{}}
			if d := itemDashRe.FindStringSubmatch(line); d != nil {
				cur.Tagline = cleanMarkup(d[1])
			}
		} else if cur != nil {
			if m := boldLineRe.FindStringSubmatch(line); m != nil && cur.Tagline == "" {
				cur.Tagline = cleanMarkup(m[1])
			} else if m := taglineRe.FindStringSubmatch(line); m != nil {
				cur.Tagline = cleanMarkup(m[1])
			}
		}
		if cur == nil {
			continue
		}
		if cur.Votes == 0 {
			if m := lineVotesRe.FindStringSubmatch(line); m != nil {
				cur.Votes = atoi(m[1])
			}
		}
		if cur.Comments == 0 {
			if m := lineCommentRe.FindStringSubmatch(line); m != nil {
				cur.Comments = atoi(m[1])
			}
		}
		if m := topicsRe.FindStringSubmatch(line); m != nil {
			cur.Topics = splitTopics(m[1])
		}
	}
	flush()
	return out
}

func parseSingle(text, name string) Card {
	c := Card{Name: cleanMarkup(name), Topics: []string{}}
	if m := singleVotesRe.FindStringSubmatch(text); m != nil {
		c.Votes = atoi(m[1])
	}
	if m := singleCommRe.FindStringSubmatch(text); m != nil {
		c.Comments = atoi(m[1])
	} else if m := lineCommentRe.FindStringSubmatch(text); m != nil {
		c.Comments = atoi(m[1])
	}
	if m := singleDescRe.FindStringSubmatch(text); m != nil {
		c.Tagline = cleanMarkup(m[1])
	}
	if m := topicsRe.FindStringSubmatch(text); m != nil {
		c.Topics = splitTopics(m[1])
	}
	return c
}

func splitTopics(s string) []string {
	out := []string{}
	for _, t := range strings.Split(s, ",") {
		if t = cleanMarkup(t); t != "" {
			out = append(out, t)
		}
	}
	return out
}

func cleanMarkup(s string) string {
	return strings.TrimSpace(strings.ReplaceAll(s, "*", ""))
}

func atoi(s string) int {
	n, err := strconv.Atoi(strings.ReplaceAll(s, ",", ""))
	if err != nil {
		return 0
	}
	return n
}
