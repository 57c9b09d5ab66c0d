// Package sentiment scores launch comments with fixed keyword lists.
package sentiment

import (
	"fmt"
	"math"
	"strings"
)

type Polarity string

const (
	Positive Polarity = "positive"
	Negative Polarity = "negative"
	Neutral  Polarity = "neutral"
)

const (
	highlyVotedThreshold = 5
	maxTopComments       = 3
)

var (
	positiveWords = []string{"love", "great", "excellent", "amazing", "fantastic", "useful", "helpful", "brilliant", "recommend", "best", "awesome"}
	negativeWords = []string{"hate", "bad", "poor", "terrible", "useless", "waste", "disappointed", "frustrating", "worst", "avoid"}
)

type Comment struct {
	Text  string `json:"text"`
	Votes int    `json:"votes"`
}

type Counts struct {
	Positive int `json:"positive"`
	Negative int `json:"negative"`
	Neutral  int `json:"neutral"`
}

func (c Counts) Total() int { return c.Positive + c.Negative + c.Neutral }

type Report struct {
	Product       string   `json:"product"`
	TotalComments int      `json:"totalComments"`
	Counts        Counts   `json:"sentiment"`
	TopComments   []string `json:"topComments"`
	Summary       string   `json:"summary"`

	PositiveComments []string `json:"-"`
	NegativeComments []string `json:"-"`
}

// Classify labels one comment. Mixed or keyword-free text is neutral.
func Classify(text string) Polarity {
	lower := strings.ToLower(text)
	pos := containsAny(lower, positiveWords)
	neg := containsAny(lower, negativeWords)
	switch {
	case pos && !neg:
		return Positive
	case neg && !pos:
		return Negative
	default:
		return Neutral
	}
}

func Analyze(product string, comments []Comment) Report {
	r := Report{
		Product:       product,
		TotalComments: len(comments),
		TopComments:   []string{},
	}
	for _, c := range comments {
		switch Classify(c.Text) {
		case Positive:
			r.Counts.Positive++
			r.PositiveComments = append(r.PositiveComments, c.Text)
		case Negative:
			r.Counts.Negative++
			r.NegativeComments = append(r.NegativeComments, c.Text)
		default:
			r.Counts.Neutral++
		}
		if c.Votes > highlyVotedThreshold && len(r.TopComments) < maxTopComments {
			r.TopComments = append(r.TopComments, c.Text)
		}
	}
	r.Summary = fmt.Sprintf("%d positive, %d negative, %d neutral comments", r.Counts.Positive, r.Counts.Negative, r.Counts.Neutral)
	return r
}

// Score is the positive share of all comments as a rounded percentage.
func (r Report) Score() int {
	total := r.Counts.Total()
	if total == 0 {
		return 0
	}
	return int(math.Round(100 * float64(r.Counts.Positive) / float64(total)))
}

func containsAny(s string, words []string) bool {
	for _, w := range words {
		if strings.Contains(s, w) {
			return true
		}
	}
	return false
}
