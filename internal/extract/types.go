// Package extract recovers structured product and sentiment cards from the
// free-text answers a model writes.
package extract

import "huntbrief/internal/feed"

type ResponseType string

const (
	TypeProducts  ResponseType = "products"
	TypeSingle    ResponseType = "single-product"
	TypeSentiment ResponseType = "sentiment"
	TypeGeneral   ResponseType = "general"
)

type Card struct {
	Name        string   `json:"name"`
	Tagline     string   `json:"tagline"`
	Votes       int      `json:"votes"`
	Comments    int      `json:"comments"`
	Topics      []string `json:"topics"`
	Website     string   `json:"website,omitempty"`
	Description string   `json:"description,omitempty"`
}

type Sentiment struct {
	Product          string   `json:"product"`
	Score            int      `json:"score"`
	Positive         []string `json:"positive"`
	Negative         []string `json:"negative"`
	AnalyzedComments int      `json:"analyzedComments"`
}

type Data struct {
	Products  []Card     `json:"products,omitempty"`
	Product   *Card      `json:"product,omitempty"`
	Sentiment *Sentiment `json:"sentiment,omitempty"`
}

func (d Data) empty() bool {
	return len(d.Products) == 0 && d.Product == nil && d.Sentiment == nil
}

type Response struct {
	Answer       string       `json:"answer"`
	ResponseType ResponseType `json:"responseType"`
	Data         Data         `json:"data"`
}

// Observation is one tool call's name and the text it returned.
type Observation struct {
	Tool   string
	Output string
}

func FromFeed(p feed.Product) Card {
	topics := p.Topics
	if topics == nil {
		topics = []string{}
	}
	return Card{
		Name:        p.Name,
		Tagline:     p.Tagline,
		Votes:       p.Votes,
		Comments:    p.CommentsCount,
		Topics:      topics,
		Website:     p.Website,
		Description: p.Description,
	}
}
