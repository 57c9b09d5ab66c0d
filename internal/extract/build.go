package extract

import (
	"encoding/json"
	"math"
	"strings"
)

// Tool names whose observations Build understands.
const (
	toolTrending = "get_trending_products"
	toolSearch   = "search_products"
	toolDetails  = "get_product_details"
	toolAnalyze  = "analyze_comments"
)

var (
	singleCues          = []string{"best product", "hottest product", "top product is", "leading product"}
	strongSentimentCues = []string{"has received", "sentiment breakdown", "sentiment analysis", "% positive", "comments analyzed"}
	productsCues        = []string{"trending", "here are", "products", "launched"}
	weakSentimentCues   = []string{"sentiment", "feedback", "users think"}
)

// DetectResponseType classifies an answer from its wording alone.
func DetectResponseType(answer string) ResponseType {
	lower := strings.ToLower(answer)
	switch {
	case containsAny(lower, singleCues):
		return TypeSingle
	case containsAny(lower, strongSentimentCues):
		return TypeSentiment
	case containsAny(lower, productsCues):
		return TypeProducts
	case containsAny(lower, weakSentimentCues):
		return TypeSentiment
	default:
		return TypeGeneral
	}
}

func containsAny(s string, cues []string) bool {
	for _, c := range cues {
		if strings.Contains(s, c) {
			return true
		}
	}
	return false
}

// Build turns an answer into a structured response. The tools that ran pick
// the type when they can; the wording decides otherwise. A type whose card
// cannot be recovered falls back to general.
func Build(answer string, obs []Observation) Response {
	resp := Response{Answer: answer}
	seen := observed(obs)
	typ := typeFromTools(seen)
	if typ == TypeProducts && DetectResponseType(answer) == TypeSingle {
		typ = TypeSingle
	}
	if typ == "" {
		typ = DetectResponseType(answer)
	}

	switch typ {
	case TypeSentiment:
		s := ParseSentiment(answer)
		if s == nil {
			s = seen.sentiment()
		}
		resp.Data.Sentiment = s
	case TypeSingle:
		cards := seen.enrich(ParseProducts(answer))
		if len(cards) == 0 {
			cards = seen.cards()
		}
		if len(cards) > 0 {
			c := seen.withToolTagline(cards[0])
			resp.Data.Product = &c
		}
	case TypeProducts:
		cards := seen.enrich(ParseProducts(answer))
		if len(cards) == 0 {
			cards = seen.cards()
		}
		resp.Data.Products = cards
	}

	resp.ResponseType = typ
	if resp.Data.empty() {
		resp.ResponseType = TypeGeneral
	}
	return resp
}

type observedProduct struct {
	Name          string   `json:"name"`
	Tagline       string   `json:"tagline"`
	Description   string   `json:"description"`
	Votes         int      `json:"votes"`
	CommentsCount int      `json:"commentsCount"`
	Website       string   `json:"website"`
	Topics        []string `json:"topics"`
}

func (p observedProduct) card() Card {
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

type observedAnalysis struct {
	Product  string `json:"product"`
	Analysis struct {
		TotalComments int `json:"totalComments"`
		Sentiment     struct {
			Positive int `json:"positive"`
			Negative int `json:"negative"`
			Neutral  int `json:"neutral"`
		} `json:"sentiment"`
		TopComments []string `json:"topComments"`
	} `json:"analysis"`
}

type observations struct {
	tools    map[string]bool
	products []observedProduct
	analysis *observedAnalysis
}

// observed decodes the tool outputs that are JSON. Error and not-found
// messages are plain text and are skipped.
func observed(obs []Observation) observations {
	o := observations{tools: map[string]bool{}}
	for _, ob := range obs {
		o.tools[ob.Tool] = true
		out := strings.TrimSpace(ob.Output)
		switch ob.Tool {
		case toolTrending, toolSearch:
			var list []observedProduct
			if json.Unmarshal([]byte(out), &list) == nil {
				o.products = append(o.products, list...)
			}
		case toolDetails:
			var p observedProduct
			if json.Unmarshal([]byte(out), &p) == nil && p.Name != "" {
				// Details carry more than listings, so they win on lookup.
				o.products = append([]observedProduct{p}, o.products...)
			}
		case toolAnalyze:
			var a observedAnalysis
			if json.Unmarshal([]byte(out), &a) == nil && a.Product != "" {
				o.analysis = &a
			}
		}
	}
	return o
}

func typeFromTools(o observations) ResponseType {
	switch {
	case o.tools[toolAnalyze]:
		return TypeSentiment
	case o.tools[toolTrending] || o.tools[toolSearch]:
		return TypeProducts
	case o.tools[toolDetails]:
		return TypeSingle
	default:
		return ""
	}
}

func (o observations) find(name string) (observedProduct, bool) {
	target := strings.ToLower(strings.TrimSpace(name))
	if target == "" {
		return observedProduct{}, false
	}
	for _, p := range o.products {
		if strings.ToLower(p.Name) == target {
			return p, true
		}
	}
	return observedProduct{}, false
}

// enrich fills gaps in parsed cards from the tool output for the same product.
func (o observations) enrich(cards []Card) []Card {
	for i := range cards {
		p, ok := o.find(cards[i].Name)
		if !ok {
			continue
		}
		c := &cards[i]
		if c.Tagline == "" {
			c.Tagline = p.Tagline
		}
		if c.Votes == 0 {
			c.Votes = p.Votes
		}
		if c.Comments == 0 {
			c.Comments = p.CommentsCount
		}
		if len(c.Topics) == 0 && len(p.Topics) > 0 {
			c.Topics = p.Topics
		}
		if c.Website == "" {
			c.Website = p.Website
		}
		if c.Description == "" {
			c.Description = p.Description
		}
	}
	return cards
}

// withToolTagline replaces a single card's tagline with the tool's copy. The
// parsed one comes from prose such as "It provides ..." and is often cut short.
func (o observations) withToolTagline(c Card) Card {
	if p, ok := o.find(c.Name); ok && p.Tagline != "" {
		c.Tagline = p.Tagline
	}
	return c
}

func (o observations) cards() []Card {
	if len(o.products) == 0 {
		return nil
	}
	out := make([]Card, 0, len(o.products))
	for _, p := range o.products {
		out = append(out, p.card())
	}
	return out
}

func (o observations) sentiment() *Sentiment {
	if o.analysis == nil {
		return nil
	}
	a := o.analysis.Analysis
	total := a.Sentiment.Positive + a.Sentiment.Negative + a.Sentiment.Neutral
	score := defaultScore
	if total > 0 {
		score = int(math.Round(100 * float64(a.Sentiment.Positive) / float64(total)))
	}
	analyzed := a.TotalComments
	if analyzed == 0 {
		analyzed = defaultAnalyzed
	}
	positive := a.TopComments
	if positive == nil {
		positive = []string{}
	}
	return &Sentiment{
		Product:          o.analysis.Product,
		Score:            score,
		Positive:         firstN(positive, maxPositiveQuotes),
		Negative:         []string{},
		AnalyzedComments: analyzed,
	}
}
