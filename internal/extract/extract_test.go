package extract

import (
	"testing"

	"huntbrief/internal/feed"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const listAnswer = `Here are today's trending products on Product Hunt:

1. **Maillayer** - Email marketing without subscriptions
   - 308 votes, 29 comments
   - Topics: Email, **Marketing**, Self-hosted
2. **Pickle**
   - **Screenshot, redact, and share privately**
   - 1,195 votes
3. **Loopdesk**: AI notes for sales calls
   Tagline: Meeting notes that write themselves
   - 164 votes, 11 comments

Ask me what people think about any of these to see a sentiment breakdown.`

func TestParseProductsNumberedList(t *testing.T) {
	cards := ParseProducts(listAnswer)
	require.Len(t, cards, 3)

	assert.Equal(t, Card{
		Name:     "Maillayer",
		Tagline:  "Email marketing without subscriptions",
		Votes:    308,
		Comments: 29,
		Topics:   []string{"Email", "Marketing", "Self-hosted"},
	}, cards[0])

	assert.Equal(t, "Pickle", cards[1].Name)
	assert.Equal(t, "Screenshot, redact, and share privately", cards[1].Tagline)
	assert.Equal(t, 1195, cards[1].Votes)
	assert.Zero(t, cards[1].Comments)
	assert.Equal(t, []string{}, cards[1].Topics)

	assert.Equal(t, "Meeting notes that write themselves", cards[2].Tagline)
	assert.Equal(t, 164, cards[2].Votes)
	assert.Equal(t, 11, cards[2].Comments)
}

func TestParseProductsSingle(t *testing.T) {
	answer := "The hottest product on Product Hunt today is **Maillayer**. It provides email marketing without subscriptions. It has Votes: 308 and Comments: 29.\n\nTopics: Email, Marketing"
	cards := ParseProducts(answer)
	require.Len(t, cards, 1)
	assert.Equal(t, Card{
		Name:     "Maillayer",
		Tagline:  "email marketing without subscriptions",
		Votes:    308,
		Comments: 29,
		Topics:   []string{"Email", "Marketing"},
	}, cards[0])
}

func TestParseProductsNothing(t *testing.T) {
	assert.Empty(t, ParseProducts("I can help you explore Product Hunt."))
}

const sentimentAnswer = `**Maillayer** has received mostly positive feedback from the Product Hunt community.

Sentiment breakdown (5 comments analyzed):
- Positive: 3
- Negative: 1
- Neutral: 1

What users like:
- "Love the one-time pricing, this is amazing for small teams"
- "Great alternative to Mailchimp, setup took five minutes"

Concerns:
- "The template editor is frustrating to use on mobile"`

func TestParseSentiment(t *testing.T) {
	s := ParseSentiment(sentimentAnswer)
	require.NotNil(t, s)
	assert.Equal(t, "Maillayer", s.Product)
	assert.Equal(t, 60, s.Score)
	assert.Equal(t, 5, s.AnalyzedComments)
	assert.Equal(t, []string{
		"Love the one-time pricing, this is amazing for small teams",
		"Great alternative to Mailchimp, setup took five minutes",
	}, s.Positive)
	assert.Equal(t, []string{"The template editor is frustrating to use on mobile"}, s.Negative)
}

func TestParseSentimentNumberFirstCounts(t *testing.T) {
	text := `Here's the sentiment for "Pickle": 4 positive, 1 negative and 0 neutral comments.
Users love it: "the redaction workflow is incredibly smooth and fast".`
	s := ParseSentiment(text)
	require.NotNil(t, s)
	assert.Equal(t, "Pickle", s.Product)
	assert.Equal(t, 80, s.Score)
	assert.Equal(t, 5, s.AnalyzedComments)
	assert.Equal(t, []string{"the redaction workflow is incredibly smooth and fast"}, s.Positive)
	assert.Empty(t, s.Negative)
}

func TestParseSentimentBulletsAndDefaults(t *testing.T) {
	text := `Loopdesk sentiment analysis
- Saves hours of note taking every week
- Integrates nicely with our CRM
- Pricing feels steep for solo founders
- Sometimes misses speaker changes`
	s := ParseSentiment(text)
	require.NotNil(t, s)
	assert.Equal(t, "Loopdesk", s.Product)
	assert.Equal(t, defaultScore, s.Score)
	assert.Equal(t, defaultAnalyzed, s.AnalyzedComments)
	assert.Equal(t, []string{"Saves hours of note taking every week", "Integrates nicely with our CRM"}, s.Positive)
	assert.Equal(t, []string{"Pricing feels steep for solo founders", "Sometimes misses speaker changes"}, s.Negative)
}

func TestParseSentimentNil(t *testing.T) {
	assert.Nil(t, ParseSentiment("Positive: 3, Negative: 1"))
	assert.Nil(t, ParseSentiment("**Pickle** has received no comments yet."))
	assert.Nil(t, ParseSentiment("Sentiment for Loopdesk:\n**What users like about the recorder:**\n**Concerns raised by several makers:**"))
}

func TestParseSentimentBoldHeadingsAreNotBullets(t *testing.T) {
	text := `Sentiment for Loopdesk:
**What users like about the recorder:**
* Saves hours of note taking every week
**Concerns raised by several makers:**
* Sometimes misses speaker changes`
	s := ParseSentiment(text)
	require.NotNil(t, s)
	assert.Equal(t, "Loopdesk", s.Product)
	assert.Equal(t, []string{"Saves hours of note taking every week"}, s.Positive)
	assert.Equal(t, []string{"Sometimes misses speaker changes"}, s.Negative)
}

func TestBuildNoCommentsIsGeneral(t *testing.T) {
	obs := []Observation{
		{Tool: toolDetails, Output: `{"name":"Pickle","tagline":"Screenshot, redact, and share privately","votes":195,"commentsCount":0,"comments":[]}`},
		{Tool: toolAnalyze, Output: "No comments to analyze"},
	}
	resp := Build("**Pickle** has received no comments yet.", obs)
	assert.Equal(t, TypeGeneral, resp.ResponseType)
	assert.Nil(t, resp.Data.Sentiment)
}

func TestDetectResponseType(t *testing.T) {
	cases := map[string]ResponseType{
		"The hottest product today is **X**":                         TypeSingle,
		"Here are the trending launches":                             TypeProducts,
		"**X** has received positive feedback from products fans":    TypeSentiment,
		"Overall feedback is good":                                   TypeSentiment,
		"Sentiment is mixed, but several products launched":          TypeProducts,
		"Hello! Ask me anything about Product Hunt.":                 TypeGeneral,
		"The leading product in this space has 5 comments analyzed.": TypeSingle,
	}
	for text, want := range cases {
		assert.Equal(t, want, DetectResponseType(text), text)
	}
}

func TestBuildProductsEnrichedFromTools(t *testing.T) {
	answer := "Here are today's top launches:\n\n1. **Maillayer** - Email marketing without subscriptions\n   - 308 votes"
	obs := []Observation{{
		Tool:   toolTrending,
		Output: `[{"name":"Maillayer","tagline":"x","votes":1,"commentsCount":29,"topics":["Email","Marketing"]}]`,
	}}
	resp := Build(answer, obs)
	assert.Equal(t, TypeProducts, resp.ResponseType)
	require.Len(t, resp.Data.Products, 1)
	c := resp.Data.Products[0]
	assert.Equal(t, "Email marketing without subscriptions", c.Tagline)
	assert.Equal(t, 308, c.Votes)
	assert.Equal(t, 29, c.Comments)
	assert.Equal(t, []string{"Email", "Marketing"}, c.Topics)
}

func TestBuildProductsFromToolsWhenProseHasNoList(t *testing.T) {
	obs := []Observation{{
		Tool:   toolSearch,
		Output: `[{"name":"Sidemail 2.0","tagline":"Transactional email","votes":217,"topics":["Email"]}]`,
	}}
	resp := Build("Sidemail 2.0 looks like the best fit for you.", obs)
	assert.Equal(t, TypeProducts, resp.ResponseType)
	require.Len(t, resp.Data.Products, 1)
	assert.Equal(t, "Sidemail 2.0", resp.Data.Products[0].Name)
	assert.Equal(t, 217, resp.Data.Products[0].Votes)
}

func TestBuildHottestIsSingle(t *testing.T) {
	answer := "The hottest product on Product Hunt today is **Maillayer**. It provides email marketing. It has Votes: 308."
	obs := []Observation{{
		Tool:   toolTrending,
		Output: `[{"name":"Maillayer","tagline":"Email marketing without subscriptions","votes":308,"commentsCount":29,"topics":["Email"]}]`,
	}}
	resp := Build(answer, obs)
	assert.Equal(t, TypeSingle, resp.ResponseType)
	require.NotNil(t, resp.Data.Product)
	assert.Equal(t, 29, resp.Data.Product.Comments)
	assert.Equal(t, []string{"Email"}, resp.Data.Product.Topics)
	assert.Equal(t, "Email marketing without subscriptions", resp.Data.Product.Tagline)
}

func TestBuildHottestKeepsToolTagline(t *testing.T) {
	answer := "The hottest product on Product Hunt today is **Pickle**. It provides screenshot, redact, and share privately. It has Votes: 195."
	obs := []Observation{{
		Tool:   toolTrending,
		Output: `[{"name":"Pickle","tagline":"Screenshot, redact, and share privately","votes":195,"commentsCount":6,"topics":["Privacy"]}]`,
	}}
	resp := Build(answer, obs)
	assert.Equal(t, TypeSingle, resp.ResponseType)
	require.NotNil(t, resp.Data.Product)
	assert.Equal(t, "Screenshot, redact, and share privately", resp.Data.Product.Tagline)
	assert.Equal(t, 195, resp.Data.Product.Votes)
}

func TestBuildDetailsOnly(t *testing.T) {
	obs := []Observation{{
		Tool:   toolDetails,
		Output: `{"name":"Pickle","tagline":"Screenshot, redact, and share privately","description":"Private screenshots","votes":195,"website":"https://getpickle.app","topics":["Mac"],"commentsCount":6,"comments":[]}`,
	}}
	resp := Build("**Pickle** (Screenshot, redact, and share privately) has Votes: 195 and Comments: 6.", obs)
	assert.Equal(t, TypeSingle, resp.ResponseType)
	require.NotNil(t, resp.Data.Product)
	assert.Equal(t, "https://getpickle.app", resp.Data.Product.Website)
	assert.Equal(t, 6, resp.Data.Product.Comments)
}

func TestBuildSentiment(t *testing.T) {
	obs := []Observation{
		{Tool: toolDetails, Output: `{"name":"Maillayer"}`},
		{Tool: toolAnalyze, Output: `{"product":"Maillayer","analysis":{"totalComments":5,"sentiment":{"positive":3,"negative":1,"neutral":1},"topComments":["Love it"],"summary":""}}`},
	}
	resp := Build(sentimentAnswer, obs)
	assert.Equal(t, TypeSentiment, resp.ResponseType)
	require.NotNil(t, resp.Data.Sentiment)
	assert.Equal(t, 60, resp.Data.Sentiment.Score)
	assert.Len(t, resp.Data.Sentiment.Positive, 2)

	resp = Build("I looked into it for you.", obs)
	assert.Equal(t, TypeSentiment, resp.ResponseType)
	require.NotNil(t, resp.Data.Sentiment)
	assert.Equal(t, "Maillayer", resp.Data.Sentiment.Product)
	assert.Equal(t, []string{"Love it"}, resp.Data.Sentiment.Positive)
}

func TestBuildFallsBackToGeneral(t *testing.T) {
	resp := Build("Hi! I can tell you about today's launches.", nil)
	assert.Equal(t, TypeGeneral, resp.ResponseType)
	assert.Nil(t, resp.Data.Products)

	resp = Build("Here are some thoughts, but no list.", []Observation{{Tool: toolTrending, Output: "Error fetching products: timeout"}})
	assert.Equal(t, TypeGeneral, resp.ResponseType)
}

func TestFromFeed(t *testing.T) {
	c := FromFeed(feed.Product{Name: "Pickle", Votes: 195, CommentsCount: 6, Website: "https://getpickle.app"})
	assert.Equal(t, Card{Name: "Pickle", Votes: 195, Comments: 6, Topics: []string{}, Website: "https://getpickle.app"}, c)
}
