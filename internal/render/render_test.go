package render

import (
	"strings"
	"testing"

	"huntbrief/internal/extract"
	"huntbrief/internal/feed"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	lipgloss.SetColorProfile(termenv.Ascii)
}

var maillayer = extract.Card{
	Name:     "Maillayer",
	Tagline:  "Email marketing without subscriptions",
	Votes:    308,
	Comments: 29,
	Topics:   []string{"Email", "Marketing"},
	Website:  "https://maillayer.com",
}

func TestScoreBar(t *testing.T) {
	assert.Equal(t, strings.Repeat("█", 15)+strings.Repeat("░", 5), ScoreBar(75, 20))
	assert.Equal(t, strings.Repeat("░", 10), ScoreBar(-5, 10))
	assert.Equal(t, strings.Repeat("█", 10), ScoreBar(140, 10))
	assert.Empty(t, ScoreBar(50, 0))
}

func TestProductCard(t *testing.T) {
	out := ProductCard(1, maillayer, 60)
	assert.Contains(t, out, "1. Maillayer")
	assert.Contains(t, out, "Email marketing without subscriptions")
	assert.Contains(t, out, "308 votes · 29 comments · Email, Marketing")
	assert.Contains(t, out, "https://maillayer.com")
	assert.Contains(t, out, "╭")

	unranked := ProductCard(0, maillayer, 60)
	assert.NotContains(t, unranked, "1. Maillayer")
}

func TestResponseProducts(t *testing.T) {
	out, err := Response(extract.Response{
		ResponseType: extract.TypeProducts,
		Data: extract.Data{Products: []extract.Card{
			maillayer,
			{Name: "Pickle", Tagline: "Screenshot, redact, and share privately", Votes: 195, Topics: []string{}},
		}},
	}, Options{Width: 70})
	require.NoError(t, err)
	assert.Contains(t, out, "1. Maillayer")
	assert.Contains(t, out, "2. Pickle")
	assert.Less(t, strings.Index(out, "Maillayer"), strings.Index(out, "Pickle"))
}

func TestResponseSentiment(t *testing.T) {
	out, err := Response(extract.Response{
		ResponseType: extract.TypeSentiment,
		Data: extract.Data{Sentiment: &extract.Sentiment{
			Product:          "Maillayer",
			Score:            80,
			Positive:         []string{"Love it"},
			Negative:         []string{"Docs are thin"},
			AnalyzedComments: 5,
		}},
	}, Options{Width: 60})
	require.NoError(t, err)
	assert.Contains(t, out, "Maillayer: 80% positive")
	assert.Contains(t, out, "█")
	assert.Contains(t, out, `+ "Love it"`)
	assert.Contains(t, out, `- "Docs are thin"`)
	assert.Contains(t, out, "5 comments analyzed")
}

func TestResponseGeneralUsesMarkdown(t *testing.T) {
	out, err := Response(extract.Response{
		Answer:       "Product Hunt ranks launches by **votes**.",
		ResponseType: extract.TypeGeneral,
	}, Options{Width: 60, Style: "ascii"})
	require.NoError(t, err)
	assert.Contains(t, out, "Product Hunt ranks launches by")
	assert.Contains(t, out, "votes")
}

func TestResponseEmptyDataFallsBackToMarkdown(t *testing.T) {
	out, err := Response(extract.Response{
		Answer:       "Nothing structured here.",
		ResponseType: extract.TypeProducts,
	}, Options{Style: "ascii"})
	require.NoError(t, err)
	assert.Contains(t, out, "Nothing structured here.")
}

func TestTrending(t *testing.T) {
	out := Trending([]feed.Product{
		{Name: "Loopdesk", Tagline: "AI meeting notes", Votes: 164, CommentsCount: 12},
	}, "mock", 60)
	assert.Contains(t, out, "1 launches from mock data")
	assert.Contains(t, out, "1. Loopdesk")
	assert.Contains(t, out, "164 votes · 12 comments")
}

func TestToolsLine(t *testing.T) {
	assert.Empty(t, ToolsLine(nil))
	assert.Equal(t, "tools: get_product_details → analyze_comments", ToolsLine([]string{"get_product_details", "analyze_comments"}))
}
