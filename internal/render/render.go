// Package render draws agent responses for a terminal.
package render

import (
	"fmt"
	"strings"

	"huntbrief/internal/extract"
	"huntbrief/internal/feed"

	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"
)

const DefaultWidth = 80

var (
	brand    = lipgloss.Color("#DA552F")
	positive = lipgloss.Color("#2E9E5B")
	negative = lipgloss.Color("#E53935")
	muted    = lipgloss.Color("#8A8F98")

	cardStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(brand).
			Padding(0, 1)
	titleStyle = lipgloss.NewStyle().Bold(true).Foreground(brand)
	metaStyle  = lipgloss.NewStyle().Foreground(muted)
	posStyle   = lipgloss.NewStyle().Foreground(positive)
	negStyle   = lipgloss.NewStyle().Foreground(negative)
)

// Options control how a response is drawn. Style is a glamour style name;
// empty picks one from the terminal background.
type Options struct {
	Width int
	Style string
}

func (o Options) width() int {
	if o.Width <= 0 {
		return DefaultWidth
	}
	return o.Width
}

// Response draws the cards for structured answers and falls back to the
// answer as markdown when there is nothing structured to show.
func Response(resp extract.Response, opts Options) (string, error) {
	w := opts.width()
	switch resp.ResponseType {
	case extract.TypeProducts:
		if len(resp.Data.Products) > 0 {
			return ProductCards(resp.Data.Products, w), nil
		}
	case extract.TypeSingle:
		if resp.Data.Product != nil {
			return ProductCard(0, *resp.Data.Product, w), nil
		}
	case extract.TypeSentiment:
		if resp.Data.Sentiment != nil {
			return SentimentCard(*resp.Data.Sentiment, w), nil
		}
	}
	return Markdown(resp.Answer, opts)
}

func ProductCards(cards []extract.Card, width int) string {
	out := make([]string, 0, len(cards))
	for i, c := range cards {
		out = append(out, ProductCard(i+1, c, width))
	}
	return lipgloss.JoinVertical(lipgloss.Left, out...)
}

// Trending draws feed records as cards.
func Trending(products []feed.Product, source string, width int) string {
	cards := make([]extract.Card, 0, len(products))
	for _, p := range products {
		cards = append(cards, extract.FromFeed(p))
	}
	header := metaStyle.Render(fmt.Sprintf("%d launches from %s data", len(products), source))
	return lipgloss.JoinVertical(lipgloss.Left, header, ProductCards(cards, width))
}

// ProductCard draws one product. A rank of zero leaves the title unnumbered.
func ProductCard(rank int, c extract.Card, width int) string {
	title := c.Name
	if rank > 0 {
		title = fmt.Sprintf("%d. %s", rank, c.Name)
	}
	lines := []string{titleStyle.Render(title)}
	if c.Tagline != "" {
		lines = append(lines, c.Tagline)
	}
	if c.Description != "" && c.Description != c.Tagline {
		lines = append(lines, c.Description)
	}
	meta := fmt.Sprintf("▲ %d votes · %d comments", c.Votes, c.Comments)
	if len(c.Topics) > 0 {
		meta += " · " + strings.Join(c.Topics, ", ")
	}
	lines = append(lines, metaStyle.Render(meta))
	if c.Website != "" {
		lines = append(lines, metaStyle.Render(c.Website))
	}
	return cardStyle.Width(cardWidth(width)).Render(strings.Join(lines, "\n"))
}

func SentimentCard(s extract.Sentiment, width int) string {
	inner := cardWidth(width) - 2
	lines := []string{
		titleStyle.Render(fmt.Sprintf("%s: %d%% positive", s.Product, s.Score)),
		ScoreBar(s.Score, inner-6) + fmt.Sprintf(" %3d%%", s.Score),
	}
	for _, q := range s.Positive {
		lines = append(lines, posStyle.Render("+ ")+fmt.Sprintf("%q", q))
	}
	for _, q := range s.Negative {
		lines = append(lines, negStyle.Render("- ")+fmt.Sprintf("%q", q))
	}
	lines = append(lines, metaStyle.Render(fmt.Sprintf("%d comments analyzed", s.AnalyzedComments)))
	return cardStyle.Width(cardWidth(width)).Render(strings.Join(lines, "\n"))
}

// ScoreBar is a width-cell bar filled in proportion to a 0-100 score.
func ScoreBar(score, width int) string {
	if width <= 0 {
		return ""
	}
	score = min(max(score, 0), 100)
	filled := (score*width + 50) / 100
	return posStyle.Render(strings.Repeat("█", filled)) + metaStyle.Render(strings.Repeat("░", width-filled))
}

func Markdown(text string, opts Options) (string, error) {
	styleOpt := glamour.WithAutoStyle()
	if opts.Style != "" {
		styleOpt = glamour.WithStylePath(opts.Style)
	}
	r, err := glamour.NewTermRenderer(styleOpt, glamour.WithWordWrap(opts.width()-4))
	if err != nil {
		return "", fmt.Errorf("markdown renderer: %w", err)
	}
	out, err := r.Render(text)
	if err != nil {
		return "", fmt.Errorf("render markdown: %w", err)
	}
	return strings.TrimRight(out, "\n"), nil
}

// ToolsLine lists the tools an answer used, or nothing when none ran.
func ToolsLine(names []string) string {
	if len(names) == 0 {
		return ""
	}
	return metaStyle.Render("tools: " + strings.Join(names, " → "))
}

func cardWidth(width int) int {
	if width <= 0 {
		width = DefaultWidth
	}
	return max(width-2, 20)
}
