package tools

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"huntbrief/internal/feed"
	"huntbrief/internal/sentiment"
)

const (
	TrendingName = "get_trending_products"
	SearchName   = "search_products"
	DetailsName  = "get_product_details"
	AnalyzeName  = "analyze_comments"
)

// NewProductHuntRegistry returns the four feed tools in the order the model sees them.
func NewProductHuntRegistry(src feed.Source) *Registry {
	return NewRegistry(
		&TrendingTool{Source: src},
		&SearchTool{Source: src},
		&DetailsTool{Source: src},
		&AnalyzeTool{},
	)
}

// productSummary is the compact listing shape returned to the model.
type productSummary struct {
	Name          string   `json:"name"`
	Tagline       string   `json:"tagline"`
	Votes         int      `json:"votes"`
	CommentsCount *int     `json:"commentsCount,omitempty"`
	Topics        []string `json:"topics"`
}

func summarize(products []feed.Product, withComments bool) []productSummary {
	out := make([]productSummary, 0, len(products))
	for _, p := range products {
		s := productSummary{Name: p.Name, Tagline: p.Tagline, Votes: p.Votes, Topics: nonNil(p.Topics)}
		if withComments {
			n := p.CommentsCount
			s.CommentsCount = &n
		}
		out = append(out, s)
	}
	return out
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

type trendingArgs struct {
	Limit int `json:"limit,omitempty" jsonschema_description:"Number of products to fetch" jsonschema:"default=10,minimum=1,maximum=50"`
}

type TrendingTool struct {
	Source feed.Source
}

func (t *TrendingTool) Name() string { return TrendingName }
func (t *TrendingTool) Description() string {
	return "Get today's top trending products from Product Hunt. Use this when user asks about popular, hot, trending, or top products."
}
func (t *TrendingTool) StatusMessage() string      { return "Fetching today's trending launches" }
func (t *TrendingTool) Parameters() map[string]any { return GenerateSchema[trendingArgs]() }

func (t *TrendingTool) Execute(ctx context.Context, rawArgs string) (string, error) {
	var args trendingArgs
	if err := decodeArgs(rawArgs, &args); err != nil {
		return "", err
	}
	if args.Limit <= 0 {
		args.Limit = feed.DefaultTrendingLimit
	}
	products, err := t.Source.Trending(ctx, args.Limit)
	if err != nil {
		if ctx.Err() != nil {
			return "", ctx.Err()
		}
		return fmt.Sprintf("Error fetching products: %s", err), nil
	}
	return marshalOutput(summarize(products, true))
}

type searchArgs struct {
	Keywords string `json:"keywords" jsonschema_description:"Search keywords or categories like 'AI', 'video', 'legal', 'productivity'"`
	Limit    int    `json:"limit,omitempty" jsonschema_description:"Number of products to return" jsonschema:"default=5,minimum=1,maximum=20"`
}

type SearchTool struct {
	Source feed.Source
}

func (t *SearchTool) Name() string { return SearchName }
func (t *SearchTool) Description() string {
	return "Search for products by keywords or categories. Use this when user asks about specific types of products like 'AI tools', 'video editors', 'legal tech', etc."
}
func (t *SearchTool) StatusMessage() string      { return "Searching launches" }
func (t *SearchTool) Parameters() map[string]any { return GenerateSchema[searchArgs]() }

func (t *SearchTool) Execute(ctx context.Context, rawArgs string) (string, error) {
	var args searchArgs
	if err := decodeArgs(rawArgs, &args); err != nil {
		return "", err
	}
	if strings.TrimSpace(args.Keywords) == "" {
		return "", retryable("keywords is required")
	}
	if args.Limit <= 0 {
		args.Limit = feed.DefaultSearchLimit
	}
	products, err := t.Source.Search(ctx, args.Keywords, args.Limit)
	if err != nil {
		if ctx.Err() != nil {
			return "", ctx.Err()
		}
		return fmt.Sprintf("Error searching products: %s", err), nil
	}
	if len(products) == 0 {
		return fmt.Sprintf("No products found for keywords: %s", args.Keywords), nil
	}
	return marshalOutput(summarize(products, false))
}

type detailsArgs struct {
	ProductName string `json:"productName" jsonschema_description:"The name of the product to get details for"`
}

type DetailsTool struct {
	Source feed.Source
}

type productDetails struct {
	Name          string          `json:"name"`
	Tagline       string          `json:"tagline"`
	Description   string          `json:"description"`
	Votes         int             `json:"votes"`
	Website       string          `json:"website"`
	Topics        []string        `json:"topics"`
	Makers        []feed.Maker    `json:"makers"`
	CommentsCount int             `json:"commentsCount"`
	Comments      []detailComment `json:"comments"`
}

type detailComment struct {
	Text   string `json:"text"`
	Votes  int    `json:"votes"`
	Author string `json:"author"`
}

func (t *DetailsTool) Name() string { return DetailsName }
func (t *DetailsTool) Description() string {
	return "Get detailed information about a specific product including user comments. Use this when user asks what people think about a product or wants detailed feedback."
}
func (t *DetailsTool) StatusMessage() string      { return "Reading the launch page and comments" }
func (t *DetailsTool) Parameters() map[string]any { return GenerateSchema[detailsArgs]() }

func (t *DetailsTool) Execute(ctx context.Context, rawArgs string) (string, error) {
	var args detailsArgs
	if err := decodeArgs(rawArgs, &args); err != nil {
		return "", err
	}
	if strings.TrimSpace(args.ProductName) == "" {
		return "", retryable("productName is required")
	}
	p, err := t.Source.Details(ctx, args.ProductName)
	switch {
	case errors.Is(err, feed.ErrProductNotFound):
		return fmt.Sprintf("Product \"%s\" not found in today's products", args.ProductName), nil
	case err != nil:
		if ctx.Err() != nil {
			return "", ctx.Err()
		}
		return fmt.Sprintf("Error fetching product details: %s", err), nil
	}

	out := productDetails{
		Name:          p.Name,
		Tagline:       p.Tagline,
		Description:   p.Description,
		Votes:         p.Votes,
		Website:       p.Website,
		Topics:        nonNil(p.Topics),
		Makers:        p.Makers,
		CommentsCount: p.CommentsCount,
		Comments:      make([]detailComment, 0, len(p.Comments)),
	}
	if out.Makers == nil {
		out.Makers = []feed.Maker{}
	}
	for _, c := range p.Comments {
		author := c.Author
		if author == "" {
			author = "Anonymous"
		}
		out.Comments = append(out.Comments, detailComment{Text: c.Text, Votes: c.Votes, Author: author})
	}
	return marshalOutput(out)
}

type commentArg struct {
	Text  string `json:"text"`
	Votes int    `json:"votes"`
}

type analyzeArgs struct {
	Comments    []commentArg `json:"comments" jsonschema_description:"Array of comments to analyze"`
	ProductName string       `json:"productName" jsonschema_description:"Name of the product for context"`
}

// AnalyzeTool runs keyword sentiment over comments the model passes back in.
type AnalyzeTool struct{}

type analysisOutput struct {
	Product  string   `json:"product"`
	Analysis analysis `json:"analysis"`
}

type analysis struct {
	TotalComments int              `json:"totalComments"`
	Sentiment     sentiment.Counts `json:"sentiment"`
	TopComments   []string         `json:"topComments"`
	Summary       string           `json:"summary"`
}

func (t *AnalyzeTool) Name() string { return AnalyzeName }
func (t *AnalyzeTool) Description() string {
	return "Analyze sentiment and themes from product comments. Use this after getting product details to understand what users like/dislike."
}
func (t *AnalyzeTool) StatusMessage() string      { return "Scoring comment sentiment" }
func (t *AnalyzeTool) Parameters() map[string]any { return GenerateSchema[analyzeArgs]() }

func (t *AnalyzeTool) Execute(ctx context.Context, rawArgs string) (string, error) {
	var args analyzeArgs
	if err := decodeArgs(rawArgs, &args); err != nil {
		return "", err
	}
	if len(args.Comments) == 0 {
		return "No comments to analyze", nil
	}
	comments := make([]sentiment.Comment, 0, len(args.Comments))
	for _, c := range args.Comments {
		comments = append(comments, sentiment.Comment{Text: c.Text, Votes: c.Votes})
	}
	r := sentiment.Analyze(args.ProductName, comments)
	return marshalOutput(analysisOutput{
		Product: args.ProductName,
		Analysis: analysis{
			TotalComments: r.TotalComments,
			Sentiment:     r.Counts,
			TopComments:   r.TopComments,
			Summary:       r.Summary,
		},
	})
}
