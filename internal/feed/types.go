package feed

import (
	"context"
	"errors"
	"strings"
)

var (
	ErrNoToken         = errors.New("producthunt token not configured")
	ErrProductNotFound = errors.New("product not found")
	ErrGraphQL         = errors.New("graphql error")
)

type Product struct {
	ID            string    `json:"id,omitempty"`
	Name          string    `json:"name"`
	Slug          string    `json:"slug,omitempty"`
	Tagline       string    `json:"tagline"`
	Description   string    `json:"description,omitempty"`
	Votes         int       `json:"votes"`
	CommentsCount int       `json:"commentsCount"`
	Website       string    `json:"website,omitempty"`
	URL           string    `json:"url,omitempty"`
	Topics        []string  `json:"topics"`
	Makers        []Maker   `json:"makers,omitempty"`
	Comments      []Comment `json:"comments,omitempty"`
}

type Maker struct {
	Name     string `json:"name"`
	Headline string `json:"headline,omitempty"`
}

type Comment struct {
	Text     string `json:"text"`
	Votes    int    `json:"votes"`
	Author   string `json:"author"`
	Headline string `json:"headline,omitempty"`
}

// Source is a provider of daily launch records.
type Source interface {
	Trending(ctx context.Context, limit int) ([]Product, error)
	Search(ctx context.Context, keywords string, limit int) ([]Product, error)
	Details(ctx context.Context, name string) (Product, error)
	Top(ctx context.Context, limit int) ([]Product, error)
}

const (
	DefaultTrendingLimit = 10
	DefaultSearchLimit   = 5
	DefaultTopLimit      = 5

	searchWindow  = 20
	detailsWindow = 10
)

// matchesKeywords reports whether the keyword string occurs in the product's searchable text.
func matchesKeywords(p Product, keywords string) bool {
	needle := strings.ToLower(strings.TrimSpace(keywords))
	if needle == "" {
		return true
	}
	hay := strings.ToLower(strings.Join([]string{p.Name, p.Tagline, p.Description, strings.Join(p.Topics, " ")}, " "))
	return strings.Contains(hay, needle)
}

func filterByKeywords(products []Product, keywords string, limit int) []Product {
	out := make([]Product, 0, limit)
	for _, p := range products {
		if len(out) >= limit {
			break
		}
		if matchesKeywords(p, keywords) {
			out = append(out, p)
		}
	}
	return out
}

// findByName returns the first product whose lowercased name contains the lowercased query.
func findByName(products []Product, name string) (Product, bool) {
	needle := strings.ToLower(strings.TrimSpace(name))
	if needle == "" {
		return Product{}, false
	}
	for _, p := range products {
		if strings.Contains(strings.ToLower(p.Name), needle) {
			return p, true
		}
	}
	return Product{}, false
}

func clampLimit(limit, fallback int) int {
	if limit <= 0 {
		return fallback
	}
	return limit
}
