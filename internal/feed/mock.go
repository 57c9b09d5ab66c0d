package feed

import (
	"context"
	"fmt"
	"sort"
)

// MockSource serves a fixed set of sample launches. It backs the feed when
// no token is configured or the live API fails.
type MockSource struct {
	products []Product
}

func NewMockSource() *MockSource {
	products := sampleProducts()
	sort.SliceStable(products, func(i, j int) bool { return products[i].Votes > products[j].Votes })
	return &MockSource{products: products}
}

func (m *MockSource) Trending(ctx context.Context, limit int) ([]Product, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return m.head(clampLimit(limit, DefaultTrendingLimit)), nil
}

func (m *MockSource) Search(ctx context.Context, keywords string, limit int) ([]Product, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return cloneProducts(filterByKeywords(m.products, keywords, clampLimit(limit, DefaultSearchLimit))), nil
}

func (m *MockSource) Details(ctx context.Context, name string) (Product, error) {
	if err := ctx.Err(); err != nil {
		return Product{}, err
	}
	p, ok := findByName(m.products, name)
	if !ok {
		return Product{}, fmt.Errorf("%w: %q", ErrProductNotFound, name)
	}
	return cloneProduct(p), nil
}

func (m *MockSource) Top(ctx context.Context, limit int) ([]Product, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return m.head(clampLimit(limit, DefaultTopLimit)), nil
}

func (m *MockSource) head(n int) []Product {
	if n > len(m.products) {
		n = len(m.products)
	}
	return cloneProducts(m.products[:n])
}

func cloneProducts(in []Product) []Product {
	out := make([]Product, 0, len(in))
	for _, p := range in {
		out = append(out, cloneProduct(p))
	}
	return out
}

func cloneProduct(p Product) Product {
	p.Topics = append([]string{}, p.Topics...)
	p.Makers = append([]Maker(nil), p.Makers...)
	p.Comments = append([]Comment(nil), p.Comments...)
	return p
}

func sampleProducts() []Product {
	return []Product{
		{
			ID:            "mock-1",
			Name:          "Maillayer",
			Slug:          "maillayer",
			Tagline:       "Email marketing without subscriptions",
			Description:   "One-time payment email platform that lets you send unlimited emails via Amazon SES at just $0.10/1000 emails",
			Votes:         308,
			CommentsCount: 29,
			Website:       "https://maillayer.com",
			URL:           "https://www.producthunt.com/posts/maillayer",
			Topics:        []string{"Email", "Marketing", "Self-hosted"},
			Makers:        []Maker{{Name: "Mohit Agarwal", Headline: "Indie maker"}},
			Comments: []Comment{
				{Text: "One-time payment is a game changer. Love that I finally own my email infrastructure.", Votes: 24, Author: "Sarah Chen", Headline: "Founder"},
				{Text: "Saves hundreds per month compared to our old ESP. Highly recommend!", Votes: 18, Author: "Marcus Lee"},
				{Text: "Great product, the SES integration is brilliant.", Votes: 9, Author: "Priya Nair"},
				{Text: "Documentation is poor and the initial setup is frustrating for non-developers.", Votes: 7, Author: "Tom Baker"},
				{Text: "How does it handle bounce processing?", Votes: 3, Author: "Anonymous"},
			},
		},
		{
			ID:            "mock-2",
			Name:          "Sidemail 2.0",
			Slug:          "sidemail-2-0",
			Tagline:       "All-in-one email platform for SaaS",
			Description:   "Transactional emails, newsletters and contact management behind one API",
			Votes:         217,
			CommentsCount: 15,
			Website:       "https://sidemail.io",
			URL:           "https://www.producthunt.com/posts/sidemail-2-0",
			Topics:        []string{"Email", "SaaS"},
			Makers:        []Maker{{Name: "Kristyna Dvorakova", Headline: "Co-founder"}},
			Comments: []Comment{
				{Text: "Beautiful templates and the API is excellent.", Votes: 12, Author: "Leo Martins"},
				{Text: "Useful for our SaaS onboarding emails.", Votes: 6, Author: "Hana Sato"},
				{Text: "The pricing page is confusing.", Votes: 2, Author: "Anonymous"},
			},
		},
		{
			ID:            "mock-3",
			Name:          "Pickle",
			Slug:          "pickle-screenshots",
			Tagline:       "Screenshot, redact, and share privately",
			Description:   "A menu bar app that blurs sensitive data in screenshots before you share them",
			Votes:         195,
			CommentsCount: 6,
			Website:       "https://getpickle.app",
			URL:           "https://www.producthunt.com/posts/pickle-screenshots",
			Topics:        []string{"Mac", "Privacy"},
			Makers:        []Maker{{Name: "Jonas Weber"}},
			Comments: []Comment{
				{Text: "Super helpful for sharing bug reports without leaking customer data.", Votes: 8, Author: "Amelia Ross"},
				{Text: "Wish it had Windows support, disappointed.", Votes: 3, Author: "Diego Alvarez"},
			},
		},
		{
			ID:            "mock-4",
			Name:          "Loopdesk",
			Slug:          "loopdesk",
			Tagline:       "AI meeting notes that write your follow-ups",
			Description:   "Records calls, summarizes decisions and drafts follow-up emails for every attendee",
			Votes:         164,
			CommentsCount: 11,
			Website:       "https://loopdesk.ai",
			URL:           "https://www.producthunt.com/posts/loopdesk",
			Topics:        []string{"Productivity", "Artificial Intelligence"},
			Makers:        []Maker{{Name: "Nadia Karim", Headline: "CEO"}},
			Comments: []Comment{
				{Text: "The follow-up drafts are amazing, saves me an hour a day.", Votes: 10, Author: "Chris Park"},
				{Text: "Transcription quality was poor in my last call.", Votes: 4, Author: "Ola Nordmann"},
				{Text: "Does it integrate with Zoom?", Votes: 1, Author: "Anonymous"},
			},
		},
		{
			ID:            "mock-5",
			Name:          "Brandkit AI",
			Slug:          "brandkit-ai",
			Tagline:       "Generate a full brand identity in minutes",
			Description:   "Logos, palettes and typography generated from a one-line description of your company",
			Votes:         142,
			CommentsCount: 9,
			Website:       "https://brandkit.ai",
			URL:           "https://www.producthunt.com/posts/brandkit-ai",
			Topics:        []string{"Design Tools", "Artificial Intelligence"},
			Comments: []Comment{
				{Text: "Fantastic starting point for a side project brand.", Votes: 7, Author: "Ivy Zhang"},
				{Text: "Logos look generic, a waste for serious brands.", Votes: 5, Author: "Paul Green"},
			},
		},
		{
			ID:            "mock-6",
			Name:          "Queryline",
			Slug:          "queryline",
			Tagline:       "Ask your Postgres database questions in plain English",
			Description:   "Connects to a read replica and turns questions into reviewed SQL",
			Votes:         121,
			CommentsCount: 8,
			Website:       "https://queryline.dev",
			URL:           "https://www.producthunt.com/posts/queryline",
			Topics:        []string{"Developer Tools", "Artificial Intelligence", "SQL"},
			Makers:        []Maker{{Name: "Ben Okafor", Headline: "Data engineer"}},
			Comments: []Comment{
				{Text: "Awesome for quick analytics questions.", Votes: 6, Author: "Rita Gomez"},
				{Text: "Would love a read-only mode by default.", Votes: 3, Author: "Sam Patel"},
			},
		},
	}
}
