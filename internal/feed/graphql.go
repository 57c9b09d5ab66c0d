package feed

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"huntbrief/internal/config"
	"huntbrief/internal/util"

	"github.com/go-resty/resty/v2"
)

const (
	trendingQuery = `query Trending($first: Int!) {
  posts(first: $first, order: RANKING) {
    edges { node {
      id name slug tagline description votesCount commentsCount website url
      topics { edges { node { name } } }
    } }
  }
}`

	detailsQuery = `query Details($first: Int!) {
  posts(first: $first, order: RANKING) {
    edges { node {
      id name slug tagline description votesCount commentsCount website url
      topics { edges { node { name } } }
      makers { name headline }
      comments(first: 10) { edges { node { body votesCount user { name headline } } } }
    } }
  }
}`

	topQuery = `query Top($first: Int!) {
  posts(order: VOTES, first: $first) {
    nodes { id name tagline votesCount url website }
  }
}`
)

type ClientOptions struct {
	Endpoint       string
	PublicEndpoint string
	Token          string
	Timeout        time.Duration
	Retries        int
}

// GraphQLClient talks to the Product Hunt v2 API. Top uses the public
// frontend endpoint, which needs no token.
type GraphQLClient struct {
	http           *resty.Client
	endpoint       string
	publicEndpoint string
	token          string
}

func NewGraphQLClient(opts ClientOptions) *GraphQLClient {
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = 20 * time.Second
	}
	client := resty.New().
		SetTimeout(timeout).
		SetRetryCount(opts.Retries).
		SetRetryWaitTime(300*time.Millisecond).
		SetRetryMaxWaitTime(3*time.Second).
		AddRetryCondition(shouldRetry).
		SetHeader("Content-Type", "application/json").
		SetHeader("Accept", "application/json")
	return &GraphQLClient{
		http:           client,
		endpoint:       opts.Endpoint,
		publicEndpoint: opts.PublicEndpoint,
		token:          strings.TrimSpace(opts.Token),
	}
}

// shouldRetry retries transport failures and 5xx answers, but not once the
// caller's context is done.
func shouldRetry(r *resty.Response, err error) bool {
	if r != nil && r.Request != nil && r.Request.Context().Err() != nil {
		return false
	}
	return err != nil || (r != nil && r.StatusCode() >= 500)
}

func NewGraphQLClientFromConfig(cfg config.Config) *GraphQLClient {
	return NewGraphQLClient(ClientOptions{
		Endpoint:       cfg.ProductHuntAPIURL,
		PublicEndpoint: cfg.ProductHuntPublicURL,
		Token:          cfg.ProductHuntToken,
		Timeout:        time.Duration(cfg.FeedTimeoutSecs) * time.Second,
		Retries:        cfg.FeedRetries,
	})
}

func (c *GraphQLClient) Trending(ctx context.Context, limit int) ([]Product, error) {
	return c.posts(ctx, trendingQuery, clampLimit(limit, DefaultTrendingLimit))
}

func (c *GraphQLClient) Search(ctx context.Context, keywords string, limit int) ([]Product, error) {
	nodes, err := c.posts(ctx, trendingQuery, searchWindow)
	if err != nil {
		return nil, err
	}
	return filterByKeywords(nodes, keywords, clampLimit(limit, DefaultSearchLimit)), nil
}

func (c *GraphQLClient) Details(ctx context.Context, name string) (Product, error) {
	nodes, err := c.posts(ctx, detailsQuery, detailsWindow)
	if err != nil {
		return Product{}, err
	}
	p, ok := findByName(nodes, name)
	if !ok {
		return Product{}, fmt.Errorf("%w: %q", ErrProductNotFound, name)
	}
	return p, nil
}

func (c *GraphQLClient) Top(ctx context.Context, limit int) ([]Product, error) {
	var data struct {
		Posts struct {
			Nodes []postNode `json:"nodes"`
		} `json:"posts"`
	}
	vars := map[string]any{"first": clampLimit(limit, DefaultTopLimit)}
	if err := c.do(ctx, c.publicEndpoint, "", topQuery, vars, &data); err != nil {
		return nil, err
	}
	out := make([]Product, 0, len(data.Posts.Nodes))
	for _, n := range data.Posts.Nodes {
		out = append(out, n.product())
	}
	return out, nil
}

func (c *GraphQLClient) posts(ctx context.Context, query string, first int) ([]Product, error) {
	if c.token == "" {
		return nil, ErrNoToken
	}
	var data struct {
		Posts struct {
			Edges []struct {
				Node postNode `json:"node"`
			} `json:"edges"`
		} `json:"posts"`
	}
	if err := c.do(ctx, c.endpoint, c.token, query, map[string]any{"first": first}, &data); err != nil {
		return nil, err
	}
	out := make([]Product, 0, len(data.Posts.Edges))
	for _, e := range data.Posts.Edges {
		out = append(out, e.Node.product())
	}
	return out, nil
}

type graphQLRequest struct {
	Query     string         `json:"query"`
	Variables map[string]any `json:"variables,omitempty"`
}

type graphQLEnvelope struct {
	Data   json.RawMessage `json:"data"`
	Errors []struct {
		Message string `json:"message"`
	} `json:"errors"`
}

func (c *GraphQLClient) do(ctx context.Context, endpoint, token, query string, vars map[string]any, out any) error {
	req := c.http.R().
		SetContext(ctx).
		SetBody(graphQLRequest{Query: query, Variables: vars})
	if token != "" {
		req.SetAuthToken(token)
	}
	resp, err := req.Post(endpoint)
	if err != nil {
		return fmt.Errorf("producthunt request: %w", err)
	}

	var env graphQLEnvelope
	if err := json.Unmarshal(resp.Body(), &env); err != nil {
		if resp.IsError() {
			return fmt.Errorf("producthunt %s: %s", resp.Status(), util.DisplaySnippet(resp.String(), 200))
		}
		return fmt.Errorf("decode producthunt response: %w", err)
	}
	if len(env.Errors) > 0 {
		msg := strings.TrimSpace(env.Errors[0].Message)
		if msg == "" {
			msg = "GraphQL error"
		}
		return fmt.Errorf("%w: %s", ErrGraphQL, msg)
	}
	if resp.IsError() {
		return fmt.Errorf("producthunt %s", resp.Status())
	}
	if len(env.Data) == 0 || string(env.Data) == "null" {
		return fmt.Errorf("%w: response has no data", ErrGraphQL)
	}
	if err := json.Unmarshal(env.Data, out); err != nil {
		return fmt.Errorf("decode producthunt data: %w", err)
	}
	return nil
}

type postNode struct {
	ID            string `json:"id"`
	Name          string `json:"name"`
	Slug          string `json:"slug"`
	Tagline       string `json:"tagline"`
	Description   string `json:"description"`
	VotesCount    int    `json:"votesCount"`
	CommentsCount int    `json:"commentsCount"`
	Website       string `json:"website"`
	URL           string `json:"url"`
	Topics        struct {
		Edges []struct {
			Node struct {
				Name string `json:"name"`
			} `json:"node"`
		} `json:"edges"`
	} `json:"topics"`
	Makers []struct {
		Name     string `json:"name"`
		Headline string `json:"headline"`
	} `json:"makers"`
	Comments struct {
		Edges []struct {
			Node struct {
				Body       string `json:"body"`
				VotesCount int    `json:"votesCount"`
				User       struct {
					Name     string `json:"name"`
					Headline string `json:"headline"`
				} `json:"user"`
			} `json:"node"`
		} `json:"edges"`
	} `json:"comments"`
}

func (n postNode) product() Product {
	p := Product{
		ID:            n.ID,
		Name:          n.Name,
		Slug:          n.Slug,
		Tagline:       n.Tagline,
		Description:   n.Description,
		Votes:         n.VotesCount,
		CommentsCount: n.CommentsCount,
		Website:       n.Website,
		URL:           n.URL,
		Topics:        make([]string, 0, len(n.Topics.Edges)),
	}
	for _, e := range n.Topics.Edges {
		p.Topics = append(p.Topics, e.Node.Name)
	}
	for _, m := range n.Makers {
		p.Makers = append(p.Makers, Maker{Name: m.Name, Headline: m.Headline})
	}
	for _, e := range n.Comments.Edges {
		author := e.Node.User.Name
		if author == "" {
			author = "Anonymous"
		}
		p.Comments = append(p.Comments, Comment{
			Text:     e.Node.Body,
			Votes:    e.Node.VotesCount,
			Author:   author,
			Headline: e.Node.User.Headline,
		})
	}
	return p
}
