package feed

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type capturedRequest struct {
	Auth      string
	Query     string
	Variables map[string]any
}

func graphQLServer(t *testing.T, status int, body string, seen chan<- capturedRequest) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Query     string         `json:"query"`
			Variables map[string]any `json:"variables"`
		}
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		if seen != nil {
			seen <- capturedRequest{Auth: r.Header.Get("Authorization"), Query: req.Query, Variables: req.Variables}
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func newTestClient(url, token string) *GraphQLClient {
	return NewGraphQLClient(ClientOptions{Endpoint: url, PublicEndpoint: url, Token: token, Timeout: 2 * time.Second})
}

const edgesBody = `{"data":{"posts":{"edges":[
 {"node":{"id":"1","name":"Maillayer","tagline":"Email marketing without subscriptions","description":"Own your email stack","votesCount":308,"commentsCount":29,"website":"https://maillayer.com",
  "topics":{"edges":[{"node":{"name":"Email"}},{"node":{"name":"Marketing"}}]},
  "makers":[{"name":"Mohit","headline":"Maker"}],
  "comments":{"edges":[{"node":{"body":"Love it","votesCount":12,"user":{"name":"","headline":""}}},{"node":{"body":"Setup is complex","votesCount":2,"user":{"name":"Tom","headline":"Dev"}}}]}}},
 {"node":{"id":"2","name":"Pickle","tagline":"Screenshot, redact, and share privately","votesCount":195,"commentsCount":6,"topics":{"edges":[{"node":{"name":"Privacy"}}]}}}
]}}}`

func TestGraphQLTrending(t *testing.T) {
	seen := make(chan capturedRequest, 1)
	srv := graphQLServer(t, http.StatusOK, edgesBody, seen)

	products, err := newTestClient(srv.URL, "tok").Trending(context.Background(), 3)
	require.NoError(t, err)
	require.Len(t, products, 2)

	req := <-seen
	assert.Equal(t, "Bearer tok", req.Auth)
	assert.Contains(t, req.Query, "order: RANKING")
	assert.EqualValues(t, 3, req.Variables["first"])

	assert.Equal(t, "Maillayer", products[0].Name)
	assert.Equal(t, 308, products[0].Votes)
	assert.Equal(t, []string{"Email", "Marketing"}, products[0].Topics)
	assert.Equal(t, "Anonymous", products[0].Comments[0].Author)
	assert.Equal(t, "Tom", products[0].Comments[1].Author)
	assert.Equal(t, []string{"Privacy"}, products[1].Topics)
}

func TestGraphQLTrendingDefaultLimit(t *testing.T) {
	seen := make(chan capturedRequest, 1)
	srv := graphQLServer(t, http.StatusOK, edgesBody, seen)

	_, err := newTestClient(srv.URL, "tok").Trending(context.Background(), 0)
	require.NoError(t, err)
	assert.EqualValues(t, DefaultTrendingLimit, (<-seen).Variables["first"])
}

func TestGraphQLSearchFiltersBySubstring(t *testing.T) {
	seen := make(chan capturedRequest, 1)
	srv := graphQLServer(t, http.StatusOK, edgesBody, seen)
	c := newTestClient(srv.URL, "tok")

	products, err := c.Search(context.Background(), "PRIVACY", 0)
	require.NoError(t, err)
	require.Len(t, products, 1)
	assert.Equal(t, "Pickle", products[0].Name)
	assert.EqualValues(t, searchWindow, (<-seen).Variables["first"])
}

func TestGraphQLDetails(t *testing.T) {
	srv := graphQLServer(t, http.StatusOK, edgesBody, nil)
	c := newTestClient(srv.URL, "tok")

	p, err := c.Details(context.Background(), "mail")
	require.NoError(t, err)
	assert.Equal(t, "Maillayer", p.Name)
	assert.Equal(t, []Maker{{Name: "Mohit", Headline: "Maker"}}, p.Makers)

	_, err = c.Details(context.Background(), "nothing-like-this")
	require.ErrorIs(t, err, ErrProductNotFound)
}

func TestGraphQLErrorMessage(t *testing.T) {
	srv := graphQLServer(t, http.StatusOK, `{"errors":[{"message":"Invalid token"}]}`, nil)

	_, err := newTestClient(srv.URL, "tok").Trending(context.Background(), 5)
	require.ErrorIs(t, err, ErrGraphQL)
	assert.Contains(t, err.Error(), "Invalid token")

	srv = graphQLServer(t, http.StatusOK, `{"errors":[{}]}`, nil)
	_, err = newTestClient(srv.URL, "tok").Trending(context.Background(), 5)
	require.ErrorIs(t, err, ErrGraphQL)
	assert.Contains(t, err.Error(), "GraphQL error")
}

func TestGraphQLHTTPError(t *testing.T) {
	srv := graphQLServer(t, http.StatusUnauthorized, `not json`, nil)

	_, err := newTestClient(srv.URL, "tok").Trending(context.Background(), 5)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "401")
}

func TestGraphQLNoToken(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
	}))
	defer srv.Close()

	_, err := newTestClient(srv.URL, "  ").Trending(context.Background(), 5)
	require.ErrorIs(t, err, ErrNoToken)
	assert.Zero(t, calls.Load())
}

func TestGraphQLRetriesServerErrors(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		_, _ = w.Write([]byte(edgesBody))
	}))
	defer srv.Close()

	c := NewGraphQLClient(ClientOptions{Endpoint: srv.URL, Token: "tok", Timeout: 2 * time.Second, Retries: 1})
	products, err := c.Trending(context.Background(), 2)
	require.NoError(t, err)
	assert.Len(t, products, 2)
	assert.EqualValues(t, 2, calls.Load())
}

func TestGraphQLTopUsesPublicEndpoint(t *testing.T) {
	seen := make(chan capturedRequest, 1)
	srv := graphQLServer(t, http.StatusOK, `{"data":{"posts":{"nodes":[{"id":"9","name":"Loopdesk","tagline":"AI notes","votesCount":164,"url":"https://ph/loopdesk","website":"https://loopdesk.ai"}]}}}`, seen)

	c := NewGraphQLClient(ClientOptions{Endpoint: "http://127.0.0.1:1/unused", PublicEndpoint: srv.URL, Timeout: 2 * time.Second})
	products, err := c.Top(context.Background(), 0)
	require.NoError(t, err)
	require.Len(t, products, 1)
	assert.Equal(t, "Loopdesk", products[0].Name)
	assert.Equal(t, 164, products[0].Votes)

	req := <-seen
	assert.Empty(t, req.Auth)
	assert.True(t, strings.Contains(req.Query, "order: VOTES"))
	assert.EqualValues(t, DefaultTopLimit, req.Variables["first"])
}

func TestGraphQLNullData(t *testing.T) {
	srv := graphQLServer(t, http.StatusOK, `{"data":null}`, nil)
	_, err := newTestClient(srv.URL, "tok").Trending(context.Background(), 1)
	require.True(t, errors.Is(err, ErrGraphQL))
}

func TestShouldRetrySkipsDoneContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	live := &resty.Response{Request: resty.New().R().SetContext(context.Background())}
	done := &resty.Response{Request: resty.New().R().SetContext(ctx)}
	cancel()

	assert.True(t, shouldRetry(live, errors.New("connection reset")))
	assert.True(t, shouldRetry(nil, errors.New("connection reset")))
	assert.False(t, shouldRetry(done, errors.New("connection reset")))
	assert.False(t, shouldRetry(done, context.Canceled))
	assert.False(t, shouldRetry(live, nil))
}

func TestGraphQLDeadlineIsNotRetried(t *testing.T) {
	var calls atomic.Int32
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		select {
		case <-r.Context().Done():
		case <-release:
		}
	}))
	defer srv.Close()
	defer close(release)

	c := NewGraphQLClient(ClientOptions{Endpoint: srv.URL, Token: "tok", Timeout: 2 * time.Second, Retries: 3})
	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	_, err := c.Trending(ctx, 2)
	require.Error(t, err)
	assert.EqualValues(t, 1, calls.Load())
}
