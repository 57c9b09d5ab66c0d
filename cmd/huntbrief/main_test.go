package main

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	lipgloss.SetColorProfile(termenv.Ascii)
}

const productsAnswer = `{
  "answer": "Here are today's trending products:\n1. **Maillayer** - Email marketing without subscriptions",
  "responseType": "products",
  "data": {"products": [{"name":"Maillayer","tagline":"Email marketing without subscriptions","votes":308,"comments":29,"topics":["Email"]}]},
  "toolsUsed": [{"tool":"get_trending_products","input":{"limit":1},"output":"[...]"}],
  "executionTime": "2025-01-01T00:00:00.000Z"
}`

func fakeAPI(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/api/agent", func(w http.ResponseWriter, r *http.Request) {
		var body map[string]string
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		w.Header().Set("Content-Type", "application/json")
		if body["question"] == "fail" {
			w.WriteHeader(http.StatusInternalServerError)
			_, _ = w.Write([]byte(`{"error":"Failed to process question","details":"boom"}`))
			return
		}
		_, _ = w.Write([]byte(productsAnswer))
	})
	mux.HandleFunc("/api/products/trending", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "2", r.URL.Query().Get("limit"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"source":"mock","products":[{"name":"Pickle","tagline":"Private screenshots","votes":195,"commentsCount":6,"topics":["Privacy"]},{"name":"Loopdesk","tagline":"AI notes","votes":164,"commentsCount":12,"topics":[]}]}`))
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	root := newRootCmd()
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(args)
	err := root.ExecuteContext(context.Background())
	return out.String(), err
}

func TestAskRendersCards(t *testing.T) {
	srv := fakeAPI(t)

	out, err := run(t, "ask", "--server", srv.URL, "--style", "ascii", "What", "is", "trending?")
	require.NoError(t, err)
	assert.Contains(t, out, "1. Maillayer")
	assert.Contains(t, out, "308 votes · 29 comments · Email")
	assert.Contains(t, out, "tools: get_trending_products")
}

func TestAskRaw(t *testing.T) {
	srv := fakeAPI(t)

	out, err := run(t, "ask", "--server", srv.URL, "--raw", "What is trending?")
	require.NoError(t, err)
	var decoded map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &decoded))
	assert.Equal(t, "products", decoded["responseType"])
}

func TestAskError(t *testing.T) {
	srv := fakeAPI(t)

	_, err := run(t, "ask", "--server", srv.URL, "fail")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Failed to process question: boom")

	_, err = run(t, "ask", "--server", srv.URL)
	require.Error(t, err)
}

func TestTrending(t *testing.T) {
	srv := fakeAPI(t)

	out, err := run(t, "trending", "--server", srv.URL, "--limit", "2")
	require.NoError(t, err)
	assert.Contains(t, out, "2 launches from mock data")
	assert.Contains(t, out, "1. Pickle")
	assert.Contains(t, out, "2. Loopdesk")
}
