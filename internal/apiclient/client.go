// Package apiclient is a small client for the huntbrief HTTP API.
package apiclient

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"huntbrief/internal/agent"
	"huntbrief/internal/extract"
	"huntbrief/internal/feed"

	"github.com/go-resty/resty/v2"
)

const DefaultBaseURL = "http://localhost:8080"

type AskResponse struct {
	extract.Response
	ToolsUsed     []agent.ToolUse `json:"toolsUsed"`
	ExecutionTime string          `json:"executionTime"`
}

// ToolNames lists the tools in the order they ran.
func (r AskResponse) ToolNames() []string {
	out := make([]string, 0, len(r.ToolsUsed))
	for _, t := range r.ToolsUsed {
		out = append(out, t.Tool)
	}
	return out
}

type TrendingResponse struct {
	Products []feed.Product `json:"products"`
	Source   string         `json:"source"`
}

// APIError is a non-2xx answer from the server.
type APIError struct {
	Status  int
	Code    string
	Message string
}

func (e *APIError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("huntbrief api %d %s: %s", e.Status, e.Code, e.Message)
	}
	return fmt.Sprintf("huntbrief api %d: %s", e.Status, e.Message)
}

type Client struct {
	http *resty.Client
}

func New(baseURL string, timeout time.Duration) *Client {
	if strings.TrimSpace(baseURL) == "" {
		baseURL = DefaultBaseURL
	}
	if timeout <= 0 {
		timeout = 2 * time.Minute
	}
	return &Client{
		http: resty.New().
			SetBaseURL(strings.TrimRight(baseURL, "/")).
			SetTimeout(timeout).
			SetHeader("Accept", "application/json"),
	}
}

func (c *Client) Ask(ctx context.Context, question string) (AskResponse, error) {
	var out AskResponse
	resp, err := c.http.R().
		SetContext(ctx).
		SetBody(map[string]string{"question": question}).
		Post("/api/agent")
	if err != nil {
		return out, fmt.Errorf("ask: %w", err)
	}
	if err := decode(resp, &out); err != nil {
		return AskResponse{}, err
	}
	return out, nil
}

func (c *Client) Trending(ctx context.Context, limit int) (TrendingResponse, error) {
	var out TrendingResponse
	req := c.http.R().SetContext(ctx)
	if limit > 0 {
		req.SetQueryParam("limit", strconv.Itoa(limit))
	}
	resp, err := req.Get("/api/products/trending")
	if err != nil {
		return out, fmt.Errorf("trending: %w", err)
	}
	if err := decode(resp, &out); err != nil {
		return TrendingResponse{}, err
	}
	return out, nil
}

// errorBody covers both error shapes the server writes: a flat
// {"error":"...","details":"..."} and {"error":{"code","message"}}.
type errorBody struct {
	Error   json.RawMessage `json:"error"`
	Details string          `json:"details"`
}

func decode(resp *resty.Response, out any) error {
	if resp.IsError() {
		return apiError(resp)
	}
	if err := json.Unmarshal(resp.Body(), out); err != nil {
		return fmt.Errorf("decode %s: %w", resp.Request.URL, err)
	}
	return nil
}

func apiError(resp *resty.Response) error {
	e := &APIError{Status: resp.StatusCode(), Message: resp.Status()}
	var body errorBody
	if err := json.Unmarshal(resp.Body(), &body); err != nil || len(body.Error) == 0 {
		return e
	}
	var flat string
	if err := json.Unmarshal(body.Error, &flat); err == nil {
		e.Message = flat
		if body.Details != "" {
			e.Message += ": " + body.Details
		}
		return e
	}
	var nested struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	}
	if err := json.Unmarshal(body.Error, &nested); err == nil {
		e.Code = nested.Code
		e.Message = nested.Message
	}
	return e
}
