package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"huntbrief/internal/agent"
	"huntbrief/internal/extract"
	"huntbrief/internal/feed"
	"huntbrief/internal/models"
	"huntbrief/internal/providers"
	"huntbrief/internal/storage"

	"go.uber.org/zap"
)

const (
	aiTestSystem    = "You are a helpful assistant for Product Hunt queries."
	aiTestMaxTokens = 200
	maxListLimit    = 100
)

// timestamp matches the millisecond UTC form browsers produce.
func timestamp() string {
	return time.Now().UTC().Format("2006-01-02T15:04:05.000Z07:00")
}

func (s *Server) handleTest(w http.ResponseWriter, r *http.Request) {
	if r.Method == http.MethodGet {
		writeJSON(w, http.StatusOK, map[string]any{
			"message":   "Product Hunt AI Agent API is working!",
			"timestamp": timestamp(),
		})
		return
	}
	var body any
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil && !errors.Is(err, io.EOF) {
		writeErr(w, http.StatusBadRequest, fmt.Errorf("invalid json: %w", err))
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"message":   "POST request received",
		"received":  body,
		"timestamp": timestamp(),
	})
}

type agentResponse struct {
	Answer        string               `json:"answer"`
	ToolsUsed     []agent.ToolUse      `json:"toolsUsed"`
	ResponseType  extract.ResponseType `json:"responseType"`
	Data          extract.Data         `json:"data"`
	ExecutionTime string               `json:"executionTime"`
}

func (s *Server) handleAgent(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Question string `json:"question"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || strings.TrimSpace(req.Question) == "" {
		writeJSON(w, http.StatusBadRequest, map[string]any{"error": "Question is required"})
		return
	}

	ctx := r.Context()
	start := time.Now()
	res, err := s.agent.Run(ctx, req.Question)
	elapsed := time.Since(start)
	if err != nil {
		s.logger.Error("agent run failed",
			zap.String("request_id", providers.RequestID(ctx)),
			zap.String("provider", res.Provider.Name),
			zap.Error(err),
		)
		s.recordCall(r, "agent", "", res, elapsed, err)
		writeJSON(w, http.StatusInternalServerError, map[string]any{
			"error":   "Failed to process question",
			"details": err.Error(),
		})
		return
	}

	obs := make([]extract.Observation, 0, len(res.Steps))
	toolNames := make([]string, 0, len(res.Steps))
	for _, step := range res.Steps {
		obs = append(obs, extract.Observation{Tool: step.Tool, Output: step.Output})
		toolNames = append(toolNames, step.Tool)
	}
	built := extract.Build(res.Answer, obs)

	exchangeID := ""
	if s.exchanges != nil {
		id, err := s.exchanges.Insert(ctx, models.Exchange{
			Question:     req.Question,
			Answer:       res.Answer,
			ResponseType: string(built.ResponseType),
			ToolsUsed:    toolNames,
			ProviderName: res.Provider.Name,
			Model:        res.Provider.Model,
			DurationMS:   elapsed.Milliseconds(),
		})
		if err != nil {
			s.logger.Warn("save exchange failed", zap.Error(err))
		}
		exchangeID = id
	}
	s.recordCall(r, "agent", exchangeID, res, elapsed, nil)

	s.logger.Info("agent answered",
		zap.String("request_id", providers.RequestID(ctx)),
		zap.String("response_type", string(built.ResponseType)),
		zap.Strings("tools", toolNames),
		zap.Int("iterations", res.Iterations),
		zap.Duration("elapsed", elapsed),
	)
	writeJSON(w, http.StatusOK, agentResponse{
		Answer:        built.Answer,
		ToolsUsed:     res.ToolsUsed(),
		ResponseType:  built.ResponseType,
		Data:          built.Data,
		ExecutionTime: timestamp(),
	})
}

func (s *Server) recordCall(r *http.Request, op, exchangeID string, res agent.Result, elapsed time.Duration, runErr error) {
	if s.audit == nil {
		return
	}
	rec := storage.LLMCallRecord{
		Operation:        op,
		ExchangeID:       exchangeID,
		ProviderName:     res.Provider.Name,
		Model:            res.Provider.Model,
		RequestID:        providers.RequestID(r.Context()),
		Status:           "ok",
		PromptTokens:     res.Usage.PromptTokens,
		CompletionTokens: res.Usage.CompletionTokens,
		LatencyMS:        elapsed.Milliseconds(),
	}
	if runErr != nil {
		rec.Status = "failed"
		rec.ErrorType = string(providers.ClassifyError(runErr))
	}
	if err := s.audit.Insert(r.Context(), rec); err != nil {
		s.logger.Warn("audit llm call failed", zap.Error(err))
	}
}

func (s *Server) handleAITest(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Message string `json:"message"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || strings.TrimSpace(req.Message) == "" {
		writeJSON(w, http.StatusBadRequest, map[string]any{"error": "Message is required"})
		return
	}
	resp, info, err := providers.Generate(r.Context(), s.llm, providers.GenerateRequest{
		Operation:   "ai_test",
		System:      aiTestSystem,
		Prompt:      req.Message,
		Model:       s.cfg.ChatModel,
		Temperature: 0.7,
		MaxTokens:   aiTestMaxTokens,
	})
	if err != nil {
		s.logger.Error("ai test failed", zap.String("provider", info.Name), zap.Error(err))
		writeJSON(w, http.StatusInternalServerError, map[string]any{"error": "Failed to process request"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"response": resp.Text,
		"model":    resp.Model,
		"usage":    resp.Usage,
	})
}

// topNode keeps the field names of the upstream posts query.
type topNode struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	Tagline    string `json:"tagline"`
	VotesCount int    `json:"votesCount"`
	URL        string `json:"url"`
	Website    string `json:"website"`
}

func (s *Server) handleProductHunt(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Query string `json:"query"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || strings.TrimSpace(req.Query) == "" {
		writeJSON(w, http.StatusBadRequest, map[string]any{"error": "Query is required"})
		return
	}
	products, err := s.feed.Top(r.Context(), feed.DefaultTopLimit)
	if err != nil {
		s.logger.Error("producthunt top failed", zap.Error(err))
		writeJSON(w, http.StatusInternalServerError, map[string]any{"error": "Failed to fetch Product Hunt data"})
		return
	}
	nodes := make([]topNode, 0, len(products))
	for _, p := range products {
		nodes = append(nodes, topNode{ID: p.ID, Name: p.Name, Tagline: p.Tagline, VotesCount: p.Votes, URL: p.URL, Website: p.Website})
	}
	writeJSON(w, http.StatusOK, map[string]any{"products": nodes, "query": req.Query})
}

func (s *Server) handleTrending(w http.ResponseWriter, r *http.Request) {
	limit, err := queryLimit(r, feed.DefaultTrendingLimit)
	if err != nil {
		writeErr(w, http.StatusBadRequest, err)
		return
	}
	products, origin, err := s.feed.TrendingFrom(r.Context(), limit)
	if err != nil {
		writeErr(w, http.StatusBadGateway, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"products": products, "source": origin})
}

func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	if s.exchanges == nil {
		writeErr(w, http.StatusServiceUnavailable, fmt.Errorf("storage is not configured"))
		return
	}
	limit, err := queryLimit(r, s.cfg.HistoryLimit)
	if err != nil {
		writeErr(w, http.StatusBadRequest, err)
		return
	}
	exchanges, err := s.exchanges.ListRecent(r.Context(), limit)
	if err != nil {
		writeErr(w, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"exchanges": exchanges})
}

func queryLimit(r *http.Request, def int) (int, error) {
	raw := strings.TrimSpace(r.URL.Query().Get("limit"))
	if raw == "" {
		return def, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n <= 0 {
		return 0, fmt.Errorf("invalid limit %q", raw)
	}
	if n > maxListLimit {
		n = maxListLimit
	}
	return n, nil
}
