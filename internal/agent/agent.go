// Package agent runs the tool-calling loop between a chat model and the
// Product Hunt tools.
package agent

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"huntbrief/internal/providers"
	"huntbrief/internal/tools"
	"huntbrief/internal/util"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/shared"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

var (
	ErrEmptyQuestion = errors.New("question is required")
	ErrNoChoices     = errors.New("model returned no choices")
)

const SystemPrompt = `You are a Product Hunt expert assistant. You help users discover and analyze products launched on Product Hunt.

Your capabilities:
- Find trending and popular products
- Search for products by category or keyword
- Analyze user sentiment from comments
- Provide insights about what users like or dislike
- Compare products based on votes and feedback

When answering questions:
1. Use the appropriate tools to fetch real data
2. Analyze the data thoroughly
3. Provide specific examples from the data
4. If analyzing sentiment, quote actual comments
5. Be concise but comprehensive

Remember: You have access to real Product Hunt data. Always fetch fresh data rather than making assumptions.`

const (
	DefaultModel         = "gpt-4o-mini"
	DefaultMaxIterations = 5

	toolConcurrency = 4
	displayOutput   = 100

	toolErrorMessage = "Error occurred while running. Do not retry"
)

// Completer is the slice of providers.LLMProvider the loop needs.
type Completer interface {
	New(ctx context.Context, params openai.ChatCompletionNewParams) (*openai.ChatCompletion, providers.ProviderInfo, error)
}

type Options struct {
	Model         string
	Temperature   float64
	MaxIterations int
	SystemPrompt  string
	// Status receives each tool's progress line. It may be called from
	// several goroutines at once.
	Status func(msg string)
}

type Agent struct {
	llm      Completer
	registry *tools.Registry
	opts     Options
	logger   *zap.Logger
}

func New(llm Completer, registry *tools.Registry, opts Options, logger *zap.Logger) *Agent {
	if strings.TrimSpace(opts.Model) == "" {
		opts.Model = DefaultModel
	}
	if opts.MaxIterations <= 0 {
		opts.MaxIterations = DefaultMaxIterations
	}
	if strings.TrimSpace(opts.SystemPrompt) == "" {
		opts.SystemPrompt = SystemPrompt
	}
	if registry == nil {
		registry = tools.NewRegistry()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Agent{llm: llm, registry: registry, opts: opts, logger: logger.Named("agent")}
}

// Step is one tool call and the exact text the model got back for it.
type Step struct {
	Tool   string          `json:"tool"`
	CallID string          `json:"-"`
	Input  json.RawMessage `json:"input"`
	Output string          `json:"output"`
}

// ToolUse is the display form of a Step.
type ToolUse struct {
	Tool   string          `json:"tool"`
	Input  json.RawMessage `json:"input"`
	Output string          `json:"output"`
}

type Result struct {
	Answer     string
	Steps      []Step
	Provider   providers.ProviderInfo
	Usage      providers.Usage
	Iterations int
}

// ToolsUsed lists the steps with outputs cut to 100 characters.
func (r Result) ToolsUsed() []ToolUse {
	out := make([]ToolUse, 0, len(r.Steps))
	for _, s := range r.Steps {
		out = append(out, ToolUse{Tool: s.Tool, Input: s.Input, Output: util.Ellipsize(s.Output, displayOutput)})
	}
	return out
}

func (a *Agent) Run(ctx context.Context, question string) (Result, error) {
	question = strings.TrimSpace(question)
	if question == "" {
		return Result{}, ErrEmptyQuestion
	}
	messages := []openai.ChatCompletionMessageParamUnion{
		openai.SystemMessage(a.opts.SystemPrompt),
		openai.UserMessage(question),
	}
	toolParams := a.registry.OpenAI()

	var res Result
	for res.Iterations < a.opts.MaxIterations {
		res.Iterations++
		msg, err := a.complete(ctx, messages, toolParams, &res)
		if err != nil {
			return res, err
		}
		messages = append(messages, msg.ToParam())
		if len(msg.ToolCalls) == 0 {
			res.Answer = msg.Content
			return res, nil
		}
		if msg.Content != "" {
			a.logger.Debug("model returned content alongside tool calls", zap.Int("iteration", res.Iterations))
		}

		steps := a.runTools(ctx, msg.ToolCalls)
		if err := ctx.Err(); err != nil {
			return res, err
		}
		for _, s := range steps {
			messages = append(messages, openai.ToolMessage(s.Output, s.CallID))
		}
		res.Steps = append(res.Steps, steps...)
	}

	a.logger.Warn("agent hit iteration limit, asking for a final answer",
		zap.Int("max_iterations", a.opts.MaxIterations),
		zap.Int("steps", len(res.Steps)),
	)
	msg, err := a.complete(ctx, messages, nil, &res)
	if err != nil {
		return res, err
	}
	res.Answer = msg.Content
	return res, nil
}

func (a *Agent) complete(ctx context.Context, messages []openai.ChatCompletionMessageParamUnion, toolParams []openai.ChatCompletionToolParam, res *Result) (openai.ChatCompletionMessage, error) {
	params := openai.ChatCompletionNewParams{
		Messages:    messages,
		Model:       shared.ChatModel(a.opts.Model),
		Temperature: openai.Float(a.opts.Temperature),
	}
	if len(toolParams) > 0 {
		params.Tools = toolParams
	}
	completion, info, err := a.llm.New(ctx, params)
	if info.Name != "" {
		res.Provider = info
	}
	if err != nil {
		return openai.ChatCompletionMessage{}, fmt.Errorf("llm call %d: %w", res.Iterations, err)
	}
	if completion == nil || len(completion.Choices) == 0 {
		return openai.ChatCompletionMessage{}, ErrNoChoices
	}
	res.Usage.Add(completion.Usage)
	return completion.Choices[0].Message, nil
}

// runTools executes the calls concurrently. Steps come back in call order.
func (a *Agent) runTools(ctx context.Context, calls []openai.ChatCompletionMessageToolCall) []Step {
	steps := make([]Step, len(calls))
	var g errgroup.Group
	g.SetLimit(toolConcurrency)
	for i, call := range calls {
		g.Go(func() error {
			steps[i] = a.runTool(ctx, call)
			return nil
		})
	}
	_ = g.Wait()
	return steps
}

func (a *Agent) runTool(ctx context.Context, call openai.ChatCompletionMessageToolCall) Step {
	step := Step{
		Tool:   call.Function.Name,
		CallID: call.ID,
		Input:  rawInput(call.Function.Arguments),
	}
	tool, ok := a.registry.Get(call.Function.Name)
	if !ok {
		a.logger.Warn("model called an unknown tool", zap.String("tool", call.Function.Name))
		step.Output = toolErrorMessage
		return step
	}
	if a.opts.Status != nil && tool.StatusMessage() != "" {
		a.opts.Status(tool.StatusMessage())
	}

	start := time.Now()
	out, err := tool.Execute(ctx, call.Function.Arguments)
	fields := []zap.Field{
		zap.String("tool", tool.Name()),
		zap.String("arguments", util.DisplaySnippet(call.Function.Arguments, 200)),
		zap.Duration("took", time.Since(start)),
	}
	var retErr *tools.RetryableError
	switch {
	case err == nil:
		step.Output = out
		a.logger.Info("tool finished", fields...)
	case errors.As(err, &retErr):
		step.Output = fmt.Sprintf("Error: %s.\nRetry", err)
		a.logger.Info("tool asked for a retry", append(fields, zap.Error(err))...)
	default:
		step.Output = toolErrorMessage
		a.logger.Error("tool failed", append(fields, zap.Error(err))...)
	}
	return step
}

// rawInput keeps valid JSON arguments as they are and quotes anything else.
func rawInput(args string) json.RawMessage {
	args = strings.TrimSpace(args)
	if args == "" {
		return json.RawMessage("{}")
	}
	if json.Valid([]byte(args)) {
		return json.RawMessage(args)
	}
	b, _ := json.Marshal(args)
	return b
}
