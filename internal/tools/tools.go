// Package tools holds the callback functions the agent exposes to the model.
package tools

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/invopop/jsonschema"
	"github.com/openai/openai-go"
)

type Tool interface {
	Name() string
	Description() string
	// StatusMessage is a short progress line shown while the tool runs.
	StatusMessage() string
	// Parameters is the JSON schema of the arguments object.
	Parameters() map[string]any
	Execute(ctx context.Context, rawArgs string) (string, error)
}

// RetryableError marks a failure the model can fix by calling the tool again,
// usually with corrected arguments.
type RetryableError struct {
	Err error
}

func (e *RetryableError) Error() string { return e.Err.Error() }
func (e *RetryableError) Unwrap() error { return e.Err }

func retryable(format string, args ...any) error {
	return &RetryableError{Err: fmt.Errorf(format, args...)}
}

type Registry struct {
	order []string
	tools map[string]Tool
}

func NewRegistry(tools ...Tool) *Registry {
	r := &Registry{tools: make(map[string]Tool, len(tools))}
	for _, t := range tools {
		r.Register(t)
	}
	return r
}

// Register adds t, replacing any tool with the same name in place.
func (r *Registry) Register(t Tool) {
	if _, ok := r.tools[t.Name()]; !ok {
		r.order = append(r.order, t.Name())
	}
	r.tools[t.Name()] = t
}

func (r *Registry) Get(name string) (Tool, bool) {
	t, ok := r.tools[name]
	return t, ok
}

func (r *Registry) All() []Tool {
	out := make([]Tool, 0, len(r.order))
	for _, name := range r.order {
		out = append(out, r.tools[name])
	}
	return out
}

func (r *Registry) Names() []string {
	return append([]string(nil), r.order...)
}

// OpenAI converts the registry into chat completion tool definitions.
func (r *Registry) OpenAI() []openai.ChatCompletionToolParam {
	out := make([]openai.ChatCompletionToolParam, 0, len(r.order))
	for _, t := range r.All() {
		out = append(out, openai.ChatCompletionToolParam{
			Function: openai.FunctionDefinitionParam{
				Name:        t.Name(),
				Description: openai.String(t.Description()),
				Parameters:  openai.FunctionParameters(t.Parameters()),
			},
		})
	}
	return out
}

// GenerateSchema reflects the argument struct T into a JSON schema object.
func GenerateSchema[T any]() map[string]any {
	reflector := jsonschema.Reflector{
		AllowAdditionalProperties: false,
		DoNotReference:            true,
	}
	var v T
	schema := reflector.Reflect(v)
	b, err := json.Marshal(schema)
	if err != nil {
		panic(fmt.Sprintf("marshal schema for %T: %v", v, err))
	}
	out := map[string]any{}
	if err := json.Unmarshal(b, &out); err != nil {
		panic(fmt.Sprintf("unmarshal schema for %T: %v", v, err))
	}
	delete(out, "$schema")
	delete(out, "$id")
	return out
}

func decodeArgs(raw string, out any) error {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		raw = "{}"
	}
	if err := json.Unmarshal([]byte(raw), out); err != nil {
		return retryable("arguments are not valid JSON for this tool: %v", err)
	}
	return nil
}

func marshalOutput(v any) (string, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return "", fmt.Errorf("encode tool output: %w", err)
	}
	return string(b), nil
}
