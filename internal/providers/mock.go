package providers

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"huntbrief/internal/sentiment"
	"huntbrief/internal/util"

	"github.com/openai/openai-go"
)

const mockModel = "mock-agent-v1"

// Tool names the scripted model knows how to call.
const (
	mockTrending = "get_trending_products"
	mockSearch   = "search_products"
	mockDetails  = "get_product_details"
	mockAnalyze  = "analyze_comments"
)

// MockProvider is a deterministic stand-in for a tool-calling model. It picks
// a tool from keywords in the question, then writes its answer in the same
// prose shapes a hosted model tends to produce.
type MockProvider struct{}

func NewMockProvider() *MockProvider {
	return &MockProvider{}
}

func (m *MockProvider) Info() ProviderInfo {
	return ProviderInfo{Name: "mock", Model: mockModel, Key: "mock"}
}

func (m *MockProvider) New(ctx context.Context, params openai.ChatCompletionNewParams) (*openai.ChatCompletion, ProviderInfo, error) {
	info := m.Info()
	if err := ctx.Err(); err != nil {
		return nil, info, err
	}
	question := lastUserText(params.Messages)
	obs := toolObservations(params.Messages)

	var (
		completion *openai.ChatCompletion
		err        error
	)
	switch {
	case len(params.Tools) == 0 && len(obs) == 0:
		completion, err = textCompletion(params.Messages, chatReply(question))
	case len(params.Tools) == 0:
		completion, err = textCompletion(params.Messages, composeAnswer(question, obs))
	default:
		if name, args, ok := nextCall(question, obs); ok {
			completion, err = toolCallCompletion(params.Messages, len(obs)+1, name, args)
		} else {
			completion, err = textCompletion(params.Messages, composeAnswer(question, obs))
		}
	}
	if err != nil {
		return nil, info, err
	}
	return completion, info, nil
}

type observation struct {
	tool   string
	output string
}

func lastUserText(msgs []openai.ChatCompletionMessageParamUnion) string {
	for i := len(msgs) - 1; i >= 0; i-- {
		if u := msgs[i].OfUser; u != nil {
			return u.Content.OfString.Value
		}
	}
	return ""
}

// toolObservations returns the tool results that follow the last user message.
// The tool name is carried in the call id the mock generated.
func toolObservations(msgs []openai.ChatCompletionMessageParamUnion) []observation {
	start := 0
	for i := len(msgs) - 1; i >= 0; i-- {
		if msgs[i].OfUser != nil {
			start = i + 1
			break
		}
	}
	var out []observation
	for _, msg := range msgs[start:] {
		t := msg.OfTool
		if t == nil {
			continue
		}
		out = append(out, observation{tool: toolFromCallID(t.ToolCallID), output: t.Content.OfString.Value})
	}
	return out
}

func mockCallID(n int, tool string) string {
	return fmt.Sprintf("call_%d_%s", n, tool)
}

func toolFromCallID(id string) string {
	parts := strings.SplitN(id, "_", 3)
	if len(parts) != 3 || parts[0] != "call" {
		return ""
	}
	return parts[2]
}

type intent int

const (
	intentTrending intent = iota
	intentHottest
	intentSearch
	intentSentiment
)

var (
	sentimentCues = []string{"think about", "thinking about", "sentiment", "feedback", "opinion", "reviews", "say about", "saying about", "people think", "users think"}
	hottestCues   = []string{"hottest", "best product", "top product", "most popular", "number one", "#1"}
	searchCues    = []string{"search", "find", "looking for", "related to", "tools", "apps", " for "}
)

func classifyQuestion(q string) intent {
	lower := " " + strings.ToLower(q) + " "
	switch {
	case containsAnyCue(lower, sentimentCues):
		return intentSentiment
	case containsAnyCue(lower, hottestCues):
		return intentHottest
	case containsAnyCue(lower, searchCues) && len(util.KeyTerms(q)) > 0:
		return intentSearch
	default:
		return intentTrending
	}
}

func containsAnyCue(s string, cues []string) bool {
	for _, c := range cues {
		if strings.Contains(s, c) {
			return true
		}
	}
	return false
}

// productSubject guesses the product a question is about from the text after
// its last "about", "of", "on" or "for".
func productSubject(q string) string {
	q = strings.TrimRight(strings.TrimSpace(q), "?!.")
	for _, suffix := range []string{" today", " on product hunt", " launch"} {
		if strings.HasSuffix(strings.ToLower(q), suffix) {
			q = q[:len(q)-len(suffix)]
		}
	}
	lower := strings.ToLower(q)
	best, cut := -1, 0
	for _, p := range []string{" about ", " of ", " on ", " for "} {
		if i := strings.LastIndex(lower, p); i > best {
			best, cut = i, i+len(p)
		}
	}
	subject := q
	if best >= 0 {
		subject = q[cut:]
	}
	subject = strings.Trim(strings.TrimSpace(subject), "?!.,\"'“”‘’*")
	if subject == "" {
		if terms := util.KeyTerms(q); len(terms) > 0 {
			return terms[len(terms)-1]
		}
	}
	return subject
}

func nextCall(question string, obs []observation) (string, string, bool) {
	in := classifyQuestion(question)
	if len(obs) == 0 {
		switch in {
		case intentSentiment:
			return mockDetails, mustJSON(map[string]any{"productName": productSubject(question)}), true
		case intentHottest:
			return mockTrending, mustJSON(map[string]any{"limit": 1}), true
		case intentSearch:
			return mockSearch, mustJSON(map[string]any{"keywords": util.KeyTerms(question)[0], "limit": 5}), true
		default:
			return mockTrending, mustJSON(map[string]any{"limit": 5}), true
		}
	}

	last := obs[len(obs)-1]
	if in == intentSentiment && last.tool == mockDetails && !hasObservation(obs, mockAnalyze) {
		var d detailsObservation
		if err := json.Unmarshal([]byte(last.output), &d); err == nil && len(d.Comments) > 0 {
			comments := make([]map[string]any, 0, len(d.Comments))
			for _, c := range d.Comments {
				comments = append(comments, map[string]any{"text": c.Text, "votes": c.Votes})
			}
			return mockAnalyze, mustJSON(map[string]any{"comments": comments, "productName": d.Name}), true
		}
	}
	return "", "", false
}

func hasObservation(obs []observation, tool string) bool {
	for _, o := range obs {
		if o.tool == tool {
			return true
		}
	}
	return false
}

func findObservation(obs []observation, tool string) (observation, bool) {
	for i := len(obs) - 1; i >= 0; i-- {
		if obs[i].tool == tool {
			return obs[i], true
		}
	}
	return observation{}, false
}

type listedProduct struct {
	Name          string   `json:"name"`
	Tagline       string   `json:"tagline"`
	Votes         int      `json:"votes"`
	CommentsCount *int     `json:"commentsCount"`
	Topics        []string `json:"topics"`
}

type detailsObservation struct {
	Name          string   `json:"name"`
	Tagline       string   `json:"tagline"`
	Description   string   `json:"description"`
	Votes         int      `json:"votes"`
	Website       string   `json:"website"`
	Topics        []string `json:"topics"`
	CommentsCount int      `json:"commentsCount"`
	Comments      []struct {
		Text  string `json:"text"`
		Votes int    `json:"votes"`
	} `json:"comments"`
}

type analysisObservation struct {
	Product  string `json:"product"`
	Analysis struct {
		TotalComments int              `json:"totalComments"`
		Sentiment     sentiment.Counts `json:"sentiment"`
		TopComments   []string         `json:"topComments"`
	} `json:"analysis"`
}

func composeAnswer(question string, obs []observation) string {
	if len(obs) == 0 {
		return chatReply(question)
	}
	if a, ok := findObservation(obs, mockAnalyze); ok {
		d, _ := findObservation(obs, mockDetails)
		if text, ok := sentimentAnswer(a.output, d.output); ok {
			return text
		}
	}
	if d, ok := findObservation(obs, mockDetails); ok {
		return detailsAnswer(d.output)
	}
	last := obs[len(obs)-1]
	var listed []listedProduct
	if err := json.Unmarshal([]byte(last.output), &listed); err != nil {
		return fallbackAnswer(last.output)
	}
	if len(listed) == 0 {
		return "I couldn't find any launches for that today. Try asking for today's trending products instead."
	}
	if classifyQuestion(question) == intentHottest || (len(listed) == 1 && last.tool == mockTrending) {
		return hottestAnswer(listed[0])
	}
	heading := "Here are today's trending products on Product Hunt:"
	if last.tool == mockSearch {
		heading = "Here are the launches that match your search:"
	}
	return listAnswer(heading, listed)
}

func hottestAnswer(p listedProduct) string {
	var b strings.Builder
	fmt.Fprintf(&b, "The hottest product on Product Hunt today is **%s**. It provides %s. ", p.Name, lowerFirst(p.Tagline))
	if p.CommentsCount != nil {
		fmt.Fprintf(&b, "It has Votes: %d and Comments: %d.", p.Votes, *p.CommentsCount)
	} else {
		fmt.Fprintf(&b, "It has Votes: %d.", p.Votes)
	}
	if len(p.Topics) > 0 {
		fmt.Fprintf(&b, "\n\nTopics: %s", strings.Join(p.Topics, ", "))
	}
	return b.String()
}

func listAnswer(heading string, products []listedProduct) string {
	var b strings.Builder
	b.WriteString(heading)
	b.WriteString("\n\n")
	for i, p := range products {
		fmt.Fprintf(&b, "%d. **%s** - %s\n", i+1, p.Name, p.Tagline)
		if p.CommentsCount != nil {
			fmt.Fprintf(&b, "   - %d votes, %d comments\n", p.Votes, *p.CommentsCount)
		} else {
			fmt.Fprintf(&b, "   - %d votes\n", p.Votes)
		}
		if len(p.Topics) > 0 {
			fmt.Fprintf(&b, "   - Topics: %s\n", strings.Join(p.Topics, ", "))
		}
	}
	b.WriteString("\nAsk me what people think about any of these to see a sentiment breakdown.")
	return b.String()
}

func detailsAnswer(output string) string {
	var d detailsObservation
	if err := json.Unmarshal([]byte(output), &d); err != nil {
		return fallbackAnswer(output)
	}
	var b strings.Builder
	fmt.Fprintf(&b, "**%s** (%s) has Votes: %d and Comments: %d.", d.Name, d.Tagline, d.Votes, d.CommentsCount)
	if d.Description != "" {
		fmt.Fprintf(&b, "\n\n%s", d.Description)
	}
	if len(d.Topics) > 0 {
		fmt.Fprintf(&b, "\n\nTopics: %s", strings.Join(d.Topics, ", "))
	}
	if d.Website != "" {
		fmt.Fprintf(&b, "\nWebsite: %s", d.Website)
	}
	return b.String()
}

func sentimentAnswer(analysisOut, detailsOut string) (string, bool) {
	var a analysisObservation
	if err := json.Unmarshal([]byte(analysisOut), &a); err != nil {
		return "", false
	}
	c := a.Analysis.Sentiment
	tone := "mixed"
	switch {
	case c.Positive > c.Negative:
		tone = "mostly positive"
	case c.Negative > c.Positive:
		tone = "mostly negative"
	}

	var liked, concerns []string
	var d detailsObservation
	if err := json.Unmarshal([]byte(detailsOut), &d); err == nil {
		for _, cm := range d.Comments {
			switch sentiment.Classify(cm.Text) {
			case sentiment.Positive:
				liked = append(liked, cm.Text)
			case sentiment.Negative:
				concerns = append(concerns, cm.Text)
			}
		}
	}
	if len(liked) == 0 {
		liked = a.Analysis.TopComments
	}

	var b strings.Builder
	fmt.Fprintf(&b, "**%s** has received %s feedback from the Product Hunt community.\n\n", a.Product, tone)
	fmt.Fprintf(&b, "Sentiment breakdown (%d comments analyzed):\n", a.Analysis.TotalComments)
	fmt.Fprintf(&b, "- Positive: %d\n- Negative: %d\n- Neutral: %d\n", c.Positive, c.Negative, c.Neutral)
	if len(liked) > 0 {
		b.WriteString("\nWhat users like:\n")
		for _, q := range firstN(liked, 3) {
			fmt.Fprintf(&b, "- \"%s\"\n", q)
		}
	}
	if len(concerns) > 0 {
		b.WriteString("\nConcerns:\n")
		for _, q := range firstN(concerns, 2) {
			fmt.Fprintf(&b, "- \"%s\"\n", q)
		}
	}
	return strings.TrimRight(b.String(), "\n"), true
}

func fallbackAnswer(output string) string {
	switch {
	case strings.HasPrefix(output, "Product \""), strings.HasPrefix(output, "No products found"):
		return output + ". Try asking for today's trending products to see what launched."
	case strings.HasPrefix(output, "Error"):
		return "I couldn't reach Product Hunt right now (" + util.DisplaySnippet(output, 160) + "). Please try again in a moment."
	case output == "No comments to analyze":
		return "That product has no comments yet, so there is no feedback to summarize."
	default:
		return util.DisplaySnippet(output, 400)
	}
}

func chatReply(question string) string {
	if strings.TrimSpace(question) == "" {
		return "Ask me about today's Product Hunt launches."
	}
	return "I'm running without a hosted model, so I can only help with Product Hunt data: " +
		"ask for today's trending products, search a category like \"email\" or \"AI\", " +
		"or ask what people think about a specific launch."
}

func firstN(s []string, n int) []string {
	if len(s) > n {
		return s[:n]
	}
	return s
}

func lowerFirst(s string) string {
	if s == "" {
		return s
	}
	r := []rune(s)
	if len(r) > 1 && r[1] >= 'A' && r[1] <= 'Z' {
		return s
	}
	return strings.ToLower(string(r[0])) + string(r[1:])
}

func mustJSON(v any) string {
	b, err := json.Marshal(v)
	if err != nil {
		panic(err)
	}
	return string(b)
}

// The completions are decoded from wire JSON so they carry the same raw
// fields a real response would.
func textCompletion(msgs []openai.ChatCompletionMessageParamUnion, content string) (*openai.ChatCompletion, error) {
	return decodeCompletion(map[string]any{
		"id":      "mock-chat",
		"object":  "chat.completion",
		"created": 0,
		"model":   mockModel,
		"choices": []any{map[string]any{
			"index":         0,
			"finish_reason": "stop",
			"logprobs":      nil,
			"message":       map[string]any{"role": "assistant", "content": content, "refusal": nil},
		}},
		"usage": usageFor(msgs, content),
	})
}

func toolCallCompletion(msgs []openai.ChatCompletionMessageParamUnion, n int, name, args string) (*openai.ChatCompletion, error) {
	return decodeCompletion(map[string]any{
		"id":      fmt.Sprintf("mock-call-%d", n),
		"object":  "chat.completion",
		"created": 0,
		"model":   mockModel,
		"choices": []any{map[string]any{
			"index":         0,
			"finish_reason": "tool_calls",
			"logprobs":      nil,
			"message": map[string]any{
				"role":    "assistant",
				"content": nil,
				"refusal": nil,
				"tool_calls": []any{map[string]any{
					"id":       mockCallID(n, name),
					"type":     "function",
					"function": map[string]any{"name": name, "arguments": args},
				}},
			},
		}},
		"usage": usageFor(msgs, args),
	})
}

func decodeCompletion(doc map[string]any) (*openai.ChatCompletion, error) {
	b, err := json.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("encode mock completion: %w", err)
	}
	var c openai.ChatCompletion
	if err := json.Unmarshal(b, &c); err != nil {
		return nil, fmt.Errorf("decode mock completion: %w", err)
	}
	return &c, nil
}

// usageFor estimates tokens at four characters each.
func usageFor(msgs []openai.ChatCompletionMessageParamUnion, completion string) map[string]int {
	promptChars := 0
	for _, m := range msgs {
		switch {
		case m.OfSystem != nil:
			promptChars += len(m.OfSystem.Content.OfString.Value)
		case m.OfUser != nil:
			promptChars += len(m.OfUser.Content.OfString.Value)
		case m.OfTool != nil:
			promptChars += len(m.OfTool.Content.OfString.Value)
		}
	}
	prompt := promptChars/4 + 1
	out := len(completion)/4 + 1
	return map[string]int{"prompt_tokens": prompt, "completion_tokens": out, "total_tokens": prompt + out}
}
