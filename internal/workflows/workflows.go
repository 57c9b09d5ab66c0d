package workflows

import (
	"fmt"
	"strings"
	"time"

	"huntbrief/internal/activities"
	"huntbrief/internal/feed"
	"huntbrief/internal/models"
	"huntbrief/internal/providers"
	"huntbrief/internal/sentiment"

	"go.temporal.io/sdk/temporal"
	"go.temporal.io/sdk/workflow"
)

const QueryGetDigestProgress = "GetDigestProgress"

const (
	DefaultDigestLimit    = 10
	DefaultDigestDetailed = 3
)

const digestSummarySystem = "You write short, upbeat daily briefings about Product Hunt launches. Use plain prose, at most four sentences."

// DailyDigestWorkflow snapshots the trending launches, scores comment
// sentiment for the top few and saves the result as a digest.
func DailyDigestWorkflow(ctx workflow.Context, input DigestInput) (DigestOutput, error) {
	if input.Limit <= 0 {
		input.Limit = DefaultDigestLimit
	}
	if input.Detailed < 0 {
		input.Detailed = 0
	}
	progress := DigestProgress{DigestID: input.DigestID, Step: "trending", PerProduct: map[string]string{}}
	if err := workflow.SetQueryHandler(ctx, QueryGetDigestProgress, func() (DigestProgress, error) {
		return progress, nil
	}); err != nil {
		return DigestOutput{}, err
	}
	logger := workflow.GetLogger(ctx)

	ao := workflow.ActivityOptions{
		StartToCloseTimeout: 2 * time.Minute,
		RetryPolicy: &temporal.RetryPolicy{
			InitialInterval:    2 * time.Second,
			BackoffCoefficient: 2,
			MaximumInterval:    20 * time.Second,
			MaximumAttempts:    3,
		},
	}
	ctx = workflow.WithActivityOptions(ctx, ao)

	var trending activities.FetchTrendingOutput
	if err := workflow.ExecuteActivity(ctx, "FetchTrendingActivity", activities.FetchTrendingInput{Limit: input.Limit}).Get(ctx, &trending); err != nil {
		progress.Step = "failed"
		_ = workflow.ExecuteActivity(ctx, "SaveDigestActivity", activities.SaveDigestInput{
			Digest: models.Digest{DigestID: input.DigestID, Status: models.DigestFailed},
		}).Get(ctx, nil)
		return DigestOutput{}, err
	}

	products := make([]models.DigestProduct, 0, len(trending.Products))
	for i, p := range trending.Products {
		products = append(products, digestProduct(i+1, p))
	}
	detailed := input.Detailed
	if detailed > len(products) {
		detailed = len(products)
	}
	progress.Step = "analyzing"
	progress.Total = len(products)
	progress.Detailed = detailed

	wg := workflow.NewWaitGroup(ctx)
	for i := 0; i < detailed; i++ {
		name := products[i].Name
		progress.PerProduct[name] = "fetching"
		wg.Add(1)
		workflow.Go(ctx, func(gctx workflow.Context) {
			defer wg.Done()
			s, err := analyzeProduct(gctx, name)
			if err != nil {
				logger.Warn("skipping product sentiment", "product", name, "error", err)
				progress.PerProduct[name] = "failed"
				progress.Failed++
				return
			}
			products[i].Sentiment = s
			progress.PerProduct[name] = "analyzed"
			progress.Analyzed++
		})
	}
	wg.Wait(ctx)

	digest := models.Digest{
		DigestID: input.DigestID,
		Status:   models.DigestCompleted,
		Source:   trending.Source,
		Products: products,
	}
	if !input.SkipSummary && len(products) > 0 {
		progress.Step = "summarizing"
		digest.Summary = summarizeDigest(ctx, input.DigestID, products)
	}

	progress.Step = "saving"
	if err := workflow.ExecuteActivity(ctx, "SaveDigestActivity", activities.SaveDigestInput{Digest: digest}).Get(ctx, nil); err != nil {
		return DigestOutput{}, err
	}
	progress.Step = "completed"
	return DigestOutput{
		DigestID: input.DigestID,
		Products: len(products),
		Analyzed: progress.Analyzed,
		Source:   trending.Source,
		Summary:  digest.Summary,
	}, nil
}

func analyzeProduct(ctx workflow.Context, name string) (*models.DigestSentiment, error) {
	var details activities.FetchDetailsOutput
	if err := workflow.ExecuteActivity(ctx, "FetchDetailsActivity", activities.FetchDetailsInput{Name: name}).Get(ctx, &details); err != nil {
		return nil, err
	}
	comments := make([]sentiment.Comment, 0, len(details.Product.Comments))
	for _, c := range details.Product.Comments {
		comments = append(comments, sentiment.Comment{Text: c.Text, Votes: c.Votes})
	}
	var analysis activities.AnalyzeCommentsOutput
	if err := workflow.ExecuteActivity(ctx, "AnalyzeCommentsActivity", activities.AnalyzeCommentsInput{
		Product:  details.Product.Name,
		Comments: comments,
	}).Get(ctx, &analysis); err != nil {
		return nil, err
	}
	top := analysis.TopComments
	if top == nil {
		top = []string{}
	}
	return &models.DigestSentiment{
		Positive:    analysis.Counts.Positive,
		Negative:    analysis.Counts.Negative,
		Neutral:     analysis.Counts.Neutral,
		Score:       analysis.Score,
		Summary:     analysis.Summary,
		TopComments: top,
	}, nil
}

// summarizeDigest asks the model for a short overview and records the call.
// A failed call leaves the digest without a summary.
func summarizeDigest(ctx workflow.Context, digestID string, products []models.DigestProduct) string {
	in := activities.LLMGenerateInput{
		Operation:   "digest_summary",
		System:      digestSummarySystem,
		Prompt:      digestPrompt(products),
		Temperature: 0.7,
		MaxTokens:   300,
	}
	requestID := fmt.Sprintf("digest-%s", digestID)
	var out activities.LLMGenerateOutput
	err := workflow.ExecuteActivity(ctx, "LLMGenerateActivity", in).Get(ctx, &out)
	if err != nil {
		errType := providers.ClassifyError(err)
		_ = workflow.ExecuteActivity(ctx, "LogLLMCallActivity", activities.LogLLMCallInput{
			Operation: in.Operation, RequestID: requestID, ProviderName: "unknown", Model: "unknown",
			Status: "failed", ErrorType: string(errType),
		}).Get(ctx, nil)
		workflow.GetLogger(ctx).Warn("digest summary failed", "error", err, "error_type", errType)
		return ""
	}
	_ = workflow.ExecuteActivity(ctx, "LogLLMCallActivity", activities.LogLLMCallInput{
		Operation: in.Operation, RequestID: requestID, ProviderName: out.ProviderName, Model: out.Model,
		Status: "ok", PromptTokens: out.PromptTokens, CompletionTokens: out.CompletionTokens, LatencyMS: out.LatencyMS,
	}).Get(ctx, nil)
	return strings.TrimSpace(out.Text)
}

func digestPrompt(products []models.DigestProduct) string {
	var b strings.Builder
	b.WriteString("Summarize today's Product Hunt launches:\n")
	for _, p := range products {
		fmt.Fprintf(&b, "%d. %s - %s (%d votes)", p.Rank, p.Name, p.Tagline, p.Votes)
		if p.Sentiment != nil {
			fmt.Fprintf(&b, ", sentiment score %d%%", p.Sentiment.Score)
		}
		b.WriteString("\n")
	}
	return b.String()
}

func digestProduct(rank int, p feed.Product) models.DigestProduct {
	topics := p.Topics
	if topics == nil {
		topics = []string{}
	}
	return models.DigestProduct{
		Rank:     rank,
		Name:     p.Name,
		Tagline:  p.Tagline,
		Votes:    p.Votes,
		Comments: p.CommentsCount,
		Topics:   topics,
		Website:  p.Website,
	}
}
