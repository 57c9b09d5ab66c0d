package activities

import "go.temporal.io/sdk/worker"

func Register(w worker.Worker, a *Activities) {
	w.RegisterActivity(a.FetchTrendingActivity)
	w.RegisterActivity(a.FetchDetailsActivity)
	w.RegisterActivity(a.AnalyzeCommentsActivity)
	w.RegisterActivity(a.LLMGenerateActivity)
	w.RegisterActivity(a.LogLLMCallActivity)
	w.RegisterActivity(a.SaveDigestActivity)
}
