package workflows

type DigestInput struct {
	DigestID string `json:"digest_id"`
	Limit    int    `json:"limit"`
	Detailed int    `json:"detailed"`
	// SkipSummary leaves the digest without a model-written overview.
	SkipSummary bool `json:"skip_summary,omitempty"`
}

type DigestOutput struct {
	DigestID string `json:"digest_id"`
	Products int    `json:"products"`
	Analyzed int    `json:"analyzed"`
	Source   string `json:"source"`
	Summary  string `json:"summary,omitempty"`
}

type DigestProgress struct {
	DigestID   string            `json:"digest_id"`
	Step       string            `json:"step"`
	Total      int               `json:"total"`
	Detailed   int               `json:"detailed"`
	Analyzed   int               `json:"analyzed"`
	Failed     int               `json:"failed"`
	PerProduct map[string]string `json:"per_product"`
}
