package models

import "time"

type Exchange struct {
	ExchangeID   string    `json:"exchange_id"`
	Question     string    `json:"question"`
	QuestionHash string    `json:"question_hash"`
	Answer       string    `json:"answer"`
	ResponseType string    `json:"response_type"`
	ToolsUsed    []string  `json:"tools_used"`
	ProviderName string    `json:"provider_name,omitempty"`
	Model        string    `json:"model,omitempty"`
	DurationMS   int64     `json:"duration_ms"`
	CreatedAt    time.Time `json:"created_at"`
}

const (
	DigestRunning   = "running"
	DigestCompleted = "completed"
	DigestFailed    = "failed"
)

type Digest struct {
	DigestID  string          `json:"digest_id"`
	Status    string          `json:"status"`
	Source    string          `json:"source,omitempty"`
	Summary   string          `json:"summary,omitempty"`
	Products  []DigestProduct `json:"products"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
}

type DigestProduct struct {
	Rank      int              `json:"rank"`
	Name      string           `json:"name"`
	Tagline   string           `json:"tagline"`
	Votes     int              `json:"votes"`
	Comments  int              `json:"comments"`
	Topics    []string         `json:"topics"`
	Website   string           `json:"website,omitempty"`
	Sentiment *DigestSentiment `json:"sentiment,omitempty"`
}

type DigestSentiment struct {
	Positive    int      `json:"positive"`
	Negative    int      `json:"negative"`
	Neutral     int      `json:"neutral"`
	Score       int      `json:"score"`
	Summary     string   `json:"summary"`
	TopComments []string `json:"top_comments"`
}
