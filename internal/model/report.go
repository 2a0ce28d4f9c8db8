package model

import "time"

// Report represents the complete result of one analysis run
type Report struct {
	RunID      string    `json:"run_id"`      // Unique id of this run
	Subject    string    `json:"subject"`     // Human-readable name derived from the source
	Source     string    `json:"source"`      // Input path or label
	AnalyzedAt time.Time `json:"analyzed_at"` // When the analysis finished
	Input      InputMeta `json:"input"`       // Row accounting

	ByApp      []AppSentiment    `json:"by_app"`      // Sentiment counts per app, first-seen order
	ByLanguage []LangSentiment   `json:"by_language"` // Sentiment counts per language, first-seen order
	Summary    SummaryStatistics `json:"summary"`     // Most-reviewed app report

	Reviews    []Review    `json:"reviews,omitempty"`    // Cleaned collection (opt-in)
	Rejections []Rejection `json:"rejections,omitempty"` // Dropped rows (opt-in)
}

// InputMeta accounts for every row read from the input
type InputMeta struct {
	Bytes         int64                `json:"bytes"`    // Size of the input
	SHA256        string               `json:"sha256"`   // Hex digest of the input bytes
	Rows          int                  `json:"rows"`     // Records produced by the parser
	Cleaned       int                  `json:"cleaned"`  // Records that became Reviews
	Rejected      int                  `json:"rejected"` // Records dropped by the cleaner
	RejectReasons map[RejectReason]int `json:"reject_reasons,omitempty"`
}

// SentimentCounts holds the three sentiment counters of a group
type SentimentCounts struct {
	Positive int `json:"positive"`
	Neutral  int `json:"neutral"`
	Negative int `json:"negative"`
}

// Add increments the counter matching s
func (c *SentimentCounts) Add(s Sentiment) {
	switch s {
	case SentimentPositive:
		c.Positive++
	case SentimentNegative:
		c.Negative++
	default:
		c.Neutral++
	}
}

// Total returns the number of reviews counted
func (c SentimentCounts) Total() int {
	return c.Positive + c.Neutral + c.Negative
}

// AppSentiment is the sentiment summary of one app
type AppSentiment struct {
	AppName string `json:"app_name"`
	SentimentCounts
}

// LangSentiment is the sentiment summary of one review language
type LangSentiment struct {
	LangName string `json:"lang_name"`
	SentimentCounts
}

// SummaryStatistics describes the most-reviewed app
type SummaryStatistics struct {
	MostReviewedApp string  `json:"mostReviewedApp"`
	MostReviews     int     `json:"mostReviews"`
	MostUsedDevice  string  `json:"mostUsedDevice"` // Among the most-reviewed app's reviews
	MostDevices     int     `json:"mostDevices"`
	AvgRating       float64 `json:"avgRating"` // Rounded to 3 decimal places
}
