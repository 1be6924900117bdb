package domain

import "time"

// Article is a news item as it moves through a single pipeline run.
// Fetch fills the raw fields; enrichment overwrites Summary and may set
// City, Country and SummaryProvider. URL is the identity key end-to-end.
type Article struct {
	Title       string
	Content     string
	Summary     string
	Source      string
	URL         string
	ImageURL    string
	PublishedAt time.Time
	Category    string
	Tags        []string
	City        string
	Country     string

	// SummaryProvider names the AI provider that produced Summary.
	// Empty when Summary is the source description or a fallback excerpt.
	SummaryProvider string
}

// Metadata is stored alongside every persisted article.
type Metadata struct {
	ProcessedAt time.Time `json:"processed_at"`
	AIGenerated bool      `json:"ai_generated"`
	Provider    string    `json:"provider,omitempty"`
}

// StoredArticle is the record written by the persister.
type StoredArticle struct {
	ID       string
	Article  Article
	Metadata Metadata
}

// RunReport summarises a completed pipeline run.
type RunReport struct {
	Fetched    int
	Unique     int
	Summarized int
	Stored     int
	StartedAt  time.Time
	FinishedAt time.Time

	// Inserted holds the articles that were newly written during the run.
	Inserted []Article
}
