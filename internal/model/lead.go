package model

import "time"

// MaxMessageLen bounds the scrapeable text stored on a candidate or lead.
const MaxMessageLen = 600

// Candidate is an unpersisted record produced by a source adapter. It is
// always converted to a Lead by the ingest layer before it touches storage.
type Candidate struct {
	Name         string    `json:"name"`
	Title        string    `json:"title,omitempty"`
	Message      string    `json:"message"`
	Source       string    `json:"source"`
	ContactKey   string    `json:"contact_key"`
	URL          string    `json:"url,omitempty"`
	DiscoveredAt time.Time `json:"discovered_at"`
}

// LeadStatus tracks where a lead sits in the outreach lifecycle.
type LeadStatus string

const (
	StatusNew       LeadStatus = "new"
	StatusScored    LeadStatus = "scored"
	StatusContacted LeadStatus = "contacted"
	StatusDead      LeadStatus = "dead"
)

// Lead is a persisted, deduplicated prospect. ContactKey is the natural key:
// re-ingesting the same key for the same business is a no-op.
type Lead struct {
	ID          string     `json:"id"`
	Name        string     `json:"name"`
	ContactKey  string     `json:"contact_key"`
	Source      string     `json:"source"`
	Message     string     `json:"message"`
	Title       string     `json:"title,omitempty"`
	URL         string     `json:"url,omitempty"`
	Score       int        `json:"score"`
	ScoreReason string     `json:"score_reason,omitempty"`
	Status      LeadStatus `json:"status"`
	Notes       string     `json:"notes,omitempty"`
	Business    string     `json:"business"`
	CreatedAt   time.Time  `json:"created_at"`
}

// Scored reports whether the lead has been through the scoring engine.
// A zero score is the "not yet scored" sentinel.
func (l *Lead) Scored() bool {
	return l.Score > 0
}

// SearchText returns the lowercase-able text the scorer and classifier
// inspect: message plus title.
func (l *Lead) SearchText() string {
	if l.Title == "" {
		return l.Message
	}
	return l.Message + " " + l.Title
}
