package model

import (
	"strings"
	"time"
)

// Company is a directory entry. Derived fields are filled in by enrichment.
type Company struct {
	ID             string     `json:"id"`
	URL            string     `json:"url"`
	Name           string     `json:"name"`
	Summary        string     `json:"summary"`
	Description    string     `json:"description"`
	Keywords       string     `json:"keywords"`
	Industry       string     `json:"industry"`
	Stage          string     `json:"stage"`
	Location       string     `json:"location"`
	LastEnrichedAt *time.Time `json:"lastEnrichedAt"`
	CreatedAt      time.Time  `json:"createdAt"`
	UpdatedAt      time.Time  `json:"updatedAt"`

	Signals []Signal `json:"signals"`
	Notes   []Note   `json:"notes,omitempty"`
	Sources []Source `json:"sources,omitempty"`
}

// Signal is a labeled observation about a company, e.g. "Careers Page": "found".
type Signal struct {
	ID        string    `json:"id"`
	CompanyID string    `json:"companyId"`
	Label     string    `json:"label"`
	Value     string    `json:"value"`
	CreatedAt time.Time `json:"createdAt"`
}

// Note is free text attached to a company. Notes are shared by all users.
type Note struct {
	ID        string    `json:"id"`
	CompanyID string    `json:"companyId"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"createdAt"`
}

// Source records one scrape that fed an enrichment run.
type Source struct {
	ID        string    `json:"id"`
	CompanyID string    `json:"companyId"`
	URL       string    `json:"url"`
	ScrapedAt time.Time `json:"scrapedAt"`
}

// SignalInput is a label/value pair produced by enrichment before it has an ID.
type SignalInput struct {
	Label string `json:"label"`
	Value string `json:"value"`
}

// Enrichment holds the structured fields extracted for a company.
// Nil pointers mean the model did not return the field and the stored value is kept.
type Enrichment struct {
	Summary     *string
	Description *string
	Keywords    *string
	Industry    *string
	Location    *string
	Signals     []SignalInput
	SourceURL   string
	EnrichedAt  time.Time
}

// NormalizedURL returns the company URL with an https scheme when none is present.
func (c *Company) NormalizedURL() string {
	return NormalizeURL(c.URL)
}

// NormalizeURL prefixes https:// to a URL that carries no http(s) scheme.
func NormalizeURL(raw string) string {
	trimmed := strings.TrimSpace(raw)
	lower := strings.ToLower(trimmed)
	if strings.HasPrefix(lower, "http://") || strings.HasPrefix(lower, "https://") {
		return trimmed
	}
	return "https://" + trimmed
}
