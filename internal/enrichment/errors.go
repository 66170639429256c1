// Package enrichment derives structured company profiles from the company
// website: scrape through a reader service, ask a generative model for a
// JSON summary, parse it, and persist the result.
package enrichment

import "errors"

// Pipeline failures. Each is terminal for the run and nothing is written.
var (
	ErrScrapeFailed   = errors.New("failed to scrape company website")
	ErrGenerateFailed = errors.New("failed to generate company profile")
	ErrParseFailed    = errors.New("Failed to parse AI response")
)
