package enrichment

import (
	"strings"
	"unicode/utf8"
)

// DefaultMaxContentChars bounds how much scraped text goes into a prompt.
const DefaultMaxContentChars = 15000

const promptHeader = `Extract information from the following markdown content of a company website.
Respond with a single JSON object and nothing else, using these keys:
- "summary": 1-2 sentences describing what the company does
- "description": 3-6 bullet points describing the company's capabilities
- "keywords": 5-10 comma-separated keywords
- "industry": the company's primary industry
- "location": headquarters location, if stated
- "signals": an array of objects {"label": string, "value": string}

Look specifically for these signals and report what you find for each:
- "Careers Page": whether the site has a careers or jobs page
- "Recent Blog/News": the most recent blog post or news item, if any
- "Changelog": whether the site publishes a changelog or release notes
- "Product Type": e.g. SaaS, API, hardware, marketplace, services

Markdown:
`

// BuildPrompt renders the extraction prompt for scraped page content.
// Content is cut to its first maxChars characters.
func BuildPrompt(content string, maxChars int) string {
	var b strings.Builder
	b.WriteString(promptHeader)
	b.WriteString(truncateRunes(content, maxChars))
	return b.String()
}

// truncateRunes returns the first n runes of s.
func truncateRunes(s string, n int) string {
	if n <= 0 || utf8.RuneCountInString(s) <= n {
		return s
	}
	i := 0
	for pos := range s {
		if i == n {
			return s[:pos]
		}
		i++
	}
	return s
}
