package enrichment

import (
	"bytes"
	"encoding/json"
	"fmt"
	"regexp"
	"strings"

	"github.com/scoutdesk/scoutdesk/internal/model"
)

// jsonObjectPattern matches from the first '{' to the last '}'. A response
// carrying several separate objects therefore yields one invalid span and
// fails to parse.
var jsonObjectPattern = regexp.MustCompile(`(?s)\{.*\}`)

// rawProfile is the model's answer before normalization. Every field is kept
// raw because models return strings, arrays, numbers or null interchangeably.
type rawProfile struct {
	Summary     json.RawMessage `json:"summary"`
	Description json.RawMessage `json:"description"`
	Keywords    json.RawMessage `json:"keywords"`
	Industry    json.RawMessage `json:"industry"`
	Location    json.RawMessage `json:"location"`
	Signals     json.RawMessage `json:"signals"`
}

type rawSignal struct {
	Label json.RawMessage `json:"label"`
	Value json.RawMessage `json:"value"`
}

// ParseResponse extracts the profile JSON from free model text.
// Fields the model left out come back nil; a missing signals key is an
// empty set.
func ParseResponse(text string) (*model.Enrichment, error) {
	match := jsonObjectPattern.FindString(text)
	if match == "" {
		return nil, ErrParseFailed
	}

	var raw rawProfile
	if err := json.Unmarshal([]byte(match), &raw); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrParseFailed, err)
	}

	e := &model.Enrichment{
		Summary:     optionalText(raw.Summary, " "),
		Description: optionalText(raw.Description, "\n"),
		Keywords:    optionalText(raw.Keywords, ", "),
		Industry:    optionalText(raw.Industry, ", "),
		Location:    optionalText(raw.Location, ", "),
		Signals:     []model.SignalInput{},
	}

	if isNull(raw.Signals) {
		return e, nil
	}

	var signals []rawSignal
	if err := json.Unmarshal(raw.Signals, &signals); err != nil {
		return nil, fmt.Errorf("%w: signals must be an array of {label, value}", ErrParseFailed)
	}
	for _, s := range signals {
		label := optionalText(s.Label, ", ")
		if label == nil || strings.TrimSpace(*label) == "" {
			continue
		}
		value := ""
		if v := optionalText(s.Value, ", "); v != nil {
			value = *v
		}
		e.Signals = append(e.Signals, model.SignalInput{
			Label: strings.TrimSpace(*label),
			Value: value,
		})
	}

	return e, nil
}

// optionalText renders a raw JSON value as text. Strings are used as is,
// arrays are joined with sep, other values become compact JSON. Absent and
// null values return nil.
func optionalText(raw json.RawMessage, sep string) *string {
	raw = bytes.TrimSpace(raw)
	if isNull(raw) {
		return nil
	}

	switch raw[0] {
	case '"':
		var s string
		if err := json.Unmarshal(raw, &s); err == nil {
			return &s
		}
	case '[':
		var items []json.RawMessage
		if err := json.Unmarshal(raw, &items); err == nil {
			parts := make([]string, 0, len(items))
			for _, item := range items {
				if p := optionalText(item, sep); p != nil {
					parts = append(parts, *p)
				}
			}
			joined := strings.Join(parts, sep)
			return &joined
		}
	}

	var buf bytes.Buffer
	if err := json.Compact(&buf, raw); err != nil {
		s := string(raw)
		return &s
	}
	s := buf.String()
	return &s
}

func isNull(raw json.RawMessage) bool {
	trimmed := bytes.TrimSpace(raw)
	return len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null"))
}
