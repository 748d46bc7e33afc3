package types

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// ExperienceItem is one row of the read-only experience ledger.
// ID and Year are accepted as either JSON strings or numbers; Year is nil
// when absent or not numeric.
type ExperienceItem struct {
	ID       string `json:"id"`
	Year     *int   `json:"year,omitempty"`
	Customer string `json:"customer"`
	Subject  string `json:"subject"`
	Work     string `json:"work"`
}

// UnmarshalJSON decodes a ledger row, tolerating numeric ids and string years.
func (e *ExperienceItem) UnmarshalJSON(data []byte) error {
	var raw struct {
		ID       json.RawMessage `json:"id"`
		Year     json.RawMessage `json:"year"`
		Customer *string         `json:"customer"`
		Subject  *string         `json:"subject"`
		Work     *string         `json:"work"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("experience row: %w", err)
	}

	*e = ExperienceItem{
		ID:       scalarString(raw.ID),
		Customer: deref(raw.Customer),
		Subject:  deref(raw.Subject),
		Work:     deref(raw.Work),
	}

	if year, ok := scalarInt(raw.Year); ok {
		e.Year = &year
	}
	return nil
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

// scalarString renders a JSON string or number as text; anything else is empty.
func scalarString(raw json.RawMessage) string {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	var n json.Number
	if err := json.Unmarshal(raw, &n); err == nil {
		return n.String()
	}
	return ""
}

func scalarInt(raw json.RawMessage) (int, bool) {
	text := strings.TrimSpace(scalarString(raw))
	if text == "" {
		return 0, false
	}
	f, err := strconv.ParseFloat(text, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return int(f), true
}
