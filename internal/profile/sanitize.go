package profile

import (
	"strings"

	"github.com/hsiehbocheng/hAIre-ai-recruiter-assistent/internal/document"
)

// SentinelNumberFields are the keys whose zero value means "unknown" in the
// resume schema.
var SentinelNumberFields = []string{
	"year", "month", "day", "age",
	"start_year", "end_year", "start_month", "end_month",
	"duration_in_months", "total_experience_in_years",
}

// Sanitizer strips empty values from a decoded profile so it can be stored.
//
// With ZeroSentinels nil every numeric zero is treated as absent. When set,
// only numbers stored under one of those keys are dropped for being zero.
type Sanitizer struct {
	ZeroSentinels map[string]bool
}

// NewScopedSanitizer limits the zero rule to SentinelNumberFields.
func NewScopedSanitizer() Sanitizer {
	m := make(map[string]bool, len(SentinelNumberFields))
	for _, f := range SentinelNumberFields {
		m[f] = true
	}
	return Sanitizer{ZeroSentinels: m}
}

// Clean applies the default (universal zero) sanitizer.
func Clean(v document.Value) (document.Value, bool) {
	return Sanitizer{}.Clean(v)
}

// Clean returns the cleaned value and false when the whole value is absent.
// Maps and lists that end up empty are absent, as are blank strings, nulls
// and zero numbers. Strings come back trimmed.
func (s Sanitizer) Clean(v document.Value) (document.Value, bool) {
	return s.clean("", v)
}

func (s Sanitizer) clean(key string, v document.Value) (document.Value, bool) {
	switch t := v.(type) {
	case nil, document.Null:
		return nil, false
	case document.Bool:
		// false is kept too; is_current: false is an answer, not a blank
		return t, true
	case document.Number:
		if t.IsZero() && s.zeroIsAbsent(key) {
			return nil, false
		}
		return t, true
	case document.String:
		trimmed := strings.TrimSpace(string(t))
		if trimmed == "" {
			return nil, false
		}
		return document.String(trimmed), true
	case document.List:
		out := make(document.List, 0, len(t))
		for _, e := range t {
			// list elements inherit the key of the list they live under
			if c, ok := s.clean(key, e); ok {
				out = append(out, c)
			}
		}
		if len(out) == 0 {
			return nil, false
		}
		return out, true
	case document.Map:
		out := make(document.Map, len(t))
		for k, e := range t {
			if c, ok := s.clean(k, e); ok {
				out[k] = c
			}
		}
		if len(out) == 0 {
			return nil, false
		}
		return out, true
	}
	return v, true
}

func (s Sanitizer) zeroIsAbsent(key string) bool {
	if s.ZeroSentinels == nil {
		return true
	}
	return s.ZeroSentinels[key]
}
