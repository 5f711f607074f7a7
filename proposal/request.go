// Package proposal implements the proposal generation pipeline: request
// validation, pricing tier computation, content generation with a
// deterministic fallback, and assembly into a fixed-order document.
package proposal

import (
	"fmt"
	"strconv"
	"strings"
)

// Limits applied during validation.
const (
	// MaxListEntries caps pain_points, decision_makers, and competitors.
	// Oversized lists are rejected, never truncated, so client bugs surface.
	MaxListEntries = 20

	// DefaultMinCompanyNameLen is the minimum company_name length unless
	// overridden by configuration.
	DefaultMinCompanyNameLen = 2
)

// Urgency levels accepted by the validator (case-sensitive).
const (
	UrgencyLow    = "low"
	UrgencyMedium = "medium"
	UrgencyHigh   = "high"
)

// Request is a normalized proposal request.
type Request struct {
	CompanyName    string   `json:"company_name"`
	Industry       string   `json:"industry,omitempty"`
	PainPoints     []string `json:"pain_points,omitempty"`
	BudgetRange    string   `json:"budget_range,omitempty"`
	DecisionMakers []string `json:"decision_makers,omitempty"`
	Competitors    []string `json:"competitors,omitempty"`
	Urgency        string   `json:"urgency,omitempty"`
}

// FieldError describes a single violated field.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationError reports every violated field of a request, not just the
// first. It is surfaced to clients as a 422 with one entry per field.
type ValidationError struct {
	Fields []FieldError
}

func (e *ValidationError) Error() string {
	parts := make([]string, len(e.Fields))
	for i, f := range e.Fields {
		parts[i] = f.Field + ": " + f.Message
	}
	return "invalid request: " + strings.Join(parts, "; ")
}

// Validator normalizes and validates proposal requests.
type Validator struct {
	// MinCompanyNameLen is the minimum length for company_name.
	MinCompanyNameLen int
}

// NewValidator returns a Validator with the given minimum company name
// length; values < 1 use the default.
func NewValidator(minCompanyNameLen int) Validator {
	if minCompanyNameLen < 1 {
		minCompanyNameLen = DefaultMinCompanyNameLen
	}
	return Validator{MinCompanyNameLen: minCompanyNameLen}
}

// Validate normalizes req in place and returns a *ValidationError listing
// every violated field, or nil if the request is valid. An unparsable
// budget_range is not a violation; the pricing default applies instead.
func (v Validator) Validate(req *Request) error {
	var verr ValidationError

	req.CompanyName = strings.TrimSpace(req.CompanyName)
	if len(req.CompanyName) < v.MinCompanyNameLen {
		verr.Fields = append(verr.Fields, FieldError{
			Field:   "company_name",
			Message: fmt.Sprintf("must be at least %d characters", v.MinCompanyNameLen),
		})
	}

	if req.Urgency == "" {
		req.Urgency = UrgencyMedium
	}
	switch req.Urgency {
	case UrgencyLow, UrgencyMedium, UrgencyHigh:
	default:
		verr.Fields = append(verr.Fields, FieldError{
			Field:   "urgency",
			Message: "must be one of: low, medium, high",
		})
	}

	for _, list := range []struct {
		field   string
		entries []string
	}{
		{"pain_points", req.PainPoints},
		{"decision_makers", req.DecisionMakers},
		{"competitors", req.Competitors},
	} {
		if len(list.entries) > MaxListEntries {
			verr.Fields = append(verr.Fields, FieldError{
				Field:   list.field,
				Message: fmt.Sprintf("must not exceed %d entries", MaxListEntries),
			})
		}
	}

	if len(verr.Fields) > 0 {
		return &verr
	}
	return nil
}

// currencyRunes are stripped before numeric parsing.
const currencyRunes = "$€£¥,~+ \t"

// ParseBudget parses a free-text monetary string such as "$50K", "1.2M",
// or "50,000" into a numeric amount. Suffixes K and M (case-insensitive)
// scale by 1,000 and 1,000,000. For ranges like "$50K-$100K" the lower
// bound is used. The second return value is false when no amount could be
// recognized; the caller's default-budget policy applies.
func ParseBudget(s string) (float64, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, false
	}

	// Ranges: take the lower bound.
	if idx := strings.IndexAny(s, "-–"); idx > 0 {
		s = s[:idx]
	}

	cleaned := strings.Map(func(r rune) rune {
		if strings.ContainsRune(currencyRunes, r) {
			return -1
		}
		return r
	}, s)

	multiplier := 1.0
	lower := strings.ToLower(cleaned)
	switch {
	case strings.HasSuffix(lower, "k"):
		multiplier = 1_000
		cleaned = cleaned[:len(cleaned)-1]
	case strings.HasSuffix(lower, "m"):
		multiplier = 1_000_000
		cleaned = cleaned[:len(cleaned)-1]
	}

	amount, err := strconv.ParseFloat(cleaned, 64)
	if err != nil || amount < 0 {
		return 0, false
	}

	return amount * multiplier, true
}
