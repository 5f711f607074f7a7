package proposal

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidator_ValidRequest(t *testing.T) {
	v := NewValidator(0)

	req := &Request{
		CompanyName: "Acme Corp",
		Industry:    "Manufacturing",
		PainPoints:  []string{"manual invoicing"},
		BudgetRange: "$50K",
		Urgency:     "high",
	}

	require.NoError(t, v.Validate(req))
	assert.Equal(t, "high", req.Urgency)
}

func TestValidator_DefaultsUrgencyToMedium(t *testing.T) {
	v := NewValidator(0)

	req := &Request{CompanyName: "Acme Corp"}

	require.NoError(t, v.Validate(req))
	assert.Equal(t, UrgencyMedium, req.Urgency)
}

func TestValidator_CompanyNameTooShort(t *testing.T) {
	v := NewValidator(0)

	req := &Request{CompanyName: ""}

	err := v.Validate(req)
	require.Error(t, err)

	verr, ok := err.(*ValidationError)
	require.True(t, ok)
	require.Len(t, verr.Fields, 1)
	assert.Equal(t, "company_name", verr.Fields[0].Field)
}

func TestValidator_UrgencyCaseSensitive(t *testing.T) {
	v := NewValidator(0)

	for _, urgency := range []string{"High", "LOW", "urgent", "critical"} {
		req := &Request{CompanyName: "Acme Corp", Urgency: urgency}
		err := v.Validate(req)
		require.Error(t, err, "urgency %q should be rejected", urgency)

		verr := err.(*ValidationError)
		require.Len(t, verr.Fields, 1)
		assert.Equal(t, "urgency", verr.Fields[0].Field)
	}
}

func TestValidator_ListsRejectedNotTruncated(t *testing.T) {
	v := NewValidator(0)

	tooMany := make([]string, MaxListEntries+1)
	for i := range tooMany {
		tooMany[i] = fmt.Sprintf("entry %d", i)
	}

	req := &Request{
		CompanyName:    "Acme Corp",
		PainPoints:     tooMany,
		DecisionMakers: tooMany,
		Competitors:    tooMany,
	}

	err := v.Validate(req)
	require.Error(t, err)

	verr := err.(*ValidationError)
	fields := make([]string, len(verr.Fields))
	for i, f := range verr.Fields {
		fields[i] = f.Field
	}
	assert.ElementsMatch(t, []string{"pain_points", "decision_makers", "competitors"}, fields)

	// The lists themselves must be untouched.
	assert.Len(t, req.PainPoints, MaxListEntries+1)
}

func TestValidator_ListsAtCapAccepted(t *testing.T) {
	v := NewValidator(0)

	atCap := make([]string, MaxListEntries)
	for i := range atCap {
		atCap[i] = fmt.Sprintf("entry %d", i)
	}

	req := &Request{CompanyName: "Acme Corp", PainPoints: atCap}
	require.NoError(t, v.Validate(req))
}

func TestValidator_CombinesAllViolations(t *testing.T) {
	v := NewValidator(0)

	tooMany := make([]string, MaxListEntries+1)
	req := &Request{
		CompanyName: "",
		PainPoints:  tooMany,
		Urgency:     "immediately",
	}

	err := v.Validate(req)
	require.Error(t, err)

	verr := err.(*ValidationError)
	require.Len(t, verr.Fields, 3)
	assert.Contains(t, verr.Error(), "company_name")
	assert.Contains(t, verr.Error(), "urgency")
	assert.Contains(t, verr.Error(), "pain_points")
}

func TestParseBudget(t *testing.T) {
	tests := []struct {
		input  string
		amount float64
		ok     bool
	}{
		{"$50K", 50000, true},
		{"$50k", 50000, true},
		{"50K", 50000, true},
		{"1.2M", 1200000, true},
		{"1.5m", 1500000, true},
		{"50,000", 50000, true},
		{"$50,000", 50000, true},
		{"€75K", 75000, true},
		{"~$100K", 100000, true},
		{"$50K-$100K", 50000, true},
		{"100000", 100000, true},
		{"", 0, false},
		{"unknown", 0, false},
		{"to be discussed", 0, false},
		{"$$", 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			amount, ok := ParseBudget(tt.input)
			assert.Equal(t, tt.ok, ok)
			if tt.ok {
				assert.InDelta(t, tt.amount, amount, 0.01)
			}
		})
	}
}
