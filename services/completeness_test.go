package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func completeFields() map[string]any {
	return map[string]any{
		"drugModality":     "small molecule",
		"diseaseFocus":     "oncology",
		"investmentStage":  "Series A",
		"geography":        "EU",
		"investmentAmount": "5M",
	}
}

func TestCheckCompletionAllPresent(t *testing.T) {
	c := CheckCompletion([]map[string]any{completeFields()})
	assert.True(t, c.IsComplete)
	assert.Empty(t, c.MissingFields)
	assert.Equal(t, RequiredFormFields, c.CompletedFields)
}

func TestCheckCompletionSingleMissingField(t *testing.T) {
	for _, missing := range RequiredFormFields {
		fields := completeFields()
		delete(fields, missing)

		c := CheckCompletion([]map[string]any{fields})
		assert.False(t, c.IsComplete, "missing %s", missing)
		assert.Equal(t, []string{missing}, c.MissingFields)
	}
}

func TestCheckCompletionWhitespaceIsNotPresent(t *testing.T) {
	fields := completeFields()
	fields["geography"] = "   "

	c := CheckCompletion([]map[string]any{fields})
	assert.False(t, c.IsComplete)
	assert.Contains(t, c.MissingFields, "geography")
}

// Die Vereinigung über mehrere Zeilen desselben Accounts zählt: ein Feld ist
// vorhanden, sobald es in irgendeiner Zeile gefüllt ist.
func TestCheckCompletionUnionAcrossRecords(t *testing.T) {
	first := map[string]any{
		"drugModality": "cell therapy",
		"diseaseFocus": "rare disease",
	}
	second := map[string]any{
		"investmentStage":  "Seed",
		"geography":        "US",
		"investmentAmount": float64(2000000),
	}

	c := CheckCompletion([]map[string]any{first, second})
	assert.True(t, c.IsComplete)

	// Einzeln bleibt jede Zeile unvollständig.
	assert.False(t, CheckCompletion([]map[string]any{first}).IsComplete)
	assert.False(t, CheckCompletion([]map[string]any{second}).IsComplete)
}

func TestCheckCompletionNoRecords(t *testing.T) {
	c := CheckCompletion(nil)
	assert.False(t, c.IsComplete)
	assert.Equal(t, RequiredFormFields, c.MissingFields)
}

func TestClientRecordsByEmail(t *testing.T) {
	records := []map[string]any{
		{"email": "A@X.com", "drugModality": "mRNA"},
		{"email": "other@y.com"},
		{"email": " a@x.com ", "geography": "EU"},
	}
	matched := ClientRecordsByEmail(records, "a@x.com")
	assert.Len(t, matched, 2)
}
