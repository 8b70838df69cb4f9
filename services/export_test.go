package services

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ventrilinks/providers/airtable"
)

func TestWriteCSV(t *testing.T) {
	records := []airtable.Record{
		{ID: "rec1", Fields: map[string]any{
			"companyName":      "Acme Bio",
			"investmentAmount": float64(5000000),
			"isFormComplete":   true,
		}},
		{ID: "rec2", Fields: map[string]any{
			"companyName": "Helix, Inc.",
		}},
	}
	columns := []string{"companyName", "investmentAmount", "isFormComplete"}
	display := map[string]string{
		"companyName":      "Startup Name",
		"investmentAmount": "Investment Amount",
	}

	var b strings.Builder
	require.NoError(t, WriteCSV(&b, columns, display, records))

	lines := strings.Split(strings.TrimSpace(b.String()), "\n")
	require.Len(t, lines, 3)
	// Unbekannte Spalten fallen auf den internen Namen zurück.
	assert.Equal(t, "id,Startup Name,Investment Amount,isFormComplete", lines[0])
	// Ganzzahlige Beträge ohne Nachkommastellen.
	assert.Equal(t, "rec1,Acme Bio,5000000,true", lines[1])
	// Kommas im Wert werden gequotet.
	assert.Equal(t, `rec2,"Helix, Inc.",,`, lines[2])
}
