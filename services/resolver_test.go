package services

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"ventrilinks/models"
)

func TestResolveVCSubstringMatch(t *testing.T) {
	directory := []*models.VC{{ID: "rec1", InvestorName: "Acme Ventures"}}

	got := ResolveVC("acme", directory)
	assert.Equal(t, "rec1", got.ID)
}

// Exakte Gleichheit schlägt einen Substring-Treffer, der früher in der
// Iterationsreihenfolge steht.
func TestResolveVCExactBeatsEarlierSubstring(t *testing.T) {
	directory := []*models.VC{
		{ID: "recShort", InvestorName: "Acme"},
		{ID: "recExact", InvestorName: "Acme Ventures"},
	}

	got := ResolveVC("Acme Ventures", directory)
	assert.Equal(t, "recExact", got.ID)
}

func TestResolveVCCaseInsensitiveEquality(t *testing.T) {
	directory := []*models.VC{
		{ID: "recSub", InvestorName: "Jane"},
		{ID: "recCI", InvestorName: "jane doe"},
	}

	got := ResolveVC("Jane Doe", directory)
	assert.Equal(t, "recCI", got.ID)
}

func TestResolveVCFallsBackToFirmName(t *testing.T) {
	directory := []*models.VC{
		{ID: "rec1", InvestorName: "John Smith", FirmName: "Helix Capital"},
	}

	got := ResolveVC("helix", directory)
	assert.Equal(t, "rec1", got.ID)
}

func TestResolveVCPlaceholderOnMiss(t *testing.T) {
	directory := []*models.VC{{ID: "rec1", InvestorName: "Acme Ventures"}}

	got := ResolveVC("Unknown Partners", directory)
	assert.Empty(t, got.ID)
	assert.Equal(t, "Unknown Partners", got.InvestorName)
	assert.Empty(t, got.Email)
}

func TestResolveVCEmptyQuery(t *testing.T) {
	directory := []*models.VC{{ID: "rec1", InvestorName: "Acme Ventures"}}

	got := ResolveVC("  ", directory)
	assert.Empty(t, got.ID)
}

func TestNamesMatch(t *testing.T) {
	assert.True(t, NamesMatch("Acme Bio", "acme bio"))
	assert.True(t, NamesMatch("Acme", "Acme Bio Inc"))
	assert.True(t, NamesMatch("Acme Bio Inc", "Acme"))
	assert.False(t, NamesMatch("Acme", "Helix"))
	assert.False(t, NamesMatch("", "Helix"))
}
