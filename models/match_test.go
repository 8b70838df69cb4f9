package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeAccess(t *testing.T) {
	cases := map[string]string{
		"Unlocked":   AccessUnlocked,
		"unlocked":   AccessUnlocked,
		"UNLOCKED":   AccessUnlocked,
		" unlocked ": AccessUnlocked,
		"Locked":     AccessLocked,
		"locked":     AccessLocked,
		"":           AccessLocked,
		"open":       AccessLocked,
		"Unlock":     AccessLocked,
	}
	for input, want := range cases {
		assert.Equal(t, want, NormalizeAccess(input), "input %q", input)
	}
}

func TestMatchFromFieldsCoercesAccess(t *testing.T) {
	m := MatchFromFields("rec1", map[string]any{
		"startupName":  "Acme Bio",
		"vcName":       "Jane Doe",
		"clientAccess": "unlocked",
	})
	assert.Equal(t, AccessUnlocked, m.ClientAccess)
	assert.True(t, m.Unlocked())

	m = MatchFromFields("rec2", map[string]any{"startupName": "Acme Bio"})
	assert.Equal(t, AccessLocked, m.ClientAccess)
	assert.False(t, m.Unlocked())
}

func TestMatchFieldsAlwaysWritesAccess(t *testing.T) {
	m := &Match{StartupName: "Acme Bio", VCName: "Jane Doe", ClientAccess: "whatever"}
	f := m.Fields()
	assert.Equal(t, AccessLocked, f["clientAccess"])
}

func TestNormalizeEmail(t *testing.T) {
	assert.Equal(t, "a@x.com", NormalizeEmail("  A@X.COM "))
}
