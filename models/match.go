package models

import "strings"

// Zugriffszustand eines Matches aus Portal-Sicht. Jede andere Eingabe wird
// auf einen dieser beiden Werte normalisiert.
const (
	AccessLocked   = "Locked"
	AccessUnlocked = "Unlocked"
)

// Match repräsentiert eine Match-Zeile. Startup- und VC-Name sind Freitext,
// keine Fremdschlüssel; der Join passiert per String-Vergleich (siehe resolver).
type Match struct {
	ID string `json:"id"`

	StartupName string `json:"startupName"`
	VCName      string `json:"vcName"`

	AIFit            bool    `json:"aiFit"`
	ManuallyApproved bool    `json:"manuallyApproved"`
	SimilarityScore  float64 `json:"similarityScore"`

	ClientAccess string `json:"clientAccess"`

	MatchReasoning string `json:"matchReasoning,omitempty"`
	OutreachEmail  string `json:"outreachEmail,omitempty"`
}

// MatchFields mappt interne Feldnamen auf Airtable-Spaltennamen.
var MatchFields = map[string]string{
	"startupName":      "Startup Name",
	"vcName":           "VC Name",
	"aiFit":            "AI Fit",
	"manuallyApproved": "Manually Approved",
	"similarityScore":  "Similarity Score",
	"clientAccess":     "Client Access",
	"matchReasoning":   "Match Reasoning",
	"outreachEmail":    "Outreach Email",
}

// MatchCSVColumns ist die Spaltenreihenfolge für CSV-Exporte.
var MatchCSVColumns = []string{
	"startupName", "vcName", "aiFit", "manuallyApproved",
	"similarityScore", "clientAccess", "matchReasoning",
}

// NormalizeAccess erzwingt die Invariante clientAccess ∈ {Locked, Unlocked}.
// Nur ein case-insensitives "unlocked" schaltet frei, alles andere sperrt.
func NormalizeAccess(v string) string {
	if strings.EqualFold(strings.TrimSpace(v), AccessUnlocked) {
		return AccessUnlocked
	}
	return AccessLocked
}

// MatchFromFields baut ein Match aus einer intern-gemappten Field-Map.
func MatchFromFields(id string, f map[string]any) *Match {
	return &Match{
		ID:               id,
		StartupName:      GetString(f, "startupName"),
		VCName:           GetString(f, "vcName"),
		AIFit:            GetBool(f, "aiFit"),
		ManuallyApproved: GetBool(f, "manuallyApproved"),
		SimilarityScore:  GetFloat(f, "similarityScore"),
		ClientAccess:     NormalizeAccess(GetString(f, "clientAccess")),
		MatchReasoning:   GetString(f, "matchReasoning"),
		OutreachEmail:    GetString(f, "outreachEmail"),
	}
}

// Fields serialisiert die gesetzten Felder zurück in eine intern-gemappte Map.
func (m *Match) Fields() map[string]any {
	f := map[string]any{}
	putString(f, "startupName", m.StartupName)
	putString(f, "vcName", m.VCName)
	if m.AIFit {
		f["aiFit"] = true
	}
	if m.ManuallyApproved {
		f["manuallyApproved"] = true
	}
	if m.SimilarityScore != 0 {
		f["similarityScore"] = m.SimilarityScore
	}
	f["clientAccess"] = NormalizeAccess(m.ClientAccess)
	putString(f, "matchReasoning", m.MatchReasoning)
	putString(f, "outreachEmail", m.OutreachEmail)
	return f
}

// Unlocked meldet, ob das Match für das Portal sichtbar ist.
func (m *Match) Unlocked() bool {
	return NormalizeAccess(m.ClientAccess) == AccessUnlocked
}
