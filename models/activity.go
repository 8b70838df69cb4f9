package models

import "time"

// Arten von Timeline-Einträgen pro Match. Reine Client-Annotationen,
// es wird nichts daraus abgeleitet.
const (
	ActivityKindActivity = "activity"
	ActivityKindProgress = "progress"
)

// MatchActivity ist ein Freitext-Timeline-Eintrag zu einem Match.
type MatchActivity struct {
	ID      string `json:"id"`
	MatchID string `json:"matchId"`

	Kind   string `json:"kind"`
	Status string `json:"status,omitempty"`
	Note   string `json:"note,omitempty"`

	Date *time.Time `json:"date,omitempty"`
}

// ActivityFields mappt interne Feldnamen auf Airtable-Spaltennamen.
var ActivityFields = map[string]string{
	"matchId": "Match ID",
	"kind":    "Kind",
	"status":  "Status",
	"note":    "Note",
	"date":    "Date",
}

// ActivityFromFields baut einen Timeline-Eintrag aus einer Field-Map.
func ActivityFromFields(id string, f map[string]any) *MatchActivity {
	return &MatchActivity{
		ID:      id,
		MatchID: GetString(f, "matchId"),
		Kind:    GetString(f, "kind"),
		Status:  GetString(f, "status"),
		Note:    GetString(f, "note"),
		Date:    GetTime(f, "date"),
	}
}

// Fields serialisiert die gesetzten Felder zurück in eine Field-Map.
func (a *MatchActivity) Fields() map[string]any {
	f := map[string]any{}
	putString(f, "matchId", a.MatchID)
	putString(f, "kind", a.Kind)
	putString(f, "status", a.Status)
	putString(f, "note", a.Note)
	putTime(f, "date", a.Date)
	return f
}
