package services

import (
	"strings"

	"ventrilinks/models"
)

// RequiredFormFields sind die fünf Pflichtfelder des Intake-Formulars,
// in der Reihenfolge, in der fehlende Felder gemeldet werden.
var RequiredFormFields = []string{
	"drugModality",
	"diseaseFocus",
	"investmentStage",
	"geography",
	"investmentAmount",
}

// Completion ist das Ergebnis des Vollständigkeits-Checks.
type Completion struct {
	IsComplete      bool     `json:"isComplete"`
	MissingFields   []string `json:"missingFields"`
	CompletedFields []string `json:"completedFields"`
}

// CheckCompletion prüft die Pflichtfelder über die Vereinigung aller Records
// eines Accounts. Ein Feld gilt als vorhanden, wenn es in irgendeinem der
// Records nicht leer ist — der Store kann pro Nutzer mehrere Zeilen enthalten
// (OAuth-First-Touch, anonymes Formular, Registrierung), und früher erfasste
// Daten dürfen dadurch nicht verloren gehen.
func CheckCompletion(records []map[string]any) Completion {
	c := Completion{
		MissingFields:   []string{},
		CompletedFields: []string{},
	}
	for _, field := range RequiredFormFields {
		found := false
		for _, rec := range records {
			if fieldPresent(rec[field]) {
				found = true
				break
			}
		}
		if found {
			c.CompletedFields = append(c.CompletedFields, field)
		} else {
			c.MissingFields = append(c.MissingFields, field)
		}
	}
	c.IsComplete = len(c.MissingFields) == 0
	return c
}

// fieldPresent: Strings zählen nach Trim, Zahlen und Bools immer, nil nie.
func fieldPresent(v any) bool {
	switch t := v.(type) {
	case nil:
		return false
	case string:
		return strings.TrimSpace(t) != ""
	default:
		return true
	}
}

// ClientRecordsByEmail filtert die Field-Maps aller Records heraus, die zur
// normalisierten E-Mail gehören.
func ClientRecordsByEmail(records []map[string]any, email string) []map[string]any {
	norm := models.NormalizeEmail(email)
	var out []map[string]any
	for _, rec := range records {
		if models.NormalizeEmail(models.GetString(rec, "email")) == norm {
			out = append(out, rec)
		}
	}
	return out
}
