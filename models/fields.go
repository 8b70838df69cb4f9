package models

import (
	"strings"
	"time"
)

// Die Feld-Maps übersetzen interne camelCase-Namen in die Display-Namen der
// Airtable-Spalten. Unbekannte Felder werden beim Übersetzen stillschweigend
// verworfen, nie als Fehler behandelt.

// GetString liest ein String-Feld aus einer Record-Field-Map.
func GetString(f map[string]any, key string) string {
	switch v := f[key].(type) {
	case string:
		return v
	default:
		return ""
	}
}

// GetBool liest ein Bool-Feld; Airtable-Checkboxen fehlen, wenn sie nicht gesetzt sind.
func GetBool(f map[string]any, key string) bool {
	switch v := f[key].(type) {
	case bool:
		return v
	case string:
		s := strings.TrimSpace(strings.ToLower(v))
		return s == "true" || s == "1" || s == "yes" || s == "checked"
	default:
		return false
	}
}

// GetFloat liest ein numerisches Feld.
func GetFloat(f map[string]any, key string) float64 {
	switch v := f[key].(type) {
	case float64:
		return v
	case int:
		return float64(v)
	default:
		return 0
	}
}

// GetTime parst ein Datumsfeld (RFC3339 oder Airtable-Datumsformat).
func GetTime(f map[string]any, key string) *time.Time {
	s := GetString(f, key)
	if s == "" {
		return nil
	}
	for _, layout := range []string{time.RFC3339, "2006-01-02T15:04:05.000Z", "2006-01-02"} {
		if t, err := time.Parse(layout, s); err == nil {
			return &t
		}
	}
	return nil
}

func putString(f map[string]any, key, v string) {
	if v != "" {
		f[key] = v
	}
}

func putTime(f map[string]any, key string, t *time.Time) {
	if t != nil {
		f[key] = t.UTC().Format(time.RFC3339)
	}
}
