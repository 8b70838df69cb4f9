package models

import "time"

// Session ist ein opaker Bearer-Token mit fester Lebensdauer. Kein Refresh:
// nach Ablauf ist ein neuer Login nötig.
type Session struct {
	Token     string    `json:"token"`
	RecordID  string    `json:"recordId"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// Expired meldet, ob die Session zum Zeitpunkt now abgelaufen ist.
func (s *Session) Expired(now time.Time) bool {
	return now.After(s.ExpiresAt)
}

// WaitlistEntry ist ein Eintrag aus dem öffentlichen Waitlist-Formular.
type WaitlistEntry struct {
	Email     string    `json:"email"`
	Name      string    `json:"name,omitempty"`
	Source    string    `json:"source,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}
