package airtable

import "time"

// Record ist ein einzelner Datensatz mit bereits intern gemappten Feldnamen.
type Record struct {
	ID          string         `json:"id"`
	Fields      map[string]any `json:"fields"`
	CreatedTime time.Time      `json:"createdTime"`
}

// recordPayload ist das Wire-Format der Airtable-API (Display-Namen).
type recordPayload struct {
	ID          string         `json:"id,omitempty"`
	Fields      map[string]any `json:"fields"`
	CreatedTime time.Time      `json:"createdTime,omitempty"`
}

// listResponse repräsentiert eine Seite der List-Antwort. Airtable paginiert
// über ein opakes Offset-Token (max. 100 Records pro Seite).
type listResponse struct {
	Records []recordPayload `json:"records"`
	Offset  string          `json:"offset,omitempty"`
}

type deleteResponse struct {
	ID      string `json:"id"`
	Deleted bool   `json:"deleted"`
}

type errorResponse struct {
	Error struct {
		Type    string `json:"type"`
		Message string `json:"message"`
	} `json:"error"`
}
