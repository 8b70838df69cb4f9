package airtable

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"ventrilinks/config"
)

// httpClient wird für alle Airtable-Requests verwendet.
var httpClient = &http.Client{Timeout: 30 * time.Second}

var requestFailures = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "airtable_request_failures_total",
		Help: "Total number of failed Airtable API requests.",
	},
	[]string{"table", "op"},
)

func init() {
	prometheus.MustRegister(requestFailures)
}

// Client kapselt den Zugriff auf eine Airtable-Base.
type Client struct {
	BaseURL string
	APIKey  string
	BaseID  string
	Logger  *zap.Logger
}

// NewClient erstellt einen neuen Airtable-Client.
func NewClient(cfg *config.Config, logger *zap.Logger) *Client {
	return &Client{
		BaseURL: cfg.AirtableBaseURL,
		APIKey:  cfg.AirtableAPIKey,
		BaseID:  cfg.AirtableBaseID,
		Logger:  logger,
	}
}

// Table bindet den Client an eine logische Tabelle samt Feld-Übersetzung.
// fields mappt interne camelCase-Namen auf Airtable-Spaltennamen; Felder
// außerhalb der Map werden in beide Richtungen verworfen.
type Table struct {
	client     *Client
	name       string
	toDisplay  map[string]string
	toInternal map[string]string
	log        *zap.Logger
}

// Table erstellt einen Tabellen-Handle mit der gegebenen Feld-Map.
func (c *Client) Table(name string, fields map[string]string) *Table {
	toInternal := make(map[string]string, len(fields))
	for internal, display := range fields {
		toInternal[display] = internal
	}
	return &Table{
		client:     c,
		name:       name,
		toDisplay:  fields,
		toInternal: toInternal,
		log:        c.Logger.With(zap.String("table", name)),
	}
}

// Name gibt den Airtable-Tabellennamen zurück.
func (t *Table) Name() string { return t.name }

func (t *Table) url(recordID string) string {
	u := fmt.Sprintf("%s/%s/%s", t.client.BaseURL, t.client.BaseID, url.PathEscape(t.name))
	if recordID != "" {
		u += "/" + recordID
	}
	return u
}

func (t *Table) do(ctx context.Context, op, method, rawURL string, body any, out any) error {
	var reader io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reader = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, rawURL, reader)
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+t.client.APIKey)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := httpClient.Do(req)
	if err != nil {
		requestFailures.WithLabelValues(t.name, op).Inc()
		t.log.Error("Airtable request failed", zap.String("op", op), zap.Error(err))
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		requestFailures.WithLabelValues(t.name, op).Inc()
		var apiErr errorResponse
		_ = json.NewDecoder(resp.Body).Decode(&apiErr)
		t.log.Error("Airtable request returned non-2xx",
			zap.String("op", op),
			zap.Int("status", resp.StatusCode),
			zap.String("api_error", apiErr.Error.Message))
		return fmt.Errorf("airtable %s %s: status %d", op, t.name, resp.StatusCode)
	}

	if out != nil {
		return json.NewDecoder(resp.Body).Decode(out)
	}
	return nil
}

// translateOut übersetzt intern → Display für ausgehende Writes.
func (t *Table) translateOut(fields map[string]any) map[string]any {
	out := map[string]any{}
	for internal, v := range fields {
		if display, ok := t.toDisplay[internal]; ok {
			out[display] = v
		}
	}
	return out
}

// translateIn übersetzt Display → intern für eingehende Records.
func (t *Table) translateIn(p recordPayload) Record {
	fields := map[string]any{}
	for display, v := range p.Fields {
		if internal, ok := t.toInternal[display]; ok {
			fields[internal] = v
		}
	}
	return Record{ID: p.ID, Fields: fields, CreatedTime: p.CreatedTime}
}

// List holt alle Records der Tabelle und folgt dabei der Offset-Pagination.
func (t *Table) List(ctx context.Context) ([]Record, error) {
	var records []Record
	offset := ""
	for {
		rawURL := t.url("")
		if offset != "" {
			rawURL += "?offset=" + url.QueryEscape(offset)
		}
		var page listResponse
		if err := t.do(ctx, "list", http.MethodGet, rawURL, nil, &page); err != nil {
			return nil, err
		}
		for _, p := range page.Records {
			records = append(records, t.translateIn(p))
		}
		if page.Offset == "" {
			return records, nil
		}
		offset = page.Offset
	}
}

// Get holt einen einzelnen Record per ID.
func (t *Table) Get(ctx context.Context, id string) (*Record, error) {
	var p recordPayload
	if err := t.do(ctx, "get", http.MethodGet, t.url(id), nil, &p); err != nil {
		return nil, err
	}
	rec := t.translateIn(p)
	return &rec, nil
}

// Create legt einen neuen Record an. fields trägt interne Feldnamen.
func (t *Table) Create(ctx context.Context, fields map[string]any) (*Record, error) {
	body := recordPayload{Fields: t.translateOut(fields)}
	var p recordPayload
	if err := t.do(ctx, "create", http.MethodPost, t.url(""), body, &p); err != nil {
		return nil, err
	}
	rec := t.translateIn(p)
	return &rec, nil
}

// Update patcht die gegebenen Felder eines Records; nicht genannte Felder
// bleiben unverändert (PATCH-Semantik der Airtable-API).
func (t *Table) Update(ctx context.Context, id string, fields map[string]any) (*Record, error) {
	body := recordPayload{Fields: t.translateOut(fields)}
	var p recordPayload
	if err := t.do(ctx, "update", http.MethodPatch, t.url(id), body, &p); err != nil {
		return nil, err
	}
	rec := t.translateIn(p)
	return &rec, nil
}

// Delete löscht einen Record und gibt zurück, ob die API den Erfolg bestätigt.
func (t *Table) Delete(ctx context.Context, id string) (bool, error) {
	var dr deleteResponse
	if err := t.do(ctx, "delete", http.MethodDelete, t.url(id), nil, &dr); err != nil {
		return false, err
	}
	return dr.Deleted, nil
}
