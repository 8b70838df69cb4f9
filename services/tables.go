package services

import (
	"context"

	"ventrilinks/providers/airtable"
)

// RecordTable ist die schmale Sicht der Services auf eine Airtable-Tabelle.
// airtable.Table erfüllt das Interface; Tests hängen Fakes ein.
type RecordTable interface {
	List(ctx context.Context) ([]airtable.Record, error)
	Get(ctx context.Context, id string) (*airtable.Record, error)
	Create(ctx context.Context, fields map[string]any) (*airtable.Record, error)
	Update(ctx context.Context, id string, fields map[string]any) (*airtable.Record, error)
	Delete(ctx context.Context, id string) (bool, error)
}
