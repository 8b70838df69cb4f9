package services

import (
	"context"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"ventrilinks/providers/airtable"
)

func zaptest() *zap.Logger { return zap.NewNop() }

// fakeTable ist der In-Memory-Ersatz für eine airtable.Table in Tests.
type fakeTable struct {
	mu      sync.Mutex
	records []airtable.Record
	nextID  int

	listErr   error
	listCalls int
}

func newFakeTable(records ...airtable.Record) *fakeTable {
	return &fakeTable{records: records, nextID: len(records) + 1}
}

func (f *fakeTable) List(context.Context) ([]airtable.Record, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.listCalls++
	if f.listErr != nil {
		return nil, f.listErr
	}
	out := make([]airtable.Record, len(f.records))
	for i, rec := range f.records {
		out[i] = copyRecord(rec)
	}
	return out, nil
}

func (f *fakeTable) Get(_ context.Context, id string) (*airtable.Record, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, rec := range f.records {
		if rec.ID == id {
			c := copyRecord(rec)
			return &c, nil
		}
	}
	return nil, fmt.Errorf("record %s not found", id)
}

func (f *fakeTable) Create(_ context.Context, fields map[string]any) (*airtable.Record, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	rec := airtable.Record{ID: fmt.Sprintf("rec%d", f.nextID), Fields: copyFields(fields)}
	f.nextID++
	f.records = append(f.records, rec)
	c := copyRecord(rec)
	return &c, nil
}

func (f *fakeTable) Update(_ context.Context, id string, fields map[string]any) (*airtable.Record, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i, rec := range f.records {
		if rec.ID != id {
			continue
		}
		for k, v := range fields {
			f.records[i].Fields[k] = v
		}
		c := copyRecord(f.records[i])
		return &c, nil
	}
	return nil, fmt.Errorf("record %s not found", id)
}

func (f *fakeTable) Delete(_ context.Context, id string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i, rec := range f.records {
		if rec.ID == id {
			f.records = append(f.records[:i], f.records[i+1:]...)
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeTable) record(id string) *airtable.Record {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := range f.records {
		if f.records[i].ID == id {
			return &f.records[i]
		}
	}
	return nil
}

func copyRecord(rec airtable.Record) airtable.Record {
	return airtable.Record{ID: rec.ID, Fields: copyFields(rec.Fields), CreatedTime: rec.CreatedTime}
}

func copyFields(fields map[string]any) map[string]any {
	out := map[string]any{}
	for k, v := range fields {
		out[k] = v
	}
	return out
}
