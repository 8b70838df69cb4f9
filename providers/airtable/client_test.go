package airtable

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

var testFields = map[string]string{
	"companyName": "Startup Name",
	"email":       "Email",
}

func testTable(handler http.Handler) (*Table, *httptest.Server) {
	srv := httptest.NewServer(handler)
	c := &Client{
		BaseURL: srv.URL,
		APIKey:  "key-test",
		BaseID:  "appTest",
		Logger:  zap.NewNop(),
	}
	return c.Table("Clients", testFields), srv
}

func TestListFollowsPaginationAndTranslates(t *testing.T) {
	table, srv := testTable(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer key-test", r.Header.Get("Authorization"))
		assert.Equal(t, "/appTest/Clients", r.URL.Path)

		if r.URL.Query().Get("offset") == "" {
			fmt.Fprint(w, `{"records":[{"id":"rec1","fields":{"Startup Name":"Acme Bio","Unknown Column":"x"}}],"offset":"page2"}`)
			return
		}
		assert.Equal(t, "page2", r.URL.Query().Get("offset"))
		fmt.Fprint(w, `{"records":[{"id":"rec2","fields":{"Email":"a@x.com"}}]}`)
	}))
	defer srv.Close()

	records, err := table.List(context.Background())
	require.NoError(t, err)
	require.Len(t, records, 2)

	assert.Equal(t, "rec1", records[0].ID)
	assert.Equal(t, "Acme Bio", records[0].Fields["companyName"])
	// Spalten außerhalb der Feld-Map werden verworfen.
	assert.NotContains(t, records[0].Fields, "Unknown Column")
	assert.Equal(t, "a@x.com", records[1].Fields["email"])
}

func TestCreateTranslatesOutgoingFields(t *testing.T) {
	table, srv := testTable(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

		var body recordPayload
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "Acme Bio", body.Fields["Startup Name"])
		// Interne Namen ohne Mapping gehen nicht über den Draht.
		assert.NotContains(t, body.Fields, "secretField")

		fmt.Fprint(w, `{"id":"recNew","fields":{"Startup Name":"Acme Bio"}}`)
	}))
	defer srv.Close()

	rec, err := table.Create(context.Background(), map[string]any{
		"companyName": "Acme Bio",
		"secretField": "nope",
	})
	require.NoError(t, err)
	assert.Equal(t, "recNew", rec.ID)
	assert.Equal(t, "Acme Bio", rec.Fields["companyName"])
}

func TestUpdateUsesPatchOnRecordURL(t *testing.T) {
	table, srv := testTable(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPatch, r.Method)
		assert.Equal(t, "/appTest/Clients/rec1", r.URL.Path)
		fmt.Fprint(w, `{"id":"rec1","fields":{"Email":"new@x.com"}}`)
	}))
	defer srv.Close()

	rec, err := table.Update(context.Background(), "rec1", map[string]any{"email": "new@x.com"})
	require.NoError(t, err)
	assert.Equal(t, "new@x.com", rec.Fields["email"])
}

func TestDelete(t *testing.T) {
	table, srv := testTable(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodDelete, r.Method)
		fmt.Fprint(w, `{"id":"rec1","deleted":true}`)
	}))
	defer srv.Close()

	deleted, err := table.Delete(context.Background(), "rec1")
	require.NoError(t, err)
	assert.True(t, deleted)
}

func TestNon2xxBecomesError(t *testing.T) {
	table, srv := testTable(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnprocessableEntity)
		fmt.Fprint(w, `{"error":{"type":"INVALID_REQUEST","message":"bad field"}}`)
	}))
	defer srv.Close()

	_, err := table.Get(context.Background(), "rec1")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "422")
}
