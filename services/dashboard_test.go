package services

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubForms struct {
	status *FormStatus
	err    error
}

func (s *stubForms) FormStatus(context.Context, string) (*FormStatus, error) {
	return s.status, s.err
}

// stubMatches liefert ab Aufruf readyAfter die hinterlegten Matches, davor
// eine leere Liste.
type stubMatches struct {
	mu         sync.Mutex
	calls      int
	readyAfter int
	matches    []*MatchView
}

func (s *stubMatches) UnlockedMatches(context.Context, string) ([]*MatchView, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls++
	if s.calls >= s.readyAfter {
		return s.matches, nil
	}
	return nil, nil
}

func completeStatus(submitted time.Time) *FormStatus {
	return &FormStatus{
		Completion:     Completion{IsComplete: true, CompletedFields: RequiredFormFields},
		SubmissionTime: &submitted,
	}
}

func testDashboard(forms FormSource, matches MatchSource, now time.Time) *Dashboard {
	d := NewDashboard(forms, matches, 24*time.Hour, time.Millisecond, zaptest())
	d.Now = func() time.Time { return now }
	return d
}

func TestEvaluateFormIncomplete(t *testing.T) {
	forms := &stubForms{status: &FormStatus{
		Completion: Completion{MissingFields: []string{"geography"}},
	}}
	matches := &stubMatches{readyAfter: 1, matches: []*MatchView{{ID: "rec1"}}}

	d := testDashboard(forms, matches, time.Now())
	snap, err := d.Evaluate(context.Background(), "a@x.com", "Acme")
	require.NoError(t, err)

	assert.Equal(t, StateFormIncomplete, snap.State)
	assert.Equal(t, []string{"geography"}, snap.MissingFields)
	assert.Empty(t, snap.Matches)
	// Im Zustand form-incomplete werden Matches gar nicht erst geladen.
	assert.Zero(t, matches.calls)
}

func TestEvaluateResultsReadyImmediately(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	forms := &stubForms{status: completeStatus(now.Add(-time.Minute))}
	matches := &stubMatches{readyAfter: 1, matches: []*MatchView{{ID: "rec1"}, {ID: "rec2"}}}

	d := testDashboard(forms, matches, now)
	snap, err := d.Evaluate(context.Background(), "a@x.com", "Acme")
	require.NoError(t, err)

	assert.Equal(t, StateResultsReady, snap.State)
	assert.Len(t, snap.Matches, 2)
}

func TestEvaluateProcessingCountdown(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	submitted := now.Add(-time.Hour)
	forms := &stubForms{status: completeStatus(submitted)}
	matches := &stubMatches{readyAfter: 99}

	d := testDashboard(forms, matches, now)
	snap, err := d.Evaluate(context.Background(), "a@x.com", "Acme")
	require.NoError(t, err)

	assert.Equal(t, StateProcessing, snap.State)
	require.NotNil(t, snap.Deadline)
	assert.Equal(t, submitted.Add(24*time.Hour), *snap.Deadline)
	assert.Equal(t, int64(23*3600), snap.TimeRemainingSeconds)
	assert.Empty(t, snap.Matches)
}

// Nach Ablauf der Frist ohne Matches kommt ein leeres results-ready statt
// endlosem processing.
func TestEvaluateEmptyResultsAfterDeadline(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	forms := &stubForms{status: completeStatus(now.Add(-25 * time.Hour))}
	matches := &stubMatches{readyAfter: 99}

	d := testDashboard(forms, matches, now)
	snap, err := d.Evaluate(context.Background(), "a@x.com", "Acme")
	require.NoError(t, err)

	assert.Equal(t, StateResultsReady, snap.State)
	assert.NotNil(t, snap.Matches)
	assert.Empty(t, snap.Matches)
}

// Ohne Submission-Zeitstempel gilt die Frist als sofort verstrichen.
func TestEvaluateCompleteWithoutSubmissionTime(t *testing.T) {
	forms := &stubForms{status: &FormStatus{
		Completion: Completion{IsComplete: true, CompletedFields: RequiredFormFields},
	}}
	matches := &stubMatches{readyAfter: 99}

	d := testDashboard(forms, matches, time.Now())
	snap, err := d.Evaluate(context.Background(), "a@x.com", "Acme")
	require.NoError(t, err)
	assert.Equal(t, StateResultsReady, snap.State)
	assert.Empty(t, snap.Matches)
}

// Ein während des Wartens freigeschaltetes Match beendet den Long-Poll vor
// der Frist.
func TestWaitForResultsPreemptedByMatch(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	forms := &stubForms{status: completeStatus(now.Add(-time.Hour))}
	matches := &stubMatches{readyAfter: 3, matches: []*MatchView{{ID: "rec1"}}}

	d := testDashboard(forms, matches, now)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	snap, err := d.WaitForResults(ctx, "a@x.com", "Acme")
	require.NoError(t, err)

	assert.Equal(t, StateResultsReady, snap.State)
	assert.Len(t, snap.Matches, 1)
	assert.GreaterOrEqual(t, matches.calls, 3)
}

func TestWaitForResultsReturnsImmediatelyWhenReady(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	forms := &stubForms{status: completeStatus(now)}
	matches := &stubMatches{readyAfter: 1, matches: []*MatchView{{ID: "rec1"}}}

	d := testDashboard(forms, matches, now)
	snap, err := d.WaitForResults(context.Background(), "a@x.com", "Acme")
	require.NoError(t, err)
	assert.Equal(t, StateResultsReady, snap.State)
	assert.Equal(t, 1, matches.calls)
}

// Läuft der Long-Poll-Kontext ab, kommt der letzte processing-Stand zurück.
func TestWaitForResultsContextTimeout(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	forms := &stubForms{status: completeStatus(now.Add(-time.Hour))}
	matches := &stubMatches{readyAfter: 1 << 30}

	d := testDashboard(forms, matches, now)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	snap, err := d.WaitForResults(ctx, "a@x.com", "Acme")
	require.NoError(t, err)

	assert.Equal(t, StateProcessing, snap.State)
	assert.Equal(t, int64(23*3600), snap.TimeRemainingSeconds)
}

// Läuft die Frist während des Wartens ab, endet der Poll mit leerem
// results-ready.
func TestWaitForResultsDeadlinePassesWhileWaiting(t *testing.T) {
	start := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	submitted := start.Add(-24*time.Hour + 30*time.Millisecond)
	forms := &stubForms{status: completeStatus(submitted)}
	matches := &stubMatches{readyAfter: 1 << 30}

	d := NewDashboard(forms, matches, 24*time.Hour, time.Millisecond, zaptest())
	var mu sync.Mutex
	now := start
	d.Now = func() time.Time {
		mu.Lock()
		defer mu.Unlock()
		now = now.Add(10 * time.Millisecond)
		return now
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	snap, err := d.WaitForResults(ctx, "a@x.com", "Acme")
	require.NoError(t, err)

	assert.Equal(t, StateResultsReady, snap.State)
	assert.Empty(t, snap.Matches)
}
