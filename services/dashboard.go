package services

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// DashboardState ist einer der drei Portal-Zustände.
type DashboardState string

const (
	StateFormIncomplete DashboardState = "form-incomplete"
	StateProcessing     DashboardState = "processing"
	StateResultsReady   DashboardState = "results-ready"
)

// FormSource und MatchSource sind die beiden Datenquellen der Zustandslogik.
// PortalService erfüllt beide; Tests hängen Stubs ein.
type FormSource interface {
	FormStatus(ctx context.Context, email string) (*FormStatus, error)
}

type MatchSource interface {
	UnlockedMatches(ctx context.Context, companyName string) ([]*MatchView, error)
}

// Snapshot ist eine Momentaufnahme des Dashboard-Zustands.
type Snapshot struct {
	State                DashboardState `json:"state"`
	MissingFields        []string       `json:"missingFields,omitempty"`
	Deadline             *time.Time     `json:"deadline,omitempty"`
	TimeRemainingSeconds int64          `json:"timeRemainingSeconds"`
	Matches              []*MatchView   `json:"matches"`
}

// Dashboard entscheidet zwischen form-incomplete, processing und
// results-ready. Übergänge sind innerhalb einer Auswertung strikt einseitig:
// aus results-ready führt kein Weg zurück.
type Dashboard struct {
	Forms        FormSource
	Matches      MatchSource
	Deadline     time.Duration // Frist ab Submission, danach gilt "nichts gefunden"
	PollInterval time.Duration
	Now          func() time.Time
	Logger       *zap.Logger
}

// NewDashboard erstellt die Zustandslogik mit Echtzeit-Uhr.
func NewDashboard(forms FormSource, matches MatchSource, deadline, poll time.Duration, logger *zap.Logger) *Dashboard {
	return &Dashboard{
		Forms:        forms,
		Matches:      matches,
		Deadline:     deadline,
		PollInterval: poll,
		Now:          time.Now,
		Logger:       logger,
	}
}

// Evaluate bestimmt den Zustand synchron:
//
//	Pflichtfelder unvollständig            → form-incomplete
//	irgendein freigeschaltetes Match       → results-ready
//	Frist (Submission + Deadline) läuft    → processing mit Restzeit
//	Frist abgelaufen, keine Matches        → results-ready mit leerer Liste
func (d *Dashboard) Evaluate(ctx context.Context, email, companyName string) (*Snapshot, error) {
	status, err := d.Forms.FormStatus(ctx, email)
	if err != nil {
		return nil, err
	}
	if !status.IsComplete {
		return &Snapshot{
			State:         StateFormIncomplete,
			MissingFields: status.MissingFields,
			Matches:       []*MatchView{},
		}, nil
	}

	matches, err := d.Matches.UnlockedMatches(ctx, companyName)
	if err != nil {
		return nil, err
	}
	if len(matches) > 0 {
		return &Snapshot{State: StateResultsReady, Matches: matches}, nil
	}

	now := d.Now()
	deadline := now // ohne Submission-Zeitstempel ist die Frist sofort um
	if status.SubmissionTime != nil {
		deadline = status.SubmissionTime.Add(d.Deadline)
	}
	if now.Before(deadline) {
		return &Snapshot{
			State:                StateProcessing,
			Deadline:             &deadline,
			TimeRemainingSeconds: int64(deadline.Sub(now).Seconds()),
			Matches:              []*MatchView{},
		}, nil
	}

	// Frist verstrichen, nichts freigeschaltet: leeres results-ready statt
	// endlosem Warten.
	return &Snapshot{State: StateResultsReady, Matches: []*MatchView{}}, nil
}

// WaitForResults pollt im PollInterval weiter, solange der Zustand processing
// ist. Das erste freigeschaltete Match beendet das Warten sofort und schlägt
// damit die Frist; läuft die Frist ab, kommt ein leeres results-ready zurück.
// Bricht der Kontext ab (Long-Poll-Timeout), kommt der letzte Stand zurück.
func (d *Dashboard) WaitForResults(ctx context.Context, email, companyName string) (*Snapshot, error) {
	snapshot, err := d.Evaluate(ctx, email, companyName)
	if err != nil {
		return nil, err
	}
	if snapshot.State != StateProcessing {
		return snapshot, nil
	}

	deadline := *snapshot.Deadline
	ticker := time.NewTicker(d.PollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return d.refreshProcessing(snapshot, deadline), nil
		case <-ticker.C:
			matches, err := d.Matches.UnlockedMatches(ctx, companyName)
			if err != nil {
				d.Logger.Error("Match-Poll fehlgeschlagen", zap.Error(err))
				continue
			}
			if len(matches) > 0 {
				d.Logger.Info("Matches freigeschaltet, Warten beendet",
					zap.Int("count", len(matches)))
				return &Snapshot{State: StateResultsReady, Matches: matches}, nil
			}
			if !d.Now().Before(deadline) {
				return &Snapshot{State: StateResultsReady, Matches: []*MatchView{}}, nil
			}
		}
	}
}

func (d *Dashboard) refreshProcessing(s *Snapshot, deadline time.Time) *Snapshot {
	remaining := deadline.Sub(d.Now())
	if remaining < 0 {
		remaining = 0
	}
	return &Snapshot{
		State:                StateProcessing,
		Deadline:             &deadline,
		TimeRemainingSeconds: int64(remaining.Seconds()),
		Matches:              []*MatchView{},
	}
}
