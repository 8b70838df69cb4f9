package services

import (
	"context"
	"time"

	"go.uber.org/zap"

	"ventrilinks/models"
	"ventrilinks/providers/airtable"
)

// PortalService bündelt die Client-Portal-Lesepfade über den drei Tabellen.
type PortalService struct {
	Clients    RecordTable
	VCs        RecordTable
	Matches    RecordTable
	Activities RecordTable
	Logger     *zap.Logger
	Now        func() time.Time
}

// NewPortalService erstellt einen PortalService mit Echtzeit-Uhr.
func NewPortalService(clients, vcs, matches, activities RecordTable, logger *zap.Logger) *PortalService {
	return &PortalService{
		Clients:    clients,
		VCs:        vcs,
		Matches:    matches,
		Activities: activities,
		Logger:     logger,
		Now:        time.Now,
	}
}

// FormStatus ist der Formular-Zustand eines Accounts.
type FormStatus struct {
	Completion
	SubmissionTime *time.Time `json:"submissionTime,omitempty"`
	CompletionTime *time.Time `json:"completionTime,omitempty"`
}

// MatchView ist die Portal-Sicht auf ein freigeschaltetes Match, mit dem per
// Namensheuristik aufgelösten VC-Record.
type MatchView struct {
	ID              string     `json:"id"`
	VCInvestor      *models.VC `json:"vcInvestor"`
	MatchReasoning  string     `json:"matchReasoning,omitempty"`
	SimilarityScore float64    `json:"similarityScore"`
	ClientAccess    string     `json:"clientAccess"`
	OutreachEmail   string     `json:"outreachEmail,omitempty"`
}

// ClientRecords liefert alle Startup-Zeilen zur normalisierten E-Mail.
func (p *PortalService) ClientRecords(ctx context.Context, email string) ([]airtable.Record, error) {
	records, err := p.Clients.List(ctx)
	if err != nil {
		return nil, err
	}
	norm := models.NormalizeEmail(email)
	var out []airtable.Record
	for _, rec := range records {
		if models.NormalizeEmail(models.GetString(rec.Fields, "email")) == norm {
			out = append(out, rec)
		}
	}
	return out, nil
}

// FormStatus prüft die Pflichtfelder über die Vereinigung aller Zeilen des
// Accounts und liefert den jüngsten Submission-Zeitstempel mit.
func (p *PortalService) FormStatus(ctx context.Context, email string) (*FormStatus, error) {
	records, err := p.ClientRecords(ctx, email)
	if err != nil {
		return nil, err
	}

	fieldMaps := make([]map[string]any, 0, len(records))
	for _, rec := range records {
		fieldMaps = append(fieldMaps, rec.Fields)
	}

	status := &FormStatus{Completion: CheckCompletion(fieldMaps)}
	for _, rec := range records {
		if t := models.GetTime(rec.Fields, "submissionTime"); t != nil {
			if status.SubmissionTime == nil || t.After(*status.SubmissionTime) {
				status.SubmissionTime = t
			}
		}
		if t := models.GetTime(rec.Fields, "completionTime"); t != nil {
			if status.CompletionTime == nil || t.After(*status.CompletionTime) {
				status.CompletionTime = t
			}
		}
	}
	return status, nil
}

// UnlockedMatches liefert alle für das Portal sichtbaren Matches des Startups.
// Nur Zeilen mit Client Access "Unlocked" verlassen diese Funktion.
func (p *PortalService) UnlockedMatches(ctx context.Context, companyName string) ([]*MatchView, error) {
	matchRecords, err := p.Matches.List(ctx)
	if err != nil {
		return nil, err
	}

	var matches []*models.Match
	for _, rec := range matchRecords {
		m := models.MatchFromFields(rec.ID, rec.Fields)
		if m.Unlocked() && NamesMatch(m.StartupName, companyName) {
			matches = append(matches, m)
		}
	}
	if len(matches) == 0 {
		return []*MatchView{}, nil
	}

	directory, err := p.vcDirectory(ctx)
	if err != nil {
		// Matches ohne Kontaktinfos sind besser als gar keine Matches.
		p.Logger.Error("VC-Directory nicht ladbar, liefere Platzhalter", zap.Error(err))
		directory = nil
	}

	views := make([]*MatchView, 0, len(matches))
	for _, m := range matches {
		views = append(views, &MatchView{
			ID:              m.ID,
			VCInvestor:      ResolveVC(m.VCName, directory),
			MatchReasoning:  m.MatchReasoning,
			SimilarityScore: m.SimilarityScore,
			ClientAccess:    m.ClientAccess,
			OutreachEmail:   m.OutreachEmail,
		})
	}
	return views, nil
}

func (p *PortalService) vcDirectory(ctx context.Context) ([]*models.VC, error) {
	records, err := p.VCs.List(ctx)
	if err != nil {
		return nil, err
	}
	directory := make([]*models.VC, 0, len(records))
	for _, rec := range records {
		directory = append(directory, models.VCFromFields(rec.ID, rec.Fields))
	}
	return directory, nil
}

// SubmitForm upsertet die Formulardaten auf die kanonische Zeile des Accounts
// (Lookup per E-Mail oder Startup-Name). Schreibseitig entsteht so keine neue
// Fragmentierung; der Union-Check in FormStatus toleriert nur Altbestand.
func (p *PortalService) SubmitForm(ctx context.Context, email, companyName string, fields map[string]any) (*models.Startup, error) {
	records, err := p.Clients.List(ctx)
	if err != nil {
		return nil, err
	}

	norm := models.NormalizeEmail(email)
	var target *airtable.Record
	for i, rec := range records {
		recEmail := models.NormalizeEmail(models.GetString(rec.Fields, "email"))
		recName := models.GetString(rec.Fields, "companyName")
		if (norm != "" && recEmail == norm) || (companyName != "" && NamesMatch(recName, companyName)) {
			target = &records[i]
			break
		}
	}

	now := p.Now()
	update := map[string]any{}
	for k, v := range fields {
		if fieldPresent(v) {
			update[k] = v
		}
	}
	update["email"] = email
	if companyName != "" {
		update["companyName"] = companyName
	}
	update["submissionTime"] = now.UTC().Format(time.RFC3339)

	var saved *airtable.Record
	if target != nil {
		merged := map[string]any{}
		for k, v := range target.Fields {
			merged[k] = v
		}
		for k, v := range update {
			merged[k] = v
		}
		if completionDone(ctx, p, email, merged) {
			update["isFormComplete"] = true
			if models.GetTime(target.Fields, "completionTime") == nil {
				update["completionTime"] = now.UTC().Format(time.RFC3339)
			}
		}
		saved, err = p.Clients.Update(ctx, target.ID, update)
	} else {
		if CheckCompletion([]map[string]any{update}).IsComplete {
			update["isFormComplete"] = true
			update["completionTime"] = now.UTC().Format(time.RFC3339)
		}
		saved, err = p.Clients.Create(ctx, update)
	}
	if err != nil {
		return nil, err
	}

	p.Logger.Info("Formular-Submission gespeichert",
		zap.String("email", norm), zap.String("record_id", saved.ID))
	return models.StartupFromFields(saved.ID, saved.Fields), nil
}

// completionDone prüft Vollständigkeit über Altbestand plus die neuen Felder.
func completionDone(ctx context.Context, p *PortalService, email string, merged map[string]any) bool {
	records, err := p.ClientRecords(ctx, email)
	if err != nil {
		return CheckCompletion([]map[string]any{merged}).IsComplete
	}
	fieldMaps := []map[string]any{merged}
	for _, rec := range records {
		fieldMaps = append(fieldMaps, rec.Fields)
	}
	return CheckCompletion(fieldMaps).IsComplete
}

// ListActivities liefert die Timeline-Einträge eines Matches.
func (p *PortalService) ListActivities(ctx context.Context, matchID, kind string) ([]*models.MatchActivity, error) {
	records, err := p.Activities.List(ctx)
	if err != nil {
		return nil, err
	}
	out := []*models.MatchActivity{}
	for _, rec := range records {
		a := models.ActivityFromFields(rec.ID, rec.Fields)
		if a.MatchID == matchID && (kind == "" || a.Kind == kind) {
			out = append(out, a)
		}
	}
	return out, nil
}

// AddActivity legt einen Timeline-Eintrag an.
func (p *PortalService) AddActivity(ctx context.Context, a *models.MatchActivity) (*models.MatchActivity, error) {
	if a.Date == nil {
		now := p.Now()
		a.Date = &now
	}
	rec, err := p.Activities.Create(ctx, a.Fields())
	if err != nil {
		return nil, err
	}
	return models.ActivityFromFields(rec.ID, rec.Fields), nil
}

// UpdateActivity patcht Status/Notiz eines Eintrags.
func (p *PortalService) UpdateActivity(ctx context.Context, id string, fields map[string]any) (*models.MatchActivity, error) {
	rec, err := p.Activities.Update(ctx, id, fields)
	if err != nil {
		return nil, err
	}
	return models.ActivityFromFields(rec.ID, rec.Fields), nil
}

// DeleteActivity löscht einen Eintrag.
func (p *PortalService) DeleteActivity(ctx context.Context, id string) (bool, error) {
	return p.Activities.Delete(ctx, id)
}
