package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"ventrilinks/models"
)

// ErrMatchNotFound meldet eine unbekannte Match-ID.
var ErrMatchNotFound = errors.New("match not found")

// Completer ist die LLM-Abhängigkeit des Outreach-Generators.
type Completer interface {
	Complete(ctx context.Context, system, user string) (string, error)
}

// OutreachService generiert Outreach-Mails zu einem Match und cached das
// Ergebnis auf der Match-Zeile. Pro Match wird höchstens einmal generiert.
type OutreachService struct {
	Clients RecordTable
	VCs     RecordTable
	Matches RecordTable
	LLM     Completer
	Logger  *zap.Logger
}

// NewOutreachService erstellt den Generator.
func NewOutreachService(clients, vcs, matches RecordTable, llm Completer, logger *zap.Logger) *OutreachService {
	return &OutreachService{
		Clients: clients,
		VCs:     vcs,
		Matches: matches,
		LLM:     llm,
		Logger:  logger,
	}
}

const outreachSystemPrompt = "You write concise, professional first-contact emails " +
	"from a biotech startup founder to a venture capital investor. " +
	"Max 150 words, no subject line, no placeholders left unfilled."

// GenerateEmail liefert die Outreach-Mail zum Match; cached meldet, ob der
// Text bereits auf der Zeile lag und keine Generierung nötig war.
func (o *OutreachService) GenerateEmail(ctx context.Context, matchID string) (string, bool, error) {
	rec, err := o.Matches.Get(ctx, matchID)
	if err != nil {
		return "", false, err
	}
	if rec == nil {
		return "", false, ErrMatchNotFound
	}
	match := models.MatchFromFields(rec.ID, rec.Fields)

	if match.OutreachEmail != "" {
		return match.OutreachEmail, true, nil
	}

	startup := o.findStartup(ctx, match.StartupName)
	vc := o.resolveVC(ctx, match.VCName)

	prompt := o.buildPrompt(startup, vc, match)
	email, err := o.LLM.Complete(ctx, outreachSystemPrompt, prompt)
	if err != nil {
		return "", false, err
	}
	email = strings.TrimSpace(email)

	if _, err := o.Matches.Update(ctx, matchID, map[string]any{"outreachEmail": email}); err != nil {
		// Generierung war erfolgreich; fehlgeschlagenes Caching nur loggen.
		o.Logger.Warn("Outreach-Mail konnte nicht gecached werden",
			zap.String("match_id", matchID), zap.Error(err))
	}

	o.Logger.Info("Outreach-Mail generiert",
		zap.String("match_id", matchID), zap.Int("length", len(email)))
	return email, false, nil
}

func (o *OutreachService) findStartup(ctx context.Context, name string) *models.Startup {
	records, err := o.Clients.List(ctx)
	if err != nil {
		o.Logger.Warn("Startup-Lookup für Outreach fehlgeschlagen", zap.Error(err))
		return &models.Startup{CompanyName: name}
	}
	for _, rec := range records {
		if NamesMatch(models.GetString(rec.Fields, "companyName"), name) {
			return models.StartupFromFields(rec.ID, rec.Fields)
		}
	}
	return &models.Startup{CompanyName: name}
}

func (o *OutreachService) resolveVC(ctx context.Context, name string) *models.VC {
	records, err := o.VCs.List(ctx)
	if err != nil {
		o.Logger.Warn("VC-Lookup für Outreach fehlgeschlagen", zap.Error(err))
		return &models.VC{InvestorName: name}
	}
	directory := make([]*models.VC, 0, len(records))
	for _, rec := range records {
		directory = append(directory, models.VCFromFields(rec.ID, rec.Fields))
	}
	return ResolveVC(name, directory)
}

func (o *OutreachService) buildPrompt(s *models.Startup, vc *models.VC, m *models.Match) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Startup: %s\n", s.CompanyName)
	if s.DrugModality != "" {
		fmt.Fprintf(&b, "Drug modality: %s\n", s.DrugModality)
	}
	if s.DiseaseFocus != "" {
		fmt.Fprintf(&b, "Disease focus: %s\n", s.DiseaseFocus)
	}
	if s.InvestmentStage != "" {
		fmt.Fprintf(&b, "Stage: %s\n", s.InvestmentStage)
	}
	if s.InvestmentAmount != "" {
		fmt.Fprintf(&b, "Raising: %s\n", s.InvestmentAmount)
	}
	if s.Description != "" {
		fmt.Fprintf(&b, "About: %s\n", s.Description)
	}
	fmt.Fprintf(&b, "\nInvestor: %s", vc.InvestorName)
	if vc.FirmName != "" {
		fmt.Fprintf(&b, " (%s)", vc.FirmName)
	}
	b.WriteString("\n")
	if vc.InvestmentFocus != "" {
		fmt.Fprintf(&b, "Investor focus: %s\n", vc.InvestmentFocus)
	}
	if m.MatchReasoning != "" {
		fmt.Fprintf(&b, "\nWhy this is a fit: %s\n", m.MatchReasoning)
	}
	b.WriteString("\nWrite the outreach email.")
	return b.String()
}
