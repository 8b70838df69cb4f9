package services

import (
	"strings"

	"ventrilinks/models"
)

// ResolveVC sucht den VC-Record zu einem Freitext-Namen aus einer Match-Zeile.
// Präzedenz, Tier für Tier über das gesamte Directory (der erste Treffer des
// höchsten Tiers gewinnt, nicht der erste Treffer in Iterationsreihenfolge):
//
//	1. exakte Gleichheit mit dem Investor-Namen
//	2. case-insensitive Gleichheit mit dem Investor-Namen
//	3. Substring-Match (beide Richtungen, case-insensitive) gegen den Investor-Namen
//	4. derselbe Substring-Test gegen den Firmen-Namen
//
// Ohne Treffer kommt ein Platzhalter zurück, der nur den Namen trägt. Das ist
// eine Heuristik über einen Freitext-Join, kein garantiert korrekter Lookup.
func ResolveVC(name string, directory []*models.VC) *models.VC {
	query := strings.TrimSpace(name)
	if query != "" {
		for _, vc := range directory {
			if vc.InvestorName == query {
				return vc
			}
		}
		for _, vc := range directory {
			if strings.EqualFold(vc.InvestorName, query) {
				return vc
			}
		}
		for _, vc := range directory {
			if substringMatch(query, vc.InvestorName) {
				return vc
			}
		}
		for _, vc := range directory {
			if substringMatch(query, vc.FirmName) {
				return vc
			}
		}
	}
	return &models.VC{InvestorName: name}
}

// NamesMatch ist der String-Join zwischen Match-Zeilen und Startup-Records:
// case-insensitive Gleichheit oder Substring in eine der beiden Richtungen.
func NamesMatch(a, b string) bool {
	return strings.EqualFold(strings.TrimSpace(a), strings.TrimSpace(b)) || substringMatch(a, b)
}

func substringMatch(query, candidate string) bool {
	q := strings.ToLower(strings.TrimSpace(query))
	c := strings.ToLower(strings.TrimSpace(candidate))
	if q == "" || c == "" {
		return false
	}
	return strings.Contains(q, c) || strings.Contains(c, q)
}
