package models

// VC repräsentiert einen Eintrag im VC-Directory. Aus Portal-Sicht read-only.
type VC struct {
	ID string `json:"id"`

	InvestorName string `json:"investorName"`
	FirmName     string `json:"firmName,omitempty"`

	Email    string `json:"email,omitempty"`
	Phone    string `json:"phone,omitempty"`
	LinkedIn string `json:"linkedin,omitempty"`
	Website  string `json:"website,omitempty"`

	InvestmentFocus string `json:"investmentFocus,omitempty"`
	InvestmentStage string `json:"investmentStage,omitempty"`
	Geography       string `json:"geography,omitempty"`
	PortfolioSize   string `json:"portfolioSize,omitempty"`
	Description     string `json:"description,omitempty"`
}

// VCFields mappt interne Feldnamen auf Airtable-Spaltennamen.
var VCFields = map[string]string{
	"investorName":    "Investor Name",
	"firmName":        "Firm Name",
	"email":           "Email",
	"phone":           "Phone",
	"linkedin":        "LinkedIn",
	"website":         "Website",
	"investmentFocus": "Investment Focus",
	"investmentStage": "Investment Stage",
	"geography":       "Geography",
	"portfolioSize":   "Portfolio Size",
	"description":     "Description",
}

// VCCSVColumns ist die Spaltenreihenfolge für CSV-Exporte.
var VCCSVColumns = []string{
	"investorName", "firmName", "email", "phone", "linkedin", "website",
	"investmentFocus", "investmentStage", "geography", "portfolioSize", "description",
}

// VCFromFields baut einen VC aus einer intern-gemappten Field-Map.
func VCFromFields(id string, f map[string]any) *VC {
	return &VC{
		ID:              id,
		InvestorName:    GetString(f, "investorName"),
		FirmName:        GetString(f, "firmName"),
		Email:           GetString(f, "email"),
		Phone:           GetString(f, "phone"),
		LinkedIn:        GetString(f, "linkedin"),
		Website:         GetString(f, "website"),
		InvestmentFocus: GetString(f, "investmentFocus"),
		InvestmentStage: GetString(f, "investmentStage"),
		Geography:       GetString(f, "geography"),
		PortfolioSize:   GetString(f, "portfolioSize"),
		Description:     GetString(f, "description"),
	}
}

// Fields serialisiert die gesetzten Felder zurück in eine intern-gemappte Map.
func (v *VC) Fields() map[string]any {
	f := map[string]any{}
	putString(f, "investorName", v.InvestorName)
	putString(f, "firmName", v.FirmName)
	putString(f, "email", v.Email)
	putString(f, "phone", v.Phone)
	putString(f, "linkedin", v.LinkedIn)
	putString(f, "website", v.Website)
	putString(f, "investmentFocus", v.InvestmentFocus)
	putString(f, "investmentStage", v.InvestmentStage)
	putString(f, "geography", v.Geography)
	putString(f, "portfolioSize", v.PortfolioSize)
	putString(f, "description", v.Description)
	return f
}
