package models

import (
	"strings"
	"time"
)

// Startup repräsentiert eine Startup-Submission-Zeile im externen Record-Store.
type Startup struct {
	ID string `json:"id"`

	CompanyName string `json:"companyName"`
	Email       string `json:"email"`
	ContactName string `json:"contactName,omitempty"`
	Phone       string `json:"phone,omitempty"`

	// Die fünf Pflichtfelder des Intake-Formulars.
	DrugModality     string `json:"drugModality,omitempty"`
	DiseaseFocus     string `json:"diseaseFocus,omitempty"`
	InvestmentStage  string `json:"investmentStage,omitempty"`
	Geography        string `json:"geography,omitempty"`
	InvestmentAmount string `json:"investmentAmount,omitempty"`

	Description string `json:"description,omitempty"`

	// Credential-Felder werden nie an Clients serialisiert.
	PasswordHash     string     `json:"-"`
	ResetToken       string     `json:"-"`
	ResetTokenExpiry *time.Time `json:"-"`

	FormComplete   bool       `json:"isFormComplete"`
	SubmissionTime *time.Time `json:"submissionTime,omitempty"`
	CompletionTime *time.Time `json:"completionTime,omitempty"`
}

// StartupFields mappt interne Feldnamen auf Airtable-Spaltennamen.
var StartupFields = map[string]string{
	"companyName":      "Startup Name",
	"email":            "Email",
	"contactName":      "Contact Name",
	"phone":            "Phone",
	"drugModality":     "Drug Modality",
	"diseaseFocus":     "Disease Focus",
	"investmentStage":  "Investment Stage",
	"geography":        "Geography",
	"investmentAmount": "Investment Amount",
	"description":      "Description",
	"password":         "Password",
	"resetToken":       "Reset Token",
	"resetTokenExpiry": "Reset Token Expiry",
	"isFormComplete":   "Form Complete",
	"submissionTime":   "Submission Time",
	"completionTime":   "Completion Time",
}

// StartupCSVColumns ist die Spaltenreihenfolge für CSV-Exporte (ohne Credentials).
var StartupCSVColumns = []string{
	"companyName", "email", "contactName", "phone",
	"drugModality", "diseaseFocus", "investmentStage", "geography", "investmentAmount",
	"description", "isFormComplete", "submissionTime", "completionTime",
}

// StartupFromFields baut ein Startup aus einer intern-gemappten Field-Map.
func StartupFromFields(id string, f map[string]any) *Startup {
	return &Startup{
		ID:               id,
		CompanyName:      GetString(f, "companyName"),
		Email:            GetString(f, "email"),
		ContactName:      GetString(f, "contactName"),
		Phone:            GetString(f, "phone"),
		DrugModality:     GetString(f, "drugModality"),
		DiseaseFocus:     GetString(f, "diseaseFocus"),
		InvestmentStage:  GetString(f, "investmentStage"),
		Geography:        GetString(f, "geography"),
		InvestmentAmount: GetString(f, "investmentAmount"),
		Description:      GetString(f, "description"),
		PasswordHash:     GetString(f, "password"),
		ResetToken:       GetString(f, "resetToken"),
		ResetTokenExpiry: GetTime(f, "resetTokenExpiry"),
		FormComplete:     GetBool(f, "isFormComplete"),
		SubmissionTime:   GetTime(f, "submissionTime"),
		CompletionTime:   GetTime(f, "completionTime"),
	}
}

// Fields serialisiert die gesetzten Felder zurück in eine intern-gemappte Map.
func (s *Startup) Fields() map[string]any {
	f := map[string]any{}
	putString(f, "companyName", s.CompanyName)
	putString(f, "email", s.Email)
	putString(f, "contactName", s.ContactName)
	putString(f, "phone", s.Phone)
	putString(f, "drugModality", s.DrugModality)
	putString(f, "diseaseFocus", s.DiseaseFocus)
	putString(f, "investmentStage", s.InvestmentStage)
	putString(f, "geography", s.Geography)
	putString(f, "investmentAmount", s.InvestmentAmount)
	putString(f, "description", s.Description)
	putString(f, "password", s.PasswordHash)
	putString(f, "resetToken", s.ResetToken)
	putTime(f, "resetTokenExpiry", s.ResetTokenExpiry)
	if s.FormComplete {
		f["isFormComplete"] = true
	}
	putTime(f, "submissionTime", s.SubmissionTime)
	putTime(f, "completionTime", s.CompletionTime)
	return f
}

// NormalizeEmail ist der kanonische Schlüssel für alle E-Mail-Vergleiche.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
