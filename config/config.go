package config

import (
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// Config enthält alle Konfigurationsparameter aus Umgebungsvariablen.
type Config struct {
	HTTPPort string `envconfig:"HTTP_PORT" default:"8080"`

	// Airtable ist der kanonische Record-Store; dieser Prozess hält keinen eigenen Zustand.
	AirtableBaseURL string `envconfig:"AIRTABLE_BASE_URL" default:"https://api.airtable.com/v0"`
	AirtableAPIKey  string `envconfig:"AIRTABLE_API_KEY" required:"true"`
	AirtableBaseID  string `envconfig:"AIRTABLE_BASE_ID" required:"true"`

	ClientsTable    string `envconfig:"AIRTABLE_CLIENTS_TABLE" default:"Startup Submissions"`
	VCsTable        string `envconfig:"AIRTABLE_VCS_TABLE" default:"VC Directory"`
	MatchesTable    string `envconfig:"AIRTABLE_MATCHES_TABLE" default:"Matches"`
	ActivitiesTable string `envconfig:"AIRTABLE_ACTIVITIES_TABLE" default:"Match Activities"`

	// Admin-Endpunkte sind offen, wenn kein Key gesetzt ist (nur für lokale Entwicklung).
	AdminAPIKey string `envconfig:"ADMIN_API_KEY"`

	SessionTTL    time.Duration `envconfig:"SESSION_TTL" default:"24h"`
	ResetTokenTTL time.Duration `envconfig:"RESET_TOKEN_TTL" default:"1h"`

	// Dashboard: Frist ab Formular-Abgabe und Poll-Intervall für Long-Polling.
	MatchDeadline time.Duration `envconfig:"MATCH_DEADLINE" default:"24h"`
	PollInterval  time.Duration `envconfig:"POLL_INTERVAL" default:"10s"`
	LongPollMax   time.Duration `envconfig:"LONG_POLL_MAX" default:"25s"`

	// Optionaler Postgres-Session-Store; leer = In-Memory.
	SessionsDSN string `envconfig:"SESSIONS_DSN"`

	LLMBaseURL string `envconfig:"LLM_BASE_URL" default:"https://api.openai.com/v1"`
	LLMAPIKey  string `envconfig:"LLM_API_KEY"`
	LLMModel   string `envconfig:"LLM_MODEL" default:"gpt-4o-mini"`

	SMTPHost     string `envconfig:"SMTP_HOST"`
	SMTPPort     string `envconfig:"SMTP_PORT" default:"587"`
	SMTPUser     string `envconfig:"SMTP_USER"`
	SMTPPassword string `envconfig:"SMTP_PASSWORD"`
	SMTPFrom     string `envconfig:"SMTP_FROM"`

	// Basis-URL des Portals für Reset-Links und CORS.
	PortalURL   string `envconfig:"PORTAL_URL" default:"http://localhost:3000"`
	CORSOrigins string `envconfig:"CORS_ORIGINS" default:"*"`

	// Nightly CSV-Backup nach S3; deaktiviert, wenn kein Bucket gesetzt ist.
	BackupS3Key      string `envconfig:"BACKUP_S3_KEY"`
	BackupS3Secret   string `envconfig:"BACKUP_S3_SECRET"`
	BackupS3URL      string `envconfig:"BACKUP_S3_URL"`
	BackupS3Region   string `envconfig:"BACKUP_S3_REGION" default:"eu-central-1"`
	BackupS3Bucket   string `envconfig:"BACKUP_S3_BUCKET"`
	BackupSchedule   string `envconfig:"BACKUP_SCHEDULE" default:"0 3 * * *"`
	SessionSweepCron string `envconfig:"SESSION_SWEEP_CRON" default:"0 * * * *"`
}

// Load lädt die Konfiguration aus den Umgebungsvariablen.
func Load() (*Config, error) {
	_ = godotenv.Load()
	var c Config
	err := envconfig.Process("", &c)
	return &c, err
}
