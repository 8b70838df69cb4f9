package main

import (
	"bytes"
	"compress/gzip"
	"context"
	"fmt"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"ventrilinks/config"
	"ventrilinks/models"
	"ventrilinks/providers/airtable"
	"ventrilinks/providers/llm"
	"ventrilinks/providers/mailer"
	"ventrilinks/services"
	"ventrilinks/storage"
)

var (
	registrationsCounter prometheus.Counter
	loginsCounter        prometheus.Counter
	outreachMailsCounter prometheus.Counter
	matchesServedCounter prometheus.Counter
	sessionsSweptCounter prometheus.Counter
)

func init() {
	registrationsCounter = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "registrations_total",
		Help: "Total number of successful account registrations.",
	})
	loginsCounter = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "logins_total",
		Help: "Total number of successful logins.",
	})
	outreachMailsCounter = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "outreach_emails_generated_total",
		Help: "Total number of outreach emails generated via the LLM.",
	})
	matchesServedCounter = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "unlocked_matches_served_total",
		Help: "Total number of unlocked matches served to the portal.",
	})
	sessionsSweptCounter = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "sessions_swept_total",
		Help: "Total number of expired sessions removed by the sweep job.",
	})
	prometheus.MustRegister(registrationsCounter, loginsCounter,
		outreachMailsCounter, matchesServedCounter, sessionsSweptCounter)
}

// apiKeyAuthMiddleware schützt die Admin-Endpunkte über X-API-KEY.
// Ohne konfigurierten Key bleibt die Gruppe offen (lokale Entwicklung).
func apiKeyAuthMiddleware(cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		if cfg.AdminAPIKey == "" {
			c.Next()
			return
		}
		apiKey := c.GetHeader("X-API-KEY")
		if apiKey != cfg.AdminAPIKey {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized: Invalid API Key"})
			return
		}
		c.Next()
	}
}

// bearerAuthMiddleware löst den Bearer-Token zur Startup-Zeile auf und hängt
// sie an den Request-Kontext. Jeder Fehlschlag ist ein generisches 401.
func bearerAuthMiddleware(auth *services.AuthService) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := bearerToken(c)
		if token == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"success": false, "message": "Missing bearer token"})
			return
		}
		client, err := auth.Authenticate(c.Request.Context(), token)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"success": false, "message": "Invalid or expired session"})
			return
		}
		c.Set("client", client)
		c.Set("token", token)
		c.Next()
	}
}

func bearerToken(c *gin.Context) string {
	header := c.GetHeader("Authorization")
	token := strings.TrimPrefix(header, "Bearer ")
	if token == header {
		return ""
	}
	return token
}

func currentClient(c *gin.Context) *models.Startup {
	v, _ := c.Get("client")
	client, _ := v.(*models.Startup)
	return client
}

func main() {
	logging, err := zap.NewProduction()
	if err != nil {
		log.Fatalf("can't initialize zap logger: %v", err)
	}
	defer logging.Sync()

	cfg, err := config.Load()
	if err != nil {
		logging.Fatal("Config load error", zap.Error(err))
	}

	// Record-Store: alle drei logischen Tabellen plus Timeline-Einträge.
	at := airtable.NewClient(cfg, logging)
	clients := at.Table(cfg.ClientsTable, models.StartupFields)
	vcs := at.Table(cfg.VCsTable, models.VCFields)
	matches := at.Table(cfg.MatchesTable, models.MatchFields)
	activities := at.Table(cfg.ActivitiesTable, models.ActivityFields)

	// Session-Store: Postgres, wenn konfiguriert, sonst In-Memory.
	var sessions storage.SessionStore
	if cfg.SessionsDSN != "" {
		pg, err := storage.NewPostgresSessionStore(cfg.SessionsDSN)
		if err != nil {
			logging.Fatal("Failed to connect to session store", zap.Error(err))
		}
		sessions = pg
		logging.Info("Using Postgres session store")
	} else {
		sessions = storage.NewMemorySessionStore()
		logging.Info("Using in-memory session store (sessions are lost on restart)")
	}
	waitlist := storage.NewMemoryWaitlist()

	// Services
	sender := mailer.NewSender(cfg, logging)
	authService := services.NewAuthService(clients, sessions, sender, cfg, logging)
	portal := services.NewPortalService(clients, vcs, matches, activities, logging)
	dashboard := services.NewDashboard(portal, portal, cfg.MatchDeadline, cfg.PollInterval, logging)
	llmClient := llm.NewClient(cfg, logging)
	outreach := services.NewOutreachService(clients, vcs, matches, llmClient, logging)

	// Router
	router := gin.Default()
	router.Use(corsMiddleware(cfg))
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "healthy", "service": "ventrilinks-api"})
	})
	router.POST("/api/waitlist", func(c *gin.Context) {
		var req struct {
			Email  string `json:"email" binding:"required"`
			Name   string `json:"name"`
			Source string `json:"source"`
		}
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "'email' field is required"})
			return
		}
		entry := models.WaitlistEntry{
			Email:     models.NormalizeEmail(req.Email),
			Name:      req.Name,
			Source:    req.Source,
			CreatedAt: time.Now(),
		}
		if err := waitlist.Add(c.Request.Context(), entry); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Failed to join waitlist"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"success": true})
	})

	setupClientRoutes(router, cfg, authService, portal, dashboard, outreach, logging)
	setupAdminRoutes(router, cfg, clients, vcs, matches, logging)

	// Cron: Session-Sweep und optionales Nightly-Backup nach S3.
	cronScheduler := cron.New()
	cronScheduler.AddFunc(cfg.SessionSweepCron, func() {
		removed, err := authService.SweepSessions(context.Background())
		if err != nil {
			logging.Error("Session sweep failed", zap.Error(err))
			return
		}
		if removed > 0 {
			sessionsSweptCounter.Add(float64(removed))
			logging.Info("Session sweep completed", zap.Int("removed", removed))
		}
	})
	if cfg.BackupS3Bucket != "" {
		cronScheduler.AddFunc(cfg.BackupSchedule, func() {
			if err := runBackup(context.Background(), cfg, clients, vcs, matches, logging); err != nil {
				logging.Error("Nightly backup failed", zap.Error(err))
			}
		})
		logging.Info("Nightly CSV backup enabled", zap.String("bucket", cfg.BackupS3Bucket))
	}
	cronScheduler.Start()

	logging.Info("Starting server", zap.String("port", cfg.HTTPPort))
	srv := &http.Server{
		Addr:              ":" + cfg.HTTPPort,
		Handler:           router,
		ReadTimeout:       30 * time.Second,
		ReadHeaderTimeout: 15 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       120 * time.Second,
	}
	if err := srv.ListenAndServe(); err != nil {
		logging.Fatal("Failed to run server", zap.Error(err))
	}
}

func corsMiddleware(cfg *config.Config) gin.HandlerFunc {
	corsCfg := cors.DefaultConfig()
	if cfg.CORSOrigins == "*" {
		corsCfg.AllowAllOrigins = true
	} else {
		corsCfg.AllowOrigins = strings.Split(cfg.CORSOrigins, ",")
	}
	corsCfg.AllowHeaders = append(corsCfg.AllowHeaders, "Authorization", "X-API-KEY")
	return cors.New(corsCfg)
}

// runBackup exportiert die drei Tabellen als gzip-CSV nach S3.
func runBackup(ctx context.Context, cfg *config.Config, clients, vcs, matches *airtable.Table, logger *zap.Logger) error {
	s3Client, err := storage.NewS3Client(cfg)
	if err != nil {
		return err
	}

	stamp := time.Now().UTC().Format("2006-01-02T15-04-05Z")
	exports := []struct {
		table   *airtable.Table
		name    string
		columns []string
		display map[string]string
	}{
		{clients, "clients", models.StartupCSVColumns, models.StartupFields},
		{vcs, "vcs", models.VCCSVColumns, models.VCFields},
		{matches, "matches", models.MatchCSVColumns, models.MatchFields},
	}

	for _, e := range exports {
		records, err := e.table.List(ctx)
		if err != nil {
			return err
		}
		var buf bytes.Buffer
		gz := gzip.NewWriter(&buf)
		if err := services.WriteCSV(gz, e.columns, e.display, records); err != nil {
			return err
		}
		if err := gz.Close(); err != nil {
			return err
		}
		key := fmt.Sprintf("backups/%s-%s.csv.gz", e.name, stamp)
		if _, err := storage.UploadFile(s3Client, cfg.BackupS3Bucket, key, buf.Bytes(), cfg); err != nil {
			return err
		}
		logger.Info("Table exported to S3", zap.String("key", key), zap.Int("records", len(records)))
	}
	return nil
}
