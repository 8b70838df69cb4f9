package main

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"ventrilinks/config"
	"ventrilinks/models"
	"ventrilinks/services"
)

// setupClientRoutes konfiguriert alle Portal-Endpunkte unter /api/client.
func setupClientRoutes(router *gin.Engine, cfg *config.Config, auth *services.AuthService,
	portal *services.PortalService, dashboard *services.Dashboard,
	outreach *services.OutreachService, log *zap.Logger) {

	rg := router.Group("/api/client")

	rg.POST("/register", func(c *gin.Context) {
		var req struct {
			Email       string `json:"email" binding:"required"`
			Password    string `json:"password" binding:"required"`
			StartupName string `json:"startupName" binding:"required"`
		}
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "email, password and startupName are required"})
			return
		}

		session, err := auth.Register(c.Request.Context(), req.Email, req.Password, req.StartupName)
		if err != nil {
			switch {
			case errors.Is(err, services.ErrEmailTaken):
				c.JSON(http.StatusConflict, gin.H{"success": false, "message": "Account already exists for this email"})
			case errors.Is(err, services.ErrStartupNameTaken):
				c.JSON(http.StatusConflict, gin.H{"success": false, "message": "Startup name is already registered"})
			default:
				log.Error("Registration failed", zap.Error(err))
				c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Registration failed"})
			}
			return
		}

		registrationsCounter.Inc()
		c.JSON(http.StatusOK, gin.H{"success": true, "token": session.Token, "expiresAt": session.ExpiresAt})
	})

	rg.POST("/login", func(c *gin.Context) {
		var req struct {
			Email    string `json:"email" binding:"required"`
			Password string `json:"password" binding:"required"`
		}
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "email and password are required"})
			return
		}

		session, err := auth.Login(c.Request.Context(), req.Email, req.Password)
		if err != nil {
			if errors.Is(err, services.ErrInvalidCredentials) {
				c.JSON(http.StatusUnauthorized, gin.H{"success": false, "message": "Invalid email or password"})
				return
			}
			log.Error("Login failed", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Login failed"})
			return
		}

		loginsCounter.Inc()
		c.JSON(http.StatusOK, gin.H{"success": true, "token": session.Token, "expiresAt": session.ExpiresAt})
	})

	// Logout ist idempotent und verlangt keine noch gültige Session.
	rg.POST("/logout", func(c *gin.Context) {
		if token := bearerToken(c); token != "" {
			_ = auth.Logout(c.Request.Context(), token)
		}
		c.JSON(http.StatusOK, gin.H{"success": true})
	})

	rg.POST("/forgot-password", func(c *gin.Context) {
		var req struct {
			Email string `json:"email" binding:"required"`
		}
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "email is required"})
			return
		}
		if err := auth.ForgotPassword(c.Request.Context(), req.Email); err != nil {
			log.Error("Forgot-password failed", zap.Error(err))
		}
		// Existenz der Adresse nicht verraten.
		c.JSON(http.StatusOK, gin.H{"success": true, "message": "If the account exists, a reset mail was sent"})
	})

	rg.POST("/reset-password", func(c *gin.Context) {
		var req struct {
			Token    string `json:"token" binding:"required"`
			Password string `json:"password" binding:"required"`
		}
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "token and password are required"})
			return
		}
		if err := auth.ResetPassword(c.Request.Context(), req.Token, req.Password); err != nil {
			if errors.Is(err, services.ErrInvalidResetToken) {
				c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Invalid or expired reset token"})
				return
			}
			log.Error("Reset-password failed", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Password reset failed"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"success": true})
	})

	// Intake-Formular: öffentlich, Upsert per E-Mail-oder-Name-Lookup
	// (das Formular wird auch ohne Login ausgefüllt).
	rg.POST("/form-submission", func(c *gin.Context) {
		var req map[string]any
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Invalid request body"})
			return
		}
		email, _ := req["email"].(string)
		startupName, _ := req["startupName"].(string)
		if email == "" && startupName == "" {
			c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "email or startupName is required"})
			return
		}

		fields := map[string]any{}
		for _, key := range services.RequiredFormFields {
			if v, ok := req[key]; ok {
				fields[key] = v
			}
		}
		for _, key := range []string{"contactName", "phone", "description"} {
			if v, ok := req[key]; ok {
				fields[key] = v
			}
		}

		startup, err := portal.SubmitForm(c.Request.Context(), email, startupName, fields)
		if err != nil {
			log.Error("Form submission failed", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Failed to save submission"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"success": true, "data": startup})
	})

	// Alles ab hier verlangt eine gültige Session.
	authed := rg.Group("", bearerAuthMiddleware(auth))

	authed.GET("/profile", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"success": true, "data": currentClient(c)})
	})

	authed.GET("/form-status", func(c *gin.Context) {
		client := currentClient(c)
		status, err := portal.FormStatus(c.Request.Context(), client.Email)
		if err != nil {
			log.Error("Form-status lookup failed", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Failed to load form status"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"success": true, "data": status})
	})

	authed.GET("/matches", func(c *gin.Context) {
		client := currentClient(c)
		views, err := portal.UnlockedMatches(c.Request.Context(), client.CompanyName)
		if err != nil {
			log.Error("Match lookup failed", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Failed to load matches"})
			return
		}
		matchesServedCounter.Add(float64(len(views)))
		c.JSON(http.StatusOK, gin.H{"success": true, "data": views})
	})

	authed.GET("/dashboard", func(c *gin.Context) {
		client := currentClient(c)
		snapshot, err := dashboard.Evaluate(c.Request.Context(), client.Email, client.CompanyName)
		if err != nil {
			log.Error("Dashboard evaluation failed", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Failed to evaluate dashboard"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"success": true, "data": snapshot})
	})

	// Long-Poll-Variante: blockiert bis results-ready oder LongPollMax.
	authed.GET("/dashboard/wait", func(c *gin.Context) {
		client := currentClient(c)
		ctx, cancel := context.WithTimeout(c.Request.Context(), cfg.LongPollMax)
		defer cancel()

		snapshot, err := dashboard.WaitForResults(ctx, client.Email, client.CompanyName)
		if err != nil {
			log.Error("Dashboard wait failed", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Failed to evaluate dashboard"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"success": true, "data": snapshot})
	})

	authed.POST("/matches/:id/outreach-email", func(c *gin.Context) {
		email, cached, err := outreach.GenerateEmail(c.Request.Context(), c.Param("id"))
		if err != nil {
			if errors.Is(err, services.ErrMatchNotFound) {
				c.JSON(http.StatusNotFound, gin.H{"success": false, "message": "Match not found"})
				return
			}
			log.Error("Outreach generation failed", zap.String("match_id", c.Param("id")), zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Failed to generate outreach email"})
			return
		}
		if !cached {
			outreachMailsCounter.Inc()
		}
		c.JSON(http.StatusOK, gin.H{"success": true, "data": gin.H{"email": email, "cached": cached}})
	})

	setupTimelineRoutes(authed, portal, log, "activities", models.ActivityKindActivity)
	setupTimelineRoutes(authed, portal, log, "progress", models.ActivityKindProgress)
}

// setupTimelineRoutes registriert die CRUD-Endpunkte für eine Timeline-Art
// (activities bzw. progress) unter /matches/:id.
func setupTimelineRoutes(rg *gin.RouterGroup, portal *services.PortalService, log *zap.Logger, path, kind string) {
	rg.GET("/matches/:id/"+path, func(c *gin.Context) {
		entries, err := portal.ListActivities(c.Request.Context(), c.Param("id"), kind)
		if err != nil {
			log.Error("Timeline lookup failed", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Failed to load entries"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"success": true, "data": entries})
	})

	rg.POST("/matches/:id/"+path, func(c *gin.Context) {
		var req struct {
			Status string     `json:"status"`
			Note   string     `json:"note"`
			Date   *time.Time `json:"date"`
		}
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Invalid request body"})
			return
		}
		entry := &models.MatchActivity{
			MatchID: c.Param("id"),
			Kind:    kind,
			Status:  req.Status,
			Note:    req.Note,
			Date:    req.Date,
		}
		saved, err := portal.AddActivity(c.Request.Context(), entry)
		if err != nil {
			log.Error("Timeline create failed", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Failed to save entry"})
			return
		}
		c.JSON(http.StatusCreated, gin.H{"success": true, "data": saved})
	})

	rg.PUT("/matches/:id/"+path+"/:entryId", func(c *gin.Context) {
		var req struct {
			Status *string `json:"status"`
			Note   *string `json:"note"`
		}
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Invalid request body"})
			return
		}
		updates := map[string]any{}
		if req.Status != nil {
			updates["status"] = *req.Status
		}
		if req.Note != nil {
			updates["note"] = *req.Note
		}
		if len(updates) == 0 {
			c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "No updatable fields provided"})
			return
		}
		saved, err := portal.UpdateActivity(c.Request.Context(), c.Param("entryId"), updates)
		if err != nil {
			log.Error("Timeline update failed", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Failed to update entry"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"success": true, "data": saved})
	})

	rg.DELETE("/matches/:id/"+path+"/:entryId", func(c *gin.Context) {
		deleted, err := portal.DeleteActivity(c.Request.Context(), c.Param("entryId"))
		if err != nil || !deleted {
			c.JSON(http.StatusNotFound, gin.H{"success": false, "message": "Entry not found"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"success": true})
	})
}
