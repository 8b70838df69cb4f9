package main

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"ventrilinks/config"
	"ventrilinks/models"
	"ventrilinks/providers/airtable"
	"ventrilinks/services"
)

// setupAdminRoutes konfiguriert die Operator-CRUD-Endpunkte unter /api/admin.
// Reine Feld-Transformation, keine Geschäftslogik.
func setupAdminRoutes(router *gin.Engine, cfg *config.Config,
	clients, vcs, matches *airtable.Table, log *zap.Logger) {

	rg := router.Group("/api/admin", apiKeyAuthMiddleware(cfg))

	registerAdminCRUD(rg, "clients", clients, models.StartupCSVColumns, models.StartupFields, nil, log)
	registerAdminCRUD(rg, "vcs", vcs, models.VCCSVColumns, models.VCFields, nil, log)
	registerAdminCRUD(rg, "matches", matches, models.MatchCSVColumns, models.MatchFields, coerceMatchAccess, log)
}

// coerceMatchAccess erzwingt die clientAccess-Invariante auf jedem Admin-Write.
func coerceMatchAccess(fields map[string]any) {
	if v, ok := fields["clientAccess"]; ok {
		s, _ := v.(string)
		fields["clientAccess"] = models.NormalizeAccess(s)
	}
}

func registerAdminCRUD(rg *gin.RouterGroup, path string, table *airtable.Table,
	csvColumns []string, display map[string]string,
	transform func(map[string]any), log *zap.Logger) {

	rg.GET("/"+path, func(c *gin.Context) {
		records, err := table.List(c.Request.Context())
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Failed to load records"})
			return
		}
		if records == nil {
			records = []airtable.Record{}
		}
		c.JSON(http.StatusOK, gin.H{"success": true, "data": records})
	})

	rg.GET("/"+path+"/:id", func(c *gin.Context) {
		rec, err := table.Get(c.Request.Context(), c.Param("id"))
		if err != nil {
			c.JSON(http.StatusNotFound, gin.H{"success": false, "message": "Record not found"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"success": true, "data": rec})
	})

	rg.POST("/"+path, func(c *gin.Context) {
		var fields map[string]any
		if err := c.ShouldBindJSON(&fields); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Invalid request body"})
			return
		}
		if transform != nil {
			transform(fields)
		}
		rec, err := table.Create(c.Request.Context(), fields)
		if err != nil {
			log.Error("Admin create failed", zap.String("table", table.Name()), zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Failed to create record"})
			return
		}
		c.JSON(http.StatusCreated, gin.H{"success": true, "data": rec})
	})

	rg.PUT("/"+path+"/:id", func(c *gin.Context) {
		var fields map[string]any
		if err := c.ShouldBindJSON(&fields); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Invalid request body"})
			return
		}
		if transform != nil {
			transform(fields)
		}
		rec, err := table.Update(c.Request.Context(), c.Param("id"), fields)
		if err != nil {
			log.Error("Admin update failed", zap.String("table", table.Name()), zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Failed to update record"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"success": true, "data": rec})
	})

	rg.DELETE("/"+path+"/:id", func(c *gin.Context) {
		deleted, err := table.Delete(c.Request.Context(), c.Param("id"))
		if err != nil || !deleted {
			c.JSON(http.StatusNotFound, gin.H{"success": false, "message": "Record not found"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"success": true})
	})

	rg.GET("/"+path+"/export.csv", func(c *gin.Context) {
		records, err := table.List(c.Request.Context())
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Failed to load records"})
			return
		}
		c.Header("Content-Type", "text/csv")
		c.Header("Content-Disposition", `attachment; filename="`+path+`.csv"`)
		if err := services.WriteCSV(c.Writer, csvColumns, display, records); err != nil {
			log.Error("CSV export failed", zap.String("table", table.Name()), zap.Error(err))
		}
	})
}
