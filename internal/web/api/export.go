package api

import (
	"log"
	"strconv"

	"homevault/internal/export"
	"homevault/internal/web/middleware"

	"github.com/gin-gonic/gin"
)

func RegisterExportRoutes(r *gin.Engine, middleware *middleware.MiddlewareManager, exporter *export.Manager) {
	group := r.Group("/export")
	group.Use(middleware.RequireAuth())
	{
		// Full snapshot as a JSON response body
		group.POST("/", func(c *gin.Context) {
			userID := c.GetString("user_id")
			snap, err := exporter.ExportData(c, userID, optionsFromQuery(c))
			if err != nil {
				log.Printf("WEB: Export failed: %v", err)
				c.JSON(500, gin.H{"error": "Export failed"})
				return
			}
			c.JSON(200, snap)
		})

		// Snapshot as a downloadable file; format=csv gets the devices projection
		group.GET("/file", func(c *gin.Context) {
			userID := c.GetString("user_id")
			format := c.DefaultQuery("format", "json")
			name, data, err := exporter.ExportToFile(c, userID, format, optionsFromQuery(c))
			if err != nil {
				log.Printf("WEB: File export failed: %v", err)
				c.JSON(500, gin.H{"error": "Export failed"})
				return
			}
			contentType := "application/json"
			if format == "csv" {
				contentType = "text/csv"
			}
			c.Header("Content-Disposition", `attachment; filename="`+name+`"`)
			c.Data(200, contentType, data)
		})
	}
}

func optionsFromQuery(c *gin.Context) export.Options {
	opts := export.DefaultOptions()
	opts.IncludeDevices = queryFlag(c, "devices", true)
	opts.IncludeAutomations = queryFlag(c, "automations", true)
	opts.IncludeScenes = queryFlag(c, "scenes", true)
	opts.IncludeSettings = queryFlag(c, "settings", true)
	return opts
}

func queryFlag(c *gin.Context, name string, fallback bool) bool {
	raw, ok := c.GetQuery(name)
	if !ok {
		return fallback
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		return fallback
	}
	return v
}
