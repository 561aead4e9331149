package api

import (
	"bytes"
	"log"

	"homevault/internal/export"
	"homevault/internal/importer"
	"homevault/internal/web/middleware"
	webModels "homevault/internal/web/models"

	"github.com/gin-gonic/gin"
)

func RegisterImportRoutes(r *gin.Engine, middleware *middleware.MiddlewareManager, imp *importer.Manager) {
	group := r.Group("/import")
	group.Use(middleware.RequireAuth())
	{
		group.POST("/", func(c *gin.Context) {
			userID := c.GetString("user_id")
			var req webModels.ImportRequest
			if err := c.ShouldBindJSON(&req); err != nil {
				c.JSON(400, gin.H{"error": "Invalid request"})
				return
			}
			result := imp.ImportFromFile(c, bytes.NewReader(req.Data), userID, importOptions(req))
			c.JSON(200, result)
		})

		group.POST("/preview", func(c *gin.Context) {
			userID := c.GetString("user_id")
			var req webModels.PreviewRequest
			if err := c.ShouldBindJSON(&req); err != nil {
				c.JSON(400, gin.H{"error": "Invalid request"})
				return
			}
			snap, _, err := export.ParseSnapshot(req.Data)
			if err != nil {
				c.JSON(400, gin.H{"error": "Invalid export data format"})
				return
			}
			preview, err := imp.PreviewImport(c, snap, userID)
			if err != nil {
				log.Printf("WEB: Import preview failed: %v", err)
				c.JSON(500, gin.H{"error": "Preview failed"})
				return
			}
			c.JSON(200, preview)
		})

		group.POST("/file", func(c *gin.Context) {
			userID := c.GetString("user_id")
			fileHeader, err := c.FormFile("file")
			if err != nil {
				c.JSON(400, gin.H{"error": "Missing file"})
				return
			}
			file, err := fileHeader.Open()
			if err != nil {
				c.JSON(400, gin.H{"error": "Could not read file"})
				return
			}
			defer file.Close()

			opts := importer.DefaultOptions()
			opts.OverwriteExisting = queryFlag(c, "overwrite", false)
			opts.DryRun = queryFlag(c, "dryRun", false)
			result := imp.ImportFromFile(c, file, userID, opts)
			c.JSON(200, result)
		})
	}
}

func importOptions(req webModels.ImportRequest) importer.Options {
	opts := importer.DefaultOptions()
	opts.OverwriteExisting = req.OverwriteExisting
	opts.DryRun = req.DryRun
	if req.ImportDevices != nil {
		opts.ImportDevices = *req.ImportDevices
	}
	if req.ImportAutomations != nil {
		opts.ImportAutomations = *req.ImportAutomations
	}
	if req.ImportScenes != nil {
		opts.ImportScenes = *req.ImportScenes
	}
	if req.ImportSettings != nil {
		opts.ImportSettings = *req.ImportSettings
	}
	return opts
}
