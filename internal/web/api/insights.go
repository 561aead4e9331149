package api

import (
	"log"

	"homevault/internal/db"
	"homevault/internal/predict"
	"homevault/internal/web/middleware"

	"github.com/gin-gonic/gin"
)

func RegisterInsightRoutes(r *gin.Engine, middleware *middleware.MiddlewareManager, dbConn *db.DB, engine *predict.Engine) {
	insights := r.Group("/insights")
	insights.Use(middleware.RequireAuth())
	{
		insights.GET("/", func(c *gin.Context) {
			userID := c.GetString("user_id")
			devices, err := dbConn.ListDevices(c, userID)
			if err != nil {
				log.Printf("WEB: Failed to fetch devices for insights: %v", err)
				c.JSON(500, gin.H{"error": "Failed to analyze"})
				return
			}
			automations, err := dbConn.ListAutomations(c, userID)
			if err != nil {
				log.Printf("WEB: Failed to fetch automations for insights: %v", err)
				c.JSON(500, gin.H{"error": "Failed to analyze"})
				return
			}
			notifications, err := engine.Analyze(c, devices, automations, userID)
			if err != nil {
				log.Printf("WEB: Analysis failed: %v", err)
				c.JSON(500, gin.H{"error": "Failed to analyze"})
				return
			}
			c.JSON(200, notifications)
		})
	}
}
