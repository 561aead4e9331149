package api

import (
	"log"

	"homevault/internal/db"
	"homevault/internal/web/middleware"

	"github.com/gin-gonic/gin"
)

func RegisterDeviceRoutes(r *gin.Engine, middleware *middleware.MiddlewareManager, dbConn *db.DB) {
	devices := r.Group("/devices")
	devices.Use(middleware.RequireAuth())
	{
		devices.GET("/", func(c *gin.Context) {
			userID := c.GetString("user_id")
			list, err := dbConn.ListDevices(c, userID)
			if err != nil {
				log.Printf("WEB: Failed to fetch devices: %v", err)
				c.JSON(500, gin.H{"error": "Failed to fetch devices"})
				return
			}
			c.JSON(200, list)
		})
	}
}
