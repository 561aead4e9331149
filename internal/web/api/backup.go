package api

import (
	"log"

	"homevault/internal/backup"
	"homevault/internal/models"
	"homevault/internal/taskqueue"
	"homevault/internal/web/middleware"
	webModels "homevault/internal/web/models"

	"github.com/gin-gonic/gin"
)

func RegisterBackupRoutes(r *gin.Engine, middleware *middleware.MiddlewareManager, svc *backup.Service) {
	backups := r.Group("/backups")
	backups.Use(middleware.RequireAuth())
	{
		backups.GET("/", func(c *gin.Context) {
			userID := c.GetString("user_id")
			records, err := svc.ListBackups(c, userID)
			if err != nil {
				log.Printf("WEB: Failed to list backups: %v", err)
				c.JSON(500, gin.H{"error": "Failed to list backups"})
				return
			}
			if records == nil {
				records = []models.BackupRecord{}
			}
			c.JSON(200, records)
		})

		// Manual backups run in the background; poll the list for the result
		backups.POST("/", func(c *gin.Context) {
			userID := c.GetString("user_id")
			if err := taskqueue.EnqueueBackup(userID); err != nil {
				c.JSON(500, gin.H{"error": "Failed to queue backup"})
				return
			}
			c.JSON(202, gin.H{"status": "Backup queued"})
		})

		backups.POST("/:id/restore", func(c *gin.Context) {
			userID := c.GetString("user_id")
			if err := svc.RestoreBackup(c, userID, c.Param("id")); err != nil {
				log.Printf("WEB: Restore failed: %v", err)
				c.JSON(500, gin.H{"error": err.Error()})
				return
			}
			c.JSON(200, gin.H{"status": "Backup restored"})
		})

		backups.GET("/schedules", func(c *gin.Context) {
			userID := c.GetString("user_id")
			schedules, err := svc.ListSchedules(c, userID)
			if err != nil {
				log.Printf("WEB: Failed to list schedules: %v", err)
				c.JSON(500, gin.H{"error": "Failed to list schedules"})
				return
			}
			if schedules == nil {
				schedules = []models.BackupSchedule{}
			}
			c.JSON(200, schedules)
		})

		backups.POST("/schedules", func(c *gin.Context) {
			userID := c.GetString("user_id")
			var req webModels.ScheduleRequest
			if err := c.ShouldBindJSON(&req); err != nil {
				c.JSON(400, gin.H{"error": "Invalid request"})
				return
			}
			schedule := scheduleFromRequest(req)
			schedule.UserID = userID
			if err := svc.CreateSchedule(c, schedule); err != nil {
				c.JSON(400, gin.H{"error": err.Error()})
				return
			}
			c.JSON(201, schedule)
		})

		backups.PATCH("/schedules/:id", func(c *gin.Context) {
			var req webModels.ScheduleRequest
			if err := c.ShouldBindJSON(&req); err != nil {
				c.JSON(400, gin.H{"error": "Invalid request"})
				return
			}
			schedule := scheduleFromRequest(req)
			schedule.ID = c.Param("id")
			if err := svc.UpdateSchedule(c, schedule); err != nil {
				c.JSON(400, gin.H{"error": err.Error()})
				return
			}
			c.JSON(200, schedule)
		})

		backups.DELETE("/schedules/:id", func(c *gin.Context) {
			if err := svc.DeleteSchedule(c, c.Param("id")); err != nil {
				c.JSON(500, gin.H{"error": "Failed to delete schedule"})
				return
			}
			c.JSON(200, gin.H{"status": "Schedule deleted"})
		})
	}
}

func scheduleFromRequest(req webModels.ScheduleRequest) *models.BackupSchedule {
	return &models.BackupSchedule{
		Name:          req.Name,
		Frequency:     req.Frequency,
		Time:          req.Time,
		DayOfWeek:     req.DayOfWeek,
		DayOfMonth:    req.DayOfMonth,
		Enabled:       req.Enabled,
		RetentionDays: req.RetentionDays,
	}
}
