package models

import "encoding/json"

type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type RegisterRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
	Email    string `json:"email"`
}

type ChangePasswordRequest struct {
	OldPassword string `json:"old_password"`
	NewPassword string `json:"new_password"`
}

// ImportRequest carries a snapshot document plus import flags. Category
// flags default to true when omitted.
type ImportRequest struct {
	Data              json.RawMessage `json:"data"`
	OverwriteExisting bool            `json:"overwriteExisting"`
	DryRun            bool            `json:"dryRun"`
	ImportDevices     *bool           `json:"importDevices"`
	ImportAutomations *bool           `json:"importAutomations"`
	ImportScenes      *bool           `json:"importScenes"`
	ImportSettings    *bool           `json:"importSettings"`
}

type PreviewRequest struct {
	Data json.RawMessage `json:"data"`
}

type ScheduleRequest struct {
	Name          string `json:"name"`
	Frequency     string `json:"frequency"`
	Time          string `json:"time"`
	DayOfWeek     *int   `json:"day_of_week"`
	DayOfMonth    *int   `json:"day_of_month"`
	Enabled       bool   `json:"enabled"`
	RetentionDays int    `json:"retention_days"`
}
