package models

import (
	"encoding/json"
	"time"
)

// Device represents a registered device
type Device struct {
	ID              string          `json:"id"`
	Name            string          `json:"name"`
	Type            string          `json:"type"`
	IPAddress       string          `json:"ip_address"`
	MACAddress      string          `json:"mac_address"`
	FirmwareVersion string          `json:"firmware_version"`
	Enabled         bool            `json:"enabled"`
	Location        string          `json:"location"`
	Room            string          `json:"room"`
	Groups          []string        `json:"groups"`
	Metadata        map[string]any  `json:"metadata,omitempty"`
	Credentials     json.RawMessage `json:"credentials,omitempty"`
	UserID          string          `json:"user_id"`
	CreatedAt       time.Time       `json:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at"`
	LastSeen        *time.Time      `json:"last_seen,omitempty"`
}

// TriggerSpec describes what fires an automation
type TriggerSpec struct {
	Type     string          `json:"type"` // "device", "time", "telemetry"
	DeviceID string          `json:"device_id,omitempty"`
	At       string          `json:"at,omitempty"` // "HH:MM" for time triggers
	Key      string          `json:"key,omitempty"`
	Op       string          `json:"op,omitempty"`
	Value    json.RawMessage `json:"value,omitempty"`
}

// ConditionSpec is a guard evaluated before actions run
type ConditionSpec struct {
	Type     string          `json:"type"` // "device", "time"
	DeviceID string          `json:"device_id,omitempty"`
	Key      string          `json:"key,omitempty"`
	Op       string          `json:"op,omitempty"` // ">", "<", "==", "!="
	Value    json.RawMessage `json:"value,omitempty"`
	Operator string          `json:"operator,omitempty"` // "AND", "OR" for nested conditions
	Children []ConditionSpec `json:"children,omitempty"`
}

// ActionSpec is a single step executed by an automation or scene
type ActionSpec struct {
	DeviceID string          `json:"device_id,omitempty"`
	Action   string          `json:"action"` // e.g. "set_state", "notify"
	Params   json.RawMessage `json:"params,omitempty"`
}

// Automation represents a user-defined automation
type Automation struct {
	ID            string          `json:"id"`
	Name          string          `json:"name"`
	Description   string          `json:"description"`
	Enabled       bool            `json:"enabled"`
	Triggers      []TriggerSpec   `json:"triggers"`
	Conditions    []ConditionSpec `json:"conditions"`
	Actions       []ActionSpec    `json:"actions"`
	LastTriggered *time.Time      `json:"last_triggered,omitempty"`
	NextTrigger   *time.Time      `json:"next_trigger,omitempty"`
	UserID        string          `json:"user_id"`
	CreatedAt     time.Time       `json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`
}

// Scene represents a saved group of actions
type Scene struct {
	ID          string       `json:"id"`
	Name        string       `json:"name"`
	Description string       `json:"description"`
	Icon        string       `json:"icon"`
	Color       string       `json:"color"`
	Actions     []ActionSpec `json:"actions"`
	Favorite    bool         `json:"favorite"`
	UserID      string       `json:"user_id"`
	CreatedAt   time.Time    `json:"created_at"`
	UpdatedAt   time.Time    `json:"updated_at"`
}

// Snapshot is the versioned document exchanged by the export/import/backup
// pipeline. Timestamp is ISO 8601 to match the on-disk artifact format.
type Snapshot struct {
	Version   string       `json:"version"`
	Timestamp string       `json:"timestamp"`
	Data      SnapshotData `json:"data"`
	Metadata  SnapshotMeta `json:"metadata"`
}

// SnapshotData holds the exported categories
type SnapshotData struct {
	Devices     []Device       `json:"devices"`
	Automations []Automation   `json:"automations"`
	Scenes      []Scene        `json:"scenes"`
	Settings    map[string]any `json:"settings"`
}

// SnapshotMeta carries category counts and exporter identity
type SnapshotMeta struct {
	DeviceCount     int    `json:"deviceCount"`
	AutomationCount int    `json:"automationCount"`
	SceneCount      int    `json:"sceneCount"`
	ExportedBy      string `json:"exportedBy,omitempty"`
}

// BackupStatus is the lifecycle state of a backup record
type BackupStatus string

const (
	BackupInProgress BackupStatus = "in_progress"
	BackupSuccess    BackupStatus = "success"
	BackupFailed     BackupStatus = "failed"
)

// BackupRecord tracks one backup artifact
type BackupRecord struct {
	ID          string       `json:"id"`
	UserID      string       `json:"user_id"`
	ScheduleID  *string      `json:"schedule_id,omitempty"` // nil for manual backups
	CreatedAt   time.Time    `json:"created_at"`
	Size        int64        `json:"size"`
	Status      BackupStatus `json:"status"`
	Error       string       `json:"error,omitempty"`
	ObjectKey   string       `json:"object_key,omitempty"`
	DownloadURL string       `json:"download_url,omitempty"`
	ExpiresAt   *time.Time   `json:"expires_at,omitempty"`
}

// BackupSchedule is a recurring backup definition
type BackupSchedule struct {
	ID            string     `json:"id"`
	UserID        string     `json:"user_id"`
	Name          string     `json:"name"`
	Frequency     string     `json:"frequency"` // "daily", "weekly", "monthly"
	Time          string     `json:"time"`      // "HH:MM"
	DayOfWeek     *int       `json:"day_of_week,omitempty"`  // 0=Sunday..6=Saturday, weekly only
	DayOfMonth    *int       `json:"day_of_month,omitempty"` // 1-31, monthly only
	Enabled       bool       `json:"enabled"`
	RetentionDays int        `json:"retention_days"`
	LastRun       *time.Time `json:"last_run,omitempty"`
	NextRun       time.Time  `json:"next_run"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`
}

// TelemetryEntry is one row of the device telemetry log
type TelemetryEntry struct {
	ID        string          `json:"id"`
	DeviceID  string          `json:"device_id"`
	UserID    string          `json:"user_id"`
	Event     string          `json:"event"` // "on", "off", "state"
	State     json.RawMessage `json:"state,omitempty"`
	Timestamp time.Time       `json:"timestamp"`
}
