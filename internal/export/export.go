package export

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"homevault/internal/models"
)

// SchemaVersion is the current snapshot schema version
const SchemaVersion = "1.0.0"

// Store is the record store the export manager reads from
type Store interface {
	ListDevices(ctx context.Context, userID string) ([]models.Device, error)
	ListAutomations(ctx context.Context, userID string) ([]models.Automation, error)
	ListScenes(ctx context.Context, userID string) ([]models.Scene, error)
	GetUserPreferences(ctx context.Context, userID string) (map[string]any, error)
	GetUserEmail(ctx context.Context, userID string) (string, error)
}

// Options selects which categories to export
type Options struct {
	IncludeDevices     bool `json:"includeDevices"`
	IncludeAutomations bool `json:"includeAutomations"`
	IncludeScenes      bool `json:"includeScenes"`
	IncludeSettings    bool `json:"includeSettings"`
}

// DefaultOptions enables every category
func DefaultOptions() Options {
	return Options{IncludeDevices: true, IncludeAutomations: true, IncludeScenes: true, IncludeSettings: true}
}

// Manager serializes the current store state into snapshot documents
type Manager struct {
	store   Store
	product string
	now     func() time.Time
}

// NewManager creates an export manager. product is the filename prefix.
func NewManager(store Store, product string) *Manager {
	return &Manager{store: store, product: product, now: time.Now}
}

// ExportData queries each enabled category and builds a versioned snapshot.
// Empty categories are valid; a failing store call aborts the whole export.
func (m *Manager) ExportData(ctx context.Context, userID string, opts Options) (*models.Snapshot, error) {
	snap := &models.Snapshot{
		Version:   SchemaVersion,
		Timestamp: m.now().UTC().Format(time.RFC3339),
		Data: models.SnapshotData{
			Devices:     []models.Device{},
			Automations: []models.Automation{},
			Scenes:      []models.Scene{},
			Settings:    map[string]any{},
		},
	}

	if opts.IncludeDevices {
		devices, err := m.store.ListDevices(ctx, userID)
		if err != nil {
			return nil, fmt.Errorf("export failed: %w", err)
		}
		if devices != nil {
			snap.Data.Devices = devices
		}
	}
	if opts.IncludeAutomations {
		automations, err := m.store.ListAutomations(ctx, userID)
		if err != nil {
			return nil, fmt.Errorf("export failed: %w", err)
		}
		if automations != nil {
			snap.Data.Automations = automations
		}
	}
	if opts.IncludeScenes {
		scenes, err := m.store.ListScenes(ctx, userID)
		if err != nil {
			return nil, fmt.Errorf("export failed: %w", err)
		}
		if scenes != nil {
			snap.Data.Scenes = scenes
		}
	}
	if opts.IncludeSettings {
		settings, err := m.store.GetUserPreferences(ctx, userID)
		if err != nil {
			return nil, fmt.Errorf("export failed: %w", err)
		}
		if settings != nil {
			snap.Data.Settings = settings
		}
	}

	snap.Metadata = models.SnapshotMeta{
		DeviceCount:     len(snap.Data.Devices),
		AutomationCount: len(snap.Data.Automations),
		SceneCount:      len(snap.Data.Scenes),
	}

	// Exporter identity is optional; a lookup failure just omits it.
	if email, err := m.store.GetUserEmail(ctx, userID); err == nil {
		snap.Metadata.ExportedBy = email
	} else {
		log.Printf("EXPORT: Could not resolve exporter identity: %v", err)
	}

	return snap, nil
}

// ExportToFile produces a downloadable file: pretty-printed JSON of the full
// snapshot, or a CSV projection of the devices category when format is "csv".
// Returns the filename and the file contents.
func (m *Manager) ExportToFile(ctx context.Context, userID, format string, opts Options) (string, []byte, error) {
	snap, err := m.ExportData(ctx, userID, opts)
	if err != nil {
		return "", nil, err
	}

	date := m.now().Format("2006-01-02")
	if format == "csv" {
		name := fmt.Sprintf("%s-devices-%s.csv", m.product, date)
		return name, devicesToCSV(snap.Data.Devices), nil
	}

	data, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		return "", nil, fmt.Errorf("export failed: %w", err)
	}
	name := fmt.Sprintf("%s-export-%s.json", m.product, date)
	return name, data, nil
}
