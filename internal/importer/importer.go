package importer

import (
	"context"
	"fmt"
	"log"
	"time"

	"homevault/internal/models"

	"github.com/google/uuid"
)

// Store is the record store the import manager reconciles against
type Store interface {
	ListDevices(ctx context.Context, userID string) ([]models.Device, error)
	InsertDevice(ctx context.Context, d *models.Device) error
	UpdateDevice(ctx context.Context, d *models.Device) error
	ListAutomations(ctx context.Context, userID string) ([]models.Automation, error)
	InsertAutomation(ctx context.Context, a *models.Automation) error
	UpdateAutomation(ctx context.Context, a *models.Automation) error
	ListScenes(ctx context.Context, userID string) ([]models.Scene, error)
	InsertScene(ctx context.Context, s *models.Scene) error
	UpdateScene(ctx context.Context, s *models.Scene) error
	UpsertUserPreferences(ctx context.Context, userID string, settings map[string]any) error
}

// Options controls import behavior
type Options struct {
	OverwriteExisting bool `json:"overwriteExisting"`
	ImportDevices     bool `json:"importDevices"`
	ImportAutomations bool `json:"importAutomations"`
	ImportScenes      bool `json:"importScenes"`
	ImportSettings    bool `json:"importSettings"`
	// DryRun reports projected counts without touching storage. The imported
	// counters do not distinguish would-insert from would-update records,
	// matching the live-run counting.
	DryRun bool `json:"dryRun"`
}

// DefaultOptions imports every category without overwriting
func DefaultOptions() Options {
	return Options{ImportDevices: true, ImportAutomations: true, ImportScenes: true, ImportSettings: true}
}

// Counts holds per-category import totals
type Counts struct {
	Devices     int  `json:"devices"`
	Automations int  `json:"automations"`
	Scenes      int  `json:"scenes"`
	Settings    bool `json:"settings"`
}

// Result is the outcome of an import run
type Result struct {
	Success  bool     `json:"success"`
	Imported Counts   `json:"imported"`
	Errors   []string `json:"errors"`
	Warnings []string `json:"warnings"`
}

// Manager reconciles snapshot documents against the record store
type Manager struct {
	store Store
	now   func() time.Time
}

// NewManager creates an import manager
func NewManager(store Store) *Manager {
	return &Manager{store: store, now: time.Now}
}

func errorResult(msg string) *Result {
	return &Result{Errors: []string{msg}, Warnings: []string{}}
}

// ImportData imports a snapshot for the given user. Categories run
// sequentially; a per-record failure is collected and processing continues.
// Success is true iff no errors were collected.
func (m *Manager) ImportData(ctx context.Context, snap *models.Snapshot, userID string, opts Options) *Result {
	if snap == nil {
		return errorResult("invalid export data format")
	}
	if userID == "" {
		return errorResult("not authenticated")
	}

	result := &Result{Errors: []string{}, Warnings: []string{}}

	if opts.ImportDevices {
		m.importDevices(ctx, snap.Data.Devices, userID, opts, result)
	}
	if opts.ImportAutomations {
		m.importAutomations(ctx, snap.Data.Automations, userID, opts, result)
	}
	if opts.ImportScenes {
		m.importScenes(ctx, snap.Data.Scenes, userID, opts, result)
	}
	if opts.ImportSettings && !opts.DryRun && len(snap.Data.Settings) > 0 {
		if err := m.store.UpsertUserPreferences(ctx, userID, snap.Data.Settings); err != nil {
			log.Printf("IMPORT: Settings upsert failed: %v", err)
			result.Imported.Settings = false
		} else {
			result.Imported.Settings = true
		}
	}

	result.Success = len(result.Errors) == 0
	return result
}

func (m *Manager) importDevices(ctx context.Context, devices []models.Device, userID string, opts Options, result *Result) {
	existing, err := m.store.ListDevices(ctx, userID)
	if err != nil {
		result.Errors = append(result.Errors, fmt.Sprintf("Failed to load existing devices: %v", err))
		return
	}
	byMAC := make(map[string]models.Device, len(existing))
	for _, d := range existing {
		byMAC[d.MACAddress] = d
	}

	now := m.now()
	for _, incoming := range devices {
		current, found := byMAC[incoming.MACAddress]
		switch {
		case !found:
			if opts.DryRun {
				result.Imported.Devices++
				continue
			}
			fresh := incoming
			fresh.ID = uuid.NewString()
			fresh.UserID = userID
			fresh.CreatedAt = now
			fresh.UpdatedAt = now
			if fresh.Groups == nil {
				fresh.Groups = []string{}
			}
			if err := m.store.InsertDevice(ctx, &fresh); err != nil {
				result.Errors = append(result.Errors, fmt.Sprintf("Failed to import device %s: %v", incoming.Name, err))
				continue
			}
			result.Imported.Devices++
		case !opts.OverwriteExisting:
			result.Warnings = append(result.Warnings, fmt.Sprintf("Device %s already exists, skipped", incoming.Name))
		default:
			result.Warnings = append(result.Warnings, fmt.Sprintf("Device %s already exists, overwriting", incoming.Name))
			if opts.DryRun {
				result.Imported.Devices++
				continue
			}
			updated := incoming
			updated.ID = current.ID
			updated.UserID = current.UserID
			updated.CreatedAt = current.CreatedAt
			updated.UpdatedAt = now
			if err := m.store.UpdateDevice(ctx, &updated); err != nil {
				result.Errors = append(result.Errors, fmt.Sprintf("Failed to update device %s: %v", incoming.Name, err))
				continue
			}
			result.Imported.Devices++
		}
	}
}

func (m *Manager) importAutomations(ctx context.Context, automations []models.Automation, userID string, opts Options, result *Result) {
	existing, err := m.store.ListAutomations(ctx, userID)
	if err != nil {
		result.Errors = append(result.Errors, fmt.Sprintf("Failed to load existing automations: %v", err))
		return
	}
	byName := make(map[string]models.Automation, len(existing))
	for _, a := range existing {
		byName[a.Name] = a
	}

	now := m.now()
	for _, incoming := range automations {
		current, found := byName[incoming.Name]
		switch {
		case !found:
			if opts.DryRun {
				result.Imported.Automations++
				continue
			}
			fresh := incoming
			fresh.ID = uuid.NewString()
			fresh.UserID = userID
			fresh.CreatedAt = now
			fresh.UpdatedAt = now
			if err := m.store.InsertAutomation(ctx, &fresh); err != nil {
				result.Errors = append(result.Errors, fmt.Sprintf("Failed to import automation %s: %v", incoming.Name, err))
				continue
			}
			result.Imported.Automations++
		case !opts.OverwriteExisting:
			// Silent skip; only devices warn about duplicates.
		default:
			if opts.DryRun {
				result.Imported.Automations++
				continue
			}
			updated := incoming
			updated.ID = current.ID
			updated.UserID = current.UserID
			updated.CreatedAt = current.CreatedAt
			updated.UpdatedAt = now
			if err := m.store.UpdateAutomation(ctx, &updated); err != nil {
				result.Errors = append(result.Errors, fmt.Sprintf("Failed to update automation %s: %v", incoming.Name, err))
				continue
			}
			result.Imported.Automations++
		}
	}
}

func (m *Manager) importScenes(ctx context.Context, scenes []models.Scene, userID string, opts Options, result *Result) {
	existing, err := m.store.ListScenes(ctx, userID)
	if err != nil {
		result.Errors = append(result.Errors, fmt.Sprintf("Failed to load existing scenes: %v", err))
		return
	}
	byName := make(map[string]models.Scene, len(existing))
	for _, s := range existing {
		byName[s.Name] = s
	}

	now := m.now()
	for _, incoming := range scenes {
		current, found := byName[incoming.Name]
		switch {
		case !found:
			if opts.DryRun {
				result.Imported.Scenes++
				continue
			}
			fresh := incoming
			fresh.ID = uuid.NewString()
			fresh.UserID = userID
			fresh.CreatedAt = now
			fresh.UpdatedAt = now
			if err := m.store.InsertScene(ctx, &fresh); err != nil {
				result.Errors = append(result.Errors, fmt.Sprintf("Failed to import scene %s: %v", incoming.Name, err))
				continue
			}
			result.Imported.Scenes++
		case !opts.OverwriteExisting:
			// Silent skip, same as automations.
		default:
			if opts.DryRun {
				result.Imported.Scenes++
				continue
			}
			updated := incoming
			updated.ID = current.ID
			updated.UserID = current.UserID
			updated.CreatedAt = current.CreatedAt
			updated.UpdatedAt = now
			if err := m.store.UpdateScene(ctx, &updated); err != nil {
				result.Errors = append(result.Errors, fmt.Sprintf("Failed to update scene %s: %v", incoming.Name, err))
				continue
			}
			result.Imported.Scenes++
		}
	}
}
