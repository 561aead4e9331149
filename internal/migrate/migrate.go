package migrate

import (
	"encoding/json"
	"fmt"
	"log"

	"homevault/internal/models"

	"github.com/google/uuid"
)

// TargetVersion is the schema version migration upgrades to
const TargetVersion = "1.0.0"

// defaultVersion is assumed when a document carries no version at all
const defaultVersion = "0.1.0"

// Result reports the outcome of a migration run. Snapshot is only set when
// Success is true; a failed chain discards partial progress.
type Result struct {
	Success  bool             `json:"success"`
	Version  string           `json:"version"`
	Changes  []string         `json:"changes"`
	Errors   []string         `json:"errors"`
	Snapshot *models.Snapshot `json:"-"`
}

type migration struct {
	version string
	apply   func(map[string]any) (map[string]any, error)
}

// migrations are applied in ascending version order; each entry upgrades a
// document to its version.
var migrations = []migration{
	{version: "0.5.0", apply: migrateTo050},
	{version: "0.9.0", apply: migrateTo090},
}

// MigrateData upgrades an older snapshot document to the current schema
// version, normalizing every record to the canonical shape. Documents
// already at the current version are decoded as-is.
func MigrateData(raw map[string]any) *Result {
	result := &Result{Changes: []string{}, Errors: []string{}}

	version := defaultVersion
	if v, ok := raw["version"].(string); ok && v != "" {
		version = v
	}
	result.Version = version

	doc := raw
	for _, m := range migrations {
		if CompareVersions(m.version, version) <= 0 || CompareVersions(m.version, TargetVersion) > 0 {
			continue
		}
		upgraded, err := m.apply(doc)
		if err != nil {
			result.Errors = append(result.Errors, fmt.Sprintf("Migration to %s failed: %v", m.version, err))
			return result
		}
		doc = upgraded
		version = m.version
		result.Changes = append(result.Changes, fmt.Sprintf("Migrated to version %s", m.version))
		log.Printf("MIGRATE: Applied migration to %s", m.version)
	}

	// Documents already at the target version pass through untouched
	var snap *models.Snapshot
	var err error
	if version == TargetVersion {
		snap, err = decodeSnapshot(doc)
		if err != nil {
			result.Errors = append(result.Errors, fmt.Sprintf("Decoding snapshot failed: %v", err))
			return result
		}
	} else {
		snap, err = migrateToLatest(doc)
		if err != nil {
			result.Errors = append(result.Errors, fmt.Sprintf("Normalization to %s failed: %v", TargetVersion, err))
			return result
		}
		result.Changes = append(result.Changes, fmt.Sprintf("Normalized to version %s", TargetVersion))
	}

	result.Success = true
	result.Version = TargetVersion
	result.Snapshot = snap
	return result
}

func decodeSnapshot(doc map[string]any) (*models.Snapshot, error) {
	buf, err := json.Marshal(doc)
	if err != nil {
		return nil, err
	}
	var snap models.Snapshot
	if err := json.Unmarshal(buf, &snap); err != nil {
		return nil, err
	}
	return &snap, nil
}

// migrateToLatest forces every record into the canonical v1.0.0 shape:
// identity fields generated when absent, optional fields filled with their
// documented defaults, metadata counts recomputed.
func migrateToLatest(doc map[string]any) (*models.Snapshot, error) {
	data, _ := doc["data"].(map[string]any)
	if data == nil {
		data = map[string]any{}
	}

	devices := asRecords(data["devices"])
	for _, d := range devices {
		fillID(d)
		setDefault(d, "enabled", true)
		setDefault(d, "groups", []any{})
		setDefault(d, "name", "")
		setDefault(d, "type", "")
	}
	automations := asRecords(data["automations"])
	for _, a := range automations {
		fillID(a)
		setDefault(a, "enabled", true)
		setDefault(a, "triggers", []any{})
		setDefault(a, "conditions", []any{})
		setDefault(a, "actions", []any{})
	}
	scenes := asRecords(data["scenes"])
	for _, s := range scenes {
		fillID(s)
		setDefault(s, "icon", "home")
		setDefault(s, "color", "#2196f3")
		setDefault(s, "actions", []any{})
		setDefault(s, "favorite", false)
	}

	settings, _ := data["settings"].(map[string]any)
	if settings == nil {
		settings = map[string]any{}
	}

	canonical := map[string]any{
		"version":   TargetVersion,
		"timestamp": doc["timestamp"],
		"data": map[string]any{
			"devices":     toAnySlice(devices),
			"automations": toAnySlice(automations),
			"scenes":      toAnySlice(scenes),
			"settings":    settings,
		},
		"metadata": map[string]any{
			"deviceCount":     len(devices),
			"automationCount": len(automations),
			"sceneCount":      len(scenes),
		},
	}

	return decodeSnapshot(canonical)
}

// asRecords filters an untyped array down to its object elements
func asRecords(v any) []map[string]any {
	arr, _ := v.([]any)
	records := make([]map[string]any, 0, len(arr))
	for _, item := range arr {
		if m, ok := item.(map[string]any); ok {
			records = append(records, m)
		}
	}
	return records
}

func toAnySlice(records []map[string]any) []any {
	out := make([]any, len(records))
	for i, r := range records {
		out[i] = r
	}
	return out
}

func fillID(record map[string]any) {
	if id, ok := record["id"].(string); !ok || id == "" {
		record["id"] = uuid.NewString()
	}
}

func setDefault(record map[string]any, key string, value any) {
	if record[key] == nil {
		record[key] = value
	}
}
