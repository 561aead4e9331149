package export

import (
	"encoding/json"
	"errors"

	"homevault/internal/models"
)

// ValidateExportData reports whether v looks like a snapshot document:
// version and timestamp present, and data.devices/automations/scenes each
// array-typed. Individual records are not checked at this stage.
func ValidateExportData(v any) bool {
	m, ok := v.(map[string]any)
	if !ok {
		return false
	}
	if m["version"] == nil || m["timestamp"] == nil {
		return false
	}
	data, ok := m["data"].(map[string]any)
	if !ok {
		return false
	}
	for _, key := range []string{"devices", "automations", "scenes"} {
		if _, ok := data[key].([]any); !ok {
			return false
		}
	}
	return true
}

// ErrInvalidSnapshot is returned when a payload fails structural validation
var ErrInvalidSnapshot = errors.New("invalid export data format")

// ParseSnapshot parses raw JSON, validates it structurally, and decodes it
// into a typed snapshot. The generic form is also returned so callers can
// hand pre-1.0.0 documents to the migration chain.
func ParseSnapshot(raw []byte) (*models.Snapshot, map[string]any, error) {
	var generic map[string]any
	if err := json.Unmarshal(raw, &generic); err != nil {
		return nil, nil, err
	}
	if !ValidateExportData(generic) {
		return nil, nil, ErrInvalidSnapshot
	}
	var snap models.Snapshot
	if err := json.Unmarshal(raw, &snap); err != nil {
		return nil, nil, err
	}
	return &snap, generic, nil
}
