package importer

import (
	"context"
	"fmt"

	"homevault/internal/models"
)

// DeviceConflict pairs an existing device with an incoming one that differs
// in at least one user-visible field.
type DeviceConflict struct {
	Existing models.Device `json:"existing"`
	Incoming models.Device `json:"incoming"`
	Fields   []string      `json:"fields"`
}

// DevicePreview partitions incoming devices against the current store state
type DevicePreview struct {
	New       []models.Device  `json:"new"`
	Existing  []models.Device  `json:"existing"`
	Conflicts []DeviceConflict `json:"conflicts"`
}

// AutomationPreview partitions incoming automations
type AutomationPreview struct {
	New      []models.Automation `json:"new"`
	Existing []models.Automation `json:"existing"`
}

// ScenePreview partitions incoming scenes
type ScenePreview struct {
	New      []models.Scene `json:"new"`
	Existing []models.Scene `json:"existing"`
}

// Preview is the read-only reconciliation result of PreviewImport
type Preview struct {
	Devices     DevicePreview     `json:"devices"`
	Automations AutomationPreview `json:"automations"`
	Scenes      ScenePreview      `json:"scenes"`
}

// PreviewImport partitions each category of the snapshot into new and
// existing records by natural key, without mutating storage. Devices matched
// by key are additionally diffed field by field.
func (m *Manager) PreviewImport(ctx context.Context, snap *models.Snapshot, userID string) (*Preview, error) {
	if snap == nil {
		return nil, fmt.Errorf("invalid export data format")
	}

	preview := &Preview{
		Devices:     DevicePreview{New: []models.Device{}, Existing: []models.Device{}, Conflicts: []DeviceConflict{}},
		Automations: AutomationPreview{New: []models.Automation{}, Existing: []models.Automation{}},
		Scenes:      ScenePreview{New: []models.Scene{}, Existing: []models.Scene{}},
	}

	devices, err := m.store.ListDevices(ctx, userID)
	if err != nil {
		return nil, err
	}
	byMAC := make(map[string]models.Device, len(devices))
	for _, d := range devices {
		byMAC[d.MACAddress] = d
	}
	for _, incoming := range snap.Data.Devices {
		current, found := byMAC[incoming.MACAddress]
		if !found {
			preview.Devices.New = append(preview.Devices.New, incoming)
			continue
		}
		preview.Devices.Existing = append(preview.Devices.Existing, incoming)
		if fields := diffDevice(current, incoming); len(fields) > 0 {
			preview.Devices.Conflicts = append(preview.Devices.Conflicts, DeviceConflict{
				Existing: current,
				Incoming: incoming,
				Fields:   fields,
			})
		}
	}

	automations, err := m.store.ListAutomations(ctx, userID)
	if err != nil {
		return nil, err
	}
	automationNames := make(map[string]bool, len(automations))
	for _, a := range automations {
		automationNames[a.Name] = true
	}
	for _, incoming := range snap.Data.Automations {
		if automationNames[incoming.Name] {
			preview.Automations.Existing = append(preview.Automations.Existing, incoming)
		} else {
			preview.Automations.New = append(preview.Automations.New, incoming)
		}
	}

	scenes, err := m.store.ListScenes(ctx, userID)
	if err != nil {
		return nil, err
	}
	sceneNames := make(map[string]bool, len(scenes))
	for _, s := range scenes {
		sceneNames[s.Name] = true
	}
	for _, incoming := range snap.Data.Scenes {
		if sceneNames[incoming.Name] {
			preview.Scenes.Existing = append(preview.Scenes.Existing, incoming)
		} else {
			preview.Scenes.New = append(preview.Scenes.New, incoming)
		}
	}

	return preview, nil
}

func diffDevice(existing, incoming models.Device) []string {
	var fields []string
	if existing.Name != incoming.Name {
		fields = append(fields, "name")
	}
	if existing.IPAddress != incoming.IPAddress {
		fields = append(fields, "ip_address")
	}
	if existing.Location != incoming.Location {
		fields = append(fields, "location")
	}
	if existing.Room != incoming.Room {
		fields = append(fields, "room")
	}
	if existing.Enabled != incoming.Enabled {
		fields = append(fields, "enabled")
	}
	return fields
}
