package migrate

import (
	"testing"

	"homevault/internal/models"
)

func TestCompareVersions(t *testing.T) {
	cases := []struct {
		a, b string
		want int
	}{
		{"0.1.0", "1.0.0", -1},
		{"1.0.0", "0.1.0", 1},
		{"1.0.0", "1.0.0", 0},
		{"0.9.0", "0.10.0", -1},
		{"0.10.0", "0.9.0", 1},
		{"1.0", "1.0.0", 0},
		{"1", "1.0.0", 0},
		{"2.0.0", "1.9.9", 1},
	}
	for _, c := range cases {
		if got := CompareVersions(c.a, c.b); got != c.want {
			t.Errorf("CompareVersions(%q, %q) = %d, want %d", c.a, c.b, got, c.want)
		}
	}
}

func TestMigrateDataFromOldest(t *testing.T) {
	raw := map[string]any{
		"version":   "0.1.0",
		"timestamp": "2024-01-01T00:00:00Z",
		"data": map[string]any{
			"devices": []any{
				map[string]any{
					"name":   "Heater",
					"type":   "thermostat",
					"config": map[string]any{"power": "900W"},
					"ip":     "192.168.1.20",
				},
			},
			"automations": []any{
				map[string]any{
					"name": "Morning warmup",
					"rules": map[string]any{
						"triggers": []any{map[string]any{"type": "time", "at": "06:30"}},
						"actions":  []any{map[string]any{"action": "set_state"}},
					},
				},
			},
			"scenes": []any{
				map[string]any{"name": "Cozy"},
			},
		},
	}

	result := MigrateData(raw)
	if !result.Success {
		t.Fatalf("migration failed: %v", result.Errors)
	}
	if result.Version != TargetVersion {
		t.Errorf("result version = %q, want %q", result.Version, TargetVersion)
	}
	if len(result.Changes) != 3 {
		t.Errorf("changes = %v, want two migrations plus normalization", result.Changes)
	}

	snap := result.Snapshot
	if snap == nil {
		t.Fatal("successful migration returned no snapshot")
	}
	if snap.Version != TargetVersion {
		t.Errorf("snapshot version = %q, want %q", snap.Version, TargetVersion)
	}

	if len(snap.Data.Devices) != 1 {
		t.Fatalf("devices = %d, want 1", len(snap.Data.Devices))
	}
	d := snap.Data.Devices[0]
	if d.ID == "" {
		t.Error("migrated device has no generated id")
	}
	if !d.Enabled {
		t.Error("migrated device should default to enabled")
	}
	if d.Groups == nil {
		t.Error("migrated device should carry an empty groups array")
	}
	if d.IPAddress != "192.168.1.20" {
		t.Errorf("ip_address = %q, legacy ip field not renamed", d.IPAddress)
	}
	if d.Metadata["power"] != "900W" {
		t.Errorf("metadata = %v, legacy config blob not merged", d.Metadata)
	}

	if len(snap.Data.Automations) != 1 {
		t.Fatalf("automations = %d, want 1", len(snap.Data.Automations))
	}
	a := snap.Data.Automations[0]
	if len(a.Triggers) != 1 || a.Triggers[0].At != "06:30" {
		t.Errorf("triggers = %v, legacy rules blob not split", a.Triggers)
	}
	if a.Conditions == nil {
		t.Error("migrated automation should carry an empty conditions array")
	}

	s := snap.Data.Scenes[0]
	if s.Icon != "home" || s.Color != "#2196f3" {
		t.Errorf("scene defaults not applied: icon=%q color=%q", s.Icon, s.Color)
	}

	meta := snap.Metadata
	if meta.DeviceCount != 1 || meta.AutomationCount != 1 || meta.SceneCount != 1 {
		t.Errorf("metadata counts not recomputed: %+v", meta)
	}
}

func TestMigrateDataMissingVersion(t *testing.T) {
	raw := map[string]any{
		"timestamp": "2024-01-01T00:00:00Z",
		"data": map[string]any{
			"devices": []any{map[string]any{"name": "Plug", "type": "smart_plug"}},
		},
	}
	result := MigrateData(raw)
	if !result.Success {
		t.Fatalf("migration failed: %v", result.Errors)
	}
	// No version means the full chain from the oldest known schema runs
	if len(result.Changes) != 3 {
		t.Errorf("changes = %v, want full chain", result.Changes)
	}
}

func TestMigrateDataAlreadyCurrent(t *testing.T) {
	raw := map[string]any{
		"version":   TargetVersion,
		"timestamp": "2024-01-01T00:00:00Z",
		"data": map[string]any{
			"devices": []any{map[string]any{"id": "d1", "name": "Plug", "type": "smart_plug", "enabled": false}},
			"scenes":  []any{map[string]any{"id": "s1", "name": "Movie"}},
		},
		"metadata": map[string]any{"deviceCount": 1, "sceneCount": 1},
	}
	result := MigrateData(raw)
	if !result.Success {
		t.Fatalf("migration failed: %v", result.Errors)
	}
	if len(result.Changes) != 0 {
		t.Errorf("current document should migrate without changes, got %v", result.Changes)
	}
	// Current-version documents pass through as-is: no rewriting
	d := result.Snapshot.Data.Devices[0]
	if d.Enabled {
		t.Error("explicit enabled=false must be kept")
	}
	if d.Groups != nil {
		t.Errorf("groups = %v, current document must not get defaults injected", d.Groups)
	}
	if got := result.Snapshot.Data.Scenes[0].Icon; got != "" {
		t.Errorf("icon = %q, current document must not get defaults injected", got)
	}
}

func TestMigrateDataIntermediateVersion(t *testing.T) {
	raw := map[string]any{
		"version":   "0.5.0",
		"timestamp": "2024-01-01T00:00:00Z",
		"data": map[string]any{
			"automations": []any{
				map[string]any{
					"name":  "Night lock",
					"rules": map[string]any{"actions": []any{map[string]any{"action": "lock"}}},
				},
			},
		},
	}
	result := MigrateData(raw)
	if !result.Success {
		t.Fatalf("migration failed: %v", result.Errors)
	}
	// Only the 0.9.0 step plus normalization apply
	if len(result.Changes) != 2 {
		t.Errorf("changes = %v, want 0.9.0 step plus normalization", result.Changes)
	}
	a := result.Snapshot.Data.Automations[0]
	if len(a.Actions) != 1 {
		t.Errorf("actions = %v, rules blob not split", a.Actions)
	}
}

func TestMigrateDataAbortsOnBrokenDocument(t *testing.T) {
	result := MigrateData(map[string]any{"version": "0.1.0"})
	if result.Success {
		t.Fatal("document without a data object must fail")
	}
	if len(result.Errors) == 0 {
		t.Fatal("failed migration reported no errors")
	}
	if result.Snapshot != nil {
		t.Error("failed migration must not expose partial progress")
	}
}

func TestValidateMigratedData(t *testing.T) {
	snap := &models.Snapshot{
		Version: TargetVersion,
		Data: models.SnapshotData{
			Devices: []models.Device{
				{ID: "d1", Name: "Lamp", Type: "light"},
				{ID: "", Name: "", Type: "light"},
			},
			Automations: []models.Automation{
				{ID: "a1", Name: "Evening"},
			},
			Scenes: []models.Scene{
				{ID: "s1", Name: "Movie", Actions: []models.ActionSpec{}},
			},
		},
	}
	defects := ValidateMigratedData(snap)
	// device 1: missing id, missing name; automation 0: nil triggers, nil actions
	if len(defects) != 4 {
		t.Errorf("defects = %v, want 4", defects)
	}

	if got := ValidateMigratedData(nil); len(got) != 1 {
		t.Errorf("nil snapshot defects = %v", got)
	}

	sound := &models.Snapshot{
		Version: TargetVersion,
		Data: models.SnapshotData{
			Devices: []models.Device{{ID: "d1", Name: "Lamp", Type: "light"}},
			Automations: []models.Automation{
				{ID: "a1", Name: "Evening", Triggers: []models.TriggerSpec{}, Actions: []models.ActionSpec{}},
			},
		},
	}
	if got := ValidateMigratedData(sound); len(got) != 0 {
		t.Errorf("sound snapshot reported defects: %v", got)
	}
}
