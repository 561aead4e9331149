package export

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"homevault/internal/models"

	"github.com/stretchr/testify/require"
)

type fakeStore struct {
	devices     []models.Device
	automations []models.Automation
	scenes      []models.Scene
	settings    map[string]any
	email       string
	emailErr    error
	listErr     error
}

func (f *fakeStore) ListDevices(ctx context.Context, userID string) ([]models.Device, error) {
	return f.devices, f.listErr
}

func (f *fakeStore) ListAutomations(ctx context.Context, userID string) ([]models.Automation, error) {
	return f.automations, f.listErr
}

func (f *fakeStore) ListScenes(ctx context.Context, userID string) ([]models.Scene, error) {
	return f.scenes, f.listErr
}

func (f *fakeStore) GetUserPreferences(ctx context.Context, userID string) (map[string]any, error) {
	return f.settings, f.listErr
}

func (f *fakeStore) GetUserEmail(ctx context.Context, userID string) (string, error) {
	return f.email, f.emailErr
}

func newTestManager(store *fakeStore) *Manager {
	m := NewManager(store, "homevault")
	m.now = func() time.Time { return time.Date(2025, 6, 15, 10, 30, 0, 0, time.UTC) }
	return m
}

func TestExportData(t *testing.T) {
	store := &fakeStore{
		devices: []models.Device{
			{ID: "d1", Name: "Lamp", Type: "light", MACAddress: "aa:bb"},
			{ID: "d2", Name: "Sensor", Type: "motion_sensor", MACAddress: "cc:dd"},
		},
		automations: []models.Automation{{ID: "a1", Name: "Evening"}},
		scenes:      []models.Scene{{ID: "s1", Name: "Movie night"}},
		settings:    map[string]any{"theme": "dark"},
		email:       "owner@example.com",
	}

	snap, err := newTestManager(store).ExportData(context.Background(), "u1", DefaultOptions())
	require.NoError(t, err)
	require.Equal(t, SchemaVersion, snap.Version)
	require.Equal(t, "2025-06-15T10:30:00Z", snap.Timestamp)
	require.Equal(t, 2, snap.Metadata.DeviceCount)
	require.Equal(t, 1, snap.Metadata.AutomationCount)
	require.Equal(t, 1, snap.Metadata.SceneCount)
	require.Equal(t, "owner@example.com", snap.Metadata.ExportedBy)
	require.Equal(t, "dark", snap.Data.Settings["theme"])
}

func TestExportDataEmptyStore(t *testing.T) {
	snap, err := newTestManager(&fakeStore{emailErr: errors.New("no such user")}).
		ExportData(context.Background(), "u1", DefaultOptions())
	require.NoError(t, err)
	require.NotNil(t, snap.Data.Devices)
	require.Empty(t, snap.Data.Devices)
	require.Zero(t, snap.Metadata.DeviceCount)
	require.Empty(t, snap.Metadata.ExportedBy, "identity lookup failure omits exportedBy")
}

func TestExportDataCategoryFlags(t *testing.T) {
	store := &fakeStore{
		devices:     []models.Device{{ID: "d1", Name: "Lamp"}},
		automations: []models.Automation{{ID: "a1", Name: "Evening"}},
	}
	opts := DefaultOptions()
	opts.IncludeAutomations = false

	snap, err := newTestManager(store).ExportData(context.Background(), "u1", opts)
	require.NoError(t, err)
	require.Len(t, snap.Data.Devices, 1)
	require.Empty(t, snap.Data.Automations)
	require.Zero(t, snap.Metadata.AutomationCount)
}

func TestExportDataStoreFailure(t *testing.T) {
	store := &fakeStore{listErr: errors.New("connection refused")}
	_, err := newTestManager(store).ExportData(context.Background(), "u1", DefaultOptions())
	require.Error(t, err)
	require.Contains(t, err.Error(), "export failed")
}

func TestExportToFileJSON(t *testing.T) {
	store := &fakeStore{devices: []models.Device{{ID: "d1", Name: "Lamp", Type: "light"}}}
	name, data, err := newTestManager(store).ExportToFile(context.Background(), "u1", "json", DefaultOptions())
	require.NoError(t, err)
	require.Equal(t, "homevault-export-2025-06-15.json", name)

	var snap models.Snapshot
	require.NoError(t, json.Unmarshal(data, &snap))
	require.Equal(t, 1, snap.Metadata.DeviceCount)
	require.True(t, strings.Contains(string(data), "\n  "), "JSON export should be pretty-printed")
}

func TestExportToFileCSV(t *testing.T) {
	store := &fakeStore{devices: []models.Device{{ID: "d1", Name: "Lamp", Type: "light"}}}
	name, data, err := newTestManager(store).ExportToFile(context.Background(), "u1", "csv", DefaultOptions())
	require.NoError(t, err)
	require.Equal(t, "homevault-devices-2025-06-15.csv", name)
	require.True(t, strings.HasPrefix(string(data), csvHeader))
}
