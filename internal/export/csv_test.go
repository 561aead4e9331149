package export

import (
	"strings"
	"testing"
	"time"

	"homevault/internal/models"
)

func TestEscapeCSV(t *testing.T) {
	cases := []struct {
		in, want string
	}{
		{"Kitchen Light", "Kitchen Light"},
		{`Kitchen, "Main"`, `"Kitchen, ""Main"""`},
		{"a,b", `"a,b"`},
		{`say "hi"`, `"say ""hi"""`},
		{"", ""},
	}
	for _, tc := range cases {
		if got := escapeCSV(tc.in); got != tc.want {
			t.Errorf("escapeCSV(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestDevicesToCSV(t *testing.T) {
	seen := time.Date(2025, 6, 1, 8, 30, 0, 0, time.UTC)
	devices := []models.Device{
		{
			Name:            `Kitchen, "Main"`,
			Type:            "light",
			IPAddress:       "192.168.1.20",
			MACAddress:      "aa:bb:cc:dd:ee:01",
			FirmwareVersion: "2.1.0",
			Location:        "Downstairs",
			Room:            "Kitchen",
			Enabled:         true,
			CreatedAt:       time.Date(2025, 1, 2, 12, 0, 0, 0, time.UTC),
			LastSeen:        &seen,
		},
		{
			Name:       "Hall Sensor",
			Type:       "motion_sensor",
			MACAddress: "aa:bb:cc:dd:ee:02",
			CreatedAt:  time.Date(2025, 2, 3, 9, 0, 0, 0, time.UTC),
		},
	}

	lines := strings.Split(strings.TrimRight(string(devicesToCSV(devices)), "\n"), "\n")
	if len(lines) != 3 {
		t.Fatalf("expected header and 2 rows, got %d lines", len(lines))
	}
	if lines[0] != csvHeader {
		t.Errorf("header = %q, want %q", lines[0], csvHeader)
	}
	if !strings.HasPrefix(lines[1], `"Kitchen, ""Main""",light,192.168.1.20,`) {
		t.Errorf("unexpected first row: %q", lines[1])
	}
	if !strings.HasSuffix(lines[1], "2025-06-01T08:30:00Z") {
		t.Errorf("first row should end with last_seen, got %q", lines[1])
	}
	// Device without last_seen leaves the final field empty
	if !strings.HasSuffix(lines[2], "2025-02-03T09:00:00Z,") {
		t.Errorf("second row should have an empty last_seen, got %q", lines[2])
	}
}
