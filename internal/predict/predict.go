package predict

import (
	"context"
	"fmt"
	"log"
	"sort"
	"strings"
	"time"

	"homevault/internal/models"
)

const (
	windowDays        = 30
	usageThreshold    = 0.8 // fraction of window days a device-hour must recur
	nightStartHour    = 2
	nightEndHour      = 5
	nightRowThreshold = 5
	inactiveAfterDays = 7
	longOnDuration    = 4 * time.Hour
	longOnThreshold   = 3
	firmwareAgeDays   = 90
)

// Notification is an advisory record derived from telemetry analysis.
// Notifications are generated fresh on every call and are not persisted.
type Notification struct {
	Type            string           `json:"type"` // "prediction", "anomaly", "pattern", "optimization"
	Title           string           `json:"title"`
	Message         string           `json:"message"`
	Confidence      float64          `json:"confidence"` // fixed per rule, in [0,1]
	Trigger         Trigger          `json:"trigger"`
	SuggestedAction *SuggestedAction `json:"suggested_action,omitempty"`
}

// Trigger describes what the notification reacted to
type Trigger struct {
	Type      string `json:"type"`
	Condition string `json:"condition"`
}

// SuggestedAction describes a follow-up the user could take
type SuggestedAction struct {
	Type     string         `json:"type"`
	DeviceID string         `json:"device_id,omitempty"`
	Params   map[string]any `json:"params,omitempty"`
}

// Store provides the telemetry log
type Store interface {
	ListTelemetrySince(ctx context.Context, userID string, since time.Time) ([]models.TelemetryEntry, error)
}

// Engine scans telemetry history and derives candidate notifications
type Engine struct {
	store Store
	now   func() time.Time
}

// NewEngine creates a predictive notification engine
func NewEngine(store Store) *Engine {
	return &Engine{store: store, now: time.Now}
}

// Analyze pulls the most recent 30-day telemetry window for the user, runs
// every analysis, and returns the combined notifications ordered by
// descending confidence. With no telemetry only the static behavioral
// heuristics run.
func (e *Engine) Analyze(ctx context.Context, devices []models.Device, automations []models.Automation, userID string) ([]Notification, error) {
	now := e.now()
	entries, err := e.store.ListTelemetrySince(ctx, userID, now.AddDate(0, 0, -windowDays))
	if err != nil {
		return nil, fmt.Errorf("load telemetry: %w", err)
	}

	names := make(map[string]string, len(devices))
	for _, d := range devices {
		names[d.ID] = d.Name
	}
	deviceName := func(id string) string {
		if name, ok := names[id]; ok {
			return name
		}
		return id
	}

	notifications := []Notification{}
	if len(entries) > 0 {
		notifications = append(notifications, detectUsagePatterns(entries, deviceName)...)
		notifications = append(notifications, detectAnomalies(entries, deviceName, now)...)
		notifications = append(notifications, detectOptimizations(entries, deviceName)...)
		notifications = append(notifications, predictMaintenance(entries, deviceName, now)...)
	}
	notifications = append(notifications, staticSuggestions(devices, automations)...)

	sort.SliceStable(notifications, func(i, j int) bool {
		return notifications[i].Confidence > notifications[j].Confidence
	})
	log.Printf("PREDICT: Produced %d notification(s) from %d telemetry row(s)", len(notifications), len(entries))
	return notifications, nil
}

// detectUsagePatterns finds device-hour buckets recurring on more than 80%
// of the window days and suggests a time-triggered automation.
func detectUsagePatterns(entries []models.TelemetryEntry, deviceName func(string) string) []Notification {
	type bucket struct {
		deviceID string
		hour     int
	}
	counts := map[bucket]int{}
	for _, t := range entries {
		counts[bucket{t.DeviceID, t.Timestamp.Hour()}]++
	}

	// Deterministic output order for equal-confidence buckets
	buckets := make([]bucket, 0, len(counts))
	for b := range counts {
		buckets = append(buckets, b)
	}
	sort.Slice(buckets, func(i, j int) bool {
		if buckets[i].deviceID != buckets[j].deviceID {
			return buckets[i].deviceID < buckets[j].deviceID
		}
		return buckets[i].hour < buckets[j].hour
	})

	var out []Notification
	for _, b := range buckets {
		count := counts[b]
		fraction := float64(count) / float64(windowDays)
		if fraction <= usageThreshold {
			continue
		}
		if fraction > 1 {
			fraction = 1
		}
		name := deviceName(b.deviceID)
		out = append(out, Notification{
			Type:       "pattern",
			Title:      "Recurring usage detected",
			Message:    fmt.Sprintf("%s is used around %02d:00 on most days (%d times in the last %d days). Want an automation for that?", name, b.hour, count, windowDays),
			Confidence: fraction,
			Trigger:    Trigger{Type: "time", Condition: fmt.Sprintf("hour == %d", b.hour)},
			SuggestedAction: &SuggestedAction{
				Type:     "create_automation",
				DeviceID: b.deviceID,
				Params:   map[string]any{"at": fmt.Sprintf("%02d:00", b.hour)},
			},
		})
	}
	return out
}

// detectAnomalies flags unusual nighttime activity and devices that have
// gone quiet.
func detectAnomalies(entries []models.TelemetryEntry, deviceName func(string) string, now time.Time) []Notification {
	var out []Notification

	nightRows := 0
	for _, t := range entries {
		h := t.Timestamp.Hour()
		if h >= nightStartHour && h <= nightEndHour {
			nightRows++
		}
	}
	if nightRows > nightRowThreshold {
		out = append(out, Notification{
			Type:       "anomaly",
			Title:      "Unusual nighttime activity",
			Message:    fmt.Sprintf("Detected %d device events between %d:00 and %d:59 over the last %d days.", nightRows, nightStartHour, nightEndHour, windowDays),
			Confidence: 0.9,
			Trigger:    Trigger{Type: "telemetry", Condition: fmt.Sprintf("nighttime events > %d", nightRowThreshold)},
		})
	}

	// Entries are newest first, so the first row seen per device is its
	// most recent one.
	lastSeen := map[string]time.Time{}
	for _, t := range entries {
		if _, ok := lastSeen[t.DeviceID]; !ok {
			lastSeen[t.DeviceID] = t.Timestamp
		}
	}
	ids := make([]string, 0, len(lastSeen))
	for id := range lastSeen {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	for _, id := range ids {
		days := int(now.Sub(lastSeen[id]).Hours() / 24)
		if days <= inactiveAfterDays {
			continue
		}
		out = append(out, Notification{
			Type:       "anomaly",
			Title:      "Device inactive",
			Message:    fmt.Sprintf("%s has not reported for %d days. It may be offline or unplugged.", deviceName(id), days),
			Confidence: 0.8,
			Trigger:    Trigger{Type: "telemetry", Condition: fmt.Sprintf("inactive > %d days", inactiveAfterDays)},
		})
	}
	return out
}

// detectOptimizations finds devices repeatedly left on for hours and
// suggests an auto-off timer.
func detectOptimizations(entries []models.TelemetryEntry, deviceName func(string) string) []Notification {
	// Walk oldest to newest so an "on" pairs with the next "off".
	pendingOn := map[string]time.Time{}
	longRuns := map[string]int{}
	totals := map[string]time.Duration{}
	for i := len(entries) - 1; i >= 0; i-- {
		t := entries[i]
		switch t.Event {
		case "on":
			pendingOn[t.DeviceID] = t.Timestamp
		case "off":
			onAt, ok := pendingOn[t.DeviceID]
			if !ok {
				continue
			}
			delete(pendingOn, t.DeviceID)
			if d := t.Timestamp.Sub(onAt); d > longOnDuration {
				longRuns[t.DeviceID]++
				totals[t.DeviceID] += d
			}
		}
	}

	ids := make([]string, 0, len(longRuns))
	for id := range longRuns {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	var out []Notification
	for _, id := range ids {
		count := longRuns[id]
		if count <= longOnThreshold {
			continue
		}
		avgHours := totals[id].Hours() / float64(count)
		out = append(out, Notification{
			Type:       "optimization",
			Title:      "Device left on for long stretches",
			Message:    fmt.Sprintf("%s stayed on for over %.0f hours %d times recently (avg %.1f h). An auto-off timer could save energy.", deviceName(id), longOnDuration.Hours(), count, avgHours),
			Confidence: 0.85,
			Trigger:    Trigger{Type: "telemetry", Condition: fmt.Sprintf("on-duration > %.0fh more than %d times", longOnDuration.Hours(), longOnThreshold)},
			SuggestedAction: &SuggestedAction{
				Type:     "create_timer",
				DeviceID: id,
				Params:   map[string]any{"action": "turn_off", "after_hours": longOnDuration.Hours()},
			},
		})
	}
	return out
}

// predictMaintenance suggests a firmware check for devices with a long
// telemetry history.
func predictMaintenance(entries []models.TelemetryEntry, deviceName func(string) string, now time.Time) []Notification {
	firstSeen := map[string]time.Time{}
	for _, t := range entries {
		// Newest first: the last row seen per device is its earliest.
		firstSeen[t.DeviceID] = t.Timestamp
	}
	ids := make([]string, 0, len(firstSeen))
	for id := range firstSeen {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	var out []Notification
	for _, id := range ids {
		days := int(now.Sub(firstSeen[id]).Hours() / 24)
		if days <= firmwareAgeDays {
			continue
		}
		out = append(out, Notification{
			Type:       "prediction",
			Title:      "Firmware check due",
			Message:    fmt.Sprintf("%s has been running for %d days. Check for a firmware update.", deviceName(id), days),
			Confidence: 0.7,
			Trigger:    Trigger{Type: "telemetry", Condition: fmt.Sprintf("history age > %d days", firmwareAgeDays)},
			SuggestedAction: &SuggestedAction{
				Type:     "check_firmware",
				DeviceID: id,
			},
		})
	}
	return out
}

// staticSuggestions runs behavioral heuristics that need no telemetry
func staticSuggestions(devices []models.Device, automations []models.Automation) []Notification {
	var out []Notification

	hasMotion := false
	hasLight := false
	powerDevices := 0
	for _, d := range devices {
		t := strings.ToLower(d.Type)
		if strings.Contains(t, "motion") {
			hasMotion = true
		}
		if strings.Contains(t, "light") {
			hasLight = true
		}
		if strings.Contains(t, "power") || strings.Contains(t, "plug") {
			powerDevices++
		}
	}

	if hasMotion && hasLight && len(automations) == 0 {
		out = append(out, Notification{
			Type:       "prediction",
			Title:      "Motion-activated lighting",
			Message:    "You have motion sensors and lights but no automations. Motion-activated lighting is a popular starting point.",
			Confidence: 0.95,
			Trigger:    Trigger{Type: "setup", Condition: "motion + light, no automations"},
			SuggestedAction: &SuggestedAction{
				Type: "create_automation",
				Params: map[string]any{
					"trigger": "motion",
					"action":  "lights_on",
				},
			},
		})
	}
	if powerDevices > 3 {
		out = append(out, Notification{
			Type:       "prediction",
			Title:      "Daily energy report",
			Message:    fmt.Sprintf("You monitor power on %d devices. A daily energy report can summarize their usage.", powerDevices),
			Confidence: 0.8,
			Trigger:    Trigger{Type: "setup", Condition: "power-monitoring devices > 3"},
			SuggestedAction: &SuggestedAction{
				Type:   "enable_report",
				Params: map[string]any{"report": "daily_energy"},
			},
		})
	}
	return out
}
