package telemetry

import (
	"context"
	"encoding/json"
	"log"
	"strings"
	"time"

	"homevault/internal/models"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/google/uuid"
)

// stateTopic is the wildcard devices publish their state on
const stateTopic = "devices/+/state"

// Store is the record store the ingestor writes telemetry into
type Store interface {
	GetDeviceByID(ctx context.Context, id string) (*models.Device, error)
	InsertTelemetry(ctx context.Context, t *models.TelemetryEntry) error
	TouchDeviceLastSeen(ctx context.Context, id string) error
}

// Ingestor turns device MQTT state messages into telemetry log rows
type Ingestor struct {
	store Store
}

// NewIngestor creates a telemetry ingestor
func NewIngestor(store Store) *Ingestor {
	return &Ingestor{store: store}
}

// Start subscribes to device state topics
func (i *Ingestor) Start(client mqtt.Client) error {
	token := client.Subscribe(stateTopic, 1, i.handleState)
	if token.Wait() && token.Error() != nil {
		return token.Error()
	}
	log.Printf("TELEMETRY: Subscribed to %s", stateTopic)
	return nil
}

func (i *Ingestor) handleState(client mqtt.Client, msg mqtt.Message) {
	deviceID := parseDeviceID(msg.Topic())
	if deviceID == "" {
		log.Printf("TELEMETRY: Ignoring message on unexpected topic %s", msg.Topic())
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	device, err := i.store.GetDeviceByID(ctx, deviceID)
	if err != nil {
		log.Printf("TELEMETRY: Unknown device %s: %v", deviceID, err)
		return
	}

	entry := &models.TelemetryEntry{
		ID:        uuid.NewString(),
		DeviceID:  deviceID,
		UserID:    device.UserID,
		Event:     eventFromPayload(msg.Payload()),
		State:     json.RawMessage(msg.Payload()),
		Timestamp: time.Now(),
	}
	if err := i.store.InsertTelemetry(ctx, entry); err != nil {
		log.Printf("TELEMETRY: Failed to log state for device %s: %v", deviceID, err)
		return
	}
	if err := i.store.TouchDeviceLastSeen(ctx, deviceID); err != nil {
		log.Printf("TELEMETRY: Failed to refresh last_seen for device %s: %v", deviceID, err)
	}
}

// parseDeviceID extracts the device id from a devices/<id>/state topic
func parseDeviceID(topic string) string {
	parts := strings.Split(topic, "/")
	if len(parts) != 3 || parts[0] != "devices" || parts[2] != "state" {
		return ""
	}
	return parts[1]
}

// eventFromPayload classifies a state message as "on", "off" or "state"
func eventFromPayload(payload []byte) string {
	var state map[string]any
	if err := json.Unmarshal(payload, &state); err != nil {
		return "state"
	}
	if on, ok := state["on"].(bool); ok {
		if on {
			return "on"
		}
		return "off"
	}
	return "state"
}
