package db

import (
	"context"

	"homevault/internal/models"
)

const deviceColumns = `id, name, type, ip_address, mac_address, firmware_version, enabled,
	location, room, groups, metadata, credentials, user_id, created_at, updated_at, last_seen`

func scanDevice(row interface{ Scan(...any) error }) (models.Device, error) {
	var d models.Device
	err := row.Scan(&d.ID, &d.Name, &d.Type, &d.IPAddress, &d.MACAddress, &d.FirmwareVersion,
		&d.Enabled, &d.Location, &d.Room, &d.Groups, &d.Metadata, &d.Credentials,
		&d.UserID, &d.CreatedAt, &d.UpdatedAt, &d.LastSeen)
	return d, err
}

// ListDevices fetches all devices for a user ordered by name
func (d *DB) ListDevices(ctx context.Context, userID string) ([]models.Device, error) {
	rows, err := d.pool.Query(ctx, "SELECT "+deviceColumns+" FROM devices WHERE user_id = $1 ORDER BY name", userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var devices []models.Device
	for rows.Next() {
		dev, err := scanDevice(rows)
		if err != nil {
			return nil, err
		}
		devices = append(devices, dev)
	}
	return devices, rows.Err()
}

// GetDeviceByID fetches a single device
func (d *DB) GetDeviceByID(ctx context.Context, id string) (*models.Device, error) {
	dev, err := scanDevice(d.pool.QueryRow(ctx, "SELECT "+deviceColumns+" FROM devices WHERE id = $1", id))
	if err != nil {
		return nil, err
	}
	return &dev, nil
}

// InsertDevice creates a new device row
func (d *DB) InsertDevice(ctx context.Context, dev *models.Device) error {
	_, err := d.pool.Exec(ctx,
		`INSERT INTO devices (id, name, type, ip_address, mac_address, firmware_version, enabled,
			location, room, groups, metadata, credentials, user_id, created_at, updated_at, last_seen)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)`,
		dev.ID, dev.Name, dev.Type, dev.IPAddress, dev.MACAddress, dev.FirmwareVersion, dev.Enabled,
		dev.Location, dev.Room, dev.Groups, dev.Metadata, dev.Credentials,
		dev.UserID, dev.CreatedAt, dev.UpdatedAt, dev.LastSeen)
	return err
}

// UpdateDevice updates a device row in place, preserving its identity
func (d *DB) UpdateDevice(ctx context.Context, dev *models.Device) error {
	_, err := d.pool.Exec(ctx,
		`UPDATE devices SET name = $2, type = $3, ip_address = $4, firmware_version = $5, enabled = $6,
			location = $7, room = $8, groups = $9, metadata = $10, credentials = $11, updated_at = $12
		 WHERE id = $1`,
		dev.ID, dev.Name, dev.Type, dev.IPAddress, dev.FirmwareVersion, dev.Enabled,
		dev.Location, dev.Room, dev.Groups, dev.Metadata, dev.Credentials, dev.UpdatedAt)
	return err
}

// TouchDeviceLastSeen refreshes a device's last_seen timestamp
func (d *DB) TouchDeviceLastSeen(ctx context.Context, id string) error {
	_, err := d.pool.Exec(ctx, "UPDATE devices SET last_seen = NOW() WHERE id = $1", id)
	return err
}

// ListAutomations fetches all automations for a user ordered by name
func (d *DB) ListAutomations(ctx context.Context, userID string) ([]models.Automation, error) {
	rows, err := d.pool.Query(ctx,
		`SELECT id, name, description, enabled, triggers, conditions, actions,
			last_triggered, next_trigger, user_id, created_at, updated_at
		 FROM automations WHERE user_id = $1 ORDER BY name`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var automations []models.Automation
	for rows.Next() {
		var a models.Automation
		if err := rows.Scan(&a.ID, &a.Name, &a.Description, &a.Enabled, &a.Triggers, &a.Conditions,
			&a.Actions, &a.LastTriggered, &a.NextTrigger, &a.UserID, &a.CreatedAt, &a.UpdatedAt); err != nil {
			return nil, err
		}
		automations = append(automations, a)
	}
	return automations, rows.Err()
}

// InsertAutomation creates a new automation row
func (d *DB) InsertAutomation(ctx context.Context, a *models.Automation) error {
	_, err := d.pool.Exec(ctx,
		`INSERT INTO automations (id, name, description, enabled, triggers, conditions, actions,
			last_triggered, next_trigger, user_id, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`,
		a.ID, a.Name, a.Description, a.Enabled, a.Triggers, a.Conditions, a.Actions,
		a.LastTriggered, a.NextTrigger, a.UserID, a.CreatedAt, a.UpdatedAt)
	return err
}

// UpdateAutomation updates an automation row in place
func (d *DB) UpdateAutomation(ctx context.Context, a *models.Automation) error {
	_, err := d.pool.Exec(ctx,
		`UPDATE automations SET description = $2, enabled = $3, triggers = $4, conditions = $5,
			actions = $6, updated_at = $7
		 WHERE id = $1`,
		a.ID, a.Description, a.Enabled, a.Triggers, a.Conditions, a.Actions, a.UpdatedAt)
	return err
}

// ListScenes fetches all scenes for a user ordered by name
func (d *DB) ListScenes(ctx context.Context, userID string) ([]models.Scene, error) {
	rows, err := d.pool.Query(ctx,
		`SELECT id, name, description, icon, color, actions, favorite, user_id, created_at, updated_at
		 FROM scenes WHERE user_id = $1 ORDER BY name`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var scenes []models.Scene
	for rows.Next() {
		var s models.Scene
		if err := rows.Scan(&s.ID, &s.Name, &s.Description, &s.Icon, &s.Color, &s.Actions,
			&s.Favorite, &s.UserID, &s.CreatedAt, &s.UpdatedAt); err != nil {
			return nil, err
		}
		scenes = append(scenes, s)
	}
	return scenes, rows.Err()
}

// InsertScene creates a new scene row
func (d *DB) InsertScene(ctx context.Context, s *models.Scene) error {
	_, err := d.pool.Exec(ctx,
		`INSERT INTO scenes (id, name, description, icon, color, actions, favorite, user_id, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		s.ID, s.Name, s.Description, s.Icon, s.Color, s.Actions, s.Favorite, s.UserID, s.CreatedAt, s.UpdatedAt)
	return err
}

// UpdateScene updates a scene row in place
func (d *DB) UpdateScene(ctx context.Context, s *models.Scene) error {
	_, err := d.pool.Exec(ctx,
		`UPDATE scenes SET description = $2, icon = $3, color = $4, actions = $5, favorite = $6, updated_at = $7
		 WHERE id = $1`,
		s.ID, s.Description, s.Icon, s.Color, s.Actions, s.Favorite, s.UpdatedAt)
	return err
}

// GetUserPreferences fetches a user's settings blob, nil if none saved
func (d *DB) GetUserPreferences(ctx context.Context, userID string) (map[string]any, error) {
	var prefs map[string]any
	err := d.pool.QueryRow(ctx, "SELECT settings FROM user_preferences WHERE user_id = $1", userID).Scan(&prefs)
	if err != nil {
		if isNoRows(err) {
			return nil, nil
		}
		return nil, err
	}
	return prefs, nil
}

// UpsertUserPreferences writes a user's settings blob keyed by owner
func (d *DB) UpsertUserPreferences(ctx context.Context, userID string, settings map[string]any) error {
	_, err := d.pool.Exec(ctx,
		`INSERT INTO user_preferences (user_id, settings, updated_at) VALUES ($1, $2, NOW())
		 ON CONFLICT (user_id) DO UPDATE SET settings = $2, updated_at = NOW()`,
		userID, settings)
	return err
}

// GetUserEmail fetches a user's email address
func (d *DB) GetUserEmail(ctx context.Context, userID string) (string, error) {
	var email string
	err := d.pool.QueryRow(ctx, "SELECT email FROM users WHERE id = $1", userID).Scan(&email)
	return email, err
}
