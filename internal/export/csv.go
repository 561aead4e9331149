package export

import (
	"fmt"
	"strings"
	"time"

	"homevault/internal/models"
)

// csvHeader is the fixed column order of the devices CSV projection
const csvHeader = "name,type,ip_address,mac_address,firmware_version,location,room,enabled,created_at,last_seen"

func devicesToCSV(devices []models.Device) []byte {
	var b strings.Builder
	b.WriteString(csvHeader + "\n")
	for _, d := range devices {
		lastSeen := ""
		if d.LastSeen != nil {
			lastSeen = d.LastSeen.UTC().Format(time.RFC3339)
		}
		fields := []string{
			d.Name,
			d.Type,
			d.IPAddress,
			d.MACAddress,
			d.FirmwareVersion,
			d.Location,
			d.Room,
			fmt.Sprintf("%t", d.Enabled),
			d.CreatedAt.UTC().Format(time.RFC3339),
			lastSeen,
		}
		for i, f := range fields {
			fields[i] = escapeCSV(f)
		}
		b.WriteString(strings.Join(fields, ",") + "\n")
	}
	return []byte(b.String())
}

// escapeCSV quotes a field only when it contains a comma or a double quote,
// doubling any internal quotes.
func escapeCSV(field string) string {
	if !strings.ContainsAny(field, `,"`) {
		return field
	}
	return `"` + strings.ReplaceAll(field, `"`, `""`) + `"`
}
