package migrate

import (
	"fmt"
	"strconv"
	"strings"

	"homevault/internal/models"
)

// ValidateMigratedData returns a list of human-readable structural defects.
// An empty list means the snapshot is sound for downstream use.
func ValidateMigratedData(snap *models.Snapshot) []string {
	var defects []string
	if snap == nil {
		return []string{"snapshot is missing"}
	}
	for i, d := range snap.Data.Devices {
		if d.ID == "" {
			defects = append(defects, fmt.Sprintf("device %d is missing an id", i))
		}
		if d.Name == "" {
			defects = append(defects, fmt.Sprintf("device %d is missing a name", i))
		}
		if d.Type == "" {
			defects = append(defects, fmt.Sprintf("device %d is missing a type", i))
		}
	}
	for i, a := range snap.Data.Automations {
		if a.ID == "" {
			defects = append(defects, fmt.Sprintf("automation %d is missing an id", i))
		}
		if a.Name == "" {
			defects = append(defects, fmt.Sprintf("automation %d is missing a name", i))
		}
		if a.Triggers == nil {
			defects = append(defects, fmt.Sprintf("automation %d has no triggers array", i))
		}
		if a.Actions == nil {
			defects = append(defects, fmt.Sprintf("automation %d has no actions array", i))
		}
	}
	for i, s := range snap.Data.Scenes {
		if s.ID == "" {
			defects = append(defects, fmt.Sprintf("scene %d is missing an id", i))
		}
		if s.Name == "" {
			defects = append(defects, fmt.Sprintf("scene %d is missing a name", i))
		}
		if s.Actions == nil {
			defects = append(defects, fmt.Sprintf("scene %d has no actions array", i))
		}
	}
	return defects
}

// CompareVersions compares two dot-separated versions numerically per
// component, left-padding missing components with zero. Returns -1, 0 or 1.
func CompareVersions(a, b string) int {
	pa := strings.Split(a, ".")
	pb := strings.Split(b, ".")
	for i := 0; i < 3; i++ {
		na := versionComponent(pa, i)
		nb := versionComponent(pb, i)
		if na < nb {
			return -1
		}
		if na > nb {
			return 1
		}
	}
	return 0
}

func versionComponent(parts []string, i int) int {
	if i >= len(parts) {
		return 0
	}
	n, err := strconv.Atoi(parts[i])
	if err != nil {
		return 0
	}
	return n
}
