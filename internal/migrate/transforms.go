package migrate

import "fmt"

// migrateTo050 upgrades pre-0.5.0 documents: device network fields moved out
// of the legacy "config" blob, and "ip" was renamed to "ip_address".
func migrateTo050(doc map[string]any) (map[string]any, error) {
	data, ok := doc["data"].(map[string]any)
	if !ok {
		return nil, fmt.Errorf("document has no data object")
	}
	for _, d := range asRecords(data["devices"]) {
		if cfg, ok := d["config"].(map[string]any); ok {
			meta, _ := d["metadata"].(map[string]any)
			if meta == nil {
				meta = map[string]any{}
			}
			for k, v := range cfg {
				if _, taken := meta[k]; !taken {
					meta[k] = v
				}
			}
			d["metadata"] = meta
			delete(d, "config")
		}
		if ip, ok := d["ip"]; ok {
			if d["ip_address"] == nil {
				d["ip_address"] = ip
			}
			delete(d, "ip")
		}
	}
	return doc, nil
}

// migrateTo090 upgrades pre-0.9.0 documents: automations carried a single
// "rules" blob instead of separate triggers/conditions/actions arrays.
func migrateTo090(doc map[string]any) (map[string]any, error) {
	data, ok := doc["data"].(map[string]any)
	if !ok {
		return nil, fmt.Errorf("document has no data object")
	}
	for _, a := range asRecords(data["automations"]) {
		rules, ok := a["rules"].(map[string]any)
		if !ok {
			continue
		}
		if a["triggers"] == nil {
			a["triggers"] = orEmpty(rules["triggers"])
		}
		if a["conditions"] == nil {
			a["conditions"] = orEmpty(rules["conditions"])
		}
		if a["actions"] == nil {
			a["actions"] = orEmpty(rules["actions"])
		}
		delete(a, "rules")
	}
	return doc, nil
}

func orEmpty(v any) []any {
	if arr, ok := v.([]any); ok {
		return arr
	}
	return []any{}
}
