package publish

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/marcinmaslon/wolf-comm/internal/core"
)

// ParseSetPayload accepts either `<parameter> <value>` or a JSON object
// with a name key ("name", "parameter" or "parameter_name") and "value".
func ParseSetPayload(payload string) (name, value string, err error) {
	payload = strings.TrimSpace(payload)
	if payload == "" {
		return "", "", fmt.Errorf("empty payload")
	}

	var data map[string]any
	if json.Unmarshal([]byte(payload), &data) != nil {
		parts := strings.SplitN(payload, " ", 2)
		if len(parts) != 2 || strings.TrimSpace(parts[1]) == "" {
			return "", "", fmt.Errorf("expected '<parameter> <value>' payload")
		}
		return parts[0], strings.TrimSpace(parts[1]), nil
	}

	for _, key := range []string{"name", "parameter", "parameter_name"} {
		if v, ok := data[key].(string); ok && v != "" {
			name = v
			break
		}
	}
	rawValue, ok := data["value"]
	if name == "" || !ok || rawValue == nil {
		return "", "", fmt.Errorf("JSON payload must contain 'name' and 'value'")
	}
	return name, fmt.Sprint(rawValue), nil
}

// BuildStatus groups current values by their parameter's menu group for
// publishing. Values whose id is not in the catalog are skipped.
func BuildStatus(params []core.Parameter, values []core.Value) map[string]any {
	byValueID := make(map[int64]core.Parameter, len(params))
	for _, p := range params {
		byValueID[p.ValueID] = p
	}

	status := map[string]any{
		"time": time.Now().Format("02/01/2006 15:04:05"),
	}
	for _, v := range values {
		p, ok := byValueID[v.ValueID]
		if !ok {
			log.Debug().Int64("value_id", v.ValueID).Msg("skipping value without catalog entry")
			continue
		}
		group, ok := status[p.Parent].(map[string]any)
		if !ok {
			group = make(map[string]any)
			status[p.Parent] = group
		}
		group[p.Name] = v.Value
	}
	return status
}
