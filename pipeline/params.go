package pipeline

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// ParseExtraParams parses free-form request parameters from a flat JSON
// object of scalars, e.g. {"limit": 1000, "siri_routes__operator_ref": 3}.
// Nested objects and arrays are rejected. An empty string yields no
// parameters.
func ParseExtraParams(s string) (map[string]string, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return map[string]string{}, nil
	}

	dec := json.NewDecoder(bytes.NewReader([]byte(s)))
	dec.UseNumber()
	var raw map[string]any
	if err := dec.Decode(&raw); err != nil {
		return nil, &ConfigurationError{Msg: fmt.Sprintf("invalid format for parameters: %v", err)}
	}

	params := make(map[string]string, len(raw))
	for k, v := range raw {
		switch t := v.(type) {
		case string:
			params[k] = t
		case json.Number:
			params[k] = t.String()
		case bool:
			params[k] = strconv.FormatBool(t)
		case nil:
			// null parameters are dropped
		default:
			return nil, &ConfigurationError{Msg: fmt.Sprintf("invalid format for parameters: %q must be a scalar", k)}
		}
	}
	return params, nil
}
