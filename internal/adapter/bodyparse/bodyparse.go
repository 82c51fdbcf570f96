// Package bodyparse turns flat request bodies into string key/value
// pairs. The admin frontend sends url-encoded pairs; older revisions of
// it sent flat JSON objects, so both shapes are accepted.
package bodyparse

import (
	"bytes"
	"encoding/json"
	"net/url"
	"strconv"
)

// Fields parses a flat body into a string map. Unparseable input yields
// an empty map; missing-field validation stays with the caller.
func Fields(body []byte) map[string]string {
	out := make(map[string]string)
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 {
		return out
	}

	if trimmed[0] == '{' {
		var raw map[string]any
		if err := json.Unmarshal(trimmed, &raw); err != nil {
			return out
		}
		for k, v := range raw {
			switch val := v.(type) {
			case string:
				out[k] = val
			case float64:
				out[k] = strconv.FormatFloat(val, 'f', -1, 64)
			case bool:
				out[k] = strconv.FormatBool(val)
			}
		}
		return out
	}

	values, err := url.ParseQuery(string(trimmed))
	if err != nil {
		return out
	}
	for k, vs := range values {
		if len(vs) > 0 {
			out[k] = vs[0]
		}
	}
	return out
}
