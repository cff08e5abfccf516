package errclass

import (
	"bytes"
	"encoding/json"
	"strconv"
)

// envelope is the client-side error wrapper the dashboard forwards:
// {"customAttributes": {"httpErrorStatus": 422, "httpErrorResponseData": "<json>"}}.
type envelope struct {
	CustomAttributes *struct {
		HTTPErrorStatus       json.RawMessage `json:"httpErrorStatus"`
		HTTPErrorResponseData json.RawMessage `json:"httpErrorResponseData"`
	} `json:"customAttributes"`
}

type reasonItem struct {
	Reason string `json:"reason"`
}

// ParseFailure extracts the effective status and first reason code from a
// failed allocate response. body is either the upstream body itself
// ([{"reason": ...}] or {"reason": ...}) or the customAttributes envelope,
// whose httpErrorResponseData is a JSON string. A status found in the
// envelope overrides status. Unparseable bodies yield an empty reason.
func ParseFailure(status int, body []byte) (int, string) {
	body = bytes.TrimSpace(body)
	if len(body) == 0 {
		return status, ""
	}

	var env envelope
	if body[0] == '{' && json.Unmarshal(body, &env) == nil && env.CustomAttributes != nil {
		if s, ok := parseStatus(env.CustomAttributes.HTTPErrorStatus); ok {
			status = s
		}
		data := env.CustomAttributes.HTTPErrorResponseData
		// the response data is usually a JSON-encoded string
		var inner string
		if json.Unmarshal(data, &inner) == nil {
			data = []byte(inner)
		}
		return status, firstReason(data)
	}
	return status, firstReason(body)
}

func firstReason(b []byte) string {
	b = bytes.TrimSpace(b)
	if len(b) == 0 {
		return ""
	}
	switch b[0] {
	case '[':
		var items []reasonItem
		if json.Unmarshal(b, &items) != nil {
			return ""
		}
		for _, it := range items {
			if it.Reason != "" {
				return it.Reason
			}
		}
	case '{':
		var it reasonItem
		if json.Unmarshal(b, &it) == nil {
			return it.Reason
		}
	}
	return ""
}

func parseStatus(raw json.RawMessage) (int, bool) {
	if len(raw) == 0 {
		return 0, false
	}
	var n int
	if json.Unmarshal(raw, &n) == nil && n > 0 {
		return n, true
	}
	var s string
	if json.Unmarshal(raw, &s) == nil {
		if n, err := strconv.Atoi(s); err == nil && n > 0 {
			return n, true
		}
	}
	return 0, false
}
