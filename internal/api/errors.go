package api

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Error is a non-success response from the clinic API. The server answers
// rejected requests with a DRF-style body: either a map of field name to a
// list of messages, a top-level "detail" string, or both.
type Error struct {
	Status int
	Detail string
	Fields map[string][]string
	Body   string
}

func (e *Error) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("api: status %d: %s", e.Status, e.Detail)
	}
	return fmt.Sprintf("api: status %d: %s", e.Status, e.Body)
}

// FieldMessages returns the joined messages for a field, or "" when the
// server reported nothing for it.
func (e *Error) FieldMessages(field string) string {
	if messages, ok := e.Fields[field]; ok && len(messages) > 0 {
		return strings.Join(messages, ", ")
	}
	return ""
}

// newError decodes a structured error body. Bodies that are not JSON objects
// are carried verbatim in Body.
func newError(status int, body []byte) *Error {
	apiErr := &Error{Status: status, Body: strings.TrimSpace(string(body))}

	var decoded map[string]json.RawMessage
	if err := json.Unmarshal(body, &decoded); err != nil {
		return apiErr
	}
	for field, raw := range decoded {
		if field == "detail" {
			var detail string
			if err := json.Unmarshal(raw, &detail); err == nil {
				apiErr.Detail = detail
			}
			continue
		}
		var messages []string
		if err := json.Unmarshal(raw, &messages); err == nil && len(messages) > 0 {
			if apiErr.Fields == nil {
				apiErr.Fields = map[string][]string{}
			}
			apiErr.Fields[field] = messages
		}
	}
	return apiErr
}
