// Package multilog provides multi-writer logging infrastructure for the engine.
package multilog

// JSONLogEntry is the JSON structure for log events.
// encoding/json has no inline option, so Metadata is encoded as a nested
// "Metadata" object; JSONWriter does not use this type.
type JSONLogEntry struct {
	Timestamp string         `json:"ts"`
	Level     string         `json:"level"`
	Service   string         `json:"service,omitempty"`
	Event     string         `json:"event"`
	Message   string         `json:"message,omitempty"`
	Metadata  map[string]any `json:",inline"`
}
