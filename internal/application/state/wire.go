package state

import "github.com/kodflow/testjig/internal/domain/run"

// Outbound message shapes, matching spec.md §6 exactly. These are the
// values pushed onto the tc-data and ui-request output channels for the
// transport collaborator to serialize to JSON and fan out.

// TCDataMessage is the envelope for every tc_data event (§6 "Outbound
// tc-data messages").
type TCDataMessage struct {
	Type      string `json:"type"`
	EventType string `json:"event_type"`
	Payload   any    `json:"payload,omitempty"`
}

// NewExecutionWire is the payload of a newExecution tc_data message.
type NewExecutionWire struct {
	TCID        string `json:"tc_id"`
	ExecutionID int    `json:"execution_id"`
	TCState     string `json:"tc_state"`
}

// ParameterUpdateWire is the payload of a parameterUpdate tc_data message.
type ParameterUpdateWire struct {
	TCID        string                          `json:"tc_id"`
	ExecutionID int                             `json:"execution_id"`
	Parameter   map[string]run.ParameterSummary `json:"parameter"`
}

// ProgressUpdateWire is the payload of a progressUpdate tc_data message.
type ProgressUpdateWire struct {
	TCID     string `json:"tc_id"`
	Progress int    `json:"progress"`
}

// TestCaseFailWire is the payload of a testCaseFail tc_data message.
type TestCaseFailWire struct {
	TCID string `json:"tc_id"`
}

// UIPromptMessage is the envelope for an outbound UI prompt (§6 "Outbound
// UI prompts").
type UIPromptMessage struct {
	Type      string          `json:"type"`
	EventType string          `json:"event_type"`
	Payload   UIPromptPayload `json:"payload"`
}

// UIPromptPayload is the payload of a prompt message.
type UIPromptPayload struct {
	ID         string `json:"id"`
	Message    string `json:"message"`
	PromptType string `json:"prompt_type"`
}
