// Package event provides domain types for the execution engine's event bus.
package event

import "time"

// unknownString is the string representation for unknown kinds.
const unknownString = "unknown"

// Kind is the closed set of event kinds the engine ever publishes.
type Kind int

// Event kinds. Each kind fixes its payload type; consumers type-assert
// Event.Payload against the shape documented next to the constant.
const (
	KindUnknown Kind = iota
	// KindNewTestCase carries *run.Node (test-case kind).
	KindNewTestCase
	// KindNewTestExecution carries run.NewExecutionPayload.
	KindNewTestExecution
	// KindParameterUpdate carries run.ParameterUpdatePayload.
	KindParameterUpdate
	// KindProgressUpdate carries run.ProgressUpdatePayload.
	KindProgressUpdate
	// KindTestCaseFail carries run.TestCaseFailPayload.
	KindTestCaseFail
	// KindTestRunTermination carries run.TestRunTerminationPayload.
	KindTestRunTermination
	// KindNodeReady carries *run.Node.
	KindNodeReady
	// KindUserInteraction carries *interaction.Context.
	KindUserInteraction
	// KindUserResponse carries run.UserResponsePayload.
	KindUserResponse
	// KindNewViewSession carries run.NewViewSessionPayload.
	KindNewViewSession
)

// String returns the wire-friendly name of the kind.
func (k Kind) String() string {
	switch k {
	case KindNewTestCase:
		return "NewTestCase"
	case KindNewTestExecution:
		return "NewTestExecution"
	case KindParameterUpdate:
		return "ParameterUpdate"
	case KindProgressUpdate:
		return "ProgressUpdate"
	case KindTestCaseFail:
		return "TestCaseFail"
	case KindTestRunTermination:
		return "TestRunTermination"
	case KindNodeReady:
		return "NodeReady"
	case KindUserInteraction:
		return "UserInteraction"
	case KindUserResponse:
		return "UserResponse"
	case KindNewViewSession:
		return "NewViewSession"
	default:
		return unknownString
	}
}

// Event is a tagged value published on the bus. Payload type mismatches
// between a kind and its handlers are programming errors and fail loudly
// (see Publisher).
type Event struct {
	Kind      Kind
	Timestamp time.Time
	Payload   any
}

// New creates an Event for kind carrying payload, stamped with now.
func New(kind Kind, payload any) Event {
	return Event{Kind: kind, Timestamp: time.Now(), Payload: payload}
}
