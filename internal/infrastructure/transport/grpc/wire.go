package grpc

import (
	"encoding/json"
	"fmt"

	"google.golang.org/protobuf/types/known/structpb"

	"github.com/kodflow/testjig/internal/application/dispatcher"
)

// toStruct converts an arbitrary JSON-tagged Go value into a
// google.protobuf.Struct, round-tripping through JSON the way the
// engine's own event payloads are JSON-shaped (spec.md §6). This keeps
// the wire codec identical for every outbound message kind without a
// bespoke protobuf message per event type.
func toStruct(v any) (*structpb.Struct, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("marshaling payload: %w", err)
	}

	var m map[string]any
	if err := json.Unmarshal(raw, &m); err != nil {
		return nil, fmt.Errorf("payload is not a JSON object: %w", err)
	}

	st, err := structpb.NewStruct(m)
	if err != nil {
		return nil, fmt.Errorf("building struct: %w", err)
	}
	return st, nil
}

// commandFromStruct decodes an inbound structpb.Struct into a
// dispatcher.Command, the shape spec.md §6 names for inbound command
// messages ({command_type, payload}).
func commandFromStruct(st *structpb.Struct) (dispatcher.Command, error) {
	raw, err := st.MarshalJSON()
	if err != nil {
		return dispatcher.Command{}, fmt.Errorf("marshaling command struct: %w", err)
	}

	var cmd dispatcher.Command
	if err := json.Unmarshal(raw, &cmd); err != nil {
		return dispatcher.Command{}, fmt.Errorf("decoding command: %w", err)
	}
	return cmd, nil
}
