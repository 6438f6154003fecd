package event_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/kodflow/testjig/internal/domain/event"
)

func TestKindString(t *testing.T) {
	t.Parallel()

	cases := []struct {
		kind event.Kind
		want string
	}{
		{event.KindNewTestCase, "NewTestCase"},
		{event.KindNodeReady, "NodeReady"},
		{event.KindUserResponse, "UserResponse"},
		{event.Kind(999), "unknown"},
	}

	for _, tc := range cases {
		t.Run(tc.want, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tc.want, tc.kind.String())
		})
	}
}

func TestNewStampsTimestamp(t *testing.T) {
	t.Parallel()

	e := event.New(event.KindProgressUpdate, 42)
	assert.Equal(t, event.KindProgressUpdate, e.Kind)
	assert.Equal(t, 42, e.Payload)
	assert.False(t, e.Timestamp.IsZero())
}
