package core

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEventBusDispatch(t *testing.T) {
	bus := NewEventBus()
	var got []uint32
	first := func(code SystemEventCode, sender, listener interface{}, data EventContext) bool {
		got = append(got, data.U32[0])
		return false
	}
	handled := func(code SystemEventCode, sender, listener interface{}, data EventContext) bool {
		got = append(got, data.U32[1])
		return true
	}
	never := func(code SystemEventCode, sender, listener interface{}, data EventContext) bool {
		t.Fatal("event should have been handled earlier")
		return false
	}

	a, b, c := new(int), new(int), new(int)
	assert.True(t, bus.Register(EVENT_CODE_RESIZED, a, first))
	assert.False(t, bus.Register(EVENT_CODE_RESIZED, a, first))
	assert.True(t, bus.Register(EVENT_CODE_RESIZED, b, handled))
	assert.True(t, bus.Register(EVENT_CODE_RESIZED, c, never))

	assert.True(t, bus.Fire(EVENT_CODE_RESIZED, nil, EventContext{U32: [4]uint32{640, 480}}))
	assert.Equal(t, []uint32{640, 480}, got)

	assert.True(t, bus.Unregister(EVENT_CODE_RESIZED, b))
	assert.False(t, bus.Unregister(EVENT_CODE_RESIZED, b))
	assert.False(t, bus.Fire(EVENT_CODE_APPLICATION_QUIT, nil, EventContext{}))
}

func TestIsFatal(t *testing.T) {
	assert.False(t, IsFatal(nil))
	assert.False(t, IsFatal(fmt.Errorf("texture 4: %w", ErrInvalidHandle)))
	assert.False(t, IsFatal(ErrSwapchainBooting))
	assert.True(t, IsFatal(ErrUnsupported))
	assert.True(t, IsFatal(errors.New("vkCreateBuffer failed")))
}
