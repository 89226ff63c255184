package testbed

import (
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
)

func TestCameraViewMatchesLookAt(t *testing.T) {
	c := NewCamera(mgl32.Vec3{0, 0, 3})
	want := mgl32.LookAtV(mgl32.Vec3{0, 0, 3}, mgl32.Vec3{}, mgl32.Vec3{0, 1, 0})
	assert.True(t, c.View().ApproxEqualThreshold(want, 1e-5))
}

func TestCameraMoveForward(t *testing.T) {
	c := NewCamera(mgl32.Vec3{0, 0, 3})
	c.MoveForward(1)
	assert.InDelta(t, 2, c.Position().Z(), 1e-5)

	c.MoveRight(2)
	assert.InDelta(t, 2, c.Position().X(), 1e-5)
}

func TestCameraPitchIsClamped(t *testing.T) {
	c := NewCamera(mgl32.Vec3{})
	c.Pitch(10)
	assert.InDelta(t, pitchLimit, c.euler.X(), 1e-6)
	c.Pitch(-20)
	assert.InDelta(t, -pitchLimit, c.euler.X(), 1e-6)
}
