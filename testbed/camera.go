package testbed

import (
	"github.com/go-gl/mathgl/mgl32"

	"github.com/spaghettifunk/prism/engine/math"
)

// 89 degrees.
const pitchLimit float32 = 1.55334306

// Camera is a free-look camera. The view matrix is rebuilt lazily after
// the position or rotation changes.
type Camera struct {
	position mgl32.Vec3
	// pitch, yaw, roll
	euler mgl32.Vec3
	dirty bool
	view  mgl32.Mat4
}

func NewCamera(position mgl32.Vec3) *Camera {
	c := &Camera{}
	c.Reset()
	c.SetPosition(position)
	return c
}

func (c *Camera) Reset() {
	c.position = mgl32.Vec3{}
	c.euler = mgl32.Vec3{}
	c.dirty = false
	c.view = mgl32.Ident4()
}

func (c *Camera) Position() mgl32.Vec3 {
	return c.position
}

func (c *Camera) SetPosition(position mgl32.Vec3) {
	c.position = position
	c.dirty = true
}

func (c *Camera) SetEulerRotation(rotation mgl32.Vec3) {
	c.euler = rotation
	c.dirty = true
}

func (c *Camera) View() mgl32.Mat4 {
	if c.dirty {
		rotation := mgl32.AnglesToQuat(c.euler.X(), c.euler.Y(), c.euler.Z(), mgl32.XYZ).Mat4()
		translation := mgl32.Translate3D(c.position.X(), c.position.Y(), c.position.Z())
		c.view = math.InverseOrIdentity(translation.Mul4(rotation))
		c.dirty = false
	}
	return c.view
}

// Forward is -Z of the camera in world space.
func (c *Camera) Forward() mgl32.Vec3 {
	world := math.InverseOrIdentity(c.View())
	return world.Col(2).Vec3().Mul(-1).Normalize()
}

func (c *Camera) Right() mgl32.Vec3 {
	world := math.InverseOrIdentity(c.View())
	return world.Col(0).Vec3().Normalize()
}

func (c *Camera) MoveForward(amount float32) {
	c.SetPosition(c.position.Add(c.Forward().Mul(amount)))
}

func (c *Camera) MoveRight(amount float32) {
	c.SetPosition(c.position.Add(c.Right().Mul(amount)))
}

func (c *Camera) MoveUp(amount float32) {
	c.SetPosition(c.position.Add(mgl32.Vec3{0, amount, 0}))
}

func (c *Camera) Yaw(amount float32) {
	c.euler[1] += amount
	c.dirty = true
}

// Pitch is clamped short of straight up or down.
func (c *Camera) Pitch(amount float32) {
	c.euler[0] = math.Clamp(c.euler[0]+amount, -pitchLimit, pitchLimit)
	c.dirty = true
}
