package renderer

import (
	"github.com/go-gl/mathgl/mgl32"

	"github.com/spaghettifunk/prism/engine/math"
	"github.com/spaghettifunk/prism/engine/renderer/metadata"
)

type spatial struct {
	model   mgl32.Mat4
	inverse mgl32.Mat4
}

func newSpatial(info metadata.SpatialInfo) *spatial {
	return &spatial{model: info.Model, inverse: math.InverseOrIdentity(info.Model)}
}

// pushConstant is the model matrix followed by its inverse.
func (s *spatial) pushConstant() []byte {
	b := make([]byte, metadata.SpatialPushConstantSize)
	n := math.PutMat4(b, s.model)
	math.PutMat4(b[n:], s.inverse)
	return b
}

func (e *Engine) SpatialCreate(info metadata.SpatialInfo) (metadata.SpatialID, error) {
	if err := e.ready(); err != nil {
		return metadata.InvalidSpatial, err
	}
	return e.spatials.insert(newSpatial(info))
}

// SpatialUpdate replaces the model matrix. Compiled draw commands pick the
// change up on the next frame.
func (e *Engine) SpatialUpdate(id metadata.SpatialID, info metadata.SpatialInfo) error {
	if err := e.ready(); err != nil {
		return err
	}
	if id == e.identity {
		return invalid("the identity spatial is read-only")
	}
	s, err := e.spatials.lookup(id)
	if err != nil {
		return err
	}
	*s = *newSpatial(info)
	return nil
}

func (e *Engine) SpatialAvailable(id metadata.SpatialID) bool {
	return e.inited && e.spatials.available(id)
}

// SpatialGetData returns the model matrix and its inverse.
func (e *Engine) SpatialGetData(id metadata.SpatialID) (mgl32.Mat4, mgl32.Mat4, bool) {
	if !e.inited {
		return mgl32.Mat4{}, mgl32.Mat4{}, false
	}
	s, ok := e.spatials.get(id)
	if !ok {
		return mgl32.Mat4{}, mgl32.Mat4{}, false
	}
	return s.model, s.inverse, true
}

// IdentitySpatial is the reserved spatial substituted for instances without one.
func (e *Engine) IdentitySpatial() metadata.SpatialID {
	return e.identity
}

func (e *Engine) SpatialDispose(id metadata.SpatialID) error {
	if err := e.ready(); err != nil {
		return err
	}
	if id == e.identity {
		return invalid("the identity spatial cannot be disposed")
	}
	if _, ok := e.spatials.remove(id); !ok {
		_, err := e.spatials.lookup(id)
		return err
	}
	return nil
}
