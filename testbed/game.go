// Package testbed is a small demo that spins a colored quad through the
// renderer facade.
package testbed

import (
	"github.com/go-gl/mathgl/mgl32"

	"github.com/spaghettifunk/prism/engine"
	"github.com/spaghettifunk/prism/engine/math"
	"github.com/spaghettifunk/prism/engine/renderer"
	"github.com/spaghettifunk/prism/engine/renderer/metadata"
)

type TestGame struct {
	*engine.Game
}

type gameState struct {
	renderer *renderer.Engine
	view     metadata.ViewID
	camera   *Camera

	geometryData metadata.GeometryDataID
	geometry     metadata.GeometryID
	appearance   metadata.AppearanceID
	spatial      metadata.SpatialID
	collection   metadata.CollectionID

	angle float32
}

// Position and color per vertex.
var quadVertices = []float32{
	-0.5, -0.5, 0, 1, 0, 0, 1,
	0.5, -0.5, 0, 0, 1, 0, 1,
	0.5, 0.5, 0, 0, 0, 1, 1,
	-0.5, 0.5, 0, 1, 1, 1, 1,
}

var quadIndices = []uint32{0, 1, 2, 2, 3, 0}

func NewTestGame(app *engine.ApplicationConfig) *TestGame {
	tg := &TestGame{
		Game: &engine.Game{
			ApplicationConfig: app,
			State:             &gameState{},
		},
	}
	tg.FnInitialize = tg.Initialize
	tg.FnUpdate = tg.Update
	tg.FnRender = tg.Render
	tg.FnOnResize = tg.OnResize
	tg.FnShutdown = tg.Shutdown
	return tg
}

func (g *TestGame) state() *gameState {
	return g.State.(*gameState)
}

func (g *TestGame) Initialize(r *renderer.Engine, ctx metadata.ContextID, view metadata.ViewID) error {
	s := g.state()
	s.renderer = r
	s.view = view
	s.camera = NewCamera(mgl32.Vec3{0, 0, 3})
	if err := g.applyCamera(); err != nil {
		return err
	}

	layout := metadata.AttributeLayout{
		Attributes:  metadata.AttributeMask(metadata.AttributePosition | metadata.AttributeColor),
		Interleaved: true,
	}
	var err error
	if s.geometryData, err = r.GeometryDataCreate(4, 6, layout); err != nil {
		return err
	}
	if err := r.GeometryDataUpdateInterleavedVertices(s.geometryData, 0, math.Float32Bytes(quadVertices)); err != nil {
		return err
	}
	if err := r.GeometryDataUpdateIndices(s.geometryData, 0, math.Uint32Bytes(quadIndices)); err != nil {
		return err
	}
	if err := r.GeometryDataFinalize(s.geometryData); err != nil {
		return err
	}
	if s.geometry, err = r.GeometryCreate(metadata.GeometryInfo{Topology: metadata.TopologyTriangleList}); err != nil {
		return err
	}
	if s.appearance, err = r.AppearanceCreate(metadata.AppearanceInfo{Template: metadata.ShaderTemplatePassthrough}); err != nil {
		return err
	}
	if s.spatial, err = r.SpatialCreate(metadata.SpatialInfo{Model: mgl32.Ident4()}); err != nil {
		return err
	}

	if s.collection, err = r.CollectionCreate(metadata.CollectionConfig{MaxInstances: 1}); err != nil {
		return err
	}
	if _, err := r.CollectionInstanceCreate(s.collection, metadata.InstanceDesc{
		GeometryData: s.geometryData,
		Geometry:     s.geometry,
		Appearance:   s.appearance,
		Spatial:      s.spatial,
		State:        metadata.InvalidState,
	}); err != nil {
		return err
	}
	return r.CollectionFinalize(s.collection)
}

// Update spins the quad around Z at half a radian per second.
func (g *TestGame) Update(deltaTime float64) error {
	s := g.state()
	s.angle += float32(0.5 * deltaTime)
	return s.renderer.SpatialUpdate(s.spatial, metadata.SpatialInfo{Model: mgl32.HomogRotate3DZ(s.angle)})
}

func (g *TestGame) Render(deltaTime float64) ([]metadata.CollectionID, error) {
	return []metadata.CollectionID{g.state().collection}, nil
}

func (g *TestGame) OnResize(width uint32, height uint32) error {
	if width == 0 || height == 0 {
		return nil
	}
	s := g.state()
	desc, ok := s.renderer.ViewGetData(s.view)
	if !ok {
		return nil
	}
	fresh := metadata.DefaultViewDesc(float32(width) / float32(height))
	desc.Projection = fresh.Projection
	desc.View = s.camera.View()
	return s.renderer.ViewUpdate(s.view, desc)
}

func (g *TestGame) applyCamera() error {
	s := g.state()
	desc, ok := s.renderer.ViewGetData(s.view)
	if !ok {
		return nil
	}
	desc.View = s.camera.View()
	return s.renderer.ViewUpdate(s.view, desc)
}

func (g *TestGame) Shutdown() error {
	s := g.state()
	if s.renderer == nil || !s.renderer.IsInited() {
		return nil
	}
	if err := s.renderer.CollectionDispose(s.collection); err != nil {
		return err
	}
	if err := s.renderer.AppearanceDispose(s.appearance); err != nil {
		return err
	}
	if err := s.renderer.GeometryDispose(s.geometry); err != nil {
		return err
	}
	if err := s.renderer.GeometryDataDispose(s.geometryData); err != nil {
		return err
	}
	return s.renderer.SpatialDispose(s.spatial)
}
