package renderer

import (
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spaghettifunk/prism/engine/core"
	"github.com/spaghettifunk/prism/engine/renderer/gpu"
	"github.com/spaghettifunk/prism/engine/renderer/headless"
	"github.com/spaghettifunk/prism/engine/renderer/metadata"
)

func TestCollectionFinalizeIsIdempotent(t *testing.T) {
	e, b := newTestEngine(t, nil)
	q := newQuad(t, e)
	coll, err := e.CollectionCreate(metadata.CollectionConfig{MaxInstances: 4})
	require.NoError(t, err)

	_, err = e.CollectionInstanceCreate(coll, q.instance())
	require.NoError(t, err)
	dirty, err := e.CollectionIsDirty(coll)
	require.NoError(t, err)
	assert.True(t, dirty)

	require.NoError(t, e.CollectionFinalize(coll))
	require.NoError(t, e.CollectionFinalize(coll))
	assert.Equal(t, 1, b.Stats().PipelinesCreated)
	dirty, _ = e.CollectionIsDirty(coll)
	assert.False(t, dirty)

	_, err = e.CollectionInstanceCreate(coll, q.instance())
	require.NoError(t, err)
	require.NoError(t, e.CollectionFinalize(coll))
	assert.Equal(t, 2, b.Stats().PipelinesCreated)

	n, err := e.CollectionDrawCommandCount(coll)
	require.NoError(t, err)
	assert.Equal(t, 2, n)
}

func TestCollectionCapacity(t *testing.T) {
	e, _ := newTestEngine(t, nil)
	q := newQuad(t, e)
	coll, err := e.CollectionCreate(metadata.CollectionConfig{MaxInstances: 1})
	require.NoError(t, err)

	first, err := e.CollectionInstanceCreate(coll, q.instance())
	require.NoError(t, err)
	_, err = e.CollectionInstanceCreate(coll, q.instance())
	assert.ErrorIs(t, err, core.ErrCapacityExceeded)

	require.NoError(t, e.CollectionInstanceDispose(coll, first))
	assert.False(t, e.CollectionInstanceAvailable(coll, first))
	again, err := e.CollectionInstanceCreate(coll, q.instance())
	require.NoError(t, err)
	assert.Equal(t, first, again)

	_, err = e.CollectionCreate(metadata.CollectionConfig{})
	assert.ErrorIs(t, err, core.ErrInvalidArgument)
}

func TestCollectionInstanceValidatesHandles(t *testing.T) {
	e, _ := newTestEngine(t, nil)
	q := newQuad(t, e)
	coll, err := e.CollectionCreate(metadata.CollectionConfig{MaxInstances: 4})
	require.NoError(t, err)

	desc := q.instance()
	desc.Appearance = metadata.AppearanceID(99)
	_, err = e.CollectionInstanceCreate(coll, desc)
	assert.ErrorIs(t, err, core.ErrInvalidHandle)

	desc = q.instance()
	desc.Spatial = metadata.SpatialID(99)
	_, err = e.CollectionInstanceCreate(coll, desc)
	assert.ErrorIs(t, err, core.ErrInvalidHandle)

	_, err = e.CollectionInstanceCreate(metadata.CollectionID(7), q.instance())
	assert.ErrorIs(t, err, core.ErrInvalidHandle)
}

func TestCollectionSkipsUnfinalizedGeometry(t *testing.T) {
	e, b := newTestEngine(t, nil)
	q := newQuad(t, e)
	pending, err := e.GeometryDataCreate(3, 0, metadata.AttributeLayout{
		Attributes:  metadata.AttributeMask(metadata.AttributePosition),
		Interleaved: true,
	})
	require.NoError(t, err)

	coll, err := e.CollectionCreate(metadata.CollectionConfig{MaxInstances: 4})
	require.NoError(t, err)
	desc := q.instance()
	desc.GeometryData = pending
	_, err = e.CollectionInstanceCreate(coll, desc)
	require.NoError(t, err)
	_, err = e.CollectionInstanceCreate(coll, q.instance())
	require.NoError(t, err)

	require.NoError(t, e.CollectionFinalize(coll))
	n, _ := e.CollectionDrawCommandCount(coll)
	assert.Equal(t, 1, n)
	assert.Equal(t, 1, b.Stats().PipelinesCreated)
}

func pipelineDesc(t *testing.T, e *Engine, coll metadata.CollectionID, inst metadata.InstanceID) gpu.PipelineDesc {
	t.Helper()
	c, ok := e.collections.get(coll)
	require.True(t, ok)
	dc, ok := c.drawCommands[inst]
	require.True(t, ok)
	return dc.pipeline.(*headless.Pipeline).Desc
}

func TestPipelineConstruction(t *testing.T) {
	e, _ := newTestEngine(t, nil)
	q := newQuad(t, e)
	coll, err := e.CollectionCreate(metadata.CollectionConfig{MaxInstances: 4})
	require.NoError(t, err)

	wire := metadata.DefaultStateInfo()
	wire.Wireframe = true
	wire.PointSize = 4
	wire.DepthCompare = metadata.CompareLessOrEqual
	st, err := e.StateCreate(wire)
	require.NoError(t, err)

	desc := q.instance()
	desc.State = st
	inst, err := e.CollectionInstanceCreate(coll, desc)
	require.NoError(t, err)
	require.NoError(t, e.CollectionFinalize(coll))

	p := pipelineDesc(t, e, coll, inst)
	assert.Equal(t, gpu.PolygonModeLine, p.PolygonMode)
	assert.Equal(t, float32(4), p.PointSize)
	assert.Equal(t, gpu.CompareOpLessOrEqual, p.DepthCompare)
	assert.Equal(t, gpu.TopologyTriangleList, p.Topology)
	assert.True(t, p.DepthTest)
	assert.Equal(t, uint32(metadata.SpatialPushConstantSize), p.PushConstantSize)
	// passthrough has no appearance set
	assert.Len(t, p.SetLayouts, 1)
	require.Len(t, p.Bindings, 1)
	assert.Equal(t, uint32(28), p.Bindings[0].Stride)
	require.Len(t, p.Attributes, 2)
	assert.Equal(t, uint32(0), p.Attributes[0].Location)
	assert.Equal(t, uint32(12), p.Attributes[1].Offset)
	assert.Equal(t, gpu.VertexFormatFloat4, p.Attributes[1].Format)
}

func TestPipelineSeparateLayoutWithTexture(t *testing.T) {
	e, _ := newTestEngine(t, nil)
	gd, err := e.GeometryDataCreate(2, 0, metadata.AttributeLayout{
		Attributes: metadata.AttributeMask(metadata.AttributePosition | metadata.AttributeTexCoord),
	})
	require.NoError(t, err)
	require.NoError(t, e.GeometryDataFinalize(gd))
	g, err := e.GeometryCreate(metadata.GeometryInfo{Topology: metadata.TopologyLineList})
	require.NoError(t, err)
	tex, err := e.TextureCreate(metadata.TextureInfo{TextureType: metadata.TextureType2d, Width: 1, Height: 1, ChannelCount: 4}, make([]byte, 4))
	require.NoError(t, err)
	app, err := e.AppearanceCreate(metadata.AppearanceInfo{Template: metadata.ShaderTemplateSimpleTextured, Texture: tex})
	require.NoError(t, err)

	sp, err := e.SpatialCreate(metadata.SpatialInfo{Model: mgl32.Translate3D(1, 2, 3)})
	require.NoError(t, err)
	st, err := e.StateCreate(metadata.StateInfo{PointSize: 1, LineWidth: 2, Wireframe: true})
	require.NoError(t, err)

	coll, err := e.CollectionCreate(metadata.CollectionConfig{MaxInstances: 1})
	require.NoError(t, err)
	inst, err := e.CollectionInstanceCreate(coll, metadata.InstanceDesc{
		GeometryData: gd, Geometry: g, Appearance: app, Spatial: sp, State: st,
	})
	require.NoError(t, err)
	require.NoError(t, e.CollectionFinalize(coll))

	p := pipelineDesc(t, e, coll, inst)
	// wireframe only applies to triangles
	assert.Equal(t, gpu.PolygonModeFill, p.PolygonMode)
	assert.Equal(t, float32(2), p.LineWidth)
	assert.Len(t, p.SetLayouts, 2)
	require.Len(t, p.Bindings, 2)
	assert.Equal(t, uint32(12), p.Bindings[0].Stride)
	assert.Equal(t, uint32(12), p.Bindings[1].Stride)
	assert.Equal(t, uint32(1), p.Attributes[1].Binding)
}

func TestAppearanceContract(t *testing.T) {
	e, b := newTestEngine(t, nil)

	_, err := e.AppearanceCreate(metadata.AppearanceInfo{Template: metadata.ShaderTemplateSimpleTextured, Texture: metadata.InvalidTexture})
	assert.ErrorIs(t, err, core.ErrInvalidHandle)
	_, err = e.AppearanceCreate(metadata.AppearanceInfo{Template: metadata.ShaderTemplateCount})
	assert.ErrorIs(t, err, core.ErrInvalidArgument)

	tex, err := e.TextureCreate(metadata.TextureInfo{
		TextureType: metadata.TextureType3d, Format: metadata.TexelFormatInt16,
		Width: 2, Height: 2, Depth: 2, ChannelCount: 1,
	}, make([]byte, 16))
	require.NoError(t, err)

	setsBefore := b.Stats().DescriptorSetsLive
	app, err := e.AppearanceCreate(metadata.AppearanceInfo{Template: metadata.ShaderTemplateVolumeSlice, Texture: tex})
	require.NoError(t, err)
	assert.Equal(t, setsBefore+metadata.FramesInFlight, b.Stats().DescriptorSetsLive)

	params, ok := e.AppearanceGetVolumeSlice(app)
	require.True(t, ok)
	assert.Equal(t, metadata.DefaultVolumeSliceParams(), params)

	params.Slice = 0.25
	params.WindowCenter = 40
	require.NoError(t, e.AppearanceUpdateVolumeSlice(app, params))
	got, _ := e.AppearanceGetVolumeSlice(app)
	assert.Equal(t, params, got)

	a, _ := e.appearances.get(app)
	for frame := range a.uniforms {
		buf := a.uniforms[frame].(*headless.Buffer).Bytes()
		assert.Equal(t, a.mapped[frame], buf)
		set := a.sets[frame].(*headless.DescriptorSet)
		assert.Equal(t, a.uniforms[frame], set.Writes[1].Buffer)
		tx, _ := e.textures.get(tex)
		assert.Equal(t, tx.image, set.Writes[0].Image)
	}

	lit, err := e.AppearanceCreate(metadata.AppearanceInfo{Template: metadata.ShaderTemplateSimpleLit})
	require.NoError(t, err)
	assert.ErrorIs(t, e.AppearanceUpdateVolumeSlice(lit, params), core.ErrInvalidArgument)
	_, ok = e.AppearanceGetVolumeSlice(lit)
	assert.False(t, ok)

	require.NoError(t, e.AppearanceDispose(app))
	assert.Equal(t, setsBefore, b.Stats().DescriptorSetsLive)
}
