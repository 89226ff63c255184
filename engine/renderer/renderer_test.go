package renderer

import (
	"encoding/binary"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spaghettifunk/prism/engine/assets/loaders"
	"github.com/spaghettifunk/prism/engine/config"
	"github.com/spaghettifunk/prism/engine/core"
	"github.com/spaghettifunk/prism/engine/math"
	"github.com/spaghettifunk/prism/engine/renderer/headless"
	"github.com/spaghettifunk/prism/engine/renderer/metadata"
)

// writeShaders fills dir with a minimal valid SPIR-V pair per template.
func writeShaders(t *testing.T, dir string) {
	t.Helper()
	code := make([]byte, 8)
	binary.LittleEndian.PutUint32(code, loaders.SPIRVMagic)
	for _, tmpl := range metadata.ShaderTemplates {
		for _, stage := range []string{"vert", "frag"} {
			path := filepath.Join(dir, loaders.StageFileName(tmpl.Name(), stage))
			require.NoError(t, os.WriteFile(path, code, 0o644))
		}
	}
}

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	dir := t.TempDir()
	writeShaders(t, dir)
	cfg := config.Default()
	cfg.Backend = config.BackendHeadless
	cfg.ShaderPath = dir
	cfg.LogLevel = "error"
	cfg.MaxAppearances = 16
	return cfg
}

func newTestEngine(t *testing.T, cfg *config.Config, opts ...headless.Option) (*Engine, *headless.Backend) {
	t.Helper()
	if cfg == nil {
		cfg = testConfig(t)
	}
	b := headless.New(opts...)
	e := New(b)
	require.NoError(t, e.Init(cfg))
	t.Cleanup(func() { _ = e.Dispose() })
	return e, b
}

// quad is an interleaved position+color unit square.
type quad struct {
	data metadata.GeometryDataID
	geom metadata.GeometryID
	app  metadata.AppearanceID
}

var quadVertices = []float32{
	-0.5, -0.5, 0, 1, 0, 0, 1,
	0.5, -0.5, 0, 0, 1, 0, 1,
	0.5, 0.5, 0, 0, 0, 1, 1,
	-0.5, 0.5, 0, 1, 1, 1, 1,
}

var quadIndices = []uint32{0, 1, 2, 2, 3, 0}

func newQuad(t *testing.T, e *Engine) quad {
	t.Helper()
	layout := metadata.AttributeLayout{
		Attributes:  metadata.AttributeMask(metadata.AttributePosition | metadata.AttributeColor),
		Interleaved: true,
	}
	gd, err := e.GeometryDataCreate(4, 6, layout)
	require.NoError(t, err)
	require.NoError(t, e.GeometryDataUpdateInterleavedVertices(gd, 0, math.Float32Bytes(quadVertices)))
	require.NoError(t, e.GeometryDataUpdateIndices(gd, 0, math.Uint32Bytes(quadIndices)))
	require.NoError(t, e.GeometryDataFinalize(gd))

	g, err := e.GeometryCreate(metadata.GeometryInfo{Topology: metadata.TopologyTriangleList})
	require.NoError(t, err)
	app, err := e.AppearanceCreate(metadata.AppearanceInfo{Template: metadata.ShaderTemplatePassthrough})
	require.NoError(t, err)
	return quad{data: gd, geom: g, app: app}
}

func (q quad) instance() metadata.InstanceDesc {
	return metadata.InstanceDesc{
		GeometryData: q.data,
		Geometry:     q.geom,
		Appearance:   q.app,
		Spatial:      metadata.InvalidSpatial,
		State:        metadata.InvalidState,
	}
}

func TestInitAndDispose(t *testing.T) {
	cfg := testConfig(t)
	b := headless.New()
	e := New(b)
	require.NoError(t, e.Init(cfg))
	assert.True(t, e.IsInited())
	assert.True(t, e.SpatialAvailable(e.IdentitySpatial()))
	assert.Equal(t, 2*len(metadata.ShaderTemplates), b.Stats().ShaderModulesLive)

	assert.ErrorIs(t, e.Init(cfg), core.ErrInvalidArgument)

	newQuad(t, e)
	require.NoError(t, e.Dispose())
	assert.False(t, e.IsInited())

	stats := b.Stats()
	assert.Equal(t, 0, stats.BuffersLive)
	assert.Equal(t, 0, stats.ShaderModulesLive)
	assert.Equal(t, 0, stats.DescriptorSetLayoutsLive)
	assert.Equal(t, 0, stats.DescriptorSetsLive)
}

func TestInitMissingShaders(t *testing.T) {
	cfg := testConfig(t)
	require.NoError(t, os.Remove(filepath.Join(cfg.ShaderPath, loaders.StageFileName("volume_slice", "frag"))))
	e := New(headless.New())
	assert.Error(t, e.Init(cfg))
	assert.False(t, e.IsInited())
}

func TestOperationsBeforeInit(t *testing.T) {
	e := New(headless.New())

	_, err := e.GeometryDataCreate(3, 0, metadata.AttributeLayout{Attributes: metadata.AttributeMask(metadata.AttributePosition)})
	assert.ErrorIs(t, err, core.ErrNotInitialized)
	_, err = e.TextureCreate(metadata.TextureInfo{}, nil)
	assert.ErrorIs(t, err, core.ErrNotInitialized)
	_, err = e.CollectionCreate(metadata.CollectionConfig{MaxInstances: 1})
	assert.ErrorIs(t, err, core.ErrNotInitialized)
	_, err = e.ContextCreate(metadata.ContextConfig{Width: 1, Height: 1})
	assert.ErrorIs(t, err, core.ErrNotInitialized)
	assert.ErrorIs(t, e.ContextDrawCollections(0, 0, nil), core.ErrNotInitialized)

	assert.False(t, e.GeometryDataAvailable(0))
	assert.False(t, e.SpatialAvailable(0))
	_, ok := e.ViewGetData(0)
	assert.False(t, ok)
	assert.NoError(t, e.Dispose())
}

func TestProcessDefaultEngine(t *testing.T) {
	cfg := testConfig(t)
	e, err := Initialize(headless.New(), cfg)
	require.NoError(t, err)
	t.Cleanup(func() { _ = e.Dispose() })

	again, err := Initialize(headless.New(), cfg)
	require.NoError(t, err)
	assert.Same(t, e, again)
	assert.Same(t, e, Get())
}

func TestAvailableAndDispose(t *testing.T) {
	e, _ := newTestEngine(t, nil)
	q := newQuad(t, e)

	tex, err := e.TextureCreate(metadata.TextureInfo{
		TextureType: metadata.TextureType2d, Width: 2, Height: 2, ChannelCount: 4,
	}, make([]byte, 16))
	require.NoError(t, err)
	sp, err := e.SpatialCreate(metadata.SpatialInfo{Model: identityMatrix()})
	require.NoError(t, err)
	st, err := e.StateCreate(metadata.DefaultStateInfo())
	require.NoError(t, err)
	coll, err := e.CollectionCreate(metadata.CollectionConfig{MaxInstances: 4})
	require.NoError(t, err)

	assert.True(t, e.GeometryDataAvailable(q.data))
	assert.True(t, e.GeometryAvailable(q.geom))
	assert.True(t, e.AppearanceAvailable(q.app))
	assert.True(t, e.TextureAvailable(tex))
	assert.True(t, e.SpatialAvailable(sp))
	assert.True(t, e.StateAvailable(st))
	assert.True(t, e.CollectionAvailable(coll))

	require.NoError(t, e.GeometryDataDispose(q.data))
	require.NoError(t, e.GeometryDispose(q.geom))
	require.NoError(t, e.AppearanceDispose(q.app))
	require.NoError(t, e.TextureDispose(tex))
	require.NoError(t, e.SpatialDispose(sp))
	require.NoError(t, e.StateDispose(st))
	require.NoError(t, e.CollectionDispose(coll))

	assert.False(t, e.GeometryDataAvailable(q.data))
	assert.False(t, e.GeometryAvailable(q.geom))
	assert.False(t, e.AppearanceAvailable(q.app))
	assert.False(t, e.TextureAvailable(tex))
	assert.False(t, e.SpatialAvailable(sp))
	assert.False(t, e.StateAvailable(st))
	assert.False(t, e.CollectionAvailable(coll))

	assert.ErrorIs(t, e.GeometryDataDispose(q.data), core.ErrInvalidHandle)
	assert.ErrorIs(t, e.TextureDispose(tex), core.ErrInvalidHandle)
	assert.ErrorIs(t, e.SpatialDispose(sp), core.ErrInvalidHandle)
	assert.ErrorIs(t, e.CollectionDispose(coll), core.ErrInvalidHandle)

	assert.False(t, e.TextureAvailable(metadata.InvalidTexture))
}

func TestHandleReuse(t *testing.T) {
	e, _ := newTestEngine(t, nil)
	a, err := e.StateCreate(metadata.DefaultStateInfo())
	require.NoError(t, err)
	b, err := e.StateCreate(metadata.DefaultStateInfo())
	require.NoError(t, err)
	assert.NotEqual(t, a, b)

	require.NoError(t, e.StateDispose(a))
	c, err := e.StateCreate(metadata.DefaultStateInfo())
	require.NoError(t, err)
	assert.Equal(t, a, c)
}

func TestIdentitySpatialIsReserved(t *testing.T) {
	e, _ := newTestEngine(t, nil)
	id := e.IdentitySpatial()
	assert.ErrorIs(t, e.SpatialDispose(id), core.ErrInvalidArgument)
	assert.ErrorIs(t, e.SpatialUpdate(id, metadata.SpatialInfo{}), core.ErrInvalidArgument)

	model, inverse, ok := e.SpatialGetData(id)
	require.True(t, ok)
	assert.Equal(t, identityMatrix(), model)
	assert.Equal(t, identityMatrix(), inverse)
}

func TestStateClampsLineWidth(t *testing.T) {
	e, b := newTestEngine(t, nil)
	info := metadata.DefaultStateInfo()
	info.LineWidth = 100
	id, err := e.StateCreate(info)
	require.NoError(t, err)
	assert.Equal(t, b.Limits().MaxLineWidth, e.resolveState(id).LineWidth)

	info.PointSize = 0
	_, err = e.StateCreate(info)
	assert.ErrorIs(t, err, core.ErrInvalidArgument)
}
