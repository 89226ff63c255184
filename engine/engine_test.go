package engine

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
	"github.com/spaghettifunk/prism/engine/renderer"
	"github.com/spaghettifunk/prism/engine/renderer/metadata"
)

func headlessConfig(t *testing.T) *config.Config {
	t.Helper()
	dir := t.TempDir()
	code := make([]byte, 8)
	binary.LittleEndian.PutUint32(code, loaders.SPIRVMagic)
	for _, tmpl := range metadata.ShaderTemplates {
		for _, stage := range []string{"vert", "frag"} {
			require.NoError(t, os.WriteFile(filepath.Join(dir, loaders.StageFileName(tmpl.Name(), stage)), code, 0o644))
		}
	}
	cfg := config.Default()
	cfg.Backend = config.BackendHeadless
	cfg.ShaderPath = dir
	cfg.LogLevel = "error"
	cfg.MaxAppearances = 8
	return cfg
}

type recorder struct {
	renderer *renderer.Engine
	coll     metadata.CollectionID
	updates  int
	resizes  [][2]uint32
	shutdown bool
}

func newRecordingGame(t *testing.T, frames uint64) (*Game, *recorder) {
	rec := &recorder{}
	g := &Game{
		ApplicationConfig: &ApplicationConfig{Config: headlessConfig(t), MaxFrames: frames},
		FnInitialize: func(r *renderer.Engine, ctx metadata.ContextID, view metadata.ViewID) error {
			rec.renderer = r
			var err error
			rec.coll, err = r.CollectionCreate(metadata.CollectionConfig{MaxInstances: 4})
			return err
		},
		FnUpdate: func(float64) error {
			rec.updates++
			return nil
		},
		FnRender: func(float64) ([]metadata.CollectionID, error) {
			return []metadata.CollectionID{rec.coll}, nil
		},
		FnOnResize: func(w, h uint32) error {
			rec.resizes = append(rec.resizes, [2]uint32{w, h})
			return nil
		},
		FnShutdown: func() error {
			rec.shutdown = true
			return nil
		},
	}
	return g, rec
}

func TestNewRejectsIncompleteGame(t *testing.T) {
	_, err := New(nil)
	assert.ErrorIs(t, err, core.ErrInvalidArgument)
	_, err = New(&Game{ApplicationConfig: &ApplicationConfig{}})
	assert.ErrorIs(t, err, core.ErrInvalidArgument)
}

func TestRunBeforeInitialize(t *testing.T) {
	g, _ := newRecordingGame(t, 1)
	e, err := New(g)
	require.NoError(t, err)
	assert.ErrorIs(t, e.Run(), core.ErrNotInitialized)
}

func TestHeadlessLoopPresentsFrames(t *testing.T) {
	g, rec := newRecordingGame(t, 5)
	e, err := New(g)
	require.NoError(t, err)
	require.NoError(t, e.Initialize())
	require.NoError(t, e.Run())

	assert.Equal(t, uint64(5), e.FramesPresented())
	assert.Equal(t, 5, rec.updates)
	assert.Equal(t, [][2]uint32{{1280, 720}}, rec.resizes)

	require.NoError(t, e.Shutdown())
	assert.True(t, rec.shutdown)
	assert.False(t, rec.renderer.IsInited())
}

func TestResizeEventSkipsZeroExtentFrames(t *testing.T) {
	g, rec := newRecordingGame(t, 2)
	e, err := New(g)
	require.NoError(t, err)
	require.NoError(t, e.Initialize())
	t.Cleanup(func() { _ = e.Shutdown() })

	data := core.EventContext{}
	data.U32[0], data.U32[1] = 0, 0
	assert.True(t, e.Events().Fire(core.EVENT_CODE_RESIZED, nil, data))
	w, h := e.GetFramebufferSize()
	assert.Equal(t, uint32(0), w)
	assert.Equal(t, uint32(0), h)

	// Draws report a booting swapchain until the extent is valid again.
	err = rec.renderer.ContextDrawCollections(e.context, e.view, []metadata.CollectionID{rec.coll})
	assert.ErrorIs(t, err, core.ErrSwapchainBooting)

	data.U32[0], data.U32[1] = 640, 480
	assert.True(t, e.Events().Fire(core.EVENT_CODE_RESIZED, nil, data))
	assert.Equal(t, [2]uint32{640, 480}, rec.resizes[len(rec.resizes)-1])

	require.NoError(t, e.Run())
	assert.Equal(t, uint64(2), e.FramesPresented())
	cw, ch, err := rec.renderer.ContextGetDimensions(e.context)
	require.NoError(t, err)
	assert.Equal(t, uint32(640), cw)
	assert.Equal(t, uint32(480), ch)
}

func TestQuitEventStopsLoop(t *testing.T) {
	g, _ := newRecordingGame(t, 0)
	e, err := New(g)
	require.NoError(t, err)
	require.NoError(t, e.Initialize())
	t.Cleanup(func() { _ = e.Shutdown() })

	g.FnUpdate = func(float64) error {
		e.Events().Fire(core.EVENT_CODE_APPLICATION_QUIT, nil, core.EventContext{})
		return nil
	}
	require.NoError(t, e.Run())
	assert.Equal(t, uint64(1), e.FramesPresented())
}

func TestUnknownBackend(t *testing.T) {
	_, err := newBackend("metal")
	assert.ErrorIs(t, err, core.ErrUnsupported)
}
