// Package renderer is the handle-based rendering facade. Clients describe
// geometry, textures, appearances, spatials, states, collections, views and
// contexts through opaque handles; the Engine owns every GPU object behind
// them. An Engine is confined to a single goroutine.
package renderer

import (
	"fmt"
	"sync"

	"github.com/spaghettifunk/prism/engine/assets"
	"github.com/spaghettifunk/prism/engine/config"
	"github.com/spaghettifunk/prism/engine/core"
	"github.com/spaghettifunk/prism/engine/renderer/gpu"
	"github.com/spaghettifunk/prism/engine/renderer/metadata"
)

// ReferenceColorFormat is the color format pipelines are compiled against.
const ReferenceColorFormat = gpu.FormatB8G8R8A8Unorm

type Engine struct {
	cfg     *config.Config
	backend gpu.Backend
	assets  *assets.AssetManager
	window  interface{}
	inited  bool

	shaders      [metadata.ShaderTemplateCount]shaderPair
	materialPool gpu.DescriptorPool
	viewLayout   gpu.DescriptorSetLayout
	renderPass   gpu.RenderPass
	identity     metadata.SpatialID

	contexts     *registry[metadata.ContextID, context]
	views        *registry[metadata.ViewID, view]
	geometryData *registry[metadata.GeometryDataID, geometryData]
	geometries   *registry[metadata.GeometryID, geometry]
	textures     *registry[metadata.TextureID, texture]
	appearances  *registry[metadata.AppearanceID, appearance]
	spatials     *registry[metadata.SpatialID, spatial]
	states       *registry[metadata.StateID, state]
	collections  *registry[metadata.CollectionID, collection]
	instances    *core.IDPool
}

// New returns an engine that will drive backend once initialized.
func New(backend gpu.Backend) *Engine {
	return &Engine{backend: backend}
}

var initEngine sync.Once
var engine *Engine
var engineErr error

// Initialize creates and initializes the process default engine. Later
// calls return the same engine.
func Initialize(backend gpu.Backend, cfg *config.Config) (*Engine, error) {
	initEngine.Do(func() {
		engine = New(backend)
		engineErr = engine.Init(cfg)
	})
	return engine, engineErr
}

// SetWindow hands the backend a native window at Init so it can pick a
// device able to present to it. Must be called before Init.
func (e *Engine) SetWindow(window interface{}) {
	e.window = window
}

// Get returns the process default engine, nil before Initialize.
func Get() *Engine {
	return engine
}

// Init brings up the backend and every engine-wide object: shader
// modules, the material descriptor pool, the default view layout, the
// reference render pass and the identity spatial.
func (e *Engine) Init(cfg *config.Config) error {
	if e.inited {
		return fmt.Errorf("%w: engine already initialized", core.ErrInvalidArgument)
	}
	if cfg == nil {
		cfg = config.Default()
	}
	if err := cfg.Validate(); err != nil {
		core.LogError(err.Error())
		return err
	}
	e.cfg = cfg
	if err := core.SetLogLevel(cfg.LogLevel); err != nil {
		core.LogWarn("invalid log level %q: %s", cfg.LogLevel, err)
	}
	core.EnableAssertions(cfg.Debug)

	if err := e.backend.Initialize(&gpu.InitConfig{
		AppName:           cfg.AppName,
		Validation:        cfg.Validation,
		MaxAllocationSize: cfg.MaxAllocationSize,
		Window:            e.window,
	}); err != nil {
		err := fmt.Errorf("failed to initialize %s backend: %w", e.backend.Name(), err)
		core.LogError(err.Error())
		return err
	}

	capacity := cfg.IDPoolCapacity
	e.contexts = newRegistry[metadata.ContextID, context]("context", capacity)
	e.views = newRegistry[metadata.ViewID, view]("view", capacity)
	e.geometryData = newRegistry[metadata.GeometryDataID, geometryData]("geometry data", capacity)
	e.geometries = newRegistry[metadata.GeometryID, geometry]("geometry", capacity)
	e.textures = newRegistry[metadata.TextureID, texture]("texture", capacity)
	e.appearances = newRegistry[metadata.AppearanceID, appearance]("appearance", capacity)
	e.spatials = newRegistry[metadata.SpatialID, spatial]("spatial", capacity)
	e.states = newRegistry[metadata.StateID, state]("state", capacity)
	e.collections = newRegistry[metadata.CollectionID, collection]("collection", capacity)
	e.instances = core.NewIDPool(capacity)

	e.assets = assets.NewAssetManager(cfg.ShaderPath)
	if err := e.assets.Initialize(cfg.WatchShaders); err != nil {
		return err
	}
	for _, t := range metadata.ShaderTemplates {
		if err := e.loadShaderTemplate(t); err != nil {
			return err
		}
	}

	var err error
	sets := cfg.MaxAppearances * metadata.FramesInFlight
	e.materialPool, err = e.backend.CreateDescriptorPool(sets, []gpu.DescriptorPoolSize{
		{Type: gpu.DescriptorTypeCombinedImageSampler, Count: sets},
		{Type: gpu.DescriptorTypeUniformBuffer, Count: sets},
	})
	if err != nil {
		return fatal("create material descriptor pool", err)
	}
	if e.viewLayout, err = e.backend.CreateDescriptorSetLayout(viewBindings()); err != nil {
		return fatal("create default view layout", err)
	}
	if e.renderPass, err = e.backend.CreateRenderPass(ReferenceColorFormat, e.backend.DepthFormat()); err != nil {
		return fatal("create reference render pass", err)
	}

	e.inited = true
	e.identity, err = e.SpatialCreate(metadata.SpatialInfo{Model: identityMatrix()})
	if err != nil {
		e.inited = false
		return err
	}

	core.LogInfo("engine initialized on %s backend (max allocation %d bytes)", e.backend.Name(), e.backend.Limits().MaxAllocationSize)
	return nil
}

func (e *Engine) IsInited() bool {
	return e.inited
}

// Dispose releases every live resource and shuts the backend down.
func (e *Engine) Dispose() error {
	if !e.inited {
		return nil
	}
	if err := e.backend.WaitIdle(); err != nil {
		return fatal("wait idle", err)
	}

	for _, id := range e.views.ids() {
		_ = e.ViewDispose(id)
	}
	for _, id := range e.contexts.ids() {
		_ = e.ContextDispose(id)
	}
	for _, id := range e.collections.ids() {
		_ = e.CollectionDispose(id)
	}
	for _, id := range e.appearances.ids() {
		_ = e.AppearanceDispose(id)
	}
	for _, id := range e.textures.ids() {
		_ = e.TextureDispose(id)
	}
	for _, id := range e.geometryData.ids() {
		_ = e.GeometryDataDispose(id)
	}
	for _, id := range e.geometries.ids() {
		_ = e.GeometryDispose(id)
	}
	for _, id := range e.states.ids() {
		_ = e.StateDispose(id)
	}
	e.spatials.clear()

	for i := range e.shaders {
		e.shaders[i].destroy()
	}
	e.renderPass.Destroy()
	e.viewLayout.Destroy()
	e.materialPool.Destroy()

	if err := e.assets.Shutdown(); err != nil {
		core.LogWarn("failed to stop asset watcher: %s", err)
	}
	e.inited = false
	if err := e.backend.Shutdown(); err != nil {
		return fatal("backend shutdown", err)
	}
	core.LogInfo("engine disposed")
	return nil
}

// Backend returns the backend the engine drives.
func (e *Engine) Backend() gpu.Backend {
	return e.backend
}

func (e *Engine) ready() error {
	if !e.inited {
		return core.ErrNotInitialized
	}
	return nil
}

// fatal logs the failing operation and wraps err.
func fatal(op string, err error) error {
	err = fmt.Errorf("failed to %s: %w", op, err)
	core.LogError(err.Error())
	return err
}

// invalid reports a caller contract violation.
func invalid(format string, args ...interface{}) error {
	err := fmt.Errorf("%w: %s", core.ErrInvalidArgument, fmt.Sprintf(format, args...))
	core.Assert(false, "%s", err.Error())
	return err
}
