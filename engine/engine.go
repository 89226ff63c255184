// Package engine runs the application loop: it opens the window, brings
// the renderer up on the configured backend and drives a Game through
// update, render and resize.
package engine

import (
	"errors"
	"fmt"
	"sync/atomic"

	"github.com/spaghettifunk/prism/engine/config"
	"github.com/spaghettifunk/prism/engine/core"
	"github.com/spaghettifunk/prism/engine/platform"
	"github.com/spaghettifunk/prism/engine/renderer"
	"github.com/spaghettifunk/prism/engine/renderer/gpu"
	"github.com/spaghettifunk/prism/engine/renderer/headless"
	"github.com/spaghettifunk/prism/engine/renderer/metadata"
	"github.com/spaghettifunk/prism/engine/renderer/vulkan"
)

type Stage uint8

const (
	// Engine is in an uninitialized state
	EngineStageUninitialized Stage = iota
	// Engine is currently initializing
	EngineStageInitializing
	// Engine initialization is complete
	EngineStageInitialized
	// Engine is currently running
	EngineStageRunning
	// Engine is in the process of shutting down
	EngineStageShuttingDown
)

type Engine struct {
	currentStage Stage
	gameInstance *Game
	cfg          *config.Config
	isRunning    bool
	isSuspended  bool
	stop         atomic.Bool
	bus          *core.EventBus
	platform     *platform.Platform
	renderer     *renderer.Engine
	context      metadata.ContextID
	view         metadata.ViewID
	width        uint32
	height       uint32
	clock        *core.Clock
	lastTime     float64
	frames       uint64
}

func New(g *Game) (*Engine, error) {
	if g == nil || g.ApplicationConfig == nil {
		return nil, fmt.Errorf("%w: game and application config are required", core.ErrInvalidArgument)
	}
	if g.FnInitialize == nil || g.FnUpdate == nil || g.FnRender == nil {
		return nil, fmt.Errorf("%w: game must provide initialize, update and render", core.ErrInvalidArgument)
	}
	return &Engine{
		currentStage: EngineStageUninitialized,
		gameInstance: g,
		bus:          core.NewEventBus(),
		clock:        core.NewClock(),
		context:      metadata.InvalidContext,
		view:         metadata.InvalidView,
	}, nil
}

// newBackend picks the gpu.Backend named by the configuration.
func newBackend(name string) (gpu.Backend, error) {
	switch name {
	case config.BackendVulkan:
		return vulkan.New(), nil
	case config.BackendHeadless:
		return headless.New(), nil
	}
	return nil, fmt.Errorf("%w: unknown backend %q", core.ErrUnsupported, name)
}

func (e *Engine) Initialize() error {
	e.currentStage = EngineStageInitializing

	cfg, err := e.gameInstance.ApplicationConfig.load()
	if err != nil {
		return err
	}
	e.cfg = cfg
	if err := core.SetLogLevel(cfg.LogLevel); err != nil {
		core.LogWarn("invalid log level %q: %s", cfg.LogLevel, err)
	}

	// register some events
	e.bus.Register(core.EVENT_CODE_APPLICATION_QUIT, e, e.onEvent)
	e.bus.Register(core.EVENT_CODE_RESIZED, e, e.onResized)

	backend, err := newBackend(cfg.Backend)
	if err != nil {
		core.LogError(err.Error())
		return err
	}

	var window interface{}
	e.width, e.height = cfg.Window.Width, cfg.Window.Height
	if cfg.Backend == config.BackendVulkan {
		e.platform = platform.New(e.bus)
		if err := e.platform.Startup(cfg.AppName, cfg.Window); err != nil {
			return err
		}
		window = e.platform.Window
		e.width, e.height = e.platform.FramebufferSize()
	}

	e.renderer = renderer.New(backend)
	e.renderer.SetWindow(window)
	if err := e.renderer.Init(cfg); err != nil {
		return err
	}

	e.context, err = e.renderer.ContextCreate(metadata.ContextConfig{
		Window: window,
		Width:  e.width,
		Height: e.height,
	})
	if err != nil {
		return err
	}
	e.view, err = e.renderer.ViewCreate(metadata.DefaultViewDesc(aspect(e.width, e.height)), e.context)
	if err != nil {
		return err
	}

	if err := e.gameInstance.FnInitialize(e.renderer, e.context, e.view); err != nil {
		return err
	}
	if e.gameInstance.FnOnResize != nil {
		if err := e.gameInstance.FnOnResize(e.width, e.height); err != nil {
			return err
		}
	}

	e.currentStage = EngineStageInitialized
	return nil
}

func (e *Engine) Run() error {
	if e.currentStage != EngineStageInitialized {
		return fmt.Errorf("%w: engine must be initialized before running", core.ErrNotInitialized)
	}
	e.currentStage = EngineStageRunning
	e.isRunning = true

	e.clock.Start()
	e.clock.Update()
	e.lastTime = e.clock.Elapsed()

	var runningTime float64 = 0.0
	maxFrames := e.gameInstance.ApplicationConfig.MaxFrames

	for e.isRunning {
		if e.stop.Load() {
			break
		}
		if e.platform != nil && !e.platform.PumpMessages() {
			break
		}
		if e.isSuspended {
			// Nothing to present to; give the time back to the OS.
			e.platform.Sleep(10)
			continue
		}

		// Update clock and get delta time.
		e.clock.Update()
		currentTime := e.clock.Elapsed()
		delta := currentTime - e.lastTime

		if err := e.gameInstance.FnUpdate(delta); err != nil {
			core.LogError("Game update failed, shutting down: %s", err)
			return err
		}

		// Call the game's render routine.
		collections, err := e.gameInstance.FnRender(delta)
		if err != nil {
			core.LogError("Game render failed, shutting down: %s", err)
			return err
		}

		err = e.renderer.ContextDrawCollections(e.context, e.view, collections)
		switch {
		case errors.Is(err, core.ErrSwapchainBooting):
			core.LogDebug("frame skipped: %s", err)
		case err != nil:
			return err
		default:
			e.frames++
		}

		runningTime += delta
		if runningTime >= 1.0 {
			if fps, ms, err := e.renderer.ContextFrameStats(e.context); err == nil {
				core.LogDebug("%.0f fps, %.3f ms/frame", fps, ms)
			}
			runningTime = 0
		}

		if maxFrames > 0 && e.frames >= maxFrames {
			e.isRunning = false
		}

		// Update last time
		e.lastTime = currentTime
	}
	e.isRunning = false
	return nil
}

// Stop asks Run to return after the current frame. Safe to call from any goroutine.
func (e *Engine) Stop() {
	e.stop.Store(true)
}

func (e *Engine) Shutdown() error {
	e.currentStage = EngineStageShuttingDown
	var errs []error
	if e.gameInstance.FnShutdown != nil {
		if err := e.gameInstance.FnShutdown(); err != nil {
			errs = append(errs, err)
		}
	}
	if e.renderer != nil {
		if err := e.renderer.Dispose(); err != nil {
			errs = append(errs, err)
		}
	}
	if e.platform != nil {
		if err := e.platform.Shutdown(); err != nil {
			errs = append(errs, err)
		}
	}
	e.bus.Shutdown()
	e.currentStage = EngineStageUninitialized
	return errors.Join(errs...)
}

// GetFramebufferSize returns the width and height (in this order)
// of the application Framebuffer
func (e *Engine) GetFramebufferSize() (uint32, uint32) {
	return e.width, e.height
}

// FramesPresented counts the frames that reached presentation.
func (e *Engine) FramesPresented() uint64 {
	return e.frames
}

func (e *Engine) onEvent(code core.SystemEventCode, sender interface{}, listener interface{}, data core.EventContext) bool {
	if code == core.EVENT_CODE_APPLICATION_QUIT {
		core.LogInfo("EVENT_CODE_APPLICATION_QUIT received, shutting down.")
		e.isRunning = false
		return true
	}
	return false
}

func (e *Engine) onResized(code core.SystemEventCode, sender interface{}, listener interface{}, data core.EventContext) bool {
	width, height := data.U32[0], data.U32[1]

	// Check if different. If so, trigger a resize event.
	if width == e.width && height == e.height {
		return false
	}
	e.width, e.height = width, height
	core.LogDebug("Window resize: %d, %d", width, height)

	if err := e.renderer.ContextResized(e.context, e.view, width, height); err != nil {
		core.LogError(err.Error())
		return true
	}

	// Handle minimization
	if width == 0 || height == 0 {
		if e.platform != nil {
			core.LogInfo("Window minimized, suspending application.")
			e.isSuspended = true
		}
		return true
	}
	if e.isSuspended {
		core.LogInfo("Window restored, resuming application.")
		e.isSuspended = false
	}
	if e.gameInstance.FnOnResize != nil {
		if err := e.gameInstance.FnOnResize(width, height); err != nil {
			core.LogError(err.Error())
		}
	}
	return true
}

// Events exposes the bus the window reports on.
func (e *Engine) Events() *core.EventBus {
	return e.bus
}

func aspect(width, height uint32) float32 {
	if height == 0 {
		return 1
	}
	return float32(width) / float32(height)
}
