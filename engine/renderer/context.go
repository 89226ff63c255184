package renderer

import (
	"github.com/google/uuid"

	"github.com/spaghettifunk/prism/engine/core"
	"github.com/spaghettifunk/prism/engine/renderer/gpu"
	"github.com/spaghettifunk/prism/engine/renderer/metadata"
)

type context struct {
	label   string
	window  interface{}
	width   uint32
	height  uint32
	surface gpu.Surface

	imageAvailable [metadata.FramesInFlight]gpu.Semaphore
	renderFinished [metadata.FramesInFlight]gpu.Semaphore
	inFlight       [metadata.FramesInFlight]gpu.Fence

	// resized requests swapchain recreation before the next frame.
	resized bool
	view    metadata.ViewID

	clock   *core.Clock
	metrics *core.FrameMetrics
}

// ContextCreate builds a presentation surface for cfg.Window and the
// per-frame synchronization objects. Fences start signaled.
func (e *Engine) ContextCreate(cfg metadata.ContextConfig) (metadata.ContextID, error) {
	if err := e.ready(); err != nil {
		return metadata.InvalidContext, err
	}
	if cfg.Width == 0 || cfg.Height == 0 {
		return metadata.InvalidContext, invalid("context extent %dx%d has a zero dimension", cfg.Width, cfg.Height)
	}
	ctx := &context{
		label:   uuid.NewString(),
		window:  cfg.Window,
		width:   cfg.Width,
		height:  cfg.Height,
		view:    metadata.InvalidView,
		clock:   core.NewClock(),
		metrics: core.NewFrameMetrics(),
	}

	ctx.clock.Start()

	var err error
	if ctx.surface, err = e.backend.CreateSurface(cfg.Window); err != nil {
		return metadata.InvalidContext, fatal("create surface", err)
	}
	for i := 0; i < metadata.FramesInFlight; i++ {
		if ctx.imageAvailable[i], err = e.backend.CreateSemaphore(); err != nil {
			return metadata.InvalidContext, fatal("create image available semaphore", err)
		}
		if ctx.renderFinished[i], err = e.backend.CreateSemaphore(); err != nil {
			return metadata.InvalidContext, fatal("create render finished semaphore", err)
		}
		if ctx.inFlight[i], err = e.backend.CreateFence(true); err != nil {
			return metadata.InvalidContext, fatal("create in flight fence", err)
		}
	}

	id, err := e.contexts.insert(ctx)
	if err != nil {
		return metadata.InvalidContext, err
	}
	core.LogInfo("context %d (%s) created at %dx%d", id, ctx.label, ctx.width, ctx.height)
	return id, nil
}

func (e *Engine) ContextAvailable(id metadata.ContextID) bool {
	return e.inited && e.contexts.available(id)
}

func (e *Engine) ContextGetDimensions(id metadata.ContextID) (uint32, uint32, error) {
	if err := e.ready(); err != nil {
		return 0, 0, err
	}
	ctx, err := e.contexts.lookup(id)
	if err != nil {
		return 0, 0, err
	}
	return ctx.width, ctx.height, nil
}

// ContextResized records the new extent; the view's swapchain is rebuilt
// before its next frame.
func (e *Engine) ContextResized(id metadata.ContextID, viewID metadata.ViewID, width, height uint32) error {
	if err := e.ready(); err != nil {
		return err
	}
	ctx, err := e.contexts.lookup(id)
	if err != nil {
		return err
	}
	if _, err := e.views.lookup(viewID); err != nil {
		return err
	}
	if ctx.view != viewID {
		return invalid("view %d is not bound to context %d", viewID, id)
	}
	ctx.width, ctx.height = width, height
	ctx.resized = true
	core.LogDebug("context %d resized to %dx%d", id, width, height)
	return nil
}

// ContextFrameStats returns frames per second and the average frame time in ms.
func (e *Engine) ContextFrameStats(id metadata.ContextID) (float64, float64, error) {
	if err := e.ready(); err != nil {
		return 0, 0, err
	}
	ctx, err := e.contexts.lookup(id)
	if err != nil {
		return 0, 0, err
	}
	fps, ms := ctx.metrics.Frame()
	return fps, ms, nil
}

// ContextDispose fails while a view is still bound to the context.
func (e *Engine) ContextDispose(id metadata.ContextID) error {
	if err := e.ready(); err != nil {
		return err
	}
	ctx, err := e.contexts.lookup(id)
	if err != nil {
		return err
	}
	if e.views.available(ctx.view) {
		return invalid("context %d still has view %d bound", id, ctx.view)
	}
	if err := e.backend.WaitIdle(); err != nil {
		return fatal("wait idle", err)
	}
	for i := 0; i < metadata.FramesInFlight; i++ {
		ctx.imageAvailable[i].Destroy()
		ctx.renderFinished[i].Destroy()
		ctx.inFlight[i].Destroy()
	}
	ctx.surface.Destroy()
	e.contexts.remove(id)
	core.LogInfo("context %d (%s) disposed", id, ctx.label)
	return nil
}
