package engine

import (
	"github.com/spaghettifunk/prism/engine/renderer"
	"github.com/spaghettifunk/prism/engine/renderer/metadata"
)

type Game struct {
	ApplicationConfig *ApplicationConfig
	State             interface{}
	FnInitialize      Initialize
	FnUpdate          Update
	FnRender          Render
	FnOnResize        OnResize
	FnShutdown        Shutdown
}

// Initialize receives the renderer together with the context and view the
// engine created for the window.
type Initialize func(r *renderer.Engine, ctx metadata.ContextID, view metadata.ViewID) error
type Update func(deltaTime float64) error

// Render returns the collections to draw this frame.
type Render func(deltaTime float64) ([]metadata.CollectionID, error)
type OnResize func(width uint32, height uint32) error
type Shutdown func() error
