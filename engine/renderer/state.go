package renderer

import (
	"github.com/spaghettifunk/prism/engine/core"
	"github.com/spaghettifunk/prism/engine/math"
	"github.com/spaghettifunk/prism/engine/renderer/metadata"
)

type state struct {
	info metadata.StateInfo
}

// StateCreate registers draw state. Line widths beyond the device limit are clamped.
func (e *Engine) StateCreate(info metadata.StateInfo) (metadata.StateID, error) {
	if err := e.ready(); err != nil {
		return metadata.InvalidState, err
	}
	if info.PointSize <= 0 || info.LineWidth <= 0 {
		return metadata.InvalidState, invalid("point size and line width must be positive")
	}
	if info.DepthCompare < metadata.CompareLess || info.DepthCompare > metadata.CompareNever {
		return metadata.InvalidState, invalid("unknown depth compare function %d", info.DepthCompare)
	}
	if max := e.backend.Limits().MaxLineWidth; max > 0 && info.LineWidth > max {
		core.LogWarn("line width %.1f clamped to device limit %.1f", info.LineWidth, max)
		info.LineWidth = math.Clamp(info.LineWidth, 1, max)
	}
	return e.states.insert(&state{info: info})
}

func (e *Engine) StateAvailable(id metadata.StateID) bool {
	return e.inited && e.states.available(id)
}

func (e *Engine) StateDispose(id metadata.StateID) error {
	if err := e.ready(); err != nil {
		return err
	}
	if _, ok := e.states.remove(id); !ok {
		_, err := e.states.lookup(id)
		return err
	}
	return nil
}

// resolveState returns the instance's state or the defaults.
func (e *Engine) resolveState(id metadata.StateID) metadata.StateInfo {
	if s, ok := e.states.get(id); ok {
		return s.info
	}
	return metadata.DefaultStateInfo()
}
