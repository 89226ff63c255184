package renderer

import (
	"fmt"

	"github.com/spaghettifunk/prism/engine/core"
	"github.com/spaghettifunk/prism/engine/renderer/gpu"
	"github.com/spaghettifunk/prism/engine/renderer/metadata"
)

type shaderPair struct {
	vert gpu.ShaderModule
	frag gpu.ShaderModule
}

func (p *shaderPair) destroy() {
	if p.vert != nil {
		p.vert.Destroy()
		p.vert = nil
	}
	if p.frag != nil {
		p.frag.Destroy()
		p.frag = nil
	}
}

// loadShaderTemplate (re)creates the module pair of t. On failure the
// previous pair, if any, stays in place.
func (e *Engine) loadShaderTemplate(t metadata.ShaderTemplate) error {
	vertCode, fragCode, err := e.assets.LoadShaderTemplate(t.Name())
	if err != nil {
		core.LogError(err.Error())
		return err
	}
	vert, err := e.backend.CreateShaderModule(vertCode)
	if err != nil {
		return fatal(fmt.Sprintf("create %s vertex module", t), err)
	}
	frag, err := e.backend.CreateShaderModule(fragCode)
	if err != nil {
		vert.Destroy()
		return fatal(fmt.Sprintf("create %s fragment module", t), err)
	}
	e.shaders[t].destroy()
	e.shaders[t] = shaderPair{vert: vert, frag: frag}
	core.LogDebug("shader template %s loaded", t)
	return nil
}

// reloadChangedShaders picks up template binaries rewritten on disk. Only
// pipelines compiled afterwards use the new modules.
func (e *Engine) reloadChangedShaders() {
	if !e.cfg.WatchShaders {
		return
	}
	for _, name := range e.assets.ChangedShaderTemplates() {
		t, ok := metadata.ShaderTemplateByName(name)
		if !ok {
			continue
		}
		if err := e.loadShaderTemplate(t); err != nil {
			core.LogWarn("keeping previous %s modules: %s", name, err)
			continue
		}
		core.LogInfo("shader template %s reloaded", name)
	}
}
