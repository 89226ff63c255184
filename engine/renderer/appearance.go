package renderer

import (
	"github.com/spaghettifunk/prism/engine/math"
	"github.com/spaghettifunk/prism/engine/renderer/gpu"
	"github.com/spaghettifunk/prism/engine/renderer/metadata"
)

type appearance struct {
	info   metadata.AppearanceInfo
	slice  metadata.VolumeSliceParams
	layout gpu.DescriptorSetLayout
	// sets has one entry per frame in flight, empty for templates without bindings.
	sets     []gpu.DescriptorSet
	uniforms [metadata.FramesInFlight]gpu.Buffer
	mapped   [metadata.FramesInFlight][]byte
}

func (a *appearance) writeVolumeSlice() {
	for _, m := range a.mapped {
		if m == nil {
			continue
		}
		math.PutFloats(m, a.slice.WindowCenter, a.slice.WindowWidth, a.slice.RescaleSlope, a.slice.RescaleIntercept, a.slice.Slice, 0, 0, 0)
	}
}

// AppearanceCreate builds the template's descriptor layout, per-frame
// descriptor sets from the shared material pool and, for templates with
// uniform payloads, persistently mapped per-frame uniform buffers.
func (e *Engine) AppearanceCreate(info metadata.AppearanceInfo) (metadata.AppearanceID, error) {
	if err := e.ready(); err != nil {
		return metadata.InvalidAppearance, err
	}
	if info.Template < 0 || info.Template >= metadata.ShaderTemplateCount {
		return metadata.InvalidAppearance, invalid("unknown shader template %d", info.Template)
	}
	var tex *texture
	if info.Template.NeedsTexture() {
		var err error
		if tex, err = e.textures.lookup(info.Texture); err != nil {
			return metadata.InvalidAppearance, err
		}
	}

	a := &appearance{info: info, slice: metadata.DefaultVolumeSliceParams()}
	if info.VolumeSlice != nil {
		a.slice = *info.VolumeSlice
	}
	a.info.VolumeSlice = nil

	bindings := appearanceBindings(info.Template)
	if bindings != nil {
		var err error
		if a.layout, err = e.backend.CreateDescriptorSetLayout(bindings); err != nil {
			return metadata.InvalidAppearance, fatal("create appearance layout", err)
		}
		if a.sets, err = e.materialPool.Allocate(a.layout, metadata.FramesInFlight); err != nil {
			return metadata.InvalidAppearance, fatal("allocate appearance descriptor sets", err)
		}
	}
	if info.Template.HasUniform() {
		for i := range a.uniforms {
			buf, err := e.backend.CreateBuffer(metadata.VolumeSliceUniformSize, gpu.BufferUsageUniform, true)
			if err != nil {
				return metadata.InvalidAppearance, fatal("create appearance uniform buffer", err)
			}
			a.uniforms[i] = buf
			if a.mapped[i], err = buf.Map(); err != nil {
				return metadata.InvalidAppearance, fatal("map appearance uniform buffer", err)
			}
		}
		a.writeVolumeSlice()
	}

	for frame, set := range a.sets {
		var writes []gpu.DescriptorWrite
		for _, b := range bindings {
			switch b.Type {
			case gpu.DescriptorTypeCombinedImageSampler:
				writes = append(writes, gpu.DescriptorWrite{Binding: b.Binding, Type: b.Type, Image: tex.image})
			case gpu.DescriptorTypeUniformBuffer:
				writes = append(writes, gpu.DescriptorWrite{Binding: b.Binding, Type: b.Type, Buffer: a.uniforms[frame], Range: metadata.VolumeSliceUniformSize})
			}
		}
		set.Update(writes)
	}
	return e.appearances.insert(a)
}

func (e *Engine) AppearanceAvailable(id metadata.AppearanceID) bool {
	return e.inited && e.appearances.available(id)
}

// AppearanceUpdateVolumeSlice rewrites the payload into every frame's
// uniform buffer so any frame in flight reads consistent data.
func (e *Engine) AppearanceUpdateVolumeSlice(id metadata.AppearanceID, params metadata.VolumeSliceParams) error {
	if err := e.ready(); err != nil {
		return err
	}
	a, err := e.appearances.lookup(id)
	if err != nil {
		return err
	}
	if !a.info.Template.HasUniform() {
		return invalid("appearance %d uses template %s which has no volume-slice data", id, a.info.Template)
	}
	a.slice = params
	a.writeVolumeSlice()
	return nil
}

// AppearanceGetVolumeSlice returns the current payload of a volume-slice appearance.
func (e *Engine) AppearanceGetVolumeSlice(id metadata.AppearanceID) (metadata.VolumeSliceParams, bool) {
	if !e.inited {
		return metadata.VolumeSliceParams{}, false
	}
	a, ok := e.appearances.get(id)
	if !ok || !a.info.Template.HasUniform() {
		return metadata.VolumeSliceParams{}, false
	}
	return a.slice, true
}

func (e *Engine) AppearanceDispose(id metadata.AppearanceID) error {
	if err := e.ready(); err != nil {
		return err
	}
	a, err := e.appearances.lookup(id)
	if err != nil {
		return err
	}
	if len(a.sets) > 0 {
		if err := e.materialPool.Free(a.sets); err != nil {
			return fatal("free appearance descriptor sets", err)
		}
		a.sets = nil
	}
	for i, buf := range a.uniforms {
		if buf == nil {
			continue
		}
		buf.Unmap()
		buf.Destroy()
		a.uniforms[i] = nil
		a.mapped[i] = nil
	}
	if a.layout != nil {
		a.layout.Destroy()
		a.layout = nil
	}
	e.appearances.remove(id)
	return nil
}
