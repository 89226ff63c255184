package metadata

/**
 * @brief The closed set of shader templates. Each selects a precompiled
 * shader pair and a fixed descriptor-set layout.
 */
type ShaderTemplate int

const (
	/** @brief Position and color only. No appearance descriptor set. */
	ShaderTemplatePassthrough ShaderTemplate = iota
	/** @brief Directional light from the view. No appearance descriptor set. */
	ShaderTemplateSimpleLit
	/** @brief Sampler at binding 0. */
	ShaderTemplateSimpleTextured
	/** @brief Sampler at binding 0, volume-slice uniform at binding 1. */
	ShaderTemplateVolumeSlice

	ShaderTemplateCount
)

// ShaderTemplates lists every template in declaration order.
var ShaderTemplates = [...]ShaderTemplate{
	ShaderTemplatePassthrough,
	ShaderTemplateSimpleLit,
	ShaderTemplateSimpleTextured,
	ShaderTemplateVolumeSlice,
}

// Name is the file stem of the template binaries: <name>_vert.spv, <name>_frag.spv.
func (t ShaderTemplate) Name() string {
	switch t {
	case ShaderTemplatePassthrough:
		return "passthrough"
	case ShaderTemplateSimpleLit:
		return "simple_lit"
	case ShaderTemplateSimpleTextured:
		return "simple_textured"
	case ShaderTemplateVolumeSlice:
		return "volume_slice"
	}
	return "unknown"
}

func (t ShaderTemplate) String() string {
	return t.Name()
}

// ShaderTemplateByName is the inverse of Name.
func ShaderTemplateByName(name string) (ShaderTemplate, bool) {
	for _, t := range ShaderTemplates {
		if t.Name() == name {
			return t, true
		}
	}
	return ShaderTemplateCount, false
}

// NeedsTexture reports whether appearances of this template must reference a texture.
func (t ShaderTemplate) NeedsTexture() bool {
	switch t {
	case ShaderTemplateSimpleTextured, ShaderTemplateVolumeSlice:
		return true
	}
	return false
}

// HasUniform reports whether appearances of this template own per-frame uniform buffers.
func (t ShaderTemplate) HasUniform() bool {
	return t == ShaderTemplateVolumeSlice
}
