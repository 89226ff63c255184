package metadata

/**
 * @brief Window and rescale parameters for sampling one slice of a volume.
 */
type VolumeSliceParams struct {
	WindowCenter     float32
	WindowWidth      float32
	RescaleSlope     float32
	RescaleIntercept float32
	/** @brief Normalized depth of the sampled slice in [0, 1]. */
	Slice float32
}

/** @brief Size of the volume-slice uniform block (std140, padded). */
const VolumeSliceUniformSize = 32

// DefaultVolumeSliceParams is an identity window over normalized data.
func DefaultVolumeSliceParams() VolumeSliceParams {
	return VolumeSliceParams{
		WindowCenter: 0.5,
		WindowWidth:  1,
		RescaleSlope: 1,
		Slice:        0.5,
	}
}

/**
 * @brief The configuration for an appearance (material).
 */
type AppearanceInfo struct {
	/** @brief Selects the shader pair and descriptor layout. */
	Template ShaderTemplate
	/** @brief Diffuse texture. Required by textured templates, ignored otherwise. */
	Texture TextureID
	/** @brief Initial volume-slice payload. Nil uses DefaultVolumeSliceParams. */
	VolumeSlice *VolumeSliceParams
}
