package metadata

/** @brief Pre-defined resource types. */
type ResourceType int

const (
	ResourceTypeNone ResourceType = iota
	/** @brief Precompiled SPIR-V shader stage. */
	ResourceTypeShader
	/** @brief Encoded image decoded to RGBA8. */
	ResourceTypeImage
	/** @brief Raw binary data. */
	ResourceTypeBinary
)

/**
 * @brief A loaded resource.
 */
type Resource struct {
	/** @brief The name of the resource. */
	Name string
	/** @brief The full file path of the resource, empty when loaded from memory. */
	FullPath string
	/** @brief The type the resource was loaded as. */
	Type ResourceType
	/** @brief The size of the resource data in bytes. */
	DataSize uint64
	/** @brief The resource data. */
	Data interface{}
}

/**
 * @brief Parameters used when loading an image.
 */
type ImageResourceParams struct {
	/** @brief Indicates if the image should be flipped on the y-axis when loaded. */
	FlipY bool
}

/**
 * @brief Decoded image pixels, always 4 channels of 8 bits.
 */
type ImageResourceData struct {
	ChannelCount uint8
	Width        uint32
	Height       uint32
	Pixels       []uint8
}
