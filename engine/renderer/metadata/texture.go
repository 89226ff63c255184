package metadata

/**
 * @brief Represents various types of textures.
 */
type TextureType int

const (
	TextureType1d TextureType = iota
	TextureType2d
	TextureType3d
)

func (t TextureType) String() string {
	switch t {
	case TextureType1d:
		return "1d"
	case TextureType2d:
		return "2d"
	case TextureType3d:
		return "3d"
	}
	return "unknown"
}

/**
 * @brief The component type of a texel.
 */
type TexelFormat int

const (
	TexelFormatUint8 TexelFormat = iota
	TexelFormatUint16
	TexelFormatInt16
	TexelFormatFloat32
)

// ComponentSize is the size of a single channel in bytes.
func (f TexelFormat) ComponentSize() uint32 {
	switch f {
	case TexelFormatUint8:
		return 1
	case TexelFormatUint16, TexelFormatInt16:
		return 2
	case TexelFormatFloat32:
		return 4
	}
	return 0
}

/**
 * @brief The configuration for a texture.
 */
type TextureInfo struct {
	/** @brief The texture type. */
	TextureType TextureType
	/** @brief The texel component format. */
	Format TexelFormat
	/** @brief The texture Width. */
	Width uint32
	/** @brief The texture Height. 1 for 1D textures. */
	Height uint32
	/** @brief The texture Depth. 1 for 1D and 2D textures. */
	Depth uint32
	/** @brief The number of channels per texel. */
	ChannelCount uint8
	/** @brief Use nearest filtering instead of linear. */
	Nearest bool
}

// TexelSize is the byte size of one texel.
func (i TextureInfo) TexelSize() uint32 {
	return i.Format.ComponentSize() * uint32(i.ChannelCount)
}

// ByteSize is the byte size of the whole image.
func (i TextureInfo) ByteSize() uint64 {
	return uint64(i.Width) * uint64(i.Height) * uint64(i.Depth) * uint64(i.TexelSize())
}

/**
 * @brief Options for textures decoded from an encoded image.
 */
type TextureLoadOptions struct {
	/** @brief Flip rows so the first row is the bottom of the image. */
	FlipY   bool
	Nearest bool
}
