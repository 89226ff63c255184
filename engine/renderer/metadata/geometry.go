package metadata

/**
 * @brief A vertex attribute. Values are bits so layouts can be expressed as masks.
 */
type Attribute uint8

const (
	/** @brief No attribute. Used to address the interleaved buffer. */
	AttributeNone Attribute = 0
	/** @brief 3 x float32 position. */
	AttributePosition Attribute = 1 << 0
	/** @brief 3 x float32 normal. */
	AttributeNormal Attribute = 1 << 1
	/** @brief 4 x float32 linear color. */
	AttributeColor Attribute = 1 << 2
	/** @brief 3 x float32 texture coordinate (uvw). */
	AttributeTexCoord Attribute = 1 << 3
	/** @brief Pseudo attribute addressing the index buffer. */
	AttributeIndex Attribute = 1 << 7
)

/** @brief Attributes in binding/location order. */
var VertexAttributes = [...]Attribute{AttributePosition, AttributeNormal, AttributeColor, AttributeTexCoord}

/** @brief Byte size of a single index. */
const IndexSize = 4

// Size returns the byte size of a single attribute value.
func (a Attribute) Size() uint32 {
	switch a {
	case AttributePosition, AttributeNormal, AttributeTexCoord:
		return 12
	case AttributeColor:
		return 16
	case AttributeIndex:
		return IndexSize
	}
	return 0
}

// Location is the shader input location of a vertex attribute.
func (a Attribute) Location() uint32 {
	for i, v := range VertexAttributes {
		if v == a {
			return uint32(i)
		}
	}
	return InvalidID
}

func (a Attribute) String() string {
	switch a {
	case AttributeNone:
		return "interleaved"
	case AttributePosition:
		return "position"
	case AttributeNormal:
		return "normal"
	case AttributeColor:
		return "color"
	case AttributeTexCoord:
		return "texcoord"
	case AttributeIndex:
		return "index"
	}
	return "unknown"
}

/** @brief A set of vertex attributes. */
type AttributeMask uint8

func (m AttributeMask) Has(a Attribute) bool {
	return a != AttributeNone && AttributeMask(a)&m == AttributeMask(a)
}

// Attributes returns the attributes in the mask in location order.
func (m AttributeMask) Attributes() []Attribute {
	var out []Attribute
	for _, a := range VertexAttributes {
		if m.Has(a) {
			out = append(out, a)
		}
	}
	return out
}

/**
 * @brief Describes which attributes a geometry data carries and whether they
 * share one buffer.
 */
type AttributeLayout struct {
	/** @brief The attributes present. Position is required. */
	Attributes AttributeMask
	/** @brief True when all attributes are packed per vertex in one buffer. */
	Interleaved bool
}

// Stride is the sum of the attribute sizes, i.e. the interleaved vertex size.
func (l AttributeLayout) Stride() uint32 {
	var stride uint32
	for _, a := range l.Attributes.Attributes() {
		stride += a.Size()
	}
	return stride
}

// Offset is the byte offset of a within an interleaved vertex.
func (l AttributeLayout) Offset(a Attribute) uint32 {
	var off uint32
	for _, v := range l.Attributes.Attributes() {
		if v == a {
			return off
		}
		off += v.Size()
	}
	return InvalidID
}

/**
 * @brief Primitive topology of a geometry.
 */
type PrimitiveTopology int

const (
	TopologyTriangleList PrimitiveTopology = iota
	TopologyTriangleStrip
	TopologyTriangleFan
	TopologyLineList
	TopologyLineStrip
	TopologyPointList
)

// IsTriangle reports whether the topology rasterizes polygons.
func (t PrimitiveTopology) IsTriangle() bool {
	switch t {
	case TopologyTriangleList, TopologyTriangleStrip, TopologyTriangleFan:
		return true
	}
	return false
}

/**
 * @brief The configuration for a geometry.
 */
type GeometryInfo struct {
	/** @brief How vertices are assembled. */
	Topology PrimitiveTopology
}
