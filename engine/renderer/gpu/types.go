package gpu

// InitConfig configures Backend.Initialize.
type InitConfig struct {
	AppName    string
	Validation bool
	// MaxAllocationSize overrides the device limit when non-zero.
	MaxAllocationSize uint64
	// Window is used by backends that need a surface to pick a device.
	Window interface{}
}

type Limits struct {
	MaxAllocationSize    uint64
	MaxPushConstantsSize uint32
	MaxLineWidth         float32
	MaxImageDimension3D  uint32
}

// GuaranteedAllocationSize is the smallest maxMemoryAllocationSize a
// conformant Vulkan device may report.
const GuaranteedAllocationSize uint64 = 1 << 30

// AllocationLimit bounds a single allocation by the largest device-local
// heap and by GuaranteedAllocationSize.
func AllocationLimit(largestHeap uint64) uint64 {
	if largestHeap == 0 || largestHeap > GuaranteedAllocationSize {
		return GuaranteedAllocationSize
	}
	return largestHeap
}

type Extent2D struct {
	Width, Height uint32
}

type Extent3D struct {
	Width, Height, Depth uint32
}

type Offset3D struct {
	X, Y, Z int32
}

type BufferUsage uint32

const (
	BufferUsageTransferSrc BufferUsage = 1 << iota
	BufferUsageTransferDst
	BufferUsageVertex
	BufferUsageIndex
	BufferUsageUniform
)

type Format int

const (
	FormatUndefined Format = iota
	FormatR8Unorm
	FormatR8G8Unorm
	FormatR8G8B8A8Unorm
	FormatR8G8B8A8Srgb
	FormatB8G8R8A8Unorm
	FormatB8G8R8A8Srgb
	FormatR16Unorm
	FormatR16G16Unorm
	FormatR16G16B16A16Unorm
	FormatR16Snorm
	FormatR16G16Snorm
	FormatR16G16B16A16Snorm
	FormatR32Sfloat
	FormatR32G32Sfloat
	FormatR32G32B32Sfloat
	FormatR32G32B32A32Sfloat
	FormatD32Sfloat
	FormatD32SfloatS8Uint
	FormatD24UnormS8Uint
)

// TexelSize is the byte size of one texel of f, 0 for attachment-only formats.
func (f Format) TexelSize() uint32 {
	switch f {
	case FormatR8Unorm:
		return 1
	case FormatR8G8Unorm, FormatR16Unorm, FormatR16Snorm:
		return 2
	case FormatR8G8B8A8Unorm, FormatR8G8B8A8Srgb, FormatB8G8R8A8Unorm, FormatB8G8R8A8Srgb,
		FormatR16G16Unorm, FormatR16G16Snorm, FormatR32Sfloat, FormatD32Sfloat, FormatD24UnormS8Uint:
		return 4
	case FormatR16G16B16A16Unorm, FormatR16G16B16A16Snorm, FormatR32G32Sfloat, FormatD32SfloatS8Uint:
		return 8
	case FormatR32G32B32Sfloat:
		return 12
	case FormatR32G32B32A32Sfloat:
		return 16
	}
	return 0
}

// HasStencil reports whether a depth format carries a stencil aspect.
func (f Format) HasStencil() bool {
	return f == FormatD32SfloatS8Uint || f == FormatD24UnormS8Uint
}

type ImageType int

const (
	ImageType1D ImageType = iota
	ImageType2D
	ImageType3D
)

type ImageUsage uint32

const (
	ImageUsageSampled ImageUsage = 1 << iota
	ImageUsageTransferDst
	ImageUsageDepthAttachment
)

type Filter int

const (
	FilterLinear Filter = iota
	FilterNearest
)

type ImageDesc struct {
	Type   ImageType
	Format Format
	Extent Extent3D
	Usage  ImageUsage
	// Sampler creates a sampler alongside the view.
	Sampler bool
	Filter  Filter
}

type ImageLayout int

const (
	ImageLayoutUndefined ImageLayout = iota
	ImageLayoutTransferDst
	ImageLayoutShaderReadOnly
	ImageLayoutDepthAttachment
)

// BufferImageCopy copies tightly packed texels starting at BufferOffset
// into the image region at Offset with size Extent.
type BufferImageCopy struct {
	BufferOffset uint64
	Offset       Offset3D
	Extent       Extent3D
}

type DescriptorType int

const (
	DescriptorTypeUniformBuffer DescriptorType = iota
	DescriptorTypeCombinedImageSampler
)

type ShaderStage uint32

const (
	ShaderStageVertex ShaderStage = 1 << iota
	ShaderStageFragment
)

type DescriptorBinding struct {
	Binding uint32
	Type    DescriptorType
	Stages  ShaderStage
}

type DescriptorPoolSize struct {
	Type  DescriptorType
	Count uint32
}

// DescriptorWrite points a binding at a buffer range or a sampled image.
type DescriptorWrite struct {
	Binding uint32
	Type    DescriptorType
	Buffer  Buffer
	Range   uint64
	Image   Image
}

type Topology int

const (
	TopologyTriangleList Topology = iota
	TopologyTriangleStrip
	TopologyTriangleFan
	TopologyLineList
	TopologyLineStrip
	TopologyPointList
)

type PolygonMode int

const (
	PolygonModeFill PolygonMode = iota
	PolygonModeLine
)

type CompareOp int

const (
	CompareOpLess CompareOp = iota
	CompareOpLessOrEqual
	CompareOpEqual
	CompareOpGreater
	CompareOpGreaterOrEqual
	CompareOpNotEqual
	CompareOpAlways
	CompareOpNever
)

type VertexFormat int

const (
	VertexFormatFloat3 VertexFormat = iota
	VertexFormatFloat4
)

type VertexBinding struct {
	Binding uint32
	Stride  uint32
}

type VertexAttribute struct {
	Location uint32
	Binding  uint32
	Format   VertexFormat
	Offset   uint32
}

// PipelineDesc describes a graphics pipeline and its layout.
type PipelineDesc struct {
	VertexShader   ShaderModule
	FragmentShader ShaderModule
	Bindings       []VertexBinding
	Attributes     []VertexAttribute
	Topology       Topology
	PolygonMode    PolygonMode
	LineWidth      float32
	// PointSize is fed to the vertex stage as specialization constant 0.
	PointSize    float32
	DepthTest    bool
	DepthWrite   bool
	DepthCompare CompareOp
	SetLayouts   []DescriptorSetLayout
	// PushConstantSize enables a vertex-stage push constant range when > 0.
	PushConstantSize uint32
	RenderPass       RenderPass
}
