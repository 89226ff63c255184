package vulkan

import (
	vk "github.com/goki/vulkan"

	"github.com/spaghettifunk/prism/engine/renderer/gpu"
)

const (
	// Preferred surface format and color space for swapchains.
	preferredSurfaceFormat     = vk.FormatB8g8r8a8Unorm
	preferredSurfaceColorSpace = vk.ColorSpaceSrgbNonlinear

	validationLayerName = "VK_LAYER_KHRONOS_validation"
	portabilitySubset   = "VK_KHR_portability_subset"
)

var formats = map[gpu.Format]vk.Format{
	gpu.FormatR8Unorm:            vk.FormatR8Unorm,
	gpu.FormatR8G8Unorm:          vk.FormatR8g8Unorm,
	gpu.FormatR8G8B8A8Unorm:      vk.FormatR8g8b8a8Unorm,
	gpu.FormatR8G8B8A8Srgb:       vk.FormatR8g8b8a8Srgb,
	gpu.FormatB8G8R8A8Unorm:      vk.FormatB8g8r8a8Unorm,
	gpu.FormatB8G8R8A8Srgb:       vk.FormatB8g8r8a8Srgb,
	gpu.FormatR16Unorm:           vk.FormatR16Unorm,
	gpu.FormatR16G16Unorm:        vk.FormatR16g16Unorm,
	gpu.FormatR16G16B16A16Unorm:  vk.FormatR16g16b16a16Unorm,
	gpu.FormatR16Snorm:           vk.FormatR16Snorm,
	gpu.FormatR16G16Snorm:        vk.FormatR16g16Snorm,
	gpu.FormatR16G16B16A16Snorm:  vk.FormatR16g16b16a16Snorm,
	gpu.FormatR32Sfloat:          vk.FormatR32Sfloat,
	gpu.FormatR32G32Sfloat:       vk.FormatR32g32Sfloat,
	gpu.FormatR32G32B32Sfloat:    vk.FormatR32g32b32Sfloat,
	gpu.FormatR32G32B32A32Sfloat: vk.FormatR32g32b32a32Sfloat,
	gpu.FormatD32Sfloat:          vk.FormatD32Sfloat,
	gpu.FormatD32SfloatS8Uint:    vk.FormatD32SfloatS8Uint,
	gpu.FormatD24UnormS8Uint:     vk.FormatD24UnormS8Uint,
}

func vkFormat(f gpu.Format) vk.Format {
	if v, ok := formats[f]; ok {
		return v
	}
	return vk.FormatUndefined
}

func gpuFormat(f vk.Format) gpu.Format {
	for k, v := range formats {
		if v == f {
			return k
		}
	}
	return gpu.FormatUndefined
}

func vkBufferUsage(u gpu.BufferUsage) vk.BufferUsageFlags {
	var flags vk.BufferUsageFlagBits
	if u&gpu.BufferUsageTransferSrc != 0 {
		flags |= vk.BufferUsageTransferSrcBit
	}
	if u&gpu.BufferUsageTransferDst != 0 {
		flags |= vk.BufferUsageTransferDstBit
	}
	if u&gpu.BufferUsageVertex != 0 {
		flags |= vk.BufferUsageVertexBufferBit
	}
	if u&gpu.BufferUsageIndex != 0 {
		flags |= vk.BufferUsageIndexBufferBit
	}
	if u&gpu.BufferUsageUniform != 0 {
		flags |= vk.BufferUsageUniformBufferBit
	}
	return vk.BufferUsageFlags(flags)
}

func vkImageUsage(u gpu.ImageUsage) vk.ImageUsageFlags {
	var flags vk.ImageUsageFlagBits
	if u&gpu.ImageUsageSampled != 0 {
		flags |= vk.ImageUsageSampledBit
	}
	if u&gpu.ImageUsageTransferDst != 0 {
		flags |= vk.ImageUsageTransferDstBit
	}
	if u&gpu.ImageUsageDepthAttachment != 0 {
		flags |= vk.ImageUsageDepthStencilAttachmentBit
	}
	return vk.ImageUsageFlags(flags)
}

func vkImageType(t gpu.ImageType) (vk.ImageType, vk.ImageViewType) {
	switch t {
	case gpu.ImageType1D:
		return vk.ImageType1d, vk.ImageViewType1d
	case gpu.ImageType3D:
		return vk.ImageType3d, vk.ImageViewType3d
	default:
		return vk.ImageType2d, vk.ImageViewType2d
	}
}

func vkFilter(f gpu.Filter) vk.Filter {
	if f == gpu.FilterNearest {
		return vk.FilterNearest
	}
	return vk.FilterLinear
}

func vkDescriptorType(t gpu.DescriptorType) vk.DescriptorType {
	if t == gpu.DescriptorTypeCombinedImageSampler {
		return vk.DescriptorTypeCombinedImageSampler
	}
	return vk.DescriptorTypeUniformBuffer
}

func vkShaderStages(s gpu.ShaderStage) vk.ShaderStageFlags {
	var flags vk.ShaderStageFlagBits
	if s&gpu.ShaderStageVertex != 0 {
		flags |= vk.ShaderStageVertexBit
	}
	if s&gpu.ShaderStageFragment != 0 {
		flags |= vk.ShaderStageFragmentBit
	}
	return vk.ShaderStageFlags(flags)
}

var topologies = map[gpu.Topology]vk.PrimitiveTopology{
	gpu.TopologyTriangleList:  vk.PrimitiveTopologyTriangleList,
	gpu.TopologyTriangleStrip: vk.PrimitiveTopologyTriangleStrip,
	gpu.TopologyTriangleFan:   vk.PrimitiveTopologyTriangleFan,
	gpu.TopologyLineList:      vk.PrimitiveTopologyLineList,
	gpu.TopologyLineStrip:     vk.PrimitiveTopologyLineStrip,
	gpu.TopologyPointList:     vk.PrimitiveTopologyPointList,
}

var compareOps = map[gpu.CompareOp]vk.CompareOp{
	gpu.CompareOpLess:           vk.CompareOpLess,
	gpu.CompareOpLessOrEqual:    vk.CompareOpLessOrEqual,
	gpu.CompareOpEqual:          vk.CompareOpEqual,
	gpu.CompareOpGreater:        vk.CompareOpGreater,
	gpu.CompareOpGreaterOrEqual: vk.CompareOpGreaterOrEqual,
	gpu.CompareOpNotEqual:       vk.CompareOpNotEqual,
	gpu.CompareOpAlways:         vk.CompareOpAlways,
	gpu.CompareOpNever:          vk.CompareOpNever,
}

func vkVertexFormat(f gpu.VertexFormat) vk.Format {
	if f == gpu.VertexFormatFloat4 {
		return vk.FormatR32g32b32a32Sfloat
	}
	return vk.FormatR32g32b32Sfloat
}

// layoutState is the access mask and pipeline stage that go with an image
// layout on either side of a barrier.
type layoutState struct {
	layout vk.ImageLayout
	access vk.AccessFlagBits
	stage  vk.PipelineStageFlagBits
}

func vkLayout(l gpu.ImageLayout, src bool) layoutState {
	switch l {
	case gpu.ImageLayoutTransferDst:
		return layoutState{vk.ImageLayoutTransferDstOptimal, vk.AccessTransferWriteBit, vk.PipelineStageTransferBit}
	case gpu.ImageLayoutShaderReadOnly:
		return layoutState{vk.ImageLayoutShaderReadOnlyOptimal, vk.AccessShaderReadBit, vk.PipelineStageFragmentShaderBit}
	case gpu.ImageLayoutDepthAttachment:
		return layoutState{
			vk.ImageLayoutDepthStencilAttachmentOptimal,
			vk.AccessDepthStencilAttachmentReadBit | vk.AccessDepthStencilAttachmentWriteBit,
			vk.PipelineStageEarlyFragmentTestsBit,
		}
	}
	if src {
		return layoutState{vk.ImageLayoutUndefined, 0, vk.PipelineStageTopOfPipeBit}
	}
	return layoutState{vk.ImageLayoutUndefined, 0, vk.PipelineStageBottomOfPipeBit}
}
