package renderer

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/spaghettifunk/prism/engine/core"
	"github.com/spaghettifunk/prism/engine/renderer/gpu"
	"github.com/spaghettifunk/prism/engine/renderer/metadata"
)

func identityMatrix() mgl32.Mat4 {
	return mgl32.Ident4()
}

func imageType(t metadata.TextureType) (gpu.ImageType, error) {
	switch t {
	case metadata.TextureType1d:
		return gpu.ImageType1D, nil
	case metadata.TextureType2d:
		return gpu.ImageType2D, nil
	case metadata.TextureType3d:
		return gpu.ImageType3D, nil
	}
	return 0, fmt.Errorf("%w: texture type %d", core.ErrUnsupported, t)
}

// textureFormat maps (texel format, channel count) to the default image format.
func textureFormat(f metadata.TexelFormat, channels uint8) (gpu.Format, error) {
	var table [5]gpu.Format
	switch f {
	case metadata.TexelFormatUint8:
		table = [5]gpu.Format{1: gpu.FormatR8Unorm, 2: gpu.FormatR8G8Unorm, 4: gpu.FormatR8G8B8A8Unorm}
	case metadata.TexelFormatUint16:
		table = [5]gpu.Format{1: gpu.FormatR16Unorm, 2: gpu.FormatR16G16Unorm, 4: gpu.FormatR16G16B16A16Unorm}
	case metadata.TexelFormatInt16:
		table = [5]gpu.Format{1: gpu.FormatR16Snorm, 2: gpu.FormatR16G16Snorm, 4: gpu.FormatR16G16B16A16Snorm}
	case metadata.TexelFormatFloat32:
		table = [5]gpu.Format{1: gpu.FormatR32Sfloat, 2: gpu.FormatR32G32Sfloat, 4: gpu.FormatR32G32B32A32Sfloat}
	}
	if int(channels) >= len(table) || table[channels] == gpu.FormatUndefined {
		return gpu.FormatUndefined, fmt.Errorf("%w: texel format %d with %d channels", core.ErrUnsupported, f, channels)
	}
	return table[channels], nil
}

func topology(t metadata.PrimitiveTopology) gpu.Topology {
	switch t {
	case metadata.TopologyTriangleList:
		return gpu.TopologyTriangleList
	case metadata.TopologyTriangleStrip:
		return gpu.TopologyTriangleStrip
	case metadata.TopologyTriangleFan:
		return gpu.TopologyTriangleFan
	case metadata.TopologyLineList:
		return gpu.TopologyLineList
	case metadata.TopologyLineStrip:
		return gpu.TopologyLineStrip
	case metadata.TopologyPointList:
		return gpu.TopologyPointList
	}
	return gpu.TopologyTriangleList
}

func compareOp(c metadata.CompareFunc) gpu.CompareOp {
	switch c {
	case metadata.CompareLess:
		return gpu.CompareOpLess
	case metadata.CompareLessOrEqual:
		return gpu.CompareOpLessOrEqual
	case metadata.CompareEqual:
		return gpu.CompareOpEqual
	case metadata.CompareGreater:
		return gpu.CompareOpGreater
	case metadata.CompareGreaterOrEqual:
		return gpu.CompareOpGreaterOrEqual
	case metadata.CompareNotEqual:
		return gpu.CompareOpNotEqual
	case metadata.CompareAlways:
		return gpu.CompareOpAlways
	case metadata.CompareNever:
		return gpu.CompareOpNever
	}
	return gpu.CompareOpLess
}

func vertexFormat(a metadata.Attribute) gpu.VertexFormat {
	if a == metadata.AttributeColor {
		return gpu.VertexFormatFloat4
	}
	return gpu.VertexFormatFloat3
}

// viewBindings is the default view layout: camera and light uniform at binding 0.
func viewBindings() []gpu.DescriptorBinding {
	return []gpu.DescriptorBinding{
		{Binding: 0, Type: gpu.DescriptorTypeUniformBuffer, Stages: gpu.ShaderStageVertex | gpu.ShaderStageFragment},
	}
}

// appearanceBindings is the fixed layout of each template, nil when it binds nothing.
func appearanceBindings(t metadata.ShaderTemplate) []gpu.DescriptorBinding {
	switch t {
	case metadata.ShaderTemplatePassthrough, metadata.ShaderTemplateSimpleLit:
		return nil
	case metadata.ShaderTemplateSimpleTextured:
		return []gpu.DescriptorBinding{
			{Binding: 0, Type: gpu.DescriptorTypeCombinedImageSampler, Stages: gpu.ShaderStageFragment},
		}
	case metadata.ShaderTemplateVolumeSlice:
		return []gpu.DescriptorBinding{
			{Binding: 0, Type: gpu.DescriptorTypeCombinedImageSampler, Stages: gpu.ShaderStageFragment},
			{Binding: 1, Type: gpu.DescriptorTypeUniformBuffer, Stages: gpu.ShaderStageFragment},
		}
	}
	return nil
}
