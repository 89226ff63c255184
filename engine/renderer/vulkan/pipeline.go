package vulkan

import (
	"fmt"
	"runtime"
	"unsafe"

	vk "github.com/goki/vulkan"

	"github.com/spaghettifunk/prism/engine/core"
	pmath "github.com/spaghettifunk/prism/engine/math"
	"github.com/spaghettifunk/prism/engine/renderer/gpu"
)

/**
 * @brief Holds a Vulkan pipeline and its layout.
 */
type VulkanPipeline struct {
	context *VulkanContext
	/** @brief The internal pipeline handle. */
	Handle vk.Pipeline
	/** @brief The pipeline layout. */
	PipelineLayout vk.PipelineLayout

	dynamicLineWidth bool
	lineWidth        float32
}

var _ gpu.Pipeline = (*VulkanPipeline)(nil)

func NewGraphicsPipeline(context *VulkanContext, desc *gpu.PipelineDesc) (*VulkanPipeline, error) {
	if desc.VertexShader == nil || desc.FragmentShader == nil || desc.RenderPass == nil {
		err := fmt.Errorf("func NewGraphicsPipeline: shaders and render pass are required")
		core.LogError(err.Error())
		return nil, err
	}
	device := context.Device
	outPipeline := &VulkanPipeline{context: context}

	// Viewport and scissor are dynamic, only the counts matter here.
	viewportState := vk.PipelineViewportStateCreateInfo{
		SType:         vk.StructureTypePipelineViewportStateCreateInfo,
		ViewportCount: 1,
		ScissorCount:  1,
	}

	lineWidth := pmath.Clamp(desc.LineWidth, 1.0, device.Limits().MaxLineWidth)
	if lineWidth != desc.LineWidth && desc.LineWidth != 0 {
		core.LogWarn("line width %.2f not supported, using %.2f", desc.LineWidth, lineWidth)
	}

	// Rasterizer
	rasterizerCreateInfo := vk.PipelineRasterizationStateCreateInfo{
		SType:                   vk.StructureTypePipelineRasterizationStateCreateInfo,
		DepthClampEnable:        vk.False,
		RasterizerDiscardEnable: vk.False,
		PolygonMode:             vk.PolygonModeFill,
		LineWidth:               lineWidth,
		CullMode:                vk.CullModeFlags(vk.CullModeNone),
		FrontFace:               vk.FrontFaceCounterClockwise,
		DepthBiasEnable:         vk.False,
		DepthBiasConstantFactor: 0.0,
		DepthBiasClamp:          0.0,
		DepthBiasSlopeFactor:    0.0,
	}
	if desc.PolygonMode == gpu.PolygonModeLine {
		if device.fillModeNonSolid {
			rasterizerCreateInfo.PolygonMode = vk.PolygonModeLine
		} else {
			core.LogWarn("fillModeNonSolid is not supported, falling back to filled polygons")
		}
	}
	if desc.PointSize > 1.0 && !device.largePoints {
		core.LogWarn("largePoints is not supported, point size %.2f may be clamped", desc.PointSize)
	}

	// Multisampling.
	multisamplingCreateInfo := vk.PipelineMultisampleStateCreateInfo{
		SType:                 vk.StructureTypePipelineMultisampleStateCreateInfo,
		SampleShadingEnable:   vk.False,
		RasterizationSamples:  vk.SampleCount1Bit,
		MinSampleShading:      1.0,
		PSampleMask:           nil,
		AlphaToCoverageEnable: vk.False,
		AlphaToOneEnable:      vk.False,
	}

	// Depth and stencil testing.
	depthStencil := vk.PipelineDepthStencilStateCreateInfo{
		SType:                 vk.StructureTypePipelineDepthStencilStateCreateInfo,
		DepthTestEnable:       vk.False,
		DepthWriteEnable:      vk.False,
		DepthBoundsTestEnable: vk.False,
		StencilTestEnable:     vk.False,
	}
	if desc.DepthTest {
		depthStencil.DepthTestEnable = vk.True
		depthStencil.DepthCompareOp = compareOps[desc.DepthCompare]
	}
	if desc.DepthWrite {
		depthStencil.DepthWriteEnable = vk.True
	}

	colorBlendAttachmentState := vk.PipelineColorBlendAttachmentState{
		BlendEnable:         vk.True,
		SrcColorBlendFactor: vk.BlendFactorSrcAlpha,
		DstColorBlendFactor: vk.BlendFactorOneMinusSrcAlpha,
		ColorBlendOp:        vk.BlendOpAdd,
		SrcAlphaBlendFactor: vk.BlendFactorSrcAlpha,
		DstAlphaBlendFactor: vk.BlendFactorOneMinusSrcAlpha,
		AlphaBlendOp:        vk.BlendOpAdd,
		ColorWriteMask: vk.ColorComponentFlags(vk.ColorComponentRBit) | vk.ColorComponentFlags(vk.ColorComponentGBit) |
			vk.ColorComponentFlags(vk.ColorComponentBBit) | vk.ColorComponentFlags(vk.ColorComponentABit),
	}

	colorBlendStateCreateInfo := vk.PipelineColorBlendStateCreateInfo{
		SType:           vk.StructureTypePipelineColorBlendStateCreateInfo,
		LogicOpEnable:   vk.False,
		LogicOp:         vk.LogicOpCopy,
		AttachmentCount: 1,
		PAttachments:    []vk.PipelineColorBlendAttachmentState{colorBlendAttachmentState},
	}

	// Dynamic state
	dynamicStates := []vk.DynamicState{
		vk.DynamicStateViewport,
		vk.DynamicStateScissor,
	}
	if device.wideLines {
		dynamicStates = append(dynamicStates, vk.DynamicStateLineWidth)
		outPipeline.dynamicLineWidth = true
		outPipeline.lineWidth = lineWidth
	}

	dynamicStateCreateInfo := vk.PipelineDynamicStateCreateInfo{
		SType:             vk.StructureTypePipelineDynamicStateCreateInfo,
		DynamicStateCount: uint32(len(dynamicStates)),
		PDynamicStates:    dynamicStates,
	}

	// Vertex input
	bindings := make([]vk.VertexInputBindingDescription, len(desc.Bindings))
	for i, b := range desc.Bindings {
		bindings[i] = vk.VertexInputBindingDescription{
			Binding:   b.Binding,
			Stride:    b.Stride,
			InputRate: vk.VertexInputRateVertex, // Move to next data entry for each vertex.
		}
	}
	attributes := make([]vk.VertexInputAttributeDescription, len(desc.Attributes))
	for i, a := range desc.Attributes {
		attributes[i] = vk.VertexInputAttributeDescription{
			Location: a.Location,
			Binding:  a.Binding,
			Format:   vkVertexFormat(a.Format),
			Offset:   a.Offset,
		}
	}

	vertexInputInfo := vk.PipelineVertexInputStateCreateInfo{
		SType:                           vk.StructureTypePipelineVertexInputStateCreateInfo,
		VertexBindingDescriptionCount:   uint32(len(bindings)),
		PVertexBindingDescriptions:      bindings,
		VertexAttributeDescriptionCount: uint32(len(attributes)),
		PVertexAttributeDescriptions:    attributes,
	}

	// Input assembly
	inputAssembly := vk.PipelineInputAssemblyStateCreateInfo{
		SType:                  vk.StructureTypePipelineInputAssemblyStateCreateInfo,
		Topology:               topologies[desc.Topology],
		PrimitiveRestartEnable: vk.False,
	}

	// Point size goes to the vertex stage as specialization constant 0.
	specData := []float32{desc.PointSize}
	specInfo := []vk.SpecializationInfo{{
		MapEntryCount: 1,
		PMapEntries: []vk.SpecializationMapEntry{{
			ConstantID: 0,
			Offset:     0,
			Size:       4,
		}},
		DataSize: 4,
		PData:    unsafe.Pointer(&specData[0]),
	}}
	stages := []vk.PipelineShaderStageCreateInfo{
		desc.VertexShader.(*VulkanShaderModule).stageCreateInfo(vk.ShaderStageVertexBit, specInfo),
		desc.FragmentShader.(*VulkanShaderModule).stageCreateInfo(vk.ShaderStageFragmentBit, nil),
	}

	// Pipeline layout
	setLayouts := make([]vk.DescriptorSetLayout, len(desc.SetLayouts))
	for i, l := range desc.SetLayouts {
		setLayouts[i] = l.(*VulkanDescriptorSetLayout).Handle
	}
	pipelineLayoutCreateInfo := vk.PipelineLayoutCreateInfo{
		SType:          vk.StructureTypePipelineLayoutCreateInfo,
		SetLayoutCount: uint32(len(setLayouts)),
		PSetLayouts:    setLayouts,
	}

	// Push constants
	if desc.PushConstantSize > 0 {
		if limit := device.Properties.Limits.MaxPushConstantsSize; desc.PushConstantSize > limit {
			err := fmt.Errorf("func NewGraphicsPipeline: push constant range of %d bytes exceeds the device limit of %d", desc.PushConstantSize, limit)
			core.LogError(err.Error())
			return nil, err
		}
		pipelineLayoutCreateInfo.PushConstantRangeCount = 1
		pipelineLayoutCreateInfo.PPushConstantRanges = []vk.PushConstantRange{{
			StageFlags: vk.ShaderStageFlags(vk.ShaderStageVertexBit),
			Offset:     0,
			Size:       desc.PushConstantSize,
		}}
	}

	// Create the pipeline layout.
	var pPipelineLayout vk.PipelineLayout
	if err := check("vkCreatePipelineLayout", vk.CreatePipelineLayout(context.logical(), &pipelineLayoutCreateInfo, context.Allocator, &pPipelineLayout)); err != nil {
		return nil, err
	}
	outPipeline.PipelineLayout = pPipelineLayout

	// Pipeline create
	pipelineCreateInfo := vk.GraphicsPipelineCreateInfo{
		SType:               vk.StructureTypeGraphicsPipelineCreateInfo,
		StageCount:          uint32(len(stages)),
		PStages:             stages,
		PVertexInputState:   &vertexInputInfo,
		PInputAssemblyState: &inputAssembly,
		PViewportState:      &viewportState,
		PRasterizationState: &rasterizerCreateInfo,
		PMultisampleState:   &multisamplingCreateInfo,
		PDepthStencilState:  &depthStencil,
		PColorBlendState:    &colorBlendStateCreateInfo,
		PDynamicState:       &dynamicStateCreateInfo,
		PTessellationState:  nil,
		Layout:              outPipeline.PipelineLayout,
		RenderPass:          desc.RenderPass.(*VulkanRenderpass).Handle,
		Subpass:             0,
		BasePipelineHandle:  vk.NullPipeline,
		BasePipelineIndex:   -1,
	}

	pPipelines := make([]vk.Pipeline, 1)
	result := vk.CreateGraphicsPipelines(context.logical(), vk.NullPipelineCache, 1,
		[]vk.GraphicsPipelineCreateInfo{pipelineCreateInfo}, context.Allocator, pPipelines)
	runtime.KeepAlive(specData)
	if err := check("vkCreateGraphicsPipelines", result); err != nil {
		outPipeline.Destroy()
		return nil, err
	}
	outPipeline.Handle = pPipelines[0]

	core.LogDebug("Graphics pipeline created!")
	return outPipeline, nil
}

func (pipeline *VulkanPipeline) Destroy() {
	// Destroy pipeline
	if pipeline.Handle != nil {
		vk.DestroyPipeline(pipeline.context.logical(), pipeline.Handle, pipeline.context.Allocator)
		pipeline.Handle = nil
	}
	// Destroy layout
	if pipeline.PipelineLayout != nil {
		vk.DestroyPipelineLayout(pipeline.context.logical(), pipeline.PipelineLayout, pipeline.context.Allocator)
		pipeline.PipelineLayout = nil
	}
}
