package vulkan

import (
	vk "github.com/goki/vulkan"

	"github.com/spaghettifunk/prism/engine/renderer/gpu"
)

// VulkanRenderpass has one color attachment presented at the end of the
// pass and one depth attachment.
type VulkanRenderpass struct {
	context     *VulkanContext
	Handle      vk.RenderPass
	ColorFormat vk.Format
	DepthFormat vk.Format
	Depth       float32
	Stencil     uint32
}

var _ gpu.RenderPass = (*VulkanRenderpass)(nil)

func RenderpassCreate(context *VulkanContext, colorFormat, depthFormat gpu.Format) (*VulkanRenderpass, error) {
	outRenderpass := &VulkanRenderpass{
		context:     context,
		ColorFormat: vkFormat(colorFormat),
		DepthFormat: vkFormat(depthFormat),
		Depth:       1.0,
		Stencil:     0,
	}

	// Color attachment
	colorAttachment := vk.AttachmentDescription{
		Format:         outRenderpass.ColorFormat,
		Samples:        vk.SampleCount1Bit,
		LoadOp:         vk.AttachmentLoadOpClear,
		StoreOp:        vk.AttachmentStoreOpStore,
		StencilLoadOp:  vk.AttachmentLoadOpDontCare,
		StencilStoreOp: vk.AttachmentStoreOpDontCare,
		InitialLayout:  vk.ImageLayoutUndefined,  // Do not expect any particular layout before render pass starts.
		FinalLayout:    vk.ImageLayoutPresentSrc, // Transitioned to after the render pass
	}

	depthAttachment := vk.AttachmentDescription{
		Format:         outRenderpass.DepthFormat,
		Samples:        vk.SampleCount1Bit,
		LoadOp:         vk.AttachmentLoadOpClear,
		StoreOp:        vk.AttachmentStoreOpDontCare,
		StencilLoadOp:  vk.AttachmentLoadOpDontCare,
		StencilStoreOp: vk.AttachmentStoreOpDontCare,
		InitialLayout:  vk.ImageLayoutUndefined,
		FinalLayout:    vk.ImageLayoutDepthStencilAttachmentOptimal,
	}

	subpass := vk.SubpassDescription{
		PipelineBindPoint:    vk.PipelineBindPointGraphics,
		ColorAttachmentCount: 1,
		PColorAttachments: []vk.AttachmentReference{{
			Attachment: 0, // Attachment description array index
			Layout:     vk.ImageLayoutColorAttachmentOptimal,
		}},
		PDepthStencilAttachment: &vk.AttachmentReference{
			Attachment: 1,
			Layout:     vk.ImageLayoutDepthStencilAttachmentOptimal,
		},
	}

	dependency := vk.SubpassDependency{
		SrcSubpass:    vk.SubpassExternal,
		DstSubpass:    0,
		SrcStageMask:  vk.PipelineStageFlags(vk.PipelineStageColorAttachmentOutputBit | vk.PipelineStageEarlyFragmentTestsBit),
		SrcAccessMask: 0,
		DstStageMask:  vk.PipelineStageFlags(vk.PipelineStageColorAttachmentOutputBit | vk.PipelineStageEarlyFragmentTestsBit),
		DstAccessMask: vk.AccessFlags(vk.AccessColorAttachmentReadBit | vk.AccessColorAttachmentWriteBit |
			vk.AccessDepthStencilAttachmentWriteBit),
	}

	renderpassCreateInfo := vk.RenderPassCreateInfo{
		SType:           vk.StructureTypeRenderPassCreateInfo,
		AttachmentCount: 2,
		PAttachments:    []vk.AttachmentDescription{colorAttachment, depthAttachment},
		SubpassCount:    1,
		PSubpasses:      []vk.SubpassDescription{subpass},
		DependencyCount: 1,
		PDependencies:   []vk.SubpassDependency{dependency},
	}

	var handle vk.RenderPass
	if err := check("vkCreateRenderPass", vk.CreateRenderPass(context.logical(), &renderpassCreateInfo, context.Allocator, &handle)); err != nil {
		return nil, err
	}
	outRenderpass.Handle = handle
	return outRenderpass, nil
}

func (vr *VulkanRenderpass) NewFramebuffer(sc gpu.Swapchain, index int, depth gpu.Image) (gpu.Framebuffer, error) {
	swapchain := sc.(*VulkanSwapchain)
	attachments := []vk.ImageView{
		swapchain.Views[index],
		depth.(*VulkanImage).View,
	}
	return FramebufferCreate(vr.context, vr, swapchain.Extent().Width, swapchain.Extent().Height, attachments)
}

func (vr *VulkanRenderpass) Destroy() {
	if vr.Handle != nil {
		vk.DestroyRenderPass(vr.context.logical(), vr.Handle, vr.context.Allocator)
		vr.Handle = nil
	}
}

func (vr *VulkanRenderpass) begin(commandBuffer *VulkanCommandBuffer, frameBuffer *VulkanFramebuffer, extent gpu.Extent2D, color [4]float32) {
	clearValues := make([]vk.ClearValue, 2)
	clearValues[0].SetColor(color[:])
	clearValues[1].SetDepthStencil(vr.Depth, vr.Stencil)

	beginInfo := vk.RenderPassBeginInfo{
		SType:       vk.StructureTypeRenderPassBeginInfo,
		RenderPass:  vr.Handle,
		Framebuffer: frameBuffer.Handle,
		RenderArea: vk.Rect2D{
			Offset: vk.Offset2D{X: 0, Y: 0},
			Extent: vk.Extent2D{Width: extent.Width, Height: extent.Height},
		},
		ClearValueCount: 2,
		PClearValues:    clearValues,
	}
	vk.CmdBeginRenderPass(commandBuffer.Handle, &beginInfo, vk.SubpassContentsInline)
	commandBuffer.State = COMMAND_BUFFER_STATE_IN_RENDER_PASS
}
