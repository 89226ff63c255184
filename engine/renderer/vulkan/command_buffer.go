package vulkan

import (
	"fmt"
	"unsafe"

	vk "github.com/goki/vulkan"

	"github.com/spaghettifunk/prism/engine/core"
	"github.com/spaghettifunk/prism/engine/renderer/gpu"
)

type VulkanCommandBufferState int

const (
	COMMAND_BUFFER_STATE_READY VulkanCommandBufferState = iota
	COMMAND_BUFFER_STATE_RECORDING
	COMMAND_BUFFER_STATE_IN_RENDER_PASS
	COMMAND_BUFFER_STATE_RECORDING_ENDED
	COMMAND_BUFFER_STATE_SUBMITTED
	COMMAND_BUFFER_STATE_NOT_ALLOCATED
)

type VulkanCommandBuffer struct {
	context *VulkanContext
	pool    vk.CommandPool
	Handle  vk.CommandBuffer
	// Command buffer state.
	State VulkanCommandBufferState

	singleUse bool
}

var _ gpu.CommandBuffer = (*VulkanCommandBuffer)(nil)

func NewVulkanCommandBuffer(context *VulkanContext, pool vk.CommandPool, isPrimary bool) (*VulkanCommandBuffer, error) {
	cb := &VulkanCommandBuffer{
		context: context,
		pool:    pool,
		State:   COMMAND_BUFFER_STATE_NOT_ALLOCATED,
	}

	level := vk.CommandBufferLevelSecondary
	if isPrimary {
		level = vk.CommandBufferLevelPrimary
	}
	allocateInfo := vk.CommandBufferAllocateInfo{
		SType:              vk.StructureTypeCommandBufferAllocateInfo,
		CommandPool:        pool,
		CommandBufferCount: 1,
		Level:              level,
	}
	handles := make([]vk.CommandBuffer, 1)
	if err := check("vkAllocateCommandBuffers", vk.AllocateCommandBuffers(context.logical(), &allocateInfo, handles)); err != nil {
		return nil, err
	}
	cb.Handle = handles[0]
	cb.State = COMMAND_BUFFER_STATE_READY
	return cb, nil
}

func (v *VulkanCommandBuffer) Free() {
	if v.Handle == nil {
		return
	}
	vk.FreeCommandBuffers(v.context.logical(), v.pool, 1, []vk.CommandBuffer{v.Handle})
	v.Handle = nil
	v.State = COMMAND_BUFFER_STATE_NOT_ALLOCATED
}

func (v *VulkanCommandBuffer) Begin() error {
	return v.begin(v.singleUse, false, false)
}

func (v *VulkanCommandBuffer) begin(isSingleUse, isRenderpassContinue, isSimultaneousUse bool) error {
	beginInfo := &vk.CommandBufferBeginInfo{
		SType: vk.StructureTypeCommandBufferBeginInfo,
	}
	if isSingleUse {
		beginInfo.Flags |= vk.CommandBufferUsageFlags(vk.CommandBufferUsageOneTimeSubmitBit)
	}
	if isRenderpassContinue {
		beginInfo.Flags |= vk.CommandBufferUsageFlags(vk.CommandBufferUsageRenderPassContinueBit)
	}
	if isSimultaneousUse {
		beginInfo.Flags |= vk.CommandBufferUsageFlags(vk.CommandBufferUsageSimultaneousUseBit)
	}
	if err := check("vkBeginCommandBuffer", vk.BeginCommandBuffer(v.Handle, beginInfo)); err != nil {
		return err
	}
	v.State = COMMAND_BUFFER_STATE_RECORDING
	return nil
}

func (v *VulkanCommandBuffer) End() error {
	if err := check("vkEndCommandBuffer", vk.EndCommandBuffer(v.Handle)); err != nil {
		return err
	}
	v.State = COMMAND_BUFFER_STATE_RECORDING_ENDED
	return nil
}

func (v *VulkanCommandBuffer) UpdateSubmitted() {
	v.State = COMMAND_BUFFER_STATE_SUBMITTED
}

func (v *VulkanCommandBuffer) Reset() error {
	if err := check("vkResetCommandBuffer", vk.ResetCommandBuffer(v.Handle, 0)); err != nil {
		return err
	}
	v.State = COMMAND_BUFFER_STATE_READY
	return nil
}

func (v *VulkanCommandBuffer) BeginRenderPass(rp gpu.RenderPass, fb gpu.Framebuffer, extent gpu.Extent2D, clear [4]float32) {
	rp.(*VulkanRenderpass).begin(v, fb.(*VulkanFramebuffer), extent, clear)
}

func (v *VulkanCommandBuffer) EndRenderPass() {
	vk.CmdEndRenderPass(v.Handle)
	v.State = COMMAND_BUFFER_STATE_RECORDING
}

func (v *VulkanCommandBuffer) SetViewportScissor(extent gpu.Extent2D) {
	viewport := vk.Viewport{
		X:        0.0,
		Y:        0.0,
		Width:    float32(extent.Width),
		Height:   float32(extent.Height),
		MinDepth: 0.0,
		MaxDepth: 1.0,
	}
	scissor := vk.Rect2D{
		Offset: vk.Offset2D{X: 0, Y: 0},
		Extent: vk.Extent2D{Width: extent.Width, Height: extent.Height},
	}
	vk.CmdSetViewport(v.Handle, 0, 1, []vk.Viewport{viewport})
	vk.CmdSetScissor(v.Handle, 0, 1, []vk.Rect2D{scissor})
}

func (v *VulkanCommandBuffer) BindPipeline(p gpu.Pipeline) {
	pipeline := p.(*VulkanPipeline)
	vk.CmdBindPipeline(v.Handle, vk.PipelineBindPointGraphics, pipeline.Handle)
	if pipeline.dynamicLineWidth {
		vk.CmdSetLineWidth(v.Handle, pipeline.lineWidth)
	}
}

func (v *VulkanCommandBuffer) BindDescriptorSets(p gpu.Pipeline, sets []gpu.DescriptorSet) {
	if len(sets) == 0 {
		return
	}
	handles := make([]vk.DescriptorSet, len(sets))
	for i, s := range sets {
		handles[i] = s.(*VulkanDescriptorSet).Handle
	}
	vk.CmdBindDescriptorSets(v.Handle, vk.PipelineBindPointGraphics, p.(*VulkanPipeline).PipelineLayout,
		0, uint32(len(handles)), handles, 0, nil)
}

func (v *VulkanCommandBuffer) BindVertexBuffers(bufs []gpu.Buffer) {
	handles := make([]vk.Buffer, len(bufs))
	offsets := make([]vk.DeviceSize, len(bufs))
	for i, b := range bufs {
		handles[i] = b.(*VulkanBuffer).Handle
	}
	vk.CmdBindVertexBuffers(v.Handle, 0, uint32(len(handles)), handles, offsets)
}

func (v *VulkanCommandBuffer) BindIndexBuffer(buf gpu.Buffer) {
	vk.CmdBindIndexBuffer(v.Handle, buf.(*VulkanBuffer).Handle, 0, vk.IndexTypeUint32)
}

func (v *VulkanCommandBuffer) PushConstants(p gpu.Pipeline, data []byte) {
	if len(data) == 0 {
		return
	}
	vk.CmdPushConstants(v.Handle, p.(*VulkanPipeline).PipelineLayout, vk.ShaderStageFlags(vk.ShaderStageVertexBit),
		0, uint32(len(data)), unsafe.Pointer(&data[0]))
}

func (v *VulkanCommandBuffer) Draw(vertexCount uint32) {
	vk.CmdDraw(v.Handle, vertexCount, 1, 0, 0)
}

func (v *VulkanCommandBuffer) DrawIndexed(indexCount uint32) {
	vk.CmdDrawIndexed(v.Handle, indexCount, 1, 0, 0, 0)
}

func (v *VulkanCommandBuffer) CopyBuffer(src, dst gpu.Buffer, size uint64) {
	region := vk.BufferCopy{
		SrcOffset: 0,
		DstOffset: 0,
		Size:      vk.DeviceSize(size),
	}
	vk.CmdCopyBuffer(v.Handle, src.(*VulkanBuffer).Handle, dst.(*VulkanBuffer).Handle, 1, []vk.BufferCopy{region})
}

func (v *VulkanCommandBuffer) TransitionImage(img gpu.Image, from, to gpu.ImageLayout) {
	image := img.(*VulkanImage)
	src := vkLayout(from, true)
	dst := vkLayout(to, false)
	barrier := vk.ImageMemoryBarrier{
		SType:               vk.StructureTypeImageMemoryBarrier,
		SrcAccessMask:       vk.AccessFlags(src.access),
		DstAccessMask:       vk.AccessFlags(dst.access),
		OldLayout:           src.layout,
		NewLayout:           dst.layout,
		SrcQueueFamilyIndex: vk.QueueFamilyIgnored,
		DstQueueFamilyIndex: vk.QueueFamilyIgnored,
		Image:               image.Handle,
		SubresourceRange: vk.ImageSubresourceRange{
			AspectMask: image.aspect,
			LevelCount: 1,
			LayerCount: 1,
		},
	}
	vk.CmdPipelineBarrier(v.Handle,
		vk.PipelineStageFlags(src.stage),
		vk.PipelineStageFlags(dst.stage),
		0, 0, nil, 0, nil, 1, []vk.ImageMemoryBarrier{barrier})
}

func (v *VulkanCommandBuffer) CopyBufferToImage(src gpu.Buffer, dst gpu.Image, region *gpu.BufferImageCopy) {
	image := dst.(*VulkanImage)
	copyRegion := vk.BufferImageCopy{
		BufferOffset: vk.DeviceSize(region.BufferOffset),
		// tightly packed
		BufferRowLength:   0,
		BufferImageHeight: 0,
		ImageSubresource: vk.ImageSubresourceLayers{
			AspectMask: image.aspect,
			LayerCount: 1,
		},
		ImageOffset: vk.Offset3D{X: region.Offset.X, Y: region.Offset.Y, Z: region.Offset.Z},
		ImageExtent: vk.Extent3D{Width: region.Extent.Width, Height: region.Extent.Height, Depth: max(region.Extent.Depth, 1)},
	}
	vk.CmdCopyBufferToImage(v.Handle, src.(*VulkanBuffer).Handle, image.Handle,
		vk.ImageLayoutTransferDstOptimal, 1, []vk.BufferImageCopy{copyRegion})
}

/**
 * Allocates and begins recording to a one-shot command buffer.
 */
func AllocateAndBeginSingleUse(context *VulkanContext, pool vk.CommandPool) (*VulkanCommandBuffer, error) {
	cb, err := NewVulkanCommandBuffer(context, pool, true)
	if err != nil {
		return nil, err
	}
	cb.singleUse = true
	if err := cb.Begin(); err != nil {
		cb.Free()
		return nil, err
	}
	return cb, nil
}

/**
 * Ends recording, submits to and waits for queue operation and frees the provided command buffer.
 */
func (v *VulkanCommandBuffer) EndSingleUse(queue vk.Queue) error {
	defer v.Free()
	if err := v.End(); err != nil {
		return err
	}

	submitInfo := vk.SubmitInfo{
		SType:              vk.StructureTypeSubmitInfo,
		CommandBufferCount: 1,
		PCommandBuffers:    []vk.CommandBuffer{v.Handle},
	}
	if err := check("vkQueueSubmit", vk.QueueSubmit(queue, 1, []vk.SubmitInfo{submitInfo}, vk.NullFence)); err != nil {
		return err
	}
	v.UpdateSubmitted()

	// Wait for it to finish
	if res := vk.QueueWaitIdle(queue); res != vk.Success {
		err := fmt.Errorf("queue failed to wait in idle mode: %s", VulkanResultString(res, true))
		core.LogError(err.Error())
		return err
	}
	return nil
}
