package vulkan

import (
	"unsafe"

	vk "github.com/goki/vulkan"

	"github.com/spaghettifunk/prism/engine/renderer/gpu"
)

// VulkanBuffer is a buffer with its own dedicated memory allocation.
type VulkanBuffer struct {
	context     *VulkanContext
	Handle      vk.Buffer
	Memory      vk.DeviceMemory
	size        uint64
	hostVisible bool
	mapped      []byte
}

var _ gpu.Buffer = (*VulkanBuffer)(nil)

func NewBuffer(context *VulkanContext, size uint64, usage gpu.BufferUsage, hostVisible bool) (*VulkanBuffer, error) {
	buffer := &VulkanBuffer{context: context, size: size, hostVisible: hostVisible}

	createInfo := vk.BufferCreateInfo{
		SType:       vk.StructureTypeBufferCreateInfo,
		Size:        vk.DeviceSize(size),
		Usage:       vkBufferUsage(usage),
		SharingMode: vk.SharingModeExclusive,
	}
	var handle vk.Buffer
	if err := check("vkCreateBuffer", vk.CreateBuffer(context.logical(), &createInfo, context.Allocator, &handle)); err != nil {
		return nil, err
	}
	buffer.Handle = handle

	var reqs vk.MemoryRequirements
	vk.GetBufferMemoryRequirements(context.logical(), handle, &reqs)

	flags := vk.MemoryPropertyDeviceLocalBit
	if hostVisible {
		flags = vk.MemoryPropertyHostVisibleBit | vk.MemoryPropertyHostCoherentBit
	}
	memory, err := context.allocate(reqs, flags)
	if err != nil {
		buffer.Destroy()
		return nil, err
	}
	buffer.Memory = memory
	if err := check("vkBindBufferMemory", vk.BindBufferMemory(context.logical(), handle, memory, 0)); err != nil {
		buffer.Destroy()
		return nil, err
	}
	return buffer, nil
}

func (b *VulkanBuffer) Size() uint64 { return b.size }

func (b *VulkanBuffer) Map() ([]byte, error) {
	if !b.hostVisible {
		return nil, gpu.ErrNotMappable
	}
	if b.mapped != nil {
		return b.mapped, nil
	}
	var ptr unsafe.Pointer
	if err := check("vkMapMemory", vk.MapMemory(b.context.logical(), b.Memory, 0, vk.DeviceSize(b.size), 0, &ptr)); err != nil {
		return nil, err
	}
	b.mapped = unsafe.Slice((*byte)(ptr), b.size)
	return b.mapped, nil
}

func (b *VulkanBuffer) Unmap() {
	if b.mapped == nil {
		return
	}
	vk.UnmapMemory(b.context.logical(), b.Memory)
	b.mapped = nil
}

func (b *VulkanBuffer) Destroy() {
	b.Unmap()
	if b.Handle != vk.NullBuffer {
		vk.DestroyBuffer(b.context.logical(), b.Handle, b.context.Allocator)
		b.Handle = vk.NullBuffer
	}
	if b.Memory != vk.NullDeviceMemory {
		vk.FreeMemory(b.context.logical(), b.Memory, b.context.Allocator)
		b.Memory = vk.NullDeviceMemory
	}
}
