package vulkan

import (
	"fmt"

	vk "github.com/goki/vulkan"

	"github.com/spaghettifunk/prism/engine/core"
)

// VulkanContext is shared by every object the backend creates.
type VulkanContext struct {
	Instance  vk.Instance
	Allocator *vk.AllocationCallbacks
	Device    *VulkanDevice

	// Set only when validation is enabled.
	debugCallback vk.DebugReportCallback
}

func (vc *VulkanContext) logical() vk.Device {
	return vc.Device.LogicalDevice
}

// FindMemoryIndex returns the first memory type allowed by typeFilter that
// has all of propertyFlags.
func (vc *VulkanContext) FindMemoryIndex(typeFilter uint32, propertyFlags vk.MemoryPropertyFlagBits) (uint32, error) {
	memoryProperties := vc.Device.Memory
	for i := uint32(0); i < memoryProperties.MemoryTypeCount; i++ {
		// Check each memory type to see if its bit is set to 1.
		memoryProperties.MemoryTypes[i].Deref()
		flags := vk.MemoryPropertyFlagBits(memoryProperties.MemoryTypes[i].PropertyFlags)
		if typeFilter&(1<<i) != 0 && flags&propertyFlags == propertyFlags {
			return i, nil
		}
	}
	err := fmt.Errorf("unable to find suitable memory type for filter %#x, flags %#x", typeFilter, uint32(propertyFlags))
	core.LogWarn(err.Error())
	return 0, err
}

// allocate allocates and binds dedicated memory for reqs.
func (vc *VulkanContext) allocate(reqs vk.MemoryRequirements, flags vk.MemoryPropertyFlagBits) (vk.DeviceMemory, error) {
	reqs.Deref()
	index, err := vc.FindMemoryIndex(reqs.MemoryTypeBits, flags)
	if err != nil {
		return vk.NullDeviceMemory, err
	}
	var memory vk.DeviceMemory
	res := vk.AllocateMemory(vc.logical(), &vk.MemoryAllocateInfo{
		SType:           vk.StructureTypeMemoryAllocateInfo,
		AllocationSize:  reqs.Size,
		MemoryTypeIndex: index,
	}, vc.Allocator, &memory)
	if err := check("vkAllocateMemory", res); err != nil {
		return vk.NullDeviceMemory, err
	}
	return memory, nil
}
