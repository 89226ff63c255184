package vulkan

import (
	"fmt"
	"unsafe"

	vk "github.com/goki/vulkan"

	"github.com/spaghettifunk/prism/engine/core"
	"github.com/spaghettifunk/prism/engine/renderer/gpu"
)

/**
 * @brief Represents a single compiled shader stage.
 */
type VulkanShaderModule struct {
	context *VulkanContext
	/** @brief The internal shader module Handle. */
	Handle vk.ShaderModule
}

var _ gpu.ShaderModule = (*VulkanShaderModule)(nil)

func NewShaderModule(context *VulkanContext, code []byte) (*VulkanShaderModule, error) {
	createInfo, err := shaderModuleCreateInfo(code)
	if err != nil {
		core.LogError(err.Error())
		return nil, err
	}
	var handle vk.ShaderModule
	if err := check("vkCreateShaderModule", vk.CreateShaderModule(context.logical(), &createInfo, context.Allocator, &handle)); err != nil {
		return nil, err
	}
	return &VulkanShaderModule{context: context, Handle: handle}, nil
}

// shaderModuleCreateInfo repacks SPIR-V bytes as the 32-bit words Vulkan consumes.
func shaderModuleCreateInfo(code []byte) (vk.ShaderModuleCreateInfo, error) {
	if len(code) == 0 || len(code)%4 != 0 {
		return vk.ShaderModuleCreateInfo{}, fmt.Errorf("invalid SPIR-V size %d", len(code))
	}
	words := make([]uint32, len(code)/4)
	copy(unsafe.Slice((*byte)(unsafe.Pointer(&words[0])), len(code)), code)
	return vk.ShaderModuleCreateInfo{
		SType:    vk.StructureTypeShaderModuleCreateInfo,
		CodeSize: uint64(len(code)),
		PCode:    words,
	}, nil
}

func (m *VulkanShaderModule) Destroy() {
	if m.Handle != nil {
		vk.DestroyShaderModule(m.context.logical(), m.Handle, m.context.Allocator)
		m.Handle = nil
	}
}

// stageCreateInfo describes module as the "main" entry point of stage.
func (m *VulkanShaderModule) stageCreateInfo(stage vk.ShaderStageFlagBits, spec []vk.SpecializationInfo) vk.PipelineShaderStageCreateInfo {
	return vk.PipelineShaderStageCreateInfo{
		SType:               vk.StructureTypePipelineShaderStageCreateInfo,
		Stage:               stage,
		Module:              m.Handle,
		PName:               VulkanSafeString("main"),
		PSpecializationInfo: spec,
	}
}
