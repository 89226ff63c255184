package vulkan

import (
	"fmt"

	vk "github.com/goki/vulkan"

	"github.com/spaghettifunk/prism/engine/core"
	"github.com/spaghettifunk/prism/engine/renderer/gpu"
)

type VulkanDescriptorSetLayout struct {
	context *VulkanContext
	Handle  vk.DescriptorSetLayout
}

func NewDescriptorSetLayout(context *VulkanContext, bindings []gpu.DescriptorBinding) (*VulkanDescriptorSetLayout, error) {
	vkBindings := make([]vk.DescriptorSetLayoutBinding, len(bindings))
	for i, b := range bindings {
		vkBindings[i] = vk.DescriptorSetLayoutBinding{
			Binding:         b.Binding,
			DescriptorType:  vkDescriptorType(b.Type),
			DescriptorCount: 1,
			StageFlags:      vkShaderStages(b.Stages),
		}
	}
	createInfo := vk.DescriptorSetLayoutCreateInfo{
		SType:        vk.StructureTypeDescriptorSetLayoutCreateInfo,
		BindingCount: uint32(len(vkBindings)),
		PBindings:    vkBindings,
	}
	var handle vk.DescriptorSetLayout
	if err := check("vkCreateDescriptorSetLayout", vk.CreateDescriptorSetLayout(context.logical(), &createInfo, context.Allocator, &handle)); err != nil {
		return nil, err
	}
	return &VulkanDescriptorSetLayout{context: context, Handle: handle}, nil
}

func (l *VulkanDescriptorSetLayout) Destroy() {
	if l.Handle != nil {
		vk.DestroyDescriptorSetLayout(l.context.logical(), l.Handle, l.context.Allocator)
		l.Handle = nil
	}
}

// VulkanDescriptorPool is created with the free-descriptor-set flag so
// sets can be returned individually.
type VulkanDescriptorPool struct {
	context *VulkanContext
	Handle  vk.DescriptorPool
}

func NewDescriptorPool(context *VulkanContext, maxSets uint32, sizes []gpu.DescriptorPoolSize) (*VulkanDescriptorPool, error) {
	poolSizes := make([]vk.DescriptorPoolSize, len(sizes))
	for i, s := range sizes {
		poolSizes[i] = vk.DescriptorPoolSize{
			Type:            vkDescriptorType(s.Type),
			DescriptorCount: s.Count,
		}
	}
	createInfo := vk.DescriptorPoolCreateInfo{
		SType:         vk.StructureTypeDescriptorPoolCreateInfo,
		Flags:         vk.DescriptorPoolCreateFlags(vk.DescriptorPoolCreateFreeDescriptorSetBit),
		MaxSets:       maxSets,
		PoolSizeCount: uint32(len(poolSizes)),
		PPoolSizes:    poolSizes,
	}
	var handle vk.DescriptorPool
	if err := check("vkCreateDescriptorPool", vk.CreateDescriptorPool(context.logical(), &createInfo, context.Allocator, &handle)); err != nil {
		return nil, err
	}
	return &VulkanDescriptorPool{context: context, Handle: handle}, nil
}

func (p *VulkanDescriptorPool) Allocate(layout gpu.DescriptorSetLayout, count int) ([]gpu.DescriptorSet, error) {
	l := layout.(*VulkanDescriptorSetLayout)
	out := make([]gpu.DescriptorSet, 0, count)
	for i := 0; i < count; i++ {
		var set vk.DescriptorSet
		res := vk.AllocateDescriptorSets(p.context.logical(), &vk.DescriptorSetAllocateInfo{
			SType:              vk.StructureTypeDescriptorSetAllocateInfo,
			DescriptorPool:     p.Handle,
			DescriptorSetCount: 1,
			PSetLayouts:        []vk.DescriptorSetLayout{l.Handle},
		}, &set)
		if res == vk.ErrorOutOfPoolMemory || res == vk.ErrorFragmentedPool {
			p.free(out)
			err := fmt.Errorf("failed to allocate descriptor set: %w", gpu.ErrPoolFull)
			core.LogError(err.Error())
			return nil, err
		}
		if err := check("vkAllocateDescriptorSets", res); err != nil {
			p.free(out)
			return nil, err
		}
		out = append(out, &VulkanDescriptorSet{context: p.context, Handle: set})
	}
	return out, nil
}

func (p *VulkanDescriptorPool) Free(sets []gpu.DescriptorSet) error {
	return p.free(sets)
}

func (p *VulkanDescriptorPool) free(sets []gpu.DescriptorSet) error {
	for _, s := range sets {
		set := s.(*VulkanDescriptorSet)
		if err := check("vkFreeDescriptorSets", vk.FreeDescriptorSets(p.context.logical(), p.Handle, 1, &set.Handle)); err != nil {
			return err
		}
		set.Handle = nil
	}
	return nil
}

func (p *VulkanDescriptorPool) Destroy() {
	if p.Handle != nil {
		vk.DestroyDescriptorPool(p.context.logical(), p.Handle, p.context.Allocator)
		p.Handle = nil
	}
}

type VulkanDescriptorSet struct {
	context *VulkanContext
	Handle  vk.DescriptorSet
}

func (s *VulkanDescriptorSet) Update(writes []gpu.DescriptorWrite) {
	vkWrites := make([]vk.WriteDescriptorSet, 0, len(writes))
	for _, w := range writes {
		write := vk.WriteDescriptorSet{
			SType:           vk.StructureTypeWriteDescriptorSet,
			DstSet:          s.Handle,
			DstBinding:      w.Binding,
			DescriptorCount: 1,
			DescriptorType:  vkDescriptorType(w.Type),
		}
		switch w.Type {
		case gpu.DescriptorTypeUniformBuffer:
			buf := w.Buffer.(*VulkanBuffer)
			write.PBufferInfo = []vk.DescriptorBufferInfo{{
				Buffer: buf.Handle,
				Offset: 0,
				Range:  vk.DeviceSize(w.Range),
			}}
		case gpu.DescriptorTypeCombinedImageSampler:
			img := w.Image.(*VulkanImage)
			write.PImageInfo = []vk.DescriptorImageInfo{{
				Sampler:     img.Sampler,
				ImageView:   img.View,
				ImageLayout: vk.ImageLayoutShaderReadOnlyOptimal,
			}}
		}
		vkWrites = append(vkWrites, write)
	}
	if len(vkWrites) > 0 {
		vk.UpdateDescriptorSets(s.context.logical(), uint32(len(vkWrites)), vkWrites, 0, nil)
	}
}
