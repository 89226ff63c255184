package vulkan

import (
	vk "github.com/goki/vulkan"

	"github.com/spaghettifunk/prism/engine/renderer/gpu"
)

// VulkanImage is an optimally tiled image with its view and, for sampled
// images, its sampler.
type VulkanImage struct {
	context *VulkanContext
	Handle  vk.Image
	Memory  vk.DeviceMemory
	View    vk.ImageView
	Sampler vk.Sampler
	desc    gpu.ImageDesc
	aspect  vk.ImageAspectFlags
}

var _ gpu.Image = (*VulkanImage)(nil)

func ImageCreate(context *VulkanContext, desc *gpu.ImageDesc) (*VulkanImage, error) {
	image := &VulkanImage{context: context, desc: *desc}
	imageType, viewType := vkImageType(desc.Type)
	format := vkFormat(desc.Format)

	image.aspect = vk.ImageAspectFlags(vk.ImageAspectColorBit)
	if desc.Usage&gpu.ImageUsageDepthAttachment != 0 {
		image.aspect = vk.ImageAspectFlags(vk.ImageAspectDepthBit)
		if desc.Format.HasStencil() {
			image.aspect |= vk.ImageAspectFlags(vk.ImageAspectStencilBit)
		}
	}

	createInfo := vk.ImageCreateInfo{
		SType:     vk.StructureTypeImageCreateInfo,
		ImageType: imageType,
		Format:    format,
		Extent: vk.Extent3D{
			Width:  desc.Extent.Width,
			Height: desc.Extent.Height,
			Depth:  max(desc.Extent.Depth, 1),
		},
		MipLevels:     1,
		ArrayLayers:   1,
		Samples:       vk.SampleCount1Bit,
		Tiling:        vk.ImageTilingOptimal,
		Usage:         vkImageUsage(desc.Usage),
		SharingMode:   vk.SharingModeExclusive,
		InitialLayout: vk.ImageLayoutUndefined,
	}
	var handle vk.Image
	if err := check("vkCreateImage", vk.CreateImage(context.logical(), &createInfo, context.Allocator, &handle)); err != nil {
		return nil, err
	}
	image.Handle = handle

	var reqs vk.MemoryRequirements
	vk.GetImageMemoryRequirements(context.logical(), handle, &reqs)
	memory, err := context.allocate(reqs, vk.MemoryPropertyDeviceLocalBit)
	if err != nil {
		image.Destroy()
		return nil, err
	}
	image.Memory = memory
	if err := check("vkBindImageMemory", vk.BindImageMemory(context.logical(), handle, memory, 0)); err != nil {
		image.Destroy()
		return nil, err
	}

	viewInfo := vk.ImageViewCreateInfo{
		SType:    vk.StructureTypeImageViewCreateInfo,
		Image:    handle,
		ViewType: viewType,
		Format:   format,
		SubresourceRange: vk.ImageSubresourceRange{
			AspectMask: image.aspect,
			LevelCount: 1,
			LayerCount: 1,
		},
	}
	var view vk.ImageView
	if err := check("vkCreateImageView", vk.CreateImageView(context.logical(), &viewInfo, context.Allocator, &view)); err != nil {
		image.Destroy()
		return nil, err
	}
	image.View = view

	if desc.Sampler {
		filter := vkFilter(desc.Filter)
		samplerInfo := vk.SamplerCreateInfo{
			SType:                   vk.StructureTypeSamplerCreateInfo,
			MagFilter:               filter,
			MinFilter:               filter,
			AddressModeU:            vk.SamplerAddressModeClampToEdge,
			AddressModeV:            vk.SamplerAddressModeClampToEdge,
			AddressModeW:            vk.SamplerAddressModeClampToEdge,
			AnisotropyEnable:        vk.False,
			MaxAnisotropy:           1,
			BorderColor:             vk.BorderColorFloatTransparentBlack,
			UnnormalizedCoordinates: vk.False,
			CompareEnable:           vk.False,
			MipmapMode:              vk.SamplerMipmapModeNearest,
		}
		var sampler vk.Sampler
		if err := check("vkCreateSampler", vk.CreateSampler(context.logical(), &samplerInfo, context.Allocator, &sampler)); err != nil {
			image.Destroy()
			return nil, err
		}
		image.Sampler = sampler
	}
	return image, nil
}

func (i *VulkanImage) Extent() gpu.Extent3D { return i.desc.Extent }
func (i *VulkanImage) Format() gpu.Format   { return i.desc.Format }

func (i *VulkanImage) Destroy() {
	device := i.context.logical()
	if i.Sampler != nil {
		vk.DestroySampler(device, i.Sampler, i.context.Allocator)
		i.Sampler = nil
	}
	if i.View != nil {
		vk.DestroyImageView(device, i.View, i.context.Allocator)
		i.View = nil
	}
	if i.Handle != nil {
		vk.DestroyImage(device, i.Handle, i.context.Allocator)
		i.Handle = nil
	}
	if i.Memory != vk.NullDeviceMemory {
		vk.FreeMemory(device, i.Memory, i.context.Allocator)
		i.Memory = vk.NullDeviceMemory
	}
}
