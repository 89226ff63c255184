package vulkan

import (
	"fmt"
	"math"

	"github.com/go-gl/glfw/v3.3/glfw"
	vk "github.com/goki/vulkan"

	"github.com/spaghettifunk/prism/engine/core"
	pmath "github.com/spaghettifunk/prism/engine/math"
	"github.com/spaghettifunk/prism/engine/renderer/gpu"
)

type VulkanSurface struct {
	context *VulkanContext
	Handle  vk.Surface
}

var _ gpu.Surface = (*VulkanSurface)(nil)

// createVulkanSurface creates a surface for a glfw window.
func createVulkanSurface(context *VulkanContext, window interface{}) (vk.Surface, error) {
	w, ok := window.(*glfw.Window)
	if !ok || w == nil {
		err := fmt.Errorf("vulkan surface needs a *glfw.Window, got %T", window)
		core.LogError(err.Error())
		return vk.NullSurface, err
	}
	surface, err := w.CreateWindowSurface(context.Instance, nil)
	if err != nil {
		err = fmt.Errorf("vulkan surface creation failed: %w", err)
		core.LogError(err.Error())
		return vk.NullSurface, err
	}
	return vk.SurfaceFromPointer(surface), nil
}

func SurfaceCreate(context *VulkanContext, window interface{}) (*VulkanSurface, error) {
	surface, err := createVulkanSurface(context, window)
	if err != nil {
		return nil, err
	}
	var supported vk.Bool32
	vk.GetPhysicalDeviceSurfaceSupport(context.Device.PhysicalDevice, context.Device.PresentQueueIndex, surface, &supported)
	if supported != vk.True {
		vk.DestroySurface(context.Instance, surface, context.Allocator)
		err := fmt.Errorf("present queue family %d cannot present to surface: %w", context.Device.PresentQueueIndex, gpu.ErrNoDevice)
		core.LogError(err.Error())
		return nil, err
	}
	return &VulkanSurface{context: context, Handle: surface}, nil
}

func (s *VulkanSurface) Destroy() {
	if s.Handle != vk.NullSurface {
		vk.DestroySurface(s.context.Instance, s.Handle, s.context.Allocator)
		s.Handle = vk.NullSurface
	}
}

type VulkanSwapchain struct {
	context     *VulkanContext
	ImageFormat vk.SurfaceFormat
	Handle      vk.Swapchain
	Images      []vk.Image
	Views       []vk.ImageView
	extent      vk.Extent2D
}

var _ gpu.Swapchain = (*VulkanSwapchain)(nil)

// SwapchainCreate builds a swapchain for surface; old, when not nil, is
// passed as the retired swapchain.
func SwapchainCreate(context *VulkanContext, surface *VulkanSurface, width, height uint32, old *VulkanSwapchain) (*VulkanSwapchain, error) {
	device := context.Device
	support, err := DeviceQuerySwapchainSupport(device.PhysicalDevice, surface.Handle)
	if err != nil {
		return nil, err
	}
	if len(support.Formats) == 0 || len(support.PresentModes) == 0 {
		err := fmt.Errorf("surface reports no formats or present modes")
		core.LogError(err.Error())
		return nil, err
	}

	swapchain := &VulkanSwapchain{context: context}

	// Choose a swap surface format.
	swapchain.ImageFormat = support.Formats[0]
	for _, format := range support.Formats {
		// Preferred formats
		if format.Format == preferredSurfaceFormat && format.ColorSpace == preferredSurfaceColorSpace {
			swapchain.ImageFormat = format
			break
		}
	}

	presentMode := vk.PresentModeFifo
	for _, mode := range support.PresentModes {
		if mode == vk.PresentModeMailbox {
			presentMode = mode
			break
		}
	}

	// Swapchain extent
	caps := support.Capabilities
	swapchainExtent := vk.Extent2D{Width: width, Height: height}
	if caps.CurrentExtent.Width != math.MaxUint32 {
		swapchainExtent = caps.CurrentExtent
	}
	// Clamp to the value allowed by the GPU.
	swapchainExtent.Width = pmath.Clamp(swapchainExtent.Width, caps.MinImageExtent.Width, caps.MaxImageExtent.Width)
	swapchainExtent.Height = pmath.Clamp(swapchainExtent.Height, caps.MinImageExtent.Height, caps.MaxImageExtent.Height)
	if swapchainExtent.Width == 0 || swapchainExtent.Height == 0 {
		err := fmt.Errorf("surface extent is %dx%d", swapchainExtent.Width, swapchainExtent.Height)
		core.LogDebug(err.Error())
		return nil, err
	}

	imageCount := caps.MinImageCount + 1
	if caps.MaxImageCount > 0 && imageCount > caps.MaxImageCount {
		imageCount = caps.MaxImageCount
	}

	swapchainCreateInfo := vk.SwapchainCreateInfo{
		SType:            vk.StructureTypeSwapchainCreateInfo,
		Surface:          surface.Handle,
		MinImageCount:    imageCount,
		ImageFormat:      swapchain.ImageFormat.Format,
		ImageColorSpace:  swapchain.ImageFormat.ColorSpace,
		ImageExtent:      swapchainExtent,
		ImageArrayLayers: 1,
		ImageUsage:       vk.ImageUsageFlags(vk.ImageUsageColorAttachmentBit),
		ImageSharingMode: vk.SharingModeExclusive,
		PreTransform:     caps.CurrentTransform,
		CompositeAlpha:   vk.CompositeAlphaOpaqueBit,
		PresentMode:      presentMode,
		Clipped:          vk.True,
		OldSwapchain:     vk.NullSwapchain,
	}
	// Setup the queue family indices
	if device.GraphicsQueueIndex != device.PresentQueueIndex {
		swapchainCreateInfo.ImageSharingMode = vk.SharingModeConcurrent
		swapchainCreateInfo.QueueFamilyIndexCount = 2
		swapchainCreateInfo.PQueueFamilyIndices = []uint32{device.GraphicsQueueIndex, device.PresentQueueIndex}
	}
	if old != nil {
		swapchainCreateInfo.OldSwapchain = old.Handle
	}

	var handle vk.Swapchain
	if err := check("vkCreateSwapchain", vk.CreateSwapchain(context.logical(), &swapchainCreateInfo, context.Allocator, &handle)); err != nil {
		return nil, err
	}
	swapchain.Handle = handle
	swapchain.extent = swapchainExtent

	// Images
	var count uint32
	if err := check("vkGetSwapchainImages", vk.GetSwapchainImages(context.logical(), handle, &count, nil)); err != nil {
		swapchain.Destroy()
		return nil, err
	}
	swapchain.Images = make([]vk.Image, count)
	if err := check("vkGetSwapchainImages", vk.GetSwapchainImages(context.logical(), handle, &count, swapchain.Images)); err != nil {
		swapchain.Destroy()
		return nil, err
	}

	// Views
	swapchain.Views = make([]vk.ImageView, 0, count)
	for _, image := range swapchain.Images {
		viewInfo := vk.ImageViewCreateInfo{
			SType:    vk.StructureTypeImageViewCreateInfo,
			Image:    image,
			ViewType: vk.ImageViewType2d,
			Format:   swapchain.ImageFormat.Format,
			SubresourceRange: vk.ImageSubresourceRange{
				AspectMask: vk.ImageAspectFlags(vk.ImageAspectColorBit),
				LevelCount: 1,
				LayerCount: 1,
			},
		}
		var view vk.ImageView
		if err := check("vkCreateImageView", vk.CreateImageView(context.logical(), &viewInfo, context.Allocator, &view)); err != nil {
			swapchain.Destroy()
			return nil, err
		}
		swapchain.Views = append(swapchain.Views, view)
	}

	core.LogInfo("Swapchain created successfully (%dx%d, %d images).", swapchainExtent.Width, swapchainExtent.Height, count)
	return swapchain, nil
}

func (vs *VulkanSwapchain) ImageCount() int { return len(vs.Images) }

func (vs *VulkanSwapchain) Extent() gpu.Extent2D {
	return gpu.Extent2D{Width: vs.extent.Width, Height: vs.extent.Height}
}

func (vs *VulkanSwapchain) Format() gpu.Format { return gpuFormat(vs.ImageFormat.Format) }

func (vs *VulkanSwapchain) Acquire(timeout uint64, signal gpu.Semaphore) (uint32, error) {
	semaphore, _ := semaphoreHandle(signal)
	var index uint32
	result := vk.AcquireNextImage(vs.context.logical(), vs.Handle, timeout, semaphore, vk.NullFence, &index)
	switch result {
	case vk.Success, vk.Suboptimal:
		return index, nil
	case vk.ErrorOutOfDate:
		return 0, gpu.ErrOutOfDate
	}
	err := fmt.Errorf("failed to acquire swapchain image: %s", VulkanResultString(result, true))
	core.LogError(err.Error())
	return 0, err
}

func (vs *VulkanSwapchain) Present(index uint32, wait gpu.Semaphore) error {
	presentInfo := vk.PresentInfo{
		SType:          vk.StructureTypePresentInfo,
		SwapchainCount: 1,
		PSwapchains:    []vk.Swapchain{vs.Handle},
		PImageIndices:  []uint32{index},
	}
	if semaphore, ok := semaphoreHandle(wait); ok {
		presentInfo.WaitSemaphoreCount = 1
		presentInfo.PWaitSemaphores = []vk.Semaphore{semaphore}
	}

	result := vk.QueuePresent(vs.context.Device.PresentQueue, &presentInfo)
	switch result {
	case vk.Success:
		return nil
	case vk.ErrorOutOfDate, vk.Suboptimal:
		// Swapchain is out of date, suboptimal or a framebuffer resize has occurred.
		return gpu.ErrOutOfDate
	}
	err := fmt.Errorf("failed to present swap chain image: %s", VulkanResultString(result, true))
	core.LogError(err.Error())
	return err
}

func (vs *VulkanSwapchain) Destroy() {
	// Only destroy the views, not the images, since those are owned by the swapchain and are thus
	// destroyed when it is.
	for _, view := range vs.Views {
		vk.DestroyImageView(vs.context.logical(), view, vs.context.Allocator)
	}
	vs.Views = nil
	vs.Images = nil
	if vs.Handle != vk.NullSwapchain {
		vk.DestroySwapchain(vs.context.logical(), vs.Handle, vs.context.Allocator)
		vs.Handle = vk.NullSwapchain
	}
}
