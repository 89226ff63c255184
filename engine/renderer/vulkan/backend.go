// Package vulkan implements gpu.Backend on top of goki/vulkan.
package vulkan

import (
	"fmt"
	"runtime"
	"unsafe"

	"github.com/go-gl/glfw/v3.3/glfw"
	vk "github.com/goki/vulkan"

	"github.com/spaghettifunk/prism/engine/core"
	"github.com/spaghettifunk/prism/engine/renderer/gpu"
)

// Backend drives a single Vulkan device.
type Backend struct {
	context *VulkanContext
	limits  gpu.Limits
	debug   bool
}

var _ gpu.Backend = (*Backend)(nil)

func New() *Backend {
	return &Backend{
		context: &VulkanContext{
			// TODO: custom allocator.
			Allocator: nil,
		},
	}
}

func (b *Backend) Name() string { return "vulkan" }

func (b *Backend) Initialize(cfg *gpu.InitConfig) error {
	b.debug = cfg.Validation

	procAddr := glfw.GetVulkanGetInstanceProcAddress()
	if procAddr == nil {
		err := fmt.Errorf("GetInstanceProcAddress is nil")
		core.LogError(err.Error())
		return fmt.Errorf("%w: %s", gpu.ErrNoDevice, err)
	}
	vk.SetGetInstanceProcAddr(procAddr)

	if err := vk.Init(); err != nil {
		core.LogError("failed to initialize vk: %s", err)
		return err
	}

	window, _ := cfg.Window.(*glfw.Window)
	if err := b.createInstance(cfg.AppName, window); err != nil {
		return err
	}

	// Debugger
	if b.debug {
		core.LogDebug("Creating Vulkan debugger...")
		debugCreateInfo := vk.DebugReportCallbackCreateInfo{
			SType:       vk.StructureTypeDebugReportCallbackCreateInfo,
			Flags:       vk.DebugReportFlags(vk.DebugReportErrorBit | vk.DebugReportWarningBit | vk.DebugReportPerformanceWarningBit),
			PfnCallback: dbgCallbackFunc,
		}
		var dbg vk.DebugReportCallback
		if err := vk.Error(vk.CreateDebugReportCallback(b.context.Instance, &debugCreateInfo, nil, &dbg)); err != nil {
			core.LogError("vk.CreateDebugReportCallback failed with %s", err)
			b.Shutdown()
			return err
		}
		b.context.debugCallback = dbg
		core.LogDebug("Vulkan debugger created.")
	}

	// A probe surface makes device selection require present support.
	probe := vk.NullSurface
	if window != nil {
		surface, err := createVulkanSurface(b.context, window)
		if err != nil {
			b.Shutdown()
			return err
		}
		probe = surface
	}

	err := DeviceCreate(b.context, probe)
	if probe != vk.NullSurface {
		vk.DestroySurface(b.context.Instance, probe, b.context.Allocator)
	}
	if err != nil {
		core.LogError("Failed to create device!")
		b.Shutdown()
		return err
	}

	b.limits = b.context.Device.Limits()
	if cfg.MaxAllocationSize != 0 {
		b.limits.MaxAllocationSize = cfg.MaxAllocationSize
	}

	core.LogInfo("Vulkan backend initialized successfully.")
	return nil
}

func (b *Backend) createInstance(appName string, window *glfw.Window) error {
	appInfo := &vk.ApplicationInfo{
		SType:              vk.StructureTypeApplicationInfo,
		ApiVersion:         uint32(vk.MakeVersion(1, 0, 0)),
		ApplicationVersion: uint32(vk.MakeVersion(1, 0, 0)),
		PApplicationName:   VulkanSafeString(appName),
		PEngineName:        VulkanSafeString("Prism"),
	}

	createInfo := vk.InstanceCreateInfo{
		SType:            vk.StructureTypeInstanceCreateInfo,
		PApplicationInfo: appInfo,
	}

	// Obtain a list of required extensions
	requiredExtensions := []string{}
	if window != nil {
		requiredExtensions = append(requiredExtensions, window.GetRequiredInstanceExtensions()...)
	}
	if runtime.GOOS == "darwin" {
		requiredExtensions = append(requiredExtensions,
			"VK_KHR_portability_enumeration",
			"VK_KHR_get_physical_device_properties2",
		)
		// VK_INSTANCE_CREATE_ENUMERATE_PORTABILITY_BIT_KHR
		createInfo.Flags |= 1
	}
	if b.debug {
		requiredExtensions = append(requiredExtensions, vk.ExtDebugReportExtensionName)
	}
	core.LogDebug("Required extensions: %v", requiredExtensions)

	createInfo.EnabledExtensionCount = uint32(len(requiredExtensions))
	createInfo.PpEnabledExtensionNames = VulkanSafeStrings(requiredExtensions)

	// Validation layers.
	requiredLayers := []string{}
	if b.debug {
		core.LogInfo("Validation layers enabled. Enumerating...")
		requiredLayers = append(requiredLayers, validationLayerName)

		var availableLayerCount uint32
		if err := check("vkEnumerateInstanceLayerProperties", vk.EnumerateInstanceLayerProperties(&availableLayerCount, nil)); err != nil {
			return err
		}
		availableLayers := make([]vk.LayerProperties, availableLayerCount)
		if err := check("vkEnumerateInstanceLayerProperties", vk.EnumerateInstanceLayerProperties(&availableLayerCount, availableLayers)); err != nil {
			return err
		}

		// Verify all required layers are available.
		for _, name := range requiredLayers {
			found := false
			for j := range availableLayers {
				availableLayers[j].Deref()
				if name == cString(availableLayers[j].LayerName[:]) {
					found = true
					break
				}
			}
			if !found {
				err := fmt.Errorf("required validation layer is missing: %s", name)
				core.LogError(err.Error())
				return err
			}
		}
		core.LogInfo("All required validation layers are present.")
	}

	createInfo.EnabledLayerCount = uint32(len(requiredLayers))
	createInfo.PpEnabledLayerNames = VulkanSafeStrings(requiredLayers)

	var instance vk.Instance
	if err := check("vkCreateInstance", vk.CreateInstance(&createInfo, b.context.Allocator, &instance)); err != nil {
		return err
	}
	if err := vk.InitInstance(instance); err != nil {
		core.LogError(err.Error())
		vk.DestroyInstance(instance, b.context.Allocator)
		return err
	}
	b.context.Instance = instance
	core.LogInfo("Vulkan Instance created.")
	return nil
}

// Shutdown destroys the device and instance. Every object created through
// b must already be destroyed.
func (b *Backend) Shutdown() error {
	if b.context.Device != nil {
		vk.DeviceWaitIdle(b.context.logical())
		DeviceDestroy(b.context)
	}
	if b.context.debugCallback != nil {
		core.LogDebug("Destroying Vulkan debugger...")
		vk.DestroyDebugReportCallback(b.context.Instance, b.context.debugCallback, b.context.Allocator)
		b.context.debugCallback = nil
	}
	if b.context.Instance != nil {
		core.LogDebug("Destroying Vulkan instance...")
		vk.DestroyInstance(b.context.Instance, b.context.Allocator)
		b.context.Instance = nil
	}
	return nil
}

func (b *Backend) Limits() gpu.Limits { return b.limits }

func (b *Backend) DepthFormat() gpu.Format {
	return gpuFormat(b.context.Device.DepthFormat)
}

func (b *Backend) WaitIdle() error {
	return check("vkDeviceWaitIdle", vk.DeviceWaitIdle(b.context.logical()))
}

func (b *Backend) CreateBuffer(size uint64, usage gpu.BufferUsage, hostVisible bool) (gpu.Buffer, error) {
	return NewBuffer(b.context, size, usage, hostVisible)
}

func (b *Backend) CreateImage(desc *gpu.ImageDesc) (gpu.Image, error) {
	return ImageCreate(b.context, desc)
}

func (b *Backend) CreateShaderModule(code []byte) (gpu.ShaderModule, error) {
	return NewShaderModule(b.context, code)
}

func (b *Backend) CreateDescriptorSetLayout(bindings []gpu.DescriptorBinding) (gpu.DescriptorSetLayout, error) {
	return NewDescriptorSetLayout(b.context, bindings)
}

func (b *Backend) CreateDescriptorPool(maxSets uint32, sizes []gpu.DescriptorPoolSize) (gpu.DescriptorPool, error) {
	return NewDescriptorPool(b.context, maxSets, sizes)
}

func (b *Backend) CreateRenderPass(colorFormat, depthFormat gpu.Format) (gpu.RenderPass, error) {
	return RenderpassCreate(b.context, colorFormat, depthFormat)
}

func (b *Backend) CreateGraphicsPipeline(desc *gpu.PipelineDesc) (gpu.Pipeline, error) {
	return NewGraphicsPipeline(b.context, desc)
}

func (b *Backend) CreateFence(signaled bool) (gpu.Fence, error) {
	return NewFence(b.context, signaled)
}

func (b *Backend) CreateSemaphore() (gpu.Semaphore, error) {
	return NewSemaphore(b.context)
}

func (b *Backend) CreateSurface(window interface{}) (gpu.Surface, error) {
	return SurfaceCreate(b.context, window)
}

func (b *Backend) CreateSwapchain(surface gpu.Surface, width, height uint32, old gpu.Swapchain) (gpu.Swapchain, error) {
	var retired *VulkanSwapchain
	if old != nil {
		retired = old.(*VulkanSwapchain)
	}
	return SwapchainCreate(b.context, surface.(*VulkanSurface), width, height, retired)
}

func (b *Backend) AllocateCommandBuffer() (gpu.CommandBuffer, error) {
	return NewVulkanCommandBuffer(b.context, b.context.Device.GraphicsCommandPool, true)
}

func (b *Backend) BeginSingleTimeCommands() (gpu.CommandBuffer, error) {
	return AllocateAndBeginSingleUse(b.context, b.context.Device.GraphicsCommandPool)
}

func (b *Backend) EndSingleTimeCommands(cb gpu.CommandBuffer) error {
	return cb.(*VulkanCommandBuffer).EndSingleUse(b.context.Device.GraphicsQueue)
}

func (b *Backend) Submit(cb gpu.CommandBuffer, wait, signal gpu.Semaphore, fence gpu.Fence) error {
	commandBuffer := cb.(*VulkanCommandBuffer)
	submitInfo := vk.SubmitInfo{
		SType:              vk.StructureTypeSubmitInfo,
		CommandBufferCount: 1,
		PCommandBuffers:    []vk.CommandBuffer{commandBuffer.Handle},
	}
	// Each semaphore waits on the corresponding pipeline stage to complete.
	if semaphore, ok := semaphoreHandle(wait); ok {
		submitInfo.WaitSemaphoreCount = 1
		submitInfo.PWaitSemaphores = []vk.Semaphore{semaphore}
		submitInfo.PWaitDstStageMask = []vk.PipelineStageFlags{vk.PipelineStageFlags(vk.PipelineStageColorAttachmentOutputBit)}
	}
	if semaphore, ok := semaphoreHandle(signal); ok {
		submitInfo.SignalSemaphoreCount = 1
		submitInfo.PSignalSemaphores = []vk.Semaphore{semaphore}
	}

	fenceHandle := vk.NullFence
	var vf *VulkanFence
	if fence != nil {
		vf = fence.(*VulkanFence)
		fenceHandle = vf.Handle
	}

	result := vk.QueueSubmit(b.context.Device.GraphicsQueue, 1, []vk.SubmitInfo{submitInfo}, fenceHandle)
	if err := check("vkQueueSubmit", result); err != nil {
		return err
	}
	commandBuffer.UpdateSubmitted()
	if vf != nil {
		vf.IsSignaled = false
	}
	return nil
}

func dbgCallbackFunc(flags vk.DebugReportFlags, objectType vk.DebugReportObjectType, object uint64, location uint64, messageCode int32, pLayerPrefix string, pMessage string, pUserData unsafe.Pointer) vk.Bool32 {
	switch {
	case flags&vk.DebugReportFlags(vk.DebugReportInformationBit) != 0:
		core.LogInfo("INFORMATION: [%s] Code %d : %s", pLayerPrefix, messageCode, pMessage)
	case flags&vk.DebugReportFlags(vk.DebugReportWarningBit) != 0:
		core.LogWarn("WARNING: [%s] Code %d : %s", pLayerPrefix, messageCode, pMessage)
	case flags&vk.DebugReportFlags(vk.DebugReportPerformanceWarningBit) != 0:
		core.LogWarn("PERFORMANCE WARNING: [%s] Code %d : %s", pLayerPrefix, messageCode, pMessage)
	case flags&vk.DebugReportFlags(vk.DebugReportErrorBit) != 0:
		core.LogError("ERROR: [%s] Code %d : %s", pLayerPrefix, messageCode, pMessage)
	case flags&vk.DebugReportFlags(vk.DebugReportDebugBit) != 0:
		core.LogInfo("DEBUG: [%s] Code %d : %s", pLayerPrefix, messageCode, pMessage)
	default:
		core.LogInfo("INFORMATION: [%s] Code %d : %s", pLayerPrefix, messageCode, pMessage)
	}
	return vk.Bool32(vk.False)
}
