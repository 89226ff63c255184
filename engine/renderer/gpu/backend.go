// Package gpu defines the graphics objects the renderer drives. Backends
// (Vulkan, headless) implement these interfaces; every object is released
// exactly once through Destroy by its owner.
package gpu

// Destroyer is the interface that wraps the Destroy method.
type Destroyer interface {
	// Destroy releases the underlying resources. The object must not be
	// used afterwards.
	Destroy()
}

// Backend creates GPU objects and submits work. Implementations are not
// safe for concurrent use.
type Backend interface {
	Initialize(cfg *InitConfig) error
	Shutdown() error
	Name() string
	Limits() Limits
	// DepthFormat is the depth attachment format detected at Initialize.
	DepthFormat() Format
	WaitIdle() error

	CreateBuffer(size uint64, usage BufferUsage, hostVisible bool) (Buffer, error)
	CreateImage(desc *ImageDesc) (Image, error)
	CreateShaderModule(code []byte) (ShaderModule, error)
	CreateDescriptorSetLayout(bindings []DescriptorBinding) (DescriptorSetLayout, error)
	CreateDescriptorPool(maxSets uint32, sizes []DescriptorPoolSize) (DescriptorPool, error)
	CreateRenderPass(colorFormat, depthFormat Format) (RenderPass, error)
	CreateGraphicsPipeline(desc *PipelineDesc) (Pipeline, error)
	CreateFence(signaled bool) (Fence, error)
	CreateSemaphore() (Semaphore, error)
	CreateSurface(window interface{}) (Surface, error)
	// CreateSwapchain builds a swapchain for surface. When old is not nil
	// it is retired by the new swapchain; the caller still destroys it.
	CreateSwapchain(surface Surface, width, height uint32, old Swapchain) (Swapchain, error)

	AllocateCommandBuffer() (CommandBuffer, error)
	// BeginSingleTimeCommands allocates and begins a one-shot command buffer.
	BeginSingleTimeCommands() (CommandBuffer, error)
	// EndSingleTimeCommands ends, submits and waits for cb, then frees it.
	EndSingleTimeCommands(cb CommandBuffer) error
	// Submit queues cb. wait and signal may be nil. fence, when not nil,
	// is signaled once cb completes.
	Submit(cb CommandBuffer, wait, signal Semaphore, fence Fence) error
}

// Buffer is a linear GPU allocation.
type Buffer interface {
	Destroyer
	Size() uint64
	// Map returns the host view of a host-visible buffer. The slice stays
	// valid until Unmap or Destroy.
	Map() ([]byte, error)
	Unmap()
}

// Image is a texture or attachment together with its view and, for
// sampled images, its sampler.
type Image interface {
	Destroyer
	Extent() Extent3D
	Format() Format
}

type ShaderModule interface {
	Destroyer
}

type DescriptorSetLayout interface {
	Destroyer
}

type DescriptorPool interface {
	Destroyer
	Allocate(layout DescriptorSetLayout, count int) ([]DescriptorSet, error)
	Free(sets []DescriptorSet) error
}

type DescriptorSet interface {
	Update(writes []DescriptorWrite)
}

type RenderPass interface {
	Destroyer
	// NewFramebuffer targets swapchain image index plus depth.
	NewFramebuffer(sc Swapchain, index int, depth Image) (Framebuffer, error)
}

type Framebuffer interface {
	Destroyer
}

// Pipeline is a graphics pipeline and its layout.
type Pipeline interface {
	Destroyer
}

type Fence interface {
	Destroyer
	Wait(timeout uint64) error
	Reset() error
}

type Semaphore interface {
	Destroyer
}

type Surface interface {
	Destroyer
}

type Swapchain interface {
	Destroyer
	ImageCount() int
	Extent() Extent2D
	Format() Format
	// Acquire returns the next image index. ErrOutOfDate means the
	// swapchain must be recreated before use.
	Acquire(timeout uint64, signal Semaphore) (uint32, error)
	// Present queues index for presentation. ErrOutOfDate is returned for
	// out-of-date and suboptimal swapchains; the image was still queued.
	Present(index uint32, wait Semaphore) error
}

// CommandBuffer records GPU commands. Recording methods do not report
// errors; failures surface at End or Submit.
type CommandBuffer interface {
	Begin() error
	End() error
	Reset() error
	Free()

	BeginRenderPass(rp RenderPass, fb Framebuffer, extent Extent2D, clear [4]float32)
	EndRenderPass()
	SetViewportScissor(extent Extent2D)
	BindPipeline(p Pipeline)
	BindDescriptorSets(p Pipeline, sets []DescriptorSet)
	BindVertexBuffers(bufs []Buffer)
	BindIndexBuffer(buf Buffer)
	PushConstants(p Pipeline, data []byte)
	Draw(vertexCount uint32)
	DrawIndexed(indexCount uint32)

	CopyBuffer(src, dst Buffer, size uint64)
	TransitionImage(img Image, from, to ImageLayout)
	CopyBufferToImage(src Buffer, dst Image, region *BufferImageCopy)
}
