// Package headless implements gpu.Backend in host memory. Copies, layout
// transitions and draws are recorded and executed at submit time, which
// makes it usable for offscreen runs and for exercising the renderer
// without a device.
package headless

import (
	"fmt"

	"github.com/spaghettifunk/prism/engine/renderer/gpu"
)

// Stats counts live objects and submitted work.
type Stats struct {
	BuffersLive              int
	ImagesLive               int
	ShaderModulesLive        int
	DescriptorSetLayoutsLive int
	DescriptorSetsLive       int
	PipelinesCreated         int
	PipelinesLive            int
	FencesLive               int
	SemaphoresLive           int
	SwapchainsCreated        int
	SwapchainsLive           int
	FramebuffersLive         int
	Submits                  int
	SingleTimeSubmits        int
	Presents                 int
	// LastFrameDraws is the number of draw calls in the last Submit.
	LastFrameDraws int
}

type Option func(*Backend)

func WithMaxAllocationSize(n uint64) Option {
	return func(b *Backend) { b.limits.MaxAllocationSize = n }
}

func WithSwapchainImageCount(n int) Option {
	return func(b *Backend) { b.swapImageCount = n }
}

// WithSurfaceFormat sets the color format swapchains are created with.
func WithSurfaceFormat(f gpu.Format) Option {
	return func(b *Backend) { b.surfaceFormat = f }
}

func WithDepthFormat(f gpu.Format) Option {
	return func(b *Backend) { b.depthFormat = f }
}

type Backend struct {
	limits         gpu.Limits
	depthFormat    gpu.Format
	surfaceFormat  gpu.Format
	swapImageCount int
	initialized    bool
	swapchains     map[*Swapchain]struct{}
	stats          Stats
	// failSingleTime is returned by the next EndSingleTimeCommands.
	failSingleTime error
}

var _ gpu.Backend = (*Backend)(nil)

func New(opts ...Option) *Backend {
	b := &Backend{
		limits: gpu.Limits{
			MaxAllocationSize:    gpu.GuaranteedAllocationSize,
			MaxPushConstantsSize: 128,
			MaxLineWidth:         8,
			MaxImageDimension3D:  2048,
		},
		depthFormat:    gpu.FormatD32Sfloat,
		surfaceFormat:  gpu.FormatB8G8R8A8Unorm,
		swapImageCount: 3,
		swapchains:     make(map[*Swapchain]struct{}),
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

func (b *Backend) Initialize(cfg *gpu.InitConfig) error {
	if b.initialized {
		return fmt.Errorf("headless backend already initialized")
	}
	if cfg != nil && cfg.MaxAllocationSize > 0 {
		b.limits.MaxAllocationSize = cfg.MaxAllocationSize
	}
	if b.depthFormat == gpu.FormatUndefined {
		return gpu.ErrNoDepthFormat
	}
	b.initialized = true
	return nil
}

func (b *Backend) Shutdown() error {
	b.initialized = false
	return nil
}

func (b *Backend) Name() string            { return "headless" }
func (b *Backend) Limits() gpu.Limits      { return b.limits }
func (b *Backend) DepthFormat() gpu.Format { return b.depthFormat }
func (b *Backend) WaitIdle() error         { return nil }

// Stats returns a snapshot of the counters.
func (b *Backend) Stats() Stats {
	return b.stats
}

// FailNextSingleTimeSubmit makes the next EndSingleTimeCommands discard
// its commands and return err, as a lost device would.
func (b *Backend) FailNextSingleTimeSubmit(err error) {
	b.failSingleTime = err
}

// ForceOutOfDate marks every live swapchain out of date, as a window
// system would after a resize.
func (b *Backend) ForceOutOfDate() {
	for sc := range b.swapchains {
		sc.outOfDate = true
	}
}

func (b *Backend) CreateBuffer(size uint64, usage gpu.BufferUsage, hostVisible bool) (gpu.Buffer, error) {
	if size == 0 {
		return nil, fmt.Errorf("buffer size must be positive")
	}
	if size > b.limits.MaxAllocationSize {
		return nil, fmt.Errorf("buffer of %d bytes exceeds max allocation size %d", size, b.limits.MaxAllocationSize)
	}
	b.stats.BuffersLive++
	return &Buffer{b: b, data: make([]byte, size), usage: usage, hostVisible: hostVisible}, nil
}

func (b *Backend) CreateImage(desc *gpu.ImageDesc) (gpu.Image, error) {
	e := desc.Extent
	if e.Width == 0 || e.Height == 0 || e.Depth == 0 {
		return nil, fmt.Errorf("image extent %dx%dx%d has a zero dimension", e.Width, e.Height, e.Depth)
	}
	ts := desc.Format.TexelSize()
	if ts == 0 {
		return nil, fmt.Errorf("format %d has no texel size", desc.Format)
	}
	b.stats.ImagesLive++
	return &Image{
		b:    b,
		desc: *desc,
		data: make([]byte, uint64(e.Width)*uint64(e.Height)*uint64(e.Depth)*uint64(ts)),
	}, nil
}

func (b *Backend) CreateShaderModule(code []byte) (gpu.ShaderModule, error) {
	if len(code) == 0 || len(code)%4 != 0 {
		return nil, fmt.Errorf("shader code size %d is not a positive multiple of 4", len(code))
	}
	b.stats.ShaderModulesLive++
	return &ShaderModule{b: b, size: len(code)}, nil
}

func (b *Backend) CreateDescriptorSetLayout(bindings []gpu.DescriptorBinding) (gpu.DescriptorSetLayout, error) {
	b.stats.DescriptorSetLayoutsLive++
	return &DescriptorSetLayout{b: b, Bindings: append([]gpu.DescriptorBinding(nil), bindings...)}, nil
}

func (b *Backend) CreateDescriptorPool(maxSets uint32, sizes []gpu.DescriptorPoolSize) (gpu.DescriptorPool, error) {
	if maxSets == 0 {
		return nil, fmt.Errorf("descriptor pool needs at least one set")
	}
	return &DescriptorPool{b: b, maxSets: int(maxSets)}, nil
}

func (b *Backend) CreateRenderPass(colorFormat, depthFormat gpu.Format) (gpu.RenderPass, error) {
	return &RenderPass{b: b, ColorFormat: colorFormat, DepthFormat: depthFormat}, nil
}

func (b *Backend) CreateGraphicsPipeline(desc *gpu.PipelineDesc) (gpu.Pipeline, error) {
	if desc.VertexShader == nil || desc.FragmentShader == nil {
		return nil, fmt.Errorf("pipeline requires vertex and fragment shaders")
	}
	if desc.RenderPass == nil {
		return nil, fmt.Errorf("pipeline requires a render pass")
	}
	if len(desc.Bindings) == 0 || len(desc.Attributes) == 0 {
		return nil, fmt.Errorf("pipeline requires vertex input")
	}
	if desc.PushConstantSize > b.limits.MaxPushConstantsSize {
		return nil, fmt.Errorf("push constant size %d exceeds limit %d", desc.PushConstantSize, b.limits.MaxPushConstantsSize)
	}
	b.stats.PipelinesCreated++
	b.stats.PipelinesLive++
	d := *desc
	return &Pipeline{b: b, Desc: d}, nil
}

func (b *Backend) CreateFence(signaled bool) (gpu.Fence, error) {
	b.stats.FencesLive++
	return &Fence{b: b, signaled: signaled}, nil
}

func (b *Backend) CreateSemaphore() (gpu.Semaphore, error) {
	b.stats.SemaphoresLive++
	return &Semaphore{b: b}, nil
}

func (b *Backend) CreateSurface(window interface{}) (gpu.Surface, error) {
	return &Surface{Window: window}, nil
}

func (b *Backend) CreateSwapchain(surface gpu.Surface, width, height uint32, old gpu.Swapchain) (gpu.Swapchain, error) {
	if surface == nil {
		return nil, fmt.Errorf("swapchain requires a surface")
	}
	if width == 0 || height == 0 {
		return nil, fmt.Errorf("swapchain extent %dx%d: %w", width, height, gpu.ErrOutOfDate)
	}
	if o, ok := old.(*Swapchain); ok {
		o.retired = true
	}
	sc := &Swapchain{
		b:      b,
		extent: gpu.Extent2D{Width: width, Height: height},
		count:  b.swapImageCount,
		format: b.surfaceFormat,
	}
	b.swapchains[sc] = struct{}{}
	b.stats.SwapchainsCreated++
	b.stats.SwapchainsLive++
	return sc, nil
}

func (b *Backend) AllocateCommandBuffer() (gpu.CommandBuffer, error) {
	return &CommandBuffer{b: b}, nil
}

func (b *Backend) BeginSingleTimeCommands() (gpu.CommandBuffer, error) {
	cb := &CommandBuffer{b: b, singleUse: true}
	if err := cb.Begin(); err != nil {
		return nil, err
	}
	return cb, nil
}

func (b *Backend) EndSingleTimeCommands(c gpu.CommandBuffer) error {
	cb := c.(*CommandBuffer)
	defer cb.Free()
	if err := cb.End(); err != nil {
		return err
	}
	if err := b.failSingleTime; err != nil {
		b.failSingleTime = nil
		return err
	}
	b.stats.SingleTimeSubmits++
	_, err := cb.execute()
	return err
}

func (b *Backend) Submit(c gpu.CommandBuffer, wait, signal gpu.Semaphore, fence gpu.Fence) error {
	cb := c.(*CommandBuffer)
	if cb.state != stateExecutable {
		return fmt.Errorf("submitted command buffer is not executable")
	}
	if wait != nil {
		s := wait.(*Semaphore)
		if !s.signaled {
			return fmt.Errorf("submit waits on a semaphore that is never signaled")
		}
		s.signaled = false
	}
	draws, err := cb.execute()
	if err != nil {
		return err
	}
	b.stats.Submits++
	b.stats.LastFrameDraws = draws
	if signal != nil {
		signal.(*Semaphore).signaled = true
	}
	if fence != nil {
		f := fence.(*Fence)
		if f.signaled {
			return fmt.Errorf("submit with a fence that is already signaled")
		}
		f.signaled = true
	}
	return nil
}
