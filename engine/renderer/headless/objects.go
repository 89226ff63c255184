package headless

import (
	"fmt"

	"github.com/spaghettifunk/prism/engine/renderer/gpu"
)

type Buffer struct {
	b           *Backend
	data        []byte
	usage       gpu.BufferUsage
	hostVisible bool
	mapped      bool
	destroyed   bool
}

func (buf *Buffer) Size() uint64 { return uint64(len(buf.data)) }

func (buf *Buffer) Map() ([]byte, error) {
	if !buf.hostVisible {
		return nil, gpu.ErrNotMappable
	}
	buf.mapped = true
	return buf.data, nil
}

func (buf *Buffer) Unmap() { buf.mapped = false }

// Mapped reports whether the buffer is currently mapped.
func (buf *Buffer) Mapped() bool { return buf.mapped }

// Bytes exposes the contents regardless of visibility.
func (buf *Buffer) Bytes() []byte { return buf.data }

func (buf *Buffer) Destroy() {
	if buf.destroyed {
		panic("headless: buffer destroyed twice")
	}
	buf.destroyed = true
	buf.b.stats.BuffersLive--
}

type Image struct {
	b         *Backend
	desc      gpu.ImageDesc
	data      []byte
	layout    gpu.ImageLayout
	destroyed bool
}

func (img *Image) Extent() gpu.Extent3D    { return img.desc.Extent }
func (img *Image) Format() gpu.Format      { return img.desc.Format }
func (img *Image) Desc() gpu.ImageDesc     { return img.desc }
func (img *Image) Layout() gpu.ImageLayout { return img.layout }
func (img *Image) Bytes() []byte           { return img.data }

func (img *Image) Destroy() {
	if img.destroyed {
		panic("headless: image destroyed twice")
	}
	img.destroyed = true
	img.b.stats.ImagesLive--
}

type ShaderModule struct {
	b    *Backend
	size int
}

func (m *ShaderModule) Destroy() { m.b.stats.ShaderModulesLive-- }

type DescriptorSetLayout struct {
	b        *Backend
	Bindings []gpu.DescriptorBinding
}

func (l *DescriptorSetLayout) Destroy() { l.b.stats.DescriptorSetLayoutsLive-- }

type DescriptorPool struct {
	b         *Backend
	maxSets   int
	allocated int
}

func (p *DescriptorPool) Allocate(layout gpu.DescriptorSetLayout, count int) ([]gpu.DescriptorSet, error) {
	if p.allocated+count > p.maxSets {
		return nil, gpu.ErrPoolFull
	}
	l := layout.(*DescriptorSetLayout)
	sets := make([]gpu.DescriptorSet, count)
	for i := range sets {
		sets[i] = &DescriptorSet{Layout: l, Writes: make(map[uint32]gpu.DescriptorWrite)}
	}
	p.allocated += count
	p.b.stats.DescriptorSetsLive += count
	return sets, nil
}

func (p *DescriptorPool) Free(sets []gpu.DescriptorSet) error {
	if len(sets) > p.allocated {
		return fmt.Errorf("freeing %d sets from a pool holding %d", len(sets), p.allocated)
	}
	p.allocated -= len(sets)
	p.b.stats.DescriptorSetsLive -= len(sets)
	return nil
}

func (p *DescriptorPool) Destroy() {
	p.b.stats.DescriptorSetsLive -= p.allocated
	p.allocated = 0
}

type DescriptorSet struct {
	Layout *DescriptorSetLayout
	Writes map[uint32]gpu.DescriptorWrite
}

func (s *DescriptorSet) Update(writes []gpu.DescriptorWrite) {
	for _, w := range writes {
		s.Writes[w.Binding] = w
	}
}

type RenderPass struct {
	b           *Backend
	ColorFormat gpu.Format
	DepthFormat gpu.Format
}

func (rp *RenderPass) NewFramebuffer(sc gpu.Swapchain, index int, depth gpu.Image) (gpu.Framebuffer, error) {
	if index < 0 || index >= sc.ImageCount() {
		return nil, fmt.Errorf("framebuffer index %d out of range [0,%d)", index, sc.ImageCount())
	}
	if depth == nil {
		return nil, fmt.Errorf("framebuffer requires a depth attachment")
	}
	rp.b.stats.FramebuffersLive++
	return &Framebuffer{b: rp.b, Index: index}, nil
}

func (rp *RenderPass) Destroy() {}

type Framebuffer struct {
	b     *Backend
	Index int
}

func (fb *Framebuffer) Destroy() { fb.b.stats.FramebuffersLive-- }

type Pipeline struct {
	b    *Backend
	Desc gpu.PipelineDesc
}

func (p *Pipeline) Destroy() { p.b.stats.PipelinesLive-- }

type Fence struct {
	b        *Backend
	signaled bool
}

func (f *Fence) Wait(timeout uint64) error {
	if !f.signaled {
		return gpu.ErrTimeout
	}
	return nil
}

func (f *Fence) Reset() error {
	f.signaled = false
	return nil
}

func (f *Fence) Signaled() bool { return f.signaled }

func (f *Fence) Destroy() { f.b.stats.FencesLive-- }

type Semaphore struct {
	b        *Backend
	signaled bool
}

func (s *Semaphore) Destroy() { s.b.stats.SemaphoresLive-- }

type Surface struct {
	Window interface{}
}

func (s *Surface) Destroy() {}

type Swapchain struct {
	b         *Backend
	extent    gpu.Extent2D
	count     int
	format    gpu.Format
	next      uint32
	outOfDate bool
	retired   bool
}

func (sc *Swapchain) ImageCount() int      { return sc.count }
func (sc *Swapchain) Extent() gpu.Extent2D { return sc.extent }
func (sc *Swapchain) Format() gpu.Format   { return sc.format }

func (sc *Swapchain) Acquire(timeout uint64, signal gpu.Semaphore) (uint32, error) {
	if sc.outOfDate || sc.retired {
		return 0, gpu.ErrOutOfDate
	}
	idx := sc.next
	sc.next = (sc.next + 1) % uint32(sc.count)
	if signal != nil {
		signal.(*Semaphore).signaled = true
	}
	return idx, nil
}

func (sc *Swapchain) Present(index uint32, wait gpu.Semaphore) error {
	if int(index) >= sc.count {
		return fmt.Errorf("present index %d out of range", index)
	}
	if wait != nil {
		s := wait.(*Semaphore)
		if !s.signaled {
			return fmt.Errorf("present waits on a semaphore that is never signaled")
		}
		s.signaled = false
	}
	sc.b.stats.Presents++
	if sc.outOfDate {
		return gpu.ErrOutOfDate
	}
	return nil
}

func (sc *Swapchain) Destroy() {
	delete(sc.b.swapchains, sc)
	sc.b.stats.SwapchainsLive--
}
