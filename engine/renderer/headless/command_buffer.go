package headless

import (
	"errors"
	"fmt"

	"github.com/spaghettifunk/prism/engine/renderer/gpu"
)

type commandBufferState int

const (
	stateInitial commandBufferState = iota
	stateRecording
	stateExecutable
	stateFreed
)

// CommandBuffer records closures that run when the buffer is submitted.
type CommandBuffer struct {
	b         *Backend
	state     commandBufferState
	singleUse bool
	ops       []func() error
	draws     int
	err       error

	inRenderPass bool
	pipeline     *Pipeline
}

func (cb *CommandBuffer) fail(format string, args ...interface{}) {
	if cb.err == nil {
		cb.err = fmt.Errorf(format, args...)
	}
}

func (cb *CommandBuffer) record(name string) bool {
	if cb.state != stateRecording {
		cb.fail("%s recorded outside Begin/End", name)
		return false
	}
	return true
}

func (cb *CommandBuffer) Begin() error {
	if cb.state == stateRecording || cb.state == stateFreed {
		return fmt.Errorf("command buffer cannot begin from state %d", cb.state)
	}
	cb.ops = cb.ops[:0]
	cb.draws = 0
	cb.err = nil
	cb.pipeline = nil
	cb.state = stateRecording
	return nil
}

func (cb *CommandBuffer) End() error {
	if cb.state != stateRecording {
		return fmt.Errorf("command buffer is not recording")
	}
	if cb.inRenderPass {
		cb.fail("render pass still open at End")
	}
	cb.state = stateExecutable
	return cb.err
}

func (cb *CommandBuffer) Reset() error {
	if cb.state == stateFreed {
		return fmt.Errorf("command buffer was freed")
	}
	cb.ops = cb.ops[:0]
	cb.draws = 0
	cb.err = nil
	cb.state = stateInitial
	return nil
}

func (cb *CommandBuffer) Free() {
	cb.ops = nil
	cb.state = stateFreed
}

// Draws returns the draw calls recorded since the last Begin.
func (cb *CommandBuffer) Draws() int { return cb.draws }

func (cb *CommandBuffer) execute() (int, error) {
	if cb.err != nil {
		return 0, cb.err
	}
	for _, op := range cb.ops {
		if err := op(); err != nil {
			return 0, err
		}
	}
	return cb.draws, nil
}

func (cb *CommandBuffer) BeginRenderPass(rp gpu.RenderPass, fb gpu.Framebuffer, extent gpu.Extent2D, clear [4]float32) {
	if !cb.record("BeginRenderPass") {
		return
	}
	if cb.inRenderPass {
		cb.fail("nested render pass")
	}
	if rp == nil || fb == nil {
		cb.fail("render pass begun without a target")
	}
	cb.inRenderPass = true
}

func (cb *CommandBuffer) EndRenderPass() {
	if !cb.record("EndRenderPass") {
		return
	}
	if !cb.inRenderPass {
		cb.fail("EndRenderPass without BeginRenderPass")
	}
	cb.inRenderPass = false
}

func (cb *CommandBuffer) SetViewportScissor(extent gpu.Extent2D) {
	cb.record("SetViewportScissor")
}

func (cb *CommandBuffer) BindPipeline(p gpu.Pipeline) {
	if !cb.record("BindPipeline") {
		return
	}
	cb.pipeline = p.(*Pipeline)
}

func (cb *CommandBuffer) BindDescriptorSets(p gpu.Pipeline, sets []gpu.DescriptorSet) {
	if !cb.record("BindDescriptorSets") {
		return
	}
	if got, want := len(sets), len(p.(*Pipeline).Desc.SetLayouts); got != want {
		cb.fail("binding %d descriptor sets to a pipeline with %d layouts", got, want)
	}
}

func (cb *CommandBuffer) BindVertexBuffers(bufs []gpu.Buffer) {
	if !cb.record("BindVertexBuffers") {
		return
	}
	for _, b := range bufs {
		if b.(*Buffer).destroyed {
			cb.fail("binding a destroyed vertex buffer")
		}
	}
}

func (cb *CommandBuffer) BindIndexBuffer(buf gpu.Buffer) {
	if !cb.record("BindIndexBuffer") {
		return
	}
	if buf.(*Buffer).destroyed {
		cb.fail("binding a destroyed index buffer")
	}
}

func (cb *CommandBuffer) PushConstants(p gpu.Pipeline, data []byte) {
	if !cb.record("PushConstants") {
		return
	}
	if uint32(len(data)) > p.(*Pipeline).Desc.PushConstantSize {
		cb.fail("push constant of %d bytes exceeds range %d", len(data), p.(*Pipeline).Desc.PushConstantSize)
	}
}

func (cb *CommandBuffer) draw(name string) {
	if !cb.record(name) {
		return
	}
	if !cb.inRenderPass {
		cb.fail("%s outside a render pass", name)
	}
	if cb.pipeline == nil {
		cb.fail("%s without a bound pipeline", name)
	}
	cb.draws++
}

func (cb *CommandBuffer) Draw(vertexCount uint32) {
	cb.draw("Draw")
}

func (cb *CommandBuffer) DrawIndexed(indexCount uint32) {
	cb.draw("DrawIndexed")
}

func (cb *CommandBuffer) CopyBuffer(src, dst gpu.Buffer, size uint64) {
	if !cb.record("CopyBuffer") {
		return
	}
	s, d := src.(*Buffer), dst.(*Buffer)
	cb.ops = append(cb.ops, func() error {
		if size > s.Size() || size > d.Size() {
			return fmt.Errorf("copy of %d bytes overflows buffers (%d -> %d)", size, s.Size(), d.Size())
		}
		copy(d.data[:size], s.data[:size])
		return nil
	})
}

var errLayoutMismatch = errors.New("image layout mismatch")

func (cb *CommandBuffer) TransitionImage(img gpu.Image, from, to gpu.ImageLayout) {
	if !cb.record("TransitionImage") {
		return
	}
	i := img.(*Image)
	cb.ops = append(cb.ops, func() error {
		if from != gpu.ImageLayoutUndefined && i.layout != from {
			return fmt.Errorf("%w: image is in layout %d, barrier expects %d", errLayoutMismatch, i.layout, from)
		}
		i.layout = to
		return nil
	})
}

func (cb *CommandBuffer) CopyBufferToImage(src gpu.Buffer, dst gpu.Image, region *gpu.BufferImageCopy) {
	if !cb.record("CopyBufferToImage") {
		return
	}
	s, d := src.(*Buffer), dst.(*Image)
	r := *region
	cb.ops = append(cb.ops, func() error {
		if d.layout != gpu.ImageLayoutTransferDst {
			return fmt.Errorf("%w: copy destination is in layout %d", errLayoutMismatch, d.layout)
		}
		ie := d.desc.Extent
		if uint32(r.Offset.X)+r.Extent.Width > ie.Width ||
			uint32(r.Offset.Y)+r.Extent.Height > ie.Height ||
			uint32(r.Offset.Z)+r.Extent.Depth > ie.Depth {
			return fmt.Errorf("copy region exceeds image extent")
		}
		ts := uint64(d.desc.Format.TexelSize())
		row := uint64(r.Extent.Width) * ts
		need := r.BufferOffset + row*uint64(r.Extent.Height)*uint64(r.Extent.Depth)
		if need > s.Size() {
			return fmt.Errorf("copy region needs %d bytes, buffer holds %d", need, s.Size())
		}
		for z := uint64(0); z < uint64(r.Extent.Depth); z++ {
			for y := uint64(0); y < uint64(r.Extent.Height); y++ {
				so := r.BufferOffset + (z*uint64(r.Extent.Height)+y)*row
				dz := uint64(r.Offset.Z) + z
				dy := uint64(r.Offset.Y) + y
				do := ((dz*uint64(ie.Height)+dy)*uint64(ie.Width) + uint64(r.Offset.X)) * ts
				copy(d.data[do:do+row], s.data[so:so+row])
			}
		}
		return nil
	})
}
