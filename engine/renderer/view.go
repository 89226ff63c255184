package renderer

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/spaghettifunk/prism/engine/core"
	"github.com/spaghettifunk/prism/engine/math"
	"github.com/spaghettifunk/prism/engine/renderer/gpu"
	"github.com/spaghettifunk/prism/engine/renderer/metadata"
)

type view struct {
	label   string
	context metadata.ContextID
	desc    metadata.ViewDesc

	swapchain    gpu.Swapchain
	depth        gpu.Image
	renderPass   gpu.RenderPass
	framebuffers []gpu.Framebuffer

	layout   gpu.DescriptorSetLayout
	pool     gpu.DescriptorPool
	sets     []gpu.DescriptorSet
	uniforms [metadata.FramesInFlight]gpu.Buffer
	mapped   [metadata.FramesInFlight][]byte

	commandBuffers [metadata.FramesInFlight]gpu.CommandBuffer
	currentFrame   uint32

	hidden map[metadata.CollectionID]map[metadata.InstanceID]struct{}
}

// ViewCreate binds a new view to ctx. A context holds at most one view
// because its surface can back only one swapchain.
func (e *Engine) ViewCreate(desc metadata.ViewDesc, ctxID metadata.ContextID) (metadata.ViewID, error) {
	if err := e.ready(); err != nil {
		return metadata.InvalidView, err
	}
	ctx, err := e.contexts.lookup(ctxID)
	if err != nil {
		return metadata.InvalidView, err
	}
	if e.views.available(ctx.view) {
		return metadata.InvalidView, invalid("context %d already has view %d", ctxID, ctx.view)
	}

	v := &view{
		label:   uuid.NewString(),
		context: ctxID,
		desc:    desc,
		hidden:  make(map[metadata.CollectionID]map[metadata.InstanceID]struct{}),
	}
	if v.swapchain, err = e.backend.CreateSwapchain(ctx.surface, ctx.width, ctx.height, nil); err != nil {
		return metadata.InvalidView, fatal("create swapchain", err)
	}
	// Pipelines are compiled against the reference render pass, so the view's
	// pass must be compatible with it.
	if f := v.swapchain.Format(); f != ReferenceColorFormat {
		v.swapchain.Destroy()
		err := fmt.Errorf("%w: surface format %d, pipelines need %d", core.ErrUnsupported, f, ReferenceColorFormat)
		core.LogError(err.Error())
		return metadata.InvalidView, err
	}
	if v.renderPass, err = e.backend.CreateRenderPass(v.swapchain.Format(), e.backend.DepthFormat()); err != nil {
		return metadata.InvalidView, fatal("create view render pass", err)
	}
	if err := e.createTargets(v); err != nil {
		return metadata.InvalidView, err
	}

	if v.layout, err = e.backend.CreateDescriptorSetLayout(viewBindings()); err != nil {
		return metadata.InvalidView, fatal("create view layout", err)
	}
	if v.pool, err = e.backend.CreateDescriptorPool(metadata.FramesInFlight, []gpu.DescriptorPoolSize{
		{Type: gpu.DescriptorTypeUniformBuffer, Count: metadata.FramesInFlight},
	}); err != nil {
		return metadata.InvalidView, fatal("create view descriptor pool", err)
	}
	if v.sets, err = v.pool.Allocate(v.layout, metadata.FramesInFlight); err != nil {
		return metadata.InvalidView, fatal("allocate view descriptor sets", err)
	}
	for i := 0; i < metadata.FramesInFlight; i++ {
		if v.uniforms[i], err = e.backend.CreateBuffer(metadata.ViewUniformSize, gpu.BufferUsageUniform, true); err != nil {
			return metadata.InvalidView, fatal("create view uniform buffer", err)
		}
		if v.mapped[i], err = v.uniforms[i].Map(); err != nil {
			return metadata.InvalidView, fatal("map view uniform buffer", err)
		}
		v.sets[i].Update([]gpu.DescriptorWrite{{
			Binding: 0,
			Type:    gpu.DescriptorTypeUniformBuffer,
			Buffer:  v.uniforms[i],
			Range:   metadata.ViewUniformSize,
		}})
		if v.commandBuffers[i], err = e.backend.AllocateCommandBuffer(); err != nil {
			return metadata.InvalidView, fatal("allocate view command buffer", err)
		}
	}

	id, err := e.views.insert(v)
	if err != nil {
		return metadata.InvalidView, err
	}
	ctx.view = id
	core.LogInfo("view %d (%s) created on context %d with %d swapchain images", id, v.label, ctxID, v.swapchain.ImageCount())
	return id, nil
}

// createTargets builds the depth image and one framebuffer per swapchain image.
func (e *Engine) createTargets(v *view) error {
	extent := v.swapchain.Extent()
	var err error
	v.depth, err = e.backend.CreateImage(&gpu.ImageDesc{
		Type:   gpu.ImageType2D,
		Format: e.backend.DepthFormat(),
		Extent: gpu.Extent3D{Width: extent.Width, Height: extent.Height, Depth: 1},
		Usage:  gpu.ImageUsageDepthAttachment,
	})
	if err != nil {
		return fatal("create depth image", err)
	}
	v.framebuffers = make([]gpu.Framebuffer, v.swapchain.ImageCount())
	for i := range v.framebuffers {
		if v.framebuffers[i], err = v.renderPass.NewFramebuffer(v.swapchain, i, v.depth); err != nil {
			return fatal(fmt.Sprintf("create framebuffer %d", i), err)
		}
	}
	return nil
}

func (v *view) destroyTargets() {
	for _, fb := range v.framebuffers {
		fb.Destroy()
	}
	v.framebuffers = nil
	if v.depth != nil {
		v.depth.Destroy()
		v.depth = nil
	}
}

// recreateSwapchain rebuilds the swapchain, depth image and framebuffers
// at the context's current extent.
func (e *Engine) recreateSwapchain(v *view, ctx *context) error {
	if ctx.width == 0 || ctx.height == 0 {
		return core.ErrSwapchainBooting
	}
	if err := e.backend.WaitIdle(); err != nil {
		return fatal("wait idle", err)
	}
	v.destroyTargets()
	sc, err := e.backend.CreateSwapchain(ctx.surface, ctx.width, ctx.height, v.swapchain)
	if err != nil {
		return fatal("recreate swapchain", err)
	}
	v.swapchain.Destroy()
	v.swapchain = sc
	if err := e.createTargets(v); err != nil {
		return err
	}
	if err := e.backend.WaitIdle(); err != nil {
		return fatal("wait idle", err)
	}
	ctx.resized = false
	core.LogDebug("view %s swapchain recreated at %dx%d", v.label, ctx.width, ctx.height)
	return nil
}

func (e *Engine) ViewAvailable(id metadata.ViewID) bool {
	return e.inited && e.views.available(id)
}

func (e *Engine) ViewUpdate(id metadata.ViewID, desc metadata.ViewDesc) error {
	if err := e.ready(); err != nil {
		return err
	}
	v, err := e.views.lookup(id)
	if err != nil {
		return err
	}
	v.desc = desc
	return nil
}

func (e *Engine) ViewGetData(id metadata.ViewID) (metadata.ViewDesc, bool) {
	if !e.inited {
		return metadata.ViewDesc{}, false
	}
	v, ok := e.views.get(id)
	if !ok {
		return metadata.ViewDesc{}, false
	}
	return v.desc, true
}

// ViewHideInstance adds or removes inst from the view's hidden list for
// coll. This is independent of the instance's own hide flag.
func (e *Engine) ViewHideInstance(id metadata.ViewID, coll metadata.CollectionID, inst metadata.InstanceID, hide bool) error {
	if err := e.ready(); err != nil {
		return err
	}
	v, err := e.views.lookup(id)
	if err != nil {
		return err
	}
	if _, _, err := e.lookupInstance(coll, inst); err != nil {
		return err
	}
	if !hide {
		delete(v.hidden[coll], inst)
		return nil
	}
	if v.hidden[coll] == nil {
		v.hidden[coll] = make(map[metadata.InstanceID]struct{})
	}
	v.hidden[coll][inst] = struct{}{}
	return nil
}

// ViewCurrentFrame returns the frame-in-flight index of the next draw.
func (e *Engine) ViewCurrentFrame(id metadata.ViewID) (uint32, error) {
	if err := e.ready(); err != nil {
		return 0, err
	}
	v, err := e.views.lookup(id)
	if err != nil {
		return 0, err
	}
	return v.currentFrame, nil
}

// ViewFramebufferCount returns the number of framebuffers, one per swapchain image.
func (e *Engine) ViewFramebufferCount(id metadata.ViewID) (int, error) {
	if err := e.ready(); err != nil {
		return 0, err
	}
	v, err := e.views.lookup(id)
	if err != nil {
		return 0, err
	}
	return len(v.framebuffers), nil
}

func (e *Engine) writeViewUniform(v *view, frame uint32) {
	m := v.mapped[frame]
	n := math.PutMat4(m, v.desc.View)
	n += math.PutMat4(m[n:], v.desc.Projection)
	n += math.PutVec3(m[n:], v.desc.LightDirection)
	math.PutVec3(m[n:], v.desc.LightColor)
}

func (e *Engine) ViewDispose(id metadata.ViewID) error {
	if err := e.ready(); err != nil {
		return err
	}
	v, err := e.views.lookup(id)
	if err != nil {
		return err
	}
	if err := e.backend.WaitIdle(); err != nil {
		return fatal("wait idle", err)
	}
	v.destroyTargets()
	v.swapchain.Destroy()
	v.renderPass.Destroy()
	for i := 0; i < metadata.FramesInFlight; i++ {
		v.commandBuffers[i].Free()
		v.uniforms[i].Unmap()
		v.uniforms[i].Destroy()
		v.mapped[i] = nil
	}
	v.pool.Destroy()
	v.layout.Destroy()
	if ctx, ok := e.contexts.get(v.context); ok && ctx.view == id {
		ctx.view = metadata.InvalidView
	}
	e.views.remove(id)
	core.LogInfo("view %d (%s) disposed", id, v.label)
	return nil
}
