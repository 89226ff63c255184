package renderer

import (
	"errors"
	"fmt"
	stdmath "math"

	"github.com/spaghettifunk/prism/engine/core"
	"github.com/spaghettifunk/prism/engine/renderer/gpu"
	"github.com/spaghettifunk/prism/engine/renderer/metadata"
)

// visible reports whether inst of coll is drawn by v.
func (v *view) visible(coll metadata.CollectionID, id metadata.InstanceID, inst *collectionInstance) bool {
	if inst.hidden {
		return false
	}
	_, hidden := v.hidden[coll][id]
	return !hidden
}

// ViewVisibleInstances returns, in creation order, the instances of coll
// that v would draw.
func (e *Engine) ViewVisibleInstances(id metadata.ViewID, coll metadata.CollectionID) ([]metadata.InstanceID, error) {
	if err := e.ready(); err != nil {
		return nil, err
	}
	v, err := e.views.lookup(id)
	if err != nil {
		return nil, err
	}
	c, err := e.collections.lookup(coll)
	if err != nil {
		return nil, err
	}
	var out []metadata.InstanceID
	for _, inst := range c.order {
		if v.visible(coll, inst, c.instances[inst]) {
			out = append(out, inst)
		}
	}
	return out, nil
}

// ContextDrawCollections records and presents one frame of colls through
// view. Only instances with a compiled draw command are drawn. A skipped
// frame returns an error wrapping core.ErrSwapchainBooting.
func (e *Engine) ContextDrawCollections(ctxID metadata.ContextID, viewID metadata.ViewID, colls []metadata.CollectionID) error {
	if err := e.ready(); err != nil {
		return err
	}
	ctx, err := e.contexts.lookup(ctxID)
	if err != nil {
		return err
	}
	v, err := e.views.lookup(viewID)
	if err != nil {
		return err
	}
	if v.context != ctxID {
		return invalid("view %d is not bound to context %d", viewID, ctxID)
	}
	collections := make([]*collection, len(colls))
	for i, id := range colls {
		if collections[i], err = e.collections.lookup(id); err != nil {
			return err
		}
	}

	if ctx.resized {
		if err := e.recreateSwapchain(v, ctx); err != nil {
			return err
		}
	}

	cur := v.currentFrame
	if err := ctx.inFlight[cur].Wait(stdmath.MaxUint64); err != nil {
		return fatal("wait for in flight fence", err)
	}
	imageIndex, err := v.swapchain.Acquire(stdmath.MaxUint64, ctx.imageAvailable[cur])
	if errors.Is(err, gpu.ErrOutOfDate) {
		ctx.resized = true
		return fmt.Errorf("acquire: %w", core.ErrSwapchainBooting)
	}
	if err != nil {
		return fatal("acquire swapchain image", err)
	}
	if err := ctx.inFlight[cur].Reset(); err != nil {
		return fatal("reset in flight fence", err)
	}

	e.writeViewUniform(v, cur)

	cb := v.commandBuffers[cur]
	if err := cb.Reset(); err != nil {
		return fatal("reset command buffer", err)
	}
	if err := cb.Begin(); err != nil {
		return fatal("begin command buffer", err)
	}
	extent := v.swapchain.Extent()
	cb.BeginRenderPass(v.renderPass, v.framebuffers[imageIndex], extent, [4]float32(v.desc.ClearColor))
	cb.SetViewportScissor(extent)

	draws := 0
	for i, c := range collections {
		for _, id := range c.order {
			dc, ok := c.drawCommands[id]
			if !ok || !v.visible(colls[i], id, c.instances[id]) {
				continue
			}
			if e.recordDraw(cb, v, dc, cur) {
				draws++
			}
		}
	}

	cb.EndRenderPass()
	if err := cb.End(); err != nil {
		return fatal("end command buffer", err)
	}
	if err := e.backend.Submit(cb, ctx.imageAvailable[cur], ctx.renderFinished[cur], ctx.inFlight[cur]); err != nil {
		return fatal("submit frame", err)
	}

	err = v.swapchain.Present(imageIndex, ctx.renderFinished[cur])
	switch {
	case errors.Is(err, gpu.ErrOutOfDate):
		ctx.resized = true
	case err != nil:
		return fatal("present", err)
	}

	v.currentFrame = (cur + 1) % metadata.FramesInFlight

	ctx.clock.Update()
	ctx.metrics.Update(ctx.clock.Elapsed())
	ctx.clock.Start()
	core.LogDebug("view %d frame %d: %d draws", viewID, cur, draws)
	return nil
}

// recordDraw skips draw commands whose geometry or appearance was disposed
// after the collection was finalized. Geometry buffers are looked up again
// on every frame so a reused geometry data id never binds freed buffers.
func (e *Engine) recordDraw(cb gpu.CommandBuffer, v *view, dc *drawCommand, frame uint32) bool {
	app, ok := e.appearances.get(dc.appearance)
	if !ok {
		core.Assert(false, "draw command references disposed appearance %d", dc.appearance)
		return false
	}
	gd, ok := e.geometryData.get(dc.geometryData)
	if !ok || !gd.finalized || gd.layout != dc.layout {
		core.Assert(false, "draw command references disposed or replaced geometry data %d", dc.geometryData)
		return false
	}
	cb.BindPipeline(dc.pipeline)

	sets := []gpu.DescriptorSet{v.sets[frame]}
	if len(app.sets) > 0 {
		sets = append(sets, app.sets[frame])
	}
	cb.BindDescriptorSets(dc.pipeline, sets)
	cb.BindVertexBuffers(gd.vertexBuffers())

	if dc.pushSpatial {
		s, ok := e.spatials.get(dc.spatial)
		if !ok {
			s, _ = e.spatials.get(e.identity)
		}
		cb.PushConstants(dc.pipeline, s.pushConstant())
	}

	if gd.index != nil {
		cb.BindIndexBuffer(gd.index.device)
		cb.DrawIndexed(gd.numIndices)
		return true
	}
	cb.Draw(gd.numVertices)
	return true
}
