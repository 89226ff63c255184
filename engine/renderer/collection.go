package renderer

import (
	"fmt"
	"slices"

	"github.com/spaghettifunk/prism/engine/core"
	"github.com/spaghettifunk/prism/engine/renderer/gpu"
	"github.com/spaghettifunk/prism/engine/renderer/metadata"
)

type collectionInstance struct {
	desc   metadata.InstanceDesc
	hidden bool
}

// drawCommand is everything recorded for one instance per frame.
type drawCommand struct {
	geometryData metadata.GeometryDataID
	// layout the pipeline's vertex input was built from. Buffers are
	// resolved through geometryData at record time.
	layout      metadata.AttributeLayout
	topology    metadata.PrimitiveTopology
	state       metadata.StateInfo
	appearance  metadata.AppearanceID
	spatial     metadata.SpatialID
	pushSpatial bool
	pipeline    gpu.Pipeline
}

type collection struct {
	config       metadata.CollectionConfig
	instances    map[metadata.InstanceID]*collectionInstance
	order        []metadata.InstanceID
	drawCommands map[metadata.InstanceID]*drawCommand
	// dirty is set by every instance creation and cleared by finalize.
	dirty bool
}

func (e *Engine) CollectionCreate(cfg metadata.CollectionConfig) (metadata.CollectionID, error) {
	if err := e.ready(); err != nil {
		return metadata.InvalidCollection, err
	}
	if cfg.MaxInstances == 0 {
		return metadata.InvalidCollection, invalid("collection capacity must be positive")
	}
	return e.collections.insert(&collection{
		config:       cfg,
		instances:    make(map[metadata.InstanceID]*collectionInstance),
		drawCommands: make(map[metadata.InstanceID]*drawCommand),
	})
}

func (e *Engine) CollectionAvailable(id metadata.CollectionID) bool {
	return e.inited && e.collections.available(id)
}

func (e *Engine) CollectionInstanceAvailable(coll metadata.CollectionID, inst metadata.InstanceID) bool {
	if !e.inited {
		return false
	}
	c, ok := e.collections.get(coll)
	if !ok {
		return false
	}
	_, ok = c.instances[inst]
	return ok
}

// CollectionInstanceCreate adds an instance and marks the collection dirty.
func (e *Engine) CollectionInstanceCreate(coll metadata.CollectionID, desc metadata.InstanceDesc) (metadata.InstanceID, error) {
	if err := e.ready(); err != nil {
		return metadata.InvalidInstance, err
	}
	c, err := e.collections.lookup(coll)
	if err != nil {
		return metadata.InvalidInstance, err
	}
	if uint32(len(c.instances)) >= c.config.MaxInstances {
		err := fmt.Errorf("collection %d holds %d instances: %w", coll, c.config.MaxInstances, core.ErrCapacityExceeded)
		core.Assert(false, "%s", err.Error())
		return metadata.InvalidInstance, err
	}
	if _, err := e.geometryData.lookup(desc.GeometryData); err != nil {
		return metadata.InvalidInstance, err
	}
	if _, err := e.geometries.lookup(desc.Geometry); err != nil {
		return metadata.InvalidInstance, err
	}
	if _, err := e.appearances.lookup(desc.Appearance); err != nil {
		return metadata.InvalidInstance, err
	}
	if desc.Spatial.IsValid() {
		if _, err := e.spatials.lookup(desc.Spatial); err != nil {
			return metadata.InvalidInstance, err
		}
	}
	if desc.State.IsValid() {
		if _, err := e.states.lookup(desc.State); err != nil {
			return metadata.InvalidInstance, err
		}
	}

	id, err := e.instances.CreateID()
	if err != nil {
		return metadata.InvalidInstance, err
	}
	inst := metadata.InstanceID(id)
	c.instances[inst] = &collectionInstance{desc: desc, hidden: desc.Hidden}
	c.order = append(c.order, inst)
	c.dirty = true
	return inst, nil
}

func (e *Engine) lookupInstance(coll metadata.CollectionID, inst metadata.InstanceID) (*collection, *collectionInstance, error) {
	c, err := e.collections.lookup(coll)
	if err != nil {
		return nil, nil, err
	}
	i, ok := c.instances[inst]
	if !ok {
		err := fmt.Errorf("instance %d in collection %d: %w", inst, coll, core.ErrInvalidHandle)
		core.Assert(false, "%s", err.Error())
		return nil, nil, err
	}
	return c, i, nil
}

// CollectionInstanceHide sets the per-instance hide flag.
func (e *Engine) CollectionInstanceHide(coll metadata.CollectionID, inst metadata.InstanceID, hide bool) error {
	if err := e.ready(); err != nil {
		return err
	}
	_, i, err := e.lookupInstance(coll, inst)
	if err != nil {
		return err
	}
	i.hidden = hide
	return nil
}

// CollectionInstanceDispose removes an instance and destroys its pipeline.
func (e *Engine) CollectionInstanceDispose(coll metadata.CollectionID, inst metadata.InstanceID) error {
	if err := e.ready(); err != nil {
		return err
	}
	c, _, err := e.lookupInstance(coll, inst)
	if err != nil {
		return err
	}
	if dc, ok := c.drawCommands[inst]; ok {
		if err := e.backend.WaitIdle(); err != nil {
			return fatal("wait idle", err)
		}
		dc.pipeline.Destroy()
		delete(c.drawCommands, inst)
	}
	delete(c.instances, inst)
	c.order = slices.DeleteFunc(c.order, func(id metadata.InstanceID) bool { return id == inst })
	for _, v := range e.views.ids() {
		if view, ok := e.views.get(v); ok {
			delete(view.hidden[coll], inst)
		}
	}
	return e.instances.DestroyID(uint32(inst))
}

// CollectionFinalize compiles a draw command and pipeline for every
// instance that has none. It is a no-op on a clean collection. Instances
// whose geometry is missing or not finalized are skipped.
func (e *Engine) CollectionFinalize(coll metadata.CollectionID) error {
	if err := e.ready(); err != nil {
		return err
	}
	c, err := e.collections.lookup(coll)
	if err != nil {
		return err
	}
	if !c.dirty {
		return nil
	}
	e.reloadChangedShaders()

	for _, id := range c.order {
		if _, ok := c.drawCommands[id]; ok {
			continue
		}
		inst := c.instances[id]
		gd, okData := e.geometryData.get(inst.desc.GeometryData)
		g, okGeom := e.geometries.get(inst.desc.Geometry)
		if !okData || !okGeom || !gd.finalized {
			core.Assert(false, "instance %d of collection %d skipped: geometry unavailable or not finalized", id, coll)
			continue
		}
		app, ok := e.appearances.get(inst.desc.Appearance)
		if !ok {
			core.Assert(false, "instance %d of collection %d skipped: appearance %d unavailable", id, coll, inst.desc.Appearance)
			continue
		}

		dc := &drawCommand{
			geometryData: inst.desc.GeometryData,
			layout:       gd.layout,
			topology:     g.info.Topology,
			state:        e.resolveState(inst.desc.State),
			appearance:   inst.desc.Appearance,
			spatial:      e.resolveSpatial(inst.desc.Spatial),
		}
		dc.pushSpatial = e.spatials.available(dc.spatial)

		if dc.pipeline, err = e.createPipeline(gd, dc, app); err != nil {
			return err
		}
		c.drawCommands[id] = dc
	}
	c.dirty = false
	core.LogDebug("collection %d finalized: %d draw commands", coll, len(c.drawCommands))
	return nil
}

func (e *Engine) resolveSpatial(id metadata.SpatialID) metadata.SpatialID {
	if id.IsValid() && e.spatials.available(id) {
		return id
	}
	return e.identity
}

// CollectionDrawCommandCount returns the number of compiled draw commands.
func (e *Engine) CollectionDrawCommandCount(coll metadata.CollectionID) (int, error) {
	if err := e.ready(); err != nil {
		return 0, err
	}
	c, err := e.collections.lookup(coll)
	if err != nil {
		return 0, err
	}
	return len(c.drawCommands), nil
}

// CollectionIsDirty reports whether instances were added since the last finalize.
func (e *Engine) CollectionIsDirty(coll metadata.CollectionID) (bool, error) {
	if err := e.ready(); err != nil {
		return false, err
	}
	c, err := e.collections.lookup(coll)
	if err != nil {
		return false, err
	}
	return c.dirty, nil
}

// CollectionDispose destroys every compiled pipeline and returns every
// instance id to its pool.
func (e *Engine) CollectionDispose(coll metadata.CollectionID) error {
	if err := e.ready(); err != nil {
		return err
	}
	c, err := e.collections.lookup(coll)
	if err != nil {
		return err
	}
	if len(c.drawCommands) > 0 {
		if err := e.backend.WaitIdle(); err != nil {
			return fatal("wait idle", err)
		}
	}
	for _, dc := range c.drawCommands {
		dc.pipeline.Destroy()
	}
	for _, id := range c.order {
		if err := e.instances.DestroyID(uint32(id)); err != nil {
			core.LogError("collection %d: %s", coll, err)
		}
	}
	clear(c.drawCommands)
	clear(c.instances)
	c.order = nil
	for _, v := range e.views.ids() {
		if view, ok := e.views.get(v); ok {
			delete(view.hidden, coll)
		}
	}
	e.collections.remove(coll)
	return nil
}
