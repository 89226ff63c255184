package renderer

import (
	"github.com/spaghettifunk/prism/engine/core"
	"github.com/spaghettifunk/prism/engine/renderer/gpu"
	"github.com/spaghettifunk/prism/engine/renderer/metadata"
)

// bufferPair is a persistently mapped staging buffer and its device-local
// destination. staging is nil once finalized.
type bufferPair struct {
	attrib  metadata.Attribute
	staging gpu.Buffer
	mapped  []byte
	device  gpu.Buffer
}

func (p *bufferPair) destroy() {
	if p.staging != nil {
		p.staging.Unmap()
		p.staging.Destroy()
		p.staging = nil
		p.mapped = nil
	}
	if p.device != nil {
		p.device.Destroy()
		p.device = nil
	}
}

type geometryData struct {
	numVertices uint32
	numIndices  uint32
	layout      metadata.AttributeLayout
	// vertex holds one pair when interleaved, else one per attribute in location order.
	vertex    []*bufferPair
	index     *bufferPair
	finalized bool
}

func (g *geometryData) pairs() []*bufferPair {
	if g.index == nil {
		return g.vertex
	}
	return append(append([]*bufferPair(nil), g.vertex...), g.index)
}

func (g *geometryData) vertexBuffers() []gpu.Buffer {
	bufs := make([]gpu.Buffer, len(g.vertex))
	for i, p := range g.vertex {
		bufs[i] = p.device
	}
	return bufs
}

func (g *geometryData) find(attrib metadata.Attribute) *bufferPair {
	if attrib == metadata.AttributeIndex {
		return g.index
	}
	for _, p := range g.vertex {
		if p.attrib == attrib {
			return p
		}
	}
	return nil
}

type geometry struct {
	info metadata.GeometryInfo
}

func (e *Engine) newBufferPair(attrib metadata.Attribute, size uint64, usage gpu.BufferUsage) (*bufferPair, error) {
	staging, err := e.backend.CreateBuffer(size, gpu.BufferUsageTransferSrc, true)
	if err != nil {
		return nil, fatal("create staging buffer", err)
	}
	mapped, err := staging.Map()
	if err != nil {
		staging.Destroy()
		return nil, fatal("map staging buffer", err)
	}
	device, err := e.backend.CreateBuffer(size, usage|gpu.BufferUsageTransferDst|gpu.BufferUsageTransferSrc, false)
	if err != nil {
		staging.Unmap()
		staging.Destroy()
		return nil, fatal("create device buffer", err)
	}
	return &bufferPair{attrib: attrib, staging: staging, mapped: mapped, device: device}, nil
}

// GeometryDataCreate allocates staging and device buffers for numVertices
// vertices of layout and, when numIndices > 0, for the indices.
func (e *Engine) GeometryDataCreate(numVertices, numIndices uint32, layout metadata.AttributeLayout) (metadata.GeometryDataID, error) {
	if err := e.ready(); err != nil {
		return metadata.InvalidGeometryData, err
	}
	if numVertices == 0 {
		return metadata.InvalidGeometryData, invalid("geometry data needs at least one vertex")
	}
	if !layout.Attributes.Has(metadata.AttributePosition) {
		return metadata.InvalidGeometryData, invalid("attribute layout must include positions")
	}

	gd := &geometryData{numVertices: numVertices, numIndices: numIndices, layout: layout}
	if layout.Interleaved {
		p, err := e.newBufferPair(metadata.AttributeNone, uint64(numVertices)*uint64(layout.Stride()), gpu.BufferUsageVertex)
		if err != nil {
			return metadata.InvalidGeometryData, err
		}
		gd.vertex = append(gd.vertex, p)
	} else {
		for _, a := range layout.Attributes.Attributes() {
			p, err := e.newBufferPair(a, uint64(numVertices)*uint64(a.Size()), gpu.BufferUsageVertex)
			if err != nil {
				return metadata.InvalidGeometryData, err
			}
			gd.vertex = append(gd.vertex, p)
		}
	}
	if numIndices > 0 {
		p, err := e.newBufferPair(metadata.AttributeIndex, uint64(numIndices)*metadata.IndexSize, gpu.BufferUsageIndex)
		if err != nil {
			return metadata.InvalidGeometryData, err
		}
		gd.index = p
	}
	return e.geometryData.insert(gd)
}

func (e *Engine) GeometryDataAvailable(id metadata.GeometryDataID) bool {
	return e.inited && e.geometryData.available(id)
}

func (e *Engine) stage(id metadata.GeometryDataID, attrib metadata.Attribute, offset uint32, data []byte) error {
	if err := e.ready(); err != nil {
		return err
	}
	gd, err := e.geometryData.lookup(id)
	if err != nil {
		return err
	}
	if gd.finalized {
		return invalid("geometry data %d is finalized", id)
	}
	p := gd.find(attrib)
	if p == nil {
		return invalid("geometry data %d has no %s buffer", id, attrib)
	}
	end := uint64(offset) + uint64(len(data))
	if end > uint64(len(p.mapped)) {
		return invalid("%s update [%d,%d) exceeds buffer of %d bytes", attrib, offset, end, len(p.mapped))
	}
	copy(p.mapped[offset:], data)
	return nil
}

// GeometryDataUpdateInterleavedVertices writes packed vertices. Only
// offset 0 is accepted.
func (e *Engine) GeometryDataUpdateInterleavedVertices(id metadata.GeometryDataID, offset uint32, data []byte) error {
	if offset != 0 {
		return invalid("interleaved vertex updates must start at offset 0, got %d", offset)
	}
	if gd, ok := e.geometryData.get(id); ok && !gd.layout.Interleaved {
		return invalid("geometry data %d is not interleaved", id)
	}
	return e.stage(id, metadata.AttributeNone, offset, data)
}

// GeometryDataUpdateVertices writes one attribute of a separate layout at
// byte offset.
func (e *Engine) GeometryDataUpdateVertices(id metadata.GeometryDataID, attrib metadata.Attribute, offset uint32, data []byte) error {
	if attrib == metadata.AttributeNone || attrib == metadata.AttributeIndex {
		return invalid("%s is not a vertex attribute", attrib)
	}
	return e.stage(id, attrib, offset, data)
}

// GeometryDataUpdateIndices writes little-endian uint32 indices at byte offset.
func (e *Engine) GeometryDataUpdateIndices(id metadata.GeometryDataID, offset uint32, data []byte) error {
	return e.stage(id, metadata.AttributeIndex, offset, data)
}

// GeometryDataFinalize copies every staging buffer to its device buffer in
// one blocking submission and releases the staging buffers.
func (e *Engine) GeometryDataFinalize(id metadata.GeometryDataID) error {
	if err := e.ready(); err != nil {
		return err
	}
	gd, err := e.geometryData.lookup(id)
	if err != nil {
		return err
	}
	if gd.finalized {
		return invalid("geometry data %d already finalized", id)
	}

	// Staging stays mapped until the upload succeeds.
	pairs := gd.pairs()
	cb, err := e.backend.BeginSingleTimeCommands()
	if err != nil {
		return fatal("begin geometry upload", err)
	}
	for _, p := range pairs {
		cb.CopyBuffer(p.staging, p.device, p.staging.Size())
	}
	if err := e.backend.EndSingleTimeCommands(cb); err != nil {
		return fatal("upload geometry data", err)
	}
	for _, p := range pairs {
		p.staging.Unmap()
		p.staging.Destroy()
		p.staging = nil
		p.mapped = nil
	}
	gd.finalized = true
	core.LogDebug("geometry data %d finalized (%d vertices, %d indices)", id, gd.numVertices, gd.numIndices)
	return nil
}

// GeometryDataReadback copies a device buffer back to host memory.
// attrib selects the buffer: AttributeNone for the interleaved buffer,
// AttributeIndex for indices.
func (e *Engine) GeometryDataReadback(id metadata.GeometryDataID, attrib metadata.Attribute) ([]byte, error) {
	if err := e.ready(); err != nil {
		return nil, err
	}
	gd, err := e.geometryData.lookup(id)
	if err != nil {
		return nil, err
	}
	if !gd.finalized {
		return nil, invalid("geometry data %d is not finalized", id)
	}
	p := gd.find(attrib)
	if p == nil {
		return nil, invalid("geometry data %d has no %s buffer", id, attrib)
	}

	size := p.device.Size()
	staging, err := e.backend.CreateBuffer(size, gpu.BufferUsageTransferDst, true)
	if err != nil {
		return nil, fatal("create readback buffer", err)
	}
	defer staging.Destroy()

	cb, err := e.backend.BeginSingleTimeCommands()
	if err != nil {
		return nil, fatal("begin readback", err)
	}
	cb.CopyBuffer(p.device, staging, size)
	if err := e.backend.EndSingleTimeCommands(cb); err != nil {
		return nil, fatal("read back geometry data", err)
	}
	mapped, err := staging.Map()
	if err != nil {
		return nil, fatal("map readback buffer", err)
	}
	out := append([]byte(nil), mapped...)
	staging.Unmap()
	return out, nil
}

func (e *Engine) GeometryDataDispose(id metadata.GeometryDataID) error {
	if err := e.ready(); err != nil {
		return err
	}
	gd, err := e.geometryData.lookup(id)
	if err != nil {
		return err
	}
	for _, p := range gd.pairs() {
		p.destroy()
	}
	gd.vertex = nil
	gd.index = nil
	e.geometryData.remove(id)
	return nil
}

func (e *Engine) GeometryCreate(info metadata.GeometryInfo) (metadata.GeometryID, error) {
	if err := e.ready(); err != nil {
		return metadata.InvalidGeometry, err
	}
	if info.Topology < metadata.TopologyTriangleList || info.Topology > metadata.TopologyPointList {
		return metadata.InvalidGeometry, invalid("unknown topology %d", info.Topology)
	}
	return e.geometries.insert(&geometry{info: info})
}

func (e *Engine) GeometryAvailable(id metadata.GeometryID) bool {
	return e.inited && e.geometries.available(id)
}

func (e *Engine) GeometryDispose(id metadata.GeometryID) error {
	if err := e.ready(); err != nil {
		return err
	}
	if _, ok := e.geometries.remove(id); !ok {
		_, err := e.geometries.lookup(id)
		return err
	}
	return nil
}
