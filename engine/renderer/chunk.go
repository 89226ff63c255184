package renderer

import (
	"fmt"

	"github.com/spaghettifunk/prism/engine/core"
	"github.com/spaghettifunk/prism/engine/math"
	"github.com/spaghettifunk/prism/engine/renderer/gpu"
)

// UploadChunk is a run of Count slices starting at slice Offset.
type UploadChunk struct {
	Offset uint32
	Count  uint32
}

// ChunkPlan splits an image upload along its outermost non-unit axis
// (2 = Z, 1 = Y, 0 = X) so no chunk exceeds the allocation cap.
type ChunkPlan struct {
	Axis       int
	SliceBytes uint64
	Chunks     []UploadChunk
}

// MaxChunkBytes is the staging size needed for the largest chunk.
func (p ChunkPlan) MaxChunkBytes() uint64 {
	var max uint32
	for _, c := range p.Chunks {
		if c.Count > max {
			max = c.Count
		}
	}
	return uint64(max) * p.SliceBytes
}

// Region returns the copy region of chunk c.
func (p ChunkPlan) Region(extent gpu.Extent3D, c UploadChunk) gpu.BufferImageCopy {
	r := gpu.BufferImageCopy{Extent: extent}
	switch p.Axis {
	case 2:
		r.Offset.Z = int32(c.Offset)
		r.Extent.Depth = c.Count
	case 1:
		r.Offset.Y = int32(c.Offset)
		r.Extent.Height = c.Count
	default:
		r.Offset.X = int32(c.Offset)
		r.Extent.Width = c.Count
	}
	return r
}

// PlanUploadChunks returns equal chunks of as many slices as fit in
// maxBytes; the last chunk takes the remainder. A single slice larger than
// maxBytes cannot be uploaded.
func PlanUploadChunks(extent gpu.Extent3D, texelSize uint32, maxBytes uint64) (ChunkPlan, error) {
	plan := ChunkPlan{}
	var slices uint32
	switch {
	case extent.Depth > 1:
		plan.Axis = 2
		slices = extent.Depth
		plan.SliceBytes = uint64(extent.Width) * uint64(extent.Height) * uint64(texelSize)
	case extent.Height > 1:
		plan.Axis = 1
		slices = extent.Height
		plan.SliceBytes = uint64(extent.Width) * uint64(texelSize)
	default:
		plan.Axis = 0
		slices = extent.Width
		plan.SliceBytes = uint64(texelSize)
	}
	if slices == 0 || plan.SliceBytes == 0 {
		return plan, fmt.Errorf("%w: empty image extent", core.ErrInvalidArgument)
	}

	total := plan.SliceBytes * uint64(slices)
	if total <= maxBytes {
		plan.Chunks = []UploadChunk{{Offset: 0, Count: slices}}
		return plan, nil
	}
	perChunk := maxBytes / plan.SliceBytes
	if perChunk == 0 {
		return plan, fmt.Errorf("%w: a single slice of %d bytes exceeds the allocation cap of %d bytes", core.ErrUnsupported, plan.SliceBytes, maxBytes)
	}
	n := math.DivCeil(uint64(slices), perChunk)
	plan.Chunks = make([]UploadChunk, 0, n)
	for off := uint64(0); off < uint64(slices); off += perChunk {
		count := math.Clamp(uint64(slices)-off, 0, perChunk)
		plan.Chunks = append(plan.Chunks, UploadChunk{Offset: uint32(off), Count: uint32(count)})
	}
	return plan, nil
}
