package renderer

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spaghettifunk/prism/engine/core"
	"github.com/spaghettifunk/prism/engine/math"
	"github.com/spaghettifunk/prism/engine/renderer/metadata"
)

func TestGeometryInterleavedRoundTrip(t *testing.T) {
	e, b := newTestEngine(t, nil)
	q := newQuad(t, e)

	vertices, err := e.GeometryDataReadback(q.data, metadata.AttributeNone)
	require.NoError(t, err)
	assert.Equal(t, math.Float32Bytes(quadVertices), vertices)

	indices, err := e.GeometryDataReadback(q.data, metadata.AttributeIndex)
	require.NoError(t, err)
	assert.Equal(t, math.Uint32Bytes(quadIndices), indices)

	// one device buffer for vertices, one for indices
	assert.Equal(t, 2, b.Stats().BuffersLive)
}

func TestGeometrySeparateRoundTrip(t *testing.T) {
	e, _ := newTestEngine(t, nil)
	layout := metadata.AttributeLayout{
		Attributes: metadata.AttributeMask(metadata.AttributePosition | metadata.AttributeNormal),
	}
	gd, err := e.GeometryDataCreate(3, 0, layout)
	require.NoError(t, err)

	positions := math.Float32Bytes([]float32{0, 0, 0, 1, 0, 0, 0, 1, 0})
	normals := math.Float32Bytes([]float32{0, 0, 1, 0, 0, 1, 0, 0, 1})
	require.NoError(t, e.GeometryDataUpdateVertices(gd, metadata.AttributePosition, 0, positions[:12]))
	require.NoError(t, e.GeometryDataUpdateVertices(gd, metadata.AttributePosition, 12, positions[12:]))
	require.NoError(t, e.GeometryDataUpdateVertices(gd, metadata.AttributeNormal, 0, normals))

	assert.ErrorIs(t, e.GeometryDataUpdateVertices(gd, metadata.AttributeColor, 0, normals), core.ErrInvalidArgument)
	assert.ErrorIs(t, e.GeometryDataUpdateVertices(gd, metadata.AttributeNormal, 4, normals), core.ErrInvalidArgument)
	assert.ErrorIs(t, e.GeometryDataUpdateInterleavedVertices(gd, 0, positions), core.ErrInvalidArgument)
	assert.ErrorIs(t, e.GeometryDataUpdateIndices(gd, 0, make([]byte, 4)), core.ErrInvalidArgument)

	require.NoError(t, e.GeometryDataFinalize(gd))

	got, err := e.GeometryDataReadback(gd, metadata.AttributePosition)
	require.NoError(t, err)
	assert.Equal(t, positions, got)
	got, err = e.GeometryDataReadback(gd, metadata.AttributeNormal)
	require.NoError(t, err)
	assert.Equal(t, normals, got)
}

func TestGeometryDataContract(t *testing.T) {
	e, _ := newTestEngine(t, nil)
	position := metadata.AttributeLayout{Attributes: metadata.AttributeMask(metadata.AttributePosition), Interleaved: true}

	_, err := e.GeometryDataCreate(0, 0, position)
	assert.ErrorIs(t, err, core.ErrInvalidArgument)
	_, err = e.GeometryDataCreate(3, 0, metadata.AttributeLayout{Attributes: metadata.AttributeMask(metadata.AttributeColor)})
	assert.ErrorIs(t, err, core.ErrInvalidArgument)

	gd, err := e.GeometryDataCreate(3, 3, position)
	require.NoError(t, err)
	assert.ErrorIs(t, e.GeometryDataUpdateInterleavedVertices(gd, 12, make([]byte, 12)), core.ErrInvalidArgument)
	assert.ErrorIs(t, e.GeometryDataUpdateInterleavedVertices(gd, 0, make([]byte, 40)), core.ErrInvalidArgument)

	_, err = e.GeometryDataReadback(gd, metadata.AttributeNone)
	assert.ErrorIs(t, err, core.ErrInvalidArgument)

	require.NoError(t, e.GeometryDataFinalize(gd))
	assert.ErrorIs(t, e.GeometryDataFinalize(gd), core.ErrInvalidArgument)
	assert.ErrorIs(t, e.GeometryDataUpdateIndices(gd, 0, make([]byte, 12)), core.ErrInvalidArgument)

	_, err = e.GeometryCreate(metadata.GeometryInfo{Topology: metadata.PrimitiveTopology(42)})
	assert.ErrorIs(t, err, core.ErrInvalidArgument)
}

func TestGeometryFinalizeUsesOneSubmission(t *testing.T) {
	e, b := newTestEngine(t, nil)
	layout := metadata.AttributeLayout{
		Attributes: metadata.AttributeMask(metadata.AttributePosition | metadata.AttributeColor | metadata.AttributeTexCoord),
	}
	gd, err := e.GeometryDataCreate(4, 6, layout)
	require.NoError(t, err)
	// four staging/device pairs
	assert.Equal(t, 8, b.Stats().BuffersLive)

	before := b.Stats().SingleTimeSubmits
	require.NoError(t, e.GeometryDataFinalize(gd))
	assert.Equal(t, before+1, b.Stats().SingleTimeSubmits)
	assert.Equal(t, 4, b.Stats().BuffersLive)
}

func TestGeometryFinalizeFailureKeepsStaging(t *testing.T) {
	e, b := newTestEngine(t, nil)
	layout := metadata.AttributeLayout{Attributes: metadata.AttributeMask(metadata.AttributePosition), Interleaved: true}
	gd, err := e.GeometryDataCreate(3, 0, layout)
	require.NoError(t, err)
	require.NoError(t, e.GeometryDataUpdateInterleavedVertices(gd, 0, math.Float32Bytes([]float32{0, 0, 0, 1, 0, 0, 0, 1, 0})))

	lost := errors.New("device lost")
	b.FailNextSingleTimeSubmit(lost)
	assert.ErrorIs(t, e.GeometryDataFinalize(gd), lost)

	// still staged: further updates and a second finalize work
	vertices := math.Float32Bytes([]float32{1, 1, 1, 2, 2, 2, 3, 3, 3})
	require.NoError(t, e.GeometryDataUpdateInterleavedVertices(gd, 0, vertices))
	require.NoError(t, e.GeometryDataFinalize(gd))

	got, err := e.GeometryDataReadback(gd, metadata.AttributeNone)
	require.NoError(t, err)
	assert.Equal(t, vertices, got)
}
