package renderer

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spaghettifunk/prism/engine/core"
	"github.com/spaghettifunk/prism/engine/renderer/gpu"
	"github.com/spaghettifunk/prism/engine/renderer/headless"
	"github.com/spaghettifunk/prism/engine/renderer/metadata"
)

func TestPlanUploadChunks(t *testing.T) {
	tests := []struct {
		name     string
		extent   gpu.Extent3D
		texel    uint32
		max      uint64
		axis     int
		expected []UploadChunk
	}{
		{
			name:     "fits",
			extent:   gpu.Extent3D{Width: 4, Height: 4, Depth: 4},
			texel:    1,
			max:      64,
			axis:     2,
			expected: []UploadChunk{{0, 4}},
		},
		{
			name:     "volume split along z",
			extent:   gpu.Extent3D{Width: 4, Height: 4, Depth: 10},
			texel:    2,
			max:      100,
			axis:     2,
			expected: []UploadChunk{{0, 3}, {3, 3}, {6, 3}, {9, 1}},
		},
		{
			name:     "2d split along y",
			extent:   gpu.Extent3D{Width: 8, Height: 5, Depth: 1},
			texel:    4,
			max:      64,
			axis:     1,
			expected: []UploadChunk{{0, 2}, {2, 2}, {4, 1}},
		},
		{
			name:     "1d split along x",
			extent:   gpu.Extent3D{Width: 10, Height: 1, Depth: 1},
			texel:    4,
			max:      16,
			axis:     0,
			expected: []UploadChunk{{0, 4}, {4, 4}, {8, 2}},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			plan, err := PlanUploadChunks(tt.extent, tt.texel, tt.max)
			require.NoError(t, err)
			assert.Equal(t, tt.axis, plan.Axis)
			assert.Equal(t, tt.expected, plan.Chunks)
			assert.LessOrEqual(t, plan.MaxChunkBytes(), tt.max)

			// chunks tile the axis exactly once
			var next uint32
			for _, c := range plan.Chunks {
				assert.Equal(t, next, c.Offset)
				next += c.Count
			}
			switch plan.Axis {
			case 2:
				assert.Equal(t, tt.extent.Depth, next)
			case 1:
				assert.Equal(t, tt.extent.Height, next)
			default:
				assert.Equal(t, tt.extent.Width, next)
			}
		})
	}
}

func TestPlanUploadChunksSliceTooLarge(t *testing.T) {
	_, err := PlanUploadChunks(gpu.Extent3D{Width: 16, Height: 16, Depth: 2}, 4, 512)
	assert.ErrorIs(t, err, core.ErrUnsupported)
}

func imageBytes(t *testing.T, e *Engine, id metadata.TextureID) []byte {
	t.Helper()
	tex, ok := e.textures.get(id)
	require.True(t, ok)
	img := tex.image.(*headless.Image)
	assert.Equal(t, gpu.ImageLayoutShaderReadOnly, img.Layout())
	return img.Bytes()
}

func TestVolumeTextureChunkedUpload(t *testing.T) {
	cfg := testConfig(t)
	// 8x8 slices of uint16 are 128 bytes: three slices per chunk
	cfg.MaxAllocationSize = 400
	e, b := newTestEngine(t, cfg)

	info := metadata.TextureInfo{
		TextureType:  metadata.TextureType3d,
		Format:       metadata.TexelFormatUint16,
		Width:        8,
		Height:       8,
		Depth:        7,
		ChannelCount: 1,
	}
	pixels := make([]byte, info.ByteSize())
	for i := range pixels {
		pixels[i] = byte(i * 7)
	}

	before := b.Stats().SingleTimeSubmits
	id, err := e.TextureCreate(info, pixels)
	require.NoError(t, err)
	assert.Equal(t, before+3, b.Stats().SingleTimeSubmits)

	tex, _ := e.textures.get(id)
	assert.Equal(t, 3, tex.chunks)
	assert.Equal(t, pixels, imageBytes(t, e, id))

	got, ok := e.TextureGetInfo(id)
	require.True(t, ok)
	assert.Equal(t, info, got)
}

func TestTextureCreateContract(t *testing.T) {
	e, _ := newTestEngine(t, nil)
	info := metadata.TextureInfo{TextureType: metadata.TextureType2d, Width: 2, Height: 2, ChannelCount: 4}

	_, err := e.TextureCreate(info, make([]byte, 15))
	assert.ErrorIs(t, err, core.ErrInvalidArgument)

	info.ChannelCount = 3
	_, err = e.TextureCreate(info, make([]byte, 12))
	assert.ErrorIs(t, err, core.ErrUnsupported)

	info.Width = 0
	_, err = e.TextureCreate(info, nil)
	assert.ErrorIs(t, err, core.ErrInvalidArgument)
}

func encodePNG(t *testing.T) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 2, 2))
	img.Set(0, 0, color.RGBA{255, 0, 0, 255})
	img.Set(1, 0, color.RGBA{0, 255, 0, 255})
	img.Set(0, 1, color.RGBA{0, 0, 255, 255})
	img.Set(1, 1, color.RGBA{255, 255, 255, 255})
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func TestTextureFromEncodedImage(t *testing.T) {
	e, _ := newTestEngine(t, nil)
	encoded := encodePNG(t)

	id, err := e.TextureCreateFromMemory(encoded, metadata.TextureLoadOptions{})
	require.NoError(t, err)
	assert.Equal(t, []byte{
		255, 0, 0, 255, 0, 255, 0, 255,
		0, 0, 255, 255, 255, 255, 255, 255,
	}, imageBytes(t, e, id))

	path := filepath.Join(t.TempDir(), "tex.png")
	require.NoError(t, os.WriteFile(path, encoded, 0o644))
	flipped, err := e.TextureCreateFromFile(path, metadata.TextureLoadOptions{FlipY: true, Nearest: true})
	require.NoError(t, err)
	assert.Equal(t, []byte{
		0, 0, 255, 255, 255, 255, 255, 255,
		255, 0, 0, 255, 0, 255, 0, 255,
	}, imageBytes(t, e, flipped))

	info, ok := e.TextureGetInfo(flipped)
	require.True(t, ok)
	assert.True(t, info.Nearest)
	assert.Equal(t, uint8(4), info.ChannelCount)

	_, err = e.TextureCreateFromMemory([]byte("not an image"), metadata.TextureLoadOptions{})
	assert.Error(t, err)
}

func TestTextureDisposeRefusedWhileSampled(t *testing.T) {
	e, _ := newTestEngine(t, nil)
	tex, err := e.TextureCreate(metadata.TextureInfo{TextureType: metadata.TextureType2d, Width: 1, Height: 1, ChannelCount: 4}, make([]byte, 4))
	require.NoError(t, err)
	app, err := e.AppearanceCreate(metadata.AppearanceInfo{Template: metadata.ShaderTemplateSimpleTextured, Texture: tex})
	require.NoError(t, err)

	assert.ErrorIs(t, e.TextureDispose(tex), core.ErrInvalidArgument)
	assert.True(t, e.TextureAvailable(tex))

	require.NoError(t, e.AppearanceDispose(app))
	require.NoError(t, e.TextureDispose(tex))
	assert.False(t, e.TextureAvailable(tex))
}
