package loaders

import (
	"bytes"
	"encoding/binary"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spaghettifunk/prism/engine/renderer/metadata"
)

func spirv(words ...uint32) []byte {
	b := make([]byte, 4*(len(words)+1))
	binary.LittleEndian.PutUint32(b, SPIRVMagic)
	for i, w := range words {
		binary.LittleEndian.PutUint32(b[4*(i+1):], w)
	}
	return b
}

func TestShaderLoader(t *testing.T) {
	dir := t.TempDir()
	good := filepath.Join(dir, StageFileName("passthrough", "vert"))
	require.NoError(t, os.WriteFile(good, spirv(0x00010000), 0o644))
	bad := filepath.Join(dir, "broken_frag.spv")
	require.NoError(t, os.WriteFile(bad, []byte{1, 2, 3, 4, 5, 6, 7, 8}, 0o644))

	l := &ShaderLoader{}
	res, err := l.Load(good, metadata.ResourceTypeShader, nil)
	require.NoError(t, err)
	assert.Equal(t, "passthrough_vert", res.Name)
	assert.Equal(t, uint64(8), res.DataSize)

	_, err = l.Load(bad, metadata.ResourceTypeShader, nil)
	assert.Error(t, err)
	_, err = l.Load(filepath.Join(dir, "missing.spv"), metadata.ResourceTypeShader, nil)
	assert.Error(t, err)
}

func TestBinaryLoader(t *testing.T) {
	path := filepath.Join(t.TempDir(), "words.bin")
	require.NoError(t, os.WriteFile(path, []byte{1, 0, 0, 0, 0, 1, 0, 0}, 0o644))

	res, err := (&BinaryLoader{}).Load(path, metadata.ResourceTypeBinary, map[string]string{"name": "words"})
	require.NoError(t, err)
	assert.Equal(t, "words", res.Name)
	assert.Equal(t, []uint32{1, 256}, res.Data.([]uint32))
}

func encodePNG(t *testing.T) []byte {
	t.Helper()
	img := image.NewNRGBA(image.Rect(0, 0, 2, 2))
	img.Set(0, 0, color.NRGBA{R: 255, A: 255})
	img.Set(1, 0, color.NRGBA{G: 255, A: 255})
	img.Set(0, 1, color.NRGBA{B: 255, A: 255})
	img.Set(1, 1, color.NRGBA{R: 255, G: 255, B: 255, A: 255})
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func TestImageLoaderDecodes(t *testing.T) {
	encoded := encodePNG(t)
	path := filepath.Join(t.TempDir(), "quad.png")
	require.NoError(t, os.WriteFile(path, encoded, 0o644))

	res, err := (&ImageLoader{}).Load(path, metadata.ResourceTypeImage, nil)
	require.NoError(t, err)
	data := res.Data.(*metadata.ImageResourceData)
	assert.Equal(t, uint32(2), data.Width)
	assert.Equal(t, uint32(2), data.Height)
	assert.Equal(t, uint8(4), data.ChannelCount)
	assert.Equal(t, []uint8{255, 0, 0, 255}, data.Pixels[0:4])
	assert.Equal(t, []uint8{0, 0, 255, 255}, data.Pixels[8:12])
}

func TestImageLoaderFlipFromMemory(t *testing.T) {
	res, err := (&ImageLoader{}).LoadMemory(encodePNG(t), &metadata.ImageResourceParams{FlipY: true})
	require.NoError(t, err)
	data := res.Data.(*metadata.ImageResourceData)
	// the bottom-left blue texel is now first
	assert.Equal(t, []uint8{0, 0, 255, 255}, data.Pixels[0:4])
	assert.Equal(t, []uint8{255, 0, 0, 255}, data.Pixels[8:12])

	_, err = (&ImageLoader{}).LoadMemory([]byte("not an image"), nil)
	assert.Error(t, err)
}
