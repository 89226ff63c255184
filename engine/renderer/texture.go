package renderer

import (
	"github.com/spaghettifunk/prism/engine/core"
	"github.com/spaghettifunk/prism/engine/renderer/gpu"
	"github.com/spaghettifunk/prism/engine/renderer/metadata"
)

type texture struct {
	info   metadata.TextureInfo
	image  gpu.Image
	chunks int
	// pixels is the decoded host copy for textures loaded from encoded images.
	pixels []byte
}

func normalizeTextureInfo(info *metadata.TextureInfo) {
	switch info.TextureType {
	case metadata.TextureType1d:
		info.Height, info.Depth = 1, 1
	case metadata.TextureType2d:
		info.Depth = 1
	}
}

// TextureCreate uploads raw texels. len(pixels) must equal the image size
// implied by info.
func (e *Engine) TextureCreate(info metadata.TextureInfo, pixels []byte) (metadata.TextureID, error) {
	if err := e.ready(); err != nil {
		return metadata.InvalidTexture, err
	}
	normalizeTextureInfo(&info)
	if info.Width == 0 || info.Height == 0 || info.Depth == 0 {
		return metadata.InvalidTexture, invalid("texture extent %dx%dx%d has a zero dimension", info.Width, info.Height, info.Depth)
	}
	if uint64(len(pixels)) != info.ByteSize() {
		return metadata.InvalidTexture, invalid("texture expects %d bytes of pixels, got %d", info.ByteSize(), len(pixels))
	}
	return e.createTexture(info, pixels, nil)
}

// TextureCreateFromFile decodes an image file into an RGBA8 2D texture.
func (e *Engine) TextureCreateFromFile(path string, opts metadata.TextureLoadOptions) (metadata.TextureID, error) {
	if err := e.ready(); err != nil {
		return metadata.InvalidTexture, err
	}
	res, err := e.assets.LoadAsset(path, metadata.ResourceTypeImage, &metadata.ImageResourceParams{FlipY: opts.FlipY})
	if err != nil {
		core.LogError("failed to load texture %s: %s", path, err)
		return metadata.InvalidTexture, err
	}
	defer e.unloadAsset(res)
	return e.createDecodedTexture(res.Data.(*metadata.ImageResourceData), opts)
}

// TextureCreateFromMemory decodes an encoded image held in memory.
func (e *Engine) TextureCreateFromMemory(encoded []byte, opts metadata.TextureLoadOptions) (metadata.TextureID, error) {
	if err := e.ready(); err != nil {
		return metadata.InvalidTexture, err
	}
	res, err := e.assets.LoadImageMemory(encoded, &metadata.ImageResourceParams{FlipY: opts.FlipY})
	if err != nil {
		core.LogError("failed to decode texture: %s", err)
		return metadata.InvalidTexture, err
	}
	defer e.unloadAsset(res)
	return e.createDecodedTexture(res.Data.(*metadata.ImageResourceData), opts)
}

// unloadAsset drops decoded pixels once they live in the texture.
func (e *Engine) unloadAsset(res *metadata.Resource) {
	if err := e.assets.UnloadAsset(res); err != nil {
		core.LogWarn("failed to unload %s: %s", res.FullPath, err)
	}
}

func (e *Engine) createDecodedTexture(img *metadata.ImageResourceData, opts metadata.TextureLoadOptions) (metadata.TextureID, error) {
	info := metadata.TextureInfo{
		TextureType:  metadata.TextureType2d,
		Format:       metadata.TexelFormatUint8,
		Width:        img.Width,
		Height:       img.Height,
		Depth:        1,
		ChannelCount: img.ChannelCount,
		Nearest:      opts.Nearest,
	}
	return e.createTexture(info, img.Pixels, img.Pixels)
}

func (e *Engine) createTexture(info metadata.TextureInfo, pixels, hostCopy []byte) (metadata.TextureID, error) {
	format, err := textureFormat(info.Format, info.ChannelCount)
	if err != nil {
		core.LogError(err.Error())
		return metadata.InvalidTexture, err
	}
	kind, err := imageType(info.TextureType)
	if err != nil {
		core.LogError(err.Error())
		return metadata.InvalidTexture, err
	}
	filter := gpu.FilterLinear
	if info.Nearest {
		filter = gpu.FilterNearest
	}
	extent := gpu.Extent3D{Width: info.Width, Height: info.Height, Depth: info.Depth}
	image, err := e.backend.CreateImage(&gpu.ImageDesc{
		Type:    kind,
		Format:  format,
		Extent:  extent,
		Usage:   gpu.ImageUsageSampled | gpu.ImageUsageTransferDst,
		Sampler: true,
		Filter:  filter,
	})
	if err != nil {
		return metadata.InvalidTexture, fatal("create texture image", err)
	}

	chunks, err := e.uploadImage(image, extent, format.TexelSize(), pixels)
	if err != nil {
		return metadata.InvalidTexture, err
	}
	t := &texture{info: info, image: image, chunks: chunks, pixels: hostCopy}
	id, err := e.textures.insert(t)
	if err != nil {
		return metadata.InvalidTexture, err
	}
	core.LogDebug("texture %d created: %s %dx%dx%d in %d chunk(s)", id, info.TextureType, info.Width, info.Height, info.Depth, chunks)
	return id, nil
}

// uploadImage copies pixels through one reused staging buffer, one
// blocking submission per chunk, and leaves the image shader-readable.
func (e *Engine) uploadImage(image gpu.Image, extent gpu.Extent3D, texelSize uint32, pixels []byte) (int, error) {
	plan, err := PlanUploadChunks(extent, texelSize, e.backend.Limits().MaxAllocationSize)
	if err != nil {
		core.LogError(err.Error())
		return 0, err
	}
	staging, err := e.backend.CreateBuffer(plan.MaxChunkBytes(), gpu.BufferUsageTransferSrc, true)
	if err != nil {
		return 0, fatal("create texture staging buffer", err)
	}
	defer staging.Destroy()
	mapped, err := staging.Map()
	if err != nil {
		return 0, fatal("map texture staging buffer", err)
	}
	defer staging.Unmap()

	for i, c := range plan.Chunks {
		start := uint64(c.Offset) * plan.SliceBytes
		end := start + uint64(c.Count)*plan.SliceBytes
		copy(mapped, pixels[start:end])

		cb, err := e.backend.BeginSingleTimeCommands()
		if err != nil {
			return 0, fatal("begin texture upload", err)
		}
		from := gpu.ImageLayoutShaderReadOnly
		if i == 0 {
			from = gpu.ImageLayoutUndefined
		}
		region := plan.Region(extent, c)
		cb.TransitionImage(image, from, gpu.ImageLayoutTransferDst)
		cb.CopyBufferToImage(staging, image, &region)
		cb.TransitionImage(image, gpu.ImageLayoutTransferDst, gpu.ImageLayoutShaderReadOnly)
		if err := e.backend.EndSingleTimeCommands(cb); err != nil {
			return 0, fatal("upload texture chunk", err)
		}
	}
	return len(plan.Chunks), nil
}

func (e *Engine) TextureAvailable(id metadata.TextureID) bool {
	return e.inited && e.textures.available(id)
}

// TextureGetInfo returns the descriptor of a live texture.
func (e *Engine) TextureGetInfo(id metadata.TextureID) (metadata.TextureInfo, bool) {
	if !e.inited {
		return metadata.TextureInfo{}, false
	}
	t, ok := e.textures.get(id)
	if !ok {
		return metadata.TextureInfo{}, false
	}
	return t.info, true
}

// TextureDispose frees the texture. It fails while an appearance still
// samples it; dispose those appearances first.
func (e *Engine) TextureDispose(id metadata.TextureID) error {
	if err := e.ready(); err != nil {
		return err
	}
	t, err := e.textures.lookup(id)
	if err != nil {
		return err
	}
	for _, appID := range e.appearances.ids() {
		a, _ := e.appearances.get(appID)
		if a.info.Template.NeedsTexture() && a.info.Texture == id {
			return invalid("texture %d is still used by appearance %d", id, appID)
		}
	}
	t.image.Destroy()
	t.image = nil
	t.pixels = nil
	e.textures.remove(id)
	return nil
}
