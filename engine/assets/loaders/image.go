package loaders

import (
	"bytes"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"os"

	_ "golang.org/x/image/bmp"
	"golang.org/x/image/draw"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"

	"github.com/spaghettifunk/prism/engine/renderer/metadata"
)

// ImageLoader decodes PNG, JPEG, GIF, BMP, TIFF and WebP into RGBA8 pixels.
type ImageLoader struct{}

func (il *ImageLoader) Load(path string, assetType metadata.ResourceType, params interface{}) (*metadata.Resource, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	data, err := DecodeImage(f, imageParams(params))
	if err != nil {
		return nil, fmt.Errorf("failed to decode %s: %w", path, err)
	}
	return &metadata.Resource{
		Name:     "image",
		FullPath: path,
		DataSize: uint64(len(data.Pixels)),
		Data:     data,
	}, nil
}

func (il *ImageLoader) Unload(r *metadata.Resource) error {
	r.Data = nil
	return nil
}

// LoadMemory decodes an image that is already in memory.
func (il *ImageLoader) LoadMemory(encoded []byte, params interface{}) (*metadata.Resource, error) {
	data, err := DecodeImage(bytes.NewReader(encoded), imageParams(params))
	if err != nil {
		return nil, fmt.Errorf("failed to decode image: %w", err)
	}
	return &metadata.Resource{
		Name:     "image",
		DataSize: uint64(len(data.Pixels)),
		Data:     data,
	}, nil
}

func imageParams(params interface{}) *metadata.ImageResourceParams {
	if p, ok := params.(*metadata.ImageResourceParams); ok && p != nil {
		return p
	}
	return &metadata.ImageResourceParams{}
}

// DecodeImage converts any registered format to tightly packed RGBA8.
func DecodeImage(r io.Reader, params *metadata.ImageResourceParams) (*metadata.ImageResourceData, error) {
	src, _, err := image.Decode(r)
	if err != nil {
		return nil, err
	}
	b := src.Bounds()
	rgba := image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(rgba, rgba.Bounds(), src, b.Min, draw.Src)

	if params.FlipY {
		flipRows(rgba.Pix, rgba.Stride, b.Dy())
	}
	return &metadata.ImageResourceData{
		ChannelCount: 4,
		Width:        uint32(b.Dx()),
		Height:       uint32(b.Dy()),
		Pixels:       rgba.Pix,
	}, nil
}

func flipRows(pix []uint8, stride, rows int) {
	tmp := make([]uint8, stride)
	for top, bottom := 0, rows-1; top < bottom; top, bottom = top+1, bottom-1 {
		t := pix[top*stride : (top+1)*stride]
		b := pix[bottom*stride : (bottom+1)*stride]
		copy(tmp, t)
		copy(t, b)
		copy(b, tmp)
	}
}
