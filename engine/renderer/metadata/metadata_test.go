package metadata

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHandleValidity(t *testing.T) {
	assert.False(t, InvalidGeometryData.IsValid())
	assert.False(t, InstanceID(InvalidID).IsValid())
	assert.True(t, TextureID(0).IsValid())
}

func TestAttributeLayoutStride(t *testing.T) {
	l := AttributeLayout{
		Attributes:  AttributeMask(AttributePosition | AttributeColor | AttributeTexCoord),
		Interleaved: true,
	}
	assert.Equal(t, uint32(12+16+12), l.Stride())
	assert.Equal(t, uint32(0), l.Offset(AttributePosition))
	assert.Equal(t, uint32(12), l.Offset(AttributeColor))
	assert.Equal(t, uint32(28), l.Offset(AttributeTexCoord))
	assert.Equal(t, InvalidID, l.Offset(AttributeNormal))
	assert.Equal(t, []Attribute{AttributePosition, AttributeColor, AttributeTexCoord}, l.Attributes.Attributes())
	assert.False(t, l.Attributes.Has(AttributeNone))
}

func TestShaderTemplateNames(t *testing.T) {
	for _, tmpl := range ShaderTemplates {
		got, ok := ShaderTemplateByName(tmpl.Name())
		assert.True(t, ok)
		assert.Equal(t, tmpl, got)
	}
	_, ok := ShaderTemplateByName("pbr")
	assert.False(t, ok)
	assert.True(t, ShaderTemplateVolumeSlice.NeedsTexture())
	assert.False(t, ShaderTemplateSimpleLit.NeedsTexture())
}

func TestTextureInfoSizes(t *testing.T) {
	info := TextureInfo{TextureType: TextureType3d, Format: TexelFormatInt16, Width: 4, Height: 4, Depth: 10, ChannelCount: 1}
	assert.Equal(t, uint32(2), info.TexelSize())
	assert.Equal(t, uint64(320), info.ByteSize())
}
