package vulkan

import (
	"encoding/binary"
	"testing"

	vk "github.com/goki/vulkan"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spaghettifunk/prism/engine/renderer/gpu"
)

func TestShaderModuleCreateInfo(t *testing.T) {
	code := make([]byte, 8)
	binary.LittleEndian.PutUint32(code, 0x07230203)
	binary.LittleEndian.PutUint32(code[4:], 0x00010000)

	info, err := shaderModuleCreateInfo(code)
	require.NoError(t, err)
	assert.Equal(t, vk.StructureTypeShaderModuleCreateInfo, info.SType)
	assert.Equal(t, uint64(8), info.CodeSize)
	// words are host order, which is little-endian on every supported target
	assert.Equal(t, []uint32{0x07230203, 0x00010000}, info.PCode)

	_, err = shaderModuleCreateInfo(code[:6])
	assert.Error(t, err)
	_, err = shaderModuleCreateInfo(nil)
	assert.Error(t, err)
}

func TestFormatTableRoundTrip(t *testing.T) {
	for f, v := range formats {
		assert.Equal(t, v, vkFormat(f))
		assert.Equal(t, f, gpuFormat(v))
	}
	assert.Equal(t, vk.FormatUndefined, vkFormat(gpu.FormatUndefined))
}

func TestCString(t *testing.T) {
	assert.Equal(t, "VK_LAYER", cString([]byte{'V', 'K', '_', 'L', 'A', 'Y', 'E', 'R', 0, 'x'}))
	assert.Equal(t, "abc", cString([]byte("abc")))
	assert.Equal(t, "main\x00", VulkanSafeString("main"))
}
