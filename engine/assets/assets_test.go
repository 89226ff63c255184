package assets

import (
	"encoding/binary"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spaghettifunk/prism/engine/assets/loaders"
	"github.com/spaghettifunk/prism/engine/renderer/metadata"
)

func writeTemplate(t *testing.T, dir, name string, marker uint32) {
	t.Helper()
	code := make([]byte, 8)
	binary.LittleEndian.PutUint32(code, loaders.SPIRVMagic)
	binary.LittleEndian.PutUint32(code[4:], marker)
	for _, stage := range []string{"vert", "frag"} {
		require.NoError(t, os.WriteFile(filepath.Join(dir, loaders.StageFileName(name, stage)), code, 0o644))
	}
}

func TestLoadShaderTemplate(t *testing.T) {
	dir := t.TempDir()
	writeTemplate(t, dir, "simple_lit", 7)

	am := NewAssetManager(dir)
	require.NoError(t, am.Initialize(false))
	defer am.Shutdown()

	assert.True(t, am.Indexed(filepath.Join(dir, "simple_lit_vert.spv")))

	vert, frag, err := am.LoadShaderTemplate("simple_lit")
	require.NoError(t, err)
	assert.Len(t, vert, 8)
	assert.Equal(t, vert, frag)

	_, _, err = am.LoadShaderTemplate("volume_slice")
	assert.Error(t, err)
}

func TestInitializeMissingDir(t *testing.T) {
	am := NewAssetManager(filepath.Join(t.TempDir(), "nope"))
	assert.Error(t, am.Initialize(false))
}

func TestWatcherReportsChangedTemplates(t *testing.T) {
	dir := t.TempDir()
	writeTemplate(t, dir, "passthrough", 1)

	am := NewAssetManager(dir)
	require.NoError(t, am.Initialize(true))
	defer am.Shutdown()
	assert.Empty(t, am.ChangedShaderTemplates())

	writeTemplate(t, dir, "passthrough", 2)

	var changed []string
	assert.Eventually(t, func() bool {
		changed = append(changed, am.ChangedShaderTemplates()...)
		return len(changed) > 0
	}, 2*time.Second, 10*time.Millisecond)
	assert.Contains(t, changed, "passthrough")
}

func TestTemplateName(t *testing.T) {
	name, ok := templateName("/x/volume_slice_frag.spv")
	assert.True(t, ok)
	assert.Equal(t, "volume_slice", name)
	_, ok = templateName("/x/readme.spv")
	assert.False(t, ok)
}

func TestUnloadAsset(t *testing.T) {
	dir := t.TempDir()
	writeTemplate(t, dir, "passthrough", 1)
	am := NewAssetManager(dir)
	require.NoError(t, am.Initialize(false))
	defer am.Shutdown()

	raw := filepath.Join(t.TempDir(), "volume.raw")
	require.NoError(t, os.WriteFile(raw, make([]byte, 16), 0o644))
	res, err := am.LoadAsset(raw, metadata.ResourceTypeBinary, nil)
	require.NoError(t, err)
	assert.Equal(t, metadata.ResourceTypeBinary, res.Type)
	assert.True(t, am.Indexed(raw))

	require.NoError(t, am.UnloadAsset(res))
	assert.Nil(t, res.Data)
	assert.False(t, am.Indexed(raw))

	// watched shader binaries stay indexed
	spv := filepath.Join(dir, loaders.StageFileName("passthrough", "vert"))
	res, err = am.LoadAsset(spv, metadata.ResourceTypeShader, nil)
	require.NoError(t, err)
	require.NoError(t, am.UnloadAsset(res))
	assert.True(t, am.Indexed(spv))

	assert.Error(t, am.UnloadAsset(nil))
}
