package headless

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spaghettifunk/prism/engine/renderer/gpu"
)

func newBackend(t *testing.T, opts ...Option) *Backend {
	t.Helper()
	b := New(opts...)
	require.NoError(t, b.Initialize(&gpu.InitConfig{AppName: "test"}))
	t.Cleanup(func() { _ = b.Shutdown() })
	return b
}

func TestStagingCopyAndReadback(t *testing.T) {
	b := newBackend(t)
	staging, err := b.CreateBuffer(16, gpu.BufferUsageTransferSrc, true)
	require.NoError(t, err)
	device, err := b.CreateBuffer(16, gpu.BufferUsageTransferDst|gpu.BufferUsageVertex, false)
	require.NoError(t, err)

	_, err = device.Map()
	assert.ErrorIs(t, err, gpu.ErrNotMappable)

	m, err := staging.Map()
	require.NoError(t, err)
	for i := range m {
		m[i] = byte(i)
	}
	staging.Unmap()

	cb, err := b.BeginSingleTimeCommands()
	require.NoError(t, err)
	cb.CopyBuffer(staging, device, 16)
	require.NoError(t, b.EndSingleTimeCommands(cb))

	assert.Equal(t, m, device.(*Buffer).Bytes())
	assert.Equal(t, 1, b.Stats().SingleTimeSubmits)

	staging.Destroy()
	device.Destroy()
	assert.Equal(t, 0, b.Stats().BuffersLive)
}

func TestCopyBufferToImageRegion(t *testing.T) {
	b := newBackend(t)
	img, err := b.CreateImage(&gpu.ImageDesc{
		Type:   gpu.ImageType3D,
		Format: gpu.FormatR8Unorm,
		Extent: gpu.Extent3D{Width: 2, Height: 2, Depth: 3},
		Usage:  gpu.ImageUsageSampled | gpu.ImageUsageTransferDst,
	})
	require.NoError(t, err)
	src, err := b.CreateBuffer(4, gpu.BufferUsageTransferSrc, true)
	require.NoError(t, err)
	m, _ := src.Map()
	copy(m, []byte{1, 2, 3, 4})

	cb, err := b.BeginSingleTimeCommands()
	require.NoError(t, err)
	cb.TransitionImage(img, gpu.ImageLayoutUndefined, gpu.ImageLayoutTransferDst)
	cb.CopyBufferToImage(src, img, &gpu.BufferImageCopy{
		Offset: gpu.Offset3D{Z: 1},
		Extent: gpu.Extent3D{Width: 2, Height: 2, Depth: 1},
	})
	cb.TransitionImage(img, gpu.ImageLayoutTransferDst, gpu.ImageLayoutShaderReadOnly)
	require.NoError(t, b.EndSingleTimeCommands(cb))

	assert.Equal(t, []byte{0, 0, 0, 0, 1, 2, 3, 4, 0, 0, 0, 0}, img.(*Image).Bytes())
	assert.Equal(t, gpu.ImageLayoutShaderReadOnly, img.(*Image).Layout())
}

func TestCopyIntoWrongLayoutFails(t *testing.T) {
	b := newBackend(t)
	img, err := b.CreateImage(&gpu.ImageDesc{Format: gpu.FormatR8Unorm, Extent: gpu.Extent3D{Width: 1, Height: 1, Depth: 1}})
	require.NoError(t, err)
	src, err := b.CreateBuffer(1, gpu.BufferUsageTransferSrc, true)
	require.NoError(t, err)

	cb, err := b.BeginSingleTimeCommands()
	require.NoError(t, err)
	cb.CopyBufferToImage(src, img, &gpu.BufferImageCopy{Extent: gpu.Extent3D{Width: 1, Height: 1, Depth: 1}})
	assert.ErrorIs(t, b.EndSingleTimeCommands(cb), errLayoutMismatch)
}

func TestFrameSynchronization(t *testing.T) {
	b := newBackend(t, WithSwapchainImageCount(2))
	surface, err := b.CreateSurface(nil)
	require.NoError(t, err)
	sc, err := b.CreateSwapchain(surface, 64, 32, nil)
	require.NoError(t, err)
	acquired, _ := b.CreateSemaphore()
	rendered, _ := b.CreateSemaphore()
	fence, _ := b.CreateFence(true)
	cmd, _ := b.AllocateCommandBuffer()

	// an unsignaled wait semaphore is a sequencing bug
	unsignaled, _ := b.CreateFence(false)
	require.NoError(t, cmd.Begin())
	require.NoError(t, cmd.End())
	assert.Error(t, b.Submit(cmd, acquired, rendered, unsignaled))
	assert.ErrorIs(t, unsignaled.Wait(0), gpu.ErrTimeout)

	for i := 0; i < 3; i++ {
		require.NoError(t, fence.Wait(^uint64(0)))
		idx, err := sc.Acquire(^uint64(0), acquired)
		require.NoError(t, err)
		assert.Equal(t, uint32(i%2), idx)
		require.NoError(t, fence.Reset())
		require.NoError(t, cmd.Reset())
		require.NoError(t, cmd.Begin())
		require.NoError(t, cmd.End())
		require.NoError(t, b.Submit(cmd, acquired, rendered, fence))
		require.NoError(t, sc.Present(idx, rendered))
	}
	assert.Equal(t, 3, b.Stats().Presents)

	b.ForceOutOfDate()
	_, err = sc.Acquire(^uint64(0), acquired)
	assert.ErrorIs(t, err, gpu.ErrOutOfDate)

	next, err := b.CreateSwapchain(surface, 128, 64, sc)
	require.NoError(t, err)
	sc.Destroy()
	_, err = next.Acquire(^uint64(0), acquired)
	assert.NoError(t, err)
	assert.Equal(t, 1, b.Stats().SwapchainsLive)
}

func TestDrawOutsideRenderPassFails(t *testing.T) {
	b := newBackend(t)
	cmd, _ := b.AllocateCommandBuffer()
	require.NoError(t, cmd.Begin())
	cmd.Draw(3)
	assert.Error(t, cmd.End())
}

func TestDescriptorPoolCapacity(t *testing.T) {
	b := newBackend(t)
	layout, err := b.CreateDescriptorSetLayout([]gpu.DescriptorBinding{{Binding: 0, Type: gpu.DescriptorTypeUniformBuffer, Stages: gpu.ShaderStageVertex}})
	require.NoError(t, err)
	pool, err := b.CreateDescriptorPool(2, []gpu.DescriptorPoolSize{{Type: gpu.DescriptorTypeUniformBuffer, Count: 2}})
	require.NoError(t, err)

	sets, err := pool.Allocate(layout, 2)
	require.NoError(t, err)
	_, err = pool.Allocate(layout, 1)
	assert.ErrorIs(t, err, gpu.ErrPoolFull)
	require.NoError(t, pool.Free(sets[:1]))
	_, err = pool.Allocate(layout, 1)
	assert.NoError(t, err)
}
