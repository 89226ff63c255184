package math

import (
	"encoding/binary"
	stdmath "math"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
)

func TestClamp(t *testing.T) {
	assert.Equal(t, 5, Clamp(9, 0, 5))
	assert.Equal(t, float32(0.5), Clamp(float32(0.5), 0, 1))
	assert.Equal(t, uint64(2), Clamp(uint64(1), 2, 4))
}

func TestDivCeilAlignUp(t *testing.T) {
	assert.Equal(t, uint32(3), DivCeil(uint32(9), 4))
	assert.Equal(t, uint32(2), DivCeil(uint32(8), 4))
	assert.Equal(t, uint64(0), DivCeil(uint64(8), 0))
	assert.Equal(t, uint64(256), AlignUp(uint64(129), 128))
	assert.Equal(t, uint64(128), AlignUp(uint64(128), 128))
}

func TestInverseOrIdentity(t *testing.T) {
	m := mgl32.Translate3D(1, 2, 3).Mul4(mgl32.Scale3D(2, 2, 2))
	inv := InverseOrIdentity(m)
	assert.True(t, m.Mul4(inv).ApproxEqualThreshold(mgl32.Ident4(), 1e-5))

	assert.Equal(t, mgl32.Ident4(), InverseOrIdentity(mgl32.Mat4{}))
}

func TestPutMat4ColumnMajor(t *testing.T) {
	m := mgl32.Translate3D(7, 8, 9)
	buf := make([]byte, Mat4Size)
	assert.Equal(t, Mat4Size, PutMat4(buf, m))
	// translation lives in the last column, floats 12..14
	x := stdmath.Float32frombits(binary.LittleEndian.Uint32(buf[48:]))
	z := stdmath.Float32frombits(binary.LittleEndian.Uint32(buf[56:]))
	assert.Equal(t, float32(7), x)
	assert.Equal(t, float32(9), z)
}

func TestByteHelpers(t *testing.T) {
	b := Float32Bytes([]float32{1, -2})
	assert.Len(t, b, 8)
	assert.Equal(t, float32(-2), stdmath.Float32frombits(binary.LittleEndian.Uint32(b[4:])))

	u := Uint32Bytes([]uint32{0, 1, 2})
	assert.Equal(t, []byte{0, 0, 0, 0, 1, 0, 0, 0, 2, 0, 0, 0}, u)
}
