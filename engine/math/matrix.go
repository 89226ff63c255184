package math

import (
	"encoding/binary"
	stdmath "math"

	"github.com/go-gl/mathgl/mgl32"
)

// Mat4Size is the std140 size of a 4x4 float matrix.
const Mat4Size = 64

// Vec4Size is the std140 size of a vec3 or vec4.
const Vec4Size = 16

// InverseOrIdentity inverts m, falling back to identity for singular matrices.
func InverseOrIdentity(m mgl32.Mat4) mgl32.Mat4 {
	if m.Det() == 0 {
		return mgl32.Ident4()
	}
	return m.Inv()
}

// PutFloats writes fs little-endian into dst and returns the bytes written.
func PutFloats(dst []byte, fs ...float32) int {
	for i, f := range fs {
		binary.LittleEndian.PutUint32(dst[i*4:], stdmath.Float32bits(f))
	}
	return len(fs) * 4
}

// PutMat4 writes m column-major, which is the layout GLSL expects.
func PutMat4(dst []byte, m mgl32.Mat4) int {
	return PutFloats(dst, m[:]...)
}

// PutVec3 writes v padded to a vec4 slot.
func PutVec3(dst []byte, v mgl32.Vec3) int {
	PutFloats(dst, v[0], v[1], v[2], 0)
	return Vec4Size
}

// Float32Bytes returns fs as little-endian bytes.
func Float32Bytes(fs []float32) []byte {
	b := make([]byte, len(fs)*4)
	PutFloats(b, fs...)
	return b
}

// Uint32Bytes returns us as little-endian bytes.
func Uint32Bytes(us []uint32) []byte {
	b := make([]byte, len(us)*4)
	for i, u := range us {
		binary.LittleEndian.PutUint32(b[i*4:], u)
	}
	return b
}
