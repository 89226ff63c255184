package metadata

import "github.com/go-gl/mathgl/mgl32"

/**
 * @brief Camera and lighting data uploaded to every view uniform buffer.
 */
type ViewDesc struct {
	View       mgl32.Mat4
	Projection mgl32.Mat4
	/** @brief Direction the light travels, world space. */
	LightDirection mgl32.Vec3
	LightColor     mgl32.Vec3
	ClearColor     mgl32.Vec4
}

/** @brief Size of the view uniform block: view, projection, light direction, light color. */
const ViewUniformSize = 160

// DefaultViewDesc looks at the origin from +Z with a white light.
func DefaultViewDesc(aspect float32) ViewDesc {
	return ViewDesc{
		View:           mgl32.LookAtV(mgl32.Vec3{0, 0, 3}, mgl32.Vec3{}, mgl32.Vec3{0, 1, 0}),
		Projection:     mgl32.Perspective(mgl32.DegToRad(45), aspect, 0.1, 100),
		LightDirection: mgl32.Vec3{-0.5, -1, -0.5},
		LightColor:     mgl32.Vec3{1, 1, 1},
		ClearColor:     mgl32.Vec4{0, 0, 0.2, 1},
	}
}
