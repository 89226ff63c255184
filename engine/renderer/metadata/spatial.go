package metadata

import "github.com/go-gl/mathgl/mgl32"

/**
 * @brief A model transform. The inverse is derived by the engine.
 */
type SpatialInfo struct {
	Model mgl32.Mat4
}

/** @brief Push-constant size of a spatial: model + inverse model. */
const SpatialPushConstantSize = 128
