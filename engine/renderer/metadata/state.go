package metadata

/**
 * @brief Depth comparison function.
 */
type CompareFunc int

const (
	CompareLess CompareFunc = iota
	CompareLessOrEqual
	CompareEqual
	CompareGreater
	CompareGreaterOrEqual
	CompareNotEqual
	CompareAlways
	CompareNever
)

/**
 * @brief Fixed-function draw state for an instance.
 */
type StateInfo struct {
	PointSize    float32
	LineWidth    float32
	DepthCompare CompareFunc
	/** @brief Rasterize triangle topologies as lines. */
	Wireframe bool
}

// DefaultStateInfo is used for instances that reference no state.
func DefaultStateInfo() StateInfo {
	return StateInfo{
		PointSize:    1,
		LineWidth:    1,
		DepthCompare: CompareLess,
	}
}
