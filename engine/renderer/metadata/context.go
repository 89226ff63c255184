package metadata

/**
 * @brief The configuration for a presentation context.
 */
type ContextConfig struct {
	/** @brief Native window handed to the backend to build a surface. */
	Window interface{}
	Width  uint32
	Height uint32
}
