package metadata

/**
 * @brief The configuration for a collection.
 */
type CollectionConfig struct {
	/** @brief Upper bound of live instances. */
	MaxInstances uint32
}

/**
 * @brief The references bundled into a collection instance.
 */
type InstanceDesc struct {
	GeometryData GeometryDataID
	Geometry     GeometryID
	Appearance   AppearanceID
	/** @brief Optional. InvalidSpatial resolves to the identity spatial. */
	Spatial SpatialID
	/** @brief Optional. InvalidState uses DefaultStateInfo. */
	State StateID
	/** @brief Initial value of the per-instance hide flag. */
	Hidden bool
}
