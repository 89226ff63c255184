package metadata

/** @brief The all-ones value marking a handle as invalid. */
const InvalidID uint32 = 0xFFFFFFFF

type (
	ContextID      uint32
	ViewID         uint32
	GeometryDataID uint32
	GeometryID     uint32
	TextureID      uint32
	AppearanceID   uint32
	SpatialID      uint32
	StateID        uint32
	CollectionID   uint32
	InstanceID     uint32
)

const (
	InvalidContext      = ContextID(InvalidID)
	InvalidView         = ViewID(InvalidID)
	InvalidGeometryData = GeometryDataID(InvalidID)
	InvalidGeometry     = GeometryID(InvalidID)
	InvalidTexture      = TextureID(InvalidID)
	InvalidAppearance   = AppearanceID(InvalidID)
	InvalidSpatial      = SpatialID(InvalidID)
	InvalidState        = StateID(InvalidID)
	InvalidCollection   = CollectionID(InvalidID)
	InvalidInstance     = InstanceID(InvalidID)
)

func (id ContextID) IsValid() bool      { return uint32(id) != InvalidID }
func (id ViewID) IsValid() bool         { return uint32(id) != InvalidID }
func (id GeometryDataID) IsValid() bool { return uint32(id) != InvalidID }
func (id GeometryID) IsValid() bool     { return uint32(id) != InvalidID }
func (id TextureID) IsValid() bool      { return uint32(id) != InvalidID }
func (id AppearanceID) IsValid() bool   { return uint32(id) != InvalidID }
func (id SpatialID) IsValid() bool      { return uint32(id) != InvalidID }
func (id StateID) IsValid() bool        { return uint32(id) != InvalidID }
func (id CollectionID) IsValid() bool   { return uint32(id) != InvalidID }
func (id InstanceID) IsValid() bool     { return uint32(id) != InvalidID }

/** @brief Number of frames whose GPU work may overlap. */
const FramesInFlight = 2
