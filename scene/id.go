package scene

// EmitterKey is the application-side stable name for a sound emitter.
// The entity-framework adapter chooses the keys; the synchronizer maps them
// to SourceIDs internally.
type EmitterKey string

// SourceID names one logical sound source for its whole lifetime.
// Slot is an index into the synchronizer's slot table; Gen disambiguates
// reuse of the same slot so stale references can be detected instead of
// silently aliasing a new source.
type SourceID struct {
	Slot uint32
	Gen  uint32
}

// IsZero reports whether the ID has never been assigned
func (id SourceID) IsZero() bool {
	return id.Slot == 0 && id.Gen == 0
}
