package goshape

// Presence is the bit flag collected by the WithMeta validation path and
// consumed by the serializer's exclude-unset mode.
type Presence uint8

const (
	PresenceSeen           Presence = 1 << iota // Field appeared in the input.
	PresenceWasNull                             // Field value was null.
	PresenceDefaultApplied                      // Default value was applied.
)

// PresenceMap maps JSON Pointers to Presence flags.
type PresenceMap map[string]Presence

// Decoded carries a validated value along with presence metadata.
type Decoded struct {
	Value    any
	Presence PresenceMap
}

// Unset reports whether the pointer was default-applied without appearing in
// the input. Pointers absent from the map count as seen so that values not
// produced by ValidateWithMeta serialize fully.
func (pm PresenceMap) Unset(ptr string) bool {
	p, ok := pm[ptr]
	if !ok {
		return false
	}
	return p&PresenceDefaultApplied != 0 && p&PresenceSeen == 0
}
