package section

// Marker is the leading byte of an object record.
type Marker byte

// NewMarker packs a type tag and inline info into a marker.
func NewMarker(tag, info byte) Marker {
	return Marker(tag<<4 | info&0x0F)
}

// Tag returns the record type, the high nibble.
func (m Marker) Tag() byte {
	return byte(m) >> 4
}

// Info returns the inline length or sub-kind, the low nibble.
func (m Marker) Info() byte {
	return byte(m) & 0x0F
}

// HasExtendedLength reports whether a length record follows the marker.
func (m Marker) HasExtendedLength() bool {
	return m.Info() == InfoExtended
}
