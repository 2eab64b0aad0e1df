package mz

import "encoding/binary"

// relocEntrySize is the on-disk size of one relocation entry:
// a 16-bit offset followed by a 16-bit segment.
const relocEntrySize = 4

// Relocation marks one location inside the image body that the loader
// must patch with the actual load segment.
type Relocation struct {
	Offset  uint16
	Segment uint16
}

// writeRelocations encodes relocs at the start of dst.
func writeRelocations(dst []byte, relocs []Relocation) {
	le := binary.LittleEndian
	for i, r := range relocs {
		le.PutUint16(dst[i*relocEntrySize:], r.Offset)
		le.PutUint16(dst[i*relocEntrySize+2:], r.Segment)
	}
}

// ReadRelocations collects the relocation entries declared by h from buf.
// Entries that would read past the end of the buffer are dropped; the
// second return value reports whether the table was truncated that way.
// When the declared count is zero the table offset field is a legacy
// placeholder and is never dereferenced.
func ReadRelocations(h *Header, buf []byte) ([]Relocation, bool) {
	if h == nil || h.RelocationCount == 0 {
		return nil, false
	}
	le := binary.LittleEndian
	relocs := make([]Relocation, 0, h.RelocationCount)
	for i := 0; i < int(h.RelocationCount); i++ {
		off := int(h.RelocTableOffset) + i*relocEntrySize
		if off+relocEntrySize > len(buf) {
			return relocs, true
		}
		relocs = append(relocs, Relocation{
			Offset:  le.Uint16(buf[off:]),
			Segment: le.Uint16(buf[off+2:]),
		})
	}
	return relocs, false
}
