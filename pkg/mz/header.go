package mz

import (
	"encoding/binary"
)

// Signature is the executable signature word: "MZ" read as a
// little-endian 16-bit value.
const Signature = 0x5A4D

const (
	// HeaderSize is the canonical header length in bytes. Two different
	// header conventions (28 and 32 bytes) exist in the wild; this
	// implementation always emits the paragraph-aligned 32-byte form.
	HeaderSize = 32

	// MinHeaderSize is the smallest header a reader will accept. Foreign
	// images built with the legacy 28-byte convention still parse.
	MinHeaderSize = 28

	// PageSize is the file page unit used by the pages-in-file field.
	PageSize = 512

	// ParagraphSize is the 16-byte alignment unit used for segment layout.
	ParagraphSize = 16

	// legacyRelocOffset is the placeholder written into the relocation
	// table offset field when the image carries no relocations. Readers
	// must gate on the relocation count and never dereference it.
	legacyRelocOffset = 0x40
)

// Field offsets within the header.
const (
	offSignature   = 0x00
	offLastPage    = 0x02
	offPages       = 0x04
	offRelocCount  = 0x06
	offHeaderParas = 0x08
	offMinExtra    = 0x0A
	offMaxExtra    = 0x0C
	offInitialSS   = 0x0E
	offInitialSP   = 0x10
	offChecksum    = 0x12
	offInitialIP   = 0x14
	offInitialCS   = 0x16
	offRelocTable  = 0x18
	offOverlay     = 0x1A
)

// Header is the decoded executable header. All fields are stored
// little-endian in the file.
type Header struct {
	Signature        uint16
	BytesOnLastPage  uint16
	PagesInFile      uint16
	RelocationCount  uint16
	HeaderParagraphs uint16
	MinExtraParas    uint16
	MaxExtraParas    uint16
	InitialSS        uint16
	InitialSP        uint16
	Checksum         uint16
	InitialIP        uint16
	InitialCS        uint16
	RelocTableOffset uint16
	OverlayNumber    uint16
}

// ImageSize returns the total file size implied by the page fields:
// (PagesInFile-1)*512 + BytesOnLastPage.
func (h *Header) ImageSize() int {
	if h.PagesInFile == 0 {
		return 0
	}
	return (int(h.PagesInFile)-1)*PageSize + int(h.BytesOnLastPage)
}

// IsValidExecutable reports whether buf is plausibly an executable image:
// at least a legacy-sized header and the signature word in front.
func IsValidExecutable(buf []byte) bool {
	return len(buf) >= MinHeaderSize && binary.LittleEndian.Uint16(buf[offSignature:]) == Signature
}

// ParseHeader decodes the header from buf. The second return value is
// false when buf is too short or does not carry the signature.
func ParseHeader(buf []byte) (*Header, bool) {
	if !IsValidExecutable(buf) {
		return nil, false
	}
	le := binary.LittleEndian
	h := &Header{
		Signature:        le.Uint16(buf[offSignature:]),
		BytesOnLastPage:  le.Uint16(buf[offLastPage:]),
		PagesInFile:      le.Uint16(buf[offPages:]),
		RelocationCount:  le.Uint16(buf[offRelocCount:]),
		HeaderParagraphs: le.Uint16(buf[offHeaderParas:]),
		MinExtraParas:    le.Uint16(buf[offMinExtra:]),
		MaxExtraParas:    le.Uint16(buf[offMaxExtra:]),
		InitialSS:        le.Uint16(buf[offInitialSS:]),
		InitialSP:        le.Uint16(buf[offInitialSP:]),
		Checksum:         le.Uint16(buf[offChecksum:]),
		InitialIP:        le.Uint16(buf[offInitialIP:]),
		InitialCS:        le.Uint16(buf[offInitialCS:]),
		RelocTableOffset: le.Uint16(buf[offRelocTable:]),
		OverlayNumber:    le.Uint16(buf[offOverlay:]),
	}
	return h, true
}

// encode writes the header into the first HeaderSize bytes of dst.
// The four bytes past the last field stay zero (reserved padding that
// keeps the header at a whole number of paragraphs).
func (h *Header) encode(dst []byte) {
	le := binary.LittleEndian
	le.PutUint16(dst[offSignature:], h.Signature)
	le.PutUint16(dst[offLastPage:], h.BytesOnLastPage)
	le.PutUint16(dst[offPages:], h.PagesInFile)
	le.PutUint16(dst[offRelocCount:], h.RelocationCount)
	le.PutUint16(dst[offHeaderParas:], h.HeaderParagraphs)
	le.PutUint16(dst[offMinExtra:], h.MinExtraParas)
	le.PutUint16(dst[offMaxExtra:], h.MaxExtraParas)
	le.PutUint16(dst[offInitialSS:], h.InitialSS)
	le.PutUint16(dst[offInitialSP:], h.InitialSP)
	le.PutUint16(dst[offChecksum:], h.Checksum)
	le.PutUint16(dst[offInitialIP:], h.InitialIP)
	le.PutUint16(dst[offInitialCS:], h.InitialCS)
	le.PutUint16(dst[offRelocTable:], h.RelocTableOffset)
	le.PutUint16(dst[offOverlay:], h.OverlayNumber)
}
