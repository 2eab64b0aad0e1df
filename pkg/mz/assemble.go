package mz

import (
	"fmt"

	"fortio.org/safecast"
)

// MaxImageBytes is the largest code/data payload a single-segment image
// can carry: one 64KB segment.
const MaxImageBytes = 0xFFFF

// DefaultStackSize is the stack size used when Options.StackSize is zero.
const DefaultStackSize = 512

// Options controls header layout during Assemble.
type Options struct {
	// StackSize becomes the initial stack pointer. Zero means
	// DefaultStackSize.
	StackSize uint16

	// InitialCS and InitialIP locate the entry point relative to the
	// start of the image body. Both default to zero: execution starts
	// at the first byte of the image.
	InitialCS uint16
	InitialIP uint16

	// MinExtraParas requests memory beyond the image for the stack.
	// Zero means "computed from StackSize".
	MinExtraParas uint16

	// MaxExtraParas defaults to 0xFFFF (take everything available).
	MaxExtraParas uint16

	// NoChecksum leaves the checksum field zero instead of applying the
	// negated word sum.
	NoChecksum bool
}

// DefaultOptions returns the options used by the compile pipeline.
func DefaultOptions() Options {
	return Options{StackSize: DefaultStackSize, MaxExtraParas: 0xFFFF}
}

// Assemble wraps a code/data buffer and an optional relocation list into
// a complete executable image: 32-byte header, relocation table (when
// relocs is non-empty), then the body. The stack segment is placed on the
// first paragraph boundary past the body.
func Assemble(codeData []byte, relocs []Relocation, opts Options) ([]byte, error) {
	if len(codeData) == 0 {
		return nil, fmt.Errorf("mz: empty code/data buffer")
	}
	if len(codeData) > MaxImageBytes {
		return nil, fmt.Errorf("mz: code/data is %d bytes, exceeds the %d byte segment ceiling", len(codeData), MaxImageBytes)
	}

	stackSize := opts.StackSize
	if stackSize == 0 {
		stackSize = DefaultStackSize
	}
	maxExtra := opts.MaxExtraParas
	if maxExtra == 0 {
		maxExtra = 0xFFFF
	}
	minExtra := opts.MinExtraParas
	if minExtra == 0 {
		minExtra = paragraphs(int(stackSize))
	}

	relocBytes := len(relocs) * relocEntrySize
	total := HeaderSize + relocBytes + len(codeData)

	pages, err := safecast.Conv[uint16]((total + PageSize - 1) / PageSize)
	if err != nil {
		return nil, fmt.Errorf("mz: image of %d bytes does not fit the page field: %w", total, err)
	}
	lastPage, err := safecast.Conv[uint16](total - (int(pages)-1)*PageSize)
	if err != nil {
		return nil, fmt.Errorf("mz: last page size: %w", err)
	}
	relocCount, err := safecast.Conv[uint16](len(relocs))
	if err != nil {
		return nil, fmt.Errorf("mz: %d relocations do not fit the count field: %w", len(relocs), err)
	}

	relocOffset := uint16(legacyRelocOffset)
	if len(relocs) > 0 {
		relocOffset = HeaderSize
	}

	h := &Header{
		Signature:        Signature,
		BytesOnLastPage:  lastPage,
		PagesInFile:      pages,
		RelocationCount:  relocCount,
		HeaderParagraphs: HeaderSize / ParagraphSize,
		MinExtraParas:    minExtra,
		MaxExtraParas:    maxExtra,
		InitialSS:        paragraphs(len(codeData)),
		InitialSP:        stackSize,
		InitialIP:        opts.InitialIP,
		InitialCS:        opts.InitialCS,
		RelocTableOffset: relocOffset,
	}

	image := make([]byte, total)
	h.encode(image[:HeaderSize])
	writeRelocations(image[HeaderSize:], relocs)
	copy(image[HeaderSize+relocBytes:], codeData)

	if !opts.NoChecksum {
		ApplyChecksum(image)
	}
	return image, nil
}

// paragraphs returns ceil(n/16) clamped to the 16-bit segment range.
func paragraphs(n int) uint16 {
	p := (n + ParagraphSize - 1) / ParagraphSize
	if p > 0xFFFF {
		p = 0xFFFF
	}
	return uint16(p)
}
