package mz

import (
	"bytes"
	"encoding/binary"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAssembleProducesValidExecutable(t *testing.T) {
	assert := assert.New(t)

	image, err := Assemble([]byte{0xCD, 0x20}, nil, DefaultOptions())
	require.NoError(t, err)

	assert.True(IsValidExecutable(image))
	h, ok := ParseHeader(image)
	require.True(t, ok)
	assert.Equal(uint16(Signature), h.Signature)
	assert.Equal(uint16(HeaderSize/ParagraphSize), h.HeaderParagraphs)
	assert.Equal(byte('M'), image[0])
	assert.Equal(byte('Z'), image[1])
}

func TestSizeLaw(t *testing.T) {
	// Sizes chosen to land before, on, and after page boundaries once
	// the 32-byte header is added.
	for _, n := range []int{1, 16, 479, 480, 481, 512, 1000, 4096, MaxImageBytes} {
		code := bytes.Repeat([]byte{0x90}, n)
		image, err := Assemble(code, nil, DefaultOptions())
		require.NoError(t, err)

		h, ok := ParseHeader(image)
		require.True(t, ok)
		assert.Equal(t, len(image), h.ImageSize(), "size law broken for %d code bytes", n)
		assert.Equal(t, HeaderSize+n, len(image))
	}
}

func TestChecksumLaw(t *testing.T) {
	code := []byte("checksum payload with an odd length.")
	image, err := Assemble(code, nil, DefaultOptions())
	require.NoError(t, err)

	assert.True(t, VerifyChecksum(image))

	// Summing every word of the finished image must wrap to zero.
	var sum uint16
	for i := 0; i+1 < len(image); i += 2 {
		sum += binary.LittleEndian.Uint16(image[i:])
	}
	if len(image)%2 == 1 {
		sum += uint16(image[len(image)-1])
	}
	assert.Equal(t, uint16(0), sum)
}

func TestNoChecksumLeavesFieldZero(t *testing.T) {
	opts := DefaultOptions()
	opts.NoChecksum = true
	image, err := Assemble([]byte{0x90}, nil, opts)
	require.NoError(t, err)

	h, ok := ParseHeader(image)
	require.True(t, ok)
	assert.Equal(t, uint16(0), h.Checksum)
}

func TestRelocationRoundTrip(t *testing.T) {
	relocs := []Relocation{
		{Offset: 0x0003, Segment: 0x0000},
		{Offset: 0x0010, Segment: 0x0001},
		{Offset: 0xFFFE, Segment: 0x1234},
	}
	image, err := Assemble([]byte{0x90, 0x90}, relocs, DefaultOptions())
	require.NoError(t, err)

	h, ok := ParseHeader(image)
	require.True(t, ok)
	assert.Equal(t, uint16(len(relocs)), h.RelocationCount)
	assert.Equal(t, uint16(HeaderSize), h.RelocTableOffset)

	got, truncated := ReadRelocations(h, image)
	assert.False(t, truncated)
	assert.Equal(t, relocs, got)
}

func TestRelocationPlaceholderWhenEmpty(t *testing.T) {
	image, err := Assemble([]byte{0x90}, nil, DefaultOptions())
	require.NoError(t, err)

	h, ok := ParseHeader(image)
	require.True(t, ok)
	assert.Equal(t, uint16(0), h.RelocationCount)
	assert.Equal(t, uint16(legacyRelocOffset), h.RelocTableOffset)

	got, truncated := ReadRelocations(h, image)
	assert.False(t, truncated)
	assert.Empty(t, got)
}

func TestReadRelocationsTruncated(t *testing.T) {
	relocs := []Relocation{{Offset: 1, Segment: 2}, {Offset: 3, Segment: 4}}
	image, err := Assemble([]byte{0x90}, relocs, DefaultOptions())
	require.NoError(t, err)

	h, ok := ParseHeader(image)
	require.True(t, ok)

	// Lie about the count so the last declared entry falls past the end.
	h.RelocationCount = 200
	got, truncated := ReadRelocations(h, image)
	assert.True(t, truncated)
	assert.Equal(t, relocs, got[:2])
	assert.Less(t, len(got), 200)
}

func TestStackPlacement(t *testing.T) {
	code := bytes.Repeat([]byte{0x90}, 100)
	image, err := Assemble(code, nil, DefaultOptions())
	require.NoError(t, err)

	h, ok := ParseHeader(image)
	require.True(t, ok)
	// 100 bytes round up to 7 paragraphs.
	assert.Equal(t, uint16(7), h.InitialSS)
	assert.Equal(t, uint16(DefaultStackSize), h.InitialSP)
	assert.Equal(t, uint16(0), h.InitialCS)
	assert.Equal(t, uint16(0), h.InitialIP)
}

func TestAssembleRejectsEmptyAndOversized(t *testing.T) {
	_, err := Assemble(nil, nil, DefaultOptions())
	assert.Error(t, err)

	_, err = Assemble(make([]byte, MaxImageBytes+1), nil, DefaultOptions())
	assert.Error(t, err)
}

func TestIsValidExecutableRejects(t *testing.T) {
	assert := assert.New(t)

	assert.False(IsValidExecutable(nil))
	assert.False(IsValidExecutable([]byte("MZ")))

	// Right length, wrong signature.
	buf := make([]byte, MinHeaderSize)
	assert.False(IsValidExecutable(buf))

	_, ok := ParseHeader(buf)
	assert.False(ok)
}
