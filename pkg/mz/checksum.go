package mz

import "encoding/binary"

// ComputeChecksum sums every 16-bit little-endian word of buf, skipping
// the word at the checksum field's own position. A trailing odd byte is
// padded with zero. The result is the value whose two's complement makes
// the whole-file word sum zero.
func ComputeChecksum(buf []byte) uint16 {
	var sum uint16
	for i := 0; i+1 < len(buf); i += 2 {
		if i == offChecksum {
			continue
		}
		sum += binary.LittleEndian.Uint16(buf[i:])
	}
	if len(buf)%2 == 1 {
		sum += uint16(buf[len(buf)-1])
	}
	return sum
}

// ApplyChecksum stores the two's complement of the word sum into the
// checksum field, so that summing the finished image (checksum included)
// yields zero mod 2^16. buf must hold at least a full header.
func ApplyChecksum(buf []byte) {
	if len(buf) < MinHeaderSize {
		return
	}
	sum := ComputeChecksum(buf)
	binary.LittleEndian.PutUint16(buf[offChecksum:], -sum)
}

// VerifyChecksum reports whether the word sum over the whole image,
// checksum field included, is zero.
func VerifyChecksum(buf []byte) bool {
	if len(buf) < MinHeaderSize {
		return false
	}
	sum := ComputeChecksum(buf) + binary.LittleEndian.Uint16(buf[offChecksum:])
	return sum == 0
}
