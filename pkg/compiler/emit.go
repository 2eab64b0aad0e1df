package compiler

import (
	"encoding/binary"
	"fmt"
	"regexp"
	"strings"
)

// Terminator is the display-string sentinel byte the host runtime scans
// for when printing. Every emitted data literal ends with it.
const Terminator = '$'

// Fragment sizes are statically known, which is what allows single-pass
// layout: the data region starts right after the last fragment.
const (
	prologueSize  = 4
	printFragSize = 7
	exitFragSize  = 6
)

// printCall matches the one call shape the code generator understands: a
// printf invocation with exactly one quoted string argument. Anything
// else in the source is ignored here; the validator has already had its
// say.
var printCall = regexp.MustCompile(`printf\s*\(\s*"((?:[^"\\]|\\.)*)"\s*\)`)

// ExtractLiterals returns the raw (still escaped) string literal of every
// print call in src, in source order.
func ExtractLiterals(src string) []string {
	matches := printCall.FindAllStringSubmatch(src, -1)
	literals := make([]string, 0, len(matches))
	for _, m := range matches {
		literals = append(literals, m[1])
	}
	return literals
}

// DecodeEscapes resolves the escape sequences the subset supports.
// '\n' expands to CR LF, the display convention of the target runtime.
// Unrecognized escapes are kept verbatim, backslash included.
func DecodeEscapes(s string) []byte {
	var out []byte
	for i := 0; i < len(s); i++ {
		if s[i] != '\\' || i+1 >= len(s) {
			out = append(out, s[i])
			continue
		}
		i++
		switch s[i] {
		case 'n':
			out = append(out, '\r', '\n')
		case 't':
			out = append(out, '\t')
		case 'r':
			out = append(out, '\r')
		case '\\':
			out = append(out, '\\')
		case '"':
			out = append(out, '"')
		default:
			out = append(out, '\\', s[i])
		}
	}
	return out
}

// EncodeLiteral decodes escapes and appends the terminator, producing the
// bytes stored in the image's data region.
func EncodeLiteral(s string) []byte {
	return append(DecodeEscapes(s), Terminator)
}

// maxProgramBytes is the 64KB segment ceiling; a larger program would
// wrap the 16-bit data offsets baked into the print fragments.
const maxProgramBytes = 0xFFFF

// EmitProgram compiles the print calls of validated source into a single
// contiguous code/data buffer:
//
//	prologue | print fragment per literal | exit fragment | literal bytes
//
// The prologue copies CS into DS, because at entry DS does not yet point
// at this image's segment. Each print fragment selects the display-string
// system function, loads the literal's data offset, and invokes the
// system dispatcher; the exit fragment does the same with the terminate
// function and exitCode. All addressing is relative to the implicit code
// segment, so the layout needs no relocations. Programs whose code and
// data together exceed one segment are rejected.
func EmitProgram(src string, exitCode uint8) ([]byte, error) {
	literals := ExtractLiterals(src)

	data := make([][]byte, len(literals))
	dataSize := 0
	for i, lit := range literals {
		data[i] = EncodeLiteral(lit)
		dataSize += len(data[i])
	}

	codeSize := prologueSize + len(literals)*printFragSize + exitFragSize
	if codeSize+dataSize > maxProgramBytes {
		return nil, fmt.Errorf("program is %d bytes, exceeds the %d byte segment ceiling", codeSize+dataSize, maxProgramBytes)
	}
	buf := make([]byte, 0, codeSize)

	// mov ax, cs / mov ds, ax
	buf = append(buf, 0x8C, 0xC8, 0x8E, 0xD8)

	dataOffset := codeSize
	for i := range literals {
		// mov ah, 09h / mov dx, imm16 / int 21h
		buf = append(buf, 0xB4, 0x09, 0xBA, 0x00, 0x00, 0xCD, 0x21)
		binary.LittleEndian.PutUint16(buf[len(buf)-4:], uint16(dataOffset))
		dataOffset += len(data[i])
	}

	// mov ah, 4Ch / mov al, code / int 21h
	buf = append(buf, 0xB4, 0x4C, 0xB0, exitCode, 0xCD, 0x21)

	for _, d := range data {
		buf = append(buf, d...)
	}
	return buf, nil
}

// HasEntryPoint reports whether src carries the entry-point marker the
// validator requires. Exposed for callers that probe source files before
// scheduling a full compile.
func HasEntryPoint(src string) bool {
	return strings.Contains(src, entryPointToken)
}
