// Package id3 implements the ID3v2 codec: synchsafe integers, the four text
// encodings, the frame model, and a decoder/encoder pair that normalizes
// v2.3 tags into the v2.4 shape this package always writes.
package id3

// Header is the 10-byte ID3v2 tag header (or footer, with a different
// magic).
type Header struct {
	Major byte
	Minor byte
	Flags byte
}

// Header flag bits, per the published ID3v2.4 standard. Some reference
// material shifts these down by one bit, but real ID3v2.4 files use this
// layout.
const (
	FlagUnsynchronisation = 0x80
	FlagExtendedHeader    = 0x40
	FlagExperimental      = 0x20
	FlagFooterPresent     = 0x10
)

// Tag is the decoded representation of an ID3v2 tag: a header and an
// ordered frame list. Extended headers and padding are not modeled; they
// are consumed (skipped) on decode and never reproduced on encode.
type Tag struct {
	Header Header
	Frames []Frame
}
