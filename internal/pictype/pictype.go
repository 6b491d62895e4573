// Package pictype maps ID3v2 APIC picture-type bytes to their human-readable
// names and back, for the --picture CLI flag.
package pictype

import (
	"fmt"
	"strings"
)

// names is ordered by byte value 0x00..0x14, the 21 types defined by the
// ID3v2 attached-picture frame.
var names = [...]string{
	0x00: "Other",
	0x01: "32x32 pixels 'file icon' (PNG only)",
	0x02: "Other file icon",
	0x03: "Cover (front)",
	0x04: "Cover (back)",
	0x05: "Leaflet page",
	0x06: "Media (e.g. label side of CD)",
	0x07: "Lead artist/lead performer/soloist",
	0x08: "Artist/performer",
	0x09: "Conductor",
	0x0A: "Band/Orchestra",
	0x0B: "Composer",
	0x0C: "Lyricist/text writer",
	0x0D: "Recording Location",
	0x0E: "During recording",
	0x0F: "During performance",
	0x10: "Movie/video screen capture",
	0x11: "A bright coloured fish",
	0x12: "Illustration",
	0x13: "Band/artist logotype",
	0x14: "Publisher/Studio logotype",
}

// Name returns the display name for a picture-type byte, or "" and false if
// b is outside the recognized 0x00-0x14 range.
func Name(b byte) (string, bool) {
	if int(b) >= len(names) {
		return "", false
	}
	return names[b], true
}

// Parse resolves a human-readable picture-type name (case-insensitive,
// exact match against the canonical name table) to its byte value.
func Parse(name string) (byte, error) {
	for b, n := range names {
		if strings.EqualFold(n, name) {
			return byte(b), nil
		}
	}
	return 0, fmt.Errorf("unrecognized picture type %q", name)
}

// Count is the number of named picture types.
const Count = len(names)
