package mp4

import (
	"fmt"

	"github.com/audiotag/tag/internal/tagerr"
)

// plainContainerTypes recurse as a generic ContainerBox: size is 8 plus the
// sum of child sizes, recomputed on every encode.
var plainContainerTypes = map[string]bool{
	"moov": true, "trak": true, "mdia": true, "minf": true,
	"stbl": true, "dinf": true, "edts": true,
}

// ParseTopLevel parses the top-level box list of an MP4/M4A file.
func ParseTopLevel(data []byte) ([]Box, error) {
	return parseChildren(data)
}

func parseChildren(data []byte) ([]Box, error) {
	var boxes []Box
	pos := 0
	for pos < len(data) {
		box, consumed, err := parseBox(data[pos:])
		if err != nil {
			return nil, err
		}
		boxes = append(boxes, box)
		pos += consumed
	}
	return boxes, nil
}

func parseBox(data []byte) (Box, int, error) {
	if len(data) < 8 {
		return nil, 0, tagerr.New("", tagerr.KindFormat, "truncated box header")
	}
	size := getUint32(data[0:4])
	typ := string(data[4:8])

	if size == 0 {
		return nil, 0, tagerr.New("", tagerr.KindFormat, "box size 0 is not supported")
	}
	if size == 1 {
		return nil, 0, tagerr.New("", tagerr.KindFormat, "64-bit extended box size is not supported")
	}
	if typ == "co64" {
		return nil, 0, tagerr.ErrCo64Unsupported
	}
	if int64(size) > int64(len(data)) {
		return nil, 0, tagerr.New("", tagerr.KindFormat, fmt.Sprintf("box %q size extends past its parent", typ))
	}

	switch {
	case typ == "udta":
		children, err := parseUdtaChildren(data[8:size])
		if err != nil {
			return nil, 0, err
		}
		return ContainerBox{TypeID: typeBytes(typ), Children: children}, int(size), nil

	case plainContainerTypes[typ]:
		children, err := parseChildren(data[8:size])
		if err != nil {
			return nil, 0, err
		}
		return ContainerBox{TypeID: typeBytes(typ), Children: children}, int(size), nil

	case typ == "meta":
		if size < 12 {
			return nil, 0, tagerr.New("", tagerr.KindFormat, "truncated meta box")
		}
		version := data[8]
		var flags [3]byte
		copy(flags[:], data[9:12])
		children, err := parseMetaChildren(data[12:size])
		if err != nil {
			return nil, 0, err
		}
		return MetaBox{Version: version, Flags: flags, Children: children}, int(size), nil

	case typ == "ilst":
		ilst, err := parseIlst(data[8:size])
		if err != nil {
			return nil, 0, err
		}
		return ilst, int(size), nil

	case typ == "stco":
		if size < 16 {
			return nil, 0, tagerr.New("", tagerr.KindFormat, "truncated stco box")
		}
		version := data[8]
		var flags [3]byte
		copy(flags[:], data[9:12])
		count := int(getUint32(data[12:16]))
		if 16+4*count > int(size) {
			return nil, 0, tagerr.New("", tagerr.KindFormat, "stco entry count exceeds box size")
		}
		offsets := make([]uint32, count)
		for i := 0; i < count; i++ {
			off := 16 + 4*i
			offsets[i] = getUint32(data[off : off+4])
		}
		return StcoBox{Version: version, Flags: flags, Offsets: offsets}, int(size), nil

	default:
		return OpaqueBox{TypeID: typeBytes(typ), Raw: append([]byte(nil), data[0:size]...)}, int(size), nil
	}
}

// parseUdtaChildren enforces the original format's strict udta contract:
// the only recognized children are meta and free.
func parseUdtaChildren(data []byte) ([]Box, error) {
	children, err := parseChildren(data)
	if err != nil {
		return nil, err
	}
	for _, c := range children {
		t := c.boxType()
		if t != [4]byte{'m', 'e', 't', 'a'} && t != [4]byte{'f', 'r', 'e', 'e'} {
			return nil, tagerr.New("", tagerr.KindFormat, fmt.Sprintf("unexpected udta child %q", string(t[:])))
		}
	}
	return children, nil
}

// parseMetaChildren enforces the meta contract: the first child is always
// hdlr.
func parseMetaChildren(data []byte) ([]Box, error) {
	children, err := parseChildren(data)
	if err != nil {
		return nil, err
	}
	if len(children) == 0 || children[0].boxType() != [4]byte{'h', 'd', 'l', 'r'} {
		return nil, tagerr.New("", tagerr.KindFormat, "meta box's first child must be hdlr")
	}
	return children, nil
}

func typeBytes(s string) [4]byte {
	var t [4]byte
	copy(t[:], s)
	return t
}

// FindTopLevelOffset returns the byte offset (from the start of data) of the
// first top-level box whose type matches typ, or -1 if none is found. It
// reads only box headers, not full recursive structure, so it is cheap and
// independent of how deeply the rest of the tree gets parsed.
func FindTopLevelOffset(data []byte, typ string) (int, error) {
	pos := 0
	for pos+8 <= len(data) {
		size := int(getUint32(data[pos : pos+4]))
		t := string(data[pos+4 : pos+8])
		if size < 8 {
			return -1, tagerr.New("", tagerr.KindFormat, "truncated top-level box")
		}
		if t == typ {
			return pos, nil
		}
		pos += size
	}
	return -1, nil
}
