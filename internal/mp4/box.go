// Package mp4 implements shape-preserving ISOBMFF box surgery: a recursive
// descent parser, an iTunes ilst editor, and a re-serializer that fixes up
// stco chunk-offset tables after the metadata region changes size.
package mp4

// Box is any node in the parsed box tree. Concrete implementations are a
// closed set (ContainerBox, MetaBox, IlstBox, StcoBox, OpaqueBox); there is
// no user-extensible registry.
type Box interface {
	boxType() [4]byte
	// encode appends this box's full wire bytes (size + type [+ version +
	// flags] + payload) to dst and returns the result.
	encode(dst []byte) []byte
}

// OpaqueBox is a leaf or unrecognized box carried through unchanged. Raw
// holds the box's complete wire bytes (size prefix, type, and payload)
// exactly as read from the input, so re-emission is a verbatim copy.
type OpaqueBox struct {
	TypeID [4]byte
	Raw    []byte
}

func (b OpaqueBox) boxType() [4]byte { return b.TypeID }

func (b OpaqueBox) encode(dst []byte) []byte {
	return append(dst, b.Raw...)
}

// ContainerBox is a plain (non-FullBox) container on the spine to ilst:
// moov, trak, mdia, minf, stbl, udta, dinf, edts. Its size is recomputed
// from its children on every encode.
type ContainerBox struct {
	TypeID   [4]byte
	Children []Box
}

func (b ContainerBox) boxType() [4]byte { return b.TypeID }

func (b ContainerBox) encode(dst []byte) []byte {
	var body []byte
	for _, c := range b.Children {
		body = c.encode(body)
	}
	header := make([]byte, 8)
	putUint32(header[0:4], uint32(8+len(body)))
	copy(header[4:8], b.TypeID[:])
	dst = append(dst, header...)
	dst = append(dst, body...)
	return dst
}

// MetaBox is the FullBox container moov/udta/meta. Its first child is
// always hdlr (enforced at parse time), followed by ilst and/or free.
type MetaBox struct {
	Version  byte
	Flags    [3]byte
	Children []Box
}

func (b MetaBox) boxType() [4]byte { return [4]byte{'m', 'e', 't', 'a'} }

func (b MetaBox) encode(dst []byte) []byte {
	var body []byte
	for _, c := range b.Children {
		body = c.encode(body)
	}
	header := make([]byte, 12)
	putUint32(header[0:4], uint32(12+len(body)))
	copy(header[4:8], "meta")
	header[8] = b.Version
	copy(header[9:12], b.Flags[:])
	dst = append(dst, header...)
	dst = append(dst, body...)
	return dst
}

// StcoBox is the sample-table chunk-offset table. Offsets are rewritten by
// the re-serializer's delta before encode.
type StcoBox struct {
	Version byte
	Flags   [3]byte
	Offsets []uint32
}

func (b StcoBox) boxType() [4]byte { return [4]byte{'s', 't', 'c', 'o'} }

func (b StcoBox) encode(dst []byte) []byte {
	size := 16 + 4*len(b.Offsets)
	header := make([]byte, 16)
	putUint32(header[0:4], uint32(size))
	copy(header[4:8], "stco")
	header[8] = b.Version
	copy(header[9:12], b.Flags[:])
	putUint32(header[12:16], uint32(len(b.Offsets)))
	dst = append(dst, header...)
	for _, off := range b.Offsets {
		var buf [4]byte
		putUint32(buf[:], off)
		dst = append(dst, buf[:]...)
	}
	return dst
}

// Shifted returns a copy of the box with every offset increased by delta.
func (b StcoBox) Shifted(delta int64) StcoBox {
	out := StcoBox{Version: b.Version, Flags: b.Flags, Offsets: make([]uint32, len(b.Offsets))}
	for i, off := range b.Offsets {
		out.Offsets[i] = uint32(int64(off) + delta)
	}
	return out
}

func putUint32(b []byte, v uint32) {
	b[0] = byte(v >> 24)
	b[1] = byte(v >> 16)
	b[2] = byte(v >> 8)
	b[3] = byte(v)
}

func getUint32(b []byte) uint32 {
	return uint32(b[0])<<24 | uint32(b[1])<<16 | uint32(b[2])<<8 | uint32(b[3])
}
