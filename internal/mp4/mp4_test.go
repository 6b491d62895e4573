package mp4

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func box(typ string, payload []byte) []byte {
	out := make([]byte, 8, 8+len(payload))
	putUint32(out[0:4], uint32(8+len(payload)))
	copy(out[4:8], typ)
	out = append(out, payload...)
	return out
}

func fullBox(typ string, version byte, flags [3]byte, payload []byte) []byte {
	out := make([]byte, 12, 12+len(payload))
	putUint32(out[0:4], uint32(12+len(payload)))
	copy(out[4:8], typ)
	out[8] = version
	copy(out[9:12], flags[:])
	out = append(out, payload...)
	return out
}

func dataSubBox(typeCode byte, value []byte) []byte {
	reservedThenValue := make([]byte, 4, 4+len(value))
	reservedThenValue = append(reservedThenValue, value...)
	return fullBox("data", 0, [3]byte{0, 0, typeCode}, reservedThenValue)
}

func tagItem(tag string, data []byte) []byte {
	return box(tag, data)
}

func buildM4A(title string, stcoOffsets []uint32) []byte {
	ilstPayload := tagItem("\xa9nam", dataSubBox(0x01, []byte(title)))
	ilst := box("ilst", ilstPayload)
	hdlr := box("hdlr", []byte("dummy"))
	meta := fullBox("meta", 0, [3]byte{}, append(append([]byte{}, hdlr...), ilst...))
	udta := box("udta", meta)

	var stcoPayload []byte
	stcoPayload = append(stcoPayload, 0, 0, 0, 0) // version+flags
	count := make([]byte, 4)
	putUint32(count, uint32(len(stcoOffsets)))
	stcoPayload = append(stcoPayload, count...)
	for _, off := range stcoOffsets {
		var b [4]byte
		putUint32(b[:], off)
		stcoPayload = append(stcoPayload, b[:]...)
	}
	stco := box("stco", stcoPayload)
	stbl := box("stbl", stco)
	minf := box("minf", stbl)
	mdia := box("mdia", minf)
	trak := box("trak", mdia)
	mvhd := box("mvhd", []byte("mvhddata"))
	moov := box("moov", append(append(append([]byte{}, mvhd...), trak...), udta...))

	ftyp := box("ftyp", []byte("M4A mp42isom"))
	mdat := box("mdat", []byte("AUDIODATAHERE"))

	var out []byte
	out = append(out, ftyp...)
	out = append(out, moov...)
	out = append(out, mdat...)
	return out
}

func TestIlstReplaceOffsetCorrectness(t *testing.T) {
	input := buildM4A("Old", []uint32{0x1080})

	before, err := FindTopLevelOffset(input, "mdat")
	require.NoError(t, err)
	require.Greater(t, before, 0)

	boxes, err := ParseTopLevel(input)
	require.NoError(t, err)

	newItems := []IlstItem{{Tag: [4]byte{0xA9, 'n', 'a', 'm'}, Value: TextValue("A")}}
	boxes, err = ReplaceIlst(boxes, newItems)
	require.NoError(t, err)

	unshifted, after := EncodeTopLevel(boxes)
	_ = unshifted
	require.GreaterOrEqual(t, after, 0)

	delta := int64(after) - int64(before)
	boxes = ShiftStco(boxes, delta)

	output, newMdatOffset := EncodeTopLevel(boxes)
	assert.Equal(t, after, newMdatOffset)

	newBoxes, err := ParseTopLevel(output)
	require.NoError(t, err)
	stco := findStco(t, newBoxes)
	assert.Equal(t, uint32(0x1080)+uint32(delta), stco.Offsets[0])
}

func findStco(t *testing.T, boxes []Box) StcoBox {
	t.Helper()
	for _, b := range boxes {
		switch v := b.(type) {
		case StcoBox:
			return v
		case ContainerBox:
			if s := findStcoIn(v.Children); s != nil {
				return *s
			}
		case MetaBox:
			if s := findStcoIn(v.Children); s != nil {
				return *s
			}
		}
	}
	t.Fatal("stco not found")
	return StcoBox{}
}

func findStcoIn(boxes []Box) *StcoBox {
	for _, b := range boxes {
		switch v := b.(type) {
		case StcoBox:
			return &v
		case ContainerBox:
			if s := findStcoIn(v.Children); s != nil {
				return s
			}
		case MetaBox:
			if s := findStcoIn(v.Children); s != nil {
				return s
			}
		}
	}
	return nil
}

func TestContainerSizeInvariant(t *testing.T) {
	input := buildM4A("Old", []uint32{0x40})
	boxes, err := ParseTopLevel(input)
	require.NoError(t, err)

	encoded, _ := EncodeTopLevel(boxes)

	// Walk the re-encoded bytes and verify every container on the ilst
	// spine satisfies size = 8 (or 12 for meta) + sum(child sizes).
	moovOff, err := FindTopLevelOffset(encoded, "moov")
	require.NoError(t, err)
	moovSize := int(getUint32(encoded[moovOff : moovOff+4]))
	assert.Equal(t, moovSize, len(encoded[moovOff:moovOff+moovSize]))

	var checkSpine func(b []byte, rest []string)
	checkSpine = func(b []byte, rest []string) {
		header := 8
		if string(b[4:8]) == "meta" {
			header = 12
		}
		sum := 0
		var next []byte
		for pos := header; pos+8 <= len(b); {
			size := int(getUint32(b[pos : pos+4]))
			require.GreaterOrEqual(t, size, 8)
			if len(rest) > 0 && string(b[pos+4:pos+8]) == rest[0] {
				next = b[pos : pos+size]
			}
			sum += size
			pos += size
		}
		assert.Equal(t, len(b), header+sum, "container %q", string(b[4:8]))
		if len(rest) > 0 {
			require.NotNil(t, next, "child %q not found", rest[0])
			checkSpine(next, rest[1:])
		}
	}
	checkSpine(encoded[moovOff:moovOff+moovSize], []string{"udta", "meta", "ilst"})
}

func TestCo64Rejected(t *testing.T) {
	bad := box("co64", []byte{0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0})
	_, err := ParseTopLevel(bad)
	assert.Error(t, err)
}

func TestUnknownUdtaChildRejected(t *testing.T) {
	bogus := box("xxxx", []byte("nope"))
	udta := box("udta", bogus)
	_, err := ParseTopLevel(udta)
	assert.Error(t, err)
}

func TestParseRDNSItemWithEmptyEncodingParams(t *testing.T) {
	item := IlstItem{
		Tag:   [4]byte{'-', '-', '-', '-'},
		Mean:  "com.apple.iTunes",
		Name:  "Encoding Params",
		Value: ItunesValue{TypeCode: DataTypeBinary, Binary: nil},
	}
	raw := encodeRDNSItem(nil, item)

	parsed, err := parseIlst(raw)
	require.NoError(t, err)
	require.Len(t, parsed.Items, 1)
	assert.Equal(t, "com.apple.iTunes", parsed.Items[0].Mean)
	assert.Equal(t, "Encoding Params", parsed.Items[0].Name)
	assert.Empty(t, parsed.Items[0].Value.Binary)
}
