package pipeline

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/audiotag/tag/internal/mp4"
)

func putU32(b []byte, v uint32) {
	b[0] = byte(v >> 24)
	b[1] = byte(v >> 16)
	b[2] = byte(v >> 8)
	b[3] = byte(v)
}

func m4aBox(typ string, payload []byte) []byte {
	out := make([]byte, 8, 8+len(payload))
	putU32(out[0:4], uint32(8+len(payload)))
	copy(out[4:8], typ)
	return append(out, payload...)
}

func m4aFullBox(typ string, payload []byte) []byte {
	out := make([]byte, 12, 12+len(payload))
	putU32(out[0:4], uint32(12+len(payload)))
	copy(out[4:8], typ)
	return append(out, payload...)
}

func m4aDataBox(typeCode byte, value []byte) []byte {
	reservedThenValue := make([]byte, 4, 4+len(value))
	reservedThenValue = append(reservedThenValue, value...)
	out := m4aFullBox("data", reservedThenValue)
	out[11] = typeCode
	return out
}

func m4aTagItem(tag string, dataBox []byte) []byte {
	return m4aBox(tag, dataBox)
}

func buildM4AFile(title string, stcoOffsets []uint32) []byte {
	ilstPayload := m4aTagItem("\xa9nam", m4aDataBox(0x01, []byte(title)))
	ilst := m4aBox("ilst", ilstPayload)
	hdlr := m4aBox("hdlr", []byte("dummy"))
	meta := m4aFullBox("meta", append(append([]byte{}, hdlr...), ilst...))
	udta := m4aBox("udta", meta)

	var stcoPayload []byte
	stcoPayload = append(stcoPayload, 0, 0, 0, 0)
	count := make([]byte, 4)
	putU32(count, uint32(len(stcoOffsets)))
	stcoPayload = append(stcoPayload, count...)
	for _, off := range stcoOffsets {
		var b [4]byte
		putU32(b[:], off)
		stcoPayload = append(stcoPayload, b[:]...)
	}
	stco := m4aBox("stco", stcoPayload)
	stbl := m4aBox("stbl", stco)
	minf := m4aBox("minf", stbl)
	mdia := m4aBox("mdia", minf)
	trak := m4aBox("trak", mdia)
	mvhd := m4aBox("mvhd", []byte("mvhddata"))
	moov := m4aBox("moov", append(append(append([]byte{}, mvhd...), trak...), udta...))

	ftyp := m4aBox("ftyp", []byte("M4A mp42isom"))
	mdat := m4aBox("mdat", []byte("AUDIODATAHERE"))

	var out []byte
	out = append(out, ftyp...)
	out = append(out, moov...)
	out = append(out, mdat...)
	return out
}

func TestMutateM4ASetTitleAndOffsetFixup(t *testing.T) {
	input := buildM4AFile("Old Title", []uint32{0x1080})

	out, err := mutateM4A("song.m4a", input, Request{Title: strp("New Title")})
	require.NoError(t, err)

	boxes, err := mp4.ParseTopLevel(out)
	require.NoError(t, err)

	items := mp4.FindIlst(boxes)
	require.Len(t, items, 1)
	assert.Equal(t, "New Title", items[0].Value.Text)

	before, err := mp4.FindTopLevelOffset(input, "mdat")
	require.NoError(t, err)
	after, err := mp4.FindTopLevelOffset(out, "mdat")
	require.NoError(t, err)
	delta := int64(after) - int64(before)

	var stco mp4.StcoBox
	var find func(bs []mp4.Box) bool
	find = func(bs []mp4.Box) bool {
		for _, b := range bs {
			switch v := b.(type) {
			case mp4.StcoBox:
				stco = v
				return true
			case mp4.ContainerBox:
				if find(v.Children) {
					return true
				}
			case mp4.MetaBox:
				if find(v.Children) {
					return true
				}
			}
		}
		return false
	}
	require.True(t, find(boxes))
	assert.Equal(t, uint32(int64(0x1080)+delta), stco.Offsets[0])
}

func TestMutateM4APreservesNonCollidingItems(t *testing.T) {
	input := buildM4AFile("Old Title", []uint32{0x40})

	out, err := mutateM4A("song.m4a", input, Request{Artist: strp("New Artist")})
	require.NoError(t, err)

	boxes, err := mp4.ParseTopLevel(out)
	require.NoError(t, err)
	items := mp4.FindIlst(boxes)

	var sawName, sawArt, sawAart bool
	for _, it := range items {
		switch string(it.Tag[:]) {
		case "\xa9nam":
			sawName = true
			assert.Equal(t, "Old Title", it.Value.Text)
		case "\xa9ART":
			sawArt = true
			assert.Equal(t, "New Artist", it.Value.Text)
		case "aART":
			sawAart = true
			assert.Equal(t, "New Artist", it.Value.Text)
		}
	}
	assert.True(t, sawName)
	assert.True(t, sawArt)
	assert.True(t, sawAart)
}
