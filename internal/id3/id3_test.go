package id3

import (
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSynchsafeRoundTrip(t *testing.T) {
	samples := []uint32{0, 1, 127, 128, 16383, 16384, 1<<28 - 1}
	for _, n := range samples {
		enc := encodeSynchsafe(n)
		for _, b := range enc {
			assert.Less(t, b, byte(0x80))
		}
		assert.Equal(t, n, decodeSynchsafe(enc[:]))
	}
}

func TestChooseEncodingASCIIVsUTF8(t *testing.T) {
	assert.Equal(t, byte(EncodingISO88591), chooseEncoding("Hello World"))
	assert.Equal(t, byte(EncodingUTF8), chooseEncoding("Héllo"))
	assert.Equal(t, byte(EncodingUTF8), chooseEncoding("ascii", "日本語"))
}

func buildV23Tag(frames []byte) []byte {
	size := encodeSynchsafe(uint32(len(frames)))
	out := []byte("ID3")
	out = append(out, 3, 0, 0)
	out = append(out, size[:]...)
	out = append(out, frames...)
	return out
}

func textFrameBytesV23(id string, value string) []byte {
	payload := append([]byte{EncodingISO88591}, []byte(value)...)
	out := []byte(id)
	var size [4]byte
	size[0] = byte(len(payload) >> 24)
	size[1] = byte(len(payload) >> 16)
	size[2] = byte(len(payload) >> 8)
	size[3] = byte(len(payload))
	out = append(out, size[:]...)
	out = append(out, 0, 0)
	out = append(out, payload...)
	return out
}

func TestDateFolding(t *testing.T) {
	var frames []byte
	frames = append(frames, textFrameBytesV23("TYER", "1997")...)
	frames = append(frames, textFrameBytesV23("TDAT", "2512")...)
	data := buildV23Tag(frames)

	tag, _, err := Decode(data)
	require.NoError(t, err)
	require.Len(t, tag.Frames, 1)
	assert.Equal(t, "TDRC", tag.Frames[0].ID)
	tf, ok := tag.Frames[0].Body.(TextFrame)
	require.True(t, ok)
	assert.Equal(t, "1997-12-25", tf.Value)
}

func TestPartialDateDropped(t *testing.T) {
	frames := textFrameBytesV23("TYER", "1997")
	data := buildV23Tag(frames)

	tag, _, err := Decode(data)
	require.NoError(t, err)
	assert.Len(t, tag.Frames, 0)
}

func TestNormalizeTDRC(t *testing.T) {
	assert.Equal(t, "1997-12-25T14:30:00", normalizeTDRC("1997.12.25;14.30.00"))
	assert.Equal(t, "1997-12-25", normalizeTDRC("1997.12.25"))
}

func TestFrameRoundTripSetEquality(t *testing.T) {
	frames := []Frame{
		{ID: "TIT2", Body: TextFrame{Value: "Old"}},
		{ID: "TPE1", Body: TextFrame{Value: "X"}},
		{ID: "TALB", Body: TextFrame{Value: "Y"}},
		{ID: "COMM", Body: CommentFrame{Language: [3]byte{'e', 'n', 'g'}, Description: "", Text: "hi"}},
		{ID: "APIC", Body: PictureFrame{MIME: "image/png", PicType: 3, Description: "cover", Data: []byte{1, 2, 3}}},
	}

	encoded, err := Encode(frames)
	require.NoError(t, err)

	decoded, _, err := Decode(encoded)
	require.NoError(t, err)
	require.Len(t, decoded.Frames, len(frames))

	want := frameKeys(frames)
	got := frameKeys(decoded.Frames)
	sort.Strings(want)
	sort.Strings(got)
	assert.Equal(t, want, got)
}

func frameKeys(frames []Frame) []string {
	keys := make([]string, len(frames))
	for i, f := range frames {
		switch b := f.Body.(type) {
		case TextFrame:
			keys[i] = f.ID + ":" + b.Value
		case CommentFrame:
			keys[i] = f.ID + ":" + string(b.Language[:]) + ":" + b.Description + ":" + b.Text
		case PictureFrame:
			keys[i] = f.ID + ":" + b.MIME + ":" + b.Description
		}
	}
	return keys
}

func TestEncodeSetsExperimentalAndFooterFlags(t *testing.T) {
	encoded, err := Encode([]Frame{{ID: "TIT2", Body: TextFrame{Value: "Hi"}}})
	require.NoError(t, err)
	assert.Equal(t, byte(FlagExperimental|FlagFooterPresent), encoded[5])
	assert.Equal(t, "3DI", string(encoded[len(encoded)-10:len(encoded)-7]))
}

func TestDecodeRejectsUnrecognizedFrameID(t *testing.T) {
	frames := textFrameBytesV23("ZZZZ", "x")
	data := buildV23Tag(frames)
	_, _, err := Decode(data)
	assert.Error(t, err)
}

func TestDecodeUTF16RequiresBOM(t *testing.T) {
	s, err := decodeUTF16BOM([]byte{0xFE, 0xFF, 0x00, 0x48, 0x00, 0x69})
	require.NoError(t, err)
	assert.Equal(t, "Hi", s)

	_, err = decodeUTF16BOM([]byte{0x00, 0x48, 0x00, 0x69})
	assert.Error(t, err)
}
