package id3

import (
	"encoding/binary"
	"fmt"

	"github.com/audiotag/tag/internal/tagerr"
)

// textFrameIDs are decoded as plain TextFrame bodies: encoding byte followed
// by the remainder of the payload as a string.
var textFrameIDs = map[string]bool{
	"TIT2": true, "TPE1": true, "TPE2": true, "TRCK": true, "TALB": true,
	"TSOA": true, "TCON": true, "TSSE": true, "TXXX": true, "TDRC": true,
	"TLEN": true,
}

// Decode parses the ID3v2 header and frame stream starting at the head of
// data. It returns the decoded tag and the total byte size of the tag
// region (header, frames and padding, plus the 10-byte footer when a v2.4
// header declares one), so the audio region starts at that offset.
func Decode(data []byte) (*Tag, int, error) {
	if len(data) < 10 || string(data[0:3]) != "ID3" {
		return nil, 0, tagerr.New("", tagerr.KindFormat, "missing ID3 magic")
	}

	major := data[3]
	minor := data[4]
	flags := data[5]
	size := decodeSynchsafe(data[6:10])

	pos := 10
	tagEnd := 10 + int(size)
	if tagEnd > len(data) {
		return nil, 0, tagerr.New("", tagerr.KindFormat, "ID3 tag size exceeds file length")
	}

	if flags&FlagExtendedHeader != 0 {
		skip, err := extendedHeaderSize(data[pos:], major)
		if err != nil {
			return nil, 0, err
		}
		pos += skip
	}

	tag := &Tag{Header: Header{Major: major, Minor: minor, Flags: flags}}

	var tyer string
	var tdatDay, tdatMonth string

	for pos < tagEnd {
		if pos+4 <= len(data) && allZero(data[pos:pos+4]) {
			break
		}
		if pos+10 > len(data) {
			return nil, 0, tagerr.New("", tagerr.KindFormat, "truncated frame header")
		}

		id := string(data[pos : pos+4])
		for _, c := range []byte(id) {
			if !((c >= 'A' && c <= 'Z') || (c >= '0' && c <= '9')) {
				return nil, 0, tagerr.New("", tagerr.KindFormat, fmt.Sprintf("invalid frame id %q", id))
			}
		}

		var frameSize uint32
		if major <= 3 {
			frameSize = binary.BigEndian.Uint32(data[pos+4 : pos+8])
		} else {
			frameSize = decodeSynchsafe(data[pos+4 : pos+8])
		}
		frameFlags := binary.BigEndian.Uint16(data[pos+8 : pos+10])
		if frameFlags != 0 {
			return nil, 0, tagerr.New("", tagerr.KindFormat, fmt.Sprintf("frame %s has nonzero flags", id))
		}

		dataStart := pos + 10
		dataEnd := dataStart + int(frameSize)
		if dataEnd > len(data) {
			return nil, 0, tagerr.New("", tagerr.KindFormat, fmt.Sprintf("frame %s overruns tag", id))
		}
		body := data[dataStart:dataEnd]
		pos = dataEnd

		switch {
		case id == "TYER":
			val, err := decodeTextFrameValue(body)
			if err != nil {
				return nil, 0, wrapFrameErr(id, err)
			}
			year := val
			if tdatDay != "" && tdatMonth != "" {
				appendIfNonEmpty(tag, "TDRC", TextFrame{Value: year + "-" + tdatMonth + "-" + tdatDay})
				tdatDay, tdatMonth = "", ""
			} else {
				tyer = year
			}
		case id == "TDAT":
			val, err := decodeTextFrameValue(body)
			if err != nil {
				return nil, 0, wrapFrameErr(id, err)
			}
			if len(val) < 4 {
				return nil, 0, tagerr.New("", tagerr.KindFormat, "TDAT must be 4 digits DDMM")
			}
			day := val[0:2]
			month := val[2:4]
			if tyer != "" {
				appendIfNonEmpty(tag, "TDRC", TextFrame{Value: tyer + "-" + month + "-" + day})
				tyer = ""
			} else {
				tdatDay, tdatMonth = day, month
			}
		case id == "TLEN":
			// Parsed then dropped silently.
			if _, err := decodeTextFrameValue(body); err != nil {
				return nil, 0, wrapFrameErr(id, err)
			}
		case id == "TDRC":
			val, err := decodeTextFrameValue(body)
			if err != nil {
				return nil, 0, wrapFrameErr(id, err)
			}
			appendIfNonEmpty(tag, id, TextFrame{Value: normalizeTDRC(val)})
		case textFrameIDs[id]:
			val, err := decodeTextFrameValue(body)
			if err != nil {
				return nil, 0, wrapFrameErr(id, err)
			}
			appendIfNonEmpty(tag, id, TextFrame{Value: val})
		case id == "COMM" || id == "USLT":
			cf, err := decodeCommentFrame(body)
			if err != nil {
				return nil, 0, wrapFrameErr(id, err)
			}
			appendIfNonEmpty(tag, id, cf)
		case id == "APIC":
			pf, err := decodePictureFrame(body)
			if err != nil {
				return nil, 0, wrapFrameErr(id, err)
			}
			appendIfNonEmpty(tag, id, pf)
		default:
			return nil, 0, tagerr.New("", tagerr.KindFormat, fmt.Sprintf("unrecognized frame id %q", id))
		}
	}

	// A TYER or TDAT seen in isolation (no matching partner) is dropped
	// silently; nothing is emitted for it. This is deliberate, not an
	// omission.

	regionEnd := tagEnd
	if major >= 4 && flags&FlagFooterPresent != 0 {
		regionEnd += 10
		if regionEnd > len(data) {
			return nil, 0, tagerr.New("", tagerr.KindFormat, "ID3 footer extends past end of file")
		}
	}
	return tag, regionEnd, nil
}

func appendIfNonEmpty(tag *Tag, id string, body FrameBody) {
	if body.empty() {
		return
	}
	tag.Frames = append(tag.Frames, Frame{ID: id, Body: body})
}

func allZero(b []byte) bool {
	for _, c := range b {
		if c != 0 {
			return false
		}
	}
	return true
}

func wrapFrameErr(id string, err error) error {
	return tagerr.Wrap("", tagerr.KindFormat, fmt.Sprintf("frame %s: %v", id, err), err)
}

// decodeTextFrameValue decodes a plain text frame body: one encoding byte
// followed by the remainder of the payload.
func decodeTextFrameValue(body []byte) (string, error) {
	if len(body) == 0 {
		return "", nil
	}
	return decodeRest(body[1:], body[0])
}

func decodeCommentFrame(body []byte) (CommentFrame, error) {
	if len(body) < 4 {
		return CommentFrame{}, fmt.Errorf("comment frame too short")
	}
	encoding := body[0]
	var lang [3]byte
	copy(lang[:], body[1:4])
	desc, consumed, err := readToNull(body[4:], encoding)
	if err != nil {
		return CommentFrame{}, err
	}
	text, err := decodeRest(body[4+consumed:], encoding)
	if err != nil {
		return CommentFrame{}, err
	}
	return CommentFrame{Language: lang, Description: desc, Text: text}, nil
}

func decodePictureFrame(body []byte) (PictureFrame, error) {
	if len(body) < 1 {
		return PictureFrame{}, fmt.Errorf("picture frame too short")
	}
	encoding := body[0]
	mime, consumed, err := readToNull(body[1:], EncodingISO88591)
	if err != nil {
		return PictureFrame{}, err
	}
	off := 1 + consumed
	if off >= len(body) {
		return PictureFrame{}, fmt.Errorf("picture frame missing type byte")
	}
	picType := body[off]
	off++
	desc, consumed, err := readToNull(body[off:], encoding)
	if err != nil {
		return PictureFrame{}, err
	}
	off += consumed
	imgData := body[off:]
	return PictureFrame{MIME: mime, PicType: picType, Description: desc, Data: imgData}, nil
}

// extendedHeaderSize returns the number of bytes (starting at the extended
// header's own first byte) to skip over it as opaque:
// v2.4 encodes its own total size as a synchsafe integer that includes
// itself; v2.3 encodes a plain size that excludes only the 4-byte size
// field itself (the extended flags and padding size are counted in it).
func extendedHeaderSize(data []byte, major byte) (int, error) {
	if len(data) < 4 {
		return 0, tagerr.New("", tagerr.KindFormat, "truncated extended header")
	}
	if major >= 4 {
		size := decodeSynchsafe(data[0:4])
		return int(size), nil
	}
	size := binary.BigEndian.Uint32(data[0:4])
	return 4 + int(size), nil
}
