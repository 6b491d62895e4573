package mp4

import (
	"fmt"

	"github.com/audiotag/tag/internal/tagerr"
)

// Data-box type-class codes (low 3 bytes of the 4-byte type-class word).
const (
	DataTypeBinary  = 0x00
	DataTypeText    = 0x01
	DataTypeInteger = 0x15
)

// ItunesValue is the payload of an ilst item's data sub-box.
type ItunesValue struct {
	TypeCode uint32 // DataTypeBinary, DataTypeText, or DataTypeInteger
	Text     string
	Binary   []byte // raw bytes, width is tag-dependent (see widthForTag)
}

func TextValue(s string) ItunesValue {
	return ItunesValue{TypeCode: DataTypeText, Text: s}
}

// BinaryValue builds a fixed-width big-endian binary value, used for trkn.
func BinaryValue(n uint32, width int) ItunesValue {
	b := make([]byte, width)
	for i := width - 1; i >= 0; i-- {
		b[i] = byte(n)
		n >>= 8
	}
	return ItunesValue{TypeCode: DataTypeBinary, Binary: b}
}

// IlstItem is one child of ilst: either a tag item (Tag != "----") or a
// reverse-DNS item (Tag == "----", Mean/Name set).
type IlstItem struct {
	Tag   [4]byte
	Mean  string
	Name  string
	Value ItunesValue
}

func isRDNS(tag [4]byte) bool {
	return tag == [4]byte{'-', '-', '-', '-'}
}

// IlstBox is the iTunes metadata item list.
type IlstBox struct {
	Items []IlstItem
}

func (b IlstBox) boxType() [4]byte { return [4]byte{'i', 'l', 's', 't'} }

func (b IlstBox) encode(dst []byte) []byte {
	var body []byte
	for _, item := range b.Items {
		body = encodeIlstItem(body, item)
	}
	header := make([]byte, 8)
	putUint32(header[0:4], uint32(8+len(body)))
	copy(header[4:8], "ilst")
	dst = append(dst, header...)
	dst = append(dst, body...)
	return dst
}

func encodeIlstItem(dst []byte, item IlstItem) []byte {
	if isRDNS(item.Tag) {
		return encodeRDNSItem(dst, item)
	}
	return encodeTagItem(dst, item)
}

// encodeTagItem emits size|tag|dataBox, where dataBox is
// size|"data"|version|flags|reserved|value.
func encodeTagItem(dst []byte, item IlstItem) []byte {
	dataBody := dataSubBoxBytes(item.Value)
	itemSize := 8 + len(dataBody)

	header := make([]byte, 8)
	putUint32(header[0:4], uint32(itemSize))
	copy(header[4:8], item.Tag[:])
	dst = append(dst, header...)
	dst = append(dst, dataBody...)
	return dst
}

// dataSubBoxBytes emits the full data sub-box (including its own size/type
// header) for a value: size(4)+"data"(4)+version(1)+flags(3)+reserved(4)+payload.
func dataSubBoxBytes(v ItunesValue) []byte {
	var payload []byte
	var flags [3]byte
	switch v.TypeCode {
	case DataTypeText:
		payload = []byte(v.Text)
		flags = [3]byte{0, 0, 1}
	case DataTypeBinary:
		payload = v.Binary
		flags = [3]byte{0, 0, 0}
	case DataTypeInteger:
		payload = v.Binary
		flags = [3]byte{0, 0, 0}
	}
	size := 16 + len(payload)
	out := make([]byte, 16, size)
	putUint32(out[0:4], uint32(size))
	copy(out[4:8], "data")
	out[8] = 0
	copy(out[9:12], flags[:])
	// reserved locale, out[12:16] already zero
	out = append(out, payload...)
	// restore the type-class word into bytes [9:12]; flags above doubles
	// as the type-class low 3 bytes since DataType* constants fit in a
	// byte and the high bytes of the type-class word are always zero.
	out[9] = 0
	out[10] = 0
	out[11] = byte(v.TypeCode)
	return out
}

func encodeRDNSItem(dst []byte, item IlstItem) []byte {
	dataBody := dataSubBoxBytes(item.Value)
	meanBody := []byte(item.Mean)
	nameBody := []byte(item.Name)

	meanSize := 12 + len(meanBody)
	nameSize := 12 + len(nameBody)
	itemSize := 8 + meanSize + nameSize + len(dataBody)

	header := make([]byte, 8)
	putUint32(header[0:4], uint32(itemSize))
	copy(header[4:8], "----")
	dst = append(dst, header...)

	mean := make([]byte, 12, meanSize)
	putUint32(mean[0:4], uint32(meanSize))
	copy(mean[4:8], "mean")
	mean[8] = 0
	mean[9], mean[10], mean[11] = 0, 0, 1
	mean = append(mean, meanBody...)
	dst = append(dst, mean...)

	name := make([]byte, 12, nameSize)
	putUint32(name[0:4], uint32(nameSize))
	copy(name[4:8], "name")
	name[8] = 0
	name[9], name[10], name[11] = 0, 0, 1
	name = append(name, nameBody...)
	dst = append(dst, name...)

	dst = append(dst, dataBody...)
	return dst
}

// tagHasFixedWidth reports whether tag reserves a fixed binary width
// regardless of the declared data-box size.
func tagHasFixedWidth(tag [4]byte) bool {
	switch string(tag[:]) {
	case "trkn", "disk", "plID", "atID", "cmID", "cnID", "geID", "sfID":
		return true
	default:
		return false
	}
}

// widthForTag returns the binary payload width (bytes) for 0x00/0x15
// data-typed values under a given tag, per the tag-dependent width table.
func widthForTag(tag [4]byte) int {
	switch string(tag[:]) {
	case "trkn", "disk":
		return 4
	case "plID":
		return 8
	case "atID", "cmID", "cnID", "geID", "sfID":
		return 4
	default:
		return 1
	}
}

// parseIlst decodes an ilst box body (the bytes after the 8-byte box
// header) into an IlstBox.
func parseIlst(data []byte) (IlstBox, error) {
	var box IlstBox
	pos := 0
	for pos < len(data) {
		if pos+8 > len(data) {
			return box, tagerr.New("", tagerr.KindFormat, "truncated ilst item")
		}
		size := int(getUint32(data[pos : pos+4]))
		if size < 8 || pos+size > len(data) {
			return box, tagerr.New("", tagerr.KindFormat, "ilst item size out of range")
		}
		var tag [4]byte
		copy(tag[:], data[pos+4:pos+8])
		itemBody := data[pos+8 : pos+size]

		if isRDNS(tag) {
			item, err := parseRDNSItem(itemBody)
			if err != nil {
				return box, err
			}
			box.Items = append(box.Items, item)
		} else {
			value, err := parseDataSubBox(itemBody, tag)
			if err != nil {
				return box, err
			}
			box.Items = append(box.Items, IlstItem{Tag: tag, Value: value})
		}
		pos += size
	}
	return box, nil
}

func parseRDNSItem(data []byte) (IlstItem, error) {
	pos := 0
	var mean, name string
	var value ItunesValue
	for pos < len(data) {
		if pos+8 > len(data) {
			return IlstItem{}, tagerr.New("", tagerr.KindFormat, "truncated ---- sub-box")
		}
		size := int(getUint32(data[pos : pos+4]))
		typ := string(data[pos+4 : pos+8])
		if size < 8 || pos+size > len(data) {
			return IlstItem{}, tagerr.New("", tagerr.KindFormat, "---- sub-box size out of range")
		}
		body := data[pos+8 : pos+size]
		switch typ {
		case "mean":
			mean = string(body[4:])
		case "name":
			name = string(body[4:])
		case "data":
			v, err := parseDataSubBoxBody(data[pos:pos+size], [4]byte{'-', '-', '-', '-'}, name)
			if err != nil {
				return IlstItem{}, err
			}
			value = v
		default:
			return IlstItem{}, tagerr.New("", tagerr.KindFormat, fmt.Sprintf("unexpected ---- child %q", typ))
		}
		pos += size
	}
	return IlstItem{Tag: [4]byte{'-', '-', '-', '-'}, Mean: mean, Name: name, Value: value}, nil
}

// parseDataSubBox parses a tag item's single data sub-box, given the full
// item body (the data box occupies the whole thing).
func parseDataSubBox(itemBody []byte, tag [4]byte) (ItunesValue, error) {
	if len(itemBody) < 8 || string(itemBody[4:8]) != "data" {
		return ItunesValue{}, tagerr.New("", tagerr.KindFormat, "ilst item missing data sub-box")
	}
	return parseDataSubBoxBody(itemBody, tag, "")
}

// parseDataSubBoxBody decodes a data sub-box's content (version, type-class,
// reserved, payload) given the data box's own bytes including its size|type
// header. name is the ---- item's key, used for the "Encoding Params" quirk.
func parseDataSubBoxBody(data []byte, tag [4]byte, name string) (ItunesValue, error) {
	if len(data) < 16 {
		return ItunesValue{}, tagerr.New("", tagerr.KindFormat, "data sub-box too short")
	}
	typeClass := uint32(data[9])<<16 | uint32(data[10])<<8 | uint32(data[11])
	payload := data[16:]

	switch typeClass {
	case DataTypeText:
		return ItunesValue{TypeCode: DataTypeText, Text: string(payload)}, nil
	case DataTypeBinary, DataTypeInteger:
		if name == "Encoding Params" {
			return ItunesValue{TypeCode: DataTypeBinary, Binary: nil}, nil
		}
		// trkn/disk/atID/.../plID reserve a fixed width regardless of
		// declared type class; other 0x15 items are read as 1 byte (the
		// last payload byte); other 0x00 items keep whatever width the
		// data box actually carries (data-box-size - 16).
		width := len(payload)
		if tagHasFixedWidth(tag) {
			width = widthForTag(tag)
		} else if typeClass == DataTypeInteger {
			width = 1
		}
		if width > len(payload) {
			width = len(payload)
		}
		raw := payload
		if len(raw) > width {
			raw = raw[len(raw)-width:]
		}
		if string(tag[:]) == "plID" && len(raw) == 8 {
			// plID is read as u64 and truncated to u32.
			raw = raw[4:]
		}
		return ItunesValue{TypeCode: typeClass, Binary: append([]byte(nil), raw...)}, nil
	default:
		return ItunesValue{}, tagerr.New("", tagerr.KindFormat, fmt.Sprintf("unknown ilst data type 0x%x", typeClass))
	}
}
