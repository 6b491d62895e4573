package id3

import (
	"bytes"
	"fmt"
	"io"
	"strings"
	"unicode/utf16"

	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// Text encoding bytes.
const (
	EncodingISO88591 = 0x00
	EncodingUTF16BOM = 0x01
	EncodingUTF16BE  = 0x02
	EncodingUTF8     = 0x03
)

// decodeRest decodes data to the end of the slice using the given encoding
// byte.
func decodeRest(data []byte, encoding byte) (string, error) {
	switch encoding {
	case EncodingISO88591:
		return decodeLatin1(data), nil
	case EncodingUTF8:
		return string(data), nil
	case EncodingUTF16BOM:
		return decodeUTF16BOM(data)
	case EncodingUTF16BE:
		return decodeUTF16BE(data), nil
	default:
		return "", fmt.Errorf("unrecognized text encoding byte 0x%02x", encoding)
	}
}

// readToNull decodes a NUL-terminated string starting at the head of data,
// returning the decoded string and the number of input bytes consumed
// including the terminator.
func readToNull(data []byte, encoding byte) (string, int, error) {
	switch encoding {
	case EncodingISO88591, EncodingUTF8:
		idx := bytes.IndexByte(data, 0x00)
		if idx < 0 {
			return "", 0, fmt.Errorf("missing NUL terminator")
		}
		s, err := decodeRest(data[:idx], encoding)
		if err != nil {
			return "", 0, err
		}
		return s, idx + 1, nil
	case EncodingUTF16BOM, EncodingUTF16BE:
		idx := -1
		for i := 0; i+1 < len(data); i += 2 {
			if data[i] == 0x00 && data[i+1] == 0x00 {
				idx = i
				break
			}
		}
		if idx < 0 {
			return "", 0, fmt.Errorf("missing UTF-16 NUL terminator")
		}
		s, err := decodeRest(data[:idx], encoding)
		if err != nil {
			return "", 0, err
		}
		return s, idx + 2, nil
	default:
		return "", 0, fmt.Errorf("unrecognized text encoding byte 0x%02x", encoding)
	}
}

func decodeLatin1(data []byte) string {
	runes := make([]rune, len(data))
	for i, b := range data {
		runes[i] = rune(b)
	}
	return string(runes)
}

// decodeUTF16BOM decodes UTF-16 with a mandatory leading byte-order mark,
// failing if the BOM is absent.
func decodeUTF16BOM(data []byte) (string, error) {
	enc := unicode.UTF16(unicode.BigEndian, unicode.ExpectBOM)
	r := transform.NewReader(bytes.NewReader(data), enc.NewDecoder())
	out, err := io.ReadAll(r)
	if err != nil {
		return "", fmt.Errorf("decode UTF-16 (BOM): %w", err)
	}
	return string(out), nil
}

// decodeUTF16BE decodes UTF-16BE with no BOM expected or consumed.
func decodeUTF16BE(data []byte) string {
	if len(data)%2 != 0 {
		data = data[:len(data)-1]
	}
	units := make([]uint16, len(data)/2)
	for i := range units {
		units[i] = uint16(data[2*i])<<8 | uint16(data[2*i+1])
	}
	return string(utf16.Decode(units))
}

// isASCII reports whether every rune in s is in the ASCII range, the switch
// that decides between ISO-8859-1 (0) and UTF-8 (3) on encode.
func isASCII(s string) bool {
	for _, r := range s {
		if r > 0x7F {
			return false
		}
	}
	return true
}

// chooseEncoding picks the encoding byte the encoder recomputes for a set
// of payload strings: 0 iff every one is pure ASCII, else 3.
func chooseEncoding(strs ...string) byte {
	for _, s := range strs {
		if !isASCII(s) {
			return EncodingUTF8
		}
	}
	return EncodingISO88591
}

// encodeText encodes s per the given encoding byte. Only 0 and 3 are ever
// produced by this package's own encoder (chooseEncoding never returns
// anything else), but both are accepted here for symmetry with decodeRest.
func encodeText(s string, encoding byte) ([]byte, error) {
	switch encoding {
	case EncodingISO88591:
		if !isASCII(s) {
			return nil, fmt.Errorf("cannot encode non-ASCII string as ISO-8859-1")
		}
		return []byte(s), nil
	case EncodingUTF8:
		return []byte(s), nil
	default:
		return nil, fmt.Errorf("unsupported encode target 0x%02x", encoding)
	}
}

// normalizeTDRC rewrites a legacy-punctuated TDRC value
// ("1997.12.25;14.30.00") into ISO form ("1997-12-25T14:30:00").
func normalizeTDRC(value string) string {
	parts := strings.SplitN(value, ";", 2)
	date := strings.ReplaceAll(parts[0], ".", "-")
	if len(parts) == 1 {
		return date
	}
	tm := strings.ReplaceAll(parts[1], ".", ":")
	return date + "T" + tm
}
