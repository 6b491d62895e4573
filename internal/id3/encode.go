package id3

// Encode emits frames as a v2.4 ID3v2 tag, always with a footer. Flags are
// set as follows: the experimental-indicator bit is always set,
// and the footer-present bit is always set because a footer is always
// emitted.
func Encode(frames []Frame) ([]byte, error) {
	var body []byte
	for _, f := range frames {
		fb, err := encodeFrame(f)
		if err != nil {
			return nil, err
		}
		body = append(body, fb...)
	}

	size := encodeSynchsafe(uint32(len(body)))
	flags := byte(FlagExperimental | FlagFooterPresent)

	out := make([]byte, 0, 10+len(body)+10)
	out = append(out, headerBytes("ID3", 4, 0, flags, size)...)
	out = append(out, body...)
	out = append(out, headerBytes("3DI", 4, 0, flags, size)...)
	return out, nil
}

func headerBytes(magic string, major, minor, flags byte, size [4]byte) []byte {
	b := make([]byte, 0, 10)
	b = append(b, magic...)
	b = append(b, major, minor, flags)
	b = append(b, size[:]...)
	return b
}

// encodeFrame writes one frame: ID, synchsafe payload size, zero flags
// (frames are always written with flags 00 00), and the encoded
// payload.
func encodeFrame(f Frame) ([]byte, error) {
	payload, err := f.Body.payload()
	if err != nil {
		return nil, err
	}
	size := encodeSynchsafe(uint32(len(payload)))

	out := make([]byte, 0, 10+len(payload))
	out = append(out, f.ID...)
	out = append(out, size[:]...)
	out = append(out, 0, 0)
	out = append(out, payload...)
	return out, nil
}
