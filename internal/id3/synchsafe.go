package id3

// Synchsafe integers pack a 32-bit value into four bytes using only the low
// 7 bits of each byte, so the encoded size can never contain a false MPEG
// frame-sync pattern (0xFF followed by a byte with its top 3 bits set).

// decodeSynchsafe reads a 4-byte big-endian synchsafe integer.
func decodeSynchsafe(b []byte) uint32 {
	_ = b[3]
	return uint32(b[0])<<21 | uint32(b[1])<<14 | uint32(b[2])<<7 | uint32(b[3])
}

// encodeSynchsafe writes n as a 4-byte synchsafe integer. n must be < 2^28;
// larger values silently lose their high bits, mirroring the wire format's
// own ceiling.
func encodeSynchsafe(n uint32) [4]byte {
	var b [4]byte
	b[3] = byte(n & 0x7F)
	n >>= 7
	b[2] = byte(n & 0x7F)
	n >>= 7
	b[1] = byte(n & 0x7F)
	n >>= 7
	b[0] = byte(n & 0x7F)
	return b
}
