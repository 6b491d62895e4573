package dump

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func synchsafe(n uint32) [4]byte {
	return [4]byte{
		byte((n >> 21) & 0x7F),
		byte((n >> 14) & 0x7F),
		byte((n >> 7) & 0x7F),
		byte(n & 0x7F),
	}
}

func textFrame(id, value string) []byte {
	payload := append([]byte{0}, []byte(value)...)
	out := []byte(id)
	out = append(out, byte(len(payload)>>24), byte(len(payload)>>16), byte(len(payload)>>8), byte(len(payload)))
	out = append(out, 0, 0)
	out = append(out, payload...)
	return out
}

func TestFileDumpsMP3Frames(t *testing.T) {
	frames := append(textFrame("TIT2", "Song Title"), textFrame("TPE1", "Artist")...)
	size := synchsafe(uint32(len(frames)))
	data := []byte("ID3")
	data = append(data, 3, 0, 0)
	data = append(data, size[:]...)
	data = append(data, frames...)

	dir := t.TempDir()
	path := filepath.Join(dir, "song.mp3")
	require.NoError(t, os.WriteFile(path, data, 0o644))

	var buf bytes.Buffer
	require.NoError(t, File(&buf, path))

	out := buf.String()
	assert.Contains(t, out, "TIT2: Song Title")
	assert.Contains(t, out, "TPE1: Artist")
}

func TestFileRejectsUnknownExtension(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "song.txt")
	require.NoError(t, os.WriteFile(path, []byte("x"), 0o644))

	var buf bytes.Buffer
	err := File(&buf, path)
	assert.Error(t, err)
}
