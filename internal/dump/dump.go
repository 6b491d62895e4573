// Package dump implements the tag binary's --dump mode: printing every
// decoded frame or ilst item of a file to stdout, covering the Rust
// original's separate "list" and "read_comment" binaries as a read-only
// mode of the same entry point.
package dump

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/audiotag/tag/internal/id3"
	"github.com/audiotag/tag/internal/mp4"
	"github.com/audiotag/tag/internal/tagerr"
)

// File reads path and writes a human-readable dump of its tag contents to w.
func File(w io.Writer, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return tagerr.Wrap(path, tagerr.KindIO, "read input file", err)
	}

	var derr error
	switch strings.ToLower(filepath.Ext(path)) {
	case ".mp3":
		derr = dumpMP3(w, data)
	case ".m4a", ".mp4", ".m4b":
		derr = dumpM4A(w, data)
	default:
		return tagerr.New(path, tagerr.KindArgument, "unrecognized file extension "+filepath.Ext(path))
	}
	if te, ok := derr.(*tagerr.TagError); ok {
		return te.WithPath(path)
	}
	return derr
}

func dumpMP3(w io.Writer, data []byte) error {
	tag, _, err := id3.Decode(data)
	if err != nil {
		return err
	}
	for _, f := range tag.Frames {
		switch b := f.Body.(type) {
		case id3.TextFrame:
			fmt.Fprintf(w, "%s: %s\n", f.ID, b.Value)
		case id3.CommentFrame:
			fmt.Fprintf(w, "%s[%s]: %s\n", f.ID, b.Description, b.Text)
		case id3.PictureFrame:
			fmt.Fprintf(w, "%s: %s %q (%d bytes)\n", f.ID, b.MIME, b.Description, len(b.Data))
		}
	}
	return nil
}

func dumpM4A(w io.Writer, data []byte) error {
	boxes, err := mp4.ParseTopLevel(data)
	if err != nil {
		return err
	}
	for _, item := range mp4.FindIlst(boxes) {
		key := string(item.Tag[:])
		if item.Tag == ([4]byte{'-', '-', '-', '-'}) {
			key = item.Mean + ":" + item.Name
		}
		if item.Value.TypeCode == mp4.DataTypeText {
			fmt.Fprintf(w, "%s: %s\n", key, item.Value.Text)
		} else {
			fmt.Fprintf(w, "%s: %x\n", key, item.Value.Binary)
		}
	}
	return nil
}
