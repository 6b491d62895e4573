package id3

// FrameBody is the variant payload of an ID3v2 frame: Text, Comment (also
// USLT), or Picture (APIC).
type FrameBody interface {
	// payload returns the encoded frame body, including its own leading
	// encoding byte but excluding the 10-byte frame header.
	payload() ([]byte, error)
	// empty reports whether the frame's essential content is empty, in
	// which case the decoder discards it.
	empty() bool
}

// Frame is a single decoded or to-be-encoded ID3v2 frame.
type Frame struct {
	ID    string
	Flags uint16
	Body  FrameBody
}

// TextFrame is the body of a plain text information frame (TIT2, TPE1, ...).
type TextFrame struct {
	Value string
}

func (f TextFrame) payload() ([]byte, error) {
	enc := chooseEncoding(f.Value)
	body, err := encodeText(f.Value, enc)
	if err != nil {
		return nil, err
	}
	return append([]byte{enc}, body...), nil
}

func (f TextFrame) empty() bool { return f.Value == "" }

// CommentFrame is the body of COMM and USLT frames: a 3-byte language code,
// a NUL-terminated content descriptor, and free text.
type CommentFrame struct {
	Language    [3]byte
	Description string
	Text        string
}

func (f CommentFrame) payload() ([]byte, error) {
	enc := chooseEncoding(f.Description, f.Text)
	desc, err := encodeText(f.Description, enc)
	if err != nil {
		return nil, err
	}
	text, err := encodeText(f.Text, enc)
	if err != nil {
		return nil, err
	}
	out := make([]byte, 0, 1+3+len(desc)+1+len(text))
	out = append(out, enc)
	out = append(out, f.Language[:]...)
	out = append(out, desc...)
	out = append(out, 0x00)
	out = append(out, text...)
	return out, nil
}

func (f CommentFrame) empty() bool {
	return f.Description == "" && f.Text == ""
}

// PictureFrame is the body of an APIC frame.
type PictureFrame struct {
	MIME        string
	PicType     byte
	Description string
	Data        []byte
}

func (f PictureFrame) payload() ([]byte, error) {
	enc := chooseEncoding(f.MIME, f.Description)
	mime, err := encodeText(f.MIME, enc)
	if err != nil {
		return nil, err
	}
	desc, err := encodeText(f.Description, enc)
	if err != nil {
		return nil, err
	}
	out := make([]byte, 0, 1+len(mime)+1+1+len(desc)+1+len(f.Data))
	out = append(out, enc)
	out = append(out, mime...)
	out = append(out, 0x00)
	out = append(out, f.PicType)
	out = append(out, desc...)
	out = append(out, 0x00)
	out = append(out, f.Data...)
	return out, nil
}

func (f PictureFrame) empty() bool {
	return f.MIME == "" && f.Description == "" && len(f.Data) == 0
}

// priorityOrder is the documented frame-ordering policy: these IDs
// come first, in this order, followed by any others in first-seen order.
// This is an implementation policy, not a requirement of the ID3v2
// standard.
var priorityOrder = []string{
	"TIT2", "TPE1", "TPE2", "TRCK", "TALB", "TSOA", "TCON", "TDRC", "COMM", "APIC",
}

// priorityIndex returns the frame's position in priorityOrder, or -1 if it
// isn't one of the prioritized IDs.
func priorityIndex(id string) int {
	for i, p := range priorityOrder {
		if p == id {
			return i
		}
	}
	return -1
}

// PriorityIndex exposes priorityIndex to other packages (notably pipeline)
// that need to reproduce the same frame ordering when rebuilding a tag.
func PriorityIndex(id string) int {
	return priorityIndex(id)
}
