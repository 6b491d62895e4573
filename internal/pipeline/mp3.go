package pipeline

import (
	"os"
	"sort"
	"strings"

	"github.com/audiotag/tag/internal/id3"
	"github.com/audiotag/tag/internal/tagerr"
)

const id3v1TrailerSize = 128

// mutateMP3 applies req to the decoded bytes of an MP3 file and returns the
// full output bytes (rebuilt tag + audio region).
func mutateMP3(path string, data []byte, req Request) ([]byte, error) {
	tag, id3Size, err := id3.Decode(data)
	if err != nil {
		return nil, errWithPath(path, err)
	}

	removeSet := make(map[string]bool, len(req.Remove))
	for _, id := range req.Remove {
		removeSet[strings.ToUpper(id)] = true
	}

	var filtered []id3.Frame
	for _, f := range tag.Frames {
		if removeSet[f.ID] {
			continue
		}
		filtered = append(filtered, f)
	}

	if err := enforceSingleCardinality(filtered, req.Comment != nil || req.CombineComments); err != nil {
		return nil, errWithPath(path, err)
	}

	final, err := buildMP3Frames(path, filtered, req)
	if err != nil {
		return nil, err
	}

	sort.SliceStable(final, func(i, j int) bool {
		return priorityRank(final[i].ID) < priorityRank(final[j].ID)
	})

	encoded, err := id3.Encode(final)
	if err != nil {
		return nil, errWithPath(path, tagerr.Wrap(path, tagerr.KindFormat, "encode ID3 tag", err))
	}

	audio := data[id3Size:]
	if len(audio) >= id3v1TrailerSize && string(audio[len(audio)-id3v1TrailerSize:len(audio)-id3v1TrailerSize+3]) == "TAG" {
		audio = audio[:len(audio)-id3v1TrailerSize]
	}

	out := make([]byte, 0, len(encoded)+len(audio))
	out = append(out, encoded...)
	out = append(out, audio...)
	return out, nil
}

// priorityRank mirrors id3.PriorityIndex but maps the "not prioritized"
// case to a large sentinel so it sorts after every prioritized ID instead
// of before (id3.PriorityIndex uses -1 for that case).
func priorityRank(id string) int {
	if i := id3.PriorityIndex(id); i >= 0 {
		return i
	}
	return 1000
}

// enforceSingleCardinality rejects repeated frame IDs. APIC may repeat; COMM
// may repeat only when commentsHandled (a replacement comment or comment
// combining was requested).
func enforceSingleCardinality(frames []id3.Frame, commentsHandled bool) error {
	counts := map[string]int{}
	for _, f := range frames {
		counts[f.ID]++
	}
	for id, n := range counts {
		if n > 1 && !(id == "COMM" && commentsHandled) && id != "APIC" {
			return tagerr.New("", tagerr.KindFormat, "duplicate frame "+id)
		}
	}
	return nil
}

// buildMP3Frames applies the per-field substitution rules.
func buildMP3Frames(path string, filtered []id3.Frame, req Request) ([]id3.Frame, error) {
	byID := map[string][]id3.Frame{}
	var order []string
	seen := map[string]bool{}
	for _, f := range filtered {
		if !seen[f.ID] {
			seen[f.ID] = true
			order = append(order, f.ID)
		}
		byID[f.ID] = append(byID[f.ID], f)
	}

	single := func(id string, value *string) {
		if value != nil {
			byID[id] = []id3.Frame{{ID: id, Body: id3.TextFrame{Value: *value}}}
			if !seen[id] {
				seen[id] = true
				order = append(order, id)
			}
		}
	}
	single("TIT2", req.Title)
	single("TRCK", req.Track)
	single("TALB", req.Album)
	single("TSOA", req.SortAlbum)
	single("TCON", req.Genre)
	single("TDRC", req.RecordDate)

	if req.Artist != nil {
		byID["TPE1"] = []id3.Frame{{ID: "TPE1", Body: id3.TextFrame{Value: *req.Artist}}}
		byID["TPE2"] = []id3.Frame{{ID: "TPE2", Body: id3.TextFrame{Value: *req.Artist}}}
		for _, id := range []string{"TPE1", "TPE2"} {
			if !seen[id] {
				seen[id] = true
				order = append(order, id)
			}
		}
	}

	switch {
	case req.Comment != nil:
		byID["COMM"] = []id3.Frame{{ID: "COMM", Body: id3.CommentFrame{
			Language: [3]byte{'e', 'n', 'g'},
			Text:     *req.Comment,
		}}}
		if !seen["COMM"] {
			seen["COMM"] = true
			order = append(order, "COMM")
		}
	case req.CombineComments:
		byID["COMM"] = combineComments(byID["COMM"])
	}

	if len(req.Pictures) > 0 {
		pics := make([]id3.Frame, 0, len(req.Pictures))
		for _, p := range req.Pictures {
			imgData, err := os.ReadFile(p.Path)
			if err != nil {
				return nil, tagerr.Wrap(path, tagerr.KindIO, "read picture file "+p.Path, err)
			}
			pics = append(pics, id3.Frame{ID: "APIC", Body: id3.PictureFrame{
				MIME:        p.MIME,
				PicType:     p.Type,
				Description: p.Description,
				Data:        imgData,
			}})
		}
		byID["APIC"] = pics
		if !seen["APIC"] {
			seen["APIC"] = true
			order = append(order, "APIC")
		}
	}

	var out []id3.Frame
	for _, id := range order {
		out = append(out, byID[id]...)
	}
	return out, nil
}

// combineComments groups COMM frames by text, merging content descriptors
// with ";" and preserving first-seen text order.
func combineComments(comments []id3.Frame) []id3.Frame {
	type group struct {
		text  string
		descs []string
	}
	var groups []*group
	byText := map[string]*group{}
	for _, f := range comments {
		cf, ok := f.Body.(id3.CommentFrame)
		if !ok {
			continue
		}
		g, ok := byText[cf.Text]
		if !ok {
			g = &group{text: cf.Text}
			byText[cf.Text] = g
			groups = append(groups, g)
		}
		g.descs = append(g.descs, cf.Description)
	}

	out := make([]id3.Frame, 0, len(groups))
	for _, g := range groups {
		out = append(out, id3.Frame{ID: "COMM", Body: id3.CommentFrame{
			Language:    [3]byte{'e', 'n', 'g'},
			Description: strings.Join(g.descs, ";"),
			Text:        g.text,
		}})
	}
	return out
}

func errWithPath(path string, err error) error {
	if te, ok := err.(*tagerr.TagError); ok {
		return te.WithPath(path)
	}
	return tagerr.Wrap(path, tagerr.KindFormat, err.Error(), err)
}
