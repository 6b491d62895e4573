package pipeline

import (
	"github.com/audiotag/tag/internal/mp4"
	"github.com/audiotag/tag/internal/tagerr"
)

// mutateM4A applies req to the decoded bytes of an M4A file and returns the
// full output bytes with a shape-preserving ilst replacement and a
// re-fixed-up stco table.
func mutateM4A(path string, data []byte, req Request) ([]byte, error) {
	before, err := mp4.FindTopLevelOffset(data, "mdat")
	if err != nil {
		return nil, errWithPath(path, err)
	}
	if before < 0 {
		return nil, tagerr.New(path, tagerr.KindFormat, "no mdat box found")
	}

	boxes, err := mp4.ParseTopLevel(data)
	if err != nil {
		return nil, errWithPath(path, err)
	}

	existing := mp4.FindIlst(boxes)
	items := buildIlstItems(existing, req)

	boxes, err = mp4.ReplaceIlst(boxes, items)
	if err != nil {
		return nil, errWithPath(path, err)
	}

	_, after := mp4.EncodeTopLevel(boxes)
	if after < 0 {
		return nil, tagerr.New(path, tagerr.KindFormat, "mdat box lost during re-serialization")
	}

	delta := int64(after) - int64(before)
	boxes = mp4.ShiftStco(boxes, delta)

	out, _ := mp4.EncodeTopLevel(boxes)
	return out, nil
}

// tagKey identifies an ilst item for collision tracking: the 4-byte tag, or
// "----:mean:name" for a reverse-DNS item.
func tagKey(item mp4.IlstItem) string {
	if item.Tag == [4]byte{'-', '-', '-', '-'} {
		return "----:" + item.Mean + ":" + item.Name
	}
	return string(item.Tag[:])
}

// buildIlstItems merges req's requested fields with existing into the
// replacement item list, in the fixed table order: requested
// fields first (in table order), then every existing item whose key
// doesn't collide, in its original order.
func buildIlstItems(existing []mp4.IlstItem, req Request) []mp4.IlstItem {
	used := map[string]bool{}
	var out []mp4.IlstItem

	add := func(tag [4]byte, value *string) {
		if value == nil {
			return
		}
		key := string(tag[:])
		used[key] = true
		out = append(out, mp4.IlstItem{Tag: tag, Value: mp4.TextValue(*value)})
	}

	add([4]byte{0xA9, 'n', 'a', 'm'}, req.Title)
	if req.Artist != nil {
		used["\xa9ART"] = true
		used["aART"] = true
		out = append(out,
			mp4.IlstItem{Tag: [4]byte{0xA9, 'A', 'R', 'T'}, Value: mp4.TextValue(*req.Artist)},
			mp4.IlstItem{Tag: [4]byte{'a', 'A', 'R', 'T'}, Value: mp4.TextValue(*req.Artist)},
		)
	}
	if req.Track != nil {
		used["trkn"] = true
		out = append(out, mp4.IlstItem{Tag: [4]byte{'t', 'r', 'k', 'n'}, Value: mp4.BinaryValue(parseTrackNumber(*req.Track), 4)})
	}
	add([4]byte{0xA9, 'a', 'l', 'b'}, req.Album)
	add([4]byte{'s', 'o', 'a', 'l'}, req.SortAlbum)
	add([4]byte{0xA9, 'g', 'e', 'n'}, req.Genre)
	add([4]byte{0xA9, 'd', 'a', 'y'}, req.RecordDate)
	add([4]byte{0xA9, 'c', 'm', 't'}, req.Comment)

	for _, item := range existing {
		key := tagKey(item)
		if used[key] {
			continue
		}
		used[key] = true
		out = append(out, item)
	}
	return out
}

// parseTrackNumber extracts the leading integer from a track value like
// "3" or "3/12"; a non-numeric value yields 0.
func parseTrackNumber(s string) uint32 {
	var n uint32
	for _, r := range s {
		if r < '0' || r > '9' {
			break
		}
		n = n*10 + uint32(r-'0')
	}
	return n
}
