package mp4

import "github.com/audiotag/tag/internal/tagerr"

// ReplaceIlst walks the top-level box list and replaces the ilst box nested
// under moov/udta/meta with one built from items (the merge against any
// existing items is performed by the caller before invoking this). It
// returns a new tree; input boxes are not mutated.
func ReplaceIlst(boxes []Box, items []IlstItem) ([]Box, error) {
	out := make([]Box, len(boxes))
	replaced := false
	for i, b := range boxes {
		nb, did, err := replaceIlstIn(b, items)
		if err != nil {
			return nil, err
		}
		out[i] = nb
		replaced = replaced || did
	}
	if !replaced {
		return nil, tagerr.New("", tagerr.KindFormat, "no moov/udta/meta/ilst spine found")
	}
	return out, nil
}

func replaceIlstIn(b Box, items []IlstItem) (Box, bool, error) {
	switch v := b.(type) {
	case ContainerBox:
		if v.boxType() != [4]byte{'m', 'o', 'o', 'v'} && v.boxType() != [4]byte{'u', 'd', 't', 'a'} {
			return b, false, nil
		}
		children := make([]Box, len(v.Children))
		replaced := false
		for i, c := range v.Children {
			nc, did, err := replaceIlstIn(c, items)
			if err != nil {
				return nil, false, err
			}
			children[i] = nc
			replaced = replaced || did
		}
		v.Children = children
		return v, replaced, nil
	case MetaBox:
		children := make([]Box, len(v.Children))
		replaced := false
		for i, c := range v.Children {
			if c.boxType() == [4]byte{'i', 'l', 's', 't'} {
				children[i] = IlstBox{Items: items}
				replaced = true
				continue
			}
			children[i] = c
		}
		v.Children = children
		return v, replaced, nil
	default:
		return b, false, nil
	}
}

// FindIlst returns the items of the ilst box nested under moov/udta/meta,
// or nil if none is present.
func FindIlst(boxes []Box) []IlstItem {
	for _, b := range boxes {
		switch v := b.(type) {
		case ContainerBox:
			if v.boxType() == [4]byte{'m', 'o', 'o', 'v'} || v.boxType() == [4]byte{'u', 'd', 't', 'a'} {
				if items := FindIlst(v.Children); items != nil {
					return items
				}
			}
		case MetaBox:
			for _, c := range v.Children {
				if ilst, ok := c.(IlstBox); ok {
					return ilst.Items
				}
			}
		}
	}
	return nil
}

// ShiftStco returns a copy of the tree with every stco box's offsets
// shifted by delta.
func ShiftStco(boxes []Box, delta int64) []Box {
	out := make([]Box, len(boxes))
	for i, b := range boxes {
		out[i] = shiftStcoIn(b, delta)
	}
	return out
}

func shiftStcoIn(b Box, delta int64) Box {
	switch v := b.(type) {
	case StcoBox:
		return v.Shifted(delta)
	case ContainerBox:
		children := make([]Box, len(v.Children))
		for i, c := range v.Children {
			children[i] = shiftStcoIn(c, delta)
		}
		v.Children = children
		return v
	case MetaBox:
		children := make([]Box, len(v.Children))
		for i, c := range v.Children {
			children[i] = shiftStcoIn(c, delta)
		}
		v.Children = children
		return v
	default:
		return b
	}
}

// EncodeTopLevel concatenates the wire bytes of every top-level box in
// order and reports the byte offset at which the first box of type mdat
// begins in the resulting buffer (or -1 if absent).
func EncodeTopLevel(boxes []Box) (data []byte, mdatOffset int) {
	mdatOffset = -1
	for _, b := range boxes {
		if mdatOffset < 0 && b.boxType() == [4]byte{'m', 'd', 'a', 't'} {
			mdatOffset = len(data)
		}
		data = b.encode(data)
	}
	return data, mdatOffset
}
