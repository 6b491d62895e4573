// Package pipeline is the mutation pipeline (driver core): it
// orchestrates read -> mutate -> write for one file, dispatching on file
// extension between the ID3v2 and MP4 codecs.
package pipeline

// Picture is one --picture flag value, attached as an APIC frame.
type Picture struct {
	Type        byte
	MIME        string
	Description string
	Path        string
}

// Request is the set of user-requested mutations for a single file. A nil
// pointer field leaves that field unchanged; a non-nil pointer (even to an
// empty string) is applied. cmd/tag passes nil for a flag that was not
// passed or was passed with an empty value.
type Request struct {
	Title      *string
	Artist     *string
	Track      *string
	Album      *string
	SortAlbum  *string
	Genre      *string
	RecordDate *string
	Comment    *string

	CombineComments bool
	Pictures        []Picture
	Remove          []string // 4-byte frame IDs to drop from MP3 input
}
