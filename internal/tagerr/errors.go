// Package tagerr defines the error taxonomy shared by the id3, mp4, and
// pipeline packages.
package tagerr

import "fmt"

// Kind buckets an error into the taxonomy: I/O, Argument, Format, or
// Semantic failures. Callers match a Kind with errors.Is against any
// *TagError of that Kind (see TagError.Is) rather than matching on message
// text.
type Kind int

const (
	KindIO Kind = iota
	KindArgument
	KindFormat
	KindSemantic
)

func (k Kind) String() string {
	switch k {
	case KindIO:
		return "io"
	case KindArgument:
		return "argument"
	case KindFormat:
		return "format"
	case KindSemantic:
		return "semantic"
	default:
		return "unknown"
	}
}

// TagError wraps a failure encountered while reading or writing a tagged
// audio file. Path is the offending file, Kind places it in the taxonomy,
// and Err (when present) is the underlying cause.
type TagError struct {
	Path    string
	Kind    Kind
	Message string
	Err     error
}

func (e *TagError) Error() string {
	if e.Path == "" {
		return fmt.Sprintf("%s: %s", e.Kind, e.Message)
	}
	return fmt.Sprintf("%s: %s: %s", e.Path, e.Kind, e.Message)
}

func (e *TagError) Unwrap() error {
	return e.Err
}

// Is reports whether target is a *TagError with the same Kind, allowing
// callers to write errors.Is(err, tagerr.New("", KindFormat, "")).
func (e *TagError) Is(target error) bool {
	other, ok := target.(*TagError)
	if !ok {
		return false
	}
	return e.Kind == other.Kind
}

// Recoverable reports whether retrying the same operation might succeed.
// Only I/O failures are ever recoverable; format and semantic errors are a
// property of the bytes themselves and argument errors are a property of
// the invocation.
func (e *TagError) Recoverable() bool {
	return e.Kind == KindIO
}

func New(path string, kind Kind, message string) *TagError {
	return &TagError{Path: path, Kind: kind, Message: message}
}

func Wrap(path string, kind Kind, message string, err error) *TagError {
	return &TagError{Path: path, Kind: kind, Message: message, Err: err}
}

// WithPath returns a copy of the error with Path set, used when a lower
// layer constructs an error before the file path is known to it.
func (e *TagError) WithPath(path string) *TagError {
	cp := *e
	cp.Path = path
	return &cp
}

var (
	ErrCo64Unsupported = New("", KindFormat, "co64 64-bit chunk offset tables are not supported")
)
