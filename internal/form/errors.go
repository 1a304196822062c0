package form

import (
	"errors"
	"sort"
	"strings"
)

var (
	ErrNoFile           = errors.New("no file dropped")
	ErrTooManyFiles     = errors.New("only one file can be dropped")
	ErrNotImage         = errors.New("only image files are allowed")
	ErrUploadInProgress = errors.New("an image is already uploading")
	ErrBusy             = errors.New("form is busy")
	ErrDraftClosed      = errors.New("draft is closed")
	ErrDraftNotFound    = errors.New("draft not found")
	ErrUnknownField     = errors.New("unknown field")
)

// ValidationError lists the fields that blocked a submit.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	names := make([]string, 0, len(e.Fields))
	for name := range e.Fields {
		names = append(names, name)
	}
	sort.Strings(names)

	msgs := make([]string, 0, len(names))
	for _, name := range names {
		msgs = append(msgs, e.Fields[name])
	}
	return "validation failed: " + strings.Join(msgs, "; ")
}
