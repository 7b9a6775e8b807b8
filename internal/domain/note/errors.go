package note

import "errors"

var (
	ErrNoteNotFound   = errors.New("note not found")
	ErrInvalidSubject = errors.New("invalid note subject")
	ErrEmptyText      = errors.New("note text is required")
)
