package note

import "context"

type Repository interface {
	Create(ctx context.Context, n *Note) error
	// List returns the notes of subject, newest first.
	List(ctx context.Context, subject Subject) ([]*Note, error)
	// Clear deletes every note of subject and returns how many were removed.
	Clear(ctx context.Context, subject Subject) (int64, error)
	// Delete returns ErrNoteNotFound when subject has no note noteID.
	Delete(ctx context.Context, subject Subject, noteID string) error
}
