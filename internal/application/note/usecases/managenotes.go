package usecases

import (
	"context"
	"errors"
	"fmt"

	"github.com/siteforge/siteforge/internal/application/note/dto"
	"github.com/siteforge/siteforge/internal/domain/note"
	apperrors "github.com/siteforge/siteforge/internal/shared/errors"
	"github.com/siteforge/siteforge/internal/shared/logger"
)

type ListNotesUseCase struct {
	noteRepo note.Repository
	logger   logger.Interface
}

func NewListNotesUseCase(noteRepo note.Repository, logger logger.Interface) *ListNotesUseCase {
	return &ListNotesUseCase{noteRepo: noteRepo, logger: logger}
}

// Execute returns the notes of subject, newest first.
func (uc *ListNotesUseCase) Execute(ctx context.Context, subject note.Subject) ([]*dto.NoteResponse, error) {
	if err := subject.Validate(); err != nil {
		return nil, apperrors.NewValidationError(err.Error())
	}
	notes, err := uc.noteRepo.List(ctx, subject)
	if err != nil {
		uc.logger.Errorw("failed to list notes", "error", err, "subject_type", subject.Type, "subject_id", subject.ID)
		return nil, fmt.Errorf("failed to list notes: %w", err)
	}
	return dto.ToNoteResponses(notes), nil
}

type DeleteNotesUseCase struct {
	noteRepo note.Repository
	logger   logger.Interface
}

func NewDeleteNotesUseCase(noteRepo note.Repository, logger logger.Interface) *DeleteNotesUseCase {
	return &DeleteNotesUseCase{noteRepo: noteRepo, logger: logger}
}

// Clear deletes every note of subject.
func (uc *DeleteNotesUseCase) Clear(ctx context.Context, subject note.Subject) (int64, error) {
	if err := subject.Validate(); err != nil {
		return 0, apperrors.NewValidationError(err.Error())
	}
	n, err := uc.noteRepo.Clear(ctx, subject)
	if err != nil {
		uc.logger.Errorw("failed to clear notes", "error", err, "subject_type", subject.Type, "subject_id", subject.ID)
		return 0, fmt.Errorf("failed to clear notes: %w", err)
	}
	uc.logger.Infow("notes cleared", "subject_type", subject.Type, "subject_id", subject.ID, "count", n)
	return n, nil
}

// Delete removes a single note.
func (uc *DeleteNotesUseCase) Delete(ctx context.Context, subject note.Subject, noteID string) error {
	if err := subject.Validate(); err != nil {
		return apperrors.NewValidationError(err.Error())
	}
	if err := uc.noteRepo.Delete(ctx, subject, noteID); err != nil {
		if errors.Is(err, note.ErrNoteNotFound) {
			return apperrors.NewNotFoundError("note not found", noteID)
		}
		uc.logger.Errorw("failed to delete note", "error", err, "note_id", noteID)
		return fmt.Errorf("failed to delete note: %w", err)
	}
	return nil
}
