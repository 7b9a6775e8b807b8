package usecases

import (
	"context"
	"errors"
	"fmt"

	"github.com/siteforge/siteforge/internal/application/note/dto"
	"github.com/siteforge/siteforge/internal/domain/note"
	"github.com/siteforge/siteforge/internal/shared/biztime"
	apperrors "github.com/siteforge/siteforge/internal/shared/errors"
	"github.com/siteforge/siteforge/internal/shared/logger"
)

// TextSanitizer strips markup from user supplied text.
type TextSanitizer interface {
	PlainText(s string) string
}

type AddNoteCommand struct {
	Subject  note.Subject
	Text     string
	AuthorID uint
}

type AddNoteUseCase struct {
	noteRepo  note.Repository
	sanitizer TextSanitizer
	logger    logger.Interface
}

func NewAddNoteUseCase(noteRepo note.Repository, sanitizer TextSanitizer, logger logger.Interface) *AddNoteUseCase {
	return &AddNoteUseCase{
		noteRepo:  noteRepo,
		sanitizer: sanitizer,
		logger:    logger,
	}
}

func (uc *AddNoteUseCase) Execute(ctx context.Context, cmd AddNoteCommand) (*dto.NoteResponse, error) {
	n, err := note.NewNote(cmd.Subject, uc.sanitizer.PlainText(cmd.Text), cmd.AuthorID, biztime.NowUTC())
	if err != nil {
		if errors.Is(err, note.ErrEmptyText) || errors.Is(err, note.ErrInvalidSubject) {
			return nil, apperrors.NewValidationError(err.Error())
		}
		return nil, err
	}

	if err := uc.noteRepo.Create(ctx, n); err != nil {
		uc.logger.Errorw("failed to create note", "error", err,
			"subject_type", cmd.Subject.Type,
			"subject_id", cmd.Subject.ID,
		)
		return nil, fmt.Errorf("failed to create note: %w", err)
	}

	return dto.ToNoteResponse(n), nil
}
