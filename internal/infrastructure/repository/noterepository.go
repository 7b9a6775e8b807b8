package repository

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"github.com/siteforge/siteforge/internal/domain/note"
	"github.com/siteforge/siteforge/internal/infrastructure/persistence/mappers"
	"github.com/siteforge/siteforge/internal/infrastructure/persistence/models"
	"github.com/siteforge/siteforge/internal/shared/db"
)

type NoteRepository struct {
	db *gorm.DB
}

func NewNoteRepository(db *gorm.DB) *NoteRepository {
	return &NoteRepository{db: db}
}

var _ note.Repository = (*NoteRepository)(nil)

func (r *NoteRepository) Create(ctx context.Context, n *note.Note) error {
	model := mappers.NoteToModel(n)
	if err := db.GetTxFromContext(ctx, r.db).Create(model).Error; err != nil {
		return fmt.Errorf("failed to create note: %w", err)
	}
	n.SetID(model.ID)
	return nil
}

func (r *NoteRepository) List(ctx context.Context, subject note.Subject) ([]*note.Note, error) {
	var rows []models.NoteModel
	if err := db.GetTxFromContext(ctx, r.db).
		Where("subject_type = ? AND subject_id = ?", string(subject.Type), subject.ID).
		Order("created_at DESC, id DESC").
		Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to list notes: %w", err)
	}
	notes := make([]*note.Note, 0, len(rows))
	for i := range rows {
		notes = append(notes, mappers.NoteToDomain(&rows[i]))
	}
	return notes, nil
}

func (r *NoteRepository) Clear(ctx context.Context, subject note.Subject) (int64, error) {
	result := db.GetTxFromContext(ctx, r.db).
		Where("subject_type = ? AND subject_id = ?", string(subject.Type), subject.ID).
		Delete(&models.NoteModel{})
	if result.Error != nil {
		return 0, fmt.Errorf("failed to clear notes: %w", result.Error)
	}
	return result.RowsAffected, nil
}

func (r *NoteRepository) Delete(ctx context.Context, subject note.Subject, noteID string) error {
	result := db.GetTxFromContext(ctx, r.db).
		Where("subject_type = ? AND subject_id = ? AND note_id = ?", string(subject.Type), subject.ID, noteID).
		Delete(&models.NoteModel{})
	if result.Error != nil {
		return fmt.Errorf("failed to delete note: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return note.ErrNoteNotFound
	}
	return nil
}
