package mappers

import (
	"github.com/siteforge/siteforge/internal/domain/note"
	"github.com/siteforge/siteforge/internal/infrastructure/persistence/models"
)

func NoteToModel(n *note.Note) *models.NoteModel {
	return &models.NoteModel{
		ID:          n.ID(),
		NoteID:      n.NoteID(),
		SubjectType: string(n.Subject().Type),
		SubjectID:   n.Subject().ID,
		Text:        n.Text(),
		AuthorID:    n.AuthorID(),
		CreatedAt:   n.CreatedAt(),
	}
}

func NoteToDomain(m *models.NoteModel) *note.Note {
	subject := note.Subject{Type: note.SubjectType(m.SubjectType), ID: m.SubjectID}
	return note.ReconstructNote(m.ID, m.NoteID, subject, m.Text, m.AuthorID, m.CreatedAt)
}
