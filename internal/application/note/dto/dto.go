package dto

import (
	"time"

	"github.com/siteforge/siteforge/internal/domain/note"
)

type AddNoteRequest struct {
	Text     string `json:"text" binding:"required"`
	AuthorID uint   `json:"author_id"`
}

type NoteResponse struct {
	NoteID      string    `json:"note_id"`
	SubjectType string    `json:"subject_type"`
	SubjectID   uint      `json:"subject_id"`
	Text        string    `json:"text"`
	AuthorID    uint      `json:"author_id"`
	CreatedAt   time.Time `json:"created_at"`
}

func ToNoteResponse(n *note.Note) *NoteResponse {
	return &NoteResponse{
		NoteID:      n.NoteID(),
		SubjectType: string(n.Subject().Type),
		SubjectID:   n.Subject().ID,
		Text:        n.Text(),
		AuthorID:    n.AuthorID(),
		CreatedAt:   n.CreatedAt(),
	}
}

func ToNoteResponses(notes []*note.Note) []*NoteResponse {
	out := make([]*NoteResponse, 0, len(notes))
	for _, n := range notes {
		out = append(out, ToNoteResponse(n))
	}
	return out
}
