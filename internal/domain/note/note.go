package note

import (
	"fmt"
	"strings"
	"time"

	"github.com/siteforge/siteforge/internal/shared/id"
)

// SubjectType names the kind of record a note is attached to.
type SubjectType string

const (
	SubjectCustomer   SubjectType = "customer"
	SubjectMembership SubjectType = "membership"
	SubjectPayment    SubjectType = "payment"
	SubjectSite       SubjectType = "site"
)

func ParseSubjectType(s string) (SubjectType, error) {
	t := SubjectType(s)
	if !t.IsValid() {
		return "", fmt.Errorf("%w: %s", ErrInvalidSubject, s)
	}
	return t, nil
}

func (t SubjectType) IsValid() bool {
	switch t {
	case SubjectCustomer, SubjectMembership, SubjectPayment, SubjectSite:
		return true
	}
	return false
}

// Subject identifies the record a note belongs to.
type Subject struct {
	Type SubjectType
	ID   uint
}

func (s Subject) Validate() error {
	if !s.Type.IsValid() || s.ID == 0 {
		return ErrInvalidSubject
	}
	return nil
}

// Note is a free-text annotation on a customer, membership, payment or site.
type Note struct {
	id        uint
	noteID    string
	subject   Subject
	text      string
	authorID  uint
	createdAt time.Time
}

func NewNote(subject Subject, text string, authorID uint, now time.Time) (*Note, error) {
	if err := subject.Validate(); err != nil {
		return nil, err
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, ErrEmptyText
	}

	noteID, err := id.NewNoteID()
	if err != nil {
		return nil, fmt.Errorf("failed to generate note ID: %w", err)
	}

	return &Note{
		noteID:    noteID,
		subject:   subject,
		text:      text,
		authorID:  authorID,
		createdAt: now,
	}, nil
}

func ReconstructNote(id uint, noteID string, subject Subject, text string, authorID uint, createdAt time.Time) *Note {
	return &Note{id: id, noteID: noteID, subject: subject, text: text, authorID: authorID, createdAt: createdAt}
}

func (n *Note) ID() uint             { return n.id }
func (n *Note) NoteID() string       { return n.noteID }
func (n *Note) Subject() Subject     { return n.subject }
func (n *Note) Text() string         { return n.text }
func (n *Note) AuthorID() uint       { return n.authorID }
func (n *Note) CreatedAt() time.Time { return n.createdAt }

// SetID sets the note ID (only for persistence layer use)
func (n *Note) SetID(id uint) {
	n.id = id
}
