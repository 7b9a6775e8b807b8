package note

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewNote(t *testing.T) {
	now := time.Now()

	n, err := NewNote(Subject{Type: SubjectPayment, ID: 4}, "  Created via REST API ", 0, now)
	require.NoError(t, err)
	assert.Equal(t, "Created via REST API", n.Text())
	assert.Contains(t, n.NoteID(), "note_")

	_, err = NewNote(Subject{Type: SubjectPayment, ID: 4}, "   ", 0, now)
	assert.ErrorIs(t, err, ErrEmptyText)

	_, err = NewNote(Subject{Type: "order", ID: 4}, "x", 0, now)
	assert.ErrorIs(t, err, ErrInvalidSubject)

	_, err = NewNote(Subject{Type: SubjectSite}, "x", 0, now)
	assert.ErrorIs(t, err, ErrInvalidSubject)
}

func TestParseSubjectType(t *testing.T) {
	st, err := ParseSubjectType("membership")
	require.NoError(t, err)
	assert.Equal(t, SubjectMembership, st)

	_, err = ParseSubjectType("memberships")
	assert.Error(t, err)
}
