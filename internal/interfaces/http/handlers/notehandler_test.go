package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/siteforge/siteforge/internal/application/note/dto"
	"github.com/siteforge/siteforge/internal/application/note/usecases"
	"github.com/siteforge/siteforge/internal/domain/note"
	"github.com/siteforge/siteforge/internal/interfaces/http/handlers/testutil"
	"github.com/siteforge/siteforge/internal/shared/errors"
)

type mockNoteUC struct {
	mock.Mock
}

func (m *mockNoteUC) Execute(ctx context.Context, cmd usecases.AddNoteCommand) (*dto.NoteResponse, error) {
	args := m.Called(cmd)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*dto.NoteResponse), args.Error(1)
}

type mockListNotesUC struct {
	mock.Mock
}

func (m *mockListNotesUC) Execute(ctx context.Context, subject note.Subject) ([]*dto.NoteResponse, error) {
	args := m.Called(subject)
	return args.Get(0).([]*dto.NoteResponse), args.Error(1)
}

type mockDeleteNotesUC struct {
	mock.Mock
}

func (m *mockDeleteNotesUC) Clear(ctx context.Context, subject note.Subject) (int64, error) {
	args := m.Called(subject)
	return args.Get(0).(int64), args.Error(1)
}

func (m *mockDeleteNotesUC) Delete(ctx context.Context, subject note.Subject, noteID string) error {
	args := m.Called(subject, noteID)
	return args.Error(0)
}

func TestNoteHandler_AddNote(t *testing.T) {
	addUC := &mockNoteUC{}
	subject := note.Subject{Type: note.SubjectPayment, ID: 9}
	addUC.On("Execute", usecases.AddNoteCommand{Subject: subject, Text: "Refund approved", AuthorID: 1}).
		Return(&dto.NoteResponse{NoteID: "note_1", SubjectType: "payment", SubjectID: 9, Text: "Refund approved"}, nil)

	handler := NewNoteHandler(addUC, nil, nil, testutil.NewMockLogger())
	c, w := testutil.NewTestContext(http.MethodPost, "/api/v1/payments/9/notes", map[string]any{"text": "Refund approved", "author_id": 1})
	testutil.SetURLParam(c, "hash", "9")

	handler.AddNote(note.SubjectPayment)(c)

	assert.Equal(t, http.StatusCreated, w.Code)
	addUC.AssertExpectations(t)
}

func TestNoteHandler_AddNote_Invalid(t *testing.T) {
	addUC := &mockNoteUC{}
	addUC.On("Execute", mock.Anything).Return(nil, errors.NewValidationError("note text is required"))
	handler := NewNoteHandler(addUC, nil, nil, testutil.NewMockLogger())

	c, w := testutil.NewTestContext(http.MethodPost, "/api/v1/sites/2/notes", map[string]any{})
	testutil.SetURLParam(c, "id", "2")
	handler.AddNote(note.SubjectSite)(c)
	assert.Equal(t, http.StatusBadRequest, w.Code, "text is required by binding")
	addUC.AssertNotCalled(t, "Execute", mock.Anything)

	c, w = testutil.NewTestContext(http.MethodPost, "/api/v1/sites/2/notes", map[string]any{"text": "<p></p>"})
	testutil.SetURLParam(c, "id", "2")
	handler.AddNote(note.SubjectSite)(c)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestNoteHandler_ListNotes(t *testing.T) {
	listUC := &mockListNotesUC{}
	subject := note.Subject{Type: note.SubjectCustomer, ID: 4}
	listUC.On("Execute", subject).Return([]*dto.NoteResponse{
		{NoteID: "note_b", CreatedAt: time.Now()},
		{NoteID: "note_a", CreatedAt: time.Now().Add(-time.Hour)},
	}, nil)

	handler := NewNoteHandler(nil, listUC, nil, testutil.NewMockLogger())
	c, w := testutil.NewTestContext(http.MethodGet, "/api/v1/customers/4/notes", nil)
	testutil.SetURLParam(c, "id", "4")

	handler.ListNotes(note.SubjectCustomer)(c)

	require.Equal(t, http.StatusOK, w.Code)
	var resp testutil.APIResponse
	require.NoError(t, testutil.ParseResponse(w, &resp))
	var notes []dto.NoteResponse
	require.NoError(t, json.Unmarshal(resp.Data, &notes))
	require.Len(t, notes, 2)
	assert.Equal(t, "note_b", notes[0].NoteID)
}

func TestNoteHandler_ClearAndDelete(t *testing.T) {
	deleteUC := &mockDeleteNotesUC{}
	subject := note.Subject{Type: note.SubjectMembership, ID: 5}
	deleteUC.On("Clear", subject).Return(int64(2), nil)
	deleteUC.On("Delete", subject, "note_a").Return(nil)
	deleteUC.On("Delete", subject, "note_x").Return(errors.NewNotFoundError("note not found"))

	handler := NewNoteHandler(nil, nil, deleteUC, testutil.NewMockLogger())

	c, w := testutil.NewTestContext(http.MethodDelete, "/api/v1/memberships/5/notes", nil)
	testutil.SetURLParam(c, "id", "5")
	handler.ClearNotes(note.SubjectMembership)(c)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"deleted":2`)

	c, w = testutil.NewTestContext(http.MethodDelete, "/api/v1/memberships/5/notes/note_a", nil)
	testutil.SetURLParam(c, "id", "5")
	testutil.SetURLParam(c, "note_id", "note_a")
	handler.DeleteNote(note.SubjectMembership)(c)
	c.Writer.WriteHeaderNow()
	assert.Equal(t, http.StatusNoContent, w.Code)

	c, w = testutil.NewTestContext(http.MethodDelete, "/api/v1/memberships/5/notes/note_x", nil)
	testutil.SetURLParam(c, "id", "5")
	testutil.SetURLParam(c, "note_id", "note_x")
	handler.DeleteNote(note.SubjectMembership)(c)
	assert.Equal(t, http.StatusNotFound, w.Code)

	deleteUC.AssertExpectations(t)
}
