package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/siteforge/siteforge/internal/application/note/dto"
	"github.com/siteforge/siteforge/internal/application/note/usecases"
	"github.com/siteforge/siteforge/internal/domain/note"
	"github.com/siteforge/siteforge/internal/shared/errors"
	"github.com/siteforge/siteforge/internal/shared/logger"
	"github.com/siteforge/siteforge/internal/shared/utils"
)

type addNoteUseCase interface {
	Execute(ctx context.Context, cmd usecases.AddNoteCommand) (*dto.NoteResponse, error)
}

type listNotesUseCase interface {
	Execute(ctx context.Context, subject note.Subject) ([]*dto.NoteResponse, error)
}

type deleteNotesUseCase interface {
	Clear(ctx context.Context, subject note.Subject) (int64, error)
	Delete(ctx context.Context, subject note.Subject, noteID string) error
}

// NoteHandler serves the notes attached to customers, memberships, payments
// and sites. Each method is bound to one subject type when routes are set up.
type NoteHandler struct {
	addNoteUC     addNoteUseCase
	listNotesUC   listNotesUseCase
	deleteNotesUC deleteNotesUseCase
	logger        logger.Interface
}

func NewNoteHandler(
	addNoteUC addNoteUseCase,
	listNotesUC listNotesUseCase,
	deleteNotesUC deleteNotesUseCase,
	logger logger.Interface,
) *NoteHandler {
	return &NoteHandler{
		addNoteUC:     addNoteUC,
		listNotesUC:   listNotesUC,
		deleteNotesUC: deleteNotesUC,
		logger:        logger,
	}
}

// @Summary		List notes
// @Tags			notes
// @Produce		json
// @Security		APIKey
// @Param			id	path		int												true	"Subject ID"
// @Success		200	{object}	utils.APIResponse{data=[]dto.NoteResponse}		"Notes, newest first"
// @Router			/api/v1/{subject}/{id}/notes [get]
func (h *NoteHandler) ListNotes(subjectType note.SubjectType) gin.HandlerFunc {
	return func(c *gin.Context) {
		subject, err := parseSubject(c, subjectType)
		if err != nil {
			utils.ErrorResponseWithError(c, err)
			return
		}

		notes, err := h.listNotesUC.Execute(c.Request.Context(), subject)
		if err != nil {
			utils.ErrorResponseWithError(c, err)
			return
		}

		utils.SuccessResponse(c, http.StatusOK, "", notes)
	}
}

// @Summary		Add note
// @Tags			notes
// @Accept			json
// @Produce		json
// @Security		APIKey
// @Param			id		path		int										true	"Subject ID"
// @Param			note	body		dto.AddNoteRequest						true	"Note text"
// @Success		201		{object}	utils.APIResponse{data=dto.NoteResponse}	"Note created"
// @Failure		400		{object}	utils.APIResponse						"Bad request"
// @Router			/api/v1/{subject}/{id}/notes [post]
func (h *NoteHandler) AddNote(subjectType note.SubjectType) gin.HandlerFunc {
	return func(c *gin.Context) {
		subject, err := parseSubject(c, subjectType)
		if err != nil {
			utils.ErrorResponseWithError(c, err)
			return
		}

		var req dto.AddNoteRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			utils.ErrorResponse(c, http.StatusBadRequest, "invalid request: "+err.Error())
			return
		}

		result, err := h.addNoteUC.Execute(c.Request.Context(), usecases.AddNoteCommand{
			Subject:  subject,
			Text:     req.Text,
			AuthorID: req.AuthorID,
		})
		if err != nil {
			utils.ErrorResponseWithError(c, err)
			return
		}

		utils.CreatedResponse(c, result, "note added successfully")
	}
}

// @Summary		Clear notes
// @Tags			notes
// @Security		APIKey
// @Param			id	path	int	true	"Subject ID"
// @Success		200	{object}	utils.APIResponse	"Number of deleted notes"
// @Router			/api/v1/{subject}/{id}/notes [delete]
func (h *NoteHandler) ClearNotes(subjectType note.SubjectType) gin.HandlerFunc {
	return func(c *gin.Context) {
		subject, err := parseSubject(c, subjectType)
		if err != nil {
			utils.ErrorResponseWithError(c, err)
			return
		}

		deleted, err := h.deleteNotesUC.Clear(c.Request.Context(), subject)
		if err != nil {
			utils.ErrorResponseWithError(c, err)
			return
		}

		utils.SuccessResponse(c, http.StatusOK, "notes cleared", gin.H{"deleted": deleted})
	}
}

// @Summary		Delete note
// @Tags			notes
// @Security		APIKey
// @Param			id		path	int		true	"Subject ID"
// @Param			note_id	path	string	true	"Note ID"
// @Success		204
// @Failure		404	{object}	utils.APIResponse	"Note not found"
// @Router			/api/v1/{subject}/{id}/notes/{note_id} [delete]
func (h *NoteHandler) DeleteNote(subjectType note.SubjectType) gin.HandlerFunc {
	return func(c *gin.Context) {
		subject, err := parseSubject(c, subjectType)
		if err != nil {
			utils.ErrorResponseWithError(c, err)
			return
		}

		noteID := c.Param("note_id")
		if noteID == "" {
			utils.ErrorResponseWithError(c, errors.NewValidationError("note ID is required"))
			return
		}

		if err := h.deleteNotesUC.Delete(c.Request.Context(), subject, noteID); err != nil {
			utils.ErrorResponseWithError(c, err)
			return
		}

		utils.NoContentResponse(c)
	}
}

// Payment routes share the :hash wildcard with the payment endpoints. Notes
// still address payments by numeric ID.
func subjectParam(subjectType note.SubjectType) string {
	if subjectType == note.SubjectPayment {
		return "hash"
	}
	return "id"
}

func parseSubject(c *gin.Context, subjectType note.SubjectType) (note.Subject, error) {
	id, err := parseIDParam(c, subjectParam(subjectType), string(subjectType))
	if err != nil {
		return note.Subject{}, err
	}
	return note.Subject{Type: subjectType, ID: id}, nil
}
