package routes

import (
	"github.com/gin-gonic/gin"

	"github.com/siteforge/siteforge/internal/domain/note"
	"github.com/siteforge/siteforge/internal/interfaces/http/handlers"
)

// NoteRouteConfig holds dependencies for note routes.
type NoteRouteConfig struct {
	Handler        *handlers.NoteHandler
	AuthMiddleware gin.HandlerFunc
}

// noteCollections maps URL collections to note subjects. The path parameter
// must match the wildcard other routes already use in the same collection.
var noteCollections = []struct {
	path    string
	param   string
	subject note.SubjectType
}{
	{"customers", "id", note.SubjectCustomer},
	{"memberships", "id", note.SubjectMembership},
	{"payments", "hash", note.SubjectPayment},
	{"sites", "id", note.SubjectSite},
}

// SetupNoteRoutes configures /api/v1/{collection}/:id/notes for every subject type.
func SetupNoteRoutes(engine *gin.Engine, cfg *NoteRouteConfig) {
	api := engine.Group("/api/v1")
	api.Use(cfg.AuthMiddleware)

	for _, col := range noteCollections {
		notes := api.Group("/" + col.path + "/:" + col.param + "/notes")
		{
			notes.GET("", cfg.Handler.ListNotes(col.subject))
			notes.POST("", cfg.Handler.AddNote(col.subject))
			notes.DELETE("", cfg.Handler.ClearNotes(col.subject))
			notes.DELETE("/:note_id", cfg.Handler.DeleteNote(col.subject))
		}
	}
}
