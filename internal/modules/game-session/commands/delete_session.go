package commands

import (
	"context"
	"database/sql"
	"net/http"

	"github.com/Cryborg/scoresheets-sub000/internal/modules/core"
	gamesession "github.com/Cryborg/scoresheets-sub000/internal/modules/game-session"

	"github.com/eskrenkovic/mediator-go"
)

type DeleteSessionCommand struct {
	SessionID int64
	UserID    int64
}

func HandleDeleteSession(w http.ResponseWriter, r *http.Request) {
	sessionID, err := core.Int64Param(r, "id")
	if err != nil {
		core.WriteCommandError(w, r, err)
		return
	}

	command := DeleteSessionCommand{
		SessionID: sessionID,
		UserID:    core.Session(r.Context()).UserID,
	}

	if _, err := mediator.Send[DeleteSessionCommand, core.Unit](r.Context(), command); err != nil {
		core.WriteCommandError(w, r, err)
		return
	}

	core.WriteNoContent(w, r)
}

type DeleteSessionCommandHandler struct {
	db *sql.DB
}

func NewDeleteSessionCommandHandler(db *sql.DB) *DeleteSessionCommandHandler {
	return &DeleteSessionCommandHandler{db: db}
}

// Handle deletes the session with its players and entries. Sessions owned by
// someone else are reported as not found.
func (h *DeleteSessionCommandHandler) Handle(ctx context.Context, request DeleteSessionCommand) (core.Unit, error) {
	if request.UserID <= 0 {
		return core.Unit{}, core.Forbidden("authentication required")
	}

	err := core.Tx(ctx, h.db, func(ctx context.Context, tx *sql.Tx) error {
		if _, err := gamesession.LoadOwnedSession(ctx, tx, request.SessionID, request.UserID, true); err != nil {
			return err
		}

		return gamesession.DeleteSession(ctx, tx, request.SessionID)
	})

	return core.Unit{}, err
}
