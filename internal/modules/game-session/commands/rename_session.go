package commands

import (
	"context"
	"database/sql"
	"net/http"

	"github.com/Cryborg/scoresheets-sub000/internal/modules/core"
	gamesession "github.com/Cryborg/scoresheets-sub000/internal/modules/game-session"
	"github.com/Cryborg/scoresheets-sub000/internal/modules/game-session/domain"

	"github.com/eskrenkovic/mediator-go"
)

type RenameSessionCommand struct {
	SessionID int64  `json:"-"`
	UserID    int64  `json:"-"`
	Name      string `json:"name"`
}

func (c RenameSessionCommand) Validate() error {
	return domain.ValidateSessionName(c.Name)
}

func HandleRenameSession(w http.ResponseWriter, r *http.Request) {
	command, err := core.RequestBody[RenameSessionCommand](r)
	if err != nil {
		core.WriteCommandError(w, r, err)
		return
	}

	if command.SessionID, err = core.Int64Param(r, "id"); err != nil {
		core.WriteCommandError(w, r, err)
		return
	}
	command.UserID = core.Session(r.Context()).UserID

	if _, err := mediator.Send[RenameSessionCommand, core.Unit](r.Context(), command); err != nil {
		core.WriteCommandError(w, r, err)
		return
	}

	core.WriteNoContent(w, r)
}

type RenameSessionCommandHandler struct {
	db *sql.DB
}

func NewRenameSessionCommandHandler(db *sql.DB) *RenameSessionCommandHandler {
	return &RenameSessionCommandHandler{db: db}
}

func (h *RenameSessionCommandHandler) Handle(ctx context.Context, request RenameSessionCommand) (core.Unit, error) {
	if request.UserID <= 0 {
		return core.Unit{}, core.Forbidden("authentication required")
	}

	err := core.Tx(ctx, h.db, func(ctx context.Context, tx *sql.Tx) error {
		if _, err := gamesession.LoadOwnedSession(ctx, tx, request.SessionID, request.UserID, true); err != nil {
			return err
		}

		return gamesession.RenameSession(ctx, tx, request.SessionID, domain.NormalizeName(request.Name))
	})

	return core.Unit{}, err
}
