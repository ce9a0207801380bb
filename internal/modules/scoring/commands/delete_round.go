package commands

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"

	"github.com/Cryborg/scoresheets-sub000/internal/modules/core"
	sessiondomain "github.com/Cryborg/scoresheets-sub000/internal/modules/game-session/domain"
	"github.com/Cryborg/scoresheets-sub000/internal/modules/scoring"

	"github.com/eskrenkovic/mediator-go"
)

// DeleteRoundCommand removes every entry of a round. Later rounds keep
// their numbers.
type DeleteRoundCommand struct {
	SessionID   int64
	UserID      int64
	RoundNumber int
}

func (c DeleteRoundCommand) Validate() error {
	if c.RoundNumber < 1 {
		return fmt.Errorf("invalid RoundNumber: %d", c.RoundNumber)
	}
	return nil
}

func HandleDeleteRound(w http.ResponseWriter, r *http.Request) {
	var (
		command DeleteRoundCommand
		err     error
	)

	if command.SessionID, err = core.Int64Param(r, "id"); err != nil {
		core.WriteCommandError(w, r, err)
		return
	}
	if command.RoundNumber, err = core.IntParam(r, "round"); err != nil {
		core.WriteCommandError(w, r, err)
		return
	}
	command.UserID = core.Session(r.Context()).UserID

	if _, err := mediator.Send[DeleteRoundCommand, core.Unit](r.Context(), command); err != nil {
		core.WriteCommandError(w, r, err)
		return
	}

	core.WriteNoContent(w, r)
}

type DeleteRoundCommandHandler struct {
	db *sql.DB
}

func NewDeleteRoundCommandHandler(db *sql.DB) *DeleteRoundCommandHandler {
	return &DeleteRoundCommandHandler{db: db}
}

func (h *DeleteRoundCommandHandler) Handle(ctx context.Context, request DeleteRoundCommand) (core.Unit, error) {
	err := core.Tx(ctx, h.db, func(ctx context.Context, tx *sql.Tx) error {
		session, _, err := lockSession(
			ctx,
			tx,
			request.SessionID,
			request.UserID,
			sessiondomain.EngineGeneric,
			sessiondomain.EngineTeamRounds,
		)
		if err != nil {
			return err
		}

		deleted, err := scoring.DeleteRoundEntries(ctx, tx, session.ID, request.RoundNumber)
		if err != nil {
			return err
		}

		if deleted == 0 {
			return core.NotFound(fmt.Sprintf("round %d", request.RoundNumber))
		}

		return nil
	})

	return core.Unit{}, err
}
