package commands

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"

	"github.com/Cryborg/scoresheets-sub000/internal/modules/core"
	sessiondomain "github.com/Cryborg/scoresheets-sub000/internal/modules/game-session/domain"
	"github.com/Cryborg/scoresheets-sub000/internal/modules/scoring"
	"github.com/Cryborg/scoresheets-sub000/internal/modules/scoring/domain"

	"github.com/eskrenkovic/mediator-go"
)

// SetRoundScoreCommand fills in or corrects one player's score in a round
// that already exists. A blank score clears it.
type SetRoundScoreCommand struct {
	SessionID   int64           `json:"-"`
	UserID      int64           `json:"-"`
	RoundNumber int             `json:"-"`
	PlayerID    int64           `json:"-"`
	Score       domain.RawScore `json:"score"`
}

func (c SetRoundScoreCommand) Validate() error {
	if c.RoundNumber < 1 {
		return fmt.Errorf("invalid RoundNumber: %d", c.RoundNumber)
	}
	return c.Score.Validate()
}

func HandleSetRoundScore(w http.ResponseWriter, r *http.Request) {
	command, err := core.RequestBody[SetRoundScoreCommand](r)
	if err != nil {
		core.WriteCommandError(w, r, err)
		return
	}

	if command.SessionID, err = core.Int64Param(r, "id"); err != nil {
		core.WriteCommandError(w, r, err)
		return
	}
	if command.RoundNumber, err = core.IntParam(r, "round"); err != nil {
		core.WriteCommandError(w, r, err)
		return
	}
	if command.PlayerID, err = core.Int64Param(r, "playerId"); err != nil {
		core.WriteCommandError(w, r, err)
		return
	}
	command.UserID = core.Session(r.Context()).UserID

	if _, err := mediator.Send[SetRoundScoreCommand, core.Unit](r.Context(), command); err != nil {
		core.WriteCommandError(w, r, err)
		return
	}

	core.WriteNoContent(w, r)
}

type SetRoundScoreCommandHandler struct {
	db *sql.DB
}

func NewSetRoundScoreCommandHandler(db *sql.DB) *SetRoundScoreCommandHandler {
	return &SetRoundScoreCommandHandler{db: db}
}

func (h *SetRoundScoreCommandHandler) Handle(ctx context.Context, request SetRoundScoreCommand) (core.Unit, error) {
	err := core.Tx(ctx, h.db, func(ctx context.Context, tx *sql.Tx) error {
		session, players, err := lockSession(ctx, tx, request.SessionID, request.UserID, sessiondomain.EngineGeneric)
		if err != nil {
			return err
		}

		if err := requirePlayer(players, request.PlayerID); err != nil {
			return err
		}

		highest, err := scoring.MaxRoundNumber(ctx, tx, session.ID)
		if err != nil {
			return err
		}
		if request.RoundNumber > highest {
			return core.NotFound(fmt.Sprintf("round %d", request.RoundNumber))
		}

		if request.Score.Blank {
			return scoring.DeletePlayerRoundEntry(ctx, tx, session.ID, request.PlayerID, request.RoundNumber)
		}

		return scoring.UpsertRoundEntry(ctx, tx, domain.EntryDraft{
			SessionID:   session.ID,
			PlayerID:    request.PlayerID,
			RoundNumber: request.RoundNumber,
			ScoreType:   domain.RoundScoreType,
			Value:       request.Score.Value,
		})
	})

	return core.Unit{}, err
}
