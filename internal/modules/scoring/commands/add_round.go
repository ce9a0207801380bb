package commands

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"

	"github.com/Cryborg/scoresheets-sub000/internal/modules/core"
	sessiondomain "github.com/Cryborg/scoresheets-sub000/internal/modules/game-session/domain"
	"github.com/Cryborg/scoresheets-sub000/internal/modules/scoring"
	"github.com/Cryborg/scoresheets-sub000/internal/modules/scoring/domain"

	"github.com/eskrenkovic/mediator-go"
)

var ErrEmptyRound = errors.New("round is empty: every score is zero or blank")

type AddRoundCommand struct {
	SessionID int64                     `json:"-"`
	UserID    int64                     `json:"-"`
	Scores    map[int64]domain.RawScore `json:"scores"`
}

func (c AddRoundCommand) Validate() error {
	if len(c.Scores) == 0 {
		return fmt.Errorf("at least one score is required")
	}

	for playerID, score := range c.Scores {
		if err := score.Validate(); err != nil {
			return fmt.Errorf("player %d: %w", playerID, err)
		}
	}

	if domain.IsEmptyRound(c.Scores) {
		return ErrEmptyRound
	}

	return nil
}

type AddRoundResponse struct {
	RoundNumber int  `json:"round_number"`
	Finished    bool `json:"finished"`
}

func HandleAddRound(w http.ResponseWriter, r *http.Request) {
	command, err := core.RequestBody[AddRoundCommand](r)
	if err != nil {
		core.WriteCommandError(w, r, err)
		return
	}

	if command.SessionID, err = core.Int64Param(r, "id"); err != nil {
		core.WriteCommandError(w, r, err)
		return
	}
	command.UserID = core.Session(r.Context()).UserID

	response, err := mediator.Send[AddRoundCommand, AddRoundResponse](r.Context(), command)
	if err != nil {
		core.WriteCommandError(w, r, err)
		return
	}

	location := fmt.Sprintf("/game-sessions/%d/rounds/%d", command.SessionID, response.RoundNumber)
	core.WriteCreated(w, r, location, response)
}

type AddRoundCommandHandler struct {
	db *sql.DB
}

func NewAddRoundCommandHandler(db *sql.DB) *AddRoundCommandHandler {
	return &AddRoundCommandHandler{db: db}
}

// Handle stores the scores as the next round of a generic session. Blank
// scores are skipped so they can be filled in later.
func (h *AddRoundCommandHandler) Handle(ctx context.Context, request AddRoundCommand) (AddRoundResponse, error) {
	var response AddRoundResponse

	err := core.Tx(ctx, h.db, func(ctx context.Context, tx *sql.Tx) error {
		session, players, err := lockSession(ctx, tx, request.SessionID, request.UserID, sessiondomain.EngineGeneric)
		if err != nil {
			return err
		}

		for playerID := range request.Scores {
			if err := requirePlayer(players, playerID); err != nil {
				return err
			}
		}

		entries, err := scoring.LoadEntries(ctx, tx, session.ID)
		if err != nil {
			return err
		}

		playerIDs := sessiondomain.PlayerIDs(players)
		target := session.Target()

		if _, finished := domain.FinishedAtRound(target, playerIDs, entries); finished {
			return core.Validationf("session is finished")
		}

		round := domain.NextRoundNumber(entries)
		drafts := domain.RoundDrafts(session.ID, round, request.Scores)

		if err := scoring.InsertEntries(ctx, tx, drafts); err != nil {
			return err
		}

		for _, d := range drafts {
			entries = append(entries, d.AsEntry())
		}

		response = AddRoundResponse{
			RoundNumber: round,
			Finished:    domain.EvaluateTermination(target, playerIDs, entries, round),
		}

		return nil
	})

	return response, err
}
