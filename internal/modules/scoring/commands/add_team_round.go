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
	"github.com/shopspring/decimal"
)

// AddTeamRoundCommand records one whole score per team for a round. Saving
// an existing round replaces it.
type AddTeamRoundCommand struct {
	SessionID   int64                   `json:"-"`
	UserID      int64                   `json:"-"`
	RoundNumber int                     `json:"-"`
	TeamScores  map[int]domain.RawScore `json:"team_scores"`
	Details     *domain.BeloteDetails   `json:"details,omitempty"`
}

func (c AddTeamRoundCommand) Validate() error {
	var validationErr core.ValidationError

	if c.RoundNumber < 1 {
		validationErr.Add(fmt.Errorf("invalid RoundNumber: %d", c.RoundNumber))
	}

	if err := domain.ValidateTeamScores(c.TeamScores, sessiondomain.DefaultTeamCount); err != nil {
		validationErr.Add(err)
	}

	if c.Details != nil {
		if err := c.Details.Validate(sessiondomain.DefaultTeamCount); err != nil {
			validationErr.Add(err)
		}
	}

	return validationErr.Collect()
}

type AddTeamRoundResponse struct {
	RoundNumber int              `json:"round_number"`
	Totals      []float64        `json:"totals"`
	Winner      *TeamRoundWinner `json:"winner,omitempty"`
}

type TeamRoundWinner struct {
	Team  int `json:"team"`
	Round int `json:"round"`
}

func HandleAddTeamRound(w http.ResponseWriter, r *http.Request) {
	command, err := core.RequestBody[AddTeamRoundCommand](r)
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
	command.UserID = core.Session(r.Context()).UserID

	response, err := mediator.Send[AddTeamRoundCommand, AddTeamRoundResponse](r.Context(), command)
	if err != nil {
		core.WriteCommandError(w, r, err)
		return
	}

	core.WriteOK(w, r, response)
}

type AddTeamRoundCommandHandler struct {
	db *sql.DB
}

func NewAddTeamRoundCommandHandler(db *sql.DB) *AddTeamRoundCommandHandler {
	return &AddTeamRoundCommandHandler{db: db}
}

func (h *AddTeamRoundCommandHandler) Handle(ctx context.Context, request AddTeamRoundCommand) (AddTeamRoundResponse, error) {
	var response AddTeamRoundResponse

	err := core.Tx(ctx, h.db, func(ctx context.Context, tx *sql.Tx) error {
		session, players, err := lockSession(ctx, tx, request.SessionID, request.UserID, sessiondomain.EngineTeamRounds)
		if err != nil {
			return err
		}

		rules, ok := session.Rules().(sessiondomain.TeamRoundRules)
		if !ok {
			return core.Validationf("session %d is not scored by team rounds", session.ID)
		}

		members, err := domain.TeamMembers(players, rules.TeamCount)
		if err != nil {
			return core.Validation(err)
		}

		highest, err := scoring.MaxRoundNumber(ctx, tx, session.ID)
		if err != nil {
			return err
		}
		if request.RoundNumber > highest+1 {
			return core.Validationf("round %d cannot be recorded before round %d", request.RoundNumber, highest+1)
		}

		if request.RoundNumber > highest {
			rounds, err := loadTeamRounds(ctx, tx, session.ID, rules.TeamCount)
			if err != nil {
				return err
			}
			if team, _, won := domain.Winner(rounds, rules.WinningScore()); won {
				return core.Validationf("session is finished: team %d has won", team)
			}
		}

		details, err := domain.EncodeDetails(request.Details)
		if err != nil {
			return core.Parse(err, "failed to encode round details")
		}

		if _, err := scoring.DeleteRoundEntries(ctx, tx, session.ID, request.RoundNumber); err != nil {
			return err
		}

		drafts := domain.TeamRoundDrafts(session.ID, request.RoundNumber, members, request.TeamScores, details)
		if err := domain.VerifyTeamSplit(drafts, members, request.TeamScores); err != nil {
			return err
		}
		if err := scoring.InsertEntries(ctx, tx, drafts); err != nil {
			return err
		}

		rounds, err := loadTeamRounds(ctx, tx, session.ID, rules.TeamCount)
		if err != nil {
			return err
		}

		response = AddTeamRoundResponse{
			RoundNumber: request.RoundNumber,
			Totals:      core.Map(domain.TeamTotals(rounds, rules.TeamCount), decimal.Decimal.InexactFloat64),
		}
		if team, round, won := domain.Winner(rounds, rules.WinningScore()); won {
			response.Winner = &TeamRoundWinner{Team: team, Round: round}
		}

		return nil
	})

	return response, err
}

func loadTeamRounds(ctx context.Context, q core.DBTX, sessionID int64, teamCount int) ([]domain.TeamRound, error) {
	totals, err := scoring.TeamRoundTotals(ctx, q, sessionID)
	if err != nil {
		return nil, err
	}

	details, err := scoring.RoundDetails(ctx, q, sessionID)
	if err != nil {
		return nil, err
	}

	return domain.AssembleTeamRounds(teamCount, totals, details), nil
}
