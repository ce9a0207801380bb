package queries

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"
	"strconv"

	"github.com/Cryborg/scoresheets-sub000/internal/modules/core"
	gamesession "github.com/Cryborg/scoresheets-sub000/internal/modules/game-session"
	sessiondomain "github.com/Cryborg/scoresheets-sub000/internal/modules/game-session/domain"
	"github.com/Cryborg/scoresheets-sub000/internal/modules/scoring"
	"github.com/Cryborg/scoresheets-sub000/internal/modules/scoring/domain"

	"github.com/eskrenkovic/mediator-go"
)

// GetPlayerTotalQuery asks for a player's total. UptoRound limits round based
// sessions to rounds up to and including it, zero means every round.
type GetPlayerTotalQuery struct {
	SessionID int64
	UserID    int64
	PlayerID  int64
	UptoRound int
}

func (q GetPlayerTotalQuery) Validate() error {
	if q.UptoRound < 0 {
		return fmt.Errorf("invalid upto: %d", q.UptoRound)
	}
	return nil
}

// PlayerTotalResponse carries the team total when the session is scored by
// team rounds, Team then names the player's team.
type PlayerTotalResponse struct {
	PlayerID  int64   `json:"player_id"`
	Team      *int    `json:"team,omitempty"`
	UptoRound int     `json:"upto_round,omitempty"`
	Total     float64 `json:"total"`
}

func HandleGetPlayerTotal(w http.ResponseWriter, r *http.Request) {
	var (
		query GetPlayerTotalQuery
		err   error
	)

	if query.SessionID, err = core.Int64Param(r, "id"); err != nil {
		core.WriteCommandError(w, r, err)
		return
	}
	if query.PlayerID, err = core.Int64Param(r, "playerId"); err != nil {
		core.WriteCommandError(w, r, err)
		return
	}

	if raw := r.URL.Query().Get("upto"); raw != "" {
		upto, err := strconv.Atoi(raw)
		if err != nil {
			core.WriteCommandError(w, r, core.Validationf("invalid upto: '%s'", raw))
			return
		}
		query.UptoRound = upto
	}
	query.UserID = core.Session(r.Context()).UserID

	response, err := mediator.Send[GetPlayerTotalQuery, PlayerTotalResponse](r.Context(), query)
	if err != nil {
		core.WriteCommandError(w, r, err)
		return
	}

	core.WriteOK(w, r, response)
}

type GetPlayerTotalQueryHandler struct {
	db *sql.DB
}

func NewGetPlayerTotalQueryHandler(db *sql.DB) *GetPlayerTotalQueryHandler {
	return &GetPlayerTotalQueryHandler{db: db}
}

func (h *GetPlayerTotalQueryHandler) Handle(ctx context.Context, request GetPlayerTotalQuery) (PlayerTotalResponse, error) {
	if request.UserID <= 0 {
		return PlayerTotalResponse{}, core.Forbidden("authentication required")
	}

	response := PlayerTotalResponse{PlayerID: request.PlayerID, UptoRound: request.UptoRound}

	err := core.Tx(ctx, h.db, func(ctx context.Context, tx *sql.Tx) error {
		session, err := gamesession.LoadOwnedSession(ctx, tx, request.SessionID, request.UserID, false)
		if err != nil {
			return err
		}

		players, err := gamesession.LoadPlayers(ctx, tx, session.ID)
		if err != nil {
			return err
		}
		if _, found := sessiondomain.FindPlayer(players, request.PlayerID); !found {
			return core.NotFound("player")
		}

		entries, err := scoring.LoadEntries(ctx, tx, session.ID)
		if err != nil {
			return err
		}

		switch session.Engine {
		case sessiondomain.EngineCategories:
			sheet := domain.SheetFromEntries(entries, request.PlayerID)
			response.Total = float64(sheet.GrandTotal())
		case sessiondomain.EngineTeamRounds:
			return teamTotal(ctx, tx, session, players, request, &response)
		default:
			response.Total = domain.Total(entries, request.PlayerID, request.UptoRound).InexactFloat64()
		}

		return nil
	}, core.ReadSnapshot())

	return response, err
}

func teamTotal(
	ctx context.Context,
	tx *sql.Tx,
	session sessiondomain.Session,
	players []sessiondomain.Player,
	request GetPlayerTotalQuery,
	response *PlayerTotalResponse,
) error {
	rules, ok := session.Rules().(sessiondomain.TeamRoundRules)
	if !ok {
		return core.Validationf("session %d is not scored by team rounds", session.ID)
	}

	members, err := domain.TeamMembers(players, rules.TeamCount)
	if err != nil {
		return core.Validation(err)
	}

	team, found := domain.TeamOf(members, request.PlayerID)
	if !found {
		return core.NotFound("player")
	}

	totals, err := scoring.TeamRoundTotals(ctx, tx, session.ID)
	if err != nil {
		return err
	}

	rounds := domain.AssembleTeamRounds(rules.TeamCount, totals, nil)

	response.Team = &team
	response.Total = domain.TeamTotalUpto(rounds, team, request.UptoRound).InexactFloat64()
	return nil
}
