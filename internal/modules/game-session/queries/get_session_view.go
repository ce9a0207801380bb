package queries

import (
	"context"
	"database/sql"
	"net/http"

	"github.com/Cryborg/scoresheets-sub000/internal/modules/core"
	gamesession "github.com/Cryborg/scoresheets-sub000/internal/modules/game-session"
	"github.com/Cryborg/scoresheets-sub000/internal/modules/game-session/domain"
	"github.com/Cryborg/scoresheets-sub000/internal/modules/scoring"
	scoringdomain "github.com/Cryborg/scoresheets-sub000/internal/modules/scoring/domain"

	"github.com/eskrenkovic/mediator-go"
)

type GetSessionViewQuery struct {
	SessionID int64
	UserID    int64
}

func HandleGetSessionView(w http.ResponseWriter, r *http.Request) {
	sessionID, err := core.Int64Param(r, "id")
	if err != nil {
		core.WriteCommandError(w, r, err)
		return
	}

	query := GetSessionViewQuery{
		SessionID: sessionID,
		UserID:    core.Session(r.Context()).UserID,
	}

	response, err := mediator.Send[GetSessionViewQuery, SessionView](r.Context(), query)
	if err != nil {
		core.WriteCommandError(w, r, err)
		return
	}

	core.WriteOK(w, r, response)
}

type GetSessionViewQueryHandler struct {
	db *sql.DB
}

func NewGetSessionViewQueryHandler(db *sql.DB) *GetSessionViewQueryHandler {
	return &GetSessionViewQueryHandler{db: db}
}

// Handle recomputes every total from the stored entries on each call.
func (h *GetSessionViewQueryHandler) Handle(ctx context.Context, request GetSessionViewQuery) (SessionView, error) {
	if request.UserID <= 0 {
		return SessionView{}, core.Forbidden("authentication required")
	}

	var view SessionView

	err := core.Tx(ctx, h.db, func(ctx context.Context, tx *sql.Tx) error {
		session, err := gamesession.LoadOwnedSession(ctx, tx, request.SessionID, request.UserID, false)
		if err != nil {
			return err
		}

		players, err := gamesession.LoadPlayers(ctx, tx, session.ID)
		if err != nil {
			return err
		}

		view = newSessionView(session, players)

		var finished bool

		switch rules := session.Rules().(type) {
		case domain.GenericRules:
			entries, err := scoring.LoadEntries(ctx, tx, session.ID)
			if err != nil {
				return err
			}
			view.Rounds, finished = buildRoundsView(rules, players, entries)

		case domain.CategoryRules:
			entries, err := scoring.LoadEntries(ctx, tx, session.ID)
			if err != nil {
				return err
			}
			view.Categories, finished = buildCategoriesView(rules, players, entries)

		case domain.TeamRoundRules:
			members, err := scoringdomain.TeamMembers(players, rules.TeamCount)
			if err != nil {
				return core.Parse(err, "stored teams are inconsistent")
			}

			totals, err := scoring.TeamRoundTotals(ctx, tx, session.ID)
			if err != nil {
				return err
			}

			details, err := scoring.RoundDetails(ctx, tx, session.ID)
			if err != nil {
				return err
			}

			view.TeamRounds, finished = buildTeamRoundsView(rules, members, totals, details)
		}

		if finished {
			view.Status = domain.StatusFinished
		}

		return nil
	}, core.ReadSnapshot())

	return view, err
}
