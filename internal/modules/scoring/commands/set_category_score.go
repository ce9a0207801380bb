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
	"github.com/go-chi/chi"
	"github.com/shopspring/decimal"
)

// SetCategoryScoreCommand writes one category of a player's sheet. A category
// is written once unless Overwrite is set.
type SetCategoryScoreCommand struct {
	SessionID int64           `json:"-"`
	UserID    int64           `json:"-"`
	PlayerID  int64           `json:"-"`
	Category  domain.Category `json:"-"`
	Value     int             `json:"value"`
	Overwrite bool            `json:"overwrite"`
}

func (c SetCategoryScoreCommand) Validate() error {
	def, found := domain.LookupCategory(c.Category)
	if !found {
		return fmt.Errorf("unknown category '%s'", c.Category)
	}
	return def.ValidateValue(c.Value)
}

type SetCategoryScoreResponse struct {
	PlayerID int64 `json:"player_id"`
	domain.SheetBreakdown
}

func HandleSetCategoryScore(w http.ResponseWriter, r *http.Request) {
	command, err := core.RequestBody[SetCategoryScoreCommand](r)
	if err != nil {
		core.WriteCommandError(w, r, err)
		return
	}

	if command.SessionID, err = core.Int64Param(r, "id"); err != nil {
		core.WriteCommandError(w, r, err)
		return
	}
	if command.PlayerID, err = core.Int64Param(r, "playerId"); err != nil {
		core.WriteCommandError(w, r, err)
		return
	}
	command.Category = domain.Category(chi.URLParam(r, "category"))
	command.UserID = core.Session(r.Context()).UserID

	response, err := mediator.Send[SetCategoryScoreCommand, SetCategoryScoreResponse](r.Context(), command)
	if err != nil {
		core.WriteCommandError(w, r, err)
		return
	}

	core.WriteOK(w, r, response)
}

type SetCategoryScoreCommandHandler struct {
	db *sql.DB
}

func NewSetCategoryScoreCommandHandler(db *sql.DB) *SetCategoryScoreCommandHandler {
	return &SetCategoryScoreCommandHandler{db: db}
}

func (h *SetCategoryScoreCommandHandler) Handle(ctx context.Context, request SetCategoryScoreCommand) (SetCategoryScoreResponse, error) {
	var response SetCategoryScoreResponse

	err := core.Tx(ctx, h.db, func(ctx context.Context, tx *sql.Tx) error {
		session, players, err := lockSession(ctx, tx, request.SessionID, request.UserID, sessiondomain.EngineCategories)
		if err != nil {
			return err
		}

		if err := requirePlayer(players, request.PlayerID); err != nil {
			return err
		}

		if !request.Overwrite {
			scored, err := scoring.HasCategoryScore(ctx, tx, session.ID, request.PlayerID, request.Category)
			if err != nil {
				return err
			}
			if scored {
				return core.Validationf("category '%s' is already scored", request.Category)
			}
		}

		err = scoring.UpsertCategoryEntry(ctx, tx, domain.EntryDraft{
			SessionID:   session.ID,
			PlayerID:    request.PlayerID,
			RoundNumber: domain.CategoryRound,
			ScoreType:   string(request.Category),
			Value:       decimal.NewFromInt(int64(request.Value)),
		})
		if err != nil {
			return err
		}

		entries, err := scoring.LoadEntries(ctx, tx, session.ID)
		if err != nil {
			return err
		}

		response = SetCategoryScoreResponse{
			PlayerID:       request.PlayerID,
			SheetBreakdown: domain.SheetFromEntries(entries, request.PlayerID).Breakdown(),
		}

		return nil
	})

	return response, err
}
