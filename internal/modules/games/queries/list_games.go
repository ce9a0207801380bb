package queries

import (
	"context"
	"net/http"

	"github.com/Cryborg/scoresheets-sub000/internal/modules/core"
	"github.com/Cryborg/scoresheets-sub000/internal/modules/games"
	"github.com/Cryborg/scoresheets-sub000/internal/modules/games/domain"

	"github.com/eskrenkovic/mediator-go"
)

type ListGamesQuery struct {
	ImplementedOnly bool
}

func HandleListGames(w http.ResponseWriter, r *http.Request) {
	query := ListGamesQuery{ImplementedOnly: r.URL.Query().Get("implemented") == "true"}

	response, err := mediator.Send[ListGamesQuery, []domain.Game](r.Context(), query)
	if err != nil {
		core.WriteCommandError(w, r, err)
		return
	}

	core.WriteOK(w, r, response)
}

type ListGamesQueryHandler struct {
	catalog games.Catalog
}

func NewListGamesQueryHandler(catalog games.Catalog) *ListGamesQueryHandler {
	return &ListGamesQueryHandler{catalog: catalog}
}

func (h *ListGamesQueryHandler) Handle(ctx context.Context, request ListGamesQuery) ([]domain.Game, error) {
	all, err := h.catalog.Games(ctx)
	if err != nil {
		return nil, err
	}

	if !request.ImplementedOnly {
		return all, nil
	}

	return core.Filter(all, func(game domain.Game) bool {
		return game.IsImplemented
	}), nil
}
