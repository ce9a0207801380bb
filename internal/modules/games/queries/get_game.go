package queries

import (
	"context"
	"fmt"
	"net/http"

	"github.com/Cryborg/scoresheets-sub000/internal/modules/core"
	"github.com/Cryborg/scoresheets-sub000/internal/modules/games"
	"github.com/Cryborg/scoresheets-sub000/internal/modules/games/domain"

	"github.com/eskrenkovic/mediator-go"
	"github.com/go-chi/chi"
)

type GetGameQuery struct {
	Slug string
}

func (q GetGameQuery) Validate() error {
	if q.Slug == "" {
		return fmt.Errorf("invalid Slug: '%s'", q.Slug)
	}
	return nil
}

func HandleGetGame(w http.ResponseWriter, r *http.Request) {
	query := GetGameQuery{Slug: chi.URLParam(r, "slug")}

	response, err := mediator.Send[GetGameQuery, domain.Game](r.Context(), query)
	if err != nil {
		core.WriteCommandError(w, r, err)
		return
	}

	core.WriteOK(w, r, response)
}

type GetGameQueryHandler struct {
	catalog games.Catalog
}

func NewGetGameQueryHandler(catalog games.Catalog) *GetGameQueryHandler {
	return &GetGameQueryHandler{catalog: catalog}
}

func (h *GetGameQueryHandler) Handle(ctx context.Context, request GetGameQuery) (domain.Game, error) {
	return h.catalog.GameBySlug(ctx, request.Slug)
}
