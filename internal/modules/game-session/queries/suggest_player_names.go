package queries

import (
	"context"
	"fmt"
	"net/http"
	"strconv"

	"github.com/Cryborg/scoresheets-sub000/internal/modules/core"
	gamesession "github.com/Cryborg/scoresheets-sub000/internal/modules/game-session"
	"github.com/Cryborg/scoresheets-sub000/internal/modules/game-session/domain"

	"github.com/eskrenkovic/mediator-go"
)

const maxSuggestionLimit = 50

type SuggestPlayerNamesQuery struct {
	UserID int64
	Prefix string
	Limit  int
}

func (q SuggestPlayerNamesQuery) Validate() error {
	if q.Limit < 1 || q.Limit > maxSuggestionLimit {
		return fmt.Errorf("limit must be between 1 and %d", maxSuggestionLimit)
	}
	if len([]rune(q.Prefix)) > domain.MaxNameLength {
		return fmt.Errorf("prefix is longer than %d characters", domain.MaxNameLength)
	}
	return nil
}

func HandleSuggestPlayerNames(w http.ResponseWriter, r *http.Request) {
	query := SuggestPlayerNamesQuery{
		UserID: core.Session(r.Context()).UserID,
		Prefix: domain.NormalizeName(r.URL.Query().Get("prefix")),
		Limit:  gamesession.DefaultSuggestionLimit,
	}

	if raw := r.URL.Query().Get("limit"); raw != "" {
		limit, err := strconv.Atoi(raw)
		if err != nil {
			core.WriteCommandError(w, r, core.Validationf("invalid limit: '%s'", raw))
			return
		}
		query.Limit = limit
	}

	response, err := mediator.Send[SuggestPlayerNamesQuery, []string](r.Context(), query)
	if err != nil {
		core.WriteCommandError(w, r, err)
		return
	}

	core.WriteOK(w, r, response)
}

type SuggestPlayerNamesQueryHandler struct {
	names gamesession.NameTracker
}

func NewSuggestPlayerNamesQueryHandler(names gamesession.NameTracker) *SuggestPlayerNamesQueryHandler {
	return &SuggestPlayerNamesQueryHandler{names: names}
}

func (h *SuggestPlayerNamesQueryHandler) Handle(ctx context.Context, request SuggestPlayerNamesQuery) ([]string, error) {
	if request.UserID <= 0 {
		return nil, core.Forbidden("authentication required")
	}

	return h.names.Suggest(ctx, request.UserID, request.Prefix, request.Limit)
}
