package queries

import (
	"context"
	"database/sql"
	"net/http"
	"time"

	"github.com/Cryborg/scoresheets-sub000/internal/modules/core"
	gamesession "github.com/Cryborg/scoresheets-sub000/internal/modules/game-session"
	"github.com/Cryborg/scoresheets-sub000/internal/modules/game-session/domain"

	"github.com/eskrenkovic/mediator-go"
)

type GetOwnedSessionsQuery struct {
	OwnerID int64
}

type SessionSummary struct {
	ID          int64             `json:"id"`
	Name        string            `json:"name"`
	GameSlug    *string           `json:"game_slug,omitempty"`
	Engine      domain.EngineKind `json:"engine"`
	PlayerCount int               `json:"player_count"`
	CreatedAt   time.Time         `json:"created_at"`
}

func HandleGetOwnedSessions(w http.ResponseWriter, r *http.Request) {
	response, err := mediator.Send[GetOwnedSessionsQuery, []SessionSummary](
		r.Context(),
		GetOwnedSessionsQuery{OwnerID: core.Session(r.Context()).UserID},
	)
	if err != nil {
		core.WriteCommandError(w, r, err)
		return
	}

	core.WriteOK(w, r, response)
}

type GetOwnedSessionsQueryHandler struct {
	db *sql.DB
}

func NewGetOwnedSessionsQueryHandler(db *sql.DB) *GetOwnedSessionsQueryHandler {
	return &GetOwnedSessionsQueryHandler{db}
}

func (h *GetOwnedSessionsQueryHandler) Handle(
	ctx context.Context,
	request GetOwnedSessionsQuery,
) ([]SessionSummary, error) {
	if request.OwnerID <= 0 {
		return nil, core.Forbidden("authentication required")
	}

	sessions, err := gamesession.LoadOwnedSessions(ctx, h.db, request.OwnerID)
	if err != nil {
		return nil, err
	}

	ids := make([]int64, 0, len(sessions))
	for _, s := range sessions {
		ids = append(ids, s.ID)
	}

	counts, err := gamesession.CountPlayers(ctx, h.db, ids)
	if err != nil {
		return nil, err
	}

	return core.Map(sessions, func(s domain.Session) SessionSummary {
		return SessionSummary{
			ID:          s.ID,
			Name:        s.Name,
			GameSlug:    s.GameSlug,
			Engine:      s.Engine,
			PlayerCount: counts[s.ID],
			CreatedAt:   s.CreatedAt,
		}
	}), nil
}
