package commands

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"

	"github.com/Cryborg/scoresheets-sub000/internal/modules/core"
	gamesession "github.com/Cryborg/scoresheets-sub000/internal/modules/game-session"
	"github.com/Cryborg/scoresheets-sub000/internal/modules/game-session/domain"
	"github.com/Cryborg/scoresheets-sub000/internal/modules/games"
	gamesdomain "github.com/Cryborg/scoresheets-sub000/internal/modules/games/domain"

	"github.com/eskrenkovic/mediator-go"
)

// GenericGameSlug selects the generic score sheet instead of a catalog game.
const GenericGameSlug = "generic"

type CreateSessionCommand struct {
	OwnerID  int64  `json:"-"`
	GameSlug string `json:"game_slug"`

	domain.SessionDraft
}

func (c CreateSessionCommand) Validate() error {
	if len(c.GameSlug) > 64 {
		return fmt.Errorf("invalid GameSlug: '%s'", c.GameSlug)
	}

	if len(c.Players) == 0 && len(c.Teams) == 0 {
		return fmt.Errorf("at least one player is required")
	}

	return nil
}

type CreateSessionResponse struct {
	SessionID int64 `json:"session_id"`
}

func HandleCreateGameSession(w http.ResponseWriter, r *http.Request) {
	command, err := core.RequestBody[CreateSessionCommand](r)
	if err != nil {
		core.WriteCommandError(w, r, err)
		return
	}

	command.OwnerID = core.Session(r.Context()).UserID

	response, err := mediator.Send[CreateSessionCommand, CreateSessionResponse](
		r.Context(),
		command,
	)
	if err != nil {
		core.WriteCommandError(w, r, err)
		return
	}

	location := fmt.Sprintf("/game-sessions/%d", response.SessionID)
	core.WriteCreated(w, r, location, response)
}

type CreateSessionCommandHandler struct {
	db      *sql.DB
	catalog games.Catalog
	names   gamesession.NameTracker
}

func NewCreateSessionCommandHandler(
	db *sql.DB,
	catalog games.Catalog,
	names gamesession.NameTracker,
) *CreateSessionCommandHandler {
	return &CreateSessionCommandHandler{db: db, catalog: catalog, names: names}
}

func (h *CreateSessionCommandHandler) Handle(
	ctx context.Context,
	request CreateSessionCommand,
) (CreateSessionResponse, error) {
	if request.OwnerID <= 0 {
		return CreateSessionResponse{}, core.Forbidden("authentication required")
	}

	var game *gamesdomain.Game
	if request.GameSlug != "" && request.GameSlug != GenericGameSlug {
		found, err := h.catalog.GameBySlug(ctx, request.GameSlug)
		if err != nil {
			return CreateSessionResponse{}, err
		}
		game = &found
	}

	session, players, err := domain.PlanSession(request.OwnerID, game, request.SessionDraft)
	if err != nil {
		return CreateSessionResponse{}, core.Validation(err)
	}

	err = core.Tx(ctx, h.db, func(ctx context.Context, tx *sql.Tx) error {
		return gamesession.InsertSession(ctx, tx, &session, players)
	})
	if err != nil {
		return CreateSessionResponse{}, err
	}

	names := make([]string, 0, len(players))
	for _, p := range players {
		names = append(names, p.Name)
	}
	gamesession.TrackNames(ctx, h.names, request.OwnerID, names)

	return CreateSessionResponse{SessionID: session.ID}, nil
}
