package commands

import (
	"context"
	"database/sql"
	"slices"

	"github.com/Cryborg/scoresheets-sub000/internal/modules/core"
	gamesession "github.com/Cryborg/scoresheets-sub000/internal/modules/game-session"
	sessiondomain "github.com/Cryborg/scoresheets-sub000/internal/modules/game-session/domain"
)

// lockSession loads and locks a session owned by userID inside tx and checks
// it is scored by one of engines.
func lockSession(
	ctx context.Context,
	tx *sql.Tx,
	sessionID int64,
	userID int64,
	engines ...sessiondomain.EngineKind,
) (sessiondomain.Session, []sessiondomain.Player, error) {
	if userID <= 0 {
		return sessiondomain.Session{}, nil, core.Forbidden("authentication required")
	}

	session, err := gamesession.LoadOwnedSession(ctx, tx, sessionID, userID, true)
	if err != nil {
		return sessiondomain.Session{}, nil, err
	}

	if !slices.Contains(engines, session.Engine) {
		return sessiondomain.Session{}, nil, core.Validationf("session %d is scored with %s, not %s", session.ID, session.Engine, engines[0])
	}

	players, err := gamesession.LoadPlayers(ctx, tx, session.ID)
	if err != nil {
		return sessiondomain.Session{}, nil, err
	}

	return session, players, nil
}

func requirePlayer(players []sessiondomain.Player, playerID int64) error {
	if _, found := sessiondomain.FindPlayer(players, playerID); !found {
		return core.NotFound("player")
	}
	return nil
}
