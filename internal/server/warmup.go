package server

import (
	"context"
	"database/sql"

	authdomain "github.com/Cryborg/scoresheets-sub000/internal/modules/auth/domain"
	"github.com/Cryborg/scoresheets-sub000/internal/modules/core"
	gamesession "github.com/Cryborg/scoresheets-sub000/internal/modules/game-session"
	sessiondomain "github.com/Cryborg/scoresheets-sub000/internal/modules/game-session/domain"
	gamesdomain "github.com/Cryborg/scoresheets-sub000/internal/modules/games/domain"
	scoringdomain "github.com/Cryborg/scoresheets-sub000/internal/modules/scoring/domain"
)

// warmRowMappers touches every struct the stores scan or bind through tql.
func warmRowMappers(ctx context.Context, db *sql.DB) error {
	warmers := []func() error{
		func() error { return core.WarmRowType[authdomain.User](ctx, db, "1 AS id") },
		func() error { return core.WarmRowType[authdomain.LoginSession](ctx, db, "'' AS token") },
		func() error { return core.WarmRowType[gamesdomain.Game](ctx, db, "1 AS id") },
		func() error { return core.WarmRowType[sessiondomain.Session](ctx, db, "1 AS id") },
		func() error { return core.WarmRowType[sessiondomain.Player](ctx, db, "1 AS id") },
		func() error { return core.WarmRowType[gamesession.PlayerCount](ctx, db, "1 AS session_id") },
		func() error { return core.WarmRowType[scoringdomain.Entry](ctx, db, "1 AS id") },
		func() error { return core.WarmRowType[scoringdomain.TeamRoundTotal](ctx, db, "1 AS round_number") },
		func() error { return core.WarmRowType[scoringdomain.RoundDetails](ctx, db, "1 AS round_number") },
		func() error { return core.WarmParamType(ctx, db, scoringdomain.EntryDraft{}, "session_id") },
		func() error { return core.WarmParamType(ctx, db, authdomain.LoginSession{}, "user_id") },
	}

	for _, warm := range warmers {
		if err := warm(); err != nil {
			return err
		}
	}

	return nil
}
