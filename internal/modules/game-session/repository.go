package gamesession

import (
	"context"
	"database/sql"
	"errors"

	"github.com/Cryborg/scoresheets-sub000/internal/modules/core"
	"github.com/Cryborg/scoresheets-sub000/internal/modules/game-session/domain"

	"github.com/eskrenkovic/tql"
	"github.com/lib/pq"
)

const sessionColumns = `
	s.id,
	s.owner_id,
	s.game_id,
	g.slug AS game_slug,
	s.name,
	s.engine,
	s.score_direction,
	s.has_score_target,
	s.score_target,
	s.finish_current_round,
	s.created_at`

// LoadOwnedSession loads a session only when userID owns it. A session owned
// by somebody else is reported as not found. With forUpdate the row stays
// locked until the surrounding transaction ends.
func LoadOwnedSession(ctx context.Context, q core.DBTX, sessionID, userID int64, forUpdate bool) (domain.Session, error) {
	query := `
		SELECT` + sessionColumns + `
		FROM
			game_session s
			LEFT JOIN game g ON g.id = s.game_id
		WHERE
			s.id = $1 AND s.owner_id = $2`
	if forUpdate {
		query += `
		FOR UPDATE OF s`
	}

	session, err := tql.QueryFirst[domain.Session](ctx, q, query+";", sessionID, userID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.Session{}, core.NotFound("session")
		}
		return domain.Session{}, core.Storage(err, "failed to load session")
	}

	return session, nil
}

func LoadOwnedSessions(ctx context.Context, q core.DBTX, userID int64) ([]domain.Session, error) {
	const query = `
		SELECT` + sessionColumns + `
		FROM
			game_session s
			LEFT JOIN game g ON g.id = s.game_id
		WHERE
			s.owner_id = $1
		ORDER BY
			s.created_at DESC, s.id DESC;`

	sessions, err := tql.Query[domain.Session](ctx, q, query, userID)
	if err != nil {
		return nil, core.Storage(err, "failed to load sessions")
	}

	return sessions, nil
}

// LoadPlayers returns the players of a session ordered by seat.
func LoadPlayers(ctx context.Context, q core.DBTX, sessionID int64) ([]domain.Player, error) {
	const query = `
		SELECT
			id,
			session_id,
			name,
			position,
			team_index
		FROM
			session_player
		WHERE
			session_id = $1
		ORDER BY
			position;`

	players, err := tql.Query[domain.Player](ctx, q, query, sessionID)
	if err != nil {
		return nil, core.Storage(err, "failed to load players")
	}

	return players, nil
}

type PlayerCount struct {
	SessionID int64 `db:"session_id"`
	Count     int   `db:"player_count"`
}

func CountPlayers(ctx context.Context, q core.DBTX, sessionIDs []int64) (map[int64]int, error) {
	const query = `
		SELECT
			session_id,
			COUNT(*) AS player_count
		FROM
			session_player
		WHERE
			session_id = ANY($1)
		GROUP BY
			session_id;`

	rows, err := tql.Query[PlayerCount](ctx, q, query, pq.Array(sessionIDs))
	if err != nil {
		return nil, core.Storage(err, "failed to count players")
	}

	counts := make(map[int64]int, len(rows))
	for _, row := range rows {
		counts[row.SessionID] = row.Count
	}

	return counts, nil
}

// InsertSession stores the session with its players and fills in the
// generated ids.
func InsertSession(ctx context.Context, tx *sql.Tx, session *domain.Session, players []domain.Player) error {
	const sessionStmt = `
		INSERT INTO
			game_session (owner_id, game_id, name, engine, score_direction, has_score_target, score_target, finish_current_round)
		VALUES
			($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING
			id;`

	sessionID, err := tql.QueryFirst[int64](
		ctx,
		tx,
		sessionStmt,
		session.OwnerID,
		session.GameID,
		session.Name,
		string(session.Engine),
		string(session.ScoreDirection),
		session.HasScoreTarget,
		session.ScoreTarget,
		session.FinishCurrentRound,
	)
	if err != nil {
		return core.Storage(err, "failed to insert session")
	}
	session.ID = sessionID

	const playerStmt = `
		INSERT INTO
			session_player (session_id, name, position, team_index)
		VALUES
			($1, $2, $3, $4)
		RETURNING
			id;`

	for i := range players {
		players[i].SessionID = sessionID

		playerID, err := tql.QueryFirst[int64](
			ctx,
			tx,
			playerStmt,
			sessionID,
			players[i].Name,
			players[i].Position,
			players[i].TeamIndex,
		)
		if err != nil {
			return core.Storage(err, "failed to insert player")
		}
		players[i].ID = playerID
	}

	return nil
}

func RenameSession(ctx context.Context, q core.DBTX, sessionID int64, name string) error {
	const stmt = `
		UPDATE
			game_session
		SET
			name = :name
		WHERE
			id = :id;`

	params := map[string]any{"id": sessionID, "name": name}
	if _, err := tql.Exec(ctx, q, stmt, params); err != nil {
		return core.Storage(err, "failed to rename session")
	}

	return nil
}

// DeleteSession removes the session. Players and score entries go with it
// through ON DELETE CASCADE.
func DeleteSession(ctx context.Context, q core.DBTX, sessionID int64) error {
	const stmt = `
		DELETE FROM
			game_session
		WHERE
			id = :id;`

	if _, err := tql.Exec(ctx, q, stmt, map[string]any{"id": sessionID}); err != nil {
		return core.Storage(err, "failed to delete session")
	}

	return nil
}
