package auth

import (
	"context"
	"database/sql"
	"errors"

	"github.com/Cryborg/scoresheets-sub000/internal/modules/auth/domain"
	"github.com/Cryborg/scoresheets-sub000/internal/modules/core"

	"github.com/eskrenkovic/tql"
)

func InsertUser(ctx context.Context, q core.DBTX, user *domain.User) error {
	const stmt = `
		INSERT INTO
			auth.user (username, email, password_hash)
		VALUES
			($1, $2, $3)
		RETURNING
			id;`

	id, err := tql.QueryFirst[int64](ctx, q, stmt, user.Username, user.Email, user.PasswordHash)
	if err != nil {
		if core.IsUniqueViolation(err) {
			return core.Validationf("username or email is already taken")
		}
		return core.Storage(err, "failed to create new user entry")
	}
	user.ID = id

	return nil
}

// LockUserByLogin loads the user whose username or email is login and locks
// the row until the transaction ends.
func LockUserByLogin(ctx context.Context, tx *sql.Tx, login string) (domain.User, bool, error) {
	const query = `
		SELECT
			id,
			username,
			email,
			password_hash,
			locked,
			unsuccessful_login_attempts,
			created_at
		FROM
			auth.user
		WHERE
			username = $1 OR email = lower($1)
		LIMIT 1
		FOR UPDATE;`

	user, err := tql.QueryFirst[domain.User](ctx, tx, query, login)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		return domain.User{}, false, nil
	case err != nil:
		return domain.User{}, false, core.Storage(err, "failed to load user")
	}

	return user, true, nil
}

func UpdateLoginState(ctx context.Context, q core.DBTX, user domain.User) error {
	const stmt = `
		UPDATE
			auth.user
		SET
			locked = :locked,
			unsuccessful_login_attempts = :attempts
		WHERE
			id = :id;`

	params := map[string]any{
		"id":       user.ID,
		"locked":   user.Locked,
		"attempts": user.UnsuccessfulLoginAttempts,
	}
	if _, err := tql.Exec(ctx, q, stmt, params); err != nil {
		return core.Storage(err, "failed to update user")
	}

	return nil
}

func InsertLoginSession(ctx context.Context, q core.DBTX, session domain.LoginSession) error {
	const stmt = `
		INSERT INTO
			auth.session (token, user_id, expires_at)
		VALUES
			(:token, :user_id, :expires_at);`

	if _, err := tql.Exec(ctx, q, stmt, session); err != nil {
		return core.Storage(err, "failed to create login session")
	}

	return nil
}

func DeleteLoginSession(ctx context.Context, q core.DBTX, token string) error {
	const stmt = `
		DELETE FROM
			auth.session
		WHERE
			token = :token;`

	if _, err := tql.Exec(ctx, q, stmt, map[string]any{"token": token}); err != nil {
		return core.Storage(err, "failed to delete login session")
	}

	return nil
}

func LoginSessionByToken(ctx context.Context, q core.DBTX, token string) (domain.LoginSession, bool, error) {
	const query = `
		SELECT
			token,
			user_id,
			expires_at
		FROM
			auth.session
		WHERE
			token = $1;`

	session, err := tql.QueryFirst[domain.LoginSession](ctx, q, query, token)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		return domain.LoginSession{}, false, nil
	case err != nil:
		return domain.LoginSession{}, false, core.Storage(err, "failed to load login session")
	}

	return session, true, nil
}
