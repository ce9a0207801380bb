package auth

import (
	"context"
	"database/sql"
	"net/http"
	"time"

	"github.com/Cryborg/scoresheets-sub000/internal/modules/auth/domain"
	"github.com/Cryborg/scoresheets-sub000/internal/modules/core"
)

// UserResolver turns a session token into the id of the user it belongs to.
type UserResolver interface {
	ResolveUser(ctx context.Context, token string) (int64, bool, error)
}

type SQLUserResolver struct {
	db  *sql.DB
	now func() time.Time
}

func NewSQLUserResolver(db *sql.DB) *SQLUserResolver {
	return &SQLUserResolver{db: db, now: time.Now}
}

func (r *SQLUserResolver) ResolveUser(ctx context.Context, token string) (int64, bool, error) {
	if !domain.ValidToken(token) {
		return 0, false, nil
	}

	session, found, err := LoginSessionByToken(ctx, r.db, token)
	if err != nil || !found {
		return 0, false, err
	}

	if err := session.Validate(r.now()); err != nil {
		return 0, false, nil
	}

	return session.UserID, true, nil
}

func AuthenticationMiddleware(resolver UserResolver) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			cookie, err := r.Cookie(domain.SessionCookieName)
			if err != nil {
				core.WriteUnauthorized(w, r)
				return
			}

			userID, ok, err := resolver.ResolveUser(r.Context(), cookie.Value)
			switch {
			case err != nil:
				core.WriteCommandError(w, r, err)
				return
			case !ok:
				core.WriteUnauthorized(w, r)
				return
			}

			authContext := core.WithSession(r.Context(), core.ContextSession{UserID: userID})
			next.ServeHTTP(w, r.WithContext(authContext))
		})
	}
}
