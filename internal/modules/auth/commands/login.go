package commands

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"
	"time"

	"github.com/Cryborg/scoresheets-sub000/internal/modules/auth"
	"github.com/Cryborg/scoresheets-sub000/internal/modules/auth/domain"
	"github.com/Cryborg/scoresheets-sub000/internal/modules/core"

	"github.com/eskrenkovic/mediator-go"
	"go.uber.org/zap"
)

const (
	invalidCredentials = "invalid login or password"
	redacted           = "***"
)

type LoginCommand struct {
	Login    string `json:"login"`
	Password string `json:"password"`
}

func (c LoginCommand) Validate() error {
	if c.Login == "" {
		return fmt.Errorf("invalid login: '%s'", c.Login)
	}

	if c.Password == "" {
		return fmt.Errorf("invalid password")
	}

	return nil
}

type LoginResponse struct {
	UserID    int64     `json:"user_id"`
	Token     string    `json:"-"`
	ExpiresAt time.Time `json:"expires_at"`
}

func (c LoginCommand) Redacted() interface{} {
	c.Password = redacted
	return c
}

// HandleLogin answers with the session cookie set. secure marks the cookie
// as HTTPS only.
func HandleLogin(secure bool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		command, err := core.RequestBody[LoginCommand](r)
		if err != nil {
			core.WriteCommandError(w, r, err)
			return
		}

		response, err := mediator.Send[LoginCommand, LoginResponse](r.Context(), command)
		if err != nil {
			core.WriteCommandError(w, r, err)
			return
		}

		cookie := &http.Cookie{
			Name:     domain.SessionCookieName,
			Value:    response.Token,
			Path:     "/",
			Expires:  response.ExpiresAt,
			HttpOnly: true,
			Secure:   secure,
			SameSite: http.SameSiteLaxMode,
		}

		core.WriteOK(w, r, response, core.WithCookie(cookie))
	}
}

type LoginCommandHandler struct {
	db             *sql.DB
	passwordHasher *domain.PasswordHasher
	sessionTTL     time.Duration
}

func NewLoginCommandHandler(
	db *sql.DB,
	passwordHasher *domain.PasswordHasher,
	sessionTTL time.Duration,
) *LoginCommandHandler {
	return &LoginCommandHandler{db: db, passwordHasher: passwordHasher, sessionTTL: sessionTTL}
}

func (h *LoginCommandHandler) Handle(ctx context.Context, request LoginCommand) (LoginResponse, error) {
	var (
		response LoginResponse
		authErr  error
	)

	err := core.Tx(ctx, h.db, func(ctx context.Context, tx *sql.Tx) error {
		user, found, err := auth.LockUserByLogin(ctx, tx, request.Login)
		if err != nil {
			return err
		}
		if !found {
			authErr = fmt.Errorf("no user for login '%s'", request.Login)
			return nil
		}

		authErr = user.Authenticate(request.Password, h.passwordHasher)

		if err := auth.UpdateLoginState(ctx, tx, user); err != nil {
			return err
		}
		if authErr != nil {
			return nil
		}

		session := domain.NewLoginSession(user.ID, h.sessionTTL, time.Now())
		if err := auth.InsertLoginSession(ctx, tx, session); err != nil {
			return err
		}

		response = LoginResponse{UserID: user.ID, Token: session.Token, ExpiresAt: session.ExpiresAt}
		return nil
	})
	if err != nil {
		return LoginResponse{}, err
	}

	if authErr != nil {
		core.Logger(ctx).Info("login rejected", zap.Error(authErr))
		return LoginResponse{}, core.Unauthorized(invalidCredentials)
	}

	return response, nil
}
