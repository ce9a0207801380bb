package commands

import (
	"context"
	"database/sql"
	"net/http"

	"github.com/Cryborg/scoresheets-sub000/internal/modules/auth"
	"github.com/Cryborg/scoresheets-sub000/internal/modules/auth/domain"
	"github.com/Cryborg/scoresheets-sub000/internal/modules/core"

	"github.com/eskrenkovic/mediator-go"
)

type LogoutCommand struct {
	Token string
}

func (c LogoutCommand) Redacted() interface{} {
	c.Token = redacted
	return c
}

func HandleLogout(w http.ResponseWriter, r *http.Request) {
	if cookie, err := r.Cookie(domain.SessionCookieName); err == nil && domain.ValidToken(cookie.Value) {
		command := LogoutCommand{Token: cookie.Value}
		if _, err := mediator.Send[LogoutCommand, core.Unit](r.Context(), command); err != nil {
			core.WriteCommandError(w, r, err)
			return
		}
	}

	expired := &http.Cookie{Name: domain.SessionCookieName, Path: "/", MaxAge: -1}
	core.WriteNoContent(w, r, core.WithCookie(expired))
}

type LogoutCommandHandler struct {
	db *sql.DB
}

func NewLogoutCommandHandler(db *sql.DB) *LogoutCommandHandler {
	return &LogoutCommandHandler{db: db}
}

func (h *LogoutCommandHandler) Handle(ctx context.Context, request LogoutCommand) (core.Unit, error) {
	return core.Unit{}, auth.DeleteLoginSession(ctx, h.db, request.Token)
}
