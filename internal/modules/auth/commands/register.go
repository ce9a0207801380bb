package commands

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"

	"github.com/Cryborg/scoresheets-sub000/internal/modules/auth"
	"github.com/Cryborg/scoresheets-sub000/internal/modules/auth/domain"
	"github.com/Cryborg/scoresheets-sub000/internal/modules/core"

	"github.com/eskrenkovic/mediator-go"
)

type RegisterCommand struct {
	Username string `json:"username"`
	Password string `json:"password"`
	Email    string `json:"email"`
}

func (c RegisterCommand) Validate() error {
	var validationErr core.ValidationError

	if c.Username == "" {
		validationErr.Add(fmt.Errorf("invalid Username: '%s'", c.Username))
	}

	if c.Password == "" {
		validationErr.Add(fmt.Errorf("invalid Password"))
	}

	if c.Email == "" {
		validationErr.Add(fmt.Errorf("invalid Email: '%s'", c.Email))
	}

	return validationErr.Collect()
}

type RegisterResponse struct {
	UserID int64 `json:"user_id"`
}

func (c RegisterCommand) Redacted() interface{} {
	c.Password = redacted
	return c
}

func HandleRegistration(w http.ResponseWriter, r *http.Request) {
	command, err := core.RequestBody[RegisterCommand](r)
	if err != nil {
		core.WriteCommandError(w, r, err)
		return
	}

	response, err := mediator.Send[RegisterCommand, RegisterResponse](r.Context(), command)
	if err != nil {
		core.WriteCommandError(w, r, err)
		return
	}

	core.WriteOK(w, r, response)
}

type RegisterCommandHandler struct {
	db             *sql.DB
	passwordHasher *domain.PasswordHasher
}

func NewRegisterCommandHandler(db *sql.DB, passwordHasher *domain.PasswordHasher) *RegisterCommandHandler {
	return &RegisterCommandHandler{db: db, passwordHasher: passwordHasher}
}

func (h *RegisterCommandHandler) Handle(ctx context.Context, request RegisterCommand) (RegisterResponse, error) {
	user, err := domain.RegisterUser(request.Username, request.Email, request.Password, h.passwordHasher)
	if err != nil {
		return RegisterResponse{}, core.Validation(err)
	}

	if err := auth.InsertUser(ctx, h.db, &user); err != nil {
		return RegisterResponse{}, err
	}

	return RegisterResponse{UserID: user.ID}, nil
}
