package server

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/Cryborg/scoresheets-sub000/internal/config"
	authcommands "github.com/Cryborg/scoresheets-sub000/internal/modules/auth/commands"
	"github.com/Cryborg/scoresheets-sub000/internal/test"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

type IntegrationTestFixture struct {
	baseURL     string
	databaseURL string
	unavailable error
}

var fixture = IntegrationTestFixture{}

func TestMain(m *testing.M) {
	os.Exit(run(m))
}

func run(m *testing.M) int {
	ctx := context.Background()

	infrastructure := test.NewLocalTestFixture()
	defer func() {
		if err := infrastructure.Stop(ctx); err != nil {
			log.Println(err)
		}
	}()

	if err := infrastructure.Start(ctx); err != nil {
		fixture.unavailable = err
		return m.Run()
	}

	conf := config.Config{
		Logger:         zap.NewNop(),
		DatabaseURL:    infrastructure.DatabaseURL,
		MigrationsPath: "../../db/migrations",
		RequestTimeout: 10 * time.Second,
		RedisURL:       infrastructure.RedisURL,
		Catalog:        config.CatalogConfiguration{CacheSize: 16, CacheTTL: time.Minute},
		Auth: config.AuthConfiguration{
			SessionTTL: time.Hour,
			BcryptCost: bcrypt.MinCost,
		},
	}

	srv, err := NewHTTPServer(conf)
	if err != nil {
		log.Println(err)
		return 1
	}

	httpServer := httptest.NewServer(srv.Handler())
	defer httpServer.Close()

	fixture.baseURL = httpServer.URL
	fixture.databaseURL = infrastructure.DatabaseURL

	return m.Run()
}

func requireInfrastructure(t *testing.T) {
	t.Helper()
	if fixture.unavailable != nil {
		t.Skipf("integration infrastructure unavailable: %v", fixture.unavailable)
	}
}

type responseAssertion func(*http.Response)

func withStatus(t *testing.T, status int) responseAssertion {
	return func(resp *http.Response) {
		require.Equal(t, status, resp.StatusCode)
	}
}

func sendRequest[TReq any, TResp any](
	c *http.Client,
	url string,
	method string,
	req TReq,
	opts ...responseAssertion,
) (TResp, error) {
	var resp TResp

	payload, err := json.Marshal(req)
	if err != nil {
		return resp, err
	}

	httpReq, err := http.NewRequest(method, fmt.Sprintf("%s%s", fixture.baseURL, url), bytes.NewReader(payload))
	if err != nil {
		return resp, err
	}
	httpReq.Header.Set("Content-Type", "application/json")

	httpResp, err := c.Do(httpReq)
	if err != nil {
		return resp, err
	}
	defer func() {
		_ = httpResp.Body.Close()
	}()

	for _, opt := range opts {
		opt(httpResp)
	}

	responsePayload, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return resp, err
	}

	if len(responsePayload) > 0 {
		if err := json.Unmarshal(responsePayload, &resp); err != nil {
			return resp, err
		}
	}

	return resp, nil
}

// login registers a fresh user and returns a client carrying its session
// cookie.
func login(t *testing.T) *http.Client {
	t.Helper()

	jar, err := cookiejar.New(nil)
	require.NoError(t, err)
	client := &http.Client{Jar: jar}

	registerUserCommand := authcommands.RegisterCommand{
		Email:    fmt.Sprintf("%s@tests.com", uuid.NewString()),
		Username: uuid.NewString(),
		Password: uuid.NewString(),
	}

	_, err = sendRequest[authcommands.RegisterCommand, authcommands.RegisterResponse](
		client,
		"/auth/registrations",
		http.MethodPost,
		registerUserCommand,
		withStatus(t, http.StatusOK),
	)
	require.NoError(t, err)

	loginCommand := authcommands.LoginCommand{
		Login:    registerUserCommand.Email,
		Password: registerUserCommand.Password,
	}

	_, err = sendRequest[authcommands.LoginCommand, authcommands.LoginResponse](
		client,
		"/auth/login",
		http.MethodPost,
		loginCommand,
		withStatus(t, http.StatusOK),
		func(resp *http.Response) { require.NotEmpty(t, resp.Cookies()) },
	)
	require.NoError(t, err)

	return client
}
