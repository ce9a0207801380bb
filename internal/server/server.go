package server

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strconv"

	"github.com/Cryborg/scoresheets-sub000/internal/config"
	"github.com/Cryborg/scoresheets-sub000/internal/modules/auth"
	authcommands "github.com/Cryborg/scoresheets-sub000/internal/modules/auth/commands"
	authdomain "github.com/Cryborg/scoresheets-sub000/internal/modules/auth/domain"
	"github.com/Cryborg/scoresheets-sub000/internal/modules/core"
	gamesession "github.com/Cryborg/scoresheets-sub000/internal/modules/game-session"
	gamesessioncommands "github.com/Cryborg/scoresheets-sub000/internal/modules/game-session/commands"
	gamesessionqueries "github.com/Cryborg/scoresheets-sub000/internal/modules/game-session/queries"
	"github.com/Cryborg/scoresheets-sub000/internal/modules/games"
	gamesdomain "github.com/Cryborg/scoresheets-sub000/internal/modules/games/domain"
	gamesqueries "github.com/Cryborg/scoresheets-sub000/internal/modules/games/queries"
	scoringcommands "github.com/Cryborg/scoresheets-sub000/internal/modules/scoring/commands"
	scoringqueries "github.com/Cryborg/scoresheets-sub000/internal/modules/scoring/queries"

	"github.com/eskrenkovic/mediator-go"
	"github.com/eskrenkovic/migrate-go"
	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	_ "github.com/lib/pq"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

type Server interface {
	Start() error
	Stop(ctx context.Context) error
}

var _ Server = &HTTPServer{}

// HTTPServer acts as the composition root for an application.
type HTTPServer struct {
	server *http.Server
	logger *zap.Logger
	db     *sql.DB
	redis  *redis.Client
}

func NewHTTPServer(config config.Config) (*HTTPServer, error) {
	baseCtx := context.Background()

	db, err := sql.Open("postgres", config.DatabaseURL)
	if err != nil {
		return nil, err
	}

	if err := migrate.Run(baseCtx, db, config.MigrationsPath); err != nil {
		return nil, err
	}

	if err := warmRowMappers(baseCtx, db); err != nil {
		return nil, err
	}

	s := &HTTPServer{logger: config.Logger, db: db}

	names, err := s.nameTracker(baseCtx, config.RedisURL)
	if err != nil {
		return nil, err
	}

	catalog := games.NewCachedCatalog(
		games.NewSQLCatalog(db),
		config.Catalog.CacheSize,
		config.Catalog.CacheTTL,
	)

	if err := registerHandlers(config, db, catalog, names); err != nil {
		return nil, err
	}

	s.server = &http.Server{
		Addr:    net.JoinHostPort("", strconv.Itoa(config.Port)),
		Handler: s.routes(config, auth.NewSQLUserResolver(db)),
	}

	return s, nil
}

// nameTracker keeps player name frequencies in Redis when it is configured
// and in Postgres otherwise.
func (s *HTTPServer) nameTracker(ctx context.Context, redisURL string) (gamesession.NameTracker, error) {
	if redisURL == "" {
		return gamesession.NewSQLNameTracker(s.db), nil
	}

	options, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("invalid redis url: %w", err)
	}

	s.redis = redis.NewClient(options)
	if err := s.redis.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to reach redis: %w", err)
	}

	return gamesession.NewRedisNameTracker(s.redis), nil
}

func registerHandlers(
	config config.Config,
	db *sql.DB,
	catalog games.Catalog,
	names gamesession.NameTracker,
) error {
	requestLoggingBehavior := core.RequestLoggingBehavior{Logger: config.Logger}
	handlerErrorLoggingBehavior := core.HandlerErrorLoggingBehavior{Logger: config.Logger}
	requestValidationBehavior := core.RequestValidationBehavior{}

	mediator.RegisterPipelineBehavior(&requestLoggingBehavior)
	mediator.RegisterPipelineBehavior(&handlerErrorLoggingBehavior)
	mediator.RegisterPipelineBehavior(&requestValidationBehavior)

	// auth

	passwordHasher := authdomain.NewBcryptPasswordHasher(config.Auth.BcryptCost)

	err := mediator.RegisterRequestHandler[authcommands.RegisterCommand, authcommands.RegisterResponse](
		authcommands.NewRegisterCommandHandler(db, passwordHasher),
	)
	if err != nil {
		return err
	}

	err = mediator.RegisterRequestHandler[authcommands.LoginCommand, authcommands.LoginResponse](
		authcommands.NewLoginCommandHandler(db, passwordHasher, config.Auth.SessionTTL),
	)
	if err != nil {
		return err
	}

	err = mediator.RegisterRequestHandler[authcommands.LogoutCommand, core.Unit](
		authcommands.NewLogoutCommandHandler(db),
	)
	if err != nil {
		return err
	}

	// games

	err = mediator.RegisterRequestHandler[gamesqueries.ListGamesQuery, []gamesdomain.Game](
		gamesqueries.NewListGamesQueryHandler(catalog),
	)
	if err != nil {
		return err
	}

	err = mediator.RegisterRequestHandler[gamesqueries.GetGameQuery, gamesdomain.Game](
		gamesqueries.NewGetGameQueryHandler(catalog),
	)
	if err != nil {
		return err
	}

	// game-session

	err = mediator.RegisterRequestHandler[gamesessioncommands.CreateSessionCommand, gamesessioncommands.CreateSessionResponse](
		gamesessioncommands.NewCreateSessionCommandHandler(db, catalog, names),
	)
	if err != nil {
		return err
	}

	err = mediator.RegisterRequestHandler[gamesessioncommands.RenameSessionCommand, core.Unit](
		gamesessioncommands.NewRenameSessionCommandHandler(db),
	)
	if err != nil {
		return err
	}

	err = mediator.RegisterRequestHandler[gamesessioncommands.DeleteSessionCommand, core.Unit](
		gamesessioncommands.NewDeleteSessionCommandHandler(db),
	)
	if err != nil {
		return err
	}

	err = mediator.RegisterRequestHandler[gamesessionqueries.GetOwnedSessionsQuery, []gamesessionqueries.SessionSummary](
		gamesessionqueries.NewGetOwnedSessionsQueryHandler(db),
	)
	if err != nil {
		return err
	}

	err = mediator.RegisterRequestHandler[gamesessionqueries.GetSessionViewQuery, gamesessionqueries.SessionView](
		gamesessionqueries.NewGetSessionViewQueryHandler(db),
	)
	if err != nil {
		return err
	}

	err = mediator.RegisterRequestHandler[gamesessionqueries.SuggestPlayerNamesQuery, []string](
		gamesessionqueries.NewSuggestPlayerNamesQueryHandler(names),
	)
	if err != nil {
		return err
	}

	// scoring

	err = mediator.RegisterRequestHandler[scoringcommands.AddRoundCommand, scoringcommands.AddRoundResponse](
		scoringcommands.NewAddRoundCommandHandler(db),
	)
	if err != nil {
		return err
	}

	err = mediator.RegisterRequestHandler[scoringcommands.SetRoundScoreCommand, core.Unit](
		scoringcommands.NewSetRoundScoreCommandHandler(db),
	)
	if err != nil {
		return err
	}

	err = mediator.RegisterRequestHandler[scoringcommands.DeleteRoundCommand, core.Unit](
		scoringcommands.NewDeleteRoundCommandHandler(db),
	)
	if err != nil {
		return err
	}

	err = mediator.RegisterRequestHandler[scoringcommands.AddTeamRoundCommand, scoringcommands.AddTeamRoundResponse](
		scoringcommands.NewAddTeamRoundCommandHandler(db),
	)
	if err != nil {
		return err
	}

	err = mediator.RegisterRequestHandler[scoringcommands.SetCategoryScoreCommand, scoringcommands.SetCategoryScoreResponse](
		scoringcommands.NewSetCategoryScoreCommandHandler(db),
	)
	if err != nil {
		return err
	}

	return mediator.RegisterRequestHandler[scoringqueries.GetPlayerTotalQuery, scoringqueries.PlayerTotalResponse](
		scoringqueries.NewGetPlayerTotalQueryHandler(db),
	)
}

func (s *HTTPServer) routes(config config.Config, resolver auth.UserResolver) http.Handler {
	r := chi.NewRouter()

	r.Use(
		core.CorrelationIDHTTPMiddleware,
		core.RequestLoggerMiddleware(config.Logger),
		core.RecoveryMiddleware,
		middleware.Timeout(config.RequestTimeout),
	)

	r.Get("/health", s.handleHealth)

	r.Post("/auth/registrations", authcommands.HandleRegistration)
	r.Post("/auth/login", authcommands.HandleLogin(config.Auth.CookieSecure))
	r.Post("/auth/logout", authcommands.HandleLogout)

	r.Get("/games", gamesqueries.HandleListGames)
	r.Get("/games/{slug}", gamesqueries.HandleGetGame)

	r.Group(func(r chi.Router) {
		r.Use(auth.AuthenticationMiddleware(resolver))

		r.Get("/player-names/suggestions", gamesessionqueries.HandleSuggestPlayerNames)

		r.Route("/game-sessions", func(r chi.Router) {
			r.Get("/", gamesessionqueries.HandleGetOwnedSessions)
			r.Post("/", gamesessioncommands.HandleCreateGameSession)

			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", gamesessionqueries.HandleGetSessionView)
				r.Delete("/", gamesessioncommands.HandleDeleteSession)
				r.Put("/name", gamesessioncommands.HandleRenameSession)

				r.Post("/rounds", scoringcommands.HandleAddRound)
				r.Delete("/rounds/{round}", scoringcommands.HandleDeleteRound)
				r.Put("/rounds/{round}/players/{playerId}", scoringcommands.HandleSetRoundScore)
				r.Put("/team-rounds/{round}", scoringcommands.HandleAddTeamRound)
				r.Put("/players/{playerId}/categories/{category}", scoringcommands.HandleSetCategoryScore)
				r.Get("/players/{playerId}/total", scoringqueries.HandleGetPlayerTotal)
			})
		})
	})

	return r
}

func (s *HTTPServer) handleHealth(w http.ResponseWriter, r *http.Request) {
	if err := s.db.PingContext(r.Context()); err != nil {
		core.WriteCommandError(w, r, core.Storage(err, "database unreachable"))
		return
	}

	if s.redis != nil {
		if err := s.redis.Ping(r.Context()).Err(); err != nil {
			core.WriteCommandError(w, r, core.Storage(err, "redis unreachable"))
			return
		}
	}

	core.WriteOK(w, r, map[string]string{"status": "ok"})
}

// Handler exposes the router so the server can be driven without a listener.
func (s *HTTPServer) Handler() http.Handler {
	return s.server.Handler
}

func (s *HTTPServer) Start() error {
	s.logger.Info("starting http server", zap.String("address", s.server.Addr))

	if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}

	return nil
}

// Stop drains in flight requests, then closes the storage clients.
func (s *HTTPServer) Stop(ctx context.Context) error {
	shutdownErr := s.server.Shutdown(ctx)

	var redisErr error
	if s.redis != nil {
		redisErr = s.redis.Close()
	}

	return errors.Join(shutdownErr, redisErr, s.db.Close(), s.logger.Sync())
}
