package games

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/Cryborg/scoresheets-sub000/internal/modules/core"
	"github.com/Cryborg/scoresheets-sub000/internal/modules/games/domain"

	"github.com/eskrenkovic/tql"
	"github.com/hashicorp/golang-lru/v2/expirable"
	"golang.org/x/sync/singleflight"
)

// Catalog is the read-only list of supported games.
type Catalog interface {
	GameBySlug(ctx context.Context, slug string) (domain.Game, error)
	Games(ctx context.Context) ([]domain.Game, error)
}

var _ Catalog = (*SQLCatalog)(nil)

type SQLCatalog struct {
	db *sql.DB
}

func NewSQLCatalog(db *sql.DB) *SQLCatalog {
	return &SQLCatalog{db: db}
}

const gameColumns = `
	id,
	slug,
	name,
	min_players,
	max_players,
	team_based,
	score_type,
	score_direction,
	is_implemented,
	default_score_target`

func (c *SQLCatalog) GameBySlug(ctx context.Context, slug string) (domain.Game, error) {
	const q = `
		SELECT` + gameColumns + `
		FROM
			game
		WHERE
			slug = $1;`

	game, err := tql.QueryFirst[domain.Game](ctx, c.db, q, slug)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.Game{}, core.NotFound("game")
		}
		return domain.Game{}, core.Storage(err, "failed to load game")
	}

	return game, nil
}

func (c *SQLCatalog) Games(ctx context.Context) ([]domain.Game, error) {
	const q = `
		SELECT` + gameColumns + `
		FROM
			game
		ORDER BY
			is_implemented DESC, name;`

	games, err := tql.Query[domain.Game](ctx, c.db, q)
	if err != nil {
		return nil, core.Storage(err, "failed to load games")
	}

	return games, nil
}

var _ Catalog = (*CachedCatalog)(nil)

const allGamesKey = "*"

// CachedCatalog is a read-through cache in front of another Catalog.
// Concurrent misses for the same key share a single lookup.
type CachedCatalog struct {
	inner Catalog
	group singleflight.Group

	bySlug *expirable.LRU[string, domain.Game]
	all    *expirable.LRU[string, []domain.Game]
}

func NewCachedCatalog(inner Catalog, size int, ttl time.Duration) *CachedCatalog {
	return &CachedCatalog{
		inner:  inner,
		bySlug: expirable.NewLRU[string, domain.Game](size, nil, ttl),
		all:    expirable.NewLRU[string, []domain.Game](1, nil, ttl),
	}
}

func (c *CachedCatalog) GameBySlug(ctx context.Context, slug string) (domain.Game, error) {
	if game, ok := c.bySlug.Get(slug); ok {
		return game, nil
	}

	v, err, _ := c.group.Do("slug:"+slug, func() (interface{}, error) {
		game, err := c.inner.GameBySlug(ctx, slug)
		if err != nil {
			return domain.Game{}, err
		}

		c.bySlug.Add(slug, game)
		return game, nil
	})
	if err != nil {
		return domain.Game{}, err
	}

	return v.(domain.Game), nil
}

func (c *CachedCatalog) Games(ctx context.Context) ([]domain.Game, error) {
	if games, ok := c.all.Get(allGamesKey); ok {
		return games, nil
	}

	v, err, _ := c.group.Do(allGamesKey, func() (interface{}, error) {
		games, err := c.inner.Games(ctx)
		if err != nil {
			return nil, err
		}

		c.all.Add(allGamesKey, games)
		for _, game := range games {
			c.bySlug.Add(game.Slug, game)
		}

		return games, nil
	})
	if err != nil {
		return nil, err
	}

	return v.([]domain.Game), nil
}
