package gamesession

import (
	"context"
	"database/sql"
	"fmt"
	"sort"
	"strings"

	"github.com/Cryborg/scoresheets-sub000/internal/modules/core"

	"github.com/eskrenkovic/tql"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const DefaultSuggestionLimit = 10

// NameTracker remembers how often a user typed each player name so it can
// suggest them later.
type NameTracker interface {
	Track(ctx context.Context, userID int64, names []string) error
	Suggest(ctx context.Context, userID int64, prefix string, limit int) ([]string, error)
}

// TrackNames records names on a best effort basis. Failures are logged and
// swallowed.
func TrackNames(ctx context.Context, tracker NameTracker, userID int64, names []string) {
	if err := tracker.Track(ctx, userID, names); err != nil {
		core.LogWarn(ctx, "failed to track player names", zap.Error(err), zap.Int64("user_id", userID))
	}
}

var _ NameTracker = (*SQLNameTracker)(nil)

type SQLNameTracker struct {
	db *sql.DB
}

func NewSQLNameTracker(db *sql.DB) *SQLNameTracker {
	return &SQLNameTracker{db: db}
}

func (t *SQLNameTracker) Track(ctx context.Context, userID int64, names []string) error {
	const stmt = `
		INSERT INTO
			player_name_usage (user_id, name, usage_count, last_used_at)
		VALUES
			(:user_id, :name, 1, now())
		ON CONFLICT (user_id, name)
		DO UPDATE SET
			usage_count = player_name_usage.usage_count + 1,
			last_used_at = now();`

	for _, name := range names {
		params := map[string]any{"user_id": userID, "name": name}
		if _, err := tql.Exec(ctx, t.db, stmt, params); err != nil {
			return fmt.Errorf("upsert player name usage: %w", err)
		}
	}

	return nil
}

func (t *SQLNameTracker) Suggest(ctx context.Context, userID int64, prefix string, limit int) ([]string, error) {
	const query = `
		SELECT
			name
		FROM
			player_name_usage
		WHERE
			user_id = $1 AND lower(name) LIKE $2 || '%'
		ORDER BY
			usage_count DESC, last_used_at DESC, name
		LIMIT $3;`

	names, err := tql.Query[string](ctx, t.db, query, userID, escapeLike(strings.ToLower(prefix)), limit)
	if err != nil {
		return nil, core.Storage(err, "failed to load name suggestions")
	}

	return names, nil
}

func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}

var _ NameTracker = (*RedisNameTracker)(nil)

// RedisNameTracker keeps one sorted set per user, scored by usage count.
type RedisNameTracker struct {
	client *redis.Client
}

func NewRedisNameTracker(client *redis.Client) *RedisNameTracker {
	return &RedisNameTracker{client: client}
}

func nameUsageKey(userID int64) string {
	return fmt.Sprintf("scoresheets:player-names:%d", userID)
}

func (t *RedisNameTracker) Track(ctx context.Context, userID int64, names []string) error {
	if len(names) == 0 {
		return nil
	}

	key := nameUsageKey(userID)

	pipe := t.client.TxPipeline()
	for _, name := range names {
		pipe.ZIncrBy(ctx, key, 1, name)
	}

	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("increment player name usage: %w", err)
	}

	return nil
}

func (t *RedisNameTracker) Suggest(ctx context.Context, userID int64, prefix string, limit int) ([]string, error) {
	members, err := t.client.ZRevRangeWithScores(ctx, nameUsageKey(userID), 0, -1).Result()
	if err != nil {
		return nil, core.Storage(err, "failed to load name suggestions")
	}

	prefix = strings.ToLower(prefix)

	type usage struct {
		name  string
		count float64
	}

	matches := make([]usage, 0, len(members))
	for _, m := range members {
		name, ok := m.Member.(string)
		if !ok || !strings.HasPrefix(strings.ToLower(name), prefix) {
			continue
		}
		matches = append(matches, usage{name: name, count: m.Score})
	}

	sort.SliceStable(matches, func(i, j int) bool {
		if matches[i].count != matches[j].count {
			return matches[i].count > matches[j].count
		}
		return matches[i].name < matches[j].name
	})

	if len(matches) > limit {
		matches = matches[:limit]
	}

	names := make([]string, 0, len(matches))
	for _, m := range matches {
		names = append(names, m.name)
	}

	return names, nil
}
