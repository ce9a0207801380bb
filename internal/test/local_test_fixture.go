package test

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/docker/go-connections/nat"
	_ "github.com/lib/pq"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

const (
	SkipInfrastructureEnv = "SKIP_INFRASTRUCTURE"

	postgresPort = nat.Port("5432/tcp")
	redisPort    = nat.Port("6379/tcp")

	dbUser     = "scoresheets"
	dbPassword = "scoresheets"
	dbName     = "scoresheets"
)

// LocalTestFixture runs the Postgres and Redis the integration tests talk to.
// With SKIP_INFRASTRUCTURE=true it reuses DATABASE_URL and REDIS_URL from the
// environment instead, for example a running docker-compose stack.
type LocalTestFixture struct {
	DatabaseURL string
	RedisURL    string

	containers []testcontainers.Container
}

func NewLocalTestFixture() *LocalTestFixture {
	return &LocalTestFixture{}
}

func (f *LocalTestFixture) Start(ctx context.Context) error {
	if os.Getenv(SkipInfrastructureEnv) == "true" {
		f.DatabaseURL = os.Getenv("DATABASE_URL")
		f.RedisURL = os.Getenv("REDIS_URL")
		if f.DatabaseURL == "" {
			return errors.New("DATABASE_URL is required when infrastructure is skipped")
		}
		return waitForDatabase(ctx, f.DatabaseURL)
	}

	postgres, err := f.start(ctx, testcontainers.ContainerRequest{
		Image:        "postgres:15-alpine",
		ExposedPorts: []string{string(postgresPort)},
		Env: map[string]string{
			"POSTGRES_USER":     dbUser,
			"POSTGRES_PASSWORD": dbPassword,
			"POSTGRES_DB":       dbName,
		},
		WaitingFor: wait.ForListeningPort(postgresPort),
	})
	if err != nil {
		return err
	}

	host, port, err := endpoint(ctx, postgres, postgresPort)
	if err != nil {
		return err
	}
	f.DatabaseURL = fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=disable", dbUser, dbPassword, host, port, dbName)

	redis, err := f.start(ctx, testcontainers.ContainerRequest{
		Image:        "redis:7-alpine",
		ExposedPorts: []string{string(redisPort)},
		WaitingFor:   wait.ForListeningPort(redisPort),
	})
	if err != nil {
		return err
	}

	host, port, err = endpoint(ctx, redis, redisPort)
	if err != nil {
		return err
	}
	f.RedisURL = fmt.Sprintf("redis://%s:%s/0", host, port)

	return waitForDatabase(ctx, f.DatabaseURL)
}

func (f *LocalTestFixture) Stop(ctx context.Context) error {
	var errs []error
	for _, c := range f.containers {
		errs = append(errs, c.Terminate(ctx))
	}
	f.containers = nil
	return errors.Join(errs...)
}

func (f *LocalTestFixture) start(ctx context.Context, req testcontainers.ContainerRequest) (testcontainers.Container, error) {
	c, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to start %s: %w", req.Image, err)
	}

	f.containers = append(f.containers, c)
	return c, nil
}

func endpoint(ctx context.Context, c testcontainers.Container, port nat.Port) (string, string, error) {
	host, err := c.Host(ctx)
	if err != nil {
		return "", "", err
	}

	mapped, err := c.MappedPort(ctx, port)
	if err != nil {
		return "", "", err
	}

	return host, mapped.Port(), nil
}

// waitForDatabase pings until Postgres accepts queries. A listening port is
// not enough, the server restarts once during its first initialization.
func waitForDatabase(ctx context.Context, url string) error {
	db, err := sql.Open("postgres", url)
	if err != nil {
		return err
	}
	defer db.Close()

	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	for {
		if err = db.PingContext(ctx); err == nil {
			return nil
		}

		select {
		case <-ctx.Done():
			return fmt.Errorf("database never became ready: %w", err)
		case <-time.After(250 * time.Millisecond):
		}
	}
}
