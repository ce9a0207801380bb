package server

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"
	"sync"
	"testing"

	gamesessioncommands "github.com/Cryborg/scoresheets-sub000/internal/modules/game-session/commands"
	"github.com/Cryborg/scoresheets-sub000/internal/modules/game-session/domain"

	"github.com/stretchr/testify/require"
)

func Test_WarmRowMappers_Scans_Every_Row_Type(t *testing.T) {
	requireInfrastructure(t)

	// Arrange
	db, err := sql.Open("postgres", fixture.databaseURL)
	require.NoError(t, err)
	defer db.Close()

	// Act
	err = warmRowMappers(context.Background(), db)

	// Assert
	require.NoError(t, err)
}

func Test_SessionView_Serves_Concurrent_Readers(t *testing.T) {
	requireInfrastructure(t)

	// Arrange
	client := login(t)
	view := createSession(t, client, gamesessioncommands.CreateSessionCommand{
		SessionDraft: domain.SessionDraft{Players: []string{"Ann", "Bob"}},
	})

	const readers = 16
	statuses := make([]int, readers)

	// Act
	var wg sync.WaitGroup
	for i := 0; i < readers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()

			resp, err := client.Get(fmt.Sprintf("%s/game-sessions/%d", fixture.baseURL, view.ID))
			if err != nil {
				return
			}
			defer resp.Body.Close()
			statuses[i] = resp.StatusCode
		}(i)
	}
	wg.Wait()

	// Assert
	for _, status := range statuses {
		require.Equal(t, http.StatusOK, status)
	}
}
