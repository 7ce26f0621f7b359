package dynamodb_test

import (
	"context"
	"fmt"
	"testing"

	"moviecatalog/dynamodb"
	"moviecatalog/movie"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

func startDynamoDBLocal(t testing.TB) string {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping dynamodb container in short mode")
	}

	ctx := context.Background()
	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        "amazon/dynamodb-local:2.2.1",
			ExposedPorts: []string{"8000/tcp"},
			Cmd:          []string{"-jar", "DynamoDBLocal.jar", "-inMemory", "-sharedDb"},
			WaitingFor:   wait.ForListeningPort("8000/tcp"),
		},
		Started: true,
	})
	require.NoError(t, err)
	t.Cleanup(func() {
		assert.NoError(t, container.Terminate(ctx))
	})

	host, err := container.Host(ctx)
	require.NoError(t, err)
	port, err := container.MappedPort(ctx, "8000")
	require.NoError(t, err)
	return fmt.Sprintf("http://%s:%s", host, port.Port())
}

func newRepository(t testing.TB, table string) *dynamodb.MovieRepository {
	t.Helper()
	endpoint := startDynamoDBLocal(t)
	client, err := dynamodb.NewClient(context.Background(), dynamodb.Options{
		Region:    "us-east-1",
		Endpoint:  endpoint,
		AccessKey: "local",
		SecretKey: "local",
	})
	require.NoError(t, err)

	repo := dynamodb.NewMovieRepository(client, table)
	require.NoError(t, repo.CreateTable(context.Background()))
	require.NoError(t, repo.CreateTable(context.Background()), "create table is idempotent")
	return repo
}

func TestMovieRepository(t *testing.T) {
	repo := newRepository(t, "movies")
	ctx := context.Background()

	alien := movie.Movie{
		Title:         "Alien",
		OriginalTitle: "Alien",
		VoteAverage:   8.1,
		GenreIDs:      []movie.GenreID{{Value: 1}, {Value: 2}, {Value: 3}},
	}

	saved, err := repo.Save(ctx, alien)
	require.NoError(t, err)
	assert.Equal(t, int64(1), saved.ID)
	require.Len(t, saved.GenreIDs, 3)
	for i, g := range saved.GenreIDs {
		assert.Equal(t, int64(i+1), g.Value)
		assert.Equal(t, saved.ID, g.MovieID)
		assert.NotZero(t, g.ID)
	}

	t.Run("find by id", func(t *testing.T) {
		found, err := repo.FindByID(ctx, saved.ID)

		require.NoError(t, err)
		assert.Equal(t, saved, found)
	})

	t.Run("find by original title", func(t *testing.T) {
		found, err := repo.FindByOriginalTitle(ctx, "Alien")
		require.NoError(t, err)
		assert.Equal(t, saved.ID, found.ID)

		_, err = repo.FindByOriginalTitle(ctx, "Missing")
		assert.ErrorIs(t, err, movie.ErrMovieNotFound)
	})

	t.Run("find all skips the counter item", func(t *testing.T) {
		second, err := repo.Save(ctx, movie.Movie{Title: "Aliens", OriginalTitle: "Aliens"})
		require.NoError(t, err)

		movies, err := repo.FindAll(ctx)

		require.NoError(t, err)
		require.Len(t, movies, 2)
		assert.Equal(t, saved.ID, movies[0].ID)
		assert.Equal(t, second.ID, movies[1].ID)
	})

	t.Run("update replaces genres", func(t *testing.T) {
		update := saved
		update.Overview = "updated"
		update.GenreIDs = []movie.GenreID{{Value: 878}}

		_, err := repo.Save(ctx, update)
		require.NoError(t, err)

		found, err := repo.FindByID(ctx, saved.ID)
		require.NoError(t, err)
		assert.Equal(t, "updated", found.Overview)
		assert.Equal(t, []int64{878}, found.GenreValues())
	})

	t.Run("update of unknown id is not found", func(t *testing.T) {
		_, err := repo.Save(ctx, movie.Movie{ID: 999, Title: "Ghost", OriginalTitle: "Ghost"})

		assert.ErrorIs(t, err, movie.ErrMovieNotFound)
	})

	t.Run("delete", func(t *testing.T) {
		require.NoError(t, repo.DeleteByID(ctx, saved.ID))

		_, err := repo.FindByID(ctx, saved.ID)
		assert.ErrorIs(t, err, movie.ErrMovieNotFound)
		assert.ErrorIs(t, repo.DeleteByID(ctx, saved.ID), movie.ErrMovieNotFound)
	})
}
