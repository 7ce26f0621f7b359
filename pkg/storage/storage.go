// Package storage opens the movie store selected by DB_DRIVER.
package storage

import (
	"context"
	"fmt"
	"strconv"

	"moviecatalog/dynamodb"
	"moviecatalog/memory"
	"moviecatalog/movie"
	"moviecatalog/pkg/config"
	"moviecatalog/postgres"
)

// Store is a movie repository that can report its reachability.
type Store interface {
	movie.Repository
	Ping(ctx context.Context) error
}

func Open(ctx context.Context, cfg *config.Config) (Store, error) {
	switch cfg.DB.Driver {
	case config.DriverMemory:
		return memory.NewMovieRepository(), nil

	case config.DriverDynamoDB:
		client, err := dynamodb.NewClient(ctx, dynamodb.Options{
			Region:       cfg.DynamoDB.Region,
			Endpoint:     cfg.DynamoDB.Endpoint,
			AccessKey:    cfg.DynamoDB.AccessKey,
			SecretKey:    cfg.DynamoDB.SecretKey,
			SessionToken: cfg.DynamoDB.SessionToken,
		})
		if err != nil {
			return nil, fmt.Errorf("cannot init dynamodb client: %w", err)
		}
		repo := dynamodb.NewMovieRepository(client, cfg.DynamoDB.MoviesTable)
		if err := repo.CreateTable(ctx); err != nil {
			return nil, fmt.Errorf("cannot create dynamodb table: %w", err)
		}
		return repo, nil

	case config.DriverPostgres, "":
		db, err := postgres.NewConnection(postgres.Options{
			DBName:   cfg.DB.Name,
			DBUser:   cfg.DB.User,
			Password: cfg.DB.Pass,
			Host:     cfg.DB.Host,
			Port:     strconv.Itoa(cfg.DB.Port),
			SSLMode:  cfg.DB.EnableSSL,
		})
		if err != nil {
			return nil, fmt.Errorf("cannot open postgres connection: %w", err)
		}
		return postgres.NewMovieRepository(db), nil
	}

	return nil, fmt.Errorf("unsupported DB_DRIVER %q", cfg.DB.Driver)
}
