package main

import (
	"archive/zip"
	"context"
	"encoding/csv"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"moviecatalog/movie"
	"moviecatalog/pkg/config"
	"moviecatalog/pkg/storage"
)

const defaultMovieLensURL = "https://files.grouplens.org/datasets/movielens/ml-latest-small.zip"

func main() {
	var (
		csvPath string
		zipURL  string
		limit   int
	)

	flag.StringVar(&csvPath, "csv", "", "Path to movies.csv (skip download)")
	flag.StringVar(&zipURL, "url", defaultMovieLensURL, "MovieLens zip URL")
	flag.IntVar(&limit, "limit", 0, "Limit number of rows to import (0 = all)")
	flag.Parse()

	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	cfg, err := config.LoadConfig()
	if err != nil {
		slog.Error("load config failed", "error", err)
		os.Exit(1)
	}

	ctx := context.Background()
	repo, err := storage.Open(ctx, cfg)
	if err != nil {
		slog.Error("cannot open movie store", "error", err)
		os.Exit(1)
	}
	if cfg.DB.Driver == config.DriverMemory {
		slog.Warn("memory store is discarded when the seeder exits")
	}

	cleanup := func() {}
	if csvPath == "" {
		path, c, err := downloadAndExtract(zipURL)
		if err != nil {
			slog.Error("failed to download dataset", "error", err)
			os.Exit(1)
		}
		csvPath = path
		cleanup = c
	}
	defer cleanup()

	stats, err := importMovies(ctx, movie.NewUsecase(repo, nil), csvPath, limit)
	if err != nil {
		slog.Error("import failed", "error", err, "rows", stats.Read)
		os.Exit(1)
	}

	slog.Info("import completed",
		"rows", stats.Read,
		"created", stats.Created,
		"existing", stats.Existing,
		"skipped", stats.Skipped,
	)
}

func downloadAndExtract(zipURL string) (string, func(), error) {
	if zipURL == "" {
		return "", func() {}, errors.New("dataset url is empty")
	}

	tmpDir, err := os.MkdirTemp("", "movielens-")
	if err != nil {
		return "", func() {}, err
	}

	cleanup := func() {
		_ = os.RemoveAll(tmpDir)
	}

	zipPath := filepath.Join(tmpDir, "dataset.zip")
	if err := downloadFile(zipURL, zipPath); err != nil {
		cleanup()
		return "", func() {}, err
	}

	csvPath, err := extractMoviesCSV(zipPath, tmpDir)
	if err != nil {
		cleanup()
		return "", func() {}, err
	}

	return csvPath, cleanup, nil
}

func downloadFile(url, dest string) error {
	client := &http.Client{Timeout: 60 * time.Second}
	resp, err := client.Get(url) // nolint: noctx
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("unexpected status: %s", resp.Status)
	}

	out, err := os.Create(dest)
	if err != nil {
		return err
	}
	defer out.Close()

	_, err = io.Copy(out, resp.Body)
	return err
}

func extractMoviesCSV(zipPath, destDir string) (string, error) {
	r, err := zip.OpenReader(zipPath)
	if err != nil {
		return "", err
	}
	defer r.Close()

	for _, file := range r.File {
		if !strings.HasSuffix(file.Name, "movies.csv") {
			continue
		}

		src, err := file.Open()
		if err != nil {
			return "", err
		}
		defer src.Close()

		destPath := filepath.Join(destDir, filepath.Base(file.Name))
		out, err := os.Create(destPath)
		if err != nil {
			return "", err
		}

		if _, err := io.Copy(out, src); err != nil {
			_ = out.Close()
			return "", err
		}
		if err := out.Close(); err != nil {
			return "", err
		}

		return destPath, nil
	}

	return "", errors.New("movies.csv not found in zip")
}

// tmdbGenres maps MovieLens genre names to TMDB genre ids.
var tmdbGenres = map[string]int64{
	"Action":      28,
	"Adventure":   12,
	"Animation":   16,
	"Children":    10751,
	"Comedy":      35,
	"Crime":       80,
	"Documentary": 99,
	"Drama":       18,
	"Fantasy":     14,
	"Horror":      27,
	"Musical":     10402,
	"Mystery":     9648,
	"Romance":     10749,
	"Sci-Fi":      878,
	"Thriller":    53,
	"War":         10752,
	"Western":     37,
}

var titleYear = regexp.MustCompile(`^(.*)\s+\((\d{4})\)\s*$`)

type importStats struct {
	Read     int
	Created  int
	Existing int
	Skipped  int
}

// importMovies feeds every row through the movie service so the original
// title dedup rule applies to seeded data too.
func importMovies(ctx context.Context, svc movie.Service, csvPath string, limit int) (importStats, error) {
	var stats importStats

	file, err := os.Open(csvPath)
	if err != nil {
		return stats, err
	}
	defer file.Close()

	reader := csv.NewReader(file)
	reader.FieldsPerRecord = -1

	idxTitle, idxGenres, err := parseMovieCSVHeader(reader)
	if err != nil {
		return stats, err
	}

	for limit <= 0 || stats.Read < limit {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return stats, err
		}
		stats.Read++

		in, ok := parseMovieRecord(record, idxTitle, idxGenres)
		if !ok {
			stats.Skipped++
			continue
		}

		res, err := svc.CreateMovie(ctx, in)
		if err != nil {
			return stats, fmt.Errorf("import %q: %w", in.OriginalTitle, err)
		}
		if res.Created {
			stats.Created++
		} else {
			stats.Existing++
		}
	}

	return stats, nil
}

func parseMovieCSVHeader(reader *csv.Reader) (int, int, error) {
	header, err := reader.Read()
	if err != nil {
		return 0, 0, err
	}

	idxTitle, idxGenres := -1, -1
	for i, name := range header {
		switch strings.TrimSpace(name) {
		case "title":
			idxTitle = i
		case "genres":
			idxGenres = i
		}
	}
	if idxTitle == -1 || idxGenres == -1 {
		return 0, 0, errors.New("missing required columns in csv header")
	}

	return idxTitle, idxGenres, nil
}

func parseMovieRecord(record []string, idxTitle, idxGenres int) (movie.CreateInput, bool) {
	if idxTitle >= len(record) || idxGenres >= len(record) {
		return movie.CreateInput{}, false
	}

	title := strings.TrimSpace(record[idxTitle])
	var releaseDate string
	if m := titleYear.FindStringSubmatch(title); m != nil {
		title = strings.TrimSpace(m[1])
		releaseDate = m[2] + "-01-01"
	}
	if title == "" {
		return movie.CreateInput{}, false
	}

	var genres []int64
	for _, name := range strings.Split(record[idxGenres], "|") {
		if id, ok := tmdbGenres[strings.TrimSpace(name)]; ok {
			genres = append(genres, id)
		}
	}

	return movie.CreateInput{
		Attributes: movie.Attributes{
			Title:         title,
			OriginalTitle: title,
			ReleaseDate:   releaseDate,
		},
		GenreIDs: genres,
	}, true
}
