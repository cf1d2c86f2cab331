package main

import (
	"context"
	"database/sql"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
)

// openCorpus returns a reader over the configured corpus: the input file, or
// the rows of the corpus query joined with line feeds.
func openCorpus(ctx context.Context, cfg *Config, logger *slog.Logger) (io.ReadCloser, error) {
	if cfg.InputPath != "" {
		f, err := os.Open(cfg.InputPath)
		if err != nil {
			return nil, fmt.Errorf("failed to open corpus file: %w", err)
		}
		logger.Info("Reading corpus file", "path", cfg.InputPath)
		return f, nil
	}

	text, err := queryCorpus(ctx, cfg.DatabasePath, cfg.CorpusQuery)
	if err != nil {
		return nil, err
	}
	logger.Info("Read corpus from database", "path", cfg.DatabasePath, "bytes", len(text))
	return io.NopCloser(strings.NewReader(text)), nil
}

// queryCorpus runs query against the SQLite database at dataSource and joins
// the rows with line feeds. The query must select a single text column; NULL
// rows are skipped.
func queryCorpus(ctx context.Context, dataSource, query string) (string, error) {
	db, err := initDB(dataSource)
	if err != nil {
		return "", fmt.Errorf("failed to initialize database: %w", err)
	}
	defer db.Close()

	rows, err := db.QueryContext(ctx, query)
	if err != nil {
		return "", fmt.Errorf("failed to query corpus: %w", err)
	}
	defer rows.Close()

	var sb strings.Builder
	for rows.Next() {
		var text sql.NullString
		if err = rows.Scan(&text); err != nil {
			return "", fmt.Errorf("failed to scan corpus row: %w", err)
		}
		if !text.Valid {
			continue
		}
		sb.WriteString(text.String)
		sb.WriteByte('\n')
	}
	if err = rows.Err(); err != nil {
		return "", fmt.Errorf("failed to read corpus rows: %w", err)
	}
	return sb.String(), nil
}
