package history

//
// history.go
// Copyright (C) 2026 Karol Będkowski <Karol Będkowski@kkomp>
//
// Distributed under terms of the GPLv3 license.
//

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/pressly/goose/v3"
	"github.com/rs/zerolog/log"
	"github.com/samber/do/v2"
	"gitlab.com/kabes/go-trss/internal/aerr"
)

//go:embed "migrations/*.sql"
var embedMigrations embed.FS

// Record is one dispatched match, kept for diagnostics and the `history`
// command. Purely observational; engine behavior never depends on it.
type Record struct {
	ID        int64     `db:"id"`
	RunID     string    `db:"run_id"`
	Feed      string    `db:"feed"`
	Sub       string    `db:"sub"`
	Title     string    `db:"title"`
	Series    *int      `db:"series"`
	Episode   *int      `db:"episode"`
	Payload   string    `db:"payload"`
	MatchedAt time.Time `db:"matched_at"`
}

type Repository struct {
	db *sqlx.DB
}

func NewRepositoryI(_ do.Injector) (*Repository, error) {
	return &Repository{}, nil
}

func (r *Repository) Open(ctx context.Context, path string) error {
	connstr, err := prepareConnstr(path)
	if err != nil {
		return err
	}

	logger := log.Ctx(ctx)
	logger.Debug().Msgf("opening history database %q", connstr)

	r.db, err = sqlx.Open("sqlite3", connstr)
	if err != nil {
		return aerr.ApplyFor(aerr.ErrDatabase, err, "open history database failed").
			WithMeta("connstr", connstr)
	}

	r.db.SetMaxOpenConns(1)

	if err := r.db.PingContext(ctx); err != nil {
		return aerr.ApplyFor(aerr.ErrDatabase, err, "ping history database failed")
	}

	return r.migrate(ctx)
}

// Shutdown close database. Called by samber/do.
func (r *Repository) Shutdown(ctx context.Context) error {
	if r.db == nil {
		return nil
	}

	if err := r.db.Close(); err != nil {
		return fmt.Errorf("close history database error: %w", err)
	}

	log.Ctx(ctx).Debug().Msg("history database closed")

	return nil
}

func (r *Repository) migrate(ctx context.Context) error {
	migdir, err := fs.Sub(embedMigrations, "migrations")
	if err != nil {
		panic(fmt.Errorf("prepare migration fs failed: %w", err))
	}

	provider, err := goose.NewProvider(goose.DialectSQLite3, r.db.DB, migdir)
	if err != nil {
		panic(fmt.Errorf("create goose provider failed: %w", err))
	}

	for {
		res, err := provider.UpByOne(ctx)
		if res != nil {
			log.Ctx(ctx).Debug().Msgf("migration: %s", res)
		}

		if errors.Is(err, goose.ErrNoNextVersion) {
			break
		} else if err != nil {
			return aerr.ApplyFor(aerr.ErrDatabase, err, "migrate history database failed")
		}
	}

	return nil
}

func (r *Repository) RecordMatch(ctx context.Context, rec *Record) error {
	query := `
		INSERT INTO matches (run_id, feed, sub, title, series, episode, payload, matched_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err := r.db.ExecContext(ctx, query,
		rec.RunID, rec.Feed, rec.Sub, rec.Title, rec.Series, rec.Episode,
		rec.Payload, rec.MatchedAt)
	if err != nil {
		return aerr.ApplyFor(aerr.ErrDatabase, err, "insert match record failed").
			WithMeta("feed", rec.Feed, "sub", rec.Sub)
	}

	return nil
}

// ListRecent return up to limit most recently matched entries, newest first.
func (r *Repository) ListRecent(ctx context.Context, limit int) ([]Record, error) {
	query := `
		SELECT id, run_id, feed, sub, title, series, episode, payload, matched_at
		FROM matches
		ORDER BY matched_at DESC, id DESC
		LIMIT ?
	`

	recs := []Record{}
	if err := r.db.SelectContext(ctx, &recs, query, limit); err != nil {
		return nil, aerr.ApplyFor(aerr.ErrDatabase, err, "query match records failed")
	}

	return recs, nil
}

// prepareConnstr add required sqlite parameters to path when missing.
func prepareConnstr(connstr string) (string, error) {
	if connstr == "" {
		return "", aerr.New("empty history database path").WithTag(aerr.ConfigurationError)
	}

	if strings.HasPrefix(connstr, ":memory:") || strings.Contains(connstr, "?") {
		return connstr, nil
	}

	params := url.Values{}
	params.Set("_journal_mode", "WAL")
	params.Set("_busy_timeout", "5000")

	return connstr + "?" + params.Encode(), nil
}
