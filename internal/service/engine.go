package service

//
// engine.go
// Copyright (C) 2026 Karol Będkowski <Karol Będkowski@kkomp>
//
// Distributed under terms of the GPLv3 license.
//

import (
	"context"
	"errors"
	"maps"
	"slices"
	"time"

	"github.com/rs/xid"
	"github.com/rs/zerolog/log"
	"github.com/samber/do/v2"
	"gitlab.com/kabes/go-trss/internal/config"
	"gitlab.com/kabes/go-trss/internal/feed"
	"gitlab.com/kabes/go-trss/internal/history"
)

// Engine owns all feeds and drives one check-and-dispatch cycle. It is built
// once per run from a validated configuration and torn down at process exit.
type Engine struct {
	cfg        *config.Config
	dispatcher *Dispatcher
	history    *history.Repository
	feeds      []*feed.Feed

	// DryRun match and log only: no downloads, dispatches, history records
	// or persisted numbers.
	DryRun bool
}

func NewEngineI(i do.Injector) (*Engine, error) {
	cfg := do.MustInvoke[*config.Config](i)

	feeds, err := BuildFeeds(cfg)
	if err != nil {
		return nil, err
	}

	return &Engine{
		cfg:        cfg,
		dispatcher: do.MustInvoke[*Dispatcher](i),
		history:    do.MustInvoke[*history.Repository](i),
		feeds:      feeds,
	}, nil
}

// BuildFeeds construct all feeds (and their subscriptions) from cfg, in name
// order. Any invalid pattern surfaces here, before any network i/o.
func BuildFeeds(cfg *config.Config) ([]*feed.Feed, error) {
	feeds := make([]*feed.Feed, 0, len(cfg.Feeds))

	for _, name := range slices.Sorted(maps.Keys(cfg.Feeds)) {
		fd, err := feed.New(cfg, name, cfg.Feeds[name])
		if err != nil {
			return nil, err
		}

		feeds = append(feeds, fd)
	}

	return feeds, nil
}

// CheckAllFeeds run one matching cycle over every feed. Feeds are processed
// independently: a failing feed is logged and the remaining feeds still run.
// The returned error aggregates per-feed and per-entry failures; matches from
// healthy feeds are dispatched (and their numbers advanced) regardless.
func (e *Engine) CheckAllFeeds(ctx context.Context) error {
	runid := xid.New().String()
	logger := log.Ctx(ctx).With().Str("run_id", runid).Logger()
	ctx = logger.WithContext(ctx)

	var errs []error

	dispatched := 0

	for _, fd := range e.feeds {
		matches, err := fd.MatchingSubscriptions(ctx)
		if err != nil {
			logger.Error().Err(err).Msgf("feed %q: check failed", fd.Name)
			errs = append(errs, err)
		}

		// matches found before a mid-scan failure are still handled.
		for _, match := range matches {
			if err := e.handleMatch(ctx, runid, fd, match); err != nil {
				logger.Error().Err(err).
					Msgf("feed %q sub %q: entry %q failed", fd.Name, match.Sub.Name, match.Entry.Title)
				errs = append(errs, err)

				continue
			}

			dispatched++
		}
	}

	logger.Info().Msgf("check finished; feeds=%d dispatched=%d failures=%d",
		len(e.feeds), dispatched, len(errs))

	return errors.Join(errs...)
}

func (e *Engine) handleMatch(ctx context.Context, runid string, fd *feed.Feed, match feed.Match) error {
	logger := log.Ctx(ctx)

	if e.DryRun {
		url, err := fd.ResolveEntryURL(ctx, match.Entry)
		if err != nil {
			return err
		}

		logger.Info().Msgf("dry-run: would dispatch %q for feed %q sub %q",
			url, fd.Name, match.Sub.Name)

		return nil
	}

	payload, err := fd.DownloadEntry(ctx, match.Entry, match.Sub.Directory)
	if err != nil {
		return err
	}

	// a matched entry stays consumed even when hand-off fails: the number was
	// already advanced and is persisted, favoring idempotent re-runs over
	// guaranteed delivery.
	if err := e.dispatcher.Dispatch(ctx, match.Sub.Command, payload); err != nil {
		logger.Error().Err(err).
			Msgf("feed %q sub %q: dispatch %q failed", fd.Name, match.Sub.Name, payload)
	}

	rec := history.Record{
		RunID:     runid,
		Feed:      fd.Name,
		Sub:       match.Sub.Name,
		Title:     match.Entry.Title,
		Series:    match.Number.Series,
		Episode:   match.Number.Episode,
		Payload:   payload,
		MatchedAt: time.Now().UTC(),
	}
	if err := e.history.RecordMatch(ctx, &rec); err != nil {
		logger.Warn().Err(err).Msg("record match history failed")
	}

	return nil
}

// PersistEpisodeNumbers write updated series/episode numbers back into the
// configuration tree and save it. Only defined numbers are written; an
// absent number never overwrites a stored one as null or zero.
func (e *Engine) PersistEpisodeNumbers(ctx context.Context) error {
	if e.DryRun {
		log.Ctx(ctx).Info().Msg("dry-run: episode numbers not persisted")

		return nil
	}

	log.Ctx(ctx).Info().Msg("writing episode numbers")

	for _, fd := range e.feeds {
		feedconf := e.cfg.Feeds[fd.Name]

		for _, sub := range fd.Subscriptions() {
			subconf := feedconf.Subscriptions[sub.Name]

			if sub.Number.Series != nil {
				subconf.SeriesNumber = sub.Number.Series
			}

			if sub.Number.Episode != nil {
				subconf.EpisodeNumber = sub.Number.Episode
			}
		}
	}

	return e.cfg.Save()
}
