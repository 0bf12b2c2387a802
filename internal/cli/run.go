package cli

//
// run.go
// Copyright (C) 2026 Karol Będkowski <Karol Będkowski@kkomp>
//
// Distributed under terms of the GPLv3 license.
//

import (
	"context"
	"errors"

	"github.com/gofrs/flock"
	"github.com/rs/zerolog/log"
	"github.com/samber/do/v2"
	"github.com/urfave/cli/v3"
	"gitlab.com/kabes/go-trss/internal/aerr"
	"gitlab.com/kabes/go-trss/internal/history"
	"gitlab.com/kabes/go-trss/internal/notify"
	"gitlab.com/kabes/go-trss/internal/service"
)

func newRunCmd() *cli.Command {
	return &cli.Command{
		Name:  "run",
		Usage: "run one check cycle: fetch feeds, match, dispatch, persist numbers",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:  "dry-run",
				Usage: "match and log only; do not download, dispatch, record or persist",
			},
		},
		Action: wrap(runCmd),
	}
}

func runCmd(ctx context.Context, clicmd *cli.Command, injector do.Injector) error {
	logger := log.Ctx(ctx)

	err := doRun(ctx, clicmd, injector)
	if err != nil {
		logger.Error().Err(err).Msg("run failed")
		notify.Failure(ctx, "go-trss run failed: "+aerr.GetUserMessageOr(err, err.Error()))
	}

	return err
}

func doRun(ctx context.Context, clicmd *cli.Command, injector do.Injector) error {
	lock, err := acquireRunLock(clicmd.String("config"))
	if err != nil {
		return err
	}
	defer lock.Unlock() //nolint:errcheck

	if _, err := loadConfig(clicmd, injector); err != nil {
		return err
	}

	dryrun := clicmd.Bool("dry-run")

	if !dryrun {
		repo := do.MustInvoke[*history.Repository](injector)
		if err := repo.Open(ctx, clicmd.String("database")); err != nil {
			return err
		}
	}

	engine, err := do.Invoke[*service.Engine](injector)
	if err != nil {
		return err
	}

	engine.DryRun = dryrun

	checkErr := engine.CheckAllFeeds(ctx)

	// numbers advanced by healthy feeds are persisted even when another feed
	// failed; a failed feed simply keeps its old numbers.
	if err := engine.PersistEpisodeNumbers(ctx); err != nil {
		return errors.Join(checkErr, err)
	}

	return checkErr
}

// acquireRunLock take an exclusive lock next to the config file. An external
// scheduler may fire again while a slow cycle is still running; the lock makes
// the second invocation fail fast instead of racing the first one.
func acquireRunLock(configPath string) (*flock.Flock, error) {
	lock := flock.New(configPath + ".lock")

	locked, err := lock.TryLock()
	if err != nil {
		return nil, aerr.Wrapf(err, "acquire run lock failed").WithMeta("lock", lock.Path())
	}

	if !locked {
		return nil, aerr.New("another instance is already running").
			WithUserMsg("another go-trss run holds the lock %q", lock.Path())
	}

	return lock, nil
}
