package cli

//
// common.go
// Copyright (C) 2026 Karol Będkowski <Karol Będkowski@kkomp>
//
// Distributed under terms of the GPLv3 license.
//

import (
	"context"

	"github.com/rs/zerolog/log"
	"github.com/samber/do/v2"
	"github.com/urfave/cli/v3"
	"gitlab.com/kabes/go-trss/internal/config"
	"gitlab.com/kabes/go-trss/internal/history"
	"gitlab.com/kabes/go-trss/internal/service"
)

func wrap(
	cmdfunc func(ctx context.Context, clicmd *cli.Command, i do.Injector) error,
) func(ctx context.Context, clicmd *cli.Command) error {
	return func(ctx context.Context, clicmd *cli.Command) error {
		if err := initializeLogger(clicmd.String("log.level"), clicmd.String("log.format")); err != nil {
			return err
		}

		ctx = log.Logger.WithContext(ctx)

		injector := createInjector(ctx)
		defer shutdownInjector(ctx, injector)

		return cmdfunc(ctx, clicmd, injector)
	}
}

func createInjector(ctx context.Context) do.Injector {
	injector := do.New(
		service.Package,
		history.Package,
	)

	logger := log.Ctx(ctx)
	logger.Debug().Msgf("Available services: %v", injector.ListProvidedServices())

	return injector
}

func shutdownInjector(ctx context.Context, injector do.Injector) {
	report := injector.RootScope().ShutdownWithContext(ctx)
	if report != nil && !report.Succeed {
		log.Ctx(ctx).Warn().Msgf("shutdown services failed: %s", report.Error())
	}
}

// loadConfig read and validate the configuration file named by the global
// --config flag and register it in the injector.
func loadConfig(clicmd *cli.Command, injector do.Injector) (*config.Config, error) {
	conf, err := config.Load(clicmd.String("config"))
	if err != nil {
		return nil, err
	}

	do.ProvideValue(injector, conf)

	return conf, nil
}
