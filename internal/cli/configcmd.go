package cli

//
// configcmd.go
// Copyright (C) 2026 Karol Będkowski <Karol Będkowski@kkomp>
//
// Distributed under terms of the GPLv3 license.
//

import (
	"context"
	"fmt"

	"github.com/samber/do/v2"
	"github.com/urfave/cli/v3"
	"gitlab.com/kabes/go-trss/internal/config"
	"gitlab.com/kabes/go-trss/internal/service"
)

//nolint:forbidigo
func newConfigExampleCmd() *cli.Command {
	return &cli.Command{
		Name:  "example",
		Usage: "print an example configuration file",
		Action: func(_ context.Context, _ *cli.Command) error {
			fmt.Print(config.Example + "\n")

			return nil
		},
	}
}

func newConfigValidateCmd() *cli.Command {
	return &cli.Command{
		Name:   "validate",
		Usage:  "load the configuration and compile all patterns; no network i/o",
		Action: wrap(configValidateCmd),
	}
}

//nolint:forbidigo
func configValidateCmd(_ context.Context, clicmd *cli.Command, injector do.Injector) error {
	conf, err := loadConfig(clicmd, injector)
	if err != nil {
		return err
	}

	// building feeds compiles every pattern and checks capture groups.
	feeds, err := service.BuildFeeds(conf)
	if err != nil {
		return err
	}

	subs := 0
	for _, fd := range feeds {
		subs += len(fd.Subscriptions())
	}

	fmt.Printf("configuration ok: %d feed(s), %d subscription(s)\n", len(feeds), subs)

	return nil
}
