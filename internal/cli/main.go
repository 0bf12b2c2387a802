package cli

//
// main.go
// Copyright (C) 2026 Karol Będkowski <Karol Będkowski@kkomp>
//
// Distributed under terms of the GPLv3 license.
//

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/urfave/cli/v3"

	"gitlab.com/kabes/go-trss/internal/aerr"
	"gitlab.com/kabes/go-trss/internal/config"
)

//nolint:forbidigo
func Main() {
	cli.VersionFlag = &cli.BoolFlag{
		Name:    "print-version",
		Aliases: []string{"V"},
		Usage:   "Print version.",
	}

	cli := &cli.Command{
		Name:    "go-trss",
		Usage:   "watch torrent rss feeds and hand new episodes to an external program",
		Version: config.VersionString,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Value:   config.DefaultPath(),
				Usage:   "Configuration file",
				Aliases: []string{"c"},
				Sources: cli.EnvVars("TRSS_CONFIG"),
				Config:  cli.StringConfig{TrimSpace: true},
			},
			&cli.StringFlag{
				Name:    "database",
				Value:   defaultDatabasePath(),
				Usage:   "Match history database file",
				Aliases: []string{"D"},
				Sources: cli.EnvVars("TRSS_DB"),
				Config:  cli.StringConfig{TrimSpace: true},
			},
			&cli.StringFlag{
				Name:    "log.level",
				Value:   "info",
				Usage:   "Log level (debug, info, warn, error)",
				Sources: cli.EnvVars("TRSS_LOGLEVEL"),
				Config:  cli.StringConfig{TrimSpace: true},
			},
			&cli.StringFlag{
				Name:    "log.format",
				Value:   "console",
				Usage:   "Log format (console, logfmt, json)",
				Sources: cli.EnvVars("TRSS_LOGFORMAT"),
				Config:  cli.StringConfig{TrimSpace: true},
			},
		},
		Commands: []*cli.Command{
			newRunCmd(),
			newHistoryCmd(),
			configSubCmd(),
		},
	}

	if err := cli.Run(context.Background(), os.Args); err != nil {
		if h := aerr.GetUserMessage(err); h != "" {
			fmt.Printf("Error: %s\n", h)
		} else {
			fmt.Printf("Error: %s\n", err.Error())
		}

		if cli.String("log.level") == "debug" {
			fmt.Printf("Error: %#+v\n", err)

			if tags := aerr.GetTags(err); len(tags) > 0 {
				fmt.Printf("Tags: %s\n", strings.Join(tags, ", "))
			}

			if stack := aerr.GetStack(err); len(stack) > 0 {
				fmt.Printf("Stack:\n  %s\n", strings.Join(stack, "\n  "))
			}
		}

		os.Exit(1)
	}
}

func configSubCmd() *cli.Command {
	return &cli.Command{
		Name:  "config",
		Usage: "manage configuration",
		Commands: []*cli.Command{
			newConfigExampleCmd(),
			newConfigValidateCmd(),
		},
	}
}

func defaultDatabasePath() string {
	return filepath.Join(filepath.Dir(config.DefaultPath()), "history.sqlite")
}
