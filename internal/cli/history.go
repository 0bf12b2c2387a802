package cli

//
// history.go
// Copyright (C) 2026 Karol Będkowski <Karol Będkowski@kkomp>
//
// Distributed under terms of the GPLv3 license.
//

import (
	"context"
	"fmt"

	"github.com/samber/do/v2"
	"github.com/urfave/cli/v3"
	"gitlab.com/kabes/go-trss/internal/history"
)

func newHistoryCmd() *cli.Command {
	return &cli.Command{
		Name:  "history",
		Usage: "list recently dispatched matches",
		Flags: []cli.Flag{
			&cli.IntFlag{
				Name:    "limit",
				Value:   20,
				Usage:   "maximum number of entries to show",
				Aliases: []string{"n"},
			},
		},
		Action: wrap(historyCmd),
	}
}

//nolint:forbidigo
func historyCmd(ctx context.Context, clicmd *cli.Command, injector do.Injector) error {
	repo := do.MustInvoke[*history.Repository](injector)
	if err := repo.Open(ctx, clicmd.String("database")); err != nil {
		return err
	}

	recs, err := repo.ListRecent(ctx, clicmd.Int("limit"))
	if err != nil {
		return err
	}

	if len(recs) == 0 {
		fmt.Println("no matches recorded")

		return nil
	}

	for _, rec := range recs {
		fmt.Printf("%s  %s/%s  %s  %q  %s\n",
			rec.MatchedAt.Local().Format("2006-01-02 15:04:05"),
			rec.Feed, rec.Sub, formatNumber(rec.Series, rec.Episode),
			rec.Title, rec.Payload)
	}

	return nil
}

func formatNumber(series, episode *int) string {
	res := ""
	if series != nil {
		res = fmt.Sprintf("S%d", *series)
	}

	if episode != nil {
		res += fmt.Sprintf("E%d", *episode)
	}

	if res == "" {
		return "-"
	}

	return res
}
