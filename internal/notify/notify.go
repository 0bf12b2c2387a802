package notify

//
// notify.go
// Copyright (C) 2026 Karol Będkowski <Karol Będkowski@kkomp>
//
// Distributed under terms of the GPLv3 license.
//

import (
	"context"
	"os/exec"

	"github.com/rs/zerolog/log"
)

const appName = "go-trss"

// Failure show a best-effort desktop notification about a fatal run error.
// Requires notify-send on PATH; silently skipped otherwise. Purely
// observational: never feeds back into engine behavior.
func Failure(ctx context.Context, text string) {
	logger := log.Ctx(ctx)

	path, err := exec.LookPath("notify-send")
	if err != nil {
		logger.Debug().Msg("notify-send not found; skipping failure notification")

		return
	}

	cmd := exec.Command(path, "--app-name", appName, appName, text)
	if err := cmd.Start(); err != nil {
		logger.Warn().Err(err).Msg("start notify-send failed")

		return
	}

	if err := cmd.Process.Release(); err != nil {
		logger.Debug().Err(err).Msg("release notify-send process failed")
	}
}
