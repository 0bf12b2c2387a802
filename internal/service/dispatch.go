package service

//
// dispatch.go
// Copyright (C) 2026 Karol Będkowski <Karol Będkowski@kkomp>
//
// Distributed under terms of the GPLv3 license.
//

import (
	"context"
	"os/exec"
	"runtime"
	"strings"

	"github.com/rs/zerolog/log"
	"github.com/samber/do/v2"
	"gitlab.com/kabes/go-trss/internal/aerr"
	"gitlab.com/kabes/go-trss/internal/model"
)

// PayloadArgument is the placeholder replaced in command templates with the
// resolved torrent url or downloaded file path.
const PayloadArgument = "$URL"

// Dispatcher hand resolved payloads to the configured external action: a
// templated command line, or the operating system default handler.
type Dispatcher struct{}

func NewDispatcherI(_ do.Injector) (*Dispatcher, error) {
	return &Dispatcher{}, nil
}

// Dispatch launch the external action for payload. The process is started
// and released, not awaited; this tool's run does not depend on its result.
func (d *Dispatcher) Dispatch(ctx context.Context, spec model.CommandSpec, payload string) error {
	logger := log.Ctx(ctx)

	if spec.IsDefaultHandler() {
		logger.Info().Msgf("launching %q with default handler", payload)

		return d.launch(defaultHandlerCommand(payload))
	}

	name, args := buildCommand(spec, payload)

	logger.Info().Msgf("launching subprocess %q args=%q", name, args)

	return d.launch(name, args)
}

func (d *Dispatcher) launch(name string, args []string) error {
	cmd := exec.Command(name, args...)
	if err := cmd.Start(); err != nil {
		return aerr.ApplyFor(aerr.ErrDispatch, err, "start process failed").
			WithMeta("command", name)
	}

	// deliberately not awaited; release so a slow handler never blocks the run.
	if err := cmd.Process.Release(); err != nil {
		return aerr.ApplyFor(aerr.ErrDispatch, err, "release process failed")
	}

	return nil
}

// SubstitutedArgs replace every literal occurrence of the payload placeholder
// in each template argument. Substitution is literal, never regex, so paths
// with special characters pass through untouched.
func SubstitutedArgs(args []string, payload string) []string {
	subbed := make([]string, len(args))
	for i, arg := range args {
		subbed[i] = strings.ReplaceAll(arg, PayloadArgument, payload)
	}

	return subbed
}

func buildCommand(spec model.CommandSpec, payload string) (string, []string) {
	args := SubstitutedArgs(spec.Args, payload)

	if spec.Shell {
		if runtime.GOOS == "windows" {
			return "cmd", append([]string{"/C"}, args...)
		}

		return "sh", []string{"-c", strings.Join(args, " ")}
	}

	return args[0], args[1:]
}

func defaultHandlerCommand(payload string) (string, []string) {
	switch runtime.GOOS {
	case "windows":
		return "rundll32", []string{"url.dll,FileProtocolHandler", payload}
	case "darwin":
		return "open", []string{payload}
	default:
		return "xdg-open", []string{payload}
	}
}
