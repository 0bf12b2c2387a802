package model

//
// subscription.go
// Copyright (C) 2026 Karol Będkowski <Karol Będkowski@kkomp>
//
// Distributed under terms of the GPLv3 license.
//

import (
	"regexp"

	"github.com/rs/zerolog"
	"gitlab.com/kabes/go-trss/internal/aerr"
	"gitlab.com/kabes/go-trss/internal/config"
)

// CommandSpec describe the dispatch action of a subscription. Nil Args means
// "open the payload with the operating system default handler".
type CommandSpec struct {
	Args  []string
	Shell bool
}

func (c CommandSpec) IsDefaultHandler() bool {
	return len(c.Args) == 0
}

// Subscription is one named matching rule inside a feed. The pattern is
// compiled and checked for the episode capture group at construction; the
// matching cycle never sees an invalid subscription.
type Subscription struct {
	Name      string
	FeedName  string
	Regex     *regexp.Regexp
	Number    EpisodeNumber
	Directory string
	Command   CommandSpec
}

func NewSubscription(
	cfg *config.Config,
	feedname, name string,
	conf *config.SubscriptionConf,
) (*Subscription, error) {
	re, err := regexp.Compile(conf.Pattern)
	if err != nil {
		return nil, aerr.ApplyFor(aerr.ErrConfiguration, err, "compile pattern failed").
			WithUserMsg("feed %q sub %q pattern %q is not a valid regex: %s",
				feedname, name, conf.Pattern, err)
	}

	if re.SubexpIndex(EpisodeGroup) < 0 {
		return nil, aerr.ErrConfiguration.
			WithUserMsg("feed %q sub %q pattern %q has no group for the episode number",
				feedname, name, conf.Pattern)
	}

	directory := conf.Directory
	if directory == "" {
		directory = cfg.EffectiveDirectory()
	}

	command := CommandSpec{Args: cfg.DefaultCommand, Shell: cfg.DefaultCommandShellEnabled}
	if len(conf.Command) > 0 {
		command = CommandSpec{Args: conf.Command, Shell: conf.UseShellForCommand}
	}

	sub := Subscription{
		Name:      name,
		FeedName:  feedname,
		Regex:     re,
		Number:    NewEpisodeNumber(conf.SeriesNumber, conf.EpisodeNumber),
		Directory: directory,
		Command:   command,
	}

	return &sub, nil
}

func (s *Subscription) MarshalZerologObject(event *zerolog.Event) {
	event.Str("feed", s.FeedName).
		Str("sub", s.Name).
		Str("pattern", s.Regex.String()).
		Object("number", s.Number)
}
