package model

//
// subscription_test.go
// Copyright (C) 2026 Karol Będkowski <Karol Będkowski@kkomp>
//
// Distributed under terms of the GPLv3 license.
//

import (
	"strings"
	"testing"

	"gitlab.com/kabes/go-trss/internal/aerr"
	"gitlab.com/kabes/go-trss/internal/assert"
	"gitlab.com/kabes/go-trss/internal/config"
)

func TestNewSubscription(t *testing.T) {
	cfg := &config.Config{
		DefaultDirectory:           "/downloads",
		DefaultCommand:             []string{"transmission-remote", "-a", "$URL"},
		DefaultCommandShellEnabled: false,
	}

	conf := &config.SubscriptionConf{
		Pattern:       `Show S(?P<series>\d+)E(?P<episode>\d+)`,
		SeriesNumber:  intp(1),
		EpisodeNumber: intp(3),
	}

	sub, err := NewSubscription(cfg, "feed1", "show", conf)
	assert.NoErr(t, err)
	assert.Equal(t, sub.Name, "show")
	assert.Equal(t, sub.FeedName, "feed1")
	assert.Equal(t, sub.Number, NewEpisodeNumber(intp(1), intp(3)))
	// defaults flow down from the global configuration
	assert.Equal(t, sub.Directory, "/downloads")
	assert.Equal(t, sub.Command.Args, []string{"transmission-remote", "-a", "$URL"})
	assert.True(t, !sub.Command.Shell)
	assert.True(t, !sub.Command.IsDefaultHandler())
}

func TestNewSubscriptionOverrides(t *testing.T) {
	cfg := &config.Config{
		DefaultDirectory: "/downloads",
		DefaultCommand:   []string{"transmission-remote", "-a", "$URL"},
	}

	conf := &config.SubscriptionConf{
		Pattern:            `E(?P<episode>\d+)`,
		Directory:          "/other",
		Command:            []string{"deluge-console add $URL"},
		UseShellForCommand: true,
	}

	sub, err := NewSubscription(cfg, "feed1", "show", conf)
	assert.NoErr(t, err)
	assert.Equal(t, sub.Directory, "/other")
	assert.Equal(t, sub.Command.Args, []string{"deluge-console add $URL"})
	assert.True(t, sub.Command.Shell)
}

func TestNewSubscriptionDefaultHandler(t *testing.T) {
	// no command anywhere: payload goes to the os default handler
	cfg := &config.Config{}
	conf := &config.SubscriptionConf{Pattern: `E(?P<episode>\d+)`}

	sub, err := NewSubscription(cfg, "feed1", "show", conf)
	assert.NoErr(t, err)
	assert.True(t, sub.Command.IsDefaultHandler())
	assert.NotEqual(t, sub.Directory, "")
}

func TestNewSubscriptionErrors(t *testing.T) {
	tests := []struct {
		name    string
		pattern string
		errmsg  string
	}{
		{"invalid regex", `Show [`, "is not a valid regex"},
		{"missing episode group", `Show (?P<series>\d+)`, "no group for the episode number"},
	}

	cfg := &config.Config{}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewSubscription(cfg, "feed1", "show", &config.SubscriptionConf{Pattern: tt.pattern})
			assert.Err(t, err)
			assert.True(t, aerr.HasTag(err, aerr.ConfigurationError))

			// the user message names the offending feed and subscription
			msg := aerr.GetUserMessage(err)
			assert.True(t, strings.Contains(msg, `feed "feed1"`))
			assert.True(t, strings.Contains(msg, `sub "show"`))
			assert.True(t, strings.Contains(msg, tt.errmsg))
		})
	}
}
