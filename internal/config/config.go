package config

//
// config.go
// Copyright (C) 2026 Karol Będkowski <Karol Będkowski@kkomp>
//
// Distributed under terms of the GPLv3 license.
//

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"runtime"

	"gitlab.com/kabes/go-trss/internal/aerr"
)

// Config is the whole configuration file. The json layout is the contract
// with the user; series/episode numbers are written back here after a run.
type Config struct {
	DefaultDirectory           string               `json:"default_directory,omitempty"`
	DefaultCommand             []string             `json:"default_command,omitempty"`
	DefaultCommandShellEnabled bool                 `json:"default_command_shell_enabled,omitempty"`
	DefaultUserAgent           string               `json:"default_user_agent,omitempty"`
	ReplaceWindowsForbidden    *bool                `json:"replace_windows_forbidden_characters,omitempty"`
	Feeds                      map[string]*FeedConf `json:"feeds"`

	path string
}

type FeedConf struct {
	URL                 string                       `json:"url"`
	UserAgent           string                       `json:"user_agent,omitempty"`
	PreferTorrentURL    *bool                        `json:"prefer_torrent_url,omitempty"`
	HideTorrentFilename *bool                        `json:"hide_torrent_filename,omitempty"`
	Subscriptions       map[string]*SubscriptionConf `json:"subscriptions"`
}

type SubscriptionConf struct {
	Pattern            string   `json:"pattern"`
	SeriesNumber       *int     `json:"series_number,omitempty"`
	EpisodeNumber      *int     `json:"episode_number,omitempty"`
	Directory          string   `json:"directory,omitempty"`
	Command            []string `json:"command,omitempty"`
	UseShellForCommand bool     `json:"use_shell_for_command,omitempty"`
}

// DefaultPath return the per-user configuration file location.
func DefaultPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		dir = "."
	}

	return filepath.Join(dir, "go-trss", "config.json")
}

// Load read and validate configuration file. Unknown keys are rejected so a
// mistyped option fails loudly instead of being ignored.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, aerr.ApplyFor(aerr.ErrConfiguration, err, "read config file failed").
			WithUserMsg("cannot read config file %q", path)
	}

	conf := Config{path: path}

	decoder := json.NewDecoder(bytes.NewReader(data))
	decoder.DisallowUnknownFields()

	if err := decoder.Decode(&conf); err != nil {
		return nil, aerr.ApplyFor(aerr.ErrConfiguration, err, "parse config file failed").
			WithMeta("path", path)
	}

	if err := conf.Validate(); err != nil {
		return nil, err
	}

	return &conf, nil
}

// Validate check structure of configuration. Pattern compilation and the
// episode capture group are validated later, when subscriptions are built.
func (c *Config) Validate() error {
	if len(c.Feeds) == 0 {
		return aerr.ErrConfiguration.WithUserMsg("no feeds defined")
	}

	for name, feed := range c.Feeds {
		if feed == nil || feed.URL == "" {
			return aerr.ErrConfiguration.WithUserMsg("feed %q: url is required", name)
		}

		for subname, sub := range feed.Subscriptions {
			if sub == nil || sub.Pattern == "" {
				return aerr.ErrConfiguration.
					WithUserMsg("feed %q sub %q: pattern is required", name, subname)
			}
		}
	}

	return nil
}

// Save write configuration (with updated episode numbers) back to the file it
// was loaded from. Write is atomic: temp file in the same directory + rename.
func (c *Config) Save() error {
	if c.path == "" {
		return aerr.New("config was not loaded from a file").WithTag(aerr.InternalError)
	}

	return c.SaveTo(c.path)
}

func (c *Config) SaveTo(path string) error {
	data, err := json.MarshalIndent(c, "", "    ")
	if err != nil {
		return aerr.Wrapf(err, "marshal config failed").WithTag(aerr.InternalError)
	}

	data = append(data, '\n')

	tmp, err := os.CreateTemp(filepath.Dir(path), ".config-*.json")
	if err != nil {
		return aerr.Wrapf(err, "create temp config file failed").WithMeta("path", path)
	}

	tmpname := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpname)

		return aerr.Wrapf(err, "write temp config file failed").WithMeta("path", tmpname)
	}

	if err := tmp.Close(); err != nil {
		os.Remove(tmpname)

		return aerr.Wrapf(err, "close temp config file failed").WithMeta("path", tmpname)
	}

	if err := os.Rename(tmpname, path); err != nil {
		os.Remove(tmpname)

		return aerr.Wrapf(err, "replace config file failed").WithMeta("path", path)
	}

	return nil
}

//------------------------------------------------------------------------------

// EffectiveDirectory return the global download directory; temp dir when unset.
func (c *Config) EffectiveDirectory() string {
	if c.DefaultDirectory != "" {
		return c.DefaultDirectory
	}

	return os.TempDir()
}

// ReplaceForbiddenCharacters tell whether windows-forbidden characters in
// downloaded filenames are replaced; default follows the running os.
func (c *Config) ReplaceForbiddenCharacters() bool {
	if c.ReplaceWindowsForbidden != nil {
		return *c.ReplaceWindowsForbidden
	}

	return runtime.GOOS == "windows"
}

// EffectiveUserAgent return user agent for a feed: feed override, else global.
func (f *FeedConf) EffectiveUserAgent(c *Config) string {
	if f.UserAgent != "" {
		return f.UserAgent
	}

	return c.DefaultUserAgent
}

func (f *FeedConf) PreferURL() bool {
	if f.PreferTorrentURL != nil {
		return *f.PreferTorrentURL
	}

	return true
}

func (f *FeedConf) HideFilename() bool {
	if f.HideTorrentFilename != nil {
		return *f.HideTorrentFilename
	}

	return true
}
