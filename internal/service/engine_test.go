package service

//
// engine_test.go
// Copyright (C) 2026 Karol Będkowski <Karol Będkowski@kkomp>
//
// Distributed under terms of the GPLv3 license.
//

import (
	"context"
	"fmt"
	stdlog "log"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	_ "github.com/mattn/go-sqlite3"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/samber/do/v2"

	"gitlab.com/kabes/go-trss/internal/assert"
	"gitlab.com/kabes/go-trss/internal/config"
	"gitlab.com/kabes/go-trss/internal/history"
)

func prepareTests(t *testing.T) (context.Context, do.Injector) {
	t.Helper()

	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stdout}).With().Caller().Logger()
	zerolog.SetGlobalLevel(zerolog.DebugLevel)
	stdlog.SetFlags(0)
	stdlog.SetOutput(log.Logger)

	ctx := log.Logger.WithContext(context.Background())
	i := do.New(Package, history.Package)

	repo := do.MustInvoke[*history.Repository](i)
	if err := repo.Open(ctx, ":memory:"); err != nil {
		t.Fatalf("open history database failed: %#+v", err)
	}

	return ctx, i
}

func serveRSS(t *testing.T, titles ...string) *httptest.Server {
	t.Helper()

	doc := `<?xml version="1.0" encoding="UTF-8"?><rss version="2.0"><channel><title>t</title>`
	for _, title := range titles {
		doc += "<item><title>" + title + "</title><link>http://example.com/" + title + "</link></item>"
	}

	doc += "</channel></rss>"

	server := httptest.NewServer(http.HandlerFunc(
		func(w http.ResponseWriter, _ *http.Request) {
			w.Header().Set("Content-Type", "application/rss+xml")
			fmt.Fprint(w, doc)
		}))
	t.Cleanup(server.Close)

	return server
}

// prepareTestConfig write a one-feed configuration pointing at url and load
// it, so saving writes numbers back to the returned path.
func prepareTestConfig(t *testing.T, i do.Injector, url string) (*config.Config, string) {
	t.Helper()

	path := filepath.Join(t.TempDir(), "config.json")
	content := fmt.Sprintf(`{
    "feeds": {
        "feed1": {
            "url": %q,
            "subscriptions": {
                "show": {
                    "pattern": "Show E(?P<episode>\\d+)",
                    "episode_number": 1,
                    "command": ["true", "$URL"]
                }
            }
        }
    }
}`, url)

	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write test config failed: %v", err)
	}

	conf, err := config.Load(path)
	if err != nil {
		t.Fatalf("load test config failed: %#+v", err)
	}

	do.ProvideValue(i, conf)

	return conf, path
}

func TestEngineCheckCycle(t *testing.T) {
	ctx, i := prepareTests(t)
	server := serveRSS(t, "Show E3", "Show E2", "Show E1")
	_, path := prepareTestConfig(t, i, server.URL)

	engine, err := do.Invoke[*Engine](i)
	assert.NoErr(t, err)

	assert.NoErr(t, engine.CheckAllFeeds(ctx))

	// both new episodes recorded, newest first
	repo := do.MustInvoke[*history.Repository](i)
	recs, err := repo.ListRecent(ctx, 10)
	assert.NoErr(t, err)
	assert.Equal(t, len(recs), 2)
	assert.Equal(t, recs[0].Title, "Show E3")
	assert.Equal(t, *recs[0].Episode, 3)
	assert.Equal(t, recs[0].Payload, "http://example.com/Show E3")
	assert.Equal(t, recs[1].Title, "Show E2")
	assert.NotEqual(t, recs[0].RunID, "")
	assert.Equal(t, recs[0].RunID, recs[1].RunID)

	// the highest seen number lands back in the configuration file
	assert.NoErr(t, engine.PersistEpisodeNumbers(ctx))

	reloaded, err := config.Load(path)
	assert.NoErr(t, err)
	assert.Equal(t, *reloaded.Feeds["feed1"].Subscriptions["show"].EpisodeNumber, 3)
}

func TestEngineDryRun(t *testing.T) {
	ctx, i := prepareTests(t)
	server := serveRSS(t, "Show E3", "Show E2", "Show E1")
	_, path := prepareTestConfig(t, i, server.URL)

	engine, err := do.Invoke[*Engine](i)
	assert.NoErr(t, err)

	engine.DryRun = true

	assert.NoErr(t, engine.CheckAllFeeds(ctx))
	assert.NoErr(t, engine.PersistEpisodeNumbers(ctx))

	// nothing recorded, nothing persisted
	repo := do.MustInvoke[*history.Repository](i)
	recs, err := repo.ListRecent(ctx, 10)
	assert.NoErr(t, err)
	assert.Equal(t, len(recs), 0)

	reloaded, err := config.Load(path)
	assert.NoErr(t, err)
	assert.Equal(t, *reloaded.Feeds["feed1"].Subscriptions["show"].EpisodeNumber, 1)
}

// a failed hand-off is logged only: the match stays consumed, its history row
// is written and the advanced number is persisted.
func TestEngineDispatchFailureKeepsMatch(t *testing.T) {
	ctx, i := prepareTests(t)
	server := serveRSS(t, "Show E2", "Show E1")

	path := filepath.Join(t.TempDir(), "config.json")
	content := fmt.Sprintf(`{
    "feeds": {
        "feed1": {
            "url": %q,
            "subscriptions": {
                "show": {
                    "pattern": "Show E(?P<episode>\\d+)",
                    "episode_number": 1,
                    "command": ["/nonexistent-torrent-handler", "$URL"]
                }
            }
        }
    }
}`, server.URL)

	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write test config failed: %v", err)
	}

	conf, err := config.Load(path)
	assert.NoErr(t, err)
	do.ProvideValue(i, conf)

	engine, err := do.Invoke[*Engine](i)
	assert.NoErr(t, err)

	assert.NoErr(t, engine.CheckAllFeeds(ctx))

	repo := do.MustInvoke[*history.Repository](i)
	recs, err := repo.ListRecent(ctx, 10)
	assert.NoErr(t, err)
	assert.Equal(t, len(recs), 1)
	assert.Equal(t, recs[0].Title, "Show E2")

	assert.NoErr(t, engine.PersistEpisodeNumbers(ctx))

	reloaded, err := config.Load(path)
	assert.NoErr(t, err)
	assert.Equal(t, *reloaded.Feeds["feed1"].Subscriptions["show"].EpisodeNumber, 2)
}

func TestEngineNoNewEpisodes(t *testing.T) {
	ctx, i := prepareTests(t)
	server := serveRSS(t, "Show E1", "Unrelated release")
	prepareTestConfig(t, i, server.URL)

	engine, err := do.Invoke[*Engine](i)
	assert.NoErr(t, err)

	assert.NoErr(t, engine.CheckAllFeeds(ctx))

	repo := do.MustInvoke[*history.Repository](i)
	recs, err := repo.ListRecent(ctx, 10)
	assert.NoErr(t, err)
	assert.Equal(t, len(recs), 0)
}

// a broken feed must not stop the other feeds from being checked and their
// numbers from being persisted.
func TestEngineFeedFailureIsolation(t *testing.T) {
	ctx, i := prepareTests(t)
	server := serveRSS(t, "Show E2", "Show E1")

	broken := httptest.NewServer(http.HandlerFunc(
		func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusInternalServerError)
		}))
	t.Cleanup(broken.Close)

	path := filepath.Join(t.TempDir(), "config.json")
	content := fmt.Sprintf(`{
    "feeds": {
        "broken": {
            "url": %q,
            "subscriptions": {
                "other": {"pattern": "Other E(?P<episode>\\d+)", "command": ["true"]}
            }
        },
        "good": {
            "url": %q,
            "subscriptions": {
                "show": {
                    "pattern": "Show E(?P<episode>\\d+)",
                    "episode_number": 1,
                    "command": ["true", "$URL"]
                }
            }
        }
    }
}`, broken.URL, server.URL)

	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write test config failed: %v", err)
	}

	conf, err := config.Load(path)
	assert.NoErr(t, err)
	do.ProvideValue(i, conf)

	engine, err := do.Invoke[*Engine](i)
	assert.NoErr(t, err)

	assert.Err(t, engine.CheckAllFeeds(ctx))

	// the healthy feed's match was still dispatched and recorded
	repo := do.MustInvoke[*history.Repository](i)
	recs, err := repo.ListRecent(ctx, 10)
	assert.NoErr(t, err)
	assert.Equal(t, len(recs), 1)
	assert.Equal(t, recs[0].Feed, "good")
	assert.Equal(t, recs[0].Title, "Show E2")

	// and its number is persisted
	assert.NoErr(t, engine.PersistEpisodeNumbers(ctx))

	reloaded, err := config.Load(path)
	assert.NoErr(t, err)
	assert.Equal(t, *reloaded.Feeds["good"].Subscriptions["show"].EpisodeNumber, 2)
	assert.Equal(t, reloaded.Feeds["broken"].Subscriptions["other"].EpisodeNumber, nil)
}

func TestEngineInvalidPattern(t *testing.T) {
	_, i := prepareTests(t)

	conf := &config.Config{
		Feeds: map[string]*config.FeedConf{
			"feed1": {
				URL: "http://example.com/rss",
				Subscriptions: map[string]*config.SubscriptionConf{
					"show": {Pattern: "Show ["},
				},
			},
		},
	}
	do.ProvideValue(i, conf)

	// pattern errors surface at construction, before any network i/o
	_, err := do.Invoke[*Engine](i)
	assert.Err(t, err)
}
