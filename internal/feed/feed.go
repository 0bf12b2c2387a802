package feed

//
// feed.go
// Copyright (C) 2026 Karol Będkowski <Karol Będkowski@kkomp>
//
// Distributed under terms of the GPLv3 license.
//

import (
	"context"
	"maps"
	"slices"
	"time"

	"github.com/mmcdole/gofeed"
	"github.com/rs/zerolog/log"
	"gitlab.com/kabes/go-trss/internal/aerr"
	"gitlab.com/kabes/go-trss/internal/config"
	"gitlab.com/kabes/go-trss/internal/model"
)

const fetchTimeout = 30 * time.Second

// Feed is one named remote rss source together with its subscriptions.
// It is fetched at most once per run; one document serves all subscriptions.
type Feed struct {
	Name string
	URL  string

	userAgent        string
	preferURL        bool
	hideFilename     bool
	replaceForbidden bool

	// subscriptions in name order, for deterministic match output.
	subs []*model.Subscription
}

func New(cfg *config.Config, name string, fc *config.FeedConf) (*Feed, error) {
	feed := Feed{
		Name:             name,
		URL:              fc.URL,
		userAgent:        fc.EffectiveUserAgent(cfg),
		preferURL:        fc.PreferURL(),
		hideFilename:     fc.HideFilename(),
		replaceForbidden: cfg.ReplaceForbiddenCharacters(),
	}

	subnames := slices.Sorted(maps.Keys(fc.Subscriptions))
	for _, subname := range subnames {
		sub, err := model.NewSubscription(cfg, name, subname, fc.Subscriptions[subname])
		if err != nil {
			return nil, err
		}

		feed.subs = append(feed.subs, sub)
	}

	return &feed, nil
}

func (f *Feed) Subscriptions() []*model.Subscription {
	return f.subs
}

// Fetch download and parse the feed document.
func (f *Feed) Fetch(ctx context.Context) ([]model.Entry, error) {
	logger := log.Ctx(ctx)
	logger.Debug().Str("feed", f.Name).Msgf("fetching url=%q user_agent=%q", f.URL, f.userAgent)

	fctx, cancel := context.WithTimeout(ctx, fetchTimeout)
	defer cancel()

	parser := gofeed.NewParser()
	if f.userAgent != "" {
		parser.UserAgent = f.userAgent
	}

	doc, err := parser.ParseURLWithContext(f.URL, fctx)
	if err != nil {
		return nil, aerr.ApplyFor(aerr.ErrFeed, err, "fetch feed failed").
			WithUserMsg("feed %q: error fetching url %q", f.Name, f.URL).
			WithMeta("feed", f.Name, "url", f.URL)
	}

	logger.Info().Str("feed", f.Name).Msgf("downloaded url=%q entries=%d", f.URL, len(doc.Items))

	entries := make([]model.Entry, 0, len(doc.Items))
	for idx, item := range doc.Items {
		entry := model.Entry{
			Title: item.Title,
			Link:  item.Link,
			Index: idx,
		}

		for _, enc := range item.Enclosures {
			if enc != nil {
				entry.Enclosures = append(entry.Enclosures,
					model.Enclosure{URL: enc.URL, Type: enc.Type})
			}
		}

		entries = append(entries, entry)
	}

	return entries, nil
}

// Match is one genuine new match: an entry whose extracted number passed the
// subscription's baseline.
type Match struct {
	Sub    *model.Subscription
	Entry  model.Entry
	Number model.EpisodeNumber
}

// MatchingSubscriptions fetch the feed once and return all genuine matches in
// oldest-first entry order. Comparison always uses the numbers snapshotted
// before the scan, so every qualifying entry is surfaced exactly once even
// when the feed lists episodes out of numeric order; the subscriptions' live
// numbers are advanced in place as matches are found.
func (f *Feed) MatchingSubscriptions(ctx context.Context) ([]Match, error) {
	if len(f.subs) == 0 {
		return nil, nil
	}

	entries, err := f.Fetch(ctx)
	if err != nil {
		return nil, err
	}

	baseline := make(map[*model.Subscription]model.EpisodeNumber, len(f.subs))
	for _, sub := range f.subs {
		baseline[sub] = sub.Number
	}

	logger := log.Ctx(ctx)

	var matches []Match

	for idx := len(entries) - 1; idx >= 0; idx-- {
		entry := entries[idx]

		for _, sub := range f.subs {
			m := sub.Regex.FindStringSubmatch(entry.Title)
			if m == nil {
				logger.Debug().Str("feed", f.Name).Str("sub", sub.Name).
					Msgf("no match: entry %d %q", entry.Index, entry.Title)

				continue
			}

			number, err := model.EpisodeNumberFromMatch(sub.Regex, m)
			if err != nil {
				return matches, aerr.Wrapf(err, "feed %q sub %q: entry %q", f.Name, sub.Name, entry.Title).
					WithTag(aerr.FeedError)
			}

			if number.GreaterThan(baseline[sub]) {
				logger.Info().Str("feed", f.Name).Str("sub", sub.Name).
					Msgf("match: entry %d %q number %s > baseline %s",
						entry.Index, entry.Title, number, baseline[sub])

				sub.Number = number
				matches = append(matches, Match{Sub: sub, Entry: entry, Number: number})
			} else {
				logger.Debug().Str("feed", f.Name).Str("sub", sub.Name).
					Msgf("no match: entry %d %q number %s <= baseline %s",
						entry.Index, entry.Title, number, baseline[sub])
			}
		}
	}

	return matches, nil
}
