package feed

//
// download.go
// Copyright (C) 2026 Karol Będkowski <Karol Będkowski@kkomp>
//
// Distributed under terms of the GPLv3 license.
//

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"regexp"
	"time"

	"github.com/rs/zerolog/log"
	"gitlab.com/kabes/go-trss/internal/aerr"
	"gitlab.com/kabes/go-trss/internal/model"
)

const downloadTimeout = 60 * time.Second

// characters not allowed in windows filenames.
var forbiddenCharacters = regexp.MustCompile(`[\\/:*?"<>|]`)

// ResolveEntryURL select the torrent url from an entry: the first enclosure
// declared as a torrent file, else the entry's primary link.
func (f *Feed) ResolveEntryURL(ctx context.Context, entry model.Entry) (string, error) {
	logger := log.Ctx(ctx)

	for _, enc := range entry.Enclosures {
		if enc.Type == model.TorrentMimetype && enc.URL != "" {
			logger.Debug().Str("feed", f.Name).
				Msgf("entry %q: first link with mimetype %q is %q", entry.Title, enc.Type, enc.URL)

			return enc.URL, nil
		}
	}

	if entry.Link == "" {
		return "", aerr.ErrFeed.
			WithUserMsg("feed %q: no usable link for entry %q", f.Name, entry.Title)
	}

	logger.Debug().Str("feed", f.Name).
		Msgf("entry %q: no link with mimetype %q, using primary link %q",
			entry.Title, model.TorrentMimetype, entry.Link)

	return entry.Link, nil
}

// DownloadEntry resolve an entry to a payload for dispatch: the raw torrent
// url when the feed prefers urls, else the path of the downloaded `.torrent`
// file written into directory.
func (f *Feed) DownloadEntry(ctx context.Context, entry model.Entry, directory string) (string, error) {
	url, err := f.ResolveEntryURL(ctx, entry)
	if err != nil {
		return "", err
	}

	if f.preferURL {
		log.Ctx(ctx).Debug().Str("feed", f.Name).Msgf("returning torrent url %q", url)

		return url, nil
	}

	path, err := f.downloadTorrentFile(ctx, url, entry.Title, directory)
	if err != nil {
		return "", aerr.Wrapf(err, "feed %q: failed to download %q", f.Name, url).
			WithTag(aerr.FeedError).
			WithMeta("feed", f.Name, "url", url)
	}

	return path, nil
}

func (f *Feed) downloadTorrentFile(ctx context.Context, url, title, directory string) (string, error) {
	logger := log.Ctx(ctx)
	logger.Debug().Str("feed", f.Name).Msgf("downloading url=%q user_agent=%q", url, f.userAgent)

	dctx, cancel := context.WithTimeout(ctx, downloadTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(dctx, http.MethodGet, url, nil)
	if err != nil {
		return "", aerr.Wrapf(err, "build request failed")
	}

	if f.userAgent != "" {
		req.Header.Set("User-Agent", f.userAgent)
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return "", aerr.Wrapf(err, "get failed")
	}
	defer resp.Body.Close()

	logger.Debug().Str("feed", f.Name).Msgf("response status=%d", resp.StatusCode)

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return "", aerr.Newf("unexpected response status %q", resp.Status)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", aerr.Wrapf(err, "read response failed")
	}

	filename := title

	switch {
	case f.hideFilename:
		digest := sha256.Sum256(body)
		filename = hex.EncodeToString(digest[:])
	case f.replaceForbidden:
		filename = forbiddenCharacters.ReplaceAllString(filename, "_")
	}

	if err := os.MkdirAll(directory, 0o755); err != nil { //nolint:mnd
		return "", aerr.Wrapf(err, "create directory %q failed", directory)
	}

	path := filepath.Join(directory, filename+".torrent")

	logger.Debug().Str("feed", f.Name).Msgf("writing response to file %q", path)

	if err := os.WriteFile(path, body, 0o644); err != nil { //nolint:mnd
		return "", aerr.Wrapf(err, "write file %q failed", path)
	}

	return path, nil
}
