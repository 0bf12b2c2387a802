package model

//
// episodenumber.go
// Copyright (C) 2026 Karol Będkowski <Karol Będkowski@kkomp>
//
// Distributed under terms of the GPLv3 license.
//

import (
	"regexp"
	"strconv"

	"github.com/rs/zerolog"
	"gitlab.com/kabes/go-trss/internal/aerr"
)

// Names of the capture groups that form the configuration contract with
// subscription patterns.
const (
	EpisodeGroup = "episode"
	SeriesGroup  = "series"
)

// EpisodeNumber is the progression state of a subscription: optional series
// and episode numbers. Nil means "not known yet".
type EpisodeNumber struct {
	Series  *int
	Episode *int
}

func NewEpisodeNumber(series, episode *int) EpisodeNumber {
	return EpisodeNumber{Series: series, Episode: episode}
}

// EpisodeNumberFromMatch build an EpisodeNumber from a regexp match. The
// episode group must have captured a number; a declared series group that did
// not participate in the match leaves the series absent.
func EpisodeNumberFromMatch(re *regexp.Regexp, match []string) (EpisodeNumber, error) {
	var number EpisodeNumber

	epidx := re.SubexpIndex(EpisodeGroup)
	if epidx < 0 || epidx >= len(match) || match[epidx] == "" {
		return number, aerr.ErrFeed.
			WithUserMsg("pattern %q matched but captured no episode number", re.String())
	}

	episode, err := strconv.Atoi(match[epidx])
	if err != nil {
		return number, aerr.ApplyFor(aerr.ErrFeed, err,
			"episode group captured non-numeric value "+strconv.Quote(match[epidx]))
	}

	number.Episode = &episode

	if seridx := re.SubexpIndex(SeriesGroup); seridx >= 0 && seridx < len(match) && match[seridx] != "" {
		series, err := strconv.Atoi(match[seridx])
		if err != nil {
			return EpisodeNumber{}, aerr.ApplyFor(aerr.ErrFeed, err,
				"series group captured non-numeric value "+strconv.Quote(match[seridx]))
		}

		number.Series = &series
	}

	return number, nil
}

// GreaterThan report whether e represents progress beyond other. An unset
// baseline is beaten by any concrete match; differing series numbers decide
// before episode numbers, so S2E01 beats S1E24.
func (e EpisodeNumber) GreaterThan(other EpisodeNumber) bool {
	if e.Episode == nil {
		return false
	}

	if other.Episode == nil {
		return true
	}

	if e.Series != nil && other.Series != nil && *e.Series != *other.Series {
		return *e.Series > *other.Series
	}

	return *e.Episode > *other.Episode
}

// Equal report whether both series and episode match exactly (absent == absent).
func (e EpisodeNumber) Equal(other EpisodeNumber) bool {
	return intPtrEqual(e.Series, other.Series) && intPtrEqual(e.Episode, other.Episode)
}

func (e EpisodeNumber) String() string {
	switch {
	case e.Series != nil && e.Episode != nil:
		return "S" + strconv.Itoa(*e.Series) + "E" + strconv.Itoa(*e.Episode)
	case e.Episode != nil:
		return "E" + strconv.Itoa(*e.Episode)
	default:
		return "<unset>"
	}
}

func (e EpisodeNumber) MarshalZerologObject(event *zerolog.Event) {
	event.Any("series", e.Series).Any("episode", e.Episode)
}

func intPtrEqual(a, b *int) bool {
	if a == nil || b == nil {
		return a == b
	}

	return *a == *b
}
