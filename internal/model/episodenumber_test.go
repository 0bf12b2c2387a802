package model

//
// episodenumber_test.go
// Copyright (C) 2026 Karol Będkowski <Karol Będkowski@kkomp>
//
// Distributed under terms of the GPLv3 license.
//

import (
	"regexp"
	"testing"

	"gitlab.com/kabes/go-trss/internal/aerr"
	"gitlab.com/kabes/go-trss/internal/assert"
)

func intp(v int) *int { return &v }

func TestEpisodeNumberFromMatch(t *testing.T) {
	tests := []struct {
		name    string
		pattern string
		title   string
		series  *int
		episode *int
	}{
		{"episode only", `Show (?P<episode>\d+)`, "Show 12", nil, intp(12)},
		{"series and episode", `S(?P<series>\d+)E(?P<episode>\d+)`, "S2E05", intp(2), intp(5)},
		{"optional series absent", `(?:S(?P<series>\d+))?E(?P<episode>\d+)`, "E07", nil, intp(7)},
		{"leading zeros", `E(?P<episode>\d+)`, "E007", nil, intp(7)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			re := regexp.MustCompile(tt.pattern)
			m := re.FindStringSubmatch(tt.title)
			assert.True(t, m != nil)

			number, err := EpisodeNumberFromMatch(re, m)
			assert.NoErr(t, err)
			assert.Equal(t, number, NewEpisodeNumber(tt.series, tt.episode))
		})
	}
}

func TestEpisodeNumberFromMatchErrors(t *testing.T) {
	tests := []struct {
		name    string
		pattern string
		title   string
	}{
		{"no episode group", `Show (?P<series>\d+)`, "Show 12"},
		{"episode group not participating", `Show(?: E(?P<episode>\d+))?`, "Show"},
		{"non-numeric episode", `E(?P<episode>\w+)`, "Efinal"},
		{"non-numeric series", `S(?P<series>\w+)E(?P<episode>\d+)`, "SxE12"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			re := regexp.MustCompile(tt.pattern)
			m := re.FindStringSubmatch(tt.title)
			assert.True(t, m != nil)

			_, err := EpisodeNumberFromMatch(re, m)
			assert.Err(t, err)
			assert.True(t, aerr.HasTag(err, aerr.FeedError))
		})
	}
}

func TestEpisodeNumberGreaterThan(t *testing.T) {
	tests := []struct {
		name    string
		e       EpisodeNumber
		other   EpisodeNumber
		greater bool
	}{
		{"unset never beats", EpisodeNumber{}, EpisodeNumber{}, false},
		{"unset never beats concrete", EpisodeNumber{}, NewEpisodeNumber(nil, intp(1)), false},
		{"concrete beats unset baseline", NewEpisodeNumber(nil, intp(1)), EpisodeNumber{}, true},
		{"higher episode", NewEpisodeNumber(nil, intp(5)), NewEpisodeNumber(nil, intp(4)), true},
		{"equal episode", NewEpisodeNumber(nil, intp(5)), NewEpisodeNumber(nil, intp(5)), false},
		{"lower episode", NewEpisodeNumber(nil, intp(4)), NewEpisodeNumber(nil, intp(5)), false},
		{"series beats episode", NewEpisodeNumber(intp(2), intp(1)), NewEpisodeNumber(intp(1), intp(24)), true},
		{"older series loses", NewEpisodeNumber(intp(1), intp(24)), NewEpisodeNumber(intp(2), intp(1)), false},
		{"same series compares episodes", NewEpisodeNumber(intp(2), intp(3)), NewEpisodeNumber(intp(2), intp(2)), true},
		{"one side without series compares episodes", NewEpisodeNumber(nil, intp(3)), NewEpisodeNumber(intp(2), intp(2)), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.e.GreaterThan(tt.other), tt.greater)
		})
	}
}

// two distinct numbers are ordered in exactly one direction; equal numbers in
// neither.
func TestEpisodeNumberOrderingIsMutuallyExclusive(t *testing.T) {
	numbers := []EpisodeNumber{
		{},
		NewEpisodeNumber(nil, intp(1)),
		NewEpisodeNumber(nil, intp(2)),
		NewEpisodeNumber(intp(1), intp(1)),
		NewEpisodeNumber(intp(1), intp(24)),
		NewEpisodeNumber(intp(2), intp(1)),
	}

	for _, a := range numbers {
		for _, b := range numbers {
			if a.GreaterThan(b) && b.GreaterThan(a) {
				t.Errorf("both %s > %s and %s > %s", a, b, b, a)
			}

			if a.Equal(b) && (a.GreaterThan(b) || b.GreaterThan(a)) {
				t.Errorf("%s and %s equal but ordered", a, b)
			}
		}
	}
}

func TestEpisodeNumberString(t *testing.T) {
	assert.Equal(t, EpisodeNumber{}.String(), "<unset>")
	assert.Equal(t, NewEpisodeNumber(nil, intp(5)).String(), "E5")
	assert.Equal(t, NewEpisodeNumber(intp(1), intp(5)).String(), "S1E5")
}
