package aerr

// common_errors.go
// Copyright (C) 2026 Karol Będkowski <Karol Będkowski@kkomp>
//
// Distributed under terms of the GPLv3 license.

const (
	InternalError      = "internal error"
	ConfigurationError = "configuration error"
	FeedError          = "feed error"
	DispatchError      = "dispatch error"
)

var (
	// ErrConfiguration is raised before any network i/o; fatal for the run.
	ErrConfiguration = New("invalid configuration").WithTag(ConfigurationError)
	// ErrFeed is scoped to a single feed or entry; other feeds keep processing.
	ErrFeed = New("feed error").WithTag(FeedError)
	// ErrDispatch is logged only; a matched entry stays consumed.
	ErrDispatch = New("dispatch error").WithTag(DispatchError)
	ErrDatabase = New("database error").WithTag(InternalError).WithUserMsg("database error")
)
