package util

import "errors"

var (
	ErrUserNotFound       = errors.New("user not found in roster")
	ErrRosterUnavailable  = errors.New("roster not available")
	ErrWeekNotFound       = errors.New("week not found")
	ErrSessionNotFound    = errors.New("session not found")
	ErrTranscriptNotFound = errors.New("transcript not found")
	ErrTranscriptFetch    = errors.New("transcript fetch failed")
)
