package session

import "errors"

var (
	ErrNotFound    = errors.New("session not found")
	ErrNoMedia     = errors.New("upload a video and add clips")
	ErrNoClips     = errors.New("upload a video and add clips: no clips to export")
	ErrInFlight    = errors.New("operation already in progress")
	ErrMediaLoaded = errors.New("media already loaded for this session")
)
