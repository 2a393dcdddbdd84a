package domain

import "errors"

var (
	ErrArtifactNotFound = errors.New("artifact not found")
	ErrArtifactExists   = errors.New("artifact already exists")
	ErrParentNotLoaded  = errors.New("parent artifact is not in the loaded collection")
	ErrNoParent         = errors.New("artifact has no parent")
	ErrInvalidPrompt    = errors.New("prompt must be at least 3 characters long")
	ErrInvalidAction    = errors.New("invalid artifact action")
	ErrEmptyUpdate      = errors.New("update requires an action or metadata")
	ErrInvalidSource    = errors.New("source artifact requires id and url")
	ErrInvalidImage     = errors.New("invalid image data url")
	ErrUpstream         = errors.New("image generation failed")
	ErrRequestInFlight  = errors.New("a generation request is already in flight for this session")
	ErrJobNotFound      = errors.New("image job not found")
	ErrUpdateConflict   = errors.New("artifact was modified concurrently")
	ErrJobsDisabled     = errors.New("image job history is not enabled")
)
