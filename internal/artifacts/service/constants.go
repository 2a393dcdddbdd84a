package service

import "time"

const (
	// DefaultUpstreamTimeout bounds a single Image Service call
	DefaultUpstreamTimeout = 60 * time.Second

	// MinPromptLength is counted in runes after trimming
	MinPromptLength = 3
)
