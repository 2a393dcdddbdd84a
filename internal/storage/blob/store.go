// Package blob stores generated image bytes and hands back the public reference.
package blob

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
)

var (
	ErrNotFound     = errors.New("blob not found")
	ErrInvalidJobID = errors.New("invalid job id")
)

// Store persists image bytes under a job id.
type Store interface {
	// Put stores data and returns the reference the front end loads it from.
	Put(ctx context.Context, jobID string, data []byte) (string, error)
	// Open returns the stored bytes for jobID.
	Open(ctx context.Context, jobID string) (io.ReadCloser, error)
	// Delete removes the image for jobID. Deleting a missing image is not an error.
	Delete(ctx context.Context, jobID string) error
}

// URL is the path-style reference for a stored image.
func URL(jobID string) string {
	return fmt.Sprintf("/artifacts/%s.png", jobID)
}

// ObjectName is the file name a job's image is stored under.
func ObjectName(jobID string) string {
	return jobID + ".png"
}

// JobIDFromFile strips the .png suffix from a requested file name.
func JobIDFromFile(name string) (string, error) {
	jobID, ok := strings.CutSuffix(name, ".png")
	if !ok {
		return "", ErrInvalidJobID
	}
	return jobID, validateJobID(jobID)
}

func validateJobID(jobID string) error {
	if jobID == "" || strings.ContainsAny(jobID, `/\`) || strings.Contains(jobID, "..") {
		return ErrInvalidJobID
	}
	return nil
}
