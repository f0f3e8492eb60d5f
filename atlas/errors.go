package atlas

import (
	"errors"
	"fmt"
)

// ErrNothingToOverlay means no reference reached the overlay depth threshold.
// Callers may treat it as a warning; any other overlay error is an I/O or
// configuration failure.
var ErrNothingToOverlay = errors.New("nothing to overlay")

// MalformedTreeError is returned when the dataset description is not a
// well-formed tree. It is fatal for the pipeline.
type MalformedTreeError struct {
	// Location is a JSON pointer (or byte offset for syntax errors) identifying
	// the offending part of the document.
	Location string
	Reason   string
	Err      error
}

func (e *MalformedTreeError) Error() string {
	msg := "malformed tree"
	if e.Location != "" {
		msg += " at " + e.Location
	}
	if e.Reason != "" {
		msg += ": " + e.Reason
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *MalformedTreeError) Unwrap() error { return e.Err }

// FetchError describes a single failed download. The batch continues.
type FetchError struct {
	URL        string
	StatusCode int
	Err        error
}

func (e *FetchError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("fetch %s: %s", e.URL, e.Err)
	}
	return fmt.Sprintf("fetch %s: unexpected HTTP status %d", e.URL, e.StatusCode)
}

func (e *FetchError) Unwrap() error { return e.Err }

// DecodeError is returned when a coordinate file cannot be read.
type DecodeError struct {
	Path string
	Err  error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("decode %s: %s", e.Path, e.Err)
}

func (e *DecodeError) Unwrap() error { return e.Err }

// HullComputationError means no outline could be drawn for a point set. The
// scatter for that set is still rendered.
type HullComputationError struct {
	Points int
	Reason string
}

func (e *HullComputationError) Error() string {
	return fmt.Sprintf("convex hull of %d points: %s", e.Points, e.Reason)
}
