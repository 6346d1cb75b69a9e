package model

import "fmt"

// Stream is a resolved, playable video resource
type Stream struct {
	URL        string
	Resolution Quality
	Language   Language
	Referer    string
	HLS        bool
}

// StreamResultKind discriminates the outcome of stream resolution
type StreamResultKind int

const (
	StreamFound StreamResultKind = iota
	StreamNotFound
	StreamError
)

// String returns the string representation of StreamResultKind
func (k StreamResultKind) String() string {
	switch k {
	case StreamFound:
		return "found"
	case StreamNotFound:
		return "not-found"
	case StreamError:
		return "error"
	default:
		return "unknown"
	}
}

// StreamResult is the outcome of resolving a stream: exactly one of
// Found(Stream), NotFound or Error(Err).
type StreamResult struct {
	Kind   StreamResultKind
	Stream *Stream
	Err    error
}

// Found wraps a resolved stream
func Found(s *Stream) StreamResult {
	return StreamResult{Kind: StreamFound, Stream: s}
}

// NotFound reports that no stream exists for the request
func NotFound() StreamResult {
	return StreamResult{Kind: StreamNotFound}
}

// Failed wraps a hard resolution failure
func Failed(err error) StreamResult {
	if err == nil {
		err = fmt.Errorf("stream resolution failed")
	}
	return StreamResult{Kind: StreamError, Err: err}
}
