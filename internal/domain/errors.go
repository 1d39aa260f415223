package domain

import "errors"

// ErrJobNotFound indicates the id was never issued by this process.
var ErrJobNotFound = errors.New("download not found")

// ErrJobNotReady indicates a fetch attempt before the job completed. This is
// a retryable state, not a hard failure.
var ErrJobNotReady = errors.New("download not ready yet")

// ErrFileMissing indicates a completed job whose output file is gone from
// storage (externally removed).
var ErrFileMissing = errors.New("file not found on server")

// ResolverError carries the resolver's own failure output. The resolver does
// not expose structured error codes, so Message is the raw text the
// classification layer pattern-matches.
type ResolverError struct {
	Message string
}

func (e *ResolverError) Error() string {
	return e.Message
}
