package apperrors

import "fmt"

// RetrievalError is returned when a subtitle source could not be fetched: the
// transport failed or the server answered with a non-2xx status.
type RetrievalError struct {
	SourceID   string
	StatusCode int   // 0 when no response was received
	Err        error // underlying cause, may be nil
}

// Error implements the error interface.
func (e *RetrievalError) Error() string {
	switch {
	case e.StatusCode != 0:
		return fmt.Sprintf("failed to retrieve subtitle %s: unexpected status code %d", e.SourceID, e.StatusCode)
	case e.Err != nil:
		return fmt.Sprintf("failed to retrieve subtitle %s: %v", e.SourceID, e.Err)
	default:
		return fmt.Sprintf("failed to retrieve subtitle %s", e.SourceID)
	}
}

// Unwrap returns the underlying cause.
func (e *RetrievalError) Unwrap() error {
	return e.Err
}

// Is allows for error checking with errors.Is().
func (e *RetrievalError) Is(target error) bool {
	_, ok := target.(*RetrievalError)
	return ok
}

// NewRetrievalError creates a new RetrievalError.
func NewRetrievalError(sourceID string, statusCode int, err error) *RetrievalError {
	return &RetrievalError{
		SourceID:   sourceID,
		StatusCode: statusCode,
		Err:        err,
	}
}

// DecodeError is returned when subtitle bytes cannot be turned into text.
type DecodeError struct {
	Reason string
}

// Error implements the error interface.
func (e *DecodeError) Error() string {
	return fmt.Sprintf("failed to decode subtitle: %s", e.Reason)
}

// Is allows for error checking with errors.Is().
func (e *DecodeError) Is(target error) bool {
	_, ok := target.(*DecodeError)
	return ok
}

// ErrSubtitleResourceNotFound is returned when the subtitle URL returns HTTP 404.
type ErrSubtitleResourceNotFound struct {
	URL string
}

// Error implements the error interface.
func (e *ErrSubtitleResourceNotFound) Error() string {
	return fmt.Sprintf("subtitle resource not found at URL: %s", e.URL)
}

// Is allows for error checking with errors.Is().
func (e *ErrSubtitleResourceNotFound) Is(target error) bool {
	_, ok := target.(*ErrSubtitleResourceNotFound)
	return ok
}

// ErrNoSubtitleInArchive is returned when a downloaded ZIP or RAR archive holds no subtitle file.
type ErrNoSubtitleInArchive struct {
	Archive   string // "zip" or "rar"
	FileCount int
}

// Error implements the error interface.
func (e *ErrNoSubtitleInArchive) Error() string {
	return fmt.Sprintf("no subtitle file found in %s archive (searched %d files)", e.Archive, e.FileCount)
}

// Is allows for error checking with errors.Is().
func (e *ErrNoSubtitleInArchive) Is(target error) bool {
	_, ok := target.(*ErrNoSubtitleInArchive)
	return ok
}

// ErrArchiveEntryTooLarge is returned when a subtitle inside an archive exceeds the read limit.
type ErrArchiveEntryTooLarge struct {
	Archive string // "zip" or "rar"
	Name    string
	Limit   int64
}

// Error implements the error interface.
func (e *ErrArchiveEntryTooLarge) Error() string {
	return fmt.Sprintf("%s entry %s exceeds %d bytes", e.Archive, e.Name, e.Limit)
}

// Is allows for error checking with errors.Is().
func (e *ErrArchiveEntryTooLarge) Is(target error) bool {
	_, ok := target.(*ErrArchiveEntryTooLarge)
	return ok
}

// ErrInvalidSource is returned when a source identifier is not a usable http(s) URL.
type ErrInvalidSource struct {
	SourceID string
	Reason   string
}

// Error implements the error interface.
func (e *ErrInvalidSource) Error() string {
	return fmt.Sprintf("invalid subtitle source %q: %s", e.SourceID, e.Reason)
}

// Is allows for error checking with errors.Is().
func (e *ErrInvalidSource) Is(target error) bool {
	_, ok := target.(*ErrInvalidSource)
	return ok
}
