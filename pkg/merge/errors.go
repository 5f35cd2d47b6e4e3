package merge

import (
	"errors"
	"fmt"
)

// ErrorKind classifies a merge failure.
type ErrorKind string

const (
	// ErrorKindMissingFile means a required include pattern matched no files.
	// It aborts the pass.
	ErrorKindMissingFile ErrorKind = "missing_file"

	// ErrorKindManifestParse means a satellite manifest could not be read or
	// decoded. It aborts the pass.
	ErrorKindManifestParse ErrorKind = "manifest_parse"

	// ErrorKindResolutionFailure means the follow-up dependency resolution
	// run failed. The lock artifact is restored and the command continues.
	ErrorKindResolutionFailure ErrorKind = "resolution_failure"

	// ErrorKindInvalidSettings means the merge-plugin settings block could
	// not be interpreted. It aborts the pass.
	ErrorKindInvalidSettings ErrorKind = "invalid_settings"
)

// Error is a classified merge error with the file or pattern it concerns.
type Error struct {
	// Kind is the error classification.
	Kind ErrorKind `json:"kind"`

	// Message is the human-readable error message.
	Message string `json:"message"`

	// Path is the satellite manifest path, if applicable.
	Path string `json:"path,omitempty"`

	// Pattern is the include pattern, if applicable.
	Pattern string `json:"pattern,omitempty"`

	// ExitCode is the resolver exit status for resolution failures.
	ExitCode int `json:"exit_code,omitempty"`

	// Err is the underlying error.
	Err error `json:"-"`
}

// Sentinels for errors.Is matching on kind alone.
var (
	ErrMissingFile       = &Error{Kind: ErrorKindMissingFile}
	ErrManifestParse     = &Error{Kind: ErrorKindManifestParse}
	ErrResolutionFailure = &Error{Kind: ErrorKindResolutionFailure}
	ErrInvalidSettings   = &Error{Kind: ErrorKindInvalidSettings}
)

// Error implements the error interface.
func (e *Error) Error() string {
	msg := fmt.Sprintf("[%s] %s", e.Kind, e.Message)
	switch {
	case e.Path != "":
		msg = fmt.Sprintf("%s (path=%s)", msg, e.Path)
	case e.Pattern != "":
		msg = fmt.Sprintf("%s (pattern=%s)", msg, e.Pattern)
	}
	if e.Err != nil {
		msg = msg + ": " + e.Err.Error()
	}
	return msg
}

// Unwrap returns the underlying error for error chain inspection.
func (e *Error) Unwrap() error {
	return e.Err
}

// Is matches any *Error of the same kind.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.Kind == t.Kind
}

// Fatal reports whether the error aborts the merge pass.
func (e *Error) Fatal() bool {
	return e.Kind != ErrorKindResolutionFailure
}

// NewMissingFileError reports a required pattern without matches.
func NewMissingFileError(pattern string) *Error {
	return &Error{
		Kind:    ErrorKindMissingFile,
		Message: "no files matched required pattern",
		Pattern: pattern,
	}
}

// NewManifestParseError reports an unreadable or malformed satellite manifest.
func NewManifestParseError(path string, err error) *Error {
	return &Error{
		Kind:    ErrorKindManifestParse,
		Message: "failed to load satellite manifest",
		Path:    path,
		Err:     err,
	}
}

// NewResolutionFailure reports a failed follow-up resolution run.
func NewResolutionFailure(exitCode int, err error) *Error {
	return &Error{
		Kind:     ErrorKindResolutionFailure,
		Message:  fmt.Sprintf("follow-up resolution exited with status %d", exitCode),
		ExitCode: exitCode,
		Err:      err,
	}
}

// NewInvalidSettingsError reports an unusable merge-plugin settings block.
func NewInvalidSettingsError(err error) *Error {
	return &Error{
		Kind:    ErrorKindInvalidSettings,
		Message: "invalid merge-plugin settings",
		Err:     err,
	}
}

// IsMissingFile returns true if err is a missing file error.
func IsMissingFile(err error) bool {
	return errors.Is(err, ErrMissingFile)
}

// IsManifestParse returns true if err is a manifest parse error.
func IsManifestParse(err error) bool {
	return errors.Is(err, ErrManifestParse)
}

// IsResolutionFailure returns true if err is a follow-up resolution failure.
func IsResolutionFailure(err error) bool {
	return errors.Is(err, ErrResolutionFailure)
}

// KindOf returns the kind of a merge error, or "" for other errors.
func KindOf(err error) ErrorKind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return ""
}
