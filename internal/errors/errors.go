// Package errors defines stable error codes for akaidoo failure modes,
// with suggested fixes surfaced by the CLI.
package errors

import "fmt"

// Code identifies a failure mode.
type Code string

const (
	// ParseFailed indicates a source file could not be parsed. Callers in
	// scan loops fall back to the unmodified file content.
	ParseFailed Code = "PARSE_FAILED"
	// AddonNotFound indicates an addon is missing from the addons path.
	AddonNotFound Code = "ADDON_NOT_FOUND"
	// ManifestInvalid indicates a __manifest__.py could not be read.
	ManifestInvalid Code = "MANIFEST_INVALID"
	// DependencyCycle indicates the depends graph has a cycle.
	DependencyCycle Code = "DEPENDENCY_CYCLE"
	// CacheUnavailable indicates the stats cache database failed to open.
	CacheUnavailable Code = "CACHE_UNAVAILABLE"
	// ProfileInvalid indicates a shrink profile file could not be loaded.
	ProfileInvalid Code = "PROFILE_INVALID"
)

// Error carries a code, a message and an optional cause.
type Error struct {
	Code    Code   `json:"code"`
	Message string `json:"message"`
	cause   error
}

// New creates an Error.
func New(code Code, message string, cause error) *Error {
	return &Error{Code: code, Message: message, cause: cause}
}

// Newf creates an Error with a formatted message and no cause.
func Newf(code Code, format string, args ...interface{}) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...)}
}

func (e *Error) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.cause)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap returns the underlying error.
func (e *Error) Unwrap() error {
	return e.cause
}

// suggestedFixes maps codes to a hint printed under CLI errors.
var suggestedFixes = map[Code]string{
	AddonNotFound:    "check --addons-path or pass --odoo-cfg pointing at your odoo.cfg",
	ManifestInvalid:  "the addon's __manifest__.py is not a dict literal; fix it or exclude the addon",
	DependencyCycle:  "inspect the depends entries of the addons named in the message",
	CacheUnavailable: "delete the .akaidoo/stats.db file and retry",
	ProfileInvalid:   "check the shrink.toml syntax against the documented profile schema",
}

// SuggestedFix returns a remediation hint for a code, or "".
func SuggestedFix(code Code) string {
	return suggestedFixes[code]
}
