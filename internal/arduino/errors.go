package arduino

import "errors"

// Sentinel errors for toolchain and sketch failures. Callers match with
// errors.Is; wrapped messages carry the specifics.
var (
	// ErrToolchainUnavailable means arduino-cli could not be invoked at
	// all (not installed or not on PATH). Not retried automatically.
	ErrToolchainUnavailable = errors.New("arduino-cli not found")

	// ErrInvalidSketchName rejects names that are not plain filesystem
	// identifiers.
	ErrInvalidSketchName = errors.New("invalid sketch name")

	// ErrBoardNotFound means no attached board matched the requested
	// identity.
	ErrBoardNotFound = errors.New("board not found")

	// ErrCompileTimeout and ErrUploadTimeout mean the external process
	// exceeded its bound and was killed.
	ErrCompileTimeout = errors.New("compile timed out")
	ErrUploadTimeout  = errors.New("upload timed out")
)
