package extractor

import "errors"

// Error taxonomy for per-file failures. Every kind except language-detection
// failure (which silently degrades the language field) is caught at the
// per-file boundary and converted into the result's error string.
var (
	ErrNotFound          = errors.New("input file not found")
	ErrUnsupportedFormat = errors.New("unsupported file format")
	ErrExternalTool      = errors.New("external tool failure")
	ErrMalformedInput    = errors.New("malformed input")
)
