package scoring

import "errors"

// Sentinel kinds for model errors.
var (
	ErrUnsupportedKind = errors.New("unsupported model kind")
	ErrInvalidArtifact = errors.New("invalid model artifact")
	ErrFeatureCount    = errors.New("feature count mismatch")
	ErrMissingFeature  = errors.New("missing feature")
)
