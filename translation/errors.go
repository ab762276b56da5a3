package translation

import "errors"

var (
	// ErrDetectionFailed wraps a language detection failure.
	ErrDetectionFailed = errors.New("language detection failed")

	// ErrTranslationFailed wraps a translation failure.
	ErrTranslationFailed = errors.New("translation failed")
)
