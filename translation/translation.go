// Package translation decides whether OCR text needs translating and produces
// the final OCR text along with narrative notes describing what was done.
package translation

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"github.com/poiesic/enrichit/ai"
	"github.com/poiesic/enrichit/core"
)

// Resolution is the outcome of resolving OCR text.
type Resolution struct {
	// Text is the final OCR text for the index. Empty when Skipped.
	Text string

	// Notes are narrative lines to append after the raw OCR section.
	Notes []string

	// Skipped is set when there was no OCR text to work on.
	Skipped bool

	// Translated is set when a translation call was made.
	Translated bool

	Detection core.LanguageDetection
}

// Stage resolves OCR text against a target language.
type Stage struct {
	detector   ai.LanguageDetector
	translator ai.Translator
	target     string
	logger     *slog.Logger
}

// NewStage creates a translation stage for the given target language.
func NewStage(detector ai.LanguageDetector, translator ai.Translator, target string) *Stage {
	return &Stage{
		detector:   detector,
		translator: translator,
		target:     target,
		logger:     slog.Default().With("component", "translation"),
	}
}

// WithLogger replaces the stage logger.
func (s *Stage) WithLogger(logger *slog.Logger) *Stage {
	s.logger = logger.With("component", "translation")
	return s
}

// Target returns the configured target language.
func (s *Stage) Target() string {
	return s.target
}

// Resolve detects the language of ocrText and translates it when it differs
// from the target. Translation is attempted at most once.
func (s *Stage) Resolve(ctx context.Context, ocrText string) (Resolution, error) {
	if ocrText == "" {
		return Resolution{Skipped: true}, nil
	}

	detection, err := s.detector.DetectLanguage(ctx, ocrText)
	if err != nil {
		return Resolution{}, fmt.Errorf("%w: %w", ErrDetectionFailed, err)
	}

	res := Resolution{
		Detection: detection,
		Notes: []string{
			fmt.Sprintf("Raw OCR Text - Detected language: %s, Confidence: %s",
				detection.ISOCode, formatConfidence(detection.Confidence)),
		},
	}

	if detection.ISOCode == s.target {
		s.logger.Debug("ocr text already in target language", "language", s.target)
		res.Text = ocrText
		return res, nil
	}

	translated, err := s.translator.Translate(ctx, ocrText, s.target)
	if err != nil {
		return Resolution{}, fmt.Errorf("%w: %w", ErrTranslationFailed, err)
	}

	s.logger.Debug("translated ocr text", "from", detection.ISOCode, "to", s.target)
	res.Text = translated
	res.Translated = true
	res.Notes = append(res.Notes,
		fmt.Sprintf("Translated OCR Text - Target language: %s", s.target),
		translated,
	)
	return res, nil
}

// formatConfidence renders a detection score in its shortest exact decimal
// form, keeping one fractional digit for whole numbers ("0.99", "1.0").
func formatConfidence(c float64) string {
	out := strconv.FormatFloat(c, 'f', -1, 64)
	if !strings.Contains(out, ".") {
		out += ".0"
	}
	return out
}
