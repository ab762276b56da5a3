package translation

import (
	"context"
	"errors"
	"testing"

	"github.com/poiesic/enrichit/ai"
	"github.com/poiesic/enrichit/ai/mock"
	"github.com/poiesic/enrichit/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolve_EmptyTextSkips(t *testing.T) {
	detector := mock.NewMockLanguageDetector()
	translator := mock.NewMockTranslator()
	stage := NewStage(detector, translator, "en")

	res, err := stage.Resolve(context.Background(), "")
	require.NoError(t, err)
	assert.True(t, res.Skipped)
	assert.Empty(t, res.Text)
	assert.Empty(t, res.Notes)
	assert.Equal(t, 0, detector.CallCount())
	assert.Equal(t, 0, translator.CallCount())
}

func TestResolve_SameLanguage(t *testing.T) {
	detector := mock.NewMockLanguageDetector()
	detector.DetectLanguageFunc = func(ctx context.Context, text string) (core.LanguageDetection, error) {
		return core.LanguageDetection{ISOCode: "en", Confidence: 0.98}, nil
	}
	translator := mock.NewMockTranslator()
	stage := NewStage(detector, translator, "en")

	res, err := stage.Resolve(context.Background(), "Hello\nworld\n")
	require.NoError(t, err)
	assert.False(t, res.Skipped)
	assert.False(t, res.Translated)
	assert.Equal(t, "Hello\nworld\n", res.Text)
	assert.Equal(t, []string{"Raw OCR Text - Detected language: en, Confidence: 0.98"}, res.Notes)
	assert.Equal(t, 0, translator.CallCount())
}

func TestResolve_Translates(t *testing.T) {
	detector := mock.NewMockLanguageDetector()
	detector.DetectLanguageFunc = func(ctx context.Context, text string) (core.LanguageDetection, error) {
		return core.LanguageDetection{ISOCode: "fr", Confidence: 0.99}, nil
	}
	translator := mock.NewMockTranslator()
	translator.TranslateFunc = func(ctx context.Context, text, target string) (string, error) {
		assert.Equal(t, "Bonjour\n", text)
		assert.Equal(t, "en", target)
		return "Hello", nil
	}
	stage := NewStage(detector, translator, "en")

	res, err := stage.Resolve(context.Background(), "Bonjour\n")
	require.NoError(t, err)
	assert.True(t, res.Translated)
	assert.Equal(t, "Hello", res.Text)
	assert.Equal(t, "fr", res.Detection.ISOCode)
	assert.Equal(t, []string{
		"Raw OCR Text - Detected language: fr, Confidence: 0.99",
		"Translated OCR Text - Target language: en",
		"Hello",
	}, res.Notes)
	assert.Equal(t, 1, translator.CallCount())
	assert.Equal(t, 1, detector.CallCount())
}

func TestResolve_DetectionFailure(t *testing.T) {
	detector := mock.NewMockLanguageDetector()
	detector.DetectLanguageFunc = func(ctx context.Context, text string) (core.LanguageDetection, error) {
		return core.LanguageDetection{}, &ai.HTTPError{Service: "language", StatusCode: 500, Body: "boom"}
	}
	translator := mock.NewMockTranslator()
	stage := NewStage(detector, translator, "en")

	_, err := stage.Resolve(context.Background(), "text")
	require.ErrorIs(t, err, ErrDetectionFailed)

	var httpErr *ai.HTTPError
	assert.True(t, errors.As(err, &httpErr))
	assert.Equal(t, 0, translator.CallCount())
}

func TestResolve_TranslationFailureNotRetried(t *testing.T) {
	detector := mock.NewMockLanguageDetector()
	detector.DetectLanguageFunc = func(ctx context.Context, text string) (core.LanguageDetection, error) {
		return core.LanguageDetection{ISOCode: "de", Confidence: 1}, nil
	}
	translator := mock.NewMockTranslator()
	translator.TranslateFunc = func(ctx context.Context, text, target string) (string, error) {
		return "", errors.New("quota exceeded")
	}
	stage := NewStage(detector, translator, "en")

	_, err := stage.Resolve(context.Background(), "Hallo")
	require.ErrorIs(t, err, ErrTranslationFailed)
	assert.Contains(t, err.Error(), "quota exceeded")
	assert.Equal(t, 1, translator.CallCount())
}

func TestTarget(t *testing.T) {
	stage := NewStage(mock.NewMockLanguageDetector(), mock.NewMockTranslator(), "es")
	assert.Equal(t, "es", stage.Target())
}

func TestFormatConfidence(t *testing.T) {
	tests := []struct {
		in   float64
		want string
	}{
		{0.99, "0.99"},
		{0.5, "0.5"},
		{1, "1.0"},
		{0, "0.0"},
		{0.87654, "0.87654"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, formatConfidence(tt.in))
	}
}
