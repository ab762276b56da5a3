package azure

import (
	"context"

	"github.com/poiesic/enrichit/ai"
	"github.com/poiesic/enrichit/core"
)

// MaxCharsForDetection caps the text submitted for language detection.
const MaxCharsForDetection = 1000

// LanguageDetector implements ai.LanguageDetector against the language analyze-text API.
type LanguageDetector struct {
	client *restClient
	url    string
}

var _ ai.LanguageDetector = (*LanguageDetector)(nil)

type detectDocument struct {
	ID   string `json:"id"`
	Text string `json:"text"`
}

type detectRequest struct {
	Kind          string `json:"kind"`
	AnalysisInput struct {
		Documents []detectDocument `json:"documents"`
	} `json:"analysisInput"`
}

type detectResponse struct {
	Results struct {
		Documents []struct {
			DetectedLanguage struct {
				ISO6391Name     string  `json:"iso6391Name"`
				ConfidenceScore float64 `json:"confidenceScore"`
			} `json:"detectedLanguage"`
		} `json:"documents"`
	} `json:"results"`
}

func newLanguageDetector(config *ai.Config) (*LanguageDetector, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}
	return &LanguageDetector{
		client: newRESTClient(config, "azure-language"),
		url:    config.Endpoint + "language/:analyze-text?api-version=2023-04-01",
	}, nil
}

// NewLanguageDetector creates a language detector using the provided configuration.
//
// Returns ai.LanguageDetector interface to enforce abstraction.
func NewLanguageDetector(config *ai.Config) (ai.LanguageDetector, error) {
	return newLanguageDetector(config)
}

// DetectLanguage submits at most MaxCharsForDetection characters of text.
func (d *LanguageDetector) DetectLanguage(ctx context.Context, text string) (core.LanguageDetection, error) {
	req := detectRequest{Kind: "LanguageDetection"}
	req.AnalysisInput.Documents = []detectDocument{{ID: "1", Text: truncate(text, MaxCharsForDetection)}}

	var resp detectResponse
	if err := d.client.postJSON(ctx, "language", d.url, req, &resp); err != nil {
		return core.LanguageDetection{}, err
	}
	if len(resp.Results.Documents) == 0 {
		return core.LanguageDetection{}, ai.ErrEmptyResponse
	}

	detected := resp.Results.Documents[0].DetectedLanguage
	d.client.logger.Debug("detected language", "iso", detected.ISO6391Name, "confidence", detected.ConfidenceScore)
	return core.LanguageDetection{ISOCode: detected.ISO6391Name, Confidence: detected.ConfidenceScore}, nil
}

// truncate returns at most n runes of s.
func truncate(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}
