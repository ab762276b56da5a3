package azure

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/poiesic/enrichit/ai"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig(endpoint, location string) *ai.Config {
	return ai.NewConfig(
		ai.WithEndpoint(endpoint),
		ai.WithKey("secret"),
		ai.WithLocation(location),
		ai.WithChatHost("https://chat.example.com"),
		ai.WithChatModel("gpt-4o"),
	)
}

func TestVisionURL(t *testing.T) {
	gpu := VisionURL("https://acct.example.com/", true)
	assert.Contains(t, gpu, "features=caption,denseCaptions,objects,tags,read")
	assert.True(t, strings.HasPrefix(gpu, "https://acct.example.com/computervision/imageanalysis:analyze?api-version=2023-04-01-preview"))
	assert.Contains(t, gpu, "gender-neutral-caption=true")

	plain := VisionURL("https://acct.example.com/", false)
	assert.Contains(t, plain, "features=objects,tags,read&")
	assert.NotContains(t, plain, "caption,")
}

func TestAnalyzeImage(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/computervision/imageanalysis:analyze", r.URL.Path)
		assert.Equal(t, "secret", r.Header.Get("Ocp-Apim-Subscription-Key"))
		assert.Equal(t, "eastus", r.Header.Get("Ocp-Apim-Subscription-Region"))
		assert.Equal(t, "application/octet-stream", r.Header.Get("Content-Type"))
		body, _ := io.ReadAll(r.Body)
		assert.Equal(t, []byte("PNGDATA"), body)

		_, _ = w.Write([]byte(`{
			"captionResult": {"text": "a cat on a mat", "confidence": 0.91},
			"denseCaptionsResult": {"values": [{"text": "a cat", "confidence": 0.8}]},
			"objectsResult": {"values": [
				{"name": "cat", "confidence": 0.7},
				{"tags": [{"name": "mat", "confidence": 0.6}]}
			]},
			"tagsResult": {"values": [{"name": "cat", "confidence": 0.9}]},
			"readResult": {"pages": [{"words": [{"content": "Bonjour"}, {"content": "le"}, {"content": "monde"}]}]}
		}`))
	}))
	defer server.Close()

	v, err := NewVisionAnalyzer(testConfig(server.URL, "eastus"))
	require.NoError(t, err)

	result, err := v.AnalyzeImage(context.Background(), []byte("PNGDATA"))
	require.NoError(t, err)

	require.NotNil(t, result.Caption)
	assert.Equal(t, "a cat on a mat", result.Caption.Text)
	assert.InDelta(t, 0.91, result.Caption.Confidence, 1e-9)
	require.Len(t, result.DenseCaptions, 1)
	require.Len(t, result.Objects, 2)
	assert.Equal(t, "cat", result.Objects[0].Name)
	assert.Equal(t, "mat", result.Objects[1].Name)
	assert.InDelta(t, 0.6, result.Objects[1].Confidence, 1e-9)
	require.Len(t, result.Tags, 1)
	assert.Equal(t, []string{"Bonjour", "le", "monde"}, result.OCRLines)
}

func TestAnalyzeImage_NonGPURegionRequestsFewerFeatures(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "objects,tags,read", r.URL.Query().Get("features"))
		_, _ = w.Write([]byte(`{}`))
	}))
	defer server.Close()

	v, err := NewVisionAnalyzer(testConfig(server.URL, "brazilsouth"))
	require.NoError(t, err)

	result, err := v.AnalyzeImage(context.Background(), []byte("x"))
	require.NoError(t, err)
	assert.Nil(t, result.Caption)
	assert.Empty(t, result.OCRLines)
}

func TestAnalyzeImage_HTTPError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"error":{"code":"InvalidImageSize"}}`))
	}))
	defer server.Close()

	v, err := NewVisionAnalyzer(testConfig(server.URL, "eastus"))
	require.NoError(t, err)

	_, err = v.AnalyzeImage(context.Background(), []byte("x"))
	require.Error(t, err)

	var httpErr *ai.HTTPError
	require.True(t, errors.As(err, &httpErr))
	assert.Equal(t, http.StatusBadRequest, httpErr.StatusCode)
	assert.Contains(t, httpErr.Body, "InvalidImageSize")
}

func TestDetectLanguage(t *testing.T) {
	var captured detectRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/language/:analyze-text", r.URL.Path)
		assert.Equal(t, "2023-04-01", r.URL.Query().Get("api-version"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&captured))
		_, _ = w.Write([]byte(`{"results": {"documents": [{"id": "1", "detectedLanguage": {"name": "French", "iso6391Name": "fr", "confidenceScore": 0.99}}]}}`))
	}))
	defer server.Close()

	d, err := NewLanguageDetector(testConfig(server.URL, "eastus"))
	require.NoError(t, err)

	long := strings.Repeat("é", 1500)
	detection, err := d.DetectLanguage(context.Background(), long)
	require.NoError(t, err)
	assert.Equal(t, "fr", detection.ISOCode)
	assert.InDelta(t, 0.99, detection.Confidence, 1e-9)

	assert.Equal(t, "LanguageDetection", captured.Kind)
	require.Len(t, captured.AnalysisInput.Documents, 1)
	assert.Equal(t, "1", captured.AnalysisInput.Documents[0].ID)
	assert.Equal(t, MaxCharsForDetection, len([]rune(captured.AnalysisInput.Documents[0].Text)))
}

func TestDetectLanguage_EmptyResults(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"results": {"documents": []}}`))
	}))
	defer server.Close()

	d, err := NewLanguageDetector(testConfig(server.URL, "eastus"))
	require.NoError(t, err)

	_, err = d.DetectLanguage(context.Background(), "hello")
	require.ErrorIs(t, err, ai.ErrEmptyResponse)
}

func TestTranslate(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/translator/text/v3.0/translate", r.URL.Path)
		assert.Equal(t, "en", r.URL.Query().Get("to"))
		var body []translateText
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		require.Len(t, body, 1)
		assert.Equal(t, "Bonjour le monde", body[0].Text)
		_, _ = w.Write([]byte(`[{"translations": [{"text": "Hello world", "to": "en"}]}]`))
	}))
	defer server.Close()

	tr, err := NewTranslator(testConfig(server.URL, "eastus"))
	require.NoError(t, err)

	out, err := tr.Translate(context.Background(), "Bonjour le monde", "en")
	require.NoError(t, err)
	assert.Equal(t, "Hello world", out)
}

func TestTranslate_Failure(t *testing.T) {
	calls := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer server.Close()

	tr, err := NewTranslator(testConfig(server.URL, "eastus"))
	require.NoError(t, err)

	_, err = tr.Translate(context.Background(), "Bonjour", "en")
	require.Error(t, err)
	assert.Equal(t, 1, calls)
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "abc", truncate("abc", 5))
	assert.Equal(t, "ab", truncate("abc", 2))
	assert.Equal(t, "日本", truncate("日本語", 2))
}

func TestNewProvider(t *testing.T) {
	p, err := NewProvider(testConfig("https://acct.example.com", "eastus"))
	require.NoError(t, err)
	defer p.Close()

	assert.NotNil(t, p.Vision())
	assert.NotNil(t, p.Language())
	assert.NotNil(t, p.Translator())
	assert.NotNil(t, p.Describer())
}

func TestNewProvider_InvalidConfig(t *testing.T) {
	_, err := NewProvider(ai.DefaultConfig())
	require.Error(t, err)
}
