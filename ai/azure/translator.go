package azure

import (
	"context"
	"net/url"

	"github.com/poiesic/enrichit/ai"
)

// Translator implements ai.Translator against the text translation API.
type Translator struct {
	client *restClient
	url    string
}

var _ ai.Translator = (*Translator)(nil)

type translateText struct {
	Text string `json:"text"`
}

type translateResponse []struct {
	Translations []struct {
		Text string `json:"text"`
		To   string `json:"to"`
	} `json:"translations"`
}

func newTranslator(config *ai.Config) (*Translator, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}
	return &Translator{
		client: newRESTClient(config, "azure-translator"),
		url:    config.Endpoint + "translator/text/v3.0/translate?api-version=3.0",
	}, nil
}

// NewTranslator creates a translator using the provided configuration.
//
// Returns ai.Translator interface to enforce abstraction.
func NewTranslator(config *ai.Config) (ai.Translator, error) {
	return newTranslator(config)
}

// Translate submits the full text. Failures are returned immediately without retry.
func (t *Translator) Translate(ctx context.Context, text, targetLanguage string) (string, error) {
	target := t.url + "&to=" + url.QueryEscape(targetLanguage)

	var resp translateResponse
	if err := t.client.postJSON(ctx, "translator", target, []translateText{{Text: text}}, &resp); err != nil {
		return "", err
	}
	if len(resp) == 0 || len(resp[0].Translations) == 0 {
		return "", ai.ErrEmptyResponse
	}

	t.client.logger.Debug("translated text", "to", targetLanguage, "length", len(text))
	return resp[0].Translations[0].Text, nil
}
