package azure

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"github.com/poiesic/enrichit/ai"
)

// restClient carries the credentials and transport shared by the cognitive services clients.
type restClient struct {
	httpClient *http.Client
	key        string
	location   string
	logger     *slog.Logger
}

func newRESTClient(config *ai.Config, component string) *restClient {
	return &restClient{
		httpClient: &http.Client{Timeout: config.Timeout},
		key:        config.Key,
		location:   config.Location,
		logger:     slog.Default().With("component", component),
	}
}

// post sends body to url and decodes a 200 response into out.
// Any other status is returned as *ai.HTTPError with the raw response body.
func (c *restClient) post(ctx context.Context, service, url, contentType string, body []byte, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to create %s request: %w", service, err)
	}
	req.Header.Set("Ocp-Apim-Subscription-Key", c.key)
	req.Header.Set("Ocp-Apim-Subscription-Region", c.location)
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%s request failed: %w", service, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read %s response: %w", service, err)
	}

	if resp.StatusCode != http.StatusOK {
		c.logger.Error("service returned error", "service", service, "status", resp.StatusCode)
		return &ai.HTTPError{Service: service, StatusCode: resp.StatusCode, Body: string(data)}
	}

	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("failed to decode %s response: %w", service, err)
	}
	return nil
}

func (c *restClient) postJSON(ctx context.Context, service, url string, payload any, out any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to encode %s request: %w", service, err)
	}
	return c.post(ctx, service, url, "application/json", body, out)
}
