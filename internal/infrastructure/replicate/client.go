package replicate

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/velumi/img2svg/internal/domain"
)

const (
	defaultBaseURL = "https://api.replicate.com"

	// Model is the Ideogram v3 Quality model hosted on Replicate.
	Model = "ideogram-ai/ideogram-v3-quality"
)

// Client represents the Replicate predictions API client.
type Client struct {
	httpClient   *http.Client
	apiToken     string
	baseURL      string
	pollInterval time.Duration
	maxAttempts  int
}

// NewClient creates a new Replicate API client.
func NewClient(apiToken string, timeout, pollInterval time.Duration, maxAttempts int) *Client {
	if timeout == 0 {
		timeout = 30 * time.Second
	}
	if pollInterval == 0 {
		pollInterval = 2 * time.Second
	}
	if maxAttempts == 0 {
		maxAttempts = 60
	}
	return &Client{
		httpClient:   &http.Client{Timeout: timeout},
		apiToken:     apiToken,
		baseURL:      defaultBaseURL,
		pollInterval: pollInterval,
		maxAttempts:  maxAttempts,
	}
}

// Name returns the provider name shown to users.
func (c *Client) Name() string {
	return "Replicate"
}

// Configured reports whether an API token is present.
func (c *Client) Configured() bool {
	return strings.TrimSpace(c.apiToken) != ""
}

type predictionRequest struct {
	Input map[string]any `json:"input"`
}

type predictionResponse struct {
	ID     string   `json:"id"`
	Status string   `json:"status"`
	Output []string `json:"output"`
	Error  string   `json:"error"`
}

// Generate creates a prediction for the Ideogram v3 Quality model and polls
// it to completion.
func (c *Client) Generate(ctx context.Context, req domain.GenerationRequest) (*domain.GenerationResult, error) {
	if !c.Configured() {
		return nil, fmt.Errorf("Replicate API token not found, set the REPLICATE_API_TOKEN environment variable")
	}

	pred, err := c.createPrediction(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("failed to create prediction: %w", err)
	}

	pred, err = c.waitForPrediction(ctx, pred)
	if err != nil {
		return nil, err
	}

	if len(pred.Output) == 0 {
		return nil, fmt.Errorf("prediction %s finished without output", pred.ID)
	}

	data, err := c.downloadImage(ctx, pred.Output[0])
	if err != nil {
		return nil, err
	}

	return &domain.GenerationResult{
		Data:     data,
		MimeType: http.DetectContentType(data),
		Provider: c.Name(),
		Model:    Model,
	}, nil
}

func (c *Client) createPrediction(ctx context.Context, req domain.GenerationRequest) (*predictionResponse, error) {
	body := predictionRequest{
		Input: map[string]any{
			"prompt":              req.Prompt,
			"aspect_ratio":        req.AspectRatio,
			"magic_prompt_option": string(req.MagicPrompt),
			"style_type":          strings.ToUpper(string(styleForAPI(req.Style))),
			"seed":                0,
		},
	}

	payload, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal params: %w", err)
	}

	url := fmt.Sprintf("%s/v1/models/%s/predictions", c.baseURL, Model)
	httpReq, err := http.NewRequestWithContext(ctx, "POST", url, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+c.apiToken)

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		respBody, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("unexpected status code: %d, body: %s", resp.StatusCode, string(respBody))
	}

	var result predictionResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}

	return &result, nil
}

// waitForPrediction polls the prediction until it reaches a terminal status.
func (c *Client) waitForPrediction(ctx context.Context, pred *predictionResponse) (*predictionResponse, error) {
	for i := 0; i < c.maxAttempts; i++ {
		switch pred.Status {
		case "succeeded":
			return pred, nil
		case "failed", "canceled":
			return nil, fmt.Errorf("prediction %s %s: %s", pred.ID, pred.Status, pred.Error)
		}

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(c.pollInterval):
		}

		next, err := c.getPrediction(ctx, pred.ID)
		if err != nil {
			return nil, fmt.Errorf("failed to check prediction status: %w", err)
		}
		pred = next
	}

	return nil, fmt.Errorf("max attempts reached waiting for prediction %s", pred.ID)
}

func (c *Client) getPrediction(ctx context.Context, id string) (*predictionResponse, error) {
	httpReq, err := http.NewRequestWithContext(ctx, "GET", fmt.Sprintf("%s/v1/predictions/%s", c.baseURL, id), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	httpReq.Header.Set("Authorization", "Bearer "+c.apiToken)

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("unexpected status code: %d, body: %s", resp.StatusCode, string(respBody))
	}

	var result predictionResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}

	return &result, nil
}

func (c *Client) downloadImage(ctx context.Context, url string) ([]byte, error) {
	httpReq, err := http.NewRequestWithContext(ctx, "GET", url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create download request: %w", err)
	}

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("failed to download image: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("unexpected status code downloading image: %d, body: %s", resp.StatusCode, string(respBody))
	}

	return io.ReadAll(resp.Body)
}

// styleForAPI maps the lowercase UI styles to the Ideogram API values;
// "none" has no API equivalent and falls back to automatic selection.
func styleForAPI(s domain.Style) domain.Style {
	if s == domain.StyleNone || s == "" {
		return domain.StyleAuto
	}
	return s
}

// WithBaseURL overrides the API endpoint; used by tests.
func (c *Client) WithBaseURL(u string) *Client {
	c.baseURL = u
	return c
}
