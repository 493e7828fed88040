package openai

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/velumi/img2svg/internal/domain"
)

const (
	defaultBaseURL = "https://api.openai.com"

	// PrimaryModel is tried first; on any failure the call is retried once
	// with SecondaryModel before the error is surfaced.
	PrimaryModel   = "gpt-image-1"
	SecondaryModel = "dall-e-3"
)

// Client represents the OpenAI Images API client.
type Client struct {
	httpClient *http.Client
	apiKey     string
	baseURL    string
}

// NewClient creates a new OpenAI Images API client.
func NewClient(apiKey string, timeout time.Duration) *Client {
	if timeout == 0 {
		timeout = 120 * time.Second
	}
	return &Client{
		httpClient: &http.Client{Timeout: timeout},
		apiKey:     apiKey,
		baseURL:    defaultBaseURL,
	}
}

// Name returns the provider name shown to users.
func (c *Client) Name() string {
	return "OpenAI"
}

// Configured reports whether an API key is present.
func (c *Client) Configured() bool {
	return strings.TrimSpace(c.apiKey) != ""
}

// Generate produces an image with the primary model, retrying once with the
// secondary model on failure.
func (c *Client) Generate(ctx context.Context, req domain.GenerationRequest) (*domain.GenerationResult, error) {
	if !c.Configured() {
		return nil, fmt.Errorf("OpenAI API key not found, set the OPENAI_API_KEY environment variable")
	}

	result, primaryErr := c.generateWithModel(ctx, PrimaryModel, req)
	if primaryErr == nil {
		return result, nil
	}

	result, secondaryErr := c.generateWithModel(ctx, SecondaryModel, req)
	if secondaryErr != nil {
		return nil, fmt.Errorf("both %s and %s failed: %v; fallback: %w", PrimaryModel, SecondaryModel, primaryErr, secondaryErr)
	}

	return result, nil
}

type imageRequest struct {
	Model          string `json:"model"`
	Prompt         string `json:"prompt"`
	N              int    `json:"n"`
	Size           string `json:"size"`
	ResponseFormat string `json:"response_format,omitempty"`
}

type imageResponse struct {
	Data []struct {
		URL     string `json:"url"`
		B64JSON string `json:"b64_json"`
	} `json:"data"`
}

func (c *Client) generateWithModel(ctx context.Context, model string, req domain.GenerationRequest) (*domain.GenerationResult, error) {
	body := imageRequest{
		Model:  model,
		Prompt: req.Prompt,
		N:      1,
		Size:   sizeForModel(model, req.AspectRatio),
	}
	// gpt-image-1 always returns base64; dall-e-3 must be asked for it.
	if model == SecondaryModel {
		body.ResponseFormat = "b64_json"
	}

	payload, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, "POST", c.baseURL+"/v1/images/generations", bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("unexpected status code: %d, body: %s", resp.StatusCode, string(respBody))
	}

	var result imageResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}

	if len(result.Data) == 0 {
		return nil, fmt.Errorf("no image in response")
	}

	data, err := c.imageBytes(ctx, result.Data[0].B64JSON, result.Data[0].URL)
	if err != nil {
		return nil, err
	}

	return &domain.GenerationResult{
		Data:     data,
		MimeType: http.DetectContentType(data),
		Provider: c.Name(),
		Model:    model,
	}, nil
}

func (c *Client) imageBytes(ctx context.Context, b64, url string) ([]byte, error) {
	if b64 != "" {
		data, err := base64.StdEncoding.DecodeString(b64)
		if err != nil {
			return nil, fmt.Errorf("failed to decode image data: %w", err)
		}
		return data, nil
	}

	if url == "" {
		return nil, fmt.Errorf("response contains neither image data nor URL")
	}

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

// sizeForModel maps an aspect ratio onto the closest size each model supports.
func sizeForModel(model, aspectRatio string) string {
	landscape, portrait := "1536x1024", "1024x1536"
	if model == SecondaryModel {
		landscape, portrait = "1792x1024", "1024x1792"
	}

	switch aspectRatio {
	case "16:9", "16:10", "3:2", "4:3", "5:4", "2:1", "3:1":
		return landscape
	case "9:16", "10:16", "2:3", "3:4", "4:5", "1:2", "1:3":
		return portrait
	default:
		w, h := ratioParts(aspectRatio)
		if w > h {
			return landscape
		}
		if h > w {
			return portrait
		}
		return "1024x1024"
	}
}

func ratioParts(aspectRatio string) (int, int) {
	var w, h int
	if _, err := fmt.Sscanf(aspectRatio, "%d:%d", &w, &h); err != nil {
		return 1, 1
	}
	return w, h
}

// WithBaseURL overrides the API endpoint; used by tests.
func (c *Client) WithBaseURL(u string) *Client {
	c.baseURL = u
	return c
}
