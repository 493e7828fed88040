package fal

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
	defaultBaseURL = "https://fal.run"

	// Model is the Ideogram v3 endpoint on the synchronous fal.run gateway.
	Model = "fal-ai/ideogram/v3"
)

// Client represents the Fal.ai API client.
type Client struct {
	httpClient *http.Client
	apiKey     string
	baseURL    string
}

// NewClient creates a new Fal.ai API client.
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
	return "Fal.ai"
}

// Configured reports whether an API key is present.
func (c *Client) Configured() bool {
	return strings.TrimSpace(c.apiKey) != ""
}

type generateRequest struct {
	Prompt         string `json:"prompt"`
	RenderingSpeed string `json:"rendering_speed"`
	Style          string `json:"style"`
	ExpandPrompt   bool   `json:"expand_prompt"`
	NumImages      int    `json:"num_images"`
	ImageSize      string `json:"image_size"`
}

type generateResponse struct {
	Images []struct {
		URL string `json:"url"`
	} `json:"images"`
}

// Generate produces an image with the Ideogram v3 model via Fal.ai.
func (c *Client) Generate(ctx context.Context, req domain.GenerationRequest) (*domain.GenerationResult, error) {
	if !c.Configured() {
		return nil, fmt.Errorf("Fal.ai API key not found, set the FAL_KEY environment variable")
	}

	body := generateRequest{
		Prompt:         req.Prompt,
		RenderingSpeed: "BALANCED",
		Style:          styleForAPI(req.Style),
		ExpandPrompt:   expandPrompt(req.MagicPrompt),
		NumImages:      1,
		ImageSize:      imageSizeForRatio(req.AspectRatio),
	}

	payload, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, "POST", c.baseURL+"/"+Model, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Key "+c.apiKey)

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("unexpected status code: %d, body: %s", resp.StatusCode, string(respBody))
	}

	var result generateResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}

	if len(result.Images) == 0 || result.Images[0].URL == "" {
		return nil, fmt.Errorf("no image URL in response")
	}

	data, err := c.downloadImage(ctx, result.Images[0].URL)
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

var imageSizes = map[string]string{
	"1:1":  "square_hd",
	"16:9": "landscape_16_9",
	"9:16": "portrait_16_9",
	"4:3":  "landscape_4_3",
	"3:4":  "portrait_4_3",
}

// imageSizeForRatio maps an aspect ratio onto the Fal.ai image size options,
// defaulting to square.
func imageSizeForRatio(aspectRatio string) string {
	if size, ok := imageSizes[aspectRatio]; ok {
		return size
	}
	return "square_hd"
}

// expandPrompt maps the magic prompt option onto Fal's expand_prompt flag.
func expandPrompt(m domain.MagicPrompt) bool {
	switch m {
	case domain.MagicPromptAuto, domain.MagicPromptOn:
		return true
	default:
		return false
	}
}

// styleForAPI maps the lowercase UI styles to the API values; "none" falls
// back to automatic selection.
func styleForAPI(s domain.Style) string {
	if s == domain.StyleNone || s == "" {
		s = domain.StyleAuto
	}
	return strings.ToUpper(string(s))
}

// WithBaseURL overrides the API endpoint; used by tests.
func (c *Client) WithBaseURL(u string) *Client {
	c.baseURL = u
	return c
}
