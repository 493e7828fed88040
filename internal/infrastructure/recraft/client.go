package recraft

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"mime/multipart"
	"net/http"
	"strings"
	"time"
)

const defaultBaseURL = "https://external.api.recraft.ai/v1"

// Client represents the Recraft vectorization API client.
type Client struct {
	httpClient *http.Client
	apiToken   string
	baseURL    string
}

// NewClient creates a new Recraft API client.
func NewClient(apiToken string, timeout time.Duration) *Client {
	if timeout == 0 {
		timeout = 30 * time.Second
	}
	return &Client{
		httpClient: &http.Client{Timeout: timeout},
		apiToken:   apiToken,
		baseURL:    defaultBaseURL,
	}
}

// Configured reports whether an API token is present.
func (c *Client) Configured() bool {
	return strings.TrimSpace(c.apiToken) != ""
}

// Vectorize submits image bytes and returns the URL of the produced SVG.
func (c *Client) Vectorize(ctx context.Context, filename string, data []byte) (string, error) {
	if !c.Configured() {
		return "", fmt.Errorf("Recraft API token not found, set the RECRAFT_API_TOKEN environment variable")
	}
	if len(data) == 0 {
		return "", fmt.Errorf("vectorize: image data is empty")
	}
	if filename == "" {
		filename = "image.png"
	}

	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)

	part, err := writer.CreateFormFile("file", filename)
	if err != nil {
		return "", fmt.Errorf("vectorize: failed to create form file: %w", err)
	}
	if _, err := part.Write(data); err != nil {
		return "", fmt.Errorf("vectorize: failed to write form file: %w", err)
	}
	if err := writer.Close(); err != nil {
		return "", fmt.Errorf("vectorize: failed to close writer: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, "POST", c.baseURL+"/images/vectorize", body)
	if err != nil {
		return "", fmt.Errorf("vectorize: failed to create request: %w", err)
	}

	httpReq.Header.Set("Content-Type", writer.FormDataContentType())
	httpReq.Header.Set("Authorization", "Bearer "+c.apiToken)

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return "", fmt.Errorf("vectorize: failed to send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(resp.Body)
		return "", fmt.Errorf("vectorize: unexpected status code: %d, body: %s", resp.StatusCode, string(respBody))
	}

	var result struct {
		Image struct {
			URL string `json:"url"`
		} `json:"image"`
	}

	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return "", fmt.Errorf("vectorize: failed to decode response: %w", err)
	}

	if result.Image.URL == "" {
		return "", fmt.Errorf("vectorize: response missing image URL")
	}

	return result.Image.URL, nil
}

// Download fetches the SVG content from the given URL.
func (c *Client) Download(ctx context.Context, url string) ([]byte, error) {
	if url == "" {
		return nil, fmt.Errorf("download: URL is empty")
	}

	httpReq, err := http.NewRequestWithContext(ctx, "GET", url, nil)
	if err != nil {
		return nil, fmt.Errorf("download: failed to create request: %w", err)
	}

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("download: failed to send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("download: unexpected status code: %d, body: %s", resp.StatusCode, string(respBody))
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("download: failed to read response: %w", err)
	}

	if !LooksLikeSVG(resp.Header.Get("Content-Type"), data) {
		// Saved anyway; the API occasionally omits the content type.
		log.Printf("Warning: downloaded content may not be an SVG (Content-Type: %s)", resp.Header.Get("Content-Type"))
	}

	return data, nil
}

// LooksLikeSVG reports whether the content type or payload resembles SVG.
func LooksLikeSVG(contentType string, data []byte) bool {
	if strings.Contains(strings.ToLower(contentType), "svg") {
		return true
	}
	return bytes.HasPrefix(data, []byte("<?xml")) || bytes.HasPrefix(data, []byte("<svg"))
}

// WithBaseURL overrides the API endpoint; used by tests.
func (c *Client) WithBaseURL(u string) *Client {
	c.baseURL = u
	return c
}
