package openai

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/velumi/img2svg/internal/domain"
)

var pngBytes = []byte("\x89PNG\r\n\x1a\nfake")

func b64Response(data []byte) map[string]any {
	return map[string]any{
		"data": []map[string]string{{"b64_json": base64.StdEncoding.EncodeToString(data)}},
	}
}

func TestClient_Configured(t *testing.T) {
	assert.False(t, NewClient("", time.Second).Configured())
	assert.False(t, NewClient("   ", time.Second).Configured())
	assert.True(t, NewClient("sk-test", time.Second).Configured())
}

func TestClient_GenerateNotConfigured(t *testing.T) {
	_, err := NewClient("", time.Second).Generate(context.Background(), domain.GenerationRequest{Prompt: "x"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "OPENAI_API_KEY")
}

func TestClient_GeneratePrimaryModel(t *testing.T) {
	var gotModel, gotAuth, gotFormat string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/v1/images/generations", r.URL.Path)
		gotAuth = r.Header.Get("Authorization")

		var req imageRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		gotModel = req.Model
		gotFormat = req.ResponseFormat

		json.NewEncoder(w).Encode(b64Response(pngBytes))
	}))
	defer server.Close()

	client := NewClient("sk-test", time.Second).WithBaseURL(server.URL)
	result, err := client.Generate(context.Background(), domain.GenerationRequest{Prompt: "a fox", AspectRatio: "1:1"})
	require.NoError(t, err)

	assert.Equal(t, PrimaryModel, gotModel)
	assert.Equal(t, "Bearer sk-test", gotAuth)
	assert.Empty(t, gotFormat, "gpt-image-1 returns base64 without being asked")
	assert.Equal(t, pngBytes, result.Data)
	assert.Equal(t, "image/png", result.MimeType)
	assert.Equal(t, "OpenAI", result.Provider)
	assert.Equal(t, PrimaryModel, result.Model)
}

func TestClient_GenerateFallsBackToSecondaryModel(t *testing.T) {
	var models []string
	var secondaryFormat string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req imageRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		models = append(models, req.Model)

		if req.Model == PrimaryModel {
			http.Error(w, `{"error":{"message":"model not available"}}`, http.StatusForbidden)
			return
		}
		secondaryFormat = req.ResponseFormat
		json.NewEncoder(w).Encode(b64Response(pngBytes))
	}))
	defer server.Close()

	client := NewClient("sk-test", time.Second).WithBaseURL(server.URL)
	result, err := client.Generate(context.Background(), domain.GenerationRequest{Prompt: "a fox", AspectRatio: "16:9"})
	require.NoError(t, err)

	assert.Equal(t, []string{PrimaryModel, SecondaryModel}, models)
	assert.Equal(t, "b64_json", secondaryFormat, "dall-e-3 must be asked for base64")
	assert.Equal(t, SecondaryModel, result.Model)
}

func TestClient_GenerateBothModelsFail(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "nope", http.StatusInternalServerError)
	}))
	defer server.Close()

	client := NewClient("sk-test", time.Second).WithBaseURL(server.URL)
	_, err := client.Generate(context.Background(), domain.GenerationRequest{Prompt: "a fox"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), PrimaryModel)
	assert.Contains(t, err.Error(), SecondaryModel)
}

func TestClient_GenerateDownloadsURLResponse(t *testing.T) {
	mux := http.NewServeMux()
	server := httptest.NewServer(mux)
	defer server.Close()

	mux.HandleFunc("/image.png", func(w http.ResponseWriter, r *http.Request) {
		w.Write(pngBytes)
	})
	mux.HandleFunc("/v1/images/generations", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{
			"data": []map[string]string{{"url": server.URL + "/image.png"}},
		})
	})

	client := NewClient("sk-test", time.Second).WithBaseURL(server.URL)
	result, err := client.Generate(context.Background(), domain.GenerationRequest{Prompt: "a fox"})
	require.NoError(t, err)
	assert.Equal(t, pngBytes, result.Data)
}

func TestSizeForModel(t *testing.T) {
	tests := []struct {
		model string
		ratio string
		want  string
	}{
		{PrimaryModel, "1:1", "1024x1024"},
		{PrimaryModel, "16:9", "1536x1024"},
		{PrimaryModel, "9:16", "1024x1536"},
		{PrimaryModel, "3:2", "1536x1024"},
		{PrimaryModel, "2:3", "1024x1536"},
		{SecondaryModel, "1:1", "1024x1024"},
		{SecondaryModel, "16:9", "1792x1024"},
		{SecondaryModel, "9:16", "1024x1792"},
		// Custom ratios fall through to the width/height comparison.
		{PrimaryModel, "21:9", "1536x1024"},
		{SecondaryModel, "5:7", "1024x1792"},
		{PrimaryModel, "7:7", "1024x1024"},
		{PrimaryModel, "", "1024x1024"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, sizeForModel(tt.model, tt.ratio), "%s %s", tt.model, tt.ratio)
	}
}
