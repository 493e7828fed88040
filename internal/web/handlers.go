package web

import (
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/velumi/img2svg/internal/domain"
	"github.com/velumi/img2svg/internal/infrastructure/recraft"
)

type apiResponse struct {
	OK        bool   `json:"ok"`
	Message   string `json:"message"`
	Provider  string `json:"provider,omitempty"`
	Model     string `json:"model,omitempty"`
	ImageURL  string `json:"image_url,omitempty"`
	SVGURL    string `json:"svg_url,omitempty"`
	SVGMarkup string `json:"svg_markup,omitempty"`
}

type indexData struct {
	AspectRatios []string
	MagicPrompts []domain.MagicPrompt
	Styles       []domain.Style
	Providers    []domain.Provider
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}

	data := indexData{
		AspectRatios: domain.AspectRatios,
		MagicPrompts: []domain.MagicPrompt{domain.MagicPromptAuto, domain.MagicPromptOn, domain.MagicPromptOff},
		Styles:       []domain.Style{domain.StyleAuto, domain.StyleGeneral, domain.StyleRealistic, domain.StyleDesign, domain.StyleNone},
		Providers:    []domain.Provider{domain.ProviderAuto, domain.ProviderReplicate, domain.ProviderFal, domain.ProviderOpenAI},
	}

	if err := s.index.Execute(w, data); err != nil {
		log.Printf("Error rendering index: %v", err)
	}
}

// handleGenerate runs the generate-then-vectorize sequence for a prompt.
func (s *Server) handleGenerate(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	if err := r.ParseForm(); err != nil {
		s.writeError(w, http.StatusBadRequest, fmt.Errorf("invalid form: %w", err))
		return
	}

	req := domain.GenerationRequest{
		Prompt:      r.FormValue("prompt"),
		AspectRatio: r.FormValue("aspect_ratio"),
		MagicPrompt: domain.MagicPrompt(r.FormValue("magic_prompt")),
		Style:       domain.Style(r.FormValue("style")),
		Provider:    domain.Provider(r.FormValue("provider")),
	}

	if strings.TrimSpace(req.Prompt) == "" {
		s.writeError(w, http.StatusBadRequest, fmt.Errorf("no prompt provided, please enter a text prompt"))
		return
	}

	result, imagePath, vec, err := s.workflow.GenerateAndVectorize(r.Context(), req)
	if err != nil {
		s.writeError(w, http.StatusBadGateway, err)
		return
	}

	s.writeJSON(w, http.StatusOK, apiResponse{
		OK:        true,
		Message:   fmt.Sprintf("Generated with %s (%s) and vectorized successfully", result.Provider, result.Model),
		Provider:  result.Provider,
		Model:     result.Model,
		ImageURL:  s.fileURL(imagePath),
		SVGURL:    s.fileURL(vec.LocalPath),
		SVGMarkup: s.svgMarkup(vec.LocalPath),
	})
}

// handleVectorize converts an uploaded raster image to SVG.
func (s *Server) handleVectorize(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, s.maxUploadBytes)
	if err := r.ParseMultipartForm(s.maxUploadBytes); err != nil {
		s.writeError(w, http.StatusRequestEntityTooLarge, fmt.Errorf("upload too large or malformed (limit %d MB): %w", s.maxUploadBytes>>20, err))
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		s.writeError(w, http.StatusBadRequest, fmt.Errorf("no image uploaded, please upload an image first"))
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		s.writeError(w, http.StatusBadRequest, fmt.Errorf("failed to read upload: %w", err))
		return
	}

	if !strings.HasPrefix(http.DetectContentType(data), "image/") {
		s.writeError(w, http.StatusBadRequest, fmt.Errorf("the uploaded file is not a valid image"))
		return
	}

	uploadPath, vec, err := s.workflow.VectorizeBytes(r.Context(), header.Filename, data)
	if err != nil {
		s.writeError(w, http.StatusBadGateway, err)
		return
	}

	s.writeJSON(w, http.StatusOK, apiResponse{
		OK:        true,
		Message:   fmt.Sprintf("Vectorization successful, input saved as %s", filepath.Base(uploadPath)),
		ImageURL:  s.fileURL(uploadPath),
		SVGURL:    s.fileURL(vec.LocalPath),
		SVGMarkup: s.svgMarkup(vec.LocalPath),
	})
}

// fileURL converts an artifact path under the output directory into its
// /files/ URL.
func (s *Server) fileURL(path string) string {
	rel, err := filepath.Rel(s.outputDir, path)
	if err != nil {
		return ""
	}
	return "/files/" + filepath.ToSlash(rel)
}

// svgMarkup inlines the saved SVG for the preview pane; anything that does
// not look like SVG is left to the download link instead.
func (s *Server) svgMarkup(path string) string {
	data, err := os.ReadFile(path)
	if err != nil {
		log.Printf("Error reading SVG for preview: %v", err)
		return ""
	}
	if !recraft.LooksLikeSVG("", data) {
		return ""
	}
	return string(data)
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, resp apiResponse) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		log.Printf("Error encoding response: %v", err)
	}
}

func (s *Server) writeError(w http.ResponseWriter, status int, err error) {
	log.Printf("Request failed: %v", err)
	s.writeJSON(w, status, apiResponse{OK: false, Message: "ERROR: " + err.Error()})
}
