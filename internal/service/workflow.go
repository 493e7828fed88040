package service

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/velumi/img2svg/internal/config"
	"github.com/velumi/img2svg/internal/domain"
	"github.com/velumi/img2svg/internal/repository"
)

// Vectorizer is the slice of the Recraft client the workflow depends on.
type Vectorizer interface {
	Vectorize(ctx context.Context, filename string, data []byte) (string, error)
	Download(ctx context.Context, url string) ([]byte, error)
}

// Workflow runs the generate and vectorize sequences and persists their
// artifacts. Both the CLI and the web handlers drive it.
type Workflow struct {
	selector   *Selector
	vectorizer Vectorizer
	repo       repository.ArtifactRepository
	defaults   config.Defaults
}

// NewWorkflow creates a workflow service.
func NewWorkflow(cfg *config.Config, selector *Selector, vectorizer Vectorizer, repo repository.ArtifactRepository) (*Workflow, error) {
	if selector == nil {
		return nil, fmt.Errorf("selector is required")
	}
	if vectorizer == nil {
		return nil, fmt.Errorf("vectorizer is required")
	}
	if repo == nil {
		return nil, fmt.Errorf("repository is required")
	}

	return &Workflow{
		selector:   selector,
		vectorizer: vectorizer,
		repo:       repo,
		defaults:   cfg.DefaultGeneration,
	}, nil
}

// Generate validates the request, selects a provider and produces an image.
func (w *Workflow) Generate(ctx context.Context, req domain.GenerationRequest) (*domain.GenerationResult, error) {
	w.applyDefaults(&req)
	req.Normalize()
	if err := req.Validate(); err != nil {
		return nil, err
	}

	gen, err := w.selector.Select(req.Provider)
	if err != nil {
		return nil, err
	}

	result, err := gen.Generate(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("failed to generate image with %s: %w", gen.Name(), err)
	}

	return result, nil
}

// GenerateAndVectorize generates an image, saves it to the uploads
// directory, then vectorizes it into the vectors directory.
func (w *Workflow) GenerateAndVectorize(ctx context.Context, req domain.GenerationRequest) (*domain.GenerationResult, string, *domain.VectorizeResult, error) {
	result, err := w.Generate(ctx, req)
	if err != nil {
		return nil, "", nil, err
	}

	name := w.repo.UploadName(extForMimeType(result.MimeType))
	imagePath, err := w.repo.SaveUpload(name, result.Data)
	if err != nil {
		return nil, "", nil, fmt.Errorf("failed to save generated image: %w", err)
	}

	vec, err := w.vectorize(ctx, name, result.Data)
	if err != nil {
		return result, imagePath, nil, err
	}

	return result, imagePath, vec, nil
}

// VectorizeFile reads a raster image from disk, copies it into the uploads
// directory and vectorizes it.
func (w *Workflow) VectorizeFile(ctx context.Context, path string) (string, *domain.VectorizeResult, error) {
	return w.Vectorize(ctx, domain.VectorizeRequest{Path: path})
}

// VectorizeBytes persists the raster input and vectorizes it.
func (w *Workflow) VectorizeBytes(ctx context.Context, filename string, data []byte) (string, *domain.VectorizeResult, error) {
	return w.Vectorize(ctx, domain.VectorizeRequest{Filename: filename, Data: data})
}

// Vectorize persists the raster input and vectorizes it. When the request
// carries a path instead of bytes, the file is read first.
func (w *Workflow) Vectorize(ctx context.Context, req domain.VectorizeRequest) (string, *domain.VectorizeResult, error) {
	filename, data := req.Filename, req.Data
	if len(data) == 0 && req.Path != "" {
		read, err := os.ReadFile(req.Path)
		if err != nil {
			return "", nil, fmt.Errorf("failed to read image file: %w", err)
		}
		data = read
		if filename == "" {
			filename = filepath.Base(req.Path)
		}
	}

	name := w.repo.UploadName(extForFilename(filename))
	uploadPath, err := w.repo.SaveUpload(name, data)
	if err != nil {
		return "", nil, fmt.Errorf("failed to save uploaded image: %w", err)
	}

	vec, err := w.vectorize(ctx, name, data)
	if err != nil {
		return uploadPath, nil, err
	}

	return uploadPath, vec, nil
}

// vectorize runs the submit/download/persist sequence. Errors from the
// client already identify the failing step.
func (w *Workflow) vectorize(ctx context.Context, filename string, data []byte) (*domain.VectorizeResult, error) {
	svgURL, err := w.vectorizer.Vectorize(ctx, filename, data)
	if err != nil {
		return nil, err
	}

	svgData, err := w.vectorizer.Download(ctx, svgURL)
	if err != nil {
		return nil, err
	}

	localPath, err := w.repo.SaveVector(w.repo.VectorName(), svgData)
	if err != nil {
		return nil, fmt.Errorf("failed to save SVG: %w", err)
	}

	return &domain.VectorizeResult{SVGURL: svgURL, LocalPath: localPath}, nil
}

func (w *Workflow) applyDefaults(req *domain.GenerationRequest) {
	if req.AspectRatio == "" {
		req.AspectRatio = w.defaults.AspectRatio
	}
	if req.MagicPrompt == "" {
		req.MagicPrompt = domain.MagicPrompt(w.defaults.MagicPrompt)
	}
	if req.Style == "" {
		req.Style = domain.Style(w.defaults.Style)
	}
}

func extForMimeType(mimeType string) string {
	switch mimeType {
	case "image/jpeg":
		return ".jpg"
	case "image/webp":
		return ".webp"
	default:
		return ".png"
	}
}

func extForFilename(filename string) string {
	ext := filepath.Ext(filename)
	if ext == "" {
		return ".png"
	}
	return ext
}
