package repository

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
)

// ArtifactRepository defines the interface for persisting workflow artifacts.
type ArtifactRepository interface {
	SaveUpload(name string, data []byte) (string, error)
	SaveVector(name string, data []byte) (string, error)
	UploadName(ext string) string
	VectorName() string
	RemoveOlderThan(age time.Duration) (int, error)
}

// FileArtifactRepository implements ArtifactRepository on the flat-file
// output layout: uploads (raster inputs) and vectors (produced SVGs).
type FileArtifactRepository struct {
	uploadsDir string
	vectorsDir string
}

// NewFileArtifactRepository creates the output directories and returns a
// repository writing into them.
func NewFileArtifactRepository(uploadsDir, vectorsDir string) (*FileArtifactRepository, error) {
	for _, dir := range []string{uploadsDir, vectorsDir} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("failed to create output directory %s: %w", dir, err)
		}
	}
	return &FileArtifactRepository{uploadsDir: uploadsDir, vectorsDir: vectorsDir}, nil
}

// SaveUpload writes a raster artifact into the uploads directory.
func (r *FileArtifactRepository) SaveUpload(name string, data []byte) (string, error) {
	return r.save(r.uploadsDir, name, data)
}

// SaveVector writes an SVG artifact into the vectors directory.
func (r *FileArtifactRepository) SaveVector(name string, data []byte) (string, error) {
	return r.save(r.vectorsDir, name, data)
}

func (r *FileArtifactRepository) save(dir, name string, data []byte) (string, error) {
	if len(data) == 0 {
		return "", fmt.Errorf("refusing to save empty artifact %s", name)
	}
	// Derived names never contain separators; uploaded names might.
	name = filepath.Base(name)

	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("failed to write %s: %w", path, err)
	}
	return path, nil
}

// UploadName derives a unique filename for a raster artifact.
func (r *FileArtifactRepository) UploadName(ext string) string {
	if ext == "" {
		ext = ".png"
	}
	return fmt.Sprintf("image_%s_%s%s", timestamp(), shortID(), ext)
}

// VectorName derives a unique filename for an SVG artifact.
func (r *FileArtifactRepository) VectorName() string {
	return fmt.Sprintf("vector_%s_%s.svg", timestamp(), shortID())
}

// RemoveOlderThan deletes artifacts whose modification time is older than
// age, returning the number removed. Used by the scheduled retention sweep.
func (r *FileArtifactRepository) RemoveOlderThan(age time.Duration) (int, error) {
	cutoff := time.Now().Add(-age)
	removed := 0

	for _, dir := range []string{r.uploadsDir, r.vectorsDir} {
		entries, err := os.ReadDir(dir)
		if err != nil {
			return removed, fmt.Errorf("failed to read %s: %w", dir, err)
		}
		for _, entry := range entries {
			if entry.IsDir() {
				continue
			}
			info, err := entry.Info()
			if err != nil {
				continue
			}
			if info.ModTime().Before(cutoff) {
				if err := os.Remove(filepath.Join(dir, entry.Name())); err != nil {
					return removed, fmt.Errorf("failed to remove %s: %w", entry.Name(), err)
				}
				removed++
			}
		}
	}

	return removed, nil
}

func timestamp() string {
	return time.Now().Format("20060102_150405")
}

func shortID() string {
	return uuid.NewString()[:8]
}
