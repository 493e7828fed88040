package repository

import (
	"os"
	"path/filepath"
	"regexp"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRepo(t *testing.T) (*FileArtifactRepository, string, string) {
	t.Helper()
	dir := t.TempDir()
	uploads := filepath.Join(dir, "uploads")
	vectors := filepath.Join(dir, "vectors")
	repo, err := NewFileArtifactRepository(uploads, vectors)
	require.NoError(t, err)
	return repo, uploads, vectors
}

func TestNewFileArtifactRepository_CreatesDirectories(t *testing.T) {
	_, uploads, vectors := newTestRepo(t)

	for _, dir := range []string{uploads, vectors} {
		info, err := os.Stat(dir)
		require.NoError(t, err)
		assert.True(t, info.IsDir())
	}
}

func TestSaveUploadAndVector(t *testing.T) {
	repo, uploads, vectors := newTestRepo(t)

	path, err := repo.SaveUpload("image.png", []byte("raster"))
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(uploads, "image.png"), path)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, []byte("raster"), data)

	path, err = repo.SaveVector("out.svg", []byte("<svg/>"))
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(vectors, "out.svg"), path)
}

func TestSave_RejectsEmptyData(t *testing.T) {
	repo, _, _ := newTestRepo(t)

	_, err := repo.SaveUpload("image.png", nil)
	assert.Error(t, err)
	_, err = repo.SaveVector("out.svg", []byte{})
	assert.Error(t, err)
}

func TestSave_StripsPathComponents(t *testing.T) {
	repo, uploads, _ := newTestRepo(t)

	path, err := repo.SaveUpload("../../escape.png", []byte("raster"))
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(uploads, "escape.png"), path)
}

func TestDerivedNames(t *testing.T) {
	repo, _, _ := newTestRepo(t)

	uploadPattern := regexp.MustCompile(`^image_\d{8}_\d{6}_[0-9a-f]{8}\.png$`)
	vectorPattern := regexp.MustCompile(`^vector_\d{8}_\d{6}_[0-9a-f]{8}\.svg$`)

	assert.Regexp(t, uploadPattern, repo.UploadName(".png"))
	assert.Regexp(t, vectorPattern, repo.VectorName())

	// Missing extension defaults to .png.
	assert.Regexp(t, uploadPattern, repo.UploadName(""))

	assert.NotEqual(t, repo.UploadName(".png"), repo.UploadName(".png"))
}

func TestRemoveOlderThan(t *testing.T) {
	repo, uploads, vectors := newTestRepo(t)

	oldUpload, err := repo.SaveUpload("old.png", []byte("x"))
	require.NoError(t, err)
	oldVector, err := repo.SaveVector("old.svg", []byte("<svg/>"))
	require.NoError(t, err)
	freshUpload, err := repo.SaveUpload("fresh.png", []byte("x"))
	require.NoError(t, err)

	stale := time.Now().Add(-48 * time.Hour)
	require.NoError(t, os.Chtimes(oldUpload, stale, stale))
	require.NoError(t, os.Chtimes(oldVector, stale, stale))

	removed, err := repo.RemoveOlderThan(24 * time.Hour)
	require.NoError(t, err)
	assert.Equal(t, 2, removed)

	_, err = os.Stat(oldUpload)
	assert.True(t, os.IsNotExist(err))
	_, err = os.Stat(oldVector)
	assert.True(t, os.IsNotExist(err))
	_, err = os.Stat(freshUpload)
	assert.NoError(t, err)

	// Directories themselves survive the sweep.
	for _, dir := range []string{uploads, vectors} {
		info, statErr := os.Stat(dir)
		require.NoError(t, statErr)
		assert.True(t, info.IsDir())
	}
}

func TestRemoveOlderThan_NothingToRemove(t *testing.T) {
	repo, _, _ := newTestRepo(t)

	_, err := repo.SaveUpload("fresh.png", []byte("x"))
	require.NoError(t, err)

	removed, err := repo.RemoveOlderThan(time.Hour)
	require.NoError(t, err)
	assert.Zero(t, removed)
}
