package storage

import (
	"fmt"
	"os"
	"path/filepath"
)

// Local wraps the raw, extracted and temp stores on the local filesystem.
type Local struct {
	rawDir     string
	extractDir string
	tempDir    string
}

// NewLocal creates the three store directories if needed.
func NewLocal(cfg Config) (*Local, error) {
	l := &Local{
		rawDir:     cfg.RawDir,
		extractDir: cfg.ExtractDir,
		tempDir:    cfg.TempDir,
	}
	for _, dir := range []string{l.rawDir, l.extractDir, l.tempDir} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create store directory %q: %w", dir, err)
		}
	}
	return l, nil
}

// RawDir returns the root of the raw store.
func (l *Local) RawDir() string { return l.rawDir }

// ExtractDir returns the root of the extracted store.
func (l *Local) ExtractDir() string { return l.extractDir }

// TempDir returns the root of the temp store.
func (l *Local) TempDir() string { return l.tempDir }

// RawPath returns the raw store location of a catalog path.
func (l *Local) RawPath(assetPath string) string {
	return filepath.Join(l.rawDir, filepath.FromSlash(assetPath))
}

// ExtractPath returns the extracted store location of a catalog path.
func (l *Local) ExtractPath(assetPath string) string {
	return filepath.Join(l.extractDir, filepath.FromSlash(assetPath))
}

// CommitRaw atomically writes content under the raw store location for
// assetPath. The content is staged to a temp file in the destination directory
// and renamed into place on success, so a crash mid write never leaves a
// partial file observable under the final path.
func (l *Local) CommitRaw(assetPath string, content []byte) error {
	dst := l.RawPath(assetPath)
	dir := filepath.Dir(dst)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create raw directory %q: %w", dir, err)
	}

	// Temp file in the same directory keeps the rename on one filesystem.
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(dst)+".tmp-*")
	if err != nil {
		return fmt.Errorf("stage raw file for %q: %w", assetPath, err)
	}
	tmpName := tmp.Name()
	defer func() {
		tmp.Close()
		os.Remove(tmpName)
	}()

	if _, err := tmp.Write(content); err != nil {
		return fmt.Errorf("write staged file for %q: %w", assetPath, err)
	}
	if err := tmp.Sync(); err != nil {
		return fmt.Errorf("sync staged file for %q: %w", assetPath, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close staged file for %q: %w", assetPath, err)
	}
	if err := os.Rename(tmpName, dst); err != nil {
		return fmt.Errorf("commit raw file for %q: %w", assetPath, err)
	}
	return nil
}

// ReadRaw reads back a committed raw asset.
func (l *Local) ReadRaw(assetPath string) ([]byte, error) {
	data, err := os.ReadFile(l.RawPath(assetPath))
	if err != nil {
		return nil, fmt.Errorf("read raw file for %q: %w", assetPath, err)
	}
	return data, nil
}

// RemoveRaw deletes a raw asset, ignoring files that are already gone.
func (l *Local) RemoveRaw(assetPath string) error {
	if err := os.Remove(l.RawPath(assetPath)); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("remove raw file for %q: %w", assetPath, err)
	}
	return nil
}

// HasRaw reports whether a raw asset exists with the given size.
func (l *Local) HasRaw(assetPath string, size int64) bool {
	info, err := os.Stat(l.RawPath(assetPath))
	return err == nil && info.Mode().IsRegular() && info.Size() == size
}
