package extract

import (
	"archive/zip"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// MediaCopy is the built-in media capability: media payloads are already in
// their final format, so extraction is a plain copy into the extracted store,
// preserving the catalog path layout.
type MediaCopy struct{}

// Extract copies the raw file under destDir at its relative catalog path.
func (MediaCopy) Extract(ctx context.Context, rawPath, destDir string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	src, err := os.Open(rawPath)
	if err != nil {
		return fmt.Errorf("open media file: %w", err)
	}
	defer src.Close()

	dst := filepath.Join(destDir, filepath.Base(rawPath))
	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return fmt.Errorf("create media destination: %w", err)
	}

	out, err := os.Create(dst)
	if err != nil {
		return fmt.Errorf("create media copy: %w", err)
	}
	if _, err := io.Copy(out, src); err != nil {
		out.Close()
		os.Remove(dst)
		return fmt.Errorf("copy media file: %w", err)
	}
	if err := out.Close(); err != nil {
		return fmt.Errorf("finish media copy: %w", err)
	}
	return nil
}

// TableZip unpacks table archives. Table payloads are zip files whose members
// are the actual data tables; members land under destDir in a directory named
// after the archive.
type TableZip struct{}

// Extract unpacks every member of the archive at rawPath into destDir.
func (TableZip) Extract(ctx context.Context, rawPath, destDir string) error {
	r, err := zip.OpenReader(rawPath)
	if err != nil {
		return fmt.Errorf("open table archive: %w", err)
	}
	defer r.Close()

	base := filepath.Base(rawPath)
	if ext := filepath.Ext(base); ext != "" {
		base = strings.TrimSuffix(base, ext)
	}
	root := filepath.Join(destDir, base)

	for _, member := range r.File {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := unpackMember(member, root); err != nil {
			return err
		}
	}
	return nil
}

func unpackMember(member *zip.File, root string) error {
	// Reject members that would escape the destination directory.
	dst := filepath.Join(root, filepath.FromSlash(member.Name))
	if !strings.HasPrefix(dst, root+string(os.PathSeparator)) && dst != root {
		return fmt.Errorf("table archive member %q escapes destination", member.Name)
	}

	if member.FileInfo().IsDir() {
		return os.MkdirAll(dst, 0o755)
	}

	src, err := member.Open()
	if err != nil {
		return fmt.Errorf("open table member %q: %w", member.Name, err)
	}
	defer src.Close()

	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return fmt.Errorf("create table destination: %w", err)
	}
	out, err := os.Create(dst)
	if err != nil {
		return fmt.Errorf("create table file: %w", err)
	}
	if _, err := io.Copy(out, src); err != nil {
		out.Close()
		os.Remove(dst)
		return fmt.Errorf("unpack table member %q: %w", member.Name, err)
	}
	if err := out.Close(); err != nil {
		return fmt.Errorf("finish table member %q: %w", member.Name, err)
	}
	return nil
}
