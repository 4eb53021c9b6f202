package build

import (
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/Bitlatte/folio/internal/logfields"
)

// copyPassthrough copies every passthrough path into the output directory
// and returns the number of files copied. A path below the input directory
// keeps its input-relative location; missing paths are skipped.
func (b *Builder) copyPassthrough() (int, error) {
	opts := b.site.Options
	total := 0
	for _, p := range b.site.PassthroughCopies() {
		src := filepath.Clean(p)
		info, err := os.Stat(src)
		if os.IsNotExist(err) {
			b.logger.Warn("Passthrough path not found, skipping", logfields.InputPath(src))
			continue
		}
		if err != nil {
			return total, failed(StagePassthrough, src, err)
		}

		dst := filepath.Join(opts.Dir.Output, passthroughTarget(opts.Dir.Input, src))
		var n int
		if info.IsDir() {
			n, err = copyDirContents(src, dst, b.logger)
		} else {
			err = copyFile(src, dst, b.logger)
			n = 1
		}
		if err != nil {
			return total, failed(StagePassthrough, src, err)
		}
		b.logger.Debug("Copied passthrough path", logfields.InputPath(src), logfields.OutputPath(dst), logfields.Count(n))
		total += n
	}
	return total, nil
}

// passthroughTarget is where src lands relative to the output directory.
func passthroughTarget(inputDir, src string) string {
	if rel, err := filepath.Rel(filepath.Clean(inputDir), src); err == nil && filepath.IsLocal(rel) {
		return rel
	}
	if filepath.IsLocal(src) {
		return src
	}
	return filepath.Base(src)
}

// copyDirContents recursively copies contents from src to dst and returns
// the number of files copied.
func copyDirContents(src, dst string, logger *slog.Logger) (int, error) {
	n := 0
	err := filepath.WalkDir(src, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		relPath, err := filepath.Rel(src, path)
		if err != nil {
			return fmt.Errorf("failed to get relative path for %s: %w", path, err)
		}
		dstPath := filepath.Join(dst, relPath)

		if d.IsDir() {
			// os.ModePerm is narrowed by the umask.
			if err := os.MkdirAll(dstPath, os.ModePerm); err != nil {
				return fmt.Errorf("failed to create directory %s: %w", dstPath, err)
			}
			return nil
		}
		if err := copyFile(path, dstPath, logger); err != nil {
			return fmt.Errorf("failed to copy file from %s to %s: %w", path, dstPath, err)
		}
		n++
		return nil
	})
	return n, err
}

// copyFile copies a single file from srcFile to dstFile, keeping its mode.
func copyFile(srcFile, dstFile string, logger *slog.Logger) error {
	srcF, err := os.Open(srcFile)
	if err != nil {
		return fmt.Errorf("failed to open source file %s: %w", srcFile, err)
	}
	defer srcF.Close()

	dstDir := filepath.Dir(dstFile)
	if err := os.MkdirAll(dstDir, os.ModePerm); err != nil {
		return fmt.Errorf("failed to create destination directory %s: %w", dstDir, err)
	}

	dstF, err := os.Create(dstFile)
	if err != nil {
		return fmt.Errorf("failed to create destination file %s: %w", dstFile, err)
	}
	defer dstF.Close()

	if _, err := io.Copy(dstF, srcF); err != nil {
		return fmt.Errorf("failed to copy data from %s to %s: %w", srcFile, dstFile, err)
	}

	srcInfo, err := srcF.Stat()
	if err != nil {
		logger.Warn("Could not stat source file to preserve permissions", logfields.InputPath(srcFile), logfields.Error(err))
		return nil
	}
	if err := os.Chmod(dstFile, srcInfo.Mode()); err != nil {
		logger.Warn("Could not set permissions", logfields.OutputPath(dstFile), logfields.Error(err))
	}
	return nil
}
