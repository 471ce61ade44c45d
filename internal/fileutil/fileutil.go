package fileutil

import (
	"bytes"
	"crypto/sha256"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"

	"github.com/spf13/afero"
	"golang.org/x/sys/unix"
)

// CopyFileVerified streams src to dst with SHA256 + size integrity verification,
// keeping the source permission bits. Removes dst on mismatch.
func CopyFileVerified(fsys afero.Fs, src, dst string) error {
	srcInfo, err := fsys.Stat(src)
	if err != nil {
		return fmt.Errorf("stat source: %w", err)
	}
	srcSize := srcInfo.Size()

	in, err := fsys.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := fsys.OpenFile(dst, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, srcInfo.Mode().Perm())
	if err != nil {
		return err
	}
	defer func() {
		_ = out.Close()
	}()

	srcHasher := sha256.New()
	dstHasher := sha256.New()
	tee := io.TeeReader(in, srcHasher)
	multi := io.MultiWriter(out, dstHasher)

	written, err := io.Copy(multi, tee)
	if err != nil {
		_ = fsys.Remove(dst)
		return err
	}
	if err := out.Close(); err != nil {
		_ = fsys.Remove(dst)
		return err
	}

	if written != srcSize {
		_ = fsys.Remove(dst)
		return fmt.Errorf("copy size mismatch: source %d bytes, copied %d bytes", srcSize, written)
	}

	if !bytes.Equal(srcHasher.Sum(nil), dstHasher.Sum(nil)) {
		_ = fsys.Remove(dst)
		return fmt.Errorf("copy hash mismatch: file corrupted during copy")
	}

	return nil
}

// MoveFile renames src to dst, replacing a file already at dst. When the two
// paths live on different devices it falls back to a verified copy that keeps
// the modification time, then removes src.
func MoveFile(fsys afero.Fs, src, dst string) error {
	err := fsys.Rename(src, dst)
	if err == nil {
		return nil
	}
	if !errors.Is(err, unix.EXDEV) {
		return err
	}

	info, statErr := fsys.Stat(src)
	if statErr != nil {
		return fmt.Errorf("stat source: %w", statErr)
	}
	if err := CopyFileVerified(fsys, src, dst); err != nil {
		return fmt.Errorf("cross-device copy: %w", err)
	}
	_ = fsys.Chtimes(dst, info.ModTime(), info.ModTime())
	if err := fsys.Remove(src); err != nil {
		return fmt.Errorf("remove source after copy: %w", err)
	}
	return nil
}

// Exists reports whether path is present. Only errors other than "not exist"
// are returned.
func Exists(fsys afero.Fs, path string) (bool, error) {
	_, err := fsys.Stat(path)
	if err == nil {
		return true, nil
	}
	if errors.Is(err, fs.ErrNotExist) {
		return false, nil
	}
	return false, err
}

// IsDir follows symlinks and reports whether path resolves to a directory.
// Dangling links report false.
func IsDir(fsys afero.Fs, path string) (bool, error) {
	info, err := fsys.Stat(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return false, nil
		}
		return false, err
	}
	return info.IsDir(), nil
}
