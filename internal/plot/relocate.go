package plot

import (
	"io"
	"os"
	"path/filepath"

	"github.com/pkg/errors"
)

// Moved records one relocated file.
type Moved struct {
	Src  string
	Dst  string
	Size int64
}

// Relocate moves each listed file into destDir, replacing files of the same
// name. Files that don't exist are returned in missing; the first hard
// failure aborts the remaining moves.
func Relocate(paths []string, destDir string) (moved []Moved, missing []string, err error) {
	if err := os.MkdirAll(destDir, 0o755); err != nil {
		return nil, nil, errors.Wrap(err, "create run directory")
	}
	for _, src := range paths {
		fi, err := os.Stat(src)
		if os.IsNotExist(err) {
			missing = append(missing, src)
			continue
		}
		if err != nil {
			return moved, missing, errors.Wrapf(err, "stat %s", src)
		}
		dst := filepath.Join(destDir, filepath.Base(src))
		if err := move(src, dst); err != nil {
			return moved, missing, err
		}
		moved = append(moved, Moved{Src: src, Dst: dst, Size: fi.Size()})
	}
	return moved, missing, nil
}

// move renames src to dst, falling back to copy+remove when they sit on
// different file systems.
func move(src, dst string) error {
	if err := os.Rename(src, dst); err == nil {
		return nil
	}
	if _, err := CopyFile(src, dst); err != nil {
		return err
	}
	return errors.Wrapf(os.Remove(src), "remove %s after copy", src)
}

// CopyFile copies src to dst (created or truncated) keeping the source mode,
// and returns the number of bytes written.
func CopyFile(src, dst string) (int64, error) {
	in, err := os.Open(src)
	if err != nil {
		return 0, errors.Wrap(err, "open source")
	}
	defer in.Close()

	fi, err := in.Stat()
	if err != nil {
		return 0, errors.Wrap(err, "stat source")
	}
	out, err := os.OpenFile(dst, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, fi.Mode().Perm())
	if err != nil {
		return 0, errors.Wrap(err, "create destination")
	}
	n, err := io.Copy(out, in)
	if err != nil {
		out.Close()
		return n, errors.Wrapf(err, "copy %s", src)
	}
	return n, errors.Wrap(out.Close(), "close destination")
}
