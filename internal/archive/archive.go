// Package archive exports an installed variant as a single file.
package archive

import (
	"archive/tar"
	"archive/zip"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/ulikunitz/xz"
)

// Write archives the contents of srcDir to dest. The format follows the
// extension of dest: ".tar.xz" or ".zip". Any other dest is a directory the
// tree is copied to.
func Write(srcDir, dest string) error {
	switch {
	case strings.HasSuffix(dest, ".tar.xz"):
		return tarXZ(srcDir, dest)
	case strings.HasSuffix(dest, ".zip"):
		return zipDir(srcDir, dest)
	}
	return os.CopyFS(dest, os.DirFS(srcDir))
}

// tarXZ creates an xz-compressed tar archive at dest from srcDir. Symbolic
// links are stored as links.
func tarXZ(srcDir, dest string) (err error) {
	f, err := os.Create(dest)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := f.Close(); err == nil {
			err = cerr
		}
	}()

	xw, err := xz.NewWriter(f)
	if err != nil {
		return fmt.Errorf("creating xz writer: %w", err)
	}
	tw := tar.NewWriter(xw)

	err = filepath.WalkDir(srcDir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		rel, err := filepath.Rel(srcDir, path)
		if err != nil || rel == "." {
			return err
		}
		info, err := d.Info()
		if err != nil {
			return err
		}
		var link string
		if info.Mode()&fs.ModeSymlink != 0 {
			if link, err = os.Readlink(path); err != nil {
				return err
			}
		}
		header, err := tar.FileInfoHeader(info, link)
		if err != nil {
			return err
		}
		header.Name = filepath.ToSlash(rel)
		if d.IsDir() {
			header.Name += "/"
		}
		if err := tw.WriteHeader(header); err != nil {
			return err
		}
		if !info.Mode().IsRegular() {
			return nil
		}
		src, err := os.Open(path)
		if err != nil {
			return err
		}
		defer src.Close()
		_, err = io.Copy(tw, src)
		return err
	})
	if err != nil {
		return err
	}
	if err := tw.Close(); err != nil {
		return err
	}
	return xw.Close()
}

// zipDir creates a zip archive at dest from the contents of srcDir.
// Symbolic links are stored as links: the entry holds the link target.
func zipDir(srcDir, dest string) (err error) {
	f, err := os.Create(dest)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := f.Close(); err == nil {
			err = cerr
		}
	}()

	w := zip.NewWriter(f)
	err = filepath.WalkDir(srcDir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		rel, err := filepath.Rel(srcDir, path)
		if err != nil {
			return err
		}
		info, err := d.Info()
		if err != nil {
			return err
		}
		header, err := zip.FileInfoHeader(info)
		if err != nil {
			return err
		}
		header.Name = filepath.ToSlash(rel)

		if info.Mode()&fs.ModeSymlink != 0 {
			link, err := os.Readlink(path)
			if err != nil {
				return err
			}
			header.Method = zip.Store
			writer, err := w.CreateHeader(header)
			if err != nil {
				return err
			}
			_, err = io.WriteString(writer, link)
			return err
		}
		if !info.Mode().IsRegular() {
			return nil
		}

		header.Method = zip.Deflate
		writer, err := w.CreateHeader(header)
		if err != nil {
			return err
		}
		src, err := os.Open(path)
		if err != nil {
			return err
		}
		defer src.Close()
		_, err = io.Copy(writer, src)
		return err
	})
	if err != nil {
		return err
	}
	// Close writes the central directory.
	return w.Close()
}
