package archive

import (
	"archive/tar"
	"archive/zip"
	"compress/gzip"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// Format names for Options.Format.
const (
	FormatGzip = "gzip"
	FormatZip  = "zip"
)

// maxFileSize caps a single extracted file to guard against
// decompression bombs.
const maxFileSize = 512 << 20

// Options controls how a stream is unpacked.
type Options struct {
	// Format selects the container: FormatGzip or FormatZip.
	Format string
	// Untar unpacks the decompressed stream as a tar archive.
	// Only meaningful with FormatGzip.
	Untar bool
	// Name names the output file for single-file extraction
	// (a bare .gz asset with Untar disabled).
	Name string
}

// Detect infers extraction options from an asset filename.
// It returns false for filenames that are not a recognized archive.
func Detect(name string) (Options, bool) {
	lower := strings.ToLower(name)
	switch {
	case strings.HasSuffix(lower, ".tar.gz"), strings.HasSuffix(lower, ".tgz"):
		return Options{Format: FormatGzip, Untar: true}, true
	case strings.HasSuffix(lower, ".gz"):
		return Options{Format: FormatGzip, Name: strings.TrimSuffix(name, filepath.Ext(name))}, true
	case strings.HasSuffix(lower, ".zip"):
		return Options{Format: FormatZip}, true
	}
	return Options{}, false
}

// Extract unpacks the stream into dir according to opts. Only regular files
// and directories are materialized; entries that would escape dir are
// rejected.
func Extract(r io.Reader, dir string, opts Options) error {
	switch opts.Format {
	case FormatGzip:
		gz, err := gzip.NewReader(r)
		if err != nil {
			return fmt.Errorf("creating gzip reader: %w", err)
		}
		defer gz.Close()
		if opts.Untar {
			return extractTar(gz, dir)
		}
		return extractFile(gz, dir, opts.Name)
	case FormatZip:
		return extractZip(r, dir)
	default:
		return fmt.Errorf("unsupported archive format %q", opts.Format)
	}
}

func extractTar(r io.Reader, dir string) error {
	tr := tar.NewReader(r)
	for {
		hdr, err := tr.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return fmt.Errorf("reading tar entry: %w", err)
		}

		dest, err := entryPath(dir, hdr.Name)
		if err != nil {
			return err
		}

		switch hdr.Typeflag {
		case tar.TypeDir:
			if err := os.MkdirAll(dest, 0755); err != nil {
				return fmt.Errorf("creating directory %s: %w", hdr.Name, err)
			}
		case tar.TypeReg:
			mode := hdr.FileInfo().Mode().Perm()
			if mode == 0 {
				mode = 0644
			}
			if err := writeEntry(dest, tr, mode, hdr.Name); err != nil {
				return err
			}
		}
		// Symlinks and special entries are intentionally skipped.
	}
	return nil
}

func extractFile(r io.Reader, dir, name string) error {
	if name == "" {
		name = "file"
	}
	dest, err := entryPath(dir, name)
	if err != nil {
		return err
	}
	return writeEntry(dest, r, 0644, name)
}

// extractZip spools the stream to a temporary file because the zip format
// requires random access to its central directory.
func extractZip(r io.Reader, dir string) error {
	tmp, err := os.CreateTemp("", "hoist-zip-*")
	if err != nil {
		return fmt.Errorf("creating zip spool file: %w", err)
	}
	defer os.Remove(tmp.Name())
	defer tmp.Close()

	size, err := io.Copy(tmp, r)
	if err != nil {
		return fmt.Errorf("spooling zip archive: %w", err)
	}

	zr, err := zip.NewReader(tmp, size)
	if err != nil {
		return fmt.Errorf("opening zip archive: %w", err)
	}

	for _, f := range zr.File {
		dest, err := entryPath(dir, f.Name)
		if err != nil {
			return err
		}

		if f.Mode().IsDir() || strings.HasSuffix(f.Name, "/") {
			if err := os.MkdirAll(dest, 0755); err != nil {
				return fmt.Errorf("creating directory %s: %w", f.Name, err)
			}
			continue
		}
		if !f.Mode().IsRegular() {
			continue
		}

		rc, err := f.Open()
		if err != nil {
			return fmt.Errorf("opening zip entry %s: %w", f.Name, err)
		}
		mode := f.Mode().Perm()
		if mode == 0 {
			mode = 0644
		}
		err = writeEntry(dest, rc, mode, f.Name)
		rc.Close()
		if err != nil {
			return err
		}
	}
	return nil
}

// entryPath joins an archive entry name onto dir, rejecting names that
// would escape it.
func entryPath(dir, name string) (string, error) {
	cleaned := filepath.FromSlash(name)
	if !filepath.IsLocal(cleaned) {
		return "", fmt.Errorf("archive entry %q escapes extraction directory", name)
	}
	return filepath.Join(dir, cleaned), nil
}

func writeEntry(dest string, r io.Reader, mode os.FileMode, name string) error {
	if err := os.MkdirAll(filepath.Dir(dest), 0755); err != nil {
		return fmt.Errorf("creating parent directory for %s: %w", name, err)
	}
	out, err := os.OpenFile(dest, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, mode)
	if err != nil {
		return fmt.Errorf("creating file %s: %w", name, err)
	}
	n, err := io.Copy(out, io.LimitReader(r, maxFileSize+1))
	if closeErr := out.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		return fmt.Errorf("extracting %s: %w", name, err)
	}
	if n > maxFileSize {
		return fmt.Errorf("entry %s exceeds the %d byte extraction limit", name, int64(maxFileSize))
	}
	return nil
}
