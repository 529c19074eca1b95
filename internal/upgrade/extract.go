package upgrade

import (
	"fmt"
	"io"
	"os"

	"github.com/hoistdev/hoist/internal/archive"
)

// ExtractOptions tells an Extractor how to unpack an asset: the compression
// container, whether the decompressed stream is a tar archive, and the
// output name for single-file payloads.
type ExtractOptions struct {
	Format string
	Untar  bool
	Name   string
}

// Extractor unpacks an asset's byte stream into a directory. It is an
// external collaborator of the engine; implementations only need to
// materialize a plain file tree under dir.
type Extractor interface {
	Extract(r io.Reader, dir string, opts ExtractOptions) error
}

// archiveExtractor is the default Extractor, backed by the archive package.
type archiveExtractor struct{}

func (archiveExtractor) Extract(r io.Reader, dir string, opts ExtractOptions) error {
	return archive.Extract(r, dir, archive.Options{
		Format: opts.Format,
		Untar:  opts.Untar,
		Name:   opts.Name,
	})
}

// extractOptionsFor infers extraction options from the asset filename:
// .tar.gz/.tgz unpack as gzipped tar, .gz as a bare gzipped file, .zip as
// a zip archive.
func extractOptionsFor(assetName string) (ExtractOptions, bool) {
	opts, ok := archive.Detect(assetName)
	if !ok {
		return ExtractOptions{}, false
	}
	return ExtractOptions{Format: opts.Format, Untar: opts.Untar, Name: opts.Name}, true
}

// extractArchive unpacks the downloaded archive into the staging tree.
func (e *Engine) extractArchive(archivePath, assetName, treeDir string) error {
	opts, ok := extractOptionsFor(assetName)
	if !ok {
		return newError(BandExtract, nil,
			fmt.Sprintf("unrecognized archive format for %s", assetName),
			map[string]any{"asset": assetName})
	}

	f, err := os.Open(archivePath)
	if err != nil {
		return newError(BandExtract, err, "opening downloaded archive",
			map[string]any{"asset": assetName, "path": archivePath})
	}
	defer f.Close()

	if err := os.MkdirAll(treeDir, 0755); err != nil {
		return newError(BandExtract, err, "creating staging tree",
			map[string]any{"dir": treeDir})
	}

	if err := e.extractor.Extract(f, treeDir, opts); err != nil {
		return newError(BandExtract, err,
			fmt.Sprintf("extracting %s", assetName),
			map[string]any{"asset": assetName, "dir": treeDir})
	}
	return nil
}
