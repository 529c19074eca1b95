package upgrade

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"strings"
)

// checksumAssetName is the conventional checksum manifest shipped alongside
// release assets, in sha256sum format ("<hex>  <filename>" per line).
const checksumAssetName = "checksums.txt"

// maxChecksumBytes caps the checksum manifest size (1 MB).
const maxChecksumBytes = 1 << 20

// verifyChecksum fetches checksums.txt from the release and compares the
// downloaded archive's SHA-256 against its entry. When verification is
// enabled, a missing manifest, a missing entry, or a mismatch all fail the
// upgrade.
func (e *Engine) verifyChecksum(ctx context.Context, tag, assetName, archivePath string) error {
	body, _, err := e.openChecksums(ctx, tag)
	if err != nil {
		if _, ok := AsError(err); ok {
			return err
		}
		return newError(bandCode(BandChecksum, httpStatus(err)), err,
			"fetching checksum manifest",
			map[string]any{"repo": e.cfg.Repo, "tag": tag})
	}
	defer body.Close()

	manifest, err := io.ReadAll(io.LimitReader(body, maxChecksumBytes))
	if err != nil {
		return newError(BandChecksum, err, "reading checksum manifest",
			map[string]any{"repo": e.cfg.Repo, "tag": tag})
	}

	expected := ""
	for _, line := range strings.Split(string(manifest), "\n") {
		fields := strings.Fields(line)
		if len(fields) == 2 && fields[1] == assetName {
			expected = strings.ToLower(fields[0])
			break
		}
	}
	if expected == "" {
		return newError(BandChecksum, nil,
			fmt.Sprintf("no checksum entry for %s in %s", assetName, checksumAssetName),
			map[string]any{"tag": tag, "asset": assetName})
	}

	actual, err := fileSHA256(archivePath)
	if err != nil {
		return newError(BandChecksum, err, "hashing downloaded archive",
			map[string]any{"path": archivePath})
	}

	if actual != expected {
		return newError(BandChecksum, nil,
			fmt.Sprintf("checksum mismatch for %s", assetName),
			map[string]any{"tag": tag, "asset": assetName, "expected": expected, "actual": actual})
	}
	return nil
}

// openChecksums opens the checksum manifest in the configured fetch mode.
func (e *Engine) openChecksums(ctx context.Context, tag string) (io.ReadCloser, int64, error) {
	if !e.cfg.UseAPI {
		return e.source.DownloadDirect(ctx, tag, checksumAssetName)
	}

	release, err := e.releaseForTag(ctx, tag)
	if err != nil {
		return nil, 0, err
	}
	asset, ok := findAsset(release.Assets, checksumAssetName)
	if !ok {
		return nil, 0, newError(BandChecksum, nil,
			fmt.Sprintf("%s not present in release %s", checksumAssetName, tag),
			map[string]any{"tag": tag})
	}
	return e.source.DownloadAsset(ctx, asset.ID)
}

func fileSHA256(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	h := sha256.New()
	if _, err := io.Copy(h, f); err != nil {
		return "", err
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}
