// Package zip builds in-memory download bundles for the asset library.
package zip

import (
	"archive/zip"
	"bytes"
	"fmt"
)

// Asset is one file to include in a download bundle.
type Asset struct {
	Filename string
	Data     []byte
}

// ArchiveAssets bundles the assets into a ZIP archive, preserving input
// order.
func ArchiveAssets(assets []Asset) ([]byte, error) {
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for _, asset := range assets {
		w, err := zw.Create(asset.Filename)
		if err != nil {
			return nil, fmt.Errorf("zip: add %s: %w", asset.Filename, err)
		}
		if _, err := w.Write(asset.Data); err != nil {
			return nil, fmt.Errorf("zip: write %s: %w", asset.Filename, err)
		}
	}
	if err := zw.Close(); err != nil {
		return nil, fmt.Errorf("zip: finalize archive: %w", err)
	}
	return buf.Bytes(), nil
}
