package raster

import (
	"bytes"
	"fmt"
	"image"
	"image/png"
	"os"
	"path/filepath"

	"github.com/disintegration/imaging"
	"github.com/dustin/go-humanize"
	"go.uber.org/zap"

	"statsnap/styler"
	"statsnap/utils/images"
)

// Export renders grid and writes it to path as PNG, replacing existing file.
func (r *Renderer) Export(g *styler.Grid, path string) error {
	img, err := r.Render(g)
	if err != nil {
		return fmt.Errorf("unable to render %q: %w", g.Caption, err)
	}
	size, err := WritePNG(path, img, r.opts.DPI)
	if err != nil {
		return err
	}
	r.log.Debug("Image exported",
		zap.String("path", path),
		zap.String("size", humanize.Bytes(uint64(size))),
		zap.Int("width", img.Bounds().Dx()),
		zap.Int("height", img.Bounds().Dy()),
		zap.Int("rows", len(g.Rows)))
	return nil
}

// WritePNG encodes img as PNG carrying dpi as physical pixel density and
// returns number of bytes written. Parent directory is created when missing.
func WritePNG(path string, img image.Image, dpi float64) (int, error) {
	var buf bytes.Buffer
	if err := imaging.Encode(&buf, img, imaging.PNG, imaging.PNGCompressionLevel(png.BestCompression)); err != nil {
		return 0, fmt.Errorf("unable to encode png: %w", err)
	}
	data, _, err := images.EnsurePNGDensity(buf.Bytes(), dpi)
	if err != nil {
		return 0, fmt.Errorf("unable to set png density: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return 0, fmt.Errorf("unable to create output directory: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return 0, fmt.Errorf("unable to write image: %w", err)
	}
	return len(data), nil
}
