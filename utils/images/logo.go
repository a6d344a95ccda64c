package images

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"os"

	"github.com/disintegration/imaging"
	"github.com/h2non/filetype"
)

// LoadLogo reads raster (PNG, JPEG, GIF, BMP, TIFF, WEBP) or SVG image from
// path and scales it to height pixels keeping aspect ratio.
func LoadLogo(path string, height int) (image.Image, error) {
	if height <= 0 {
		return nil, errors.New("logo height must be positive")
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("unable to read logo: %w", err)
	}

	if filetype.IsImage(data) {
		img, err := imaging.Decode(bytes.NewReader(data), imaging.AutoOrientation(true))
		if err != nil {
			return nil, fmt.Errorf("unable to decode logo %q: %w", path, err)
		}
		return imaging.Resize(img, 0, height, imaging.Lanczos), nil
	}

	// not recognized by signature - must be SVG then
	img, err := RasterizeSVG(data, 0, height)
	if err != nil {
		return nil, fmt.Errorf("logo %q is neither raster image nor SVG: %w", path, err)
	}
	return img, nil
}
