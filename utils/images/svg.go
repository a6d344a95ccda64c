// Package images contains image helpers shared by renderers.
package images

import (
	"bytes"
	"image"
	"math"

	"github.com/srwiley/oksvg"
	"github.com/srwiley/rasterx"
)

// fallback size when SVG viewBox has no size
const defaultSVGSize = 512

// maxRasterDim caps pixel dimension of rasterized SVG so that huge viewBox
// values do not exhaust memory.
var maxRasterDim = 8192

// RasterizeSVG rasterizes SVG to a transparent RGBA image.
//
// Rules:
//   - if targetW == 0 && targetH == 0: use SVG viewBox dimensions
//   - if only one of targetW/targetH is > 0: scale by that dimension keeping aspect ratio
//   - if both targetW and targetH are > 0: fit into that box keeping aspect ratio
func RasterizeSVG(svgData []byte, targetW, targetH int) (*image.RGBA, error) {
	icon, err := oksvg.ReadIconStream(bytes.NewReader(svgData))
	if err != nil {
		return nil, err
	}

	intrW := int(math.Ceil(icon.ViewBox.W))
	intrH := int(math.Ceil(icon.ViewBox.H))
	if intrW <= 0 {
		intrW = defaultSVGSize
	}
	if intrH <= 0 {
		intrH = defaultSVGSize
	}

	w, h := fitBox(intrW, intrH, targetW, targetH)
	icon.SetTarget(0, 0, float64(w), float64(h))

	dst := image.NewRGBA(image.Rect(0, 0, w, h))
	scanner := rasterx.NewScannerGV(w, h, dst, dst.Bounds())
	dasher := rasterx.NewDasher(w, h, scanner)
	icon.Draw(dasher, 1.0)
	return dst, nil
}

func fitBox(intrW, intrH, targetW, targetH int) (int, int) {
	w, h := intrW, intrH
	switch {
	case targetW <= 0 && targetH <= 0:
		// intrinsic size
	case targetW > 0 && targetH <= 0:
		w = targetW
		h = int(math.Round(float64(w) * float64(intrH) / float64(intrW)))
	case targetH > 0 && targetW <= 0:
		h = targetH
		w = int(math.Round(float64(h) * float64(intrW) / float64(intrH)))
	default:
		scale := math.Min(float64(targetW)/float64(intrW), float64(targetH)/float64(intrH))
		w = int(math.Round(float64(intrW) * scale))
		h = int(math.Round(float64(intrH) * scale))
	}
	w, h = max(w, 1), max(h, 1)

	if w > maxRasterDim || h > maxRasterDim {
		s := min(float64(maxRasterDim)/float64(w), float64(maxRasterDim)/float64(h))
		w = max(int(math.Round(float64(w)*s)), 1)
		h = max(int(math.Round(float64(h)*s)), 1)
	}
	return w, h
}
