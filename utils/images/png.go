package images

import (
	"bytes"
	"encoding/binary"
	"errors"
	"hash/crc32"
	"math"
)

var pngSignature = []byte{0x89, 'P', 'N', 'G', '\r', '\n', 0x1A, '\n'}

const (
	chunkIHDR = "IHDR"
	chunkPHYs = "pHYs"

	physUnitMeter  = 1
	inchesPerMeter = 1 / 0.0254
)

// EnsurePNGDensity inserts pHYs chunk declaring dpi right after IHDR, so image
// viewers and printers know intended physical size. If the chunk is already
// present data is returned unchanged.
func EnsurePNGDensity(pngData []byte, dpi float64) ([]byte, bool, error) {
	if len(pngData) < len(pngSignature)+8 || !bytes.Equal(pngData[:len(pngSignature)], pngSignature) {
		return nil, false, errors.New("not a png")
	}
	if dpi <= 0 {
		return nil, false, errors.New("density must be positive")
	}

	// walk chunks: length(4) type(4) data(length) crc(4)
	var insertAt int
	for pos := len(pngSignature); pos+8 <= len(pngData); {
		length := int(binary.BigEndian.Uint32(pngData[pos:]))
		kind := string(pngData[pos+4 : pos+8])
		end := pos + 12 + length
		if end > len(pngData) {
			return nil, false, errors.New("truncated png chunk")
		}
		switch kind {
		case chunkPHYs:
			return pngData, false, nil
		case chunkIHDR:
			insertAt = end
		}
		pos = end
	}
	if insertAt == 0 {
		return nil, false, errors.New("png has no IHDR chunk")
	}

	ppm := uint32(math.Round(dpi * inchesPerMeter))
	payload := make([]byte, 9)
	binary.BigEndian.PutUint32(payload[0:], ppm)
	binary.BigEndian.PutUint32(payload[4:], ppm)
	payload[8] = physUnitMeter

	buf := new(bytes.Buffer)
	buf.Grow(len(pngData) + 21)
	buf.Write(pngData[:insertAt])
	_ = binary.Write(buf, binary.BigEndian, uint32(len(payload)))
	crc := crc32.NewIEEE()
	chunk := append([]byte(chunkPHYs), payload...)
	crc.Write(chunk)
	buf.Write(chunk)
	_ = binary.Write(buf, binary.BigEndian, crc.Sum32())
	buf.Write(pngData[insertAt:])
	return buf.Bytes(), true, nil
}

// PNGDensity returns dpi declared by pHYs chunk, zero if absent.
func PNGDensity(pngData []byte) float64 {
	if len(pngData) < len(pngSignature) || !bytes.Equal(pngData[:len(pngSignature)], pngSignature) {
		return 0
	}
	for pos := len(pngSignature); pos+8 <= len(pngData); {
		length := int(binary.BigEndian.Uint32(pngData[pos:]))
		end := pos + 12 + length
		if end > len(pngData) {
			return 0
		}
		if string(pngData[pos+4:pos+8]) == chunkPHYs && length == 9 && pngData[pos+16] == physUnitMeter {
			ppm := binary.BigEndian.Uint32(pngData[pos+8:])
			return float64(ppm) / inchesPerMeter
		}
		pos = end
	}
	return 0
}
