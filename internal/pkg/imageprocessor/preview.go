package imageprocessor

import (
	"bytes"
	"fmt"

	"github.com/disintegration/imaging"
)

// PreviewWidth is the pixel width of generated preview variants.
const PreviewWidth = 480

// GeneratePreview decodes an image and produces a small JPEG preview,
// preserving the aspect ratio.
func GeneratePreview(data []byte) ([]byte, error) {
	img, err := imaging.Decode(bytes.NewReader(data), imaging.AutoOrientation(true))
	if err != nil {
		return nil, fmt.Errorf("failed to decode image: %w", err)
	}

	preview := img
	if img.Bounds().Dx() > PreviewWidth {
		preview = imaging.Resize(img, PreviewWidth, 0, imaging.Lanczos)
	}

	var buf bytes.Buffer
	if err := imaging.Encode(&buf, preview, imaging.JPEG, imaging.JPEGQuality(80)); err != nil {
		return nil, fmt.Errorf("failed to encode preview: %w", err)
	}
	return buf.Bytes(), nil
}
