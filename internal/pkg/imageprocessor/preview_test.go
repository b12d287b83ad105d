package imageprocessor

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"testing"

	"github.com/disintegration/imaging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func encodeTestImage(t *testing.T, width, height int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for x := 0; x < width; x++ {
		for y := 0; y < height; y++ {
			img.Set(x, y, color.RGBA{R: uint8(x % 256), G: uint8(y % 256), B: 128, A: 255})
		}
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func TestGeneratePreviewResizesLargeImages(t *testing.T) {
	data := encodeTestImage(t, 1600, 1200)

	preview, err := GeneratePreview(data)
	require.NoError(t, err)

	img, err := imaging.Decode(bytes.NewReader(preview))
	require.NoError(t, err)
	assert.Equal(t, PreviewWidth, img.Bounds().Dx())
	assert.Equal(t, 360, img.Bounds().Dy(), "aspect ratio must be preserved")
}

func TestGeneratePreviewKeepsSmallImages(t *testing.T) {
	data := encodeTestImage(t, 320, 240)

	preview, err := GeneratePreview(data)
	require.NoError(t, err)

	img, err := imaging.Decode(bytes.NewReader(preview))
	require.NoError(t, err)
	assert.Equal(t, 320, img.Bounds().Dx())
}

func TestGeneratePreviewRejectsGarbage(t *testing.T) {
	_, err := GeneratePreview([]byte("not an image"))
	require.Error(t, err)
}
