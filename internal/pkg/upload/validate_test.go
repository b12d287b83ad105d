package upload

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Minimal valid headers for content sniffing.
var (
	pngHead  = []byte("\x89PNG\r\n\x1a\n")
	jpegHead = []byte{0xFF, 0xD8, 0xFF, 0xE0}
)

func TestValidateImageBySniff(t *testing.T) {
	mime, err := ValidateImageBySniff("photo.png", pngHead)
	require.NoError(t, err)
	assert.Equal(t, "image/png", mime)

	mime, err = ValidateImageBySniff("photo.JPG", jpegHead)
	require.NoError(t, err)
	assert.Equal(t, "image/jpeg", mime)
}

func TestValidateImageBySniffRejectsExtension(t *testing.T) {
	_, err := ValidateImageBySniff("photo.svg", []byte("<svg></svg>"))
	require.Error(t, err)

	_, err = ValidateImageBySniff("photo.exe", jpegHead)
	require.Error(t, err)

	_, err = ValidateImageBySniff("photo", jpegHead)
	require.Error(t, err)
}

func TestValidateImageBySniffRejectsScriptableContent(t *testing.T) {
	_, err := ValidateImageBySniff("photo.png", []byte("<!DOCTYPE html><html>"))
	require.Error(t, err)

	_, err = ValidateImageBySniff("photo.png", []byte("<?xml version=\"1.0\"?><svg>"))
	require.Error(t, err)
}

func TestValidateImageBySniffAllowsOctetStreamByExtension(t *testing.T) {
	// TIFF headers are not always recognized by content sniffing.
	mime, err := ValidateImageBySniff("scan.tiff", []byte{0x00, 0x01, 0x02, 0x03})
	require.NoError(t, err)
	assert.Equal(t, "application/octet-stream", mime)
}
