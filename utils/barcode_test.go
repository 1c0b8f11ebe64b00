package utils

import (
	"bytes"
	"testing"

	"github.com/disintegration/imaging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenBarcodePNG(t *testing.T) {
	raw, err := TokenBarcodePNG("LX-000123", 400, 100)
	require.NoError(t, err)

	img, err := imaging.Decode(bytes.NewReader(raw))
	require.NoError(t, err)
	assert.Equal(t, 400+2*barcodeMargin, img.Bounds().Dx())
	assert.Equal(t, 100+2*barcodeMargin, img.Bounds().Dy())

	r, g, b, _ := img.At(0, 0).RGBA()
	assert.Equal(t, uint32(0xffff), r&g&b)

	_, err = TokenBarcodePNG("", 400, 100)
	assert.Error(t, err)
}

func TestTokenQRCodePNG(t *testing.T) {
	raw, err := TokenQRCodePNG("LX-000123", 200)
	require.NoError(t, err)

	img, err := imaging.Decode(bytes.NewReader(raw))
	require.NoError(t, err)
	assert.Equal(t, img.Bounds().Dx(), img.Bounds().Dy())
}
