package utils

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/color"

	"github.com/boombuler/barcode"
	"github.com/boombuler/barcode/code128"
	"github.com/boombuler/barcode/qr"
	"github.com/disintegration/imaging"
)

const barcodeMargin = 20

// TokenBarcodePNG renders serial as a Code128 barcode on a white margin
func TokenBarcodePNG(serial string, width, height int) ([]byte, error) {
	if serial == "" {
		return nil, errors.New("empty token serial")
	}
	code, err := code128.Encode(serial)
	if err != nil {
		return nil, fmt.Errorf("encode code128: %w", err)
	}
	if minWidth := code.Bounds().Dx(); width < minWidth {
		width = minWidth
	}
	scaled, err := barcode.Scale(code, width, height)
	if err != nil {
		return nil, fmt.Errorf("scale barcode: %w", err)
	}
	return padAndEncode(scaled)
}

// TokenQRCodePNG renders content as a square QR code on a white margin
func TokenQRCodePNG(content string, size int) ([]byte, error) {
	code, err := qr.Encode(content, qr.M, qr.Auto)
	if err != nil {
		return nil, fmt.Errorf("encode qr: %w", err)
	}
	scaled, err := barcode.Scale(code, size, size)
	if err != nil {
		return nil, fmt.Errorf("scale qr: %w", err)
	}
	return padAndEncode(scaled)
}

func padAndEncode(img image.Image) ([]byte, error) {
	b := img.Bounds()
	canvas := imaging.New(b.Dx()+2*barcodeMargin, b.Dy()+2*barcodeMargin, color.White)
	canvas = imaging.Paste(canvas, img, image.Pt(barcodeMargin, barcodeMargin))

	var buf bytes.Buffer
	if err := imaging.Encode(&buf, canvas, imaging.PNG); err != nil {
		return nil, fmt.Errorf("encode png: %w", err)
	}
	return buf.Bytes(), nil
}
