package testutil

import (
	"bytes"
	"errors"
	"image"
	"image/color"
	"image/png"
	"testing"
)

func encode(t *testing.T, img image.Image) []byte {
	t.Helper()
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("encode: %v", err)
	}
	return buf.Bytes()
}

func TestAssertHelpers(t *testing.T) {
	t.Parallel()

	AssertNoError(t, nil)
	AssertError(t, errors.New("test error"))
}

func TestDecodePNGAndSize(t *testing.T) {
	t.Parallel()

	img := image.NewRGBA(image.Rect(0, 0, 7, 3))
	data := encode(t, img)

	got := DecodePNG(t, data)
	if got.Bounds().Dx() != 7 || got.Bounds().Dy() != 3 {
		t.Errorf("decoded bounds = %v, want 7x3", got.Bounds())
	}
	AssertPNGSize(t, data, 7, 3)
}

func TestCountNear(t *testing.T) {
	t.Parallel()

	img := image.NewRGBA(image.Rect(0, 0, 4, 4))
	blue := color.RGBA{R: 0x21, G: 0x96, B: 0xF3, A: 0xFF}
	img.Set(0, 0, blue)
	img.Set(1, 1, color.RGBA{R: 0x24, G: 0x93, B: 0xF0, A: 0xFF})
	img.Set(2, 2, color.RGBA{R: 0xFF, G: 0x98, B: 0x00, A: 0xFF})

	if n := CountNear(img, blue, 0); n != 1 {
		t.Errorf("exact match count = %d, want 1", n)
	}
	if n := CountNear(img, blue, 4); n != 2 {
		t.Errorf("tolerant match count = %d, want 2", n)
	}
}
