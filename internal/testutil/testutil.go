// Package testutil provides shared test utilities and fixtures.
//
// The helpers here decode and inspect rendered figures so renderer tests can
// assert on real PNG output rather than on drawing calls.
package testutil

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"testing"
)

// AssertNoError fails the test if err is not nil.
func AssertNoError(t *testing.T, err error) {
	t.Helper()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

// AssertError fails the test if err is nil.
func AssertError(t *testing.T, err error) {
	t.Helper()
	if err == nil {
		t.Fatal("expected error, got nil")
	}
}

// DecodePNG decodes data as a PNG image, failing the test otherwise.
func DecodePNG(t *testing.T, data []byte) image.Image {
	t.Helper()
	img, err := png.Decode(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("invalid PNG (%d bytes): %v", len(data), err)
	}
	return img
}

// AssertPNGSize fails the test unless data is a PNG of w x h pixels.
func AssertPNGSize(t *testing.T, data []byte, w, h int) {
	t.Helper()
	b := DecodePNG(t, data).Bounds()
	if b.Dx() != w || b.Dy() != h {
		t.Errorf("PNG size = %dx%d, want %dx%d", b.Dx(), b.Dy(), w, h)
	}
}

// CountNear returns the number of pixels whose RGB channels are each within
// tol (0-255 scale) of want. Alpha is ignored.
func CountNear(img image.Image, want color.Color, tol int) int {
	wr, wg, wb, _ := want.RGBA()
	n := 0
	b := img.Bounds()
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			r, g, bl, _ := img.At(x, y).RGBA()
			if near(r, wr, tol) && near(g, wg, tol) && near(bl, wb, tol) {
				n++
			}
		}
	}
	return n
}

func near(a, b uint32, tol int) bool {
	d := int(a>>8) - int(b>>8)
	return d <= tol && d >= -tol
}
