//go:build !nogpu

package gpu

import (
	"image"
	"image/color"
	"testing"

	"github.com/gogpu/trail"
)

func TestTexturePixels(t *testing.T) {
	tests := []struct {
		name         string
		w, h         int
		wantW, wantH int
	}{
		{"small kept", 64, 32, 64, 32},
		{"wide scaled", 4096, 512, 1024, 128},
		{"tall scaled", 100, 2048, 50, 1024},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			src := image.NewNRGBA(image.Rect(0, 0, tt.w, tt.h))
			pix, err := texturePixels(src)
			if err != nil {
				t.Fatal(err)
			}
			if pix.Rect.Dx() != tt.wantW || pix.Rect.Dy() != tt.wantH {
				t.Errorf("size = %dx%d, want %dx%d", pix.Rect.Dx(), pix.Rect.Dy(), tt.wantW, tt.wantH)
			}
		})
	}
}

func TestTexturePixelsConvertsAndOffsets(t *testing.T) {
	src := image.NewRGBA(image.Rect(10, 10, 12, 11))
	src.Set(10, 10, color.RGBA{R: 255, A: 255})
	src.Set(11, 10, color.RGBA{B: 128, A: 128})

	pix, err := texturePixels(src)
	if err != nil {
		t.Fatal(err)
	}
	if c := pix.NRGBAAt(0, 0); c.R != 255 || c.A != 255 {
		t.Errorf("texel 0 = %v", c)
	}
	// Premultiplied half-alpha blue becomes straight full blue.
	if c := pix.NRGBAAt(1, 0); c.B != 255 || c.A != 128 {
		t.Errorf("texel 1 = %v, want straight alpha", c)
	}
}

func TestTexturePixelsEmpty(t *testing.T) {
	if _, err := texturePixels(image.NewNRGBA(image.Rectangle{})); err == nil {
		t.Error("expected error for empty image")
	}
}

func TestUploadTexture(t *testing.T) {
	device, queue, cleanup := createNoopDevice(t)
	defer cleanup()

	tex, err := uploadTexture(device, queue, trail.SoftEdgeMask(16), "test_texture")
	if err != nil {
		t.Fatalf("uploadTexture: %v", err)
	}
	if tex.tex == nil || tex.view == nil {
		t.Error("texture or view missing")
	}
	tex.destroy(device)

	var none *trailTexture
	none.destroy(device)
}
