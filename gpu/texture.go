//go:build !nogpu

package gpu

import (
	"fmt"
	"image"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"
	"golang.org/x/image/draw"
)

// maxTextureSize bounds the edge length of uploaded trail textures.
// Larger images are scaled down before upload.
const maxTextureSize = 1024

// texturePixels converts img to tightly packed straight-alpha RGBA8,
// scaling it so neither edge exceeds maxTextureSize.
func texturePixels(img image.Image) (*image.NRGBA, error) {
	b := img.Bounds()
	if b.Empty() {
		return nil, fmt.Errorf("gpu: texture has empty bounds %v", b)
	}

	w, h := b.Dx(), b.Dy()
	if w > maxTextureSize || h > maxTextureSize {
		scale := float64(maxTextureSize) / float64(max(w, h))
		w = max(1, int(float64(w)*scale))
		h = max(1, int(float64(h)*scale))
	}

	dst := image.NewNRGBA(image.Rect(0, 0, w, h))
	if w == b.Dx() && h == b.Dy() {
		draw.Draw(dst, dst.Bounds(), img, b.Min, draw.Src)
	} else {
		draw.ApproxBiLinear.Scale(dst, dst.Bounds(), img, b, draw.Src, nil)
	}
	return dst, nil
}

// trailTexture is a sampled texture with its view.
type trailTexture struct {
	tex  hal.Texture
	view hal.TextureView
}

// uploadTexture creates a texture for img and uploads its pixels.
func uploadTexture(device hal.Device, queue hal.Queue, img image.Image, label string) (*trailTexture, error) {
	pix, err := texturePixels(img)
	if err != nil {
		return nil, err
	}
	w := uint32(pix.Rect.Dx()) //nolint:gosec // bounded by maxTextureSize
	h := uint32(pix.Rect.Dy()) //nolint:gosec // bounded by maxTextureSize

	tex, err := device.CreateTexture(&hal.TextureDescriptor{
		Label:         label,
		Size:          hal.Extent3D{Width: w, Height: h, DepthOrArrayLayers: 1},
		MipLevelCount: 1,
		SampleCount:   1,
		Dimension:     gputypes.TextureDimension2D,
		Format:        gputypes.TextureFormatRGBA8Unorm,
		Usage:         gputypes.TextureUsageTextureBinding | gputypes.TextureUsageCopyDst,
	})
	if err != nil {
		return nil, fmt.Errorf("create %s: %w", label, err)
	}

	view, err := device.CreateTextureView(tex, &hal.TextureViewDescriptor{
		Label:         label + "_view",
		Format:        gputypes.TextureFormatRGBA8Unorm,
		Dimension:     gputypes.TextureViewDimension2D,
		Aspect:        gputypes.TextureAspectAll,
		MipLevelCount: 1,
	})
	if err != nil {
		device.DestroyTexture(tex)
		return nil, fmt.Errorf("create %s view: %w", label, err)
	}

	if err := queue.WriteTexture(
		&hal.ImageCopyTexture{
			Texture:  tex,
			MipLevel: 0,
		},
		pix.Pix,
		&hal.ImageDataLayout{
			Offset:       0,
			BytesPerRow:  uint32(pix.Stride), //nolint:gosec // bounded by maxTextureSize
			RowsPerImage: h,
		},
		&hal.Extent3D{Width: w, Height: h, DepthOrArrayLayers: 1},
	); err != nil {
		device.DestroyTextureView(view)
		device.DestroyTexture(tex)
		return nil, fmt.Errorf("upload %s: %w", label, err)
	}

	return &trailTexture{tex: tex, view: view}, nil
}

func (t *trailTexture) destroy(device hal.Device) {
	if t == nil {
		return
	}
	if t.view != nil {
		device.DestroyTextureView(t.view)
	}
	if t.tex != nil {
		device.DestroyTexture(t.tex)
	}
}
