package imaging

import (
	"bytes"
	"image"
	"image/color"
	"image/jpeg"
	"testing"
)

// makeJPEG encodes a width x height test image.
func makeJPEG(t *testing.T, width, height int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for x := 0; x < width; x++ {
		for y := 0; y < height; y++ {
			img.Set(x, y, color.RGBA{R: uint8(x % 256), G: uint8(y % 256), B: 128, A: 255})
		}
	}
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: 90}); err != nil {
		t.Fatalf("failed to encode test image: %v", err)
	}
	return buf.Bytes()
}

func TestValidate(t *testing.T) {
	data := makeJPEG(t, 64, 48)

	width, height, err := Validate(data)
	if err != nil {
		t.Fatalf("Validate failed: %v", err)
	}
	if width != 64 || height != 48 {
		t.Errorf("expected 64x48, got %dx%d", width, height)
	}
}

func TestValidate_RejectsGarbage(t *testing.T) {
	if _, _, err := Validate([]byte("definitely not an image")); err == nil {
		t.Error("expected error for non-image data")
	}
}

func TestPrepare_SmallImageUnchanged(t *testing.T) {
	data := makeJPEG(t, 100, 80)

	out, err := Prepare(data, 200)
	if err != nil {
		t.Fatalf("Prepare failed: %v", err)
	}
	if !bytes.Equal(out, data) {
		t.Error("expected image within bounds to pass through unchanged")
	}
}

func TestPrepare_DownscalesLargeImage(t *testing.T) {
	data := makeJPEG(t, 400, 200)

	out, err := Prepare(data, 100)
	if err != nil {
		t.Fatalf("Prepare failed: %v", err)
	}

	cfg, _, err := image.DecodeConfig(bytes.NewReader(out))
	if err != nil {
		t.Fatalf("failed to decode prepared image: %v", err)
	}
	if cfg.Width != 100 || cfg.Height != 50 {
		t.Errorf("expected 100x50 after downscale, got %dx%d", cfg.Width, cfg.Height)
	}
}

func TestPrepare_PortraitAspectRatio(t *testing.T) {
	data := makeJPEG(t, 200, 400)

	out, err := Prepare(data, 100)
	if err != nil {
		t.Fatalf("Prepare failed: %v", err)
	}

	cfg, _, err := image.DecodeConfig(bytes.NewReader(out))
	if err != nil {
		t.Fatalf("failed to decode prepared image: %v", err)
	}
	if cfg.Width != 50 || cfg.Height != 100 {
		t.Errorf("expected 50x100 after downscale, got %dx%d", cfg.Width, cfg.Height)
	}
}

func TestPrepare_InvalidData(t *testing.T) {
	if _, err := Prepare([]byte{0x00, 0x01}, 100); err == nil {
		t.Error("expected error for invalid image data")
	}
}
