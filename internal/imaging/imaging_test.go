package imaging

import (
	"bytes"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"testing"
)

func testPNG(w, h int) []byte {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for x := 0; x < w; x++ {
		for y := 0; y < h; y++ {
			img.Set(x, y, color.RGBA{0, 128, 0, 255})
		}
	}
	var buf bytes.Buffer
	png.Encode(&buf, img)
	return buf.Bytes()
}

func TestPreparePhotoReencodesAsJPEG(t *testing.T) {
	photo, err := PreparePhoto(bytes.NewReader(testPNG(100, 60)))
	if err != nil {
		t.Fatalf("PreparePhoto: %v", err)
	}
	if photo.MIME != "image/jpeg" {
		t.Errorf("expected image/jpeg, got %s", photo.MIME)
	}
	if len(photo.Data) == 0 {
		t.Error("expected non-empty photo data")
	}
}

func TestPreparePhotoDownscales(t *testing.T) {
	photo, err := PreparePhoto(bytes.NewReader(testPNG(2000, 500)))
	if err != nil {
		t.Fatalf("PreparePhoto: %v", err)
	}

	img, err := jpeg.Decode(bytes.NewReader(photo.Data))
	if err != nil {
		t.Fatalf("decoding result: %v", err)
	}
	if img.Bounds().Dx() != MaxPhotoDimension {
		t.Errorf("expected width %d, got %d", MaxPhotoDimension, img.Bounds().Dx())
	}
	if img.Bounds().Dy() != 200 {
		t.Errorf("expected aspect-preserving height 200, got %d", img.Bounds().Dy())
	}
}

func TestPreparePhotoSmallImageUnscaled(t *testing.T) {
	photo, err := PreparePhoto(bytes.NewReader(testPNG(50, 40)))
	if err != nil {
		t.Fatalf("PreparePhoto: %v", err)
	}

	img, _ := jpeg.Decode(bytes.NewReader(photo.Data))
	if img.Bounds().Dx() != 50 || img.Bounds().Dy() != 40 {
		t.Errorf("expected 50x40 unchanged, got %dx%d", img.Bounds().Dx(), img.Bounds().Dy())
	}
}

func TestPreparePhotoRejectsNonImage(t *testing.T) {
	if _, err := PreparePhoto(bytes.NewReader([]byte("not an image"))); err == nil {
		t.Error("expected error for non-image data")
	}
}
