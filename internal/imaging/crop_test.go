package imaging

import (
	"encoding/base64"
	"image"
	"image/color"
	"image/png"
	"strings"
	"testing"
)

func TestCrop(t *testing.T) {
	img := createPatternImage(100, 100)

	result, err := Crop(img, 0, 0, 50, 50, 1.0)
	if err != nil {
		t.Fatalf("Crop failed: %v", err)
	}

	if result.Width != 50 || result.Height != 50 {
		t.Errorf("dimensions: got %dx%d, want 50x50", result.Width, result.Height)
	}

	if result.MimeType != "image/png" {
		t.Errorf("MimeType: got %s, want image/png", result.MimeType)
	}

	// Verify base64 can be decoded
	_, err = base64.StdEncoding.DecodeString(result.ImageBase64)
	if err != nil {
		t.Errorf("failed to decode base64: %v", err)
	}
}

func TestCrop_WithScale(t *testing.T) {
	img := createInMemoryImage(100, 100, color.RGBA{255, 0, 0, 255})

	// Scale up 2x
	result, err := Crop(img, 0, 0, 50, 50, 2.0)
	if err != nil {
		t.Fatalf("Crop with scale failed: %v", err)
	}

	if result.Width != 100 || result.Height != 100 {
		t.Errorf("scaled dimensions: got %dx%d, want 100x100", result.Width, result.Height)
	}
}

func TestCrop_ScaleDown(t *testing.T) {
	img := createInMemoryImage(100, 100, color.RGBA{255, 0, 0, 255})

	// Scale down 0.5x
	result, err := Crop(img, 0, 0, 100, 100, 0.5)
	if err != nil {
		t.Fatalf("Crop with scale down failed: %v", err)
	}

	if result.Width != 50 || result.Height != 50 {
		t.Errorf("scaled dimensions: got %dx%d, want 50x50", result.Width, result.Height)
	}
}

func TestCrop_OutOfBounds(t *testing.T) {
	img := createInMemoryImage(100, 100, color.RGBA{255, 0, 0, 255})

	tests := []struct {
		name           string
		x1, y1, x2, y2 int
	}{
		{"x1 negative", -1, 0, 50, 50},
		{"y1 negative", 0, -1, 50, 50},
		{"x2 too large", 0, 0, 101, 50},
		{"y2 too large", 0, 0, 50, 101},
		{"all out of bounds", -1, -1, 200, 200},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Crop(img, tt.x1, tt.y1, tt.x2, tt.y2, 1.0)
			if err == nil {
				t.Error("Crop should fail for out-of-bounds coordinates")
			}
		})
	}
}

func TestCrop_InvalidRegion(t *testing.T) {
	img := createInMemoryImage(100, 100, color.RGBA{255, 0, 0, 255})

	tests := []struct {
		name           string
		x1, y1, x2, y2 int
	}{
		{"x1 >= x2", 50, 0, 50, 50},
		{"x1 > x2", 60, 0, 50, 50},
		{"y1 >= y2", 0, 50, 50, 50},
		{"y1 > y2", 0, 60, 50, 50},
		{"zero area", 50, 50, 50, 50},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Crop(img, tt.x1, tt.y1, tt.x2, tt.y2, 1.0)
			if err == nil {
				t.Error("Crop should fail for invalid region")
			}
		})
	}
}

func TestCrop_FullImage(t *testing.T) {
	img := createInMemoryImage(100, 100, color.RGBA{255, 0, 0, 255})

	result, err := Crop(img, 0, 0, 100, 100, 1.0)
	if err != nil {
		t.Fatalf("Crop full image failed: %v", err)
	}

	if result.Width != 100 || result.Height != 100 {
		t.Errorf("dimensions: got %dx%d, want 100x100", result.Width, result.Height)
	}
}

func TestCrop_VerifyContent(t *testing.T) {
	img := createPatternImage(100, 100)

	// Crop top-left quadrant (should be red)
	result, err := Crop(img, 0, 0, 50, 50, 1.0)
	if err != nil {
		t.Fatalf("Crop failed: %v", err)
	}

	// Decode the result and verify color
	decoded, err := base64.StdEncoding.DecodeString(result.ImageBase64)
	if err != nil {
		t.Fatalf("failed to decode base64: %v", err)
	}

	croppedImg, err := png.Decode(strings.NewReader(string(decoded)))
	if err != nil {
		t.Fatalf("failed to decode PNG: %v", err)
	}

	// Sample center pixel - should be red
	r, g, b, _ := croppedImg.At(25, 25).RGBA()
	r8, g8, b8 := uint8(r>>8), uint8(g>>8), uint8(b>>8)

	if r8 != 255 || g8 != 0 || b8 != 0 {
		t.Errorf("cropped image color: got (%d,%d,%d), want (255,0,0)", r8, g8, b8)
	}
}

func TestCrop_OffsetBounds(t *testing.T) {
	img := image.NewRGBA(image.Rect(100, 100, 140, 140))
	for y := 100; y < 140; y++ {
		for x := 100; x < 140; x++ {
			img.Set(x, y, color.RGBA{0, 0, 255, 255})
		}
	}
	img.Set(100, 100, color.RGBA{255, 0, 0, 255})

	// Coordinates are relative to the image origin.
	result, err := Crop(img, 0, 0, 10, 10, 1.0)
	if err != nil {
		t.Fatalf("Crop failed: %v", err)
	}
	decoded, _ := base64.StdEncoding.DecodeString(result.ImageBase64)
	croppedImg, err := png.Decode(strings.NewReader(string(decoded)))
	if err != nil {
		t.Fatalf("failed to decode PNG: %v", err)
	}
	r, _, b, _ := croppedImg.At(0, 0).RGBA()
	if r>>8 != 255 || b>>8 != 0 {
		t.Errorf("origin pixel: got r=%d b=%d, want red", r>>8, b>>8)
	}

	if _, err := Crop(img, 0, 0, 41, 10, 1.0); err == nil {
		t.Error("Crop should fail past the relative bounds")
	}
}

func TestCrop_AutoCropBox(t *testing.T) {
	img := solidNRGBA(100, 80, white)
	fillRect(img, image.Rect(30, 20, 50, 40), red)

	ac, err := AutoCrop(img, DefaultOptions())
	if err != nil {
		t.Fatalf("AutoCrop failed: %v", err)
	}
	box := ac.Box
	if box != (Box{25, 15, 54, 44}) {
		t.Fatalf("box: got %v, want (25,15)-(54,44)", box)
	}

	// Box edges are inclusive; Crop takes an exclusive far corner.
	result, err := Crop(img, box.Left, box.Top, box.Right+1, box.Bottom+1, 1.0)
	if err != nil {
		t.Fatalf("Crop failed: %v", err)
	}
	if result.Width != ac.Width || result.Height != ac.Height {
		t.Errorf("dimensions: got %dx%d, want %dx%d", result.Width, result.Height, ac.Width, ac.Height)
	}

	decoded, err := base64.StdEncoding.DecodeString(result.ImageBase64)
	if err != nil {
		t.Fatalf("failed to decode base64: %v", err)
	}
	croppedImg, err := png.Decode(strings.NewReader(string(decoded)))
	if err != nil {
		t.Fatalf("failed to decode PNG: %v", err)
	}
	if got := color.NRGBAModel.Convert(croppedImg.At(0, 0)).(color.NRGBA); got != white {
		t.Errorf("padding pixel: got %v, want white", got)
	}
	for _, p := range []image.Point{{5, 5}, {24, 24}} {
		if got := color.NRGBAModel.Convert(croppedImg.At(p.X, p.Y)).(color.NRGBA); got != red {
			t.Errorf("content pixel %v: got %v, want red", p, got)
		}
	}
	if got := color.NRGBAModel.Convert(croppedImg.At(25, 25)).(color.NRGBA); got != white {
		t.Errorf("pixel past content: got %v, want white", got)
	}
}

func TestEncodeBase64(t *testing.T) {
	result, err := EncodeBase64(image.NewNRGBA(image.Rect(0, 0, 7, 3)))
	if err != nil {
		t.Fatalf("EncodeBase64 failed: %v", err)
	}
	if result.Width != 7 || result.Height != 3 {
		t.Errorf("dimensions: got %dx%d, want 7x3", result.Width, result.Height)
	}
	if result.MimeType != "image/png" {
		t.Errorf("MimeType: got %s, want image/png", result.MimeType)
	}
}
