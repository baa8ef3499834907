package cpu

import (
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"
)

var (
	testFG = color.RGBA{0xDD, 0xDD, 0xDD, 0xFF}
	testBG = color.RGBA{0x22, 0x22, 0x22, 0xFF}
)

func TestGetFramebufferRGBA(t *testing.T) {
	c := NewCPU()
	c.Display[0] = 1
	c.Display[DisplayWidth+1] = 1

	pixels := c.GetFramebufferRGBA(testFG, testBG)
	if len(pixels) != DisplayWidth*DisplayHeight*4 {
		t.Fatalf("length: expected %d, got %d", DisplayWidth*DisplayHeight*4, len(pixels))
	}

	check := func(idx int, want color.RGBA) {
		base := idx * 4
		got := color.RGBA{pixels[base], pixels[base+1], pixels[base+2], pixels[base+3]}
		if got != want {
			t.Errorf("pixel %d: expected %v, got %v", idx, want, got)
		}
	}
	check(0, testFG)
	check(1, testBG)
	check(DisplayWidth+1, testFG)
	check(DisplayWidth*DisplayHeight-1, testBG)
}

func TestGetFramebufferImage(t *testing.T) {
	c := NewCPU()
	img := c.GetFramebufferImage(testFG, testBG)
	if img.Rect.Dx() != DisplayWidth || img.Rect.Dy() != DisplayHeight {
		t.Errorf("image size: expected %dx%d, got %dx%d", DisplayWidth, DisplayHeight, img.Rect.Dx(), img.Rect.Dy())
	}
	if img.Stride != DisplayWidth*4 {
		t.Errorf("image stride: expected %d, got %d", DisplayWidth*4, img.Stride)
	}
}

func TestScaledFramebufferImage(t *testing.T) {
	c := NewCPU()
	c.Display[0] = 1
	img := c.ScaledFramebufferImage(3, testFG, testBG)
	if img.Rect.Dx() != DisplayWidth*3 || img.Rect.Dy() != DisplayHeight*3 {
		t.Fatalf("scaled size: got %dx%d", img.Rect.Dx(), img.Rect.Dy())
	}
	for y := 0; y < 3; y++ {
		for x := 0; x < 3; x++ {
			if got := img.RGBAAt(x, y); got != testFG {
				t.Errorf("(%d,%d): expected fg, got %v", x, y, got)
			}
		}
	}
	if got := img.RGBAAt(3, 0); got != testBG {
		t.Errorf("(3,0): expected bg, got %v", got)
	}
}

func TestSaveScreenshot(t *testing.T) {
	c := NewCPU()
	c.Display[0] = 1
	path := filepath.Join(t.TempDir(), "shot.png")
	if err := c.SaveScreenshot(path, 2, testFG, testBG); err != nil {
		t.Fatalf("SaveScreenshot: %v", err)
	}

	f, err := os.Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	img, err := png.Decode(f)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if b := img.Bounds(); b.Dx() != DisplayWidth*2 || b.Dy() != DisplayHeight*2 {
		t.Errorf("screenshot size: got %dx%d", b.Dx(), b.Dy())
	}
}
