package cpu

import (
	"image"
	"image/color"
	"image/png"
	"os"

	"golang.org/x/image/draw"
)

// rgba converts any color to straight (non-premultiplied) RGBA bytes.
func rgba(c color.Color) [4]byte {
	n := color.NRGBAModel.Convert(c).(color.NRGBA)
	return [4]byte{n.R, n.G, n.B, n.A}
}

// GetFramebufferRGBA renders the display into a DisplayWidth×DisplayHeight
// RGBA8888 byte slice, painting set cells with fg and clear cells with bg.
func (c *CPU) GetFramebufferRGBA(fg, bg color.Color) []byte {
	on, off := rgba(fg), rgba(bg)

	pixels := make([]byte, DisplayWidth*DisplayHeight*4)
	for i, cell := range c.Display {
		if cell != 0 {
			copy(pixels[i*4:], on[:])
		} else {
			copy(pixels[i*4:], off[:])
		}
	}
	return pixels
}

// GetFramebufferImage returns the display as an unscaled *image.RGBA.
func (c *CPU) GetFramebufferImage(fg, bg color.Color) *image.RGBA {
	return &image.RGBA{
		Pix:    c.GetFramebufferRGBA(fg, bg),
		Stride: DisplayWidth * 4,
		Rect:   image.Rect(0, 0, DisplayWidth, DisplayHeight),
	}
}

// ScaledFramebufferImage enlarges the display by scale using nearest
// neighbour sampling so pixels stay square.
func (c *CPU) ScaledFramebufferImage(scale int, fg, bg color.Color) *image.RGBA {
	if scale < 1 {
		scale = 1
	}
	src := c.GetFramebufferImage(fg, bg)
	dst := image.NewRGBA(image.Rect(0, 0, DisplayWidth*scale, DisplayHeight*scale))
	draw.NearestNeighbor.Scale(dst, dst.Bounds(), src, src.Bounds(), draw.Src, nil)
	return dst
}

// SaveScreenshot encodes the scaled display as a PNG and writes it to filename.
func (c *CPU) SaveScreenshot(filename string, scale int, fg, bg color.Color) error {
	img := c.ScaledFramebufferImage(scale, fg, bg)
	f, err := os.Create(filename)
	if err != nil {
		return err
	}
	defer f.Close()
	return png.Encode(f, img)
}
