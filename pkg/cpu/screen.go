package cpu

import (
	"image"
	"image/png"
	"os"

	"hackvm/pkg/grid"
)

// Screen geometry. Each row is 32 words; bit 0 of a word is its leftmost
// pixel and a set bit is black.
const (
	ScreenWidth  = 512
	ScreenHeight = 256
	wordsPerRow  = ScreenWidth / 16
)

var (
	pixelOn  = [4]byte{0x00, 0x00, 0x00, 0xFF}
	pixelOff = [4]byte{0xFF, 0xFF, 0xFF, 0xFF}
)

// GetFramebufferRGBA decodes the screen memory map into a 512×256
// RGBA8888 byte slice.
func (c *CPU) GetFramebufferRGBA() []byte {
	pixels := make([]byte, ScreenWidth*ScreenHeight*4)

	for wordIdx := 0; wordIdx < ScreenWords; wordIdx++ {
		word := c.RAM[ScreenBase+wordIdx]
		wx, row := grid.GetGridCoords(wordIdx, wordsPerRow)
		for bit := 0; bit < 16; bit++ {
			px := pixelOff
			if word&(1<<bit) != 0 {
				px = pixelOn
			}
			copy(pixels[grid.GetIndex(wx*16+bit, row, ScreenWidth)*4:], px[:])
		}
	}

	return pixels
}

// GetFramebufferImage returns the screen as an *image.RGBA.
func (c *CPU) GetFramebufferImage() *image.RGBA {
	return &image.RGBA{
		Pix:    c.GetFramebufferRGBA(),
		Stride: ScreenWidth * 4,
		Rect:   image.Rect(0, 0, ScreenWidth, ScreenHeight),
	}
}

// PixelAt reports whether the pixel at (x, y) is black.
func (c *CPU) PixelAt(x, y int) bool {
	if x < 0 || y < 0 || x >= ScreenWidth || y >= ScreenHeight {
		return false
	}
	word := c.RAM[ScreenBase+grid.GetIndex(x/16, y, wordsPerRow)]
	return word&(1<<(x%16)) != 0
}

// SaveScreenshot encodes the screen as a PNG and writes it to filename.
func (c *CPU) SaveScreenshot(filename string) error {
	img := c.GetFramebufferImage()
	f, err := os.Create(filename)
	if err != nil {
		return err
	}
	defer f.Close()
	return png.Encode(f, img)
}
