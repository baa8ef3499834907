package cpu

import "gochip8/pkg/grid"

// SpriteWidth is the fixed width of a sprite row in pixels.
const SpriteWidth = 8

// drawSprite XORs an n-row sprite read from memory at I onto the display
// with its top-left corner at (x, y).
//
// Rows falling below the bottom edge wrap by shifting the origin up by
// one full display height; a row that is still off the display after that
// shift is dropped. Columns past the right edge are clipped, not wrapped.
//
// VF is rewritten for every pixel drawn: 1 if that pixel was turned off,
// else 0. Only the last drawn pixel's outcome survives.
func (c *CPU) drawSprite(x, y byte, n uint8) error {
	if err := c.checkRange(c.I, uint16(n)); err != nil {
		return err
	}

	c.V[RegF] = 0
	originY := int(y)

	for row := 0; row < int(n); row++ {
		if originY+row >= DisplayHeight {
			originY -= DisplayHeight
		}
		py := originY + row
		if py < 0 || py >= DisplayHeight {
			continue
		}

		bits := c.Memory[int(c.I)+row]
		for col := 0; col < SpriteWidth; col++ {
			px := int(x) + col
			if px >= DisplayWidth {
				continue
			}

			bit := (bits >> (SpriteWidth - 1 - col)) & 0x01
			idx := grid.GetIndex(px, py, DisplayWidth)
			before := c.Display[idx]
			c.Display[idx] ^= bit
			if before == 1 && c.Display[idx] == 0 {
				c.V[RegF] = 1
			} else {
				c.V[RegF] = 0
			}
		}
	}

	c.Redraw = true
	return nil
}
