package term

import (
	"github.com/gdamore/tcell/v2"
)

// canvas is a grid of braille dots, two wide and four tall per cell, each
// carrying the color of the last primitive that covered it.
type canvas struct {
	cols, rows int
	dots       []bool
	colors     []tcell.Color
}

func newCanvas(cols, rows int) *canvas {
	n := cols * dotsPerCellX * rows * dotsPerCellY
	return &canvas{
		cols:   cols,
		rows:   rows,
		dots:   make([]bool, n),
		colors: make([]tcell.Color, n),
	}
}

func (c *canvas) pixelWidth() int  { return c.cols * dotsPerCellX }
func (c *canvas) pixelHeight() int { return c.rows * dotsPerCellY }

func (c *canvas) clear() {
	clear(c.dots)
	for i := range c.colors {
		c.colors[i] = tcell.ColorDefault
	}
}

func (c *canvas) set(x, y int, color tcell.Color) {
	if x < 0 || y < 0 || x >= c.pixelWidth() || y >= c.pixelHeight() {
		return
	}
	i := y*c.pixelWidth() + x
	c.dots[i] = true
	c.colors[i] = color
}

func (c *canvas) lit(x, y int) bool {
	if x < 0 || y < 0 || x >= c.pixelWidth() || y >= c.pixelHeight() {
		return false
	}
	return c.dots[y*c.pixelWidth()+x]
}

// render writes one braille rune per cell. A cell takes the color of its
// top-left-most lit dot.
func (c *canvas) render(screen tcell.Screen) {
	pw := c.pixelWidth()
	for cy := range c.rows {
		for cx := range c.cols {
			braille := rune(brailleBlank)
			color := tcell.ColorDefault
			best := -1

			for dy := range dotsPerCellY {
				for dx := range dotsPerCellX {
					i := (cy*dotsPerCellY+dy)*pw + cx*dotsPerCellX + dx
					if !c.dots[i] {
						continue
					}
					braille |= brailleBit(dx, dy)
					if priority := (dotsPerCellY-1-dy)*dotsPerCellX + (dotsPerCellX - 1 - dx); priority > best {
						best = priority
						color = c.colors[i]
					}
				}
			}

			if braille != brailleBlank {
				screen.SetContent(cx, cy, braille, nil, tcell.StyleDefault.Foreground(color))
			}
		}
	}
}

func brailleBit(x, y int) rune {
	offsets := [dotsPerCellX][dotsPerCellY]rune{
		{0x01, 0x02, 0x04, 0x40},
		{0x08, 0x10, 0x20, 0x80},
	}
	return offsets[x][y]
}
