// Package draw renders to a terminal using half-block characters, giving 2x
// vertical resolution. It is the demo's renderer; the loop core knows nothing
// about it.
package draw

import (
	"fmt"
	"io"
	"math"
	"strings"
)

// Half-block characters used for rendering.
const (
	BlockFull      = '█'
	BlockUpperHalf = '▀'
	BlockLowerHalf = '▄'
)

// Point is a position in logical coordinates.
type Point struct {
	X, Y float64
}

// Canvas is a drawing buffer mapping a fixed logical coordinate space onto
// the actual terminal, with 2x vertical sub-pixel resolution.
type Canvas struct {
	termWidth  int
	termHeight int
	subHeight  int    // termHeight * 2
	pixels     []bool // [y*termWidth + x]

	logicalWidth  float64
	logicalHeight float64 // in sub-pixels
	scaleX        float64
	scaleY        float64

	// 0-based terminal offsets for centering in oversized terminals.
	offsetCol int
	offsetRow int

	renderBuf strings.Builder
}

// NewCanvas creates a canvas that scales logical coordinates to the given
// terminal dimensions.
func NewCanvas(termWidth, termHeight int, logicalWidth, logicalHeight float64) *Canvas {
	c := &Canvas{
		logicalWidth:  logicalWidth,
		logicalHeight: logicalHeight,
	}
	c.Resize(termWidth, termHeight)
	return c
}

// Resize adapts the canvas to new terminal dimensions, keeping the logical
// coordinate space.
func (c *Canvas) Resize(termWidth, termHeight int) {
	subHeight := termHeight * 2
	if termWidth != c.termWidth || termHeight != c.termHeight {
		c.pixels = make([]bool, subHeight*termWidth)
		c.termWidth = termWidth
		c.termHeight = termHeight
		c.subHeight = subHeight
	}
	c.scaleX = float64(termWidth) / c.logicalWidth
	c.scaleY = float64(subHeight) / c.logicalHeight
}

// SetOffset sets 0-based terminal offsets applied to all rendered output.
func (c *Canvas) SetOffset(col, row int) {
	c.offsetCol = col
	c.offsetRow = row
}

// Size returns the current terminal dimensions the canvas renders to.
func (c *Canvas) Size() (width, height int) {
	return c.termWidth, c.termHeight
}

// Clear resets all pixels.
func (c *Canvas) Clear() {
	clear(c.pixels)
}

func (c *Canvas) setPixel(x, y int) {
	if x >= 0 && x < c.termWidth && y >= 0 && y < c.subHeight {
		c.pixels[y*c.termWidth+x] = true
	}
}

// Set sets a pixel at logical coordinates.
func (c *Canvas) Set(x, y float64) {
	c.setPixel(int(math.Round(x*c.scaleX)), int(math.Round(y*c.scaleY)))
}

// DrawLine draws a line between two logical points using Bresenham's
// algorithm in pixel space.
func (c *Canvas) DrawLine(p1, p2 Point) {
	x1 := int(math.Round(p1.X * c.scaleX))
	y1 := int(math.Round(p1.Y * c.scaleY))
	x2 := int(math.Round(p2.X * c.scaleX))
	y2 := int(math.Round(p2.Y * c.scaleY))

	dx := abs(x2 - x1)
	dy := abs(y2 - y1)
	sx, sy := 1, 1
	if x1 > x2 {
		sx = -1
	}
	if y1 > y2 {
		sy = -1
	}

	err := dx - dy
	for {
		c.setPixel(x1, y1)
		if x1 == x2 && y1 == y2 {
			return
		}
		e2 := 2 * err
		if e2 > -dy {
			err -= dy
			x1 += sx
		}
		if e2 < dx {
			err += dx
			y1 += sy
		}
	}
}

// DrawCircle draws a filled circle centered at a logical point with a logical
// radius. The fill scans the bounding box in pixel space, which is fine for
// the small radii the demo uses.
func (c *Canvas) DrawCircle(center Point, radius float64) {
	cx := center.X * c.scaleX
	cy := center.Y * c.scaleY
	rx := math.Max(radius*c.scaleX, 0.5)
	ry := math.Max(radius*c.scaleY, 0.5)

	for y := int(math.Floor(cy - ry)); y <= int(math.Ceil(cy+ry)); y++ {
		for x := int(math.Floor(cx - rx)); x <= int(math.Ceil(cx+rx)); x++ {
			dx := (float64(x) - cx) / rx
			dy := (float64(y) - cy) / ry
			if dx*dx+dy*dy <= 1.0 {
				c.setPixel(x, y)
			}
		}
	}
}

// maxChunkSize is the maximum bytes to write at once. 1400 stays under a
// typical MTU so frames flow smoothly over SSH.
const maxChunkSize = 1400

// Render writes the canvas to w as half-block characters, skipping empty
// cells and chunking output for network-friendly flushing.
func (c *Canvas) Render(w io.Writer) {
	c.renderBuf.Reset()
	c.renderBuf.Grow(c.termWidth * c.termHeight * 12)

	for row := 0; row < c.termHeight; row++ {
		topOffset := row * 2 * c.termWidth
		bottomOffset := topOffset + c.termWidth

		for col := 0; col < c.termWidth; col++ {
			top := c.pixels[topOffset+col]
			bottom := c.pixels[bottomOffset+col]

			var ch rune
			switch {
			case top && bottom:
				ch = BlockFull
			case top:
				ch = BlockUpperHalf
			case bottom:
				ch = BlockLowerHalf
			default:
				continue
			}

			fmt.Fprintf(&c.renderBuf, "\033[%d;%dH%c", row+1+c.offsetRow, col+1+c.offsetCol, ch)
		}
	}

	data := c.renderBuf.String()
	for len(data) > 0 {
		chunk := data
		if len(chunk) > maxChunkSize {
			chunk = data[:maxChunkSize]
		}
		io.WriteString(w, chunk)
		data = data[len(chunk):]
	}
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
