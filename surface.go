package aspen

import (
	"image"
	"image/color"
	"math"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/vector"
)

// Surface is the abstract 2D drawing contract the engine renders against:
// affine transforms with a save/restore stack, an alpha stack, and a small
// set of filled primitives. Entities draw through this interface only, so a
// host can substitute its own backend (or a recording surface in tests).
//
// All primitive coordinates are in the current local frame; transforms are
// applied in local space, so Translate/Rotate/Scale compose the way a scene
// graph expects.
type Surface interface {
	Save()
	Restore()
	Translate(x, y float64)
	Scale(sx, sy float64)
	Rotate(radians float64)
	MulAlpha(a float64)

	FillRect(x, y, w, h float64, c Color)
	FillRoundedRect(x, y, w, h, radius float64, c Color)
	FillCircle(cx, cy, r float64, c Color)
	DrawImage(img *ebiten.Image)
	DrawText(text string, x, y float64)
}

// whiteImage backs solid-color primitives. The 1x1 center of a 3x3 white
// image is used as the triangle texture so filtering never samples past the
// edge.
var (
	whiteImage    = ebiten.NewImage(3, 3)
	whiteSubImage = whiteImage.SubImage(image.Rect(1, 1, 2, 2)).(*ebiten.Image)
)

func init() {
	whiteImage.Fill(color.White)
}

type surfaceState struct {
	geom  ebiten.GeoM
	alpha float64
}

// canvas is the ebiten-backed Surface. It keeps a transform and alpha stack
// and submits primitives as transformed triangles or draw-image calls.
type canvas struct {
	screen *ebiten.Image
	cur    surfaceState
	stack  []surfaceState

	// scratch buffers reused across fills within a frame
	verts   []ebiten.Vertex
	indices []uint16
}

// NewSurface wraps an ebiten image as a Surface.
func NewSurface(screen *ebiten.Image) Surface {
	return newCanvas(screen)
}

func newCanvas(screen *ebiten.Image) *canvas {
	return &canvas{
		screen: screen,
		cur:    surfaceState{alpha: 1},
	}
}

func (c *canvas) Save() {
	c.stack = append(c.stack, c.cur)
}

func (c *canvas) Restore() {
	if n := len(c.stack); n > 0 {
		c.cur = c.stack[n-1]
		c.stack = c.stack[:n-1]
	}
}

// concat applies m in the current local frame: cur = cur ∘ m.
func (c *canvas) concat(m ebiten.GeoM) {
	m.Concat(c.cur.geom)
	c.cur.geom = m
}

func (c *canvas) Translate(x, y float64) {
	var m ebiten.GeoM
	m.Translate(x, y)
	c.concat(m)
}

func (c *canvas) Scale(sx, sy float64) {
	var m ebiten.GeoM
	m.Scale(sx, sy)
	c.concat(m)
}

func (c *canvas) Rotate(radians float64) {
	var m ebiten.GeoM
	m.Rotate(radians)
	c.concat(m)
}

func (c *canvas) MulAlpha(a float64) {
	c.cur.alpha *= a
}

// fillPath tessellates the path, transforms the vertices through the current
// matrix, colors them, and submits one DrawTriangles call.
func (c *canvas) fillPath(p *vector.Path, col Color) {
	c.verts, c.indices = p.AppendVerticesAndIndicesForFilling(c.verts[:0], c.indices[:0])

	a := col.A * c.cur.alpha
	if a > 1 {
		a = 1
	}
	// Premultiplied, matching ebiten's default color scale mode.
	cr := float32(col.R * a)
	cg := float32(col.G * a)
	cb := float32(col.B * a)
	ca := float32(a)

	for i := range c.verts {
		x, y := c.cur.geom.Apply(float64(c.verts[i].DstX), float64(c.verts[i].DstY))
		c.verts[i].DstX = float32(x)
		c.verts[i].DstY = float32(y)
		c.verts[i].SrcX = 1
		c.verts[i].SrcY = 1
		c.verts[i].ColorR = cr
		c.verts[i].ColorG = cg
		c.verts[i].ColorB = cb
		c.verts[i].ColorA = ca
	}

	op := &ebiten.DrawTrianglesOptions{AntiAlias: true}
	c.screen.DrawTriangles(c.verts, c.indices, whiteSubImage, op)
}

func (c *canvas) FillRect(x, y, w, h float64, col Color) {
	var p vector.Path
	p.MoveTo(float32(x), float32(y))
	p.LineTo(float32(x+w), float32(y))
	p.LineTo(float32(x+w), float32(y+h))
	p.LineTo(float32(x), float32(y+h))
	p.Close()
	c.fillPath(&p, col)
}

func (c *canvas) FillRoundedRect(x, y, w, h, radius float64, col Color) {
	r := radius
	if lim := math.Min(w, h) / 2; r > lim {
		r = lim
	}
	if r <= 0 {
		c.FillRect(x, y, w, h, col)
		return
	}
	x0, y0 := float32(x), float32(y)
	x1, y1 := float32(x+w), float32(y+h)
	rr := float32(r)

	var p vector.Path
	p.MoveTo(x0+rr, y0)
	p.LineTo(x1-rr, y0)
	p.ArcTo(x1, y0, x1, y0+rr, rr)
	p.LineTo(x1, y1-rr)
	p.ArcTo(x1, y1, x1-rr, y1, rr)
	p.LineTo(x0+rr, y1)
	p.ArcTo(x0, y1, x0, y1-rr, rr)
	p.LineTo(x0, y0+rr)
	p.ArcTo(x0, y0, x0+rr, y0, rr)
	p.Close()
	c.fillPath(&p, col)
}

func (c *canvas) FillCircle(cx, cy, r float64, col Color) {
	if r <= 0 {
		return
	}
	var p vector.Path
	p.Arc(float32(cx), float32(cy), float32(r), 0, 2*math.Pi, vector.Clockwise)
	p.Close()
	c.fillPath(&p, col)
}

func (c *canvas) DrawImage(img *ebiten.Image) {
	if img == nil {
		return
	}
	op := &ebiten.DrawImageOptions{GeoM: c.cur.geom}
	op.ColorScale.ScaleAlpha(float32(c.cur.alpha))
	c.screen.DrawImage(img, op)
}

// DrawText renders debug-grade text at the transformed origin. Rotation and
// scale are not applied to the glyphs; font loading and layout are outside
// this engine's scope.
func (c *canvas) DrawText(text string, x, y float64) {
	tx, ty := c.cur.geom.Apply(x, y)
	ebitenutil.DebugPrintAt(c.screen, text, int(tx), int(ty))
}
