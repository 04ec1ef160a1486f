// Package renderer rasterises scene frames with gogpu/gg.
package renderer

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"log"
	"math"

	"github.com/gogpu/gg"
	"github.com/skip2/go-qrcode"

	"github.com/ivlev/scene2video/internal/scene"
	"github.com/ivlev/scene2video/internal/system"
)

// strokeUnit converts a stroke width to scene units.
const strokeUnit = 0.01

// ImageLoader provides the pixels of image primitives.
type ImageLoader interface {
	Image(source string, page int) (image.Image, error)
}

// Canvas draws frames of a fixed pixel size. A canvas is owned by a single
// goroutine; parallel segments each create their own.
type Canvas struct {
	Width, Height int
	Background    gg.RGBA
	Images        ImageLoader

	dc    *gg.Context
	scale float64
	faces *faces
	qr    map[string]*gg.ImageBuf
	bufs  map[image.Image]*gg.ImageBuf
	// missing sources are reported once
	warned map[string]bool
}

// NewCanvas creates a canvas of width x height pixels.
func NewCanvas(width, height int, bg gg.RGBA, images ImageLoader) (*Canvas, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("invalid canvas size %dx%d", width, height)
	}
	f, err := newFaces()
	if err != nil {
		return nil, err
	}
	return &Canvas{
		Width:      width,
		Height:     height,
		Background: bg,
		Images:     images,
		dc:         gg.NewContext(width, height),
		scale:      float64(height) / scene.FrameHeight,
		faces:      f,
		qr:         make(map[string]*gg.ImageBuf),
		bufs:       make(map[image.Image]*gg.ImageBuf),
		warned:     make(map[string]bool),
	}, nil
}

// Close releases the drawing context.
func (c *Canvas) Close() error {
	return c.dc.Close()
}

// Render draws the frame and returns a copy of the pixels in a pooled
// buffer. Hand it back with system.PutImage once it has been consumed.
func (c *Canvas) Render(f scene.Frame) (*image.RGBA, error) {
	c.dc.ClearWithColor(c.Background)
	for _, it := range f.Items {
		if it.Opacity <= 0 || it.Reveal <= 0 {
			continue
		}
		if err := c.drawObject(it.Obj, it); err != nil {
			return nil, fmt.Errorf("draw %s: %w", it.Obj.Name, err)
		}
	}
	if err := c.dc.FlushGPU(); err != nil {
		return nil, err
	}
	src := c.dc.Image()
	b := src.Bounds()
	out := system.GetImage(image.Rectangle{Max: b.Size()})
	draw.Draw(out, out.Rect, src, b.Min, draw.Src)
	return out, nil
}

// SavePNG renders the frame into a PNG file.
func (c *Canvas) SavePNG(f scene.Frame, path string) error {
	img, err := c.Render(f)
	if err != nil {
		return err
	}
	system.PutImage(img)
	return c.dc.SavePNG(path)
}

// px maps a scene point to pixel coordinates.
func (c *Canvas) px(p scene.Vec) (float64, float64) {
	return float64(c.Width)/2 + p.X*c.scale, float64(c.Height)/2 - p.Y*c.scale
}

func (c *Canvas) drawObject(o *scene.Object, it scene.Item) error {
	switch o.Kind {
	case scene.KindGroup:
		for _, m := range o.Children {
			if err := c.drawObject(m, it); err != nil {
				return err
			}
		}
		return nil
	case scene.KindText, scene.KindMath:
		c.drawText(o, it)
		return nil
	case scene.KindImage:
		return c.drawImage(o, it)
	case scene.KindQR:
		return c.drawQR(o, it)
	}
	return c.drawShape(o, it)
}

func (c *Canvas) trace(p scene.Path, xf scene.Affine) {
	c.dc.ClearPath()
	for i, pt := range p.Points {
		x, y := c.px(xf.Apply(pt))
		if i == 0 {
			c.dc.MoveTo(x, y)
		} else {
			c.dc.LineTo(x, y)
		}
	}
	if p.Closed {
		c.dc.ClosePath()
	}
}

func (c *Canvas) setColor(col gg.RGBA) {
	c.dc.SetRGBA(col.R, col.G, col.B, col.A)
}

func (c *Canvas) drawShape(o *scene.Object, it scene.Item) error {
	st := o.Style
	width := st.StrokeWidth * strokeUnit * c.scale * it.Xf.Factor()
	for _, p := range o.Outline() {
		if len(p.Points) < 2 {
			continue
		}
		if p.Solid {
			part := p.Partial(it.Reveal)
			if len(part.Points) < 3 {
				continue
			}
			part.Closed = true
			c.trace(part, it.Xf)
			c.setColor(paint(st.Stroke, it.Tint, it.TintMix, it.Opacity))
			if err := c.dc.Fill(); err != nil {
				return err
			}
			continue
		}
		if p.Closed && st.FillOpacity > 0 {
			c.trace(p, it.Xf)
			c.setColor(paint(st.Fill, it.Tint, it.TintMix, it.Opacity*st.FillOpacity*it.Reveal))
			if err := c.dc.Fill(); err != nil {
				return err
			}
		}
		if width <= 0 {
			continue
		}
		c.trace(p.Partial(it.Reveal), it.Xf)
		c.dc.SetLineWidth(width)
		c.setColor(paint(st.Stroke, it.Tint, it.TintMix, it.Opacity))
		if err := c.dc.Stroke(); err != nil {
			return err
		}
	}
	return nil
}

// drawText draws the revealed prefix of a label, line by line, centred
// in the object's box.
func (c *Canvas) drawText(o *scene.Object, it scene.Item) {
	lines := o.Lines()
	n := len(lines)
	total := 0
	for _, l := range lines {
		total += len([]rune(l))
	}
	shown := int(math.Round(it.Reveal * float64(total)))
	if shown <= 0 {
		return
	}

	k := it.Xf.Factor()
	face := c.faces.get(styleOf(o), scene.EmUnits(o.FontSize)*c.scale*k)
	c.dc.SetFont(face)
	m := face.Metrics()

	lineH := o.Height / (1 + float64(n-1)*o.LineSpacing)
	top := o.Pos.Y + o.Height/2
	seen := 0
	for i, line := range lines {
		runes := []rune(line)
		if shown <= 0 {
			break
		}
		cut := len(runes)
		if shown < cut {
			cut = shown
		}
		shown -= cut

		centre := it.Xf.Apply(scene.Vec{X: o.Pos.X, Y: top - lineH/2 - float64(i)*lineH*o.LineSpacing})
		cx, cy := c.px(centre)
		fullW, _ := c.dc.MeasureString(line)
		x := cx - fullW/2
		baseline := cy + (m.Ascent-m.Descent)/2

		if len(o.Style.Gradient) == 0 {
			c.setColor(paint(o.Style.Fill, it.Tint, it.TintMix, it.Opacity))
			c.dc.DrawString(string(runes[:cut]), x, baseline)
			seen += len(runes)
			continue
		}
		for j := 0; j < cut; j++ {
			t := 0.0
			if total > 1 {
				t = float64(seen+j) / float64(total-1)
			}
			c.setColor(paint(gradientAt(o.Style.Gradient, t), it.Tint, it.TintMix, it.Opacity))
			adv := face.Advance(string(runes[:j]))
			c.dc.DrawString(string(runes[j]), x+adv, baseline)
		}
		seen += len(runes)
	}
}

// box returns the pixel rectangle of a box-like object after the item transform.
func (c *Canvas) box(o *scene.Object, xf scene.Affine) (x, y, w, h float64) {
	r := o.Bounds()
	x0, y0 := c.px(xf.Apply(scene.Vec{X: r.Min.X, Y: r.Max.Y}))
	x1, y1 := c.px(xf.Apply(scene.Vec{X: r.Max.X, Y: r.Min.Y}))
	return x0, y0, x1 - x0, y1 - y0
}

func (c *Canvas) drawImage(o *scene.Object, it scene.Item) error {
	if c.Images == nil {
		return fmt.Errorf("no image loader for %s", o.Source)
	}
	img, err := c.Images.Image(o.Source, o.Page)
	if err != nil {
		key := fmt.Sprintf("%s#%d", o.Source, o.Page)
		if !c.warned[key] {
			c.warned[key] = true
			log.Printf("[!] Image %s unavailable: %v", key, err)
		}
		return nil
	}
	buf, ok := c.bufs[img]
	if !ok {
		buf = gg.ImageBufFromImage(img)
		c.bufs[img] = buf
	}
	x, y, w, h := c.box(o, it.Xf)
	c.dc.DrawImageEx(buf, gg.DrawImageOptions{
		X:         x,
		Y:         y,
		DstWidth:  w,
		DstHeight: h,
		Opacity:   clamp01(it.Opacity * it.Reveal),
	})
	return nil
}

func (c *Canvas) drawQR(o *scene.Object, it scene.Item) error {
	x, y, w, h := c.box(o, it.Xf)
	side := int(math.Max(w, h) + 0.5)
	if side < 21 {
		side = 21
	}
	key := fmt.Sprintf("%s|%d", o.Text, side)
	buf, ok := c.qr[key]
	if !ok {
		q, err := qrcode.New(o.Text, qrcode.Medium)
		if err != nil {
			return fmt.Errorf("qr: %w", err)
		}
		q.ForegroundColor = toColor(o.Style.Fill)
		q.BackgroundColor = color.White
		buf = gg.ImageBufFromImage(q.Image(side))
		c.qr[key] = buf
	}
	c.dc.DrawImageEx(buf, gg.DrawImageOptions{
		X:         x,
		Y:         y,
		DstWidth:  w,
		DstHeight: h,
		Opacity:   clamp01(it.Opacity * it.Reveal),
	})
	return nil
}

func toColor(c gg.RGBA) color.Color {
	return color.NRGBA{
		R: uint8(clamp01(c.R)*255 + 0.5),
		G: uint8(clamp01(c.G)*255 + 0.5),
		B: uint8(clamp01(c.B)*255 + 0.5),
		A: uint8(clamp01(c.A)*255 + 0.5),
	}
}
