package diagram

import (
	"fmt"
	"os"
	"strings"

	"github.com/fogleman/gg"
	"github.com/golang/freetype/truetype"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"

	"edustream/internal/config"
	"edustream/internal/content"
	"edustream/internal/fileutil"
)

// kind is the drawing routine chosen for a diagram.
type kind string

const (
	kindBeam       kind = "beam"
	kindCantilever kind = "cantilever"
	kindRod        kind = "rod"
	kindCurve      kind = "curve"
	kindFBD        kind = "fbd"
	kindGeneric    kind = "generic"
)

// classify picks a drawing routine from the free-text description.
func classify(desc string) kind {
	d := strings.ToLower(desc)
	switch {
	case strings.Contains(d, "cantilever"):
		return kindCantilever
	case strings.Contains(d, "beam"):
		return kindBeam
	case strings.Contains(d, "stress-strain") || strings.Contains(d, "curve"):
		return kindCurve
	case strings.Contains(d, "free body") || strings.Contains(d, "cable"):
		return kindFBD
	case strings.Contains(d, "rod") || strings.Contains(d, "bar"):
		return kindRod
	default:
		return kindGeneric
	}
}

type renderer struct {
	cfg config.Diagram
}

func newRenderer(cfg config.Diagram) *renderer {
	return &renderer{cfg: cfg}
}

func (r *renderer) face(size float64) (font.Face, error) {
	if r.cfg.FontPath == "" {
		return basicfont.Face7x13, nil
	}
	data, err := os.ReadFile(r.cfg.FontPath)
	if err != nil {
		return nil, fmt.Errorf("read font: %w", err)
	}
	f, err := truetype.Parse(data)
	if err != nil {
		return nil, fmt.Errorf("parse font: %w", err)
	}
	return truetype.NewFace(f, &truetype.Options{Size: size}), nil
}

func (r *renderer) render(script *content.Script, path string) error {
	w, h := r.cfg.Width, r.cfg.Height
	dc := gg.NewContext(w, h)

	dc.SetRGB(1, 1, 1)
	dc.Clear()

	titleFace, err := r.face(float64(h) / 24)
	if err != nil {
		return err
	}
	dc.SetFontFace(titleFace)
	dc.SetRGB(0.1, 0.1, 0.15)
	dc.DrawStringWrapped(script.DiagramDescription,
		float64(w)/2, float64(h)*0.06, 0.5, 0, float64(w)*0.9, 1.3, gg.AlignCenter)

	fw := float64(w)
	fh := float64(h)
	dc.SetLineWidth(fh / 180)

	switch classify(script.DiagramDescription) {
	case kindCantilever:
		drawCantilever(dc, fw, fh)
	case kindBeam:
		drawBeam(dc, fw, fh)
	case kindCurve:
		drawCurve(dc, fw, fh)
	case kindFBD:
		drawFBD(dc, fw, fh)
	case kindRod:
		drawRod(dc, fw, fh)
	default:
		drawGeneric(dc, fw, fh)
	}

	if script.Formula != "" {
		dc.SetRGB(0.15, 0.25, 0.55)
		dc.DrawStringWrapped(script.Formula,
			fw/2, fh*0.88, 0.5, 0, fw*0.9, 1.2, gg.AlignCenter)
	}

	return fileutil.WriteAtomic(path, dc.EncodePNG)
}

func drawArrowDown(dc *gg.Context, x, top, bottom float64) {
	dc.DrawLine(x, top, x, bottom)
	dc.Stroke()
	head := (bottom - top) * 0.18
	dc.MoveTo(x-head/2, bottom-head)
	dc.LineTo(x+head/2, bottom-head)
	dc.LineTo(x, bottom)
	dc.ClosePath()
	dc.Fill()
}

func drawBeam(dc *gg.Context, w, h float64) {
	y := h * 0.55
	left, right := w*0.15, w*0.85

	dc.SetRGB(0.2, 0.2, 0.25)
	dc.SetLineWidth(h / 90)
	dc.DrawLine(left, y, right, y)
	dc.Stroke()

	// pin support at A, roller at B
	s := h * 0.05
	dc.MoveTo(left, y)
	dc.LineTo(left-s, y+2*s)
	dc.LineTo(left+s, y+2*s)
	dc.ClosePath()
	dc.Stroke()
	dc.DrawCircle(right, y+s, s)
	dc.Stroke()

	dc.SetRGB(0.75, 0.15, 0.15)
	drawArrowDown(dc, (left+right)/2, y-h*0.22, y)
}

func drawCantilever(dc *gg.Context, w, h float64) {
	y := h * 0.55
	wall := w * 0.15
	tip := w * 0.8

	dc.SetRGB(0.2, 0.2, 0.25)
	dc.SetLineWidth(h / 90)
	dc.DrawLine(wall, y, tip, y)
	dc.Stroke()

	// hatched wall
	dc.SetLineWidth(h / 200)
	dc.DrawLine(wall, y-h*0.12, wall, y+h*0.12)
	dc.Stroke()
	for i := 0; i < 6; i++ {
		yy := y - h*0.12 + float64(i)*h*0.04
		dc.DrawLine(wall, yy, wall-w*0.03, yy+h*0.03)
		dc.Stroke()
	}

	dc.SetRGB(0.75, 0.15, 0.15)
	drawArrowDown(dc, tip, y-h*0.22, y)
}

func drawRod(dc *gg.Context, w, h float64) {
	y := h * 0.55
	left, right := w*0.3, w*0.7
	th := h * 0.06

	dc.SetRGB(0.2, 0.2, 0.25)
	dc.DrawRectangle(left, y-th/2, right-left, th)
	dc.Stroke()

	// axial arrows pulling outward
	dc.SetRGB(0.75, 0.15, 0.15)
	dc.DrawLine(left, y, left-w*0.12, y)
	dc.Stroke()
	dc.MoveTo(left-w*0.12, y)
	dc.LineTo(left-w*0.09, y-th/3)
	dc.LineTo(left-w*0.09, y+th/3)
	dc.ClosePath()
	dc.Fill()

	dc.DrawLine(right, y, right+w*0.12, y)
	dc.Stroke()
	dc.MoveTo(right+w*0.12, y)
	dc.LineTo(right+w*0.09, y-th/3)
	dc.LineTo(right+w*0.09, y+th/3)
	dc.ClosePath()
	dc.Fill()
}

func drawCurve(dc *gg.Context, w, h float64) {
	ox, oy := w*0.18, h*0.75
	ax, ay := w*0.82, h*0.28

	dc.SetRGB(0.2, 0.2, 0.25)
	dc.DrawLine(ox, oy, ax, oy)
	dc.Stroke()
	dc.DrawLine(ox, oy, ox, ay)
	dc.Stroke()

	// linear elastic rise, then yield plateau, peak and drop to fracture
	dc.SetRGB(0.15, 0.35, 0.7)
	dc.MoveTo(ox, oy)
	dc.LineTo(ox+(ax-ox)*0.2, oy-(oy-ay)*0.65)
	dc.QuadraticTo(
		ox+(ax-ox)*0.35, oy-(oy-ay)*0.8,
		ox+(ax-ox)*0.6, oy-(oy-ay)*0.95)
	dc.QuadraticTo(
		ox+(ax-ox)*0.8, oy-(oy-ay)*1.0,
		ox+(ax-ox)*0.95, oy-(oy-ay)*0.75)
	dc.Stroke()

	// yield point marker
	dc.SetRGB(0.75, 0.15, 0.15)
	dc.DrawCircle(ox+(ax-ox)*0.2, oy-(oy-ay)*0.65, h*0.012)
	dc.Fill()
}

func drawFBD(dc *gg.Context, w, h float64) {
	cx, cy := w/2, h*0.5

	// cables up to the corners
	dc.SetRGB(0.2, 0.2, 0.25)
	dc.DrawLine(cx, cy, w*0.2, h*0.25)
	dc.Stroke()
	dc.DrawLine(cx, cy, w*0.8, h*0.25)
	dc.Stroke()

	dc.DrawCircle(cx, cy, h*0.02)
	dc.Fill()

	dc.SetRGB(0.75, 0.15, 0.15)
	drawArrowDown(dc, cx, cy, cy+h*0.22)
}

func drawGeneric(dc *gg.Context, w, h float64) {
	dc.SetRGB(0.2, 0.2, 0.25)
	dc.DrawRectangle(w*0.25, h*0.35, w*0.5, h*0.35)
	dc.Stroke()
	dc.SetRGB(0.75, 0.15, 0.15)
	drawArrowDown(dc, w/2, h*0.2, h*0.35)
}
