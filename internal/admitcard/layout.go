package admitcard

import (
	"strings"
	"unicode/utf8"

	"github.com/go-pdf/fpdf"
)

// Layout names accepted by Options.Layout.
const (
	LayoutPanel   = "panel"
	LayoutClassic = "classic"
)

type rgb struct{ r, g, b int }

var (
	panelFill  = rgb{230, 242, 255}
	accentBlue = rgb{51, 153, 230}
	black      = rgb{0, 0, 0}
	footerGrey = rgb{26, 26, 26}
	borderGrey = rgb{160, 170, 185}
	white      = rgb{255, 255, 255}
)

const footerLine = "Bring this Admit Card to the examination centre."

// layout draws one card on the current page.
type layout interface {
	draw(p *page, c card)
}

func layoutFor(name string) layout {
	if name == LayoutClassic {
		return classicLayout{}
	}
	return panelLayout{}
}

// page wraps fpdf so layouts can use bottom-left origin coordinates in points.
type page struct {
	pdf *fpdf.Fpdf
	h   float64
}

func (p *page) fill(c rgb) { p.pdf.SetFillColor(c.r, c.g, c.b) }
func (p *page) textColor(c rgb) { p.pdf.SetTextColor(c.r, c.g, c.b) }

func (p *page) rect(x, y, w, h float64, style string) {
	p.pdf.Rect(x, p.h-y-h, w, h, style)
}

func (p *page) roundedRect(x, y, w, h, r float64) {
	p.pdf.RoundedRect(x, p.h-y-h, w, h, r, "1234", "F")
}

func (p *page) text(x, y float64, s string) {
	p.pdf.Text(x, p.h-y, bmp(s))
}

func (p *page) width(s string) float64 {
	return p.pdf.GetStringWidth(bmp(s))
}

// bmp replaces runes above U+FFFF, which Identity-H encoded fonts cannot address.
func bmp(s string) string {
	return strings.Map(func(r rune) rune {
		if r > 0xFFFF {
			return utf8.RuneError
		}
		return r
	}, s)
}

func (p *page) centred(cx, y float64, s string) {
	p.text(cx-p.width(s)/2, y, s)
}

// rotatedCentred draws s centred on (x, y), rotated counter-clockwise by deg.
func (p *page) rotatedCentred(x, y, deg float64, s string) {
	p.pdf.TransformBegin()
	p.pdf.TransformRotate(deg, x, p.h-y)
	p.centred(x, y, s)
	p.pdf.TransformEnd()
}

func (p *page) image(name string, x, y, w, h float64) {
	p.pdf.ImageOptions(name, x, p.h-y-h, w, h, false, fpdf.ImageOptions{ImageType: "PNG"}, 0, "")
}

// panelLayout is the rounded panel with a vertical accent strip and rotated title.
type panelLayout struct{}

func (panelLayout) draw(p *page, c card) {
	p.fill(panelFill)
	p.roundedRect(100, 200, 400, 400, 20)

	p.fill(accentBlue)
	p.rect(100, 200, 80, 400, "F")

	p.textColor(white)
	p.pdf.SetFont("Helvetica", "B", 28)
	p.rotatedCentred(130, 400, 90, "Exam Admit")

	if c.logo {
		p.image(logoImage, 420, 640, 100, 100)
	}

	p.textColor(black)
	p.pdf.SetFont(textFont, "B", 10)
	y := 500.0
	for _, l := range c.lines {
		p.text(200, y, l.label+": "+l.value)
		y -= 30
	}

	if c.qr {
		p.image(qrImage, 400, 210, 80, 80)
	}

	p.pdf.SetFont("Helvetica", "I", 8)
	p.textColor(footerGrey)
	p.text(200, 190, footerLine)
}

// classicLayout is a bordered card with a horizontal title band.
type classicLayout struct{}

func (classicLayout) draw(p *page, c card) {
	p.pdf.SetDrawColor(borderGrey.r, borderGrey.g, borderGrey.b)
	p.pdf.SetLineWidth(1.5)
	p.fill(panelFill)
	p.rect(60, 180, 475, 520, "FD")

	p.fill(accentBlue)
	p.rect(60, 620, 475, 80, "F")

	p.textColor(white)
	p.pdf.SetFont("Helvetica", "B", 24)
	p.centred(60+475/2.0, 652, "Exam Admit Card")

	if c.logo {
		p.image(logoImage, 70, 630, 60, 60)
	}

	p.textColor(black)
	y := 570.0
	for _, l := range c.lines {
		label := l.label + ": "
		p.pdf.SetFont(textFont, "B", 12)
		p.text(100, y, label)
		lw := p.width(label)
		p.pdf.SetFont(textFont, "", 12)
		p.text(100+lw, y, l.value)
		y -= 30
	}

	if c.qr {
		p.image(qrImage, 425, 230, 90, 90)
	}

	p.pdf.SetFont("Helvetica", "I", 9)
	p.textColor(footerGrey)
	p.centred(60+475/2.0, 200, footerLine)
}
