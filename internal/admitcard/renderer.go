// Package admitcard renders the single-page PDF admit card handed to a
// student on registration.
package admitcard

import (
	"bytes"
	"fmt"
	"image"
	"image/png"
	"strings"
	"time"

	"github.com/go-pdf/fpdf"
	"github.com/skip2/go-qrcode"
	"golang.org/x/image/draw"

	"examportal/internal/model"
)

const (
	logoImage = "logo"
	qrImage   = "qr"
	qrPixels  = 256
)

// docTime is stamped as creation and modification date so output is reproducible.
var docTime = time.Date(2000, time.January, 1, 0, 0, 0, 0, time.UTC)

// Options configures a Renderer.
type Options struct {
	Layout       string // LayoutPanel (default) or LayoutClassic
	StaticDir    string // logo paths are resolved inside this directory
	ShowDuration bool
	Duration     string // e.g. "2 hours"
	QR           bool
}

// Renderer builds admit cards. It holds no mutable state and is safe for concurrent use.
type Renderer struct {
	opts   Options
	layout layout
}

// New creates a renderer.
func New(opts Options) *Renderer {
	if opts.Layout != LayoutClassic {
		opts.Layout = LayoutPanel
	}
	if opts.Duration == "" {
		opts.Duration = "2 hours"
	}
	return &Renderer{opts: opts, layout: layoutFor(opts.Layout)}
}

// Layout returns the active layout name.
func (r *Renderer) Layout() string {
	return r.opts.Layout
}

type line struct {
	label string
	value string
}

// card is the resolved content handed to a layout.
type card struct {
	lines []line
	logo  bool
	qr    bool
}

// Render produces the PDF bytes for st using the exam details in cfg.
// A missing or unreadable logo is skipped.
func (r *Renderer) Render(st model.Student, cfg model.AdminConfig) ([]byte, error) {
	pdf := fpdf.New("P", "pt", "A4", "")
	pdf.SetCreationDate(docTime)
	pdf.SetModificationDate(docTime)
	pdf.SetCatalogSort(true)
	pdf.SetTitle("Admit Card", true)
	pdf.SetAutoPageBreak(false, 0)
	addTextFonts(pdf)
	pdf.AddPage()

	_, h := pdf.GetPageSize()
	p := &page{pdf: pdf, h: h}

	c := card{lines: r.lines(st, cfg)}
	if data, ok := loadLogo(LogoFile(r.opts.StaticDir, cfg.LogoPath)); ok {
		pdf.RegisterImageOptionsReader(logoImage, fpdf.ImageOptions{ImageType: "PNG"}, bytes.NewReader(data))
		c.logo = pdf.Ok()
		if !c.logo {
			// a logo fpdf cannot embed is treated like a missing one
			pdf.ClearError()
		}
	}
	if r.opts.QR {
		data, err := encodeQR(QRContent(st, cfg))
		if err != nil {
			return nil, fmt.Errorf("encode qr: %w", err)
		}
		pdf.RegisterImageOptionsReader(qrImage, fpdf.ImageOptions{ImageType: "PNG"}, bytes.NewReader(data))
		c.qr = true
	}

	r.layout.draw(p, c)

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("render admit card: %w", err)
	}
	return buf.Bytes(), nil
}

func (r *Renderer) lines(st model.Student, cfg model.AdminConfig) []line {
	out := []line{
		{"Name", st.Name},
		{"Class", st.ClassName},
		{"Email", st.Email},
		{"Phone", st.Phone},
		{"Exam Date", cfg.ExamDate},
	}
	if r.opts.ShowDuration {
		out = append(out, line{"Exam time", r.opts.Duration})
	}
	return append(out, line{"Venue", cfg.Venue})
}

// encodeQR returns the code as an 8-bit RGB PNG.
func encodeQR(content string) ([]byte, error) {
	q, err := qrcode.New(content, qrcode.Medium)
	if err != nil {
		return nil, err
	}
	src := q.Image(qrPixels)
	dst := image.NewNRGBA(src.Bounds())
	draw.Draw(dst, dst.Bounds(), src, src.Bounds().Min, draw.Src)

	var buf bytes.Buffer
	if err := png.Encode(&buf, dst); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// QRContent is the payload encoded in the optional QR code.
func QRContent(st model.Student, cfg model.AdminConfig) string {
	return st.Name + "|" + st.Email + "|" + cfg.ExamDate
}

var filenameReplacer = strings.NewReplacer("/", "_", "\\", "_", "\"", "_", "'", "_")

// Filename is the suggested download name for st's card.
func Filename(name string) string {
	return "Admit_Card_" + filenameReplacer.Replace(name) + ".pdf"
}
