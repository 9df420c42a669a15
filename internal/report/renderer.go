// Package report renders and publishes the shareable device list image.
package report

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"io"
	"strings"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"

	"github.com/spec-kit/device-cost-service/internal/domain"
	"github.com/spec-kit/device-cost-service/internal/valuation"
)

// Layout in pixels.
const (
	MinWidth     = 360
	Padding      = 16
	HeaderHeight = 64
	RowHeight    = 56
	BarOffsetY   = 38
	BarHeight    = 8
	lineHeight   = 16
)

var (
	background = color.RGBA{0xff, 0xff, 0xff, 0xff}
	textColor  = color.RGBA{0x1f, 0x29, 0x37, 0xff}
	mutedColor = color.RGBA{0x6b, 0x72, 0x80, 0xff}
	trackColor = color.RGBA{0xe5, 0xe7, 0xeb, 0xff}
)

// BandColor is the fill used for a progress bar in band.
func BandColor(band valuation.ProgressBand) color.RGBA {
	switch band {
	case valuation.BandCritical:
		return color.RGBA{0xef, 0x44, 0x44, 0xff}
	case valuation.BandWarning:
		return color.RGBA{0xea, 0xb3, 0x08, 0xff}
	default:
		return color.RGBA{0x22, 0xc5, 0x5e, 0xff}
	}
}

// Item is one device line in the image.
type Item struct {
	Product   domain.Product
	Valuation valuation.Valuation
}

// Report is everything drawn on the share image.
type Report struct {
	Owner   string
	Summary valuation.Summary
	Items   []Item
}

// Renderer draws reports as PNG.
type Renderer struct {
	width int
	face  font.Face
}

// NewRenderer returns a renderer producing images width pixels wide.
func NewRenderer(width int) *Renderer {
	return &Renderer{width: max(width, MinWidth), face: basicfont.Face7x13}
}

// Width is the rendered image width.
func (r *Renderer) Width() int { return r.width }

// Height is the rendered image height for n items.
func (r *Renderer) Height(n int) int {
	return HeaderHeight + max(n, 1)*RowHeight + Padding
}

// Render encodes the report as PNG into w.
func (r *Renderer) Render(w io.Writer, rep Report) error {
	img := image.NewRGBA(image.Rect(0, 0, r.width, r.Height(len(rep.Items))))
	draw.Draw(img, img.Bounds(), &image.Uniform{C: background}, image.Point{}, draw.Src)

	title := "My Devices"
	if rep.Owner != "" {
		title = rep.Owner + "'s Devices"
	}
	r.text(img, Padding, Padding+lineHeight, textColor, fmt.Sprintf("%s (%d)", title, rep.Summary.Count))
	r.text(img, Padding, Padding+2*lineHeight, mutedColor, fmt.Sprintf("Total %.2f  Avg %.0f  Daily %.1f  Avg/day %.2f",
		rep.Summary.TotalValue, rep.Summary.AveragePrice, rep.Summary.TotalDailyCost, rep.Summary.AverageDailyCost))

	if len(rep.Items) == 0 {
		r.text(img, Padding, HeaderHeight+lineHeight, mutedColor, "No devices yet")
	}
	for i, item := range rep.Items {
		r.row(img, HeaderHeight+i*RowHeight, item)
	}

	if err := png.Encode(w, img); err != nil {
		return fmt.Errorf("encode share image: %w", err)
	}
	return nil
}

func (r *Renderer) row(img *image.RGBA, top int, item Item) {
	p, v := item.Product, item.Valuation
	r.text(img, Padding, top+lineHeight, textColor, fmt.Sprintf("%s  [%s]", p.Name, p.Category))
	r.text(img, Padding, top+2*lineHeight, mutedColor, fmt.Sprintf("%.2f %s  %d days  %.1f/day  expected %.1f/day",
		p.Price, p.Currency, v.DaysOwned, v.CostPerDay, v.ExpectedCostPerDay))

	label := fmt.Sprintf("%d%%", v.Progress)
	labelWidth := font.MeasureString(r.face, label).Ceil()
	barWidth := r.width - 2*Padding - labelWidth - 8
	barTop := top + BarOffsetY

	track := image.Rect(Padding, barTop, Padding+barWidth, barTop+BarHeight)
	draw.Draw(img, track, &image.Uniform{C: trackColor}, image.Point{}, draw.Src)
	if fill := barWidth * v.Progress / 100; fill > 0 {
		bar := image.Rect(Padding, barTop, Padding+fill, barTop+BarHeight)
		draw.Draw(img, bar, &image.Uniform{C: BandColor(v.Band)}, image.Point{}, draw.Src)
	}
	r.text(img, Padding+barWidth+8, barTop+BarHeight, textColor, label)
}

func (r *Renderer) text(img *image.RGBA, x, y int, c color.Color, s string) {
	d := &font.Drawer{
		Dst:  img,
		Src:  image.NewUniform(c),
		Face: r.face,
		Dot:  fixed.P(x, y),
	}
	d.DrawString(printable(s))
}

// printable replaces runes the bitmap face cannot draw.
func printable(s string) string {
	return strings.Map(func(r rune) rune {
		if r < 0x20 || r > 0x7e {
			return '?'
		}
		return r
	}, s)
}
