package charts

import (
	"image/color"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
)

// Canvas size in inches.
const (
	figureWidth  = 10 * vg.Inch
	figureHeight = 6 * vg.Inch
)

var (
	axesBackground   = color.RGBA{R: 0xFF, G: 0xFF, B: 0xFF, A: 0xFF}
	figureBackground = color.RGBA{R: 0xF5, G: 0xF5, B: 0xF5, A: 0xFF}
	gridColor        = color.RGBA{R: 0xCC, G: 0xCC, B: 0xCC, A: 0xFF}
	accentColor      = color.RGBA{R: 0xFF, G: 0x6F, B: 0x61, A: 0xFF}
	textColor        = color.Black
)

// pastel is used for pie wedges.
var pastel = hexPalette("#A1C9F4", "#FFB482", "#8DE5A1", "#FF9F9B", "#D0BBFF",
	"#DEBB9B", "#FAB0E4", "#CFCFCF", "#FFFEA3", "#B9F2F0")

// deep is used for hue groups.
var deep = hexPalette("#4C72B0", "#DD8452", "#55A868", "#C44E52", "#8172B3",
	"#937860", "#DA8BC3", "#8C8C8C", "#CCB974", "#64B5CD")

func hexPalette(hexes ...string) []color.Color {
	out := make([]color.Color, len(hexes))
	for i, h := range hexes {
		out[i] = parseHex(h)
	}
	return out
}

// parseHex reads #RRGGBB. Inputs are compile-time constants.
func parseHex(h string) color.RGBA {
	var v [3]uint8
	for i := range v {
		v[i] = hexByte(h[1+2*i])<<4 | hexByte(h[2+2*i])
	}
	return color.RGBA{R: v[0], G: v[1], B: v[2], A: 0xFF}
}

func hexByte(c byte) uint8 {
	switch {
	case c >= '0' && c <= '9':
		return c - '0'
	case c >= 'a' && c <= 'f':
		return c - 'a' + 10
	case c >= 'A' && c <= 'F':
		return c - 'A' + 10
	}
	return 0
}

// seriesColor returns the accent colour for a single series and the deep
// palette when series are split by hue.
func seriesColor(i int, hued bool) color.Color {
	if !hued {
		return accentColor
	}
	return deep[i%len(deep)]
}

// newPlot creates a plot with the dashboard's styling applied.
// Pie charts skip the axes background and grid.
func newPlot(title string, framed bool) *plot.Plot {
	p := plot.New()
	p.BackgroundColor = figureBackground

	p.Title.Text = title
	p.Title.TextStyle.Color = textColor
	p.Title.TextStyle.Font.Size = vg.Points(14)
	p.Title.Padding = vg.Points(10)

	for _, a := range []*plot.Axis{&p.X, &p.Y} {
		a.Color = textColor
		a.Label.TextStyle.Color = textColor
		a.Tick.Color = textColor
		a.Tick.Label.Color = textColor
	}
	p.Legend.Top = true

	if framed {
		p.Add(axesFill{color: axesBackground}, dashedGrid())
	}
	return p
}

func dashedGrid() *plotter.Grid {
	g := plotter.NewGrid()
	for _, ls := range []*draw.LineStyle{&g.Vertical, &g.Horizontal} {
		ls.Color = gridColor
		ls.Width = vg.Points(0.5)
		ls.Dashes = []vg.Length{vg.Points(3), vg.Points(2)}
	}
	return g
}

// axesFill paints the data area so it differs from the figure background.
type axesFill struct {
	color color.Color
}

func (f axesFill) Plot(c draw.Canvas, _ *plot.Plot) {
	c.SetColor(f.color)
	c.Fill(c.Rectangle.Path())
}
