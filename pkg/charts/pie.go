package charts

import (
	"fmt"
	"image/color"
	"math"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
)

// pieChart draws wedges in canvas space so the pie stays circular whatever
// the figure's aspect ratio.
type pieChart struct {
	labels []string
	values []float64
	colors []color.Color
}

func (pc *pieChart) total() float64 {
	var t float64
	for _, v := range pc.values {
		t += v
	}
	return t
}

// Plot implements plot.Plotter. Wedges start at three o'clock and run
// counter-clockwise; each shows its share inside and its label outside.
func (pc *pieChart) Plot(c draw.Canvas, plt *plot.Plot) {
	total := pc.total()
	if total <= 0 {
		return
	}

	center := c.Center()
	w := c.Max.X - c.Min.X
	h := c.Max.Y - c.Min.Y
	radius := vg.Length(math.Min(float64(w), float64(h))) * 0.4

	inner := plt.X.Tick.Label
	inner.Color = textColor
	inner.XAlign = draw.XCenter
	inner.YAlign = draw.YCenter
	inner.Font.Size = vg.Points(10)
	outer := inner
	outer.Font.Size = vg.Points(11)

	edge := draw.LineStyle{Color: color.White, Width: vg.Points(1)}

	start := 0.0
	for i, v := range pc.values {
		sweep := 2 * math.Pi * v / total

		var wedge vg.Path
		wedge.Move(center)
		wedge.Arc(center, radius, start, sweep)
		wedge.Close()

		c.SetColor(pc.colors[i%len(pc.colors)])
		c.Fill(wedge)
		c.SetLineStyle(edge)
		c.Stroke(wedge)

		mid := start + sweep/2
		c.FillText(inner, polar(center, radius*0.6, mid), fmt.Sprintf("%.1f%%", 100*v/total))
		c.FillText(outer, polar(center, radius*1.12, mid), pc.labels[i])

		start += sweep
	}
}

// DataRange implements plot.DataRanger with a fixed unit box; the axes are hidden.
func (pc *pieChart) DataRange() (xmin, xmax, ymin, ymax float64) {
	return 0, 1, 0, 1
}

func polar(center vg.Point, r vg.Length, angle float64) vg.Point {
	return vg.Point{
		X: center.X + r*vg.Length(math.Cos(angle)),
		Y: center.Y + r*vg.Length(math.Sin(angle)),
	}
}
