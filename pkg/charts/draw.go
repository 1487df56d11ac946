package charts

import (
	"fmt"
	"math"
	"math/rand/v2"
	"sort"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/palette/moreland"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
)

type drawFunc func(p *plot.Plot, f frame) error

// drawers has one entry per Kind.
var drawers = map[Kind]drawFunc{
	KindLine:         drawLine,
	KindDistribution: drawDistribution,
	KindBar:          drawBar,
	KindScatter:      drawScatter,
	KindHeatmap:      drawHeatmap,
	KindViolin:       drawViolin,
	KindStrip:        drawStrip,
	KindBox:          drawBox,
	KindPie:          drawPie,
}

// xPositioner maps x cells to axis positions. Numeric and time columns keep
// their values; anything else becomes a category index.
type xPositioner struct {
	numeric bool
	time    bool
	cats    *categories
}

func newXPositioner(f frame) *xPositioner {
	return &xPositioner{
		numeric: numericColumn(f.table, f.x),
		time:    timeColumn(f.table, f.x),
		cats:    newCategories(),
	}
}

func (xp *xPositioner) position(v any) (float64, bool) {
	switch {
	case xp.numeric:
		return toFloat(v)
	case xp.time:
		t, ok := toTime(v)
		if !ok {
			return 0, false
		}
		return float64(t.Unix()), true
	}
	name, ok := label(v)
	if !ok {
		return 0, false
	}
	return float64(xp.cats.add(name)), true
}

func (xp *xPositioner) apply(p *plot.Plot) {
	switch {
	case xp.time:
		p.X.Tick.Marker = plot.TimeTicks{Format: "2006-01-02"}
	case !xp.numeric:
		p.NominalX(xp.cats.names...)
	}
}

// drawLine plots the mean of y at each x, sorted by x, one line per hue group.
func drawLine(p *plot.Plot, f frame) error {
	xp := newXPositioner(f)
	hues, groups := hueGroups(f)
	hued := f.hue >= 0
	drawn := 0

	for gi, rows := range groups {
		sums := make(map[float64]float64)
		counts := make(map[float64]float64)
		for _, r := range rows {
			row := f.table.Rows[r]
			x, ok := xp.position(f.cell(row, f.x))
			if !ok {
				continue
			}
			y, ok := toFloat(f.cell(row, f.y))
			if !ok {
				continue
			}
			sums[x] += y
			counts[x]++
		}
		if len(sums) == 0 {
			continue
		}

		pts := make(plotter.XYs, 0, len(sums))
		for x, sum := range sums {
			pts = append(pts, plotter.XY{X: x, Y: sum / counts[x]})
		}
		sort.Slice(pts, func(i, j int) bool { return pts[i].X < pts[j].X })

		line, err := plotter.NewLine(pts)
		if err != nil {
			return fmt.Errorf("line: %w", err)
		}
		line.Color = seriesColor(gi, hued)
		line.Width = vg.Points(2)
		p.Add(line)
		if hued {
			p.Legend.Add(hues.names[gi], line)
		}
		drawn++
	}
	if drawn == 0 {
		return errNoData
	}
	xp.apply(p)
	return nil
}

// drawScatter plots numeric x against numeric y, coloured by hue group.
func drawScatter(p *plot.Plot, f frame) error {
	hues, groups := hueGroups(f)
	hued := f.hue >= 0
	drawn := 0

	for gi, rows := range groups {
		pts := make(plotter.XYs, 0, len(rows))
		for _, r := range rows {
			row := f.table.Rows[r]
			x, okX := toFloat(f.cell(row, f.x))
			y, okY := toFloat(f.cell(row, f.y))
			if okX && okY {
				pts = append(pts, plotter.XY{X: x, Y: y})
			}
		}
		if len(pts) == 0 {
			continue
		}

		s, err := plotter.NewScatter(pts)
		if err != nil {
			return fmt.Errorf("scatter: %w", err)
		}
		s.GlyphStyle.Color = seriesColor(gi, hued)
		s.GlyphStyle.Radius = vg.Points(3)
		s.GlyphStyle.Shape = draw.CircleGlyph{}
		p.Add(s)
		if hued {
			p.Legend.Add(hues.names[gi], s)
		}
		drawn++
	}
	if drawn == 0 {
		return errNoData
	}
	return nil
}

// drawStrip plots y values per x category with a small horizontal jitter.
// The jitter source is seeded so the same table renders identically.
func drawStrip(p *plot.Plot, f frame) error {
	cats := newCategories()
	hues, groups := hueGroups(f)
	hued := f.hue >= 0
	rng := rand.New(rand.NewPCG(1, uint64(len(f.table.Rows))))
	drawn := 0

	for gi, rows := range groups {
		pts := make(plotter.XYs, 0, len(rows))
		for _, r := range rows {
			row := f.table.Rows[r]
			name, ok := label(f.cell(row, f.x))
			if !ok {
				continue
			}
			y, ok := toFloat(f.cell(row, f.y))
			if !ok {
				continue
			}
			jitter := (rng.Float64() - 0.5) * 0.3
			pts = append(pts, plotter.XY{X: float64(cats.add(name)) + jitter, Y: y})
		}
		if len(pts) == 0 {
			continue
		}

		s, err := plotter.NewScatter(pts)
		if err != nil {
			return fmt.Errorf("strip: %w", err)
		}
		s.GlyphStyle.Color = seriesColor(gi, hued)
		s.GlyphStyle.Radius = vg.Points(3)
		s.GlyphStyle.Shape = draw.CircleGlyph{}
		p.Add(s)
		if hued {
			p.Legend.Add(hues.names[gi], s)
		}
		drawn++
	}
	if drawn == 0 {
		return errNoData
	}
	p.NominalX(cats.names...)
	return nil
}

// drawBar plots the mean of y for each x category.
func drawBar(p *plot.Plot, f frame) error {
	cats, groups := groupY(f)
	if len(groups) == 0 {
		return errNoData
	}

	means := make(plotter.Values, len(groups))
	for i, g := range groups {
		means[i] = stat.Mean(g, nil)
	}

	bars, err := plotter.NewBarChart(means, barWidth(len(groups)))
	if err != nil {
		return fmt.Errorf("bar: %w", err)
	}
	bars.Color = accentColor
	bars.LineStyle.Width = 0
	p.Add(bars)
	p.NominalX(cats.names...)
	return nil
}

// drawBox plots a box-and-whisker of y for each x category.
func drawBox(p *plot.Plot, f frame) error {
	cats, groups := groupY(f)
	if len(groups) == 0 {
		return errNoData
	}

	width := barWidth(len(groups))
	for i, g := range groups {
		b, err := plotter.NewBoxPlot(width, float64(i), plotter.Values(g))
		if err != nil {
			return fmt.Errorf("box %q: %w", cats.names[i], err)
		}
		b.FillColor = accentColor
		p.Add(b)
	}
	p.NominalX(cats.names...)
	return nil
}

// drawViolin plots a mirrored density of y for each x category.
func drawViolin(p *plot.Plot, f frame) error {
	cats, groups := groupY(f)
	if len(groups) == 0 {
		return errNoData
	}

	for i, g := range groups {
		ys, density := gaussianKDE(g, 64)
		peak := 0.0
		for _, d := range density {
			peak = math.Max(peak, d)
		}
		if peak == 0 {
			continue
		}

		center := float64(i)
		outline := make(plotter.XYs, 0, 2*len(ys))
		for j := range ys {
			outline = append(outline, plotter.XY{X: center - 0.4*density[j]/peak, Y: ys[j]})
		}
		for j := len(ys) - 1; j >= 0; j-- {
			outline = append(outline, plotter.XY{X: center + 0.4*density[j]/peak, Y: ys[j]})
		}

		poly, err := plotter.NewPolygon(outline)
		if err != nil {
			return fmt.Errorf("violin %q: %w", cats.names[i], err)
		}
		poly.Color = accentColor
		poly.LineStyle.Color = textColor
		poly.LineStyle.Width = vg.Points(0.5)
		p.Add(poly)
	}
	p.NominalX(cats.names...)
	return nil
}

// drawDistribution plots a density-normalised histogram of x with a KDE line.
// y is not used.
func drawDistribution(p *plot.Plot, f frame) error {
	xs := numbers(f.table, f.x)
	if len(xs) == 0 {
		return errNoData
	}

	h, err := plotter.NewHist(plotter.Values(xs), sturgesBins(len(xs)))
	if err != nil {
		return fmt.Errorf("histogram: %w", err)
	}
	h.Normalize(1)
	h.FillColor = accentColor
	h.LineStyle.Color = figureBackground
	p.Add(h)

	if len(xs) > 1 && stat.StdDev(xs, nil) > 0 {
		gx, gy := gaussianKDE(xs, 200)
		pts := make(plotter.XYs, len(gx))
		for i := range gx {
			pts[i] = plotter.XY{X: gx[i], Y: gy[i]}
		}
		kde, err := plotter.NewLine(pts)
		if err != nil {
			return fmt.Errorf("kde: %w", err)
		}
		kde.Color = accentColor
		kde.Width = vg.Points(2)
		p.Add(kde)
	}
	p.Y.Label.Text = "Density"
	return nil
}

// drawPie plots value counts of x. y is not used.
func drawPie(p *plot.Plot, f frame) error {
	names, counts := valueCounts(f)
	if len(names) == 0 {
		return errNoData
	}
	p.Add(&pieChart{labels: names, values: counts, colors: pastel})
	p.HideAxes()
	p.X.Label.Text = ""
	p.Y.Label.Text = ""
	return nil
}

// drawHeatmap plots the annotated Pearson correlation matrix of every numeric
// column. Correlations use pairwise-complete rows.
func drawHeatmap(p *plot.Plot, f frame) error {
	var cols []int
	for i := range f.table.Columns {
		if numericColumn(f.table, i) {
			cols = append(cols, i)
		}
	}
	if len(cols) == 0 {
		return errNoData
	}

	k := len(cols)
	corr := mat.NewSymDense(k, nil)
	for i := 0; i < k; i++ {
		for j := i; j < k; j++ {
			corr.SetSym(i, j, pairwiseCorrelation(f, cols[i], cols[j]))
		}
	}

	names := make([]string, k)
	for i, c := range cols {
		names[i] = f.table.Columns[c]
	}

	cm := moreland.SmoothBlueRed()
	cm.SetMin(-1)
	cm.SetMax(1)
	hm := plotter.NewHeatMap(corrGrid{m: corr}, cm.Palette(255))
	hm.Min, hm.Max = -1, 1
	hm.NaN = gridColor
	p.Add(hm)

	annotations := plotter.XYLabels{
		XYs:    make(plotter.XYs, 0, k*k),
		Labels: make([]string, 0, k*k),
	}
	for r := 0; r < k; r++ {
		for c := 0; c < k; c++ {
			v := corr.At(r, c)
			text := "nan"
			if !math.IsNaN(v) {
				text = fmt.Sprintf("%.2f", v)
			}
			annotations.XYs = append(annotations.XYs, plotter.XY{X: float64(c), Y: float64(k - 1 - r)})
			annotations.Labels = append(annotations.Labels, text)
		}
	}
	labels, err := plotter.NewLabels(annotations)
	if err != nil {
		return fmt.Errorf("heatmap labels: %w", err)
	}
	for i := range labels.TextStyle {
		labels.TextStyle[i].XAlign = draw.XCenter
		labels.TextStyle[i].YAlign = draw.YCenter
		labels.TextStyle[i].Color = textColor
	}
	p.Add(labels)

	reversed := make([]string, k)
	for i, n := range names {
		reversed[k-1-i] = n
	}
	p.NominalX(names...)
	p.NominalY(reversed...)
	p.X.Label.Text = ""
	p.Y.Label.Text = ""
	return nil
}

func pairwiseCorrelation(f frame, a, b int) float64 {
	var xs, ys []float64
	for _, row := range f.table.Rows {
		x, okX := toFloat(f.cell(row, a))
		y, okY := toFloat(f.cell(row, b))
		if okX && okY {
			xs = append(xs, x)
			ys = append(ys, y)
		}
	}
	if len(xs) < 2 {
		return math.NaN()
	}
	return stat.Correlation(xs, ys, nil)
}

// corrGrid adapts a correlation matrix to plotter.GridXYZ with the first
// column drawn at the top.
type corrGrid struct {
	m *mat.SymDense
}

func (g corrGrid) Dims() (c, r int) {
	n := g.m.SymmetricDim()
	return n, n
}

func (g corrGrid) Z(c, r int) float64 {
	n := g.m.SymmetricDim()
	return g.m.At(n-1-r, c)
}

func (g corrGrid) X(c int) float64 { return float64(c) }
func (g corrGrid) Y(r int) float64 { return float64(r) }

func barWidth(n int) vg.Length {
	w := vg.Points(400 / float64(max(n, 1)))
	return min(w, vg.Points(40))
}
