package charts

import (
	"bytes"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/ekaya-inc/ekaya-vizboard/pkg/apperrors"
	"github.com/ekaya-inc/ekaya-vizboard/pkg/metrics"
	"github.com/ekaya-inc/ekaya-vizboard/pkg/models"
)

// Validation failures. Render logs them and returns no figure.
var (
	ErrEmptyTable       = errors.New("no data to plot")
	ErrTooFewColumns    = errors.New("at least two columns are required")
	ErrInvalidAxis      = errors.New("invalid axis selection")
	ErrInvalidHueColumn = errors.New("hue column not found")
)

// Spec selects what to draw. Hue is optional.
type Spec struct {
	Kind  Kind   `json:"kind"`
	X     string `json:"x"`
	Y     string `json:"y"`
	Hue   string `json:"hue,omitempty"`
	Title string `json:"title"`
}

// Figure is a rendered chart.
type Figure struct {
	Kind  Kind
	Title string
	SVG   []byte
}

// Validate checks table and spec without drawing anything.
// Both axes must name result columns for every kind, including pie and
// distribution plots that never read y.
func Validate(table *models.ResultTable, spec Spec) error {
	if table == nil || table.Empty() {
		return ErrEmptyTable
	}
	if len(table.Columns) < 2 {
		return ErrTooFewColumns
	}
	if _, ok := drawers[spec.Kind]; !ok {
		return fmt.Errorf("%w: %s", apperrors.ErrUnsupportedChart, spec.Kind)
	}
	if !table.HasColumn(spec.X) {
		return fmt.Errorf("%w: x=%q", ErrInvalidAxis, spec.X)
	}
	if !table.HasColumn(spec.Y) {
		return fmt.Errorf("%w: y=%q", ErrInvalidAxis, spec.Y)
	}
	if spec.Hue != "" && !table.HasColumn(spec.Hue) {
		return fmt.Errorf("%w: %q", ErrInvalidHueColumn, spec.Hue)
	}
	return nil
}

// Renderer draws figures and records render outcomes.
type Renderer struct {
	metrics *metrics.Collector
	logger  *zap.Logger
}

// NewRenderer creates a renderer. collector may be nil.
func NewRenderer(collector *metrics.Collector, logger *zap.Logger) *Renderer {
	return &Renderer{
		metrics: collector,
		logger:  logger.Named("charts"),
	}
}

// Render draws spec from table as SVG. It returns nil when the input fails
// Validate or when drawing fails; the reason is logged, never returned.
func (r *Renderer) Render(table *models.ResultTable, spec Spec) (fig *Figure) {
	kind := spec.Kind.String()

	if err := Validate(table, spec); err != nil {
		r.logger.Info("Chart not rendered",
			zap.String("kind", kind),
			zap.String("x", spec.X),
			zap.String("y", spec.Y),
			zap.String("reason", err.Error()))
		r.metrics.ObserveChart(kind, metrics.OutcomeEmpty)
		return nil
	}

	defer func() {
		if rec := recover(); rec != nil {
			r.logger.Error("Chart drawing panicked",
				zap.String("kind", kind),
				zap.Any("panic", rec))
			r.metrics.ObserveChart(kind, metrics.OutcomeError)
			fig = nil
		}
	}()

	f := frame{
		table: table,
		spec:  spec,
		x:     table.ColumnIndex(spec.X),
		y:     table.ColumnIndex(spec.Y),
		hue:   -1,
	}
	if spec.Hue != "" {
		f.hue = table.ColumnIndex(spec.Hue)
	}

	p := newPlot(spec.Title, spec.Kind != KindPie)
	p.X.Label.Text = spec.X
	p.Y.Label.Text = spec.Y

	if err := drawers[spec.Kind](p, f); err != nil {
		r.logger.Error("Chart drawing failed",
			zap.String("kind", kind),
			zap.Error(err))
		r.metrics.ObserveChart(kind, metrics.OutcomeError)
		return nil
	}

	wt, err := p.WriterTo(figureWidth, figureHeight, "svg")
	if err != nil {
		r.logger.Error("Chart encoding failed", zap.String("kind", kind), zap.Error(err))
		r.metrics.ObserveChart(kind, metrics.OutcomeError)
		return nil
	}
	var buf bytes.Buffer
	if _, err := wt.WriteTo(&buf); err != nil {
		r.logger.Error("Chart encoding failed", zap.String("kind", kind), zap.Error(err))
		r.metrics.ObserveChart(kind, metrics.OutcomeError)
		return nil
	}

	r.logger.Debug("Chart rendered",
		zap.String("kind", kind),
		zap.Int("rows", table.RowCount()),
		zap.Int("svg_bytes", buf.Len()))
	r.metrics.ObserveChart(kind, metrics.OutcomeSuccess)

	return &Figure{Kind: spec.Kind, Title: spec.Title, SVG: buf.Bytes()}
}
