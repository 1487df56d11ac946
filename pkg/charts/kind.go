// Package charts renders result tables as SVG figures with gonum/plot.
package charts

import (
	"fmt"
	"strings"

	"github.com/ekaya-inc/ekaya-vizboard/pkg/apperrors"
)

// Kind is one of the nine supported chart kinds.
type Kind int

const (
	KindLine Kind = iota + 1
	KindDistribution
	KindBar
	KindScatter
	KindHeatmap
	KindViolin
	KindStrip
	KindBox
	KindPie
)

type kindInfo struct {
	wire  string
	label string
}

// kinds is ordered the way the chart select lists them.
var kinds = []struct {
	kind Kind
	kindInfo
}{
	{KindLine, kindInfo{"lineplot", "Line Plot"}},
	{KindDistribution, kindInfo{"displot", "Distribution Plot"}},
	{KindBar, kindInfo{"barplot", "Bar Plot"}},
	{KindScatter, kindInfo{"scatterplot", "Scatter Plot"}},
	{KindHeatmap, kindInfo{"heatmap", "Heatmap"}},
	{KindViolin, kindInfo{"violinplot", "Violin Plot"}},
	{KindStrip, kindInfo{"striplot", "Strip Plot"}},
	{KindBox, kindInfo{"boxplot", "Box Plot"}},
	{KindPie, kindInfo{"pie", "Pie Chart"}},
}

// AllKinds returns every kind in display order.
func AllKinds() []Kind {
	out := make([]Kind, len(kinds))
	for i, k := range kinds {
		out[i] = k.kind
	}
	return out
}

// ParseKind maps a wire name such as "scatterplot" to its Kind.
func ParseKind(s string) (Kind, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	for _, k := range kinds {
		if k.wire == s {
			return k.kind, nil
		}
	}
	return 0, fmt.Errorf("%w: %q", apperrors.ErrUnsupportedChart, s)
}

func (k Kind) info() (kindInfo, bool) {
	for _, e := range kinds {
		if e.kind == k {
			return e.kindInfo, true
		}
	}
	return kindInfo{}, false
}

// String returns the wire name.
func (k Kind) String() string {
	if i, ok := k.info(); ok {
		return i.wire
	}
	return fmt.Sprintf("kind(%d)", int(k))
}

// Label returns the human-readable name shown in the chart select.
func (k Kind) Label() string {
	if i, ok := k.info(); ok {
		return i.label
	}
	return k.String()
}

// Valid reports whether k is one of the declared kinds.
func (k Kind) Valid() bool {
	_, ok := k.info()
	return ok
}

// MarshalText encodes k as its wire name.
func (k Kind) MarshalText() ([]byte, error) {
	if !k.Valid() {
		return nil, fmt.Errorf("%w: %d", apperrors.ErrUnsupportedChart, int(k))
	}
	return []byte(k.String()), nil
}

// UnmarshalText decodes a wire name.
func (k *Kind) UnmarshalText(b []byte) error {
	parsed, err := ParseKind(string(b))
	if err != nil {
		return err
	}
	*k = parsed
	return nil
}
