package plot

import (
	"fmt"
	"math"
	"strings"

	"github.com/guptarohit/asciigraph"

	"github.com/lawrenceleejr/fluka-neutronstudy/internal/results"
)

// ASCIIProfile renders run profiles as a terminal plot, log10 of the
// deposition so the cascade tail stays visible.
func ASCIIProfile(curves map[string]results.Curve, caption string) string {
	labels := sortedLabels(curves)
	if len(labels) == 0 {
		return ""
	}
	var series [][]float64
	for _, label := range labels {
		ys := positiveFloor(curves[label].Y)
		logs := make([]float64, len(ys))
		for i, y := range ys {
			logs[i] = math.Log10(y)
		}
		series = append(series, logs)
	}
	graph := asciigraph.PlotMany(series,
		asciigraph.Height(12),
		asciigraph.Width(80),
		asciigraph.Caption(caption+" (log10)"),
	)
	var b strings.Builder
	b.WriteString(graph)
	b.WriteByte('\n')
	for _, label := range labels {
		fmt.Fprintf(&b, "  - %s\n", label)
	}
	return b.String()
}
