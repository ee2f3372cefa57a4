package dashboard

import (
	"fmt"
	"html/template"
	"strings"

	"github.com/Simi445/DMS-K8S/internal/consumption"
)

const (
	chartWidth  = 720
	chartHeight = 240
	chartPad    = 30
)

// chartSVG renders the hourly buckets as an inline SVG, line or bar.
func chartSVG(buckets [24]float64, style consumption.Style) template.HTML {
	_, peak := consumption.Peak(buckets)
	if peak == 0 {
		peak = 1
	}

	plotW := float64(chartWidth - 2*chartPad)
	plotH := float64(chartHeight - 2*chartPad)
	step := plotW / 24

	var b strings.Builder
	fmt.Fprintf(&b, `<svg viewBox="0 0 %d %d" class="chart" role="img">`, chartWidth, chartHeight)
	fmt.Fprintf(&b, `<line x1="%d" y1="%d" x2="%d" y2="%d" class="axis"/>`,
		chartPad, chartHeight-chartPad, chartWidth-chartPad, chartHeight-chartPad)
	fmt.Fprintf(&b, `<line x1="%d" y1="%d" x2="%d" y2="%d" class="axis"/>`,
		chartPad, chartPad, chartPad, chartHeight-chartPad)

	if style == consumption.StyleBar {
		for h, v := range buckets {
			barH := v / peak * plotH
			x := float64(chartPad) + float64(h)*step + 2
			y := float64(chartHeight-chartPad) - barH
			fmt.Fprintf(&b, `<rect x="%.1f" y="%.1f" width="%.1f" height="%.1f" class="bar"><title>%02d:00 %.2f kWh</title></rect>`,
				x, y, step-4, barH, h, v)
		}
	} else {
		points := make([]string, 24)
		for h, v := range buckets {
			x := float64(chartPad) + (float64(h)+0.5)*step
			y := float64(chartHeight-chartPad) - v/peak*plotH
			points[h] = fmt.Sprintf("%.1f,%.1f", x, y)
		}
		fmt.Fprintf(&b, `<polyline points="%s" class="line"/>`, strings.Join(points, " "))
	}

	for h := 0; h < 24; h += 4 {
		x := float64(chartPad) + (float64(h)+0.5)*step
		fmt.Fprintf(&b, `<text x="%.1f" y="%d" class="tick">%02d</text>`, x, chartHeight-10, h)
	}
	fmt.Fprintf(&b, `<text x="%d" y="%d" class="tick">%.1f</text>`, 2, chartPad+4, peak)

	b.WriteString(`</svg>`)
	return template.HTML(b.String())
}
