package editor

import "strings"

// Measurer reports rendered text line widths. Frontends with access to real
// font metrics provide their own implementation; the default estimates from
// average glyph width, which is what the layout math falls back to when no
// renderer is attached.
type Measurer interface {
	LineWidth(line string, fontSize float64, fontFamily string) float64
}

type heuristicMeasurer struct{}

func (heuristicMeasurer) LineWidth(line string, fontSize float64, _ string) float64 {
	return float64(len([]rune(line))) * fontSize * 0.6
}

// textMetrics measures the full content block: the widest line and the total
// height over all lines.
func textMetrics(m Measurer, content string, fontSize, lineHeight float64, fontFamily string) (width, height float64) {
	lines := strings.Split(content, "\n")
	for _, line := range lines {
		if w := m.LineWidth(line, fontSize, fontFamily); w > width {
			width = w
		}
	}
	height = float64(len(lines)) * fontSize * lineHeight
	return width, height
}
