package export

import (
	"fmt"
	"html"
	"strings"

	"github.com/san-kum/stochlab/internal/viz"
)

func header(sb *strings.Builder, w, h float64, bg string) {
	fmt.Fprintf(sb, `<?xml version="1.0" encoding="UTF-8"?>
<svg xmlns="http://www.w3.org/2000/svg" width="%.0f" height="%.0f" viewBox="0 0 %.0f %.0f">
<rect width="100%%" height="100%%" fill="%s"/>
`, w, h, w, h, bg)
}

// FrameToSVG renders the draw commands of f as vector SVG, coloured by
// theme.
func FrameToSVG(f viz.Frame, theme viz.Theme) string {
	if !f.Bounds.Valid() {
		return ""
	}

	var sb strings.Builder
	header(&sb, float64(f.Bounds.W), float64(f.Bounds.H), string(theme.Background))

	for _, c := range f.Commands {
		if c.Role == viz.RoleBackground {
			continue
		}
		color := string(theme.Color(c.Role))
		switch c.Op {
		case viz.OpLine:
			dash := ""
			if c.Dashed {
				dash = ` stroke-dasharray="5,5"`
			}
			fmt.Fprintf(&sb, `<line x1="%.1f" y1="%.1f" x2="%.1f" y2="%.1f" stroke="%s" stroke-width="1.5"%s/>
`, c.X0, c.Y0, c.X1, c.Y1, color, dash)
		case viz.OpRect:
			paint := fmt.Sprintf(`fill="%s"`, color)
			if !c.Fill {
				paint = fmt.Sprintf(`fill="none" stroke="%s"`, color)
			}
			fmt.Fprintf(&sb, `<rect x="%.1f" y="%.1f" width="%.1f" height="%.1f" %s/>
`, c.X0, c.Y0, c.W, c.H, paint)
		case viz.OpArc:
			fmt.Fprintf(&sb, `<circle cx="%.1f" cy="%.1f" r="%.1f" fill="%s"/>
`, c.X0, c.Y0, c.R, color)
		case viz.OpText:
			fmt.Fprintf(&sb, `<text x="%.1f" y="%.1f" fill="%s" font-family="monospace" font-size="12">%s</text>
`, c.X0, c.Y0, color, html.EscapeString(c.Text))
		}
	}

	sb.WriteString("</svg>")
	return sb.String()
}

// Braille dot-to-bit mapping
var pixelMap = [4][2]int{
	{0x01, 0x08},
	{0x02, 0x10},
	{0x04, 0x20},
	{0x40, 0x80},
}

// CanvasToSVG converts a rasterised Braille canvas to SVG, one circle per
// lit dot, coloured by the role of its cell.
func CanvasToSVG(canvas *viz.Canvas, theme viz.Theme, scale float64) string {
	if canvas == nil {
		return ""
	}

	width := float64(canvas.Width) * scale * 2   // 2 sub-pixels per char
	height := float64(canvas.Height) * scale * 4 // 4 sub-pixels per char

	var sb strings.Builder
	header(&sb, width, height, string(theme.Background))

	dotRadius := scale * 0.4

	for row := 0; row < canvas.Height; row++ {
		for col := 0; col < canvas.Width; col++ {
			r := canvas.Grid[row][col]
			if r <= 0x2800 {
				continue
			}
			pattern := int(r - 0x2800)
			color := string(theme.Color(canvas.Roles[row][col]))

			baseX := float64(col) * scale * 2
			baseY := float64(row) * scale * 4

			for dy := 0; dy < 4; dy++ {
				for dx := 0; dx < 2; dx++ {
					if pattern&pixelMap[dy][dx] != 0 {
						cx := baseX + float64(dx)*scale + scale/2
						cy := baseY + float64(dy)*scale + scale/2
						fmt.Fprintf(&sb, `<circle cx="%.1f" cy="%.1f" r="%.1f" fill="%s"/>
`, cx, cy, dotRadius, color)
					}
				}
			}
		}
	}

	sb.WriteString("</svg>")
	return sb.String()
}
