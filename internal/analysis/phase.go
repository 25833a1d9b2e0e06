package analysis

import (
	"fmt"
	"strings"

	"gonum.org/v1/gonum/spatial/r2"
)

// PhasePortrait2D holds data for a 2D phase space plot
type PhasePortrait2D struct {
	Points []r2.Vec
}

// NewPhasePortrait pairs two recorded series, e.g. angle and angular
// velocity, into phase space points.
func NewPhasePortrait(xs, ys []float64) (*PhasePortrait2D, error) {
	if len(xs) != len(ys) {
		return nil, fmt.Errorf("phase portrait: series lengths differ (%d vs %d)", len(xs), len(ys))
	}
	portrait := &PhasePortrait2D{Points: make([]r2.Vec, len(xs))}
	for i := range xs {
		portrait.Points[i] = r2.Vec{X: xs[i], Y: ys[i]}
	}
	return portrait, nil
}

// PhasePortraitToASCII converts phase portrait to ASCII art
func PhasePortraitToASCII(portrait *PhasePortrait2D, width, height int) string {
	if portrait == nil || len(portrait.Points) == 0 {
		return ""
	}

	// Find bounds
	minX, maxX := portrait.Points[0].X, portrait.Points[0].X
	minY, maxY := portrait.Points[0].Y, portrait.Points[0].Y

	for _, p := range portrait.Points {
		if p.X < minX {
			minX = p.X
		}
		if p.X > maxX {
			maxX = p.X
		}
		if p.Y < minY {
			minY = p.Y
		}
		if p.Y > maxY {
			maxY = p.Y
		}
	}

	// Add padding
	rangeX := maxX - minX
	rangeY := maxY - minY
	if rangeX == 0 {
		rangeX = 1
	}
	if rangeY == 0 {
		rangeY = 1
	}
	minX -= rangeX * 0.1
	maxX += rangeX * 0.1
	minY -= rangeY * 0.1
	maxY += rangeY * 0.1
	rangeX = maxX - minX
	rangeY = maxY - minY

	// Create canvas
	canvas := make([][]rune, height)
	for i := range canvas {
		canvas[i] = make([]rune, width)
		for j := range canvas[i] {
			canvas[i][j] = ' '
		}
	}

	// Plot points
	for _, p := range portrait.Points {
		col := int((p.X - minX) / rangeX * float64(width-1))
		row := height - 1 - int((p.Y-minY)/rangeY*float64(height-1))

		if row >= 0 && row < height && col >= 0 && col < width {
			canvas[row][col] = '•'
		}
	}

	// Draw axes if they cross the visible area
	if minX <= 0 && maxX >= 0 {
		col := int((0 - minX) / rangeX * float64(width-1))
		for row := 0; row < height; row++ {
			if col >= 0 && col < width && canvas[row][col] == ' ' {
				canvas[row][col] = '│'
			}
		}
	}
	if minY <= 0 && maxY >= 0 {
		row := height - 1 - int((0-minY)/rangeY*float64(height-1))
		for col := 0; col < width; col++ {
			if row >= 0 && row < height && canvas[row][col] == ' ' {
				canvas[row][col] = '─'
			}
		}
	}

	// Convert to string
	var sb strings.Builder
	for _, row := range canvas {
		sb.WriteString(string(row))
		sb.WriteRune('\n')
	}
	return sb.String()
}

// PoincareSection collects (x, y) each time the cross series rises through
// threshold, interpolated between the two bracketing samples.
func PoincareSection(cross, xs, ys []float64, threshold float64) (*PhasePortrait2D, error) {
	if len(cross) != len(xs) || len(xs) != len(ys) {
		return nil, fmt.Errorf("poincare section: series lengths differ")
	}

	section := &PhasePortrait2D{Points: make([]r2.Vec, 0)}
	for i := 1; i < len(cross); i++ {
		prev, curr := cross[i-1], cross[i]
		if !(prev < threshold && curr >= threshold) {
			continue
		}

		frac := (threshold - prev) / (curr - prev)
		if !isFinite(frac) {
			frac = 0.5
		}
		section.Points = append(section.Points, r2.Vec{
			X: xs[i-1] + frac*(xs[i]-xs[i-1]),
			Y: ys[i-1] + frac*(ys[i]-ys[i-1]),
		})
	}

	return section, nil
}
