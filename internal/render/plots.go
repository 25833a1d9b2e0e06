package render

import (
	"fmt"
	"path/filepath"

	"github.com/san-kum/mechsim/internal/bodies"
	"gonum.org/v1/gonum/spatial/r2"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/plotutil"
	"gonum.org/v1/plot/vg"
)

// Track is a labelled sequence of positions.
type Track struct {
	Name      string
	Positions []r2.Vec
}

func SaveLinePlot(filename, title, xlabel, ylabel string, xs, ys []float64) error {
	if len(xs) != len(ys) || len(xs) == 0 {
		return fmt.Errorf("plot data invalid")
	}
	p := plot.New()
	p.Title.Text = title
	p.X.Label.Text = xlabel
	p.Y.Label.Text = ylabel
	stylePlot(p)

	pts := make(plotter.XYs, len(xs))
	for i := range xs {
		pts[i].X = xs[i]
		pts[i].Y = ys[i]
	}
	line, err := plotter.NewLine(pts)
	if err != nil {
		return err
	}
	line.LineStyle.Width = vg.Points(2.0)
	line.LineStyle.Color = plotutil.Color(0)
	p.Add(line)

	return savePlotPNG(p, 8.0, 5.0, filename)
}

func trackXYs(positions []r2.Vec) plotter.XYs {
	pts := make(plotter.XYs, len(positions))
	for i, v := range positions {
		pts[i].X = v.X
		pts[i].Y = v.Y
	}
	return pts
}

// SaveTrajectoryPlot draws every track in the plane with a marker on its
// final position.
func SaveTrajectoryPlot(filename, title string, tracks []Track) error {
	if len(tracks) == 0 {
		return fmt.Errorf("no tracks to plot")
	}

	p := plot.New()
	p.Title.Text = title
	p.X.Label.Text = "x"
	p.Y.Label.Text = "y"
	stylePlot(p)
	p.Legend.Top = true

	for i, tr := range tracks {
		if len(tr.Positions) == 0 {
			return fmt.Errorf("track %q is empty", tr.Name)
		}
		pts := trackXYs(tr.Positions)

		line, err := plotter.NewLine(pts)
		if err != nil {
			return fmt.Errorf("track %q: %w", tr.Name, err)
		}
		line.LineStyle.Width = vg.Points(1.5)
		line.LineStyle.Color = plotutil.Color(i)

		end, err := plotter.NewScatter(pts[len(pts)-1:])
		if err != nil {
			return fmt.Errorf("track %q: %w", tr.Name, err)
		}
		end.GlyphStyle.Color = plotutil.Color(i)
		end.GlyphStyle.Radius = vg.Points(4)
		end.GlyphStyle.Shape = plotutil.Shape(0)

		p.Add(line, end)
		p.Legend.Add(tr.Name, line)
	}

	squareAxes(p)
	return savePlotPNG(p, 6.0, 6.0, filename)
}

// squareAxes widens the shorter axis so both span the same range.
func squareAxes(p *plot.Plot) {
	dx, dy := p.X.Max-p.X.Min, p.Y.Max-p.Y.Min
	switch {
	case dx > dy:
		mid := (p.Y.Max + p.Y.Min) / 2
		p.Y.Min, p.Y.Max = mid-dx/2, mid+dx/2
	case dy > dx:
		mid := (p.X.Max + p.X.Min) / 2
		p.X.Min, p.X.Max = mid-dy/2, mid+dy/2
	}
}

// PendulumFigures writes angle, angular velocity and trajectory figures for
// a finished pendulum run into dir and returns their paths.
func PendulumFigures(dir string, p *bodies.Pendulum) ([]string, error) {
	h := p.History()
	if h.Len() == 0 {
		return nil, fmt.Errorf("pendulum has no history")
	}

	files := []string{
		filepath.Join(dir, "angle.png"),
		filepath.Join(dir, "omega.png"),
		filepath.Join(dir, "trajectory.png"),
	}
	if err := SaveLinePlot(files[0], "Angle", "time (s)", "theta (rad)", h.Time, h.Angle); err != nil {
		return nil, err
	}
	if err := SaveLinePlot(files[1], "Angular velocity", "time (s)", "omega (rad/s)", h.Time, h.AngularVelocity); err != nil {
		return nil, err
	}
	if err := SaveTrajectoryPlot(files[2], "Bob trajectory", []Track{{Name: "bob", Positions: h.Position}}); err != nil {
		return nil, err
	}
	return files, nil
}

// SystemTracks returns one track per planet.
func SystemTracks(s *bodies.System) []Track {
	tracks := make([]Track, 0, len(s.Planets()))
	for _, pl := range s.Planets() {
		tracks = append(tracks, Track{Name: pl.Name(), Positions: pl.History().Position})
	}
	return tracks
}

// SystemFigures writes the orbit figure for a finished system run.
func SystemFigures(dir string, s *bodies.System) ([]string, error) {
	if len(s.History()) == 0 {
		return nil, fmt.Errorf("system has no history")
	}
	file := filepath.Join(dir, "orbits.png")
	if err := SaveTrajectoryPlot(file, "Orbits", SystemTracks(s)); err != nil {
		return nil, err
	}
	return []string{file}, nil
}
