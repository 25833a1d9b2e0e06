package render

import (
	"fmt"
	"image"
	"image/color"
	imgdraw "image/draw"
	"image/gif"
	"io"
	"math"

	"github.com/san-kum/mechsim/internal/bodies"
	"gonum.org/v1/gonum/spatial/r2"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/plotutil"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
)

type AnimOptions struct {
	// Frames caps the number of frames; the history is subsampled evenly.
	Frames int
	// Delay between frames in 100ths of a second.
	Delay int
	// Size is the edge length of the square image.
	Size vg.Length
	// Trail is how many past samples to draw behind each body.
	Trail int
	// Anchor, when set, is joined to the first body by a rod.
	Anchor *r2.Vec
	// FixedBounds frames the whole history instead of following the bodies
	// frame by frame.
	FixedBounds bool
}

func DefaultAnimOptions() AnimOptions {
	return AnimOptions{
		Frames: 120,
		Delay:  4,
		Size:   4 * vg.Inch,
		Trail:  200,
	}
}

type bounds struct {
	minX, maxX, minY, maxY float64
}

func (b *bounds) include(v r2.Vec) {
	b.minX, b.maxX = math.Min(b.minX, v.X), math.Max(b.maxX, v.X)
	b.minY, b.maxY = math.Min(b.minY, v.Y), math.Max(b.maxY, v.Y)
}

// padded returns square bounds around b with a margin of a fifth of its span.
func (b bounds) padded() bounds {
	span := math.Max(b.maxX-b.minX, b.maxY-b.minY)
	if span == 0 {
		span = 1
	}
	half := 0.6 * span
	cx, cy := (b.minX+b.maxX)/2, (b.minY+b.maxY)/2
	return bounds{cx - half, cx + half, cy - half, cy + half}
}

func emptyBounds() bounds {
	return bounds{math.Inf(1), math.Inf(-1), math.Inf(1), math.Inf(-1)}
}

// frameIndices picks at most n evenly spaced sample indices out of total,
// always including the last one.
func frameIndices(total, n int) []int {
	if total == 0 {
		return nil
	}
	if n <= 0 || n >= total {
		n = total
	}
	out := make([]int, n)
	for i := range out {
		if n == 1 {
			out[i] = total - 1
			break
		}
		out[i] = i * (total - 1) / (n - 1)
	}
	return out
}

func animPalette(bodies int) color.Palette {
	pal := color.Palette{color.White, color.Black, color.Gray{Y: 0x80}, color.Gray{Y: 0xc0}}
	for i := 0; i < bodies; i++ {
		pal = append(pal, plotutil.Color(i))
	}
	return pal
}

// Animate encodes tracks as an animated GIF. Every track must hold the same
// number of samples.
func Animate(w io.Writer, tracks []Track, opts AnimOptions) error {
	if len(tracks) == 0 {
		return fmt.Errorf("no tracks to animate")
	}
	total := len(tracks[0].Positions)
	for _, tr := range tracks {
		if len(tr.Positions) != total {
			return fmt.Errorf("track %q has %d samples, expected %d", tr.Name, len(tr.Positions), total)
		}
	}
	if total == 0 {
		return fmt.Errorf("tracks are empty")
	}
	if opts.Size <= 0 {
		opts.Size = DefaultAnimOptions().Size
	}

	global := emptyBounds()
	if opts.FixedBounds {
		for _, tr := range tracks {
			for _, v := range tr.Positions {
				global.include(v)
			}
		}
		if opts.Anchor != nil {
			global.include(*opts.Anchor)
		}
	}

	pal := animPalette(len(tracks))
	anim := &gif.GIF{LoopCount: 0}

	for _, k := range frameIndices(total, opts.Frames) {
		b := global
		if !opts.FixedBounds {
			b = emptyBounds()
			for _, tr := range tracks {
				b.include(tr.Positions[k])
			}
			if opts.Anchor != nil {
				b.include(*opts.Anchor)
			}
		}

		p, err := framePlot(tracks, k, b.padded(), opts)
		if err != nil {
			return err
		}

		c := rasterize(p, opts.Size, opts.Size, 72)
		src := c.Image()
		dst := image.NewPaletted(src.Bounds(), pal)
		imgdraw.Draw(dst, dst.Bounds(), src, src.Bounds().Min, imgdraw.Src)

		anim.Image = append(anim.Image, dst)
		anim.Delay = append(anim.Delay, opts.Delay)
	}

	return gif.EncodeAll(w, anim)
}

func framePlot(tracks []Track, k int, b bounds, opts AnimOptions) (*plot.Plot, error) {
	p := plot.New()
	p.HideAxes()
	p.X.Min, p.X.Max = b.minX, b.maxX
	p.Y.Min, p.Y.Max = b.minY, b.maxY

	if opts.Anchor != nil {
		rod, err := plotter.NewLine(plotter.XYs{
			{X: opts.Anchor.X, Y: opts.Anchor.Y},
			{X: tracks[0].Positions[k].X, Y: tracks[0].Positions[k].Y},
		})
		if err != nil {
			return nil, err
		}
		rod.LineStyle.Width = vg.Points(2)
		rod.LineStyle.Color = color.Black
		p.Add(rod)
	}

	start := 0
	if opts.Trail > 0 && k-opts.Trail > 0 {
		start = k - opts.Trail
	}

	for i, tr := range tracks {
		if k > start {
			trail, err := plotter.NewLine(trackXYs(tr.Positions[start : k+1]))
			if err != nil {
				return nil, fmt.Errorf("track %q: %w", tr.Name, err)
			}
			trail.LineStyle.Width = vg.Points(1)
			trail.LineStyle.Color = color.Gray{Y: 0xc0}
			p.Add(trail)
		}

		body, err := plotter.NewScatter(trackXYs(tr.Positions[k : k+1]))
		if err != nil {
			return nil, fmt.Errorf("track %q: %w", tr.Name, err)
		}
		body.GlyphStyle.Color = plotutil.Color(i)
		body.GlyphStyle.Radius = vg.Points(5)
		body.GlyphStyle.Shape = draw.CircleGlyph{}
		p.Add(body)
	}

	// Add widens the axes to the data; pin them back to the frame bounds.
	p.X.Min, p.X.Max = b.minX, b.maxX
	p.Y.Min, p.Y.Max = b.minY, b.maxY
	return p, nil
}

// AnimatePendulum animates the bob swinging on its rod in a fixed frame.
func AnimatePendulum(w io.Writer, p *bodies.Pendulum, opts AnimOptions) error {
	center := p.Config().Center
	opts.Anchor = &center
	opts.FixedBounds = true
	return Animate(w, []Track{{Name: "bob", Positions: p.History().Position}}, opts)
}

// AnimateSystem animates every planet, following them with the frame.
func AnimateSystem(w io.Writer, s *bodies.System, opts AnimOptions) error {
	return Animate(w, SystemTracks(s), opts)
}
