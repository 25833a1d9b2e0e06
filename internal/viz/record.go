package viz

import (
	"bufio"
	"fmt"
	"image"
	"image/color"
	"image/gif"
	"io"
	"os"
	"strings"
)

const (
	charW = 8
	charH = 16
)

// captureFrame rasterizes the braille canvas, one block per lit dot.
func captureFrame(c *Canvas) *image.Paletted {
	imgW, imgH := c.Width*charW, c.Height*charH
	img := image.NewPaletted(image.Rect(0, 0, imgW, imgH), color.Palette{color.Black, color.White})
	dotW, dotH := charW/2, charH/4

	for y := 0; y < c.Height*4; y++ {
		for x := 0; x < c.Width*2; x++ {
			if !c.IsSet(x, y) {
				continue
			}
			for py := 0; py < dotH; py++ {
				for px := 0; px < dotW; px++ {
					img.SetColorIndex(x*dotW+px, y*dotH+py, 1)
				}
			}
		}
	}
	return img
}

func saveGIF(path string, frames []*image.Paletted, delay int) error {
	if len(frames) == 0 {
		return fmt.Errorf("no frames recorded")
	}
	anim := gif.GIF{LoopCount: 0}
	for _, frame := range frames {
		anim.Image = append(anim.Image, frame)
		anim.Delay = append(anim.Delay, delay)
	}

	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := gif.EncodeAll(f, &anim); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// writeSVG draws every lit dot of c as a circle, scale pixels per dot.
func writeSVG(w io.Writer, c *Canvas, scale float64) error {
	width, height := float64(c.Width*2)*scale, float64(c.Height*4)*scale
	bw := bufio.NewWriter(w)

	fmt.Fprintf(bw, `<?xml version="1.0" encoding="UTF-8"?>
<svg xmlns="http://www.w3.org/2000/svg" width="%.0f" height="%.0f" viewBox="0 0 %.0f %.0f">
<rect width="100%%" height="100%%" fill="#0a0a0a"/>
<g fill="#00ffff">
`, width, height, width, height)

	r := 0.4 * scale
	for y := 0; y < c.Height*4; y++ {
		for x := 0; x < c.Width*2; x++ {
			if c.IsSet(x, y) {
				fmt.Fprintf(bw, "<circle cx=\"%.1f\" cy=\"%.1f\" r=\"%.1f\"/>\n",
					(float64(x)+0.5)*scale, (float64(y)+0.5)*scale, r)
			}
		}
	}

	bw.WriteString("</g>\n</svg>\n")
	return bw.Flush()
}

// snapshotPath derives the SVG snapshot file from the recording path.
func snapshotPath(gifPath string) string {
	return strings.TrimSuffix(gifPath, ".gif") + ".svg"
}

func saveSVG(path string, c *Canvas) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := writeSVG(f, c, 4); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
