package main

import (
	"image"
	"image/color"

	"golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"

	"github.com/zoeyai/gardenworker/pkg/vision/cv"
)

var annotateColor = color.RGBA{R: 0, G: 255, B: 0, A: 255}

// annotate 在截图副本上画出匹配框和标签，r 为截图内坐标
func annotate(img image.Image, r cv.Region, label string) *image.RGBA {
	bounds := img.Bounds()
	out := image.NewRGBA(image.Rect(0, 0, bounds.Dx(), bounds.Dy()))
	draw.Draw(out, out.Bounds(), img, bounds.Min, draw.Src)

	box := r.Rect().Intersect(out.Bounds())
	if !box.Empty() {
		strokeRect(out, box, 2)
	}

	baseline := r.Y - 4
	if baseline < basicfont.Face7x13.Ascent {
		baseline = r.Y + r.Height + basicfont.Face7x13.Ascent + 2
	}
	d := &font.Drawer{
		Dst:  out,
		Src:  image.NewUniform(annotateColor),
		Face: basicfont.Face7x13,
		Dot:  fixed.P(r.X, baseline),
	}
	d.DrawString(label)
	return out
}

func strokeRect(dst *image.RGBA, r image.Rectangle, width int) {
	src := image.NewUniform(annotateColor)
	edges := []image.Rectangle{
		image.Rect(r.Min.X, r.Min.Y, r.Max.X, r.Min.Y+width),
		image.Rect(r.Min.X, r.Max.Y-width, r.Max.X, r.Max.Y),
		image.Rect(r.Min.X, r.Min.Y, r.Min.X+width, r.Max.Y),
		image.Rect(r.Max.X-width, r.Min.Y, r.Max.X, r.Max.Y),
	}
	for _, e := range edges {
		draw.Draw(dst, e.Intersect(r), src, image.Point{}, draw.Src)
	}
}
