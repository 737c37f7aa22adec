package simscene

import (
	"bytes"
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"strconv"
	"strings"

	"github.com/m-mizutani/goerr/v2"
)

const pixelsPerUnit = 20

var namedColors = map[string]color.RGBA{
	"red":    {R: 220, G: 40, B: 40, A: 255},
	"green":  {R: 40, G: 180, B: 60, A: 255},
	"blue":   {R: 40, G: 80, B: 220, A: 255},
	"yellow": {R: 240, G: 220, B: 40, A: 255},
	"orange": {R: 245, G: 140, B: 30, A: 255},
	"purple": {R: 140, G: 60, B: 200, A: 255},
	"white":  {R: 250, G: 250, B: 250, A: 255},
	"black":  {R: 10, G: 10, B: 10, A: 255},
	"gray":   {R: 128, G: 128, B: 128, A: 255},
	"brown":  {R: 130, G: 85, B: 40, A: 255},
}

var (
	background = color.RGBA{R: 60, G: 64, B: 72, A: 255}
	unlit      = color.RGBA{R: 15, G: 15, B: 18, A: 255}
	fallback   = color.RGBA{R: 200, G: 200, B: 200, A: 255}
)

// Render draws a top-down view of the scene as PNG. Objects are squares scaled by Scale and
// placed by their X and Z coordinates. Without any light the frame is nearly black.
func (s *Scene) Render() ([]byte, error) {
	s.mu.RLock()
	requirePlay, playing := s.requirePlay, s.playing
	width, height := s.width, s.height
	s.mu.RUnlock()

	if requirePlay && !playing {
		return nil, ErrNotPlaying
	}

	objects := s.List()
	var camera, light bool
	for _, o := range objects {
		camera = camera || o.hasComponent("Camera")
		light = light || o.hasComponent("Light")
	}
	if !camera {
		return nil, ErrNoCamera
	}

	img := image.NewRGBA(image.Rect(0, 0, width, height))
	bg := background
	if !light {
		bg = unlit
	}
	draw.Draw(img, img.Bounds(), &image.Uniform{C: bg}, image.Point{}, draw.Src)

	for _, o := range objects {
		if o.hasComponent("Camera") || o.hasComponent("Light") {
			continue
		}
		c := parseColor(o.Color)
		if !light {
			c = dim(c)
		}

		half := int(o.Scale * pixelsPerUnit / 2)
		if half < 1 {
			half = 1
		}
		cx := width/2 + int(o.Position.X*pixelsPerUnit)
		cy := height/2 - int(o.Position.Z*pixelsPerUnit)
		rect := image.Rect(cx-half, cy-half, cx+half, cy+half).Intersect(img.Bounds())
		draw.Draw(img, rect, &image.Uniform{C: c}, image.Point{}, draw.Src)
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, goerr.Wrap(err, "failed to encode scene")
	}
	return buf.Bytes(), nil
}

// parseColor accepts a color name or #rrggbb.
func parseColor(s string) color.RGBA {
	s = strings.ToLower(strings.TrimSpace(s))
	if c, ok := namedColors[s]; ok {
		return c
	}
	if len(s) == 7 && s[0] == '#' {
		v, err := strconv.ParseUint(s[1:], 16, 32)
		if err == nil {
			return color.RGBA{R: uint8(v >> 16), G: uint8(v >> 8), B: uint8(v), A: 255}
		}
	}
	return fallback
}

func dim(c color.RGBA) color.RGBA {
	return color.RGBA{R: c.R / 8, G: c.G / 8, B: c.B / 8, A: 255}
}
