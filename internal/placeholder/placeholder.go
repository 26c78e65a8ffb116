// Package placeholder synthesizes a deterministic gradient image with the
// prompt overlaid. It is the guaranteed fallback when real inference is
// unavailable or fails: same prompt and size, same image, every time.
package placeholder

import (
	"fmt"
	"hash/fnv"
	"image"
	"image/color"
	"image/draw"
	"math"
	"math/rand"
	"strings"

	"github.com/disintegration/imaging"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
)

// Request describes the image to synthesize.
type Request struct {
	Prompt string
	Width  int
	Height int
}

const (
	maxOverlayLines = 4
	maxLineChars    = 35
)

// Render produces the placeholder image at exactly the requested size.
func Render(req Request) (image.Image, error) {
	if req.Width <= 0 || req.Height <= 0 {
		return nil, fmt.Errorf("invalid placeholder size %dx%d", req.Width, req.Height)
	}

	c1, c2, c3 := palette(req.Prompt)
	img := gradient(req.Width, req.Height, req.Prompt, c1, c2, c3)

	// Soften the banding; keeps the output looking rendered, not drawn.
	soft := imaging.Blur(img, 1.5)

	overlay(soft, req)
	return soft, nil
}

// palette derives three colors from the prompt. Seeded rand keeps the choice
// stable per prompt, matching the rest of the deterministic contract.
func palette(prompt string) (color.NRGBA, color.NRGBA, color.NRGBA) {
	h := fnv.New64a()
	_, _ = h.Write([]byte(prompt))
	rng := rand.New(rand.NewSource(int64(h.Sum64())))

	pick := func(lo, span int) color.NRGBA {
		return color.NRGBA{
			R: uint8(lo + rng.Intn(span)),
			G: uint8(lo + rng.Intn(span)),
			B: uint8(lo + rng.Intn(span)),
			A: 0xff,
		}
	}
	return pick(100, 156), pick(50, 151), pick(50, 151)
}

// gradient fills a two-band vertical gradient with mild horizontal variation
// and a prompt-keyed sine pattern.
func gradient(w, h int, prompt string, c1, c2, c3 color.NRGBA) *image.NRGBA {
	hv := fnv.New32a()
	_, _ = hv.Write([]byte(prompt))
	phase := float64(hv.Sum32()%628) / 100

	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		tv := float64(y) / float64(h)
		var a, b color.NRGBA
		var ratio float64
		if tv < 0.5 {
			a, b = c1, c2
			ratio = tv * 2
		} else {
			a, b = c2, c3
			ratio = (tv - 0.5) * 2
		}
		for x := 0; x < w; x++ {
			th := float64(x) / float64(w)
			r := clamp01(ratio + th*0.3 - 0.15)
			pattern := math.Sin(float64(x+y)*0.1+phase) * 20
			img.SetNRGBA(x, y, color.NRGBA{
				R: mix(a.R, b.R, r, pattern),
				G: mix(a.G, b.G, r, pattern),
				B: mix(a.B, b.B, r, pattern),
				A: 0xff,
			})
		}
	}
	return img
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

func mix(a, b uint8, ratio, pattern float64) uint8 {
	v := float64(a)*(1-ratio) + float64(b)*ratio + pattern
	if v < 0 {
		v = 0
	}
	if v > 255 {
		v = 255
	}
	return uint8(v)
}

// overlay draws the word-wrapped prompt plus two footer lines.
func overlay(dst draw.Image, req Request) {
	lines := wrap(req.Prompt, maxLineChars)
	if len(lines) > maxOverlayLines {
		lines = lines[:maxOverlayLines]
	}
	y := req.Height / 3
	for _, line := range lines {
		drawText(dst, 20, y, line)
		y += 30
	}
	drawText(dst, 20, req.Height-60, fmt.Sprintf("AI-Style Placeholder - %dx%d", req.Width, req.Height))
	drawText(dst, 20, req.Height-30, "Connect real SD model for actual AI generation")
}

// drawText renders one line with a 1px offset shadow for legibility on any
// background.
func drawText(dst draw.Image, x, y int, s string) {
	face := basicfont.Face7x13
	shadow := &font.Drawer{Dst: dst, Src: image.NewUniform(color.Black), Face: face, Dot: fixed.P(x+1, y+1)}
	shadow.DrawString(s)
	d := &font.Drawer{Dst: dst, Src: image.NewUniform(color.White), Face: face, Dot: fixed.P(x, y)}
	d.DrawString(s)
}

// wrap splits text into lines no longer than width characters, breaking on
// words.
func wrap(text string, width int) []string {
	var lines []string
	var cur string
	for _, word := range strings.Fields(text) {
		switch {
		case cur == "":
			cur = word
		case len(cur)+1+len(word) < width:
			cur += " " + word
		default:
			lines = append(lines, cur)
			cur = word
		}
	}
	if cur != "" {
		lines = append(lines, cur)
	}
	return lines
}
