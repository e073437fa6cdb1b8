package screenshot

import (
	"image"
	"image/color"
	"image/draw"
	"strings"
	"time"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
)

// Anchor selects which corner a timestamp stamp is drawn in.
type Anchor int

const (
	AnchorBottomRight Anchor = iota
	AnchorTopLeft
	AnchorTopRight
	AnchorBottomLeft
)

const (
	stampLayout  = "2006-01-02 15:04:05"
	stampMargin  = 10
	shadowOffset = 2
)

// ParseAnchor maps a position name to an Anchor. Unknown names fall back to
// bottom-right.
func ParseAnchor(s string) Anchor {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "top-left":
		return AnchorTopLeft
	case "top-right":
		return AnchorTopRight
	case "bottom-left":
		return AnchorBottomLeft
	default:
		return AnchorBottomRight
	}
}

// AddTimestamp returns a copy of img with the current time drawn in the
// chosen corner, white text over a black shadow offset by 2px. The source
// image is left untouched.
func AddTimestamp(img *image.RGBA, anchor Anchor) *image.RGBA {
	return addTimestampAt(img, anchor, time.Now())
}

func addTimestampAt(src *image.RGBA, anchor Anchor, now time.Time) *image.RGBA {
	out := image.NewRGBA(src.Bounds())
	draw.Draw(out, out.Bounds(), src, src.Bounds().Min, draw.Src)

	text := now.Format(stampLayout)
	face := basicfont.Face7x13
	textW := font.MeasureString(face, text).Ceil()
	textH := face.Height

	b := out.Bounds()
	var x, y int
	switch anchor {
	case AnchorTopLeft:
		x, y = b.Min.X+stampMargin, b.Min.Y+stampMargin
	case AnchorTopRight:
		x, y = b.Max.X-stampMargin-textW, b.Min.Y+stampMargin
	case AnchorBottomLeft:
		x, y = b.Min.X+stampMargin, b.Max.Y-stampMargin-textH
	default:
		x, y = b.Max.X-stampMargin-textW, b.Max.Y-stampMargin-textH
	}
	// Keep the text origin inside the image; the drawer clips the rest.
	if x < b.Min.X {
		x = b.Min.X
	}
	if y < b.Min.Y {
		y = b.Min.Y
	}

	drawStamp(out, x+shadowOffset, y+shadowOffset, text, color.Black)
	drawStamp(out, x, y, text, color.White)
	return out
}

func drawStamp(img *image.RGBA, x, y int, s string, c color.Color) {
	d := &font.Drawer{
		Dst:  img,
		Src:  image.NewUniform(c),
		Face: basicfont.Face7x13,
		Dot:  fixed.P(x, y+13),
	}
	d.DrawString(s)
}
