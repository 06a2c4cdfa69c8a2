package analysis

import (
	"fmt"
	"math"
	"strconv"

	"github.com/zeebo/blake3"
)

// ColorPair is the base/accent highlight colors assigned to a repeat-set id.
type ColorPair struct {
	// Base is the background color.
	Base string

	// Accent is the underline/border color, same hue, darker.
	Accent string
}

// HighlightColors derives the deterministic color pair for a reference id.
// The id's BLAKE3 digest drives hue, saturation and lightness within
// controlled ranges, so every process derives byte-identical colors for the
// same id while distinct ids scatter across the hue wheel.
func HighlightColors(id string) ColorPair {
	sum := blake3.Sum256([]byte(id))

	hue := float64(uint16(sum[0])<<8|uint16(sum[1])) / 65535.0 * 360.0
	// Saturation 0.45..0.75, lightness 0.55..0.75: vivid enough to read as
	// a highlight, light enough to keep text legible on top.
	sat := 0.45 + float64(sum[2])/255.0*0.30
	light := 0.55 + float64(sum[3])/255.0*0.20

	base := hslToHex(hue, sat, light)
	accent := hslToHex(hue, sat, math.Max(0.25, light-0.35))
	return ColorPair{Base: base, Accent: accent}
}

// IsLight reports whether a "#rrggbb" color is light, using the fixed
// lightness threshold the renderer keys text contrast on: lightness above
// 0.65 takes dark text, anything else takes light text. Unparseable input
// counts as dark.
func IsLight(hex string) bool {
	r, g, b, ok := parseHex(hex)
	if !ok {
		return false
	}
	_, _, l := rgbToHSL(r, g, b)
	return l > 0.65
}

func parseHex(hex string) (r, g, b float64, ok bool) {
	if len(hex) == 7 && hex[0] == '#' {
		hex = hex[1:]
	}
	if len(hex) != 6 {
		return 0, 0, 0, false
	}
	n, err := strconv.ParseUint(hex, 16, 32)
	if err != nil {
		return 0, 0, 0, false
	}
	r = float64(n>>16&0xff) / 255.0
	g = float64(n>>8&0xff) / 255.0
	b = float64(n&0xff) / 255.0
	return r, g, b, true
}

func rgbToHSL(r, g, b float64) (h, s, l float64) {
	max := math.Max(r, math.Max(g, b))
	min := math.Min(r, math.Min(g, b))
	l = (max + min) / 2

	if max == min {
		return 0, 0, l
	}

	d := max - min
	if l > 0.5 {
		s = d / (2 - max - min)
	} else {
		s = d / (max + min)
	}

	switch max {
	case r:
		h = (g - b) / d
		if g < b {
			h += 6
		}
	case g:
		h = (b-r)/d + 2
	default:
		h = (r-g)/d + 4
	}
	h *= 60
	return h, s, l
}

func hslToHex(h, s, l float64) string {
	c := (1 - math.Abs(2*l-1)) * s
	hp := h / 60
	x := c * (1 - math.Abs(math.Mod(hp, 2)-1))

	var r, g, b float64
	switch {
	case hp < 1:
		r, g, b = c, x, 0
	case hp < 2:
		r, g, b = x, c, 0
	case hp < 3:
		r, g, b = 0, c, x
	case hp < 4:
		r, g, b = 0, x, c
	case hp < 5:
		r, g, b = x, 0, c
	default:
		r, g, b = c, 0, x
	}

	m := l - c/2
	return fmt.Sprintf("#%02x%02x%02x",
		int(math.Round((r+m)*255)),
		int(math.Round((g+m)*255)),
		int(math.Round((b+m)*255)))
}
