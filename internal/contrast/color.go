// Package contrast implements the color math behind the contrast rule:
// CSS color parsing, WCAG relative luminance and contrast ratios.
package contrast

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"golang.org/x/image/colornames"
)

// Color is an sRGB color with 8-bit channels and a [0,1] alpha.
type Color struct {
	R, G, B uint8
	A       float64
}

var (
	White = Color{R: 255, G: 255, B: 255, A: 1}
	Black = Color{A: 1}
)

// Opaque returns c with alpha forced to 1.
func (c Color) Opaque() Color {
	c.A = 1
	return c
}

// String renders the normalized form: #rrggbb when opaque, rgba() otherwise.
func (c Color) String() string {
	if c.A >= 1 {
		return fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B)
	}
	return fmt.Sprintf("rgba(%d, %d, %d, %s)", c.R, c.G, c.B, strconv.FormatFloat(c.A, 'f', -1, 64))
}

// ParseColor parses a CSS color expression. It understands hex notation,
// rgb()/rgba(), hsl()/hsla(), named colors and "transparent". Keywords that
// depend on context (currentcolor, inherit) are reported as unparseable.
func ParseColor(s string) (Color, bool) {
	s = strings.ToLower(strings.TrimSpace(s))
	switch {
	case s == "":
		return Color{}, false
	case s == "transparent":
		return Color{}, true
	case strings.HasPrefix(s, "#"):
		return parseHex(s[1:])
	case strings.HasPrefix(s, "rgb(") || strings.HasPrefix(s, "rgba("):
		return parseRGB(s)
	case strings.HasPrefix(s, "hsl(") || strings.HasPrefix(s, "hsla("):
		return parseHSL(s)
	case s == "rebeccapurple":
		return Color{R: 102, G: 51, B: 153, A: 1}, true
	}
	if rgba, ok := colornames.Map[s]; ok {
		return Color{R: rgba.R, G: rgba.G, B: rgba.B, A: 1}, true
	}
	return Color{}, false
}

func parseHex(h string) (Color, bool) {
	switch len(h) {
	case 3, 4:
		var expanded strings.Builder
		for _, r := range h {
			expanded.WriteRune(r)
			expanded.WriteRune(r)
		}
		return parseHex(expanded.String())
	case 6, 8:
		v, err := strconv.ParseUint(h, 16, 32)
		if err != nil {
			return Color{}, false
		}
		if len(h) == 6 {
			return Color{R: uint8(v >> 16), G: uint8(v >> 8), B: uint8(v), A: 1}, true
		}
		return Color{
			R: uint8(v >> 24),
			G: uint8(v >> 16),
			B: uint8(v >> 8),
			A: roundAlpha(float64(uint8(v)) / 255),
		}, true
	}
	return Color{}, false
}

// functionArgs splits "name(a, b, c)" or "name(a b c / d)" into its
// arguments. The alpha component, when present, is always the fourth.
func functionArgs(s string) ([]string, bool) {
	open := strings.IndexByte(s, '(')
	if open < 0 || !strings.HasSuffix(s, ")") {
		return nil, false
	}
	body := strings.TrimSpace(s[open+1 : len(s)-1])
	var args []string
	if strings.Contains(body, ",") {
		for _, p := range strings.Split(body, ",") {
			args = append(args, strings.TrimSpace(p))
		}
	} else {
		main, alpha, hasAlpha := strings.Cut(body, "/")
		args = strings.Fields(main)
		if hasAlpha {
			args = append(args, strings.TrimSpace(alpha))
		}
	}
	if len(args) != 3 && len(args) != 4 {
		return nil, false
	}
	return args, true
}

func parseRGB(s string) (Color, bool) {
	args, ok := functionArgs(s)
	if !ok {
		return Color{}, false
	}
	var ch [3]uint8
	for i := 0; i < 3; i++ {
		v, ok := parseChannel(args[i])
		if !ok {
			return Color{}, false
		}
		ch[i] = v
	}
	a := 1.0
	if len(args) == 4 {
		if a, ok = parseAlpha(args[3]); !ok {
			return Color{}, false
		}
	}
	return Color{R: ch[0], G: ch[1], B: ch[2], A: a}, true
}

func parseHSL(s string) (Color, bool) {
	args, ok := functionArgs(s)
	if !ok {
		return Color{}, false
	}
	h, ok := parseHue(args[0])
	if !ok {
		return Color{}, false
	}
	sat, ok1 := parsePercent(args[1])
	light, ok2 := parsePercent(args[2])
	if !ok1 || !ok2 {
		return Color{}, false
	}
	a := 1.0
	if len(args) == 4 {
		if a, ok = parseAlpha(args[3]); !ok {
			return Color{}, false
		}
	}
	r, g, b := hslToRGB(h, sat, light)
	return Color{R: r, G: g, B: b, A: a}, true
}

func parseChannel(s string) (uint8, bool) {
	if s == "none" {
		return 0, true
	}
	var v float64
	if strings.HasSuffix(s, "%") {
		p, err := strconv.ParseFloat(strings.TrimSuffix(s, "%"), 64)
		if err != nil {
			return 0, false
		}
		v = p * 255 / 100
	} else {
		p, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return 0, false
		}
		v = p
	}
	return uint8(math.Round(clamp(v, 0, 255))), true
}

func parseAlpha(s string) (float64, bool) {
	if s == "none" {
		return 0, true
	}
	var v float64
	if strings.HasSuffix(s, "%") {
		p, err := strconv.ParseFloat(strings.TrimSuffix(s, "%"), 64)
		if err != nil {
			return 0, false
		}
		v = p / 100
	} else {
		p, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return 0, false
		}
		v = p
	}
	return roundAlpha(clamp(v, 0, 1)), true
}

func parsePercent(s string) (float64, bool) {
	p, err := strconv.ParseFloat(strings.TrimSuffix(s, "%"), 64)
	if err != nil {
		return 0, false
	}
	return clamp(p/100, 0, 1), true
}

func parseHue(s string) (float64, bool) {
	unit := 1.0
	switch {
	case strings.HasSuffix(s, "deg"):
		s = strings.TrimSuffix(s, "deg")
	case strings.HasSuffix(s, "grad"):
		s, unit = strings.TrimSuffix(s, "grad"), 0.9
	case strings.HasSuffix(s, "rad"):
		s, unit = strings.TrimSuffix(s, "rad"), 180/math.Pi
	case strings.HasSuffix(s, "turn"):
		s, unit = strings.TrimSuffix(s, "turn"), 360
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false
	}
	h := math.Mod(v*unit, 360)
	if h < 0 {
		h += 360
	}
	return h, true
}

func hslToRGB(h, s, l float64) (uint8, uint8, uint8) {
	c := (1 - math.Abs(2*l-1)) * s
	x := c * (1 - math.Abs(math.Mod(h/60, 2)-1))
	m := l - c/2
	var r, g, b float64
	switch {
	case h < 60:
		r, g, b = c, x, 0
	case h < 120:
		r, g, b = x, c, 0
	case h < 180:
		r, g, b = 0, c, x
	case h < 240:
		r, g, b = 0, x, c
	case h < 300:
		r, g, b = x, 0, c
	default:
		r, g, b = c, 0, x
	}
	to8 := func(v float64) uint8 { return uint8(math.Round(clamp((v+m)*255, 0, 255))) }
	return to8(r), to8(g), to8(b)
}

// roundAlpha keeps alpha values short enough to survive a String round trip.
func roundAlpha(a float64) float64 {
	return math.Round(a*1000) / 1000
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}
