package dom

import (
	"math"
	"strconv"
	"strings"
)

var absoluteSizes = map[string]float64{
	"xx-small":  9,
	"x-small":   10,
	"small":     13,
	"medium":    16,
	"large":     18,
	"x-large":   24,
	"xx-large":  32,
	"xxx-large": 48,
}

// resolveFontSize converts a specified font-size to pixels.
func resolveFontSize(v string, parentPx, rootPx float64) (float64, bool) {
	if px, ok := absoluteSizes[v]; ok {
		return px, true
	}
	switch v {
	case "smaller":
		return parentPx / 1.2, true
	case "larger":
		return parentPx * 1.2, true
	}
	num, unit := splitNumber(v)
	f, err := strconv.ParseFloat(num, 64)
	if err != nil || f < 0 {
		return 0, false
	}
	switch unit {
	case "px":
		return f, true
	case "em":
		return f * parentPx, true
	case "rem":
		return f * rootPx, true
	case "%":
		return f * parentPx / 100, true
	case "pt":
		return f * 96 / 72, true
	case "pc":
		return f * 16, true
	case "in":
		return f * 96, true
	case "cm":
		return f * 96 / 2.54, true
	case "mm":
		return f * 96 / 25.4, true
	case "":
		if f == 0 {
			return 0, true
		}
	}
	return 0, false
}

// resolveFontWeight maps keywords and numbers to a numeric weight.
func resolveFontWeight(v string, parent int) (int, bool) {
	switch v {
	case "normal":
		return 400, true
	case "bold":
		return 700, true
	case "bolder":
		switch {
		case parent < 350:
			return 400, true
		case parent < 550:
			return 700, true
		default:
			return 900, true
		}
	case "lighter":
		switch {
		case parent < 550:
			return 100, true
		case parent < 750:
			return 400, true
		default:
			return 700, true
		}
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil || f < 1 || f > 1000 {
		return 0, false
	}
	return int(math.Round(f)), true
}

// isZeroLength reports whether a width/height value is an explicit zero.
func isZeroLength(v string) bool {
	v = strings.TrimSpace(strings.ToLower(v))
	if v == "" {
		return false
	}
	num, _ := splitNumber(v)
	f, err := strconv.ParseFloat(num, 64)
	return err == nil && f == 0
}

func splitNumber(v string) (num, unit string) {
	i := 0
	for i < len(v) && (v[i] == '.' || v[i] == '-' || v[i] == '+' || (v[i] >= '0' && v[i] <= '9')) {
		i++
	}
	return v[:i], strings.TrimSpace(v[i:])
}

func formatPx(px float64) string {
	return strconv.FormatFloat(math.Round(px*100)/100, 'f', -1, 64) + "px"
}

// ParsePx reads a computed "NNpx" length. Anything else is reported as not ok.
func ParsePx(v string) (float64, bool) {
	num, unit := splitNumber(strings.TrimSpace(v))
	if unit != "px" && unit != "" {
		return 0, false
	}
	f, err := strconv.ParseFloat(num, 64)
	if err != nil {
		return 0, false
	}
	return f, true
}
