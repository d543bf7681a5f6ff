package contrast

import "math"

const (
	// LargeTextPx is the size at which any weight counts as large text.
	LargeTextPx = 24.0
	// LargeBoldTextPx is the size at which bold text counts as large text.
	LargeBoldTextPx = 18.66
	// BoldWeight is the minimum numeric weight treated as bold.
	BoldWeight = 700

	MinRatioNormal = 4.5
	MinRatioLarge  = 3.0
)

// RelativeLuminance is the WCAG relative luminance of c's RGB channels.
// Alpha is ignored.
func RelativeLuminance(c Color) float64 {
	return 0.2126*linearize(c.R) + 0.7152*linearize(c.G) + 0.0722*linearize(c.B)
}

func linearize(v uint8) float64 {
	c := float64(v) / 255
	if c <= 0.03928 {
		return c / 12.92
	}
	return math.Pow((c+0.055)/1.055, 2.4)
}

// ContrastRatio returns (L_lighter + 0.05) / (L_darker + 0.05), which is
// always in [1, 21].
func ContrastRatio(a, b Color) float64 {
	l1 := RelativeLuminance(a) + 0.05
	l2 := RelativeLuminance(b) + 0.05
	if l1 < l2 {
		l1, l2 = l2, l1
	}
	return l1 / l2
}

// IsLargeText reports whether text of the given size and weight is "large"
// under WCAG.
func IsLargeText(fontPx float64, weight int) bool {
	return fontPx >= LargeTextPx || (fontPx >= LargeBoldTextPx && weight >= BoldWeight)
}

// MinimumRatio is the smallest passing contrast ratio.
func MinimumRatio(large bool) float64 {
	if large {
		return MinRatioLarge
	}
	return MinRatioNormal
}

// Passes reports whether the ratio meets the minimum for the text size.
func Passes(ratio float64, large bool) bool {
	return ratio >= MinimumRatio(large)
}
