package imaging

import (
	"fmt"
	"image"
	"image/color"
	"strconv"
	"strings"

	"github.com/lucasb-eyer/go-colorful"
)

// RGBColor represents an RGB color with 8-bit components.
type RGBColor struct {
	R uint8 `json:"r"`
	G uint8 `json:"g"`
	B uint8 `json:"b"`
}

// Hex returns the color as "#RRGGBB".
func (c RGBColor) Hex() string {
	return fmt.Sprintf("#%02X%02X%02X", c.R, c.G, c.B)
}

func (c RGBColor) String() string {
	return c.Hex()
}

func (c RGBColor) toColorful() colorful.Color {
	return colorful.Color{R: float64(c.R) / 255, G: float64(c.G) / 255, B: float64(c.B) / 255}
}

// RGBAColor represents an RGBA color with 8-bit components including alpha.
//
// The alpha component represents opacity:
//   - 0 = fully transparent
//   - 255 = fully opaque
type RGBAColor struct {
	R uint8 `json:"r"`
	G uint8 `json:"g"`
	B uint8 `json:"b"`
	A uint8 `json:"a"`
}

// HSLColor represents a color in HSL (Hue, Saturation, Lightness) color space.
type HSLColor struct {
	H int `json:"h"` // Hue: 0-360 degrees (0=red, 120=green, 240=blue)
	S int `json:"s"` // Saturation: 0-100 percent
	L int `json:"l"` // Lightness: 0-100 percent
}

// ColorResult contains a color value in multiple representations.
type ColorResult struct {
	Hex  string    `json:"hex"`  // Hex format "#RRGGBB" (no alpha)
	RGB  RGBColor  `json:"rgb"`  // RGB components
	RGBA RGBAColor `json:"rgba"` // RGBA components with alpha
	HSL  HSLColor  `json:"hsl"`  // HSL representation
}

// SampleColor extracts the color value at a specific pixel coordinate.
//
// Coordinates are relative to the image origin, so (0,0) is always the
// top-left pixel even for images whose bounds do not start at zero. The
// returned components are non-premultiplied, matching what AutoCrop compares
// against when it samples a background corner.
func SampleColor(img image.Image, x, y int) (*ColorResult, error) {
	bounds := img.Bounds()
	if x < 0 || x >= bounds.Dx() || y < 0 || y >= bounds.Dy() {
		return nil, fmt.Errorf("coordinates (%d,%d) outside image bounds %dx%d", x, y, bounds.Dx(), bounds.Dy())
	}

	c := nrgbaAt(img, bounds.Min.X+x, bounds.Min.Y+y)
	rgb := RGBColor{R: c.R, G: c.G, B: c.B}

	return &ColorResult{
		Hex:  rgb.Hex(),
		RGB:  rgb,
		RGBA: RGBAColor{R: c.R, G: c.G, B: c.B, A: c.A},
		HSL:  toHSL(rgb),
	}, nil
}

// ParseHexColor parses "#RRGGBB", "RRGGBB", "#RGB" or "#RRGGBBAA".
// An alpha component, when present, is validated and discarded.
func ParseHexColor(hex string) (RGBColor, error) {
	s := strings.TrimPrefix(strings.TrimSpace(hex), "#")
	if len(s) == 3 {
		s = string([]byte{s[0], s[0], s[1], s[1], s[2], s[2]})
	}

	switch len(s) {
	case 6, 8:
	default:
		return RGBColor{}, fmt.Errorf("invalid hex color %q: want #RRGGBB", hex)
	}

	val, err := strconv.ParseUint(s, 16, 32)
	if err != nil {
		return RGBColor{}, fmt.Errorf("invalid hex color %q: %w", hex, err)
	}
	if len(s) == 8 {
		val >>= 8
	}
	return RGBColor{R: uint8(val >> 16), G: uint8(val >> 8), B: uint8(val)}, nil
}

// nrgbaAt returns the non-premultiplied color at absolute coordinates (x, y).
func nrgbaAt(img image.Image, x, y int) color.NRGBA {
	if n, ok := img.(*image.NRGBA); ok {
		return n.NRGBAAt(x, y)
	}
	return color.NRGBAModel.Convert(img.At(x, y)).(color.NRGBA)
}

func toHSL(c RGBColor) HSLColor {
	h, s, l := c.toColorful().Hsl()
	return HSLColor{
		H: int(h),
		S: int(s * 100),
		L: int(l * 100),
	}
}

// rgbSum is the sum of absolute per-channel differences.
func rgbSum(r, g, b uint8, ref RGBColor) int {
	return absDiff(r, ref.R) + absDiff(g, ref.G) + absDiff(b, ref.B)
}

// rgbMax is the largest absolute per-channel difference.
func rgbMax(r, g, b uint8, ref RGBColor) int {
	return max(absDiff(r, ref.R), absDiff(g, ref.G), absDiff(b, ref.B))
}

// labDistance is the CIE-Lab distance scaled to roughly 0-100.
func labDistance(r, g, b uint8, ref colorful.Color) float64 {
	return RGBColor{R: r, G: g, B: b}.toColorful().DistanceLab(ref) * 100
}

func absDiff(a, b uint8) int {
	if a > b {
		return int(a - b)
	}
	return int(b - a)
}
