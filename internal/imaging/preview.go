package imaging

import (
	"fmt"
	"image"
	"image/color"

	"github.com/disintegration/imaging"
)

// Outline colors used by Preview.
var (
	previewBoxColor     = color.NRGBA{0, 200, 0, 255}
	previewContentColor = color.NRGBA{255, 0, 255, 255}
	previewLabelFG      = color.NRGBA{255, 255, 255, 255}
	previewLabelBG      = color.NRGBA{0, 0, 0, 180}
)

// PreviewResult is a base64 PNG of the image with the crop outlined.
type PreviewResult struct {
	CropResult
	Content    Box      `json:"content"`
	Box        Box      `json:"box"`
	Background RGBColor `json:"background"`
}

// Preview draws what AutoCrop would do without cropping: the padded crop box
// in green and the tight content box in magenta, over a copy of img. With
// showCoordinates the crop box corners are labelled. Returns ErrNoContent
// when AutoCrop would.
func Preview(img image.Image, opts Options, showCoordinates bool) (*PreviewResult, error) {
	mask, bg, err := ContentMask(img, opts)
	if err != nil {
		return nil, err
	}
	content, ok := mask.Bounds()
	if !ok {
		return nil, ErrNoContent
	}

	out := imaging.Clone(img)
	w, h := out.Bounds().Dx(), out.Bounds().Dy()
	box := content.Pad(opts.Padding, w, h)

	drawOutline(out, box, previewBoxColor)
	drawOutline(out, content, previewContentColor)

	if showCoordinates {
		tl := fmt.Sprintf("%d,%d", box.Left, box.Top)
		br := fmt.Sprintf("%d,%d", box.Right, box.Bottom)
		drawLabel(out, box.Left+2, box.Top+2, tl, previewLabelFG, previewLabelBG)
		drawLabel(out, box.Right-len(br)*labelCharWidth-1, box.Bottom-labelHeight-1, br, previewLabelFG, previewLabelBG)
	}

	enc, err := EncodeBase64(out)
	if err != nil {
		return nil, err
	}
	return &PreviewResult{
		CropResult: *enc,
		Content:    content,
		Box:        box,
		Background: bg,
	}, nil
}

// drawOutline draws the one pixel border of b.
func drawOutline(img *image.NRGBA, b Box, c color.NRGBA) {
	for x := b.Left; x <= b.Right; x++ {
		img.SetNRGBA(x, b.Top, c)
		img.SetNRGBA(x, b.Bottom, c)
	}
	for y := b.Top; y <= b.Bottom; y++ {
		img.SetNRGBA(b.Left, y, c)
		img.SetNRGBA(b.Right, y, c)
	}
}

const (
	labelCharWidth = 4
	labelHeight    = 7
)

// 3x5 glyphs for digits and comma.
var labelGlyphs = map[rune][]string{
	'0': {"111", "101", "101", "101", "111"},
	'1': {"010", "110", "010", "010", "111"},
	'2': {"111", "001", "111", "100", "111"},
	'3': {"111", "001", "111", "001", "111"},
	'4': {"101", "101", "111", "001", "001"},
	'5': {"111", "100", "111", "001", "111"},
	'6': {"111", "100", "111", "101", "111"},
	'7': {"111", "001", "001", "001", "001"},
	'8': {"111", "101", "111", "101", "111"},
	'9': {"111", "101", "111", "001", "111"},
	',': {"000", "000", "000", "010", "010"},
}

// drawLabel draws text on a filled background with its top-left at (x, y).
// Pixels outside img are skipped; runes without a glyph leave a gap.
func drawLabel(img *image.NRGBA, x, y int, text string, fg, bg color.NRGBA) {
	bounds := img.Bounds()
	set := func(px, py int, c color.NRGBA) {
		if (image.Point{px, py}).In(bounds) {
			img.SetNRGBA(px, py, c)
		}
	}

	labelWidth := len(text) * labelCharWidth
	for dy := -1; dy < labelHeight; dy++ {
		for dx := -1; dx < labelWidth; dx++ {
			set(x+dx, y+dy, bg)
		}
	}

	cx := x
	for _, ch := range text {
		for row, line := range labelGlyphs[ch] {
			for col, pixel := range line {
				if pixel == '1' {
					set(cx+col, y+row, fg)
				}
			}
		}
		cx += labelCharWidth
	}
}
