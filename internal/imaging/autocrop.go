package imaging

import (
	"fmt"
	"image"

	"github.com/anthonynsimon/bild/parallel"
	"github.com/disintegration/imaging"
)

// Default tuning for AutoCrop.
const (
	DefaultThreshold = 30
	DefaultPadding   = 5
)

// Mode selects how content pixels are told apart from background.
type Mode string

const (
	// ModeColor marks pixels whose color differs from the background reference.
	ModeColor Mode = "color"
	// ModeAlpha marks pixels whose alpha exceeds Options.AlphaThreshold.
	ModeAlpha Mode = "alpha"
)

// Metric selects the color distance used in ModeColor.
type Metric string

const (
	// MetricRGB sums absolute R, G and B differences (0-765).
	MetricRGB Metric = "rgb"
	// MetricLab uses CIE-Lab distance scaled to roughly 0-100.
	MetricLab Metric = "lab"
)

// Corner names the pixel sampled as the background reference.
type Corner string

const (
	CornerTopLeft     Corner = "top-left"
	CornerTopRight    Corner = "top-right"
	CornerBottomLeft  Corner = "bottom-left"
	CornerBottomRight Corner = "bottom-right"
)

// Options controls AutoCrop.
type Options struct {
	// Threshold is the distance above which a pixel counts as content.
	Threshold int `json:"threshold"`

	// Padding is added around the content box on every side, clamped to the image.
	Padding int `json:"padding"`

	// Flatten sets alpha to 0 for cropped pixels near the background color.
	// Ignored in ModeAlpha.
	Flatten bool `json:"flatten"`

	Mode   Mode   `json:"mode"`
	Metric Metric `json:"metric"`

	// Corner is sampled for the background color when Background is nil.
	Corner Corner `json:"corner"`

	// Background overrides corner sampling.
	Background *RGBColor `json:"background,omitempty"`

	// AlphaThreshold is the alpha value a pixel must exceed to count as
	// content in ModeAlpha.
	AlphaThreshold uint8 `json:"alpha_threshold"`
}

// DefaultOptions returns the options used by the logo header cropper: color
// mode against the top-left pixel, threshold 30, padding 5, flattened background.
func DefaultOptions() Options {
	return Options{
		Threshold: DefaultThreshold,
		Padding:   DefaultPadding,
		Flatten:   true,
		Mode:      ModeColor,
		Metric:    MetricRGB,
		Corner:    CornerTopLeft,
	}
}

// Validate reports the first invalid field.
func (o Options) Validate() error {
	if o.Threshold < 0 {
		return fmt.Errorf("threshold must be >= 0, got %d", o.Threshold)
	}
	if o.Padding < 0 {
		return fmt.Errorf("padding must be >= 0, got %d", o.Padding)
	}
	switch o.Mode {
	case ModeColor, ModeAlpha:
	default:
		return fmt.Errorf("unknown mode %q", o.Mode)
	}
	switch o.Metric {
	case MetricRGB, MetricLab:
	default:
		return fmt.Errorf("unknown metric %q", o.Metric)
	}
	switch o.Corner {
	case CornerTopLeft, CornerTopRight, CornerBottomLeft, CornerBottomRight:
	default:
		return fmt.Errorf("unknown corner %q", o.Corner)
	}
	return nil
}

// Box is an axis-aligned rectangle with inclusive edges.
type Box struct {
	Left   int `json:"left"`
	Top    int `json:"top"`
	Right  int `json:"right"`
	Bottom int `json:"bottom"`
}

// Width returns the number of columns covered by the box.
func (b Box) Width() int { return b.Right - b.Left + 1 }

// Height returns the number of rows covered by the box.
func (b Box) Height() int { return b.Bottom - b.Top + 1 }

// Rect converts the box to an image.Rectangle, whose Max is exclusive.
func (b Box) Rect() image.Rectangle {
	return image.Rect(b.Left, b.Top, b.Right+1, b.Bottom+1)
}

// Pad grows the box by p on every side, clamped to [0, w-1] x [0, h-1].
// The box must lie inside the image; any p >= 0 is safe from overflow.
func (b Box) Pad(p, w, h int) Box {
	return Box{
		Left:   b.Left - min(p, b.Left),
		Top:    b.Top - min(p, b.Top),
		Right:  b.Right + min(p, w-1-b.Right),
		Bottom: b.Bottom + min(p, h-1-b.Bottom),
	}
}

func (b Box) String() string {
	return fmt.Sprintf("(%d,%d)-(%d,%d)", b.Left, b.Top, b.Right, b.Bottom)
}

// Mask marks content pixels, row-major.
type Mask struct {
	Width  int
	Height int
	Bits   []bool
}

// At reports whether (x, y) is content.
func (m *Mask) At(x, y int) bool {
	return m.Bits[y*m.Width+x]
}

// Count returns the number of content pixels.
func (m *Mask) Count() int {
	n := 0
	for _, b := range m.Bits {
		if b {
			n++
		}
	}
	return n
}

// Bounds returns the minimal box enclosing every content pixel. ok is false
// when the mask is empty.
func (m *Mask) Bounds() (box Box, ok bool) {
	rows := make([]bool, m.Height)
	cols := make([]bool, m.Width)
	for y := 0; y < m.Height; y++ {
		line := m.Bits[y*m.Width : (y+1)*m.Width]
		for x, bit := range line {
			if bit {
				rows[y] = true
				cols[x] = true
			}
		}
	}

	top, bottom, okRows := span(rows)
	left, right, okCols := span(cols)
	if !okRows || !okCols {
		return Box{}, false
	}
	return Box{Left: left, Top: top, Right: right, Bottom: bottom}, true
}

// span returns the first and last true index.
func span(v []bool) (first, last int, ok bool) {
	first, last = -1, -1
	for i, b := range v {
		if !b {
			continue
		}
		if first < 0 {
			first = i
		}
		last = i
	}
	return first, last, first >= 0
}

// AutoCropResult describes a completed crop.
type AutoCropResult struct {
	OriginalWidth  int `json:"original_width"`
	OriginalHeight int `json:"original_height"`
	Width          int `json:"width"`
	Height         int `json:"height"`

	// Content is the tight box around content pixels.
	Content Box `json:"content"`

	// Box is the region actually cropped: Content plus clamped padding.
	Box Box `json:"box"`

	// Background is the reference color the mask was built against.
	Background RGBColor `json:"background"`

	// Flattened counts pixels whose alpha was set to 0.
	Flattened int `json:"flattened"`

	Image *image.NRGBA `json:"-"`
}

// AutoCrop crops img to its non-background content.
//
// The image is normalized to NRGBA, a content mask is built against the
// background reference, and the image is cropped to the mask's bounding box
// grown by opts.Padding. With opts.Flatten in ModeColor, cropped pixels within
// threshold of the background become fully transparent; RGB is left untouched.
//
// Returns ErrNoContent when no pixel qualifies as content. Running AutoCrop on
// its own output grows the box by the padding again wherever it is not clamped.
func AutoCrop(img image.Image, opts Options) (*AutoCropResult, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}

	src := imaging.Clone(img)
	w, h := src.Bounds().Dx(), src.Bounds().Dy()
	if w == 0 || h == 0 {
		return nil, ErrNoContent
	}

	bg := opts.background(src)
	mask := buildMask(src, bg, opts)
	content, ok := mask.Bounds()
	if !ok {
		return nil, ErrNoContent
	}

	box := content.Pad(opts.Padding, w, h)
	cropped := imaging.Crop(src, box.Rect())

	flattened := 0
	if opts.Flatten && opts.Mode == ModeColor {
		flattened = FlattenBackground(cropped, bg, opts)
	}

	return &AutoCropResult{
		OriginalWidth:  w,
		OriginalHeight: h,
		Width:          cropped.Bounds().Dx(),
		Height:         cropped.Bounds().Dy(),
		Content:        content,
		Box:            box,
		Background:     bg,
		Flattened:      flattened,
		Image:          cropped,
	}, nil
}

// ContentMask builds the content mask for img without cropping.
func ContentMask(img image.Image, opts Options) (*Mask, RGBColor, error) {
	if err := opts.Validate(); err != nil {
		return nil, RGBColor{}, err
	}
	src := imaging.Clone(img)
	if src.Bounds().Empty() {
		return &Mask{}, RGBColor{}, nil
	}
	bg := opts.background(src)
	return buildMask(src, bg, opts), bg, nil
}

// ContentBounds returns the unpadded content box of img, or ErrNoContent.
func ContentBounds(img image.Image, opts Options) (Box, error) {
	mask, _, err := ContentMask(img, opts)
	if err != nil {
		return Box{}, err
	}
	box, ok := mask.Bounds()
	if !ok {
		return Box{}, ErrNoContent
	}
	return box, nil
}

// FlattenBackground sets alpha to 0 for every pixel of img within
// opts.Threshold of bg and returns how many pixels it changed. With MetricRGB
// a pixel is near the background when each channel differs by at most the
// threshold. Only the alpha byte is written.
func FlattenBackground(img *image.NRGBA, bg RGBColor, opts Options) int {
	near := opts.nearFunc(bg)
	b := img.Bounds()
	n := 0
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			i := img.PixOffset(x, y)
			p := img.Pix[i : i+4 : i+4]
			if p[3] != 0 && near(p[0], p[1], p[2]) {
				p[3] = 0
				n++
			}
		}
	}
	return n
}

// background picks the reference color for src, which must be non-empty and
// zero-origin.
func (o Options) background(src *image.NRGBA) RGBColor {
	if o.Background != nil {
		return *o.Background
	}
	w, h := src.Bounds().Dx(), src.Bounds().Dy()
	x, y := 0, 0
	switch o.Corner {
	case CornerTopRight:
		x = w - 1
	case CornerBottomLeft:
		y = h - 1
	case CornerBottomRight:
		x, y = w-1, h-1
	}
	c := src.NRGBAAt(x, y)
	return RGBColor{R: c.R, G: c.G, B: c.B}
}

// contentFunc returns the per-pixel content test.
func (o Options) contentFunc(bg RGBColor) func(r, g, b, a uint8) bool {
	if o.Mode == ModeAlpha {
		at := o.AlphaThreshold
		return func(_, _, _, a uint8) bool { return a > at }
	}
	if o.Metric == MetricLab {
		ref, t := bg.toColorful(), float64(o.Threshold)
		return func(r, g, b, _ uint8) bool { return labDistance(r, g, b, ref) > t }
	}
	t := o.Threshold
	return func(r, g, b, _ uint8) bool { return rgbSum(r, g, b, bg) > t }
}

// nearFunc returns the flatten test.
func (o Options) nearFunc(bg RGBColor) func(r, g, b uint8) bool {
	if o.Metric == MetricLab {
		ref, t := bg.toColorful(), float64(o.Threshold)
		return func(r, g, b uint8) bool { return labDistance(r, g, b, ref) <= t }
	}
	t := o.Threshold
	return func(r, g, b uint8) bool { return rgbMax(r, g, b, bg) <= t }
}

// buildMask evaluates the content test for every pixel of the zero-origin
// src. Rows are split into bands processed in parallel; each band writes
// only its own rows, so the result does not depend on scheduling.
func buildMask(src *image.NRGBA, bg RGBColor, opts Options) *Mask {
	w, h := src.Bounds().Dx(), src.Bounds().Dy()
	mask := &Mask{Width: w, Height: h, Bits: make([]bool, w*h)}
	isContent := opts.contentFunc(bg)

	parallel.Line(h, func(start, end int) {
		for y := start; y < end; y++ {
			row := src.Pix[y*src.Stride : y*src.Stride+w*4]
			bits := mask.Bits[y*w : (y+1)*w]
			for x := range bits {
				p := row[x*4 : x*4+4 : x*4+4]
				bits[x] = isContent(p[0], p[1], p[2], p[3])
			}
		}
	})
	return mask
}
