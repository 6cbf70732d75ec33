package imaging

import "errors"

var (
	// ErrNotFound reports that an input path does not resolve to a readable file.
	ErrNotFound = errors.New("image not found")

	// ErrDecode reports that an input could not be parsed as a raster image.
	ErrDecode = errors.New("failed to decode image")

	// ErrNoContent reports that the whole image is within threshold of the
	// background reference color, so there is nothing to crop to.
	ErrNoContent = errors.New("no content found")
)
