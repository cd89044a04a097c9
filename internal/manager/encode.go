package manager

import (
	"bytes"
	"fmt"
	"image"
	"image/png"
)

// encodePNG produces the download artifact for a generated image.
func encodePNG(index int, img image.Image) (EncodedImage, error) {
	if img == nil {
		return EncodedImage{}, fmt.Errorf("image %d: backend returned nil image", index)
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return EncodedImage{}, fmt.Errorf("image %d: encode png: %w", index, err)
	}
	b := img.Bounds()
	return EncodedImage{Index: index, Width: b.Dx(), Height: b.Dy(), PNG: buf.Bytes()}, nil
}
