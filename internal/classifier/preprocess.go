package classifier

import (
	"bytes"
	"fmt"
	"image"
	"image/jpeg"

	// Decoders for uploaded photos and webcam frames.
	_ "image/gif"
	_ "image/png"

	"github.com/nfnt/resize"
)

// DefaultImageSize is the square input edge when metadata does not say.
const DefaultImageSize = 224

// Decode decodes an uploaded image in any registered format.
func Decode(data []byte) (image.Image, error) {
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("decode image: %w", err)
	}
	return img, nil
}

// Square resizes img to size x size.
func Square(img image.Image, size int) image.Image {
	if size <= 0 {
		size = DefaultImageSize
	}
	return resize.Resize(uint(size), uint(size), img, resize.Lanczos3)
}

// EncodeJPEG encodes img for upload.
func EncodeJPEG(img image.Image) ([]byte, error) {
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: 90}); err != nil {
		return nil, fmt.Errorf("encode jpeg: %w", err)
	}
	return buf.Bytes(), nil
}

// ToCHW resizes img and lays it out channel-major (R plane, G plane, B
// plane) with values normalised to [0,1].
func ToCHW(img image.Image, size int) []float32 {
	resized := Square(img, size)
	b := resized.Bounds()
	w, h := b.Dx(), b.Dy()
	plane := w * h
	out := make([]float32, 3*plane)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			r, g, bl, _ := resized.At(b.Min.X+x, b.Min.Y+y).RGBA()
			i := y*w + x
			out[i] = float32(r) / 65535.0
			out[plane+i] = float32(g) / 65535.0
			out[2*plane+i] = float32(bl) / 65535.0
		}
	}
	return out
}
