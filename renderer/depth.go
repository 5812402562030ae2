package renderer

import (
	"image"
	"image/color"
	"io"
	"math"

	"golang.org/x/image/bmp"
)

// Gray level of the farthest hit; misses are black.
const farGray = 64

// Convert a depth buffer into a grayscale image. Closer hits are brighter.
// Depths are normalized against the nearest and farthest finite values in
// the buffer.
func DepthImage(depth []float32, frameW, frameH uint32) (*image.Gray, error) {
	if len(depth) != int(frameW*frameH) {
		return nil, ErrDepthBufferLength
	}

	near, far := float32(math.Inf(1)), float32(math.Inf(-1))
	for _, d := range depth {
		if !isFinite(d) {
			continue
		}
		if d < near {
			near = d
		}
		if d > far {
			far = d
		}
	}

	img := image.NewGray(image.Rect(0, 0, int(frameW), int(frameH)))
	for y := 0; y < int(frameH); y++ {
		for x := 0; x < int(frameW); x++ {
			d := depth[y*int(frameW)+x]
			if !isFinite(d) {
				continue
			}

			level := float32(255)
			if far > near {
				level -= (d - near) / (far - near) * (255 - farGray)
			}
			img.SetGray(x, y, color.Gray{Y: uint8(level)})
		}
	}

	return img, nil
}

// Encode a depth buffer as an 8-bit grayscale bmp image.
func WriteDepthBMP(w io.Writer, depth []float32, frameW, frameH uint32) error {
	img, err := DepthImage(depth, frameW, frameH)
	if err != nil {
		return err
	}
	return bmp.Encode(w, img)
}

func isFinite(d float32) bool {
	return !math.IsInf(float64(d), 0) && !math.IsNaN(float64(d))
}
