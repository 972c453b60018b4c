package ocr

import (
	"image"
	"math"

	"github.com/disintegration/imaging"
)

// Threshold defaults validated against captured caller boards.
const (
	DefaultBlockSize = 11
	DefaultOffset    = 2
)

// toGray converts img to single-channel luma with its origin at (0,0).
func toGray(img image.Image) *image.Gray {
	g := imaging.Grayscale(img)
	b := g.Bounds()
	out := image.NewGray(image.Rect(0, 0, b.Dx(), b.Dy()))
	for y := 0; y < b.Dy(); y++ {
		src := g.Pix[y*g.Stride : y*g.Stride+b.Dx()*4]
		dst := out.Pix[y*out.Stride : y*out.Stride+b.Dx()]
		for x := range dst {
			dst[x] = src[x*4]
		}
	}
	return out
}

// upscale enlarges img so it is at least minHeight tall. Tesseract misses
// glyphs shorter than ~20px.
func upscale(img image.Image, minHeight int) image.Image {
	if minHeight <= 0 || img.Bounds().Dy() >= minHeight {
		return img
	}
	return imaging.Resize(img, 0, minHeight, imaging.Lanczos)
}

// gaussianKernel returns a normalised 1-D kernel of odd size k using the
// sigma OpenCV derives for a given aperture.
func gaussianKernel(k int) []float64 {
	sigma := 0.3*(float64(k-1)*0.5-1) + 0.8
	kern := make([]float64, k)
	half := k / 2
	sum := 0.0
	for i := range kern {
		d := float64(i - half)
		kern[i] = math.Exp(-(d * d) / (2 * sigma * sigma))
		sum += kern[i]
	}
	for i := range kern {
		kern[i] /= sum
	}
	return kern
}

// adaptiveThreshold binarises gray against a Gaussian-weighted local mean.
// Polarity is inverted: pixels at or below mean-offset (ink) become 255.
// Borders replicate the edge pixel.
func adaptiveThreshold(gray *image.Gray, block int, offset float64) *image.Gray {
	if block < 3 {
		block = 3
	}
	if block%2 == 0 {
		block++
	}
	w, h := gray.Bounds().Dx(), gray.Bounds().Dy()
	kern := gaussianKernel(block)
	half := block / 2

	at := func(x, y int) float64 {
		return float64(gray.Pix[y*gray.Stride+x])
	}

	// horizontal pass
	tmp := make([]float64, w*h)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			s := 0.0
			for i, k := range kern {
				s += k * at(clamp(x+i-half, 0, w-1), y)
			}
			tmp[y*w+x] = s
		}
	}
	// vertical pass + compare
	out := image.NewGray(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			s := 0.0
			for i, k := range kern {
				s += k * tmp[clamp(y+i-half, 0, h-1)*w+x]
			}
			mean := math.Round(s)
			if at(x, y) <= mean-offset {
				out.Pix[y*out.Stride+x] = 255
			}
		}
	}
	return out
}
