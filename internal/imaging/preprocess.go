// Package imaging prepares raster images for OCR. The direct-image path uses
// adaptive thresholding against uneven illumination; the scanned-PDF path
// uses a heavier contrast/sharpen/median chain suited to 400 DPI renders.
package imaging

import (
	"bytes"
	"fmt"
	"image"
	"image/png"

	"github.com/disintegration/gift"
	xdraw "golang.org/x/image/draw"

	_ "image/jpeg"
	_ "image/png"
)

const (
	// minDimension is the floor below which images are upscaled 2x before
	// OCR; small images recognize poorly at native resolution.
	minDimension = 800

	adaptiveBlockSize = 31
	adaptiveOffset    = 12
)

// Decode reads any registered image format.
func Decode(data []byte) (image.Image, error) {
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("decode image: %w", err)
	}
	return img, nil
}

// EncodePNG serializes an image for handoff to an OCR engine.
func EncodePNG(img image.Image) ([]byte, error) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("encode png: %w", err)
	}
	return buf.Bytes(), nil
}

// PrepareImage runs the direct-image OCR chain: grayscale, conditional 2x
// cubic upscale, then adaptive thresholding to binarize against locally
// varying illumination.
func PrepareImage(img image.Image) *image.Gray {
	gray := toGray(img)
	b := gray.Bounds()
	if b.Dx() < minDimension || b.Dy() < minDimension {
		gray = upscale2x(gray)
	}
	return adaptiveThreshold(gray, adaptiveBlockSize, adaptiveOffset)
}

// PreparePDFPage runs the scanned-page chain: grayscale, 2x cubic upscale,
// contrast and sharpness boost, median filter, then a fixed-luminance
// binarization (cutoff 180/255).
func PreparePDFPage(img image.Image) image.Image {
	g := gift.New(
		gift.Grayscale(),
		gift.Resize(img.Bounds().Dx()*2, 0, gift.CubicResampling),
		gift.Contrast(60),
		gift.UnsharpMask(1.0, 2.0, 0),
		gift.Median(3, true),
		gift.Threshold(float32(180) / 255 * 100),
	)
	dst := image.NewGray(g.Bounds(img.Bounds()))
	g.Draw(dst, img)
	return dst
}

func toGray(img image.Image) *image.Gray {
	if g, ok := img.(*image.Gray); ok {
		return g
	}
	g := gift.New(gift.Grayscale())
	dst := image.NewGray(g.Bounds(img.Bounds()))
	g.Draw(dst, img)
	return dst
}

func upscale2x(src *image.Gray) *image.Gray {
	b := src.Bounds()
	dst := image.NewGray(image.Rect(0, 0, b.Dx()*2, b.Dy()*2))
	xdraw.CatmullRom.Scale(dst, dst.Bounds(), src, b, xdraw.Src, nil)
	return dst
}

// adaptiveThreshold binarizes each pixel against the mean of its local block
// minus a constant offset. The block mean (via an integral image) stands in
// for the Gaussian weighting; at block size 31 the difference is negligible
// for text.
func adaptiveThreshold(src *image.Gray, block, offset int) *image.Gray {
	b := src.Bounds()
	w, h := b.Dx(), b.Dy()
	half := block / 2

	// integral[y][x] = sum of pixels in [0,y) x [0,x).
	integral := make([][]int64, h+1)
	integral[0] = make([]int64, w+1)
	for y := 0; y < h; y++ {
		integral[y+1] = make([]int64, w+1)
		var rowSum int64
		for x := 0; x < w; x++ {
			rowSum += int64(src.GrayAt(b.Min.X+x, b.Min.Y+y).Y)
			integral[y+1][x+1] = integral[y][x+1] + rowSum
		}
	}

	dst := image.NewGray(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		y0, y1 := max(0, y-half), min(h, y+half+1)
		for x := 0; x < w; x++ {
			x0, x1 := max(0, x-half), min(w, x+half+1)
			area := int64((y1 - y0) * (x1 - x0))
			sum := integral[y1][x1] - integral[y0][x1] - integral[y1][x0] + integral[y0][x0]
			mean := sum / area

			v := int64(src.GrayAt(b.Min.X+x, b.Min.Y+y).Y)
			if v > mean-int64(offset) {
				dst.Pix[y*dst.Stride+x] = 255
			}
		}
	}
	return dst
}
