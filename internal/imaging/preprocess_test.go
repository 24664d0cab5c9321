package imaging

import (
	"image"
	"image/color"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func grayRamp(w, h int) *image.Gray {
	img := image.NewGray(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetGray(x, y, color.Gray{Y: uint8((x + y) % 256)})
		}
	}
	return img
}

func TestPrepareImageUpscalesSmallInput(t *testing.T) {
	out := PrepareImage(grayRamp(100, 60))
	b := out.Bounds()
	assert.Equal(t, 200, b.Dx())
	assert.Equal(t, 120, b.Dy())
}

func TestPrepareImageKeepsLargeInputSize(t *testing.T) {
	out := PrepareImage(grayRamp(900, 850))
	b := out.Bounds()
	assert.Equal(t, 900, b.Dx())
	assert.Equal(t, 850, b.Dy())
}

func TestPrepareImageOutputIsBinary(t *testing.T) {
	out := PrepareImage(grayRamp(64, 64))
	for _, p := range out.Pix {
		assert.True(t, p == 0 || p == 255, "pixel value %d is not binary", p)
	}
}

func TestAdaptiveThresholdSeparatesInkFromPaper(t *testing.T) {
	// Light background with a dark square: the square must come out black,
	// the background white.
	img := image.NewGray(image.Rect(0, 0, 120, 120))
	for i := range img.Pix {
		img.Pix[i] = 220
	}
	for y := 40; y < 80; y++ {
		for x := 40; x < 80; x++ {
			img.SetGray(x, y, color.Gray{Y: 20})
		}
	}

	out := adaptiveThreshold(img, 31, 12)
	assert.EqualValues(t, 0, out.GrayAt(60, 60).Y, "ink center should be black")
	assert.EqualValues(t, 255, out.GrayAt(5, 5).Y, "paper should stay white")
}

func TestEncodeDecodeRoundTrip(t *testing.T) {
	data, err := EncodePNG(grayRamp(10, 10))
	require.NoError(t, err)

	img, err := Decode(data)
	require.NoError(t, err)
	assert.Equal(t, 10, img.Bounds().Dx())

	_, err = Decode([]byte("not an image"))
	assert.Error(t, err)
}

func TestPreparePDFPageDoublesAndBinarizes(t *testing.T) {
	out := PreparePDFPage(grayRamp(50, 40))
	b := out.Bounds()
	assert.Equal(t, 100, b.Dx())
	assert.Equal(t, 80, b.Dy())
}
