package pdf

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/jpeg"
	_ "image/png" // register decoder
	"os"
)

// Image is a decoded raster ready for embedding as an image XObject.
type Image struct {
	Width  int
	Height int

	// data holds either raw 8-bit samples (filter empty, flated at write
	// time) or a complete JPEG file kept as-is under DCTDecode.
	data             []byte
	filter           string
	colorSpace       string
	bitsPerComponent int
	decodeInverted   bool
	smask            *Image
}

// LoadImage reads and decodes an image file.
func LoadImage(path string) (*Image, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("load image: %w", err)
	}
	img, err := DecodeImage(data)
	if err != nil {
		return nil, fmt.Errorf("load image %s: %w", path, err)
	}
	return img, nil
}

// DecodeImage decodes PNG or JPEG bytes. JPEG files pass through
// untouched as DCT streams; everything else is split into RGB samples
// plus a soft mask when the image carries transparency.
func DecodeImage(data []byte) (*Image, error) {
	if isJPEG(data) {
		return decodeJPEG(data)
	}
	src, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("decode image: %w", err)
	}
	return FromImage(src), nil
}

// FromImage converts a decoded image into raw RGB samples with an
// optional gray soft mask for transparency.
func FromImage(src image.Image) *Image {
	bounds := src.Bounds()
	w, h := bounds.Dx(), bounds.Dy()

	nrgba := image.NewNRGBA(image.Rect(0, 0, w, h))
	draw.Draw(nrgba, nrgba.Bounds(), src, bounds.Min, draw.Src)

	pixels := make([]byte, 0, w*h*3)
	alpha := make([]byte, 0, w*h)
	hasAlpha := false
	for i := 0; i < w*h; i++ {
		offset := i * 4
		pixels = append(pixels, nrgba.Pix[offset], nrgba.Pix[offset+1], nrgba.Pix[offset+2])
		a := nrgba.Pix[offset+3]
		alpha = append(alpha, a)
		if a < 255 {
			hasAlpha = true
		}
	}

	img := &Image{
		Width:            w,
		Height:           h,
		data:             pixels,
		colorSpace:       "DeviceRGB",
		bitsPerComponent: 8,
	}
	if hasAlpha {
		img.smask = &Image{
			Width:            w,
			Height:           h,
			data:             alpha,
			colorSpace:       "DeviceGray",
			bitsPerComponent: 8,
		}
	}
	return img
}

func isJPEG(data []byte) bool {
	return len(data) > 2 && data[0] == 0xff && data[1] == 0xd8
}

func decodeJPEG(data []byte) (*Image, error) {
	cfg, err := jpeg.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("decode jpeg: %w", err)
	}
	img := &Image{
		Width:            cfg.Width,
		Height:           cfg.Height,
		data:             data,
		filter:           "DCTDecode",
		bitsPerComponent: 8,
	}
	switch cfg.ColorModel {
	case color.CMYKModel:
		img.colorSpace = "DeviceCMYK"
		// Adobe-style CMYK JPEGs store inverted samples.
		img.decodeInverted = true
	case color.GrayModel, color.Gray16Model:
		img.colorSpace = "DeviceGray"
	default:
		img.colorSpace = "DeviceRGB"
	}
	return img, nil
}
